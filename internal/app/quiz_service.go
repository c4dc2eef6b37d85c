package app

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"

	"quizmaster-service/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// QuizLoader looks quizzes up by ID (from cache/backing store).
type QuizLoader interface {
	FindQuizByID(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizRepository stores quiz content.
type QuizRepository interface {
	QuizLoader
	InsertQuiz(ctx context.Context, quiz domain.NewQuiz) (domain.Quiz, error)
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	ListQuizzesByCreator(ctx context.Context, userID string) ([]domain.Quiz, error)
}

// ScoreRepository stores finished attempts.
type ScoreRepository interface {
	InsertScore(ctx context.Context, score domain.NewScore) (domain.ScoreRecord, error)
	ListScores(ctx context.Context) ([]domain.ScoreRecord, error)
	ListScoresByQuiz(ctx context.Context, quizID string) ([]domain.ScoreRecord, error)
	ListScoresByUser(ctx context.Context, userID string) ([]domain.ScoreRecord, error)
}

// UserRepository exposes users synced from the identity provider.
type UserRepository interface {
	FindUserByID(ctx context.Context, userID string) (domain.User, error)
	SaveUser(ctx context.Context, user domain.User) error
}

// Repository is the full storage surface (in-memory, SQLite, Postgres).
type Repository interface {
	QuizRepository
	ScoreRepository
	UserRepository
}

// AttemptRepository abstracts where in-progress attempts live (in-memory, Redis, etc).
type AttemptRepository interface {
	Save(attempt *Attempt)
	Get(attemptID string) (*Attempt, bool)
	Delete(attemptID string)
}

// Recorder receives domain events for metrics.
type Recorder interface {
	AttemptStarted()
	AttemptSubmitted(passed, persisted bool)
	SubmissionRejected()
	QuizCreated()
}

type noopRecorder struct{}

func (noopRecorder) AttemptStarted()             {}
func (noopRecorder) AttemptSubmitted(bool, bool) {}
func (noopRecorder) SubmissionRejected()         {}
func (noopRecorder) QuizCreated()                {}

// Option customizes a QuizService.
type Option func(*QuizService)

// WithQuizLoader routes quiz lookups through loader, typically a cache in front of the repository.
func WithQuizLoader(loader QuizLoader) Option {
	return func(s *QuizService) { s.loader = loader }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *QuizService) { s.log = log }
}

func WithRecorder(rec Recorder) Option {
	return func(s *QuizService) { s.metrics = rec }
}

// QuizService contains the core quiz use cases.
type QuizService struct {
	repo     Repository
	loader   QuizLoader
	attempts AttemptRepository
	log      logrus.FieldLogger
	metrics  Recorder
	newID    func() string
}

func NewQuizService(repo Repository, attempts AttemptRepository, opts ...Option) *QuizService {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &QuizService{
		repo:     repo,
		loader:   repo,
		attempts: attempts,
		log:      discard,
		metrics:  noopRecorder{},
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveUser maps a caller-supplied user ID to a user. An empty ID means nobody is signed in.
func (s *QuizService) ResolveUser(ctx context.Context, userID string) (*domain.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateQuiz validates a draft and stores it under the signed-in user.
func (s *QuizService) CreateQuiz(ctx context.Context, user *domain.User, draft domain.QuizDraft) (domain.Quiz, error) {
	if user == nil {
		return domain.Quiz{}, domain.ErrUnauthenticated
	}
	newQuiz, err := draft.Build(user.ID)
	if err != nil {
		return domain.Quiz{}, err
	}
	quiz, err := s.repo.InsertQuiz(ctx, newQuiz)
	if err != nil {
		s.log.WithError(err).Error("insert quiz failed")
		return domain.Quiz{}, err
	}
	s.metrics.QuizCreated()
	s.log.WithFields(logrus.Fields{"quiz_id": quiz.ID, "user_id": user.ID}).Info("quiz created")
	return quiz, nil
}

func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.loader.FindQuizByID(ctx, quizID)
}

// SearchQuizzes returns quizzes whose title or description contains term, ignoring case.
func (s *QuizService) SearchQuizzes(ctx context.Context, term string) ([]domain.Quiz, error) {
	quizzes, err := s.repo.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(term))
	out := make([]domain.Quiz, 0, len(quizzes))
	for _, quiz := range quizzes {
		if needle == "" ||
			strings.Contains(strings.ToLower(quiz.Title), needle) ||
			strings.Contains(strings.ToLower(quiz.Description), needle) {
			out = append(out, quiz)
		}
	}
	return out, nil
}

// RecentQuizzes returns up to limit quizzes, newest first.
func (s *QuizService) RecentQuizzes(ctx context.Context, limit int) ([]domain.Quiz, error) {
	quizzes, err := s.repo.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(quizzes, func(i, j int) bool {
		return quizzes[i].CreatedAt.After(quizzes[j].CreatedAt)
	})
	if limit > 0 && limit < len(quizzes) {
		quizzes = quizzes[:limit]
	}
	return quizzes, nil
}

func (s *QuizService) QuizzesByCreator(ctx context.Context, userID string) ([]domain.Quiz, error) {
	return s.repo.ListQuizzesByCreator(ctx, userID)
}

// ScoresByQuiz returns the quiz's records, best score first.
func (s *QuizService) ScoresByQuiz(ctx context.Context, quizID string) ([]domain.ScoreRecord, error) {
	if _, err := s.loader.FindQuizByID(ctx, quizID); err != nil {
		return nil, err
	}
	return s.repo.ListScoresByQuiz(ctx, quizID)
}

func (s *QuizService) ScoresByUser(ctx context.Context, userID string) ([]domain.ScoreRecord, error) {
	return s.repo.ListScoresByUser(ctx, userID)
}

// Leaderboard ranks every user globally and then filters by username.
func (s *QuizService) Leaderboard(ctx context.Context, term string) ([]domain.RankedStanding, error) {
	records, err := s.repo.ListScores(ctx)
	if err != nil {
		return nil, err
	}
	return FilterStandings(Rank(Aggregate(records)), term), nil
}

// StartAttempt opens a new attempt at the quiz's first question and returns the
// quiz it was opened against.
func (s *QuizService) StartAttempt(ctx context.Context, quizID string) (domain.AttemptState, domain.Quiz, error) {
	quiz, err := s.loader.FindQuizByID(ctx, quizID)
	if err != nil {
		return domain.AttemptState{}, domain.Quiz{}, err
	}
	if len(quiz.Questions) == 0 {
		return domain.AttemptState{}, domain.Quiz{}, domain.ErrQuizNotFound
	}
	attempt := NewAttempt(s.newID(), quiz)
	s.attempts.Save(attempt)
	s.metrics.AttemptStarted()
	return attempt.State(), quiz, nil
}

func (s *QuizService) AttemptState(_ context.Context, attemptID string) (domain.AttemptState, error) {
	attempt, err := s.attempt(attemptID)
	if err != nil {
		return domain.AttemptState{}, err
	}
	return attempt.State(), nil
}

func (s *QuizService) SelectAnswer(_ context.Context, attemptID string, questionIndex, optionIndex int) (domain.AttemptState, error) {
	attempt, err := s.attempt(attemptID)
	if err != nil {
		return domain.AttemptState{}, err
	}
	return attempt.SelectAnswer(questionIndex, optionIndex)
}

func (s *QuizService) Next(_ context.Context, attemptID string) (domain.AttemptState, error) {
	attempt, err := s.attempt(attemptID)
	if err != nil {
		return domain.AttemptState{}, err
	}
	return attempt.Next()
}

func (s *QuizService) Previous(_ context.Context, attemptID string) (domain.AttemptState, error) {
	attempt, err := s.attempt(attemptID)
	if err != nil {
		return domain.AttemptState{}, err
	}
	return attempt.Previous()
}

// Submit finalizes the attempt. The score is persisted only when user is non-nil.
func (s *QuizService) Submit(ctx context.Context, attemptID string, user *domain.User) (domain.AttemptState, error) {
	attempt, err := s.attempt(attemptID)
	if err != nil {
		return domain.AttemptState{}, err
	}

	var persist PersistFunc
	if user != nil {
		persist = func(score, total int) (bool, error) {
			record, err := s.repo.InsertScore(ctx, domain.NewScore{
				QuizID:         attempt.QuizID(),
				UserID:         user.ID,
				Score:          score,
				TotalQuestions: total,
			})
			if err != nil {
				return false, err
			}
			s.log.WithFields(logrus.Fields{
				"quiz_id": record.QuizID,
				"user_id": record.UserID,
				"score":   record.Score,
				"total":   record.TotalQuestions,
			}).Info("score recorded")
			return true, nil
		}
	}

	state, err := attempt.Submit(persist)
	if err != nil {
		if errors.Is(err, domain.ErrIncompleteSubmission) {
			s.metrics.SubmissionRejected()
		} else if !errors.Is(err, domain.ErrNotAnswering) {
			s.log.WithError(err).WithField("attempt_id", attemptID).Error("submit failed")
		}
		return state, err
	}
	s.metrics.AttemptSubmitted(state.Result.Passed, state.Result.Persisted)
	return state, nil
}

func (s *QuizService) Retry(_ context.Context, attemptID string) (domain.AttemptState, error) {
	attempt, err := s.attempt(attemptID)
	if err != nil {
		return domain.AttemptState{}, err
	}
	return attempt.Retry()
}

// Abandon discards an attempt, as when the user navigates away.
func (s *QuizService) Abandon(_ context.Context, attemptID string) {
	s.attempts.Delete(attemptID)
}

func (s *QuizService) attempt(attemptID string) (*Attempt, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return nil, domain.ErrAttemptNotFound
	}
	return attempt, nil
}
