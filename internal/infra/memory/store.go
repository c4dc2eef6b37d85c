package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quizmaster-service/internal/domain"

	"github.com/google/uuid"
)

// Store is an in-memory implementation of app.Repository. Data lives as long as the process.
type Store struct {
	clock func() time.Time
	newID func() string

	mu      sync.RWMutex
	quizzes []domain.Quiz
	users   map[string]domain.User
	scores  []domain.ScoreRecord
}

func NewStore() *Store {
	return NewStoreWithClock(time.Now, uuid.NewString)
}

// NewStoreWithClock is test-only for deterministic IDs and timestamps.
func NewStoreWithClock(now func() time.Time, newID func() string) *Store {
	return &Store{
		clock: now,
		newID: newID,
		users: make(map[string]domain.User),
	}
}

func (s *Store) InsertQuiz(_ context.Context, newQuiz domain.NewQuiz) (domain.Quiz, error) {
	quiz := newQuiz.Materialize(s.newID(), s.clock().UTC())

	s.mu.Lock()
	s.quizzes = append(s.quizzes, quiz)
	s.mu.Unlock()
	return quiz.Clone(), nil
}

// SaveQuiz stores a quiz as-is, replacing any quiz with the same ID.
func (s *Store) SaveQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.quizzes {
		if s.quizzes[i].ID == quiz.ID {
			s.quizzes[i] = quiz.Clone()
			return nil
		}
	}
	s.quizzes = append(s.quizzes, quiz.Clone())
	return nil
}

func (s *Store) FindQuizByID(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, quiz := range s.quizzes {
		if quiz.ID == quizID {
			return quiz.Clone(), nil
		}
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (s *Store) ListQuizzes(_ context.Context) ([]domain.Quiz, error) {
	return s.filterQuizzes(func(domain.Quiz) bool { return true }), nil
}

func (s *Store) ListQuizzesByCreator(_ context.Context, userID string) ([]domain.Quiz, error) {
	return s.filterQuizzes(func(q domain.Quiz) bool { return q.CreatedBy == userID }), nil
}

func (s *Store) filterQuizzes(keep func(domain.Quiz) bool) []domain.Quiz {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		if keep(quiz) {
			out = append(out, quiz.Clone())
		}
	}
	return out
}

// InsertScore resolves the username snapshot at insertion time and fails
// with ErrUserNotFound for unknown users.
func (s *Store) InsertScore(_ context.Context, score domain.NewScore) (domain.ScoreRecord, error) {
	if err := score.Validate(); err != nil {
		return domain.ScoreRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[score.UserID]
	if !ok {
		return domain.ScoreRecord{}, domain.ErrUserNotFound
	}
	record := score.Record(user.Name, s.clock().UTC())
	s.scores = append(s.scores, record)
	return record, nil
}

func (s *Store) SaveScore(_ context.Context, record domain.ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores = append(s.scores, record)
	return nil
}

func (s *Store) ListScores(_ context.Context) ([]domain.ScoreRecord, error) {
	return s.filterScores(func(domain.ScoreRecord) bool { return true }), nil
}

// ListScoresByQuiz returns the quiz's records, highest score first.
func (s *Store) ListScoresByQuiz(_ context.Context, quizID string) ([]domain.ScoreRecord, error) {
	out := s.filterScores(func(r domain.ScoreRecord) bool { return r.QuizID == quizID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func (s *Store) ListScoresByUser(_ context.Context, userID string) ([]domain.ScoreRecord, error) {
	return s.filterScores(func(r domain.ScoreRecord) bool { return r.UserID == userID }), nil
}

func (s *Store) filterScores(keep func(domain.ScoreRecord) bool) []domain.ScoreRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ScoreRecord, 0, len(s.scores))
	for _, record := range s.scores {
		if keep(record) {
			out = append(out, record)
		}
	}
	return out
}

func (s *Store) FindUserByID(_ context.Context, userID string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) SaveUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}
