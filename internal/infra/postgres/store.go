package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quizmaster-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Store keeps quizzes, users and score records in Postgres. Questions live in
// the quiz row's JSONB data column.
type Store struct {
	pool  *pgxpool.Pool
	clock func() time.Time
	newID func() string
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, clock: time.Now, newID: uuid.NewString}
}

type quizData struct {
	Questions []domain.Question `json:"questions"`
}

func (s *Store) InsertQuiz(ctx context.Context, newQuiz domain.NewQuiz) (domain.Quiz, error) {
	quiz := newQuiz.Materialize(s.newID(), s.clock().UTC())
	if err := s.SaveQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func (s *Store) SaveQuiz(ctx context.Context, quiz domain.Quiz) error {
	data, err := json.Marshal(quizData{Questions: quiz.Questions})
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = s.pool.Exec(
		ctx,
		`INSERT INTO quizzes (id, title, description, created_by, created_at, data)
		 VALUES ($1, $2, $3, $4, $5, $6::jsonb)
		 ON CONFLICT (id) DO UPDATE SET
		   title = EXCLUDED.title,
		   description = EXCLUDED.description,
		   created_by = EXCLUDED.created_by,
		   created_at = EXCLUDED.created_at,
		   data = EXCLUDED.data`,
		quiz.ID, quiz.Title, quiz.Description, quiz.CreatedBy, quiz.CreatedAt.UTC(), string(data),
	)
	if err != nil {
		return fmt.Errorf("save quiz: %w", err)
	}
	return nil
}

func (s *Store) FindQuizByID(ctx context.Context, quizID string) (domain.Quiz, error) {
	quizzes, err := s.queryQuizzes(ctx, `WHERE id = $1`, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if len(quizzes) == 0 {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quizzes[0], nil
}

func (s *Store) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return s.queryQuizzes(ctx, ``)
}

func (s *Store) ListQuizzesByCreator(ctx context.Context, userID string) ([]domain.Quiz, error) {
	return s.queryQuizzes(ctx, `WHERE created_by = $1`, userID)
}

func (s *Store) queryQuizzes(ctx context.Context, where string, args ...any) ([]domain.Quiz, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT id, title, description, created_by, created_at, data FROM quizzes `+where+
			` ORDER BY created_at ASC, id ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("load quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := make([]domain.Quiz, 0)
	for rows.Next() {
		var (
			quiz domain.Quiz
			raw  []byte
		)
		if err := rows.Scan(&quiz.ID, &quiz.Title, &quiz.Description, &quiz.CreatedBy, &quiz.CreatedAt, &raw); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		var data quizData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("unmarshal quiz: %w", err)
		}
		quiz.Questions = data.Questions
		quiz.CreatedAt = quiz.CreatedAt.UTC()
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}

func (s *Store) FindUserByID(ctx context.Context, userID string) (domain.User, error) {
	var user domain.User
	err := s.pool.QueryRow(
		ctx,
		`SELECT id, name, email, avatar FROM users WHERE id = $1`,
		userID,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Avatar)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (s *Store) SaveUser(ctx context.Context, user domain.User) error {
	_, err := s.pool.Exec(
		ctx,
		`INSERT INTO users (id, name, email, avatar) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, avatar = EXCLUDED.avatar`,
		user.ID, user.Name, user.Email, user.Avatar,
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// InsertScore snapshots the user's current name into the record. Unknown users
// fail with ErrUserNotFound.
func (s *Store) InsertScore(ctx context.Context, score domain.NewScore) (domain.ScoreRecord, error) {
	if err := score.Validate(); err != nil {
		return domain.ScoreRecord{}, err
	}

	var record domain.ScoreRecord
	err := s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		var username string
		err := tx.QueryRow(ctx, `SELECT name FROM users WHERE id = $1`, score.UserID).Scan(&username)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		record = score.Record(username, s.clock().UTC())
		return insertScore(ctx, tx, record)
	})
	if err != nil {
		return domain.ScoreRecord{}, err
	}
	return record, nil
}

func (s *Store) SaveScore(ctx context.Context, record domain.ScoreRecord) error {
	return s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		return insertScore(ctx, tx, record)
	})
}

func insertScore(ctx context.Context, tx pgx.Tx, record domain.ScoreRecord) error {
	_, err := tx.Exec(
		ctx,
		`INSERT INTO scores (quiz_id, user_id, username, score, total_questions, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		record.QuizID, record.UserID, record.Username, record.Score, record.TotalQuestions, record.CompletedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

func (s *Store) ListScores(ctx context.Context) ([]domain.ScoreRecord, error) {
	return s.queryScores(ctx, `ORDER BY id ASC`)
}

func (s *Store) ListScoresByQuiz(ctx context.Context, quizID string) ([]domain.ScoreRecord, error) {
	return s.queryScores(ctx, `WHERE quiz_id = $1 ORDER BY score DESC, id ASC`, quizID)
}

func (s *Store) ListScoresByUser(ctx context.Context, userID string) ([]domain.ScoreRecord, error) {
	return s.queryScores(ctx, `WHERE user_id = $1 ORDER BY id ASC`, userID)
}

func (s *Store) queryScores(ctx context.Context, tail string, args ...any) ([]domain.ScoreRecord, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT quiz_id, user_id, username, score, total_questions, completed_at FROM scores `+tail,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	defer rows.Close()

	records := make([]domain.ScoreRecord, 0)
	for rows.Next() {
		var record domain.ScoreRecord
		if err := rows.Scan(&record.QuizID, &record.UserID, &record.Username, &record.Score, &record.TotalQuestions, &record.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		record.CompletedAt = record.CompletedAt.UTC()
		records = append(records, record)
	}
	return records, rows.Err()
}
