package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"quizmaster-service/internal/domain"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) InsertQuiz(ctx context.Context, newQuiz domain.NewQuiz) (domain.Quiz, error) {
	quiz := newQuiz.Materialize(s.newID(), s.clock().UTC())
	if err := s.SaveQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// SaveQuiz writes the quiz and its questions in one transaction, replacing any
// quiz with the same ID.
func (s *Store) SaveQuiz(ctx context.Context, quiz domain.Quiz) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE quiz_id = ?`, quiz.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO quizzes (id, title, description, created_by, created_at_unix)
		 VALUES (?, ?, ?, ?, ?)`,
		quiz.ID, quiz.Title, quiz.Description, quiz.CreatedBy, quiz.CreatedAt.UTC().UnixNano(),
	); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	if err := insertQuestions(ctx, tx, quiz); err != nil {
		return err
	}
	return tx.Commit()
}

func insertQuestions(ctx context.Context, q querier, quiz domain.Quiz) error {
	for position, question := range quiz.Questions {
		options, err := json.Marshal(question.Options)
		if err != nil {
			return fmt.Errorf("marshal options: %w", err)
		}
		if _, err := q.ExecContext(
			ctx,
			`INSERT INTO questions (quiz_id, position, question_id, prompt, options_json, correct_index)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			quiz.ID, position, question.ID, question.Prompt, string(options), question.CorrectAnswer,
		); err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
	}
	return nil
}

func (s *Store) FindQuizByID(ctx context.Context, quizID string) (domain.Quiz, error) {
	quizzes, err := s.queryQuizzes(ctx, `WHERE id = ?`, quizID)
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
	return s.queryQuizzes(ctx, `WHERE created_by = ?`, userID)
}

func (s *Store) queryQuizzes(ctx context.Context, where string, args ...any) ([]domain.Quiz, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, title, description, created_by, created_at_unix FROM quizzes `+where+
			` ORDER BY created_at_unix ASC, rowid ASC`,
		args...,
	)
	if err != nil {
		return nil, err
	}

	quizzes := make([]domain.Quiz, 0)
	index := make(map[string]int)
	for rows.Next() {
		var (
			quiz      domain.Quiz
			createdNs int64
		)
		if err := rows.Scan(&quiz.ID, &quiz.Title, &quiz.Description, &quiz.CreatedBy, &createdNs); err != nil {
			_ = rows.Close()
			return nil, err
		}
		quiz.CreatedAt = time.Unix(0, createdNs).UTC()
		index[quiz.ID] = len(quizzes)
		quizzes = append(quizzes, quiz)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	if len(quizzes) == 0 {
		return quizzes, nil
	}
	if err := s.attachQuestions(ctx, quizzes, index); err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (s *Store) attachQuestions(ctx context.Context, quizzes []domain.Quiz, index map[string]int) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(quizzes)), ",")
	args := make([]any, 0, len(quizzes))
	for _, quiz := range quizzes {
		args = append(args, quiz.ID)
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT quiz_id, question_id, prompt, options_json, correct_index
		 FROM questions WHERE quiz_id IN (`+placeholders+`) ORDER BY quiz_id, position`,
		args...,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			quizID      string
			question    domain.Question
			optionsJSON string
		)
		if err := rows.Scan(&quizID, &question.ID, &question.Prompt, &optionsJSON, &question.CorrectAnswer); err != nil {
			return err
		}
		pos, ok := index[quizID]
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(optionsJSON), &question.Options); err != nil {
			return fmt.Errorf("unmarshal options: %w", err)
		}
		quizzes[pos].Questions = append(quizzes[pos].Questions, question)
	}
	return rows.Err()
}

func (s *Store) FindUserByID(ctx context.Context, userID string) (domain.User, error) {
	var user domain.User
	err := s.db.QueryRowContext(
		ctx,
		`SELECT id, name, email, avatar FROM users WHERE id = ?`,
		userID,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Avatar)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *Store) SaveUser(ctx context.Context, user domain.User) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO users (id, name, email, avatar) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, email = excluded.email, avatar = excluded.avatar`,
		user.ID, user.Name, user.Email, user.Avatar,
	)
	return err
}
