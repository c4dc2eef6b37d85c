package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"quizmaster-service/internal/domain"
)

// InsertScore resolves the username and appends the record in one transaction.
// Unknown users fail with ErrUserNotFound.
func (s *Store) InsertScore(ctx context.Context, score domain.NewScore) (domain.ScoreRecord, error) {
	if err := score.Validate(); err != nil {
		return domain.ScoreRecord{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.ScoreRecord{}, err
	}
	defer tx.Rollback()

	var username string
	err = tx.QueryRowContext(ctx, `SELECT name FROM users WHERE id = ?`, score.UserID).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ScoreRecord{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.ScoreRecord{}, err
	}

	record := score.Record(username, s.clock().UTC())
	if err := insertScore(ctx, tx, record); err != nil {
		return domain.ScoreRecord{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.ScoreRecord{}, err
	}
	return record, nil
}

func (s *Store) SaveScore(ctx context.Context, record domain.ScoreRecord) error {
	return insertScore(ctx, s.db, record)
}

func insertScore(ctx context.Context, q querier, record domain.ScoreRecord) error {
	_, err := q.ExecContext(
		ctx,
		`INSERT INTO scores (quiz_id, user_id, username, score, total_questions, completed_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.QuizID, record.UserID, record.Username, record.Score, record.TotalQuestions,
		record.CompletedAt.UTC().UnixNano(),
	)
	return err
}

func (s *Store) ListScores(ctx context.Context) ([]domain.ScoreRecord, error) {
	return s.queryScores(ctx, `ORDER BY id ASC`)
}

// ListScoresByQuiz returns the quiz's records, highest score first.
func (s *Store) ListScoresByQuiz(ctx context.Context, quizID string) ([]domain.ScoreRecord, error) {
	return s.queryScores(ctx, `WHERE quiz_id = ? ORDER BY score DESC, id ASC`, quizID)
}

func (s *Store) ListScoresByUser(ctx context.Context, userID string) ([]domain.ScoreRecord, error) {
	return s.queryScores(ctx, `WHERE user_id = ? ORDER BY id ASC`, userID)
}

func (s *Store) queryScores(ctx context.Context, tail string, args ...any) ([]domain.ScoreRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT quiz_id, user_id, username, score, total_questions, completed_at_unix FROM scores `+tail,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.ScoreRecord, 0)
	for rows.Next() {
		var (
			record      domain.ScoreRecord
			completedNs int64
		)
		if err := rows.Scan(&record.QuizID, &record.UserID, &record.Username, &record.Score, &record.TotalQuestions, &completedNs); err != nil {
			return nil, err
		}
		record.CompletedAt = time.Unix(0, completedNs).UTC()
		records = append(records, record)
	}
	return records, rows.Err()
}
