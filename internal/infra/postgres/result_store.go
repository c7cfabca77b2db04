package postgres

import (
	"context"
	"fmt"

	"contest-session-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultStore persists finished attempts in contest_results.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) Record(ctx context.Context, r domain.ContestResult) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO contest_results
			(attempt_id, contest_id, user_id, display_name, answered_count, total_questions, time_used_seconds, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (attempt_id) DO UPDATE SET
			answered_count = EXCLUDED.answered_count,
			time_used_seconds = EXCLUDED.time_used_seconds,
			finished_at = EXCLUDED.finished_at`,
		r.AttemptID, r.ContestID, r.UserID, r.DisplayName, r.AnsweredCount, r.TotalQuestions, r.TimeUsedSeconds, r.FinishedAt)
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}

func (s *ResultStore) List(ctx context.Context, contestID string) ([]domain.ContestResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT attempt_id, contest_id, user_id, display_name, answered_count, total_questions, time_used_seconds, finished_at
		 FROM contest_results WHERE contest_id=$1`, contestID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []domain.ContestResult
	for rows.Next() {
		var r domain.ContestResult
		if err := rows.Scan(&r.AttemptID, &r.ContestID, &r.UserID, &r.DisplayName, &r.AnsweredCount, &r.TotalQuestions, &r.TimeUsedSeconds, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
