package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"contest-session-service/internal/content"
	"contest-session-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ContestLoader loads contest JSONB from Postgres.
type ContestLoader struct {
	pool *pgxpool.Pool
}

func NewContestLoader(pool *pgxpool.Pool) *ContestLoader {
	return &ContestLoader{pool: pool}
}

func (l *ContestLoader) LoadContest(ctx context.Context, contestID string) (domain.Contest, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM contests WHERE id=$1`, contestID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Contest{}, domain.ErrContestNotFound
	}
	if err != nil {
		return domain.Contest{}, fmt.Errorf("load contest: %w", err)
	}
	if err := content.ValidateContestJSON(raw); err != nil {
		return domain.Contest{}, fmt.Errorf("contest %s: %w", contestID, err)
	}
	var contest domain.Contest
	if err := json.Unmarshal(raw, &contest); err != nil {
		return domain.Contest{}, fmt.Errorf("unmarshal contest: %w", err)
	}
	return contest, nil
}

// SaveContest upserts a contest document.
func (l *ContestLoader) SaveContest(ctx context.Context, contest domain.Contest) error {
	raw, err := json.Marshal(contest)
	if err != nil {
		return fmt.Errorf("marshal contest: %w", err)
	}
	if err := content.ValidateContestJSON(raw); err != nil {
		return err
	}
	_, err = l.pool.Exec(ctx,
		`INSERT INTO contests (id, data) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`,
		contest.ID, raw)
	if err != nil {
		return fmt.Errorf("save contest: %w", err)
	}
	return nil
}
