package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"contest-session-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ResultStore keeps finished attempts in a hash per contest:
// HSET contest:{contestID}:results {attemptID} {json}
type ResultStore struct {
	client *redis.Client
}

func NewResultStore(client *redis.Client) *ResultStore {
	return &ResultStore{client: client}
}

func (s *ResultStore) Record(ctx context.Context, result domain.ContestResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return s.client.HSet(ctx, s.key(result.ContestID), result.AttemptID, raw).Err()
}

func (s *ResultStore) List(ctx context.Context, contestID string) ([]domain.ContestResult, error) {
	entries, err := s.client.HGetAll(ctx, s.key(contestID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	out := make([]domain.ContestResult, 0, len(entries))
	for attemptID, raw := range entries {
		var r domain.ContestResult
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("decode result %s: %w", attemptID, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *ResultStore) key(contestID string) string {
	return "contest:" + contestID + ":results"
}
