package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"contest-session-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ContestLoader fetches contest content from a backing store (e.g., Postgres).
type ContestLoader interface {
	LoadContest(ctx context.Context, contestID string) (domain.Contest, error)
}

// ContestRepository caches contest documents in Redis and falls back to a loader on cache miss.
// Contests are stored as JSON under contest:{contestID}:doc.
type ContestRepository struct {
	client *redis.Client
	loader ContestLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewContestRepository(client *redis.Client, loader ContestLoader, ttl time.Duration) *ContestRepository {
	return &ContestRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ContestRepository) GetContest(ctx context.Context, contestID string) (domain.Contest, error) {
	if c, ok := r.fromCache(ctx, contestID); ok {
		return c, nil
	}

	result, err, _ := r.sf.Do(contestID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if c, ok := r.fromCache(ctx, contestID); ok {
			return c, nil
		}

		c, err := r.loader.LoadContest(ctx, contestID)
		if err != nil {
			return domain.Contest{}, err
		}

		raw, err := json.Marshal(c)
		if err == nil {
			// best-effort: a failed write only costs another load
			_ = r.client.Set(ctx, r.docKey(contestID), raw, r.ttlWithJitter()).Err()
		}
		return c, nil
	})
	if err != nil {
		return domain.Contest{}, err
	}
	return result.(domain.Contest), nil
}

func (r *ContestRepository) fromCache(ctx context.Context, contestID string) (domain.Contest, bool) {
	raw, err := r.client.Get(ctx, r.docKey(contestID)).Bytes()
	if err != nil {
		return domain.Contest{}, false
	}
	var c domain.Contest
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.Contest{}, false
	}
	return c, true
}

// Invalidate drops a cached contest so the next read goes to the loader.
func (r *ContestRepository) Invalidate(ctx context.Context, contestID string) error {
	err := r.client.Del(ctx, r.docKey(contestID)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (r *ContestRepository) docKey(contestID string) string {
	return "contest:" + contestID + ":doc"
}

func (r *ContestRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
