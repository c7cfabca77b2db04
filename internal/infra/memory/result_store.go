package memory

import (
	"context"
	"sync"

	"contest-session-service/internal/domain"
)

// ResultStore keeps finished attempts per contest. Recording the same attempt twice overwrites it.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string]map[string]domain.ContestResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[string]map[string]domain.ContestResult)}
}

func (s *ResultStore) Record(_ context.Context, result domain.ContestResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byAttempt, ok := s.results[result.ContestID]
	if !ok {
		byAttempt = make(map[string]domain.ContestResult)
		s.results[result.ContestID] = byAttempt
	}
	byAttempt[result.AttemptID] = result
	return nil
}

func (s *ResultStore) List(_ context.Context, contestID string) ([]domain.ContestResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ContestResult, 0, len(s.results[contestID]))
	for _, r := range s.results[contestID] {
		out = append(out, r)
	}
	return out, nil
}
