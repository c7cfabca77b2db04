package contest_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"contest-session-service/internal/contest"
	"contest-session-service/internal/domain"
)

// scriptedCamera answers permission probes from a fixed script; the last entry repeats.
type scriptedCamera struct {
	mu       sync.Mutex
	script   []error
	calls    int
	released int
}

func (c *scriptedCamera) RequestVideoPermission(context.Context) (contest.MediaStream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	if len(c.script) > 0 {
		i := c.calls
		if i >= len(c.script) {
			i = len(c.script) - 1
		}
		err = c.script[i]
	}
	c.calls++
	return &countingStream{camera: c}, err
}

func (c *scriptedCamera) releases() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.released
}

type countingStream struct {
	camera *scriptedCamera
}

func (s *countingStream) Release() {
	s.camera.mu.Lock()
	s.camera.released++
	s.camera.mu.Unlock()
}

var errCameraBlocked = errors.New("NotAllowedError: permission dismissed")

// stubGrader returns queued results. When gate is set each call waits for a value on it.
type stubGrader struct {
	mu      sync.Mutex
	results []domain.TerminalResult
	err     error
	calls   []domain.ExecutionRequest
	gate    chan struct{}
	entered chan struct{}
}

func (g *stubGrader) Execute(ctx context.Context, req domain.ExecutionRequest) (domain.TerminalResult, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	gate, entered := g.gate, g.entered
	g.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.TerminalResult{}, ctx.Err()
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return domain.TerminalResult{}, g.err
	}
	if len(g.results) == 0 {
		return domain.TerminalResult{}, nil
	}
	r := g.results[0]
	if len(g.results) > 1 {
		g.results = g.results[1:]
	}
	return r, nil
}

func (g *stubGrader) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func outcomes(passed ...bool) domain.TerminalResult {
	r := domain.TerminalResult{RawOutput: "ran"}
	for i, p := range passed {
		r.TestOutcomes = append(r.TestOutcomes, domain.TestOutcome{TestID: string(rune('1' + i)), Passed: p})
	}
	return r
}

// manualClock advances only when told to and feeds its ticker by hand.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	ticker *manualTicker
	ready  chan struct{}
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Unix(1_700_000_000, 0), ready: make(chan struct{})}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) NewTicker(time.Duration) contest.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticker = &manualTicker{ch: make(chan time.Time)}
	close(c.ready)
	return c.ticker
}

// Advance moves the clock forward and delivers a single tick for the whole jump.
func (c *manualClock) Advance(d time.Duration) {
	<-c.ready
	c.mu.Lock()
	c.now = c.now.Add(d)
	now, t := c.now, c.ticker
	c.mu.Unlock()
	t.ch <- now
}

type manualTicker struct {
	ch chan time.Time
}

func (t *manualTicker) Chan() <-chan time.Time { return t.ch }
func (t *manualTicker) Stop()                  {}

func fourQuestionContest(duration int) domain.Contest {
	return domain.Contest{
		ID:              "weekly-387",
		Title:           "Weekly Contest 387",
		DurationSeconds: duration,
		Questions: []domain.Question{
			{ID: "two-sum", Title: "Two Sum", Difficulty: domain.DifficultyEasy},
			{ID: "add-two-numbers", Title: "Add Two Numbers", Difficulty: domain.DifficultyMedium},
			{ID: "longest-substring", Title: "Longest Substring", Difficulty: domain.DifficultyMedium},
			{ID: "median-two-arrays", Title: "Median of Two Arrays", Difficulty: domain.DifficultyHard},
		},
	}
}
