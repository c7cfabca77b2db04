package scripted

import (
	"context"
	"errors"
	"testing"
	"time"

	"contest-session-service/internal/domain"
)

func TestGraderPassesWorkedSource(t *testing.T) {
	g := NewGrader(0)
	res, err := g.Execute(context.Background(), domain.ExecutionRequest{
		Source:     "def two_sum(nums, target):\n    return [0, 1]",
		Language:   "python",
		QuestionID: "two-sum",
		Mode:       domain.ModeRun,
		Tests:      []domain.TestCase{{ID: "t1"}, {ID: "t2"}},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !res.AllPassed() || res.PassedCount() != 2 {
		t.Fatalf("expected all passed, got %+v", res.TestOutcomes)
	}
}

func TestGraderFailsStarterCode(t *testing.T) {
	g := NewGrader(0)
	for _, src := range []string{"", "   \n", "def f():\n    " + Placeholder} {
		res, err := g.Execute(context.Background(), domain.ExecutionRequest{Source: src, QuestionID: "q1"})
		if err != nil {
			t.Fatalf("execute: %v", err)
		}
		if len(res.TestOutcomes) != 3 {
			t.Fatalf("expected synthetic tests, got %d", len(res.TestOutcomes))
		}
		if res.PassedCount() != 0 {
			t.Fatalf("expected starter code %q to fail", src)
		}
	}
}

func TestGraderHonoursCancellation(t *testing.T) {
	g := NewGrader(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Execute(ctx, domain.ExecutionRequest{Source: "x"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
