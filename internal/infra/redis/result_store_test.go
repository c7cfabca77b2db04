package redis

import (
	"context"
	"testing"
	"time"

	"contest-session-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestResultStoreRecordsPerContest(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewResultStore(newClient(mr))
	ctx := context.Background()
	finished := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	if err := store.Record(ctx, domain.ContestResult{AttemptID: "a-1", ContestID: "weekly-1", UserID: "u1", AnsweredCount: 1, FinishedAt: finished}); err != nil {
		t.Fatalf("record: %v", err)
	}
	// Same attempt overwrites.
	if err := store.Record(ctx, domain.ContestResult{AttemptID: "a-1", ContestID: "weekly-1", UserID: "u1", AnsweredCount: 3, FinishedAt: finished}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.Record(ctx, domain.ContestResult{AttemptID: "a-2", ContestID: "weekly-2", UserID: "u2"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := store.List(ctx, "weekly-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].AnsweredCount != 3 || !got[0].FinishedAt.Equal(finished) {
		t.Fatalf("unexpected result %+v", got[0])
	}
	if !mr.Exists("contest:weekly-1:results") {
		t.Fatalf("expected results hash")
	}
}
