package contest_test

import (
	"errors"
	"reflect"
	"testing"

	"contest-session-service/internal/contest"
	"contest-session-service/internal/domain"
)

func newTracker(t *testing.T) *contest.QuestionTracker {
	t.Helper()
	tracker, err := contest.NewQuestionTracker(fourQuestionContest(600).Questions)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	return tracker
}

func TestTrackerStartsUnanswered(t *testing.T) {
	tracker := newTracker(t)

	if tracker.Current() != 0 || tracker.AnsweredCount() != 0 || tracker.UnansweredCount() != 4 {
		t.Fatalf("unexpected initial tracker: current %d answered %d unanswered %d",
			tracker.Current(), tracker.AnsweredCount(), tracker.UnansweredCount())
	}
	for i, p := range tracker.Progress() {
		if p.Answered || p.TimeSpentSeconds != 0 {
			t.Fatalf("question %d starts with progress %+v", i, p)
		}
	}
}

func TestTrackerMarkAnsweredIsIdempotent(t *testing.T) {
	tracker := newTracker(t)

	if err := tracker.MarkAnswered(2); err != nil {
		t.Fatalf("mark answered: %v", err)
	}
	once := tracker.Progress()
	if err := tracker.MarkAnswered(2); err != nil {
		t.Fatalf("mark answered again: %v", err)
	}
	if !reflect.DeepEqual(once, tracker.Progress()) {
		t.Fatalf("second mark changed progress")
	}
	if tracker.AnsweredCount() != 1 {
		t.Fatalf("expected 1 answered, got %d", tracker.AnsweredCount())
	}
	if tracker.AnsweredCount()+tracker.UnansweredCount() != tracker.Len() {
		t.Fatalf("answered and unanswered must cover every question")
	}
}

func TestTrackerSelectLeavesProgressAlone(t *testing.T) {
	tracker := newTracker(t)
	if err := tracker.MarkAnswered(0); err != nil {
		t.Fatalf("mark answered: %v", err)
	}
	if err := tracker.AddTime(0, 30); err != nil {
		t.Fatalf("add time: %v", err)
	}
	before := tracker.Progress()

	for _, i := range []int{3, 1, 0, 2} {
		if err := tracker.Select(i); err != nil {
			t.Fatalf("select %d: %v", i, err)
		}
		if tracker.Current() != i {
			t.Fatalf("expected current %d, got %d", i, tracker.Current())
		}
	}
	if !reflect.DeepEqual(before, tracker.Progress()) {
		t.Fatalf("selection changed progress")
	}
}

func TestTrackerRejectsOutOfRange(t *testing.T) {
	tracker := newTracker(t)

	var rangeErr *domain.OutOfRangeError
	if err := tracker.MarkAnswered(4); !errors.As(err, &rangeErr) || rangeErr.Index != 4 {
		t.Fatalf("expected out of range for index 4, got %v", err)
	}
	if err := tracker.MarkAnswered(-1); !errors.As(err, &rangeErr) {
		t.Fatalf("expected out of range for -1, got %v", err)
	}
	if err := tracker.Select(9); !errors.As(err, &rangeErr) {
		t.Fatalf("expected out of range for select 9, got %v", err)
	}
	if tracker.Current() != 0 || tracker.AnsweredCount() != 0 {
		t.Fatalf("rejected calls changed the tracker")
	}
}

func TestTrackerRejectsEmptyAndDuplicateQuestions(t *testing.T) {
	if _, err := contest.NewQuestionTracker(nil); !errors.Is(err, contest.ErrNoQuestions) {
		t.Fatalf("expected no questions error, got %v", err)
	}
	if _, err := contest.NewQuestionTracker([]domain.Question{{ID: "q1"}, {ID: "q1"}}); err == nil {
		t.Fatalf("expected duplicate ids to be rejected")
	}
}
