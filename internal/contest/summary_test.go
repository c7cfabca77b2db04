package contest_test

import (
	"reflect"
	"testing"

	"contest-session-service/internal/contest"
	"contest-session-service/internal/domain"
)

func TestSummarizeCountsAndBreakdown(t *testing.T) {
	questions := fourQuestionContest(600).Questions
	progress := []domain.QuestionProgress{
		{QuestionID: "two-sum", Answered: true, TimeSpentSeconds: 120},
		{QuestionID: "add-two-numbers", TimeSpentSeconds: 60},
		{QuestionID: "longest-substring", Answered: true, TimeSpentSeconds: 200},
		{QuestionID: "median-two-arrays"},
	}

	summary := contest.Summarize(questions, progress, 600, 220)
	if summary.AnsweredCount != 2 || summary.UnansweredCount != 2 || summary.TimeUsedSeconds != 380 {
		t.Fatalf("unexpected totals %+v", summary)
	}
	if len(summary.Questions) != 4 {
		t.Fatalf("expected 4 question rows, got %d", len(summary.Questions))
	}
	if row := summary.Questions[2]; row.Title != "Longest Substring" || row.TimeSpentSeconds != 200 {
		t.Fatalf("unexpected row %+v", row)
	}

	// Same input, same output.
	if again := contest.Summarize(questions, progress, 600, 220); !reflect.DeepEqual(summary, again) {
		t.Fatalf("summary is not deterministic")
	}
}

func TestSummarizeClampsTimeUsed(t *testing.T) {
	questions := fourQuestionContest(600).Questions
	if used := contest.Summarize(questions, nil, 600, 900).TimeUsedSeconds; used != 0 {
		t.Fatalf("expected 0s used, got %d", used)
	}
	if used := contest.Summarize(questions, nil, 600, -5).TimeUsedSeconds; used != 600 {
		t.Fatalf("expected 600s used, got %d", used)
	}
	if n := contest.Summarize(questions, nil, 600, 0).UnansweredCount; n != 4 {
		t.Fatalf("expected 4 unanswered, got %d", n)
	}
}
