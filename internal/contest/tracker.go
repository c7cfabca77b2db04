package contest

import (
	"errors"
	"fmt"

	"contest-session-service/internal/domain"
)

// ErrNoQuestions is returned when a contest has nothing to attempt.
var ErrNoQuestions = errors.New("contest has no questions")

// QuestionTracker owns question order, per-question progress and the current pointer.
// It is not safe for concurrent use; the Controller serialises access.
type QuestionTracker struct {
	questions []domain.Question
	progress  map[string]*domain.QuestionProgress
	current   int
}

func NewQuestionTracker(questions []domain.Question) (*QuestionTracker, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	t := &QuestionTracker{
		questions: append([]domain.Question(nil), questions...),
		progress:  make(map[string]*domain.QuestionProgress, len(questions)),
	}
	for _, q := range questions {
		if _, dup := t.progress[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %q", q.ID)
		}
		t.progress[q.ID] = &domain.QuestionProgress{QuestionID: q.ID}
	}
	return t, nil
}

// Select moves the current pointer. Progress is left untouched.
func (t *QuestionTracker) Select(index int) error {
	if err := t.check(index); err != nil {
		return err
	}
	t.current = index
	return nil
}

// MarkAnswered flags a question as answered. Marking twice is a no-op.
func (t *QuestionTracker) MarkAnswered(index int) error {
	if err := t.check(index); err != nil {
		return err
	}
	t.progress[t.questions[index].ID].Answered = true
	return nil
}

// AddTime accrues seconds spent on a question.
func (t *QuestionTracker) AddTime(index, seconds int) error {
	if err := t.check(index); err != nil {
		return err
	}
	if seconds > 0 {
		t.progress[t.questions[index].ID].TimeSpentSeconds += seconds
	}
	return nil
}

func (t *QuestionTracker) Current() int { return t.current }

func (t *QuestionTracker) Len() int { return len(t.questions) }

// Question returns the question at index.
func (t *QuestionTracker) Question(index int) (domain.Question, error) {
	if err := t.check(index); err != nil {
		return domain.Question{}, err
	}
	return t.questions[index], nil
}

func (t *QuestionTracker) AnsweredCount() int {
	n := 0
	for _, p := range t.progress {
		if p.Answered {
			n++
		}
	}
	return n
}

func (t *QuestionTracker) UnansweredCount() int {
	return len(t.questions) - t.AnsweredCount()
}

// Questions returns the questions in contest order.
func (t *QuestionTracker) Questions() []domain.Question {
	return append([]domain.Question(nil), t.questions...)
}

// Progress returns a copy of every progress entry in contest order.
func (t *QuestionTracker) Progress() []domain.QuestionProgress {
	out := make([]domain.QuestionProgress, 0, len(t.questions))
	for _, q := range t.questions {
		out = append(out, *t.progress[q.ID])
	}
	return out
}

func (t *QuestionTracker) check(index int) error {
	if index < 0 || index >= len(t.questions) {
		return &domain.OutOfRangeError{Index: index, Len: len(t.questions)}
	}
	return nil
}
