package domain

import "time"

// Difficulty is the tier shown next to a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Question is a read-only coding problem supplied by the content provider.
type Question struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Difficulty  Difficulty `json:"difficulty"`
	Description string     `json:"description"`
	// DescriptionHTML is Description rendered from markdown and sanitized.
	DescriptionHTML string `json:"descriptionHtml,omitempty"`
	StarterSource   string `json:"starterSource"`
}

// TestCase is one graded input/expected-output pair for a question.
type TestCase struct {
	ID             string `json:"id"`
	QuestionID     string `json:"questionId"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
}

// Contest is an ordered set of questions taken under a single countdown.
type Contest struct {
	ID              string                `json:"id"`
	Title           string                `json:"title"`
	DurationSeconds int                   `json:"durationSeconds"`
	Questions       []Question            `json:"questions"`
	TestCases       map[string][]TestCase `json:"testCases,omitempty"`
}

// Phase is the top-level lifecycle state of a contest session.
type Phase string

const (
	PhaseAwaitingCamera Phase = "AwaitingCamera"
	PhaseInProgress     Phase = "InProgress"
	PhaseFinished       Phase = "Finished"
)

// CameraPermissionState tracks the proctoring camera probe.
type CameraPermissionState string

const (
	CameraPending CameraPermissionState = "Pending"
	CameraGranted CameraPermissionState = "Granted"
	CameraDenied  CameraPermissionState = "Denied"
)

// ExecutionMode distinguishes a non-committal run from a submission.
type ExecutionMode string

const (
	ModeRun    ExecutionMode = "run"
	ModeSubmit ExecutionMode = "submit"
)

// QuestionProgress is the per-question state of one attempt.
type QuestionProgress struct {
	QuestionID       string `json:"questionId"`
	Answered         bool   `json:"answered"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
}

// TestOutcome is the pass/fail verdict of a single test case.
type TestOutcome struct {
	TestID string `json:"testId"`
	Passed bool   `json:"passed"`
}

// TerminalResult is the structured output of one run or submit call.
type TerminalResult struct {
	RawOutput    string        `json:"rawOutput"`
	TestOutcomes []TestOutcome `json:"testOutcomes"`
}

// AllPassed reports whether the result has at least one outcome and every outcome passed.
func (r TerminalResult) AllPassed() bool {
	if len(r.TestOutcomes) == 0 {
		return false
	}
	for _, o := range r.TestOutcomes {
		if !o.Passed {
			return false
		}
	}
	return true
}

// PassedCount returns how many outcomes passed.
func (r TerminalResult) PassedCount() int {
	n := 0
	for _, o := range r.TestOutcomes {
		if o.Passed {
			n++
		}
	}
	return n
}

// ExecutionRequest is what the engine hands to a grader.
type ExecutionRequest struct {
	Source     string
	Language   string
	QuestionID string
	Mode       ExecutionMode
	Tests      []TestCase
}

// Snapshot is a read-only view of a contest session for rendering.
type Snapshot struct {
	ContestID       string                `json:"contestId"`
	Questions       []Question            `json:"questions"`
	Progress        []QuestionProgress    `json:"progress"`
	CurrentIndex    int                   `json:"currentIndex"`
	TimeLeftSeconds int                   `json:"timeLeftSeconds"`
	Phase           Phase                 `json:"phase"`
	Camera          CameraPermissionState `json:"camera"`
	Terminal        *TerminalResult       `json:"terminal,omitempty"`
	Executing       bool                  `json:"executing"`
	Notice          string                `json:"notice,omitempty"`
	AnsweredCount   int                   `json:"answeredCount"`
	UnansweredCount int                   `json:"unansweredCount"`
}

// QuestionBreakdown is the per-question line of a summary.
type QuestionBreakdown struct {
	QuestionID       string     `json:"questionId"`
	Title            string     `json:"title"`
	Difficulty       Difficulty `json:"difficulty"`
	Answered         bool       `json:"answered"`
	TimeSpentSeconds int        `json:"timeSpentSeconds"`
}

// Summary is the terminal payload of a finished session.
type Summary struct {
	AnsweredCount   int                 `json:"answeredCount"`
	UnansweredCount int                 `json:"unansweredCount"`
	TimeUsedSeconds int                 `json:"timeUsedSeconds"`
	Questions       []QuestionBreakdown `json:"questions"`
}

// ContestResult is a finished attempt as recorded for the leaderboard.
type ContestResult struct {
	AttemptID       string    `json:"attemptId"`
	ContestID       string    `json:"contestId"`
	UserID          string    `json:"userId"`
	DisplayName     string    `json:"displayName"`
	AnsweredCount   int       `json:"answeredCount"`
	TotalQuestions  int       `json:"totalQuestions"`
	TimeUsedSeconds int       `json:"timeUsedSeconds"`
	FinishedAt      time.Time `json:"finishedAt"`
}

// LeaderboardEntry is a ranked row of the results table.
type LeaderboardEntry struct {
	Rank            int    `json:"rank"`
	UserID          string `json:"userId"`
	DisplayName     string `json:"displayName"`
	AnsweredCount   int    `json:"answeredCount"`
	TotalQuestions  int    `json:"totalQuestions"`
	TimeUsedSeconds int    `json:"timeUsedSeconds"`
}

// Leaderboard captures the ordered results for a contest.
type Leaderboard struct {
	ContestID string             `json:"contestId"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
