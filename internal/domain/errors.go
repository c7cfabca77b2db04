package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when a contest attempt has not been started.
	ErrSessionNotFound = errors.New("contest session not found")
	// ErrContestNotFound indicates the contest content could not be loaded.
	ErrContestNotFound = errors.New("contest not found")
	// ErrInvalidContest indicates a stored contest document failed schema validation.
	ErrInvalidContest = errors.New("invalid contest document")
	// ErrPermissionDenied is returned when the camera probe is refused.
	ErrPermissionDenied = errors.New("camera permission denied")
	// ErrInvalidRetry is returned when a camera retry is requested outside the denied state.
	ErrInvalidRetry = errors.New("camera retry is only valid after a denial")
	// ErrExecutionPending is returned while another run or submit call is outstanding.
	ErrExecutionPending = errors.New("an execution is already in flight")
	// ErrExecutionFailed matches any *ExecutionFailedError.
	ErrExecutionFailed = errors.New("execution failed")
	// ErrNotInProgress is returned for contest actions before the camera gate opens.
	ErrNotInProgress = errors.New("contest is not in progress")
	// ErrSessionFinished is returned for any mutating call after the contest ended.
	ErrSessionFinished = errors.New("contest session already finished")
	// ErrSubmitRefused is returned when the latest run did not pass every test.
	ErrSubmitRefused = errors.New("submit requires a run where every test passed")
)

// ExecutionFailedError carries the grader's failure reason.
type ExecutionFailedError struct {
	Reason string
}

func (e *ExecutionFailedError) Error() string {
	return "execution failed: " + e.Reason
}

func (e *ExecutionFailedError) Is(target error) bool {
	return target == ErrExecutionFailed
}

// OutOfRangeError reports a question index outside the contest.
type OutOfRangeError struct {
	Index int
	Len   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("question index %d out of range [0, %d)", e.Index, e.Len)
}
