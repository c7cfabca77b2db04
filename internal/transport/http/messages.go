package http

import (
	"encoding/json"
	"errors"

	"contest-session-service/internal/domain"
)

// Client to server message types.
const (
	msgCamera        = "camera"
	msgRetryCamera   = "retryCamera"
	msgNavigate      = "navigate"
	msgRun           = "run"
	msgSubmit        = "submit"
	msgMarkSolved    = "markSolved"
	msgCloseTerminal = "closeTerminal"
	msgSubmitContest = "submitContest"
)

// Server to client message types.
const (
	msgJoined        = "joined"
	msgState         = "state"
	msgTerminal      = "terminal"
	msgSummary       = "summary"
	msgError         = "error"
	msgCameraRequest = "cameraRequest"
	msgCameraRelease = "cameraRelease"
)

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type joinQuery struct {
	ContestID string `json:"contestId" validate:"required,max=128"`
	UserID    string `json:"userId" validate:"required,max=128"`
	Name      string `json:"name" validate:"required,max=64"`
}

type cameraPayload struct {
	Granted bool   `json:"granted"`
	Reason  string `json:"reason" validate:"max=256"`
}

type navigatePayload struct {
	Index int `json:"index" validate:"gte=0"`
}

type codePayload struct {
	Source   string `json:"source" validate:"max=65536"`
	Language string `json:"language" validate:"required,max=32"`
}

type joinedPayload struct {
	AttemptID string `json:"attemptId"`
	ContestID string `json:"contestId"`
}

type terminalPayload struct {
	Mode   domain.ExecutionMode  `json:"mode"`
	Result domain.TerminalResult `json:"result"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func errorMessage(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: msgError, Payload: errorPayload{Code: errorCode(err), Message: err.Error()}}
}

func invalidPayload(fields map[string]string) outboundMessage[any] {
	return outboundMessage[any]{Type: msgError, Payload: errorPayload{Code: "invalid_payload", Message: "invalid payload", Fields: fields}}
}

// errorCode maps domain failures to stable client-facing codes.
func errorCode(err error) string {
	var outOfRange *domain.OutOfRangeError
	switch {
	case errors.As(err, &outOfRange):
		return "out_of_range"
	case errors.Is(err, domain.ErrExecutionPending):
		return "execution_pending"
	case errors.Is(err, domain.ErrExecutionFailed):
		return "execution_failed"
	case errors.Is(err, domain.ErrSubmitRefused):
		return "submit_refused"
	case errors.Is(err, domain.ErrSessionFinished):
		return "session_finished"
	case errors.Is(err, domain.ErrNotInProgress):
		return "not_in_progress"
	case errors.Is(err, domain.ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, domain.ErrInvalidRetry):
		return "invalid_retry"
	case errors.Is(err, domain.ErrContestNotFound):
		return "contest_not_found"
	case errors.Is(err, domain.ErrSessionNotFound):
		return "session_not_found"
	default:
		return "internal"
	}
}
