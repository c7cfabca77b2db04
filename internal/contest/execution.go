package contest

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"contest-session-service/internal/domain"
	"contest-session-service/internal/observability"
)

// Grader executes source against a question's tests.
type Grader interface {
	Execute(ctx context.Context, req domain.ExecutionRequest) (domain.TerminalResult, error)
}

// ExecutionClient adapts run/submit requests to a Grader with at most one call in flight.
// Failures are surfaced once; the client never retries.
type ExecutionClient struct {
	grader   Grader
	tests    map[string][]domain.TestCase
	tracer   trace.Tracer
	inFlight atomic.Bool
}

// NewExecutionClient binds a grader to the contest's test cases, keyed by question ID.
func NewExecutionClient(grader Grader, tests map[string][]domain.TestCase) *ExecutionClient {
	return &ExecutionClient{
		grader: grader,
		tests:  tests,
		tracer: otel.Tracer("contest-session-service/internal/contest"),
	}
}

func (c *ExecutionClient) Run(ctx context.Context, source, language, questionID string) (domain.TerminalResult, error) {
	return c.execute(ctx, domain.ExecutionRequest{Source: source, Language: language, QuestionID: questionID, Mode: domain.ModeRun})
}

func (c *ExecutionClient) Submit(ctx context.Context, source, language, questionID string) (domain.TerminalResult, error) {
	return c.execute(ctx, domain.ExecutionRequest{Source: source, Language: language, QuestionID: questionID, Mode: domain.ModeSubmit})
}

// Busy reports whether a call is outstanding.
func (c *ExecutionClient) Busy() bool {
	return c.inFlight.Load()
}

func (c *ExecutionClient) execute(ctx context.Context, req domain.ExecutionRequest) (domain.TerminalResult, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		observability.Executions().WithLabelValues(string(req.Mode), "pending").Inc()
		return domain.TerminalResult{}, domain.ErrExecutionPending
	}
	defer c.inFlight.Store(false)
	req.Tests = c.tests[req.QuestionID]

	ctx, span := c.tracer.Start(ctx, "contest.execution."+string(req.Mode), trace.WithAttributes(
		attribute.String("question_id", req.QuestionID),
		attribute.String("language", req.Language),
	))
	defer span.End()

	start := time.Now()
	result, err := c.grader.Execute(ctx, req)
	observability.ExecutionLatency().WithLabelValues(string(req.Mode)).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.Executions().WithLabelValues(string(req.Mode), "failed").Inc()
		return domain.TerminalResult{}, &domain.ExecutionFailedError{Reason: err.Error()}
	}

	outcome := "passed"
	if !result.AllPassed() {
		outcome = "not_passed"
	}
	span.SetAttributes(attribute.Int("tests_passed", result.PassedCount()), attribute.Int("tests_total", len(result.TestOutcomes)))
	observability.Executions().WithLabelValues(string(req.Mode), outcome).Inc()
	return result, nil
}
