package contest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"contest-session-service/internal/domain"
	"contest-session-service/internal/observability"
)

// Options wires the capabilities a Controller depends on.
type Options struct {
	Camera CameraProvider
	Grader Grader
	// Clock drives the countdown. When nil the caller delivers ticks through Tick or Advance.
	Clock  Clock
	Logger zerolog.Logger
}

// Controller runs one contest attempt: AwaitingCamera -> InProgress -> Finished.
// Every event is applied under a single lock; camera probes and grader calls run
// with the lock released and are guarded by in-flight flags.
type Controller struct {
	contest domain.Contest
	camera  *CameraGate
	timer   *SessionTimer
	tracker *QuestionTracker
	exec    *ExecutionClient
	clock   Clock
	log     zerolog.Logger

	mu          sync.Mutex
	phase       domain.Phase
	executing   bool
	lastRun     *domain.TerminalResult
	terminal    *domain.TerminalResult
	notice      string
	summary     *domain.Summary
	onFinished  []func(domain.Summary)
	subscribers map[chan domain.Snapshot]struct{}
	stopPump    context.CancelFunc
	done        chan struct{}
}

func NewController(contest domain.Contest, opts Options) (*Controller, error) {
	if opts.Camera == nil {
		return nil, errors.New("camera provider is required")
	}
	if opts.Grader == nil {
		return nil, errors.New("grader is required")
	}
	if contest.DurationSeconds <= 0 {
		return nil, fmt.Errorf("contest %q has no duration", contest.ID)
	}
	tracker, err := NewQuestionTracker(contest.Questions)
	if err != nil {
		return nil, fmt.Errorf("contest %q: %w", contest.ID, err)
	}

	c := &Controller{
		contest:     contest,
		camera:      NewCameraGate(opts.Camera),
		timer:       NewSessionTimer(),
		tracker:     tracker,
		exec:        NewExecutionClient(opts.Grader, contest.TestCases),
		clock:       opts.Clock,
		log:         opts.Logger.With().Str("component", "contest_controller").Str("contest_id", contest.ID).Logger(),
		phase:       domain.PhaseAwaitingCamera,
		subscribers: make(map[chan domain.Snapshot]struct{}),
		done:        make(chan struct{}),
	}
	c.camera.OnGranted(c.cameraGranted)
	c.camera.OnDenied(c.cameraDenied)
	return c, nil
}

// Begin enters the camera gate and probes for permission. A denial is not an error:
// it leaves the session in AwaitingCamera with the state reported as Denied.
func (c *Controller) Begin(ctx context.Context) (domain.CameraPermissionState, error) {
	c.mu.Lock()
	if c.phase == domain.PhaseFinished {
		c.mu.Unlock()
		return c.camera.State(), domain.ErrSessionFinished
	}
	c.mu.Unlock()

	state, err := c.camera.RequestPermission(ctx)
	if errors.Is(err, domain.ErrPermissionDenied) {
		return state, nil
	}
	return state, err
}

// RetryCamera probes again after a denial.
func (c *Controller) RetryCamera(ctx context.Context) (domain.CameraPermissionState, error) {
	c.mu.Lock()
	if c.phase == domain.PhaseFinished {
		c.mu.Unlock()
		return c.camera.State(), domain.ErrSessionFinished
	}
	c.mu.Unlock()

	state, err := c.camera.Retry(ctx)
	if errors.Is(err, domain.ErrPermissionDenied) {
		return state, nil
	}
	return state, err
}

func (c *Controller) cameraGranted() {
	observability.CameraProbes().WithLabelValues("granted").Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != domain.PhaseAwaitingCamera {
		return
	}
	c.phase = domain.PhaseInProgress
	c.notice = ""
	c.timer.Start(c.contest.DurationSeconds)
	if c.clock != nil {
		ctx, cancel := context.WithCancel(context.Background())
		c.stopPump = cancel
		go Pump(ctx, c.clock, c.advanceFromPump)
	}
	c.log.Info().Int("duration_seconds", c.contest.DurationSeconds).Msg("camera granted, contest started")
	c.broadcastLocked()
}

func (c *Controller) cameraDenied(err error) {
	observability.CameraProbes().WithLabelValues("denied").Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != domain.PhaseAwaitingCamera {
		return
	}
	c.notice = "camera access denied, allow the camera and retry to begin"
	c.log.Warn().Err(err).Msg("camera permission denied")
	c.broadcastLocked()
}

func (c *Controller) advanceFromPump(seconds int) bool {
	return c.Advance(seconds) == nil
}

// Navigate selects another question and closes the terminal panel.
func (c *Controller) Navigate(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireInProgressLocked(); err != nil {
		return err
	}
	if err := c.tracker.Select(index); err != nil {
		return err
	}
	c.lastRun = nil
	c.terminal = nil
	c.notice = ""
	c.broadcastLocked()
	return nil
}

// Run executes source against the current question's tests without committing.
func (c *Controller) Run(ctx context.Context, source, language string) (domain.TerminalResult, error) {
	index, question, err := c.reserveExecution(false)
	if err != nil {
		return domain.TerminalResult{}, err
	}

	result, execErr := c.exec.Run(ctx, source, language, question.ID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.executing = false
	if c.phase != domain.PhaseInProgress {
		c.log.Debug().Str("question_id", question.ID).Msg("discarding run result after contest ended")
		c.broadcastLocked()
		return domain.TerminalResult{}, domain.ErrSessionFinished
	}
	if execErr != nil {
		c.notice = execErr.Error()
		c.broadcastLocked()
		return domain.TerminalResult{}, execErr
	}
	if c.tracker.Current() == index {
		run := result
		c.lastRun = &run
		c.terminal = &run
		c.notice = ""
	}
	c.broadcastLocked()
	return result, nil
}

// Submit commits the current question. It is refused unless the latest run on this
// question passed every test; a fully passing submission marks the question answered.
func (c *Controller) Submit(ctx context.Context, source, language string) (domain.TerminalResult, error) {
	index, question, err := c.reserveExecution(true)
	if err != nil {
		return domain.TerminalResult{}, err
	}

	result, execErr := c.exec.Submit(ctx, source, language, question.ID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.executing = false
	if c.phase != domain.PhaseInProgress {
		c.log.Debug().Str("question_id", question.ID).Msg("discarding submit result after contest ended")
		c.broadcastLocked()
		return domain.TerminalResult{}, domain.ErrSessionFinished
	}
	if execErr != nil {
		c.notice = execErr.Error()
		c.broadcastLocked()
		return domain.TerminalResult{}, execErr
	}
	if result.AllPassed() {
		_ = c.tracker.MarkAnswered(index)
	}
	if c.tracker.Current() == index {
		sub := result
		c.terminal = &sub
		c.notice = ""
	}
	c.broadcastLocked()
	return result, nil
}

func (c *Controller) reserveExecution(submit bool) (int, domain.Question, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireInProgressLocked(); err != nil {
		return 0, domain.Question{}, err
	}
	if c.executing {
		return 0, domain.Question{}, domain.ErrExecutionPending
	}
	if submit && (c.lastRun == nil || !c.lastRun.AllPassed()) {
		c.notice = "some test cases failed, run until every test passes before submitting"
		c.broadcastLocked()
		return 0, domain.Question{}, domain.ErrSubmitRefused
	}
	index := c.tracker.Current()
	question, err := c.tracker.Question(index)
	if err != nil {
		return 0, domain.Question{}, err
	}
	c.executing = true
	c.broadcastLocked()
	return index, question, nil
}

// MarkSolved flags the current question as done without grading it.
func (c *Controller) MarkSolved() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireInProgressLocked(); err != nil {
		return err
	}
	if err := c.tracker.MarkAnswered(c.tracker.Current()); err != nil {
		return err
	}
	c.broadcastLocked()
	return nil
}

// CloseTerminal hides the terminal panel. The last run still gates submission.
func (c *Controller) CloseTerminal() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireInProgressLocked(); err != nil {
		return err
	}
	c.terminal = nil
	c.broadcastLocked()
	return nil
}

// Tick delivers one second of countdown.
func (c *Controller) Tick() error {
	return c.Advance(1)
}

// Advance delivers n seconds of countdown, charging them to the current question.
// Reaching zero finishes the contest regardless of pending work.
func (c *Controller) Advance(seconds int) error {
	c.mu.Lock()
	if err := c.requireInProgressLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	before := c.timer.TimeLeft()
	left, expired := c.timer.Advance(seconds)
	_ = c.tracker.AddTime(c.tracker.Current(), before-left)

	var notify func()
	if expired {
		c.log.Info().Msg("time expired, contest finished")
		notify = c.finishLocked("expired")
	}
	c.broadcastLocked()
	c.mu.Unlock()

	if notify != nil {
		notify()
	}
	return nil
}

// SubmitContest ends the contest early.
func (c *Controller) SubmitContest() (domain.Summary, error) {
	c.mu.Lock()
	if err := c.requireInProgressLocked(); err != nil {
		c.mu.Unlock()
		return domain.Summary{}, err
	}
	c.timer.Cancel()
	notify := c.finishLocked("submitted")
	summary := *c.summary
	c.log.Info().Int("answered", summary.AnsweredCount).Msg("contest submitted")
	c.broadcastLocked()
	c.mu.Unlock()

	notify()
	return summary, nil
}

// Abandon finishes an attempt whose contestant left mid-contest, scoring it as it
// stands. It reports false when the contest was not in progress.
func (c *Controller) Abandon() (domain.Summary, bool) {
	c.mu.Lock()
	if c.phase != domain.PhaseInProgress {
		c.mu.Unlock()
		return domain.Summary{}, false
	}
	notify := c.finishLocked("abandoned")
	summary := *c.summary
	c.log.Info().Int("answered", summary.AnsweredCount).Msg("contest abandoned")
	c.broadcastLocked()
	c.mu.Unlock()

	notify()
	return summary, true
}

// OnFinished registers fn to receive the summary once. If the contest already
// finished, fn is called immediately.
func (c *Controller) OnFinished(fn func(domain.Summary)) {
	c.mu.Lock()
	if c.summary != nil {
		summary := *c.summary
		c.mu.Unlock()
		fn(summary)
		return
	}
	c.onFinished = append(c.onFinished, fn)
	c.mu.Unlock()
}

// Done is closed when the contest reaches Finished.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Summary returns the final report once the contest has finished.
func (c *Controller) Summary() (domain.Summary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.summary == nil {
		return domain.Summary{}, false
	}
	return *c.summary, true
}

func (c *Controller) Phase() domain.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Camera exposes the gate for inspection.
func (c *Controller) Camera() *CameraGate {
	return c.camera
}

// Snapshot returns a read-only copy of the session.
func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe returns a channel of snapshots, starting with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (c *Controller) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	c.mu.Lock()
	c.subscribers[ch] = struct{}{}
	ch <- c.snapshotLocked()
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

// Close stops the countdown pump and releases subscribers without changing the phase.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopPump != nil {
		c.stopPump()
		c.stopPump = nil
	}
	for ch := range c.subscribers {
		delete(c.subscribers, ch)
		close(ch)
	}
}

func (c *Controller) requireInProgressLocked() error {
	switch c.phase {
	case domain.PhaseFinished:
		return domain.ErrSessionFinished
	case domain.PhaseAwaitingCamera:
		return domain.ErrNotInProgress
	}
	return nil
}

// finishLocked moves to Finished and returns the notification to run after unlocking.
func (c *Controller) finishLocked(reason string) func() {
	c.phase = domain.PhaseFinished
	if c.stopPump != nil {
		c.stopPump()
		c.stopPump = nil
	}
	c.timer.Cancel()
	summary := Summarize(c.tracker.Questions(), c.tracker.Progress(), c.timer.Initial(), c.timer.TimeLeft())
	c.summary = &summary
	close(c.done)
	observability.SessionsFinished().WithLabelValues(reason).Inc()

	handlers := c.onFinished
	c.onFinished = nil
	return func() {
		for _, fn := range handlers {
			fn(summary)
		}
	}
}

func (c *Controller) broadcastLocked() {
	snap := c.snapshotLocked()
	for ch := range c.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so a slow reader never blocks the session.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (c *Controller) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		ContestID:       c.contest.ID,
		Questions:       c.tracker.Questions(),
		Progress:        c.tracker.Progress(),
		CurrentIndex:    c.tracker.Current(),
		TimeLeftSeconds: c.timer.TimeLeft(),
		Phase:           c.phase,
		Camera:          c.camera.State(),
		Executing:       c.executing,
		Notice:          c.notice,
		AnsweredCount:   c.tracker.AnsweredCount(),
		UnansweredCount: c.tracker.UnansweredCount(),
	}
	if c.phase == domain.PhaseAwaitingCamera {
		snap.TimeLeftSeconds = c.contest.DurationSeconds
	}
	if c.terminal != nil {
		t := *c.terminal
		snap.Terminal = &t
	}
	return snap
}
