package contest

import (
	"context"
	"fmt"
	"sync"

	"contest-session-service/internal/domain"
)

// MediaStream is a capture stream acquired while probing the camera.
type MediaStream interface {
	Release()
}

// CameraProvider asks the contestant's device for video capture permission.
// A nil stream with a nil error is a valid grant.
type CameraProvider interface {
	RequestVideoPermission(ctx context.Context) (MediaStream, error)
}

// CameraGate tracks the permission lifecycle of the proctoring feed.
// The probe only checks liveness, so any stream it obtains is released right away.
type CameraGate struct {
	provider CameraProvider

	mu        sync.Mutex
	state     domain.CameraPermissionState
	inFlight  bool
	history   []domain.CameraPermissionState
	onGranted func()
	onDenied  func(error)
}

func NewCameraGate(provider CameraProvider) *CameraGate {
	return &CameraGate{
		provider: provider,
		state:    domain.CameraPending,
		history:  []domain.CameraPermissionState{domain.CameraPending},
	}
}

// OnGranted registers the hook fired the one time the gate opens.
func (g *CameraGate) OnGranted(fn func()) {
	g.mu.Lock()
	g.onGranted = fn
	g.mu.Unlock()
}

// OnDenied registers the hook fired on every refused probe.
func (g *CameraGate) OnDenied(fn func(error)) {
	g.mu.Lock()
	g.onDenied = fn
	g.mu.Unlock()
}

// RequestPermission probes the camera. It is a no-op while granted or while a probe is outstanding.
// From Denied it reports the denial again; callers use Retry to probe once more.
func (g *CameraGate) RequestPermission(ctx context.Context) (domain.CameraPermissionState, error) {
	g.mu.Lock()
	switch {
	case g.state == domain.CameraGranted || g.inFlight:
		state := g.state
		g.mu.Unlock()
		return state, nil
	case g.state == domain.CameraDenied:
		g.mu.Unlock()
		return domain.CameraDenied, domain.ErrPermissionDenied
	}
	g.inFlight = true
	g.mu.Unlock()

	stream, err := g.provider.RequestVideoPermission(ctx)
	if stream != nil {
		stream.Release()
	}

	g.mu.Lock()
	g.inFlight = false
	if err != nil {
		g.setLocked(domain.CameraDenied)
		hook := g.onDenied
		g.mu.Unlock()
		if hook != nil {
			hook(err)
		}
		return domain.CameraDenied, fmt.Errorf("%w: %w", domain.ErrPermissionDenied, err)
	}
	g.setLocked(domain.CameraGranted)
	hook := g.onGranted
	g.mu.Unlock()
	if hook != nil {
		hook()
	}
	return domain.CameraGranted, nil
}

// Retry resets a denied gate to Pending and probes again.
func (g *CameraGate) Retry(ctx context.Context) (domain.CameraPermissionState, error) {
	g.mu.Lock()
	if g.state != domain.CameraDenied || g.inFlight {
		state := g.state
		g.mu.Unlock()
		return state, domain.ErrInvalidRetry
	}
	g.setLocked(domain.CameraPending)
	g.mu.Unlock()
	return g.RequestPermission(ctx)
}

// State returns the current permission state.
func (g *CameraGate) State() domain.CameraPermissionState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Requesting reports whether a probe is outstanding.
func (g *CameraGate) Requesting() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight
}

// History returns every state the gate has entered, oldest first.
func (g *CameraGate) History() []domain.CameraPermissionState {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]domain.CameraPermissionState, len(g.history))
	copy(out, g.history)
	return out
}

func (g *CameraGate) setLocked(state domain.CameraPermissionState) {
	g.state = state
	g.history = append(g.history, state)
}
