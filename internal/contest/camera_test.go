package contest_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"contest-session-service/internal/contest"
	"contest-session-service/internal/domain"
)

func TestCameraGateGrantFiresOnce(t *testing.T) {
	camera := &scriptedCamera{}
	gate := contest.NewCameraGate(camera)
	granted := 0
	gate.OnGranted(func() { granted++ })

	state, err := gate.RequestPermission(context.Background())
	if err != nil || state != domain.CameraGranted {
		t.Fatalf("expected granted, got %v (%v)", state, err)
	}

	// Already granted: no second probe, no second event.
	state, err = gate.RequestPermission(context.Background())
	if err != nil || state != domain.CameraGranted {
		t.Fatalf("expected granted, got %v (%v)", state, err)
	}
	if granted != 1 || camera.calls != 1 {
		t.Fatalf("expected one grant from one probe, got %d grants and %d probes", granted, camera.calls)
	}
	if camera.releases() != 1 {
		t.Fatalf("probe stream must be released, got %d releases", camera.releases())
	}
}

func TestCameraGateDenialReleasesStreamAndAllowsRetry(t *testing.T) {
	camera := &scriptedCamera{script: []error{errCameraBlocked, nil}}
	gate := contest.NewCameraGate(camera)
	denied := 0
	gate.OnDenied(func(error) { denied++ })

	state, err := gate.RequestPermission(context.Background())
	if !errors.Is(err, domain.ErrPermissionDenied) || !errors.Is(err, errCameraBlocked) {
		t.Fatalf("expected denial wrapping the provider error, got %v", err)
	}
	if state != domain.CameraDenied || denied != 1 {
		t.Fatalf("expected one denial, got %v / %d", state, denied)
	}
	if camera.releases() != 1 {
		t.Fatalf("denied probe must still release, got %d", camera.releases())
	}

	state, err = gate.Retry(context.Background())
	if err != nil || state != domain.CameraGranted {
		t.Fatalf("expected retry to grant, got %v (%v)", state, err)
	}
	want := []domain.CameraPermissionState{
		domain.CameraPending, domain.CameraDenied, domain.CameraPending, domain.CameraGranted,
	}
	if got := gate.History(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected history %v, got %v", want, got)
	}
}

func TestCameraGateRetryOnlyFromDenied(t *testing.T) {
	gate := contest.NewCameraGate(&scriptedCamera{})

	if _, err := gate.Retry(context.Background()); !errors.Is(err, domain.ErrInvalidRetry) {
		t.Fatalf("expected invalid retry before any probe, got %v", err)
	}
	if _, err := gate.RequestPermission(context.Background()); err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := gate.Retry(context.Background()); !errors.Is(err, domain.ErrInvalidRetry) {
		t.Fatalf("expected invalid retry after grant, got %v", err)
	}
}

func TestCameraGateIgnoresRequestWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	camera := &blockingCamera{entered: entered, release: release}
	gate := contest.NewCameraGate(camera)

	done := make(chan domain.CameraPermissionState)
	go func() {
		state, _ := gate.RequestPermission(context.Background())
		done <- state
	}()
	<-entered
	if !gate.Requesting() {
		t.Fatalf("expected a probe in flight")
	}

	state, err := gate.RequestPermission(context.Background())
	if err != nil || state != domain.CameraPending {
		t.Fatalf("expected pending while in flight, got %v (%v)", state, err)
	}

	close(release)
	if got := <-done; got != domain.CameraGranted {
		t.Fatalf("expected granted, got %v", got)
	}
	if camera.calls != 1 {
		t.Fatalf("expected a single probe, got %d", camera.calls)
	}
}

type blockingCamera struct {
	entered chan struct{}
	release chan struct{}
	calls   int
}

func (c *blockingCamera) RequestVideoPermission(context.Context) (contest.MediaStream, error) {
	c.calls++
	c.entered <- struct{}{}
	<-c.release
	return nil, nil
}
