package http

import (
	"context"
	"errors"
	"sync"

	"contest-session-service/internal/contest"
)

var errCameraUnavailable = errors.New("camera unavailable")

// wsCamera asks the browser for camera access over the socket and waits for its
// camera message. Only one probe can be outstanding; answers with no probe waiting are rejected.
type wsCamera struct {
	send func(outboundMessage[any]) bool

	mu      sync.Mutex
	pending chan cameraPayload
}

func newWSCamera(send func(outboundMessage[any]) bool) *wsCamera {
	return &wsCamera{send: send}
}

func (c *wsCamera) RequestVideoPermission(ctx context.Context) (contest.MediaStream, error) {
	ch := make(chan cameraPayload, 1)
	c.mu.Lock()
	c.pending = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		if c.pending == ch {
			c.pending = nil
		}
		c.mu.Unlock()
	}()

	if !c.send(outboundMessage[any]{Type: msgCameraRequest, Payload: struct{}{}}) {
		return nil, errCameraUnavailable
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case answer := <-ch:
		if !answer.Granted {
			if answer.Reason != "" {
				return nil, errors.New(answer.Reason)
			}
			return nil, errCameraUnavailable
		}
		return &wsStream{send: c.send}, nil
	}
}

// answer delivers the browser's verdict to the waiting probe.
func (c *wsCamera) answer(p cameraPayload) bool {
	c.mu.Lock()
	ch := c.pending
	c.pending = nil
	c.mu.Unlock()
	if ch == nil {
		return false
	}
	ch <- p
	return true
}

// wsStream tells the browser to stop the probe's tracks.
type wsStream struct {
	send func(outboundMessage[any]) bool
}

func (s *wsStream) Release() {
	s.send(outboundMessage[any]{Type: msgCameraRelease, Payload: struct{}{}})
}
