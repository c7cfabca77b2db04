package contest

import "sync"

// SessionTimer is a whole-second countdown that signals expiry exactly once.
type SessionTimer struct {
	mu       sync.Mutex
	initial  int
	left     int
	running  bool
	expired  bool
	canceled bool
	done     chan struct{}
}

func NewSessionTimer() *SessionTimer {
	return &SessionTimer{done: make(chan struct{})}
}

// Start arms the countdown. A timer starts at most once; later calls are ignored.
func (t *SessionTimer) Start(initialSeconds int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running || t.expired || t.canceled {
		return
	}
	if initialSeconds < 0 {
		initialSeconds = 0
	}
	t.initial = initialSeconds
	t.left = initialSeconds
	t.running = true
	if t.left == 0 {
		t.expireLocked()
	}
}

// Tick decrements the countdown by one second.
func (t *SessionTimer) Tick() (left int, expired bool) {
	return t.Advance(1)
}

// Advance decrements by n seconds, clamping at zero so catch-up after a stall
// still lands on the expiry signal. expired is true only on the call that hit zero.
func (t *SessionTimer) Advance(n int) (left int, expired bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running || n <= 0 {
		return t.left, false
	}
	t.left -= n
	if t.left <= 0 {
		t.left = 0
		t.expireLocked()
		return 0, true
	}
	return t.left, false
}

// Cancel stops the countdown without signalling expiry.
func (t *SessionTimer) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return false
	}
	t.running = false
	t.canceled = true
	return true
}

// Done is closed when the countdown reaches zero. It never closes after Cancel.
func (t *SessionTimer) Done() <-chan struct{} {
	return t.done
}

func (t *SessionTimer) TimeLeft() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.left
}

func (t *SessionTimer) Initial() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.initial
}

func (t *SessionTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *SessionTimer) Expired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expired
}

func (t *SessionTimer) expireLocked() {
	t.running = false
	t.expired = true
	close(t.done)
}
