package contest

import (
	"context"
	"time"
)

// Clock is the time source behind the contest countdown.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers tick times until stopped.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

// SystemClock returns a Clock backed by the time package.
func SystemClock() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s systemTicker) Chan() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()                  { s.t.Stop() }

// Pump turns clock ticks into whole-second advances measured from the pump's start,
// so a late or coalesced tick advances by every second that passed.
// It returns when ctx is done or advance reports false.
func Pump(ctx context.Context, clock Clock, advance func(seconds int) bool) {
	start := clock.Now()
	delivered := 0
	ticker := clock.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.Chan():
			elapsed := int(now.Sub(start) / time.Second)
			n := elapsed - delivered
			if n <= 0 {
				continue
			}
			delivered = elapsed
			if !advance(n) {
				return
			}
		}
	}
}
