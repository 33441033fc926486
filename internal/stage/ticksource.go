package stage

import (
	"sync"
	"time"
)

// TickSource delivers the periodic clock that drives stage animation. The
// stage starts it when a transition begins and stops it when the last
// transition completes; implementations must tolerate redundant calls.
type TickSource interface {
	Start(fn func(now time.Time))
	Stop()
}

// TickerSource is a time.Ticker backed TickSource. Callbacks run on the
// ticker goroutine; callers that own state on another goroutine must hop
// back themselves.
type TickerSource struct {
	Interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

// NewTickerSource returns a source ticking at the given frame rate.
func NewTickerSource(fps int) *TickerSource {
	if fps <= 0 {
		fps = 60
	}
	return &TickerSource{Interval: time.Second / time.Duration(fps)}
}

// Start begins ticking. A running source is restarted with the new callback.
func (t *TickerSource) Start(fn func(now time.Time)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		close(t.stop)
	}
	stop := make(chan struct{})
	t.stop = stop

	ticker := time.NewTicker(t.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				fn(now)
			}
		}
	}()
}

// Stop halts ticking. Safe to call when not running.
func (t *TickerSource) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

// ManualSource is a TickSource pumped by its owner, used where ticks already
// arrive through an event loop (the HUD program) and in tests.
type ManualSource struct {
	fn func(time.Time)
}

// Start records the callback.
func (m *ManualSource) Start(fn func(now time.Time)) { m.fn = fn }

// Stop clears the callback.
func (m *ManualSource) Stop() { m.fn = nil }

// Active reports whether the stage currently wants ticks.
func (m *ManualSource) Active() bool { return m.fn != nil }

// Pump delivers one tick if the source is active.
func (m *ManualSource) Pump(now time.Time) {
	if m.fn != nil {
		m.fn(now)
	}
}
