package timer

import (
	"sync"
	"time"
)

// Scheduler delivers periodic callbacks. Every registers fire to run once
// per interval until the returned stop function is called. A delivery that
// is already in flight when stop runs may still reach fire; callers must
// tolerate one late call.
type Scheduler interface {
	Every(interval time.Duration, fire func()) (stop func())
}

// TickerScheduler runs each source on its own goroutine driven by a
// time.Ticker. Sources never block one another.
type TickerScheduler struct{}

// Compile-time interface check.
var _ Scheduler = TickerScheduler{}

// Every starts a ticker goroutine for fire.
func (TickerScheduler) Every(interval time.Duration, fire func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fire()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

// ManualScheduler delivers ticks only when Advance is called. Each call to
// Advance runs whole rounds: every live source fires once per round, in
// registration order. Used by tests and anything that needs deterministic time.
type ManualScheduler struct {
	mu      sync.Mutex
	sources []*manualSource
}

type manualSource struct {
	fire    func()
	stopped bool
}

// Compile-time interface check.
var _ Scheduler = (*ManualScheduler)(nil)

// NewManualScheduler creates a scheduler with no sources.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Every registers fire. The interval is ignored; one round is one tick.
func (m *ManualScheduler) Every(_ time.Duration, fire func()) func() {
	src := &manualSource{fire: fire}

	m.mu.Lock()
	m.sources = append(m.sources, src)
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		src.stopped = true
		m.mu.Unlock()
	}
}

// Advance delivers n rounds of ticks. Sources registered during a round
// first fire in the next one; sources stopped during a round are skipped.
func (m *ManualScheduler) Advance(n int) {
	for i := 0; i < n; i++ {
		for _, src := range m.live() {
			m.mu.Lock()
			stopped := src.stopped
			m.mu.Unlock()
			if !stopped {
				src.fire()
			}
		}
	}
}

// Live returns the number of sources that have not been stopped.
func (m *ManualScheduler) Live() int {
	return len(m.live())
}

// live compacts the source list and returns a copy of the live sources.
func (m *ManualScheduler) live() []*manualSource {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.sources[:0]
	for _, src := range m.sources {
		if !src.stopped {
			kept = append(kept, src)
		}
	}
	m.sources = kept

	out := make([]*manualSource, len(kept))
	copy(out, kept)
	return out
}
