// Package timer implements the per-step countdown registry and the
// background watcher that reminds the user about timers close to done.
package timer

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
)

// CompletionHandler receives a Completion once per finished countdown.
// It is called without the registry lock held, so it may call back into
// the registry.
type CompletionHandler func(domain.Completion)

// Option configures the registry.
type Option func(*Registry)

// WithTickInterval sets how long one tick lasts. Defaults to one second.
func WithTickInterval(d time.Duration) Option {
	return func(r *Registry) {
		r.tickInterval = d
	}
}

// WithCompletionHandler sets the function notified when a countdown finishes.
func WithCompletionHandler(h CompletionHandler) Option {
	return func(r *Registry) {
		r.onComplete = h
	}
}

// Registry owns one countdown per step index. Each countdown has its own
// periodic source on the shared Scheduler; ticks for different indices
// never wait on one another beyond the short critical section below.
type Registry struct {
	sched        Scheduler
	log          *logger.Logger
	tickInterval time.Duration
	onComplete   CompletionHandler

	mu      sync.Mutex
	timers  map[int]*entry
	lastGen uint64
}

type entry struct {
	state domain.TimerState
	stop  func()
}

// NewRegistry creates an empty registry ticking on sched.
func NewRegistry(sched Scheduler, log *logger.Logger, opts ...Option) *Registry {
	r := &Registry{
		sched:        sched,
		log:          log,
		tickInterval: time.Second,
		timers:       make(map[int]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start begins a countdown of durationSeconds ticks for stepIndex. Starting
// an index whose timer is still running is a no-op; a restart must Cancel first.
func (r *Registry) Start(stepIndex, durationSeconds int) error {
	if durationSeconds <= 0 {
		return fmt.Errorf("step %d: %w (got %d)", stepIndex, domain.ErrInvalidDuration, durationSeconds)
	}
	if stepIndex < 0 {
		return fmt.Errorf("step %d: %w", stepIndex, domain.ErrStepOutOfRange)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.timers[stepIndex]; ok {
		if e.state.Running {
			r.log.Debug("timer: step %d already running (gen=%d), ignoring start", stepIndex, e.state.Generation)
			return nil
		}
		// A finished countdown nobody cleared yet. Replace it.
		e.stop()
	}

	r.lastGen++
	gen := r.lastGen
	e := &entry{
		state: domain.TimerState{
			StepIndex:        stepIndex,
			RemainingSeconds: durationSeconds,
			Running:          true,
			Generation:       gen,
		},
	}
	r.timers[stepIndex] = e
	e.stop = r.sched.Every(r.tickInterval, func() {
		r.tick(stepIndex, gen)
	})

	r.log.Debug("timer: started step %d for %ds (gen=%d)", stepIndex, durationSeconds, gen)
	return nil
}

// tick advances the countdown for stepIndex by one. Ticks from a source that
// has since been cancelled or replaced carry an old generation and are dropped.
func (r *Registry) tick(stepIndex int, gen uint64) {
	r.mu.Lock()

	e, ok := r.timers[stepIndex]
	if !ok || e.state.Generation != gen || !e.state.Running {
		r.mu.Unlock()
		r.log.Debug("timer: dropped stale tick for step %d (gen=%d)", stepIndex, gen)
		return
	}

	if e.state.RemainingSeconds > 1 {
		e.state.RemainingSeconds--
		r.mu.Unlock()
		return
	}

	e.state.RemainingSeconds = 0
	e.state.Running = false
	e.stop()
	handler := r.onComplete
	r.mu.Unlock()

	r.log.Debug("timer: step %d finished (gen=%d)", stepIndex, gen)
	if handler != nil {
		handler(domain.Completion{StepIndex: stepIndex, Generation: gen})
	}
}

// Cancel stops and removes the timer for stepIndex. Safe on a missing timer.
func (r *Registry) Cancel(stepIndex int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.timers[stepIndex]
	if !ok {
		return
	}
	e.stop()
	delete(r.timers, stepIndex)
	r.log.Debug("timer: cancelled step %d (gen=%d, remaining=%ds)", stepIndex, e.state.Generation, e.state.RemainingSeconds)
}

// CancelAll stops and removes every timer.
func (r *Registry) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.timers {
		e.stop()
	}
	if n := len(r.timers); n > 0 {
		r.log.Debug("timer: cancelled %d timer(s)", n)
	}
	r.timers = make(map[int]*entry)
}

// Snapshot returns a copy of the timer state for stepIndex.
func (r *Registry) Snapshot(stepIndex int) (domain.TimerState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.timers[stepIndex]
	if !ok {
		return domain.TimerState{}, false
	}
	return e.state, true
}

// Snapshots returns copies of all timer states ordered by step index.
func (r *Registry) Snapshots() []domain.TimerState {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.TimerState, 0, len(r.timers))
	for _, e := range r.timers {
		out = append(out, e.state)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StepIndex < out[j].StepIndex })
	return out
}

// Running returns how many countdowns are still ticking.
func (r *Registry) Running() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.timers {
		if e.state.Running {
			n++
		}
	}
	return n
}
