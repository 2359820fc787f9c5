package timer

import (
	"context"
	"fmt"
	"time"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
)

// StepSource is the read side of a recipe run, as seen by the watcher.
type StepSource interface {
	RunID() string
	Steps() []domain.StepView
}

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithWatchInterval sets how often the watcher checks the run.
func WithWatchInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.interval = d
	}
}

// WithAlmostDoneThreshold sets how close to zero a countdown must be before
// the watcher reminds the user about it.
func WithAlmostDoneThreshold(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.threshold = d
	}
}

// WithTickLength sets the length of one countdown tick. Remaining and
// planned counts from the source are in ticks. Defaults to one second.
func WithTickLength(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.tick = d
	}
}

// Watcher periodically inspects the current run and sends a heads-up for
// running steps that are about to finish. Runs on a slower cycle than the
// timers themselves (default: 5 seconds).
type Watcher struct {
	source    StepSource
	notifier  domain.Notifier
	log       *logger.Logger
	interval  time.Duration
	threshold time.Duration
	tick      time.Duration

	// Only touched from Run's goroutine (or a test calling check directly).
	runID    string
	reminded map[int]bool
}

// NewWatcher creates a watcher with the given dependencies.
func NewWatcher(source StepSource, notifier domain.Notifier, log *logger.Logger, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		source:    source,
		notifier:  notifier,
		log:       log,
		interval:  5 * time.Second,
		threshold: 30 * time.Second,
		tick:      time.Second,
		reminded:  make(map[int]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.tick <= 0 {
		w.tick = time.Second
	}
	return w
}

// Run starts the watcher loop. Blocks until ctx is cancelled.
// Intended to be called as a goroutine.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("watcher started (interval=%s, threshold=%s, tick=%s)", w.interval, w.threshold, w.tick)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("watcher stopped")
			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

// check runs one watcher cycle.
func (w *Watcher) check(ctx context.Context) {
	runID := w.source.RunID()
	if runID == "" {
		return
	}
	if runID != w.runID {
		w.runID = runID
		w.reminded = make(map[int]bool)
	}

	thresholdTicks := int(w.threshold / w.tick)
	running := 0

	for _, v := range w.source.Steps() {
		if v.Status != domain.StepRunning || !v.HasRemaining {
			continue
		}
		running++

		w.log.Debug("watcher: step %d running, %d of %d ticks left",
			v.Step.Index+1, v.RemainingSeconds, v.Step.PlannedDurationSeconds)

		if w.reminded[v.Step.Index] {
			continue
		}
		// Short steps would get a reminder almost as soon as they start.
		if v.Step.PlannedDurationSeconds <= 2*thresholdTicks {
			continue
		}
		if v.RemainingSeconds > thresholdTicks {
			continue
		}

		w.reminded[v.Step.Index] = true
		msg := fmt.Sprintf("[Watcher] Step %d is almost done (%s left): %s",
			v.Step.Index+1, (time.Duration(v.RemainingSeconds) * w.tick).String(), v.Step.Description)
		if err := w.notifier.Notify(ctx, msg); err != nil {
			w.log.Error("watcher: notify: %v", err)
		}
	}

	if running == 0 {
		w.log.Debug("watcher: run %s has no running timers", shortID(runID))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
