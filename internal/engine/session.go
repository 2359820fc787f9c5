// Package engine implements the recipe run state machine: it coordinates the
// timer registry and the step status store for one recipe at a time.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
	"github.com/hammamikhairi/ottocoach/internal/storage"
	"github.com/hammamikhairi/ottocoach/internal/timer"
)

// Option configures the session.
type Option func(*Session)

// WithScheduler sets the tick source for step timers. Defaults to a
// wall-clock timer.TickerScheduler.
func WithScheduler(s timer.Scheduler) Option {
	return func(sess *Session) {
		sess.sched = s
	}
}

// WithTickInterval sets the length of one timer tick. Defaults to one second.
func WithTickInterval(d time.Duration) Option {
	return func(sess *Session) {
		sess.tickInterval = d
	}
}

// WithNotifier sets where step and run completion messages go.
func WithNotifier(n domain.Notifier) Option {
	return func(sess *Session) {
		sess.notifier = n
	}
}

// Session owns one recipe run at a time. It depends only on the registry,
// the status store, and an optional notifier, and is fully testable with a
// timer.ManualScheduler.
type Session struct {
	log          *logger.Logger
	sched        timer.Scheduler
	tickInterval time.Duration
	notifier     domain.Notifier

	timers *timer.Registry
	status *storage.StatusStore

	mu     sync.Mutex
	recipe *domain.Recipe
	runID  string
	begun  time.Time
}

// New creates a session with no active run.
func New(log *logger.Logger, opts ...Option) *Session {
	s := &Session{
		log:          log,
		sched:        timer.TickerScheduler{},
		tickInterval: time.Second,
		status:       storage.NewStatusStore(log),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.timers = timer.NewRegistry(s.sched, log,
		timer.WithTickInterval(s.tickInterval),
		timer.WithCompletionHandler(s.handleCompletion),
	)
	return s
}

// Begin discards any previous run and starts tracking recipe. Every step
// starts NotStarted with no timer.
func (s *Session) Begin(recipe *domain.Recipe) error {
	if err := recipe.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recipe != nil {
		s.log.Info("discarding run %s (%d/%d steps completed)", s.runID,
			s.status.Counts()[domain.StepCompleted], s.status.Len())
	}

	s.timers.CancelAll()
	s.status.Reset(len(recipe.Steps))
	s.recipe = recipe
	s.runID = newRunID()
	s.begun = time.Now()

	s.log.Info("began run %s for %q (%d steps, ~%s)", s.runID, recipe.Title, len(recipe.Steps), recipe.TotalDuration())
	return nil
}

// StartStep starts the countdown for a step. A step that is already running
// is left alone and nil is returned, so a repeated start is harmless.
func (s *Session) StartStep(stepIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	step, err := s.stepLocked(stepIndex)
	if err != nil {
		return err
	}

	switch s.status.StatusOf(stepIndex) {
	case domain.StepRunning:
		s.log.Debug("run %s: step %d already running", s.runID, stepIndex)
		return nil
	case domain.StepCompleted:
		return fmt.Errorf("starting step %d: %w", stepIndex, domain.ErrStepCompleted)
	}

	if err := s.timers.Start(stepIndex, step.PlannedDurationSeconds); err != nil {
		return fmt.Errorf("starting step %d: %w", stepIndex, err)
	}
	if err := s.status.MarkRunning(stepIndex); err != nil {
		// Unreachable while the status checks above hold; keep the registry consistent anyway.
		s.timers.Cancel(stepIndex)
		s.log.Error("run %s: marking step %d running: %v", s.runID, stepIndex, err)
		return err
	}

	s.log.Debug("run %s: started step %d (%ds)", s.runID, stepIndex, step.PlannedDurationSeconds)
	return nil
}

// EndStep finishes a step early, whether or not its timer was started.
func (s *Session) EndStep(stepIndex int) error {
	s.mu.Lock()

	if _, err := s.stepLocked(stepIndex); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.status.StatusOf(stepIndex) == domain.StepCompleted {
		s.mu.Unlock()
		return fmt.Errorf("ending step %d: %w", stepIndex, domain.ErrStepCompleted)
	}

	title := s.recipe.Title
	runDone, err := s.endLocked(stepIndex)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if runDone {
		s.notify(false, runCompleteMessage(title))
	}
	return nil
}

// handleCompletion reacts to a finished countdown. Completions from a timer
// that has since been cancelled or replaced (a new run, an early end) are
// ignored by comparing generations.
func (s *Session) handleCompletion(c domain.Completion) {
	s.mu.Lock()

	if s.recipe == nil {
		s.mu.Unlock()
		return
	}
	snap, ok := s.timers.Snapshot(c.StepIndex)
	if !ok || snap.Generation != c.Generation {
		s.mu.Unlock()
		s.log.Debug("run %s: ignoring stale completion for step %d (gen=%d)", s.runID, c.StepIndex, c.Generation)
		return
	}
	if s.status.StatusOf(c.StepIndex) == domain.StepCompleted {
		s.mu.Unlock()
		return
	}

	step := s.recipe.Steps[c.StepIndex]
	title := s.recipe.Title
	runDone, err := s.endLocked(c.StepIndex)
	s.mu.Unlock()
	if err != nil {
		s.log.Error("completing step %d: %v", c.StepIndex, err)
		return
	}

	s.notify(true, fmt.Sprintf("[Timer] Step %d is done: %s", step.Index+1, step.Description))
	if runDone {
		s.notify(false, runCompleteMessage(title))
	}
}

// endLocked cancels the timer then marks the step completed. It reports
// whether this completed the run. Caller holds s.mu.
func (s *Session) endLocked(stepIndex int) (bool, error) {
	s.timers.Cancel(stepIndex)
	if err := s.status.MarkCompleted(stepIndex); err != nil {
		return false, fmt.Errorf("ending step %d: %w", stepIndex, err)
	}
	s.log.Debug("run %s: step %d completed", s.runID, stepIndex)

	done := s.status.AllCompleted()
	if done {
		s.log.Info("run %s complete after %s", s.runID, time.Since(s.begun).Round(time.Second))
	}
	return done, nil
}

// IsRunComplete reports whether every step of the current run is Completed.
func (s *Session) IsRunComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recipe == nil {
		return false
	}
	return s.status.AllCompleted()
}

// StatusOf returns the status of one step.
func (s *Session) StatusOf(stepIndex int) (domain.StepStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.stepLocked(stepIndex); err != nil {
		return domain.StepNotStarted, err
	}
	return s.status.StatusOf(stepIndex), nil
}

// View returns the presentation state of one step.
func (s *Session) View(stepIndex int) (domain.StepView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	step, err := s.stepLocked(stepIndex)
	if err != nil {
		return domain.StepView{}, err
	}
	return s.viewLocked(step), nil
}

// Steps returns the presentation state of every step, in order. Nil when no
// run is active.
func (s *Session) Steps() []domain.StepView {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recipe == nil {
		return nil
	}
	out := make([]domain.StepView, len(s.recipe.Steps))
	for i, step := range s.recipe.Steps {
		out[i] = s.viewLocked(step)
	}
	return out
}

func (s *Session) viewLocked(step domain.Step) domain.StepView {
	v := domain.StepView{
		Step:   step,
		Status: s.status.StatusOf(step.Index),
	}
	switch v.Status {
	case domain.StepCompleted:
		v.HasRemaining = true
	case domain.StepRunning:
		if snap, ok := s.timers.Snapshot(step.Index); ok {
			v.RemainingSeconds = snap.RemainingSeconds
			v.HasRemaining = true
		}
	}
	return v
}

// Recipe returns the recipe of the current run, or nil.
func (s *Session) Recipe() *domain.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recipe
}

// RunID returns the identifier of the current run, or "".
func (s *Session) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// RunningTimers returns how many step timers are still counting down.
func (s *Session) RunningTimers() int {
	return s.timers.Running()
}

// Close stops every timer. The session can be reused with Begin.
func (s *Session) Close() {
	s.timers.CancelAll()
}

func (s *Session) stepLocked(stepIndex int) (domain.Step, error) {
	if s.recipe == nil {
		return domain.Step{}, domain.ErrNoActiveRun
	}
	if stepIndex < 0 || stepIndex >= len(s.recipe.Steps) {
		return domain.Step{}, fmt.Errorf("step %d of %d: %w", stepIndex, len(s.recipe.Steps), domain.ErrStepOutOfRange)
	}
	return s.recipe.Steps[stepIndex], nil
}

// runCompleteMessage takes the title captured under s.mu; the run may have
// been replaced by the time the message is sent.
func runCompleteMessage(title string) string {
	if title == "" {
		return "All steps done. Enjoy your meal."
	}
	return fmt.Sprintf("All steps of %s done. Enjoy your meal.", title)
}

// notify is called without s.mu held; notifiers may be slow.
func (s *Session) notify(urgent bool, msg string) {
	if s.notifier == nil {
		return
	}
	ctx := context.Background()
	var err error
	if urgent {
		err = s.notifier.NotifyUrgent(ctx, msg)
	} else {
		err = s.notifier.Notify(ctx, msg)
	}
	if err != nil {
		s.log.Error("session: notify: %v", err)
	}
}
