package timer

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
)

// collectingNotifier captures messages for assertions.
type collectingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *collectingNotifier) Notify(_ context.Context, msg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return nil
}

func (n *collectingNotifier) NotifyUrgent(_ context.Context, msg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return nil
}

func (n *collectingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

func (n *collectingNotifier) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.messages) == 0 {
		return ""
	}
	return n.messages[len(n.messages)-1]
}

// fakeSource is a hand-driven StepSource.
type fakeSource struct {
	runID string
	steps []domain.StepView
}

func (f *fakeSource) RunID() string            { return f.runID }
func (f *fakeSource) Steps() []domain.StepView { return f.steps }

func runningView(index, planned, remaining int) domain.StepView {
	return domain.StepView{
		Step:             domain.Step{Index: index, Description: "Simmer the sauce", PlannedDurationSeconds: planned},
		Status:           domain.StepRunning,
		RemainingSeconds: remaining,
		HasRemaining:     true,
	}
}

func newTestWatcher(src StepSource, n domain.Notifier) *Watcher {
	return NewWatcher(src, n, logger.New(logger.LevelOff, nil),
		WithWatchInterval(10*time.Millisecond),
		WithAlmostDoneThreshold(30*time.Second),
	)
}

func TestWatcherAlmostDoneReminder(t *testing.T) {
	notifier := &collectingNotifier{}
	src := &fakeSource{runID: "run-1", steps: []domain.StepView{runningView(0, 600, 200)}}
	w := newTestWatcher(src, notifier)
	ctx := context.Background()

	w.check(ctx)
	if notifier.count() != 0 {
		t.Fatalf("expected no reminder with 200s left, got %q", notifier.last())
	}

	src.steps[0].RemainingSeconds = 25
	w.check(ctx)
	if notifier.count() != 1 {
		t.Fatalf("expected 1 reminder, got %d", notifier.count())
	}
	if msg := notifier.last(); !strings.Contains(msg, "Step 1 is almost done") || !strings.Contains(msg, "25s") {
		t.Fatalf("unexpected reminder: %q", msg)
	}

	src.steps[0].RemainingSeconds = 10
	w.check(ctx)
	if notifier.count() != 1 {
		t.Fatalf("reminder must be sent once per step, got %d", notifier.count())
	}
}

func TestWatcherSkipsShortSteps(t *testing.T) {
	notifier := &collectingNotifier{}
	src := &fakeSource{runID: "run-1", steps: []domain.StepView{runningView(0, 60, 20)}}
	w := newTestWatcher(src, notifier)

	w.check(context.Background())
	if notifier.count() != 0 {
		t.Fatalf("expected no reminder for a 60s step, got %q", notifier.last())
	}
}

func TestWatcherIgnoresNonRunningSteps(t *testing.T) {
	notifier := &collectingNotifier{}
	done := runningView(0, 600, 0)
	done.Status = domain.StepCompleted
	idle := domain.StepView{Step: domain.Step{Index: 1, PlannedDurationSeconds: 600}}
	src := &fakeSource{runID: "run-1", steps: []domain.StepView{done, idle}}
	w := newTestWatcher(src, notifier)

	w.check(context.Background())
	if notifier.count() != 0 {
		t.Fatalf("expected silence, got %q", notifier.last())
	}
}

func TestWatcherResetsOnNewRun(t *testing.T) {
	notifier := &collectingNotifier{}
	src := &fakeSource{runID: "run-1", steps: []domain.StepView{runningView(0, 600, 20)}}
	w := newTestWatcher(src, notifier)
	ctx := context.Background()

	w.check(ctx)
	src.runID = "run-2"
	w.check(ctx)
	if notifier.count() != 2 {
		t.Fatalf("expected a reminder per run, got %d", notifier.count())
	}
}

func TestWatcherQuietWithoutRun(t *testing.T) {
	notifier := &collectingNotifier{}
	w := newTestWatcher(&fakeSource{}, notifier)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	w.Run(ctx)

	if notifier.count() != 0 {
		t.Fatalf("expected no messages, got %d", notifier.count())
	}
}

func TestWatcherHonoursTickLength(t *testing.T) {
	notifier := &collectingNotifier{}
	// 100ms ticks: a 3s threshold is 30 ticks, and 600 ticks is a minute.
	src := &fakeSource{runID: "run-1", steps: []domain.StepView{runningView(0, 600, 40)}}
	w := NewWatcher(src, notifier, logger.New(logger.LevelOff, nil),
		WithAlmostDoneThreshold(3*time.Second),
		WithTickLength(100*time.Millisecond),
	)
	ctx := context.Background()

	w.check(ctx)
	if notifier.count() != 0 {
		t.Fatalf("4s left is outside a 3s threshold, got %q", notifier.last())
	}

	src.steps[0].RemainingSeconds = 25
	w.check(ctx)
	if notifier.count() != 1 {
		t.Fatalf("expected 1 reminder, got %d", notifier.count())
	}
	if msg := notifier.last(); !strings.Contains(msg, "2.5s left") {
		t.Fatalf("reminder should show wall time, got %q", msg)
	}
}

func TestWatcherShortStepInTicks(t *testing.T) {
	notifier := &collectingNotifier{}
	// 50 ticks of 100ms is 5s, not more than twice a 3s threshold.
	src := &fakeSource{runID: "run-1", steps: []domain.StepView{runningView(0, 50, 10)}}
	w := NewWatcher(src, notifier, logger.New(logger.LevelOff, nil),
		WithAlmostDoneThreshold(3*time.Second),
		WithTickLength(100*time.Millisecond),
	)

	w.check(context.Background())
	if notifier.count() != 0 {
		t.Fatalf("expected no reminder for a 5s step, got %q", notifier.last())
	}
}
