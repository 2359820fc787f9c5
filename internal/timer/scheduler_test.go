package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestManualSchedulerRounds(t *testing.T) {
	m := NewManualScheduler()
	var a, b int

	stopA := m.Every(time.Second, func() { a++ })
	m.Every(time.Second, func() { b++ })

	m.Advance(3)
	if a != 3 || b != 3 {
		t.Fatalf("expected 3 ticks each, got a=%d b=%d", a, b)
	}

	stopA()
	stopA()
	m.Advance(2)
	if a != 3 || b != 5 {
		t.Fatalf("stopped source kept firing: a=%d b=%d", a, b)
	}
	if m.Live() != 1 {
		t.Fatalf("expected 1 live source, got %d", m.Live())
	}
}

func TestManualSchedulerStopDuringRound(t *testing.T) {
	m := NewManualScheduler()
	var second int
	var stopSecond func()

	m.Every(time.Second, func() { stopSecond() })
	stopSecond = m.Every(time.Second, func() { second++ })

	m.Advance(1)
	if second != 0 {
		t.Fatalf("source stopped earlier in the round must be skipped, fired %d", second)
	}
}

func TestManualSchedulerRegisterDuringRound(t *testing.T) {
	m := NewManualScheduler()
	var late int
	registered := false

	m.Every(time.Second, func() {
		if !registered {
			registered = true
			m.Every(time.Second, func() { late++ })
		}
	})

	m.Advance(1)
	if late != 0 {
		t.Fatalf("new source fired in the round it was added")
	}
	m.Advance(1)
	if late != 1 {
		t.Fatalf("expected late source to fire once, got %d", late)
	}
}

func TestTickerSchedulerStops(t *testing.T) {
	var n atomic.Int32
	stop := TickerScheduler{}.Every(time.Millisecond, func() { n.Add(1) })

	deadline := time.Now().Add(time.Second)
	for n.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatal("ticker never fired")
		}
		time.Sleep(time.Millisecond)
	}
	stop()
	stop()

	time.Sleep(5 * time.Millisecond)
	after := n.Load()
	time.Sleep(10 * time.Millisecond)
	if n.Load() > after {
		t.Fatalf("ticker kept firing after stop: %d -> %d", after, n.Load())
	}
}
