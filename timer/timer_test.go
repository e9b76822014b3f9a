package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestManager_ScheduleFires(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	fired := make(chan struct{})
	m.Schedule(10*time.Millisecond, 0, func() {
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled task never fired")
	}
}

func TestManager_CancelPreventsFiring(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	var fired int32
	id := m.Schedule(300*time.Millisecond, 0, func() {
		atomic.AddInt32(&fired, 1)
	})
	m.Cancel(id)

	time.Sleep(600 * time.Millisecond)
	if n := atomic.LoadInt32(&fired); n != 0 {
		t.Errorf("cancelled task fired %d times", n)
	}
}

func TestManager_IntervalRepeats(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	var fired int32
	id := m.Schedule(10*time.Millisecond, 60*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})

	time.Sleep(400 * time.Millisecond)
	m.Cancel(id)

	if n := atomic.LoadInt32(&fired); n < 2 {
		t.Errorf("interval task fired %d times, want at least 2", n)
	}
}

func TestManager_OrderByExecuteTime(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	order := make(chan string, 2)
	m.Schedule(200*time.Millisecond, 0, func() { order <- "late" })
	m.Schedule(10*time.Millisecond, 0, func() { order <- "early" })

	first := <-order
	if first != "early" {
		t.Errorf("first fired task = %q, want early", first)
	}
}

func TestManager_StopDropsPending(t *testing.T) {
	m := NewManager()

	var fired int32
	m.Schedule(100*time.Millisecond, 0, func() {
		atomic.AddInt32(&fired, 1)
	})
	m.Stop()

	time.Sleep(300 * time.Millisecond)
	if n := atomic.LoadInt32(&fired); n != 0 {
		t.Errorf("task fired %d times after Stop", n)
	}
}
