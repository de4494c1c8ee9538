package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestPerformRunsAfterDelay(t *testing.T) {
	d := New(20 * time.Millisecond)
	fired := make(chan struct{})
	d.Perform(func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("debounced function never ran")
	}
}

func TestBurstCollapsesToLastCall(t *testing.T) {
	d := New(50 * time.Millisecond)
	var ran atomic.Int32
	var last atomic.Int32
	done := make(chan struct{})

	for i := 1; i <= 5; i++ {
		i := i
		d.Perform(func() {
			ran.Add(1)
			last.Store(int32(i))
			close(done)
		})
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("debounced function never ran")
	}
	// Give any stray earlier timers a chance to misfire.
	time.Sleep(100 * time.Millisecond)

	if got := ran.Load(); got != 1 {
		t.Errorf("functions ran = %d, want 1", got)
	}
	if got := last.Load(); got != 5 {
		t.Errorf("function that ran = %d, want 5", got)
	}
}

func TestStopCancelsPending(t *testing.T) {
	d := New(20 * time.Millisecond)
	var ran atomic.Int32
	d.Perform(func() { ran.Add(1) })
	d.Stop()

	time.Sleep(100 * time.Millisecond)
	if got := ran.Load(); got != 0 {
		t.Errorf("functions ran = %d after Stop, want 0", got)
	}
}
