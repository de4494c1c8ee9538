package flight

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDoCoalescesConcurrentCallers(t *testing.T) {
	var g Group[int]
	var executions atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})

	const callers = 8
	var wg sync.WaitGroup
	results := make([]int, callers)
	errs := make([]error, callers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = g.Do("op", func() (int, error) {
			executions.Add(1)
			close(started)
			<-release
			return 42, nil
		})
	}()
	<-started

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = g.Do("op", func() (int, error) {
				executions.Add(1)
				return 42, nil
			})
		}(i)
	}

	// Give the joiners time to attach to the in-flight call, then let the
	// leader finish.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := executions.Load(); n != 1 {
		t.Errorf("executions = %d, want 1", n)
	}
	for i := 0; i < callers; i++ {
		if results[i] != 42 || errs[i] != nil {
			t.Errorf("caller %d = (%d, %v), want (42, nil)", i, results[i], errs[i])
		}
	}
}

func TestDoReturnsSharedError(t *testing.T) {
	var g Group[string]
	wantErr := errors.New("boom")
	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		g.Do("op", func() (string, error) {
			close(started)
			<-release
			return "", wantErr
		})
	}()
	<-started

	var joinErr error
	done := make(chan struct{})
	go func() {
		_, joinErr = g.Do("op", func() (string, error) {
			return "fresh", nil
		})
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	close(release)
	<-done

	if !errors.Is(joinErr, wantErr) {
		t.Errorf("joined caller error = %v, want %v", joinErr, wantErr)
	}
}

func TestDoDistinctKeysRunIndependently(t *testing.T) {
	var g Group[int]
	blockA := make(chan struct{})
	startedA := make(chan struct{})

	go g.Do("a", func() (int, error) {
		close(startedA)
		<-blockA
		return 0, nil
	})
	<-startedA

	// "b" must not be blocked by the in-flight "a".
	got, err := g.Do("b", func() (int, error) { return 7, nil })
	if err != nil || got != 7 {
		t.Errorf("Do(b) = (%d, %v), want (7, nil)", got, err)
	}
	close(blockA)

	if g.InFlight("b") {
		t.Error("InFlight(b) = true after completion")
	}
}

func TestDoSequentialCallsExecuteEachTime(t *testing.T) {
	var g Group[int]
	var executions int
	for i := 0; i < 3; i++ {
		got, err := g.Do("op", func() (int, error) {
			executions++
			return executions, nil
		})
		if err != nil || got != i+1 {
			t.Fatalf("call %d = (%d, %v), want (%d, nil)", i, got, err, i+1)
		}
	}
	if executions != 3 {
		t.Errorf("executions = %d, want 3", executions)
	}
}
