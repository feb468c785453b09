package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_Do(t *testing.T) {
	var g SingleFlight[string]
	var counter int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err, _ := g.Do(context.Background(), "matches-key", func() (string, error) {
				atomic.AddInt32(&counter, 1)
				time.Sleep(20 * time.Millisecond)
				return "ok", nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
			if v != "ok" {
				t.Errorf("unexpected value %q", v)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&counter); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
	if g.Pending("matches-key") {
		t.Fatalf("expected registration to be removed after completion")
	}
}

func TestSingleFlight_ErrorIsSharedAndNotRetained(t *testing.T) {
	var g SingleFlight[int]
	boom := errors.New("boom")

	release := make(chan struct{})
	leaderDone := make(chan error, 1)
	go func() {
		_, err, _ := g.Do(context.Background(), "k", func() (int, error) {
			<-release
			return 0, boom
		})
		leaderDone <- err
	}()

	waitFor(t, func() bool { return g.Pending("k") })

	followerDone := make(chan error, 1)
	go func() {
		_, err, shared := g.Do(context.Background(), "k", func() (int, error) {
			t.Errorf("follower must not run its own fn")
			return 0, nil
		})
		if !shared {
			t.Errorf("expected follower result to be shared")
		}
		followerDone <- err
	}()

	waitFor(t, func() bool { return g.Waiters("k") == 1 })
	close(release)

	if err := <-leaderDone; !errors.Is(err, boom) {
		t.Fatalf("leader error = %v, want boom", err)
	}
	if err := <-followerDone; !errors.Is(err, boom) {
		t.Fatalf("follower error = %v, want boom", err)
	}

	var calls int
	v, err, _ := g.Do(context.Background(), "k", func() (int, error) {
		calls++
		return 7, nil
	})
	if err != nil || v != 7 || calls != 1 {
		t.Fatalf("retry after failure: v=%d err=%v calls=%d", v, err, calls)
	}
}

func TestSingleFlight_WaiterContextCancel(t *testing.T) {
	var g SingleFlight[string]

	release := make(chan struct{})
	go func() {
		_, _, _ = g.Do(context.Background(), "k", func() (string, error) {
			<-release
			return "late", nil
		})
	}()
	waitFor(t, func() bool { return g.Pending("k") })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err, _ := g.Do(ctx, "k", func() (string, error) { return "", nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !g.Pending("k") {
		t.Fatalf("cancelled waiter must not tear down the shared call")
	}
	close(release)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}
