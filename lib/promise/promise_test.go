package promise

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestResolve(t *testing.T) {
	p, resolve, _ := New[int]()

	if p.Settled() {
		t.Errorf("Expected fresh promise to be unsettled")
	}

	resolve(42)

	value, err := p.Await(context.Background())
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if value != 42 {
		t.Errorf("Expected 42, got %d", value)
	}
	if !p.Settled() {
		t.Errorf("Expected promise to be settled after resolve")
	}
}

func TestReject(t *testing.T) {
	p, _, reject := New[int]()
	cause := errors.New("boom")
	reject(cause)

	_, err := p.Await(context.Background())
	if !errors.Is(err, cause) {
		t.Errorf("Expected rejection error, got %v", err)
	}
}

func TestSettleOnce(t *testing.T) {
	p, resolve, reject := New[string]()

	// only the first settlement wins, later ones are ignored
	resolve("first")
	resolve("second")
	reject(errors.New("too late"))

	value, err := p.Await(context.Background())
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if value != "first" {
		t.Errorf("Expected first settlement to win, got %q", value)
	}
}

func TestAwaitBlocksUntilSettled(t *testing.T) {
	p, resolve, _ := New[int]()

	go func() {
		time.Sleep(10 * time.Millisecond)
		resolve(7)
	}()

	value, err := p.Await(context.Background())
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if value != 7 {
		t.Errorf("Expected 7, got %d", value)
	}
}

func TestAwaitContextCancellation(t *testing.T) {
	p, _, _ := New[int]()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.Await(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context error for pending promise, got %v", err)
	}

	// the promise itself stays pending and can still settle
	if p.Settled() {
		t.Errorf("Expected promise to stay pending after a cancelled Await")
	}
}

func TestConcurrentAwait(t *testing.T) {
	p, resolve, _ := New[int]()

	const waiters = 16
	results := make([]int, waiters)
	var wg sync.WaitGroup
	wg.Add(waiters)
	for i := 0; i < waiters; i++ {
		go func(i int) {
			defer wg.Done()
			value, err := p.Await(context.Background())
			if err != nil {
				t.Errorf("Await failed: %v", err)
				return
			}
			results[i] = value
		}(i)
	}

	resolve(99)
	wg.Wait()

	for i, value := range results {
		if value != 99 {
			t.Errorf("Waiter %d got %d, expected 99", i, value)
		}
	}
}

func TestResolvedAndRejected(t *testing.T) {
	value, err := Resolved(5).Await(context.Background())
	if err != nil || value != 5 {
		t.Errorf("Expected resolved promise to yield 5, got %d (%v)", value, err)
	}

	cause := errors.New("boom")
	if _, err := Rejected[int](cause).Await(context.Background()); !errors.Is(err, cause) {
		t.Errorf("Expected rejected promise to yield the cause, got %v", err)
	}
}

func TestDone(t *testing.T) {
	p, resolve, _ := New[Void]()

	select {
	case <-p.Done():
		t.Fatalf("Expected Done channel to block while pending")
	default:
	}

	resolve(Void{})

	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatalf("Expected Done channel to be closed after settlement")
	}
}
