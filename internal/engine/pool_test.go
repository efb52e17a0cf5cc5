package engine

import (
	"context"
	"testing"
	"time"
)

func newTestPool(t *testing.T, size int) *Pool {
	t.Helper()
	pool, err := NewPool(newTestPlatform(t), Options{}, size)
	if err != nil {
		t.Fatalf("NewPool error = %v", err)
	}
	return pool
}

func TestPoolAcquireRelease(t *testing.T) {
	pool := newTestPool(t, 2)
	defer pool.Close()

	c, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire error = %v", err)
	}
	if got, err := c.Eval("40+2"); err != nil || got != int64(42) {
		t.Errorf("Eval = %#v, %v", got, err)
	}
	if err := pool.Release(c); err != nil {
		t.Errorf("Release error = %v", err)
	}

	stats := pool.Stats()
	if stats["available"] != 2 {
		t.Errorf("available = %v, want 2", stats["available"])
	}
}

func TestPoolEval(t *testing.T) {
	pool := newTestPool(t, 1)
	defer pool.Close()

	got, err := pool.Eval(context.Background(), "'pool'.length")
	if err != nil {
		t.Fatalf("Eval error = %v", err)
	}
	if got != int64(4) {
		t.Errorf("Eval = %#v, want 4", got)
	}

	// Pooled contexts are reused; the pool stays at full occupancy.
	if _, err := pool.Eval(context.Background(), "1"); err != nil {
		t.Fatalf("second Eval error = %v", err)
	}
	if pool.Stats()["available"] != 1 {
		t.Errorf("available = %v, want 1", pool.Stats()["available"])
	}
}

func TestPoolReplacesStoppedContext(t *testing.T) {
	pool := newTestPool(t, 1)
	defer pool.Close()

	c, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire error = %v", err)
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		c.Stop()
	}()
	if _, err := c.Eval("while(true) {}"); !IsKind(err, ScriptTerminated) {
		t.Fatalf("Eval error = %v, want ScriptTerminated", err)
	}
	if err := pool.Release(c); err != nil {
		t.Fatalf("Release error = %v", err)
	}

	// The replacement context must be usable.
	got, err := pool.Eval(context.Background(), "7*6")
	if err != nil {
		t.Fatalf("Eval on replacement error = %v", err)
	}
	if got != int64(42) {
		t.Errorf("Eval = %#v, want 42", got)
	}
}

func TestPoolClosed(t *testing.T) {
	pool := newTestPool(t, 1)
	if err := pool.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}

	if _, err := pool.Acquire(context.Background()); err != ErrPoolClosed {
		t.Errorf("Acquire error = %v, want ErrPoolClosed", err)
	}
	// Closing again is a no-op.
	if err := pool.Close(); err != nil {
		t.Errorf("second Close error = %v", err)
	}
}

func TestPoolAcquireCancellation(t *testing.T) {
	pool := newTestPool(t, 1)
	defer pool.Close()

	held, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire error = %v", err)
	}
	defer pool.Release(held)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := pool.Acquire(ctx); err != context.DeadlineExceeded {
		t.Errorf("Acquire error = %v, want context.DeadlineExceeded", err)
	}
}
