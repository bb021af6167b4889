package lockfile

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestLock(t *testing.T) (*Lock, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vlanhal.lock")
	l, err := New(path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l, path
}

func TestTryAcquireRelease(t *testing.T) {
	l, _ := newTestLock(t)

	ok, err := l.TryAcquire()
	if err != nil {
		t.Fatalf("TryAcquire() error: %v", err)
	}
	if !ok {
		t.Fatal("expected to acquire uncontended lock")
	}
	if err := l.Release(); err != nil {
		t.Fatalf("Release() error: %v", err)
	}
}

func TestContention(t *testing.T) {
	l1, path := newTestLock(t)

	// A second open file description on the same path contends like
	// another process would.
	l2, err := New(path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer l2.Close()

	if ok, _ := l1.TryAcquire(); !ok {
		t.Fatal("first lock should acquire")
	}
	ok, err := l2.TryAcquire()
	if err != nil {
		t.Fatalf("TryAcquire() error: %v", err)
	}
	if ok {
		t.Fatal("second lock should not acquire while first holds it")
	}

	if err := l1.Release(); err != nil {
		t.Fatalf("Release() error: %v", err)
	}
	if ok, _ := l2.TryAcquire(); !ok {
		t.Fatal("second lock should acquire after release")
	}
}

func TestAcquireBlocksUntilReleased(t *testing.T) {
	l1, path := newTestLock(t)
	l2, err := New(path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer l2.Close()

	if ok, _ := l1.TryAcquire(); !ok {
		t.Fatal("first lock should acquire")
	}

	done := make(chan error, 1)
	go func() {
		done <- l2.Acquire(context.Background())
	}()

	time.Sleep(50 * time.Millisecond)
	select {
	case err := <-done:
		t.Fatalf("Acquire returned %v while lock was held", err)
	default:
	}

	if err := l1.Release(); err != nil {
		t.Fatalf("Release() error: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Acquire() error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Acquire did not return after release")
	}
}

func TestAcquireHonorsContext(t *testing.T) {
	l1, path := newTestLock(t)
	l2, err := New(path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer l2.Close()

	if ok, _ := l1.TryAcquire(); !ok {
		t.Fatal("first lock should acquire")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := l2.Acquire(ctx); err == nil {
		t.Fatal("expected context error while lock is held")
	}
}
