package migration

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMutexLocker(t *testing.T) {
	t.Parallel()

	l := NewMutexLocker()
	release, err := l.Acquire(context.Background(), "schema_migrations")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	// A different key is independent.
	other, err := l.Acquire(context.Background(), "other")
	if err != nil {
		t.Fatalf("Acquire(other) error = %v", err)
	}
	other()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Acquire(ctx, "schema_migrations"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Acquire while held error = %v, want deadline exceeded", err)
	}

	release()
	release() // second call is a no-op

	again, err := l.Acquire(context.Background(), "schema_migrations")
	if err != nil {
		t.Fatalf("Acquire after release error = %v", err)
	}
	again()
}

func TestMutexLocker_ZeroValue(t *testing.T) {
	t.Parallel()

	var l MutexLocker
	release, err := l.Acquire(context.Background(), "k")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	release()
}
