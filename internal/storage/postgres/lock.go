package postgres

import (
	"context"
	"fmt"

	"github.com/zeebo/xxh3"

	"migrator/internal/storage"
)

// AdvisoryLocker serializes migration runs across processes with a
// session-level pg_advisory_lock. The lock is held on a dedicated pooled
// connection until release is called.
type AdvisoryLocker struct {
	db *DB
}

// NewAdvisoryLocker returns a locker for db, which must be a postgres DB
// opened through this package.
func NewAdvisoryLocker(db storage.DB) (*AdvisoryLocker, error) {
	pg, ok := db.(*DB)
	if !ok {
		return nil, fmt.Errorf("postgres: advisory lock needs a postgres DB, got %T", db)
	}
	return &AdvisoryLocker{db: pg}, nil
}

// Acquire blocks until the advisory lock for key is held or ctx is done.
func (l *AdvisoryLocker) Acquire(ctx context.Context, key string) (func(), error) {
	c, err := l.db.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: acquire lock connection: %w", pgError(err))
	}
	id := LockID(key)
	if _, err := c.Exec(ctx, "SELECT pg_advisory_lock($1)", id); err != nil {
		c.Release()
		return nil, fmt.Errorf("postgres: pg_advisory_lock(%d): %w", id, pgError(err))
	}
	return func() {
		// Unlock with a fresh context so a cancelled run still frees the lock.
		_, _ = c.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", id)
		c.Release()
	}, nil
}

// LockID maps a lock key to the bigint advisory lock space.
func LockID(key string) int64 {
	return int64(xxh3.HashString(key))
}
