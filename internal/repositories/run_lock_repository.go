package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"sync"

	"gorm.io/gorm"
)

// RunLockRepository serializes matching runs per besoin across
// processes. Backed by postgres advisory locks, so a crashed run
// releases its locks with its session.
type RunLockRepository interface {
	// TryAcquire returns false without blocking when another run holds
	// the besoin.
	TryAcquire(ctx context.Context, besoinID string) (bool, error)
	Release(ctx context.Context, besoinID string) error
}

type RunLockRepositoryImpl struct {
	db *gorm.DB

	// advisory locks are session-scoped, so each held lock pins the
	// connection it was acquired on until Release.
	mu   sync.Mutex
	held map[string]*sql.Conn
}

func NewRunLockRepository(db *gorm.DB) RunLockRepository {
	return &RunLockRepositoryImpl{
		db:   db,
		held: make(map[string]*sql.Conn),
	}
}

// lockKey folds the besoin uuid into the int64 keyspace advisory locks
// use. Collisions only cause spurious serialization, never corruption.
func lockKey(besoinID string) int64 {
	h := fnv.New64a()
	h.Write([]byte("matching_run:" + besoinID))
	return int64(h.Sum64())
}

func (r *RunLockRepositoryImpl) TryAcquire(ctx context.Context, besoinID string) (bool, error) {
	r.mu.Lock()
	if _, ok := r.held[besoinID]; ok {
		r.mu.Unlock()
		return false, nil
	}
	r.mu.Unlock()

	sqlDB, err := r.db.DB()
	if err != nil {
		return false, err
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return false, err
	}

	var acquired bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", lockKey(besoinID)).Scan(&acquired); err != nil {
		conn.Close()
		return false, err
	}
	if !acquired {
		conn.Close()
		return false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.held[besoinID]; ok {
		// lost the local race; give the lock back
		var released bool
		_ = conn.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", lockKey(besoinID)).Scan(&released)
		conn.Close()
		return false, nil
	}
	r.held[besoinID] = conn
	return true, nil
}

func (r *RunLockRepositoryImpl) Release(ctx context.Context, besoinID string) error {
	r.mu.Lock()
	conn, ok := r.held[besoinID]
	delete(r.held, besoinID)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("no lock held for besoin %s", besoinID)
	}
	defer conn.Close()

	var released bool
	return conn.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", lockKey(besoinID)).Scan(&released)
}
