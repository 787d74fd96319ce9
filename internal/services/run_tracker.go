package services

import (
	"sync"
	"time"

	"github.com/centuriocontact-dev/matching-interim-api/internal/dto"
)

// runTracker keeps the live state of the current matching run for the
// progress endpoint. One run at a time per process; a finished run's
// snapshot stays readable until the next one starts.
type runTracker struct {
	mu       sync.Mutex
	progress dto.RunProgress
}

func newRunTracker() *runTracker {
	return &runTracker{progress: dto.RunProgress{State: dto.RunStateIdle}}
}

func (t *runTracker) start(total int) {
	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.progress = dto.RunProgress{
		State:        dto.RunStateRunning,
		BesoinsTotal: total,
		StartedAt:    &now,
	}
}

func (t *runTracker) advance(besoinID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.progress.BesoinsTraites++
	t.progress.DernierBesoin = besoinID
}

func (t *runTracker) finish(failed bool) {
	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	if failed {
		t.progress.State = dto.RunStateFailed
	} else {
		t.progress.State = dto.RunStateCompleted
	}
	t.progress.FinishedAt = &now
}

func (t *runTracker) snapshot() dto.RunProgress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}
