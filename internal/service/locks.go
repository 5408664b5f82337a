package service

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// UserLocks serializes mutating operations per user. Each user gets a
// weight-1 semaphore, so at most one write for that user is in flight while
// writes for other users proceed concurrently. Reads never take the lock.
type UserLocks struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

// NewUserLocks creates an empty lock table.
func NewUserLocks() *UserLocks {
	return &UserLocks{
		sems: make(map[string]*semaphore.Weighted),
	}
}

func (l *UserLocks) sem(userID string) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.sems[userID]
	if !ok {
		s = semaphore.NewWeighted(1)
		l.sems[userID] = s
	}
	return s
}

// Acquire blocks until the user's write slot is free or ctx is done.
// The returned release function must be called exactly once.
func (l *UserLocks) Acquire(ctx context.Context, userID string) (func(), error) {
	s := l.sem(userID)
	if err := s.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { s.Release(1) }, nil
}
