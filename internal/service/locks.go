package service

import (
	"context"
	"sync"
	"time"

	"wellbeing_backend/internal/util"
)

// StudentLocks serializes mutating work per student. Acquire waits at most
// the configured timeout and then fails with ErrStoreBusy so a stuck writer
// cannot wedge every caller behind it. Entries are reference counted and
// dropped once the last holder or waiter lets go, so the map tracks only
// students with work in flight.
type StudentLocks struct {
	mu      sync.Mutex
	locks   map[int64]*lockEntry
	timeout time.Duration
}

type lockEntry struct {
	ch   chan struct{}
	refs int
}

func NewStudentLocks(timeout time.Duration) *StudentLocks {
	return &StudentLocks{
		locks:   make(map[int64]*lockEntry),
		timeout: timeout,
	}
}

func (l *StudentLocks) retain(studentID int64) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.locks[studentID]
	if !ok {
		e = &lockEntry{ch: make(chan struct{}, 1)}
		l.locks[studentID] = e
	}
	e.refs++
	return e
}

func (l *StudentLocks) release(studentID int64, e *lockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, studentID)
	}
}

// Acquire takes the lock for one student. The returned release function must
// be called exactly once; callers defer it.
func (l *StudentLocks) Acquire(ctx context.Context, studentID int64) (func(), error) {
	e := l.retain(studentID)

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	select {
	case e.ch <- struct{}{}:
		return func() {
			<-e.ch
			l.release(studentID, e)
		}, nil
	case <-timer.C:
		l.release(studentID, e)
		return nil, &util.DomainError{
			Kind: util.ErrStoreBusy,
			Rule: "store.lock_timeout",
		}
	case <-ctx.Done():
		l.release(studentID, e)
		return nil, ctx.Err()
	}
}
