package service

import (
	"sync"

	"github.com/google/uuid"
)

// SubmissionLocker serializes mutating operations per submission id.
// Two concurrent requests for the same submission (e.g. a timer heartbeat
// racing an answer save) would otherwise lose updates to the timer state.
// Entries are reference-counted so the table does not grow unbounded.
type SubmissionLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewSubmissionLocker creates an empty lock table.
func NewSubmissionLocker() *SubmissionLocker {
	return &SubmissionLocker{locks: make(map[uuid.UUID]*lockEntry)}
}

// Lock acquires the mutex for one submission and returns its release
// function. Timer reads do not need this; they are point-in-time
// estimates and must not block writers.
func (l *SubmissionLocker) Lock(id uuid.UUID) (unlock func()) {
	l.mu.Lock()
	e, ok := l.locks[id]
	if !ok {
		e = &lockEntry{}
		l.locks[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
