package services

import "sync"

// userLocks serializes aggregate updates per user. Aggregates are
// partitioned by user, so two users never contend; two mutations for
// the same user queue up at the ledger instead of racing.
//
// Entries are never evicted: one mutex per active user is cheap and
// eviction would race with lock acquisition.
type userLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[uint]*sync.Mutex)}
}

// Lock acquires the mutex for userID and returns its unlock func.
func (l *userLocks) Lock(userID uint) func() {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
