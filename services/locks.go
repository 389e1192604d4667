package services

import "sync"

// userLocks serializes read-modify-write sequences per user id. The storage
// adapter offers no transactions or compare-and-swap, so without this two
// concurrent completions of the same task could both pass the "not yet
// completed" check and double-pay the reward.
type userLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[int64]*sync.Mutex)}
}

// lock acquires the mutex for userID and returns its unlock func.
// Locks are never nested across users; callers that touch two users
// (referral processing) take them sequentially.
func (l *userLocks) lock(userID int64) func() {
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

// userMu guards every user mutation in this package.
var userMu = newUserLocks()
