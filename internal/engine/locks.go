package engine

import "sync"

// matchLocks serializes mutations per match id. Requests on distinct
// matches proceed in parallel; two near-simultaneous moves on the same
// match take turns, so both can never observe "opponent has no pending
// move" for the same round.
type matchLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newMatchLocks() *matchLocks {
	return &matchLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for matchID and returns its unlock func.
// Lock entries live for the process lifetime; a finished match rejects
// further mutation anyway, so the map only grows with distinct matches
// seen by this process.
func (l *matchLocks) acquire(matchID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[matchID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[matchID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
