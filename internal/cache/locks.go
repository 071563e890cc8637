package cache

import "sync"

// LockSet hands out one mutex per run id, so concurrent callers against the
// same run serialize their runnable-bookkeeping critical sections while
// unrelated runs proceed independently.
type LockSet struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLockSet returns an empty lock set.
func NewLockSet() *LockSet {
	return &LockSet{locks: make(map[string]*sync.Mutex)}
}

// ForRun returns the mutex for a run id, creating it on first use.
func (s *LockSet) ForRun(runID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lock, ok := s.locks[runID]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	s.locks[runID] = lock
	return lock
}

// Release drops the mutex for a finished run.
func (s *LockSet) Release(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, runID)
}
