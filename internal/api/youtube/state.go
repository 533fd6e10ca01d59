package youtube

import (
	"sync"
	"time"
)

const stateTTL = 10 * time.Minute

// stateStore remembers issued OAuth states until they are used or expire.
type stateStore struct {
	mu     sync.Mutex
	issued map[string]time.Time
	now    func() time.Time
}

func newStateStore() *stateStore {
	return &stateStore{issued: make(map[string]time.Time), now: time.Now}
}

func (s *stateStore) add(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, exp := range s.issued {
		if now.After(exp) {
			delete(s.issued, k)
		}
	}
	s.issued[state] = now.Add(stateTTL)
}

// consume reports whether state was issued and unexpired. A state works once.
func (s *stateStore) consume(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.issued[state]
	if !ok {
		return false
	}
	delete(s.issued, state)
	return !s.now().After(exp)
}
