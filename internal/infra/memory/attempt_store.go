package memory

import (
	"sync"
	"time"

	"quizmaster-service/internal/app"
)

type attemptEntry struct {
	attempt    *app.Attempt
	lastAccess time.Time
}

// AttemptStore is an in-memory implementation of app.AttemptRepository.
// An attempt not touched for ttl is treated as abandoned: Get drops it and
// Save sweeps every such entry. A non-positive ttl keeps attempts until deleted.
type AttemptStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	clock    func() time.Time
	attempts map[string]attemptEntry
}

func NewAttemptStore(ttl time.Duration) *AttemptStore {
	return &AttemptStore{
		ttl:      ttl,
		clock:    time.Now,
		attempts: make(map[string]attemptEntry),
	}
}

func (s *AttemptStore) Save(attempt *app.Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	s.sweep(now)
	s.attempts[attempt.ID()] = attemptEntry{attempt: attempt, lastAccess: now}
}

func (s *AttemptStore) Get(attemptID string) (*app.Attempt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.attempts[attemptID]
	if !ok {
		return nil, false
	}
	now := s.clock()
	if s.expired(entry, now) {
		delete(s.attempts, attemptID)
		return nil, false
	}
	entry.lastAccess = now
	s.attempts[attemptID] = entry
	return entry.attempt, true
}

func (s *AttemptStore) Delete(attemptID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, attemptID)
}

// sweep expects s.mu to be held.
func (s *AttemptStore) sweep(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, entry := range s.attempts {
		if s.expired(entry, now) {
			delete(s.attempts, id)
		}
	}
}

func (s *AttemptStore) expired(entry attemptEntry, now time.Time) bool {
	return s.ttl > 0 && !entry.lastAccess.Add(s.ttl).After(now)
}
