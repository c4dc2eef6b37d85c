package redis

import (
	"context"
	"sync"
	"time"

	"quizmaster-service/internal/app"

	"github.com/redis/go-redis/v9"
)

// AttemptStore is a Redis-aware implementation of app.AttemptRepository.
// Notes:
//   - Attempts themselves stay in a local map; an attempt belongs to one session
//     and is never shared across instances.
//   - Redis holds a liveness key per attempt with a TTL that is refreshed on every
//     access. Once the key expires the attempt is treated as abandoned.
type AttemptStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	attempts map[string]*app.Attempt
}

func NewAttemptStore(client *redis.Client, ttl time.Duration) *AttemptStore {
	return &AttemptStore{
		client:   client,
		ttl:      ttl,
		attempts: make(map[string]*app.Attempt),
	}
}

func (s *AttemptStore) Save(attempt *app.Attempt) {
	ctx := context.Background()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(ctx)
	s.attempts[attempt.ID()] = attempt
	// best-effort liveness marker
	_ = s.client.Set(ctx, s.key(attempt.ID()), attempt.QuizID(), s.ttl).Err()
}

func (s *AttemptStore) Get(attemptID string) (*app.Attempt, bool) {
	s.mu.RLock()
	attempt, ok := s.attempts[attemptID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	alive, err := s.client.Expire(context.Background(), s.key(attemptID), s.ttl).Result()
	if err == nil && !alive {
		s.Delete(attemptID)
		return nil, false
	}
	return attempt, true
}

func (s *AttemptStore) Delete(attemptID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, attemptID)
	_ = s.client.Del(context.Background(), s.key(attemptID)).Err()
}

// sweep drops local attempts whose liveness key has expired. It expects s.mu
// to be held and leaves the map alone when Redis cannot be reached.
func (s *AttemptStore) sweep(ctx context.Context) {
	if len(s.attempts) == 0 {
		return
	}
	pipe := s.client.Pipeline()
	checks := make(map[string]*redis.IntCmd, len(s.attempts))
	for id := range s.attempts {
		checks[id] = pipe.Exists(ctx, s.key(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return
	}
	for id, cmd := range checks {
		if cmd.Val() == 0 {
			delete(s.attempts, id)
		}
	}
}

func (s *AttemptStore) key(attemptID string) string {
	return "quiz:attempt:" + attemptID
}
