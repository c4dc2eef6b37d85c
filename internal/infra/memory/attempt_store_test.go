package memory

import (
	"testing"
	"time"

	"quizmaster-service/internal/app"
)

func TestAttemptStoreLifecycle(t *testing.T) {
	store := NewAttemptStore(time.Minute)

	store.Save(app.NewAttempt("a1", sampleQuiz()))
	attempt, ok := store.Get("a1")
	if !ok {
		t.Fatalf("expected attempt present")
	}
	if attempt.QuizID() != "quiz-1" {
		t.Fatalf("expected quiz-1, got %s", attempt.QuizID())
	}

	store.Delete("a1")
	if _, ok := store.Get("a1"); ok {
		t.Fatalf("expected attempt removed")
	}
}

func TestAttemptStoreExpiresIdleAttempts(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewAttemptStore(time.Minute)
	store.clock = func() time.Time { return now }

	store.Save(app.NewAttempt("a1", sampleQuiz()))
	store.Save(app.NewAttempt("a2", sampleQuiz()))

	now = now.Add(45 * time.Second)
	if _, ok := store.Get("a1"); !ok {
		t.Fatalf("expected a1 still live")
	}

	// a2 is now idle past the ttl; a1 was refreshed 30s ago.
	now = now.Add(30 * time.Second)
	if _, ok := store.Get("a2"); ok {
		t.Fatalf("expected a2 expired")
	}
	if _, ok := store.Get("a1"); !ok {
		t.Fatalf("expected a1 kept alive by access")
	}
}

func TestAttemptStoreSaveSweepsAbandonedAttempts(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewAttemptStore(time.Minute)
	store.clock = func() time.Time { return now }

	for _, id := range []string{"a1", "a2", "a3"} {
		store.Save(app.NewAttempt(id, sampleQuiz()))
	}

	now = now.Add(2 * time.Minute)
	store.Save(app.NewAttempt("a4", sampleQuiz()))

	if len(store.attempts) != 1 {
		t.Fatalf("expected only the fresh attempt to remain, got %d", len(store.attempts))
	}
	if _, ok := store.Get("a4"); !ok {
		t.Fatalf("expected a4 present")
	}
}

func TestAttemptStoreWithoutTTLKeepsAttempts(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewAttemptStore(0)
	store.clock = func() time.Time { return now }

	store.Save(app.NewAttempt("a1", sampleQuiz()))
	now = now.Add(24 * time.Hour)
	if _, ok := store.Get("a1"); !ok {
		t.Fatalf("expected attempt kept without ttl")
	}
}
