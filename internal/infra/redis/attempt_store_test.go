package redis

import (
	"testing"
	"time"

	"quizmaster-service/internal/app"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestAttemptStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewAttemptStore(client, time.Minute)

	store.Save(app.NewAttempt("a1", sampleQuiz()))
	if !mr.Exists("quiz:attempt:a1") {
		t.Fatalf("expected redis key to be set")
	}
	if _, ok := store.Get("a1"); !ok {
		t.Fatalf("expected attempt present")
	}

	store.Delete("a1")
	if mr.Exists("quiz:attempt:a1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("a1"); ok {
		t.Fatalf("expected attempt removed")
	}
}

func TestAttemptStoreDropsExpiredAttempts(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewAttemptStore(client, time.Minute)
	store.Save(app.NewAttempt("a1", sampleQuiz()))

	mr.FastForward(2 * time.Minute)

	if _, ok := store.Get("a1"); ok {
		t.Fatalf("expected expired attempt to be gone")
	}
}

func TestAttemptStoreSaveSweepsExpiredAttempts(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewAttemptStore(client, time.Minute)
	for _, id := range []string{"a1", "a2", "a3"} {
		store.Save(app.NewAttempt(id, sampleQuiz()))
	}

	mr.FastForward(2 * time.Minute)
	store.Save(app.NewAttempt("a4", sampleQuiz()))

	if len(store.attempts) != 1 {
		t.Fatalf("expected only the fresh attempt to remain, got %d", len(store.attempts))
	}
	if _, ok := store.Get("a4"); !ok {
		t.Fatalf("expected a4 present")
	}
}
