package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizmaster-service/internal/domain"
)

func TestQuizCacheCaches(t *testing.T) {
	loader := &countingLoader{QuizLoader: storeWith(t, sampleQuiz())}
	cache := NewQuizCache(loader, time.Minute)

	if _, err := cache.FindQuizByID(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("find quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := cache.FindQuizByID(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("find quiz 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestQuizCacheExpires(t *testing.T) {
	loader := &countingLoader{QuizLoader: storeWith(t, sampleQuiz())}
	cache := NewQuizCache(loader, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	_, _ = cache.FindQuizByID(context.Background(), "quiz-1")
	now = now.Add(2 * time.Minute)
	_, _ = cache.FindQuizByID(context.Background(), "quiz-1")
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.calls)
	}
}

func TestQuizCacheDoesNotCacheMisses(t *testing.T) {
	loader := &countingLoader{QuizLoader: NewStore()}
	cache := NewQuizCache(loader, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cache.FindQuizByID(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	}
	if loader.calls != 2 {
		t.Fatalf("expected every miss to reach the loader, got %d", loader.calls)
	}
}

type countingLoader struct {
	QuizLoader
	calls int
}

func (l *countingLoader) FindQuizByID(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.calls++
	return l.QuizLoader.FindQuizByID(ctx, quizID)
}

func storeWith(t *testing.T, quizzes ...domain.Quiz) *Store {
	t.Helper()
	store := NewStore()
	for _, quiz := range quizzes {
		if err := store.SaveQuiz(context.Background(), quiz); err != nil {
			t.Fatalf("save quiz: %v", err)
		}
	}
	return store
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "Arithmetic",
		Questions: []domain.Question{
			{
				ID:            "quiz-1-1",
				Prompt:        "What is 2 + 2?",
				Options:       []string{"3", "4", "5", "22"},
				CorrectAnswer: 1,
			},
		},
		CreatedBy: "u1",
	}
}
