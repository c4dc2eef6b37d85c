package app

import (
	"math/rand"
	"testing"
	"time"

	"quizmaster-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day int) time.Time {
	return time.Date(2024, 1, day, 12, 0, 0, 0, time.UTC)
}

func TestAggregateSumsPerUser(t *testing.T) {
	standings := Aggregate([]domain.ScoreRecord{
		{QuizID: "2", UserID: "1", Username: "John Doe", Score: 2, TotalQuestions: 3, CompletedAt: at(5)},
		{QuizID: "3", UserID: "1", Username: "John Doe", Score: 3, TotalQuestions: 3, CompletedAt: at(10)},
	})

	require.Len(t, standings, 1)
	assert.Equal(t, 5, standings[0].TotalScore)
	assert.Equal(t, 6, standings[0].TotalQuestions)
	assert.Equal(t, 2, standings[0].QuizzesTaken)
	assert.InDelta(t, 83.3, standings[0].Percentage, 0.05)
}

func TestAggregateOrdering(t *testing.T) {
	standings := Aggregate([]domain.ScoreRecord{
		{UserID: "a", Username: "Ann", Score: 2, TotalQuestions: 3, CompletedAt: at(1)},
		{UserID: "b", Username: "Ben", Score: 3, TotalQuestions: 3, CompletedAt: at(1)},
		{UserID: "c", Username: "Cat", Score: 4, TotalQuestions: 6, CompletedAt: at(1)},
		{UserID: "d", Username: "Dan", Score: 0, TotalQuestions: 0, CompletedAt: at(1)},
	})

	ids := make([]string, 0, len(standings))
	for _, s := range standings {
		ids = append(ids, s.UserID)
	}
	// Cat and Ann tie on percentage; Cat has more correct answers.
	assert.Equal(t, []string{"b", "c", "a", "d"}, ids)
	assert.Equal(t, 0.0, standings[3].Percentage)
}

func TestAggregateIsOrderIndependent(t *testing.T) {
	records := []domain.ScoreRecord{
		{QuizID: "1", UserID: "2", Username: "Jane Smith", Score: 3, TotalQuestions: 3, CompletedAt: at(10)},
		{QuizID: "1", UserID: "3", Username: "Alex Johnson", Score: 2, TotalQuestions: 3, CompletedAt: at(11)},
		{QuizID: "2", UserID: "1", Username: "John Doe", Score: 2, TotalQuestions: 3, CompletedAt: at(20)},
		{QuizID: "3", UserID: "1", Username: "Johnny", Score: 3, TotalQuestions: 3, CompletedAt: at(25)},
		{QuizID: "3", UserID: "2", Username: "Jane Smith", Score: 2, TotalQuestions: 3, CompletedAt: at(27)},
	}
	want := Aggregate(records)
	assert.Equal(t, "Johnny", want[1].Username)

	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]domain.ScoreRecord(nil), records...)
		rnd.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Aggregate(shuffled))
	}
}

func TestRankAndFilter(t *testing.T) {
	ranked := Rank([]domain.UserStanding{
		{UserID: "2", Username: "Jane Smith"},
		{UserID: "1", Username: "John Doe"},
		{UserID: "3", Username: "Alex Johnson"},
	})
	require.Len(t, ranked, 3)
	for i, entry := range ranked {
		assert.Equal(t, i+1, entry.Rank)
	}

	filtered := FilterStandings(ranked, "  JOHN ")
	require.Len(t, filtered, 2)
	assert.Equal(t, 2, filtered[0].Rank)
	assert.Equal(t, "John Doe", filtered[0].Username)
	assert.Equal(t, 3, filtered[1].Rank)

	assert.Len(t, FilterStandings(ranked, ""), 3)

	none := FilterStandings(ranked, "zzz")
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
	assert.Empty(t, Rank(nil))
}
