package app

import (
	"sort"
	"strings"

	"quizmaster-service/internal/domain"
)

// Aggregate folds score records into one standing per user, ordered best first.
//
// Ordering: percentage desc, total score desc, quizzes taken desc, username asc, user ID asc.
// The trailing keys make the result independent of record order. The username comes from
// the newest record. A user whose records sum to zero questions gets 0%.
func Aggregate(records []domain.ScoreRecord) []domain.UserStanding {
	byUser := make(map[string]*domain.UserStanding)
	newest := make(map[string]domain.ScoreRecord)
	for _, record := range records {
		standing, ok := byUser[record.UserID]
		if !ok {
			standing = &domain.UserStanding{UserID: record.UserID}
			byUser[record.UserID] = standing
		}
		if prev, seen := newest[record.UserID]; !seen || newerSnapshot(record, prev) {
			newest[record.UserID] = record
			standing.Username = record.Username
		}
		standing.TotalScore += record.Score
		standing.TotalQuestions += record.TotalQuestions
		standing.QuizzesTaken++
	}

	standings := make([]domain.UserStanding, 0, len(byUser))
	for _, standing := range byUser {
		standing.Percentage = Percentage(standing.TotalScore, standing.TotalQuestions)
		standings = append(standings, *standing)
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Percentage != b.Percentage {
			return a.Percentage > b.Percentage
		}
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		if a.QuizzesTaken != b.QuizzesTaken {
			return a.QuizzesTaken > b.QuizzesTaken
		}
		if a.Username != b.Username {
			return a.Username < b.Username
		}
		return a.UserID < b.UserID
	})
	return standings
}

// Rank assigns each standing its 1-based position.
func Rank(standings []domain.UserStanding) []domain.RankedStanding {
	ranked := make([]domain.RankedStanding, len(standings))
	for i, standing := range standings {
		ranked[i] = domain.RankedStanding{Rank: i + 1, UserStanding: standing}
	}
	return ranked
}

// FilterStandings keeps entries whose username contains term, ignoring case.
// Ranks are not recomputed.
func FilterStandings(ranked []domain.RankedStanding, term string) []domain.RankedStanding {
	needle := strings.ToLower(strings.TrimSpace(term))
	out := make([]domain.RankedStanding, 0, len(ranked))
	for _, entry := range ranked {
		if needle == "" || strings.Contains(strings.ToLower(entry.Username), needle) {
			out = append(out, entry)
		}
	}
	return out
}

func newerSnapshot(candidate, current domain.ScoreRecord) bool {
	if !candidate.CompletedAt.Equal(current.CompletedAt) {
		return candidate.CompletedAt.After(current.CompletedAt)
	}
	return candidate.Username < current.Username
}
