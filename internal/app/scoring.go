package app

import "quizmaster-service/internal/domain"

// PassRatio is the share of correct answers at or above which an attempt counts as passed.
const PassRatio = 0.7

// ComputeScore counts questions whose recorded answer equals the correct option.
// answers maps question index to selected option index; missing entries never match.
func ComputeScore(quiz domain.Quiz, answers map[int]int) int {
	score := 0
	for i, question := range quiz.Questions {
		if selected, ok := answers[i]; ok && selected == question.CorrectAnswer {
			score++
		}
	}
	return score
}

// Percentage returns score/total*100, or 0 when total is 0.
func Percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}

// Passed reports whether score/total reaches PassRatio.
func Passed(score, total int) bool {
	if total <= 0 {
		return false
	}
	return float64(score)/float64(total) >= PassRatio
}

func reviewAnswers(quiz domain.Quiz, answers map[int]int) []domain.AnswerReview {
	review := make([]domain.AnswerReview, 0, len(quiz.Questions))
	for i, question := range quiz.Questions {
		selected, ok := answers[i]
		if !ok {
			selected = -1
		}
		review = append(review, domain.AnswerReview{
			QuestionIndex: i,
			Selected:      selected,
			CorrectAnswer: question.CorrectAnswer,
			Correct:       ok && selected == question.CorrectAnswer,
		})
	}
	return review
}
