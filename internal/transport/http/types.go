package http

import (
	"time"

	"quizmaster-service/internal/domain"
)

// questionView omits the correct answer so clients cannot read it off the wire.
type questionView struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type quizView struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Questions   []questionView `json:"questions"`
	CreatedBy   string         `json:"createdBy"`
	CreatedAt   time.Time      `json:"createdAt"`
}

type quizSummary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	QuestionCount int       `json:"questionCount"`
	CreatedBy     string    `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
}

type quizzesResponse struct {
	Quizzes []quizSummary `json:"quizzes"`
}

type scoresResponse struct {
	Scores []domain.ScoreRecord `json:"scores"`
}

type leaderboardResponse struct {
	Query       string                  `json:"query,omitempty"`
	Leaderboard []domain.RankedStanding `json:"leaderboard"`
}

type startAttemptResponse struct {
	Attempt domain.AttemptState `json:"attempt"`
	Quiz    quizView            `json:"quiz"`
}

type selectAnswerRequest struct {
	QuestionIndex *int `json:"questionIndex"`
	OptionIndex   *int `json:"optionIndex"`
}

type errorResponse struct {
	Error      string   `json:"error"`
	Code       string   `json:"code"`
	Reasons    []string `json:"reasons,omitempty"`
	Unanswered int      `json:"unanswered,omitempty"`
}

func toQuizView(quiz domain.Quiz) quizView {
	questions := make([]questionView, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, questionView{
			ID:       q.ID,
			Question: q.Prompt,
			Options:  append([]string(nil), q.Options...),
		})
	}
	return quizView{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		Questions:   questions,
		CreatedBy:   quiz.CreatedBy,
		CreatedAt:   quiz.CreatedAt,
	}
}

func toQuizSummaries(quizzes []domain.Quiz) quizzesResponse {
	out := make([]quizSummary, 0, len(quizzes))
	for _, quiz := range quizzes {
		out = append(out, quizSummary{
			ID:            quiz.ID,
			Title:         quiz.Title,
			Description:   quiz.Description,
			QuestionCount: len(quiz.Questions),
			CreatedBy:     quiz.CreatedBy,
			CreatedAt:     quiz.CreatedAt,
		})
	}
	return quizzesResponse{Quizzes: out}
}
