package domain

import "time"

// OptionCount is the number of options every question carries.
const OptionCount = 4

// User is a person known to the identity provider.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID            string   `json:"id"`
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// Quiz is a titled collection of questions.
type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// NewQuiz is a validated quiz that has not been assigned an ID or timestamp yet.
type NewQuiz struct {
	Title       string
	Description string
	Questions   []Question
	CreatedBy   string
}

// ScoreRecord is the immutable outcome of one completed attempt.
type ScoreRecord struct {
	QuizID         string    `json:"quizId"`
	UserID         string    `json:"userId"`
	Username       string    `json:"username"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CompletedAt    time.Time `json:"completedAt"`
}

// NewScore is the insert payload for a ScoreRecord; the store fills in the
// username snapshot and completion time.
type NewScore struct {
	QuizID         string
	UserID         string
	Score          int
	TotalQuestions int
}

// Validate checks 0 <= Score <= TotalQuestions.
func (s NewScore) Validate() error {
	if s.Score < 0 || s.TotalQuestions < 0 || s.Score > s.TotalQuestions {
		return ErrInvalidScore
	}
	return nil
}

// Record stamps the payload into a ScoreRecord.
func (s NewScore) Record(username string, completedAt time.Time) ScoreRecord {
	return ScoreRecord{
		QuizID:         s.QuizID,
		UserID:         s.UserID,
		Username:       username,
		Score:          s.Score,
		TotalQuestions: s.TotalQuestions,
		CompletedAt:    completedAt,
	}
}

// Phase is the state of an attempt.
type Phase string

const (
	PhaseAnswering Phase = "answering"
	PhaseSubmitted Phase = "submitted"
)

// AnswerReview compares a selected option with the correct one.
type AnswerReview struct {
	QuestionIndex int  `json:"questionIndex"`
	Selected      int  `json:"selected"`
	CorrectAnswer int  `json:"correctAnswer"`
	Correct       bool `json:"correct"`
}

// AttemptResult is the finalized score of an attempt.
type AttemptResult struct {
	Score      int            `json:"score"`
	Total      int            `json:"total"`
	Percentage float64        `json:"percentage"`
	Passed     bool           `json:"passed"`
	Persisted  bool           `json:"persisted"`
	Review     []AnswerReview `json:"review"`
}

// AttemptState is a snapshot of an attempt for rendering.
type AttemptState struct {
	AttemptID     string         `json:"attemptId"`
	QuizID        string         `json:"quizId"`
	Phase         Phase          `json:"phase"`
	CurrentIndex  int            `json:"currentIndex"`
	QuestionCount int            `json:"questionCount"`
	Answers       map[int]int    `json:"answers"`
	Result        *AttemptResult `json:"result,omitempty"`
}

// UserStanding aggregates every score record of one user.
type UserStanding struct {
	UserID         string  `json:"userId"`
	Username       string  `json:"username"`
	TotalScore     int     `json:"totalScore"`
	TotalQuestions int     `json:"totalQuestions"`
	QuizzesTaken   int     `json:"quizzesTaken"`
	Percentage     float64 `json:"percentage"`
}

// RankedStanding pins a standing to its 1-based position in the global ordering.
type RankedStanding struct {
	Rank int `json:"rank"`
	UserStanding
}

// Clone returns a copy that shares no slices with q.
func (q Quiz) Clone() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		question.Options = append([]string(nil), question.Options...)
		out.Questions[i] = question
	}
	return out
}
