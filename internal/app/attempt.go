package app

import (
	"sync"
	"time"

	"quizmaster-service/internal/domain"
)

// PersistFunc stores a finished attempt's score and reports whether a record was written.
type PersistFunc func(score, total int) (bool, error)

// Attempt is one pass through a quiz. It is Answering until Submit succeeds and
// Submitted until Retry.
type Attempt struct {
	id        string
	quiz      domain.Quiz
	startedAt time.Time

	mu      sync.Mutex
	index   int
	answers map[int]int
	phase   domain.Phase
	result  *domain.AttemptResult
}

// NewAttempt starts answering quiz at its first question.
func NewAttempt(id string, quiz domain.Quiz) *Attempt {
	return NewAttemptWithClock(id, quiz, time.Now)
}

// NewAttemptWithClock allows deterministic timestamps in tests.
func NewAttemptWithClock(id string, quiz domain.Quiz, now func() time.Time) *Attempt {
	return &Attempt{
		id:        id,
		quiz:      quiz,
		startedAt: now(),
		answers:   make(map[int]int),
		phase:     domain.PhaseAnswering,
	}
}

func (a *Attempt) ID() string { return a.id }

func (a *Attempt) QuizID() string { return a.quiz.ID }

func (a *Attempt) StartedAt() time.Time { return a.startedAt }

// State returns a snapshot that is safe to hand to other goroutines.
func (a *Attempt) State() domain.AttemptState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stateLocked()
}

// SelectAnswer records or overwrites the option chosen for a question. The index does not move.
func (a *Attempt) SelectAnswer(questionIndex, optionIndex int) (domain.AttemptState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.phase != domain.PhaseAnswering {
		return a.stateLocked(), domain.ErrNotAnswering
	}
	if questionIndex < 0 || questionIndex >= len(a.quiz.Questions) {
		return a.stateLocked(), domain.ErrQuestionOutOfRange
	}
	if optionIndex < 0 || optionIndex >= len(a.quiz.Questions[questionIndex].Options) {
		return a.stateLocked(), domain.ErrOptionOutOfRange
	}
	a.answers[questionIndex] = optionIndex
	return a.stateLocked(), nil
}

// Next advances to the following question once the current one is answered.
func (a *Attempt) Next() (domain.AttemptState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.phase != domain.PhaseAnswering {
		return a.stateLocked(), domain.ErrNotAnswering
	}
	if a.index >= len(a.quiz.Questions)-1 {
		return a.stateLocked(), domain.ErrNoNextQuestion
	}
	if _, ok := a.answers[a.index]; !ok {
		return a.stateLocked(), domain.ErrCurrentUnanswered
	}
	a.index++
	return a.stateLocked(), nil
}

// Previous steps back one question.
func (a *Attempt) Previous() (domain.AttemptState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.phase != domain.PhaseAnswering {
		return a.stateLocked(), domain.ErrNotAnswering
	}
	if a.index == 0 {
		return a.stateLocked(), domain.ErrNoPreviousQuestion
	}
	a.index--
	return a.stateLocked(), nil
}

// Submit scores a fully answered attempt and moves it to Submitted.
// persist may be nil when nobody is signed in; the result is then not persisted.
// If persist fails the attempt stays in Answering and can be submitted again.
func (a *Attempt) Submit(persist PersistFunc) (domain.AttemptState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.phase != domain.PhaseAnswering {
		return a.stateLocked(), domain.ErrNotAnswering
	}
	total := len(a.quiz.Questions)
	if unanswered := total - len(a.answers); unanswered > 0 {
		return a.stateLocked(), &domain.IncompleteSubmissionError{Unanswered: unanswered}
	}

	score := ComputeScore(a.quiz, a.answers)
	persisted := false
	if persist != nil {
		ok, err := persist(score, total)
		if err != nil {
			return a.stateLocked(), err
		}
		persisted = ok
	}

	a.result = &domain.AttemptResult{
		Score:      score,
		Total:      total,
		Percentage: Percentage(score, total),
		Passed:     Passed(score, total),
		Persisted:  persisted,
		Review:     reviewAnswers(a.quiz, a.answers),
	}
	a.phase = domain.PhaseSubmitted
	return a.stateLocked(), nil
}

// Retry discards all answers and the result and starts over at the first question.
func (a *Attempt) Retry() (domain.AttemptState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.phase != domain.PhaseSubmitted {
		return a.stateLocked(), domain.ErrNotSubmitted
	}
	a.answers = make(map[int]int)
	a.index = 0
	a.result = nil
	a.phase = domain.PhaseAnswering
	return a.stateLocked(), nil
}

func (a *Attempt) stateLocked() domain.AttemptState {
	answers := make(map[int]int, len(a.answers))
	for q, o := range a.answers {
		answers[q] = o
	}
	state := domain.AttemptState{
		AttemptID:     a.id,
		QuizID:        a.quiz.ID,
		Phase:         a.phase,
		CurrentIndex:  a.index,
		QuestionCount: len(a.quiz.Questions),
		Answers:       answers,
	}
	if a.result != nil {
		result := *a.result
		result.Review = append([]domain.AnswerReview(nil), a.result.Review...)
		state.Result = &result
	}
	return state
}
