package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrAttemptNotFound is returned when an attempt has expired or never existed.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrUnauthenticated is returned when an operation requires a signed-in user.
	ErrUnauthenticated = errors.New("login required")
	// ErrInvalidScore rejects score payloads outside 0 <= score <= total.
	ErrInvalidScore = errors.New("score out of range")

	ErrNotAnswering       = errors.New("attempt is not accepting answers")
	ErrNotSubmitted       = errors.New("attempt has not been submitted")
	ErrQuestionOutOfRange = errors.New("question index out of range")
	ErrOptionOutOfRange   = errors.New("option index out of range")
	ErrCurrentUnanswered  = errors.New("current question has no answer")
	ErrNoNextQuestion     = errors.New("already at the last question")
	ErrNoPreviousQuestion = errors.New("already at the first question")

	// ErrIncompleteSubmission matches any *IncompleteSubmissionError.
	ErrIncompleteSubmission = errors.New("incomplete quiz")
	// ErrInvalidDraft matches any *DraftValidationError.
	ErrInvalidDraft = errors.New("invalid quiz draft")
)

// IncompleteSubmissionError reports how many questions are still unanswered.
type IncompleteSubmissionError struct {
	Unanswered int
}

func (e *IncompleteSubmissionError) Error() string {
	noun := "questions"
	if e.Unanswered == 1 {
		noun = "question"
	}
	return fmt.Sprintf("incomplete quiz: %d unanswered %s", e.Unanswered, noun)
}

func (e *IncompleteSubmissionError) Is(target error) bool {
	return target == ErrIncompleteSubmission
}

// DraftValidationError lists every reason a draft cannot become a quiz.
type DraftValidationError struct {
	Reasons []string
}

func (e *DraftValidationError) Error() string {
	return "invalid quiz draft: " + strings.Join(e.Reasons, "; ")
}

func (e *DraftValidationError) Is(target error) bool {
	return target == ErrInvalidDraft
}
