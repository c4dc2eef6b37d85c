package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// QuestionDraft is a question while it is still being authored; any field may be blank.
type QuestionDraft struct {
	Prompt        string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"len=4,dive,required"`
	CorrectAnswer *int     `json:"correctAnswer" validate:"required,gte=0,lt=4"`
}

// QuizDraft is the authoring form of a quiz.
type QuizDraft struct {
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Questions   []QuestionDraft `json:"questions" validate:"min=1,dive"`
}

var draftValidator = newDraftValidator()

func newDraftValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// Validate returns nil or a *DraftValidationError listing every problem.
// Blank means empty after trimming whitespace.
func (d QuizDraft) Validate() error {
	trimmed := d.trimmed()
	var reasons []string

	if err := draftValidator.Struct(trimmed); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			reasons = append(reasons, describeFieldError(fe))
		}
	}
	// The validator already rejects correctAnswer >= OptionCount; a short
	// options list needs the tighter bound.
	for i, q := range trimmed.Questions {
		if q.CorrectAnswer == nil || len(q.Options) == 0 {
			continue
		}
		if answer := *q.CorrectAnswer; answer < OptionCount && answer >= len(q.Options) {
			reasons = append(reasons, fmt.Sprintf("questions[%d].correctAnswer must index one of the options", i))
		}
	}

	if len(reasons) > 0 {
		return &DraftValidationError{Reasons: reasons}
	}
	return nil
}

// Build validates the draft and converts it into a NewQuiz owned by createdBy.
func (d QuizDraft) Build(createdBy string) (NewQuiz, error) {
	if err := d.Validate(); err != nil {
		return NewQuiz{}, err
	}
	trimmed := d.trimmed()
	questions := make([]Question, 0, len(trimmed.Questions))
	for _, q := range trimmed.Questions {
		questions = append(questions, Question{
			Prompt:        q.Prompt,
			Options:       append([]string(nil), q.Options...),
			CorrectAnswer: *q.CorrectAnswer,
		})
	}
	return NewQuiz{
		Title:       trimmed.Title,
		Description: trimmed.Description,
		Questions:   questions,
		CreatedBy:   createdBy,
	}, nil
}

// Materialize assigns the quiz ID, creation time and per-question IDs of the form <quizID>-<n>.
func (q NewQuiz) Materialize(id string, createdAt time.Time) Quiz {
	questions := make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		question.ID = fmt.Sprintf("%s-%d", id, i+1)
		question.Options = append([]string(nil), question.Options...)
		questions[i] = question
	}
	return Quiz{
		ID:          id,
		Title:       q.Title,
		Description: q.Description,
		Questions:   questions,
		CreatedBy:   q.CreatedBy,
		CreatedAt:   createdAt,
	}
}

func (d QuizDraft) trimmed() QuizDraft {
	out := QuizDraft{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Questions:   make([]QuestionDraft, len(d.Questions)),
	}
	for i, q := range d.Questions {
		options := make([]string, len(q.Options))
		for j, opt := range q.Options {
			options[j] = strings.TrimSpace(opt)
		}
		out.Questions[i] = QuestionDraft{
			Prompt:        strings.TrimSpace(q.Prompt),
			Options:       options,
			CorrectAnswer: q.CorrectAnswer,
		}
	}
	return out
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "QuizDraft.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must have at least %s entry", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must have exactly %s entries", field, fe.Param())
	case "gte", "lt":
		return field + " must index one of the options"
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
