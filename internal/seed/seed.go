// Package seed holds the demo users, quizzes and scores the service starts with.
package seed

import (
	"context"
	"fmt"
	"time"

	"quizmaster-service/internal/domain"
)

// Target is any store that accepts records with their IDs and timestamps already set.
type Target interface {
	SaveUser(ctx context.Context, user domain.User) error
	SaveQuiz(ctx context.Context, quiz domain.Quiz) error
	SaveScore(ctx context.Context, score domain.ScoreRecord) error
}

// Load writes the demo data set into t.
func Load(ctx context.Context, t Target) error {
	for _, user := range Users() {
		if err := t.SaveUser(ctx, user); err != nil {
			return fmt.Errorf("seed user %s: %w", user.ID, err)
		}
	}
	for _, quiz := range Quizzes() {
		if err := t.SaveQuiz(ctx, quiz); err != nil {
			return fmt.Errorf("seed quiz %s: %w", quiz.ID, err)
		}
	}
	for _, score := range Scores() {
		if err := t.SaveScore(ctx, score); err != nil {
			return fmt.Errorf("seed score %s/%s: %w", score.QuizID, score.UserID, err)
		}
	}
	return nil
}

func Users() []domain.User {
	return []domain.User{
		{ID: "1", Name: "John Doe", Email: "john@example.com", Avatar: "https://images.unsplash.com/photo-1500648767791-00dcc994a43e?fit=crop&w=200&h=200"},
		{ID: "2", Name: "Jane Smith", Email: "jane@example.com", Avatar: "https://images.unsplash.com/photo-1494790108377-be9c29b29330?fit=crop&w=200&h=200"},
		{ID: "3", Name: "Alex Johnson", Email: "alex@example.com", Avatar: "https://images.unsplash.com/photo-1599566150163-29194dcaad36?fit=crop&w=200&h=200"},
	}
}

func Quizzes() []domain.Quiz {
	return []domain.Quiz{
		{
			ID:          "1",
			Title:       "Web Development Basics",
			Description: "Test your knowledge of HTML, CSS, and JavaScript fundamentals",
			Questions: []domain.Question{
				{ID: "1-1", Prompt: "What does HTML stand for?", Options: []string{"Hyper Text Markup Language", "High Tech Machine Learning", "Hyper Transfer Markup Language", "Home Tool Markup Language"}, CorrectAnswer: 0},
				{ID: "1-2", Prompt: "Which property is used to change the background color of an element in CSS?", Options: []string{"color", "bgcolor", "background-color", "background"}, CorrectAnswer: 2},
				{ID: "1-3", Prompt: "Which of the following is NOT a JavaScript data type?", Options: []string{"String", "Boolean", "Float", "Object"}, CorrectAnswer: 2},
			},
			CreatedBy: "1",
			CreatedAt: mustTime("2023-11-15T09:30:00Z"),
		},
		{
			ID:          "2",
			Title:       "General Knowledge Quiz",
			Description: "Test your knowledge about various topics around the world",
			Questions: []domain.Question{
				{ID: "2-1", Prompt: "Which planet is known as the Red Planet?", Options: []string{"Venus", "Mars", "Jupiter", "Saturn"}, CorrectAnswer: 1},
				{ID: "2-2", Prompt: "Who painted the Mona Lisa?", Options: []string{"Vincent Van Gogh", "Pablo Picasso", "Leonardo da Vinci", "Michelangelo"}, CorrectAnswer: 2},
				{ID: "2-3", Prompt: "What is the capital city of Australia?", Options: []string{"Sydney", "Melbourne", "Perth", "Canberra"}, CorrectAnswer: 3},
			},
			CreatedBy: "2",
			CreatedAt: mustTime("2023-12-10T14:45:00Z"),
		},
		{
			ID:          "3",
			Title:       "Science Trivia",
			Description: "Challenge yourself with questions about biology, chemistry, and physics",
			Questions: []domain.Question{
				{ID: "3-1", Prompt: "What is the chemical symbol for gold?", Options: []string{"Go", "Gd", "Au", "Ag"}, CorrectAnswer: 2},
				{ID: "3-2", Prompt: "Which of the following is NOT a state of matter?", Options: []string{"Solid", "Liquid", "Gas", "Energy"}, CorrectAnswer: 3},
				{ID: "3-3", Prompt: "What is the smallest unit of life?", Options: []string{"Cell", "Atom", "Molecule", "Organ"}, CorrectAnswer: 0},
			},
			CreatedBy: "3",
			CreatedAt: mustTime("2024-01-05T11:20:00Z"),
		},
	}
}

func Scores() []domain.ScoreRecord {
	return []domain.ScoreRecord{
		{QuizID: "1", Score: 3, TotalQuestions: 3, CompletedAt: mustTime("2024-01-10T15:30:00Z"), UserID: "2", Username: "Jane Smith"},
		{QuizID: "1", Score: 2, TotalQuestions: 3, CompletedAt: mustTime("2024-01-11T10:15:00Z"), UserID: "3", Username: "Alex Johnson"},
		{QuizID: "2", Score: 2, TotalQuestions: 3, CompletedAt: mustTime("2024-02-05T14:20:00Z"), UserID: "1", Username: "John Doe"},
		{QuizID: "3", Score: 3, TotalQuestions: 3, CompletedAt: mustTime("2024-02-10T09:45:00Z"), UserID: "1", Username: "John Doe"},
		{QuizID: "3", Score: 2, TotalQuestions: 3, CompletedAt: mustTime("2024-02-12T16:30:00Z"), UserID: "2", Username: "Jane Smith"},
	}
}

func mustTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		panic(err)
	}
	return t
}
