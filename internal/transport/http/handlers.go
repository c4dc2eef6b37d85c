package http

import (
	"errors"
	"net/http"
	"strings"

	"quizmaster-service/internal/domain"
)

const defaultRecentLimit = 3

// currentUser resolves the X-User-ID header. Unknown IDs are treated as a
// failed login rather than a missing resource.
func (a *API) currentUser(r *http.Request) (*domain.User, error) {
	user, err := a.service.ResolveUser(r.Context(), r.Header.Get(UserHeader))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	return user, err
}

func (a *API) HandleSearchQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := a.service.SearchQuizzes(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuizSummaries(quizzes))
}

func (a *API) HandleRecentQuizzes(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r, "limit", defaultRecentLimit)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	quizzes, err := a.service.RecentQuizzes(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuizSummaries(quizzes))
}

func (a *API) HandleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	user, err := a.currentUser(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if user == nil {
		writeServiceError(w, domain.ErrUnauthenticated)
		return
	}

	var draft domain.QuizDraft
	if err := decodeJSON(r, &draft); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	quiz, err := a.service.CreateQuiz(r.Context(), user, draft)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toQuizView(quiz))
}

func (a *API) HandleGetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := a.service.GetQuiz(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuizView(quiz))
}

func (a *API) HandleQuizScores(w http.ResponseWriter, r *http.Request) {
	scores, err := a.service.ScoresByQuiz(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scoresResponse{Scores: scores})
}

func (a *API) HandleUserQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := a.service.QuizzesByCreator(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuizSummaries(quizzes))
}

func (a *API) HandleUserScores(w http.ResponseWriter, r *http.Request) {
	scores, err := a.service.ScoresByUser(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scoresResponse{Scores: scores})
}

func (a *API) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	standings, err := a.service.Leaderboard(r.Context(), query)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Query: query, Leaderboard: standings})
}

func (a *API) HandleStartAttempt(w http.ResponseWriter, r *http.Request) {
	state, quiz, err := a.service.StartAttempt(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, startAttemptResponse{Attempt: state, Quiz: toQuizView(quiz)})
}

func (a *API) HandleAttemptState(w http.ResponseWriter, r *http.Request) {
	state, err := a.service.AttemptState(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (a *API) HandleAbandonAttempt(w http.ResponseWriter, r *http.Request) {
	a.service.Abandon(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) HandleSelectAnswer(w http.ResponseWriter, r *http.Request) {
	var req selectAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.QuestionIndex == nil || req.OptionIndex == nil {
		writeBadRequest(w, "questionIndex and optionIndex are required")
		return
	}
	state, err := a.service.SelectAnswer(r.Context(), r.PathValue("id"), *req.QuestionIndex, *req.OptionIndex)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (a *API) HandleNext(w http.ResponseWriter, r *http.Request) {
	state, err := a.service.Next(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (a *API) HandlePrevious(w http.ResponseWriter, r *http.Request) {
	state, err := a.service.Previous(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// HandleSubmit scores the attempt. The result is persisted only for identified callers.
func (a *API) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	user, err := a.currentUser(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	state, err := a.service.Submit(r.Context(), r.PathValue("id"), user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (a *API) HandleRetry(w http.ResponseWriter, r *http.Request) {
	state, err := a.service.Retry(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
