package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"quizmaster-service/internal/domain"
)

const maxBodyBytes = 1 << 20

// describeError maps service errors onto a status code and the error body
// shared by the REST and WebSocket transports.
func describeError(err error) (int, errorResponse) {
	var (
		incomplete *domain.IncompleteSubmissionError
		invalid    *domain.DraftValidationError
	)
	switch {
	case errors.As(err, &incomplete):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "incomplete", Unanswered: incomplete.Unanswered}
	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity, errorResponse{Error: "invalid quiz draft", Code: "invalid_draft", Reasons: invalid.Reasons}
	case errors.Is(err, domain.ErrInvalidScore):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "invalid_score"}
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrAttemptNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error(), Code: "not_found"}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, errorResponse{Error: err.Error(), Code: "unauthenticated"}
	case errors.Is(err, domain.ErrQuestionOutOfRange),
		errors.Is(err, domain.ErrOptionOutOfRange):
		return http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "bad_request"}
	case errors.Is(err, domain.ErrNotAnswering),
		errors.Is(err, domain.ErrNotSubmitted),
		errors.Is(err, domain.ErrCurrentUnanswered),
		errors.Is(err, domain.ErrNoNextQuestion),
		errors.Is(err, domain.ErrNoPreviousQuestion):
		return http.StatusConflict, errorResponse{Error: err.Error(), Code: "conflict"}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "request failed", Code: "internal"}
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status, body := describeError(err)
	writeJSON(w, status, body)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: message, Code: "bad_request"})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func parseIntParam(r *http.Request, key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, errors.New(key + " must be a positive integer")
	}
	return parsed, nil
}
