package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"quizmaster-service/internal/app"
	"quizmaster-service/internal/domain"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type WSHandler struct {
	service  *app.QuizService
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, log logrus.FieldLogger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	QuestionIndex *int `json:"questionIndex"`
	OptionIndex   *int `json:"optionIndex"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message    string `json:"message"`
	Code       string `json:"code"`
	Unanswered int    `json:"unanswered,omitempty"`
}

func errorMessage(err error) outboundMessage[any] {
	_, body := describeError(err)
	return outboundMessage[any]{Type: "error", Payload: errorPayload{
		Message:    body.Error,
		Code:       body.Code,
		Unanswered: body.Unanswered,
	}}
}

// ServeWS runs one quiz attempt per connection. The attempt is discarded when
// the socket closes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := strings.TrimSpace(r.URL.Query().Get("quizId"))
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	user, err := h.service.ResolveUser(ctx, r.URL.Query().Get("userId"))
	if errors.Is(err, domain.ErrUserNotFound) {
		err = domain.ErrUnauthenticated
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	state, quiz, err := h.service.StartAttempt(ctx, quizID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	attemptID := state.AttemptID
	defer h.service.Abandon(context.Background(), attemptID)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log.WithFields(logrus.Fields{"attempt_id": attemptID, "quiz_id": quiz.ID})
	log.Debug("ws attempt started")

	if err := conn.WriteJSON(outboundMessage[any]{Type: "state", Payload: startAttemptResponse{Attempt: state, Quiz: toQuizView(quiz)}}); err != nil {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		reply := h.dispatch(ctx, attemptID, user, inbound)
		if err := conn.WriteJSON(reply); err != nil {
			log.WithError(err).Warn("ws write error")
			break
		}
	}
	log.Debug("ws attempt closed")
}

func (h *WSHandler) dispatch(ctx context.Context, attemptID string, user *domain.User, inbound inboundMessage) outboundMessage[any] {
	var (
		state domain.AttemptState
		err   error
		kind  = "state"
	)
	switch inbound.Type {
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid select payload", Code: "bad_request"}}
		}
		if payload.QuestionIndex == nil || payload.OptionIndex == nil {
			return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "questionIndex and optionIndex are required", Code: "bad_request"}}
		}
		state, err = h.service.SelectAnswer(ctx, attemptID, *payload.QuestionIndex, *payload.OptionIndex)
	case "next":
		state, err = h.service.Next(ctx, attemptID)
	case "previous":
		state, err = h.service.Previous(ctx, attemptID)
	case "submit":
		state, err = h.service.Submit(ctx, attemptID, user)
		kind = "result"
	case "retry":
		state, err = h.service.Retry(ctx, attemptID)
	default:
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type", Code: "bad_request"}}
	}
	if err != nil {
		return errorMessage(err)
	}
	return outboundMessage[any]{Type: kind, Payload: state}
}
