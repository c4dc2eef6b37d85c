package http

import (
	"io"
	"net/http"

	"quizmaster-service/internal/app"
	"quizmaster-service/internal/metrics"

	"github.com/sirupsen/logrus"
)

// UserHeader carries the caller's user ID; the transport trusts it as-is.
const UserHeader = "X-User-ID"

// API exposes the quiz service over HTTP and WebSocket.
type API struct {
	service *app.QuizService
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

type RouterOption func(*API)

func WithLogger(log logrus.FieldLogger) RouterOption {
	return func(a *API) { a.log = log }
}

// WithMetrics instruments every route and serves /metrics.
func WithMetrics(m *metrics.Metrics) RouterOption {
	return func(a *API) { a.metrics = m }
}

func NewRouter(service *app.QuizService, opts ...RouterOption) http.Handler {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	api := &API{service: service, log: discard}
	for _, opt := range opts {
		opt(api)
	}
	ws := NewWSHandler(service, api.log)

	mux := http.NewServeMux()
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, api.instrument(pattern, h))
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if api.metrics != nil {
		mux.Handle("GET /metrics", api.metrics.Handler())
	}

	handle("GET /quizzes", api.HandleSearchQuizzes)
	handle("GET /quizzes/recent", api.HandleRecentQuizzes)
	handle("POST /quizzes", api.HandleCreateQuiz)
	handle("GET /quizzes/{id}", api.HandleGetQuiz)
	handle("GET /quizzes/{id}/scores", api.HandleQuizScores)
	handle("POST /quizzes/{id}/attempts", api.HandleStartAttempt)
	handle("GET /users/{id}/quizzes", api.HandleUserQuizzes)
	handle("GET /users/{id}/scores", api.HandleUserScores)
	handle("GET /leaderboard", api.HandleLeaderboard)

	handle("GET /attempts/{id}", api.HandleAttemptState)
	handle("DELETE /attempts/{id}", api.HandleAbandonAttempt)
	handle("POST /attempts/{id}/answers", api.HandleSelectAnswer)
	handle("POST /attempts/{id}/next", api.HandleNext)
	handle("POST /attempts/{id}/previous", api.HandlePrevious)
	handle("POST /attempts/{id}/submit", api.HandleSubmit)
	handle("POST /attempts/{id}/retry", api.HandleRetry)

	handle("GET /ws", ws.ServeWS)

	return mux
}
