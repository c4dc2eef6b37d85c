package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quizmaster-service/internal/app"
	"quizmaster-service/internal/domain"
	"quizmaster-service/internal/infra/memory"
	"quizmaster-service/internal/seed"

	"github.com/gorilla/websocket"
)

func newWSServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	if err := seed.Load(context.Background(), store); err != nil {
		t.Fatalf("seed: %v", err)
	}
	service := app.NewQuizService(store, memory.NewAttemptStore(time.Minute))
	server := httptest.NewServer(NewRouter(service))
	t.Cleanup(server.Close)
	return server, store
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketAttemptFlow(t *testing.T) {
	server, store := newWSServer(t)
	conn := dial(t, server, "quizId=1&userId=2")

	_, payload := readNext(conn, t, "state")
	attempt, ok := payload["attempt"].(map[string]any)
	if !ok || attempt["phase"] != string(domain.PhaseAnswering) {
		t.Fatalf("expected answering attempt, got %+v", payload)
	}

	send(t, conn, "submit", nil)
	_, errPayload := readNext(conn, t, "error")
	if errPayload["code"] != "incomplete" || errPayload["unanswered"] != float64(3) {
		t.Fatalf("expected incomplete error with 3 unanswered, got %+v", errPayload)
	}

	for i, option := range []int{0, 1, 2} {
		send(t, conn, "select", map[string]int{"questionIndex": i, "optionIndex": option})
		readNext(conn, t, "state")
		if i < 2 {
			send(t, conn, "next", nil)
			_, state := readNext(conn, t, "state")
			if state["currentIndex"] != float64(i+1) {
				t.Fatalf("expected index %d, got %v", i+1, state["currentIndex"])
			}
		}
	}

	send(t, conn, "previous", nil)
	readNext(conn, t, "state")

	send(t, conn, "submit", nil)
	_, result := readNext(conn, t, "result")
	res, ok := result["result"].(map[string]any)
	if !ok {
		t.Fatalf("expected result payload, got %+v", result)
	}
	if res["score"] != float64(2) || res["passed"] != false || res["persisted"] != true {
		t.Fatalf("expected persisted 2/3 fail, got %+v", res)
	}

	scores, err := store.ListScoresByUser(context.Background(), "2")
	if err != nil {
		t.Fatalf("list scores: %v", err)
	}
	if len(scores) != 3 || scores[2].Username != "Jane Smith" {
		t.Fatalf("expected new record for Jane, got %+v", scores)
	}

	send(t, conn, "retry", nil)
	_, retried := readNext(conn, t, "state")
	if retried["phase"] != string(domain.PhaseAnswering) || retried["currentIndex"] != float64(0) {
		t.Fatalf("expected fresh attempt after retry, got %+v", retried)
	}
}

func TestWebSocketAnonymousAttemptIsNotPersisted(t *testing.T) {
	server, store := newWSServer(t)
	conn := dial(t, server, "quizId=3")
	readNext(conn, t, "state")

	for i, option := range []int{2, 3, 0} {
		send(t, conn, "select", map[string]int{"questionIndex": i, "optionIndex": option})
		readNext(conn, t, "state")
	}
	send(t, conn, "submit", nil)
	_, result := readNext(conn, t, "result")
	res := result["result"].(map[string]any)
	if res["score"] != float64(3) || res["passed"] != true || res["persisted"] != false {
		t.Fatalf("expected unpersisted 3/3 pass, got %+v", res)
	}

	scores, _ := store.ListScoresByQuiz(context.Background(), "3")
	if len(scores) != 2 {
		t.Fatalf("expected seeded scores only, got %d", len(scores))
	}
}

func TestWebSocketRejectsUnknownMessages(t *testing.T) {
	server, _ := newWSServer(t)
	conn := dial(t, server, "quizId=1")
	readNext(conn, t, "state")

	send(t, conn, "answer", nil)
	_, payload := readNext(conn, t, "error")
	if payload["message"] != "unsupported message type" {
		t.Fatalf("unexpected error payload: %+v", payload)
	}

	send(t, conn, "next", nil)
	_, payload = readNext(conn, t, "error")
	if payload["code"] != "conflict" {
		t.Fatalf("expected conflict for unanswered next, got %+v", payload)
	}

	for _, body := range []map[string]any{{}, {"questionIndex": 0}, {"optionIndex": 1}} {
		send(t, conn, "select", body)
		_, payload = readNext(conn, t, "error")
		if payload["code"] != "bad_request" {
			t.Fatalf("expected bad_request for select %v, got %+v", body, payload)
		}
	}

	// nothing was recorded by the rejected selects
	send(t, conn, "next", nil)
	_, payload = readNext(conn, t, "error")
	if payload["code"] != "conflict" {
		t.Fatalf("expected question 0 still unanswered, got %+v", payload)
	}
}

func TestWebSocketHandshakeErrors(t *testing.T) {
	server, _ := newWSServer(t)
	u := "ws" + server.URL[len("http"):] + "/ws"

	cases := map[string]int{
		"":                      http.StatusBadRequest,
		"?quizId=missing":       http.StatusNotFound,
		"?quizId=1&userId=nope": http.StatusUnauthorized,
	}
	for query, status := range cases {
		_, resp, err := websocket.DefaultDialer.Dial(u+query, nil)
		if err == nil {
			t.Fatalf("expected handshake failure for %q", query)
		}
		if resp == nil || resp.StatusCode != status {
			t.Fatalf("query %q: expected status %d, got %+v", query, status, resp)
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s (%+v)", expect, msg.Type, msg.Payload)
	}
	return msg.Type, msg.Payload
}
