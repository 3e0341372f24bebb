package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"timed-quiz/internal/app"
	"timed-quiz/internal/domain"
	"timed-quiz/internal/infra/memory"
)

func TestWebSocketQuizFlow(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	conn := env.dial(t, "quizId=capitals&clientId=tab-1")
	defer conn.Close()

	session := readUntil(t, conn, "session")
	if session.Payload["clientId"] != "tab-1" {
		t.Fatalf("expected echoed client id, got %+v", session.Payload)
	}
	view := readView(t, conn)
	if view.State != domain.StateNotStarted {
		t.Fatalf("expected not started, got %s", view.State)
	}

	send(t, conn, "start", map[string]any{"name": " "})
	errMsg := readUntil(t, conn, "error")
	if errMsg.Payload["code"] != "empty_name" {
		t.Fatalf("expected empty_name error, got %+v", errMsg.Payload)
	}
	readView(t, conn)

	send(t, conn, "start", map[string]any{"name": "Alice", "email": "alice@example.com"})
	view = readView(t, conn)
	if view.State != domain.StateInProgress || view.Question == nil || view.TimeText != "00:05" {
		t.Fatalf("unexpected started view %+v", view)
	}

	send(t, conn, "answer", map[string]any{"value": "Paris"})
	readView(t, conn)
	send(t, conn, "next", nil)
	view = readView(t, conn)
	if view.Index != 1 || !view.ShowSubmit {
		t.Fatalf("expected last question with submit, got %+v", view)
	}
	send(t, conn, "answer", map[string]any{"value": " rome "})
	readView(t, conn)

	send(t, conn, "submit", nil)
	view = readView(t, conn)
	if view.State != domain.StateCompleted || view.Result == nil {
		t.Fatalf("expected completed view, got %+v", view)
	}
	if view.Result.Report.Percentage != 100 || view.Result.Tier != domain.TierHigh {
		t.Fatalf("unexpected result %+v", view.Result)
	}

	send(t, conn, "submit", nil)
	view = readView(t, conn)
	if view.State != domain.StateCompleted {
		t.Fatalf("repeated submit must be swallowed, got %s", view.State)
	}

	history, _ := app.LoadHistory(context.Background(), env.kv.Bucket("tab-1"))
	if len(history) != 1 {
		t.Fatalf("expected one history entry, got %d", len(history))
	}

	send(t, conn, "restart", nil)
	view = readView(t, conn)
	if view.State != domain.StateNotStarted {
		t.Fatalf("expected restart, got %s", view.State)
	}
}

func TestWebSocketTimeoutSubmits(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	conn := env.dial(t, "quizId=capitals&clientId=tab-2")
	defer conn.Close()
	readUntil(t, conn, "session")
	readView(t, conn)

	send(t, conn, "start", map[string]any{"name": "Bob"})
	readView(t, conn)

	var view domain.View
	for i := 0; i < 5; i++ {
		env.ticker.c <- time.Now()
		view = readView(t, conn)
	}
	if view.State != domain.StateCompleted || view.Notice == "" {
		t.Fatalf("expected timeout submission with notice, got %+v", view)
	}
	if view.Result.Report.CorrectCount != 0 || view.Result.Report.Details[0].UserAnswer != domain.NoAnswerLabel {
		t.Fatalf("unexpected timeout report %+v", view.Result.Report)
	}
}

func TestWebSocketTickerStartsWithSession(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	conn := env.dial(t, "quizId=capitals&clientId=tab-3")
	defer conn.Close()
	readUntil(t, conn, "session")
	readView(t, conn)

	send(t, conn, "start", map[string]any{"name": ""})
	readUntil(t, conn, "error")
	readView(t, conn)
	if n := env.tickersCreated(); n != 0 {
		t.Fatalf("no countdown expected before a session starts, got %d tickers", n)
	}

	send(t, conn, "start", map[string]any{"name": "Dana"})
	readView(t, conn)
	if n := env.tickersCreated(); n != 1 {
		t.Fatalf("expected one ticker after start, got %d", n)
	}
}

func TestWebSocketDeliveryWarning(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.Notifier = failingNotifier{} })
	defer env.close()

	conn := env.dial(t, "quizId=capitals&clientId=tab-4")
	defer conn.Close()
	readUntil(t, conn, "session")
	readView(t, conn)

	send(t, conn, "start", map[string]any{"name": "Eve"})
	readView(t, conn)
	send(t, conn, "submit", nil)

	warning := readUntil(t, conn, "warning")
	if msg, _ := warning.Payload["message"].(string); msg == "" {
		t.Fatalf("expected warning text, got %+v", warning.Payload)
	}
	view := readView(t, conn)
	if view.State != domain.StateCompleted || view.DeliveryWarn == "" {
		t.Fatalf("expected completed view with warning, got %+v", view)
	}

	send(t, conn, "dismiss", nil)
	if view := readView(t, conn); view.DeliveryWarn != "" {
		t.Fatalf("expected warning dismissed, got %q", view.DeliveryWarn)
	}
}

func TestWebSocketUnknownQuiz(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	resp, err := http.Get(env.server.URL + "/ws?quizId=missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	resp, err := http.Get(env.server.URL + "/api/clients/tab-9/last-result")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 before any result, got %d", resp.StatusCode)
	}

	ctx := context.Background()
	quiz, _ := env.quizzes.GetQuiz(ctx, "capitals")
	ctrl := app.NewController(app.Options{Quiz: quiz, Store: env.kv.Bucket("tab-9")})
	if err := ctrl.Start(ctx, "Carol", ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	_ = ctrl.RecordAnswer(ctx, "Paris")
	ctrl.Submit(ctx)

	resp, err = http.Get(env.server.URL + "/api/clients/tab-9/history")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	defer resp.Body.Close()
	var history []domain.ResultRecord
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(history) != 1 || history[0].UserName != "Carol" || history[0].Score.Percentage != 50 {
		t.Fatalf("unexpected history %+v", history)
	}

	resp2, err := http.Get(env.server.URL + "/api/quizzes/capitals")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	defer resp2.Body.Close()
	body, err := io.ReadAll(resp2.Body)
	if err != nil {
		t.Fatalf("read quiz: %v", err)
	}
	if strings.Contains(string(body), "keywords") || strings.Contains(string(body), "correct") {
		t.Fatalf("public quiz must not leak answers: %s", body)
	}
}

type testEnv struct {
	server  *httptest.Server
	kv      *memory.KVStore
	quizzes *memory.QuizRepository
	ticker  *manualTicker
	created atomic.Int32
}

func newTestEnv(t *testing.T, opts ...func(*Options)) *testEnv {
	t.Helper()
	env := &testEnv{
		kv:     memory.NewKVStore(),
		ticker: &manualTicker{c: make(chan time.Time)},
	}
	env.quizzes = memory.NewQuizRepository(memory.NewStaticQuizLoader(sampleQuizzes()), time.Minute, nil)
	options := Options{
		Quizzes:     env.quizzes,
		Stores:      func(clientID string) app.Store { return env.kv.Bucket(clientID) },
		DefaultQuiz: "capitals",
		Ticker: func(time.Duration) app.Ticker {
			env.created.Add(1)
			return env.ticker
		},
	}
	for _, opt := range opts {
		opt(&options)
	}
	env.server = httptest.NewServer(NewHandler(options).Router())
	return env
}

func (e *testEnv) tickersCreated() int32 {
	return e.created.Load()
}

func (e *testEnv) close() {
	e.server.Close()
}

func (e *testEnv) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + e.server.URL[len("http"):] + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

type manualTicker struct {
	c chan time.Time
}

func (m *manualTicker) C() <-chan time.Time { return m.c }
func (m *manualTicker) Stop()               {}

type failingNotifier struct{}

func (failingNotifier) Notify(_ context.Context, _ domain.Notification, done func(error)) {
	done(&domain.NotificationDeliveryError{Sink: "test", Err: errors.New("relay down")})
}

type rawMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type decodedMessage struct {
	Type    string
	Payload map[string]any
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readRaw(t *testing.T, conn *websocket.Conn) rawMessage {
	t.Helper()
	var msg rawMessage
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg
}

// readUntil skips messages of other types until one of type expect arrives.
func readUntil(t *testing.T, conn *websocket.Conn, expect string) decodedMessage {
	t.Helper()
	for i := 0; i < 10; i++ {
		msg := readRaw(t, conn)
		if msg.Type != expect {
			continue
		}
		out := decodedMessage{Type: msg.Type}
		_ = json.Unmarshal(msg.Payload, &out.Payload)
		return out
	}
	t.Fatalf("no %s message received", expect)
	return decodedMessage{}
}

func readView(t *testing.T, conn *websocket.Conn) domain.View {
	t.Helper()
	for i := 0; i < 10; i++ {
		msg := readRaw(t, conn)
		if msg.Type != "view" {
			continue
		}
		var view domain.View
		if err := json.Unmarshal(msg.Payload, &view); err != nil {
			t.Fatalf("decode view: %v", err)
		}
		return view
	}
	t.Fatalf("no view received")
	return domain.View{}
}

func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"capitals": {
			ID:              "capitals",
			Title:           "Capitals",
			DurationSeconds: 5,
			Questions: []domain.Question{
				{ID: 1, Prompt: "What is the capital city of France?", Answer: domain.MultipleChoice("Paris", "London", "Paris", "Berlin", "Madrid")},
				{ID: 2, Prompt: "Name the capital of Italy.", Answer: domain.FreeText("Rome", "Roma")},
			},
		},
	}
}
