package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"timed-quiz/internal/app"
	"timed-quiz/internal/domain"
)

// StoreFactory returns the persistence view owned by one client.
type StoreFactory func(clientID string) app.Store

// Options wires a Handler.
type Options struct {
	Quizzes     app.QuizRepository
	Stores      StoreFactory
	Notifier    app.Notifier
	Recipient   string
	DefaultQuiz string
	Logger      *zap.Logger
	// Ticker defaults to a real one-second ticker.
	Ticker app.TickerFactory
}

type Handler struct {
	quizzes     app.QuizRepository
	stores      StoreFactory
	notifier    app.Notifier
	recipient   string
	defaultQuiz string
	log         *zap.Logger
	ticker      app.TickerFactory
	upgrader    websocket.Upgrader
}

func NewHandler(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ticker := opts.Ticker
	if ticker == nil {
		ticker = app.NewRealTicker
	}
	return &Handler{
		quizzes:     opts.Quizzes,
		stores:      opts.Stores,
		notifier:    opts.Notifier,
		recipient:   opts.Recipient,
		defaultQuiz: opts.DefaultQuiz,
		log:         logger.Named("http"),
		ticker:      ticker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Router registers every route.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/ws", h.ServeWS)
	r.HandleFunc("/api/quizzes/{quizID}", h.GetQuiz).Methods(http.MethodGet)
	r.HandleFunc("/api/clients/{clientID}/history", h.GetHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/clients/{clientID}/last-result", h.GetLastResult).Methods(http.MethodGet)
	return r
}

type quizResponse struct {
	ID              string                `json:"id"`
	Title           string                `json:"title"`
	DurationSeconds int                   `json:"durationSeconds"`
	Questions       []domain.QuestionView `json:"questions"`
}

// GetQuiz returns the question set without expected answers.
func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["quizID"]
	quiz, err := h.quizzes.GetQuiz(r.Context(), quizID)
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			writeError(w, http.StatusNotFound, "quiz not found")
			return
		}
		h.log.Error("load quiz", zap.String("quiz", quizID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "quiz unavailable")
		return
	}
	duration := quiz.DurationSeconds
	if duration <= 0 {
		duration = app.DefaultDurationSeconds
	}
	writeJSON(w, http.StatusOK, quizResponse{
		ID:              quiz.ID,
		Title:           quiz.Title,
		DurationSeconds: duration,
		Questions:       domain.PublicQuestions(quiz),
	})
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["clientID"]
	history, err := app.LoadHistory(r.Context(), h.stores(clientID))
	if err != nil {
		h.log.Error("load history", zap.String("client", clientID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	if history == nil {
		history = []domain.ResultRecord{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *Handler) GetLastResult(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["clientID"]
	record, ok, err := app.LoadLastResult(r.Context(), h.stores(clientID))
	if err != nil {
		h.log.Error("load last result", zap.String("client", clientID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "result unavailable")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no results yet")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
