package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"timed-quiz/internal/app"
	"timed-quiz/internal/domain"
)

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type answerPayload struct {
	Value string `json:"value"`
}

type gotoPayload struct {
	Index int `json:"index"`
}

type sessionPayload struct {
	ClientID string `json:"clientId"`
	QuizID   string `json:"quizId"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type deliveryOutcome struct {
	submission uint64
	err        error
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeWS runs one quiz session per connection. Inbound messages, clock ticks and
// notification outcomes are funnelled into a single loop that owns the controller.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		quizID = h.defaultQuiz
	}
	clientID := r.URL.Query().Get("clientId")
	if clientID == "" {
		clientID = uuid.NewString()
	}

	quiz, err := h.quizzes.GetQuiz(r.Context(), quizID)
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			http.Error(w, "quiz not found", http.StatusNotFound)
			return
		}
		h.log.Error("load quiz", zap.String("quiz", quizID), zap.Error(err))
		http.Error(w, "quiz unavailable", http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.log.With(zap.String("client", clientID), zap.String("quiz", quizID))
	ctx := r.Context()

	closing := make(chan struct{})
	deliveries := make(chan deliveryOutcome, 4)
	ctrl := app.NewController(app.Options{
		Quiz:      quiz,
		Store:     h.stores(clientID),
		Notifier:  h.notifier,
		Recipient: h.recipient,
		Logger:    log,
		OnDelivery: func(submission uint64, err error) {
			select {
			case deliveries <- deliveryOutcome{submission: submission, err: err}:
			case <-closing:
			}
		},
	})

	send := make(chan outboundMessage, 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write error", zap.Error(err))
				conn.Close()
				return
			}
		}
	}()
	emit := func(msg outboundMessage) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	inbound := make(chan inboundMessage)
	go func() {
		defer close(inbound)
		for {
			var msg inboundMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			select {
			case inbound <- msg:
			case <-closing:
				return
			}
		}
	}()

	// the countdown ticker only runs while a session is in progress
	var ticker app.Ticker
	var ticks <-chan time.Time
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, ticks = nil, nil
		}
	}
	defer stopTicker()

	emit(outboundMessage{Type: "session", Payload: sessionPayload{ClientID: clientID, QuizID: quizID}})
	emit(outboundMessage{Type: "view", Payload: ctrl.View()})

loop:
	for {
		select {
		case msg, ok := <-inbound:
			if !ok {
				break loop
			}
			wasRunning := ctrl.State() == domain.StateInProgress
			if errMsg := h.apply(ctx, ctrl, msg); errMsg != nil {
				emit(outboundMessage{Type: "error", Payload: *errMsg})
			}
			running := ctrl.State() == domain.StateInProgress
			switch {
			case running && !wasRunning:
				// first tick lands a full second after start
				stopTicker()
				ticker = h.ticker(time.Second)
				ticks = ticker.C()
			case !running:
				stopTicker()
			}
			emit(outboundMessage{Type: "view", Payload: ctrl.View()})
		case <-ticks:
			if ctrl.State() != domain.StateInProgress {
				stopTicker()
				continue
			}
			ctrl.Tick(ctx)
			if ctrl.State() != domain.StateInProgress {
				stopTicker()
			}
			emit(outboundMessage{Type: "view", Payload: ctrl.View()})
		case outcome := <-deliveries:
			if ctrl.HandleDelivery(outcome.submission, outcome.err) {
				emit(outboundMessage{Type: "warning", Payload: errorPayload{Code: "delivery_failed", Message: ctrl.View().DeliveryWarn}})
			}
			emit(outboundMessage{Type: "view", Payload: ctrl.View()})
		}
	}

	close(closing)
	close(send)
	<-writerDone
	log.Debug("session connection closed", zap.String("state", string(ctrl.State())))
}

func (h *Handler) apply(ctx context.Context, ctrl *app.Controller, msg inboundMessage) *errorPayload {
	switch msg.Type {
	case "start":
		var p startPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return &errorPayload{Code: "bad_payload", Message: "invalid start payload"}
		}
		return errorFor(ctrl.Start(ctx, p.Name, p.Email))
	case "answer":
		var p answerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return &errorPayload{Code: "bad_payload", Message: "invalid answer payload"}
		}
		return errorFor(ctrl.RecordAnswer(ctx, p.Value))
	case "goto":
		var p gotoPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return &errorPayload{Code: "bad_payload", Message: "invalid goto payload"}
		}
		ctrl.GoTo(ctx, p.Index)
	case "next":
		ctrl.Next(ctx)
	case "previous":
		ctrl.Previous(ctx)
	case "submit":
		// a repeated submit is swallowed; the view already shows the result
		ctrl.Submit(ctx)
	case "restart":
		return errorFor(ctrl.Restart(ctx))
	case "dismiss":
		ctrl.DismissWarning()
	default:
		return &errorPayload{Code: "unsupported", Message: "unsupported message type"}
	}
	return nil
}

func errorFor(err error) *errorPayload {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrEmptyName):
		return &errorPayload{Code: "empty_name", Message: "Please enter your name to start the quiz!"}
	case errors.Is(err, domain.ErrDegenerateQuiz):
		return &errorPayload{Code: "degenerate_quiz", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidTransition):
		return &errorPayload{Code: "invalid_transition", Message: err.Error()}
	default:
		return &errorPayload{Code: "internal", Message: err.Error()}
	}
}
