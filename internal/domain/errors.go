package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when an operation is not allowed in the current session state.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrEmptyName blocks a session start without a participant name.
	ErrEmptyName = errors.New("participant name is required")
	// ErrDegenerateQuiz indicates a quiz with no questions; it cannot be started or scored.
	ErrDegenerateQuiz = errors.New("quiz has no questions")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrUnknownAnswerKind indicates quiz content with an unsupported answer spec.
	ErrUnknownAnswerKind = errors.New("unknown answer kind")
)

// NotificationDeliveryError reports a failed result notification. It never affects session state.
type NotificationDeliveryError struct {
	Sink string
	Err  error
}

func (e *NotificationDeliveryError) Error() string {
	return fmt.Sprintf("deliver notification via %s: %v", e.Sink, e.Err)
}

func (e *NotificationDeliveryError) Unwrap() error {
	return e.Err
}
