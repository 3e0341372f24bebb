package app

import (
	"context"

	"timed-quiz/internal/domain"
)

// Keys used in a client's store.
const (
	KeyProgress   = "quizProgress"
	KeyLastResult = "lastQuizResults"
	KeyHistory    = "quizHistory"
)

// Store is a client's key-value persistence. Values must be JSON-serializable.
// Get reports false when the key is absent.
type Store interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, key string) error
}

// Notifier dispatches a result notification without blocking the caller.
// done is invoked exactly once, possibly from another goroutine.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification, done func(error))
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// LoadHistory returns all completed results in submission order.
func LoadHistory(ctx context.Context, store Store) ([]domain.ResultRecord, error) {
	var history []domain.ResultRecord
	if _, err := store.Get(ctx, KeyHistory, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// LoadLastResult returns the most recent completed result, if any.
func LoadLastResult(ctx context.Context, store Store) (domain.ResultRecord, bool, error) {
	var record domain.ResultRecord
	ok, err := store.Get(ctx, KeyLastResult, &record)
	if err != nil {
		return domain.ResultRecord{}, false, err
	}
	return record, ok, nil
}

// appendHistory is a read-modify-write; concurrent writers are last-write-wins.
func appendHistory(ctx context.Context, store Store, record domain.ResultRecord) error {
	history, err := LoadHistory(ctx, store)
	if err != nil {
		return err
	}
	history = append(history, record)
	return store.Set(ctx, KeyHistory, history)
}
