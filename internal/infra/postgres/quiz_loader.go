package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"timed-quiz/internal/domain"
)

const (
	selectQuizSQL   = `SELECT data FROM quizzes WHERE id = $1`
	selectQuizIDSQL = `SELECT id FROM quizzes ORDER BY id`
)

// QuizLoader reads quiz definitions stored as JSONB by the seed command.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

// LoadQuiz returns domain.ErrQuizNotFound when no row matches.
func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var raw []byte
	if err := l.pool.QueryRow(ctx, selectQuizSQL, quizID).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		return domain.Quiz{}, fmt.Errorf("query quiz %s: %w", quizID, err)
	}

	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("decode quiz %s: %w", quizID, err)
	}
	if quiz.ID == "" {
		quiz.ID = quizID
	}
	if err := quiz.Validate(); err != nil {
		return domain.Quiz{}, fmt.Errorf("quiz %s: %w", quizID, err)
	}
	return quiz, nil
}

// QuizIDs lists every stored quiz.
func (l *QuizLoader) QuizIDs(ctx context.Context) ([]string, error) {
	rows, err := l.pool.Query(ctx, selectQuizIDSQL)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan quiz id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
