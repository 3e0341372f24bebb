package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"timed-quiz/internal/domain"
)

func TestQuizRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		QuizLoader: NewStaticQuizLoader(map[string]domain.Quiz{
			"capitals": sampleQuiz(),
		}),
	}
	repo := NewQuizRepository(loader, time.Minute, nil)

	if _, err := repo.GetQuiz(context.Background(), "capitals"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetQuiz(context.Background(), "capitals"); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestQuizRepositoryExpires(t *testing.T) {
	loader := &countingLoader{
		QuizLoader: NewStaticQuizLoader(map[string]domain.Quiz{"capitals": sampleQuiz()}),
	}
	repo := NewQuizRepository(loader, time.Minute, nil)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetQuiz(context.Background(), "capitals")
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetQuiz(context.Background(), "capitals")
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}
}

func TestQuizRepositoryInvalidateAndMissing(t *testing.T) {
	loader := &countingLoader{
		QuizLoader: NewStaticQuizLoader(map[string]domain.Quiz{"capitals": sampleQuiz()}),
	}
	repo := NewQuizRepository(loader, 0, nil)

	if err := repo.Preload(context.Background(), "capitals"); err != nil {
		t.Fatalf("preload: %v", err)
	}
	repo.Invalidate("capitals")
	_, _ = repo.GetQuiz(context.Background(), "capitals")
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls)
	}

	if _, err := repo.GetQuiz(context.Background(), "unknown"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestParseQuizYAML(t *testing.T) {
	doc := []byte(`
quizzes:
  - id: capitals
    title: Capitals
    duration_seconds: 120
    questions:
      - id: 1
        prompt: What is the capital city of France?
        answer:
          kind: multiple_choice
          options: [London, Paris, Berlin, Madrid]
          correct: Paris
      - id: 2
        prompt: Name the capital of Italy.
        answer:
          kind: free_text
          keywords: [Rome, Roma]
`)
	loader, err := ParseQuizYAML(doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	quiz, err := loader.LoadQuiz(context.Background(), "capitals")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if quiz.DurationSeconds != 120 || len(quiz.Questions) != 2 {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
	if quiz.Questions[1].Answer.Kind != domain.KindFreeText || len(quiz.Questions[1].Answer.Keywords) != 2 {
		t.Fatalf("unexpected free text spec %+v", quiz.Questions[1].Answer)
	}

	_, err = ParseQuizYAML([]byte("quizzes:\n  - id: bad\n    questions:\n      - id: 1\n        answer:\n          kind: essay\n"))
	if !errors.Is(err, domain.ErrUnknownAnswerKind) {
		t.Fatalf("expected ErrUnknownAnswerKind, got %v", err)
	}
}

type countingLoader struct {
	QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.calls++
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID: "capitals",
		Questions: []domain.Question{
			{
				ID:     1,
				Prompt: "What is the capital city of France?",
				Answer: domain.MultipleChoice("Paris", "London", "Paris", "Berlin", "Madrid"),
			},
		},
	}
}
