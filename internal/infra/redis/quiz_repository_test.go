package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"timed-quiz/internal/domain"
	"timed-quiz/internal/infra/memory"
)

func TestQuizRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		QuizLoader: memory.NewStaticQuizLoader(map[string]domain.Quiz{
			"capitals": sampleQuiz(),
		}),
	}
	repo := NewQuizRepository(client, loader, time.Minute, nil)

	quiz, err := repo.GetQuiz(context.Background(), "capitals")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:def:capitals") {
		t.Fatalf("expected quiz cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.GetQuiz(context.Background(), "capitals")
	if err != nil {
		t.Fatalf("get cached quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(cached.Questions) != len(quiz.Questions) || cached.Questions[1].Answer.Kind != domain.KindFreeText {
		t.Fatalf("cached quiz lost content: %+v", cached)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := repo.GetQuiz(context.Background(), "capitals"); err != nil {
		t.Fatalf("get after expiry: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls=%d", loader.calls)
	}

	if err := repo.Invalidate(context.Background(), "capitals"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("quiz:def:capitals") {
		t.Fatalf("expected cached quiz removed")
	}
}

type countingLoader struct {
	memory.QuizLoader
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
				Answer: domain.MultipleChoice("Paris", "London", "Paris", "Berlin"),
			},
			{
				ID:     2,
				Prompt: "Name the capital of Italy.",
				Answer: domain.FreeText("rome"),
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
