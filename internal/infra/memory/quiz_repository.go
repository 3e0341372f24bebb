package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"timed-quiz/internal/domain"
)

// QuizLoader fetches quiz content from a backing store (YAML file, Postgres).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizRepository caches quiz definitions so each new tab does not hit the loader.
// A non-positive TTL keeps entries until Invalidate.
type QuizRepository struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	log    *zap.Logger
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu      sync.RWMutex
	entries map[string]quizEntry
}

type quizEntry struct {
	quiz      domain.Quiz
	expiresAt time.Time // zero means no expiry
}

func (e quizEntry) fresh(now time.Time) bool {
	return e.expiresAt.IsZero() || e.expiresAt.After(now)
}

func NewQuizRepository(loader QuizLoader, ttl time.Duration, logger *zap.Logger) *QuizRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizRepository{
		loader:  loader,
		ttl:     ttl,
		clock:   time.Now,
		log:     logger.Named("quiz-cache"),
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		entries: make(map[string]quizEntry),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := r.lookup(quizID); ok {
		return quiz, nil
	}

	result, err, shared := r.sf.Do(quizID, func() (interface{}, error) {
		if quiz, ok := r.lookup(quizID); ok {
			return quiz, nil
		}
		quiz, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		if err := quiz.Validate(); err != nil {
			return domain.Quiz{}, err
		}
		r.store(quizID, quiz)
		r.log.Debug("quiz loaded", zap.String("quiz", quizID), zap.Int("questions", len(quiz.Questions)))
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("get quiz %s: %w", quizID, err)
	}
	if shared {
		r.log.Debug("quiz load shared", zap.String("quiz", quizID))
	}
	return result.(domain.Quiz), nil
}

// Preload warms the cache at process start so a missing quiz fails fast.
func (r *QuizRepository) Preload(ctx context.Context, quizIDs ...string) error {
	for _, id := range quizIDs {
		if _, err := r.GetQuiz(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Invalidate drops a cached quiz.
func (r *QuizRepository) Invalidate(quizID string) {
	r.mu.Lock()
	delete(r.entries, quizID)
	r.mu.Unlock()
}

func (r *QuizRepository) lookup(quizID string) (domain.Quiz, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[quizID]
	if !ok || !entry.fresh(r.clock()) {
		return domain.Quiz{}, false
	}
	return entry.quiz, true
}

func (r *QuizRepository) store(quizID string, quiz domain.Quiz) {
	entry := quizEntry{quiz: quiz}
	if r.ttl > 0 {
		entry.expiresAt = r.clock().Add(r.ttlWithJitter())
	}
	r.mu.Lock()
	r.entries[quizID] = entry
	r.mu.Unlock()
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	// up to 10% jitter spreads expirations across instances
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
