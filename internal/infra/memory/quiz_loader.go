package memory

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"timed-quiz/internal/domain"
)

// StaticQuizLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticQuizLoader struct {
	quizzes map[string]domain.Quiz
}

func NewStaticQuizLoader(quizzes map[string]domain.Quiz) *StaticQuizLoader {
	return &StaticQuizLoader{quizzes: quizzes}
}

func (l *StaticQuizLoader) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := l.quizzes[quizID]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

// Quizzes returns every quiz known to the loader.
func (l *StaticQuizLoader) Quizzes() []domain.Quiz {
	out := make([]domain.Quiz, 0, len(l.quizzes))
	for _, q := range l.quizzes {
		out = append(out, q)
	}
	return out
}

type quizFile struct {
	Quizzes []domain.Quiz `yaml:"quizzes"`
}

// NewFileQuizLoader reads quiz definitions from a YAML file once, at process start.
func NewFileQuizLoader(path string) (*StaticQuizLoader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read quiz file: %w", err)
	}
	return ParseQuizYAML(data)
}

// ParseQuizYAML decodes and validates a quiz document.
func ParseQuizYAML(data []byte) (*StaticQuizLoader, error) {
	var file quizFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode quiz file: %w", err)
	}
	quizzes := make(map[string]domain.Quiz, len(file.Quizzes))
	for _, quiz := range file.Quizzes {
		if quiz.ID == "" {
			return nil, fmt.Errorf("quiz without id")
		}
		if err := quiz.Validate(); err != nil {
			return nil, err
		}
		quizzes[quiz.ID] = quiz
	}
	return NewStaticQuizLoader(quizzes), nil
}
