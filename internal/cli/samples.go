package cli

import (
	"timed-quiz/internal/config"
	"timed-quiz/internal/domain"
)

// sampleQuizzes is served when neither Postgres nor a quiz file is configured.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		config.DefaultQuizID: {
			ID:              config.DefaultQuizID,
			Title:           "General Knowledge",
			DurationSeconds: 300,
			Questions: []domain.Question{
				{ID: 1, Prompt: "What is the capital city of France?", Answer: domain.MultipleChoice("Paris", "London", "Paris", "Berlin", "Madrid")},
				{ID: 2, Prompt: "Who developed the theory of relativity?", Answer: domain.MultipleChoice("Albert Einstein", "Isaac Newton", "Albert Einstein", "Nikola Tesla", "Stephen Hawking")},
				{ID: 3, Prompt: "What is the chemical symbol for water?", Answer: domain.MultipleChoice("H2O", "H2O", "CO2", "O2", "NaCl")},
				{ID: 4, Prompt: "In which year did World War II end?", Answer: domain.MultipleChoice("1945", "1943", "1944", "1945", "1946")},
				{ID: 5, Prompt: "What is the largest planet in our solar system?", Answer: domain.MultipleChoice("Jupiter", "Earth", "Mars", "Jupiter", "Saturn")},
			},
		},
		"capitals-free-text": {
			ID:              "capitals-free-text",
			Title:           "Capitals (type your answer)",
			DurationSeconds: 120,
			Questions: []domain.Question{
				{ID: 1, Prompt: "What is the capital of Italy?", Answer: domain.FreeText("Rome", "Roma")},
				{ID: 2, Prompt: "What is the capital of Japan?", Answer: domain.FreeText("Tokyo")},
				{ID: 3, Prompt: "What is the capital of Germany?", Answer: domain.FreeText("Berlin")},
			},
		},
	}
}
