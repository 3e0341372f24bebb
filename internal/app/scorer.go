package app

import (
	"strings"

	"timed-quiz/internal/domain"
)

// Score grades answers against questions. It is pure: answers missing from the
// slice count as empty, and empty answers are always incorrect.
func Score(questions []domain.Question, answers []string) (domain.ScoreReport, error) {
	if len(questions) == 0 {
		return domain.ScoreReport{}, domain.ErrDegenerateQuiz
	}

	correct := 0
	details := make([]domain.ScoreDetail, 0, len(questions))
	for i, q := range questions {
		answer := ""
		if i < len(answers) {
			answer = answers[i]
		}
		ok := q.Answer.Check(answer)
		if ok {
			correct++
		}
		shown := answer
		if strings.TrimSpace(answer) == "" {
			shown = domain.NoAnswerLabel
		}
		details = append(details, domain.ScoreDetail{
			Question:      q.Prompt,
			UserAnswer:    shown,
			CorrectAnswer: q.Answer.CorrectText(),
			IsCorrect:     ok,
		})
	}

	return domain.ScoreReport{
		CorrectCount: correct,
		Total:        len(questions),
		Percentage:   Percentage(correct, len(questions)),
		Details:      details,
	}, nil
}

// Percentage rounds 100*correct/total half-up using integer arithmetic.
// The result gates the feedback tier, so 2.5 points always round to 3.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	if correct < 0 {
		correct = 0
	}
	if correct > total {
		correct = total
	}
	return (200*correct + total) / (2 * total)
}
