package domain

import (
	"fmt"
	"strings"
	"time"
)

// AnswerKind discriminates the answer spec variants.
type AnswerKind string

const (
	KindMultipleChoice AnswerKind = "multiple_choice"
	KindFreeText       AnswerKind = "free_text"
)

// NoAnswerLabel is shown in reports for an empty answer; the stored answer stays empty.
const NoAnswerLabel = "(no answer)"

// AnswerSpec describes how a question is answered and checked.
// Options/Correct apply to multiple choice, Keywords to free text.
type AnswerSpec struct {
	Kind     AnswerKind `json:"kind" yaml:"kind"`
	Options  []string   `json:"options,omitempty" yaml:"options,omitempty"`
	Correct  string     `json:"correct,omitempty" yaml:"correct,omitempty"`
	Keywords []string   `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// MultipleChoice builds an answer spec matched by exact option text.
func MultipleChoice(correct string, options ...string) AnswerSpec {
	return AnswerSpec{Kind: KindMultipleChoice, Options: options, Correct: correct}
}

// FreeText builds an answer spec matched case-insensitively against keywords.
func FreeText(keywords ...string) AnswerSpec {
	return AnswerSpec{Kind: KindFreeText, Keywords: keywords}
}

// Check reports whether answer is correct. Empty answers are never correct.
func (s AnswerSpec) Check(answer string) bool {
	if answer == "" {
		return false
	}
	switch s.Kind {
	case KindMultipleChoice:
		return answer == s.Correct
	case KindFreeText:
		normalized := strings.ToLower(strings.TrimSpace(answer))
		if normalized == "" {
			return false
		}
		for _, kw := range s.Keywords {
			if normalized == strings.ToLower(strings.TrimSpace(kw)) {
				return true
			}
		}
	}
	return false
}

// CorrectText renders the expected answer for reports.
func (s AnswerSpec) CorrectText() string {
	if s.Kind == KindFreeText {
		return strings.Join(s.Keywords, " / ")
	}
	return s.Correct
}

// Validate rejects specs the scorer cannot interpret.
func (s AnswerSpec) Validate() error {
	switch s.Kind {
	case KindMultipleChoice, KindFreeText:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAnswerKind, s.Kind)
	}
}

// Question is immutable once loaded.
type Question struct {
	ID     int        `json:"id" yaml:"id"`
	Prompt string     `json:"prompt" yaml:"prompt"`
	Answer AnswerSpec `json:"answer" yaml:"answer"`
}

// Quiz is a collection of questions with a countdown budget.
type Quiz struct {
	ID              string     `json:"id" yaml:"id"`
	Title           string     `json:"title" yaml:"title"`
	DurationSeconds int        `json:"durationSeconds,omitempty" yaml:"duration_seconds,omitempty"`
	Questions       []Question `json:"questions" yaml:"questions"`
}

// Validate checks every question's answer spec.
func (q Quiz) Validate() error {
	for _, question := range q.Questions {
		if err := question.Answer.Validate(); err != nil {
			return fmt.Errorf("quiz %s question %d: %w", q.ID, question.ID, err)
		}
	}
	return nil
}

// ScoreDetail is the per-question outcome of a submission.
type ScoreDetail struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
}

// ScoreReport is produced once per submission.
type ScoreReport struct {
	CorrectCount int           `json:"correct"`
	Total        int           `json:"total"`
	Percentage   int           `json:"percentage"`
	Details      []ScoreDetail `json:"details"`
}

// Summary renders the score as "correct/total".
func (r ScoreReport) Summary() string {
	return fmt.Sprintf("%d/%d", r.CorrectCount, r.Total)
}

// Snapshot is the persisted in-progress session. It is written but not restored.
type Snapshot struct {
	CurrentQuestionIndex int       `json:"currentQuestionIndex"`
	UserAnswers          []string  `json:"userAnswers"`
	TimeRemaining        int       `json:"timeRemaining"`
	UserName             string    `json:"userName"`
	UserEmail            string    `json:"userEmail"`
	Timestamp            time.Time `json:"timestamp"`
}

// ResultRecord is stored as the last result and appended to history.
type ResultRecord struct {
	UserName    string      `json:"userName"`
	UserEmail   string      `json:"userEmail"`
	Score       ScoreReport `json:"score"`
	CompletedAt time.Time   `json:"completedAt"`
	TimeTaken   string      `json:"timeTaken"`
	TimedOut    bool        `json:"timedOut"`
}

// Notification is what the result sink receives.
type Notification struct {
	Recipient        string `json:"to_email"`
	ParticipantName  string `json:"user_name"`
	ParticipantEmail string `json:"user_email"`
	ScoreSummary     string `json:"score"`
	PercentageText   string `json:"percentage"`
	SubmittedAtText  string `json:"quiz_date"`
	ElapsedTimeText  string `json:"time_taken"`
	DetailsText      string `json:"answers"`
}
