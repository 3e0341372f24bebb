package domain

// SessionState is the controller lifecycle state.
type SessionState string

const (
	StateNotStarted SessionState = "not_started"
	StateInProgress SessionState = "in_progress"
	StateSubmitting SessionState = "submitting"
	StateCompleted  SessionState = "completed"
)

// QuestionView is a question as shown to the participant, without the expected answer.
type QuestionView struct {
	ID      int        `json:"id"`
	Prompt  string     `json:"prompt"`
	Kind    AnswerKind `json:"kind"`
	Options []string   `json:"options,omitempty"`
}

// ResultView carries the final results for presentation.
type ResultView struct {
	Report  ScoreReport `json:"report"`
	Tier    Tier        `json:"tier"`
	Message string      `json:"message"`
}

// View is an immutable snapshot emitted after every transition.
type View struct {
	State        SessionState  `json:"state"`
	QuizTitle    string        `json:"quizTitle"`
	Question     *QuestionView `json:"question,omitempty"`
	Index        int           `json:"index"`
	Total        int           `json:"total"`
	Progress     float64       `json:"progress"`
	Answer       string        `json:"answer"`
	TimeText     string        `json:"timeText"`
	TimeWarning  bool          `json:"timeWarning"`
	CanPrevious  bool          `json:"canPrevious"`
	ShowNext     bool          `json:"showNext"`
	ShowSubmit   bool          `json:"showSubmit"`
	Result       *ResultView   `json:"result,omitempty"`
	Notice       string        `json:"notice,omitempty"`
	DeliveryWarn string        `json:"deliveryWarning,omitempty"`
}

// PublicQuestions strips expected answers from a quiz.
func PublicQuestions(quiz Quiz) []QuestionView {
	out := make([]QuestionView, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		out = append(out, PublicQuestion(q))
	}
	return out
}

// PublicQuestion strips the expected answer from q.
func PublicQuestion(q Question) QuestionView {
	view := QuestionView{ID: q.ID, Prompt: q.Prompt, Kind: q.Answer.Kind}
	if q.Answer.Kind == KindMultipleChoice {
		view.Options = append([]string(nil), q.Answer.Options...)
	}
	return view
}
