package app

// AnswerStore holds one answer per question position. Empty means unanswered.
type AnswerStore struct {
	answers []string
}

func NewAnswerStore(size int) *AnswerStore {
	return &AnswerStore{answers: make([]string, size)}
}

// Set writes value at index; out-of-range indexes are ignored.
func (a *AnswerStore) Set(index int, value string) bool {
	if index < 0 || index >= len(a.answers) {
		return false
	}
	a.answers[index] = value
	return true
}

func (a *AnswerStore) Get(index int) string {
	if index < 0 || index >= len(a.answers) {
		return ""
	}
	return a.answers[index]
}

func (a *AnswerStore) Len() int {
	return len(a.answers)
}

// Values returns a copy of all answers in question order.
func (a *AnswerStore) Values() []string {
	out := make([]string, len(a.answers))
	copy(out, a.answers)
	return out
}
