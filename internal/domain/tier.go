package domain

// Tier is the feedback bucket derived from a percentage. It is never stored.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// TierFor buckets a percentage; lower bounds are inclusive.
func TierFor(percentage int) Tier {
	switch {
	case percentage >= 80:
		return TierHigh
	case percentage >= 60:
		return TierMedium
	default:
		return TierLow
	}
}

// Message is the feedback line shown with the results.
func (t Tier) Message() string {
	switch t {
	case TierHigh:
		return "Excellent! You did a great job!"
	case TierMedium:
		return "Good job! Keep practicing to improve."
	default:
		return "Don't give up! Practice makes perfect."
	}
}
