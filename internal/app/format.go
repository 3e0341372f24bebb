package app

import (
	"fmt"
	"strings"

	"timed-quiz/internal/domain"
)

const (
	emailNotProvided = "Not provided"
	submittedAtFmt   = "2006-01-02 15:04:05"
)

// FormatClock renders seconds as MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatElapsed renders seconds as "M minutes S seconds".
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d minutes %d seconds", seconds/60, seconds%60)
}

// FormatDetails renders the per-question breakdown for the email body.
func FormatDetails(details []domain.ScoreDetail) string {
	var b strings.Builder
	for i, d := range details {
		status := "Incorrect ✗"
		if d.IsCorrect {
			status = "Correct ✓"
		}
		fmt.Fprintf(&b, "Question %d: %s\n", i+1, d.Question)
		fmt.Fprintf(&b, "Your Answer: %s\n", d.UserAnswer)
		fmt.Fprintf(&b, "Correct Answer: %s\n", d.CorrectAnswer)
		fmt.Fprintf(&b, "Status: %s\n", status)
		b.WriteString("-------------------\n")
	}
	return b.String()
}

// BuildNotification maps a completed result onto the sink payload.
func BuildNotification(recipient string, record domain.ResultRecord) domain.Notification {
	email := record.UserEmail
	if email == "" {
		email = emailNotProvided
	}
	return domain.Notification{
		Recipient:        recipient,
		ParticipantName:  record.UserName,
		ParticipantEmail: email,
		ScoreSummary:     record.Score.Summary(),
		PercentageText:   fmt.Sprintf("%d%%", record.Score.Percentage),
		SubmittedAtText:  record.CompletedAt.Format(submittedAtFmt),
		ElapsedTimeText:  record.TimeTaken,
		DetailsText:      FormatDetails(record.Score.Details),
	}
}
