package app

import (
	"time"

	"timed-quiz/internal/domain"
)

// Session is one participant's attempt. It is owned by a single Controller.
type Session struct {
	questions        []domain.Question
	answers          *AnswerStore
	currentIndex     int
	participantName  string
	participantEmail string
	startedAt        time.Time
	clock            *Clock
}

func newSession(questions []domain.Question, name, email string, clock *Clock, startedAt time.Time) *Session {
	return &Session{
		questions:        questions,
		answers:          NewAnswerStore(len(questions)),
		participantName:  name,
		participantEmail: email,
		startedAt:        startedAt,
		clock:            clock,
	}
}

func (s *Session) snapshot(now time.Time) domain.Snapshot {
	return domain.Snapshot{
		CurrentQuestionIndex: s.currentIndex,
		UserAnswers:          s.answers.Values(),
		TimeRemaining:        s.clock.Remaining(),
		UserName:             s.participantName,
		UserEmail:            s.participantEmail,
		Timestamp:            now,
	}
}
