package app

import (
	"context"

	"timed-quiz/internal/domain"
)

// Navigator moves through a session's questions and records answers.
// Every accepted transition is followed by persist.
type Navigator struct {
	session *Session
	persist func(ctx context.Context)
}

func NewNavigator(session *Session, persist func(ctx context.Context)) *Navigator {
	if persist == nil {
		persist = func(context.Context) {}
	}
	return &Navigator{session: session, persist: persist}
}

// GoTo moves to index. Out-of-range indexes are a silent no-op.
func (n *Navigator) GoTo(ctx context.Context, index int) bool {
	if index < 0 || index >= len(n.session.questions) {
		return false
	}
	n.session.currentIndex = index
	n.persist(ctx)
	return true
}

func (n *Navigator) Next(ctx context.Context) bool {
	return n.GoTo(ctx, n.session.currentIndex+1)
}

func (n *Navigator) Previous(ctx context.Context) bool {
	return n.GoTo(ctx, n.session.currentIndex-1)
}

// RecordAnswer stores value for the current question; any string is accepted.
func (n *Navigator) RecordAnswer(ctx context.Context, value string) {
	n.session.answers.Set(n.session.currentIndex, value)
	n.persist(ctx)
}

func (n *Navigator) Index() int { return n.session.currentIndex }

func (n *Navigator) Answer() string {
	return n.session.answers.Get(n.session.currentIndex)
}

func (n *Navigator) Current() domain.Question {
	return n.session.questions[n.session.currentIndex]
}

func (n *Navigator) IsFirst() bool { return n.session.currentIndex == 0 }

func (n *Navigator) IsLast() bool {
	return n.session.currentIndex == len(n.session.questions)-1
}
