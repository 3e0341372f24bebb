package notify

import (
	"context"

	"go.uber.org/zap"

	"timed-quiz/internal/domain"
)

// LogSender writes notifications to the log. Used when no relay is configured.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{log: logger.Named("result-log")}
}

func (s *LogSender) Name() string { return "log" }

func (s *LogSender) Send(_ context.Context, n domain.Notification) error {
	s.log.Info("quiz result",
		zap.String("to", n.Recipient),
		zap.String("participant", n.ParticipantName),
		zap.String("email", n.ParticipantEmail),
		zap.String("score", n.ScoreSummary),
		zap.String("percentage", n.PercentageText),
		zap.String("submitted_at", n.SubmittedAtText),
		zap.String("time_taken", n.ElapsedTimeText))
	return nil
}
