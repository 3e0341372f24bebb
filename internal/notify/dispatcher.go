package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"timed-quiz/internal/domain"
)

// Sender delivers one notification synchronously.
type Sender interface {
	Name() string
	Send(ctx context.Context, n domain.Notification) error
}

// ErrDispatcherClosed is reported to sends attempted after Close.
var ErrDispatcherClosed = errors.New("notification dispatcher closed")

// Dispatcher turns a Sender into a fire-and-forget app.Notifier.
// Sends outlive the caller's context but are bounded by timeout.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	log     *zap.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(sender Sender, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		sender:  sender,
		timeout: timeout,
		log:     logger.Named("notify").With(zap.String("sink", sender.Name())),
	}
}

// Notify returns immediately; done receives nil or a *domain.NotificationDeliveryError.
func (d *Dispatcher) Notify(ctx context.Context, n domain.Notification, done func(error)) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.log.Warn("notification dropped after shutdown", zap.String("participant", n.ParticipantName))
		if done != nil {
			// keep the callback off the caller's goroutine, as for real sends
			go done(&domain.NotificationDeliveryError{Sink: d.sender.Name(), Err: ErrDispatcherClosed})
		}
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		err := d.sender.Send(sendCtx, n)
		if err != nil {
			d.log.Warn("notification failed", zap.String("participant", n.ParticipantName), zap.Error(err))
			err = &domain.NotificationDeliveryError{Sink: d.sender.Name(), Err: err}
		} else {
			d.log.Info("notification sent", zap.String("participant", n.ParticipantName), zap.String("score", n.ScoreSummary))
		}
		if done != nil {
			done(err)
		}
	}()
}

// Close rejects further sends and blocks until in-flight ones finish. It is idempotent.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}
