package app

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"timed-quiz/internal/domain"
)

const (
	timeUpNotice        = "Time is up! Your quiz has been submitted automatically."
	deliveryWarningText = "Warning: Failed to send email. Your results have been saved locally."
)

// Options configures a Controller.
type Options struct {
	Quiz      domain.Quiz
	Store     Store
	Notifier  Notifier
	Recipient string
	Logger    *zap.Logger
	// Now is the wall clock used for timestamps; defaults to time.Now.
	Now func() time.Time
	// OnDelivery receives the notification outcome of a submission, possibly from
	// another goroutine. The owner is expected to hand both back through HandleDelivery.
	OnDelivery func(submission uint64, err error)
}

// Controller runs one quiz session lifecycle:
// NotStarted -> InProgress -> Submitting -> Completed -> NotStarted.
// It is not safe for concurrent use; a single event loop owns it.
type Controller struct {
	quiz       domain.Quiz
	store      Store
	notifier   Notifier
	recipient  string
	log        *zap.Logger
	now        func() time.Time
	onDelivery func(uint64, error)

	state        domain.SessionState
	clock        *Clock
	session      *Session
	nav          *Navigator
	report       *domain.ScoreReport
	notice       string
	deliveryWarn string
	// submission numbers each submit; it is never reset.
	submission uint64
}

func NewController(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		quiz:       opts.Quiz,
		store:      opts.Store,
		notifier:   opts.Notifier,
		recipient:  opts.Recipient,
		log:        logger.Named("controller").With(zap.String("quiz", opts.Quiz.ID)),
		now:        now,
		onDelivery: opts.OnDelivery,
		state:      domain.StateNotStarted,
		clock:      NewClock(opts.Quiz.DurationSeconds),
	}
}

func (c *Controller) State() domain.SessionState { return c.state }

// Clock exposes the countdown for inspection.
func (c *Controller) Clock() *Clock { return c.clock }

// Report returns the last score report of the current session, if completed.
func (c *Controller) Report() (domain.ScoreReport, bool) {
	if c.report == nil {
		return domain.ScoreReport{}, false
	}
	return *c.report, true
}

// CurrentIndex is zero when no session is live.
func (c *Controller) CurrentIndex() int {
	if c.nav == nil {
		return 0
	}
	return c.nav.Index()
}

// Answers returns a copy of the live session's answers.
func (c *Controller) Answers() []string {
	if c.session == nil {
		return nil
	}
	return c.session.answers.Values()
}

// Start begins a session for name. The state is left unchanged on error.
func (c *Controller) Start(ctx context.Context, name, email string) error {
	if c.state != domain.StateNotStarted {
		return domain.ErrInvalidTransition
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ErrEmptyName
	}
	if len(c.quiz.Questions) == 0 {
		return domain.ErrDegenerateQuiz
	}

	c.session = newSession(c.quiz.Questions, name, strings.TrimSpace(email), c.clock, c.now())
	c.nav = NewNavigator(c.session, c.saveProgress)
	c.clock.Start()
	c.state = domain.StateInProgress
	c.saveProgress(ctx)

	c.log.Info("session started",
		zap.String("participant", name),
		zap.Int("questions", len(c.quiz.Questions)),
		zap.Int("budget_seconds", c.clock.Budget()))
	return nil
}

// GoTo moves to index; it is a no-op outside an in-progress session or out of bounds.
func (c *Controller) GoTo(ctx context.Context, index int) bool {
	if c.state != domain.StateInProgress {
		return false
	}
	return c.nav.GoTo(ctx, index)
}

func (c *Controller) Next(ctx context.Context) bool {
	if c.state != domain.StateInProgress {
		return false
	}
	return c.nav.Next(ctx)
}

func (c *Controller) Previous(ctx context.Context) bool {
	if c.state != domain.StateInProgress {
		return false
	}
	return c.nav.Previous(ctx)
}

// RecordAnswer stores value for the current question.
func (c *Controller) RecordAnswer(ctx context.Context, value string) error {
	if c.state != domain.StateInProgress {
		return domain.ErrInvalidTransition
	}
	c.nav.RecordAnswer(ctx, value)
	return nil
}

// Tick advances the countdown by one second and submits on timeout.
// It reports whether this tick triggered the submission.
func (c *Controller) Tick(ctx context.Context) bool {
	if c.state != domain.StateInProgress {
		return false
	}
	if !c.clock.Tick() {
		return false
	}
	c.notice = timeUpNotice
	_, ok := c.submit(ctx, true)
	return ok
}

// Submit scores the session. A second submission, whether manual or by timeout,
// is swallowed and reports false.
func (c *Controller) Submit(ctx context.Context) (domain.ScoreReport, bool) {
	return c.submit(ctx, false)
}

func (c *Controller) submit(ctx context.Context, timedOut bool) (domain.ScoreReport, bool) {
	if c.state != domain.StateInProgress {
		c.log.Debug("submit ignored", zap.String("state", string(c.state)), zap.Error(domain.ErrInvalidTransition))
		return domain.ScoreReport{}, false
	}
	c.state = domain.StateSubmitting
	c.clock.Stop()

	report, err := Score(c.session.questions, c.session.answers.Values())
	if err != nil {
		c.log.Error("score session", zap.Error(err))
		c.state = domain.StateInProgress
		return domain.ScoreReport{}, false
	}

	record := domain.ResultRecord{
		UserName:    c.session.participantName,
		UserEmail:   c.session.participantEmail,
		Score:       report,
		CompletedAt: c.now(),
		TimeTaken:   FormatElapsed(c.clock.Elapsed()),
		TimedOut:    timedOut,
	}
	c.saveResult(ctx, record)

	c.submission++
	c.report = &report
	c.state = domain.StateCompleted
	c.dispatch(ctx, c.submission, record)
	c.log.Info("session submitted",
		zap.String("participant", record.UserName),
		zap.String("score", report.Summary()),
		zap.Int("percentage", report.Percentage),
		zap.Bool("timed_out", timedOut))
	return report, true
}

// Submission identifies the latest submit; zero before the first one.
func (c *Controller) Submission() uint64 { return c.submission }

// HandleDelivery applies the notification outcome of submission. Failures only raise a
// dismissible warning, and only for the result currently shown. It reports whether a
// warning was raised.
func (c *Controller) HandleDelivery(submission uint64, err error) bool {
	if err == nil {
		c.log.Info("result notification delivered", zap.Uint64("submission", submission))
		return false
	}
	c.log.Warn("result notification failed", zap.Uint64("submission", submission), zap.Error(err))
	if submission != c.submission || c.state != domain.StateCompleted {
		c.log.Debug("stale delivery outcome ignored", zap.Uint64("current", c.submission))
		return false
	}
	c.deliveryWarn = deliveryWarningText
	return true
}

func (c *Controller) DismissWarning() {
	c.deliveryWarn = ""
}

// Restart returns a completed session to NotStarted. History is kept.
func (c *Controller) Restart(ctx context.Context) error {
	if c.state != domain.StateCompleted {
		return domain.ErrInvalidTransition
	}
	if c.store != nil {
		if err := c.store.Remove(ctx, KeyProgress); err != nil {
			c.log.Warn("clear progress", zap.Error(err))
		}
	}
	c.session = nil
	c.nav = nil
	c.report = nil
	c.notice = ""
	c.deliveryWarn = ""
	c.clock.Reset()
	c.state = domain.StateNotStarted
	c.log.Info("session restarted")
	return nil
}

// View builds the presentation snapshot for the current state.
func (c *Controller) View() domain.View {
	total := len(c.quiz.Questions)
	view := domain.View{
		State:        c.state,
		QuizTitle:    c.quiz.Title,
		Total:        total,
		TimeText:     FormatClock(c.clock.Remaining()),
		Notice:       c.notice,
		DeliveryWarn: c.deliveryWarn,
	}

	if c.state == domain.StateInProgress && c.nav != nil {
		question := domain.PublicQuestion(c.nav.Current())
		view.Question = &question
		view.Index = c.nav.Index()
		view.Progress = float64(c.nav.Index()+1) / float64(total)
		view.Answer = c.nav.Answer()
		view.TimeWarning = c.clock.Warning()
		view.CanPrevious = !c.nav.IsFirst()
		view.ShowNext = !c.nav.IsLast()
		view.ShowSubmit = c.nav.IsLast()
	}

	if c.state == domain.StateCompleted && c.report != nil {
		tier := domain.TierFor(c.report.Percentage)
		view.Result = &domain.ResultView{
			Report:  *c.report,
			Tier:    tier,
			Message: tier.Message(),
		}
	}
	return view
}

func (c *Controller) saveProgress(ctx context.Context) {
	if c.store == nil || c.session == nil {
		return
	}
	if err := c.store.Set(ctx, KeyProgress, c.session.snapshot(c.now())); err != nil {
		c.log.Warn("save progress", zap.Error(err))
	}
}

// saveResult writes the last result then history; a failure between the two is tolerated.
func (c *Controller) saveResult(ctx context.Context, record domain.ResultRecord) {
	if c.store == nil {
		return
	}
	if err := c.store.Set(ctx, KeyLastResult, record); err != nil {
		c.log.Warn("save last result", zap.Error(err))
	}
	if err := appendHistory(ctx, c.store, record); err != nil {
		c.log.Warn("append history", zap.Error(err))
	}
}

func (c *Controller) dispatch(ctx context.Context, submission uint64, record domain.ResultRecord) {
	if c.notifier == nil {
		return
	}
	onDelivery := c.onDelivery
	c.notifier.Notify(ctx, BuildNotification(c.recipient, record), func(err error) {
		if onDelivery != nil {
			onDelivery(submission, err)
		}
	})
}
