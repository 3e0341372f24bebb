package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"timed-quiz/internal/app"
	"timed-quiz/internal/config"
	"timed-quiz/internal/domain"
	"timed-quiz/internal/infra/memory"
	pgloader "timed-quiz/internal/infra/postgres"
	redisstore "timed-quiz/internal/infra/redis"
	"timed-quiz/internal/logger"
	"timed-quiz/internal/notify"
	transport "timed-quiz/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	loader, closeLoader, err := buildLoader(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLoader()

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisstore.NewQuizRepository(redisClient, loader, quizTTL, log)
	} else {
		cache := memory.NewQuizRepository(loader, quizTTL, log)
		if err := cache.Preload(ctx, cfg.QuizID()); err != nil {
			log.Warn("preload default quiz", zap.String("quiz", cfg.QuizID()), zap.Error(err))
		}
		quizRepo = cache
	}

	var stores transport.StoreFactory
	if redisClient != nil {
		kv := redisstore.NewKVStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 30*24*time.Hour))
		stores = func(clientID string) app.Store { return kv.Bucket(clientID) }
	} else {
		kv := memory.NewKVStore()
		stores = func(clientID string) app.Store { return kv.Bucket(clientID) }
	}

	sender, closeSender, err := buildSender(cfg, log)
	if err != nil {
		return err
	}
	defer closeSender()
	dispatcher := notify.NewDispatcher(sender, config.TTLDuration(cfg.Notify.Timeout, 10*time.Second), log)

	handler := transport.NewHandler(transport.Options{
		Quizzes:     quizRepo,
		Stores:      stores,
		Notifier:    dispatcher,
		Recipient:   cfg.Notify.Recipient,
		DefaultQuiz: cfg.QuizID(),
		Logger:      log,
	})

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     handler.Router(),
		ReadTimeout: 15 * time.Second,
		// websocket sessions outlive any write timeout
	}

	go func() {
		log.Info("starting quiz service", zap.String("port", finalPort), zap.String("quiz", cfg.QuizID()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = server.Shutdown(shutdownCtx)
	dispatcher.Close()
	return err
}

// buildLoader picks the quiz source: Postgres, then a YAML file, then the built-in samples.
func buildLoader(ctx context.Context, cfg config.Config, log *zap.Logger) (memory.QuizLoader, func(), error) {
	duration := int(config.TTLDuration(cfg.Quiz.Duration, 0) / time.Second)

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		loader := pgloader.NewQuizLoader(pool)
		ids, err := loader.QuizIDs(ctx)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		if len(ids) == 0 {
			log.Warn("no quizzes stored in postgres; run the seed command")
		}
		log.Info("serving quizzes from postgres", zap.Strings("quizzes", ids))
		return withDefaultDuration(loader, duration), pool.Close, nil
	}
	if cfg.Quiz.Path != "" {
		loader, err := memory.NewFileQuizLoader(cfg.Quiz.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Info("serving quizzes from file", zap.String("path", cfg.Quiz.Path), zap.Int("count", len(loader.Quizzes())))
		return withDefaultDuration(loader, duration), func() {}, nil
	}
	log.Info("serving built-in sample quizzes")
	return withDefaultDuration(memory.NewStaticQuizLoader(sampleQuizzes()), duration), func() {}, nil
}

func buildSender(cfg config.Config, log *zap.Logger) (notify.Sender, func(), error) {
	switch cfg.Notify.Kind {
	case "", "log":
		return notify.NewLogSender(log), func() {}, nil
	case "smtp":
		sender, err := notify.NewSMTPSender(cfg.Notify.SMTP)
		if err != nil {
			return nil, nil, err
		}
		return sender, func() {}, nil
	case "amqp":
		sender, err := notify.NewAMQPSender(cfg.Notify.AMQP)
		if err != nil {
			return nil, nil, err
		}
		return sender, func() { _ = sender.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown notify kind %q", cfg.Notify.Kind)
	}
}

// durationLoader fills in the configured countdown for quizzes that do not set one.
type durationLoader struct {
	inner   memory.QuizLoader
	seconds int
}

func withDefaultDuration(inner memory.QuizLoader, seconds int) memory.QuizLoader {
	if seconds <= 0 {
		return inner
	}
	return durationLoader{inner: inner, seconds: seconds}
}

func (l durationLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	quiz, err := l.inner.LoadQuiz(ctx, quizID)
	if err != nil {
		return quiz, err
	}
	if quiz.DurationSeconds <= 0 {
		quiz.DurationSeconds = l.seconds
	}
	return quiz, nil
}
