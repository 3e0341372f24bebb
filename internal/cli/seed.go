package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"timed-quiz/internal/config"
	"timed-quiz/internal/domain"
	"timed-quiz/internal/infra/memory"
	"timed-quiz/internal/infra/postgres"
	"timed-quiz/internal/logger"
)

// NewSeedCmd upserts quiz definitions from a YAML file into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var quizFile string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load quiz definitions into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Env)
			if err != nil {
				return err
			}
			defer log.Sync()

			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			path := quizFile
			if path == "" {
				path = cfg.Quiz.Path
			}

			var quizzes []domain.Quiz
			if path == "" {
				log.Info("no quiz file given, seeding built-in quizzes")
				quizzes = memory.NewStaticQuizLoader(sampleQuizzes()).Quizzes()
			} else {
				loader, err := memory.NewFileQuizLoader(path)
				if err != nil {
					return err
				}
				quizzes = loader.Quizzes()
			}

			ctx := cmd.Context()
			if err := runMigrations(ctx, cfg, log); err != nil {
				return err
			}
			db := postgres.OpenBun(cfg.Postgres.URL)
			defer db.Close()
			if err := postgres.SeedQuizzes(ctx, db, quizzes); err != nil {
				return err
			}
			log.Info("quizzes seeded", zap.Int("count", len(quizzes)), zap.String("source", path))
			return nil
		},
	}
	cmd.Flags().StringVar(&quizFile, "file", "", "quiz YAML file (defaults to quiz.path)")
	return cmd
}
