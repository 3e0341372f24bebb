package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"timed-quiz/internal/domain"
	pgmigrations "timed-quiz/internal/infra/postgres/migrations"
)

// OpenBun opens a bun handle over the pgdriver connector.
func OpenBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Migrate applies pending schema migrations and returns the applied group.
func Migrate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return group, nil
}

// SeedQuizzes upserts quiz definitions so the loader serves them.
func SeedQuizzes(ctx context.Context, db bun.IDB, quizzes []domain.Quiz) error {
	for _, quiz := range quizzes {
		if err := quiz.Validate(); err != nil {
			return err
		}
		data, err := json.Marshal(quiz)
		if err != nil {
			return fmt.Errorf("marshal quiz %s: %w", quiz.ID, err)
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO quizzes (id, data, updated_at) VALUES (?, ?::jsonb, now())
			 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
			quiz.ID, string(data)); err != nil {
			return fmt.Errorf("upsert quiz %s: %w", quiz.ID, err)
		}
	}
	return nil
}
