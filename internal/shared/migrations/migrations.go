package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var FS embed.FS

const (
	Dir       = "sql"
	TableName = "taskguard_schema_migrations"
)

// gooseLogger forwards goose output to slog. Fatalf does not exit; Up returns
// the error instead.
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...), "component", "migrations")
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...), "component", "migrations")
}

// Up applies every pending embedded migration.
func Up(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if db == nil {
		return errors.New("migrations: database is not initialized")
	}
	if logger == nil {
		logger = slog.Default()
	}

	goose.SetBaseFS(FS)
	goose.SetLogger(gooseLogger{logger: logger})
	goose.SetTableName(TableName)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrations: failed to set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, Dir); err != nil {
		return fmt.Errorf("migrations: failed to apply: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("migrations: failed to read version: %w", err)
	}
	logger.Info("database migrations applied", "version", version)
	return nil
}
