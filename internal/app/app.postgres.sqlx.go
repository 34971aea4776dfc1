package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/joshuarp/taskguard-api/internal/shared/config"
	"github.com/joshuarp/taskguard-api/internal/shared/migrations"
)

func providePostgresSQLX(cfg config.ConfigProvider, logger *slog.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", postgresDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("db: failed to open postgres connection: %w", err)
	}

	if maxOpen := databaseInt(cfg, "max_open_conns"); maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle := databaseInt(cfg, "max_idle_conns"); maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db: failed to ping postgres: %w", err)
	}

	if cfg.GetBool("database.migrate") {
		if err := migrations.Up(ctx, db.DB, logger); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

func postgresDSN(cfg config.ConfigProvider) string {
	host := databaseString(cfg, "host")
	if host == "" {
		host = "localhost"
	}
	port := databaseInt(cfg, "port")
	if port == 0 {
		port = 5432
	}
	sslMode := databaseString(cfg, "ssl_mode")
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host,
		port,
		databaseString(cfg, "user"),
		databaseString(cfg, "password"),
		databaseString(cfg, "name"),
		sslMode,
	)
}

func databaseString(cfg config.ConfigProvider, key string) string {
	yamlKey := fmt.Sprintf("database.%s", key)
	if cfg.IsSet(yamlKey) {
		return cfg.GetString(yamlKey)
	}

	return cfg.GetString(databaseEnvKey(key))
}

func databaseInt(cfg config.ConfigProvider, key string) int {
	yamlKey := fmt.Sprintf("database.%s", key)
	if cfg.IsSet(yamlKey) {
		return cfg.GetInt(yamlKey)
	}

	return cfg.GetInt(databaseEnvKey(key))
}

func databaseEnvKey(key string) string {
	normalizedKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	return fmt.Sprintf("DATABASE_%s", normalizedKey)
}
