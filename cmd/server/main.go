// Package main implements the entry point for the task manager API server.
// Besides serving HTTP it can apply or inspect database migrations through
// the -migrate flag.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/phrazzld/task-manager-api/internal/config"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/platform/postgres"
)

// dotEnvFile is loaded into the environment outside production.
const dotEnvFile = ".env"

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command (up, down, status, version, reset, redo) and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *migrateCmd, flag.Args()); err != nil {
		log.Fatalf("task manager API: %v", err)
	}
}

// run loads configuration, then either executes a migration command or
// serves HTTP until ctx is cancelled.
func run(ctx context.Context, migrateCmd string, migrateArgs []string) error {
	if err := loadDotEnv(os.Getenv("APP_ENV"), dotEnvFile); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(logger.LoggerConfig{Level: cfg.Server.LogLevel})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	l.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"mail_delivery", cfg.Mail.SendGridAPIKey != "")

	db, err := setupAppDatabase(ctx, cfg, l)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer closeQuietly(l, "database", db.Close)
		return postgres.RunMigrations(ctx, db, l, strings.ToLower(migrateCmd), migrateArgs...)
	}

	redisClient, err := setupRedis(ctx, cfg, l)
	if err != nil {
		closeQuietly(l, "database", db.Close)
		return err
	}

	app, err := newApplication(cfg, l, db, redisClient)
	if err != nil {
		closeQuietly(l, "redis", redisClient.Close)
		closeQuietly(l, "database", db.Close)
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}

// loadDotEnv loads path into the environment unless appEnv is
// "production". A missing file is not an error; variables already set in
// the environment win.
func loadDotEnv(appEnv, path string) error {
	if strings.EqualFold(appEnv, "production") {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func closeQuietly(l *slog.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		l.Error("failed to close "+name, "error", err)
	}
}
