package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/task-manager-api/internal/api"
	"github.com/phrazzld/task-manager-api/internal/config"
	"github.com/phrazzld/task-manager-api/internal/platform/mailer"
	"github.com/phrazzld/task-manager-api/internal/platform/postgres"
	"github.com/phrazzld/task-manager-api/internal/platform/redis"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *goredis.Client

	userStore      store.UserStore
	taskStore      store.TaskStore
	loginCodeStore store.LoginCodeStore

	jwtService     auth.JWTService
	accountService service.AccountService
	taskService    service.TaskService
}

// newApplication wires stores, services and the login-code sender from
// already-connected backing stores.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	redisClient *goredis.Client,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes,
		"refresh_lifetime_hours", cfg.Auth.RefreshLifetimeHours)

	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.loginCodeStore = redis.NewLoginCodeStore(redisClient, logger)

	loginCodes, err := auth.NewLoginCodeService(app.loginCodeStore, cfg.OTP, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create login code service: %w", err)
	}

	app.accountService, err = service.NewAccountService(
		app.userStore,
		app.jwtService,
		auth.NewBcryptVerifier(),
		loginCodes,
		newLoginCodeSender(cfg.Mail, logger),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create account service: %w", err)
	}

	app.taskService, err = service.NewTaskService(app.taskStore, store.NewSQLTransactor(db), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// newLoginCodeSender delivers codes through SendGrid when an API key is
// configured and logs them otherwise.
func newLoginCodeSender(cfg config.MailConfig, logger *slog.Logger) service.LoginCodeSender {
	if cfg.SendGridAPIKey == "" {
		logger.Warn("no SendGrid API key configured, login codes will be logged instead of emailed")
		return mailer.NewLogMailer(logger)
	}
	return mailer.NewSendGridMailer(cfg.SendGridAPIKey, cfg.FromAddress, cfg.FromName, logger)
}

// router builds the HTTP handler for the application.
func (app *application) router() http.Handler {
	return api.NewRouter(api.RouterDeps{
		Accounts: app.accountService,
		Tasks:    app.taskService,
		DB:       app.db,
		Logger:   app.logger,
	})
}

// Run serves HTTP until ctx is cancelled, then shuts down and releases
// every backing store.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.router()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis connection", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
