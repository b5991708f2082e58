package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/task-manager-api/internal/api/middleware"
	"github.com/phrazzld/task-manager-api/internal/redact"
	"github.com/phrazzld/task-manager-api/internal/service"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// healthCheckTimeout bounds the database ping of GET /health.
const healthCheckTimeout = 2 * time.Second

// RouterDeps holds everything NewRouter wires into handlers.
type RouterDeps struct {
	Accounts service.AccountService
	Tasks    service.TaskService
	// DB is pinged by the health endpoint. Nil reports healthy.
	DB     Pinger
	Logger *slog.Logger
}

// NewRouter creates the application router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(log))
	r.Use(middleware.Logger)

	authHandler := NewAuthHandler(deps.Accounts, log)
	taskHandler := NewTaskHandler(deps.Tasks, log)
	authMiddleware := apiMiddleware.NewAuthMiddleware(deps.Accounts, log)

	// Public endpoints
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)
	r.Post("/login/code", authHandler.RequestLoginCode)
	r.Post("/token/refresh", authHandler.RefreshToken)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.ListTasks)
			r.Post("/", taskHandler.CreateTask)
			r.Get("/{id}", taskHandler.GetTask)
			r.Put("/{id}", taskHandler.ReplaceTask)
			r.Delete("/{id}", taskHandler.DeleteTask)
		})
	})

	r.Get("/health", healthHandler(deps.DB, log))

	return r
}

func healthHandler(db Pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusOK, "OK"
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				log.Error("health check failed", slog.String("error", redact.Error(err)))
				status, body = http.StatusServiceUnavailable, "Service Unavailable"
			}
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		if _, err := w.Write([]byte(body)); err != nil {
			log.Error("failed to write health check response", slog.String("error", redact.Error(err)))
		}
	}
}
