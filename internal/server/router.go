package server

import (
	"log/slog"
	"net/http"
	"time"

	"crediario-backend/internal/auth"
	"crediario-backend/internal/domain"
	"crediario-backend/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires HTTP routes and middleware.
func NewRouter(
	logger *slog.Logger,
	sessions auth.Sessions,
	health handler.HealthHandler,
	authH handler.AuthHandler,
	crediarios handler.CrediarioHandler,
	aiChat handler.AIChatHandler,
	aiActions handler.AIActionsHandler,
	actionLog handler.ActionLogHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-User-Role", "X-User-Pin"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))

	health.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	pins := NewPinGuard(10, time.Minute)

	r.Group(func(ir chi.Router) {
		ir.Use(Identify(sessions, pins))
		authH.RegisterRoutes(ir)
		aiChat.RegisterRoutes(ir)
		aiActions.RegisterRoutes(ir)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(sessions, pins))
		pr.Use(RequireRole(domain.RoleOwner))
		crediarios.RegisterRoutes(pr)
		actionLog.RegisterRoutes(pr)
	})

	return r
}
