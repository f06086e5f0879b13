package handler

import (
	"context"
	"net/http"
	"time"

	"crediario-backend/internal/ports"
	"github.com/go-chi/chi/v5"
)

// HealthHandler exposes a readiness probe. DB and View are optional.
type HealthHandler struct {
	DB   ports.HealthChecker
	View ports.CrediarioView
}

func (h HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.handleHealth)
}

func (h HealthHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	checks := map[string]string{}
	if h.DB != nil {
		checks["database"] = "ok"
		if err := h.DB.Health(ctx); err != nil {
			checks["database"] = "down"
			status = "degraded"
		}
	}
	if h.View != nil {
		st := h.View.State()
		switch {
		case st.Err != nil:
			checks["realtime"] = "error"
			status = "degraded"
		case st.Loading:
			checks["realtime"] = "loading"
		default:
			checks["realtime"] = "ok"
		}
	}

	writeRawJSON(w, http.StatusOK, map[string]any{
		"status": status,
		"checks": checks,
	})
}
