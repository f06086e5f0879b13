package handler

import (
	"context"
	"net/http"
	"strconv"

	"crediario-backend/internal/repository"
	"github.com/go-chi/chi/v5"
)

const (
	defaultActionLogLimit = 50
	maxActionLogLimit     = 500
)

type ActionLogLister interface {
	List(ctx context.Context, limit int) ([]repository.ActionLog, error)
}

// ActionLogHandler exposes the audit trail of assistant-executed actions.
type ActionLogHandler struct {
	Repo ActionLogLister
}

func (h ActionLogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ai/actions/log", h.list)
}

func (h ActionLogHandler) list(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		writeError(w, http.StatusServiceUnavailable, "registro de ações indisponível")
		return
	}
	limit := defaultActionLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit inválido")
			return
		}
		limit = min(n, maxActionLogLimit)
	}
	logs, err := h.Repo.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"actions": logs, "count": len(logs)})
}
