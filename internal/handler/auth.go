package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"crediario-backend/internal/auth"
	"crediario-backend/internal/domain"
	"crediario-backend/internal/server/authctx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

type AuthHandler struct {
	Store    auth.CredentialStore
	Sessions auth.Sessions
	Logger   *slog.Logger
}

func (h AuthHandler) RegisterRoutes(r chi.Router) {
	r.With(httprate.LimitByIP(10, time.Minute)).Post("/auth/login", h.login)
	r.Get("/auth/session", h.session)
	r.Post("/auth/logout", h.logout)
}

func userPayload(id domain.Identity) map[string]any {
	return map[string]any{
		"pin":         id.Pin,
		"displayName": id.DisplayName,
		"role":        id.Role,
	}
}

func (h AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pin string `json:"pin"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "payload inválido")
		return
	}
	id, err := auth.Authenticate(h.Store, req.Pin)
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, auth.ErrEmptyPin) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	token, exp, err := h.Sessions.Save(id)
	if err != nil {
		loggerOr(h.Logger).Error("failed to sign session", "err", err)
		writeError(w, http.StatusInternalServerError, "falha ao criar sessão")
		return
	}
	h.Sessions.SetCookie(w, token, exp)
	loggerOr(h.Logger).Info("login", "role", id.Role)
	writeJSON(w, http.StatusOK, map[string]any{
		"token":     token,
		"expiresAt": exp.UTC().Format(time.RFC3339),
		"user":      userPayload(id),
	})
}

func (h AuthHandler) session(w http.ResponseWriter, r *http.Request) {
	u := authctx.FromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, auth.ErrNoSession.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user": userPayload(domain.Identity{Pin: u.Pin, DisplayName: u.Name, Role: u.Role}),
	})
}

func (h AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Clear(w)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
