package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"crediario-backend/internal/ai"
	"crediario-backend/internal/domain"
	"crediario-backend/internal/ledger"
	"crediario-backend/internal/ports"
	"crediario-backend/internal/server/authctx"
	"github.com/go-chi/chi/v5"
)

const (
	msgAuthRequired   = "Autenticação necessária"
	msgInvalidMessage = "Mensagem inválida"
	msgInternal       = "Erro interno do servidor"
)

// Chatter answers assistant messages. Configured is false when no model
// client is available.
type Chatter interface {
	Configured() bool
	Chat(ctx context.Context, req ai.ChatRequest) (ai.ChatResponse, bool, error)
}

type AIChatHandler struct {
	Orchestrator Chatter
	View         ports.CrediarioView
	Logger       *slog.Logger
}

func (h AIChatHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/ai-chat", h.chat)
}

type aiCredentialFields struct {
	UserRole string `json:"userRole"`
	UserPin  string `json:"userPin"`
}

// requestCredentials prefers the X-User-* headers over the body fields and
// falls back to the authenticated session.
func requestCredentials(r *http.Request, body aiCredentialFields) ledger.Credentials {
	role := strings.TrimSpace(r.Header.Get("X-User-Role"))
	if role == "" {
		role = strings.TrimSpace(body.UserRole)
	}
	pin := strings.TrimSpace(r.Header.Get("X-User-Pin"))
	if pin == "" {
		pin = strings.TrimSpace(body.UserPin)
	}
	creds := ledger.Credentials{Role: domain.Role(role), Pin: pin}
	if !creds.Present() {
		if u := authctx.FromContext(r.Context()); u != nil {
			return u.Credentials()
		}
	}
	return creds
}

func (h AIChatHandler) chat(w http.ResponseWriter, r *http.Request) {
	if h.Orchestrator == nil || !h.Orchestrator.Configured() {
		writePlainError(w, http.StatusInternalServerError, ai.ErrModelUnavailable.Error())
		return
	}
	var req struct {
		aiCredentialFields
		Message    json.RawMessage     `json:"message"`
		Crediarios *[]domain.Crediario `json:"crediarios"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writePlainError(w, http.StatusBadRequest, msgInvalidMessage)
		return
	}

	var message string
	if err := json.Unmarshal(req.Message, &message); err != nil || message == "" {
		writePlainError(w, http.StatusBadRequest, msgInvalidMessage)
		return
	}
	creds := requestCredentials(r, req.aiCredentialFields)
	if !creds.Present() {
		writePlainError(w, http.StatusUnauthorized, msgAuthRequired)
		return
	}

	var crediarios []domain.Crediario
	if req.Crediarios != nil {
		crediarios = *req.Crediarios
	} else if h.View != nil {
		crediarios = h.View.ForRole(creds.Role).Crediarios
	}

	resp, cached, err := h.Orchestrator.Chat(r.Context(), ai.ChatRequest{
		Message:     message,
		Crediarios:  crediarios,
		Credentials: creds,
	})
	if err != nil {
		msg := msgInternal
		if errors.Is(err, ai.ErrModelUnavailable) {
			msg = err.Error()
		}
		loggerOr(h.Logger).Error("ai chat failed", "err", err)
		writePlainError(w, http.StatusInternalServerError, msg)
		return
	}
	if cached {
		w.Header().Set("X-Cache", "HIT")
	}
	writeRawJSON(w, http.StatusOK, resp)
}
