package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"crediario-backend/internal/domain"
	"crediario-backend/internal/ledger"
	"crediario-backend/internal/ports"
	"github.com/go-chi/chi/v5"
)

const (
	msgOwnerOnly     = "Apenas o proprietário pode executar ações via IA"
	msgUnknownAction = "Ação não reconhecida"
)

// AIActionsHandler runs a named ledger action chosen by the assistant UI.
type AIActionsHandler struct {
	Ledger ports.Ledger
	Logger *slog.Logger
}

func (h AIActionsHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/ai-actions", h.execute)
}

type actionParameters struct {
	CustomerName    string                 `json:"customerName"`
	InitialValue    domain.Number          `json:"initialValue"`
	InitialItems    string                 `json:"initialItems"`
	CrediarioID     string                 `json:"crediarioId"`
	Type            domain.TransactionType `json:"type"`
	Amount          domain.Number          `json:"amount"`
	Description     string                 `json:"description"`
	ItemsConsumed   string                 `json:"itemsConsumed"`
	NewCustomerName string                 `json:"newCustomerName"`
}

type actionFunc func(ctx context.Context, l ports.Ledger, creds ledger.Credentials, p actionParameters) (any, error)

type actionSpec struct {
	run      actionFunc
	fallback string
}

var aiActions = map[string]actionSpec{
	"createCrediario": {
		fallback: "Falha ao criar crediário",
		run: func(ctx context.Context, l ports.Ledger, creds ledger.Credentials, p actionParameters) (any, error) {
			return l.CreateCrediario(ctx, creds, ledger.CreateCrediarioInput{
				CustomerName:         p.CustomerName,
				InitialValue:         float64(p.InitialValue),
				InitialItemsConsumed: p.InitialItems,
			})
		},
	},
	"addTransaction": {
		fallback: "Falha ao adicionar transação",
		run: func(ctx context.Context, l ports.Ledger, creds ledger.Credentials, p actionParameters) (any, error) {
			return l.AddTransaction(ctx, creds, ledger.AddTransactionInput{
				CrediarioID:   p.CrediarioID,
				Type:          p.Type,
				Amount:        float64(p.Amount),
				Description:   p.Description,
				ItemsConsumed: p.ItemsConsumed,
			})
		},
	},
	"updateCrediarioName": {
		fallback: "Falha ao atualizar nome",
		run: func(ctx context.Context, l ports.Ledger, creds ledger.Credentials, p actionParameters) (any, error) {
			return l.UpdateName(ctx, creds, p.CrediarioID, p.NewCustomerName)
		},
	},
	"concludeCrediario": {
		fallback: "Falha ao concluir crediário",
		run: func(ctx context.Context, l ports.Ledger, creds ledger.Credentials, p actionParameters) (any, error) {
			return l.Conclude(ctx, creds, p.CrediarioID)
		},
	},
	"getMenuProducts": {
		fallback: "Falha ao buscar cardápio",
		run: func(ctx context.Context, l ports.Ledger, creds ledger.Credentials, _ actionParameters) (any, error) {
			return l.MenuProducts(ctx, creds)
		},
	},
	"getPedidos": {
		fallback: "Falha ao buscar pedidos",
		run: func(ctx context.Context, l ports.Ledger, creds ledger.Credentials, _ actionParameters) (any, error) {
			return l.Orders(ctx, creds)
		},
	},
}

func (h AIActionsHandler) execute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		aiCredentialFields
		Action     string           `json:"action"`
		Parameters actionParameters `json:"parameters"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writePlainError(w, http.StatusBadRequest, "payload inválido")
		return
	}
	creds := requestCredentials(r, req.aiCredentialFields)
	if !creds.Present() {
		writePlainError(w, http.StatusUnauthorized, msgAuthRequired)
		return
	}
	if !creds.IsOwner() {
		writePlainError(w, http.StatusForbidden, msgOwnerOnly)
		return
	}
	spec, ok := aiActions[req.Action]
	if !ok {
		writePlainError(w, http.StatusBadRequest, msgUnknownAction)
		return
	}

	result, err := spec.run(r.Context(), h.Ledger, creds, req.Parameters)
	if err != nil {
		loggerOr(h.Logger).Warn("ai action request failed", "action", req.Action, "err", err)
		var apiErr *ledger.APIError
		if errors.As(err, &apiErr) {
			msg := apiErr.BackendMessage()
			if msg == "" {
				msg = spec.fallback
			}
			writePlainError(w, apiErr.Status, msg)
			return
		}
		writePlainError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeRawJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"result":  result,
		"message": fmt.Sprintf("Ação %s executada com sucesso", req.Action),
	})
}
