package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"crediario-backend/internal/domain"
	"crediario-backend/internal/ledger"
	"crediario-backend/internal/ports"
	"crediario-backend/internal/realtime"
	"crediario-backend/internal/report"
	"crediario-backend/internal/server/authctx"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// CrediarioHandler serves the owner dashboard.
type CrediarioHandler struct {
	Ledger ports.Ledger
	View   ports.CrediarioView
	Logger *slog.Logger
	Now    func() time.Time
}

func (h CrediarioHandler) RegisterRoutes(r chi.Router) {
	r.Route("/crediarios", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/analytics", h.analytics)
		r.Get("/export", h.export)
		r.Post("/refresh", h.refresh)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Post("/payments", h.addTransaction(domain.TransactionPayment))
			r.Post("/consumptions", h.addTransaction(domain.TransactionConsumption))
			r.Post("/interest", h.addInterest)
			r.Put("/name", h.rename)
			r.Put("/conclude", h.conclude)
			r.Put("/transactions/{txId}", h.editTransaction)
			r.Delete("/transactions/{txId}", h.deleteTransaction)
		})
	})
	r.Get("/menu", h.menu)
	r.Get("/orders", h.orders)
}

func (h CrediarioHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func credentials(r *http.Request) ledger.Credentials {
	if u := authctx.FromContext(r.Context()); u != nil {
		return u.Credentials()
	}
	return ledger.Credentials{}
}

// snapshot returns the view for the caller, answering the request itself
// when the view cannot be used.
func (h CrediarioHandler) snapshot(w http.ResponseWriter, r *http.Request) (realtime.State, bool) {
	if h.View == nil {
		writeError(w, http.StatusServiceUnavailable, "visualização em tempo real indisponível")
		return realtime.State{}, false
	}
	st := h.View.ForRole(credentials(r).Role)
	if errors.Is(st.Err, realtime.ErrPermissionDenied) {
		writeError(w, http.StatusForbidden, st.Err.Error())
		return st, false
	}
	return st, true
}

func stateMeta(st realtime.State) map[string]any {
	meta := map[string]any{"loading": st.Loading}
	if st.Err != nil {
		meta["error"] = st.Err.Error()
	}
	return meta
}

func (h CrediarioHandler) list(w http.ResponseWriter, r *http.Request) {
	q := report.Query{
		Search:  r.URL.Query().Get("search"),
		Balance: r.URL.Query().Get("balance"),
		Sort:    r.URL.Query().Get("sort"),
	}
	if !report.ValidQuery(q) {
		writeError(w, http.StatusBadRequest, "filtro ou ordenação inválidos")
		return
	}
	st, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	rows := report.Filter(st.Crediarios, q)
	writeJSON(w, http.StatusOK, map[string]any{
		"crediarios": rows,
		"count":      len(rows),
		"state":      stateMeta(st),
	})
}

func (h CrediarioHandler) get(w http.ResponseWriter, r *http.Request) {
	if h.View == nil {
		writeError(w, http.StatusServiceUnavailable, "visualização em tempo real indisponível")
		return
	}
	c, ok := h.View.Find(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "crediário não encontrado")
		return
	}
	writeJSON(w, http.StatusOK, report.NewRow(c))
}

func (h CrediarioHandler) analytics(w http.ResponseWriter, r *http.Request) {
	st, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"analytics": report.Summarize(st.Crediarios, h.now()),
		"state":     stateMeta(st),
	})
}

func (h CrediarioHandler) refresh(w http.ResponseWriter, r *http.Request) {
	if h.View == nil {
		writeError(w, http.StatusServiceUnavailable, "visualização em tempo real indisponível")
		return
	}
	h.View.Refetch()
	writeMessage(w, http.StatusAccepted, "atualização solicitada", nil)
}

func (h CrediarioHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerName string            `json:"customerName"`
		InitialValue domain.Number     `json:"initialValue"`
		InitialItems string            `json:"initialItems"`
		Cart         []domain.CartItem `json:"cart"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "payload inválido")
		return
	}
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		writeError(w, http.StatusBadRequest, "O nome do cliente é obrigatório")
		return
	}
	if h.View != nil {
		normalized := domain.NormalizeName(name)
		for _, c := range h.View.State().Crediarios {
			if domain.NormalizeName(c.CustomerName) == normalized {
				writeError(w, http.StatusConflict, ledger.MsgDuplicateName)
				return
			}
		}
	}

	value := float64(req.InitialValue)
	items := strings.TrimSpace(req.InitialItems)
	if len(req.Cart) > 0 {
		value = domain.CartTotal(req.Cart)
		items = domain.CartText(req.Cart)
	}
	if value < 0 {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidAmount.Error())
		return
	}

	c, err := h.Ledger.CreateCrediario(r.Context(), credentials(r), ledger.CreateCrediarioInput{
		CustomerName:         name,
		InitialValue:         value,
		InitialItemsConsumed: items,
	})
	if err != nil {
		h.writeLedgerError(w, err, "ao criar crediário")
		return
	}
	writeMessage(w, http.StatusCreated, "Crediário criado com sucesso!", c)
}

type transactionRequest struct {
	Amount        json.RawMessage `json:"amount"`
	Description   string          `json:"description"`
	ItemsConsumed string          `json:"itemsConsumed"`
}

var successMessages = map[domain.TransactionType]string{
	domain.TransactionPayment:     "Pagamento registrado com sucesso!",
	domain.TransactionConsumption: "Consumo adicionado com sucesso!",
	domain.TransactionInterest:    "Juros adicionados com sucesso!",
}

func (h CrediarioHandler) addTransaction(typ domain.TransactionType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transactionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "payload inválido")
			return
		}
		amount, err := parseAmountField(req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Valor inválido")
			return
		}
		in := ledger.AddTransactionInput{
			CrediarioID: chi.URLParam(r, "id"),
			Type:        typ,
			Amount:      amount,
			Description: req.Description,
		}
		if typ == domain.TransactionConsumption {
			in.ItemsConsumed = req.ItemsConsumed
		}
		c, err := h.Ledger.AddTransaction(r.Context(), credentials(r), in)
		if err != nil {
			h.writeLedgerError(w, err, "ao registrar transação")
			return
		}
		writeMessage(w, http.StatusOK, successMessages[typ], c)
	}
}

func (h CrediarioHandler) addInterest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Percentage  json.RawMessage `json:"percentage"`
		Description string          `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "payload inválido")
		return
	}
	pct, err := parseAmountField(req.Percentage)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Porcentagem inválida")
		return
	}
	if h.View == nil {
		writeError(w, http.StatusServiceUnavailable, "visualização em tempo real indisponível")
		return
	}
	id := chi.URLParam(r, "id")
	c, ok := h.View.Find(id)
	if !ok {
		writeError(w, http.StatusNotFound, "crediário não encontrado")
		return
	}
	amount, err := domain.InterestAmount(c.Balance(), pct)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pctText := strings.Replace(decimal.NewFromFloat(pct).String(), ".", ",", 1)
	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = fmt.Sprintf("Juros de %s%%", pctText)
	}
	updated, err := h.Ledger.AddTransaction(r.Context(), credentials(r), ledger.AddTransactionInput{
		CrediarioID:   id,
		Type:          domain.TransactionInterest,
		Amount:        amount,
		Description:   description,
		ItemsConsumed: fmt.Sprintf("Juros (%s%%)", pctText),
	})
	if err != nil {
		h.writeLedgerError(w, err, "ao adicionar juros")
		return
	}
	writeMessage(w, http.StatusOK, successMessages[domain.TransactionInterest], updated)
}

func (h CrediarioHandler) rename(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerName string `json:"customerName"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "payload inválido")
		return
	}
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		writeError(w, http.StatusBadRequest, "O nome do cliente é obrigatório")
		return
	}
	c, err := h.Ledger.UpdateName(r.Context(), credentials(r), chi.URLParam(r, "id"), name)
	if err != nil {
		h.writeLedgerError(w, err, "ao atualizar nome")
		return
	}
	writeMessage(w, http.StatusOK, "Nome atualizado com sucesso!", c)
}

func (h CrediarioHandler) conclude(w http.ResponseWriter, r *http.Request) {
	res, err := h.Ledger.Conclude(r.Context(), credentials(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeLedgerError(w, err, "ao concluir crediário")
		return
	}
	writeMessage(w, http.StatusOK, "Crediário concluído com sucesso!", res)
}

func (h CrediarioHandler) editTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		transactionRequest
		Type domain.TransactionType `json:"type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "payload inválido")
		return
	}
	if !req.Type.Valid() {
		writeError(w, http.StatusBadRequest, "tipo de transação inválido")
		return
	}
	amount, err := parseAmountField(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Valor inválido")
		return
	}
	c, err := h.Ledger.EditTransaction(r.Context(), credentials(r), ledger.EditTransactionInput{
		CrediarioID:   chi.URLParam(r, "id"),
		TransactionID: chi.URLParam(r, "txId"),
		Type:          req.Type,
		Amount:        amount,
		Description:   req.Description,
		ItemsConsumed: req.ItemsConsumed,
	})
	if err != nil {
		h.writeLedgerError(w, err, "ao editar transação")
		return
	}
	writeMessage(w, http.StatusOK, "Transação atualizada com sucesso!", c)
}

func (h CrediarioHandler) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	c, err := h.Ledger.DeleteTransaction(r.Context(), credentials(r), chi.URLParam(r, "id"), chi.URLParam(r, "txId"))
	if err != nil {
		h.writeLedgerError(w, err, "ao excluir transação")
		return
	}
	writeMessage(w, http.StatusOK, "Transação excluída com sucesso!", c)
}

func (h CrediarioHandler) menu(w http.ResponseWriter, r *http.Request) {
	items, err := h.Ledger.MenuProducts(r.Context(), credentials(r))
	if err != nil {
		h.writeLedgerError(w, err, "ao buscar cardápio")
		return
	}
	if search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search"))); search != "" {
		filtered := make([]domain.MenuProduct, 0, len(items))
		for _, p := range items {
			if strings.Contains(strings.ToLower(p.Name), search) || strings.Contains(strings.ToLower(p.Category), search) {
				filtered = append(filtered, p)
			}
		}
		items = filtered
	}
	writeJSON(w, http.StatusOK, items)
}

func (h CrediarioHandler) orders(w http.ResponseWriter, r *http.Request) {
	items, err := h.Ledger.Orders(r.Context(), credentials(r))
	if err != nil {
		h.writeLedgerError(w, err, "ao buscar pedidos")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// writeLedgerError maps a ledger failure onto the response. A backend status
// is passed through; transport failures become 502.
func (h CrediarioHandler) writeLedgerError(w http.ResponseWriter, err error, action string) {
	status := ledger.StatusOf(err)
	switch {
	case errors.Is(err, ledger.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case status == 0:
		status = http.StatusBadGateway
	}
	if h.Logger != nil {
		h.Logger.Warn("ledger call failed", "action", action, "status", status, "err", err)
	}
	writeError(w, status, ledger.UserMessage(err, "Erro "+action))
}

// parseAmountField accepts a JSON number or a user-typed string and rejects
// anything that is not strictly positive.
func parseAmountField(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, domain.ErrInvalidAmount
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return domain.ValidateAmount(s)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil || f <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	return f, nil
}
