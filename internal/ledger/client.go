package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"crediario-backend/internal/domain"
	"crediario-backend/internal/metrics"
)

// Operation names a remote ledger endpoint.
type Operation string

const (
	OpCreateCrediario   Operation = "createCrediario"
	OpAddTransaction    Operation = "addCrediarioTransaction"
	OpUpdateName        Operation = "updateCrediarioName"
	OpConclude          Operation = "concludeCrediario"
	OpEditTransaction   Operation = "editCrediarioTransaction"
	OpDeleteTransaction Operation = "deleteCrediarioTransaction"
	OpMenu              Operation = "getMenuCache"
	OpOrders            Operation = "getPedidos"
)

// Credentials are forwarded to the backend as X-User-Role and X-User-Pin.
type Credentials struct {
	Role domain.Role
	Pin  string
}

func (c Credentials) Present() bool {
	return c.Role != "" && c.Pin != ""
}

func (c Credentials) IsOwner() bool {
	return c.Role == domain.RoleOwner
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *slog.Logger
}

func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Logger:  logger,
	}
}

type CreateCrediarioInput struct {
	CustomerName         string  `json:"customerName"`
	InitialValue         float64 `json:"initialValue"`
	InitialItemsConsumed string  `json:"initialItemsConsumed"`
}

type AddTransactionInput struct {
	CrediarioID   string                 `json:"crediarioId"`
	Type          domain.TransactionType `json:"type"`
	Amount        float64                `json:"amount"`
	Description   string                 `json:"description"`
	ItemsConsumed string                 `json:"itemsConsumed"`
}

type EditTransactionInput struct {
	CrediarioID   string                 `json:"crediarioId"`
	TransactionID string                 `json:"transactionId"`
	Type          domain.TransactionType `json:"type"`
	Amount        float64                `json:"amount"`
	Description   string                 `json:"description"`
	ItemsConsumed string                 `json:"itemsConsumed"`
}

func (c *Client) CreateCrediario(ctx context.Context, creds Credentials, in CreateCrediarioInput) (*domain.Crediario, error) {
	body, err := c.call(ctx, creds, http.MethodPost, OpCreateCrediario, in)
	if err != nil {
		return nil, err
	}
	return decodeCrediario(body)
}

func (c *Client) AddTransaction(ctx context.Context, creds Credentials, in AddTransactionInput) (*domain.Crediario, error) {
	body, err := c.call(ctx, creds, http.MethodPost, OpAddTransaction, in)
	if err != nil {
		return nil, err
	}
	return decodeCrediario(body)
}

func (c *Client) UpdateName(ctx context.Context, creds Credentials, crediarioID, newName string) (*domain.Crediario, error) {
	body, err := c.call(ctx, creds, http.MethodPost, OpUpdateName, map[string]string{
		"crediarioId":     crediarioID,
		"newCustomerName": newName,
	})
	if err != nil {
		return nil, err
	}
	return decodeCrediario(body)
}

// Conclude archives a crediário. The backend answer is returned undecoded.
func (c *Client) Conclude(ctx context.Context, creds Credentials, crediarioID string) (json.RawMessage, error) {
	body, err := c.call(ctx, creds, http.MethodPut, OpConclude, map[string]string{"crediarioId": crediarioID})
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%s: invalid json response", OpConclude)
	}
	return json.RawMessage(body), nil
}

func (c *Client) EditTransaction(ctx context.Context, creds Credentials, in EditTransactionInput) (*domain.Crediario, error) {
	body, err := c.call(ctx, creds, http.MethodPost, OpEditTransaction, in)
	if err != nil {
		return nil, err
	}
	return decodeCrediario(body)
}

func (c *Client) DeleteTransaction(ctx context.Context, creds Credentials, crediarioID, transactionID string) (*domain.Crediario, error) {
	body, err := c.call(ctx, creds, http.MethodPost, OpDeleteTransaction, map[string]string{
		"crediarioId":   crediarioID,
		"transactionId": transactionID,
	})
	if err != nil {
		return nil, err
	}
	return decodeCrediario(body)
}

func (c *Client) MenuProducts(ctx context.Context, creds Credentials) ([]domain.MenuProduct, error) {
	body, err := c.call(ctx, creds, http.MethodGet, OpMenu, nil)
	if err != nil {
		return nil, err
	}
	return decodeMenu(body)
}

func (c *Client) Orders(ctx context.Context, creds Credentials) ([]domain.Order, error) {
	body, err := c.call(ctx, creds, http.MethodGet, OpOrders, nil)
	if err != nil {
		return nil, err
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return []domain.Order{}, nil
	}
	out := make([]domain.Order, 0, len(raw))
	for _, item := range raw {
		var o domain.Order
		if err := json.Unmarshal(item, &o); err == nil && o != nil {
			out = append(out, o)
		}
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, creds Credentials, method string, op Operation, payload any) ([]byte, error) {
	if !creds.Present() {
		return nil, ErrUnauthenticated
	}

	var reader io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: encode payload: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+"/"+string(op), reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Role", string(creds.Role))
	req.Header.Set("X-User-Pin", creds.Pin)

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		metrics.ObserveLedgerCall(string(op), 0)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	metrics.ObserveLedgerCall(string(op), resp.StatusCode)
	if c.Logger != nil {
		c.Logger.Debug("ledger call", "operation", op, "status", resp.StatusCode, "duration", time.Since(start))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(op, resp.StatusCode, body)
	}
	return body, nil
}

// decodeCrediario parses a backend entity, unwrapping a "crediario" envelope
// when present.
func decodeCrediario(body []byte) (*domain.Crediario, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode crediario: %w", err)
	}
	if inner, ok := envelope["crediario"]; ok {
		body = inner
	}
	var out domain.Crediario
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode crediario: %w", err)
	}
	if out.History == nil {
		out.History = []domain.Transaction{}
	}
	return &out, nil
}
