package ports

import (
	"context"
	"encoding/json"

	"crediario-backend/internal/domain"
	"crediario-backend/internal/ledger"
	"crediario-backend/internal/realtime"
)

// HealthChecker is used to probe dependencies.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// CrediarioView is the live list of active crediários.
type CrediarioView interface {
	State() realtime.State
	ForRole(role domain.Role) realtime.State
	Find(id string) (domain.Crediario, bool)
	Refetch()
}

// Ledger is the remote ledger backend.
type Ledger interface {
	CreateCrediario(ctx context.Context, creds ledger.Credentials, in ledger.CreateCrediarioInput) (*domain.Crediario, error)
	AddTransaction(ctx context.Context, creds ledger.Credentials, in ledger.AddTransactionInput) (*domain.Crediario, error)
	UpdateName(ctx context.Context, creds ledger.Credentials, crediarioID, newName string) (*domain.Crediario, error)
	Conclude(ctx context.Context, creds ledger.Credentials, crediarioID string) (json.RawMessage, error)
	EditTransaction(ctx context.Context, creds ledger.Credentials, in ledger.EditTransactionInput) (*domain.Crediario, error)
	DeleteTransaction(ctx context.Context, creds ledger.Credentials, crediarioID, transactionID string) (*domain.Crediario, error)
	MenuProducts(ctx context.Context, creds ledger.Credentials) ([]domain.MenuProduct, error)
	Orders(ctx context.Context, creds ledger.Credentials) ([]domain.Order, error)
}
