package domain

// Enumerations
const (
	RoleOwner  Role = "owner"
	RoleWaiter Role = "waiter"

	TransactionPayment     TransactionType = "payment"
	TransactionConsumption TransactionType = "consumption"
	TransactionInterest    TransactionType = "interest"
)

type Role string
type TransactionType string

func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleWaiter
}

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionPayment, TransactionConsumption, TransactionInterest:
		return true
	}
	return false
}

// Identity is one of the fixed users allowed to log in.
type Identity struct {
	Pin         string `json:"pin"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
}

type Transaction struct {
	ID            string          `json:"id"`
	Type          TransactionType `json:"type"`
	Amount        Number          `json:"amount"`
	Description   string          `json:"description"`
	ItemsConsumed string          `json:"itemsConsumed,omitempty"`
	Date          Timestamp       `json:"date"`
}

// Crediario is a customer's running tab. History is newest first.
type Crediario struct {
	ID           string        `json:"id"`
	CustomerName string        `json:"customerName"`
	TotalBalance Number        `json:"totalBalance"`
	IsActive     bool          `json:"isActive"`
	CreatedAt    Timestamp     `json:"createdAt"`
	History      []Transaction `json:"history"`
}

// Balance is the displayed balance: recomputed from history when present.
func (c Crediario) Balance() float64 {
	return ComputeBalance(c.History, float64(c.TotalBalance))
}

// LastTransaction returns the newest history entry, if any.
func (c Crediario) LastTransaction() (Transaction, bool) {
	if len(c.History) == 0 {
		return Transaction{}, false
	}
	return c.History[0], true
}

type MenuProduct struct {
	ID          string  `json:"id"`
	Name        string  `json:"nome"`
	Price       float64 `json:"preco"`
	Category    string  `json:"categoria"`
	Description string  `json:"descricao,omitempty"`
	IsHidden    bool    `json:"isHidden,omitempty"`
}

// Order is an opaque order record from the ledger backend.
type Order map[string]any
