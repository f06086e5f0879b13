package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	StatusOwing   = "DEVENDO"
	StatusCredit  = "CRÉDITO"
	StatusSettled = "EM DIA"
)

var (
	ErrInvalidAmount = errors.New("valor inválido")
	ErrNoDebt        = errors.New("não é possível adicionar juros a um saldo zero ou negativo")
)

// ComputeBalance folds a transaction history into the owed balance.
// An empty history defers to the stored scalar; otherwise the fold wins even
// when it disagrees with stored.
func ComputeBalance(history []Transaction, stored float64) float64 {
	if len(history) == 0 {
		return stored
	}
	sum := decimal.Zero
	for _, t := range history {
		sum = sum.Add(SignedAmount(t))
	}
	return sum.InexactFloat64()
}

// SignedAmount is the contribution of one transaction to the owed balance.
func SignedAmount(t Transaction) decimal.Decimal {
	amount := decimal.NewFromFloat(float64(t.Amount))
	switch t.Type {
	case TransactionConsumption, TransactionInterest:
		return amount
	case TransactionPayment:
		return amount.Neg()
	default:
		return decimal.Zero
	}
}

// SumBalances adds balances without float drift.
func SumBalances(values ...float64) float64 {
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return sum.InexactFloat64()
}

// BalanceStatus labels a balance for reports and prompts.
func BalanceStatus(balance float64) string {
	switch {
	case balance > 0:
		return StatusOwing
	case balance < 0:
		return StatusCredit
	default:
		return StatusSettled
	}
}

// ParseAmount reads a user-typed amount, accepting a comma decimal separator.
func ParseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// ValidateAmount parses s and rejects anything that is not strictly positive.
func ValidateAmount(s string) (float64, error) {
	v, err := ParseAmount(s)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatBRL renders v with two decimals and a comma separator, e.g. "50,00".
func FormatBRL(v float64) string {
	return strings.Replace(decimal.NewFromFloat(v).StringFixed(2), ".", ",", 1)
}

// RoundCents rounds v to two decimal places.
func RoundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// NormalizeName lowercases and collapses whitespace so customer names can be
// compared for duplicates.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// InterestAmount is balance × pct / 100, rounded to cents. Only a positive
// balance accrues interest.
func InterestAmount(balance, pct float64) (float64, error) {
	if pct <= 0 {
		return 0, ErrInvalidAmount
	}
	if balance <= 0 {
		return 0, ErrNoDebt
	}
	return decimal.NewFromFloat(balance).
		Mul(decimal.NewFromFloat(pct)).
		Div(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64(), nil
}
