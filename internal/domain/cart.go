package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CartItem is a menu product picked when opening a crediário.
type CartItem struct {
	Name  string `json:"nome"`
	Price Number `json:"preco"`
	Qty   int    `json:"qty"`
}

// CartTotal sums price × quantity, rounded to cents. Non-positive quantities
// are skipped.
func CartTotal(items []CartItem) float64 {
	sum := decimal.Zero
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(float64(it.Price)).Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	return sum.Round(2).InexactFloat64()
}

// CartText renders items as "2x X-Salada, 1x Suco".
func CartText(items []CartItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		parts = append(parts, strconv.Itoa(it.Qty)+"x "+it.Name)
	}
	return strings.Join(parts, ", ")
}
