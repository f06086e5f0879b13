package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func tx(typ TransactionType, amount float64) Transaction {
	return Transaction{Type: typ, Amount: Number(amount)}
}

func TestComputeBalance(t *testing.T) {
	cases := []struct {
		name    string
		history []Transaction
		stored  float64
		want    float64
	}{
		{"empty history uses stored", nil, 42.5, 42.5},
		{"empty slice uses stored", []Transaction{}, -3, -3},
		{"consumption adds", []Transaction{tx(TransactionConsumption, 50)}, 999, 50},
		{"interest adds", []Transaction{tx(TransactionConsumption, 100), tx(TransactionInterest, 5)}, 0, 105},
		{"payment subtracts", []Transaction{tx(TransactionPayment, 30), tx(TransactionConsumption, 50)}, 0, 20},
		{"unknown type ignored", []Transaction{tx("refund", 70), tx(TransactionConsumption, 10)}, 0, 10},
		{"can go negative", []Transaction{tx(TransactionPayment, 80), tx(TransactionConsumption, 50)}, 0, -30},
		{"no float drift", []Transaction{tx(TransactionConsumption, 0.1), tx(TransactionConsumption, 0.2)}, 0, 0.3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ComputeBalance(tc.history, tc.stored); got != tc.want {
				t.Fatalf("ComputeBalance = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCrediarioBalanceRecomputeWins(t *testing.T) {
	c := Crediario{TotalBalance: 500, History: []Transaction{tx(TransactionConsumption, 20)}}
	if got := c.Balance(); got != 20 {
		t.Fatalf("Balance = %v, want 20", got)
	}
}

func TestParseAndValidateAmount(t *testing.T) {
	if v, err := ParseAmount("12,50"); err != nil || v != 12.5 {
		t.Fatalf("ParseAmount(12,50) = %v, %v", v, err)
	}
	if v, err := ParseAmount(" 7.25 "); err != nil || v != 7.25 {
		t.Fatalf("ParseAmount(7.25) = %v, %v", v, err)
	}
	for _, in := range []string{"", "abc", "NaN", "0", "-5", "0,00"} {
		if _, err := ValidateAmount(in); err != ErrInvalidAmount {
			t.Errorf("ValidateAmount(%q) err = %v, want ErrInvalidAmount", in, err)
		}
	}
}

func TestFormatBRL(t *testing.T) {
	cases := map[float64]string{50: "50,00", 12.5: "12,50", -3.456: "-3,46", 0: "0,00"}
	for in, want := range cases {
		if got := FormatBRL(in); got != want {
			t.Errorf("FormatBRL(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestBalanceStatus(t *testing.T) {
	if BalanceStatus(1) != StatusOwing || BalanceStatus(-1) != StatusCredit || BalanceStatus(0) != StatusSettled {
		t.Fatal("unexpected status labels")
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("  Maria   SILVA "); got != "maria silva" {
		t.Fatalf("NormalizeName = %q", got)
	}
}

func TestCrediarioDecodesLooseValues(t *testing.T) {
	raw := `{
		"id": "c1",
		"customerName": "João",
		"totalBalance": "12,5",
		"isActive": true,
		"createdAt": {"_seconds": 1700000000, "_nanoseconds": 0},
		"history": [
			{"id": "t1", "type": "payment", "amount": 10, "description": "x", "date": "2024-05-01T10:00:00Z"},
			{"id": "t2", "type": "consumption", "amount": "oops", "description": "y", "date": 1714557600000}
		]
	}`
	var c Crediario
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.TotalBalance != 12.5 {
		t.Errorf("TotalBalance = %v, want 12.5", c.TotalBalance)
	}
	if !c.CreatedAt.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("CreatedAt = %v", c.CreatedAt)
	}
	if c.History[1].Amount != 0 {
		t.Errorf("non-numeric amount should coerce to 0, got %v", c.History[1].Amount)
	}
	if c.History[0].Date.IsZero() || c.History[1].Date.IsZero() {
		t.Errorf("dates should decode: %v %v", c.History[0].Date, c.History[1].Date)
	}
}

func TestTimestampMarshal(t *testing.T) {
	b, _ := json.Marshal(Timestamp{})
	if string(b) != "null" {
		t.Fatalf("zero timestamp = %s", b)
	}
	b, _ = json.Marshal(NewTimestamp(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
	if string(b) != `"2024-01-02T03:04:05Z"` {
		t.Fatalf("timestamp = %s", b)
	}
}

func TestCart(t *testing.T) {
	items := []CartItem{
		{Name: "X-Salada", Price: 18.9, Qty: 2},
		{Name: "Suco", Price: 7.5, Qty: 1},
		{Name: "Removido", Price: 10, Qty: 0},
	}
	if got := CartTotal(items); got != 45.3 {
		t.Fatalf("CartTotal = %v, want 45.3", got)
	}
	if got := CartText(items); got != "2x X-Salada, 1x Suco" {
		t.Fatalf("CartText = %q", got)
	}
	if CartTotal(nil) != 0 || CartText(nil) != "" {
		t.Fatal("empty cart should be zero")
	}
}

func TestInterestAmount(t *testing.T) {
	got, err := InterestAmount(150, 2.5)
	if err != nil || got != 3.75 {
		t.Fatalf("InterestAmount(150, 2.5) = %v, %v", got, err)
	}
	if _, err := InterestAmount(0, 10); !errors.Is(err, ErrNoDebt) {
		t.Fatalf("zero balance err = %v", err)
	}
	if _, err := InterestAmount(-20, 10); !errors.Is(err, ErrNoDebt) {
		t.Fatalf("negative balance err = %v", err)
	}
	if _, err := InterestAmount(100, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero pct err = %v", err)
	}
}
