package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"crediario-backend/internal/domain"
	"github.com/xuri/excelize/v2"
)

var now = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func ts(y int, m time.Month, d int) domain.Timestamp {
	return domain.NewTimestamp(time.Date(y, m, d, 12, 0, 0, 0, time.UTC))
}

func fixtures() []domain.Crediario {
	return []domain.Crediario{
		{
			ID: "a", CustomerName: "Ângela", TotalBalance: 999, CreatedAt: ts(2025, 1, 10),
			History: []domain.Transaction{
				{ID: "a2", Type: domain.TransactionPayment, Amount: 20, Date: ts(2025, 3, 1)},
				{ID: "a1", Type: domain.TransactionConsumption, Amount: 70, Date: ts(2025, 1, 10)},
			},
		},
		{ID: "b", CustomerName: "bruno", TotalBalance: 0, CreatedAt: ts(2025, 2, 1)},
		{ID: "c", CustomerName: "Carla", TotalBalance: -15, CreatedAt: ts(2024, 12, 1)},
		{ID: "d", CustomerName: "Davi", TotalBalance: 120, CreatedAt: ts(2025, 3, 1)},
	}
}

func ids(rows []Row) string {
	var out []string
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return strings.Join(out, ",")
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"default sorts newest first", Query{}, "d,b,a,c"},
		{"name uses pt-BR collation", Query{Sort: SortName}, "a,b,c,d"},
		{"balance descending", Query{Sort: SortBalance}, "d,a,b,c"},
		{"positive only", Query{Balance: BalancePositive, Sort: SortBalance}, "d,a"},
		{"zero only", Query{Balance: BalanceZero}, "b"},
		{"search ignores case", Query{Search: "  CAR "}, "c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(Filter(fixtures(), tt.q)); got != tt.want {
				t.Fatalf("Filter = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRowUsesRecomputedBalance(t *testing.T) {
	r := NewRow(fixtures()[0])
	if r.Balance != 50 || r.Status != domain.StatusOwing {
		t.Fatalf("row = %+v", r)
	}
}

func TestValidQuery(t *testing.T) {
	if !ValidQuery(Query{Balance: "all", Sort: "name"}) || !ValidQuery(Query{}) {
		t.Fatal("known values rejected")
	}
	if ValidQuery(Query{Sort: "age"}) || ValidQuery(Query{Balance: "negative"}) {
		t.Fatal("unknown values accepted")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(fixtures(), now)
	if s.TotalBalance != 155 || s.ActiveCount != 4 || s.AverageBalance != 38.75 {
		t.Fatalf("totals = %+v", s)
	}
	if s.DebtorsCount != 2 || s.CreditorsCount != 1 || s.ZeroBalanceCount != 1 {
		t.Fatalf("counts = %+v", s)
	}
	if ids(s.TopDebtors) != "d,a" {
		t.Fatalf("top debtors = %s", ids(s.TopDebtors))
	}

	if len(s.MonthlyBalances) != 6 {
		t.Fatalf("months = %d", len(s.MonthlyBalances))
	}
	first, last := s.MonthlyBalances[0], s.MonthlyBalances[5]
	if first.Month != "out/24" || first.Balance != 0 {
		t.Fatalf("first month = %+v", first)
	}
	if last.Month != "mar/25" || last.Balance != 50 {
		t.Fatalf("last month = %+v", last)
	}
	if jan := s.MonthlyBalances[3]; jan.Month != "jan/25" || jan.Balance != 70 {
		t.Fatalf("january = %+v", jan)
	}
}

func TestSummarizeCountsSubCentBalanceOnce(t *testing.T) {
	s := Summarize([]domain.Crediario{
		{ID: "x", CustomerName: "Xavier", TotalBalance: 0.005, CreatedAt: ts(2025, 3, 1)},
		{ID: "y", CustomerName: "Yara", TotalBalance: -0.004, CreatedAt: ts(2025, 3, 1)},
	}, now)
	if s.ZeroBalanceCount != 2 || s.DebtorsCount != 0 || s.CreditorsCount != 0 {
		t.Fatalf("counts = %+v", s)
	}
	if len(s.TopDebtors) != 0 {
		t.Fatalf("top debtors = %s", ids(s.TopDebtors))
	}
}

func TestCSV(t *testing.T) {
	data, err := CSV(Filter(fixtures(), Query{Sort: SortName}))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 5 {
		t.Fatalf("lines = %d", len(lines))
	}
	if lines[1] != "a;Ângela;50,00;DEVENDO;2025-01-10;2;2025-03-01" {
		t.Fatalf("row = %q", lines[1])
	}
}

func TestXLSX(t *testing.T) {
	data, err := XLSX(Filter(fixtures(), Query{Sort: SortName}))
	if err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	name, _ := f.GetCellValue("Crediarios", "B2")
	status, _ := f.GetCellValue("Crediarios", "D3")
	if name != "Ângela" || status != domain.StatusSettled {
		t.Fatalf("cells = %q %q", name, status)
	}
}
