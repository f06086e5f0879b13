package report

import (
	"sort"
	"strings"
	"time"

	"crediario-backend/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	BalanceAll      = "all"
	BalancePositive = "positive"
	BalanceZero     = "zero"

	SortDate    = "date"
	SortName    = "name"
	SortBalance = "balance"

	zeroTolerance = 0.01
	monthsInTrend = 6
	topDebtors    = 5
)

// Row is a crediário with its displayed balance resolved.
type Row struct {
	domain.Crediario
	Balance float64 `json:"balance"`
	Status  string  `json:"status"`
}

func NewRow(c domain.Crediario) Row {
	b := c.Balance()
	return Row{Crediario: c, Balance: b, Status: domain.BalanceStatus(b)}
}

type Query struct {
	Search  string
	Balance string
	Sort    string
}

// Filter applies the dashboard search, balance filter and ordering.
func Filter(list []domain.Crediario, q Query) []Row {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	rows := make([]Row, 0, len(list))
	for _, c := range list {
		if needle != "" && !strings.Contains(strings.ToLower(c.CustomerName), needle) {
			continue
		}
		row := NewRow(c)
		switch q.Balance {
		case BalancePositive:
			if row.Balance <= 0 {
				continue
			}
		case BalanceZero:
			if !isZero(row.Balance) {
				continue
			}
		}
		rows = append(rows, row)
	}

	switch q.Sort {
	case SortName:
		col := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
		sort.SliceStable(rows, func(i, j int) bool {
			return col.CompareString(rows[i].CustomerName, rows[j].CustomerName) < 0
		})
	case SortBalance:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Balance > rows[j].Balance })
	default:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt.Time) })
	}
	return rows
}

// ValidQuery reports whether the balance filter and sort keys are known.
func ValidQuery(q Query) bool {
	switch q.Balance {
	case "", BalanceAll, BalancePositive, BalanceZero:
	default:
		return false
	}
	switch q.Sort {
	case "", SortDate, SortName, SortBalance:
		return true
	}
	return false
}

type MonthlyBalance struct {
	Month   string  `json:"month"`
	Balance float64 `json:"balance"`
}

type Summary struct {
	TotalBalance     float64          `json:"totalBalance"`
	AverageBalance   float64          `json:"averageBalance"`
	ActiveCount      int              `json:"activeCount"`
	DebtorsCount     int              `json:"debtorsCount"`
	CreditorsCount   int              `json:"creditorsCount"`
	ZeroBalanceCount int              `json:"zeroBalanceCount"`
	MonthlyBalances  []MonthlyBalance `json:"monthlyBalances"`
	TopDebtors       []Row            `json:"topDebtors"`
}

// Summarize computes the dashboard cards and charts.
func Summarize(list []domain.Crediario, now time.Time) Summary {
	s := Summary{ActiveCount: len(list), TopDebtors: []Row{}}
	balances := make([]float64, 0, len(list))
	var owing []Row
	for _, c := range list {
		row := NewRow(c)
		balances = append(balances, row.Balance)
		switch {
		case isZero(row.Balance):
			s.ZeroBalanceCount++
		case row.Balance < 0:
			s.CreditorsCount++
		default:
			s.DebtorsCount++
			owing = append(owing, row)
		}
	}
	total := domain.SumBalances(balances...)
	s.TotalBalance = domain.RoundCents(total)
	if len(list) > 0 {
		s.AverageBalance = domain.RoundCents(total / float64(len(list)))
	}

	sort.SliceStable(owing, func(i, j int) bool { return owing[i].Balance > owing[j].Balance })
	if len(owing) > topDebtors {
		owing = owing[:topDebtors]
	}
	s.TopDebtors = append(s.TopDebtors, owing...)
	s.MonthlyBalances = monthlyTrend(list, now)
	return s
}

// monthlyTrend folds every history up to the end of each of the last six
// months, oldest first.
func monthlyTrend(list []domain.Crediario, now time.Time) []MonthlyBalance {
	out := make([]MonthlyBalance, 0, monthsInTrend)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := monthsInTrend - 1; i >= 0; i-- {
		start := first.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)
		values := []float64{}
		for _, c := range list {
			var upTo []domain.Transaction
			for _, t := range c.History {
				if t.Date.Before(end) {
					upTo = append(upTo, t)
				}
			}
			if len(upTo) > 0 {
				values = append(values, domain.ComputeBalance(upTo, 0))
			}
		}
		out = append(out, MonthlyBalance{
			Month:   monthLabel(start),
			Balance: domain.RoundCents(domain.SumBalances(values...)),
		})
	}
	return out
}

var monthAbbrev = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

func monthLabel(t time.Time) string {
	return monthAbbrev[t.Month()-1] + "/" + t.Format("06")
}

func isZero(v float64) bool {
	return v > -zeroTolerance && v < zeroTolerance
}
