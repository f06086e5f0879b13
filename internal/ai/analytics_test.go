package ai

import (
	"strings"
	"testing"
	"time"

	"crediario-backend/internal/domain"
)

func recentTx(now time.Time) []domain.Transaction {
	return []domain.Transaction{{ID: "t", Type: domain.TransactionConsumption, Amount: 1, Date: domain.NewTimestamp(now.Add(-24 * time.Hour))}}
}

func hasSuggestion(list []string, fragment string) bool {
	for _, s := range list {
		if strings.Contains(s, fragment) {
			return true
		}
	}
	return false
}

func TestSuggestions(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	high := Suggestions([]domain.Crediario{{ID: "a", TotalBalance: 250, History: recentTx(now)}}, now)
	if !hasSuggestion(high, "débito muito alto") || !hasSuggestion(high, "débito elevado") {
		t.Fatalf("250 should be urgent and elevated: %v", high)
	}
	if !strings.HasPrefix(high[0], "🚨") {
		t.Fatalf("urgent advice should come first: %v", high)
	}

	for _, b := range []domain.Number{0, 50, 100} {
		got := Suggestions([]domain.Crediario{{ID: "a", TotalBalance: b, History: recentTx(now)}}, now)
		if hasSuggestion(got, "débito muito alto") || hasSuggestion(got, "débito elevado") {
			t.Fatalf("balance %v should not trigger debt advice: %v", b, got)
		}
	}

	credit := Suggestions([]domain.Crediario{{ID: "a", TotalBalance: -15}}, now)
	if len(credit) != 1 || !hasSuggestion(credit, "crédito em conta") {
		t.Fatalf("credit = %v", credit)
	}
}

func TestSuggestionsInactiveAndCampaign(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	old := []domain.Transaction{{ID: "t", Date: domain.NewTimestamp(now.AddDate(0, 0, -45))}}

	got := Suggestions([]domain.Crediario{
		{ID: "a", TotalBalance: 20, History: old},
		{ID: "b", TotalBalance: 20},
		{ID: "c", TotalBalance: 20, History: recentTx(now)},
	}, now)
	if !hasSuggestion(got, "2 cliente(s) sem movimentação") {
		t.Fatalf("inactive = %v", got)
	}

	big := make([]domain.Crediario, 11)
	for i := range big {
		big[i] = domain.Crediario{TotalBalance: 95, History: recentTx(now)}
	}
	got = Suggestions(big, now)
	if len(got) != 1 || !hasSuggestion(got, "campanha") {
		t.Fatalf("campaign = %v", got)
	}
}

func TestSummarize(t *testing.T) {
	list := []domain.Crediario{
		{ID: "a", TotalBalance: 10},
		{ID: "b", TotalBalance: 300},
		{ID: "c", TotalBalance: -20},
		{ID: "d", TotalBalance: 50},
		{ID: "e", TotalBalance: 40},
		{ID: "f", TotalBalance: 20},
		{ID: "g", TotalBalance: 30},
	}
	s := summarize(list)
	if s.total != 430 || s.debtors != 6 {
		t.Fatalf("summary = %+v", s)
	}
	if len(s.topDebtors) != 5 || s.topDebtors[0].ID != "b" || s.topDebtors[4].ID != "f" {
		t.Fatalf("top debtors = %+v", s.topDebtors)
	}

	a := s.analytics(nil)
	if len(a.TopDebtors) != 3 || a.AverageBalance != 61.43 {
		t.Fatalf("analytics = %+v", a)
	}

	empty := summarize(nil).analytics([]string{})
	if empty.TotalBalance != 0 || empty.TopDebtors == nil {
		t.Fatalf("empty analytics = %+v", empty)
	}
}

func TestCacheKeyIsOrderIndependent(t *testing.T) {
	a := []domain.Crediario{{ID: "x", TotalBalance: 1}, {ID: "y", TotalBalance: 2.5}}
	b := []domain.Crediario{{ID: "y", TotalBalance: 2.5}, {ID: "x", TotalBalance: 1}}
	if CacheKey(domain.RoleOwner, "m", a) != CacheKey(domain.RoleOwner, "m", b) {
		t.Fatal("key should not depend on list order")
	}
	if got := CacheKey("", "m", a); got != "unknown::m::x:1.00|y:2.50" {
		t.Fatalf("key = %q", got)
	}
}
