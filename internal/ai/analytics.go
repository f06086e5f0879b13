package ai

import (
	"fmt"
	"sort"
	"time"

	"crediario-backend/internal/domain"
)

const (
	urgentThreshold   = 200
	elevatedThreshold = 100
	creditThreshold   = -10
	campaignThreshold = 1000
	inactiveAfter     = 30 * 24 * time.Hour

	topDebtorsInPrompt   = 5
	topDebtorsInResponse = 3
)

// Analytics is the aggregate returned with every chat response.
type Analytics struct {
	TotalBalance   float64            `json:"totalBalance"`
	DebtorsCount   int                `json:"debtorsCount"`
	AverageBalance float64            `json:"averageBalance"`
	TopDebtors     []domain.Crediario `json:"topDebtors"`
	Suggestions    []string           `json:"suggestions"`
}

// summary works on the stored scalar balance: chat payloads carry a
// truncated history, so a recomputed fold would be wrong.
type summary struct {
	total      float64
	debtors    int
	average    float64
	topDebtors []domain.Crediario
}

func summarize(list []domain.Crediario) summary {
	s := summary{}
	balances := make([]float64, 0, len(list))
	var owing []domain.Crediario
	for _, c := range list {
		b := float64(c.TotalBalance)
		balances = append(balances, b)
		if b > 0 {
			owing = append(owing, c)
		}
	}
	s.total = domain.SumBalances(balances...)
	s.debtors = len(owing)
	if len(list) > 0 {
		s.average = s.total / float64(len(list))
	}

	sort.SliceStable(owing, func(i, j int) bool { return owing[i].TotalBalance > owing[j].TotalBalance })
	if len(owing) > topDebtorsInPrompt {
		owing = owing[:topDebtorsInPrompt]
	}
	s.topDebtors = owing
	return s
}

func (s summary) analytics(suggestions []string) Analytics {
	top := s.topDebtors
	if len(top) > topDebtorsInResponse {
		top = top[:topDebtorsInResponse]
	}
	if top == nil {
		top = []domain.Crediario{}
	}
	return Analytics{
		TotalBalance:   domain.RoundCents(s.total),
		DebtorsCount:   s.debtors,
		AverageBalance: domain.RoundCents(s.average),
		TopDebtors:     top,
		Suggestions:    suggestions,
	}
}

// Suggestions produces the rule-based advice shown next to the assistant's
// answer, in a fixed order.
func Suggestions(list []domain.Crediario, now time.Time) []string {
	var urgent, elevated, credit, inactive int
	total := make([]float64, 0, len(list))
	for _, c := range list {
		b := float64(c.TotalBalance)
		total = append(total, b)
		switch {
		case b > urgentThreshold:
			urgent++
		case b < creditThreshold:
			credit++
		}
		if b > elevatedThreshold {
			elevated++
		}
		if b > 0 && isInactive(c, now) {
			inactive++
		}
	}

	out := []string{}
	if urgent > 0 {
		out = append(out, fmt.Sprintf("🚨 ATENÇÃO: %d cliente(s) com débito muito alto (acima de R$ 200). Ação urgente necessária!", urgent))
	}
	if elevated > 0 {
		out = append(out, fmt.Sprintf("⚠️ %d cliente(s) com débito elevado (acima de R$ 100). Considere oferecer parcelamento ou desconto para quitação.", elevated))
	}
	if credit > 0 {
		out = append(out, fmt.Sprintf("💰 %d cliente(s) com crédito em conta. Incentive o consumo desses créditos.", credit))
	}
	if inactive > 0 {
		out = append(out, fmt.Sprintf("📅 %d cliente(s) sem movimentação há mais de 30 dias. Considere entrar em contato.", inactive))
	}
	if domain.SumBalances(total...) > campaignThreshold {
		out = append(out, "💡 Saldo total em aberto alto. Considere uma campanha de incentivo ao pagamento.")
	}
	return out
}

func isInactive(c domain.Crediario, now time.Time) bool {
	last, ok := c.LastTransaction()
	if !ok {
		return true
	}
	return now.Sub(last.Date.Time) > inactiveAfter
}
