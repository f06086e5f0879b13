package ai

import (
	"fmt"
	"strings"
	"time"

	"crediario-backend/internal/domain"
)

const maxCustomersInPrompt = 50

type promptInput struct {
	Now        time.Time
	Role       domain.Role
	Crediarios []domain.Crediario
	Summary    summary
}

func roleLabel(r domain.Role) string {
	switch r {
	case domain.RoleOwner:
		return "proprietário"
	case domain.RoleWaiter:
		return "garçom"
	default:
		return "desconhecido"
	}
}

// buildSystemPrompt renders the Portuguese context handed to the model.
func buildSystemPrompt(in promptInput) string {
	var b strings.Builder
	b.WriteString("Você é o assistente financeiro do restaurante Edienai Lanches, especializado no controle de crediários (fiado).\n")
	b.WriteString("Responda sempre em português do Brasil, de forma objetiva e cordial. Valores em reais (R$).\n\n")

	fmt.Fprintf(&b, "Data atual: %s\n", in.Now.Format("02/01/2006 15:04"))
	fmt.Fprintf(&b, "Usuário: %s\n\n", roleLabel(in.Role))

	b.WriteString("RESUMO FINANCEIRO\n")
	fmt.Fprintf(&b, "- Total de crediários ativos: %d\n", len(in.Crediarios))
	fmt.Fprintf(&b, "- Clientes devendo: %d\n", in.Summary.debtors)
	fmt.Fprintf(&b, "- Saldo total em aberto: R$ %s\n", domain.FormatBRL(in.Summary.total))
	fmt.Fprintf(&b, "- Saldo médio: R$ %s\n\n", domain.FormatBRL(in.Summary.average))

	if len(in.Summary.topDebtors) > 0 {
		b.WriteString("MAIORES DEVEDORES\n")
		for i, c := range in.Summary.topDebtors {
			fmt.Fprintf(&b, "%d. %s: R$ %s\n", i+1, c.CustomerName, domain.FormatBRL(float64(c.TotalBalance)))
		}
		b.WriteString("\n")
	}

	b.WriteString("CLIENTES\n")
	shown := in.Crediarios
	if len(shown) > maxCustomersInPrompt {
		shown = shown[:maxCustomersInPrompt]
	}
	for _, c := range shown {
		bal := float64(c.TotalBalance)
		fmt.Fprintf(&b, "- %s: R$ %s (%s)", c.CustomerName, domain.FormatBRL(bal), domain.BalanceStatus(bal))
		if last, ok := c.LastTransaction(); ok && !last.Date.IsZero() {
			fmt.Fprintf(&b, ", última movimentação em %s", last.Date.Format("02/01/2006"))
		}
		b.WriteString("\n")
	}
	if extra := len(in.Crediarios) - len(shown); extra > 0 {
		fmt.Fprintf(&b, "... e mais %d clientes\n", extra)
	}
	b.WriteString("\n")

	if in.Role == domain.RoleOwner {
		b.WriteString("O proprietário pode pedir ações como \"Criar crediário para João com R$ 50\", ")
		b.WriteString("\"Adicionar pagamento de R$ 30 para Maria\" ou \"Adicionar consumo de R$ 20 para Pedro\".\n")
	} else {
		b.WriteString("Este usuário não pode alterar crediários; apenas responda às perguntas.\n")
	}
	b.WriteString("\nBaseie suas respostas apenas nos dados acima. Se não souber, diga que não há dados suficientes.")
	return b.String()
}
