package ai

import (
	"regexp"
	"strings"

	"crediario-backend/internal/domain"
)

type ActionName string

const (
	ActionCreateCrediario ActionName = "createCrediario"
	ActionAddPayment      ActionName = "addPayment"
	ActionAddConsumption  ActionName = "addConsumption"
)

// Intent is a ledger mutation requested in free text.
type Intent struct {
	Action       ActionName
	CustomerName string
	InitialValue float64
	CrediarioID  string
	Type         domain.TransactionType
	Amount       float64
}

// Parameters is the public view of the values an intent was built from.
func (i Intent) Parameters() map[string]any {
	switch i.Action {
	case ActionCreateCrediario:
		return map[string]any{"customerName": i.CustomerName, "initialValue": i.InitialValue}
	default:
		return map[string]any{"crediarioId": i.CrediarioID, "amount": i.Amount}
	}
}

// Rule recognizes one intent. Match sees the lowercased message; Extract the
// original one.
type Rule struct {
	Name    ActionName
	Match   func(lower string) bool
	Extract func(message string, crediarios []domain.Crediario) (Intent, bool)
}

// DefaultRules is ordered from the most to the least specific keyword set.
var DefaultRules = []Rule{
	{
		Name: ActionAddPayment,
		Match: func(lower string) bool {
			return containsAny(lower, "adicionar", "registrar") && strings.Contains(lower, "pagamento")
		},
		Extract: transactionExtractor(ActionAddPayment, domain.TransactionPayment),
	},
	{
		Name: ActionAddConsumption,
		Match: func(lower string) bool {
			return strings.Contains(lower, "adicionar") && strings.Contains(lower, "consumo")
		},
		Extract: transactionExtractor(ActionAddConsumption, domain.TransactionConsumption),
	},
	{
		Name: ActionCreateCrediario,
		Match: func(lower string) bool {
			return containsAny(lower, "criar", "adicionar") && containsAny(lower, "crediário", "crediario", "cliente")
		},
		Extract: extractCreate,
	},
}

// Detect runs DefaultRules against message.
func Detect(message string, crediarios []domain.Crediario) (Intent, bool) {
	return DetectWith(DefaultRules, message, crediarios)
}

// DetectWith returns the intent of the first rule whose keywords match. A
// matching rule whose extraction fails ends detection with no intent.
func DetectWith(rules []Rule, message string, crediarios []domain.Crediario) (Intent, bool) {
	lower := strings.ToLower(message)
	for _, r := range rules {
		if r.Match(lower) {
			return r.Extract(message, crediarios)
		}
	}
	return Intent{}, false
}

const nameClass = `([A-Za-zÀ-ÿ\s]+?)`

var (
	createNamePatterns = namePatterns([]string{"para", "cliente", "criar"}, `\s+com\b|\s+de\b|\s*R\$|\s*$`)
	txNamePatterns     = namePatterns([]string{"para", "de", "cliente"}, `\s+de\b|\s+com\b|\s*R\$|\s*$`)

	currencyAmount = regexp.MustCompile(`(?i)R\$\s*(\d+(?:[.,]\d{1,2})?)`)
	bareAmount     = regexp.MustCompile(`(\d+(?:[.,]\d{1,2})?)`)
)

func namePatterns(anchors []string, terminators string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(anchors))
	for _, a := range anchors {
		out = append(out, regexp.MustCompile(`(?i)(?:^|\s)`+a+`\s+`+nameClass+`(?:`+terminators+`)`))
	}
	return out
}

func extractCreate(message string, _ []domain.Crediario) (Intent, bool) {
	names := candidateNames(createNamePatterns, message)
	if len(names) == 0 {
		return Intent{}, false
	}
	value, _ := extractAmount(message)
	return Intent{
		Action:       ActionCreateCrediario,
		CustomerName: names[0],
		InitialValue: value,
	}, true
}

func transactionExtractor(action ActionName, typ domain.TransactionType) func(string, []domain.Crediario) (Intent, bool) {
	return func(message string, crediarios []domain.Crediario) (Intent, bool) {
		amount, ok := extractAmount(message)
		if !ok {
			return Intent{}, false
		}
		for _, name := range candidateNames(txNamePatterns, message) {
			if c, found := resolveCustomer(name, crediarios); found {
				return Intent{
					Action:       action,
					CustomerName: c.CustomerName,
					CrediarioID:  c.ID,
					Type:         typ,
					Amount:       amount,
				}, true
			}
		}
		return Intent{}, false
	}
}

// candidateNames returns the name captured by each anchor pattern, in anchor
// priority order.
func candidateNames(patterns []*regexp.Regexp, message string) []string {
	var out []string
	for _, p := range patterns {
		m := p.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		if name := strings.TrimSpace(m[1]); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// extractAmount prefers an R$-prefixed number and falls back to the first
// number in the message. Positivity is not checked.
func extractAmount(message string) (float64, bool) {
	m := currencyAmount.FindStringSubmatch(message)
	if m == nil {
		m = bareAmount.FindStringSubmatch(message)
	}
	if m == nil {
		return 0, false
	}
	v, err := domain.ParseAmount(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}

// resolveCustomer picks the first crediário whose name contains name,
// ignoring case. Ambiguous names resolve to the first hit.
func resolveCustomer(name string, crediarios []domain.Crediario) (domain.Crediario, bool) {
	needle := strings.ToLower(name)
	for _, c := range crediarios {
		if strings.Contains(strings.ToLower(c.CustomerName), needle) {
			return c, true
		}
	}
	return domain.Crediario{}, false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
