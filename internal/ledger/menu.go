package ledger

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"crediario-backend/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const defaultCategory = "Outras"

type rawProduct struct {
	Nome        string        `json:"nome"`
	Name        string        `json:"name"`
	Preco       domain.Number `json:"preco"`
	Price       domain.Number `json:"price"`
	Categoria   string        `json:"categoria"`
	Descricao   string        `json:"descricao"`
	Description string        `json:"description"`
	IsHidden    bool          `json:"isHidden"`
}

// decodeMenu flattens the cached menu ({"products": {category: [...]}}) into
// visible products sorted by name. IDs are positions in the flattened list.
func decodeMenu(body []byte) ([]domain.MenuProduct, error) {
	var payload struct {
		Products map[string]json.RawMessage `json:"products"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode menu: %w", err)
	}

	keys := make([]string, 0, len(payload.Products))
	for k := range payload.Products {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var raw []rawProduct
	for _, k := range keys {
		var group []rawProduct
		if err := json.Unmarshal(payload.Products[k], &group); err == nil {
			raw = append(raw, group...)
			continue
		}
		var single rawProduct
		if err := json.Unmarshal(payload.Products[k], &single); err == nil {
			raw = append(raw, single)
		}
	}

	out := make([]domain.MenuProduct, 0, len(raw))
	for _, p := range raw {
		if p.IsHidden {
			continue
		}
		out = append(out, domain.MenuProduct{
			ID:          strconv.Itoa(len(out)),
			Name:        firstNonEmpty(p.Nome, p.Name),
			Price:       firstNonZero(p.Preco.Float(), p.Price.Float()),
			Category:    firstNonEmpty(p.Categoria, defaultCategory),
			Description: firstNonEmpty(p.Descricao, p.Description),
		})
	}

	col := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
	sort.SliceStable(out, func(i, j int) bool {
		return col.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
