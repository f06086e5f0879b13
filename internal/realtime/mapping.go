package realtime

import (
	"fmt"
	"time"

	"crediario-backend/internal/domain"
)

// FromDocument maps a raw crediário document into the domain shape,
// coercing every field it cannot trust.
func FromDocument(id string, data map[string]any, now time.Time) domain.Crediario {
	c := domain.Crediario{
		ID:           id,
		CustomerName: asString(data["customerName"]),
		TotalBalance: domain.Number(domain.CoerceFloat(data["totalBalance"])),
		IsActive:     truthy(data["isActive"]),
		History:      []domain.Transaction{},
	}
	created := domain.CoerceTime(data["createdAt"])
	if created.IsZero() {
		created = now
	}
	c.CreatedAt = domain.NewTimestamp(created)

	if items, ok := data["history"].([]any); ok {
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			c.History = append(c.History, domain.Transaction{
				ID:            asString(m["id"]),
				Type:          domain.TransactionType(asString(m["type"])),
				Amount:        domain.Number(domain.CoerceFloat(m["amount"])),
				Description:   asString(m["description"]),
				ItemsConsumed: asString(m["itemsConsumed"]),
				Date:          domain.NewTimestamp(domain.CoerceTime(m["date"])),
			})
		}
	}
	return c
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int64:
		return t != 0
	case int:
		return t != 0
	default:
		return true
	}
}
