package repository

import (
	"context"
	"time"

	"crediario-backend/internal/ai"
	"crediario-backend/internal/db"
	"crediario-backend/internal/domain"
	"github.com/google/uuid"
)

// ActionLog is a stored AI action.
type ActionLog struct {
	ID         uuid.UUID      `json:"id"`
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`
	Reasoning  string         `json:"reasoning"`
	Role       domain.Role    `json:"role"`
	Succeeded  bool           `json:"succeeded"`
	LoggedAt   time.Time      `json:"loggedAt"`
}

type ActionLogRepository struct {
	DB *db.Postgres
}

func (r ActionLogRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS ai_action_logs (
			id         uuid PRIMARY KEY,
			action     text NOT NULL,
			parameters jsonb NOT NULL DEFAULT '{}'::jsonb,
			reasoning  text NOT NULL,
			role       text NOT NULL,
			succeeded  boolean NOT NULL,
			logged_at  timestamptz NOT NULL
		)
	`)
	if err != nil {
		return err
	}
	_, err = r.DB.Pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS ai_action_logs_logged_at_idx ON ai_action_logs (logged_at DESC)`)
	return err
}

// RecordAction stores one executed action.
func (r ActionLogRepository) RecordAction(ctx context.Context, rec ai.ActionRecord) error {
	params := rec.Parameters
	if params == nil {
		params = map[string]any{}
	}
	_, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO ai_action_logs (id, action, parameters, reasoning, role, succeeded, logged_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, rec.ID, string(rec.Action), params, rec.Reasoning, string(rec.Role), rec.Succeeded, rec.CreatedAt)
	return err
}

func (r ActionLogRepository) List(ctx context.Context, limit int) ([]ActionLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, action, parameters, reasoning, role, succeeded, logged_at
		FROM ai_action_logs
		ORDER BY logged_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ActionLog{}
	for rows.Next() {
		var l ActionLog
		var role string
		if err := rows.Scan(&l.ID, &l.Action, &l.Parameters, &l.Reasoning, &role, &l.Succeeded, &l.LoggedAt); err != nil {
			return nil, err
		}
		l.Role = domain.Role(role)
		out = append(out, l)
	}
	return out, rows.Err()
}
