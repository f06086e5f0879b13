package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"crediario-backend/internal/domain"
	"crediario-backend/internal/ledger"
	"crediario-backend/internal/metrics"
	"github.com/google/uuid"
)

const (
	paymentDescription     = "Pagamento registrado via IA"
	consumptionDescription = "Consumo registrado via IA"
)

// Ledger is the subset of the ledger client the executor mutates through.
type Ledger interface {
	CreateCrediario(ctx context.Context, creds ledger.Credentials, in ledger.CreateCrediarioInput) (*domain.Crediario, error)
	AddTransaction(ctx context.Context, creds ledger.Credentials, in ledger.AddTransactionInput) (*domain.Crediario, error)
}

// Action reports one mutation the assistant performed, or tried to.
type Action struct {
	Action     ActionName     `json:"action"`
	Parameters map[string]any `json:"parameters"`
	Reasoning  string         `json:"reasoning"`
	Failed     bool           `json:"failed,omitempty"`
}

// ActionRecord is the audit trail entry for an executed action.
type ActionRecord struct {
	ID         uuid.UUID
	Action     ActionName
	Parameters map[string]any
	Reasoning  string
	Role       domain.Role
	Succeeded  bool
	CreatedAt  time.Time
}

type ActionRecorder interface {
	RecordAction(ctx context.Context, rec ActionRecord) error
}

// Executor turns detected intents into ledger calls on behalf of the owner.
type Executor struct {
	Ledger   Ledger
	Recorder ActionRecorder
	Logger   *slog.Logger
	Now      func() time.Time
}

// Run detects an intent in message and executes it. Only the owner may
// mutate the ledger; any other caller gets an empty list and no calls are
// made. Failures are reported inside the returned action, never as an error.
func (e Executor) Run(ctx context.Context, creds ledger.Credentials, message string, crediarios []domain.Crediario) []Action {
	actions := []Action{}
	if !creds.IsOwner() {
		return actions
	}
	intent, ok := Detect(message, crediarios)
	if !ok {
		return actions
	}
	return append(actions, e.Execute(ctx, creds, intent))
}

// Execute performs a single intent.
func (e Executor) Execute(ctx context.Context, creds ledger.Credentials, intent Intent) Action {
	act := Action{Action: intent.Action, Parameters: intent.Parameters()}

	var err error
	switch intent.Action {
	case ActionCreateCrediario:
		_, err = e.Ledger.CreateCrediario(ctx, creds, ledger.CreateCrediarioInput{
			CustomerName: intent.CustomerName,
			InitialValue: intent.InitialValue,
		})
		act.Reasoning = fmt.Sprintf("Crediário criado automaticamente para %s", intent.CustomerName)
	case ActionAddPayment:
		_, err = e.Ledger.AddTransaction(ctx, creds, ledger.AddTransactionInput{
			CrediarioID: intent.CrediarioID,
			Type:        domain.TransactionPayment,
			Amount:      intent.Amount,
			Description: paymentDescription,
		})
		act.Reasoning = fmt.Sprintf("Pagamento de R$ %s registrado para %s", domain.FormatBRL(intent.Amount), intent.CustomerName)
	case ActionAddConsumption:
		_, err = e.Ledger.AddTransaction(ctx, creds, ledger.AddTransactionInput{
			CrediarioID: intent.CrediarioID,
			Type:        domain.TransactionConsumption,
			Amount:      intent.Amount,
			Description: consumptionDescription,
		})
		act.Reasoning = fmt.Sprintf("Consumo de R$ %s adicionado para %s", domain.FormatBRL(intent.Amount), intent.CustomerName)
	default:
		err = fmt.Errorf("ação desconhecida: %s", intent.Action)
	}

	result := "ok"
	if err != nil {
		result = "failed"
		act.Failed = true
		detail := err.Error()
		if ledger.StatusOf(err) != 0 {
			detail = ledger.UserMessage(err, "erro no servidor")
		}
		act.Reasoning = fmt.Sprintf("Falha ao executar %s: %s", intent.Action, detail)
		e.logger().Error("ai action failed", "action", intent.Action, "err", err)
	} else {
		e.logger().Info("ai action executed", "action", intent.Action)
	}
	metrics.ExecutedActions.WithLabelValues(string(intent.Action), result).Inc()

	e.record(ctx, creds, act)
	return act
}

func (e Executor) record(ctx context.Context, creds ledger.Credentials, act Action) {
	if e.Recorder == nil {
		return
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	rec := ActionRecord{
		ID:         uuid.New(),
		Action:     act.Action,
		Parameters: act.Parameters,
		Reasoning:  act.Reasoning,
		Role:       creds.Role,
		Succeeded:  !act.Failed,
		CreatedAt:  now(),
	}
	if err := e.Recorder.RecordAction(ctx, rec); err != nil {
		e.logger().Warn("failed to record ai action", "action", act.Action, "err", err)
	}
}

func (e Executor) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}
