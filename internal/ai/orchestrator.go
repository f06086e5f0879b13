package ai

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"crediario-backend/internal/domain"
	"crediario-backend/internal/ledger"
	"crediario-backend/internal/metrics"
)

const (
	historyInPayload = 3

	MsgModelFailure = "Desculpe, ocorreu um erro ao processar sua solicitação. Tente novamente."
	MsgEmptyReply   = "Desculpe, não consegui processar sua solicitação."
)

var ErrModelUnavailable = errors.New("MISTRAL_API_KEY ausente no ambiente")

type ChatRequest struct {
	Message     string
	Crediarios  []domain.Crediario
	Credentials ledger.Credentials
}

type ChatResponse struct {
	Response          string    `json:"response"`
	ExecutedActions   []Action  `json:"executedActions"`
	CanExecuteActions bool      `json:"canExecuteActions"`
	Analytics         Analytics `json:"analytics"`
}

// Orchestrator answers a chat message: it runs intent execution and the
// model call side by side and caches the combined response.
type Orchestrator struct {
	Model       Completer
	ModelName   string
	Temperature float64
	MaxTokens   int
	Executor    Executor
	Cache       *ResponseCache
	Logger      *slog.Logger
	Now         func() time.Time
}

// Chat returns the response and whether it came from the cache. The only
// error is ErrModelUnavailable; model failures degrade to an apology.
func (o *Orchestrator) Chat(ctx context.Context, req ChatRequest) (ChatResponse, bool, error) {
	if o.Model == nil {
		return ChatResponse{}, false, ErrModelUnavailable
	}
	crediarios := NormalizePayload(req.Crediarios)
	role := req.Credentials.Role
	key := CacheKey(role, req.Message, crediarios)

	if o.Cache != nil {
		if resp, ok := o.Cache.Get(key); ok {
			metrics.ChatRequests.WithLabelValues("cached").Inc()
			o.logger().Debug("ai chat cache hit", "role", role)
			return resp, true, nil
		}
	}

	now := o.now()
	sum := summarize(crediarios)

	var (
		wg      sync.WaitGroup
		actions []Action
		reply   string
		failed  bool
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		actions = o.Executor.Run(ctx, req.Credentials, req.Message, crediarios)
	}()
	go func() {
		defer wg.Done()
		system := buildSystemPrompt(promptInput{Now: now, Role: role, Crediarios: crediarios, Summary: sum})
		reply, failed = o.complete(ctx, system, req.Message)
	}()
	wg.Wait()

	outcome := "model"
	if failed {
		outcome = "degraded"
	}
	metrics.ChatRequests.WithLabelValues(outcome).Inc()

	resp := ChatResponse{
		Response:          reply,
		ExecutedActions:   actions,
		CanExecuteActions: role == domain.RoleOwner,
		Analytics:         sum.analytics(Suggestions(crediarios, now)),
	}
	// Degraded replies are not cached so a retry reaches the model again.
	if o.Cache != nil && !failed {
		o.Cache.Set(key, resp)
	}
	return resp, false, nil
}

// Configured reports whether a model client is wired.
func (o *Orchestrator) Configured() bool {
	return o != nil && o.Model != nil
}

func (o *Orchestrator) complete(ctx context.Context, system, message string) (string, bool) {
	start := time.Now()
	content, err := o.Model.Complete(ctx, CompletionRequest{
		Model:       o.ModelName,
		System:      system,
		Prompt:      message,
		Temperature: o.Temperature,
		MaxTokens:   o.MaxTokens,
	})
	metrics.ModelLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		o.logger().Error("model completion failed", "err", err)
		return MsgModelFailure, true
	}
	if content == "" {
		return MsgEmptyReply, false
	}
	return content, false
}

// NormalizePayload coerces client-supplied crediários and keeps only the
// newest entries of each history.
func NormalizePayload(list []domain.Crediario) []domain.Crediario {
	out := make([]domain.Crediario, 0, len(list))
	for _, c := range list {
		if len(c.History) > historyInPayload {
			c.History = append([]domain.Transaction(nil), c.History[:historyInPayload]...)
		}
		if c.History == nil {
			c.History = []domain.Transaction{}
		}
		out = append(out, c)
	}
	return out
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}
