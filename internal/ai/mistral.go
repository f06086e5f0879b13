package ai

import (
	"context"
	"errors"
	"time"

	"github.com/gage-technologies/mistral-go"
)

const (
	DefaultModel = "mistral-small-latest"

	// mistral-go treats 0 as its default of 5 attempts.
	mistralAttempts = 1
)

type CompletionRequest struct {
	Model       string
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Completer produces one assistant reply for a system and user prompt.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// MistralCompleter talks to the Mistral chat completions API.
type MistralCompleter struct {
	Client *mistral.MistralClient
}

func NewMistralCompleter(apiKey string, timeout time.Duration) *MistralCompleter {
	return newMistralCompleter(apiKey, mistral.Endpoint, timeout)
}

func newMistralCompleter(apiKey, endpoint string, timeout time.Duration) *MistralCompleter {
	return &MistralCompleter{
		Client: mistral.NewMistralClient(apiKey, endpoint, mistralAttempts, timeout),
	}
}

func (m *MistralCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	params := mistral.DefaultChatRequestParams
	params.Temperature = req.Temperature
	if req.MaxTokens > 0 {
		params.MaxTokens = req.MaxTokens
	}
	model := req.Model
	if model == "" {
		model = DefaultModel
	}
	messages := []mistral.ChatMessage{
		{Role: mistral.RoleSystem, Content: req.System},
		{Role: mistral.RoleUser, Content: req.Prompt},
	}

	type result struct {
		content string
		err     error
	}
	done := make(chan result, 1)
	go func() {
		res, err := m.Client.Chat(model, messages, &params)
		if err != nil {
			done <- result{err: err}
			return
		}
		if len(res.Choices) == 0 {
			done <- result{err: errors.New("mistral: empty choices")}
			return
		}
		done <- result{content: res.Choices[0].Message.Content}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.content, r.err
	}
}
