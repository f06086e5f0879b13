package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const (
	MsgUnauthenticated = "Usuário não autenticado. Faça login novamente."
	MsgForbidden       = "Sem permissão. Faça login novamente."
	MsgDuplicateName   = "Já existe um crediário ativo com este nome."
)

var ErrUnauthenticated = errors.New(MsgUnauthenticated)

// APIError is a non-2xx answer from the ledger backend.
type APIError struct {
	Operation Operation
	Status    int
	Data      map[string]any
	Message   string
}

func (e *APIError) Error() string {
	return e.Message
}

// BackendMessage is the message or error field of the response body, if any.
func (e *APIError) BackendMessage() string {
	return backendMessage(e.Data)
}

func newAPIError(op Operation, status int, body []byte) *APIError {
	e := &APIError{Operation: op, Status: status}
	var data map[string]any
	if err := json.Unmarshal(body, &data); err == nil {
		e.Data = data
	}
	e.Message = backendMessage(e.Data)
	if e.Message == "" {
		e.Message = fmt.Sprintf("HTTP %d", status)
	}
	return e
}

func backendMessage(data map[string]any) string {
	for _, key := range []string{"message", "error"} {
		if s, ok := data[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// UserMessage turns a ledger failure into the text shown to the user.
// fallback is used when the backend gave no usable message.
func UserMessage(err error, fallback string) string {
	if errors.Is(err, ErrUnauthenticated) {
		return MsgUnauthenticated
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return fallback
	}
	switch {
	case apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden:
		return MsgForbidden
	case apiErr.Status == http.StatusConflict && apiErr.Operation == OpCreateCrediario:
		if msg := apiErr.BackendMessage(); msg != "" {
			return msg
		}
		return MsgDuplicateName
	}
	if msg := apiErr.BackendMessage(); msg != "" {
		return msg
	}
	return fmt.Sprintf("%s (HTTP %d)", fallback, apiErr.Status)
}
