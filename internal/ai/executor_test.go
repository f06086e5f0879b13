package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"crediario-backend/internal/domain"
	"crediario-backend/internal/ledger"
)

type fakeLedger struct {
	mu      sync.Mutex
	creates []ledger.CreateCrediarioInput
	adds    []ledger.AddTransactionInput
	err     error
}

func (f *fakeLedger) CreateCrediario(_ context.Context, _ ledger.Credentials, in ledger.CreateCrediarioInput) (*domain.Crediario, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, in)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Crediario{ID: "new", CustomerName: in.CustomerName}, nil
}

func (f *fakeLedger) AddTransaction(_ context.Context, _ ledger.Credentials, in ledger.AddTransactionInput) (*domain.Crediario, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adds = append(f.adds, in)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Crediario{ID: in.CrediarioID}, nil
}

func (f *fakeLedger) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates) + len(f.adds)
}

type memRecorder struct {
	mu      sync.Mutex
	records []ActionRecord
}

func (m *memRecorder) RecordAction(_ context.Context, rec ActionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

var (
	ownerCreds  = ledger.Credentials{Role: domain.RoleOwner, Pin: "3007"}
	waiterCreds = ledger.Credentials{Role: domain.RoleWaiter, Pin: "5678"}
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExecutorCreatesCrediario(t *testing.T) {
	led := &fakeLedger{}
	rec := &memRecorder{}
	ex := Executor{Ledger: led, Recorder: rec, Logger: quietLogger()}

	actions := ex.Run(context.Background(), ownerCreds, "Criar crediário para João com R$ 50", nil)
	if len(actions) != 1 {
		t.Fatalf("actions = %+v", actions)
	}
	if len(led.creates) != 1 || led.creates[0].CustomerName != "João" || led.creates[0].InitialValue != 50 {
		t.Fatalf("creates = %+v", led.creates)
	}
	if led.creates[0].InitialItemsConsumed != "" {
		t.Fatal("initial items should be empty")
	}
	if got := actions[0].Reasoning; got != "Crediário criado automaticamente para João" {
		t.Fatalf("reasoning = %q", got)
	}
	if len(rec.records) != 1 || !rec.records[0].Succeeded || rec.records[0].Role != domain.RoleOwner {
		t.Fatalf("records = %+v", rec.records)
	}
}

func TestExecutorAddsPayment(t *testing.T) {
	led := &fakeLedger{}
	ex := Executor{Ledger: led, Logger: quietLogger()}

	actions := ex.Run(context.Background(), ownerCreds, "Adicionar pagamento de R$ 30 para Maria Silva", sampleCrediarios)
	if len(actions) != 1 || actions[0].Action != ActionAddPayment {
		t.Fatalf("actions = %+v", actions)
	}
	want := ledger.AddTransactionInput{
		CrediarioID: "c1",
		Type:        domain.TransactionPayment,
		Amount:      30,
		Description: "Pagamento registrado via IA",
	}
	if len(led.adds) != 1 || led.adds[0] != want {
		t.Fatalf("adds = %+v", led.adds)
	}
	if got := actions[0].Reasoning; got != "Pagamento de R$ 30,00 registrado para Maria Silva" {
		t.Fatalf("reasoning = %q", got)
	}
}

func TestExecutorAddsConsumption(t *testing.T) {
	led := &fakeLedger{}
	ex := Executor{Ledger: led, Logger: quietLogger()}

	ex.Run(context.Background(), ownerCreds, "Adicionar consumo de R$ 18,90 para Pedro", sampleCrediarios)
	if len(led.adds) != 1 {
		t.Fatalf("adds = %+v", led.adds)
	}
	got := led.adds[0]
	if got.Type != domain.TransactionConsumption || got.Amount != 18.9 || got.Description != "Consumo registrado via IA" {
		t.Fatalf("add = %+v", got)
	}
}

func TestExecutorNonOwnerNeverCallsLedger(t *testing.T) {
	led := &fakeLedger{}
	ex := Executor{Ledger: led, Logger: quietLogger()}

	for _, creds := range []ledger.Credentials{waiterCreds, {}} {
		actions := ex.Run(context.Background(), creds, "Criar crediário para João com R$ 50", nil)
		if actions == nil || len(actions) != 0 {
			t.Fatalf("actions for %q = %+v", creds.Role, actions)
		}
	}
	if led.calls() != 0 {
		t.Fatalf("ledger calls = %d, want 0", led.calls())
	}
}

func TestExecutorReportsFailure(t *testing.T) {
	led := &fakeLedger{err: &ledger.APIError{Operation: ledger.OpCreateCrediario, Status: 409, Message: "Já existe"}}
	rec := &memRecorder{}
	ex := Executor{Ledger: led, Recorder: rec, Logger: quietLogger()}

	actions := ex.Run(context.Background(), ownerCreds, "Criar crediário para João", nil)
	if len(actions) != 1 || !actions[0].Failed {
		t.Fatalf("actions = %+v", actions)
	}
	if !strings.Contains(actions[0].Reasoning, "Falha ao executar createCrediario") {
		t.Fatalf("reasoning = %q", actions[0].Reasoning)
	}
	if len(rec.records) != 1 || rec.records[0].Succeeded {
		t.Fatalf("records = %+v", rec.records)
	}
}

func TestExecutorRecorderErrorIsIgnored(t *testing.T) {
	ex := Executor{Ledger: &fakeLedger{}, Recorder: failingRecorder{}, Logger: quietLogger()}
	actions := ex.Run(context.Background(), ownerCreds, "Criar crediário para João", nil)
	if len(actions) != 1 || actions[0].Failed {
		t.Fatalf("actions = %+v", actions)
	}
}

type failingRecorder struct{}

func (failingRecorder) RecordAction(context.Context, ActionRecord) error {
	return errors.New("db down")
}
