package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	for _, k := range []string{"HTTP_PORT", "LEDGER_BACKEND_URL", "AI_CACHE_TTL", "MISTRAL_TEMPERATURE", "OWNER_PIN", "WAITER_PIN"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != "8080" || cfg.LedgerBaseURL != defaultLedgerURL {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.AICacheTTL != time.Minute || cfg.MistralTemperature != 0.3 || cfg.MistralMaxTokens != 800 {
		t.Fatalf("ai settings = %v %v %v", cfg.AICacheTTL, cfg.MistralTemperature, cfg.MistralMaxTokens)
	}
	if cfg.OwnerPin != "3007" || cfg.WaiterPin != "5678" {
		t.Fatalf("pins = %s %s", cfg.OwnerPin, cfg.WaiterPin)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without SESSION_SECRET")
	}
}

func TestLoadRejectsSharedPin(t *testing.T) {
	t.Setenv("SESSION_SECRET", "x")
	t.Setenv("OWNER_PIN", "1111")
	t.Setenv("WAITER_PIN", "1111")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for identical pins")
	}
}

func TestGetDurationAcceptsSeconds(t *testing.T) {
	t.Setenv("X_TIMEOUT", "45")
	if got := getDuration("X_TIMEOUT", time.Second); got != 45*time.Second {
		t.Fatalf("got %v", got)
	}
	t.Setenv("X_TIMEOUT", "2m")
	if got := getDuration("X_TIMEOUT", time.Second); got != 2*time.Minute {
		t.Fatalf("got %v", got)
	}
	t.Setenv("X_TIMEOUT", "soon")
	if got := getDuration("X_TIMEOUT", time.Second); got != time.Second {
		t.Fatalf("got %v", got)
	}
}
