package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultLedgerURL = "https://southamerica-east1-edienailanches.cloudfunctions.net"

// Config holds application runtime configuration.
type Config struct {
	Env      string
	HTTPPort string

	LedgerBaseURL string
	LedgerTimeout time.Duration

	SessionSecret string
	SessionTTL    time.Duration
	OwnerPin      string
	OwnerName     string
	WaiterPin     string
	WaiterName    string

	MistralAPIKey      string
	MistralModel       string
	MistralTemperature float64
	MistralMaxTokens   int
	MistralTimeout     time.Duration
	AICacheTTL         time.Duration
	AICacheSize        int

	FirebaseProjectID   string
	FirebaseCredFile    string
	CrediarioCollection string

	DatabaseURL string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads environment variables and .env (if present).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		LedgerBaseURL:       getEnv("LEDGER_BACKEND_URL", defaultLedgerURL),
		LedgerTimeout:       getDuration("LEDGER_TIMEOUT", 15*time.Second),
		SessionSecret:       os.Getenv("SESSION_SECRET"),
		SessionTTL:          getDuration("SESSION_TTL", 30*24*time.Hour),
		OwnerPin:            getEnv("OWNER_PIN", "3007"),
		OwnerName:           getEnv("OWNER_NAME", "Proprietário"),
		WaiterPin:           getEnv("WAITER_PIN", "5678"),
		WaiterName:          getEnv("WAITER_NAME", "Garçom"),
		MistralAPIKey:       os.Getenv("MISTRAL_API_KEY"),
		MistralModel:        getEnv("MISTRAL_MODEL", "mistral-small-latest"),
		MistralTemperature:  getFloat("MISTRAL_TEMPERATURE", 0.3),
		MistralMaxTokens:    getInt("MISTRAL_MAX_TOKENS", 800),
		MistralTimeout:      getDuration("MISTRAL_TIMEOUT", 30*time.Second),
		AICacheTTL:          getDuration("AI_CACHE_TTL", 60*time.Second),
		AICacheSize:         getInt("AI_CACHE_SIZE", 512),
		FirebaseProjectID:   os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredFile:    os.Getenv("FIREBASE_CREDENTIALS"),
		CrediarioCollection: getEnv("CREDIARIO_COLLECTION", "crediarios"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		ReadTimeout:         getDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:        getDuration("HTTP_WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:         getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:     getDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if cfg.SessionSecret == "" {
		return cfg, errors.New("SESSION_SECRET is required")
	}
	if cfg.OwnerPin == cfg.WaiterPin {
		return cfg, errors.New("OWNER_PIN and WAITER_PIN must differ")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		// Support seconds as integer without suffix.
		if secs, convErr := strconv.Atoi(val); convErr == nil {
			return time.Duration(secs) * time.Second
		}
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return f
}
