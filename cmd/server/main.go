package main

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"crediario-backend/internal/ai"
	"crediario-backend/internal/auth"
	"crediario-backend/internal/config"
	"crediario-backend/internal/db"
	"crediario-backend/internal/domain"
	"crediario-backend/internal/handler"
	"crediario-backend/internal/ledger"
	"crediario-backend/internal/ports"
	"crediario-backend/internal/realtime"
	"crediario-backend/internal/repository"
	"crediario-backend/internal/server"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := auth.NewStaticStore(
		domain.Identity{Pin: cfg.OwnerPin, DisplayName: cfg.OwnerName, Role: domain.RoleOwner},
		domain.Identity{Pin: cfg.WaiterPin, DisplayName: cfg.WaiterName, Role: domain.RoleWaiter},
	)
	if err != nil {
		logger.Error("failed to build credential store", "err", err)
		os.Exit(1)
	}
	sessions := auth.Sessions{Secret: []byte(cfg.SessionSecret), TTL: cfg.SessionTTL, Store: store}

	ledgerClient := ledger.New(cfg.LedgerBaseURL, cfg.LedgerTimeout, logger)

	// Realtime view (optional)
	var view ports.CrediarioView
	if cfg.FirebaseProjectID != "" {
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, firebaseOptions(cfg)...)
		if err != nil {
			logger.Error("failed to init firebase app", "err", err)
			os.Exit(1)
		}
		fs, err := app.Firestore(ctx)
		if err != nil {
			logger.Error("failed to init firestore", "err", err)
			os.Exit(1)
		}
		defer fs.Close()
		v := realtime.NewView(realtime.FirestoreSource{Client: fs, Collection: cfg.CrediarioCollection}, logger)
		go v.Run(ctx, domain.RoleOwner)
		view = v
	} else {
		logger.Warn("FIREBASE_PROJECT_ID not set, realtime view disabled")
	}

	// Action audit log (optional)
	var (
		health    handler.HealthHandler
		recorder  ai.ActionRecorder
		actionLog handler.ActionLogHandler
	)
	pg, err := db.New(ctx, cfg)
	switch {
	case errors.Is(err, db.ErrNotConfigured):
		logger.Info("DATABASE_URL not set, ai action log disabled")
	case err != nil:
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	default:
		defer pg.Close()
		repo := repository.ActionLogRepository{DB: pg}
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Error("failed to prepare action log schema", "err", err)
			os.Exit(1)
		}
		health.DB = pg
		recorder = repo
		actionLog.Repo = repo
	}
	health.View = view

	var model ai.Completer
	if cfg.MistralAPIKey != "" {
		model = ai.NewMistralCompleter(cfg.MistralAPIKey, cfg.MistralTimeout)
	} else {
		logger.Warn("MISTRAL_API_KEY not set, ai chat will answer with an error")
	}
	orchestrator := &ai.Orchestrator{
		Model:       model,
		ModelName:   cfg.MistralModel,
		Temperature: cfg.MistralTemperature,
		MaxTokens:   cfg.MistralMaxTokens,
		Executor:    ai.Executor{Ledger: ledgerClient, Recorder: recorder, Logger: logger},
		Cache:       ai.NewResponseCache(cfg.AICacheSize, cfg.AICacheTTL, nil),
		Logger:      logger,
	}

	// handlers
	authHandler := handler.AuthHandler{Store: store, Sessions: sessions, Logger: logger}
	crediarioHandler := handler.CrediarioHandler{Ledger: ledgerClient, View: view, Logger: logger}
	aiChatHandler := handler.AIChatHandler{Orchestrator: orchestrator, View: view, Logger: logger}
	aiActionsHandler := handler.AIActionsHandler{Ledger: ledgerClient, Logger: logger}

	router := server.NewRouter(logger, sessions, health, authHandler, crediarioHandler, aiChatHandler, aiActionsHandler, actionLog)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

func firebaseOptions(cfg config.Config) []option.ClientOption {
	cred := strings.TrimSpace(cfg.FirebaseCredFile)
	if cred == "" {
		return nil
	}
	if strings.HasPrefix(cred, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cred))}
	}
	if decoded, err := base64.StdEncoding.DecodeString(cred); err == nil && strings.HasPrefix(strings.TrimSpace(string(decoded)), "{") {
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}
	}
	return []option.ClientOption{option.WithCredentialsFile(cred)}
}
