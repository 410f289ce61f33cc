package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dealcraft/sales-engine/internal/config"
	"github.com/dealcraft/sales-engine/internal/handlers"
	"github.com/dealcraft/sales-engine/internal/logger"
	"github.com/dealcraft/sales-engine/internal/middleware"
	"github.com/dealcraft/sales-engine/internal/services"
	"github.com/dealcraft/sales-engine/internal/storage"
	"github.com/dealcraft/sales-engine/pkg/deck"
	"github.com/dealcraft/sales-engine/pkg/scenario"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Sales Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName,
		"storage_backend", cfg.StorageBackend)

	var llmService services.LLMService
	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			log.Error("Anthropic API key is required when using anthropic provider")
			os.Exit(1)
		}
		llmService = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, log)
		log.Info("Using Anthropic LLM provider")
	case config.ProviderMock:
		llmService = services.NewMockLLM()
		log.Warn("Using mock LLM provider; turns resolve with canned payloads")
	default:
		log.Error("Invalid LLM provider specified", "provider", cfg.LLMProvider, "supported", []string{config.ProviderAnthropic, config.ProviderMock})
		os.Exit(1)
	}

	var store storage.Storage
	switch cfg.StorageBackend {
	case config.StorageRedis:
		store = storage.NewRedisStorage(cfg.RedisURL, cfg.SessionTTL, log)
	case config.StorageSQLite:
		sqliteStore, err := storage.NewSQLiteStorage(cfg.SQLitePath, log)
		if err != nil {
			log.Error("Failed to open SQLite storage", "error", err, "path", cfg.SQLitePath)
			os.Exit(1)
		}
		store = sqliteStore
	default:
		log.Error("Invalid storage backend specified", "backend", cfg.StorageBackend, "supported", []string{config.StorageRedis, config.StorageSQLite})
		os.Exit(1)
	}

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	cardDeck, err := deck.Default()
	if err != nil {
		log.Error("Failed to load card deck", "error", err)
		os.Exit(1)
	}
	log.Info("Card deck loaded", "cards", len(cardDeck.Cards()))

	selectAvatar := scenario.NewAvatarSelector(rand.New(rand.NewSource(time.Now().UnixNano())))

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/health", healthHandler)

	sessionHandler := handlers.NewSessionHandler(store, llmService, cardDeck, selectAvatar, log)
	mux.Handle("/v1/session", sessionHandler)
	mux.Handle("/v1/session/", sessionHandler)

	deckHandler := handlers.NewDeckHandler(cardDeck, log)
	mux.Handle("/v1/cards", deckHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 180 * time.Second, // turn resolution waits on the LLM
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
