// Majka - Postpartum Intake and Recovery Plan Server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/majkahealth/majka-server/internal/api"
	"github.com/majkahealth/majka-server/internal/catalog"
	"github.com/majkahealth/majka-server/internal/chat"
	"github.com/majkahealth/majka-server/internal/config"
	"github.com/majkahealth/majka-server/internal/gemini"
	"github.com/majkahealth/majka-server/internal/guided"
	"github.com/majkahealth/majka-server/internal/identity"
	"github.com/majkahealth/majka-server/internal/middleware"
	"github.com/majkahealth/majka-server/internal/plan"
	"github.com/majkahealth/majka-server/internal/session"
	"github.com/majkahealth/majka-server/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// Initialize services.
	catalogSvc := catalog.NewService(repo, cfg.MaxQuestionOrder)
	seeded, err := catalogSvc.EnsureSeeded(context.Background())
	if err != nil {
		slog.Error("Failed to seed question catalog", "error", err)
		os.Exit(1)
	}
	if seeded > 0 {
		slog.Info("Question catalog seeded", "questions", seeded)
	}

	identitySvc := identity.NewService(repo, cfg.MaxQuestionOrder)

	// Gemini-backed features are optional and degrade to clear errors when
	// GEMINI_API_KEY is not set.
	var (
		generator plan.Generator
		assistant chat.Assistant
	)
	aiEnabled := false
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(context.Background(), gemini.Config{
			APIKey:         cfg.GeminiAPIKey,
			Model:          cfg.GeminiModel,
			RequestTimeout: gemini.DefaultConfig().RequestTimeout,
		})
		if err != nil {
			slog.Warn("Failed to initialize Gemini client, AI features will be disabled", "error", err)
		} else {
			generator = client
			assistant = chat.NewGeminiAssistant(client)
			aiEnabled = true
		}
	}
	if !aiEnabled {
		slog.Info("AI features disabled (GEMINI_API_KEY not set or client init failed)")
	}

	planSvc := plan.NewService(repo, generator, cfg.MaxQuestionOrder)
	launcher := guided.NewLauncher(cfg.GuidedHelper)

	// Initialize handlers.
	restHandler := api.NewHandler(catalogSvc, identitySvc, repo, planSvc, assistant, launcher)
	sessions := session.NewManager()
	wsHandler := session.NewHandler(catalogSvc, identitySvc, repo, planSvc, assistant,
		sessions, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{"*"}))

	restHandler.RegisterRoutes(r)

	// WebSocket endpoint.
	r.Get("/ws/intake", wsHandler.ServeHTTP)

	// Create server.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // WebSocket sessions stay open indefinitely
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
