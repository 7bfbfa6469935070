package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/marksheet-builder/internal/backend"
	"github.com/stemsi/marksheet-builder/internal/config"
	"github.com/stemsi/marksheet-builder/internal/database"
	"github.com/stemsi/marksheet-builder/internal/form"
	"github.com/stemsi/marksheet-builder/internal/handler"
	"github.com/stemsi/marksheet-builder/internal/logger"
	"github.com/stemsi/marksheet-builder/internal/router"
	"github.com/stemsi/marksheet-builder/internal/service"
	"github.com/stemsi/marksheet-builder/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("backend", cfg.BackendURL).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Marksheet Builder")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Redis (optional) ───────────────────────────────────
	var optionCache service.OptionCache
	if cfg.RedisURL != "" {
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, template options will not be cached")
		} else {
			defer rdb.Close()
			optionCache = database.NewTemplateOptionCache(rdb, cfg.TemplateCacheTTL)
		}
	}

	// ─── Initialize Services ──────────────────────────────────────────
	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, log)
	store := form.NewStore(cfg.Defaults)
	tracker := service.NewStatusTracker()

	templateService := service.NewTemplateService(client, optionCache, log)
	submissionService := service.NewSubmissionService(client, tracker, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Form:     handler.NewFormHandler(store, submissionService, log),
		Template: handler.NewTemplateHandler(templateService),
		WS:       handler.NewWSHandler(store, submissionService, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// Running bulk submissions get the grace period to finish their roster.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
