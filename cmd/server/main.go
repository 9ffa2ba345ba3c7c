package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bobby-s-dev/freeride-assistant/internal/api"
	"github.com/bobby-s-dev/freeride-assistant/internal/config"
	"github.com/bobby-s-dev/freeride-assistant/internal/metrics"
	"github.com/bobby-s-dev/freeride-assistant/internal/narrative"
	"github.com/bobby-s-dev/freeride-assistant/internal/resorts"
	"github.com/bobby-s-dev/freeride-assistant/internal/scheduler"
	"github.com/bobby-s-dev/freeride-assistant/internal/services"
	"github.com/bobby-s-dev/freeride-assistant/pkg/client"
)

func main() {
	// Load configuration first so LOG_LEVEL may come from .env
	cfg, err := config.LoadConfig()
	if err != nil {
		bootstrap, _ := zap.NewProduction()
		bootstrap.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize logger
	logger := newLogger(cfg.Server.LogLevel)
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	logger.Info("Starting Freeride Assistant", zap.String("log_level", cfg.Server.LogLevel))

	directory, err := resorts.Load(cfg.Resorts.File)
	if err != nil {
		logger.Fatal("Failed to load resort directory", zap.Error(err))
	}
	logger.Info("Resort directory loaded", zap.Int("resorts", directory.Len()))

	forecasts := client.NewOpenMeteoClient(cfg.WeatherAPI.OpenMeteoURL, client.ClientConfig{
		Timeout:        cfg.WeatherAPI.Timeout,
		Threshold:      cfg.CircuitBreaker.Threshold,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
	}, logger)

	var generator narrative.Generator
	if cfg.Narrative.CohereAPIKey != "" {
		generator = client.NewCohereClient(cfg.Narrative.CohereAPIKey, cfg.Narrative.CohereURL, cfg.Narrative.Model, client.ClientConfig{
			Timeout:        cfg.Narrative.Timeout,
			Threshold:      cfg.CircuitBreaker.Threshold,
			BreakerTimeout: cfg.CircuitBreaker.Timeout,
		}, logger)
	} else {
		logger.Warn("COHERE_API_KEY not set, narratives disabled")
	}

	recorder := metrics.New()

	assistant, err := services.NewAssistant(cfg, directory, forecasts,
		narrative.NewNarrator(generator, logger), recorder, logger)
	if err != nil {
		logger.Fatal("Failed to initialize assistant", zap.Error(err))
	}
	defer assistant.Close()

	// Initialize scheduler
	mapScheduler, err := scheduler.NewScheduler(
		assistant,
		cfg.Scheduler.MapRefreshSchedule,
		cfg.Scheduler.RefreshTimeout,
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to initialize scheduler", zap.Error(err))
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		JSONEncoder:  json.Marshal,
		ErrorHandler: api.ErrorHandler,
	})

	// Setup handlers and routes
	handler := api.NewHandler(assistant, mapScheduler, logger)
	api.SetupRoutes(app, handler, recorder.Handler(), logger)

	mapScheduler.Start()

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Starting server", zap.String("address", addr))

		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mapScheduler.Stop()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}

// newLogger builds a production logger, or a development one for debug.
func newLogger(level string) *zap.Logger {
	if level == "debug" {
		logger, _ := zap.NewDevelopment()
		return logger
	}

	cfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, _ := cfg.Build()
	return logger
}
