package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Server struct {
		Port         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		LogLevel     string
	}

	WeatherAPI struct {
		OpenMeteoURL string
		Timeout      time.Duration
	}

	Narrative struct {
		CohereAPIKey string
		CohereURL    string
		Model        string
		Timeout      time.Duration
	}

	Resorts struct {
		File           string
		DefaultCompare []string
	}

	Window struct {
		MaxOffsetDays int
		PastDays      int
		FutureDays    int
		MapLookback   int
	}

	Scheduler struct {
		MapRefreshSchedule string
		RefreshTimeout     time.Duration
	}

	Cache struct {
		Duration time.Duration
		MaxSize  int
	}

	CircuitBreaker struct {
		Threshold int
		Timeout   time.Duration
	}

	Ranking struct {
		TempPenaltyWeight float64
		WindPenaltyWeight float64
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Port = getEnv("FIBER_PORT", "8080")
	cfg.Server.ReadTimeout = parseDuration(getEnv("FIBER_READ_TIMEOUT", "10s"))
	cfg.Server.WriteTimeout = parseDuration(getEnv("FIBER_WRITE_TIMEOUT", "60s"))
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", "info")

	// Forecast API configuration
	cfg.WeatherAPI.OpenMeteoURL = getEnv("OPENMETEO_URL", "https://api.open-meteo.com/v1")
	cfg.WeatherAPI.Timeout = parseDuration(getEnv("HTTP_TIMEOUT", "10s"))

	// Narrative configuration; an empty key disables narration
	cfg.Narrative.CohereAPIKey = getEnv("COHERE_API_KEY", "")
	cfg.Narrative.CohereURL = getEnv("COHERE_URL", "https://api.cohere.ai/v1")
	cfg.Narrative.Model = getEnv("COHERE_MODEL", "")
	cfg.Narrative.Timeout = parseDuration(getEnv("COHERE_TIMEOUT", "30s"))

	cfg.Resorts.File = getEnv("RESORTS_FILE", "")
	cfg.Resorts.DefaultCompare = splitList(getEnv("DEFAULT_RESORTS", "Baqueira Beret (Spain),Grandvalira (Andorra)"))

	cfg.Window.MaxOffsetDays = parseInt(getEnv("WINDOW_MAX_OFFSET_DAYS", "4"))
	cfg.Window.PastDays = parseInt(getEnv("DEFAULT_WINDOW_PAST_DAYS", "2"))
	cfg.Window.FutureDays = parseInt(getEnv("DEFAULT_WINDOW_FUTURE_DAYS", "2"))
	cfg.Window.MapLookback = parseInt(getEnv("MAP_LOOKBACK_DAYS", "3"))

	cfg.Scheduler.MapRefreshSchedule = getEnv("MAP_REFRESH_SCHEDULE", "@every 15m")
	cfg.Scheduler.RefreshTimeout = parseDuration(getEnv("MAP_REFRESH_TIMEOUT", "60s"))

	// Cache configuration
	cfg.Cache.Duration = parseDuration(getEnv("CACHE_DURATION", "10m"))
	cfg.Cache.MaxSize = parseInt(getEnv("MAX_CACHE_SIZE", "1000"))

	// Circuit breaker configuration
	cfg.CircuitBreaker.Threshold = parseInt(getEnv("CIRCUIT_BREAKER_THRESHOLD", "3"))
	cfg.CircuitBreaker.Timeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", "30s"))

	// Ranking weights
	cfg.Ranking.TempPenaltyWeight = parseFloat(getEnv("RANK_TEMP_PENALTY_WEIGHT", "2.0"))
	cfg.Ranking.WindPenaltyWeight = parseFloat(getEnv("RANK_WIND_PENALTY_WEIGHT", "1.0"))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate rejects settings the services cannot start with.
func (c *Config) Validate() error {
	if c.Ranking.TempPenaltyWeight <= 0 {
		return fmt.Errorf("RANK_TEMP_PENALTY_WEIGHT must be positive")
	}
	if c.Ranking.WindPenaltyWeight <= 0 {
		return fmt.Errorf("RANK_WIND_PENALTY_WEIGHT must be positive")
	}
	if c.Window.MaxOffsetDays <= 0 {
		return fmt.Errorf("WINDOW_MAX_OFFSET_DAYS must be positive")
	}
	if c.Window.PastDays < 0 || c.Window.PastDays > c.Window.MaxOffsetDays ||
		c.Window.FutureDays < 0 || c.Window.FutureDays > c.Window.MaxOffsetDays {
		return fmt.Errorf("default window must lie within WINDOW_MAX_OFFSET_DAYS")
	}
	if c.Window.MapLookback < 0 || c.Window.MapLookback > c.Window.MaxOffsetDays {
		return fmt.Errorf("MAP_LOOKBACK_DAYS must lie within WINDOW_MAX_OFFSET_DAYS")
	}
	if c.WeatherAPI.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Narrative.Timeout <= 0 {
		return fmt.Errorf("COHERE_TIMEOUT must be positive")
	}
	if c.Scheduler.RefreshTimeout <= 0 {
		return fmt.Errorf("MAP_REFRESH_TIMEOUT must be positive")
	}
	if strings.TrimSpace(c.Scheduler.MapRefreshSchedule) == "" {
		return fmt.Errorf("MAP_REFRESH_SCHEDULE is required")
	}
	if c.Cache.MaxSize <= 0 {
		return fmt.Errorf("MAX_CACHE_SIZE must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}

func parseInt(value string) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("Failed to parse int", zap.String("value", value), zap.Error(err))
		return 0
	}
	return intValue
}

func parseFloat(value string) float64 {
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		zap.L().Warn("Failed to parse float", zap.String("value", value), zap.Error(err))
		return 0
	}
	return floatValue
}
