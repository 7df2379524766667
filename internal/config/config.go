package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	DatabaseURL     string   `validate:"required"`
	LogLevel        string
	Debug           bool
	ServiceName     string
	Environment     string
	Hostname        string
	ServerPort      string   `validate:"required,numeric"`
	WorkerCount     int      `validate:"gte=1"`
	BatchSize       int      `validate:"gte=1"`
	AllowedOrigins  []string
	MetaVerifyToken string   `validate:"required"`
	MetaAppSecret   string   `validate:"required"`
	GeminiAPIKeys   []string `validate:"required,min=1"`
	GenerationModel string   `validate:"required"`
	HistoryLimit    int      `validate:"gte=1"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		LogLevel:        envOr("LOG_LEVEL", "info"),
		Debug:           os.Getenv("DEBUG") == "true",
		ServiceName:     envOr("SERVICE_NAME", "channel-relay"),
		Environment:     envOr("ENVIRONMENT", "development"),
		Hostname:        envOr("HOSTNAME", "channel-relay"),
		ServerPort:      envOr("SERVER_PORT", "8080"),
		WorkerCount:     envIntOr("WORKER_COUNT", 10),
		BatchSize:       envIntOr("BATCH_SIZE", 100),
		MetaVerifyToken: os.Getenv("META_VERIFY_TOKEN"),
		MetaAppSecret:   os.Getenv("META_APP_SECRET"),
		GeminiAPIKeys:   splitCSV(os.Getenv("GEMINI_API_KEYS")),
		GenerationModel: envOr("GENERATION_MODEL", "gemini-2.0-flash-lite"),
		HistoryLimit:    envIntOr("HISTORY_LIMIT", 10),
	}

	cfg.AllowedOrigins = []string{"*"}
	if ao := os.Getenv("ALLOWED_ORIGINS"); ao != "" {
		cfg.AllowedOrigins = splitCSV(ao)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
