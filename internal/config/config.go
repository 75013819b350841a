package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	AllowedOrigin string

	// Completion service (OpenRouter-compatible endpoint)
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	Model             string
	MaxOutputTokens   int
	Temperature       float32
	CompletionTimeout time.Duration

	// Knowledge store
	KnowledgeFile     string
	KnowledgeMaxChars int

	// Admin gate (static shared secret, exact-match)
	AdminSecret string

	// Session bookkeeping
	MaxMessages   int
	HistoryWindow int

	// Optional intent/reply policy file (YAML); built-in defaults when empty
	PolicyFile string

	// Optional Postgres appointment persistence
	DatabaseURL   string
	MigrationsDir string
}

// Load reads configuration from the environment (and .env if present).
// A missing completion-service API key is a startup error: the chat path
// cannot function without it.
func Load() (Config, error) {
	_ = godotenv.Load()
	cfg := Config{
		Port:              getEnvDefault("PORT", "8080"),
		AllowedOrigin:     getEnvDefault("ALLOWED_ORIGIN", "*"),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL: getEnvDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		Model:             getEnvDefault("OPENROUTER_MODEL", "nvidia/nemotron-3-nano-30b-a3b:free"),
		MaxOutputTokens:   getEnvIntDefault("MAX_OUTPUT_TOKENS", 150),
		Temperature:       getEnvFloatDefault("COMPLETION_TEMPERATURE", 0.3),
		CompletionTimeout: time.Duration(getEnvIntDefault("COMPLETION_TIMEOUT_SECONDS", 30)) * time.Second,
		KnowledgeFile:     getEnvDefault("KNOWLEDGE_FILE", "data/knowledge.txt"),
		KnowledgeMaxChars: getEnvIntDefault("KNOWLEDGE_MAX_CHARS", 4500),
		AdminSecret:       getEnvDefault("ADMIN_SECRET", "@supersecret"),
		MaxMessages:       getEnvIntDefault("MAX_MESSAGES", 40),
		HistoryWindow:     getEnvIntDefault("HISTORY_WINDOW", 5),
		PolicyFile:        os.Getenv("INTENT_POLICY_FILE"),
		DatabaseURL:       os.Getenv("DB_URL"),
		MigrationsDir:     getEnvDefault("MIGRATIONS_DIR", "./migrations"),
	}
	if strings.TrimSpace(cfg.OpenRouterAPIKey) == "" {
		return cfg, fmt.Errorf("OPENROUTER_API_KEY is required")
	}
	return cfg, nil
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloatDefault(key string, def float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 32); err == nil {
			return float32(f)
		}
	}
	return def
}
