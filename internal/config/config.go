// Package config loads environment-driven Settings, searching for a
// .env file in the working directory and its parents before falling
// back to the process environment, grounded on
// original_source/backend/app/core/config.py's find_env_file() search
// order and kadirpekel-hector's godotenv-based dotenv loader (v2/config/
// dotenv.go); decoded with plain struct field defaults rather than a
// config-decoding library, matching an environment-reads-only style.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Settings holds every environment-driven knob the orchestration core
// reads at startup.
type Settings struct {
	Environment string // development | production

	// LLM provider selection and credentials.
	LLMProvider string // anthropic | openai | bedrock
	LLMAPIKey   string
	LLMBaseURL  string
	LLMModel    string
	LLMTimeout  time.Duration

	// Agent Node (C4) bounds.
	NodeStepBudget int
	NodeCallTimeout time.Duration

	// Graph Executor (C7) bounds.
	ExecutorStepBudget      int
	MaxConsecutiveFailures  int

	// Paper workflow tuning.
	MaxRevisions  int
	MinReferences int

	// Telemetry.
	TraceDetailed bool
	LogLevel      string
	LogFormat     string // json | text
	OTELEndpoint  string

	// A2A persistence.
	DatabaseURL string // e.g. "sqlite:///./agentcore.db" or "memory://"

	// Session/run metadata (ambient enrichment, optional).
	MongoURI      string
	MongoDatabase string
}

// defaults mirrors core/config.py's field defaults.
func defaults() Settings {
	return Settings{
		Environment:            "development",
		LLMProvider:            "openai",
		LLMBaseURL:             "https://api.openai.com/v1",
		LLMModel:               "gpt-4o-mini",
		LLMTimeout:             30 * time.Second,
		NodeStepBudget:         8,
		NodeCallTimeout:        30 * time.Second,
		ExecutorStepBudget:     40,
		MaxConsecutiveFailures: 3,
		MaxRevisions:           3,
		MinReferences:          10,
		TraceDetailed:          false,
		LogLevel:               "INFO",
		LogFormat:              "text",
		DatabaseURL:            "sqlite:///./agentcore.db",
	}
}

// Load searches for a .env file (current directory, then each parent up
// to the filesystem root) and applies it without overwriting variables
// already set in the process environment, then decodes Settings from
// the environment.
func Load() (Settings, error) {
	loadDotEnv()

	s := defaults()

	s.Environment = getenv("ENVIRONMENT", s.Environment)
	s.LLMProvider = getenv("LLM_PROVIDER", s.LLMProvider)
	s.LLMAPIKey = getenv("LLM_API_KEY", s.LLMAPIKey)
	s.LLMBaseURL = getenv("LLM_BASE_URL", s.LLMBaseURL)
	s.LLMModel = getenv("LLM_MODEL", s.LLMModel)
	if err := getenvDuration("LLM_TIMEOUT_SECONDS", &s.LLMTimeout); err != nil {
		return Settings{}, err
	}

	if err := getenvInt("NODE_STEP_BUDGET", &s.NodeStepBudget); err != nil {
		return Settings{}, err
	}
	if err := getenvDuration("NODE_CALL_TIMEOUT_SECONDS", &s.NodeCallTimeout); err != nil {
		return Settings{}, err
	}
	if err := getenvInt("EXECUTOR_STEP_BUDGET", &s.ExecutorStepBudget); err != nil {
		return Settings{}, err
	}
	if err := getenvInt("MAX_CONSECUTIVE_FAILURES", &s.MaxConsecutiveFailures); err != nil {
		return Settings{}, err
	}
	if err := getenvInt("MAX_REVISIONS", &s.MaxRevisions); err != nil {
		return Settings{}, err
	}
	if err := getenvInt("MIN_REFERENCES", &s.MinReferences); err != nil {
		return Settings{}, err
	}

	if err := getenvBool("TRACE_DETAILED", &s.TraceDetailed); err != nil {
		return Settings{}, err
	}
	s.LogLevel = getenv("LOG_LEVEL", s.LogLevel)
	s.LogFormat = getenv("LOG_FORMAT", s.LogFormat)
	s.OTELEndpoint = getenv("OTEL_EXPORTER_OTLP_ENDPOINT", s.OTELEndpoint)

	s.DatabaseURL = getenv("DATABASE_URL", s.DatabaseURL)
	s.MongoURI = getenv("MONGO_URI", s.MongoURI)
	s.MongoDatabase = getenv("MONGO_DATABASE", s.MongoDatabase)

	if s.LLMAPIKey == "" {
		return Settings{}, fmt.Errorf("config: LLM_API_KEY is required")
	}
	return s, nil
}

// loadDotEnv mirrors find_env_file(): current directory, then each
// parent, first match wins; existing process environment variables are
// never overwritten.
func loadDotEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for {
		candidate := filepath.Join(dir, ".env")
		if _, err := os.Stat(candidate); err == nil {
			_ = godotenv.Load(candidate)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = n
	return nil
}

func getenvBool(key string, dst *bool) error {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = b
	return nil
}

func getenvDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = time.Duration(secs * float64(time.Second))
	return nil
}
