package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Upload handling
	UploadDir      string
	MaxUploadBytes int64

	// LLM provider (OpenAI-compatible chat completions)
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	LLMTimeout    time.Duration

	// Chunking
	ChunkTokenBudget int

	// QA behavior. When RelevanceFilter is on and no page is given, every
	// chunk costs one classification call before the final answer call.
	RelevanceFilter bool

	// TTS provider
	ElevenLabsAPIKey string

	// Cleanup
	AudioRetention time.Duration
}

func Load() Config {
	// Best-effort: absence of a .env file is not an error.
	godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8000"),

		UploadDir:      envOr("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   envOr("OPENAI_MODEL", "gpt-4"),
		LLMTimeout:    envDuration("LLM_TIMEOUT", 60*time.Second),

		ChunkTokenBudget: envInt("CHUNK_TOKEN_BUDGET", 2000),

		RelevanceFilter: envBool("QA_RELEVANCE_FILTER", true),

		ElevenLabsAPIKey: os.Getenv("ELEVENLABS_API_KEY"),

		AudioRetention: envDuration("AUDIO_RETENTION", 1*time.Hour),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.ChunkTokenBudget <= 0 {
		cfg.ChunkTokenBudget = 2000
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 60 * time.Second
	}
	if cfg.AudioRetention <= 0 {
		cfg.AudioRetention = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	// ELEVENLABS_API_KEY is optional; TTS endpoints report the missing key
	// per-request instead of refusing to start.
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
