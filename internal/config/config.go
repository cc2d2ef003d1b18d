package config

import (
	"os"
	"strconv"
	"time"
)

// Defaults for the analysis pipeline. All overridable via environment.
const (
	DefaultChunkBudget   = 20000
	DefaultMaxAttempts   = 3
	DefaultConcurrency   = 1
	DefaultSummaryCap    = 2500
	DefaultTranslatedCap = 60000
	DefaultCallTimeout   = 90 * time.Second
	DefaultChatModel     = "gpt-4o-mini"
	DefaultWhisperModel  = "whisper-1"
)

// Config is built once in main and passed into constructors explicitly.
// Nothing in the pipeline reads the environment after startup.
type Config struct {
	Port string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	ChatModel     string
	WhisperModel  string

	// ChunkBudget is the max chunk size in characters; transcripts at or
	// below it take the single-call path.
	ChunkBudget int
	// MaxAttempts bounds retries per outbound model call.
	MaxAttempts int
	// Concurrency > 1 enables the bounded worker pool on the long path.
	Concurrency int
	// SummaryCap / TranslatedCap are character caps that trigger
	// deterministic truncation during aggregation.
	SummaryCap    int
	TranslatedCap int
	// Synthesis enables the extra summary-rewrite call on the long path.
	Synthesis   bool
	CallTimeout time.Duration

	// PDFFontPath points at a TTF embedded for non-Latin PDF output.
	PDFFontPath string
}

// Load builds a Config from the environment, filling documented defaults.
func Load() Config {
	return Config{
		Port: envOr("PORT", "8080"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		ChatModel:     envOr("CHAT_MODEL", DefaultChatModel),
		WhisperModel:  envOr("WHISPER_MODEL", DefaultWhisperModel),

		ChunkBudget:   envInt("CHUNK_BUDGET", DefaultChunkBudget),
		MaxAttempts:   envInt("MAX_ATTEMPTS", DefaultMaxAttempts),
		Concurrency:   envInt("ANALYZER_CONCURRENCY", DefaultConcurrency),
		SummaryCap:    envInt("SUMMARY_CAP", DefaultSummaryCap),
		TranslatedCap: envInt("TRANSLATED_CAP", DefaultTranslatedCap),
		Synthesis:     envBool("ANALYZER_SYNTHESIS", false),
		CallTimeout:   envDuration("MODEL_CALL_TIMEOUT", DefaultCallTimeout),

		PDFFontPath: os.Getenv("PDF_FONT_PATH"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
