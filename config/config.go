package config

import (
	"os"
	"strconv"
	"time"
)

const (
	// ProviderFixture selects the deterministic fixture backends. It is the
	// default so the assistant runs without any API keys.
	ProviderFixture = "fixture"
	ProviderOpenAI  = "openai"
	ProviderOllama  = "ollama"
)

type LLMConfig struct {
	Provider string
	Model    string
}

type SearchConfig struct {
	Provider   string
	MaxResults int
}

type Config struct {
	LLM    LLMConfig
	Search SearchConfig

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OllamaHost    string

	PerplexityAPIKey  string
	PerplexityBaseURL string

	PostgresDSN string
	DataDir     string

	// RequestTimeout bounds every backend call (LLM, search); a timed-out call
	// degrades into the corresponding fallback response instead of hanging a turn.
	RequestTimeout time.Duration
}

func Load() Config {
	return Config{
		LLM: LLMConfig{
			Provider: getEnv("MEDGUIDE_LLM_PROVIDER", ProviderFixture),
			Model:    getEnv("MEDGUIDE_LLM_MODEL", "gpt-4o-mini"),
		},
		Search: SearchConfig{
			Provider:   getEnv("MEDGUIDE_SEARCH_PROVIDER", ProviderFixture),
			MaxResults: getEnvInt("MEDGUIDE_SEARCH_MAX_RESULTS", 5),
		},
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		OllamaHost:        getEnv("OLLAMA_HOST", "http://localhost:11434"),
		PerplexityAPIKey:  os.Getenv("PERPLEXITY_API_KEY"),
		PerplexityBaseURL: getEnv("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"),
		PostgresDSN:       getEnv("POSTGRES_DSN", "postgres://localhost:5432/medguide?sslmode=disable"),
		DataDir:           getEnv("MEDGUIDE_DATA_DIR", "data"),
		RequestTimeout:    time.Duration(getEnvInt("MEDGUIDE_REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
