package config

import (
	"fmt"
	"log"
	"time"

	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	LLMAPIKey          string `envconfig:"LLM_API_KEY"`
	LLMBaseURL         string `envconfig:"LLM_BASE_URL" default:"https://api.groq.com/openai/v1"`
	LLMModel           string `envconfig:"LLM_MODEL" default:"llama3-8b-8192"`
	LLMMaxOutputTokens int    `envconfig:"LLM_MAX_OUTPUT_TOKENS" default:"0"`

	// Limits are counted in characters, not model tokens.
	TokenLimit   int `envconfig:"TOKEN_LIMIT" default:"8000"`
	ContextLimit int `envconfig:"CONTEXT_LIMIT" default:"8000"`

	RateLimitCooldown time.Duration `envconfig:"RATE_LIMIT_COOLDOWN" default:"60s"`
	// 0 retries forever on rate limits.
	MaxRateLimitRetries int `envconfig:"MAX_RATE_LIMIT_RETRIES" default:"0"`

	SummaryMinWords    int `envconfig:"SUMMARY_MIN_WORDS" default:"50"`
	SummaryMaxWords    int `envconfig:"SUMMARY_MAX_WORDS" default:"100"`
	SummaryConcurrency int `envconfig:"SUMMARY_CONCURRENCY" default:"1"`

	ExtractMaxChars int   `envconfig:"EXTRACT_MAX_CHARS" default:"0"`
	MaxUploadBytes  int64 `envconfig:"MAX_UPLOAD_BYTES" default:"20971520"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("DOCQA", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// Validate checks the chunking, retry and summary settings. A missing API key
// is not reported here; the pipeline refuses to run without one.
func (c *Config) Validate() error {
	switch {
	case c.TokenLimit <= 0:
		return invalid(fmt.Errorf("TOKEN_LIMIT must be positive, got %d", c.TokenLimit))
	case c.ContextLimit <= 0:
		return invalid(fmt.Errorf("CONTEXT_LIMIT must be positive, got %d", c.ContextLimit))
	case c.RateLimitCooldown < 0:
		return invalid(fmt.Errorf("RATE_LIMIT_COOLDOWN must not be negative, got %s", c.RateLimitCooldown))
	case c.MaxRateLimitRetries < 0:
		return invalid(fmt.Errorf("MAX_RATE_LIMIT_RETRIES must not be negative, got %d", c.MaxRateLimitRetries))
	case c.SummaryConcurrency <= 0:
		return invalid(fmt.Errorf("SUMMARY_CONCURRENCY must be positive, got %d", c.SummaryConcurrency))
	}
	if err := c.SummaryBand().Validate(); err != nil {
		return invalid(fmt.Errorf("summary word band: %w", err))
	}
	return nil
}

func invalid(err error) error {
	return domain.NewDomainErrorWithCause(domain.ErrCodeConfiguration, domain.ErrConfiguration.Message, err)
}

func (c *Config) HasLLM() bool {
	return c.LLMAPIKey != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}

func (c *Config) SummaryBand() domain.LengthBand {
	return domain.LengthBand{Min: c.SummaryMinWords, Max: c.SummaryMaxWords}
}
