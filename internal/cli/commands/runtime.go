// Package commands implements the docqa subcommands.
package commands

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/cloo-solutions/docqa/internal/config"
	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/llm"
	"github.com/cloo-solutions/docqa/internal/service"
	"github.com/spf13/cobra"
)

// newCompleter builds the model client. Tests replace it.
var newCompleter = func(cfg *config.Config) (service.Completer, error) {
	if !cfg.HasLLM() {
		return nil, nil
	}
	return llm.NewClient(llm.Config{
		APIKey:          cfg.LLMAPIKey,
		BaseURL:         cfg.LLMBaseURL,
		Model:           cfg.LLMModel,
		MaxOutputTokens: cfg.LLMMaxOutputTokens,
	})
}

// addPipelineFlags registers the flags shared by every command that runs the
// pipeline. Unset flags leave the environment configuration alone.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().Int("token-limit", 0, "Maximum characters per chunk (env DOCQA_TOKEN_LIMIT)")
	cmd.Flags().Int("context-limit", 0, "Maximum characters of carried context (env DOCQA_CONTEXT_LIMIT)")
	cmd.Flags().Duration("cooldown", 0, "Wait after a rate-limit response (env DOCQA_RATE_LIMIT_COOLDOWN)")
	cmd.Flags().Int("max-retries", 0, "Give up after this many rate-limit waits, 0 retries forever")
	cmd.Flags().String("model", "", "Chat model name (env DOCQA_LLM_MODEL)")
}

// loadConfig reads the environment and applies explicitly set flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("token-limit") {
		cfg.TokenLimit, _ = flags.GetInt("token-limit")
	}
	if flags.Changed("context-limit") {
		cfg.ContextLimit, _ = flags.GetInt("context-limit")
	}
	if flags.Changed("cooldown") {
		cfg.RateLimitCooldown, _ = flags.GetDuration("cooldown")
	}
	if flags.Changed("max-retries") {
		cfg.MaxRateLimitRetries, _ = flags.GetInt("max-retries")
	}
	if flags.Changed("model") {
		cfg.LLMModel, _ = flags.GetString("model")
	}
	if flags.Lookup("min-words") != nil && flags.Changed("min-words") {
		cfg.SummaryMinWords, _ = flags.GetInt("min-words")
	}
	if flags.Lookup("max-words") != nil && flags.Changed("max-words") {
		cfg.SummaryMaxWords, _ = flags.GetInt("max-words")
	}
	if flags.Lookup("concurrency") != nil && flags.Changed("concurrency") {
		cfg.SummaryConcurrency, _ = flags.GetInt("concurrency")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildPipeline wires the model client into a pipeline. Without an API key the
// pipeline is still built and every run fails with a configuration error.
func buildPipeline(cfg *config.Config, onRateLimited service.RateLimitObserver) (*service.Pipeline, error) {
	completer, err := newCompleter(cfg)
	if err != nil {
		return nil, err
	}

	pcfg := service.PipelineConfig{
		TokenLimit:         cfg.TokenLimit,
		ContextLimit:       cfg.ContextLimit,
		SummaryConcurrency: cfg.SummaryConcurrency,
		Retry: service.RetryConfig{
			Cooldown:            cfg.RateLimitCooldown,
			MaxRateLimitRetries: cfg.MaxRateLimitRetries,
			OnRateLimited:       onRateLimited,
		},
	}
	return service.NewPipeline(completer, pcfg), nil
}

// rateLimitNotice prints the wait notice users see while the pipeline sleeps.
func rateLimitNotice(w io.Writer) service.RateLimitObserver {
	return func(req domain.TaskRequest, wait int, cooldown time.Duration) {
		fmt.Fprintf(w, "Rate limit reached on chunk %d. Waiting %s before retrying...\n", req.ChunkIndex+1, cooldown)
	}
}

// quietLogs silences the package-level logger unless verbose is set. The
// returned func restores the previous writer.
func quietLogs(verbose bool) func() {
	prev := log.Writer()
	if !verbose {
		log.SetOutput(io.Discard)
	}
	return func() { log.SetOutput(prev) }
}
