package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/cloo-solutions/docqa/internal/config"
	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/extract"
	"github.com/spf13/cobra"
)

type runOutput struct {
	RunID          string `json:"run_id"`
	Task           string `json:"task"`
	Document       string `json:"document"`
	Text           string `json:"text,omitempty"`
	Output         string `json:"output"`
	Chunks         int    `json:"chunks"`
	Requests       int    `json:"requests"`
	RateLimitWaits int    `json:"rate_limit_waits"`
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("show-text", false, "Print the extracted document text before the result")
	cmd.Flags().BoolP("verbose", "v", false, "Log pipeline progress to stderr")
}

// runDocument extracts path, runs task over it and prints the result.
func runDocument(cmd *cobra.Command, cfg *config.Config, path string, task domain.Task) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	showText, _ := cmd.Flags().GetBool("show-text")
	format, _ := cmd.Flags().GetString("output")
	restore := quietLogs(verbose || cfg.Debug)
	defer restore()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	text, err := readDocument(ctx, cfg, path)
	if err != nil {
		return err
	}

	pipeline, err := buildPipeline(cfg, rateLimitNotice(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}

	doc := domain.Document{Name: filepath.Base(path), Text: text}
	result, err := pipeline.Run(ctx, doc, task)
	if err != nil {
		return err
	}

	out := runOutput{
		RunID:          result.RunID,
		Task:           string(result.Kind),
		Document:       doc.Name,
		Output:         result.Output,
		Chunks:         result.Chunks,
		Requests:       result.Requests,
		RateLimitWaits: result.RateLimitWaits,
	}
	if showText {
		out.Text = text
	}
	return printResult(cmd.OutOrStdout(), format, out)
}

func readDocument(ctx context.Context, cfg *config.Config, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	return extract.New(cfg.ExtractMaxChars).Extract(ctx, path, f)
}

func printResult(w io.Writer, format string, out runOutput) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
	case "", "text":
		if out.Text != "" {
			fmt.Fprintf(w, "Extracted text:\n%s\n\n", out.Text)
		}
		if out.Chunks == 0 {
			fmt.Fprintln(w, "The document contains no text.")
			return nil
		}
		heading := "Answer"
		if out.Task == string(domain.TaskKindSummarize) {
			heading = "Summary"
		}
		fmt.Fprintf(w, "%s (%d chunks, %d requests):\n%s\n", heading, out.Chunks, out.Requests, out.Output)
	default:
		return fmt.Errorf("unknown output format %q (want text or json)", format)
	}
	return nil
}
