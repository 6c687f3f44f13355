package commands

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/docqa/internal/api/handlers"
	"github.com/cloo-solutions/docqa/internal/extract"
	"github.com/cloo-solutions/docqa/internal/server"
	"github.com/cloo-solutions/docqa/internal/telemetry"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  "Serve document question answering and summarization over HTTP",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (env DOCQA_PORT)")
	addPipelineFlags(cmd)

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	if cfg.HasSentry() {
		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:         cfg.SentryDSN,
			Environment: cfg.Environment,
			Debug:       cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	if !cfg.HasLLM() {
		log.Println("DOCQA_LLM_API_KEY is not set; document requests will fail until it is")
	}

	pipeline, err := buildPipeline(cfg, nil)
	if err != nil {
		return err
	}

	handler := handlers.NewDocumentHandler(pipeline, extract.New(cfg.ExtractMaxChars), cfg.SummaryBand())
	router := server.NewRouter(server.RouterConfig{
		DocumentHandler: handler,
		MaxBodyBytes:    cfg.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("starting server on port %s (model %s, chunk %d chars)", cfg.Port, cfg.LLMModel, cfg.TokenLimit)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}
	log.Println("shutting down...")

	// Runs in flight may be sleeping out a rate-limit cooldown, so give them
	// at least one full cooldown to finish.
	grace := 30 * time.Second
	if cfg.RateLimitCooldown+5*time.Second > grace {
		grace = cfg.RateLimitCooldown + 5*time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}
