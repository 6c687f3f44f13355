package server

import (
	"net/http"

	"github.com/cloo-solutions/docqa/internal/api"
	"github.com/cloo-solutions/docqa/internal/api/handlers"
	"github.com/cloo-solutions/docqa/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

const defaultMaxBodyBytes int64 = 20 * 1024 * 1024

type RouterConfig struct {
	DocumentHandler *handlers.DocumentHandler
	MaxBodyBytes    int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes == 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/documents", func(r chi.Router) {
		r.Use(middleware.MaxBodyBytes(maxBodyBytes))
		r.Post("/answer", cfg.DocumentHandler.Answer)
		r.Post("/summarize", cfg.DocumentHandler.Summarize)
	})

	return r
}
