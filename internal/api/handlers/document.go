package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cloo-solutions/docqa/internal/api"
	"github.com/cloo-solutions/docqa/internal/api/middleware"
	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/service"
)

const multipartMemory = 8 << 20

type DocumentRunner interface {
	Run(ctx context.Context, doc domain.Document, task domain.Task) (*domain.RunResult, error)
}

type TextExtractor interface {
	Extract(ctx context.Context, name string, r io.Reader) (string, error)
}

type DocumentHandler struct {
	runner      DocumentRunner
	extractor   TextExtractor
	defaultBand domain.LengthBand
}

func NewDocumentHandler(runner DocumentRunner, extractor TextExtractor, defaultBand domain.LengthBand) *DocumentHandler {
	return &DocumentHandler{runner: runner, extractor: extractor, defaultBand: defaultBand}
}

type RunResponse struct {
	RunID          string `json:"run_id"`
	Task           string `json:"task"`
	Document       string `json:"document"`
	Output         string `json:"output"`
	Chunks         int    `json:"chunks"`
	Requests       int    `json:"requests"`
	RateLimitWaits int    `json:"rate_limit_waits"`
}

type RunErrorResponse struct {
	Error           string `json:"error"`
	Code            string `json:"code,omitempty"`
	RunID           string `json:"run_id"`
	FailedChunk     int    `json:"failed_chunk"`
	Chunks          int    `json:"chunks"`
	CompletedChunks int    `json:"completed_chunks"`
}

// Answer handles POST /documents/answer with multipart fields file and question.
func (h *DocumentHandler) Answer(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.readDocument(w, r)
	if !ok {
		return
	}

	question := strings.TrimSpace(r.FormValue("question"))
	if question == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}

	h.run(w, r, doc, domain.AnswerTask{Question: question})
}

// Summarize handles POST /documents/summarize. min_words and max_words
// default to the configured band.
func (h *DocumentHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.readDocument(w, r)
	if !ok {
		return
	}

	band := h.defaultBand
	var err error
	if band.Min, err = intField(r, "min_words", band.Min); err != nil {
		api.Error(w, http.StatusBadRequest, "min_words must be an integer")
		return
	}
	if band.Max, err = intField(r, "max_words", band.Max); err != nil {
		api.Error(w, http.StatusBadRequest, "max_words must be an integer")
		return
	}

	h.run(w, r, doc, domain.SummarizeTask{Band: band})
}

func (h *DocumentHandler) readDocument(w http.ResponseWriter, r *http.Request) (domain.Document, bool) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.Error(w, http.StatusRequestEntityTooLarge, "document too large")
			return domain.Document{}, false
		}
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return domain.Document{}, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file is required")
		return domain.Document{}, false
	}
	defer file.Close()

	text, err := h.extractor.Extract(r.Context(), header.Filename, file)
	if err != nil {
		api.HandleError(w, err)
		return domain.Document{}, false
	}

	return domain.Document{Name: header.Filename, Text: text}, true
}

func (h *DocumentHandler) run(w http.ResponseWriter, r *http.Request, doc domain.Document, task domain.Task) {
	result, err := h.runner.Run(r.Context(), doc, task)
	if err != nil {
		var runErr *service.RunError
		if errors.As(err, &runErr) {
			w.Header().Set(middleware.RunIDHeader, runErr.RunID)
			resp := RunErrorResponse{
				Error:           err.Error(),
				RunID:           runErr.RunID,
				FailedChunk:     runErr.ChunkIndex,
				Chunks:          runErr.Chunks,
				CompletedChunks: len(runErr.Completed),
			}
			var domainErr *domain.DomainError
			if errors.As(err, &domainErr) {
				resp.Code = domainErr.Code
			}
			api.JSON(w, api.DomainErrorToHTTP(err), resp)
			return
		}
		api.HandleError(w, err)
		return
	}

	w.Header().Set(middleware.RunIDHeader, result.RunID)
	api.Success(w, http.StatusOK, RunResponse{
		RunID:          result.RunID,
		Task:           string(result.Kind),
		Document:       doc.Name,
		Output:         result.Output,
		Chunks:         result.Chunks,
		Requests:       result.Requests,
		RateLimitWaits: result.RateLimitWaits,
	})
}

func intField(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
