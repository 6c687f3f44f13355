package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/telemetry"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Default chunking limits, in characters.
const (
	DefaultTokenLimit   = 8000
	DefaultContextLimit = 8000
)

// PipelineConfig controls chunking, context carry-over and retries.
type PipelineConfig struct {
	TokenLimit   int
	ContextLimit int
	// SummaryConcurrency > 1 summarizes that many chunks at once. Answers
	// are always sequential.
	SummaryConcurrency int
	Retry              RetryConfig
}

// DefaultPipelineConfig provides sane defaults for a run.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		TokenLimit:         DefaultTokenLimit,
		ContextLimit:       DefaultContextLimit,
		SummaryConcurrency: 1,
		Retry:              DefaultRetryConfig(),
	}
}

// RunError reports the chunk that aborted a run. Completed holds the results
// of the chunks that finished before it, in chunk order.
type RunError struct {
	RunID      string
	ChunkIndex int
	Chunks     int
	Completed  []domain.TaskResult
	Err        error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("chunk %d of %d failed: %v", e.ChunkIndex+1, e.Chunks, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Pipeline answers questions about, or summarizes, a document chunk by chunk.
type Pipeline struct {
	completer Completer
	cfg       PipelineConfig
}

// NewPipeline creates a pipeline. A nil completer stands for a missing API
// key and makes every Run fail with a configuration error.
func NewPipeline(completer Completer, cfg PipelineConfig) *Pipeline {
	return &Pipeline{completer: completer, cfg: cfg}
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() PipelineConfig {
	return p.cfg
}

// Run processes doc for task. Either every chunk completes and the joined
// output is returned, or the first failing chunk aborts the run with a
// *RunError and no output.
func (p *Pipeline) Run(ctx context.Context, doc domain.Document, task domain.Task) (*domain.RunResult, error) {
	if p.completer == nil {
		return nil, domain.ErrMissingAPIKey
	}
	if err := domain.ValidateTask(task); err != nil {
		return nil, err
	}
	window, err := NewContextWindow(p.cfg.ContextLimit)
	if err != nil {
		return nil, err
	}
	chunks, err := ChunkText(doc.Text, p.cfg.TokenLimit)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	ctx, span := telemetry.StartSpan(ctx, "pipeline.run", telemetry.RunAttributes(runID, doc.Name, string(task.Kind())))
	defer span.End()
	span.SetData("chunks", len(chunks))

	result := &domain.RunResult{RunID: runID, Kind: task.Kind(), Chunks: len(chunks)}
	if len(chunks) == 0 {
		log.Printf("run %s: document %q has no text, nothing to process", runID, doc.Name)
		return result, nil
	}
	log.Printf("run %s: %s over %d chunks of %q", runID, task.Kind(), len(chunks), doc.Name)

	retry := NewRetryController(p.completer, p.cfg.Retry)
	var (
		results []domain.TaskResult
		output  string
	)
	switch t := task.(type) {
	case domain.AnswerTask:
		results, output, err = p.answer(ctx, retry, runID, chunks, t, window)
	case domain.SummarizeTask:
		if p.cfg.SummaryConcurrency > 1 {
			results, output, err = p.summarizeConcurrently(ctx, retry, runID, chunks, t)
		} else {
			results, output, err = p.summarize(ctx, retry, runID, chunks, t)
		}
	}
	if err != nil {
		span.SetError(err)
		if !domain.IsCode(err, domain.ErrCodeCancelled) {
			telemetry.CaptureError(ctx, err)
		}
		log.Printf("run %s: aborted: %v", runID, err)
		return nil, err
	}

	result.Output = output
	result.Results = results
	for _, r := range results {
		result.Requests += r.Attempts
		result.RateLimitWaits += r.RateLimitWaits
	}
	span.SetData("requests", result.Requests)
	log.Printf("run %s: completed %d chunks with %d requests", runID, len(chunks), result.Requests)
	return result, nil
}

// answer folds over the chunks in order. Each request sees the window as it
// stood after the previous chunk; the window takes the raw chunk text.
func (p *Pipeline) answer(ctx context.Context, retry *RetryController, runID string, chunks []domain.Chunk, task domain.AnswerTask, window *ContextWindow) ([]domain.TaskResult, string, error) {
	agg := NewAggregator()
	results := make([]domain.TaskResult, 0, len(chunks))

	for _, chunk := range chunks {
		req, err := BuildRequest(task, chunk, window.Snapshot())
		if err != nil {
			return nil, "", err
		}
		res, err := p.runChunk(ctx, retry, runID, len(chunks), req)
		if err != nil {
			return nil, "", &RunError{RunID: runID, ChunkIndex: chunk.Index, Chunks: len(chunks), Completed: results, Err: err}
		}
		results = append(results, res)
		agg.Add(chunk.Index, res.Text)
		window.Append(chunk)
	}

	return results, agg.String(), nil
}

func (p *Pipeline) summarize(ctx context.Context, retry *RetryController, runID string, chunks []domain.Chunk, task domain.SummarizeTask) ([]domain.TaskResult, string, error) {
	agg := NewAggregator()
	results := make([]domain.TaskResult, 0, len(chunks))

	for _, chunk := range chunks {
		res, err := p.summarizeChunk(ctx, retry, runID, len(chunks), chunk, task)
		if err != nil {
			return nil, "", &RunError{RunID: runID, ChunkIndex: chunk.Index, Chunks: len(chunks), Completed: results, Err: err}
		}
		results = append(results, res)
		agg.Add(chunk.Index, res.Text)
	}

	return results, agg.String(), nil
}

// summarizeConcurrently runs up to SummaryConcurrency chunks at once. The
// first failure cancels the rest.
func (p *Pipeline) summarizeConcurrently(ctx context.Context, retry *RetryController, runID string, chunks []domain.Chunk, task domain.SummarizeTask) ([]domain.TaskResult, string, error) {
	agg := NewAggregator()
	results := make([]domain.TaskResult, len(chunks))
	done := make([]bool, len(chunks))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.SummaryConcurrency)
	for _, chunk := range chunks {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			res, err := p.summarizeChunk(gctx, retry, runID, len(chunks), chunk, task)
			if err != nil {
				return &RunError{RunID: runID, ChunkIndex: chunk.Index, Chunks: len(chunks), Err: err}
			}
			agg.Add(chunk.Index, res.Text)
			mu.Lock()
			results[chunk.Index] = res
			done[chunk.Index] = true
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	completed := make([]domain.TaskResult, 0, len(chunks))
	for i, ok := range done {
		if ok {
			completed = append(completed, results[i])
		}
	}
	if err != nil {
		var runErr *RunError
		if errors.As(err, &runErr) {
			runErr.Completed = completed
			return nil, "", runErr
		}
		return nil, "", err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, "", cancelled(ctxErr)
	}

	return completed, agg.String(), nil
}

func (p *Pipeline) summarizeChunk(ctx context.Context, retry *RetryController, runID string, total int, chunk domain.Chunk, task domain.SummarizeTask) (domain.TaskResult, error) {
	req, err := BuildRequest(task, chunk, "")
	if err != nil {
		return domain.TaskResult{}, err
	}
	res, err := p.runChunk(ctx, retry, runID, total, req)
	if err != nil {
		return res, err
	}
	res.Text = EnforceLength(res.Text, task.Band)
	return res, nil
}

func (p *Pipeline) runChunk(ctx context.Context, retry *RetryController, runID string, total int, req domain.TaskRequest) (domain.TaskResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "pipeline.chunk", telemetry.SpanAttributes{
		RunID:      runID,
		Task:       string(req.Kind),
		ChunkIndex: req.ChunkIndex,
	})
	defer span.End()

	res, err := retry.Do(ctx, req)
	span.SetData("attempts", res.Attempts)
	span.SetData("rate_limit_waits", res.RateLimitWaits)
	if err != nil {
		span.SetError(err)
		return res, err
	}

	log.Printf("run %s: chunk %d/%d done (%d attempts)", runID, req.ChunkIndex+1, total, res.Attempts)
	return res, nil
}
