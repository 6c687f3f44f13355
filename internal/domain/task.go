package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// TaskKind identifies what a pipeline run asks the model to do
type TaskKind string

const (
	TaskKindAnswer    TaskKind = "answer"
	TaskKindSummarize TaskKind = "summarize"
)

// Default summary word-count band.
const (
	DefaultSummaryMinWords = 50
	DefaultSummaryMaxWords = 100
)

// LengthBand is the target word-count range of a summary.
type LengthBand struct {
	Min int
	Max int
}

// DefaultLengthBand returns the 50-100 word band.
func DefaultLengthBand() LengthBand {
	return LengthBand{Min: DefaultSummaryMinWords, Max: DefaultSummaryMaxWords}
}

// Validate checks that 0 < Min <= Max.
func (b LengthBand) Validate() error {
	if b.Min <= 0 || b.Max < b.Min {
		return NewDomainErrorWithCause(ErrCodeValidation, ErrInvalidLengthBand.Message,
			fmt.Errorf("min=%d max=%d", b.Min, b.Max))
	}
	return nil
}

// Task is the closed set of things a run can do: AnswerTask or SummarizeTask.
type Task interface {
	Kind() TaskKind
	isTask()
}

// AnswerTask answers a question against every chunk, carrying context forward.
type AnswerTask struct {
	Question string
}

func (AnswerTask) Kind() TaskKind { return TaskKindAnswer }
func (AnswerTask) isTask()        {}

// SummarizeTask summarizes each chunk independently within Band.
type SummarizeTask struct {
	Band LengthBand
}

func (SummarizeTask) Kind() TaskKind { return TaskKindSummarize }
func (SummarizeTask) isTask()        {}

// ValidateTask checks the task's own fields.
func ValidateTask(t Task) error {
	switch v := t.(type) {
	case AnswerTask:
		if strings.TrimSpace(v.Question) == "" {
			return ErrMissingQuestion
		}
		return nil
	case SummarizeTask:
		return v.Band.Validate()
	default:
		return ErrUnknownTask
	}
}

// Document is the extracted text of an uploaded file.
type Document struct {
	Name string
	Text string
}

// Chunk is an index-tagged contiguous slice of a document's text.
type Chunk struct {
	Index int
	Text  string
}

// Len returns the chunk length in characters.
func (c Chunk) Len() int {
	return utf8.RuneCountInString(c.Text)
}

// TaskRequest is one fully composed model request. It is built per chunk
// and not modified afterwards.
type TaskRequest struct {
	Kind              TaskKind
	ChunkIndex        int
	Chunk             string
	Context           string // answer only
	Question          string // answer only
	Band              LengthBand
	SystemInstruction string
	UserContent       string
}

// ResultStatus tags a TaskResult
type ResultStatus string

const (
	ResultStatusSuccess ResultStatus = "success"
	ResultStatusFailure ResultStatus = "failure"
)

// TaskResult is the model output for one chunk.
type TaskResult struct {
	ChunkIndex     int
	Text           string
	Status         ResultStatus
	Attempts       int
	RateLimitWaits int
	Err            error
}

// Succeeded reports whether the result carries model output.
func (r TaskResult) Succeeded() bool {
	return r.Status == ResultStatusSuccess
}

// FailureClass is the retry controller's only transition input.
type FailureClass int

const (
	FailureNone FailureClass = iota
	FailureRateLimited
	FailureFatal
)

func (c FailureClass) String() string {
	switch c {
	case FailureNone:
		return "none"
	case FailureRateLimited:
		return "rate_limited"
	case FailureFatal:
		return "fatal"
	}
	return "unknown"
}

// RunResult is the outcome of a completed pipeline run.
type RunResult struct {
	RunID          string
	Kind           TaskKind
	Output         string
	Chunks         int
	Requests       int
	RateLimitWaits int
	Results        []TaskResult
}
