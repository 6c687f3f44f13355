package service

import (
	"slices"
	"strings"
	"sync"

	"github.com/cloo-solutions/docqa/internal/domain"
)

const (
	// TruncationMarker is appended to summaries cut down to the band maximum.
	TruncationMarker = "..."
	// UnderLengthNote is appended to summaries shorter than the band minimum.
	UnderLengthNote = "(Note: this summary is shorter than the requested length and should be expanded.)"
)

// Aggregator collects per-chunk outputs and joins them in chunk order,
// whatever order they arrive in. Safe for concurrent Add.
type Aggregator struct {
	mu      sync.Mutex
	outputs map[int]string
}

func NewAggregator() *Aggregator {
	return &Aggregator{outputs: make(map[int]string)}
}

// Add records the output of chunk index.
func (a *Aggregator) Add(index int, text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.outputs[index] = text
}

// Len returns the number of collected outputs.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.outputs)
}

// String joins the outputs with newlines in ascending chunk index.
func (a *Aggregator) String() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	indexes := make([]int, 0, len(a.outputs))
	for i := range a.outputs {
		indexes = append(indexes, i)
	}
	slices.Sort(indexes)

	parts := make([]string, 0, len(indexes))
	for _, i := range indexes {
		parts = append(parts, a.outputs[i])
	}
	return strings.Join(parts, "\n")
}

// EnforceLength fits a summary into band by word count. Longer summaries keep
// their first band.Max words plus TruncationMarker; shorter ones are kept and
// get UnderLengthNote appended.
func EnforceLength(text string, band domain.LengthBand) string {
	words := strings.Fields(text)
	switch {
	case len(words) > band.Max:
		return strings.Join(words[:band.Max], " ") + TruncationMarker
	case len(words) < band.Min:
		return text + " " + UnderLengthNote
	default:
		return text
	}
}
