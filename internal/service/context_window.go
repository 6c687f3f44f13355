package service

import (
	"fmt"
	"unicode/utf8"

	"github.com/cloo-solutions/docqa/internal/domain"
)

// ContextWindow keeps the trailing limit characters of the chunks appended so
// far. It belongs to a single run and must not be shared between goroutines.
type ContextWindow struct {
	limit int
	text  string
}

func NewContextWindow(limit int) (*ContextWindow, error) {
	if limit <= 0 {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeConfiguration,
			domain.ErrInvalidContext.Message, fmt.Errorf("got %d", limit))
	}
	return &ContextWindow{limit: limit}, nil
}

// Append adds the chunk's text and drops the oldest characters beyond limit.
func (w *ContextWindow) Append(chunk domain.Chunk) {
	text := w.text + chunk.Text
	excess := utf8.RuneCountInString(text) - w.limit
	if excess > 0 {
		text = dropRunes(text, excess)
	}
	w.text = text
}

// Snapshot returns the current window content.
func (w *ContextWindow) Snapshot() string {
	return w.text
}

// Limit returns the window bound in characters.
func (w *ContextWindow) Limit() int {
	return w.limit
}

func dropRunes(s string, n int) string {
	for pos := range s {
		if n == 0 {
			return s[pos:]
		}
		n--
	}
	return ""
}
