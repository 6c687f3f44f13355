// Package extract turns uploaded documents into plain text.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/cloo-solutions/docqa/internal/domain"
)

// Format enumerates supported document formats.
type Format string

const (
	FormatUnknown  Format = ""
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
	FormatPDF      Format = "pdf"
	FormatCSV      Format = "csv"
	FormatDocx     Format = "docx"
	FormatHTML     Format = "html"
)

// DetectFormat infers a document format from the file name's extension.
func DetectFormat(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".text":
		return FormatText
	case ".md", ".markdown":
		return FormatMarkdown
	case ".pdf":
		return FormatPDF
	case ".csv":
		return FormatCSV
	case ".docx":
		return FormatDocx
	case ".html", ".htm":
		return FormatHTML
	default:
		return FormatUnknown
	}
}

// Extractor reads documents into text. MaxChars stops extraction after the
// first page or row that pushes the text past the cap; 0 disables the cap.
type Extractor struct {
	MaxChars int
}

func New(maxChars int) *Extractor {
	return &Extractor{MaxChars: maxChars}
}

// Extract returns the document's text. Unknown or unreadable input fails with
// domain.ErrUnsupportedFormat.
func (e *Extractor) Extract(ctx context.Context, name string, r io.Reader) (string, error) {
	format := DetectFormat(name)
	if format == FormatUnknown {
		return "", unsupported(name, fmt.Errorf("unknown extension %q", filepath.Ext(name)))
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var text string
	switch format {
	case FormatText, FormatMarkdown:
		if !utf8.Valid(data) {
			return "", unsupported(name, fmt.Errorf("not valid UTF-8 text"))
		}
		text = string(data)
	case FormatPDF:
		text, err = e.extractPDF(data)
	case FormatCSV:
		text, err = e.extractCSV(data)
	case FormatDocx:
		text, err = e.extractDocx(data)
	case FormatHTML:
		if !utf8.Valid(data) {
			return "", unsupported(name, fmt.Errorf("not valid UTF-8 text"))
		}
		text, err = e.extractHTML(data)
	}
	if err != nil {
		return "", unsupported(name, err)
	}

	return text, nil
}

// reached reports whether b already holds more than MaxChars characters.
func (e *Extractor) reached(b *bytes.Buffer) bool {
	return e.MaxChars > 0 && utf8.RuneCount(b.Bytes()) > e.MaxChars
}

func unsupported(name string, err error) error {
	return domain.NewDomainErrorWithCause(domain.ErrCodeUnsupportedFormat,
		domain.ErrUnsupportedFormat.Message, fmt.Errorf("%s: %w", filepath.Base(name), err))
}
