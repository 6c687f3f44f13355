package service

import (
	"fmt"
	"unicode/utf8"

	"github.com/cloo-solutions/docqa/internal/domain"
)

// ChunkText splits text into consecutive chunks of at most limit characters.
// Chunks are plain slices of text: joining them in order gives text back
// byte for byte. Empty text yields no chunks.
func ChunkText(text string, limit int) ([]domain.Chunk, error) {
	if limit <= 0 {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeConfiguration,
			domain.ErrInvalidChunkSize.Message, fmt.Errorf("got %d", limit))
	}
	if text == "" {
		return nil, nil
	}

	total := utf8.RuneCountInString(text)
	chunks := make([]domain.Chunk, 0, (total+limit-1)/limit)

	start, count := 0, 0
	for pos := range text {
		if count == limit {
			chunks = append(chunks, domain.Chunk{Index: len(chunks), Text: text[start:pos]})
			start, count = pos, 0
		}
		count++
	}
	chunks = append(chunks, domain.Chunk{Index: len(chunks), Text: text[start:]})

	return chunks, nil
}
