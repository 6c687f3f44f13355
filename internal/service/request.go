package service

import (
	"fmt"

	"github.com/cloo-solutions/docqa/internal/domain"
)

const (
	AnswerSystemInstruction    = "You are an assistant that answers questions based on document content."
	SummarizeSystemInstruction = "You are an assistant that summarizes document content."
)

// BuildRequest composes the model request for one chunk. Answers put the
// document content (context then chunk) before the question; summaries carry
// the chunk alone. Nothing is truncated here.
func BuildRequest(task domain.Task, chunk domain.Chunk, context string) (domain.TaskRequest, error) {
	switch t := task.(type) {
	case domain.AnswerTask:
		return domain.TaskRequest{
			Kind:              domain.TaskKindAnswer,
			ChunkIndex:        chunk.Index,
			Chunk:             chunk.Text,
			Context:           context,
			Question:          t.Question,
			SystemInstruction: AnswerSystemInstruction,
			UserContent: fmt.Sprintf("Here is the content of the document: %s%s\n\nUser's question: %s",
				context, chunk.Text, t.Question),
		}, nil
	case domain.SummarizeTask:
		return domain.TaskRequest{
			Kind:              domain.TaskKindSummarize,
			ChunkIndex:        chunk.Index,
			Chunk:             chunk.Text,
			Band:              t.Band,
			SystemInstruction: SummarizeSystemInstruction,
			UserContent: fmt.Sprintf("Here is a portion of the document: %s\n\nPlease provide a concise summary of this portion in %d-%d words.",
				chunk.Text, t.Band.Min, t.Band.Max),
		}, nil
	default:
		return domain.TaskRequest{}, domain.ErrUnknownTask
	}
}
