package service

import (
	"strings"
	"testing"

	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequest_Answer(t *testing.T) {
	chunk := domain.Chunk{Index: 2, Text: "chunk text."}

	req, err := BuildRequest(domain.AnswerTask{Question: "What is the conclusion?"}, chunk, "earlier context. ")

	require.NoError(t, err)
	assert.Equal(t, domain.TaskKindAnswer, req.Kind)
	assert.Equal(t, 2, req.ChunkIndex)
	assert.Equal(t, "chunk text.", req.Chunk)
	assert.Equal(t, "earlier context. ", req.Context)
	assert.Equal(t, "What is the conclusion?", req.Question)
	assert.Equal(t, AnswerSystemInstruction, req.SystemInstruction)
	assert.Equal(t,
		"Here is the content of the document: earlier context. chunk text.\n\nUser's question: What is the conclusion?",
		req.UserContent)
}

func TestBuildRequest_AnswerPutsDocumentBeforeQuestion(t *testing.T) {
	req, err := BuildRequest(domain.AnswerTask{Question: "Q?"}, domain.Chunk{Text: "DOC"}, "CTX")
	require.NoError(t, err)

	ctxAt := strings.Index(req.UserContent, "CTX")
	docAt := strings.Index(req.UserContent, "DOC")
	qAt := strings.Index(req.UserContent, "Q?")
	assert.True(t, ctxAt < docAt && docAt < qAt)
}

func TestBuildRequest_Summarize(t *testing.T) {
	task := domain.SummarizeTask{Band: domain.DefaultLengthBand()}

	req, err := BuildRequest(task, domain.Chunk{Index: 1, Text: "portion"}, "ignored context")

	require.NoError(t, err)
	assert.Equal(t, domain.TaskKindSummarize, req.Kind)
	assert.Empty(t, req.Context)
	assert.Empty(t, req.Question)
	assert.Equal(t, domain.DefaultLengthBand(), req.Band)
	assert.Equal(t, SummarizeSystemInstruction, req.SystemInstruction)
	assert.Equal(t,
		"Here is a portion of the document: portion\n\nPlease provide a concise summary of this portion in 50-100 words.",
		req.UserContent)
	assert.NotContains(t, req.UserContent, "ignored context")
}

func TestBuildRequest_DoesNotTruncate(t *testing.T) {
	long := strings.Repeat("x", 50000)

	req, err := BuildRequest(domain.AnswerTask{Question: "q"}, domain.Chunk{Text: long}, long)

	require.NoError(t, err)
	assert.Contains(t, req.UserContent, long+long)
}

func TestBuildRequest_UnknownTask(t *testing.T) {
	_, err := BuildRequest(nil, domain.Chunk{Text: "x"}, "")

	assert.ErrorIs(t, err, domain.ErrUnknownTask)
	assert.NotErrorIs(t, err, domain.ErrMissingQuestion)
}
