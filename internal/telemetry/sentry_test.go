package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_NoDSNIsNoop(t *testing.T) {
	shutdown, err := Init(Config{})

	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NotPanics(t, shutdown)
}

func TestSampleRateFor(t *testing.T) {
	assert.Equal(t, 1.0, SampleRateFor(""))
	assert.Equal(t, 1.0, SampleRateFor("development"))
	assert.Equal(t, 0.1, SampleRateFor("production"))
}

func TestStartSpan_WithoutClient(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "pipeline.run", RunAttributes("run-1", "report.pdf", "answer"))
	require.NotNil(t, ctx)

	childCtx, child := StartSpan(ctx, "pipeline.chunk", SpanAttributes{RunID: "run-1", ChunkIndex: 2})
	require.NotNil(t, childCtx)

	assert.NotPanics(t, func() {
		child.SetData("attempts", 3)
		child.SetError(errors.New("boom"))
		child.End()
		AddBreadcrumb(ctx, "llm", "rate limited")
		CaptureError(ctx, errors.New("boom"))
		span.End()
	})
}

func TestSpan_NilInnerIsSafe(t *testing.T) {
	span := &Span{}

	assert.NotPanics(t, func() {
		span.SetData("k", "v")
		span.SetError(errors.New("x"))
		span.End()
	})
}
