package service

import (
	"strings"
	"sync"
	"testing"

	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/stretchr/testify/assert"
)

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = "word"
	}
	return strings.Join(w, " ")
}

func TestAggregator_JoinsInChunkOrder(t *testing.T) {
	agg := NewAggregator()
	agg.Add(2, "third")
	agg.Add(0, "first")
	agg.Add(1, "second")

	assert.Equal(t, 3, agg.Len())
	assert.Equal(t, "first\nsecond\nthird", agg.String())
}

func TestAggregator_Empty(t *testing.T) {
	assert.Equal(t, "", NewAggregator().String())
}

func TestAggregator_ConcurrentAdd(t *testing.T) {
	agg := NewAggregator()
	var wg sync.WaitGroup
	for i := 9; i >= 0; i-- {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			agg.Add(i, string(rune('a'+i)))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, "a\nb\nc\nd\ne\nf\ng\nh\ni\nj", agg.String())
}

func TestEnforceLength(t *testing.T) {
	band := domain.DefaultLengthBand()

	t.Run("truncates long summary", func(t *testing.T) {
		out := EnforceLength(words(150), band)

		assert.True(t, strings.HasSuffix(out, TruncationMarker))
		assert.Len(t, strings.Fields(strings.TrimSuffix(out, TruncationMarker)), 100)
	})

	t.Run("flags short summary", func(t *testing.T) {
		raw := words(30)
		out := EnforceLength(raw, band)

		assert.Equal(t, raw+" "+UnderLengthNote, out)
	})

	t.Run("passes summary in band", func(t *testing.T) {
		raw := words(75)
		assert.Equal(t, raw, EnforceLength(raw, band))
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		assert.Equal(t, words(50), EnforceLength(words(50), band))
		assert.Equal(t, words(100), EnforceLength(words(100), band))
	})

	t.Run("collapses whitespace only when truncating", func(t *testing.T) {
		raw := "one\n\ntwo   three"
		assert.Equal(t, raw, EnforceLength(raw, domain.LengthBand{Min: 1, Max: 3}))
		assert.Equal(t, "one two...", EnforceLength(raw, domain.LengthBand{Min: 1, Max: 2}))
	})
}
