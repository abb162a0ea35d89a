package rag

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subvenciones/ai"
)

// throttledModel fails its first calls the way the provider transport does on a 429.
type throttledModel struct {
	limiter  *ai.RateLimiter
	failures int
	calls    int
}

func (m *throttledModel) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls++
	if m.calls <= m.failures {
		if m.limiter != nil {
			m.limiter.RecordRateLimit(10 * time.Millisecond)
		}
		return nil, errors.New("429 too many requests")
	}
	return []float32{1, 0, 0}, nil
}

func TestEmbedder_RetriesAfterRateLimit(t *testing.T) {
	limiter := ai.NewRateLimiter(1000, 1)
	model := &throttledModel{limiter: limiter, failures: 1}
	e := NewEmbedder(model, limiter, 2)

	vector, err := e.Embed(context.Background(), "texto")

	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, vector)
	assert.Equal(t, 2, model.calls)
}

func TestEmbedder_GivesUpAfterMaxRetries(t *testing.T) {
	limiter := ai.NewRateLimiter(1000, 1)
	model := &throttledModel{limiter: limiter, failures: 10}
	e := NewEmbedder(model, limiter, 1)

	_, err := e.Embed(context.Background(), "texto")

	var embErr *EmbeddingError
	require.ErrorAs(t, err, &embErr)
	assert.Equal(t, 2, model.calls)
}

func TestEmbedder_OtherErrorsAreNotRetried(t *testing.T) {
	limiter := ai.NewRateLimiter(1000, 1)
	model := &throttledModel{failures: 5}
	e := NewEmbedder(model, limiter, 3)

	_, err := e.Embed(context.Background(), "texto")

	var embErr *EmbeddingError
	require.ErrorAs(t, err, &embErr)
	assert.Equal(t, 1, model.calls)
}

func TestEmbedder_CancelledContext(t *testing.T) {
	limiter := ai.NewRateLimiter(1000, 1)
	limiter.RecordRateLimit(time.Minute)
	e := NewEmbedder(&throttledModel{}, limiter, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := e.Embed(ctx, "texto")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
