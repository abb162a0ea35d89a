package rag

import (
	"context"
	"log/slog"

	"subvenciones/ai"
)

// Embedder calls the embedding model once per text, throttled by a shared
// rate limiter. Only rate-limited calls are retried.
type Embedder struct {
	model      EmbeddingModel
	limiter    *ai.RateLimiter
	maxRetries int
	logger     *slog.Logger
}

// NewEmbedder wraps model. limiter may be nil to disable throttling.
func NewEmbedder(model EmbeddingModel, limiter *ai.RateLimiter, maxRetries int) *Embedder {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Embedder{
		model:      model,
		limiter:    limiter,
		maxRetries: maxRetries,
		logger:     slog.Default().With("component", "rag-embedder"),
	}
}

// Embed returns the vector for text or an *EmbeddingError.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	for attempt := 0; ; attempt++ {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return nil, &EmbeddingError{Err: err}
			}
		}

		vector, err := e.model.Embed(ctx, text)
		if err == nil {
			if e.limiter != nil {
				e.limiter.RecordSuccess()
			}
			return vector, nil
		}

		if e.limiter == nil || !e.limiter.BackingOff() || attempt >= e.maxRetries || ctx.Err() != nil {
			return nil, &EmbeddingError{Err: err}
		}
		e.logger.Warn("embedding rate limited, backing off", "attempt", attempt+1, "err", err)
	}
}
