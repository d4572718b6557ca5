package embedding

import (
	"context"
	"time"

	"wiki-craft-be/internal/pkg/apperrors"
)

// RetryingProvider wraps another provider and retries a transient failure
// once after a short backoff. Non-transient errors are returned as-is.
type RetryingProvider struct {
	inner   EmbeddingProvider
	backoff time.Duration
}

func NewRetryingProvider(inner EmbeddingProvider) EmbeddingProvider {
	return &RetryingProvider{
		inner:   inner,
		backoff: 500 * time.Millisecond,
	}
}

func (p *RetryingProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	res, err := p.inner.Generate(ctx, text, taskType)
	if err == nil || !apperrors.IsUnavailable(err) {
		return res, err
	}

	select {
	case <-ctx.Done():
		return nil, apperrors.Unavailable("embedding retry aborted", ctx.Err())
	case <-time.After(p.backoff):
	}

	return p.inner.Generate(ctx, text, taskType)
}
