package llm

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitedProvider wraps a Provider with a token-bucket limiter so a
// burst of quiz or study plan requests cannot exhaust a provider quota.
// Waiting respects the request context.
type RateLimitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewRateLimitedProvider allows rps requests per second with the given
// burst. rps <= 0 disables limiting.
func NewRateLimitedProvider(inner Provider, rps float64, burst int, logger *zap.Logger) *RateLimitedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	var limiter *rate.Limiter
	if rps > 0 {
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &RateLimitedProvider{inner: inner, limiter: limiter, logger: logger}
}

func (p *RateLimitedProvider) wait(ctx context.Context) error {
	if p.limiter == nil {
		return nil
	}
	if err := p.limiter.Wait(ctx); err != nil {
		p.logger.Debug("rate limit wait aborted", zap.Error(err))
		return err
	}
	return nil
}

// Complete waits for a limiter token, then delegates.
func (p *RateLimitedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.inner.Complete(ctx, req)
}

// CompleteJSON waits for a limiter token, then delegates. The inner
// provider's own retry still counts against the limiter through Complete.
func (p *RateLimitedProvider) CompleteJSON(ctx context.Context, req CompletionRequest, dest any) error {
	if err := p.wait(ctx); err != nil {
		return err
	}
	return p.inner.CompleteJSON(ctx, req, dest)
}

// Name identifies the wrapped provider.
func (p *RateLimitedProvider) Name() string { return p.inner.Name() }

var _ Provider = (*RateLimitedProvider)(nil)
