package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/hammamikhairi/ottocoach/internal/config"
	"github.com/hammamikhairi/ottocoach/internal/logger"
)

// Paced keeps at most one request in flight, spaces requests at least gap
// apart, and bounds each request with a timeout. Failures are returned as
// they are; nothing is retried.
type Paced struct {
	inner   TextGenerator
	limiter *rate.Limiter
	slot    chan struct{}
	timeout time.Duration
	log     *logger.Logger
}

// Compile-time interface check.
var _ TextGenerator = (*Paced)(nil)

// NewPaced wraps inner. A zero gap disables spacing; a zero timeout leaves
// the caller's deadline alone.
func NewPaced(inner TextGenerator, gap, timeout time.Duration, log *logger.Logger) *Paced {
	limit := rate.Inf
	if gap > 0 {
		limit = rate.Every(gap)
	}
	return &Paced{
		inner:   inner,
		limiter: rate.NewLimiter(limit, 1),
		slot:    make(chan struct{}, 1),
		timeout: timeout,
		log:     log,
	}
}

// GenerateContent waits for the slot and the limiter, then calls inner.
func (p *Paced) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	select {
	case p.slot <- struct{}{}:
	case <-ctx.Done():
		return ContentResponse{}, ctx.Err()
	}
	defer func() { <-p.slot }()

	if err := p.limiter.Wait(ctx); err != nil {
		return ContentResponse{}, fmt.Errorf("waiting for request slot: %w", err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := p.inner.GenerateContent(ctx, prompt)
	if err != nil {
		p.log.Warn("llm: request failed after %s: %v", time.Since(start).Round(time.Millisecond), err)
		return ContentResponse{}, err
	}
	p.log.Debug("llm: %d prompt + %d completion tokens in %s",
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens, time.Since(start).Round(time.Millisecond))
	return resp, nil
}

// Close closes the wrapped generator.
func (p *Paced) Close() error {
	return p.inner.Close()
}

// NewFromConfig builds the configured provider wrapped in Paced.
func NewFromConfig(ctx context.Context, cfg *config.Config, log *logger.Logger) (TextGenerator, error) {
	provider, err := cfg.ResolveProvider()
	if err != nil {
		return nil, err
	}

	var gen TextGenerator
	switch provider {
	case config.ProviderGemini:
		gen, err = NewGemini(ctx, cfg)
	case config.ProviderOpenAI:
		gen, err = NewOpenAI(cfg)
	}
	if err != nil {
		return nil, err
	}

	log.Info("llm: using %s", provider)
	return NewPaced(gen, cfg.MinRequestGap, cfg.RequestTimeout, log), nil
}
