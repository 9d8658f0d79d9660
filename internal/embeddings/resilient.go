package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// ResilientConfig bounds how an Embedder is called
type ResilientConfig struct {
	BatchSize         int     // texts per request
	RequestsPerSecond float64 // sustained request rate, 0 disables limiting
	Burst             int
	MaxRetries        int // extra attempts for transient failures
	InitialBackoff    time.Duration
}

// DefaultResilientConfig returns batch 32, 5 req/s and two retries
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		BatchSize:         32,
		RequestsPerSecond: 5,
		Burst:             5,
		MaxRetries:        2,
		InitialBackoff:    500 * time.Millisecond,
	}
}

// Outcome labels reported to the request observer
const (
	OutcomeSuccess = "success"
	OutcomeRetry   = "retry"
	OutcomeFailure = "failure"
)

// ResilientEmbedder splits work into batches, rate limits requests and
// retries transient failures a bounded number of times
type ResilientEmbedder struct {
	inner     Embedder
	limiter   *rate.Limiter
	cfg       ResilientConfig
	onRequest func(outcome string)
}

var _ Embedder = (*ResilientEmbedder)(nil)

// NewResilientEmbedder wraps inner
func NewResilientEmbedder(inner Embedder, cfg ResilientConfig) *ResilientEmbedder {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &ResilientEmbedder{
		inner:     inner,
		limiter:   rate.NewLimiter(limit, burst),
		cfg:       cfg,
		onRequest: func(string) {},
	}
}

// OnRequest registers a callback invoked with the outcome of every request
func (re *ResilientEmbedder) OnRequest(fn func(outcome string)) {
	if fn != nil {
		re.onRequest = fn
	}
}

// Embed embeds texts batch by batch and checks the combined result
func (re *ResilientEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += re.cfg.BatchSize {
		end := start + re.cfg.BatchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := re.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedding batch %d-%d: %w", start, end, err)
		}
		vectors = append(vectors, batch...)
	}

	if err := checkVectors(texts, vectors); err != nil {
		return nil, err
	}
	return vectors, nil
}

func (re *ResilientEmbedder) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	backoff := re.cfg.InitialBackoff

	for attempt := 0; ; attempt++ {
		if err := re.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		vectors, err := re.inner.Embed(ctx, batch)
		if err == nil {
			if err := checkVectors(batch, vectors); err != nil {
				re.onRequest(OutcomeFailure)
				return nil, err
			}
			re.onRequest(OutcomeSuccess)
			return vectors, nil
		}

		if !IsTransient(err) || attempt >= re.cfg.MaxRetries {
			re.onRequest(OutcomeFailure)
			return nil, err
		}

		re.onRequest(OutcomeRetry)
		log.Warn().Err(err).Int("attempt", attempt+1).Dur("backoff", backoff).Msg("embedding request failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}
