package embeddings

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyEmbedder fails with the queued errors before succeeding
type flakyEmbedder struct {
	failures []error
	calls    int
	batches  []int
}

func (f *flakyEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return nil, err
	}
	f.batches = append(f.batches, len(texts))
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

func fastConfig() ResilientConfig {
	return ResilientConfig{BatchSize: 2, MaxRetries: 2, InitialBackoff: time.Millisecond}
}

func TestResilientEmbedder_Batches(t *testing.T) {
	inner := &flakyEmbedder{}
	re := NewResilientEmbedder(inner, fastConfig())

	vectors, err := re.Embed(context.Background(), []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)

	assert.Len(t, vectors, 5)
	assert.Equal(t, []int{2, 2, 1}, inner.batches)
}

func TestResilientEmbedder_RetriesTransient(t *testing.T) {
	inner := &flakyEmbedder{failures: []error{
		&APIError{Provider: "test", StatusCode: http.StatusTooManyRequests},
		&APIError{Provider: "test", StatusCode: http.StatusBadGateway},
	}}
	re := NewResilientEmbedder(inner, fastConfig())

	var outcomes []string
	re.OnRequest(func(o string) { outcomes = append(outcomes, o) })

	vectors, err := re.Embed(context.Background(), []string{"a"})
	require.NoError(t, err)

	assert.Len(t, vectors, 1)
	assert.Equal(t, 3, inner.calls)
	assert.Equal(t, []string{OutcomeRetry, OutcomeRetry, OutcomeSuccess}, outcomes)
}

func TestResilientEmbedder_GivesUpAfterMaxRetries(t *testing.T) {
	transient := &APIError{Provider: "test", StatusCode: http.StatusServiceUnavailable}
	inner := &flakyEmbedder{failures: []error{transient, transient, transient, transient}}
	re := NewResilientEmbedder(inner, fastConfig())

	_, err := re.Embed(context.Background(), []string{"a"})

	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.Equal(t, 3, inner.calls)
}

func TestResilientEmbedder_DoesNotRetryPermanent(t *testing.T) {
	permanent := &APIError{Provider: "test", StatusCode: http.StatusUnauthorized, Message: "bad key"}
	plain := errors.New("dimension config rejected")

	for _, failure := range []error{permanent, plain} {
		inner := &flakyEmbedder{failures: []error{failure}}
		re := NewResilientEmbedder(inner, fastConfig())

		_, err := re.Embed(context.Background(), []string{"a"})

		assert.ErrorIs(t, err, failure)
		assert.Equal(t, 1, inner.calls)
	}
}

func TestResilientEmbedder_StopsOnCancel(t *testing.T) {
	inner := &flakyEmbedder{failures: []error{&APIError{Provider: "test"}}}
	cfg := fastConfig()
	cfg.InitialBackoff = time.Hour
	re := NewResilientEmbedder(inner, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := re.Embed(ctx, []string{"a"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAPIError_IsTransient(t *testing.T) {
	assert.True(t, (&APIError{StatusCode: 0}).IsTransient())
	assert.True(t, (&APIError{StatusCode: 429}).IsTransient())
	assert.True(t, (&APIError{StatusCode: 503}).IsTransient())
	assert.False(t, (&APIError{StatusCode: 400}).IsTransient())
	assert.False(t, IsTransient(errors.New("plain")))
}
