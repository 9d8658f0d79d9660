package embeddings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Embedder turns a batch of texts into vectors of one fixed dimension.
// The i-th vector belongs to the i-th text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

var (
	// ErrEmptyResponse is returned when the provider sends fewer vectors than texts
	ErrEmptyResponse = errors.New("embedding response is missing vectors")
	// ErrDimensionMismatch is returned when vectors in one run differ in length
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// APIError is a failed call to an embedding provider
type APIError struct {
	Provider   string
	StatusCode int // 0 when no HTTP response was received
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: embedding API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// IsTransient reports whether a retry may succeed: rate limiting,
// server errors and network failures.
func (e *APIError) IsTransient() bool {
	return e.StatusCode == 0 ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= 500
}

// IsTransient reports whether err wraps a transient APIError
func IsTransient(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsTransient()
}

func checkVectors(texts []string, vectors [][]float32) error {
	if len(vectors) != len(texts) {
		return fmt.Errorf("%w: got %d for %d texts", ErrEmptyResponse, len(vectors), len(texts))
	}
	for i, v := range vectors {
		if len(v) != len(vectors[0]) {
			return fmt.Errorf("%w: vector %d has %d dims, want %d", ErrDimensionMismatch, i, len(v), len(vectors[0]))
		}
	}
	return nil
}
