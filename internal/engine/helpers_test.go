package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ourkan95/Duplicate-Detector/internal/match"
)

var errEmbedFailed = errors.New("embedding backend unavailable")

// mapEmbedder returns fixed vectors per text and a fallback for the rest.
// Scorers embed fields concurrently, so calls are guarded.
type mapEmbedder struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	fallback []float32
	calls    int
	err      error
}

func (m *mapEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := m.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = m.fallback
		}
	}
	return out, nil
}

func mustSet(t *testing.T, listings ...match.Listing) *match.ListingSet {
	t.Helper()
	set, err := match.NewListingSet(listings)
	require.NoError(t, err)
	return set
}

// northOf returns a point the given meters north of c
func northOf(c match.Coordinates, meters float64) *match.Coordinates {
	return &match.Coordinates{Lat: c.Lat + meters/111194.93, Lon: c.Lon}
}

var tokyoStation = match.Coordinates{Lat: 35.681236, Lon: 139.767125}
