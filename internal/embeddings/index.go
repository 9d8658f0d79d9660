package embeddings

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ourkan95/Duplicate-Detector/internal/match"
)

// Cosine returns the cosine similarity of a and b, or 0 when either is a
// zero vector or the lengths differ
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func normalizeVector(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// SimilarityIndex answers cosine similarity between rows of one text field.
// Each distinct non-blank value is embedded once; vectors are unit-normalized
// at build time so a lookup is a dot product.
type SimilarityIndex struct {
	rows    []int       // row -> unique value, -1 for blank
	vectors [][]float32 // unique value -> unit vector
}

// BuildIndex embeds values with a single Embed call
func BuildIndex(ctx context.Context, embedder Embedder, values []string) (*SimilarityIndex, error) {
	rows := make([]int, len(values))
	seen := make(map[string]int)
	var unique []string

	for i, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			rows[i] = -1
			continue
		}
		idx, ok := seen[v]
		if !ok {
			idx = len(unique)
			seen[v] = idx
			unique = append(unique, v)
		}
		rows[i] = idx
	}

	index := &SimilarityIndex{rows: rows}
	if len(unique) == 0 {
		return index, nil
	}

	vectors, err := embedder.Embed(ctx, unique)
	if err != nil {
		return nil, err
	}
	if err := checkVectors(unique, vectors); err != nil {
		return nil, err
	}

	index.vectors = make([][]float32, len(vectors))
	for i, v := range vectors {
		index.vectors[i] = normalizeVector(v)
	}
	return index, nil
}

// Len returns the number of rows
func (si *SimilarityIndex) Len() int {
	return len(si.rows)
}

// Unique returns how many distinct values were embedded
func (si *SimilarityIndex) Unique() int {
	return len(si.vectors)
}

// Similarity returns the cosine of rows i and j clamped to [0,1].
// Blank values on either side are undefined.
func (si *SimilarityIndex) Similarity(i, j int) match.Signal {
	a, b := si.rows[i], si.rows[j]
	if a < 0 || b < 0 {
		return match.Undefined()
	}
	if a == b {
		return match.Measured(selfSimilarity(si.vectors[a]))
	}

	var dot float64
	for k, x := range si.vectors[a] {
		dot += float64(x) * float64(si.vectors[b][k])
	}
	return match.Measured(clamp01(dot))
}

// RowSimilarities compares left[i] with right[i] for every i, embedding
// both columns in one call
func RowSimilarities(ctx context.Context, embedder Embedder, left, right []string) ([]match.Signal, error) {
	if len(left) != len(right) {
		return nil, fmt.Errorf("row similarity needs equal columns: %d vs %d", len(left), len(right))
	}

	values := make([]string, 0, len(left)+len(right))
	values = append(values, left...)
	values = append(values, right...)

	index, err := BuildIndex(ctx, embedder, values)
	if err != nil {
		return nil, err
	}

	n := len(left)
	sims := make([]match.Signal, n)
	for i := 0; i < n; i++ {
		sims[i] = index.Similarity(i, n+i)
	}
	return sims, nil
}

func selfSimilarity(v []float32) float64 {
	for _, x := range v {
		if x != 0 {
			return 1.0
		}
	}
	return 0.0
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
