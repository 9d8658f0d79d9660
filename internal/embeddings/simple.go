package embeddings

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// HashEmbedder creates deterministic embeddings by hashing word tokens and
// character trigrams into a fixed number of buckets. Strings sharing words
// or spelling land close together; it needs no model and no network, which
// makes it the offline provider and the test double.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder creates a hash embedder
func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = 256
	}
	return &HashEmbedder{dimensions: dimensions}
}

// Dimensions returns the vector length
func (he *HashEmbedder) Dimensions() int {
	return he.dimensions
}

// Embed vectorizes every text; blank text maps to the zero vector
func (he *HashEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = he.embedOne(text)
	}
	return vectors, nil
}

func (he *HashEmbedder) embedOne(text string) []float32 {
	vector := make([]float32, he.dimensions)

	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return vector
	}

	// Word tokens carry most of the weight
	for _, token := range strings.Fields(text) {
		he.add(vector, "w:"+token, 1.0)
	}

	// Character trigrams give partial credit for spelling variants
	runes := []rune(" " + text + " ")
	for i := 0; i+3 <= len(runes); i++ {
		he.add(vector, "c:"+string(runes[i:i+3]), 0.5)
	}

	var norm float64
	for _, val := range vector {
		norm += float64(val) * float64(val)
	}
	norm = math.Sqrt(norm)

	if norm > 0 {
		for i := range vector {
			vector[i] = float32(float64(vector[i]) / norm)
		}
	}
	return vector
}

func (he *HashEmbedder) add(vector []float32, feature string, weight float32) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()

	bucket := int(sum % uint64(he.dimensions))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vector[bucket] += weight
}
