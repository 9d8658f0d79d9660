package engine

import (
	"math"
	"strings"
)

// CharNGramIndex holds L2-normalized TF-IDF vectors of character n-grams,
// fit over one corpus. Weights use raw counts and smoothed idf:
// idf = ln((1+N)/(1+df)) + 1.
type CharNGramIndex struct {
	n       int
	vectors []map[string]float64
}

// FitCharNGrams builds the index for docs
func FitCharNGrams(docs []string, n int) *CharNGramIndex {
	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)

	for i, doc := range docs {
		counts[i] = charNGrams(doc, n)
		for gram := range counts[i] {
			df[gram]++
		}
	}

	total := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for gram, d := range df {
		idf[gram] = math.Log((1+total)/(1+float64(d))) + 1
	}

	vectors := make([]map[string]float64, len(docs))
	for i, c := range counts {
		vec := make(map[string]float64, len(c))
		var norm float64
		for gram, tf := range c {
			w := float64(tf) * idf[gram]
			vec[gram] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for gram := range vec {
				vec[gram] /= norm
			}
		}
		vectors[i] = vec
	}

	return &CharNGramIndex{n: n, vectors: vectors}
}

// Similarity is the cosine of documents i and j; 0 if either has no n-grams
func (ci *CharNGramIndex) Similarity(i, j int) float64 {
	a, b := ci.vectors[i], ci.vectors[j]
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	if len(b) < len(a) {
		a, b = b, a
	}

	var dot float64
	for gram, w := range a {
		dot += w * b[gram]
	}
	return math.Min(1.0, dot)
}

// charNGrams counts the n-grams of the lowercased, whitespace-collapsed doc
func charNGrams(doc string, n int) map[string]int {
	runes := []rune(strings.Join(strings.Fields(strings.ToLower(doc)), " "))
	grams := make(map[string]int)
	for i := 0; i+n <= len(runes); i++ {
		grams[string(runes[i:i+n])]++
	}
	return grams
}
