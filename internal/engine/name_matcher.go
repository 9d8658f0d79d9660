package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/ourkan95/Duplicate-Detector/internal/debug"
	"github.com/ourkan95/Duplicate-Detector/internal/embeddings"
	"github.com/ourkan95/Duplicate-Detector/internal/match"
	"github.com/ourkan95/Duplicate-Detector/internal/normalize"
)

// NameWeights blend the three name similarities
type NameWeights struct {
	Semantic    float64 // 0.5, embedding cosine
	Fuzzy       float64 // 0.3, token-set ratio
	Trigram     float64 // 0.2, char 3-gram TF-IDF cosine
	SharedToken float64 // 0.05 flat bonus, result capped at 1.0
}

// DefaultNameWeights returns the production name weights
func DefaultNameWeights() *NameWeights {
	return &NameWeights{
		Semantic:    0.5,
		Fuzzy:       0.3,
		Trigram:     0.2,
		SharedToken: 0.05,
	}
}

// NameScorer scores every listing pair on its normalized display name
type NameScorer struct {
	embedder  embeddings.Embedder
	weights   *NameWeights
	stopwords normalize.StopwordSet
	digits    int
}

// NewNameScorer creates a scorer with default weights and name stopwords
func NewNameScorer(embedder embeddings.Embedder) *NameScorer {
	return NewNameScorerWithConfig(embedder, DefaultNameWeights(), normalize.NameStopwords())
}

// NewNameScorerWithConfig creates a scorer with custom weights and stopwords
func NewNameScorerWithConfig(embedder embeddings.Embedder, weights *NameWeights, stopwords normalize.StopwordSet) *NameScorer {
	return &NameScorer{
		embedder:  embedder,
		weights:   weights,
		stopwords: stopwords,
		digits:    3,
	}
}

// Normalize applies the scorer's name normalization
func (ns *NameScorer) Normalize(name string) string {
	return normalize.NormalizeName(name, ns.stopwords)
}

// ScoreAll returns one PairScore with NameScore set for every pair
func (ns *NameScorer) ScoreAll(ctx context.Context, set *match.ListingSet) ([]match.PairScore, error) {
	localDebug := false

	names := normalize.NormalizeNames(set.Field(func(l match.Listing) string { return l.Name }), ns.stopwords)

	semantic, err := embeddings.BuildIndex(ctx, ns.embedder, names)
	if err != nil {
		return nil, fmt.Errorf("embedding names: %w", err)
	}
	trigrams := FitCharNGrams(names, 3)

	scores := make([]match.PairScore, 0, set.PairCount())
	set.Pairs(func(i, j int) {
		sem := semantic.Similarity(i, j).Or(0.0)
		fuzzy := TokenSetRatio(names[i], names[j])
		tri := trigrams.Similarity(i, j)

		score := ns.weights.Semantic*sem + ns.weights.Fuzzy*fuzzy + ns.weights.Trigram*tri
		if normalize.SharesToken(names[i], names[j]) {
			score = math.Min(1.0, score+ns.weights.SharedToken)
		}

		debug.DebugOutput(localDebug, "Name %q vs %q: sem=%.3f fuzzy=%.3f tri=%.3f score=%.3f",
			names[i], names[j], sem, fuzzy, tri, score)

		scores = append(scores, match.PairScore{
			Key:       set.Key(i, j),
			NameScore: match.Measured(match.Round(score, ns.digits)),
		})
	})

	return scores, nil
}
