package engine

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ourkan95/Duplicate-Detector/internal/debug"
	"github.com/ourkan95/Duplicate-Detector/internal/embeddings"
	"github.com/ourkan95/Duplicate-Detector/internal/match"
	"github.com/ourkan95/Duplicate-Detector/internal/normalize"
)

// AddressWeights are the per-field weights of the parsed address blend
type AddressWeights struct {
	Number   float64 // 0.50
	Area     float64 // 0.07
	District float64 // 0.05
	Postcode float64 // 0.03
	City     float64 // 0.03
	Country  float64 // 0.02
}

// DefaultAddressWeights returns the production field weights
func DefaultAddressWeights() *AddressWeights {
	return &AddressWeights{
		Number:   0.50,
		Area:     0.07,
		District: 0.05,
		Postcode: 0.03,
		City:     0.03,
		Country:  0.02,
	}
}

const (
	parsedAddressShare = 0.7 // weight of the field blend
	rawAddressShare    = 0.3 // weight of the full-address cosine
)

// AddressScorer scores every listing pair on its structured address
type AddressScorer struct {
	embedder embeddings.Embedder
	weights  *AddressWeights
	digits   int
}

// NewAddressScorer creates a scorer with default weights
func NewAddressScorer(embedder embeddings.Embedder) *AddressScorer {
	return &AddressScorer{
		embedder: embedder,
		weights:  DefaultAddressWeights(),
		digits:   3,
	}
}

// addressIndexes holds one similarity index per embedded field
type addressIndexes struct {
	full     *embeddings.SimilarityIndex
	area     *embeddings.SimilarityIndex
	district *embeddings.SimilarityIndex
}

// ScoreAll returns one PairScore with AddressScore set for every pair
func (as *AddressScorer) ScoreAll(ctx context.Context, set *match.ListingSet) ([]match.PairScore, error) {
	localDebug := false

	idx, err := as.buildIndexes(ctx, set)
	if err != nil {
		return nil, err
	}

	scores := make([]match.PairScore, 0, set.PairCount())
	set.Pairs(func(i, j int) {
		score := as.scorePair(localDebug, set, idx, i, j)
		scores = append(scores, match.PairScore{
			Key:          set.Key(i, j),
			AddressScore: match.Measured(match.Round(score, as.digits)),
		})
	})

	return scores, nil
}

func (as *AddressScorer) buildIndexes(ctx context.Context, set *match.ListingSet) (*addressIndexes, error) {
	var idx addressIndexes
	g, gctx := errgroup.WithContext(ctx)

	fields := []struct {
		name string
		dst  **embeddings.SimilarityIndex
		get  func(match.Listing) string
	}{
		{"address_standardized", &idx.full, func(l match.Listing) string { return l.StandardizedAddress }},
		{"area", &idx.area, func(l match.Listing) string { return l.Address.Area }},
		{"city_district", &idx.district, func(l match.Listing) string { return l.Address.CityDistrict }},
	}

	for _, f := range fields {
		f := f
		g.Go(func() error {
			index, err := embeddings.BuildIndex(gctx, as.embedder, set.Field(f.get))
			if err != nil {
				return fmt.Errorf("embedding %s: %w", f.name, err)
			}
			*f.dst = index
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &idx, nil
}

func (as *AddressScorer) scorePair(localDebug bool, set *match.ListingSet, idx *addressIndexes, i, j int) float64 {
	a, b := set.At(i), set.At(j)

	if strings.TrimSpace(a.StandardizedAddress) != "" &&
		normalize.SameStandardAddress(a.StandardizedAddress, b.StandardizedAddress) {
		return 1.0
	}

	signals := []match.WeightedSignal{
		{Name: "num", Weight: as.weights.Number, Signal: normalize.HouseNumberSimilarity(a.Address.HouseNumber, b.Address.HouseNumber)},
		{Name: "area", Weight: as.weights.Area, Signal: idx.area.Similarity(i, j)},
		{Name: "district", Weight: as.weights.District, Signal: idx.district.Similarity(i, j)},
		{Name: "postcode", Weight: as.weights.Postcode, Signal: exactSignal(a.Address.Postcode, b.Address.Postcode)},
		{Name: "city", Weight: as.weights.City, Signal: citySignal(a.Address.City, b.Address.City)},
		{Name: "country", Weight: as.weights.Country, Signal: countrySignal(a.Address.Country, b.Address.Country)},
	}

	parsed := match.WeightedAverage(signals)
	raw := idx.full.Similarity(i, j).Or(0.0)
	score := parsedAddressShare*parsed + rawAddressShare*raw

	debug.DebugOutput(localDebug, "Address %s vs %s: parsed=%.3f raw=%.3f score=%.3f",
		a.ID, b.ID, parsed, raw, score)

	return score
}

// exactSignal is 1.0 for equal non-blank values, otherwise undefined
func exactSignal(a, b string) match.Signal {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a != "" && a == b {
		return match.Measured(1.0)
	}
	return match.Undefined()
}

// citySignal is 1.0 for equal cities ignoring case and a measured 0.0 otherwise
func citySignal(a, b string) match.Signal {
	if normalize.EqualFoldPresent(a, b) {
		return match.Measured(1.0)
	}
	return match.Measured(0.0)
}

// countrySignal is 1.0 for equal countries ignoring case, otherwise undefined
func countrySignal(a, b string) match.Signal {
	if normalize.EqualFoldPresent(a, b) {
		return match.Measured(1.0)
	}
	return match.Undefined()
}
