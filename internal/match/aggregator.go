package match

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ourkan95/Duplicate-Detector/internal/debug"
)

// ErrWeightsSum is returned when aggregate weights do not sum to 1.0
var ErrWeightsSum = errors.New("aggregate weights must sum to 1.0")

// AggregateWeights defines how the three pairwise signals are combined
type AggregateWeights struct {
	Address float64 // 0.25
	Geo     float64 // 0.50
	Name    float64 // 0.25
}

// DefaultAggregateWeights returns the fixed production weights
func DefaultAggregateWeights() *AggregateWeights {
	return &AggregateWeights{
		Address: 0.25,
		Geo:     0.50,
		Name:    0.25,
	}
}

// Validate rejects negative weights and weights that do not sum to 1.0
func (w *AggregateWeights) Validate() error {
	if w.Address < 0 || w.Geo < 0 || w.Name < 0 {
		return fmt.Errorf("aggregate weights must be non-negative: %+v", *w)
	}
	if sum := w.Address + w.Geo + w.Name; math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("%w: got %.6f", ErrWeightsSum, sum)
	}
	return nil
}

// DefaultThreshold is the global duplicate-candidate threshold
const DefaultThreshold = 0.75

// Aggregator joins the per-scorer tables and applies the global threshold
type Aggregator struct {
	weights   *AggregateWeights
	threshold float64
}

// NewAggregator creates an aggregator with default weights and threshold
func NewAggregator() *Aggregator {
	return &Aggregator{
		weights:   DefaultAggregateWeights(),
		threshold: DefaultThreshold,
	}
}

// NewAggregatorWithConfig creates an aggregator with custom weights and threshold
func NewAggregatorWithConfig(weights *AggregateWeights, threshold float64) (*Aggregator, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Aggregator{weights: weights, threshold: threshold}, nil
}

// Threshold returns the combined-score cut-off
func (a *Aggregator) Threshold() float64 {
	return a.threshold
}

type joined struct {
	address float64
	geo     float64
	name    float64
}

// Aggregate full-outer-joins the three tables on PairKey. A signal missing for
// a pair counts as 0.0 here, unlike the per-field blends upstream.
// Candidates come back sorted by PairKey.
func (a *Aggregator) Aggregate(localDebug bool, address, geo, name []PairScore) []CombinedCandidate {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)
	defer debug.DebugTiming(localDebug, "aggregate")()

	rows := make(map[PairKey]*joined)
	row := func(k PairKey) *joined {
		r, ok := rows[k]
		if !ok {
			r = &joined{}
			rows[k] = r
		}
		return r
	}

	for _, ps := range address {
		row(ps.Key).address = ps.AddressScore.Or(0.0)
	}
	for _, ps := range geo {
		row(ps.Key).geo = ps.GeoSimilarity.Or(0.0)
	}
	for _, ps := range name {
		row(ps.Key).name = ps.NameScore.Or(0.0)
	}

	debug.DebugOutput(localDebug, "Joined %d address, %d geo, %d name rows into %d pairs",
		len(address), len(geo), len(name), len(rows))

	var candidates []CombinedCandidate
	for key, r := range rows {
		combined := a.weights.Address*r.address + a.weights.Geo*r.geo + a.weights.Name*r.name
		if combined < a.threshold {
			continue
		}
		candidates = append(candidates, CombinedCandidate{
			Key:           key,
			AddressScore:  r.address,
			GeoSimilarity: r.geo,
			NameScore:     r.name,
			CombinedScore: combined,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Key.Less(candidates[j].Key)
	})

	debug.DebugOutput(localDebug, "%d pairs at or above threshold %.2f", len(candidates), a.threshold)
	return candidates
}

// Describe returns a copy of candidates with names and addresses filled from set
func Describe(set *ListingSet, candidates []CombinedCandidate) []CombinedCandidate {
	out := make([]CombinedCandidate, len(candidates))
	for i, c := range candidates {
		if l, ok := set.Lookup(c.Key.ID1); ok {
			c.Name1 = l.Name
			c.Address1 = l.StandardizedAddress
		}
		if l, ok := set.Lookup(c.Key.ID2); ok {
			c.Name2 = l.Name
			c.Address2 = l.StandardizedAddress
		}
		out[i] = c
	}
	return out
}

// Retain keeps the scores whose selected signal is defined and at least threshold
func Retain(scores []PairScore, signal func(PairScore) Signal, threshold float64) []PairScore {
	kept := make([]PairScore, 0, len(scores))
	for _, ps := range scores {
		s := signal(ps)
		if s.Defined && s.Value >= threshold {
			kept = append(kept, ps)
		}
	}
	return kept
}
