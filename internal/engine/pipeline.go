package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ourkan95/Duplicate-Detector/internal/embeddings"
	"github.com/ourkan95/Duplicate-Detector/internal/match"
)

// Recorder receives pipeline measurements
type Recorder interface {
	PairsScored(scorer string, n int)
	StageDuration(stage string, d time.Duration)
	Candidates(n int)
	Mismatches(n int)
}

type noopRecorder struct{}

func (noopRecorder) PairsScored(string, int)             {}
func (noopRecorder) StageDuration(string, time.Duration) {}
func (noopRecorder) Candidates(int)                      {}
func (noopRecorder) Mismatches(int)                      {}

// Embedders assigns an embedding provider to each scorer
type Embedders struct {
	Address embeddings.Embedder
	Name    embeddings.Embedder
	Slug    embeddings.Embedder
}

// SingleEmbedder uses one provider for every scorer
func SingleEmbedder(e embeddings.Embedder) Embedders {
	return Embedders{Address: e, Name: e, Slug: e}
}

// PipelineConfig holds the thresholds of one run
type PipelineConfig struct {
	Threshold         float64 // global combined-score and geo retention threshold
	StageThreshold    float64 // retention threshold for address and name tables, 0 keeps all
	MismatchThreshold float64
	GeoBlocking       bool
	Weights           *match.AggregateWeights
	Debug             bool
}

// DefaultPipelineConfig mirrors the production run
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Threshold:         match.DefaultThreshold,
		StageThreshold:    match.DefaultThreshold,
		MismatchThreshold: DefaultMismatchThreshold,
		GeoBlocking:       true,
		Weights:           match.DefaultAggregateWeights(),
	}
}

// Result is everything one run produced
type Result struct {
	RunID      string
	StartedAt  time.Time
	Listings   int
	Address    []match.PairScore
	Geo        []match.PairScore
	Name       []match.PairScore
	Candidates []match.CombinedCandidate
	Mismatches []match.MismatchRecord
	Timings    map[string]time.Duration
}

// Pipeline runs the scorers concurrently and aggregates their tables
type Pipeline struct {
	cfg        PipelineConfig
	address    *AddressScorer
	distance   *DistanceScorer
	name       *NameScorer
	slug       *SlugChecker
	aggregator *match.Aggregator
	recorder   Recorder
}

// NewPipeline wires the scorers for cfg
func NewPipeline(emb Embedders, cfg PipelineConfig) (*Pipeline, error) {
	if cfg.Weights == nil {
		cfg.Weights = match.DefaultAggregateWeights()
	}
	aggregator, err := match.NewAggregatorWithConfig(cfg.Weights, cfg.Threshold)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:        cfg,
		address:    NewAddressScorer(emb.Address),
		distance:   NewDistanceScorer(),
		name:       NewNameScorer(emb.Name),
		slug:       NewSlugChecker(emb.Slug, cfg.MismatchThreshold),
		aggregator: aggregator,
		recorder:   noopRecorder{},
	}, nil
}

// WithRecorder sets the measurement sink
func (p *Pipeline) WithRecorder(r Recorder) *Pipeline {
	if r != nil {
		p.recorder = r
	}
	return p
}

// SlugChecker exposes the configured checker for single lookups
func (p *Pipeline) SlugChecker() *SlugChecker {
	return p.slug
}

// Run scores, aggregates and checks slugs for every listing in set
func (p *Pipeline) Run(ctx context.Context, set *match.ListingSet) (*Result, error) {
	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Listings:  set.Len(),
		Timings:   make(map[string]time.Duration),
	}
	logger := log.With().Str("run_id", res.RunID).Logger()
	logger.Info().Int("listings", set.Len()).Int("pairs", set.PairCount()).Msg("pipeline started")

	timings := make(chan stageTiming, 4)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer p.time(timings, "address")()
		scores, err := p.address.ScoreAll(gctx, set)
		if err != nil {
			return fmt.Errorf("address scorer: %w", err)
		}
		p.recorder.PairsScored("address", len(scores))
		res.Address = p.retainStage(scores, addressSignal)
		return nil
	})

	g.Go(func() error {
		defer p.time(timings, "geo")()
		if p.cfg.GeoBlocking {
			res.Geo = p.distance.ScoreWithin(p.cfg.Debug, set, p.cfg.Threshold)
		} else {
			res.Geo = match.Retain(p.distance.ScoreAll(set), geoSignal, p.cfg.Threshold)
		}
		p.recorder.PairsScored("geo", len(res.Geo))
		return nil
	})

	g.Go(func() error {
		defer p.time(timings, "name")()
		scores, err := p.name.ScoreAll(gctx, set)
		if err != nil {
			return fmt.Errorf("name scorer: %w", err)
		}
		p.recorder.PairsScored("name", len(scores))
		res.Name = p.retainStage(scores, nameSignal)
		return nil
	})

	g.Go(func() error {
		defer p.time(timings, "mismatch")()
		records, err := p.slug.CheckAll(gctx, set)
		if err != nil {
			return fmt.Errorf("slug checker: %w", err)
		}
		res.Mismatches = records
		return nil
	})

	err := g.Wait()
	close(timings)
	for t := range timings {
		res.Timings[t.stage] = t.took
	}
	if err != nil {
		return nil, err
	}

	start := time.Now()
	candidates := p.aggregator.Aggregate(p.cfg.Debug, res.Address, res.Geo, res.Name)
	res.Candidates = match.Describe(set, candidates)
	res.Timings["aggregate"] = time.Since(start)
	p.recorder.StageDuration("aggregate", res.Timings["aggregate"])

	flagged := len(Mismatches(res.Mismatches))
	p.recorder.Candidates(len(res.Candidates))
	p.recorder.Mismatches(flagged)

	logger.Info().
		Int("address_pairs", len(res.Address)).
		Int("geo_pairs", len(res.Geo)).
		Int("name_pairs", len(res.Name)).
		Int("candidates", len(res.Candidates)).
		Int("mismatches", flagged).
		Dur("took", time.Since(res.StartedAt)).
		Msg("pipeline finished")

	return res, nil
}

// RunMismatch runs only the slug check
func (p *Pipeline) RunMismatch(ctx context.Context, set *match.ListingSet) ([]match.MismatchRecord, error) {
	start := time.Now()
	records, err := p.slug.CheckAll(ctx, set)
	if err != nil {
		return nil, err
	}
	p.recorder.StageDuration("mismatch", time.Since(start))
	p.recorder.Mismatches(len(Mismatches(records)))
	return records, nil
}

type stageTiming struct {
	stage string
	took  time.Duration
}

func (p *Pipeline) time(out chan<- stageTiming, stage string) func() {
	start := time.Now()
	return func() {
		took := time.Since(start)
		p.recorder.StageDuration(stage, took)
		out <- stageTiming{stage: stage, took: took}
		log.Debug().Str("stage", stage).Dur("took", took).Msg("stage finished")
	}
}

func (p *Pipeline) retainStage(scores []match.PairScore, signal func(match.PairScore) match.Signal) []match.PairScore {
	if p.cfg.StageThreshold <= 0 {
		return scores
	}
	return match.Retain(scores, signal, p.cfg.StageThreshold)
}

func addressSignal(ps match.PairScore) match.Signal { return ps.AddressScore }
func nameSignal(ps match.PairScore) match.Signal    { return ps.NameScore }
