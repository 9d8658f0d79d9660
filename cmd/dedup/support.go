package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ourkan95/Duplicate-Detector/internal/config"
	"github.com/ourkan95/Duplicate-Detector/internal/db"
	"github.com/ourkan95/Duplicate-Detector/internal/embeddings"
	"github.com/ourkan95/Duplicate-Detector/internal/engine"
	import_pkg "github.com/ourkan95/Duplicate-Detector/internal/import"
	"github.com/ourkan95/Duplicate-Detector/internal/match"
	"github.com/ourkan95/Duplicate-Detector/internal/metrics"
	"github.com/ourkan95/Duplicate-Detector/internal/parser/libpostal"
)

// buildEmbedders creates one provider per distinct model so scorers sharing
// a model also share its rate limit
func buildEmbedders(ec *config.EmbeddingConfig, m *metrics.Metrics) engine.Embedders {
	if strings.ToLower(ec.Provider) == config.ProviderHash {
		return engine.SingleEmbedder(embeddings.NewHashEmbedder(ec.Dimensions))
	}

	byModel := make(map[string]embeddings.Embedder)
	forScorer := func(scorer string) embeddings.Embedder {
		model := ec.ModelFor(scorer)
		if e, ok := byModel[model]; ok {
			return e
		}
		inner := embeddings.NewOpenAIEmbedder(embeddings.OpenAIConfig{
			APIKey:     ec.APIKey,
			BaseURL:    ec.BaseURL,
			Model:      model,
			Dimensions: ec.Dimensions,
			Timeout:    ec.Timeout,
		})
		re := embeddings.NewResilientEmbedder(inner, embeddings.ResilientConfig{
			BatchSize:         ec.BatchSize,
			RequestsPerSecond: ec.RequestsPerSecond,
			Burst:             ec.Burst,
			MaxRetries:        ec.MaxRetries,
			InitialBackoff:    ec.InitialBackoff,
		})
		if m != nil {
			re.OnRequest(m.EmbeddingOutcome)
		}
		byModel[model] = re
		return re
	}

	return engine.Embedders{
		Address: forScorer("address"),
		Name:    forScorer("name"),
		Slug:    forScorer("slug"),
	}
}

func newPipeline(c *config.Config, m *metrics.Metrics) (*engine.Pipeline, error) {
	pc := engine.PipelineConfig{
		Threshold:         c.Pipeline.Threshold,
		StageThreshold:    c.Pipeline.StageThreshold,
		MismatchThreshold: c.Pipeline.MismatchThreshold,
		GeoBlocking:       c.Pipeline.GeoBlocking,
		Weights: &match.AggregateWeights{
			Address: c.Weights.Address,
			Geo:     c.Weights.Geo,
			Name:    c.Weights.Name,
		},
		Debug: c.Pipeline.Debug,
	}

	p, err := engine.NewPipeline(buildEmbedders(&c.Embedding, m), pc)
	if err != nil {
		return nil, err
	}
	if m != nil {
		p.WithRecorder(m.Recorder())
	}
	return p, nil
}

func loadListings(c *config.Config) (*match.ListingSet, error) {
	if c.Input.Path == "" {
		return nil, fmt.Errorf("no input file, set --input or input.path")
	}

	importer := import_pkg.NewListingImporter(libpostal.NewPostalParser())
	if c.Input.Sheet != "" {
		importer.WithSheet(c.Input.Sheet)
	}

	set, err := importer.LoadListingSet(c.Input.Path)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", c.Input.Path).Int("listings", set.Len()).Msg("listings loaded")
	return set, nil
}

// openStore connects when the database is enabled; the returned closer is never nil
func openStore(ctx context.Context, c *config.Config) (*db.Store, func(), error) {
	if !c.Database.Enabled {
		return nil, func() {}, nil
	}

	conn, err := db.NewConnection(ctx, &c.Database)
	if err != nil {
		return nil, nil, err
	}
	store := db.NewStore(conn.DB)
	if err := store.EnsureSchema(ctx); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return store, func() { conn.Close() }, nil
}
