package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ourkan95/Duplicate-Detector/internal/embeddings"
	"github.com/ourkan95/Duplicate-Detector/internal/match"
	"github.com/ourkan95/Duplicate-Detector/internal/normalize"
)

func TestNameScorer_Normalize(t *testing.T) {
	ns := NewNameScorer(nil)

	assert.Equal(t, "park", ns.Normalize("Park Hotel Tokyo"))
	assert.Equal(t, "the parkhotel", ns.Normalize("The Park-Hotel, TOKYO!"))
	assert.Equal(t, "sakura", ns.Normalize("Sakura Inn (West)"))
}

func TestNameScorer_IdenticalAfterNormalization(t *testing.T) {
	set := mustSet(t,
		match.Listing{ID: "1", Name: "Park Hotel Tokyo"},
		match.Listing{ID: "2", Name: "park hotel tokyo"},
	)

	scores, err := NewNameScorer(embeddings.NewHashEmbedder(64)).ScoreAll(context.Background(), set)
	require.NoError(t, err)
	require.Len(t, scores, 1)

	assert.True(t, scores[0].NameScore.Defined)
	assert.GreaterOrEqual(t, scores[0].NameScore.Value, 0.95)
	assert.LessOrEqual(t, scores[0].NameScore.Value, 1.0)
}

func TestNameScorer_SharedTokenBonus(t *testing.T) {
	set := mustSet(t,
		match.Listing{ID: "1", Name: "Sakura Garden Asakusa"},
		match.Listing{ID: "2", Name: "Sakura Terrace"},
	)
	emb := embeddings.NewHashEmbedder(64)

	withBonus, err := NewNameScorer(emb).ScoreAll(context.Background(), set)
	require.NoError(t, err)

	weights := DefaultNameWeights()
	weights.SharedToken = 0
	without, err := NewNameScorerWithConfig(emb, weights, normalize.NameStopwords()).ScoreAll(context.Background(), set)
	require.NoError(t, err)

	require.Less(t, without[0].NameScore.Value, 0.95)
	assert.InDelta(t, 0.05, withBonus[0].NameScore.Value-without[0].NameScore.Value, 0.0011)
}

func TestNameScorer_SimilarNamesRankHigher(t *testing.T) {
	set := mustSet(t,
		match.Listing{ID: "1", Name: "Mitsui Garden Premier"},
		match.Listing{ID: "2", Name: "Mitsui Garden Premier Hotel"},
		match.Listing{ID: "3", Name: "Kaisu Hostel"},
	)

	scores, err := NewNameScorer(embeddings.NewHashEmbedder(128)).ScoreAll(context.Background(), set)
	require.NoError(t, err)
	require.Len(t, scores, 3)

	byKey := make(map[match.PairKey]float64)
	for _, ps := range scores {
		byKey[ps.Key] = ps.NameScore.Value
	}
	assert.Greater(t, byKey[match.NewPairKey("1", "2")], byKey[match.NewPairKey("1", "3")])
	assert.Greater(t, byKey[match.NewPairKey("1", "2")], byKey[match.NewPairKey("2", "3")])
}

func TestNameScorer_BlankNamesScoreZero(t *testing.T) {
	set := mustSet(t,
		match.Listing{ID: "1", Name: "Hotel"},
		match.Listing{ID: "2", Name: ""},
	)

	scores, err := NewNameScorer(embeddings.NewHashEmbedder(32)).ScoreAll(context.Background(), set)
	require.NoError(t, err)
	require.Len(t, scores, 1)

	assert.True(t, scores[0].NameScore.Defined)
	assert.Equal(t, 0.0, scores[0].NameScore.Value)
}

func TestNameScorer_EmbeddingFailure(t *testing.T) {
	set := mustSet(t,
		match.Listing{ID: "1", Name: "a"},
		match.Listing{ID: "2", Name: "b"},
	)

	_, err := NewNameScorer(&mapEmbedder{err: errEmbedFailed}).ScoreAll(context.Background(), set)
	assert.ErrorIs(t, err, errEmbedFailed)
}
