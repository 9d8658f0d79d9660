package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ourkan95/Duplicate-Detector/internal/embeddings"
	"github.com/ourkan95/Duplicate-Detector/internal/match"
)

func TestExtractSlug(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "empty", url: "", want: ""},
		{name: "generic last segment", url: "https://example.com/stays/sakura-inn/", want: "sakura-inn"},
		{name: "generic without scheme", url: "example.com/stays/sakura-inn", want: "sakura-inn"},
		{name: "expedia second to last", url: "https://www.expedia.co.jp/Park-Hotel-Tokyo.h123.Hotel-Information/photos", want: "Park-Hotel-Tokyo"},
		{name: "expedia single segment", url: "https://www.expedia.com/Tokyo-Hotels-Park.h123.Hotel-Information", want: "Tokyo-Hotels-Park"},
		{name: "booking", url: "https://www.booking.com/hotel/jp/park-tokyo.en-gb.html?aid=1", want: "park-tokyo"},
		{name: "agoda before hotel", url: "https://www.agoda.com/en-gb/park-hotel-tokyo/hotel/tokyo-jp.html", want: "park-hotel-tokyo"},
		{name: "agoda without hotel", url: "https://www.agoda.com/en-gb/park-hotel-tokyo.html", want: "park-hotel-tokyo"},
		{name: "trivago oar", url: "https://www.trivago.jp/en-US/oar/park-hotel-tokyo?search=100", want: "park-hotel-tokyo"},
		{name: "trivago without oar", url: "https://www.trivago.jp/en-US/srl/tokyo", want: "tokyo"},
		{name: "malformed escape", url: "https://example.com/caf%zz-inn", want: "caf%zz-inn"},
		{name: "host case folded", url: "https://WWW.BOOKING.COM/hotel/jp/keio.ja.html", want: "keio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSlug(tt.url))
		})
	}
}

func TestSlugChecker_Check(t *testing.T) {
	sc := NewSlugChecker(embeddings.NewHashEmbedder(64), DefaultMismatchThreshold)
	ctx := context.Background()

	t.Run("name matches slug", func(t *testing.T) {
		rec, err := sc.Check(ctx, "Park Hotel Tokyo", "https://www.booking.com/hotel/jp/park-tokyo.en-gb.html")
		require.NoError(t, err)

		assert.Equal(t, "park", rec.CleanedName)
		assert.Equal(t, "park", rec.CleanedSlug)
		assert.Equal(t, 1.0, rec.Similarity)
		assert.False(t, rec.IsMismatch)
	})

	t.Run("unrelated slug", func(t *testing.T) {
		rec, err := sc.Check(ctx, "Sakura Inn", "https://example.com/listing/some-other-property-123")
		require.NoError(t, err)

		assert.Equal(t, "sakura", rec.CleanedName)
		assert.Equal(t, "some other property 123", rec.CleanedSlug)
		assert.Less(t, rec.Similarity, 0.9)
		assert.True(t, rec.IsMismatch)
	})

	t.Run("name cleans to empty", func(t *testing.T) {
		rec, err := sc.Check(ctx, "ホテル東京", "https://example.com/listing/park")
		require.NoError(t, err)

		assert.Empty(t, rec.CleanedName)
		assert.Equal(t, 0.0, rec.Similarity)
		assert.True(t, rec.IsMismatch)
	})
}

func TestSlugChecker_CheckAll(t *testing.T) {
	set := mustSet(t,
		match.Listing{ID: "1", Name: "Park Hotel Tokyo", URL: "https://www.agoda.com/en-gb/park-hotel-tokyo/hotel/tokyo-jp.html"},
		match.Listing{ID: "2", Name: "Sakura Inn", URL: "https://example.com/some-other-property-123"},
		match.Listing{ID: "3", Name: "Keio Plaza", URL: ""},
	)
	emb := &mapEmbedder{fallback: []float32{1, 0}}

	records, err := NewSlugChecker(emb, DefaultMismatchThreshold).CheckAll(context.Background(), set)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 1, emb.calls, "names and slugs are embedded in one batch")

	assert.Equal(t, "1", records[0].ListingID)
	assert.False(t, records[0].IsMismatch)
	assert.True(t, records[1].IsMismatch)
	assert.Equal(t, "", records[2].CleanedSlug)
	assert.True(t, records[2].IsMismatch)

	flagged := Mismatches(records)
	require.Len(t, flagged, 2)
	assert.Equal(t, "2", flagged[0].ListingID)
	assert.Equal(t, "3", flagged[1].ListingID)
}

func TestSlugChecker_ZeroThresholdFlagsNothing(t *testing.T) {
	sc := NewSlugChecker(embeddings.NewHashEmbedder(32), 0)

	rec, err := sc.Check(context.Background(), "", "")
	require.NoError(t, err)
	assert.False(t, rec.IsMismatch)
	assert.Equal(t, 0.0, sc.Threshold())
}

func TestSlugChecker_EmbeddingFailure(t *testing.T) {
	sc := NewSlugChecker(&mapEmbedder{err: errEmbedFailed}, DefaultMismatchThreshold)

	_, err := sc.Check(context.Background(), "Park", "https://example.com/park")
	assert.ErrorIs(t, err, errEmbedFailed)
}
