package engine

import (
	"bytes"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ourkan95/Duplicate-Detector/internal/match"
)

func sampleResult() *Result {
	return &Result{
		Candidates: []match.CombinedCandidate{{
			Key:   match.NewPairKey("101", "102"),
			Name1: "Park Hotel Tokyo", Address1: "1-1-1 Marunouchi",
			Name2: "park hotel tokyo", Address2: "1-1-1 marunouchi",
			AddressScore: 1, GeoSimilarity: 1, NameScore: 0.975, CombinedScore: 0.99375,
		}},
		Mismatches: []match.MismatchRecord{
			{ListingID: "101", Name: "Park Hotel Tokyo", URL: "https://b.example/park", CleanedName: "park", CleanedSlug: "park", Similarity: 1},
			{ListingID: "103", Name: "Sakura Inn", URL: "https://example.com/x", CleanedName: "sakura", CleanedSlug: "x", Similarity: 0.214, IsMismatch: true},
		},
	}
}

func TestExporter_RoundTrip(t *testing.T) {
	for _, format := range []string{FormatCSV, FormatXLSX} {
		t.Run(format, func(t *testing.T) {
			dir := t.TempDir()
			exp, err := NewExporter(dir, format)
			require.NoError(t, err)

			paths, err := exp.ExportResult(sampleResult())
			require.NoError(t, err)
			assert.Equal(t, []string{
				filepath.Join(dir, CandidatesArtifact+"."+format),
				filepath.Join(dir, MismatchTableArtifact+"."+format),
				filepath.Join(dir, MismatchesOnlyArtifact+"."+format),
			}, paths)

			candidates, err := ReadTable(paths[0])
			require.NoError(t, err)
			assert.Equal(t, candidateHeader, candidates.Header)
			require.Len(t, candidates.Rows, 1)
			rec := candidates.Records()[0]
			assert.Equal(t, "101", rec["id1"])
			assert.Equal(t, "park hotel tokyo", rec["name2"])
			combined, err := strconv.ParseFloat(rec["combined_score"], 64)
			require.NoError(t, err)
			assert.InDelta(t, 0.99375, combined, 1e-9)

			all, err := ReadTable(paths[1])
			require.NoError(t, err)
			assert.Len(t, all.Rows, 2)

			flagged, err := ReadTable(paths[2])
			require.NoError(t, err)
			require.Len(t, flagged.Rows, 1)
			frec := flagged.Records()[0]
			assert.Equal(t, "103", frec["hotelId"])
			isMismatch, err := strconv.ParseBool(frec["is_mismatch"])
			require.NoError(t, err)
			assert.True(t, isMismatch)
		})
	}
}

func TestExporter_EmptyTablesKeepHeader(t *testing.T) {
	exp, err := NewExporter(t.TempDir(), FormatCSV)
	require.NoError(t, err)

	path, err := exp.ExportCandidates(nil)
	require.NoError(t, err)

	table, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, candidateHeader, table.Header)
	assert.Empty(t, table.Rows)
}

func TestNewExporter_UnknownFormat(t *testing.T) {
	_, err := NewExporter(t.TempDir(), "parquet")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	exp, err := NewExporter("out", " XLSX ")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "url_hybrid_similarity.xlsx"), exp.Path(MismatchTableArtifact))
}

func TestPrintPreview(t *testing.T) {
	var buf bytes.Buffer
	PrintPreview(&buf, "Potential mismatches", MismatchTable(nil), 10)
	assert.Equal(t, "Potential mismatches: no results\n\n", buf.String())

	buf.Reset()
	PrintPreview(&buf, "Potential mismatches", MismatchTable(sampleResult().Mismatches), 1)
	out := buf.String()
	assert.Contains(t, out, "showing first 1 rows (of 2)")
	assert.Contains(t, out, "trivago_name_clean")
	assert.Contains(t, out, "Park Hotel Tokyo")
	assert.NotContains(t, out, "Sakura Inn")
}

func TestPairTable(t *testing.T) {
	set := mustSet(t,
		match.Listing{ID: "1", Name: "A", StandardizedAddress: "addr a"},
		match.Listing{ID: "2", Name: "B", StandardizedAddress: "addr b"},
	)
	scores := []match.PairScore{{Key: match.NewPairKey("2", "1"), NameScore: match.Measured(0.8)}}

	table := PairTable(set, scores, "name_score", nameSignal)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"1", "2", "0.8", "A", "B", "addr a", "addr b"}, table.Rows[0])
}

func TestStageTables(t *testing.T) {
	set := mustSet(t,
		match.Listing{ID: "101", Name: "Park Hotel Tokyo"},
		match.Listing{ID: "102", Name: "park hotel tokyo"},
	)
	res := sampleResult()
	res.Geo = []match.PairScore{{Key: match.NewPairKey("101", "102"), GeoSimilarity: match.Measured(1)}}

	tables := StageTables(set, res)
	require.Len(t, tables, 5)
	assert.Empty(t, tables[0].Table.Rows)
	require.Len(t, tables[1].Table.Rows, 1)
	assert.Equal(t, "1", tables[1].Table.Rows[0][2])
	assert.Len(t, tables[3].Table.Rows, 1)
	require.Len(t, tables[4].Table.Rows, 1, "only flagged listings are previewed")
	assert.Equal(t, "103", tables[4].Table.Rows[0][0])
}
