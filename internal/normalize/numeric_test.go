package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ourkan95/Duplicate-Detector/internal/match"
)

func TestHouseNumberSimilarity(t *testing.T) {
	tests := []struct {
		name        string
		code1       string
		code2       string
		wantDefined bool
		want        float64
	}{
		{name: "first empty", code1: "", code2: "1-2-3", wantDefined: false},
		{name: "second blank", code1: "1-2-3", code2: "   ", wantDefined: false},
		{name: "different district", code1: "1-2-3", code2: "2-2-3", wantDefined: true, want: 0.0},
		{name: "different block", code1: "1-2-3", code2: "1-5-3", wantDefined: true, want: 0.5},
		{name: "identical", code1: "12-3-4", code2: "12-3-4", wantDefined: true, want: 1.0},
		{name: "adjacent number", code1: "12-3-4", code2: "12-3-5", wantDefined: true, want: 0.9},
		{name: "gap of two", code1: "12-3-4", code2: "12-3-6", wantDefined: true, want: 0.7},
		{name: "gap of four", code1: "12-3-4", code2: "12-3-8", wantDefined: true, want: 0.7},
		{name: "gap of five", code1: "12-3-4", code2: "12-3-9", wantDefined: true, want: 0.5},
		{name: "gap of nine", code1: "12-3-1", code2: "12-3-10", wantDefined: true, want: 0.5},
		{name: "gap of ten", code1: "12-3-1", code2: "12-3-11", wantDefined: true, want: 0.3},
		{name: "two groups equal", code1: "12-3", code2: "12-3", wantDefined: true, want: 0.8},
		{name: "one side has third group", code1: "12-3", code2: "12-3-4", wantDefined: true, want: 0.8},
		{name: "single group equal", code1: "12", code2: "12", wantDefined: true, want: 0.8},
		{name: "full width digits", code1: "１２-３-４", code2: "12-3-4", wantDefined: true, want: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HouseNumberSimilarity(tt.code1, tt.code2)
			assert.Equal(t, tt.wantDefined, got.Defined)
			if tt.wantDefined {
				assert.InDelta(t, tt.want, got.Value, 1e-12)
				assert.Empty(t, got.Reason)
			}
		})
	}
}

func TestHouseNumberSimilarity_Unparseable(t *testing.T) {
	got := HouseNumberSimilarity("1-2-3a", "1-2-3")

	assert.True(t, got.Defined)
	assert.Equal(t, 0.0, got.Value)
	assert.Equal(t, match.ReasonUnparseable, got.Reason)
}

func TestHouseNumberSimilarity_ReflexiveAndSymmetric(t *testing.T) {
	codes := []string{"1-2-3", "1-2-4", "1-2-13", "1-3-3", "2-2-3", "1-2", "1", "1-2-x"}

	for _, a := range codes {
		for _, b := range codes {
			ab := HouseNumberSimilarity(a, b)
			ba := HouseNumberSimilarity(b, a)
			assert.Equal(t, ab, ba, "score(%q,%q) != score(%q,%q)", a, b, b, a)
		}
	}

	for _, c := range []string{"1-2-3", "7-1-20", "10-10-10"} {
		assert.Equal(t, 1.0, HouseNumberSimilarity(c, c).Value, c)
	}
}
