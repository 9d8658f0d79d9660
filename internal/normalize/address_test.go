package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim and lower", input: "  1-2-3 Ginza, Chuo City  ", want: "1-2-3 ginza, chuo city"},
		{name: "inner whitespace", input: "1-2-3   Ginza\tChuo", want: "1-2-3 ginza chuo"},
		{name: "blank", input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StandardKey(tt.input))
		})
	}
}

func TestSameStandardAddress(t *testing.T) {
	assert.True(t, SameStandardAddress("1-2-3 GINZA", " 1-2-3 ginza "))
	assert.False(t, SameStandardAddress("1-2-3 Ginza", "1-2-4 Ginza"))
}

func TestEqualFoldPresent(t *testing.T) {
	assert.True(t, EqualFoldPresent("Tokyo", "TOKYO "))
	assert.False(t, EqualFoldPresent("", ""))
	assert.False(t, EqualFoldPresent("Tokyo", ""))
	assert.False(t, EqualFoldPresent("Tokyo", "Osaka"))
}

func TestIsBlankAndParseFloat(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank(" NaN "))
	assert.False(t, IsBlank("Ginza"))

	v, err := ParseFloat(" 35.6812 ")
	require.NoError(t, err)
	assert.InDelta(t, 35.6812, v, 1e-9)

	_, err = ParseFloat("north")
	assert.Error(t, err)
}
