package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndelRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "both empty", a: "", b: "", want: 1.0},
		{name: "one empty", a: "abc", b: "", want: 0.0},
		{name: "identical", a: "park", b: "park", want: 1.0},
		{name: "kitten sitting", a: "kitten", b: "sitting", want: 1.0 - 5.0/13.0},
		{name: "disjoint", a: "ab", b: "cd", want: 0.0},
		{name: "case sensitive", a: "A", b: "a", want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, IndelRatio(tt.a, tt.b), 1e-9)
		})
	}
}

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "park tokyo", b: "park tokyo", want: 1.0},
		{name: "reordered", a: "tokyo park", b: "park tokyo", want: 1.0},
		{name: "subset", a: "park", b: "park grand", want: 1.0},
		{name: "repeated tokens", a: "park park", b: "park", want: 1.0},
		{name: "one empty", a: "", b: "park", want: 0.0},
		{name: "shared token", a: "a b", b: "a c", want: 0.5},
		{name: "no shared token", a: "ab", b: "cd", want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TokenSetRatio(tt.a, tt.b), 1e-9)
		})
	}
}

func TestTokenSetRatio_SymmetricAndBounded(t *testing.T) {
	values := []string{"", "sakura", "sakura garden", "garden sakura terrace", "mitsui garden premier", "123 other property some"}

	for _, a := range values {
		for _, b := range values {
			ab := TokenSetRatio(a, b)
			assert.InDelta(t, ab, TokenSetRatio(b, a), 1e-12, "%q vs %q", a, b)
			assert.GreaterOrEqual(t, ab, 0.0)
			assert.LessOrEqual(t, ab, 1.0)
		}
	}
}
