package engine

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/adrg/strutil/metrics"
)

// indel is a Levenshtein metric where a substitution costs a delete plus an
// insert, which makes its distance the insertion/deletion distance
var indel = &metrics.Levenshtein{
	CaseSensitive: true,
	InsertCost:    1,
	DeleteCost:    1,
	ReplaceCost:   2,
}

// IndelRatio is 1 - indel(a,b)/(len(a)+len(b)), in [0,1]. Two empty strings score 1.
func IndelRatio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1.0
	}
	return 1.0 - float64(indel.Distance(a, b))/float64(total)
}

// TokenSetRatio compares the word sets of a and b, ignoring order and
// repetition. The shared tokens are compared against each side's remainder
// and the best alignment wins. Returns a value in [0,1]; 1 when one token
// set contains the other, 0 when either side has no tokens.
func TokenSetRatio(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	var intersection, onlyA, onlyB []string
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection = append(intersection, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range setB {
		if _, ok := setA[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}

	if len(intersection) > 0 && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 1.0
	}

	sort.Strings(intersection)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	diffA := strings.Join(onlyA, " ")
	diffB := strings.Join(onlyB, " ")
	lenA := utf8.RuneCountInString(diffA)
	lenB := utf8.RuneCountInString(diffB)

	best := IndelRatio(diffA, diffB)

	if len(intersection) == 0 {
		return best
	}

	// "sect" vs "sect diff": the intersection is a prefix, so the distance
	// is the separator plus the diff
	sectLen := utf8.RuneCountInString(strings.Join(intersection, " "))
	sectA := sectLen + 1 + lenA
	sectB := sectLen + 1 + lenB

	ratioA := 1.0 - float64(1+lenA)/float64(sectLen+sectA)
	ratioB := 1.0 - float64(1+lenB)/float64(sectLen+sectB)

	return maxFloat(best, ratioA, ratioB)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range strings.Fields(s) {
		set[t] = struct{}{}
	}
	return set
}

func maxFloat(values ...float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
