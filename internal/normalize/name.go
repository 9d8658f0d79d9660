package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName folds a display name for comparison: NFKC, lowercase,
// drop everything but letters, numbers, underscore and whitespace, then
// remove stopwords. The result is a fixed point of NormalizeName.
func NormalizeName(name string, stopwords StopwordSet) string {
	folded := cases.Lower(language.Und).String(norm.NFKC.String(name))

	stripped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, folded)

	return joinTokens(strings.Fields(stripped), stopwords)
}

// NormalizeNames applies NormalizeName to every value
func NormalizeNames(names []string, stopwords StopwordSet) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = NormalizeName(n, stopwords)
	}
	return out
}

// SharesToken reports whether two normalized strings have a token in common
func SharesToken(a, b string) bool {
	tokens := make(map[string]struct{})
	for _, t := range strings.Fields(a) {
		tokens[t] = struct{}{}
	}
	for _, t := range strings.Fields(b) {
		if _, ok := tokens[t]; ok {
			return true
		}
	}
	return false
}

func joinTokens(tokens []string, stopwords StopwordSet) string {
	kept := tokens[:0]
	for _, t := range tokens {
		if stopwords.Contains(t) {
			continue
		}
		kept = append(kept, t)
	}
	return strings.Join(kept, " ")
}
