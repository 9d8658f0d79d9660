package normalize

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ourkan95/Duplicate-Detector/internal/match"
)

// HouseNumberSimilarity compares staged house-number codes such as
// "12-3-4" (district-block-number). Blank input on either side is undefined.
// A code whose third group is not an integer yields match.Unparseable().
//
//	first group differs            0.0
//	second group differs           0.5
//	third group equal              1.0
//	third group |diff| 1           0.9
//	third group |diff| 2..4        0.7
//	third group |diff| 5..9        0.5
//	third group further apart      0.3
//	anything else                  0.8
func HouseNumberSimilarity(code1, code2 string) match.Signal {
	code1 = norm.NFKC.String(strings.TrimSpace(code1))
	code2 = norm.NFKC.String(strings.TrimSpace(code2))
	if code1 == "" || code2 == "" {
		return match.Undefined()
	}

	parts1 := strings.Split(code1, "-")
	parts2 := strings.Split(code2, "-")

	if parts1[0] != parts2[0] {
		return match.Measured(0.0)
	}
	if len(parts1) > 1 && len(parts2) > 1 && parts1[1] != parts2[1] {
		return match.Measured(0.5)
	}
	if len(parts1) > 2 && len(parts2) > 2 {
		g1, err1 := strconv.Atoi(strings.TrimSpace(parts1[2]))
		g2, err2 := strconv.Atoi(strings.TrimSpace(parts2[2]))
		if err1 != nil || err2 != nil {
			return match.Unparseable()
		}
		return match.Measured(groupDistanceScore(g1, g2))
	}
	return match.Measured(0.8)
}

func groupDistanceScore(g1, g2 int) float64 {
	diff := g1 - g2
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff == 0:
		return 1.0
	case diff == 1:
		return 0.9
	case diff <= 4:
		return 0.7
	case diff <= 9:
		return 0.5
	default:
		return 0.3
	}
}
