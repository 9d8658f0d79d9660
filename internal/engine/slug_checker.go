package engine

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ourkan95/Duplicate-Detector/internal/embeddings"
	"github.com/ourkan95/Duplicate-Detector/internal/match"
	"github.com/ourkan95/Duplicate-Detector/internal/normalize"
)

// DefaultMismatchThreshold flags listings whose name/slug similarity is below it
const DefaultMismatchThreshold = 0.9

const (
	slugSemanticWeight = 0.7
	slugFuzzyWeight    = 0.3
)

// siteRule extracts the name-bearing slug for one family of hosts
type siteRule struct {
	name    string
	matches func(host string, parts []string) bool
	extract func(parts []string, slug string) string
}

func hostContains(fragment string) func(string, []string) bool {
	return func(host string, _ []string) bool {
		return strings.Contains(host, fragment)
	}
}

// siteRules are tried in order; the first match wins
var siteRules = []siteRule{
	{
		// /Tokyo-Hotels-Park-Hotel.h123.Hotel-Information
		name:    "expedia",
		matches: hostContains("expedia"),
		extract: func(parts []string, slug string) string {
			if len(parts) >= 2 {
				slug = parts[len(parts)-2]
			}
			return beforeDot(slug)
		},
	},
	{
		// /hotel/jp/park-tokyo.en-gb.html
		name:    "booking",
		matches: hostContains("booking"),
		extract: func(_ []string, slug string) string {
			return beforeDot(slug)
		},
	},
	{
		// /en-gb/park-hotel-tokyo/hotel/tokyo-jp.html
		name:    "agoda",
		matches: hostContains("agoda"),
		extract: func(parts []string, slug string) string {
			for i, part := range parts {
				if normalize.IsLocaleSegment(part) {
					continue
				}
				if i+1 < len(parts) && strings.ToLower(parts[i+1]) == "hotel" {
					slug = part
					break
				}
			}
			return beforeDot(slug)
		},
	},
	{
		// /en-US/oar/park-hotel-tokyo?search=...
		name: "trivago",
		matches: func(host string, parts []string) bool {
			return strings.Contains(host, "trivago") && indexOf(parts, "oar") >= 0
		},
		extract: func(parts []string, slug string) string {
			if idx := indexOf(parts, "oar"); idx+1 < len(parts) {
				return parts[idx+1]
			}
			return slug
		},
	},
}

// ExtractSlug returns the URL path segment that carries the listing name.
// Unknown hosts use the last non-empty path segment.
func ExtractSlug(rawURL string) string {
	host, path := splitURL(rawURL)

	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}

	slug := ""
	if len(parts) > 0 {
		slug = parts[len(parts)-1]
	}

	host = strings.ToLower(host)
	for _, rule := range siteRules {
		if rule.matches(host, parts) {
			return rule.extract(parts, slug)
		}
	}
	return slug
}

// splitURL returns the host and the still-escaped path of rawURL.
// Input without a scheme is treated as a bare path.
func splitURL(rawURL string) (string, string) {
	rawURL = strings.TrimSpace(rawURL)
	if u, err := url.Parse(rawURL); err == nil {
		return u.Host, u.EscapedPath()
	}

	// Malformed escapes make url.Parse fail; cut the parts by hand
	rest := rawURL
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	i := strings.Index(rest, "://")
	if i < 0 {
		return "", rest
	}
	rest = rest[i+3:]
	if j := strings.Index(rest, "/"); j >= 0 {
		return rest[:j], rest[j:]
	}
	return rest, ""
}

func beforeDot(s string) string {
	if i := strings.Index(s, "."); i >= 0 {
		return s[:i]
	}
	return s
}

func indexOf(parts []string, target string) int {
	for i, p := range parts {
		if p == target {
			return i
		}
	}
	return -1
}

// SlugChecker compares each listing's display name with its URL slug
type SlugChecker struct {
	embedder  embeddings.Embedder
	stopwords normalize.StopwordSet
	threshold float64
	digits    int
}

// NewSlugChecker creates a checker with the slug stopword set
func NewSlugChecker(embedder embeddings.Embedder, threshold float64) *SlugChecker {
	return &SlugChecker{
		embedder:  embedder,
		stopwords: normalize.SlugStopwords(),
		threshold: threshold,
		digits:    3,
	}
}

// Threshold returns the mismatch cut-off
func (sc *SlugChecker) Threshold() float64 {
	return sc.threshold
}

// Check scores a single name against a single URL
func (sc *SlugChecker) Check(ctx context.Context, name, rawURL string) (match.MismatchRecord, error) {
	records, err := sc.check(ctx, []string{""}, []string{name}, []string{rawURL})
	if err != nil {
		return match.MismatchRecord{}, err
	}
	return records[0], nil
}

// CheckAll scores every listing, embedding names and slugs in one batch
func (sc *SlugChecker) CheckAll(ctx context.Context, set *match.ListingSet) ([]match.MismatchRecord, error) {
	ids := set.Field(func(l match.Listing) string { return l.ID })
	names := set.Field(func(l match.Listing) string { return l.Name })
	urls := set.Field(func(l match.Listing) string { return l.URL })
	return sc.check(ctx, ids, names, urls)
}

func (sc *SlugChecker) check(ctx context.Context, ids, names, urls []string) ([]match.MismatchRecord, error) {
	cleanNames := make([]string, len(names))
	cleanSlugs := make([]string, len(urls))
	for i := range names {
		cleanNames[i] = normalize.CleanSlugText(names[i], sc.stopwords)
		cleanSlugs[i] = normalize.CleanSlugText(ExtractSlug(urls[i]), sc.stopwords)
	}

	semantic, err := embeddings.RowSimilarities(ctx, sc.embedder, cleanNames, cleanSlugs)
	if err != nil {
		return nil, fmt.Errorf("embedding names and slugs: %w", err)
	}

	records := make([]match.MismatchRecord, len(names))
	for i := range names {
		similarity := 0.0
		if cleanNames[i] != "" && cleanSlugs[i] != "" {
			similarity = slugSemanticWeight*semantic[i].Or(0.0) +
				slugFuzzyWeight*TokenSetRatio(cleanNames[i], cleanSlugs[i])
		}
		similarity = match.Round(similarity, sc.digits)

		records[i] = match.MismatchRecord{
			ListingID:   ids[i],
			Name:        names[i],
			URL:         urls[i],
			CleanedName: cleanNames[i],
			CleanedSlug: cleanSlugs[i],
			Similarity:  similarity,
			IsMismatch:  similarity < sc.threshold,
		}
	}
	return records, nil
}

// Mismatches returns the records flagged as mismatches
func Mismatches(records []match.MismatchRecord) []match.MismatchRecord {
	var out []match.MismatchRecord
	for _, r := range records {
		if r.IsMismatch {
			out = append(out, r)
		}
	}
	return out
}
