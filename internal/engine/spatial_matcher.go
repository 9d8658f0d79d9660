package engine

import (
	"math"
	"sort"

	"github.com/mmcloughlin/geohash"

	"github.com/ourkan95/Duplicate-Detector/internal/debug"
	"github.com/ourkan95/Duplicate-Detector/internal/match"
)

// EarthRadiusMeters is the mean radius of the spherical Earth model
const EarthRadiusMeters = 6371000.0

// polarBlockingLimit is the latitude above which ScoreWithin scans every pair
const polarBlockingLimit = 85.0

// DistanceBucket maps a maximum distance to a similarity
type DistanceBucket struct {
	MaxMeters  float64
	Similarity float64
}

// DefaultDistanceBuckets returns the production bucket table, closest first
func DefaultDistanceBuckets() []DistanceBucket {
	return []DistanceBucket{
		{MaxMeters: 30, Similarity: 1.0},
		{MaxMeters: 100, Similarity: 0.8},
		{MaxMeters: 200, Similarity: 0.6},
		{MaxMeters: 300, Similarity: 0.5},
	}
}

// HaversineMeters returns the great-circle distance between two points
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DistanceScorer turns coordinate pairs into a distance and a bucketed similarity
type DistanceScorer struct {
	buckets []DistanceBucket
}

// NewDistanceScorer creates a scorer with the default buckets
func NewDistanceScorer() *DistanceScorer {
	return &DistanceScorer{buckets: DefaultDistanceBuckets()}
}

// Score returns the distance in meters and its similarity bucket
func (ds *DistanceScorer) Score(lat1, lon1, lat2, lon2 float64) (float64, float64) {
	meters := HaversineMeters(lat1, lon1, lat2, lon2)
	return meters, ds.Similarity(meters)
}

// Similarity is a non-increasing step function of distance
func (ds *DistanceScorer) Similarity(meters float64) float64 {
	for _, b := range ds.buckets {
		if meters <= b.MaxMeters {
			return b.Similarity
		}
	}
	return 0.0
}

// ReachMeters is the largest distance that still scores at least threshold,
// or +Inf when a zero similarity would be retained
func (ds *DistanceScorer) ReachMeters(threshold float64) float64 {
	if threshold <= 0 {
		return math.Inf(1)
	}
	reach := 0.0
	for _, b := range ds.buckets {
		if b.Similarity >= threshold && b.MaxMeters > reach {
			reach = b.MaxMeters
		}
	}
	return reach
}

func (ds *DistanceScorer) scorePair(set *match.ListingSet, i, j int) (match.PairScore, bool) {
	a, b := set.At(i).Coordinates, set.At(j).Coordinates
	if a == nil || b == nil {
		return match.PairScore{}, false
	}

	meters, sim := ds.Score(a.Lat, a.Lon, b.Lat, b.Lon)
	return match.PairScore{
		Key:               set.Key(i, j),
		GeoDistanceMeters: match.Measured(match.Round(meters, 1)),
		GeoSimilarity:     match.Measured(sim),
	}, true
}

// ScoreAll scores every pair where both listings have coordinates
func (ds *DistanceScorer) ScoreAll(set *match.ListingSet) []match.PairScore {
	scores := make([]match.PairScore, 0, set.PairCount())
	set.Pairs(func(i, j int) {
		if ps, ok := ds.scorePair(set, i, j); ok {
			scores = append(scores, ps)
		}
	})
	return scores
}

// ScoreWithin returns the pairs whose similarity reaches threshold, scoring
// only listings that share or neighbour a geohash cell. The result equals
// match.Retain over ScoreAll for the same threshold.
func (ds *DistanceScorer) ScoreWithin(localDebug bool, set *match.ListingSet, threshold float64) []match.PairScore {
	reach := ds.ReachMeters(threshold)
	if math.IsInf(reach, 1) {
		return match.Retain(ds.ScoreAll(set), geoSignal, threshold)
	}

	maxAbsLat := 0.0
	for i := 0; i < set.Len(); i++ {
		if c := set.At(i).Coordinates; c != nil {
			maxAbsLat = math.Max(maxAbsLat, math.Abs(c.Lat))
		}
	}
	// geohash neighbours do not wrap across the poles
	if maxAbsLat > polarBlockingLimit {
		debug.DebugOutput(localDebug, "Geohash blocking off: latitude %.4f beyond %.0f", maxAbsLat, polarBlockingLimit)
		return match.Retain(ds.ScoreAll(set), geoSignal, threshold)
	}

	precision := geohashPrecision(reach, maxAbsLat)
	cells := make(map[string][]int)
	hashes := make([]string, set.Len())
	for i := 0; i < set.Len(); i++ {
		c := set.At(i).Coordinates
		if c == nil {
			continue
		}
		h := geohash.EncodeWithPrecision(c.Lat, c.Lon, precision)
		hashes[i] = h
		cells[h] = append(cells[h], i)
	}

	debug.DebugOutput(localDebug, "Geohash blocking: reach %.0fm, precision %d, %d cells", reach, precision, len(cells))

	var scores []match.PairScore
	for i, h := range hashes {
		if h == "" {
			continue
		}
		visited := make(map[string]bool, 9)
		for _, cell := range append(geohash.Neighbors(h), h) {
			if visited[cell] {
				continue
			}
			visited[cell] = true
			for _, j := range cells[cell] {
				if j <= i {
					continue
				}
				ps, ok := ds.scorePair(set, i, j)
				if ok && ps.GeoSimilarity.Value >= threshold {
					scores = append(scores, ps)
				}
			}
		}
	}

	sort.Slice(scores, func(a, b int) bool {
		return scores[a].Key.Less(scores[b].Key)
	})
	return scores
}

func geoSignal(ps match.PairScore) match.Signal {
	return ps.GeoSimilarity
}

// geohashPrecision picks the longest geohash whose cells are at least reach
// meters on their shortest side at the given latitude, so any two points
// within reach fall in the same or adjacent cells
func geohashPrecision(reach, maxAbsLat float64) uint {
	// cell height and equatorial width in meters for precisions 1..9
	heights := []float64{4992600, 624100, 156000, 19500, 4890, 609.4, 152.4, 19.1, 4.8}
	widths := []float64{5009400, 1252300, 156500, 39100, 4890, 1220, 152.9, 38.2, 4.8}

	shrink := math.Cos(toRadians(math.Min(maxAbsLat, 89.9)))
	precision := uint(1)
	for i := range heights {
		if math.Min(heights[i], widths[i]*shrink) >= reach {
			precision = uint(i + 1)
		}
	}
	return precision
}
