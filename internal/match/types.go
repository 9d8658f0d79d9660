package match

import (
	"strconv"
)

// Coordinates holds a WGS84 position in signed decimal degrees
type Coordinates struct {
	Lat float64
	Lon float64
}

// Valid reports whether both components are within degree range
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Address is the structured form produced by the address parser
type Address struct {
	HouseNumber  string // staged code, e.g. "12-3-4"
	Area         string // suburb, falling back to road
	CityDistrict string
	City         string
	Postcode     string
	Country      string
}

// Listing represents one catalog entry scraped from a source site
type Listing struct {
	ID                  string
	Name                string
	StandardizedAddress string // full address text as supplied
	Address             Address
	Coordinates         *Coordinates // optional
	URL                 string
}

// PairKey identifies an unordered pair of distinct listings.
// ID1 always sorts before ID2.
type PairKey struct {
	ID1 string
	ID2 string
}

// NewPairKey canonicalizes a and b into a PairKey
func NewPairKey(a, b string) PairKey {
	if compareIDs(b, a) < 0 {
		a, b = b, a
	}
	return PairKey{ID1: a, ID2: b}
}

// Less orders keys by ID1 then ID2
func (k PairKey) Less(other PairKey) bool {
	if c := compareIDs(k.ID1, other.ID1); c != 0 {
		return c < 0
	}
	return compareIDs(k.ID2, other.ID2) < 0
}

func (k PairKey) String() string {
	return k.ID1 + "|" + k.ID2
}

// compareIDs orders numeric ids numerically and everything else lexically,
// so "9" sorts before "10".
func compareIDs(a, b string) int {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	if aErr == nil && bErr == nil {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		// "007" and "7" parse equal; fall through to keep the order total
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// PairScore carries the signals one scorer produced for a pair.
// Unset signals are undefined, not zero.
type PairScore struct {
	Key               PairKey
	AddressScore      Signal
	GeoSimilarity     Signal
	GeoDistanceMeters Signal
	NameScore         Signal
}

// CombinedCandidate is a pair that passed the global threshold
type CombinedCandidate struct {
	Key           PairKey
	Name1         string
	Address1      string
	Name2         string
	Address2      string
	AddressScore  float64
	GeoSimilarity float64
	NameScore     float64
	CombinedScore float64
}

// MismatchRecord is the per-listing name vs URL slug comparison
type MismatchRecord struct {
	ListingID   string
	Name        string
	URL         string
	CleanedName string
	CleanedSlug string
	Similarity  float64
	IsMismatch  bool
}
