package match

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyID is returned for a listing without an id
	ErrEmptyID = errors.New("listing id is empty")
	// ErrDuplicateID is returned when two listings share an id
	ErrDuplicateID = errors.New("duplicate listing id")
	// ErrInvalidCoordinates is returned for latitude/longitude outside degree range
	ErrInvalidCoordinates = errors.New("coordinates out of range")
)

// ValidationError ties a validation failure to the offending listing
type ValidationError struct {
	Index     int
	ListingID string
	Err       error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("listing %q (row %d): %v", e.ListingID, e.Index+1, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateListings checks id uniqueness and coordinate ranges
func ValidateListings(listings []Listing) error {
	seen := make(map[string]int, len(listings))
	for i, l := range listings {
		id := strings.TrimSpace(l.ID)
		if id == "" {
			return &ValidationError{Index: i, ListingID: l.ID, Err: ErrEmptyID}
		}
		if _, dup := seen[id]; dup {
			return &ValidationError{Index: i, ListingID: l.ID, Err: ErrDuplicateID}
		}
		seen[id] = i

		if l.Coordinates != nil && !l.Coordinates.Valid() {
			return &ValidationError{
				Index:     i,
				ListingID: l.ID,
				Err:       fmt.Errorf("%w: lat=%f lon=%f", ErrInvalidCoordinates, l.Coordinates.Lat, l.Coordinates.Lon),
			}
		}
	}
	return nil
}

// ListingSet is the validated, indexed input of one pipeline run
type ListingSet struct {
	listings []Listing
	index    map[string]int
}

// NewListingSet validates listings and builds the id lookup
func NewListingSet(listings []Listing) (*ListingSet, error) {
	if err := ValidateListings(listings); err != nil {
		return nil, err
	}

	owned := make([]Listing, len(listings))
	copy(owned, listings)

	index := make(map[string]int, len(owned))
	for i, l := range owned {
		index[l.ID] = i
	}

	return &ListingSet{listings: owned, index: index}, nil
}

// Len returns the number of listings
func (s *ListingSet) Len() int {
	return len(s.listings)
}

// At returns the listing at position i
func (s *ListingSet) At(i int) Listing {
	return s.listings[i]
}

// Lookup finds a listing by id
func (s *ListingSet) Lookup(id string) (Listing, bool) {
	i, ok := s.index[id]
	if !ok {
		return Listing{}, false
	}
	return s.listings[i], true
}

// Listings returns a copy of the underlying slice
func (s *ListingSet) Listings() []Listing {
	out := make([]Listing, len(s.listings))
	copy(out, s.listings)
	return out
}

// Field extracts one text value per listing, in set order
func (s *ListingSet) Field(get func(Listing) string) []string {
	values := make([]string, len(s.listings))
	for i, l := range s.listings {
		values[i] = get(l)
	}
	return values
}

// PairCount is n·(n-1)/2
func (s *ListingSet) PairCount() int {
	n := len(s.listings)
	return n * (n - 1) / 2
}

// Key returns the canonical key for the listings at i and j
func (s *ListingSet) Key(i, j int) PairKey {
	return NewPairKey(s.listings[i].ID, s.listings[j].ID)
}

// Pairs calls fn for every unordered index pair i < j
func (s *ListingSet) Pairs(fn func(i, j int)) {
	n := len(s.listings)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			fn(i, j)
		}
	}
}
