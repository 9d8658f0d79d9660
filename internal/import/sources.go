package import_pkg

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ourkan95/Duplicate-Detector/internal/match"
)

// SupportedExtensions lists the input formats ImportFile accepts
var SupportedExtensions = []string{".csv", ".xlsx", ".xlsm"}

// IsSupported reports whether path has an importable extension
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// LoadListingSet imports path and validates the result into a ListingSet
func (li *ListingImporter) LoadListingSet(path string) (*match.ListingSet, error) {
	listings, err := li.ImportFile(path)
	if err != nil {
		return nil, err
	}

	set, err := match.NewListingSet(listings)
	if err != nil {
		return nil, fmt.Errorf("invalid listings in %s: %w", filepath.Base(path), err)
	}
	return set, nil
}
