// Package libpostal adapts the libpostal address parser. It needs the
// libpostal C library at build time.
package libpostal

import (
	postal "github.com/openvenues/gopostal/parser"

	"github.com/ourkan95/Duplicate-Detector/internal/normalize"
	"github.com/ourkan95/Duplicate-Detector/internal/parser"
)

// PostalParser parses with libpostal
type PostalParser struct{}

// NewPostalParser creates a libpostal-backed parser
func NewPostalParser() *PostalParser {
	return &PostalParser{}
}

// Parse runs libpostal and collapses its components with parser.LabelMap
func (pp *PostalParser) Parse(text string) (map[string]string, error) {
	if normalize.IsBlank(text) {
		return map[string]string{}, nil
	}

	found := postal.ParseAddress(text)
	components := make([]parser.Component, 0, len(found))
	for _, c := range found {
		components = append(components, parser.Component{Label: c.Label, Value: c.Value})
	}
	return parser.LabelMap(components), nil
}
