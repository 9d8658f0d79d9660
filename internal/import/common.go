package import_pkg

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/ourkan95/Duplicate-Detector/internal/match"
	"github.com/ourkan95/Duplicate-Detector/internal/normalize"
	"github.com/ourkan95/Duplicate-Detector/internal/parser"
)

// Input column names, matched case-insensitively
const (
	ColumnID        = "hotelId"
	ColumnName      = "name"
	ColumnAddress   = "address_standardized"
	ColumnCity      = "city"
	ColumnLatitude  = "latitude"
	ColumnLongitude = "longitude"
	ColumnURL       = "dealUrl"
)

var (
	// ErrMissingColumn is returned when a required header is absent
	ErrMissingColumn = errors.New("required column missing")
	// ErrUnsupportedFormat is returned for files that are neither .csv nor .xlsx
	ErrUnsupportedFormat = errors.New("unsupported input format")
)

// ListingImporter reads listing spreadsheets and parses their addresses
type ListingImporter struct {
	parser parser.Parser
	sheet  string
}

// NewListingImporter creates an importer that parses addresses with p
func NewListingImporter(p parser.Parser) *ListingImporter {
	return &ListingImporter{parser: p}
}

// WithSheet selects the worksheet read from .xlsx files; the first sheet by default
func (li *ListingImporter) WithSheet(name string) *ListingImporter {
	li.sheet = name
	return li
}

// ImportFile reads a .csv or .xlsx file
func (li *ListingImporter) ImportFile(path string) ([]match.Listing, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return li.ImportCSV(file)
	case ".xlsx", ".xlsm":
		return li.ImportXLSX(file)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ImportCSV reads listings from CSV with a header row
func (li *ListingImporter) ImportCSV(r io.Reader) ([]match.Listing, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return li.fromRows(rows)
}

// ImportXLSX reads listings from a workbook
func (li *ListingImporter) ImportXLSX(r io.Reader) ([]match.Listing, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := li.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return li.fromRows(rows)
}

// columnIndex maps lowercased header names to positions
type columnIndex map[string]int

func newColumnIndex(header []string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

func (ci columnIndex) has(column string) bool {
	_, ok := ci[strings.ToLower(column)]
	return ok
}

func (ci columnIndex) get(record []string, column string) string {
	i, ok := ci[strings.ToLower(column)]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (li *ListingImporter) fromRows(rows [][]string) ([]match.Listing, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s (file is empty)", ErrMissingColumn, ColumnID)
	}

	columns := newColumnIndex(rows[0])
	for _, required := range []string{ColumnID, ColumnName} {
		if !columns.has(required) {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	listings := make([]match.Listing, 0, len(rows)-1)
	skipped := 0

	for n, record := range rows[1:] {
		if blankRecord(record) {
			skipped++
			continue
		}

		listing, err := li.mapRecord(columns, record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		listings = append(listings, listing)
	}

	log.Info().Int("listings", len(listings)).Int("skipped", skipped).Msg("listings imported")
	return listings, nil
}

func (li *ListingImporter) mapRecord(columns columnIndex, record []string) (match.Listing, error) {
	id := normalizeID(columns.get(record, ColumnID))
	address := columns.get(record, ColumnAddress)
	if normalize.IsBlank(address) {
		address = ""
	}

	structured, err := parser.ParseAddress(li.parser, address, columns.get(record, ColumnCity))
	if err != nil {
		return match.Listing{}, fmt.Errorf("parsing address of %s: %w", id, err)
	}

	return match.Listing{
		ID:                  id,
		Name:                columns.get(record, ColumnName),
		StandardizedAddress: address,
		Address:             structured,
		Coordinates:         parseCoordinates(id, columns.get(record, ColumnLatitude), columns.get(record, ColumnLongitude)),
		URL:                 columns.get(record, ColumnURL),
	}, nil
}

// parseCoordinates returns nil unless both values parse
func parseCoordinates(id, lat, lon string) *match.Coordinates {
	if normalize.IsBlank(lat) || normalize.IsBlank(lon) {
		return nil
	}
	latF, latErr := normalize.ParseFloat(lat)
	lonF, lonErr := normalize.ParseFloat(lon)
	if latErr != nil || lonErr != nil {
		log.Warn().Str("listing", id).Str("latitude", lat).Str("longitude", lon).Msg("unparseable coordinates treated as absent")
		return nil
	}
	return &match.Coordinates{Lat: latF, Lon: lonF}
}

// normalizeID turns spreadsheet renderings like "123.0" back into "123"
func normalizeID(raw string) string {
	if f, err := strconv.ParseFloat(raw, 64); err == nil && strings.Contains(raw, ".") && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return raw
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
