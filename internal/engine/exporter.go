package engine

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/ourkan95/Duplicate-Detector/internal/match"
)

// Export formats
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// Artifact base names, without extension
const (
	CandidatesArtifact     = "final_similarity_candidates"
	MismatchTableArtifact  = "url_hybrid_similarity"
	MismatchesOnlyArtifact = "hybrid_mismatched_candidates"
)

// ErrUnknownFormat is returned for an export format other than xlsx or csv
var ErrUnknownFormat = errors.New("unknown export format")

const sheetName = "Sheet1"

var candidateHeader = []string{
	"id1", "name1", "address1",
	"id2", "name2", "address2",
	"addr_score", "geo_sim", "name_score", "combined_score",
}

var mismatchHeader = []string{
	"hotelId", "name", "dealUrl", "trivago_name_clean", "url_slug_clean", "similarity", "is_mismatch",
}

// Table is a header plus string rows, the shape every artifact is written in
type Table struct {
	Header []string
	Rows   [][]string
}

// CandidateTable renders candidates in artifact column order
func CandidateTable(candidates []match.CombinedCandidate) Table {
	t := Table{Header: candidateHeader}
	for _, c := range candidates {
		t.Rows = append(t.Rows, []string{
			c.Key.ID1, c.Name1, c.Address1,
			c.Key.ID2, c.Name2, c.Address2,
			formatScore(c.AddressScore), formatScore(c.GeoSimilarity),
			formatScore(c.NameScore), formatScore(c.CombinedScore),
		})
	}
	return t
}

// MismatchTable renders mismatch records in artifact column order
func MismatchTable(records []match.MismatchRecord) Table {
	t := Table{Header: mismatchHeader}
	for _, r := range records {
		t.Rows = append(t.Rows, []string{
			r.ListingID, r.Name, r.URL, r.CleanedName, r.CleanedSlug,
			formatScore(r.Similarity), strconv.FormatBool(r.IsMismatch),
		})
	}
	return t
}

// PairTable renders one stage's pair scores with display names, like the
// per-stage previews of a run
func PairTable(set *match.ListingSet, scores []match.PairScore, column string, signal func(match.PairScore) match.Signal) Table {
	t := Table{Header: []string{"id1", "id2", column, "name1", "name2", "address1", "address2"}}
	for _, ps := range scores {
		a, _ := set.Lookup(ps.Key.ID1)
		b, _ := set.Lookup(ps.Key.ID2)
		value := ""
		if s := signal(ps); s.Defined {
			value = formatScore(s.Value)
		}
		t.Rows = append(t.Rows, []string{
			ps.Key.ID1, ps.Key.ID2, value, a.Name, b.Name, a.StandardizedAddress, b.StandardizedAddress,
		})
	}
	return t
}

// StageTable is a titled table printed after a run
type StageTable struct {
	Title string
	Table Table
}

// StageTables returns the per-stage previews of res in run order
func StageTables(set *match.ListingSet, res *Result) []StageTable {
	return []StageTable{
		{Title: "Address similarity", Table: PairTable(set, res.Address, "addr_score", addressSignal)},
		{Title: "Geo similarity", Table: PairTable(set, res.Geo, "geo_sim", geoSignal)},
		{Title: "Name similarity", Table: PairTable(set, res.Name, "name_score", nameSignal)},
		{Title: "Final duplicate candidates", Table: CandidateTable(res.Candidates)},
		{Title: "Potential mismatches", Table: MismatchTable(Mismatches(res.Mismatches))},
	}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Exporter writes run artifacts into one directory
type Exporter struct {
	dir    string
	format string
}

// NewExporter creates an exporter for format ("xlsx" or "csv")
func NewExporter(dir, format string) (*Exporter, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != FormatXLSX && format != FormatCSV {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return &Exporter{dir: dir, format: format}, nil
}

// Path returns the file path of an artifact
func (e *Exporter) Path(artifact string) string {
	return filepath.Join(e.dir, artifact+"."+e.format)
}

// ExportResult writes the candidates and both mismatch artifacts
func (e *Exporter) ExportResult(res *Result) ([]string, error) {
	written, err := e.ExportMismatches(res.Mismatches)
	if err != nil {
		return nil, err
	}
	path, err := e.ExportCandidates(res.Candidates)
	if err != nil {
		return nil, err
	}
	return append([]string{path}, written...), nil
}

// ExportCandidates writes the final candidate table
func (e *Exporter) ExportCandidates(candidates []match.CombinedCandidate) (string, error) {
	path := e.Path(CandidatesArtifact)
	if err := e.write(path, CandidateTable(candidates)); err != nil {
		return "", err
	}
	return path, nil
}

// ExportMismatches writes the full mismatch table and the flagged subset
func (e *Exporter) ExportMismatches(records []match.MismatchRecord) ([]string, error) {
	full := e.Path(MismatchTableArtifact)
	if err := e.write(full, MismatchTable(records)); err != nil {
		return nil, err
	}
	flagged := e.Path(MismatchesOnlyArtifact)
	if err := e.write(flagged, MismatchTable(Mismatches(records))); err != nil {
		return nil, err
	}
	return []string{full, flagged}, nil
}

func (e *Exporter) write(path string, t Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	switch e.format {
	case FormatCSV:
		err = writeCSV(path, t)
	default:
		err = writeXLSX(path, t)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	log.Info().Str("path", path).Int("rows", len(t.Rows)).Msg("artifact written")
	return nil
}

func writeCSV(path string, t Table) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(t.Header); err != nil {
		return err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return err
	}
	return file.Close()
}

func writeXLSX(path string, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	rows := append([][]string{t.Header}, t.Rows...)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			if i == 0 {
				values[j] = v
			} else {
				values[j] = cellValue(t.Header[j], v)
			}
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

// typedColumns are written as numbers or booleans instead of text
var typedColumns = map[string]bool{
	"addr_score": true, "geo_sim": true, "geo_distance_m": true, "name_score": true,
	"combined_score": true, "similarity": true, "is_mismatch": true,
}

func cellValue(column, v string) interface{} {
	if !typedColumns[column] {
		return v
	}
	if b, err := strconv.ParseBool(v); err == nil && column == "is_mismatch" {
		return b
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

// ReadTable reads an artifact written by Exporter back into a Table
func ReadTable(path string) (Table, error) {
	var rows [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case "." + FormatCSV:
		file, err := os.Open(path)
		if err != nil {
			return Table{}, err
		}
		defer file.Close()
		r := csv.NewReader(file)
		r.FieldsPerRecord = -1
		if rows, err = r.ReadAll(); err != nil {
			return Table{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
	case "." + FormatXLSX:
		f, err := excelize.OpenFile(path)
		if err != nil {
			return Table{}, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		if rows, err = f.GetRows(f.GetSheetName(0)); err != nil {
			return Table{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
	default:
		return Table{}, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	if len(rows) == 0 {
		return Table{}, nil
	}
	return Table{Header: rows[0], Rows: rows[1:]}, nil
}

// Records returns each row as a header-keyed map
func (t Table) Records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Header))
		for i, h := range t.Header {
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		out = append(out, rec)
	}
	return out
}

// PrintPreview writes the first n rows of t as an aligned table
func PrintPreview(w io.Writer, title string, t Table, n int) {
	if len(t.Rows) == 0 {
		fmt.Fprintf(w, "%s: no results\n\n", title)
		return
	}
	if n <= 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}

	fmt.Fprintf(w, "\n%s: showing first %d rows (of %d)\n", title, n, len(t.Rows))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Header, "\t"))
	for _, row := range t.Rows[:n] {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
	fmt.Fprintln(w)
}
