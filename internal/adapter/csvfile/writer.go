package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/accessibility-etl/internal/domain"
)

// WriteRecords writes a header and raw rows.
func WriteRecords(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// Header returns the output column layout for a table: id when any place has
// one, name, the present criteria, WKT while any geometry is still raw,
// coordinates, address, category, then passthrough columns.
func Header(t domain.Table) []string {
	var h []string
	if anyPlace(t, func(p domain.Place) bool { return p.ID != 0 }) {
		h = append(h, domain.ColumnID)
	}
	h = append(h, domain.ColumnName)
	for _, c := range t.Criteria {
		h = append(h, string(c))
	}
	if anyPlace(t, func(p domain.Place) bool { return p.WKT != "" }) {
		h = append(h, domain.ColumnWKT)
	}
	h = append(h,
		domain.ColumnLat,
		domain.ColumnLon,
		domain.ColumnStreet,
		domain.ColumnBarrio,
		domain.ColumnCity,
		domain.ColumnPostalCode,
		domain.ColumnCategory,
	)
	return append(h, t.ExtraColumns...)
}

func anyPlace(t domain.Table, pred func(domain.Place) bool) bool {
	for _, p := range t.Places {
		if pred(p) {
			return true
		}
	}
	return false
}

// Row renders one place in the given column layout.
func Row(header []string, p domain.Place) []string {
	row := make([]string, len(header))
	for i, col := range header {
		row[i] = cell(col, p)
	}
	return row
}

func cell(col string, p domain.Place) string {
	switch col {
	case domain.ColumnID:
		return strconv.Itoa(p.ID)
	case domain.ColumnName:
		return p.Name
	case domain.ColumnWKT:
		return p.WKT
	case domain.ColumnLat:
		if p.Geo.IsZero() {
			return ""
		}
		return strconv.FormatFloat(p.Geo.Lat, 'f', -1, 64)
	case domain.ColumnLon:
		if p.Geo.IsZero() {
			return ""
		}
		return strconv.FormatFloat(p.Geo.Lon, 'f', -1, 64)
	case domain.ColumnStreet:
		return p.Address.Street
	case domain.ColumnBarrio:
		return p.Address.Neighborhood
	case domain.ColumnCity:
		return p.Address.City
	case domain.ColumnPostalCode:
		return p.Address.PostalCode
	case domain.ColumnCategory:
		return p.Category
	}

	if domain.IsCriterion(col) {
		c := domain.Criterion(col)
		if n, ok := p.Score(c); ok {
			return strconv.Itoa(n)
		}
		return p.Labels[c]
	}
	return p.Extra[col]
}

// WriteTable writes a survey table as CSV.
func WriteTable(w io.Writer, t domain.Table) error {
	header := Header(t)
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range t.Places {
		if err := cw.Write(Row(header, p)); err != nil {
			return fmt.Errorf("write csv row %q: %w", p.Name, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteTableFile writes t to path, creating parent directories. Output goes to
// a temporary sibling that is renamed into place; path never holds a partial file.
func WriteTableFile(path string, t domain.Table) error {
	return writeFileAtomic(path, func(w io.Writer) error { return WriteTable(w, t) })
}

// WriteRecordsFile writes raw rows to path atomically.
func WriteRecordsFile(path string, header []string, rows [][]string) error {
	return writeFileAtomic(path, func(w io.Writer) error { return WriteRecords(w, header, rows) })
}

func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// Sink writes the transformed table to a file. It implements pipeline.Loader.
type Sink struct {
	Path string
}

// NewSink creates a file sink.
func NewSink(path string) *Sink {
	return &Sink{Path: path}
}

// Name identifies the sink in logs.
func (s *Sink) Name() string { return "csv:" + s.Path }

// Load writes the table, replacing any existing file.
func (s *Sink) Load(_ context.Context, t domain.Table) error {
	return WriteTableFile(s.Path, t)
}
