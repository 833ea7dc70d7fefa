// Package csvfile reads and writes survey tables as CSV files.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/accessibility-etl/internal/domain"
)

// ReadRecords reads a CSV stream and splits off the header row. Rows may have
// fewer fields than the header.
func ReadRecords(r io.Reader, comma rune) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	if comma != 0 {
		cr.Comma = comma
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errors.New("read csv: empty input")
		}
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}

	var rows [][]string
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// ReadTable parses a survey CSV stream into a domain table.
func ReadTable(r io.Reader, comma rune) (domain.Table, error) {
	header, rows, err := ReadRecords(r, comma)
	if err != nil {
		return domain.Table{}, err
	}
	return domain.ParseTable(header, rows), nil
}

// ReadTableFile opens path and parses it as a survey table.
func ReadTableFile(path string, comma rune) (domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadTable(f, comma)
	if err != nil {
		return domain.Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Source reads a survey table from a file. It implements pipeline.Extractor.
type Source struct {
	Path  string
	Comma rune // zero means ','
}

// NewSource creates a comma-separated file source.
func NewSource(path string) *Source {
	return &Source{Path: path, Comma: ','}
}

// Extract reads the whole file.
func (s *Source) Extract(_ context.Context) (domain.Table, error) {
	return ReadTableFile(s.Path, s.Comma)
}
