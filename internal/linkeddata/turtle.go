package linkeddata

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/couchcryptid/accessibility-etl/internal/domain"
	"github.com/knakk/rdf"
)

// WriteTurtle serializes triples as Turtle with the schema, ex, wd and xsd
// prefixes bound. Triples of one subject must be contiguous.
func WriteTurtle(w io.Writer, triples []rdf.Triple) error {
	enc := rdf.NewTripleEncoder(w, rdf.Turtle)
	enc.GenerateNamespaces = true
	for iri, prefix := range prefixes {
		enc.Namespaces[iri] = prefix
	}
	for _, t := range triples {
		if err := enc.Encode(t); err != nil {
			return fmt.Errorf("encode triple: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush turtle: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Sink writes a table as a Turtle file. It implements pipeline.Loader.
type Sink struct {
	Path  string
	Vocab Vocabulary
}

// NewSink creates a Turtle file sink.
func NewSink(path string, vocab Vocabulary) *Sink {
	return &Sink{Path: path, Vocab: vocab}
}

func (s *Sink) Name() string { return "turtle:" + s.Path }

// Load builds the graph and replaces the file atomically.
func (s *Sink) Load(_ context.Context, t domain.Table) error {
	triples, err := BuildGraph(t.Places, s.Vocab)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after rename

	if err := WriteTurtle(tmp, triples); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", s.Path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", s.Path, err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("%s: %w", s.Path, err)
	}
	return nil
}
