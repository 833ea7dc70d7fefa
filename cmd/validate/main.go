// Command validate checks the data-quality guarantees of a transformed or
// combined accessibility CSV: required columns, sequential ids, unique names,
// coordinates inside the bounding box and scores in range. When a Turtle
// export is given it also checks that every row became a schema:Place.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -input accesibility_data/combined.csv \
//	  -turtle rdf/accesibilidad.ttl \
//	  -bbox 37.8,38.9,-0.9,0.1
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/accessibility-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/accessibility-etl/internal/domain"
	"github.com/couchcryptid/accessibility-etl/internal/linkeddata"
	"github.com/knakk/rdf"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type options struct {
	input  string
	turtle string
	box    domain.BoundingBox
}

func main() {
	input := flag.String("input", "", "transformed or combined CSV")
	turtle := flag.String("turtle", "", "optional Turtle export of the same CSV")
	bbox := flag.String("bbox", "37.8,38.9,-0.9,0.1", "minLat,maxLat,minLon,maxLon")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}
	box, err := domain.ParseBoundingBox(*bbox)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	if code := run(os.Stdout, options{input: *input, turtle: *turtle, box: box}); code != 0 {
		os.Exit(code)
	}
}

func run(w io.Writer, opts options) int {
	fmt.Fprintln(w, "=== Accessibility Data Validation ===")
	fmt.Fprintln(w)

	header, rows, err := loadCSV(opts.input)
	if err != nil {
		fmt.Fprintf(w, "FATAL: load %s: %v\n", opts.input, err)
		return 1
	}
	table := domain.ParseTable(header, rows)

	phases := []*phase{
		validateSchema(header, table),
		validateUniqueness(table),
		validateCoordinates(table, opts.box),
		validateScores(table, rows, header),
	}
	if opts.turtle != "" {
		phases = append(phases, validateLinkedData(opts.turtle, table))
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Records: %d rows, %d criteria, %d extra columns\n",
		len(table.Places), len(table.Criteria), len(table.ExtraColumns))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

func loadCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	header, rows, err := csvfile.ReadRecords(f, ',')
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("no data rows in %s", path)
	}
	return header, rows, nil
}

// line returns the 1-based file line of data row i.
func line(i int) int { return i + 2 }

// ── Phase 1: Schema ──

func validateSchema(header []string, t domain.Table) *phase {
	p := &phase{name: "Phase 1: Schema (columns, ids)"}

	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[strings.TrimSpace(col)] = true
	}
	for _, col := range []string{domain.ColumnName, domain.ColumnLat, domain.ColumnLon} {
		if !present[col] {
			p.errorf("missing required column %q", col)
		}
	}
	if present[domain.ColumnWKT] {
		p.errorf("raw %s column still present; run transform with --reproject", domain.ColumnWKT)
	}
	if !present[string(domain.CriterionTotal)] {
		p.errorf("missing score column %q", domain.CriterionTotal)
	}

	if present[domain.ColumnID] {
		for i, pl := range t.Places {
			if pl.ID != i+1 {
				p.errorf("line %d: id %d, expected %d", line(i), pl.ID, i+1)
			}
		}
	}
	return p
}

// ── Phase 2: Uniqueness ──

func validateUniqueness(t domain.Table) *phase {
	p := &phase{name: "Phase 2: Uniqueness (normalized names)"}

	first := map[string]int{}
	for i, pl := range t.Places {
		key := strings.TrimSpace(domain.NormalizeText(strings.TrimSpace(pl.Name)))
		if key == "" {
			p.errorf("line %d: empty name", line(i))
			continue
		}
		if prev, ok := first[key]; ok {
			p.errorf("line %d: name %q duplicates line %d", line(i), pl.Name, line(prev))
			continue
		}
		first[key] = i
	}
	return p
}

// ── Phase 3: Coordinates ──

func validateCoordinates(t domain.Table, box domain.BoundingBox) *phase {
	p := &phase{name: "Phase 3: Coordinates (bounding box)"}
	for i, pl := range t.Places {
		switch {
		case pl.Geo.IsZero():
			p.errorf("line %d (%s): missing coordinates", line(i), pl.Name)
		case !box.Contains(pl.Geo):
			p.errorf("line %d (%s): %g,%g outside bounding box", line(i), pl.Name, pl.Geo.Lat, pl.Geo.Lon)
		}
	}
	return p
}

// ── Phase 4: Scores ──

// validateScores reads the raw score cells: a transformed file must hold
// integers, not survey labels.
func validateScores(t domain.Table, rows [][]string, header []string) *phase {
	p := &phase{name: "Phase 4: Scores (integer, in range)"}

	idx := map[domain.Criterion]int{}
	for i, col := range header {
		if domain.IsCriterion(strings.TrimSpace(col)) {
			idx[domain.Criterion(strings.TrimSpace(col))] = i
		}
	}

	for i, row := range rows {
		for _, c := range t.Criteria {
			j := idx[c]
			if j >= len(row) {
				p.errorf("line %d: %s missing", line(i), c)
				continue
			}
			n, err := strconv.Atoi(strings.TrimSpace(row[j]))
			if err != nil {
				p.errorf("line %d: %s=%q is not a score", line(i), c, row[j])
				continue
			}
			if n < domain.MinScore || n > domain.MaxScore {
				p.errorf("line %d: %s=%d outside [%d, %d]", line(i), c, n, domain.MinScore, domain.MaxScore)
			}
		}
	}
	return p
}

// ── Phase 5: Linked data ──

func validateLinkedData(path string, t domain.Table) *phase {
	p := &phase{name: "Phase 5: Linked data (Turtle)"}

	f, err := os.Open(path)
	if err != nil {
		p.errorf("open: %v", err)
		return p
	}
	defer f.Close()

	triples, err := rdf.NewTripleDecoder(f, rdf.Turtle).DecodeAll()
	if err != nil {
		p.errorf("decode: %v", err)
		return p
	}

	places := map[string]bool{}
	named := map[string]bool{}
	for _, tr := range triples {
		subj := tr.Subj.String()
		switch tr.Pred.String() {
		case linkeddata.NSRDF + "type":
			if tr.Obj.String() == linkeddata.NSSchema+"Place" {
				places[subj] = true
			}
		case linkeddata.NSSchema + "name":
			named[subj] = true
		}
	}

	if len(places) != len(t.Places) {
		p.errorf("%d schema:Place subjects, CSV has %d rows", len(places), len(t.Places))
	}
	for i, pl := range t.Places {
		if pl.ID == 0 {
			continue
		}
		iri := linkeddata.PlaceIRI(pl.ID)
		if !places[iri] {
			p.errorf("line %d: %s not typed schema:Place", line(i), iri)
		} else if pl.Name != "" && !named[iri] {
			p.errorf("line %d: %s has no schema:name", line(i), iri)
		}
	}
	return p
}
