// Package linkeddata maps places to schema.org triples enriched with
// Wikidata links and serializes them as Turtle.
package linkeddata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/couchcryptid/accessibility-etl/internal/domain"
	"github.com/knakk/rdf"
)

// Namespaces used by the graph, keyed by IRI.
const (
	NSSchema   = "https://schema.org/"
	NSPlace    = "http://example.org/accesibilidad/"
	NSWikidata = "http://www.wikidata.org/entity/"
	NSXSD      = "http://www.w3.org/2001/XMLSchema#"
	NSRDF      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
)

// prefixes binds namespace IRIs to their Turtle prefixes.
var prefixes = map[string]string{
	NSSchema:   "schema",
	NSPlace:    "ex",
	NSWikidata: "wd",
	NSXSD:      "xsd",
}

// PlaceIRI returns the resource identifier of the place with the given id.
func PlaceIRI(id int) string {
	return fmt.Sprintf("%slugar_%d", NSPlace, id)
}

// graphBuilder accumulates triples for one subject at a time.
type graphBuilder struct {
	triples []rdf.Triple
	subj    rdf.IRI
	err     error
}

func (b *graphBuilder) iri(s string) rdf.IRI {
	iri, err := rdf.NewIRI(s)
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("iri %q: %w", s, err)
	}
	return iri
}

func (b *graphBuilder) add(pred string, obj rdf.Object) {
	if b.err != nil {
		return
	}
	b.triples = append(b.triples, rdf.Triple{Subj: b.subj, Pred: b.iri(NSSchema + pred), Obj: obj})
}

func (b *graphBuilder) addString(pred, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	lit, err := rdf.NewLiteral(value)
	if err != nil {
		b.err = err
		return
	}
	b.add(pred, lit)
}

func (b *graphBuilder) addTyped(pred, value, xsdType string) {
	b.add(pred, rdf.NewTypedLiteral(value, b.iri(NSXSD+xsdType)))
}

func (b *graphBuilder) addLink(pred, qid string) {
	b.add(pred, b.iri(NSWikidata+qid))
}

// BuildGraph maps places to triples. Places without an id are numbered by
// position, starting at 1. Empty fields produce no triple.
func BuildGraph(places []domain.Place, vocab Vocabulary) ([]rdf.Triple, error) {
	b := &graphBuilder{}
	for i, p := range places {
		id := p.ID
		if id == 0 {
			id = i + 1
		}
		b.subj = b.iri(PlaceIRI(id))
		b.triples = append(b.triples, rdf.Triple{
			Subj: b.subj,
			Pred: b.iri(NSRDF + "type"),
			Obj:  b.iri(NSSchema + "Place"),
		})

		b.addString("name", p.Name)
		b.addString("address", p.Address.Street)
		if city := strings.TrimSpace(p.Address.City); city != "" {
			b.addString("addressLocality", city)
			if qid, ok := vocab.CityQID(city); ok {
				b.addLink("containedInPlace", qid)
			}
		}
		b.addString("addressRegion", p.Address.Neighborhood)
		b.addString("postalCode", PostalCode(p.Address.PostalCode))

		if !p.Geo.IsZero() {
			b.addTyped("latitude", formatFloat(p.Geo.Lat), "float")
			b.addTyped("longitude", formatFloat(p.Geo.Lon), "float")
		}

		if category := strings.TrimSpace(p.Category); category != "" {
			b.addString("category", category)
			if qid, ok := vocab.CategoryQID(category); ok {
				b.addLink("additionalType", qid)
			}
		}

		if total, ok := p.Score(domain.CriterionTotal); ok {
			b.addTyped("accessibilitySummary", strconv.Itoa(total), "int")
		}
		b.addString("accessibilityFeature", featureSummary(p))

		if b.err != nil {
			return nil, fmt.Errorf("place %d: %w", id, b.err)
		}
	}
	return b.triples, nil
}

// featureSummary joins the sub-criteria scores as "column:score, ...".
func featureSummary(p domain.Place) string {
	parts := make([]string, 0, len(domain.SubCriteria))
	for _, c := range domain.SubCriteria {
		if n, ok := p.Score(c); ok {
			parts = append(parts, fmt.Sprintf("%s:%d", c, n))
		}
	}
	return strings.Join(parts, ", ")
}

// PostalCode repairs codes that went through a float column ("3001.0")
// back to five zero-padded digits. Other values are returned trimmed.
func PostalCode(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ".") {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f >= 100000 || f != float64(int(f)) {
		return s
	}
	return fmt.Sprintf("%05d", int(f))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
