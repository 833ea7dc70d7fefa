package domain

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// textStripper removes characters that break CSV handling and matching.
var textStripper = strings.NewReplacer("?", "", ",", "")

// NormalizeText folds free text for comparison and output: accents are
// removed via NFD decomposition, "?" and "," are dropped, and the result is
// lowercased. Surrounding whitespace is kept; callers trim where it matters.
func NormalizeText(s string) string {
	if s == "" {
		return s
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(textStripper.Replace(folded))
}

// nameKey is the identity used for duplicate detection.
func nameKey(name string) string {
	return strings.TrimSpace(NormalizeText(strings.TrimSpace(name)))
}

// NormalizePlace folds every free-text field of a place. Geometry,
// coordinates, ids and numeric extras are left as they are.
func NormalizePlace(p Place) Place {
	p.Name = strings.TrimSpace(NormalizeText(p.Name))
	p.Address.Street = NormalizeText(p.Address.Street)
	p.Address.Neighborhood = NormalizeText(p.Address.Neighborhood)
	p.Address.City = NormalizeText(p.Address.City)
	p.Address.PostalCode = NormalizeText(p.Address.PostalCode)
	p.Category = NormalizeText(p.Category)

	if len(p.Labels) > 0 {
		labels := make(map[Criterion]string, len(p.Labels))
		for c, v := range p.Labels {
			labels[c] = strings.TrimSpace(NormalizeText(v))
		}
		p.Labels = labels
	}

	if len(p.Extra) > 0 {
		extra := make(map[string]string, len(p.Extra))
		for k, v := range p.Extra {
			if isNumeric(v) {
				extra[k] = v
				continue
			}
			extra[k] = NormalizeText(v)
		}
		p.Extra = extra
	}
	return p
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

// DedupeByName keeps the first place for each normalized name and returns the
// survivors along with how many were dropped. Names that normalize to empty
// share one key, so only the first unnamed place is kept.
func DedupeByName(places []Place) ([]Place, int) {
	seen := make(map[string]struct{}, len(places))
	kept := make([]Place, 0, len(places))
	for _, p := range places {
		key := nameKey(p.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, p)
	}
	return kept, len(places) - len(kept)
}
