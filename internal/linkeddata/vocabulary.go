package linkeddata

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabulary []byte

// Vocabulary maps normalized city names and place categories to Wikidata
// QIDs. An empty QID means "known, but not linked".
type Vocabulary struct {
	Cities     map[string]string `yaml:"cities"`
	Categories map[string]string `yaml:"categories"`
}

// DefaultVocabulary returns the built-in Alicante vocabulary.
func DefaultVocabulary() (Vocabulary, error) {
	return parseVocabulary(defaultVocabulary)
}

// LoadVocabulary reads a vocabulary file. An empty path yields the built-in
// vocabulary.
func LoadVocabulary(path string) (Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary: %w", err)
	}
	v, err := parseVocabulary(data)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func parseVocabulary(data []byte) (Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary: %w", err)
	}
	v.Cities = lowerKeys(v.Cities)
	v.Categories = lowerKeys(v.Categories)
	return v, nil
}

func lowerKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, qid := range m {
		out[vocabKey(k)] = strings.TrimSpace(qid)
	}
	return out
}

func vocabKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CityQID returns the Wikidata entity for a city, if linked.
func (v Vocabulary) CityQID(city string) (string, bool) {
	qid := v.Cities[vocabKey(city)]
	return qid, qid != ""
}

// CategoryQID returns the Wikidata entity for a place category, if linked.
func (v Vocabulary) CategoryQID(category string) (string, bool) {
	qid := v.Categories[vocabKey(category)]
	return qid, qid != ""
}
