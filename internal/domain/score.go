package domain

import (
	"strconv"
	"strings"
)

// Score bounds for every criterion.
const (
	MinScore = 0
	MaxScore = 4
)

// scoreLabels maps normalized survey labels to ordinal levels.
var scoreLabels = map[string]int{
	"accesibilidad muy baja. barreras arquitectonicas": 1,
	"accesibilidad baja":  2,
	"accesibilidad media": 3,
	"accesibilidad alta":  4,
}

// ParseScore converts a survey label to its ordinal level. Labels are matched
// after normalization. Integer labels pass through unchanged so already
// categorized files can be re-run; the range is enforced by FilterOutliers.
// Empty and unknown labels map to 0.
func ParseScore(label string) int {
	label = strings.TrimSpace(NormalizeText(label))
	if label == "" {
		return 0
	}
	if n, ok := scoreLabels[label]; ok {
		return n
	}
	if n, err := strconv.Atoi(label); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(label, 64); err == nil && f == float64(int(f)) {
		return int(f)
	}
	return 0
}

// Categorize fills the place's scores from its survey labels.
func Categorize(p Place) Place {
	if len(p.Labels) == 0 {
		return p
	}
	scores := make(map[Criterion]int, len(p.Labels))
	for c, label := range p.Labels {
		scores[c] = ParseScore(label)
	}
	p.Scores = scores
	return p
}

// Score returns the place's score for c and whether the criterion was surveyed.
func (p Place) Score(c Criterion) (int, bool) {
	n, ok := p.Scores[c]
	return n, ok
}

// InRange reports whether every score of the place lies in [MinScore, MaxScore].
func (p Place) InRange() bool {
	for _, n := range p.Scores {
		if n < MinScore || n > MaxScore {
			return false
		}
	}
	return true
}
