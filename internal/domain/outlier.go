package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// BoundingBox is an inclusive latitude/longitude window.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// DefaultBoundingBox covers the province of Alicante.
var DefaultBoundingBox = BoundingBox{MinLat: 37.8, MaxLat: 38.9, MinLon: -0.9, MaxLon: 0.1}

// ParseBoundingBox reads "minLat,maxLat,minLon,maxLon".
func ParseBoundingBox(s string) (BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BoundingBox{}, fmt.Errorf("bounding box %q: want minLat,maxLat,minLon,maxLon", s)
	}
	var v [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return BoundingBox{}, fmt.Errorf("bounding box %q: %w", s, err)
		}
		v[i] = f
	}
	b := BoundingBox{MinLat: v[0], MaxLat: v[1], MinLon: v[2], MaxLon: v[3]}
	if b.MinLat > b.MaxLat || b.MinLon > b.MaxLon {
		return BoundingBox{}, fmt.Errorf("bounding box %q: min exceeds max", s)
	}
	return b, nil
}

func (b BoundingBox) bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	}
}

// Contains reports whether g lies inside the box, edges included.
func (b BoundingBox) Contains(g Geo) bool {
	return b.bound().Contains(orb.Point{g.Lon, g.Lat})
}

// FilterOutliers drops places without coordinates, outside the box, or with
// a score outside [MinScore, MaxScore]. It returns the survivors and the
// number of rows removed.
func FilterOutliers(places []Place, box BoundingBox) ([]Place, int) {
	kept := make([]Place, 0, len(places))
	for _, p := range places {
		if p.Geo.IsZero() || !box.Contains(p.Geo) {
			continue
		}
		if !p.InRange() {
			continue
		}
		kept = append(kept, p)
	}
	return kept, len(places) - len(kept)
}
