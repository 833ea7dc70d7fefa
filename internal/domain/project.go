package domain

import (
	"fmt"

	utm "github.com/im7mortal/UTM"
	"github.com/paulmach/orb/encoding/wkt"
)

// Projection describes a UTM source coordinate reference system.
type Projection struct {
	Zone     int
	Northern bool
}

// UTM30N is ETRS89 / UTM zone 30N (EPSG:25830), the projection used by the
// Valencian survey files.
var UTM30N = Projection{Zone: 30, Northern: true}

// ToWGS84 converts easting/northing meters to latitude/longitude.
func (p Projection) ToWGS84(easting, northing float64) (Geo, error) {
	lat, lon, err := utm.ToLatLon(easting, northing, p.Zone, "", p.Northern)
	if err != nil {
		return Geo{}, fmt.Errorf("utm zone %d to wgs84: %w", p.Zone, err)
	}
	return Geo{Lat: lat, Lon: lon}, nil
}

// ReprojectPlace parses the place's WKT point, converts it to WGS84 and
// drops the raw geometry. On error the place is returned unchanged.
func ReprojectPlace(p Place, proj Projection) (Place, error) {
	if p.WKT == "" {
		return p, fmt.Errorf("reproject %q: missing WKT geometry", p.Name)
	}

	pt, err := wkt.UnmarshalPoint(p.WKT)
	if err != nil {
		return p, fmt.Errorf("reproject %q: parse WKT: %w", p.Name, err)
	}

	geo, err := proj.ToWGS84(pt.X(), pt.Y())
	if err != nil {
		return p, fmt.Errorf("reproject %q: %w", p.Name, err)
	}

	p.Geo = geo
	p.WKT = ""
	return p, nil
}
