package domain

import (
	"context"
	"log/slog"
	"strings"
)

// Geocoding outcomes recorded on Place.GeoSource.
const (
	GeoSourceReverse = "reverse"
	GeoSourceFailed  = "failed"
)

// EnrichWithGeocoding fills the address and category of a place from its
// coordinates. Any lookup error degrades to UnknownValue in every field so a
// single bad row never stops a run. A nil geocoder leaves the place as is.
func EnrichWithGeocoding(ctx context.Context, p Place, geocoder Geocoder, logger *slog.Logger) Place {
	if geocoder == nil {
		return p
	}

	result, err := geocoder.ReverseGeocode(ctx, p.Geo.Lat, p.Geo.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"name", p.Name,
			"lat", p.Geo.Lat,
			"lon", p.Geo.Lon,
			"error", err,
		)
		p.Address = Address{
			Street:       UnknownValue,
			Neighborhood: UnknownValue,
			City:         UnknownValue,
			PostalCode:   UnknownValue,
		}
		p.Category = UnknownValue
		p.GeoSource = GeoSourceFailed
		p.ProcessedAt = clock.Now()
		return p
	}

	p.Address = Address{
		Street:       orUnknown(result.Street),
		Neighborhood: orUnknown(result.Neighborhood),
		City:         orUnknown(result.City),
		PostalCode:   orUnknown(result.PostalCode),
	}
	p.Category = orUnknown(result.PlaceType)
	p.GeoSource = GeoSourceReverse
	p.ProcessedAt = clock.Now()
	return p
}

func orUnknown(s string) string {
	s = strings.TrimSpace(NormalizeText(s))
	if s == "" {
		return UnknownValue
	}
	return s
}
