package domain

import "context"

// GeocodingResult contains the address parts returned by a reverse geocoder.
// Empty fields mean the provider had no value for that part.
type GeocodingResult struct {
	Street       string
	Neighborhood string
	City         string
	PostalCode   string
	PlaceType    string
	DisplayName  string
}

// Geocoder enriches places with postal address data.
type Geocoder interface {
	// ReverseGeocode converts coordinates to address details.
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}
