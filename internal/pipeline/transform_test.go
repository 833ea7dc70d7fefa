package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/couchcryptid/accessibility-etl/internal/domain"
	"github.com/couchcryptid/accessibility-etl/internal/observability"
	"github.com/couchcryptid/accessibility-etl/internal/pipeline"
	utm "github.com/im7mortal/UTM"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGeocoder struct {
	failLat float64
	calls   int
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, lat, _ float64) (domain.GeocodingResult, error) {
	m.calls++
	if lat == m.failLat {
		return domain.GeocodingResult{}, errors.New("upstream unavailable")
	}
	return domain.GeocodingResult{
		Street:     "Avenida de la Constitución",
		City:       "Alacant / Alicante",
		PostalCode: "03002",
		PlaceType:  "Cafe",
	}, nil
}

func label(total string) map[domain.Criterion]string {
	return map[domain.Criterion]string{domain.CriterionTotal: total}
}

func TestSurveyTransformer_Transform(t *testing.T) {
	freezeClock(t)
	geo := &mockGeocoder{failLat: 38.34}
	metrics := observability.NewMetricsForTesting()
	tfm := pipeline.NewTransformer(pipeline.Options{
		BoundingBox: domain.DefaultBoundingBox,
		Geocoder:    geo,
	}, metrics, discardLogger())

	in := domain.Table{
		Criteria: []domain.Criterion{domain.CriterionTotal},
		Places: []domain.Place{
			{Name: "Café Central", Geo: domain.Geo{Lat: 38.3452, Lon: -0.4810}, Labels: label("Accesibilidad alta")},
			{Name: "cafe central", Geo: domain.Geo{Lat: 38.3452, Lon: -0.4810}, Labels: label("Accesibilidad baja")},
			{Name: "Mar Adentro", Geo: domain.Geo{Lat: 40.4, Lon: -3.7}, Labels: label("Accesibilidad media")},
			{Name: "Plaza", Geo: domain.Geo{Lat: 38.35, Lon: -0.48}, Labels: label("7")},
			{Name: "Museo", Geo: domain.Geo{Lat: 38.34, Lon: -0.49}, Labels: label("Accesibilidad baja")},
		},
	}

	out, stats, err := tfm.Transform(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, pipeline.Stats{DuplicatesRemoved: 1, OutliersRemoved: 2, GeocodeFailures: 1}, stats)
	assert.Equal(t, in.Criteria, out.Criteria)
	require.Len(t, out.Places, 2)

	cafe := out.Places[0]
	assert.Equal(t, "cafe central", cafe.Name)
	assert.Equal(t, 4, cafe.Scores[domain.CriterionTotal])
	assert.Equal(t, "alacant / alicante", cafe.Address.City)
	assert.Equal(t, "avenida de la constitucion", cafe.Address.Street)
	assert.Equal(t, domain.UnknownValue, cafe.Address.Neighborhood)
	assert.Equal(t, "cafe", cafe.Category)
	assert.Equal(t, domain.GeoSourceReverse, cafe.GeoSource)

	museo := out.Places[1]
	assert.Equal(t, 2, museo.Scores[domain.CriterionTotal])
	assert.Equal(t, domain.GeoSourceFailed, museo.GeoSource)
	assert.Equal(t, domain.UnknownValue, museo.Address.City)

	assert.Equal(t, 2, geo.calls, "outliers are never geocoded")
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.DuplicatesRemoved))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.OutliersRemoved))

	// The input table is left untouched.
	assert.Equal(t, "Café Central", in.Places[0].Name)
}

func TestSurveyTransformer_Reproject(t *testing.T) {
	easting, northing, _, _, err := utm.FromLatLon(38.3452, -0.4810, true)
	require.NoError(t, err)

	metrics := observability.NewMetricsForTesting()
	tfm := pipeline.NewTransformer(pipeline.Options{
		Reproject:   true,
		Projection:  domain.UTM30N,
		BoundingBox: domain.DefaultBoundingBox,
	}, metrics, discardLogger())

	in := domain.Table{
		Criteria: []domain.Criterion{domain.CriterionTotal},
		Places: []domain.Place{
			{Name: "Ayuntamiento", WKT: fmt.Sprintf("POINT (%f %f)", easting, northing), Labels: label("Accesibilidad media")},
			{Name: "Sin geometria", WKT: "not a geometry", Labels: label("Accesibilidad media")},
		},
	}

	out, stats, err := tfm.Transform(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.ReprojectErrors)
	assert.Equal(t, 1, stats.OutliersRemoved, "rows without coordinates are dropped")
	require.Len(t, out.Places, 1)

	p := out.Places[0]
	assert.InDelta(t, 38.3452, p.Geo.Lat, 1e-5)
	assert.InDelta(t, -0.4810, p.Geo.Lon, 1e-5)
	assert.Empty(t, p.WKT)
	assert.Empty(t, p.GeoSource, "geocoding disabled")
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ReprojectErrors))
}

func TestSurveyTransformer_CancelledDuringGeocoding(t *testing.T) {
	tfm := pipeline.NewTransformer(pipeline.Options{
		BoundingBox: domain.DefaultBoundingBox,
		Geocoder:    &mockGeocoder{},
	}, observability.NewMetricsForTesting(), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := tfm.Transform(ctx, domain.Table{Places: []domain.Place{
		{Name: "a", Geo: domain.Geo{Lat: 38.3, Lon: -0.5}},
	}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestSurveyTransformer_UnnamedPlacesKeepFirst(t *testing.T) {
	tfm := pipeline.NewTransformer(pipeline.Options{
		BoundingBox: domain.DefaultBoundingBox,
	}, observability.NewMetricsForTesting(), discardLogger())

	in := domain.Table{Places: []domain.Place{
		{Name: "", Geo: domain.Geo{Lat: 38.34, Lon: -0.48}, Category: "bench"},
		{Name: "", Geo: domain.Geo{Lat: 38.35, Lon: -0.48}},
		{Name: "?", Geo: domain.Geo{Lat: 38.36, Lon: -0.48}},
	}}

	out, stats, err := tfm.Transform(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.DuplicatesRemoved)
	require.Len(t, out.Places, 1)
	assert.Equal(t, "bench", out.Places[0].Category)
}

func TestSurveyTransformer_IntegerLabelOutOfRange(t *testing.T) {
	tfm := pipeline.NewTransformer(pipeline.Options{
		BoundingBox: domain.DefaultBoundingBox,
	}, observability.NewMetricsForTesting(), discardLogger())

	in := domain.Table{
		Criteria: []domain.Criterion{domain.CriterionTotal},
		Places: []domain.Place{
			{Name: "Plaza", Geo: domain.Geo{Lat: 38.35, Lon: -0.48}, Labels: label("7")},
			{Name: "Lonja", Geo: domain.Geo{Lat: 38.34, Lon: -0.48}, Labels: label("3")},
			{Name: "Teatro", Geo: domain.Geo{Lat: 38.34, Lon: -0.49}, Labels: label("sin datos")},
		},
	}

	out, stats, err := tfm.Transform(context.Background(), in)
	require.NoError(t, err)

	// Integer labels are kept as scores, so 7 is out of range and removed;
	// unrecognized text scores 0 and stays.
	assert.Equal(t, 1, stats.OutliersRemoved)
	require.Len(t, out.Places, 2)
	assert.Equal(t, 3, out.Places[0].Scores[domain.CriterionTotal])
	assert.Equal(t, 0, out.Places[1].Scores[domain.CriterionTotal])
}
