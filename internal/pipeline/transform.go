package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/accessibility-etl/internal/domain"
	"github.com/couchcryptid/accessibility-etl/internal/observability"
)

// Stage labels for the stage_duration_seconds histogram.
const (
	stageDedupe     = "dedupe"
	stageNormalize  = "normalize"
	stageReproject  = "reproject"
	stageCategorize = "categorize"
	stageOutliers   = "outliers"
	stageGeocode    = "geocode"
)

// Options configures SurveyTransformer.
type Options struct {
	// Reproject parses the WKT column in Projection into lat/lon.
	Reproject   bool
	Projection  domain.Projection
	BoundingBox domain.BoundingBox
	// Geocoder enriches addresses. Nil disables enrichment.
	Geocoder domain.Geocoder
}

// SurveyTransformer implements Transformer by chaining the domain cleaning
// stages: dedupe, normalize, reproject, categorize, outliers, geocode.
type SurveyTransformer struct {
	opts    Options
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewTransformer creates a SurveyTransformer.
func NewTransformer(opts Options, metrics *observability.Metrics, logger *slog.Logger) *SurveyTransformer {
	return &SurveyTransformer{
		opts:    opts,
		metrics: metrics,
		logger:  logger,
	}
}

func (t *SurveyTransformer) Transform(ctx context.Context, in domain.Table) (domain.Table, Stats, error) {
	var stats Stats
	places := in.Places

	t.timed(stageDedupe, func() {
		places, stats.DuplicatesRemoved = domain.DedupeByName(places)
	})
	t.metrics.DuplicatesRemoved.Add(float64(stats.DuplicatesRemoved))

	t.timed(stageNormalize, func() {
		out := make([]domain.Place, len(places))
		for i, p := range places {
			out[i] = domain.NormalizePlace(p)
		}
		places = out
	})

	if t.opts.Reproject {
		t.timed(stageReproject, func() {
			for i, p := range places {
				reprojected, err := domain.ReprojectPlace(p, t.opts.Projection)
				if err != nil {
					t.logger.Warn("reprojection failed", "error", err)
					stats.ReprojectErrors++
					continue
				}
				places[i] = reprojected
			}
		})
		t.metrics.ReprojectErrors.Add(float64(stats.ReprojectErrors))
	}

	t.timed(stageCategorize, func() {
		for i, p := range places {
			places[i] = domain.Categorize(p)
		}
	})

	t.timed(stageOutliers, func() {
		places, stats.OutliersRemoved = domain.FilterOutliers(places, t.opts.BoundingBox)
	})
	t.metrics.OutliersRemoved.Add(float64(stats.OutliersRemoved))

	if t.opts.Geocoder != nil {
		start := time.Now()
		for i, p := range places {
			if err := ctx.Err(); err != nil {
				return domain.Table{}, stats, err
			}
			places[i] = domain.EnrichWithGeocoding(ctx, p, t.opts.Geocoder, t.logger)
			if places[i].GeoSource == domain.GeoSourceFailed {
				stats.GeocodeFailures++
			}
		}
		t.metrics.StageDuration.WithLabelValues(stageGeocode).Observe(time.Since(start).Seconds())
	}

	t.logger.Debug("table transformed",
		"rows_in", len(in.Places),
		"rows_out", len(places),
	)

	out := in
	out.Places = places
	return out, stats, nil
}

func (t *SurveyTransformer) timed(stage string, fn func()) {
	start := time.Now()
	fn()
	t.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
