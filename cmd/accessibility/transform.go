package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/couchcryptid/accessibility-etl/internal/adapter/csvfile"
	kafkaadapter "github.com/couchcryptid/accessibility-etl/internal/adapter/kafka"
	"github.com/couchcryptid/accessibility-etl/internal/adapter/nominatim"
	"github.com/couchcryptid/accessibility-etl/internal/domain"
	"github.com/couchcryptid/accessibility-etl/internal/pipeline"
	"github.com/spf13/cobra"
)

func newTransformCmd(a *app) *cobra.Command {
	var (
		in, out, sep     string
		reproject, force bool
		geocode          bool
	)

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Clean, reproject, score and geocode one survey CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			comma, err := parseSeparator(sep)
			if err != nil {
				return err
			}

			if !force {
				if _, err := os.Stat(out); err == nil {
					a.logger.Info("output exists, skipping", "output", out)
					return nil
				} else if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("stat %s: %w", out, err)
				}
			}

			var geocoder domain.Geocoder
			if geocode && a.cfg.NominatimEnabled {
				client := nominatim.NewClient(nominatim.Options{
					BaseURL:       a.cfg.NominatimURL,
					UserAgent:     a.cfg.NominatimUserAgent,
					Timeout:       a.cfg.NominatimTimeout,
					RatePerSecond: a.cfg.NominatimRate,
				}, a.metrics, a.logger)
				geocoder = nominatim.NewCachedGeocoder(client, a.cfg.NominatimCacheSize, a.metrics)
				a.metrics.GeocodeEnabled.Set(1)
				a.logger.Info("nominatim geocoding enabled", "cache_size", a.cfg.NominatimCacheSize, "rate", a.cfg.NominatimRate)
			} else {
				a.metrics.GeocodeEnabled.Set(0)
				a.logger.Info("nominatim geocoding disabled")
			}

			transformer := pipeline.NewTransformer(pipeline.Options{
				Reproject:   reproject,
				Projection:  domain.Projection{Zone: a.cfg.UTMZone, Northern: true},
				BoundingBox: a.cfg.BoundingBox,
				Geocoder:    geocoder,
			}, a.metrics, a.logger)

			loaders := []pipeline.Loader{csvfile.NewSink(out)}
			if a.cfg.KafkaEnabled() {
				writer := kafkaadapter.NewWriter(a.cfg, a.logger)
				defer func() {
					if err := writer.Close(); err != nil {
						a.logger.Error("kafka writer close error", "error", err)
					}
				}()
				loaders = append(loaders, writer)
			}

			source := &csvfile.Source{Path: in, Comma: comma}
			p := pipeline.New(source, transformer, a.logger, a.metrics, loaders...)

			stopServer := a.startStatusServer(p)
			defer stopServer()

			report, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}
			a.logger.Info("transform complete",
				"input", in,
				"rows_read", report.RowsRead,
				"duplicates_removed", report.Stats.DuplicatesRemoved,
				"outliers_removed", report.Stats.OutliersRemoved,
				"reproject_errors", report.Stats.ReprojectErrors,
				"geocode_failures", report.Stats.GeocodeFailures,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "input", "", "input CSV")
	cmd.Flags().StringVar(&out, "output", "", "output CSV")
	cmd.Flags().StringVar(&sep, "sep", ",", "input field separator")
	cmd.Flags().BoolVar(&reproject, "reproject", false, "derive lat/lon from the WKT column (UTM, ETRS89)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing output")
	cmd.Flags().BoolVar(&geocode, "geocode", true, "fill address fields by reverse geocoding (also gated by NOMINATIM_ENABLED)")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
