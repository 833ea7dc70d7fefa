package main

import (
	"github.com/couchcryptid/accessibility-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/accessibility-etl/internal/adapter/overpass"
	"github.com/spf13/cobra"
)

func newFetchOSMCmd(a *app) *cobra.Command {
	var area, out string

	cmd := &cobra.Command{
		Use:   "fetch-osm",
		Short: "Download wheelchair-tagged OpenStreetMap features for an area",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := overpass.NewClient(a.cfg.OverpassURL, a.cfg.OverpassTimeout, a.logger)

			table, err := client.FetchWheelchairPlaces(cmd.Context(), area)
			if err != nil {
				return err
			}
			if err := csvfile.WriteTableFile(out, table); err != nil {
				return err
			}

			a.metrics.RowsRead.Add(float64(len(table.Places)))
			a.metrics.RowsWritten.Add(float64(len(table.Places)))
			a.logger.Info("osm places fetched", "area", area, "places", len(table.Places), "output", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&area, "area", "Alicante", "OSM area name")
	cmd.Flags().StringVar(&out, "output", "accesibility_data/osm_alicante.csv", "output CSV")
	return cmd
}
