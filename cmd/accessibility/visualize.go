package main

import (
	"github.com/couchcryptid/accessibility-etl/internal/visualize"
	"github.com/spf13/cobra"
)

func newVisualizeCmd(a *app) *cobra.Command {
	var in, dir string

	cmd := &cobra.Command{
		Use:   "visualize",
		Short: "Render accessibility maps and a GeoJSON export",
		RunE: func(_ *cobra.Command, _ []string) error {
			table, err := readCategorized(in)
			if err != nil {
				return err
			}
			written, err := visualize.Render(dir, table.Places)
			if err != nil {
				return err
			}
			a.logger.Info("maps rendered", "places", len(table.Places), "files", written)
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "input", "accesibility_data/combined.csv", "combined CSV")
	cmd.Flags().StringVar(&dir, "dir", "maps", "output directory")
	return cmd
}
