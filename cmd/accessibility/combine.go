package main

import (
	"github.com/couchcryptid/accessibility-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/accessibility-etl/internal/domain"
	"github.com/spf13/cobra"
)

func newCombineCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "combine INPUT...",
		Short: "Concatenate transformed CSVs and assign sequential ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			tables := make([]domain.Table, 0, len(args))
			for _, path := range args {
				t, err := csvfile.ReadTableFile(path, ',')
				if err != nil {
					return err
				}
				a.metrics.RowsRead.Add(float64(len(t.Places)))
				tables = append(tables, t)
			}

			combined := domain.Combine(tables...)
			if err := csvfile.WriteTableFile(out, combined); err != nil {
				return err
			}

			a.metrics.RowsWritten.Add(float64(len(combined.Places)))
			a.logger.Info("tables combined", "inputs", len(args), "rows", len(combined.Places), "output", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "output", "accesibility_data/combined.csv", "combined CSV")
	return cmd
}
