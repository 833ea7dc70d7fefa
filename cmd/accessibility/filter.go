package main

import (
	"fmt"
	"os"

	"github.com/couchcryptid/accessibility-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/accessibility-etl/internal/domain"
	"github.com/spf13/cobra"
)

// DefaultProvince is the provincia value of the Alicante rows in the national survey.
const DefaultProvince = "Alacant/Alicante"

func newFilterProvinceCmd(a *app) *cobra.Command {
	var in, out, province, sep string

	cmd := &cobra.Command{
		Use:   "filter-province",
		Short: "Keep the rows of a raw survey CSV that belong to one province",
		RunE: func(_ *cobra.Command, _ []string) error {
			comma, err := parseSeparator(sep)
			if err != nil {
				return err
			}

			f, err := os.Open(in)
			if err != nil {
				return fmt.Errorf("open %s: %w", in, err)
			}
			defer f.Close()

			header, rows, err := csvfile.ReadRecords(f, comma)
			if err != nil {
				return fmt.Errorf("read %s: %w", in, err)
			}
			kept, err := domain.FilterProvince(header, rows, province)
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			if err := csvfile.WriteRecordsFile(out, header, kept); err != nil {
				return err
			}

			a.metrics.RowsRead.Add(float64(len(rows)))
			a.metrics.RowsWritten.Add(float64(len(kept)))
			a.logger.Info("province filtered", "province", province, "rows_in", len(rows), "rows_out", len(kept), "output", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "input", "accesibility_data/0802_AccesEdificiosPub.csv", "raw national survey CSV")
	cmd.Flags().StringVar(&out, "output", "accesibility_data/alicante.csv", "filtered CSV")
	cmd.Flags().StringVar(&province, "province", DefaultProvince, "provincia value to keep")
	cmd.Flags().StringVar(&sep, "sep", ",", "input field separator")
	return cmd
}

// parseSeparator accepts a single character, or "tab".
func parseSeparator(s string) (rune, error) {
	if s == "tab" || s == `\t` {
		return '\t', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("invalid separator %q", s)
	}
	return r[0], nil
}
