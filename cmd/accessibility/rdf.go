package main

import (
	"github.com/couchcryptid/accessibility-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/accessibility-etl/internal/domain"
	"github.com/couchcryptid/accessibility-etl/internal/linkeddata"
	"github.com/spf13/cobra"
)

func newRDFCmd(a *app) *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "rdf",
		Short: "Export a combined CSV as schema.org triples in Turtle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			vocab, err := linkeddata.LoadVocabulary(a.cfg.VocabularyPath)
			if err != nil {
				return err
			}
			table, err := readCategorized(in)
			if err != nil {
				return err
			}

			sink := linkeddata.NewSink(out, vocab)
			if err := sink.Load(cmd.Context(), table); err != nil {
				return err
			}
			a.logger.Info("turtle written", "places", len(table.Places), "output", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "input", "accesibility_data/combined.csv", "combined CSV")
	cmd.Flags().StringVar(&out, "output", "rdf/accesibilidad.ttl", "Turtle output")
	return cmd
}

// readCategorized reads a transformed CSV and parses its score labels.
func readCategorized(path string) (domain.Table, error) {
	t, err := csvfile.ReadTableFile(path, ',')
	if err != nil {
		return domain.Table{}, err
	}
	for i := range t.Places {
		t.Places[i] = domain.Categorize(t.Places[i])
	}
	return t, nil
}
