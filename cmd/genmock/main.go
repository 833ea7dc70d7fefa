// Command genmock writes a deterministic synthetic raw survey CSV shaped like
// the Valencian public building accessibility export: coordinates as UTM
// zone 30N WKT points, free-text survey labels, repeated names in a different
// case, a few rows from another province, points outside Alicante and
// unparseable geometries. It prints the counts a clean transform should report.
//
// Usage:
//
//	go run ./cmd/genmock -out accesibility_data/mock_survey.csv -rows 120
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"

	"github.com/couchcryptid/accessibility-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/accessibility-etl/internal/domain"
	utm "github.com/im7mortal/UTM"
)

const (
	provinceAlicante = "Alacant/Alicante"
	provinceOther    = "València/Valencia"
)

var (
	facilities = []string{
		"Biblioteca", "Centro de Salud", "Museo", "Mercado", "Polideportivo",
		"Ayuntamiento", "Colegio Público", "Teatro", "Oficina de Turismo",
	}
	districts = []string{
		"San Blas", "Benalúa", "Carolinas", "Babel", "Altozano",
		"Playa de San Juan", "Vistahermosa", "Pla del Bon Repòs",
	}
	labels = []string{
		"",
		"Accesibilidad muy baja. Barreras arquitectónicas",
		"Accesibilidad baja",
		"Accesibilidad media",
		"Accesibilidad alta",
	}
)

// Generated rows outside the Alicante bounding box.
var farAway = domain.Geo{Lat: 40.4168, Lon: -3.7038}

type stats struct {
	rows          int
	otherProvince int
	duplicates    int
	outliers      int
	badGeometry   int
}

// clean is the number of rows a transform keeps after filtering the province.
func (s stats) clean() int {
	return s.rows - s.otherProvince - s.duplicates - s.outliers - s.badGeometry
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "accesibility_data/mock_survey.csv", "output path for the raw survey CSV")
	rows := flag.Int("rows", 120, "number of rows to generate")
	seed := flag.Uint64("seed", 20240426, "random seed")
	flag.Parse()

	if *rows <= 0 {
		flag.Usage()
		return fmt.Errorf("-rows must be positive")
	}

	header, records, st, err := generate(*rows, *seed)
	if err != nil {
		return err
	}
	if err := csvfile.WriteRecordsFile(*out, header, records); err != nil {
		return fmt.Errorf("writing mock survey: %w", err)
	}
	log.Printf("wrote %d rows: %s", len(records), *out)

	printStats(st)
	return nil
}

func mockHeader() []string {
	h := []string{domain.ColumnProvince, "municipio", domain.ColumnName, domain.ColumnWKT}
	for _, c := range domain.Criteria {
		h = append(h, string(c))
	}
	return h
}

// generate builds n rows. Every tenth row repeats the previous Alicante name
// in upper case, every fifteenth belongs to another province, every
// twenty-fifth lies outside the bounding box and every thirty-third carries
// broken WKT. The first matching rule wins.
func generate(n int, seed uint64) ([]string, [][]string, stats, error) {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	st := stats{rows: n}
	records := make([][]string, 0, n)
	lastName := ""

	for i := range n {
		name := fmt.Sprintf("%s %s %d",
			facilities[i%len(facilities)], districts[r.IntN(len(districts))], i+1)
		province := provinceAlicante
		geo := domain.Geo{Lat: 38.33 + r.Float64()*0.08, Lon: -0.53 + r.Float64()*0.1}
		wkt := ""

		switch {
		case i%10 == 9 && lastName != "":
			name = strings.ToUpper(lastName)
			st.duplicates++
		case i%15 == 14:
			province = provinceOther
			st.otherProvince++
		case i%25 == 24:
			geo = farAway
			st.outliers++
		case i%33 == 32:
			wkt = "POINT (not a number)"
			st.badGeometry++
		}

		if wkt == "" {
			e, nn, _, _, err := utm.FromLatLon(geo.Lat, geo.Lon, true)
			if err != nil {
				return nil, nil, stats{}, fmt.Errorf("row %d: %w", i+1, err)
			}
			wkt = fmt.Sprintf("POINT (%.3f %.3f)", e, nn)
		}

		row := []string{province, "Alacant/Alicante", name, wkt}
		for range domain.Criteria {
			row = append(row, labels[r.IntN(len(labels))])
		}
		records = append(records, row)

		if province == provinceAlicante && i%10 != 9 {
			lastName = name
		}
	}
	return mockHeader(), records, st, nil
}

func printStats(st stats) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Rows: %d\n", st.rows)
	fmt.Printf("Other province: %d\n", st.otherProvince)
	fmt.Printf("After filter-province: %d\n", st.rows-st.otherProvince)
	fmt.Printf("Duplicates: %d\n", st.duplicates)
	fmt.Printf("Outside bounding box: %d\n", st.outliers)
	fmt.Printf("Broken geometry: %d\n", st.badGeometry)
	fmt.Printf("Expected clean rows: %d\n", st.clean())
}
