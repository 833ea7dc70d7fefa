package domain

import (
	"fmt"
	"testing"

	utm "github.com/im7mortal/UTM"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	labelVeryLow = "Accesibilidad muy baja. Barreras arquitectónicas"
	labelHigh    = "Accesibilidad alta"
)

func TestParseTable(t *testing.T) {
	header := []string{"\ufeffnombre", "WKT", "accesibilidad_total", "e1_entrada_ppal", "provincia", "municipio"}
	rows := [][]string{
		{"Ayuntamiento", "POINT (720000 4247000)", labelHigh, "Accesibilidad media", "Alacant/Alicante", "Alicante"},
		{"Biblioteca"},
	}

	table := ParseTable(header, rows)

	assert.Equal(t, []Criterion{CriterionTotal, CriterionMainEntrance}, table.Criteria)
	assert.Equal(t, []string{"provincia", "municipio"}, table.ExtraColumns)
	require.Len(t, table.Places, 2)

	p := table.Places[0]
	assert.Equal(t, "Ayuntamiento", p.Name)
	assert.Equal(t, "POINT (720000 4247000)", p.WKT)
	assert.Equal(t, labelHigh, p.Labels[CriterionTotal])
	assert.Equal(t, "Alacant/Alicante", p.Extra["provincia"])

	short := table.Places[1]
	assert.Equal(t, "Biblioteca", short.Name)
	assert.Empty(t, short.WKT)
	assert.Empty(t, short.Labels[CriterionTotal])
}

func TestParseTable_TransformedColumns(t *testing.T) {
	header := []string{"id", "nombre", "lat", "lon", "direccion", "barrio", "ciudad", "codigo_postal", "tipo_lugar"}
	rows := [][]string{{"7", "museo", "38.3452", "-0.4810", "calle mayor", "centro", "alicante", "03002", "museum"}}

	p := ParseTable(header, rows).Places[0]

	assert.Equal(t, 7, p.ID)
	assert.Equal(t, Geo{Lat: 38.3452, Lon: -0.4810}, p.Geo)
	assert.Equal(t, Address{Street: "calle mayor", Neighborhood: "centro", City: "alicante", PostalCode: "03002"}, p.Address)
	assert.Equal(t, "museum", p.Category)
	assert.Empty(t, p.Extra)
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"Café", "cafe"},
		{"PEÑÍSCOLA", "peniscola"},
		{"¿Dónde?", "¿donde"},
		{"Calle Mayor, 3", "calle mayor 3"},
		{labelVeryLow, "accesibilidad muy baja. barreras arquitectonicas"},
		{"Sant Joan d'Alacant", "sant joan d'alacant"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.in))
		})
	}
}

func TestNormalizePlace(t *testing.T) {
	p := Place{
		Name:     "  Teatro Principal ",
		WKT:      "POINT (720000 4247000)",
		Category: "Teatro",
		Address:  Address{City: "Alacant/Alicante"},
		Labels:   map[Criterion]string{CriterionTotal: labelHigh},
		Extra:    map[string]string{"municipio": "Elche, Elx", "superficie": "1,5", "plazas": "120"},
	}

	got := NormalizePlace(p)

	assert.Equal(t, "teatro principal", got.Name)
	assert.Equal(t, "POINT (720000 4247000)", got.WKT)
	assert.Equal(t, "teatro", got.Category)
	assert.Equal(t, "alacant/alicante", got.Address.City)
	assert.Equal(t, "accesibilidad alta", got.Labels[CriterionTotal])
	assert.Equal(t, "elche elx", got.Extra["municipio"])
	assert.Equal(t, "15", got.Extra["superficie"])
	assert.Equal(t, "120", got.Extra["plazas"])

	// Input maps are not mutated.
	assert.Equal(t, labelHigh, p.Labels[CriterionTotal])
}

func TestDedupeByName(t *testing.T) {
	places := []Place{
		{Name: "Café Sol", Category: "first"},
		{Name: " cafe sol ", Category: "second"},
		{Name: "Mercado Central"},
		{Name: "", Category: "unnamed"},
		{Name: ""},
		{Name: "?"},
		{Name: "MERCADO CENTRAL"},
	}

	kept, removed := DedupeByName(places)

	assert.Equal(t, 4, removed)
	require.Len(t, kept, 3)
	assert.Equal(t, "first", kept[0].Category)
	assert.Equal(t, "Mercado Central", kept[1].Name)
	assert.Equal(t, "unnamed", kept[2].Category, "first unnamed place wins")

	names := make(map[string]bool)
	for _, p := range kept {
		key := nameKey(p.Name)
		assert.False(t, names[key], "duplicate name %q survived", key)
		names[key] = true
	}
}

func TestProjection_CentralMeridian(t *testing.T) {
	geo, err := UTM30N.ToWGS84(500000, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0, geo.Lat, 1e-9)
	assert.InDelta(t, -3, geo.Lon, 1e-9)
}

func TestReprojectPlace(t *testing.T) {
	easting, northing, zone, _, err := utm.FromLatLon(38.3452, -0.4810, true)
	require.NoError(t, err)
	require.Equal(t, 30, zone)

	p := Place{Name: "ayuntamiento", WKT: fmt.Sprintf("POINT (%.3f %.3f)", easting, northing)}
	got, err := ReprojectPlace(p, UTM30N)
	require.NoError(t, err)

	assert.InDelta(t, 38.3452, got.Geo.Lat, 1e-5)
	assert.InDelta(t, -0.4810, got.Geo.Lon, 1e-5)
	assert.Empty(t, got.WKT)
}

func TestReprojectPlace_Errors(t *testing.T) {
	tests := []struct {
		name string
		wkt  string
	}{
		{"missing", ""},
		{"not a point", "LINESTRING (0 0, 1 1)"},
		{"garbage", "POINT (abc def)"},
		{"easting out of range", "POINT (5 4247000)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Place{Name: "x", WKT: tt.wkt}
			got, err := ReprojectPlace(p, UTM30N)
			require.Error(t, err)
			assert.True(t, got.Geo.IsZero())
			assert.Equal(t, tt.wkt, got.WKT)
		})
	}
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		label string
		want  int
	}{
		{labelVeryLow, 1},
		{"accesibilidad muy baja. barreras arquitectonicas", 1},
		{"Accesibilidad baja", 2},
		{"ACCESIBILIDAD MEDIA", 3},
		{labelHigh, 4},
		{"", 0},
		{"sin datos", 0},
		{"3", 3},
		{"2.0", 2},
		{"7", 7},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseScore(tt.label))
		})
	}
}

func TestCategorize(t *testing.T) {
	p := Place{Labels: map[Criterion]string{
		CriterionTotal:     labelHigh,
		CriterionRestrooms: "",
	}}

	got := Categorize(p)

	assert.Equal(t, map[Criterion]int{CriterionTotal: 4, CriterionRestrooms: 0}, got.Scores)
	_, surveyed := got.Score(CriterionRoutes)
	assert.False(t, surveyed)
}

func TestParseBoundingBox(t *testing.T) {
	box, err := ParseBoundingBox("37.8, 38.9, -0.9, 0.1")
	require.NoError(t, err)
	assert.Equal(t, DefaultBoundingBox, box)

	for _, bad := range []string{"", "1,2,3", "a,b,c,d", "39,38,-1,0"} {
		_, err := ParseBoundingBox(bad)
		assert.Error(t, err, bad)
	}
}

func TestFilterOutliers(t *testing.T) {
	places := []Place{
		{Name: "inside", Geo: Geo{Lat: 38.3452, Lon: -0.4810}, Scores: map[Criterion]int{CriterionTotal: 4}},
		{Name: "edge", Geo: Geo{Lat: 37.8, Lon: 0.1}},
		{Name: "madrid", Geo: Geo{Lat: 40.4168, Lon: -3.7038}},
		{Name: "no coords"},
		{Name: "bad score", Geo: Geo{Lat: 38.5, Lon: -0.5}, Scores: map[Criterion]int{CriterionTotal: 7}},
		{Name: "negative", Geo: Geo{Lat: 38.5, Lon: -0.5}, Scores: map[Criterion]int{CriterionRoutes: -1}},
	}

	kept, removed := FilterOutliers(places, DefaultBoundingBox)

	assert.Equal(t, 4, removed)
	require.Len(t, kept, 2)
	assert.Equal(t, "inside", kept[0].Name)
	assert.Equal(t, "edge", kept[1].Name)
	for _, p := range kept {
		assert.True(t, DefaultBoundingBox.Contains(p.Geo))
		assert.True(t, p.InRange())
	}
}

func TestCombine(t *testing.T) {
	a := Table{
		Criteria:     []Criterion{CriterionMainEntrance, CriterionTotal},
		ExtraColumns: []string{"municipio"},
		Places:       []Place{{Name: "a1", ID: 40}, {Name: "a2"}},
	}
	b := Table{
		Criteria:     []Criterion{CriterionTotal, CriterionRestrooms},
		ExtraColumns: []string{"osm_id", "municipio"},
		Places:       []Place{{Name: "b1", ID: 3}},
	}

	got := Combine(a, b)

	assert.Equal(t, []Criterion{CriterionTotal, CriterionMainEntrance, CriterionRestrooms}, got.Criteria)
	assert.Equal(t, []string{"municipio", "osm_id"}, got.ExtraColumns)
	require.Len(t, got.Places, 3)
	for i, p := range got.Places {
		assert.Equal(t, i+1, p.ID)
	}
	assert.Equal(t, "b1", got.Places[2].Name)
	assert.Equal(t, 40, a.Places[0].ID, "inputs keep their ids")
}

func TestCombine_Empty(t *testing.T) {
	got := Combine()
	assert.Empty(t, got.Places)
	assert.Empty(t, got.Criteria)
}

func TestFilterProvince(t *testing.T) {
	header := []string{"nombre", "provincia"}
	rows := [][]string{
		{"a", "Alacant/Alicante"},
		{"b", "València/Valencia"},
		{"c", "Alacant/Alicante"},
		{"d"},
	}

	kept, err := FilterProvince(header, rows, "Alacant/Alicante")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "Alacant/Alicante"}, {"c", "Alacant/Alicante"}}, kept)

	kept, err = FilterProvince(header, rows, "Castelló/Castellón")
	require.NoError(t, err)
	assert.Empty(t, kept)

	_, err = FilterProvince([]string{"nombre"}, rows, "Alacant/Alicante")
	require.ErrorIs(t, err, ErrNoProvinceColumn)
}
