// Package visualize renders places as Leaflet web maps and a GeoJSON export.
package visualize

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"

	"github.com/couchcryptid/accessibility-etl/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Output file names written by Render.
const (
	LevelMapFile = "mapa_accesibilidad_niveles.html"
	HeatmapFile  = "heatmap_accesibilidad.html"
	ClusterFile  = "cluster_accesibilidad.html"
	GeoJSONFile  = "accesibilidad.geojson"
)

// Map view defaults, centered on Alicante city hall.
var (
	Center      = domain.Geo{Lat: 38.3452, Lon: -0.4810}
	DefaultZoom = 13
)

// levelColors indexes marker colors by total accessibility score.
var levelColors = []string{"blue", "red", "orange", "yellow", "green"}

// LevelColor returns the marker color for a total score.
func LevelColor(level int) string {
	if level < 0 || level >= len(levelColors) {
		return "gray"
	}
	return levelColors[level]
}

// marker is one plotted place.
type marker struct {
	Name  string  `json:"name"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Level int     `json:"level"`
}

// layer groups the markers of one accessibility level.
type layer struct {
	Name    string   `json:"name"`
	Color   string   `json:"color"`
	Markers []marker `json:"markers"`
}

type pageData struct {
	Title   string
	Center  [2]float64
	Zoom    int
	Layers  []layer
	Markers []marker
}

func markers(places []domain.Place) []marker {
	out := make([]marker, 0, len(places))
	for _, p := range places {
		if p.Geo.IsZero() {
			continue
		}
		level, _ := p.Score(domain.CriterionTotal)
		out = append(out, marker{Name: p.Name, Lat: p.Geo.Lat, Lon: p.Geo.Lon, Level: level})
	}
	return out
}

// levelLayers groups markers by level in ascending order.
func levelLayers(ms []marker) []layer {
	byLevel := map[int][]marker{}
	for _, m := range ms {
		byLevel[m.Level] = append(byLevel[m.Level], m)
	}
	levels := make([]int, 0, len(byLevel))
	for l := range byLevel {
		levels = append(levels, l)
	}
	sort.Ints(levels)

	layers := make([]layer, 0, len(levels))
	for _, l := range levels {
		layers = append(layers, layer{
			Name:    fmt.Sprintf("Nivel %d", l),
			Color:   LevelColor(l),
			Markers: byLevel[l],
		})
	}
	return layers
}

// FeatureCollection converts places with coordinates to GeoJSON points
// carrying name, category, city and scores as properties.
func FeatureCollection(places []domain.Place) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range places {
		if p.Geo.IsZero() {
			continue
		}
		f := geojson.NewFeature(orb.Point{p.Geo.Lon, p.Geo.Lat})
		if p.ID > 0 {
			f.ID = p.ID
		}
		f.Properties["name"] = p.Name
		if p.Category != "" {
			f.Properties["category"] = p.Category
		}
		if p.Address.City != "" {
			f.Properties["city"] = p.Address.City
		}
		for c, n := range p.Scores {
			f.Properties[string(c)] = n
		}
		fc.Append(f)
	}
	return fc
}

// Render writes the level map, heatmap, cluster map and GeoJSON export into
// dir and returns the written paths.
func Render(dir string, places []domain.Place) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	ms := markers(places)
	base := pageData{
		Center:  [2]float64{Center.Lat, Center.Lon},
		Zoom:    DefaultZoom,
		Markers: ms,
	}

	pages := []struct {
		file  string
		title string
		tmpl  *template.Template
	}{
		{LevelMapFile, "Accesibilidad por niveles", levelTmpl},
		{HeatmapFile, "Mapa de calor de accesibilidad", heatTmpl},
		{ClusterFile, "Lugares accesibles", clusterTmpl},
	}

	written := make([]string, 0, len(pages)+1)
	for _, pg := range pages {
		data := base
		data.Title = pg.title
		if pg.file == LevelMapFile {
			data.Layers = levelLayers(ms)
		}

		var buf bytes.Buffer
		if err := pg.tmpl.Execute(&buf, data); err != nil {
			return written, fmt.Errorf("render %s: %w", pg.file, err)
		}
		path := filepath.Join(dir, pg.file)
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	data, err := FeatureCollection(places).MarshalJSON()
	if err != nil {
		return written, fmt.Errorf("marshal geojson: %w", err)
	}
	path := filepath.Join(dir, GeoJSONFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return written, fmt.Errorf("write %s: %w", path, err)
	}
	return append(written, path), nil
}
