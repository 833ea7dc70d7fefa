package domain

import "time"

// Column names used by the survey CSV files.
const (
	ColumnID         = "id"
	ColumnName       = "nombre"
	ColumnWKT        = "WKT"
	ColumnLat        = "lat"
	ColumnLon        = "lon"
	ColumnStreet     = "direccion"
	ColumnBarrio     = "barrio"
	ColumnCity       = "ciudad"
	ColumnPostalCode = "codigo_postal"
	ColumnCategory   = "tipo_lugar"
	ColumnProvince   = "provincia"
)

// UnknownValue replaces address fields the geocoder could not resolve.
const UnknownValue = "desconocido"

// Criterion identifies one accessibility column of the survey.
type Criterion string

const (
	CriterionTotal        Criterion = "accesibilidad_total"
	CriterionMainEntrance Criterion = "e1_entrada_ppal"
	CriterionRoutes       Criterion = "e2_itinerarios_accesibles"
	CriterionServiceAreas Criterion = "e3_zonas_atencion_publico"
	CriterionRestrooms    Criterion = "e4_servicios_higienicos"
	CriterionElements     Criterion = "e5_elementos_accesibles"
)

// Criteria lists every accessibility column in output order.
var Criteria = []Criterion{
	CriterionTotal,
	CriterionMainEntrance,
	CriterionRoutes,
	CriterionServiceAreas,
	CriterionRestrooms,
	CriterionElements,
}

// SubCriteria are the per-aspect criteria, excluding the aggregate.
var SubCriteria = Criteria[1:]

// IsCriterion reports whether column names an accessibility criterion.
func IsCriterion(column string) bool {
	for _, c := range Criteria {
		if string(c) == column {
			return true
		}
	}
	return false
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// IsZero reports whether the coordinates were never set.
func (g Geo) IsZero() bool {
	return g.Lat == 0 && g.Lon == 0
}

// Address holds the postal fields resolved by reverse geocoding.
type Address struct {
	Street       string `json:"street,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
}

// Place is one surveyed building or public space.
type Place struct {
	ID       int     `json:"id,omitempty"`
	Name     string  `json:"name"`
	Address  Address `json:"address"`
	Geo      Geo     `json:"geo"`
	WKT      string  `json:"-"`
	Category string  `json:"category,omitempty"`

	// Labels holds the raw survey text per criterion; Scores is filled by
	// Categorize. Only criteria present in the source carry an entry.
	Labels map[Criterion]string `json:"-"`
	Scores map[Criterion]int    `json:"scores,omitempty"`

	GeoSource string            `json:"geo_source,omitempty"` // "reverse", "failed"
	Extra     map[string]string `json:"extra,omitempty"`

	ProcessedAt time.Time `json:"processed_at"`
}

// Table is an in-memory survey dataset.
type Table struct {
	// Criteria lists the criterion columns present in the source.
	Criteria []Criterion
	// ExtraColumns lists passthrough columns in source order.
	ExtraColumns []string
	Places       []Place
}

// HasCriterion reports whether the table carries column c.
func (t Table) HasCriterion(c Criterion) bool {
	for _, have := range t.Criteria {
		if have == c {
			return true
		}
	}
	return false
}
