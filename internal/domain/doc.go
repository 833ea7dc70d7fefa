// Package domain models municipal accessibility survey data for buildings
// and public spaces.
//
// # Data Source
//
// Surveys come from the Generalitat Valenciana open data portal as CSV files,
// one row per building or public space. The national file is narrowed to a
// province with [FilterProvince] before any other processing. A second source
// is OpenStreetMap, where features carry a "wheelchair" tag; those rows
// already hold WGS84 coordinates.
//
// # Survey Conventions
//
// Geometry:
//
//	The "WKT" column holds a point in ETRS89 / UTM zone 30N (EPSG:25830),
//	e.g. "POINT (719876.4 4247612.1)" as easting/northing in meters.
//	ETRS89 and WGS84 differ by well under a meter, so the UTM inverse on the
//	GRS80 ellipsoid is used directly. See [Projection].
//
// Accessibility levels:
//
//	Each criterion column holds a Spanish label:
//	  "Accesibilidad muy baja. Barreras arquitectónicas" → 1
//	  "Accesibilidad baja"                               → 2
//	  "Accesibilidad media"                              → 3
//	  "Accesibilidad alta"                               → 4
//	Empty or unrecognized labels become 0 (not surveyed).
//	"accesibilidad_total" is the aggregate; e1..e5 are sub-criteria
//	(main entrance, routes, public service areas, restrooms, elements).
//
// Text:
//
//	Free text is folded to lowercase ASCII-ish form: accents are stripped
//	via NFD decomposition, and "?" and "," are removed. Names are compared
//	after folding, so "Café Sol" and "cafe sol" are the same place.
//
// Unknown values:
//
//	"desconocido" is the sentinel written to address fields when the reverse
//	geocoder fails or returns no address. See [UnknownValue].
//
// # Bounding Box
//
// Rows whose coordinates fall outside the Alicante province box
// (lat 37.8–38.9, lon -0.9–0.1) are dropped as outliers, along with rows
// whose scores fall outside 0–4. See [DefaultBoundingBox].
package domain
