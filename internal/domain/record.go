package domain

import (
	"strconv"
	"strings"
)

const utf8BOM = "\ufeff"

// ParseTable builds a Table from a CSV header and its data rows. Known columns
// are mapped onto Place fields; everything else is kept as an extra column.
// Rows shorter than the header are padded with empty values.
func ParseTable(header []string, rows [][]string) Table {
	header = cleanHeader(header)

	var t Table
	for _, col := range header {
		switch {
		case IsCriterion(col):
			t.Criteria = append(t.Criteria, Criterion(col))
		case isKnownColumn(col):
		default:
			t.ExtraColumns = append(t.ExtraColumns, col)
		}
	}

	t.Places = make([]Place, 0, len(rows))
	for _, row := range rows {
		t.Places = append(t.Places, parsePlace(header, row))
	}
	return t
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, utf8BOM)
		}
		out[i] = strings.TrimSpace(col)
	}
	return out
}

func isKnownColumn(col string) bool {
	switch col {
	case ColumnID, ColumnName, ColumnWKT, ColumnLat, ColumnLon,
		ColumnStreet, ColumnBarrio, ColumnCity, ColumnPostalCode, ColumnCategory:
		return true
	}
	return false
}

func parsePlace(header, row []string) Place {
	p := Place{}
	for i, col := range header {
		var v string
		if i < len(row) {
			v = strings.TrimSpace(row[i])
		}

		switch col {
		case ColumnID:
			p.ID, _ = strconv.Atoi(v)
		case ColumnName:
			p.Name = v
		case ColumnWKT:
			p.WKT = v
		case ColumnLat:
			p.Geo.Lat = parseFloatOrZero(v)
		case ColumnLon:
			p.Geo.Lon = parseFloatOrZero(v)
		case ColumnStreet:
			p.Address.Street = v
		case ColumnBarrio:
			p.Address.Neighborhood = v
		case ColumnCity:
			p.Address.City = v
		case ColumnPostalCode:
			p.Address.PostalCode = v
		case ColumnCategory:
			p.Category = v
		default:
			if IsCriterion(col) {
				if p.Labels == nil {
					p.Labels = make(map[Criterion]string)
				}
				p.Labels[Criterion(col)] = v
				continue
			}
			if p.Extra == nil {
				p.Extra = make(map[string]string)
			}
			p.Extra[col] = v
		}
	}
	return p
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
