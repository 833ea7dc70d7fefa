package domain

import "errors"

// Combine concatenates tables vertically and assigns sequential ids starting
// at 1. Criterion and extra columns are the union of the inputs, in the order
// they are first seen.
func Combine(tables ...Table) Table {
	var out Table
	seenCriteria := make(map[Criterion]struct{})
	seenExtra := make(map[string]struct{})

	total := 0
	for _, t := range tables {
		total += len(t.Places)
	}
	out.Places = make([]Place, 0, total)

	for _, t := range tables {
		for _, c := range t.Criteria {
			if _, ok := seenCriteria[c]; !ok {
				seenCriteria[c] = struct{}{}
				out.Criteria = append(out.Criteria, c)
			}
		}
		for _, col := range t.ExtraColumns {
			if _, ok := seenExtra[col]; !ok {
				seenExtra[col] = struct{}{}
				out.ExtraColumns = append(out.ExtraColumns, col)
			}
		}
		out.Places = append(out.Places, t.Places...)
	}

	for i := range out.Places {
		out.Places[i].ID = i + 1
	}
	out.Criteria = orderCriteria(out.Criteria)
	return out
}

// orderCriteria sorts present criteria into canonical column order.
func orderCriteria(present []Criterion) []Criterion {
	have := make(map[Criterion]bool, len(present))
	for _, c := range present {
		have[c] = true
	}
	ordered := make([]Criterion, 0, len(present))
	for _, c := range Criteria {
		if have[c] {
			ordered = append(ordered, c)
		}
	}
	return ordered
}

// ErrNoProvinceColumn is returned by FilterProvince for headers without a
// provincia column.
var ErrNoProvinceColumn = errors.New("no " + ColumnProvince + " column")

// FilterProvince keeps the raw rows whose province column equals province.
func FilterProvince(header []string, rows [][]string, province string) ([][]string, error) {
	header = cleanHeader(header)
	idx := -1
	for i, col := range header {
		if col == ColumnProvince {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNoProvinceColumn
	}

	kept := [][]string{}
	for _, row := range rows {
		if idx < len(row) && row[idx] == province {
			kept = append(kept, row)
		}
	}
	return kept, nil
}
