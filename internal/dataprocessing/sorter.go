package dataprocessing

import (
	"slices"
	"strings"
)

// SortRows orders formatted rows by the display text of column col. The
// ascending sort is stable; descending is its exact reverse, so equal values
// end up in reverse of their original order. rows is sorted in place.
func SortRows(rows [][]string, col int, desc bool) {
	slices.SortStableFunc(rows, func(a, b []string) int {
		return strings.Compare(cellAt(a, col), cellAt(b, col))
	})
	if desc {
		slices.Reverse(rows)
	}
}

// FilterRows returns the rows where any cell contains term,
// case-insensitively. An empty term matches every row.
func FilterRows(rows [][]string, term string) [][]string {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return rows
	}
	matched := make([][]string, 0, len(rows))
	for _, row := range rows {
		for _, cell := range row {
			if strings.Contains(strings.ToLower(cell), needle) {
				matched = append(matched, row)
				break
			}
		}
	}
	return matched
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
