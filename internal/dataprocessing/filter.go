package dataprocessing

import (
	"log/slog"

	"sheetcli/pkg/contracts/domain"
)

// FilterSparseColumns returns, in original order, the names of the columns
// with at least minNonEmpty non-empty cells among the first
// min(rows, sampleSize) rows. A table with no rows yields nothing.
func FilterSparseColumns(t *domain.Table, minNonEmpty, sampleSize int) []string {
	if t == nil || t.RowCount() == 0 {
		return []string{}
	}

	sample := t.RowCount()
	if sampleSize >= 0 && sampleSize < sample {
		sample = sampleSize
	}

	kept := make([]string, 0, t.ColumnCount())
	for _, col := range t.Columns() {
		count := CountNonEmpty(col.Cells[:sample])
		if count >= minNonEmpty {
			kept = append(kept, col.Name)
			slog.Debug("Keeping column",
				slog.String("column", col.Name),
				slog.Int("non_empty", count))
		} else {
			slog.Debug("Removing sparse column",
				slog.String("column", col.Name),
				slog.Int("non_empty", count),
				slog.Int("min_nonempty", minNonEmpty))
		}
	}
	return kept
}

// CountNonEmpty counts cells that are neither missing nor empty strings.
func CountNonEmpty(cells []domain.Cell) int {
	n := 0
	for _, c := range cells {
		if !c.IsEmpty() {
			n++
		}
	}
	return n
}

// ApplyColumnFilter returns a table holding only the kept columns. The row
// count is unchanged.
func ApplyColumnFilter(t *domain.Table, kept []string) (*domain.Table, error) {
	return t.Select(kept)
}
