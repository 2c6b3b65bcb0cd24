package dataprocessing

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"sheetcli/pkg/contracts/domain"
)

// ParseDate parses free-form date text using lenient default rules. Values
// without a zone are read as UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DetectDateColumns flags each column whose first non-missing cell is a
// native date or text that ParseDate accepts. Only that one cell is
// inspected, so a column with a date first and garbage afterwards is still
// flagged.
func DetectDateColumns(t *domain.Table) []string {
	dates := []string{}
	if t == nil {
		return dates
	}
	for _, col := range t.Columns() {
		if isDateSample(firstPresent(col.Cells)) {
			dates = append(dates, col.Name)
		}
	}
	return dates
}

func firstPresent(cells []domain.Cell) domain.Cell {
	for _, c := range cells {
		if c.Kind != domain.CellMissing {
			return c
		}
	}
	return domain.MissingCell()
}

func isDateSample(c domain.Cell) bool {
	switch c.Kind {
	case domain.CellDate:
		return true
	case domain.CellText:
		_, ok := ParseDate(c.Text)
		return ok
	default:
		return false
	}
}
