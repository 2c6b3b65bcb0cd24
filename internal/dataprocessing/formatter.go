package dataprocessing

import (
	"sheetcli/internal/config"
	"sheetcli/pkg/contracts/domain"
)

// FormatValue renders a cell for display. In a date-flagged column native
// dates and parseable date text become "Jan-05"; everything else, including
// text that does not parse, falls back to its plain form. Missing cells are
// "". It never fails.
func FormatValue(c domain.Cell, isDate bool) string {
	if !isDate {
		return c.String()
	}
	switch c.Kind {
	case domain.CellDate:
		return c.Time.Format(config.DisplayDateLayout)
	case domain.CellText:
		if t, ok := ParseDate(c.Text); ok {
			return t.Format(config.DisplayDateLayout)
		}
	}
	return c.String()
}

// FormatTable renders every cell of t. dateColumns names the columns to
// format as dates.
func FormatTable(t *domain.Table, dateColumns []string) [][]string {
	isDate := make([]bool, t.ColumnCount())
	flagged := make(map[string]bool, len(dateColumns))
	for _, name := range dateColumns {
		flagged[name] = true
	}
	for i, name := range t.ColumnNames() {
		isDate[i] = flagged[name]
	}

	rows := make([][]string, t.RowCount())
	for r := range rows {
		row := make([]string, t.ColumnCount())
		for c, col := range t.Columns() {
			row[c] = FormatValue(col.Cells[r], isDate[c])
		}
		rows[r] = row
	}
	return rows
}
