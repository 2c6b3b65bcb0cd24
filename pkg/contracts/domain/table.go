package domain

import (
	"fmt"
	"strconv"
	"time"
)

// CellKind identifies what a spreadsheet cell holds.
type CellKind int

const (
	CellMissing CellKind = iota
	CellText
	CellNumber
	CellDate
)

// String returns the kind name used in logs and JSON payloads.
func (k CellKind) String() string {
	switch k {
	case CellText:
		return "text"
	case CellNumber:
		return "number"
	case CellDate:
		return "date"
	default:
		return "missing"
	}
}

// Cell is a single typed value read from a spreadsheet.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Time   time.Time
}

// MissingCell returns an empty cell.
func MissingCell() Cell { return Cell{Kind: CellMissing} }

// TextCell returns a text cell.
func TextCell(s string) Cell { return Cell{Kind: CellText, Text: s} }

// NumberCell returns a numeric cell.
func NumberCell(f float64) Cell { return Cell{Kind: CellNumber, Number: f} }

// DateCell returns a native date/time cell.
func DateCell(t time.Time) Cell { return Cell{Kind: CellDate, Time: t} }

// IsEmpty reports whether the cell is missing or holds an empty string.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellMissing || (c.Kind == CellText && c.Text == "")
}

// String renders the plain text form of the cell. Missing cells render as "".
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellDate:
		return c.Time.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Column is a named, ordered sequence of cells.
type Column struct {
	Name  string
	Cells []Cell
}

// Table is an ordered set of uniquely named columns of equal length.
type Table struct {
	columns []Column
	index   map[string]int
	rows    int
}

// NewTable builds a table from a header and row-major cells. Short rows are
// padded with missing cells; rows longer than the header are rejected.
func NewTable(header []string, rows [][]Cell) (*Table, error) {
	t := &Table{
		columns: make([]Column, len(header)),
		index:   make(map[string]int, len(header)),
		rows:    len(rows),
	}
	for i, name := range header {
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		t.index[name] = i
		t.columns[i] = Column{Name: name, Cells: make([]Cell, len(rows))}
	}
	for r, row := range rows {
		if len(row) > len(header) {
			return nil, fmt.Errorf("row %d has %d cells, header has %d", r, len(row), len(header))
		}
		for c := range header {
			if c < len(row) {
				t.columns[c].Cells[r] = row[c]
			} else {
				t.columns[c].Cells[r] = MissingCell()
			}
		}
	}
	return t, nil
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int { return t.rows }

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int { return len(t.columns) }

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// Columns returns the columns in order. The slice must not be modified.
func (t *Table) Columns() []Column { return t.columns }

// Row returns the cells of row i across all columns.
func (t *Table) Row(i int) []Cell {
	row := make([]Cell, len(t.columns))
	for c, col := range t.columns {
		row[c] = col.Cells[i]
	}
	return row
}

// Select returns a new table holding only the named columns, in the order
// given. The row count is unchanged.
func (t *Table) Select(names []string) (*Table, error) {
	out := &Table{
		columns: make([]Column, 0, len(names)),
		index:   make(map[string]int, len(names)),
		rows:    t.rows,
	}
	for _, name := range names {
		col, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("unknown column %q", name)
		}
		if _, dup := out.index[name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		out.index[name] = len(out.columns)
		out.columns = append(out.columns, col)
	}
	return out, nil
}
