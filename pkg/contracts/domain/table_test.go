package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell_String(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want string
	}{
		{name: "missing", cell: MissingCell(), want: ""},
		{name: "text", cell: TextCell("hello"), want: "hello"},
		{name: "integer number", cell: NumberCell(12), want: "12"},
		{name: "fractional number", cell: NumberCell(12.5), want: "12.5"},
		{name: "date", cell: DateCell(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)), want: "2024-01-05 00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cell.String())
		})
	}
}

func TestCell_IsEmpty(t *testing.T) {
	assert.True(t, MissingCell().IsEmpty())
	assert.True(t, TextCell("").IsEmpty())
	assert.False(t, TextCell(" ").IsEmpty())
	assert.False(t, NumberCell(0).IsEmpty())
}

func TestNewTable(t *testing.T) {
	tbl, err := NewTable([]string{"A", "B"}, [][]Cell{
		{TextCell("a1"), NumberCell(1)},
		{TextCell("a2")},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, tbl.RowCount())
	assert.Equal(t, 2, tbl.ColumnCount())
	assert.Equal(t, []string{"A", "B"}, tbl.ColumnNames())

	b, ok := tbl.Column("B")
	require.True(t, ok)
	assert.Equal(t, CellNumber, b.Cells[0].Kind)
	assert.Equal(t, CellMissing, b.Cells[1].Kind, "short rows are padded")

	assert.Equal(t, []Cell{TextCell("a2"), MissingCell()}, tbl.Row(1))
}

func TestNewTable_Errors(t *testing.T) {
	_, err := NewTable([]string{"A", "A"}, nil)
	assert.Error(t, err)

	_, err = NewTable([]string{"A"}, [][]Cell{{TextCell("x"), TextCell("y")}})
	assert.Error(t, err)
}

func TestTable_Select(t *testing.T) {
	tbl, err := NewTable([]string{"A", "B", "C"}, [][]Cell{
		{TextCell("a"), TextCell("b"), TextCell("c")},
	})
	require.NoError(t, err)

	sel, err := tbl.Select([]string{"C", "A"})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A"}, sel.ColumnNames())
	assert.Equal(t, tbl.RowCount(), sel.RowCount())
	assert.Equal(t, "c", sel.Row(0)[0].Text)

	empty, err := tbl.Select(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.ColumnCount())
	assert.Equal(t, 1, empty.RowCount())

	_, err = tbl.Select([]string{"Z"})
	assert.Error(t, err)
}

func TestTableView_ColumnIndex(t *testing.T) {
	v := &TableView{Columns: []string{"Name", "Date"}}
	assert.Equal(t, 1, v.ColumnIndex("Date"))
	assert.Equal(t, -1, v.ColumnIndex("Missing"))
}
