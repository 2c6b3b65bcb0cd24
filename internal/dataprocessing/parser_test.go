package dataprocessing

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "sheetcli/internal/errors"
	"sheetcli/pkg/contracts/domain"
)

// writeWorkbook saves rows (1-based sheet rows) to a fresh workbook.
func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for r, row := range rows {
		for c, val := range row {
			if val == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, val))
		}
	}

	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestParseFile_Workbook(t *testing.T) {
	when := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	path := writeWorkbook(t, [][]interface{}{
		{"Name", "Amount", "When", nil, "Name"},
		{"alpha", 12.5, when, "x", "dup"},
		{"beta", 3, nil, nil, "NA"},
	})

	table, err := ParseFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Amount", "When", "Unnamed: 3", "Name.1"}, table.ColumnNames())
	assert.Equal(t, 2, table.RowCount())

	row := table.Row(0)
	assert.Equal(t, domain.TextCell("alpha"), row[0])
	assert.Equal(t, domain.NumberCell(12.5), row[1])
	require.Equal(t, domain.CellDate, row[2].Kind)
	assert.Equal(t, "Jan-05", row[2].Time.Format("Jan-02"))
	assert.Equal(t, 2024, row[2].Time.Year())

	row = table.Row(1)
	assert.Equal(t, domain.NumberCell(3), row[1])
	assert.Equal(t, domain.CellMissing, row[2].Kind)
	assert.Equal(t, domain.CellMissing, row[3].Kind)
	assert.Equal(t, domain.CellMissing, row[4].Kind, "NA marker reads as missing")
}

func TestParseFile_WorkbookSkipsLeadingBlankRows(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{},
		{"A", "B"},
		{"1", 2},
	})

	table, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, table.ColumnNames())
	assert.Equal(t, 1, table.RowCount())
	assert.Equal(t, domain.TextCell("1"), table.Row(0)[0], "stored strings stay text")
	assert.Equal(t, domain.NumberCell(2), table.Row(0)[1])
}

func TestParseFile_CSV(t *testing.T) {
	content := "\ufeffid,,label,label\n1,x,hello,\n2,,N/A,world\n,,,\n"
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := ParseFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "Unnamed: 1", "label", "label.1"}, table.ColumnNames())
	assert.Equal(t, 2, table.RowCount(), "trailing empty row is dropped")

	assert.Equal(t, domain.NumberCell(1), table.Row(0)[0])
	assert.Equal(t, domain.TextCell("hello"), table.Row(0)[2])
	assert.Equal(t, domain.CellMissing, table.Row(0)[3].Kind)
	assert.Equal(t, domain.CellMissing, table.Row(1)[2].Kind)
	assert.Equal(t, domain.TextCell("world"), table.Row(1)[3])
}

func TestParseFile_RaggedCSV(t *testing.T) {
	content := "a,b\n1,2,3\n4\n"
	path := filepath.Join(t.TempDir(), "ragged.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "Unnamed: 2"}, table.ColumnNames())
	assert.Equal(t, domain.CellMissing, table.Row(1)[1].Kind)
}

func TestParseFile_Errors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("hello"), 0644))
	corrupt := filepath.Join(dir, "corrupt.xlsx")
	require.NoError(t, os.WriteFile(corrupt, []byte("not a zip"), 0644))

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "nope.xlsx")},
		{"unsupported extension", text},
		{"empty csv", empty},
		{"corrupt workbook", corrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ParseFile(tt.path)
			require.Error(t, err)
			assert.Nil(t, table)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeFileOpen))
		})
	}
}

func TestUniqueHeader(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"unchanged", []string{"a", "b"}, []string{"a", "b"}},
		{"blank", []string{"a", "", " "}, []string{"a", "Unnamed: 1", "Unnamed: 2"}},
		{"repeats", []string{"a", "a", "a"}, []string{"a", "a.1", "a.2"}},
		{"explicit suffix clash", []string{"a", "a.1", "a"}, []string{"a", "a.1", "a.2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, uniqueHeader(tt.in))
		})
	}
}

func TestIsDateFormatCode(t *testing.T) {
	tests := map[string]bool{
		"yyyy-mm-dd":     true,
		"d-mmm":          true,
		"0.00":           false,
		`"day "0`:        false,
		"[Red]#,##0":     false,
		"#,##0 \\d":      false,
		"mmm d, yyyy;@":  true,
		"[$-409]h:mm AM": false,
	}
	for code, want := range tests {
		assert.Equal(t, want, isDateFormatCode(code), code)
	}
}

func TestInferCell(t *testing.T) {
	assert.Equal(t, domain.MissingCell(), inferCell(""))
	assert.Equal(t, domain.MissingCell(), inferCell("NaN"))
	assert.Equal(t, domain.NumberCell(-4.25), inferCell("-4.25"))
	assert.Equal(t, domain.TextCell("12 apples"), inferCell("12 apples"))
}
