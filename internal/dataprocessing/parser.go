package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"sheetcli/internal/config"
	apperrors "sheetcli/internal/errors"
	"sheetcli/pkg/contracts/domain"
)

// naValues are the text values read as missing, following the usual
// spreadsheet-library defaults.
var naValues = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// builtinDateFormats are the built-in Excel number format IDs that display
// a date or time.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	45: true, 46: true, 47: true,
}

// ParseFile reads the first worksheet of a spreadsheet file into a Table.
// The first non-empty row is the header.
func ParseFile(filePath string) (*domain.Table, error) {
	if _, err := os.Stat(filePath); err != nil {
		return nil, fileOpenError(filePath, err)
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	var (
		grid [][]domain.Cell
		err  error
	)
	switch ext {
	case ".xlsx", ".xlsm":
		grid, err = readWorkbook(filePath)
	case ".xls":
		grid, err = readLegacyWorkbook(filePath)
	case ".csv":
		grid, err = readCSV(filePath)
	default:
		err = fmt.Errorf("unsupported file type %q (supported: %s)", ext, strings.Join(config.SupportedExtensions, ", "))
	}
	if err != nil {
		return nil, fileOpenError(filePath, err)
	}

	table, err := buildTable(grid)
	if err != nil {
		return nil, fileOpenError(filePath, err)
	}

	slog.Debug("Parsed spreadsheet",
		slog.String("file", filepath.Base(filePath)),
		slog.Int("rows", table.RowCount()),
		slog.Int("columns", table.ColumnCount()))
	return table, nil
}

func fileOpenError(filePath string, cause error) error {
	return apperrors.NewFileOpenError(fmt.Sprintf("failed to load %s", filepath.Base(filePath)), cause).
		WithContext("path", filePath)
}

// workbookReader reads typed cells from an excelize workbook.
type workbookReader struct {
	f          *excelize.File
	sheet      string
	dateStyles map[int]bool
}

func readWorkbook(filePath string) ([][]domain.Cell, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	r := &workbookReader{f: f, sheet: sheets[0], dateStyles: make(map[int]bool)}
	rows, err := f.GetRows(r.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", r.sheet, err)
	}

	grid := make([][]domain.Cell, len(rows))
	for i, row := range rows {
		cells := make([]domain.Cell, len(row))
		for j, raw := range row {
			cells[j] = r.cell(i, j, raw)
		}
		grid[i] = cells
	}
	return grid, nil
}

// cell converts one raw cell value using its stored type and number format.
func (r *workbookReader) cell(row, col int, raw string) domain.Cell {
	if raw == "" {
		return domain.MissingCell()
	}
	ref, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return inferCell(raw)
	}

	typ, err := r.f.GetCellType(r.sheet, ref)
	if err != nil {
		return inferCell(raw)
	}
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return textCell(raw)
	case excelize.CellTypeError:
		return domain.TextCell(raw)
	case excelize.CellTypeBool:
		if raw == "1" || strings.EqualFold(raw, "true") {
			return domain.TextCell("True")
		}
		return domain.TextCell("False")
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return domain.DateCell(t)
		}
		return domain.TextCell(raw)
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return textCell(raw)
	}
	if r.isDateStyle(ref) {
		if t, err := excelize.ExcelDateToTime(n, false); err == nil {
			return domain.DateCell(t)
		}
	}
	return domain.NumberCell(n)
}

func (r *workbookReader) isDateStyle(ref string) bool {
	styleID, err := r.f.GetCellStyle(r.sheet, ref)
	if err != nil || styleID == 0 {
		return false
	}
	if isDate, ok := r.dateStyles[styleID]; ok {
		return isDate
	}

	isDate := false
	if style, err := r.f.GetStyle(styleID); err == nil && style != nil {
		switch {
		case builtinDateFormats[style.NumFmt]:
			isDate = true
		case style.CustomNumFmt != nil:
			isDate = isDateFormatCode(*style.CustomNumFmt)
		}
	}
	r.dateStyles[styleID] = isDate
	return isDate
}

// isDateFormatCode reports whether a custom number format displays a date.
// Quoted literals, escaped characters and bracketed sections are ignored.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case ch == '"':
			inQuote = !inQuote
		case inQuote:
		case ch == '[':
			inBracket = true
		case ch == ']':
			inBracket = false
		case inBracket:
		case ch == '\\' || ch == '_' || ch == '*':
			i++
		default:
			b.WriteByte(ch)
		}
	}
	plain := strings.ToLower(b.String())
	return strings.ContainsAny(plain, "dy")
}

func readLegacyWorkbook(filePath string) ([][]domain.Cell, error) {
	wb, err := xls.Open(filePath, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("failed to read first sheet")
	}

	grid := make([][]domain.Cell, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]domain.Cell, row.LastCol())
		for j := range cells {
			if j < row.FirstCol() {
				cells[j] = domain.MissingCell()
				continue
			}
			cells[j] = inferCell(row.Col(j))
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

func readCSV(filePath string) ([][]domain.Cell, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readDelimited(file)
}

// readDelimited parses CSV text, dropping a leading UTF-8 byte order mark.
func readDelimited(r io.Reader) ([][]domain.Cell, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}

	grid := make([][]domain.Cell, len(records))
	for i, record := range records {
		cells := make([]domain.Cell, len(record))
		for j, value := range record {
			cells[j] = inferCell(value)
		}
		grid[i] = cells
	}
	return grid, nil
}

// inferCell types an untyped text value: NA markers are missing, numeric
// text is a number, anything else is text.
func inferCell(s string) domain.Cell {
	if naValues[s] {
		return domain.MissingCell()
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return domain.NumberCell(n)
	}
	return domain.TextCell(s)
}

// textCell keeps stored strings as text, mapping NA markers to missing.
func textCell(s string) domain.Cell {
	if naValues[s] {
		return domain.MissingCell()
	}
	return domain.TextCell(s)
}

// buildTable takes the first non-empty row as the header and the rest as
// data. Trailing empty rows are dropped.
func buildTable(grid [][]domain.Cell) (*domain.Table, error) {
	start := -1
	for i, row := range grid {
		if !rowIsEmpty(row) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("no header row found")
	}

	data := grid[start+1:]
	for len(data) > 0 && rowIsEmpty(data[len(data)-1]) {
		data = data[:len(data)-1]
	}

	headerCells := grid[start]
	width := len(headerCells)
	for _, row := range data {
		if len(row) > width {
			width = len(row)
		}
	}

	header := make([]string, width)
	for i := range header {
		if i < len(headerCells) {
			header[i] = headerCells[i].String()
		}
	}

	return domain.NewTable(uniqueHeader(header), data)
}

func rowIsEmpty(row []domain.Cell) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// uniqueHeader names blank headers "Unnamed: N" and suffixes repeats with
// ".1", ".2", ...
func uniqueHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, name := range header {
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		candidate := name
		for {
			if _, dup := seen[candidate]; !dup {
				break
			}
			seen[name]++
			candidate = fmt.Sprintf("%s.%d", name, seen[name])
		}
		seen[candidate] = 0
		out[i] = candidate
	}
	return out
}
