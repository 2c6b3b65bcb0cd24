package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"sheetcli/pkg/contracts/domain"
)

const (
	xlsxSheetName      = "Data"
	xlsxMinColumnWidth = 10
	xlsxMaxColumnWidth = 50
)

// SaveXLSX writes the view to a workbook at filePath.
func SaveXLSX(filePath string, view *domain.TableView) error {
	slog.Info("Writing XLSX file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(view.Rows)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteXLSX(file, view); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteXLSX encodes the view as a single-sheet workbook. Numeric text is
// stored as numbers; everything else, including formatted dates, as text.
func WriteXLSX(out io.Writer, view *domain.TableView) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(view.Columns))
	widths := make([]int, len(view.Columns))
	for i, col := range view.Columns {
		header[i] = col
		widths[i] = utf8.RuneCountInString(col)
	}
	if err := f.SetSheetRow(xlsxSheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for r, row := range view.Rows {
		values := make([]interface{}, len(view.Columns))
		for c := range view.Columns {
			if c >= len(row) {
				values[c] = ""
				continue
			}
			values[c] = xlsxValue(row[c])
			if n := utf8.RuneCountInString(row[c]); n > widths[c] {
				widths[c] = n
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(xlsxSheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}

	if len(view.Columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(view.Columns), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(xlsxSheetName, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	for i, w := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(xlsxSheetName, name, name, float64(clampWidth(w+2))); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func xlsxValue(s string) interface{} {
	if n, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
		return n
	}
	return s
}

func clampWidth(w int) int {
	switch {
	case w < xlsxMinColumnWidth:
		return xlsxMinColumnWidth
	case w > xlsxMaxColumnWidth:
		return xlsxMaxColumnWidth
	default:
		return w
	}
}
