package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"sheetcli/pkg/contracts/domain"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	// BOMPrefix adds a UTF-8 BOM so Excel recognizes the encoding
	BOMPrefix bool
}

// NewCSVWriter creates a CSV writer that prefixes a BOM
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{BOMPrefix: true}
}

// WriteFile writes the view to filePath, creating parent directories.
func (w *CSVWriter) WriteFile(filePath string, view *domain.TableView) error {
	slog.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(view.Rows)))

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}

	if err := w.Write(file, view); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Write encodes the view's header and rows to out.
func (w *CSVWriter) Write(out io.Writer, view *domain.TableView) error {
	if w.BOMPrefix {
		if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)

	if err := writer.Write(view.Columns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, record := range view.Rows {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
