package dataprocessing

import (
	"fmt"
	"log/slog"

	"sheetcli/internal/config"
	apperrors "sheetcli/internal/errors"
	"sheetcli/pkg/contracts/domain"
)

// ProcessingOptions configures the sparse-column filter
type ProcessingOptions struct {
	// MinNonEmpty is the number of non-empty cells a column needs to be kept
	MinNonEmpty int

	// SampleSize bounds how many leading rows are counted
	SampleSize int
}

// DefaultOptions returns the stock thresholds (50 of the first 180 rows)
func DefaultOptions() ProcessingOptions {
	return ProcessingOptions{
		MinNonEmpty: config.DefaultMinNonEmpty,
		SampleSize:  config.DefaultSampleSize,
	}
}

// Result is a filtered table with its detected date columns and the
// formatted view in original row order.
type Result struct {
	Table       *domain.Table
	DateColumns []string
	Summary     domain.LoadSummary
	View        domain.TableView
}

// Processor runs filter, date detection and formatting over a parsed table.
type Processor struct {
	opts ProcessingOptions
}

// NewProcessor creates a processor with the given thresholds
func NewProcessor(minNonEmpty, sampleSize int) *Processor {
	return &Processor{opts: ProcessingOptions{MinNonEmpty: minNonEmpty, SampleSize: sampleSize}}
}

// NewProcessorWithOptions creates a processor from options
func NewProcessorWithOptions(opts ProcessingOptions) *Processor {
	return &Processor{opts: opts}
}

// Process filters t and prepares it for display. When no column survives
// the filter it returns an EMPTY_RESULT error.
func (p *Processor) Process(t *domain.Table, source string) (*Result, error) {
	kept := FilterSparseColumns(t, p.opts.MinNonEmpty, p.opts.SampleSize)
	if len(kept) == 0 {
		return nil, apperrors.NewEmptyResultError(
			fmt.Sprintf("no columns with at least %d non-empty cells in the first %d rows", p.opts.MinNonEmpty, p.opts.SampleSize)).
			WithContext("source", source).
			WithContext("initial_columns", t.ColumnCount())
	}

	filtered, err := ApplyColumnFilter(t, kept)
	if err != nil {
		return nil, fmt.Errorf("failed to apply column filter: %w", err)
	}

	dateColumns := DetectDateColumns(filtered)

	slog.Info("Processed table",
		slog.String("source", source),
		slog.Int("rows", filtered.RowCount()),
		slog.Int("initial_columns", t.ColumnCount()),
		slog.Int("kept_columns", len(kept)),
		slog.Any("date_columns", dateColumns))

	return &Result{
		Table:       filtered,
		DateColumns: dateColumns,
		Summary: domain.LoadSummary{
			Source:         source,
			Rows:           filtered.RowCount(),
			InitialColumns: t.ColumnCount(),
			KeptColumns:    kept,
			DroppedColumns: droppedColumns(t.ColumnNames(), kept),
			DateColumns:    dateColumns,
		},
		View: domain.TableView{
			Source:      source,
			Columns:     filtered.ColumnNames(),
			DateColumns: dateColumns,
			Rows:        FormatTable(filtered, dateColumns),
			TotalRows:   filtered.RowCount(),
		},
	}, nil
}

func droppedColumns(all, kept []string) []string {
	keep := make(map[string]bool, len(kept))
	for _, name := range kept {
		keep[name] = true
	}
	dropped := []string{}
	for _, name := range all {
		if !keep[name] {
			dropped = append(dropped, name)
		}
	}
	return dropped
}
