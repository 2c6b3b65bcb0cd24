// Package dataprocessing turns a spreadsheet into a display-ready table.
//
// # Pipeline
//
// A load runs the same four steps regardless of where the data came from:
//
//	File / Google Sheet → Parser → Table → Sparse filter → Date detector → Formatter → TableView
//
// 1. Parser: reads .xlsx/.xlsm (excelize), .xls (extrame/xls), .csv, or a
// Google Sheet range into a domain.Table of typed cells.
// 2. Sparse filter: keeps columns with at least MinNonEmpty non-empty cells
// among the first SampleSize rows.
// 3. Date detector: flags a column when its first non-missing value is a
// date. Only that single value is inspected.
// 4. Formatter: renders date-flagged cells as "Jan-05" and everything else
// as plain text.
//
// # Usage
//
//	table, err := dataprocessing.ParseFile("report.xlsx")
//	if err != nil {
//	    return err
//	}
//	result, err := dataprocessing.NewProcessor(50, 180).Process(table, "report.xlsx")
//
// Sorting and searching work on the formatted view; see SortRows and
// FilterRows.
//
// # Error Handling
//
// Parser failures are FILE_OPEN errors. A table where no column survives
// the sparse filter is an EMPTY_RESULT error, which callers surface as a
// warning.
package dataprocessing
