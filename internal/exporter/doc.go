// Package exporter writes the visible table to other formats.
//
// This package contains three writers, all working from a domain.TableView
// so that what is exported matches what is on screen (sorted and searched):
//
// RenderText: aligned plain text with a row index column, used as the email
// body and by the show command.
//
// CSVWriter: CSV with an optional UTF-8 BOM for Excel compatibility.
//
// XLSX: a single-sheet workbook with a bold header row.
//
// Example usage:
//
//	body := exporter.RenderText(&view)
//
//	writer := exporter.NewCSVWriter()
//	err := writer.WriteFile("out/visible.csv", &view)
//
//	err = exporter.SaveXLSX("out/visible.xlsx", &view)
package exporter
