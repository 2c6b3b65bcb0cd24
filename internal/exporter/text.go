package exporter

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"sheetcli/pkg/contracts/domain"
)

// RenderText renders the view as right-aligned plain text columns with a
// leading row index, the layout used for email bodies. An empty view lists
// its columns instead.
func RenderText(view *domain.TableView) string {
	if len(view.Rows) == 0 {
		return fmt.Sprintf("Empty table\nColumns: [%s]\nIndex: []", strings.Join(view.Columns, ", "))
	}

	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprint(tw, "\t")
	for _, col := range view.Columns {
		fmt.Fprint(tw, textCell(col), "\t")
	}
	fmt.Fprintln(tw)

	for i, row := range view.Rows {
		fmt.Fprint(tw, i, "\t")
		for c := range view.Columns {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			fmt.Fprint(tw, textCell(cell), "\t")
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()

	return strings.TrimRight(b.String(), "\n")
}

// textCell keeps a cell on one line and inside its column.
func textCell(s string) string {
	return strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
