package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"sheetcli/pkg/contracts/domain"
)

// RenderStatic renders the view as a bordered table followed by a row count,
// for non-interactive output. Cells wider than the column clamp are cut
// with an ellipsis.
func RenderStatic(view domain.TableView) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(Primary).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	headers := make([]string, len(view.Columns))
	for i, name := range view.Columns {
		headers[i] = truncate(name, maxColumnWidth)
		if name == view.SortColumn {
			switch view.SortOrder {
			case domain.SortAsc:
				headers[i] += " ↑"
			case domain.SortDesc:
				headers[i] += " ↓"
			}
		}
	}

	rows := make([][]string, len(view.Rows))
	for i, r := range view.Rows {
		row := make([]string, len(view.Columns))
		for j := range row {
			if j < len(r) {
				row[j] = truncate(r[j], maxColumnWidth)
			}
		}
		rows[i] = row
	}

	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Border)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	var sb strings.Builder
	sb.WriteString(t.Render())
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%d of %d rows", len(view.Rows), view.TotalRows))
	if view.Query != "" {
		sb.WriteString(fmt.Sprintf(" matching %q", view.Query))
	}
	sb.WriteString("\n")
	return sb.String()
}

func truncate(s string, width int) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\t", " ").Replace(s)
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
