package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "sheetcli/internal/errors"
	"sheetcli/pkg/contracts/domain"
)

// Session is what the grid needs from the table session
type Session interface {
	View() (domain.TableView, error)
	ToggleSort(column string) (domain.TableView, error)
	Search(term string) (domain.TableView, error)
	ResetSearch() (domain.TableView, error)
}

// Model is the interactive grid. The visible rows always come from the
// session; the model only tracks the selected column and the search box.
type Model struct {
	session Session
	view    domain.TableView

	table     table.Model
	search    textinput.Model
	searching bool
	selected  int

	status    string
	statusErr error

	width  int
	height int
	styles Styles
}

// NewModel builds a grid over the session's current view
func NewModel(session Session) (Model, error) {
	view, err := session.View()
	if err != nil {
		return Model{}, err
	}

	styles := DefaultStyles()

	ti := textinput.New()
	ti.Placeholder = "Search all columns..."
	ti.Prompt = "/ "
	ti.CharLimit = 100
	ti.Width = 40

	t := table.New(
		table.WithFocused(true),
		table.WithHeight(20),
		table.WithStyles(styles.Table),
	)

	m := Model{
		session: session,
		table:   t,
		search:  ti,
		styles:  styles,
	}
	m.setView(view)
	return m, nil
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(max(msg.Height-8, 3))
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "left", "h":
			if m.selected > 0 {
				m.selected--
				m.refreshColumns()
			}
			return m, nil
		case "right", "l":
			if m.selected < len(m.view.Columns)-1 {
				m.selected++
				m.refreshColumns()
			}
			return m, nil
		case "s", "enter":
			m.toggleSort()
			return m, nil
		case "/":
			m.searching = true
			m.search.SetValue(m.view.Query)
			m.search.CursorEnd()
			return m, m.search.Focus()
		case "c":
			m.apply(m.session.ResetSearch())
			m.search.SetValue("")
			if m.statusErr == nil {
				m.status = "Search cleared"
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		term := strings.TrimSpace(m.search.Value())
		if term == "" {
			m.apply(m.session.ResetSearch())
		} else {
			m.apply(m.session.Search(term))
		}
		if m.statusErr == nil {
			m.status = fmt.Sprintf("%d matching rows", len(m.view.Rows))
		}
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) toggleSort() {
	if len(m.view.Columns) == 0 {
		return
	}
	column := m.view.Columns[m.selected]
	m.apply(m.session.ToggleSort(column))
	if m.statusErr == nil {
		m.status = fmt.Sprintf("Sorted by %s (%s)", column, m.view.SortOrder)
	}
}

// apply shows view, or keeps the current rows and reports err.
func (m *Model) apply(view domain.TableView, err error) {
	if err != nil {
		m.statusErr = err
		m.status = ""
		return
	}
	m.statusErr = nil
	m.setView(view)
}

func (m *Model) setView(view domain.TableView) {
	m.view = view
	if m.selected >= len(view.Columns) {
		m.selected = max(len(view.Columns)-1, 0)
	}
	m.refreshColumns()

	rows := make([]table.Row, len(view.Rows))
	for i, r := range view.Rows {
		row := make(table.Row, len(view.Columns))
		copy(row, r)
		rows[i] = row
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func (m *Model) refreshColumns() {
	m.table.SetColumns(buildColumns(m.view, m.selected))
}

// buildColumns sizes each column to its widest cell within the clamp range
// and marks the selected and sorted columns in their titles.
func buildColumns(view domain.TableView, selected int) []table.Column {
	cols := make([]table.Column, len(view.Columns))
	for i, name := range view.Columns {
		title := name
		if name == view.SortColumn {
			switch view.SortOrder {
			case domain.SortAsc:
				title += " ↑"
			case domain.SortDesc:
				title += " ↓"
			}
		}
		if i == selected {
			title = "▸" + title
		}

		width := lipgloss.Width(title)
		for _, row := range view.Rows {
			if i < len(row) {
				width = max(width, lipgloss.Width(row[i]))
			}
		}
		cols[i] = table.Column{Title: title, Width: clampWidth(width + 2)}
	}
	return cols
}

// View renders the grid.
func (m Model) View() string {
	var sb strings.Builder

	title := m.view.Source
	if title == "" {
		title = "Table"
	}
	sb.WriteString(m.styles.Title.Render(title) + "\n")

	searchStyle := m.styles.Search
	if m.searching {
		searchStyle = m.styles.SearchOn
	}
	sb.WriteString(searchStyle.Render(m.search.View()) + "\n")

	sb.WriteString(m.table.View() + "\n")

	count := fmt.Sprintf("Showing %d of %d rows", len(m.view.Rows), m.view.TotalRows)
	if m.view.Query != "" {
		count += fmt.Sprintf(" matching %q", m.view.Query)
	}
	sb.WriteString(m.styles.Muted.Render(count))

	switch {
	case m.statusErr != nil:
		style := m.styles.Error
		if apperrors.SeverityOf(m.statusErr) == apperrors.SeverityWarning {
			style = m.styles.Warning
		}
		sb.WriteString("  " + style.Render(apperrors.UserMessage(m.statusErr)))
	case m.status != "":
		sb.WriteString("  " + m.styles.Status.Render(m.status))
	}
	sb.WriteString("\n")

	sb.WriteString(m.styles.Muted.Render("[←/→] Column  [s] Sort  [/] Search  [c] Clear search  [q] Quit"))
	return sb.String()
}

// SelectedColumn returns the name of the column the sort keys act on
func (m Model) SelectedColumn() string {
	if len(m.view.Columns) == 0 {
		return ""
	}
	return m.view.Columns[m.selected]
}
