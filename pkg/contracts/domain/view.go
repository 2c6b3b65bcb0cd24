package domain

// SortOrder is the direction of a display sort.
type SortOrder string

const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// TableView is the formatted, display-ready form of the loaded table.
// Rows hold display text only; sorting and searching operate on it.
type TableView struct {
	Source      string     `json:"source"`
	Columns     []string   `json:"columns"`
	DateColumns []string   `json:"date_columns"`
	Rows        [][]string `json:"rows"`
	TotalRows   int        `json:"total_rows"`
	SortColumn  string     `json:"sort_column,omitempty"`
	SortOrder   SortOrder  `json:"sort_order,omitempty"`
	Query       string     `json:"query,omitempty"`
}

// ColumnIndex returns the position of the named column, or -1.
func (v *TableView) ColumnIndex(name string) int {
	for i, c := range v.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// LoadSummary describes the outcome of a successful load.
type LoadSummary struct {
	Source         string   `json:"source"`
	Rows           int      `json:"rows"`
	InitialColumns int      `json:"initial_columns"`
	KeptColumns    []string `json:"kept_columns"`
	DroppedColumns []string `json:"dropped_columns"`
	DateColumns    []string `json:"date_columns"`
}
