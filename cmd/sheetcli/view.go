package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"sheetcli/internal/ui"
)

func newViewCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "view FILE",
		Short: "Browse the filtered table interactively",
		Long: `Opens the filtered table in a scrollable grid.

Keys:
  ←/→      select a column
  s, enter sort by the selected column (ascending, then descending)
  /        search all columns
  c        clear the search
  q        quit

Logs go to the log file while the grid is open.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, err := c.openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			model, err := ui.NewModel(session)
			if err != nil {
				return err
			}

			p := tea.NewProgram(model,
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err = p.Run()
			return err
		},
	}
}
