package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"sheetcli/internal/app"
	apperrors "sheetcli/internal/errors"
	"sheetcli/internal/exporter"
	"sheetcli/internal/services"
	"sheetcli/internal/ui"
	"sheetcli/pkg/contracts/domain"
)

// viewOptions are the sort and search flags shared by show and mail
type viewOptions struct {
	sort   string
	desc   bool
	search string
}

func (o *viewOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.sort, "sort", "", "column to sort by")
	cmd.Flags().BoolVar(&o.desc, "desc", false, "sort descending")
	cmd.Flags().StringVar(&o.search, "search", "", "keep only rows with a cell containing this text")
}

// apply narrows and sorts the session's view
func (o *viewOptions) apply(session *services.SessionService) (domain.TableView, error) {
	view, err := session.View()
	if err != nil {
		return view, err
	}
	if strings.TrimSpace(o.search) != "" {
		if view, err = session.Search(o.search); err != nil {
			return view, err
		}
	}
	if o.sort != "" {
		order := domain.SortAsc
		if o.desc {
			order = domain.SortDesc
		}
		if view, err = session.Sort(o.sort, order); err != nil {
			return view, err
		}
	}
	return view, nil
}

// openSession builds a session and loads source into it
func (c *cli) openSession(ctx context.Context, source string) (*services.SessionService, *domain.LoadSummary, error) {
	session, err := app.NewSession(ctx, c.cfg, nil, c.logger)
	if err != nil {
		return nil, nil, err
	}
	summary, err := session.Load(ctx, source)
	if err != nil {
		return nil, nil, err
	}
	return session, summary, nil
}

func printSummary(w io.Writer, s *domain.LoadSummary) {
	fmt.Fprintf(w, "Loaded %s: %d rows, kept %d of %d columns\n",
		s.Source, s.Rows, len(s.KeptColumns), s.InitialColumns)
	if len(s.DroppedColumns) > 0 {
		fmt.Fprintf(w, "Dropped: %s\n", strings.Join(s.DroppedColumns, ", "))
	}
	if len(s.DateColumns) > 0 {
		fmt.Fprintf(w, "Date columns: %s\n", strings.Join(s.DateColumns, ", "))
	}
}

func newShowCmd(c *cli) *cobra.Command {
	var (
		opts    viewOptions
		csvPath string
		xlsPath string
		plain   bool
	)

	cmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Print the filtered table",
		Long: `Loads FILE, drops sparse columns and prints what is left. The visible rows
can also be written to CSV (UTF-8 with BOM) or to a new workbook.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, summary, err := c.openSession(ctx, args[0])
			if err != nil {
				return err
			}
			printSummary(cmd.ErrOrStderr(), summary)

			view, err := opts.apply(session)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if plain {
				fmt.Fprintln(out, exporter.RenderText(&view))
			} else {
				fmt.Fprint(out, ui.RenderStatic(view))
			}

			if csvPath != "" {
				if err := exporter.NewCSVWriter().WriteFile(csvPath, &view); err != nil {
					return apperrors.NewFileOpenError("failed to write "+csvPath, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", csvPath)
			}
			if xlsPath != "" {
				if err := exporter.SaveXLSX(xlsPath, &view); err != nil {
					return apperrors.NewFileOpenError("failed to write "+xlsPath, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", xlsPath)
			}
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&csvPath, "csv", "", "also write the visible rows to this CSV file")
	cmd.Flags().StringVar(&xlsPath, "xlsx", "", "also write the visible rows to this workbook")
	cmd.Flags().BoolVar(&plain, "plain", false, "print aligned plain text instead of a bordered table")
	return cmd
}
