// Command sheetcli loads a spreadsheet, drops its sparse columns, and shows,
// exports, serves or mails what is left.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"sheetcli/internal/config"
	apperrors "sheetcli/internal/errors"
	"sheetcli/internal/infrastructure"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// cli carries the global flags and what PersistentPreRunE builds from them.
type cli struct {
	cfgFile     string
	logLevel    string
	logOutput   string
	minNonEmpty int
	sampleSize  int

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "sheetcli",
		Short: "View, filter, sort, search and mail spreadsheet data",
		Long: `sheetcli reads .xlsx, .xlsm, .xls and .csv files (or a Google Sheet
given as gsheet:SPREADSHEET_ID/RANGE), drops columns with too few values in
the leading rows, formats date columns as Mon-DD and shows the result.

Examples:
  sheetcli show report.xlsx --sort Date --desc
  sheetcli view report.xlsx
  sheetcli mail report.xlsx --to team@example.com --from me@example.com
  sheetcli serve --port 8080`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return infrastructure.CloseLogFile()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default: sheetcli.yaml or configs/sheetcli.yaml)")
	flags.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&c.logOutput, "log-output", "", "log output: console, file, both")
	flags.IntVar(&c.minNonEmpty, "min-nonempty", config.DefaultMinNonEmpty, "minimum non-empty cells for a column to be kept")
	flags.IntVar(&c.sampleSize, "sample-size", config.DefaultSampleSize, "number of leading rows inspected by the column filter")

	root.AddCommand(newShowCmd(c))
	root.AddCommand(newViewCmd(c))
	root.AddCommand(newMailCmd(c))
	root.AddCommand(newServeCmd(c))
	root.AddCommand(newProbeCmd(c))

	return root
}

// setup loads configuration, applies flag overrides and builds the logger.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.cfgFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = c.logLevel
	}
	if flags.Changed("log-output") {
		cfg.Logging.Output = c.logOutput
	}
	if flags.Changed("min-nonempty") {
		cfg.Filter.MinNonEmpty = c.minNonEmpty
	}
	if flags.Changed("sample-size") {
		cfg.Filter.SampleSize = c.sampleSize
	}
	// The grid owns the terminal.
	if cmd.Name() == "view" && cfg.Logging.Output != "file" {
		cfg.Logging.Output = "file"
	}
	if err := cfg.Validate(); err != nil {
		return apperrors.NewConfigError("invalid configuration", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.logger = logger
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", apperrors.UserMessage(err))
		os.Exit(1)
	}
}
