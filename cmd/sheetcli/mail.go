package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	apperrors "sheetcli/internal/errors"
	"sheetcli/internal/services"
)

// errPasswordCancelled means the password prompt was left empty, which
// aborts the send without an error exit.
var errPasswordCancelled = errors.New("password prompt cancelled")

func newMailCmd(c *cli) *cobra.Command {
	var (
		opts          viewOptions
		req           services.EmailRequest
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "mail FILE",
		Short: "Mail the filtered table as plain text",
		Long: `Loads FILE, applies --search and --sort, and mails the visible rows as an
aligned plain-text table over SMTP with STARTTLS. The password is prompted
for, or read from the first line of stdin with --password-stdin, and is
never stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, summary, err := c.openSession(ctx, args[0])
			if err != nil {
				return err
			}
			printSummary(cmd.ErrOrStderr(), summary)

			if _, err := opts.apply(session); err != nil {
				return err
			}

			draft := session.EmailDraft()
			flags := cmd.Flags()
			if !flags.Changed("smtp-server") {
				req.Host = draft.Host
			}
			if !flags.Changed("port") {
				req.Port = draft.Port
			}
			if !flags.Changed("from") {
				req.From = draft.From
			}
			if !flags.Changed("to") {
				req.To = draft.To
			}
			if !flags.Changed("subject") {
				req.Subject = draft.Subject
			}
			if strings.TrimSpace(req.Host) == "" || strings.TrimSpace(req.From) == "" || strings.TrimSpace(req.To) == "" {
				return apperrors.NewAppValidationError("please fill in all email fields")
			}

			password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), passwordStdin)
			if errors.Is(err, errPasswordCancelled) {
				c.logger.InfoContext(ctx, "Email cancelled at password prompt")
				fmt.Fprintln(cmd.ErrOrStderr(), "Email cancelled")
				return nil
			}
			if err != nil {
				return err
			}

			if err := session.SendEmail(ctx, req, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Email sent to %s\n", req.To)
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&req.Host, "smtp-server", "", "SMTP server (default from config)")
	cmd.Flags().IntVar(&req.Port, "port", 0, "SMTP port (default from config)")
	cmd.Flags().StringVar(&req.From, "from", "", "sender address")
	cmd.Flags().StringVar(&req.To, "to", "", "recipients, separated by commas or semicolons")
	cmd.Flags().StringVar(&req.Subject, "subject", "", "subject line")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the SMTP password from stdin")
	return cmd
}

// readPassword prompts without echo when in is a terminal, otherwise reads
// the first line of in. An empty answer returns errPasswordCancelled.
func readPassword(in io.Reader, prompt io.Writer, fromStdin bool) (string, error) {
	if f, ok := in.(*os.File); ok && !fromStdin && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "SMTP password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", apperrors.NewEmailError("failed to read password", err)
		}
		if len(b) == 0 {
			return "", errPasswordCancelled
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", apperrors.NewEmailError("failed to read password", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errPasswordCancelled
	}
	return password, nil
}
