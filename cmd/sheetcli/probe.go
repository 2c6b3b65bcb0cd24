package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sheetcli/internal/diagnostics"
)

func newProbeCmd(c *cli) *cobra.Command {
	probe := &cobra.Command{
		Use:   "probe",
		Short: "Connectivity checks",
	}

	probe.AddCommand(&cobra.Command{
		Use:   "graph",
		Short: "Sign in to Microsoft Graph and check profile and mailbox access",
		Long: `Checks the tenant's OpenID discovery document, runs the device-code
sign-in, then reads /organization, /me, /me/mailboxSettings and the most
recent message. Needs a real graph.client_id in the config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := diagnostics.NewGraphProbe(c.cfg.Graph, cmd.ErrOrStderr(), c.logger)
			if err != nil {
				return err
			}
			report, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tenant verified: %s\n", report.TenantName)
			if report.OrganizationName != "" {
				fmt.Fprintf(out, "Organization: %s (%s)\n", report.OrganizationName, report.OrganizationID)
			}
			fmt.Fprintf(out, "Connected as: %s\n", report.DisplayName)
			fmt.Fprintf(out, "Email: %s\n", report.UserPrincipalName)
			accountType := "Member"
			if report.GuestAccount {
				accountType = "Guest"
			}
			fmt.Fprintf(out, "Account type: %s\n", accountType)
			if report.MailboxSettingsReachable {
				fmt.Fprintf(out, "Mailbox settings: reachable (time zone %s)\n", report.TimeZone)
			} else {
				fmt.Fprintln(out, "Mailbox settings: not reachable")
			}
			if report.HasMessages {
				fmt.Fprintf(out, "Latest email: %s (%s)\n", report.LatestSubject, report.LatestReceived)
			} else {
				fmt.Fprintln(out, "No emails found or no access to emails")
			}
			return nil
		},
	})

	return probe
}
