// Package app wires configuration, telemetry and the table session together
// and runs the HTTP server for the serve command.
//
// # Initialization Flow
//
//	1. Load configuration from environment and files
//	2. Initialize logging and telemetry
//	3. Build the opener (local files, plus Google Sheets when configured)
//	4. Build the session with its processor and mailer
//	5. Set up HTTP handlers and middleware
//	6. Serve until the context is cancelled, then shut down gracefully
//
// The CLI commands that do not serve HTTP use NewSession directly.
package app
