// Package services holds the session controller shared by the terminal UI,
// the show/mail commands and the HTTP API.
//
// # Session
//
// A SessionService owns the only mutable state in the application: the
// currently loaded table, its detected date columns and the visible view
// (sorted and searched). Load replaces it, Clear drops it.
//
//	session := services.NewSessionService(opener, processor, sender, cfg.Mail, metrics, logger)
//
//	summary, err := session.Load(ctx, "report.xlsx")
//	if errors.SeverityOf(err) == errors.SeverityWarning {
//	    // nothing usable in the file; the previous table is still loaded
//	}
//
//	view, _ := session.ToggleSort("Amount") // ascending
//	view, _ = session.ToggleSort("Amount")  // descending
//
// Every operation returns an AppError with a type instead of surfacing
// dialogs; callers decide how to present it.
//
// # Collaborators
//
// Tables come from a TableOpener and mail goes through a mailer.Sender,
// both narrow interfaces so tests can substitute fakes.
package services
