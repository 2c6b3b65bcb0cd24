package config

// Application constants
const (
	AppName    = "sheetcli"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable (SHEETCLI_MAIL_HOST, ...)
	EnvPrefix = "SHEETCLI"

	// Sparse-column filter defaults
	DefaultMinNonEmpty = 50
	DefaultSampleSize  = 180

	// Mail defaults
	DefaultSMTPHost    = "smtp.gmail.com"
	DefaultSMTPPort    = 587
	DefaultMailSubject = "Excel Data"

	// Microsoft identity platform
	DefaultGraphEndpoint = "https://graph.microsoft.com/v1.0"
	DefaultAuthority     = "https://login.microsoftonline.com"

	// Display format for date-flagged columns
	DisplayDateLayout = "Jan-02"
)

// Supported input file extensions
var SupportedExtensions = []string{".xlsx", ".xlsm", ".xls", ".csv"}
