package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultMinNonEmpty, cfg.Filter.MinNonEmpty)
	assert.Equal(t, DefaultSampleSize, cfg.Filter.SampleSize)
	assert.Equal(t, DefaultSMTPHost, cfg.Mail.Host)
	assert.Equal(t, DefaultSMTPPort, cfg.Mail.Port)
	assert.Equal(t, DefaultMailSubject, cfg.Mail.Subject)
	assert.Equal(t, "common", cfg.Graph.TenantID)
	assert.Equal(t, []string{"User.Read", "Mail.Read", "MailboxSettings.Read"}, cfg.Graph.Scopes)
	assert.Equal(t, 10*time.Second, cfg.Graph.Timeout)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SHEETCLI_FILTER_MIN_NONEMPTY", "10")
	t.Setenv("SHEETCLI_FILTER_SAMPLE_SIZE", "20")
	t.Setenv("SHEETCLI_MAIL_HOST", "smtp.example.com")
	t.Setenv("SHEETCLI_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Filter.MinNonEmpty)
	assert.Equal(t, 20, cfg.Filter.SampleSize)
	assert.Equal(t, "smtp.example.com", cfg.Mail.Host)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_FileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sheetcli.yaml")
	content := `
filter:
  min_nonempty: 5
  sample_size: 25
mail:
  host: smtp.file.example
  from: sender@example.com
graph:
  client_id: file-client
  scopes: ["User.Read"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("SHEETCLI_MAIL_HOST", "smtp.env.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Filter.MinNonEmpty)
	assert.Equal(t, 25, cfg.Filter.SampleSize)
	assert.Equal(t, "smtp.env.example", cfg.Mail.Host, "env wins over file")
	assert.Equal(t, "sender@example.com", cfg.Mail.From)
	assert.Equal(t, "file-client", cfg.Graph.ClientID)
	assert.Equal(t, []string{"User.Read"}, cfg.Graph.Scopes)
	assert.Equal(t, DefaultMailSubject, cfg.Mail.Subject, "unset file values keep defaults")
}

func TestLoad_FileCoversEverySection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheetcli.yaml")
	content := `
filter:
  min_nonempty: 0
  sample_size: 30
mail:
  host: smtp.office365.com
  port: 2525
  from: me@example.com
  to: team@example.com
  subject: Weekly
  timeout: 5s
logging:
  level: debug
  format: text
  output: console
  file_path: /tmp/sheetcli-test.log
server:
  port: 9090
  read_timeout: 2s
  write_timeout: 4s
  shutdown_timeout: 3s
  max_upload_bytes: 1024
  rate_limit:
    enabled: false
    rps: 1
    burst: 2
graph:
  client_id: abc
  tenant_id: contoso
  scopes: [User.Read]
  endpoint: https://graph.example.com/v1.0
  authority: https://login.example.com
  timeout: 7s
sheets:
  credentials_file: creds.json
  api_key: key
  default_range: Sheet1!A:C
telemetry:
  tracing: true
  metrics: false
  trace_exporter: none
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, FilterConfig{MinNonEmpty: 0, SampleSize: 30}, cfg.Filter)
	assert.Equal(t, MailConfig{
		Host: "smtp.office365.com", Port: 2525, From: "me@example.com",
		To: "team@example.com", Subject: "Weekly", Timeout: 5 * time.Second,
	}, cfg.Mail)
	assert.Equal(t, LoggingConfig{Level: "debug", Format: "text", Output: "console", FilePath: "/tmp/sheetcli-test.log"}, cfg.Logging)
	assert.Equal(t, ServerConfig{
		Port: 9090, ReadTimeout: 2 * time.Second, WriteTimeout: 4 * time.Second,
		ShutdownTimeout: 3 * time.Second, MaxUploadBytes: 1024,
		RateLimit: RateLimitConfig{Enabled: false, RPS: 1, Burst: 2},
	}, cfg.Server)
	assert.Equal(t, GraphConfig{
		ClientID: "abc", TenantID: "contoso", Scopes: []string{"User.Read"},
		Endpoint: "https://graph.example.com/v1.0", Authority: "https://login.example.com",
		Timeout: 7 * time.Second,
	}, cfg.Graph)
	assert.Equal(t, SheetsConfig{CredentialsFile: "creds.json", APIKey: "key", DefaultRange: "Sheet1!A:C"}, cfg.Sheets)
	assert.Equal(t, TelemetryConfig{Tracing: true, Metrics: false, TraceExporter: "none"}, cfg.Telemetry)
}

func TestLoad_EnvOverridesFileZeroValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheetcli.yaml")
	content := `
filter:
  min_nonempty: 0
server:
  rate_limit:
    enabled: false
telemetry:
  metrics: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("SHEETCLI_SERVER_RATE_LIMIT_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Filter.MinNonEmpty)
	assert.Equal(t, DefaultSampleSize, cfg.Filter.SampleSize, "keys absent from the file keep defaults")
	assert.True(t, cfg.Server.RateLimit.Enabled, "env wins over file")
	assert.Equal(t, 20.0, cfg.Server.RateLimit.RPS)
	assert.False(t, cfg.Telemetry.Metrics)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("filter: [unclosed"), 0644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("invalid env value", func(t *testing.T) {
		t.Setenv("SHEETCLI_MAIL_PORT", "not-a-number")
		_, err := Load("")
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "zero min non-empty is valid", mutate: func(c *Config) { c.Filter.MinNonEmpty = 0 }},
		{name: "negative min non-empty", mutate: func(c *Config) { c.Filter.MinNonEmpty = -1 }, wantErr: true},
		{name: "zero sample size", mutate: func(c *Config) { c.Filter.SampleSize = 0 }, wantErr: true},
		{name: "threshold above sample is valid", mutate: func(c *Config) { c.Filter.MinNonEmpty = 200 }},
		{name: "bad port", mutate: func(c *Config) { c.Mail.Port = 70000 }, wantErr: true},
		{name: "bad from address", mutate: func(c *Config) { c.Mail.From = "not-an-email" }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: true},
		{name: "empty host", mutate: func(c *Config) { c.Mail.Host = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
