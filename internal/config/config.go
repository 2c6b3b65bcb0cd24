package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Filter    FilterConfig    `yaml:"filter" envconfig:"FILTER"`
	Mail      MailConfig      `yaml:"mail" envconfig:"MAIL"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Graph     GraphConfig     `yaml:"graph" envconfig:"GRAPH"`
	Sheets    SheetsConfig    `yaml:"sheets" envconfig:"SHEETS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// FilterConfig holds the sparse-column thresholds
type FilterConfig struct {
	MinNonEmpty int `yaml:"min_nonempty" envconfig:"MIN_NONEMPTY" validate:"min=0"`
	SampleSize  int `yaml:"sample_size" envconfig:"SAMPLE_SIZE" validate:"min=1"`
}

// MailConfig holds SMTP defaults. The password is never part of configuration.
type MailConfig struct {
	Host    string        `yaml:"host" envconfig:"HOST" validate:"required"`
	Port    int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	From    string        `yaml:"from" envconfig:"FROM" validate:"omitempty,email"`
	To      string        `yaml:"to" envconfig:"TO"`
	Subject string        `yaml:"subject" envconfig:"SUBJECT"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// ServerConfig contains HTTP server configuration for the serve command
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	MaxUploadBytes  int64           `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" validate:"gt=0"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// GraphConfig holds the Microsoft identity platform settings used by the
// connectivity probe.
type GraphConfig struct {
	ClientID  string        `yaml:"client_id" envconfig:"CLIENT_ID"`
	TenantID  string        `yaml:"tenant_id" envconfig:"TENANT_ID"`
	Scopes    []string      `yaml:"scopes" envconfig:"SCOPES"`
	Endpoint  string        `yaml:"endpoint" envconfig:"ENDPOINT" validate:"url"`
	Authority string        `yaml:"authority" envconfig:"AUTHORITY"`
	Timeout   time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
}

// SheetsConfig holds Google Sheets API access for gsheet: sources
type SheetsConfig struct {
	CredentialsFile string `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	APIKey          string `yaml:"api_key" envconfig:"API_KEY"`
	DefaultRange    string `yaml:"default_range" envconfig:"DEFAULT_RANGE"`
}

// TelemetryConfig toggles tracing and metrics
type TelemetryConfig struct {
	Tracing       bool   `yaml:"tracing" envconfig:"TRACING"`
	Metrics       bool   `yaml:"metrics" envconfig:"METRICS"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
}

// Load builds the configuration in three layers: Default(), then the YAML
// file, then the environment. Only keys present in the file and variables
// present in the environment override the layer below, so zero values such
// as min_nonempty: 0 are honoured. An explicit path wins over the search
// locations.
func Load(path string) (*Config, error) {
	cfg := Default()

	configFile := path
	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile decodes a YAML file over cfg. Keys missing from the file
// leave cfg untouched.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// getConfigFilePath returns the first config file found in the usual places
func getConfigFilePath() string {
	locations := []string{
		"sheetcli.yaml",
		"configs/sheetcli.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Filter: FilterConfig{
			MinNonEmpty: DefaultMinNonEmpty,
			SampleSize:  DefaultSampleSize,
		},
		Mail: MailConfig{
			Host:    DefaultSMTPHost,
			Port:    DefaultSMTPPort,
			Subject: DefaultMailSubject,
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "file",
			FilePath: "logs/sheetcli.log",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  32 << 20,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   40,
			},
		},
		Graph: GraphConfig{
			TenantID: "common",
			Scopes:   []string{"User.Read", "Mail.Read", "MailboxSettings.Read"},
			Endpoint: DefaultGraphEndpoint,
			Timeout:  10 * time.Second,
		},
		Sheets: SheetsConfig{
			DefaultRange: "A:ZZ",
		},
		Telemetry: TelemetryConfig{
			Metrics:       true,
			TraceExporter: "stdout",
		},
	}
}
