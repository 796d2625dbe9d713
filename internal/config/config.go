package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/alnah/go-dbcopilot/internal/dateutil"
	"github.com/alnah/go-dbcopilot/internal/fileutil"
	"github.com/alnah/go-dbcopilot/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxAddrLength        = 255
	MaxDSNLength         = 2048
	MaxNameLength        = 100
	MaxURLLength         = 2048
	MaxPathLength        = 4096
	MaxDurationLength    = 20
	MaxPageSizeLength    = 10
	MaxOrientationLength = 10
	MaxTitleLength       = 200
)

// Supported values.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	ProviderAzure     = "azure"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Defaults applied by DefaultConfig.
const (
	DefaultAddr            = ":8084"
	DefaultRequestTimeout  = "2m"
	DefaultQueryTimeout    = "30s"
	DefaultAzureAPIVersion = "2024-08-01-preview"
	DefaultModel           = "gpt-4o"
	DefaultMaxTokens       = 2048
	DefaultReportDir       = "reports"
	DefaultReportTimeout   = "60s"
)

// Config holds all configuration for the copilot server and CLI.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Prompts  PromptsConfig  `yaml:"prompts"`
	Report   ReportConfig   `yaml:"report"`
	Assets   AssetsConfig   `yaml:"assets"`
}

// ServerConfig defines the HTTP server.
type ServerConfig struct {
	Addr           string `yaml:"addr"`           // listen address (default ":8084")
	RequestTimeout string `yaml:"requestTimeout"` // per-request deadline, Go duration
	LogFormat      string `yaml:"logFormat"`      // "text" or "json"
}

// DatabaseConfig defines the target database. DSN wins over the discrete
// fields; the fields mirror a libpq keyword connection.
type DatabaseConfig struct {
	Driver       string `yaml:"driver"` // "postgres" (default) or "sqlite"
	DSN          string `yaml:"dsn"`
	Name         string `yaml:"name"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	SSLMode      string `yaml:"sslMode"`
	MaxConns     int    `yaml:"maxConns"`
	QueryTimeout string `yaml:"queryTimeout"`
}

// LLMConfig defines the language model provider.
type LLMConfig struct {
	Provider   string `yaml:"provider"`   // "azure" (default), "openai", "anthropic"
	Model      string `yaml:"model"`      // model name, or Azure deployment
	Endpoint   string `yaml:"endpoint"`   // Azure resource endpoint or custom base URL
	APIVersion string `yaml:"apiVersion"` // Azure only
	APIKey     string `yaml:"apiKey"`     // prefer environment variables
	MaxTokens  int    `yaml:"maxTokens"`
}

// PromptsConfig selects the prompt set.
type PromptsConfig struct {
	Set  string `yaml:"set"`  // asset name, default "default"
	File string `yaml:"file"` // YAML file overriding the set key by key
}

// ReportConfig defines PDF business reports.
type ReportConfig struct {
	Enabled     bool    `yaml:"enabled"`     // server writes a PDF per request
	OutputDir   string  `yaml:"outputDir"`   // default "reports"
	Title       string  `yaml:"title"`       // header title; empty = "Business Report"
	Style       string  `yaml:"style"`       // asset name, default "report"
	PageSize    string  `yaml:"pageSize"`    // "letter" (default), "a4", "legal"
	Orientation string  `yaml:"orientation"` // "portrait" (default), "landscape"
	Margin      float64 `yaml:"margin"`      // inches, default 0.5
	Interleave  bool    `yaml:"interleave"`  // tables at source position
	AppendData  bool    `yaml:"appendData"`  // SQL + rows appendix
	Footer      bool    `yaml:"footer"`      // page numbers and date
	DateFormat  string  `yaml:"dateFormat"`  // preset or tokens, default "long"
	Timeout     string  `yaml:"timeout"`     // PDF rendering deadline
	Workers     int     `yaml:"workers"`     // concurrent browsers, 0 = auto
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // empty = embedded assets only
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           DefaultAddr,
			RequestTimeout: DefaultRequestTimeout,
			LogFormat:      "text",
		},
		Database: DatabaseConfig{
			Driver:       DriverPostgres,
			Host:         "localhost",
			Port:         5432,
			QueryTimeout: DefaultQueryTimeout,
		},
		LLM: LLMConfig{
			Provider:   ProviderAzure,
			Model:      DefaultModel,
			APIVersion: DefaultAzureAPIVersion,
			MaxTokens:  DefaultMaxTokens,
		},
		Prompts: PromptsConfig{Set: "default"},
		Report: ReportConfig{
			OutputDir: DefaultReportDir,
			Style:     "report",
			Footer:    true,
			Timeout:   DefaultReportTimeout,
		},
	}
}

// Validate checks field lengths and enumerated values.
// Called by LoadConfig and again by the CLI after env and flag overrides.
func (c *Config) Validate() error {
	checks := []struct {
		field string
		value string
		max   int
	}{
		{"server.addr", c.Server.Addr, MaxAddrLength},
		{"server.requestTimeout", c.Server.RequestTimeout, MaxDurationLength},
		{"database.dsn", c.Database.DSN, MaxDSNLength},
		{"database.name", c.Database.Name, MaxNameLength},
		{"database.user", c.Database.User, MaxNameLength},
		{"database.host", c.Database.Host, MaxAddrLength},
		{"database.queryTimeout", c.Database.QueryTimeout, MaxDurationLength},
		{"llm.model", c.LLM.Model, MaxNameLength},
		{"llm.endpoint", c.LLM.Endpoint, MaxURLLength},
		{"llm.apiVersion", c.LLM.APIVersion, MaxNameLength},
		{"prompts.set", c.Prompts.Set, MaxNameLength},
		{"prompts.file", c.Prompts.File, MaxPathLength},
		{"report.outputDir", c.Report.OutputDir, MaxPathLength},
		{"report.title", c.Report.Title, MaxTitleLength},
		{"report.style", c.Report.Style, MaxNameLength},
		{"report.pageSize", c.Report.PageSize, MaxPageSizeLength},
		{"report.orientation", c.Report.Orientation, MaxOrientationLength},
		{"report.timeout", c.Report.Timeout, MaxDurationLength},
		{"report.dateFormat", c.Report.DateFormat, dateutil.MaxDateFormatLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
	}
	for _, ck := range checks {
		if err := validateFieldLength(ck.field, ck.value, ck.max); err != nil {
			return err
		}
	}

	if err := oneOf("server.logFormat", c.Server.LogFormat, "text", "json"); err != nil {
		return err
	}
	if err := oneOf("database.driver", c.Database.Driver, DriverPostgres, DriverSQLite); err != nil {
		return err
	}
	if err := oneOf("llm.provider", c.LLM.Provider, ProviderAzure, ProviderOpenAI, ProviderAnthropic); err != nil {
		return err
	}
	if err := oneOf("report.pageSize", strings.ToLower(c.Report.PageSize), "letter", "a4", "legal"); err != nil {
		return err
	}
	if err := oneOf("report.orientation", strings.ToLower(c.Report.Orientation), "portrait", "landscape"); err != nil {
		return err
	}

	for field, value := range map[string]string{
		"server.requestTimeout": c.Server.RequestTimeout,
		"database.queryTimeout": c.Database.QueryTimeout,
		"report.timeout":        c.Report.Timeout,
	} {
		if err := validateDuration(field, value); err != nil {
			return err
		}
	}

	if c.Database.Port < 0 || c.Database.Port > 65535 {
		return fmt.Errorf("%w: database.port must be between 0 and 65535, got %d", ErrInvalidValue, c.Database.Port)
	}
	if c.Database.MaxConns < 0 {
		return fmt.Errorf("%w: database.maxConns must not be negative, got %d", ErrInvalidValue, c.Database.MaxConns)
	}
	if c.LLM.MaxTokens < 0 {
		return fmt.Errorf("%w: llm.maxTokens must not be negative, got %d", ErrInvalidValue, c.LLM.MaxTokens)
	}
	if c.Report.Margin != 0 && (c.Report.Margin < 0.25 || c.Report.Margin > 3.0) {
		return fmt.Errorf("%w: report.margin must be between 0.25 and 3.0 inches, got %.2f", ErrInvalidValue, c.Report.Margin)
	}
	if _, err := dateutil.Layout(c.Report.DateFormat); err != nil {
		return fmt.Errorf("%w: report.dateFormat: %v", ErrInvalidValue, err)
	}
	if c.Report.Workers < 0 {
		return fmt.Errorf("%w: report.workers must not be negative, got %d", ErrInvalidValue, c.Report.Workers)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// oneOf accepts an empty value or one of allowed.
func oneOf(field, value string, allowed ...string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %s: %q (must be one of %s)", ErrInvalidValue, field, value, strings.Join(allowed, ", "))
}

func validateDuration(field, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fmt.Errorf("%w: %s: %q is not a positive duration", ErrInvalidValue, field, value)
	}
	return nil
}

// Duration parses a validated duration field, returning fallback when empty.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// ConnString returns the connection string for the configured driver.
// For postgres without a DSN, a postgres:// URL is built from the discrete
// fields. For sqlite the DSN is the file path (or "file::memory:").
func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" || d.Driver == DriverSQLite {
		return d.DSN
	}

	u := url.URL{Scheme: "postgres", Path: "/" + d.Name}
	host := d.Host
	if host == "" {
		host = "localhost"
	}
	if d.Port != 0 {
		host += ":" + strconv.Itoa(d.Port)
	}
	u.Host = host
	switch {
	case d.User != "" && d.Password != "":
		u.User = url.UserPassword(d.User, d.Password)
	case d.User != "":
		u.User = url.User(d.User)
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{d.SSLMode}}.Encode()
	}
	return u.String()
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Values missing from the file keep their DefaultConfig value.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// AppName names the per-user configuration directory.
const AppName = "go-dbcopilot"

// ConfigDir returns the XDG config directory searched by LoadConfig
// (~/.config/go-dbcopilot on Linux).
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ConfigDir()
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	for _, ext := range extensions {
		userPath := filepath.Join(ConfigDir(), name+ext)
		if fileutil.FileExists(userPath) {
			return userPath, nil
		}
		triedPaths = append(triedPaths, userPath)
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
