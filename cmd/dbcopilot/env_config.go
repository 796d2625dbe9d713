package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-dbcopilot/internal/config"
)

// envPrefix namespaces the variables read by dbcopilot.
const envPrefix = "DBCOPILOT_"

// envConfig holds configuration from environment variables.
// Provides container-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string // DBCOPILOT_CONFIG: config file path
	Addr       string // DBCOPILOT_ADDR: listen address
	LogFormat  string // DBCOPILOT_LOG_FORMAT: text, json

	// Tier 2 - Database
	DBDriver   string // DBCOPILOT_DB_DRIVER: postgres, sqlite
	DBDSN      string // DBCOPILOT_DB_DSN: full connection string
	DBName     string // DBCOPILOT_DB_NAME: database name
	DBUser     string // DBCOPILOT_DB_USER: database user
	DBHost     string // DBCOPILOT_DB_HOST: database host
	DBPort     int    // DBCOPILOT_DB_PORT: database port
	DBPassword string // DATABASE_PASSWORD: database password

	// Tier 2 - Language model
	LLMProvider string // DBCOPILOT_LLM_PROVIDER: azure, openai, anthropic
	LLMModel    string // DBCOPILOT_LLM_MODEL: model or deployment
	LLMEndpoint string // DBCOPILOT_LLM_ENDPOINT: endpoint or base URL
	LLMAPIKey   string // DBCOPILOT_LLM_API_KEY: key for any provider

	AzureKey        string // AZURE_OPENAI_KEY
	AzureEndpoint   string // AZURE_OPENAI_ENDPOINT
	AzureDeployment string // AZURE_OPENAI_CHAT_DEPLOYMENT
	OpenAIKey       string // OPENAI_API_KEY
	AnthropicKey    string // ANTHROPIC_API_KEY

	// Tier 3 - Extended
	PromptsFile    string        // DBCOPILOT_PROMPTS_FILE: prompt override file
	RequestTimeout time.Duration // DBCOPILOT_REQUEST_TIMEOUT: per-request deadline
	ReportDir      string        // DBCOPILOT_REPORT_DIR: server-side report directory
	ReportEnabled  *bool         // DBCOPILOT_REPORT_ENABLED: write a report per request
	PageSize       string        // DBCOPILOT_PAGE_SIZE: letter, a4, legal
	Timeout        time.Duration // DBCOPILOT_TIMEOUT: PDF rendering timeout
	Workers        int           // DBCOPILOT_WORKERS: concurrent report browsers
}

// knownEnvVars lists valid DBCOPILOT_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"DBCOPILOT_CONFIG":     true,
	"DBCOPILOT_ADDR":       true,
	"DBCOPILOT_LOG_FORMAT": true,
	// Tier 2 - Database
	"DBCOPILOT_DB_DRIVER": true,
	"DBCOPILOT_DB_DSN":    true,
	"DBCOPILOT_DB_NAME":   true,
	"DBCOPILOT_DB_USER":   true,
	"DBCOPILOT_DB_HOST":   true,
	"DBCOPILOT_DB_PORT":   true,
	// Tier 2 - Language model
	"DBCOPILOT_LLM_PROVIDER": true,
	"DBCOPILOT_LLM_MODEL":    true,
	"DBCOPILOT_LLM_ENDPOINT": true,
	"DBCOPILOT_LLM_API_KEY":  true,
	// Tier 3 - Extended
	"DBCOPILOT_PROMPTS_FILE":    true,
	"DBCOPILOT_REQUEST_TIMEOUT": true,
	"DBCOPILOT_REPORT_DIR":      true,
	"DBCOPILOT_REPORT_ENABLED":  true,
	"DBCOPILOT_PAGE_SIZE":       true,
	"DBCOPILOT_TIMEOUT":         true,
	"DBCOPILOT_WORKERS":         true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers, booleans and durations are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		// Tier 1
		ConfigPath: os.Getenv("DBCOPILOT_CONFIG"),
		Addr:       os.Getenv("DBCOPILOT_ADDR"),
		LogFormat:  os.Getenv("DBCOPILOT_LOG_FORMAT"),
		// Tier 2
		DBDriver:        os.Getenv("DBCOPILOT_DB_DRIVER"),
		DBDSN:           os.Getenv("DBCOPILOT_DB_DSN"),
		DBName:          os.Getenv("DBCOPILOT_DB_NAME"),
		DBUser:          os.Getenv("DBCOPILOT_DB_USER"),
		DBHost:          os.Getenv("DBCOPILOT_DB_HOST"),
		DBPassword:      os.Getenv("DATABASE_PASSWORD"),
		LLMProvider:     os.Getenv("DBCOPILOT_LLM_PROVIDER"),
		LLMModel:        os.Getenv("DBCOPILOT_LLM_MODEL"),
		LLMEndpoint:     os.Getenv("DBCOPILOT_LLM_ENDPOINT"),
		LLMAPIKey:       os.Getenv("DBCOPILOT_LLM_API_KEY"),
		AzureKey:        os.Getenv("AZURE_OPENAI_KEY"),
		AzureEndpoint:   os.Getenv("AZURE_OPENAI_ENDPOINT"),
		AzureDeployment: os.Getenv("AZURE_OPENAI_CHAT_DEPLOYMENT"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		AnthropicKey:    os.Getenv("ANTHROPIC_API_KEY"),
		// Tier 3
		PromptsFile: os.Getenv("DBCOPILOT_PROMPTS_FILE"),
		ReportDir:   os.Getenv("DBCOPILOT_REPORT_DIR"),
		PageSize:    os.Getenv("DBCOPILOT_PAGE_SIZE"),
	}

	if port := os.Getenv("DBCOPILOT_DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 && p <= 65535 {
			cfg.DBPort = p
		}
	}
	cfg.RequestTimeout = envDuration("DBCOPILOT_REQUEST_TIMEOUT")
	cfg.Timeout = envDuration("DBCOPILOT_TIMEOUT")
	if enabled := os.Getenv("DBCOPILOT_REPORT_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			cfg.ReportEnabled = &b
		}
	}
	if workers := os.Getenv("DBCOPILOT_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// envDuration parses a positive Go duration, returning 0 when unset or invalid.
func envDuration(name string) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// warnUnknownEnvVars logs warnings for unrecognized DBCOPILOT_* variables.
// Helps catch typos like DBCOPILOT_DB_PASS instead of DATABASE_PASSWORD.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// The config already holds file values over defaults, so any variable that
// is set replaces it. CLI flags are merged afterwards, giving:
// CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	setString(&cfg.Server.Addr, env.Addr)
	setString(&cfg.Server.LogFormat, env.LogFormat)
	if env.RequestTimeout > 0 {
		cfg.Server.RequestTimeout = env.RequestTimeout.String()
	}

	setString(&cfg.Database.Driver, env.DBDriver)
	setString(&cfg.Database.DSN, env.DBDSN)
	setString(&cfg.Database.Name, env.DBName)
	setString(&cfg.Database.User, env.DBUser)
	setString(&cfg.Database.Host, env.DBHost)
	setString(&cfg.Database.Password, env.DBPassword)
	if env.DBPort > 0 {
		cfg.Database.Port = env.DBPort
	}

	setString(&cfg.LLM.Provider, env.LLMProvider)
	if strings.EqualFold(cfg.LLM.Provider, config.ProviderAzure) {
		setString(&cfg.LLM.Endpoint, env.AzureEndpoint)
		setString(&cfg.LLM.Model, env.AzureDeployment)
	}
	setString(&cfg.LLM.Model, env.LLMModel)
	setString(&cfg.LLM.Endpoint, env.LLMEndpoint)

	setString(&cfg.Prompts.File, env.PromptsFile)

	setString(&cfg.Report.OutputDir, env.ReportDir)
	setString(&cfg.Report.PageSize, env.PageSize)
	if env.ReportEnabled != nil {
		cfg.Report.Enabled = *env.ReportEnabled
	}
	if env.Timeout > 0 {
		cfg.Report.Timeout = env.Timeout.String()
	}
	if env.Workers > 0 {
		cfg.Report.Workers = env.Workers
	}
}

// apiKeyFor returns the key for provider: DBCOPILOT_LLM_API_KEY first, then
// the provider's own variable. Empty when neither is set.
func (e *envConfig) apiKeyFor(provider string) string {
	if e.LLMAPIKey != "" {
		return e.LLMAPIKey
	}
	switch strings.ToLower(provider) {
	case config.ProviderAzure, "":
		return e.AzureKey
	case config.ProviderOpenAI:
		return e.OpenAIKey
	case config.ProviderAnthropic:
		return e.AnthropicKey
	default:
		return ""
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
