package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors.
var (
	ErrUpstreamModel   = errors.New("language model request failed")
	ErrEmptyCompletion = errors.New("language model returned no text")
	ErrMissingAPIKey   = errors.New("missing API key")
	ErrMissingEndpoint = errors.New("missing endpoint")
	ErrUnknownProvider = errors.New("unknown model provider")
)

// Provider names accepted by New.
const (
	ProviderAzure     = "azure"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Default values applied by New.
const (
	DefaultMaxTokens  = 2048
	DefaultMaxRetries = 2
)

// Completer sends one system prompt and one user message and returns the
// model's text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider   string
	Model      string // deployment name for Azure
	Endpoint   string // Azure resource endpoint, or a base URL override
	APIVersion string // Azure only
	APIKey     string
	MaxTokens  int64
	MaxRetries int // negative disables retries
}

// New builds the client for cfg.Provider.
func New(cfg Config) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: %w for provider %q", ErrUpstreamModel, ErrMissingAPIKey, cfg.Provider)
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	} else if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderAzure, "":
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("%w: %w for azure", ErrUpstreamModel, ErrMissingEndpoint)
		}
		return NewAzure(cfg), nil
	case ProviderOpenAI:
		return NewOpenAI(cfg), nil
	case ProviderAnthropic:
		return NewAnthropic(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// upstreamError wraps a provider failure, keeping the HTTP status when the
// SDK reports one.
func upstreamError(provider string, status int, err error) error {
	if status != 0 {
		return &StatusError{Provider: provider, StatusCode: status, Err: err}
	}
	return fmt.Errorf("%w: %s: %w", ErrUpstreamModel, provider, err)
}

// StatusError is returned when the provider answered with an HTTP error.
type StatusError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s returned status %d: %v", ErrUpstreamModel, e.Provider, e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() []error { return []error{ErrUpstreamModel, e.Err} }

// IsAuthError reports whether err is a 401 or 403 from the provider.
func IsAuthError(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == 401 || se.StatusCode == 403
	}
	return false
}
