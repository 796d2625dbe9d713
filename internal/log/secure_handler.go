package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// MaskValue replaces sensitive values in log output.
const MaskValue = "***REDACTED***"

// Output formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// sensitiveKeys are attribute keys that are always masked.
var sensitiveKeys = map[string]bool{
	"authorization":     true,
	"x-api-key":         true,
	"api-key":           true,
	"api_key":           true,
	"apikey":            true,
	"password":          true,
	"passwd":            true,
	"secret":            true,
	"token":             true,
	"access_token":      true,
	"azure_openai_key":  true,
	"anthropic_api_key": true,
	"openai_api_key":    true,
	"database_password": true,
}

// sensitiveKeywords mask any key containing them. The bare "key" is left
// out: "primary_key" and "sort_key" are column metadata, not secrets.
var sensitiveKeywords = []string{"password", "passwd", "secret", "token", "apikey", "api_key", "credential"}

var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^sk-(ant-)?[A-Za-z0-9_-]{16,}$`), // OpenAI / Anthropic keys
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`^[a-f0-9]{32}$`), // Azure OpenAI keys
}

// dsnPattern finds scheme://user:password@ in a string.
var dsnPattern = regexp.MustCompile(`([a-zA-Z][a-zA-Z0-9+.-]*://[^:/@\s]+:)([^@\s]+)(@)`)

// SecureHandler wraps an slog.Handler and masks sensitive attributes.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler wraps handler. A nil handler wraps slog.Default's handler.
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's message and attributes and forwards it.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, redactDSN(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, sanitized)
}

func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(clean)}
}

func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

func sanitizeAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		clean := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			clean[i] = sanitizeAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(clean...)}
	}

	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, MaskValue)
	}

	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if isSensitiveValue(s) {
			return slog.String(a.Key, MaskValue)
		}
		if redacted := redactDSN(s); redacted != s {
			return slog.String(a.Key, redacted)
		}
	case slog.KindAny:
		// Errors from database drivers can carry the connection string.
		if err, ok := a.Value.Any().(error); ok && err != nil {
			msg := err.Error()
			if redacted := redactDSN(msg); redacted != msg {
				return slog.String(a.Key, redacted)
			}
		}
	}
	return a
}

func isSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	if sensitiveKeys[k] {
		return true
	}
	for _, kw := range sensitiveKeywords {
		if strings.Contains(k, kw) {
			return true
		}
	}
	return false
}

func isSensitiveValue(v string) bool {
	for _, p := range sensitivePatterns {
		if p.MatchString(v) {
			return true
		}
	}
	return false
}

// redactDSN masks the password of any URL-style connection string in s,
// plus a password=... pair in key/value DSNs.
func redactDSN(s string) string {
	s = dsnPattern.ReplaceAllString(s, "${1}"+MaskValue+"${3}")
	return redactKeywordPassword(s)
}

func redactKeywordPassword(s string) string {
	const key = "password="
	idx := strings.Index(strings.ToLower(s), key)
	if idx < 0 {
		return s
	}
	start := idx + len(key)
	end := strings.IndexAny(s[start:], " \t\n")
	if end < 0 {
		end = len(s) - start
	}
	if s[start:start+end] == MaskValue {
		return s
	}
	return s[:start] + MaskValue + s[start+end:]
}

// New returns a logger writing format ("text" or "json") to w.
// verbose lowers the level from info to debug.
func New(w io.Writer, format string, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var base slog.Handler
	switch format {
	case FormatJSON:
		base = slog.NewJSONHandler(w, opts)
	default:
		base = slog.NewTextHandler(w, opts)
	}
	return slog.New(NewSecureHandler(base))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
