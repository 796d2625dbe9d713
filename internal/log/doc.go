// Package log builds the slog loggers used by the server and the CLI.
//
// Every logger is wrapped in a SecureHandler that masks secrets before they
// reach the output:
//   - attributes whose key names a credential (password, api_key, token, ...)
//   - values that look like provider API keys or bearer tokens
//   - passwords embedded in database connection URLs, which are rewritten
//     in place so the host and database name stay readable
//
// Usage:
//
//	logger := log.New(os.Stderr, log.FormatJSON, verbose)
//	logger.Info("database ready", "dsn", cfg.Database.DSN)
package log
