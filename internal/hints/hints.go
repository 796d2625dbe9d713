// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-dbcopilot/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}

	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the timeout for slow models or queries.
func ForTimeout() string {
	return format("slow model or query; raise --timeout or server.requestTimeout")
}

// ForConfigNotFound suggests --config and creating the file in the
// per-user go-dbcopilot config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if filepath.Base(filepath.Dir(p)) == "go-dbcopilot" {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForDatabaseConnect returns hints for database connection errors.
func ForDatabaseConnect(driver string) string {
	switch driver {
	case "postgres":
		var hints []string
		if os.Getenv("DATABASE_PASSWORD") == "" && os.Getenv("PGPASSWORD") == "" {
			hints = append(hints, "set DATABASE_PASSWORD or include it in --dsn")
		}
		hints = append(hints, "check host, port and sslmode in the DSN")
		return formatHints(hints)
	case "sqlite":
		return format("check the database file path exists and is readable")
	default:
		return format("supported drivers: postgres, sqlite")
	}
}

// ForModelAuth returns hints for rejected model credentials.
func ForModelAuth(provider string) string {
	switch provider {
	case "azure":
		return format("set AZURE_OPENAI_KEY, AZURE_OPENAI_ENDPOINT and AZURE_OPENAI_CHAT_DEPLOYMENT")
	case "openai":
		return format("set OPENAI_API_KEY")
	case "anthropic":
		return format("set ANTHROPIC_API_KEY")
	default:
		return format("supported providers: azure, openai, anthropic")
	}
}

// ForQuery returns a hint shown when the generated SQL fails to run.
func ForQuery() string {
	return format("rephrase the question or inspect the SQL with: dbcopilot ask --sql-only")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
