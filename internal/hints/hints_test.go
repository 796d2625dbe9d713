package hints

// Notes:
// - ForBrowserConnect tests cannot use t.Parallel() because they:
//   1. Use t.Setenv() which modifies process environment
//   2. Modify the package-level IsInContainer variable
// These are acceptable gaps: we test observable behavior through environment manipulation.

import (
	"strings"
	"testing"
)

func TestForBrowserConnect_InCI(t *testing.T) {
	// Save and restore IsInContainer (not parallel-safe, see package notes)
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return false }

	t.Setenv("CI", "true")
	t.Setenv("ROD_NO_SANDBOX", "")
	t.Setenv("ROD_BROWSER_BIN", "")

	hint := ForBrowserConnect()

	if !strings.Contains(hint, "hint:") {
		t.Error("expected hint prefix")
	}
	if !strings.Contains(hint, "ROD_NO_SANDBOX") {
		t.Error("expected ROD_NO_SANDBOX suggestion in CI")
	}
	if !strings.Contains(hint, "ROD_BROWSER_BIN") {
		t.Error("expected ROD_BROWSER_BIN suggestion")
	}
}

func TestForBrowserConnect_InDocker(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return true }

	t.Setenv("CI", "")
	t.Setenv("ROD_NO_SANDBOX", "")
	t.Setenv("ROD_BROWSER_BIN", "")

	hint := ForBrowserConnect()

	if !strings.Contains(hint, "ROD_NO_SANDBOX") {
		t.Error("expected ROD_NO_SANDBOX suggestion in Docker")
	}
}

func TestForBrowserConnect_SandboxAlreadySet(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return true }

	t.Setenv("CI", "")
	t.Setenv("ROD_NO_SANDBOX", "1")
	t.Setenv("ROD_BROWSER_BIN", "")

	hint := ForBrowserConnect()

	if strings.Contains(hint, "ROD_NO_SANDBOX") {
		t.Error("should not suggest ROD_NO_SANDBOX when already set")
	}
}

func TestForBrowserConnect_BrowserBinAlreadySet(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return false }

	t.Setenv("CI", "")
	t.Setenv("ROD_NO_SANDBOX", "")
	t.Setenv("ROD_BROWSER_BIN", "/usr/bin/chrome")

	hint := ForBrowserConnect()

	if strings.Contains(hint, "ROD_BROWSER_BIN") {
		t.Error("should not suggest ROD_BROWSER_BIN when already set")
	}
}

func TestForBrowserConnect_NoHintsNeeded(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return false }

	t.Setenv("CI", "")
	t.Setenv("ROD_NO_SANDBOX", "")
	t.Setenv("ROD_BROWSER_BIN", "/usr/bin/chrome")

	hint := ForBrowserConnect()

	// Should have no sandbox hint (not in CI/Docker) but no browser hint
	if strings.Contains(hint, "ROD_BROWSER_BIN") {
		t.Error("should not suggest ROD_BROWSER_BIN when set")
	}
}

func TestForBrowserConnect_AllConfigured(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return true } // In Docker

	t.Setenv("CI", "true")
	t.Setenv("ROD_NO_SANDBOX", "1")
	t.Setenv("ROD_BROWSER_BIN", "/usr/bin/chrome")

	hint := ForBrowserConnect()

	// Both env vars set, should return empty hint
	if hint != "" {
		t.Errorf("expected empty hint when all configured, got %q", hint)
	}
}

func TestForTimeout(t *testing.T) {
	hint := ForTimeout()

	if !strings.Contains(hint, "hint:") {
		t.Error("expected hint prefix")
	}
	if !strings.Contains(hint, "--timeout") {
		t.Error("expected --timeout flag mention")
	}
}

func TestForConfigNotFound(t *testing.T) {
	tests := []struct {
		name     string
		paths    []string
		contains string
	}{
		{
			name:     "empty paths",
			paths:    []string{},
			contains: "--config",
		},
		{
			name:     "with paths",
			paths:    []string{"./prod.yaml", "~/.config/go-dbcopilot/prod.yaml"},
			contains: "create ~/.config/go-dbcopilot/prod.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := ForConfigNotFound(tt.paths)

			if !strings.Contains(hint, "hint:") {
				t.Error("expected hint prefix")
			}
			if !strings.Contains(hint, tt.contains) {
				t.Errorf("expected hint to contain %q, got %q", tt.contains, hint)
			}
		})
	}
}

func TestForOutputDirectory(t *testing.T) {
	hint := ForOutputDirectory()

	if !strings.Contains(hint, "parent directory") {
		t.Error("expected parent directory mention")
	}
}

func TestForDatabaseConnect(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "")
	t.Setenv("PGPASSWORD", "")

	tests := []struct {
		driver   string
		contains string
	}{
		{driver: "postgres", contains: "DATABASE_PASSWORD"},
		{driver: "sqlite", contains: "file path"},
		{driver: "oracle", contains: "postgres, sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			hint := ForDatabaseConnect(tt.driver)
			if !strings.Contains(hint, tt.contains) {
				t.Errorf("ForDatabaseConnect(%q) = %q, want it to contain %q", tt.driver, hint, tt.contains)
			}
		})
	}
}

func TestForDatabaseConnect_PasswordSet(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "x")

	hint := ForDatabaseConnect("postgres")
	if strings.Contains(hint, "DATABASE_PASSWORD") {
		t.Errorf("password hint should be skipped when set: %q", hint)
	}
	if !strings.Contains(hint, "sslmode") {
		t.Errorf("expected DSN hint: %q", hint)
	}
}

func TestForModelAuth(t *testing.T) {
	tests := []struct {
		provider string
		contains string
	}{
		{provider: "azure", contains: "AZURE_OPENAI_KEY"},
		{provider: "openai", contains: "OPENAI_API_KEY"},
		{provider: "anthropic", contains: "ANTHROPIC_API_KEY"},
		{provider: "", contains: "supported providers"},
	}

	for _, tt := range tests {
		if hint := ForModelAuth(tt.provider); !strings.Contains(hint, tt.contains) {
			t.Errorf("ForModelAuth(%q) = %q, want it to contain %q", tt.provider, hint, tt.contains)
		}
	}
}

func TestFormat_Consistency(t *testing.T) {
	hints := []string{
		ForTimeout(),
		ForOutputDirectory(),
		ForQuery(),
		ForModelAuth("azure"),
		ForDatabaseConnect("sqlite"),
	}

	for _, h := range hints {
		if !strings.HasPrefix(h, "\n  hint: ") {
			t.Errorf("hint format inconsistent: %q", h)
		}
	}
}
