package dbcopilot

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-dbcopilot/internal/assets"
)

// stubLoader serves one prompt set from memory.
type stubLoader struct {
	prompts []byte
	err     error
}

func (s *stubLoader) LoadStyle(string) (string, error) { return "", nil }

func (s *stubLoader) LoadPromptSet(string) ([]byte, error) { return s.prompts, s.err }

func TestLoadPrompts_Embedded(t *testing.T) {
	t.Parallel()

	p, err := LoadPrompts(assets.NewEmbeddedLoader(), "", "")
	if err != nil {
		t.Fatalf("LoadPrompts: %v", err)
	}
	if !strings.Contains(p.QueryGenerator, "SQL") {
		t.Errorf("QueryGenerator = %q", p.QueryGenerator)
	}
	if p.AnswerGenerator == "" || p.ReportGenerator == "" {
		t.Errorf("prompts = %+v", p)
	}
}

func TestLoadPrompts_Override(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "prompts.yaml")
	content := "QUERY_GENERATOR_PROMPT: |\n  Write SQLite SQL only.\nEXTRA_KEY: ignored\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPrompts(assets.NewEmbeddedLoader(), assets.DefaultPromptSetName, path)
	if err != nil {
		t.Fatalf("LoadPrompts: %v", err)
	}
	if p.QueryGenerator != "Write SQLite SQL only." {
		t.Errorf("QueryGenerator = %q", p.QueryGenerator)
	}
	if p.AnswerGenerator == "" {
		t.Error("keys absent from the override must keep their defaults")
	}
}

func TestLoadPrompts_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		loader   assets.AssetLoader
		override string
		wantErr  error
	}{
		{
			name:    "set not found",
			loader:  &stubLoader{err: assets.ErrPromptSetNotFound},
			wantErr: assets.ErrPromptSetNotFound,
		},
		{
			name:    "missing key",
			loader:  &stubLoader{prompts: []byte("QUERY_GENERATOR_PROMPT: q\nNL_RESPONSE_GENERATOR: a\n")},
			wantErr: ErrPromptMissing,
		},
		{
			name:     "override file missing",
			loader:   assets.NewEmbeddedLoader(),
			override: "/nonexistent/prompts.yaml",
			wantErr:  os.ErrNotExist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadPrompts(tt.loader, "default", tt.override)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPromptsFromMap_ReportsEveryMissingKey(t *testing.T) {
	t.Parallel()

	_, err := PromptsFromMap(map[string]string{KeyAnswerGenerator: "  "})
	if !errors.Is(err, ErrPromptMissing) {
		t.Fatalf("error = %v", err)
	}
	for _, key := range []string{KeyQueryGenerator, KeyAnswerGenerator, KeyReportGenerator} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q should name %s", err, key)
		}
	}
}

func TestPrompts_AnswerSystem(t *testing.T) {
	t.Parallel()

	p := &Prompts{QueryGenerator: "q", AnswerGenerator: "a", ReportGenerator: "r"}
	if p.answerSystem(false) != "a" || p.answerSystem(true) != "r" {
		t.Error("answerSystem picked the wrong prompt")
	}
}
