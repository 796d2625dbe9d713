package yamlutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-dbcopilot/internal/yamlutil"
)

type testConfig struct {
	Name    string `yaml:"name"`
	Port    int    `yaml:"port"`
	Enabled bool   `yaml:"enabled"`
}

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
	}{
		{name: "valid YAML", data: []byte("name: copilot\nport: 8084\nenabled: true"), dest: &testConfig{}},
		{name: "unknown field tolerated", data: []byte("name: x\nextra: 1"), dest: &testConfig{}},
		{name: "nil data", data: nil, dest: &testConfig{}, wantErr: yamlutil.ErrNilData},
		{name: "empty data", data: []byte{}, dest: &testConfig{}, wantErr: yamlutil.ErrNilData},
		{name: "nil destination", data: []byte("name: x"), dest: nil, wantErr: yamlutil.ErrNilDestination},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.Unmarshal(tt.data, tt.dest)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestUnmarshal_Values(t *testing.T) {
	t.Parallel()

	var cfg testConfig
	if err := yamlutil.Unmarshal([]byte("name: copilot\nport: 8084\nenabled: true"), &cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Name != "copilot" || cfg.Port != 8084 || !cfg.Enabled {
		t.Errorf("got %+v", cfg)
	}
}

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	var cfg testConfig
	if err := yamlutil.UnmarshalStrict([]byte("name: x\nport: 1"), &cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := yamlutil.UnmarshalStrict([]byte("name: x\nunknown: 1"), &cfg)
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	if !strings.HasPrefix(err.Error(), "yamlutil:") {
		t.Errorf("error should carry the package prefix: %v", err)
	}
}

func TestInputSizeLimit(t *testing.T) {
	t.Parallel()

	data := []byte("name: " + strings.Repeat("a", yamlutil.MaxInputSize))
	var cfg testConfig
	if err := yamlutil.Unmarshal(data, &cfg); !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("error = %v, want ErrInputTooLarge", err)
	}
}

func TestStringMap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		want    map[string]string
		wantErr error
	}{
		{
			name: "flat string values",
			data: "QUERY_GENERATOR_PROMPT: write SQL\nNL_RESPONSE_GENERATOR: |\n  summarize\n  briefly\n",
			want: map[string]string{
				"QUERY_GENERATOR_PROMPT": "write SQL",
				"NL_RESPONSE_GENERATOR":  "summarize\nbriefly\n",
			},
		},
		{
			name:    "non-string value",
			data:    "A: text\nB: 3\nC: [x]",
			wantErr: yamlutil.ErrNotStringValue,
		},
		{
			name:    "empty document",
			data:    "",
			wantErr: yamlutil.ErrNilData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := yamlutil.StringMap([]byte(tt.data))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d keys, want %d", len(got), len(tt.want))
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestStringMap_ListsBadKeys(t *testing.T) {
	t.Parallel()

	_, err := yamlutil.StringMap([]byte("Z: 1\nA: true\nOK: fine"))
	if err == nil || !strings.Contains(err.Error(), "[A Z]") {
		t.Errorf("error should list offending keys sorted, got %v", err)
	}
}

func TestReadStringMap(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "prompts.yaml")
	if err := os.WriteFile(path, []byte("KEY: value\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := yamlutil.ReadStringMap(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["KEY"] != "value" {
		t.Errorf("KEY = %q", got["KEY"])
	}

	if _, err := yamlutil.ReadStringMap(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want os.ErrNotExist", err)
	}
}
