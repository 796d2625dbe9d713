package fileutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-dbcopilot/internal/fileutil"
)

func TestValidateExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		extension string
		wantErr   error
	}{
		{name: "html", extension: "html", wantErr: nil},
		{name: "pdf", extension: "pdf", wantErr: nil},
		{name: "empty extension", extension: "", wantErr: fileutil.ErrExtensionEmpty},
		{name: "forward slash path traversal", extension: "../etc/passwd", wantErr: fileutil.ErrExtensionPathTraversal},
		{name: "backslash path traversal", extension: "..\\windows", wantErr: fileutil.ErrExtensionPathTraversal},
		{name: "null byte injection", extension: "html\x00exe", wantErr: fileutil.ErrExtensionPathTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fileutil.ValidateExtension(tt.extension)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExtension(%q) = %v, want %v", tt.extension, err, tt.wantErr)
			}
		})
	}
}

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	content := "<html><body><table class=\"report-table\"></table></body></html>"
	path, cleanup, err := fileutil.WriteTempFile(content, "html")
	if err != nil {
		t.Fatalf("WriteTempFile() error = %v", err)
	}

	if !strings.HasPrefix(filepath.Base(path), "dbcopilot-") || !strings.HasSuffix(path, ".html") {
		t.Errorf("unexpected temp name %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error = %v", err)
	}
	if string(data) != content {
		t.Errorf("content = %q, want %q", data, content)
	}

	cleanup()
	if fileutil.FileExists(path) {
		t.Error("cleanup should remove the file")
	}
}

func TestWriteTempFile_InvalidExtension(t *testing.T) {
	t.Parallel()

	_, cleanup, err := fileutil.WriteTempFile("x", "../pdf")
	if !errors.Is(err, fileutil.ErrExtensionPathTraversal) {
		t.Errorf("error = %v, want ErrExtensionPathTraversal", err)
	}
	if cleanup != nil {
		t.Error("cleanup should be nil on error")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")

	if err := fileutil.WriteFileAtomic(path, []byte("first"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := fileutil.WriteFileAtomic(path, []byte("second"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Errorf("content = %q, want %q", data, "second")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "report.pdf")
	if err := fileutil.WriteFileAtomic(path, []byte("x"), 0o644); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestEnsureDir(t *testing.T) {
	t.Parallel()

	base := t.TempDir()

	nested := filepath.Join(base, "reports", "2026")
	if err := fileutil.EnsureDir(nested); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	if info, err := os.Stat(nested); err != nil || !info.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}
	if err := fileutil.EnsureDir(nested); err != nil {
		t.Errorf("EnsureDir() on existing dir = %v", err)
	}

	file := filepath.Join(base, "file")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := fileutil.EnsureDir(file); !errors.Is(err, fileutil.ErrNotDirectory) {
		t.Errorf("EnsureDir(file) = %v, want ErrNotDirectory", err)
	}
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "test.txt")
	if err := os.WriteFile(file, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "existing file", path: file, want: true},
		{name: "directory", path: dir, want: false},
		{name: "nonexistent", path: filepath.Join(dir, "nope"), want: false},
		{name: "empty path", path: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.FileExists(tt.path); got != tt.want {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"prod", false},
		{"my-config", false},
		{"./prod.yaml", true},
		{"/etc/dbcopilot.yaml", true},
		{`C:\cfg\prod.yaml`, true},
	}
	for _, tt := range tests {
		if got := fileutil.IsFilePath(tt.in); got != tt.want {
			t.Errorf("IsFilePath(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
