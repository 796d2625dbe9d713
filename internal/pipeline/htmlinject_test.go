package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSanitizeCSS(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                              "",
		".report-table { color: red; }": ".report-table { color: red; }",
		"</style>":                      `<\/style>`,
		"</STYLE></script>":             `<\/STYLE><\/script>`,
		"</</style>":                    `<\/<\/style>`,
	}

	for in, want := range tests {
		if got := sanitizeCSS(in); got != want {
			t.Errorf("sanitizeCSS(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInjectCSS(t *testing.T) {
	t.Parallel()

	const css = "th { background: grey; }"
	const style = "<style>" + css + "</style>"

	tests := []struct {
		name string
		html string
		css  string
		want string
	}{
		{
			name: "no stylesheet",
			html: "<html><head></head><body></body></html>",
			want: "<html><head></head><body></body></html>",
		},
		{
			name: "before closing head",
			html: "<html><HEAD><title>Report</title></HEAD><body></body></html>",
			css:  css,
			want: "<html><HEAD><title>Report</title>" + style + "</HEAD><body></body></html>",
		},
		{
			name: "after body with attributes",
			html: `<html><body class="report"><h1>Sales</h1></body></html>`,
			css:  css,
			want: `<html><body class="report">` + style + `<h1>Sales</h1></body></html>`,
		},
		{
			name: "bare fragment",
			html: "<table></table>",
			css:  css,
			want: style + "<table></table>",
		},
		{
			name: "closing tags in stylesheet are escaped",
			html: "<head></head>",
			css:  "</style><script>x()</script>",
			want: `<head><style><\/style><script>x()<\/script></style></head>`,
		},
	}

	injector := &CSSInjection{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := injector.InjectCSS(context.Background(), tt.html, tt.css); got != tt.want {
				t.Errorf("InjectCSS() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInjectCSS_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc := "<html><head></head><body></body></html>"
	if got := (&CSSInjection{}).InjectCSS(ctx, doc, "th { color: red; }"); got != doc {
		t.Errorf("InjectCSS() on canceled context = %q, want input unchanged", got)
	}
}

func TestDocumentRenderer_Render(t *testing.T) {
	t.Parallel()

	renderer := NewDocumentRenderer()
	blocks := []Block{
		TextBlock("<p>Summary of results.</p>"),
		Spacer(TextSpacing),
		TableBlock([][]string{{"Name", "Score"}, {"Alice", "90"}, {"Bob", "85"}}, DefaultTableStyle()),
		Spacer(TableSpacing),
	}

	got, err := renderer.Render(context.Background(), blocks, DocumentMeta{Title: "Quarterly", Date: "2026-10-19"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantParts := []string{
		"<title>Quarterly</title>",
		"<h1>Quarterly</h1>",
		`<p class="report-date">2026-10-19</p>`,
		`<div class="block-text"><p>Summary of results.</p></div>`,
		`style="height: 10.0pt"`,
		`style="height: 15.0pt"`,
		"<thead><tr><th>Name</th><th>Score</th></tr></thead>",
		"<tr><td>Alice</td><td>90</td></tr>",
		"<tr><td>Bob</td><td>85</td></tr>",
	}
	for _, want := range wantParts {
		if !strings.Contains(got, want) {
			t.Errorf("Render() missing %q\nGot:\n%s", want, got)
		}
	}

	if strings.Index(got, "block-text") > strings.Index(got, "report-table") {
		t.Error("text block should be emitted before the table")
	}
	if strings.Contains(got, "report-subtitle") {
		t.Error("empty subtitle should not be rendered")
	}
}

func TestDocumentRenderer_EscapesCells(t *testing.T) {
	t.Parallel()

	renderer := NewDocumentRenderer()
	blocks := []Block{TableBlock([][]string{{"<b>h</b>"}, {"a & b"}}, DefaultTableStyle())}

	got, err := renderer.Render(context.Background(), blocks, DocumentMeta{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(got, "<b>h</b>") {
		t.Error("header cell should be escaped")
	}
	if !strings.Contains(got, "a &amp; b") {
		t.Errorf("body cell should be escaped, got:\n%s", got)
	}
	if !strings.Contains(got, "<title>Report</title>") {
		t.Error("missing default title")
	}
	if strings.Contains(got, "report-header") {
		t.Error("header should be omitted without a title")
	}
}

func TestDocumentRenderer_HeaderOnlyTable(t *testing.T) {
	t.Parallel()

	renderer := NewDocumentRenderer()
	got, err := renderer.Render(context.Background(), []Block{TableBlock([][]string{{"only"}}, DefaultTableStyle())}, DocumentMeta{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "<th>only</th>") || !strings.Contains(got, "</tbody>") {
		t.Errorf("header-only table not rendered, got:\n%s", got)
	}
}

func TestDocumentRenderer_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDocumentRenderer().Render(ctx, nil, DocumentMeta{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
