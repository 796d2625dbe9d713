package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

// ErrDocumentRender indicates the layout document template failed.
var ErrDocumentRender = errors.New("document template rendering failed")

// CSSInjector defines the contract for CSS injection into HTML.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent, cssContent string) string
}

// CSSInjection injects CSS as a <style> block into HTML content.
type CSSInjection struct{}

// InjectCSS inserts a <style> block before </head>, after <body>, or at the
// start of the content, whichever is found first.
func (s *CSSInjection) InjectCSS(ctx context.Context, htmlContent, cssContent string) string {
	if cssContent == "" {
		return htmlContent
	}

	if ctx.Err() != nil {
		return htmlContent
	}

	styleBlock := "<style>" + sanitizeCSS(cssContent) + "</style>"
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}

	if idx := strings.Index(lowerHTML, "<body"); idx != -1 {
		if closeIdx := strings.Index(htmlContent[idx:], ">"); closeIdx != -1 {
			insertPos := idx + closeIdx + 1
			return htmlContent[:insertPos] + styleBlock + htmlContent[insertPos:]
		}
	}

	return styleBlock + htmlContent
}

// sanitizeCSS escapes "</" so the CSS cannot close the <style> element.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// DocumentMeta is shown above the first block of a report.
type DocumentMeta struct {
	Title    string
	Subtitle string
	Date     string
}

const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{if .Meta.Title}}{{.Meta.Title}}{{else}}Report{{end}}</title>
</head>
<body>
{{- if .Meta.Title}}
<header class="report-header">
<h1>{{.Meta.Title}}</h1>
{{- if .Meta.Subtitle}}<p class="report-subtitle">{{.Meta.Subtitle}}</p>{{end}}
{{- if .Meta.Date}}<p class="report-date">{{.Meta.Date}}</p>{{end}}
</header>
{{- end}}
{{- range .Blocks}}
{{- if eq .Kind 0}}
<div class="block-text">{{.Content}}</div>
{{- else if eq .Kind 1}}
<div class="block-spacer" style="height: {{printf "%.1f" .Height}}pt"></div>
{{- else if eq .Kind 2}}
<table class="report-table">
{{- range $i, $row := .Rows}}
{{- if eq $i 0}}
<thead><tr>{{range $row}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- else}}
<tr>{{range $row}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
{{- end}}
</tbody>
</table>
{{- end}}
{{- end}}
</body>
</html>`

// DocumentRenderer renders layout blocks into a standalone HTML document.
type DocumentRenderer struct {
	tmpl *template.Template
}

// NewDocumentRenderer parses the document template.
func NewDocumentRenderer() *DocumentRenderer {
	return &DocumentRenderer{
		tmpl: template.Must(template.New("document").Parse(documentTemplate)),
	}
}

// Render returns the HTML document for blocks. Text block content is
// trusted HTML produced by the markdown converter; table cells are escaped.
func (r *DocumentRenderer) Render(ctx context.Context, blocks []Block, meta DocumentMeta) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type view struct {
		Kind    int
		Content template.HTML
		Height  float64
		Rows    [][]string
	}
	views := make([]view, len(blocks))
	for i, b := range blocks {
		views[i] = view{
			Kind:    int(b.Kind),
			Content: template.HTML(b.Content), // #nosec G203 -- goldmark output, raw HTML disabled
			Height:  b.Height,
			Rows:    b.Rows,
		}
	}

	var buf bytes.Buffer
	data := struct {
		Meta   DocumentMeta
		Blocks []view
	}{Meta: meta, Blocks: views}
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDocumentRender, err)
	}
	return buf.String(), nil
}
