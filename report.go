package dbcopilot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-dbcopilot/internal/assets"
	"github.com/alnah/go-dbcopilot/internal/dateutil"
	"github.com/alnah/go-dbcopilot/internal/fileutil"
	"github.com/alnah/go-dbcopilot/internal/pipeline"
)

// Compile-time interface checks.
var (
	_ pipeline.HTMLConverter = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.CSSInjector   = (*pipeline.CSSInjection)(nil)
	_ Reporter               = (*ReportBuilder)(nil)
)

const (
	defaultReportTimeout = 60 * time.Second
	defaultReportTitle   = "Business Report"
)

// Document is one report to render.
type Document struct {
	Markdown string
	Title    string // falls back to the builder title
	Subtitle string
}

// Reporter renders a Document to a PDF file.
type Reporter interface {
	RenderFile(ctx context.Context, doc Document, path string) error
}

// ReportBuilder turns markdown into a paginated PDF: text blocks first,
// then every table in the fixed report style.
type ReportBuilder struct {
	loader      assets.AssetLoader
	styleName   string
	tableStyle  pipeline.TableStyle
	interleave  bool
	page        *PageSettings
	footer      bool
	footerText  string
	title       string
	dateFormat  string
	dateLayout  string
	timeout     time.Duration
	now         func() time.Time
	logger      *slog.Logger
	converter   pipeline.HTMLConverter
	cssInjector pipeline.CSSInjector
	document    *pipeline.DocumentRenderer
	renderer    pdfRenderer
	layout      *pipeline.LayoutBuilder
	css         string
}

// ReportOption configures a ReportBuilder.
type ReportOption func(*ReportBuilder)

// WithAssetLoader sets where the report stylesheet is loaded from.
func WithAssetLoader(l assets.AssetLoader) ReportOption {
	return func(b *ReportBuilder) { b.loader = l }
}

// WithStyle selects the stylesheet by name.
func WithStyle(name string) ReportOption {
	return func(b *ReportBuilder) { b.styleName = name }
}

// WithTableStyle overrides the table style.
func WithTableStyle(s pipeline.TableStyle) ReportOption {
	return func(b *ReportBuilder) { b.tableStyle = s }
}

// WithInterleave places tables at their source position.
func WithInterleave(enabled bool) ReportOption {
	return func(b *ReportBuilder) { b.interleave = enabled }
}

// WithPage sets the page size, orientation and margin.
func WithPage(p *PageSettings) ReportOption {
	return func(b *ReportBuilder) { b.page = p }
}

// WithFooter toggles the page number and date footer; text is prepended to
// the date when non-empty.
func WithFooter(enabled bool, text string) ReportOption {
	return func(b *ReportBuilder) {
		b.footer = enabled
		b.footerText = text
	}
}

// WithTitle sets the default report title.
func WithTitle(title string) ReportOption {
	return func(b *ReportBuilder) { b.title = title }
}

// WithDateFormat sets the header and footer date format: a preset name
// (iso, european, us, long) or tokens like "DD/MM/YYYY".
func WithDateFormat(format string) ReportOption {
	return func(b *ReportBuilder) { b.dateFormat = format }
}

// WithRenderTimeout bounds page loading in the browser.
func WithRenderTimeout(d time.Duration) ReportOption {
	return func(b *ReportBuilder) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithClock sets the time source used for report dates.
func WithClock(now func() time.Time) ReportOption {
	return func(b *ReportBuilder) { b.now = now }
}

// WithReportLogger sets the logger.
func WithReportLogger(l *slog.Logger) ReportOption {
	return func(b *ReportBuilder) { b.logger = l }
}

// withPDFRenderer replaces the browser, for tests.
func withPDFRenderer(r pdfRenderer) ReportOption {
	return func(b *ReportBuilder) { b.renderer = r }
}

// NewReportBuilder loads the stylesheet and prepares the pipeline. The
// browser is started on the first render.
func NewReportBuilder(opts ...ReportOption) (*ReportBuilder, error) {
	b := &ReportBuilder{
		loader:      assets.NewEmbeddedLoader(),
		styleName:   assets.DefaultStyleName,
		tableStyle:  pipeline.DefaultTableStyle(),
		page:        DefaultPageSettings(),
		footer:      true,
		title:       defaultReportTitle,
		timeout:     defaultReportTimeout,
		now:         time.Now,
		logger:      slog.New(slog.DiscardHandler),
		converter:   pipeline.NewGoldmarkConverter(),
		cssInjector: &pipeline.CSSInjection{},
		document:    pipeline.NewDocumentRenderer(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if err := b.page.Validate(); err != nil {
		return nil, err
	}

	layout, err := dateutil.Layout(b.dateFormat)
	if err != nil {
		return nil, err
	}
	b.dateLayout = layout

	style, err := b.loader.LoadStyle(b.styleName)
	if err != nil {
		return nil, fmt.Errorf("loading style %q: %w", b.styleName, err)
	}
	b.css = style + "\n" + b.tableStyle.CSS()

	b.layout = pipeline.NewLayoutBuilder(b.converter,
		pipeline.WithTableStyle(b.tableStyle),
		pipeline.WithInterleave(b.interleave),
	)

	if b.renderer == nil {
		b.renderer = newRodRenderer(b.timeout)
	}
	return b, nil
}

// Build renders markdown with the builder defaults and writes the PDF to w.
func (b *ReportBuilder) Build(ctx context.Context, markdown string, w io.Writer) error {
	return b.Render(ctx, Document{Markdown: markdown}, w)
}

// BuildFile renders markdown with the builder defaults into path.
func (b *ReportBuilder) BuildFile(ctx context.Context, markdown, path string) error {
	return b.RenderFile(ctx, Document{Markdown: markdown}, path)
}

// RenderFile renders doc and writes the PDF atomically to path, creating
// the parent directory when needed.
func (b *ReportBuilder) RenderFile(ctx context.Context, doc Document, path string) error {
	pdf, err := b.RenderPDF(ctx, doc)
	if err != nil {
		return err
	}
	if err := fileutil.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	if err := fileutil.WriteFileAtomic(path, pdf, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrRender, path, err)
	}
	return nil
}

// Render renders doc and writes the PDF to w.
func (b *ReportBuilder) Render(ctx context.Context, doc Document, w io.Writer) error {
	pdf, err := b.RenderPDF(ctx, doc)
	if err != nil {
		return err
	}
	if _, err := w.Write(pdf); err != nil {
		return fmt.Errorf("%w: writing PDF: %w", ErrRender, err)
	}
	return nil
}

// RenderPDF runs the whole layout and returns the PDF bytes. Any failure
// aborts the document and is reported as ErrRender.
func (b *ReportBuilder) RenderPDF(ctx context.Context, doc Document) (pdf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %w: %v", ErrRender, ErrInternal, r)
		}
	}()

	start := time.Now()
	htmlDoc, err := b.RenderHTML(ctx, doc)
	if err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlDoc, "html")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	defer cleanup()

	pdf, err = b.renderer.RenderFromFile(ctx, tmpPath, b.pdfOptions())
	if err != nil {
		return nil, renderError(err)
	}

	b.logger.Debug("report rendered", "stage", "render", "duration", time.Since(start), "bytes", len(pdf))
	return pdf, nil
}

// RenderHTML returns the styled HTML document that is printed to PDF.
func (b *ReportBuilder) RenderHTML(ctx context.Context, doc Document) (string, error) {
	if strings.TrimSpace(doc.Markdown) == "" {
		return "", fmt.Errorf("%w: %w", ErrRender, ErrEmptyMarkdown)
	}

	blocks, err := b.layout.Build(ctx, doc.Markdown)
	if err != nil {
		return "", renderError(err)
	}

	title := doc.Title
	if title == "" {
		title = b.title
	}
	meta := pipeline.DocumentMeta{
		Title:    title,
		Subtitle: doc.Subtitle,
		Date:     b.now().Format(b.dateLayout),
	}

	htmlDoc, err := b.document.Render(ctx, blocks, meta)
	if err != nil {
		return "", renderError(err)
	}

	htmlDoc = b.cssInjector.InjectCSS(ctx, htmlDoc, b.css)
	if err := ctx.Err(); err != nil {
		return "", renderError(err)
	}
	return htmlDoc, nil
}

func (b *ReportBuilder) pdfOptions() *pdfOptions {
	opts := &pdfOptions{Page: b.page}
	if b.footer {
		opts.Footer = &footerData{
			ShowPageNumber: true,
			Date:           b.now().Format(b.dateLayout),
			Text:           b.footerText,
		}
	}
	return opts
}

// Close releases the browser.
func (b *ReportBuilder) Close() error {
	if b.renderer != nil {
		return b.renderer.Close()
	}
	return nil
}

func renderError(err error) error {
	if errors.Is(err, ErrRender) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrRender, err)
}

// ReadMarkdownFile reads a markdown report source.
func ReadMarkdownFile(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied input path
	if err != nil {
		return "", err
	}
	return string(data), nil
}
