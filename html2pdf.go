package dbcopilot

import (
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-dbcopilot/internal/process"
)

// pdfRenderer abstracts PDF rendering from an HTML file to enable testing without a browser.
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, filePath string, opts *pdfOptions) ([]byte, error)
	Close() error
}

var _ pdfRenderer = (*rodRenderer)(nil)

// pdfOptions holds options for PDF generation.
type pdfOptions struct {
	Page   *PageSettings
	Footer *footerData
}

// footerData is printed at the bottom of every page.
type footerData struct {
	ShowPageNumber bool
	Date           string
	Text           string
}

// marginBottomExtra leaves room for the footer line.
const marginBottomExtra = 0.25

const footerFontFamily = "Helvetica, Arial, sans-serif"

// rodRenderer implements pdfRenderer using go-rod.
// Rod downloads Chromium on first run if no browser is found.
type rodRenderer struct {
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
}

func newRodRenderer(timeout time.Duration) *rodRenderer {
	return &rodRenderer{timeout: timeout}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		r.killLauncher(l)
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.launcher = l
	r.browser = browser
	return nil
}

// Close shuts the browser down and kills any helper process left behind.
func (r *rodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		r.killLauncher(r.launcher)
		r.launcher = nil
	}
	return err
}

func (r *rodRenderer) killLauncher(l *launcher.Launcher) {
	if pid := l.PID(); pid > 0 {
		_ = process.KillTree(pid)
	}
	l.Kill()
}

// RenderFromFile opens a local HTML file in headless Chrome and renders it
// to PDF. Calls are serialized; the pool provides parallelism.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string, opts *pdfOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.Context(ctx).PDF(buildPDFOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}

	return pdfBuf, nil
}

// buildPDFOptions constructs proto.PagePrintToPDF from page settings and
// the optional footer.
func buildPDFOptions(opts *pdfOptions) *proto.PagePrintToPDF {
	page := DefaultPageSettings()
	var footer *footerData
	if opts != nil {
		if opts.Page != nil {
			page = opts.Page
		}
		footer = opts.Footer
	}

	width, height := page.dimensions()
	margin := page.Margin
	if margin == 0 {
		margin = DefaultMargin
	}
	marginBottom := margin
	if footer != nil {
		marginBottom += marginBottomExtra
	}

	pdfOpts := &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(width),
		PaperHeight:     floatPtr(height),
		MarginTop:       floatPtr(margin),
		MarginBottom:    floatPtr(marginBottom),
		MarginLeft:      floatPtr(margin),
		MarginRight:     floatPtr(margin),
		PrintBackground: true,
	}

	if footer != nil {
		pdfOpts.DisplayHeaderFooter = true
		pdfOpts.HeaderTemplate = "<span></span>"
		pdfOpts.FooterTemplate = buildFooterTemplate(footer, margin)
	}

	return pdfOpts
}

// buildFooterTemplate generates an HTML template for Chrome's native footer.
// pageNumber and totalPages are filled in by Chrome through CSS classes.
func buildFooterTemplate(data *footerData, marginInches float64) string {
	if data == nil {
		return "<span></span>"
	}

	var left, right string
	if data.Text != "" {
		left = html.EscapeString(data.Text)
	}
	if data.Date != "" {
		if left != "" {
			left += " - "
		}
		left += html.EscapeString(data.Date)
	}
	if data.ShowPageNumber {
		right = `Page <span class="pageNumber"></span> of <span class="totalPages"></span>`
	}

	if left == "" && right == "" {
		return "<span></span>"
	}

	return fmt.Sprintf(`<div style="font-size: 8px; font-family: %s; color: #808080; width: 100%%; display: flex; justify-content: space-between; padding: 0 %.2fin;"><span>%s</span><span>%s</span></div>`,
		footerFontFamily, marginInches, left, right)
}

func floatPtr(v float64) *float64 {
	return &v
}
