package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Spacer heights in points.
const (
	TextSpacing  = 10.0
	TableSpacing = 15.0
)

// BlockKind tags a layout block.
type BlockKind int

const (
	BlockText BlockKind = iota
	BlockSpacer
	BlockTable
)

func (k BlockKind) String() string {
	switch k {
	case BlockText:
		return "text"
	case BlockSpacer:
		return "spacer"
	case BlockTable:
		return "table"
	default:
		return fmt.Sprintf("BlockKind(%d)", int(k))
	}
}

// Block is one unit of paginated report content.
// Only the fields matching Kind are set.
type Block struct {
	Kind    BlockKind
	Content string     // BlockText: well-formed HTML fragment
	Height  float64    // BlockSpacer: points
	Rows    [][]string // BlockTable: first row is the header
	Style   TableStyle // BlockTable
}

// TextBlock returns a text block holding an HTML fragment.
func TextBlock(content string) Block {
	return Block{Kind: BlockText, Content: content}
}

// Spacer returns a vertical gap of height points.
func Spacer(height float64) Block {
	return Block{Kind: BlockSpacer, Height: height}
}

// TableBlock returns a styled table block.
func TableBlock(rows [][]string, style TableStyle) Block {
	return Block{Kind: BlockTable, Rows: rows, Style: style}
}

var (
	// pipeRowPattern matches a raw pipe-table row once HTML tags are removed.
	pipeRowPattern = regexp.MustCompile(`^\|.*\|$`)
	tagPattern     = regexp.MustCompile(`<[^>]*>`)
)

// LayoutBuilder turns a markdown report into layout blocks.
type LayoutBuilder struct {
	converter  HTMLConverter
	style      TableStyle
	interleave bool
}

// LayoutOption configures a LayoutBuilder.
type LayoutOption func(*LayoutBuilder)

// WithTableStyle overrides the style applied to every table block.
func WithTableStyle(s TableStyle) LayoutOption {
	return func(b *LayoutBuilder) {
		b.style = s
	}
}

// WithInterleave places each table block at its source position instead of
// after all text blocks.
func WithInterleave(enabled bool) LayoutOption {
	return func(b *LayoutBuilder) {
		b.interleave = enabled
	}
}

// NewLayoutBuilder creates a LayoutBuilder using conv for markdown rendering.
func NewLayoutBuilder(conv HTMLConverter, opts ...LayoutOption) *LayoutBuilder {
	b := &LayoutBuilder{
		converter: conv,
		style:     DefaultTableStyle(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build converts markdown into blocks.
//
// By default every text block comes first, followed by one table block per
// extracted table in extraction order. With WithInterleave(true) the markdown
// is cut around each table and blocks follow source order.
func (b *LayoutBuilder) Build(ctx context.Context, markdown string) ([]Block, error) {
	tables := ExtractTables(markdown)

	if !b.interleave {
		body, err := b.converter.ToHTML(ctx, markdown)
		if err != nil {
			return nil, err
		}
		blocks := TextBlocks(body)
		return append(blocks, TableBlocks(tables, b.style)...), nil
	}

	lines := strings.Split(markdown, "\n")
	var blocks []Block
	cursor := 0
	for _, t := range tables {
		// Cell-less tables come from prose lines holding a lone pipe;
		// they stay in the surrounding text.
		if tableWidth(t.Rows) == 0 {
			continue
		}
		text, err := b.segmentBlocks(ctx, lines[cursor:t.StartLine])
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, text...)
		blocks = append(blocks, TableBlocks([]Table{t}, b.style)...)
		cursor = t.EndLine + 1
	}
	text, err := b.segmentBlocks(ctx, lines[cursor:])
	if err != nil {
		return nil, err
	}
	return append(blocks, text...), nil
}

func (b *LayoutBuilder) segmentBlocks(ctx context.Context, lines []string) ([]Block, error) {
	segment := strings.Join(lines, "\n")
	if strings.TrimSpace(segment) == "" {
		return nil, nil
	}
	body, err := b.converter.ToHTML(ctx, segment)
	if err != nil {
		return nil, err
	}
	return TextBlocks(body), nil
}

// TextBlocks splits an HTML body into text blocks, each followed by a
// TextSpacing spacer. Blank lines and raw pipe rows are skipped.
// A <pre> element is kept whole as a single line.
func TextBlocks(body string) []Block {
	var blocks []Block
	for _, line := range htmlLines(body) {
		if strings.TrimSpace(line) == "" || isPipeRow(line) {
			continue
		}
		fragment := balanceFragment(line)
		if !hasContent(fragment) {
			continue
		}
		blocks = append(blocks, TextBlock(fragment), Spacer(TextSpacing))
	}
	return blocks
}

// TableBlocks returns a table block and a TableSpacing spacer per table.
// Tables whose rows carry no cells at all are skipped.
func TableBlocks(tables []Table, style TableStyle) []Block {
	var blocks []Block
	for _, t := range tables {
		if tableWidth(t.Rows) == 0 {
			continue
		}
		blocks = append(blocks, TableBlock(t.Rows, style), Spacer(TableSpacing))
	}
	return blocks
}

// htmlLines splits body on newlines, joining <pre> regions into one line.
func htmlLines(body string) []string {
	raw := strings.Split(body, "\n")
	lines := make([]string, 0, len(raw))

	var pre []string
	for _, line := range raw {
		if pre != nil {
			pre = append(pre, line)
			if strings.Contains(line, "</pre>") {
				lines = append(lines, strings.Join(pre, "\n"))
				pre = nil
			}
			continue
		}
		open := strings.LastIndex(line, "<pre")
		if open >= 0 && !strings.Contains(line[open:], "</pre>") {
			pre = []string{line}
			continue
		}
		lines = append(lines, line)
	}
	if pre != nil {
		lines = append(lines, strings.Join(pre, "\n"))
	}
	return lines
}

func isPipeRow(line string) bool {
	if strings.HasPrefix(strings.TrimSpace(line), "<pre") {
		return false
	}
	text := strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(line, "")))
	return pipeRowPattern.MatchString(text)
}

// balanceFragment closes any tags left open by line splitting so each
// block is well-formed on its own. End tags whose element opened on an
// earlier line are dropped.
func balanceFragment(line string) string {
	parent := &nethtml.Node{Type: nethtml.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := nethtml.ParseFragment(strings.NewReader(dropStrayEndTags(line)), parent)
	if err != nil {
		return html.EscapeString(line)
	}
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := nethtml.Render(&buf, n); err != nil {
			return html.EscapeString(line)
		}
	}
	return buf.String()
}

// dropStrayEndTags removes end tags that close nothing opened in line.
func dropStrayEndTags(line string) string {
	z := nethtml.NewTokenizer(strings.NewReader(line))
	var (
		buf  strings.Builder
		open []string
	)
	for {
		tt := z.Next()
		if tt == nethtml.ErrorToken {
			return buf.String()
		}
		raw := string(z.Raw())
		switch tt {
		case nethtml.StartTagToken:
			name, _ := z.TagName()
			open = append(open, string(name))
		case nethtml.EndTagToken:
			name, _ := z.TagName()
			i := len(open) - 1
			for i >= 0 && open[i] != string(name) {
				i--
			}
			if i < 0 {
				continue
			}
			open = open[:i]
		}
		buf.WriteString(raw)
	}
}

// hasContent reports whether a fragment shows anything once rendered.
func hasContent(fragment string) bool {
	if strings.TrimSpace(tagPattern.ReplaceAllString(fragment, "")) != "" {
		return true
	}
	return strings.Contains(fragment, "<hr") || strings.Contains(fragment, "<img")
}

func tableWidth(rows [][]string) int {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	return width
}
