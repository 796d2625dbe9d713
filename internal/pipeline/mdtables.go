package pipeline

import (
	"regexp"
	"strings"
)

// separatorCellPattern matches a GFM header-separator cell: dashes with
// optional alignment colons.
var separatorCellPattern = regexp.MustCompile(`^:?-+:?$`)

// Table is a group of contiguous pipe-delimited markdown lines.
// Rows keep the width they had in the source; nothing is padded.
type Table struct {
	Rows [][]string

	// StartLine and EndLine are the zero-based source lines of the first and
	// last pipe line that belong to the table (separator rows included).
	StartLine int
	EndLine   int
}

// ExtractTables returns every pipe table found in markdown, in document order.
// Separator rows are dropped; all other pipe rows are kept as-is, even when
// their widths differ. A table without a trailing non-pipe line is still
// flushed at end of input. Lines inside fenced code blocks are never table
// rows, so SQL such as "a || b" stays code.
func ExtractTables(markdown string) []Table {
	var (
		tables  []Table
		pending [][]string
		start   = -1
		last    = -1
		fence   string
	)

	flush := func() {
		if len(pending) == 0 {
			start = -1
			return
		}
		rows := make([][]string, len(pending))
		copy(rows, pending)
		tables = append(tables, Table{Rows: rows, StartLine: start, EndLine: last})
		pending = nil
		start = -1
	}

	for i, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSuffix(line, "\r")

		if marker, rest, ok := fenceMarker(line); ok {
			switch {
			case fence == "":
				flush()
				fence = marker
				continue
			case marker[0] == fence[0] && len(marker) >= len(fence) && strings.TrimSpace(rest) == "":
				fence = ""
				continue
			}
		}
		if fence != "" {
			continue
		}

		if !strings.Contains(line, "|") {
			flush()
			continue
		}

		if start < 0 {
			start = i
		}
		last = i

		row := splitRow(line)
		if isSeparatorRow(row) {
			continue
		}
		pending = append(pending, row)
	}
	flush()

	return tables
}

// fenceMarker returns the run of three or more backticks or tildes that
// opens line (after at most three spaces of indent) and the text after it.
func fenceMarker(line string) (marker, rest string, ok bool) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || trimmed == "" {
		return "", "", false
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return "", "", false
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return "", "", false
	}
	return trimmed[:n], trimmed[n:], true
}

// splitRow splits a pipe line and drops the fragments outside the outer pipes.
func splitRow(line string) []string {
	parts := strings.Split(line, "|")
	if len(parts) <= 2 {
		return []string{}
	}
	inner := parts[1 : len(parts)-1]
	row := make([]string, len(inner))
	for i, cell := range inner {
		row[i] = strings.TrimSpace(cell)
	}
	return row
}

// isSeparatorRow reports whether every cell is a dash run like "---" or ":--:".
func isSeparatorRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	for _, cell := range row {
		if !separatorCellPattern.MatchString(cell) {
			return false
		}
	}
	return true
}
