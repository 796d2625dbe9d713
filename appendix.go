package dbcopilot

import (
	"strings"

	"github.com/nao1215/markdown"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/alnah/go-dbcopilot/internal/database"
)

// maxAppendixRows caps the rows copied into a report appendix.
const maxAppendixRows = 200

var cellReplacer = strings.NewReplacer("|", "¦", "\r\n", " ", "\n", " ", "\r", " ")

// DataAppendix renders the executed SQL and its rows as a markdown section
// suitable for appending to a business report.
func DataAppendix(sql string, res *QueryResult) string {
	var b strings.Builder
	md := markdown.NewMarkdown(&b)

	md.H2("Data Appendix")
	md.PlainText("")
	md.H3("Query")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlight("sql"), strings.TrimSpace(sql))
	md.PlainText("")
	md.H3("Results")
	md.PlainText("")

	switch {
	case res == nil || len(res.Columns) == 0:
		md.PlainText("The query returned no columns.")
	case len(res.Rows) == 0:
		md.PlainText("The query returned no rows.")
	default:
		md.Table(markdown.TableSet{
			Header: columnTitles(res.Columns),
			Rows:   cellRows(res, maxAppendixRows),
		})
		if len(res.Rows) > maxAppendixRows {
			md.PlainText("")
			md.PlainTextf("Showing %d of %d rows.", maxAppendixRows, len(res.Rows))
		}
	}
	md.PlainText("")

	return md.String()
}

// columnTitles turns column names such as token_pair into Token Pair.
func columnTitles(columns []string) []string {
	caser := cases.Title(language.English)
	out := make([]string, len(columns))
	for i, c := range columns {
		name := strings.TrimSpace(strings.ReplaceAll(c, "_", " "))
		if name == "" {
			name = "?column?"
		}
		out[i] = cellReplacer.Replace(caser.String(name))
	}
	return out
}

func cellRows(res *QueryResult, limit int) [][]string {
	n := min(len(res.Rows), limit)
	rows := make([][]string, n)
	for i := range n {
		row := make([]string, len(res.Columns))
		for j := range row {
			if j < len(res.Rows[i]) {
				row[j] = cellReplacer.Replace(database.CellText(res.Rows[i][j]))
			}
		}
		rows[i] = row
	}
	return rows
}
