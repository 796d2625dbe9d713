package dbcopilot

import (
	"regexp"
	"strings"

	"github.com/alnah/go-dbcopilot/internal/database"
)

// fencePattern matches a fenced code block and captures its body. The info
// string (sql, postgresql, ...) is dropped with the opening fence.
var fencePattern = regexp.MustCompile("(?s)```(?:[A-Za-z0-9_-]*[ \t]*\r?\n)?(.*?)```")

// CleanSQL extracts the SQL statement from a model reply. A fenced block
// wins over the surrounding prose; stray fences are removed; a leading
// "sql" language tag left without a fence is dropped.
func CleanSQL(reply string) string {
	s := reply
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)

	if len(s) > 3 && strings.EqualFold(s[:3], "sql") && (s[3] == '\n' || s[3] == '\r' || s[3] == ' ' || s[3] == '\t') {
		s = strings.TrimSpace(s[3:])
	}
	return s
}

// answerInput is the user message of the answer stage:
// "<question> : <rows>".
func answerInput(question string, rows [][]any) string {
	return question + " : " + database.FormatTuples(rows)
}
