package pipeline

import (
	"reflect"
	"testing"
)

func rowsOf(tables []Table) [][][]string {
	out := make([][][]string, len(tables))
	for i, t := range tables {
		out[i] = t.Rows
	}
	return out
}

func TestExtractTables(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		markdown string
		want     [][][]string
	}{
		{
			name:     "empty input",
			markdown: "",
			want:     [][][]string{},
		},
		{
			name:     "no pipe lines",
			markdown: "# Title\n\nJust a paragraph.\nAnother line.",
			want:     [][][]string{},
		},
		{
			name:     "single table without trailing blank line",
			markdown: "| Name | Score |\n|------|-------|\n| Alice | 90 |\n| Bob | 85 |",
			want: [][][]string{{
				{"Name", "Score"},
				{"Alice", "90"},
				{"Bob", "85"},
			}},
		},
		{
			name:     "single table with trailing blank line",
			markdown: "| Name | Score |\n|---|---|\n| Alice | 90 |\n",
			want: [][][]string{{
				{"Name", "Score"},
				{"Alice", "90"},
			}},
		},
		{
			name:     "two tables separated by a paragraph",
			markdown: "| a | b |\n|---|---|\n| 1 | 2 |\nSome text between.\n| c | d |\n|---|---|\n| 3 | 4 |",
			want: [][][]string{
				{{"a", "b"}, {"1", "2"}},
				{{"c", "d"}, {"3", "4"}},
			},
		},
		{
			name:     "cells are trimmed",
			markdown: "|   a   |\tb\t|",
			want:     [][][]string{{{"a", "b"}}},
		},
		{
			name:     "alignment separators are dropped",
			markdown: "| left | center | right |\n|:-----|:------:|------:|\n| 1 | 2 | 3 |",
			want: [][][]string{{
				{"left", "center", "right"},
				{"1", "2", "3"},
			}},
		},
		{
			name:     "row with a dash cell next to data is kept",
			markdown: "| a | --- |",
			want:     [][][]string{{{"a", "---"}}},
		},
		{
			name:     "inconsistent widths pass through",
			markdown: "| a | b | c |\n| 1 |\n| 2 | 3 |",
			want: [][][]string{{
				{"a", "b", "c"},
				{"1"},
				{"2", "3"},
			}},
		},
		{
			name:     "empty cells are kept",
			markdown: "| a |  | c |",
			want:     [][][]string{{{"a", "", "c"}}},
		},
		{
			name:     "CRLF line endings",
			markdown: "| a | b |\r\n|---|---|\r\n| 1 | 2 |\r\n",
			want:     [][][]string{{{"a", "b"}, {"1", "2"}}},
		},
		{
			name:     "separator-only group is not a table",
			markdown: "|---|---|\n\ntext",
			want:     [][][]string{},
		},
		{
			name:     "pipes inside a backtick fence are code",
			markdown: "```sql\nSELECT a || ' ' || b\n| not | a | table |\n```\n| a |\n| 1 |",
			want:     [][][]string{{{"a"}, {"1"}}},
		},
		{
			name:     "tilde fence closes only on a matching marker",
			markdown: "~~~~\n| x |\n```\n| y |\n~~~~\n| z |",
			want:     [][][]string{{{"z"}}},
		},
		{
			name:     "fence flushes a pending table",
			markdown: "| a |\n```\n| b |\n```",
			want:     [][][]string{{{"a"}}},
		},
		{
			name:     "unclosed fence runs to end of input",
			markdown: "```\n| a |",
			want:     [][][]string{},
		},
		{
			name:     "indented code is not a fence",
			markdown: "    ```\n| a |",
			want:     [][][]string{{{"a"}}},
		},
		{
			name:     "unicode cells",
			markdown: "| Ville | Température |\n|---|---|\n| Zürich | 12°C |",
			want: [][][]string{{
				{"Ville", "Température"},
				{"Zürich", "12°C"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := rowsOf(ExtractTables(tt.markdown))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTables() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractTables_LineRanges(t *testing.T) {
	t.Parallel()

	md := "intro\n| a | b |\n|---|---|\n| 1 | 2 |\n\nmiddle\n| c |\n| 3 |"
	tables := ExtractTables(md)
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tables))
	}

	if tables[0].StartLine != 1 || tables[0].EndLine != 3 {
		t.Errorf("first table lines = %d-%d, want 1-3", tables[0].StartLine, tables[0].EndLine)
	}
	if tables[1].StartLine != 6 || tables[1].EndLine != 7 {
		t.Errorf("second table lines = %d-%d, want 6-7", tables[1].StartLine, tables[1].EndLine)
	}
}

func TestExtractTables_Idempotent(t *testing.T) {
	t.Parallel()

	md := "| x | y |\n|---|---|\n| 1 | 2 |\n\n| z |\n| 3 |"
	first := ExtractTables(md)
	second := ExtractTables(md)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second run differs:\nfirst:  %v\nsecond: %v", first, second)
	}
}

func TestExtractTables_ResultsAreIndependent(t *testing.T) {
	t.Parallel()

	md := "| a |\n| b |"
	first := ExtractTables(md)
	first[0].Rows[0][0] = "mutated"

	second := ExtractTables(md)
	if second[0].Rows[0][0] != "a" {
		t.Errorf("mutation leaked into later call: got %q", second[0].Rows[0][0])
	}
}

func TestIsSeparatorRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		row  []string
		want bool
	}{
		{[]string{"---", "---"}, true},
		{[]string{"-"}, true},
		{[]string{":---", "---:", ":-:"}, true},
		{[]string{"---", "x"}, false},
		{[]string{"", "---"}, false},
		{[]string{"- -"}, false},
		{[]string{}, false},
	}

	for _, tt := range tests {
		if got := isSeparatorRow(tt.row); got != tt.want {
			t.Errorf("isSeparatorRow(%q) = %v, want %v", tt.row, got, tt.want)
		}
	}
}
