package pipeline

import (
	"fmt"
	"strings"
)

// TableStyle is the fixed rule set applied to every table block.
type TableStyle struct {
	HeaderBackground string
	HeaderText       string
	HeaderBold       bool
	HeaderPadding    float64 // bottom padding of header cells, points
	Align            string  // text-align for every cell
	GridWidth        float64 // points; 0 disables grid lines
	GridColor        string
	BodyBackground   string // odd body rows
	StripeBackground string // even body rows
}

// DefaultTableStyle returns the report table style: grey header with
// whitesmoke bold text, centered cells, full black grid and beige body rows.
func DefaultTableStyle() TableStyle {
	return TableStyle{
		HeaderBackground: "#808080",
		HeaderText:       "#f5f5f5",
		HeaderBold:       true,
		HeaderPadding:    8,
		Align:            "center",
		GridWidth:        1,
		GridColor:        "#000000",
		BodyBackground:   "#f5f5dc",
		StripeBackground: "#fbfbef",
	}
}

// CSS renders the style as rules scoped to table.report-table.
func (s TableStyle) CSS() string {
	var b strings.Builder

	grid := "none"
	if s.GridWidth > 0 {
		grid = fmt.Sprintf("%.1fpt solid %s", s.GridWidth, s.GridColor)
	}
	weight := "normal"
	if s.HeaderBold {
		weight = "bold"
	}

	fmt.Fprintf(&b, "table.report-table { border-collapse: collapse; margin: 0 auto; page-break-inside: auto; }\n")
	fmt.Fprintf(&b, "table.report-table tr { page-break-inside: avoid; }\n")
	fmt.Fprintf(&b, "table.report-table th, table.report-table td { border: %s; text-align: %s; padding: 3pt 6pt; }\n", grid, s.Align)
	fmt.Fprintf(&b, "table.report-table thead th { background: %s; color: %s; font-weight: %s; padding-bottom: %.1fpt; }\n",
		s.HeaderBackground, s.HeaderText, weight, s.HeaderPadding)
	fmt.Fprintf(&b, "table.report-table tbody tr:nth-child(odd) td { background: %s; }\n", s.BodyBackground)
	fmt.Fprintf(&b, "table.report-table tbody tr:nth-child(even) td { background: %s; }\n", s.StripeBackground)
	fmt.Fprintf(&b, "table.report-table thead { display: table-header-group; }\n")

	return b.String()
}
