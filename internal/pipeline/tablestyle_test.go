package pipeline

import (
	"strings"
	"testing"
)

func TestDefaultTableStyle(t *testing.T) {
	t.Parallel()

	s := DefaultTableStyle()
	if s.HeaderBackground != "#808080" || s.HeaderText != "#f5f5f5" {
		t.Errorf("header colors = %s/%s", s.HeaderBackground, s.HeaderText)
	}
	if !s.HeaderBold || s.HeaderPadding != 8 {
		t.Errorf("header font = bold:%v padding:%v", s.HeaderBold, s.HeaderPadding)
	}
	if s.Align != "center" || s.GridWidth != 1 || s.GridColor != "#000000" {
		t.Errorf("grid = %s %v %s", s.Align, s.GridWidth, s.GridColor)
	}
	if s.BodyBackground != "#f5f5dc" {
		t.Errorf("body background = %s", s.BodyBackground)
	}
}

func TestTableStyle_CSS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		style   func() TableStyle
		want    []string
		wantNot []string
	}{
		{
			name:  "default style",
			style: DefaultTableStyle,
			want: []string{
				"border: 1.0pt solid #000000",
				"text-align: center",
				"background: #808080; color: #f5f5f5; font-weight: bold; padding-bottom: 8.0pt",
				"nth-child(odd) td { background: #f5f5dc; }",
			},
		},
		{
			name: "grid disabled",
			style: func() TableStyle {
				s := DefaultTableStyle()
				s.GridWidth = 0
				return s
			},
			want:    []string{"border: none"},
			wantNot: []string{"solid"},
		},
		{
			name: "regular header weight",
			style: func() TableStyle {
				s := DefaultTableStyle()
				s.HeaderBold = false
				s.Align = "left"
				return s
			},
			want:    []string{"font-weight: normal", "text-align: left"},
			wantNot: []string{"font-weight: bold"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			css := tt.style().CSS()
			for _, want := range tt.want {
				if !strings.Contains(css, want) {
					t.Errorf("CSS() missing %q\nGot:\n%s", want, css)
				}
			}
			for _, notWant := range tt.wantNot {
				if strings.Contains(css, notWant) {
					t.Errorf("CSS() should not contain %q", notWant)
				}
			}
		})
	}
}
