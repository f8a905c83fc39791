package ui

import (
	"github.com/charmbracelet/glamour"
	glamourstyles "github.com/charmbracelet/glamour/styles"
)

// RenderMarkdown renders md for the terminal. Outside a terminal, or when
// rendering fails, the raw text is returned.
func RenderMarkdown(md string) string {
	if FromEnv() || !IsTerminal() {
		return md
	}
	s := glamourstyles.DarkStyleConfig
	s.H2.Prefix = ""
	s.H3.Prefix = ""
	s.H4.Prefix = ""
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(s),
		glamour.WithWordWrap(Width(80)),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
