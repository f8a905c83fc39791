package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Theme holds the styles used for console output.
type Theme struct {
	Step    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Header  lipgloss.Style
	Muted   lipgloss.Style
	Added   lipgloss.Style
	Removed lipgloss.Style
}

// DefaultTheme returns the default color theme
func DefaultTheme() Theme {
	return Theme{
		Step:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Header:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Added:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Removed: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

// PlainTheme renders everything unstyled.
func PlainTheme() Theme {
	s := lipgloss.NewStyle()
	return Theme{Step: s, Success: s, Warning: s, Error: s, Header: s, Muted: s, Added: s, Removed: s}
}

var theme = initialTheme()

func initialTheme() Theme {
	if FromEnv() || !IsTerminal() {
		return PlainTheme()
	}
	return DefaultTheme()
}

// SetTheme replaces the active theme.
func SetTheme(t Theme) { theme = t }

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Width returns the terminal width, or fallback when it cannot be determined.
func Width(fallback int) int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallback
}

func Step(text string) string    { return theme.Step.Render("» " + text) }
func Success(text string) string { return theme.Success.Render("✓ " + text) }
func Warn(text string) string    { return theme.Warning.Render("! " + text) }
func Error(text string) string   { return theme.Error.Render("✗ " + text) }
func Header(text string) string  { return theme.Header.Render(text) }
func Muted(text string) string   { return theme.Muted.Render(text) }

// ColorizeDiff colors added and removed lines of a unified diff.
func ColorizeDiff(diff string) string {
	lines := strings.Split(diff, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			lines[i] = theme.Header.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = theme.Added.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = theme.Removed.Render(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = theme.Muted.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
