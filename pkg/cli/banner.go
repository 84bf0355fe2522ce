package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the banner colors.
type Theme struct {
	Info    lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Title   lipgloss.Color
	Dim     lipgloss.Color
}

// DefaultTheme is the default color scheme.
var DefaultTheme = Theme{
	Info:    lipgloss.Color("#58a6ff"),
	Success: lipgloss.Color("#00ff9f"),
	Warning: lipgloss.Color("#d29922"),
	Error:   lipgloss.Color("#f85149"),
	Title:   lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Info    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Title   lipgloss.Style
	Header  lipgloss.Style
	Dim     lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Info:    lipgloss.NewStyle().Foreground(t.Info),
		Success: lipgloss.NewStyle().Foreground(t.Success),
		Warning: lipgloss.NewStyle().Foreground(t.Warning),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(t.Title).Padding(0, 1),
		Header:  lipgloss.NewStyle().Bold(true).Underline(true),
		Dim:     lipgloss.NewStyle().Foreground(t.Dim),
	}
}

var styles = NewStyles(DefaultTheme)

// Banner renders a one-line status message of the given kind
// ("info", "success", "warning" or "error").
func Banner(kind, msg string) string {
	switch kind {
	case "success":
		return styles.Success.Render("✓ " + msg)
	case "warning":
		return styles.Warning.Render("⚠ " + msg)
	case "error":
		return styles.Error.Render("Error: " + msg)
	default:
		return styles.Info.Render("ℹ " + msg)
	}
}

// Title renders a page title.
func Title(s string) string {
	return styles.Title.Render(s)
}

// Header renders a section header.
func Header(s string) string {
	return styles.Header.Render(s)
}

// Dim renders secondary text.
func Dim(s string) string {
	return styles.Dim.Render(s)
}

// Print helpers for terminal output

// PrintSuccess prints a success message with checkmark
func PrintSuccess(format string, args ...any) {
	fmt.Fprintln(os.Stdout, Banner("success", fmt.Sprintf(format, args...)))
}

// PrintError prints an error message to stderr
func PrintError(format string, args ...any) {
	fmt.Fprintln(os.Stderr, Banner("error", fmt.Sprintf(format, args...)))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...any) {
	fmt.Fprintln(os.Stdout, Banner("info", fmt.Sprintf(format, args...)))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...any) {
	fmt.Fprintln(os.Stdout, Banner("warning", fmt.Sprintf(format, args...)))
}

// PrintHeader prints a section header followed by a blank line.
func PrintHeader(w io.Writer, s string) {
	fmt.Fprintf(w, "\n%s\n", Header(s))
}
