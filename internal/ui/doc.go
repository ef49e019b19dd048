// Package ui holds the terminal styling used by the CLI.
//
// A [Palette] wraps a handful of [lipgloss] styles (title, ok, error, warning, help) and renders
// the startup banner, status lines, and aligned key/value tables the commands print.
// Output degrades to plain text when stdout is not a terminal, since lipgloss detects the color profile.
package ui
