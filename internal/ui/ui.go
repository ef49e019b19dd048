package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BannerInfo describes a service at startup.
type BannerInfo struct {
	Service string
	Addr    string
	Storage string
	Extra   [][2]string // additional label/value rows, rendered in order
}

// Banner renders the boxed startup banner printed by `serve`.
func (p *Palette) Banner(info BannerInfo) string {
	rows := [][2]string{
		{"listening", "http://" + info.Addr},
		{"storage", info.Storage},
	}
	rows = append(rows, info.Extra...)

	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, p.ok.Render(info.Service))
	for _, r := range rows {
		label := p.help.Render(fmt.Sprintf("%-*s", width, r[0]))
		lines = append(lines, label+"  "+r[1])
	}

	return p.box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Status renders a single "label: value" line, coloring the value by ok.
func (p *Palette) Status(label, value string, ok bool) string {
	style := p.ok
	if !ok {
		style = p.err
	}
	return fmt.Sprintf("%s %s", p.help.Render(label+":"), style.Render(value))
}

// Table renders label/value rows aligned on the label column.
func (p *Palette) Table(rows [][2]string) string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(p.help.Render(fmt.Sprintf("%-*s", width, r[0])))
		b.WriteString("  ")
		b.WriteString(r[1])
		b.WriteString("\n")
	}
	return b.String()
}
