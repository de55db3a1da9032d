package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderInfo contains information to display in the header.
type HeaderInfo struct {
	Version string // e.g. "v0.1.0"
	Tagline string // optional
}

// HeaderWidth is the default width of the header divider
const HeaderWidth = 40

// RenderHeader renders the branded "rcpu <version>" block.
func RenderHeader(info HeaderInfo) string {
	title := lipgloss.NewStyle().Foreground(ColorInfo).Bold(true)
	divider := lipgloss.NewStyle().Foreground(ColorMuted)

	var b strings.Builder
	b.WriteString(title.Render("rcpu"))
	b.WriteString(" ")
	b.WriteString(info.Version)
	b.WriteString("\n")
	if info.Tagline != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(ColorSecondary).Render(info.Tagline))
		b.WriteString("\n")
	}
	b.WriteString(divider.Render(strings.Repeat("━", HeaderWidth)))
	b.WriteString("\n")
	return b.String()
}
