package dashboard

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/rcpu/internal/sampler"
	"github.com/rileyhilliard/rcpu/internal/ui"
)

// Styles colors the gauge lines.
type Styles struct {
	CPU    lipgloss.Style
	RAM    lipgloss.Style
	Disk   lipgloss.Style
	Footer lipgloss.Style
}

// NewStyles builds styles for output written to w. colorMode is one of the
// ui color modes; "auto" detects the profile from w and the environment.
func NewStyles(w io.Writer, colorMode string) Styles {
	r := lipgloss.NewRenderer(w)
	switch colorMode {
	case ui.ColorModeNever:
		r.SetColorProfile(termenv.Ascii)
	case ui.ColorModeAlways:
		r.SetColorProfile(termenv.ANSI)
	}
	return Styles{
		CPU:    r.NewStyle().Foreground(ui.ColorSuccess),
		RAM:    r.NewStyle().Foreground(ui.ColorSecondary),
		Disk:   r.NewStyle().Foreground(ui.ColorWarning),
		Footer: r.NewStyle().Foreground(ui.ColorMuted),
	}
}

// PlainStyles renders without any escape sequences.
func PlainStyles() Styles {
	return NewStyles(io.Discard, ui.ColorModeNever)
}

// For returns the style of a metric's gauge.
func (s Styles) For(kind sampler.Kind) lipgloss.Style {
	switch kind {
	case sampler.KindCPU:
		return s.CPU
	case sampler.KindRAM:
		return s.RAM
	case sampler.KindDisk:
		return s.Disk
	default:
		return s.Footer
	}
}
