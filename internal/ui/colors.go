package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors for status indication. ANSI codes keep output readable on
// any terminal palette.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// Color modes accepted by output.color and --no-color.
const (
	ColorModeAuto   = "auto"
	ColorModeAlways = "always"
	ColorModeNever  = "never"
)

// ValidColorMode reports whether mode is a recognized color mode.
func ValidColorMode(mode string) bool {
	switch mode {
	case ColorModeAuto, ColorModeAlways, ColorModeNever:
		return true
	}
	return false
}

// ApplyColorMode sets the default renderer's color profile. Auto leaves
// terminal detection in place.
func ApplyColorMode(mode string) {
	switch mode {
	case ColorModeNever:
		lipgloss.SetColorProfile(termenv.Ascii)
	case ColorModeAlways:
		lipgloss.SetColorProfile(termenv.ANSI)
	}
}

// DisableColors switches the default renderer to monochrome output.
func DisableColors() {
	ApplyColorMode(ColorModeNever)
}

func SuccessStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorSuccess) }
func ErrorStyle() lipgloss.Style   { return lipgloss.NewStyle().Foreground(ColorError) }
func WarningStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorWarning) }
func InfoStyle() lipgloss.Style    { return lipgloss.NewStyle().Foreground(ColorInfo) }
func MutedStyle() lipgloss.Style   { return lipgloss.NewStyle().Foreground(ColorMuted) }
