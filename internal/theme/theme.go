// Package theme provides color themes and styling for the whirl HUD.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
	tint "github.com/lrstanley/bubbletint/v2"
)

var enabled bool

// Initialize sets up the theme registry with the given theme name. An empty
// name disables theming and falls back to standard terminal colors.
func Initialize(themeName string) {
	if themeName == "" {
		enabled = false
		return
	}
	enabled = true
	tint.NewDefaultRegistry()
	if ok := tint.SetTintID(themeName); !ok {
		tint.SetTintID("default")
	}
}

// Current returns the active tint, nil when theming is disabled.
func Current() *tint.Tint {
	if !enabled {
		return nil
	}
	return tint.Current()
}

func accent() color.Color {
	if t := Current(); t != nil {
		return t.Cyan
	}
	return lipgloss.Color("14")
}

func muted() color.Color {
	if t := Current(); t != nil {
		return t.BrightBlack
	}
	return lipgloss.Color("8")
}

func warn() color.Color {
	if t := Current(); t != nil {
		return t.Yellow
	}
	return lipgloss.Color("11")
}

// Title styles HUD headings.
func Title() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(accent())
}

// Selected styles the highlighted item.
func Selected() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Reverse(true)
}

// Dim styles de-emphasized items.
func Dim() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(muted())
}

// Notice styles transient notification lines.
func Notice() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(warn()).Italic(true)
}

// Badge styles the letter badges in edit mode.
func Badge(active bool) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	if active {
		return s.Reverse(true).Foreground(accent())
	}
	return s.Foreground(muted())
}

// PanelBorder styles a preview panel frame; front panels get the accent.
func PanelBorder(front bool) lipgloss.Style {
	s := lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	if front {
		return s.BorderForeground(accent())
	}
	return s.BorderForeground(muted())
}
