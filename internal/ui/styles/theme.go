// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the docchat TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App    lipgloss.Style
	Header lipgloss.Style

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar             lipgloss.Style
	SidebarTitle        lipgloss.Style
	SidebarItem         lipgloss.Style
	SidebarItemSelected lipgloss.Style
	SidebarSearch       lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserLabel    lipgloss.Style
	BotLabel     lipgloss.Style
	UserText     lipgloss.Style
	BotText      lipgloss.Style
	StreamCursor lipgloss.Style
	Notice       lipgloss.Style

	// ==========================================================================
	// INPUT AND STATUS STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	StatusBar      lipgloss.Style
	StatusError    lipgloss.Style
	StatusUpload   lipgloss.Style
	ShortcutKey    lipgloss.Style
	ShortcutDesc   lipgloss.Style

	// ==========================================================================
	// DOCUMENT PICKER STYLES
	// ==========================================================================

	PickerBox          lipgloss.Style
	PickerItem         lipgloss.Style
	PickerItemSelected lipgloss.Style
	ActiveDocBadge     lipgloss.Style
}

// Palette is the color set a theme is built from.
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Error     lipgloss.Color
	Success   lipgloss.Color
	Border    lipgloss.Color
	Highlight lipgloss.Color
}

func darkPalette() Palette {
	return Palette{
		Primary:   lipgloss.Color("#7D56F4"),
		Secondary: lipgloss.Color("#43BF6D"),
		Text:      lipgloss.Color("#FAFAFA"),
		Muted:     lipgloss.Color("#626262"),
		Error:     lipgloss.Color("#FF5F87"),
		Success:   lipgloss.Color("#43BF6D"),
		Border:    lipgloss.Color("#3C3C3C"),
		Highlight: lipgloss.Color("#2D2D2D"),
	}
}

func lightPalette() Palette {
	return Palette{
		Primary:   lipgloss.Color("#5B34C7"),
		Secondary: lipgloss.Color("#1F7A3F"),
		Text:      lipgloss.Color("#1A1A1A"),
		Muted:     lipgloss.Color("#8A8A8A"),
		Error:     lipgloss.Color("#D70057"),
		Success:   lipgloss.Color("#1F7A3F"),
		Border:    lipgloss.Color("#D0D0D0"),
		Highlight: lipgloss.Color("#EFEFEF"),
	}
}

// NewTheme creates a theme for the named variant ("dark" or "light"),
// detecting terminal capabilities.
func NewTheme(variant string) *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		IsDark:       variant != "light",
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	p := darkPalette()
	if !t.IsDark {
		p = lightPalette()
	}

	t.App = lipgloss.NewStyle()
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Primary).
		Padding(0, 1)

	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(p.Border).
		PaddingRight(1)
	t.SidebarTitle = lipgloss.NewStyle().Bold(true).Foreground(p.Muted)
	t.SidebarItem = lipgloss.NewStyle().Foreground(p.Text).Padding(0, 1)
	t.SidebarItemSelected = lipgloss.NewStyle().
		Foreground(p.Primary).
		Background(p.Highlight).
		Bold(true).
		Padding(0, 1)
	t.SidebarSearch = lipgloss.NewStyle().Foreground(p.Secondary)

	t.UserLabel = lipgloss.NewStyle().Bold(true).Foreground(p.Secondary)
	t.BotLabel = lipgloss.NewStyle().Bold(true).Foreground(p.Primary)
	t.UserText = lipgloss.NewStyle().Foreground(p.Text)
	t.BotText = lipgloss.NewStyle().Foreground(p.Text)
	t.StreamCursor = lipgloss.NewStyle().Foreground(p.Primary).Blink(true)
	t.Notice = lipgloss.NewStyle().Foreground(p.Error).Italic(true)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1)
	t.StatusBar = lipgloss.NewStyle().Foreground(p.Muted)
	t.StatusError = lipgloss.NewStyle().Foreground(p.Error)
	t.StatusUpload = lipgloss.NewStyle().Foreground(p.Secondary)
	t.ShortcutKey = lipgloss.NewStyle().Bold(true).Foreground(p.Primary)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(p.Muted)

	t.PickerBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(1, 2)
	t.PickerItem = lipgloss.NewStyle().Foreground(p.Text)
	t.PickerItemSelected = lipgloss.NewStyle().
		Foreground(p.Primary).
		Background(p.Highlight).
		Bold(true)
	t.ActiveDocBadge = lipgloss.NewStyle().
		Foreground(p.Success).
		Bold(true)
}

// SetSize updates the theme's layout dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}
