package view

import "github.com/charmbracelet/lipgloss"

// Theme holds every style the renderer uses.
type Theme struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Dim     lipgloss.Style
	Value   lipgloss.Style
	Keys    lipgloss.Style
	Playing lipgloss.Style
	Paused  lipgloss.Style
	Error   lipgloss.Style
	// Fade styles changed values from freshest (index 0) to oldest.
	Fade []lipgloss.Style
}

// DefaultTheme works on dark terminals.
func DefaultTheme() Theme {
	return Theme{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F5E0DC")),
		Header:  lipgloss.NewStyle().Foreground(lipgloss.Color("#CBA6F7")),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		Value:   lipgloss.NewStyle().Foreground(lipgloss.Color("#BAC2DE")),
		Keys:    lipgloss.NewStyle().Foreground(lipgloss.Color("#89B4FA")),
		Playing: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1")),
		Paused:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9E2AF")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		Fade: []lipgloss.Style{
			lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9E2AF")),
			lipgloss.NewStyle().Foreground(lipgloss.Color("#FAB387")),
			lipgloss.NewStyle().Foreground(lipgloss.Color("#EBA0AC")),
		},
	}
}

// valueStyle picks the style for a value that changed level frames ago.
func (t Theme) valueStyle(level int) lipgloss.Style {
	if level <= 0 || len(t.Fade) == 0 {
		return t.Value
	}
	// controlFadeFrames maps to 0, 1 maps to the last fade style.
	i := (controlFadeFrames - level) * len(t.Fade) / controlFadeFrames
	return t.Fade[min(i, len(t.Fade)-1)]
}
