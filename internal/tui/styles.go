package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette. Every color adapts to light and dark terminals.
var (
	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7B78FF"}
	ColorAccent    = lipgloss.AdaptiveColor{Light: "#10B981", Dark: "#34D399"}
	ColorSuccess   = lipgloss.AdaptiveColor{Light: "#16A34A", Dark: "#4ADE80"}
	ColorWarning   = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}
	ColorError     = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}
	ColorMuted     = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	ColorSubtle    = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"}
	ColorHighlight = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#1F2937"}
	ColorText      = lipgloss.AdaptiveColor{Light: "#111827", Dark: "#F9FAFB"}
)

// Theme holds the lipgloss styles for the dashboard. Widths are applied at
// render time.
type Theme struct {
	TitleBar lipgloss.Style

	PhaseHeader   lipgloss.Style
	PhaseLocked   lipgloss.Style
	OrderBadge    lipgloss.Style
	CompletedMark lipgloss.Style

	Task         lipgloss.Style
	TaskChecked  lipgloss.Style
	TaskDisabled lipgloss.Style
	Cursor       lipgloss.Style

	Banner    lipgloss.Style
	Status    lipgloss.Style
	ErrorText lipgloss.Style
}

// DefaultTheme returns the dashboard theme.
func DefaultTheme() Theme {
	return Theme{
		TitleBar: lipgloss.NewStyle().
			Bold(true).
			Background(ColorPrimary).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 1),

		PhaseHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginTop(1),

		PhaseLocked: lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginTop(1),

		OrderBadge: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(ColorAccent).
			Padding(0, 1),

		CompletedMark: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSuccess),

		Task: lipgloss.NewStyle().
			Foreground(ColorText),

		TaskChecked: lipgloss.NewStyle().
			Foreground(ColorSuccess),

		TaskDisabled: lipgloss.NewStyle().
			Foreground(ColorSubtle),

		Cursor: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent).
			Background(ColorHighlight),

		Banner: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorSuccess).
			Foreground(ColorSuccess).
			Padding(0, 1).
			MarginTop(1),

		Status: lipgloss.NewStyle().
			Foreground(ColorMuted),

		ErrorText: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError),
	}
}

// Checkbox renders the box for a task line.
func (t Theme) Checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}
