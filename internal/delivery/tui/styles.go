package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the shell
type Styles struct {
	Title     lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Panel     lipgloss.Style
	Summary   lipgloss.Style
	Error     lipgloss.Style
	Notice    lipgloss.Style
	Muted     lipgloss.Style
	Selected  lipgloss.Style
	Spinner   lipgloss.Style
	Prompt    lipgloss.Style
	Focused   lipgloss.Style
	Unfocused lipgloss.Style
}

// DefaultStyles returns the standard color scheme
func DefaultStyles() Styles {
	green := lipgloss.AdaptiveColor{Light: "#1B7F3B", Dark: "#5FD787"}
	red := lipgloss.AdaptiveColor{Light: "#B00020", Dark: "#FF6B6B"}
	muted := lipgloss.AdaptiveColor{Light: "#6C6C6C", Dark: "#8A8A8A"}

	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(green).MarginBottom(1),
		Label:     lipgloss.NewStyle().Bold(true).Width(12),
		Value:     lipgloss.NewStyle(),
		Panel:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1),
		Summary:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(green).Padding(0, 1),
		Error:     lipgloss.NewStyle().Foreground(red),
		Notice:    lipgloss.NewStyle().Foreground(red).Italic(true),
		Muted:     lipgloss.NewStyle().Foreground(muted),
		Selected:  lipgloss.NewStyle().Bold(true).Foreground(green),
		Spinner:   lipgloss.NewStyle().Foreground(green),
		Prompt:    lipgloss.NewStyle().Foreground(green),
		Focused:   lipgloss.NewStyle().Foreground(green),
		Unfocused: lipgloss.NewStyle().Foreground(muted),
	}
}
