package styles

import "github.com/charmbracelet/lipgloss"

// Styles contains lipgloss styles derived from theme tokens.
type Styles struct {
	Theme         Theme
	Title         lipgloss.Style
	Text          lipgloss.Style
	Muted         lipgloss.Style
	Accent        lipgloss.Style
	Panel         lipgloss.Style
	Cursor        lipgloss.Style
	Error         lipgloss.Style
	StatusTyping  lipgloss.Style
	StatusPaused  lipgloss.Style
	StatusDone    lipgloss.Style
	StatusError   lipgloss.Style
	StatusStopped lipgloss.Style
}

// DefaultStyles builds styles from the default theme.
func DefaultStyles() Styles {
	return BuildStyles(DefaultTheme)
}

// BuildStyles converts theme tokens into lipgloss styles.
func BuildStyles(theme Theme) Styles {
	tokens := theme.Tokens

	return Styles{
		Theme:  theme,
		Title:  lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Text)).Bold(true),
		Text:   lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Text)),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.TextMuted)),
		Accent: lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Accent)),
		Panel: lipgloss.NewStyle().
			Foreground(lipgloss.Color(tokens.Text)).
			Background(lipgloss.Color(tokens.Panel)).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(tokens.Border)).
			Padding(0, 1),
		Cursor:        lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Cursor)).Bold(true),
		Error:         lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Error)),
		StatusTyping:  lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Success)),
		StatusPaused:  lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Warning)),
		StatusDone:    lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Info)),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Error)),
		StatusStopped: lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.TextMuted)),
	}
}
