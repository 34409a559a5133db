// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/GustavoCosta/typewriter/internal/tui/styles"
)

// Status is the playback state shown in the header.
type Status string

const (
	StatusTyping  Status = "typing"
	StatusPaused  Status = "paused"
	StatusDone    Status = "done"
	StatusError   Status = "error"
	StatusStopped Status = "stopped"
)

// RenderStatusBadge renders a playback status with icon and color.
func RenderStatusBadge(styleSet styles.Styles, status Status) string {
	icon, label, style := statusDescriptor(styleSet, status)
	return style.Render(fmt.Sprintf("%s %s", icon, label))
}

func statusDescriptor(styleSet styles.Styles, status Status) (string, string, lipgloss.Style) {
	switch status {
	case StatusTyping:
		return ">", "Typing", styleSet.StatusTyping
	case StatusPaused:
		return "||", "Paused", styleSet.StatusPaused
	case StatusDone:
		return "OK", "Done", styleSet.StatusDone
	case StatusError:
		return "ERR", "Error", styleSet.StatusError
	case StatusStopped:
		return "-", "Stopped", styleSet.StatusStopped
	default:
		return "-", normalizeStatusLabel(status), styleSet.Muted
	}
}

func normalizeStatusLabel(status Status) string {
	value := strings.TrimSpace(strings.ReplaceAll(string(status), "_", " "))
	if value == "" {
		return "Unknown"
	}
	return strings.ToUpper(value[:1]) + value[1:]
}
