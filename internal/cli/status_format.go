package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/GustavoCosta/typewriter/internal/models"
)

var (
	statusOK   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	statusBusy = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	statusWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	statusErr  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func formatRunStatus(status models.RunStatus) string {
	label, style := statusLabelForRun(status)
	return style.Render(formatStatusLabel(label, string(status)))
}

func statusLabelForRun(status models.RunStatus) (string, lipgloss.Style) {
	switch status {
	case models.RunStatusCompleted:
		return "OK", statusOK
	case models.RunStatusRunning:
		return "BUSY", statusBusy
	case models.RunStatusFailed:
		return "ERR", statusErr
	default:
		return "WARN", statusWarn
	}
}

func formatStatusLabel(label, status string) string {
	normalized := strings.TrimSpace(status)
	if normalized != "" {
		normalized = strings.ReplaceAll(normalized, "_", " ")
	}
	if normalized == "" {
		return label
	}
	return fmt.Sprintf("%s %s", label, normalized)
}
