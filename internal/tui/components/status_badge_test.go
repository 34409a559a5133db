package components

import (
	"strings"
	"testing"

	"github.com/GustavoCosta/typewriter/internal/tui/styles"
)

func TestRenderStatusBadge(t *testing.T) {
	styleSet := styles.DefaultStyles()

	tests := []struct {
		status Status
		want   string
	}{
		{StatusTyping, "> Typing"},
		{StatusPaused, "|| Paused"},
		{StatusDone, "OK Done"},
		{StatusError, "ERR Error"},
		{StatusStopped, "- Stopped"},
		{Status("warming_up"), "- Warming up"},
		{Status(""), "- Unknown"},
	}

	for _, tt := range tests {
		got := RenderStatusBadge(styleSet, tt.status)
		if !strings.Contains(got, tt.want) {
			t.Fatalf("status %q: expected %q in %q", tt.status, tt.want, got)
		}
	}
}
