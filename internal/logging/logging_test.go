package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    zerolog.Level
		wantErr bool
	}{
		{"empty defaults to info", "", zerolog.InfoLevel, false},
		{"debug", "debug", zerolog.DebugLevel, false},
		{"warning alias", "WARNING", zerolog.WarnLevel, false},
		{"invalid", "loud", zerolog.NoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestComponentJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Config{Level: "debug", Format: "json", Output: &buf}))
	t.Cleanup(func() {
		_ = Init(Config{Level: "info"})
	})

	logger := Component("typewriter")
	logger.Debug().Int("queued", 3).Msg("draining")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "typewriter", entry["component"])
	require.Equal(t, "draining", entry["message"])
	require.EqualValues(t, 3, entry["queued"])
}

func TestInitRejectsUnknownFormat(t *testing.T) {
	require.Error(t, Init(Config{Format: "xml"}))
}
