package cli

import (
	"fmt"
	"io"
	"os"
	"time"
)

// setupStep reports one piece of work done before playback starts, such as
// opening the history database, as a single stderr line:
//
//	history: ok 12ms
//	history: failed open database: ...
type setupStep struct {
	out     io.Writer
	label   string
	started time.Time
}

// beginStep returns nil when setup notes are silenced; a nil step ignores
// finish.
func beginStep(out io.Writer, label string) *setupStep {
	if !setupNotesEnabled() {
		return nil
	}
	fmt.Fprintf(out, "%s: ", label)
	return &setupStep{out: out, label: label, started: time.Now()}
}

func (s *setupStep) finish(err error) {
	if s == nil {
		return
	}
	if err != nil {
		fmt.Fprintf(s.out, "failed %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "ok %s\n", formatDuration(time.Since(s.started)))
}

// Machine-readable output and the --no-progress flag both silence setup
// notes, as does either environment variable.
func setupNotesEnabled() bool {
	if noProgress || IsJSONOutput() || IsJSONLOutput() {
		return false
	}
	for _, name := range []string{"TYPEWRITER_NO_PROGRESS", "NO_PROGRESS"} {
		if _, ok := os.LookupEnv(name); ok {
			return false
		}
	}
	return true
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.String()
	case d < time.Second:
		return d.Round(10 * time.Millisecond).String()
	default:
		return d.Round(100 * time.Millisecond).String()
	}
}
