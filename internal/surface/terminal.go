package surface

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/GustavoCosta/typewriter/internal/typewriter"
	"github.com/charmbracelet/lipgloss"
)

const (
	ansiClearDown = "\x1b[J"
	ansiUpFormat  = "\x1b[%dA"
)

// DefaultCursor is drawn after the text by Terminal and Screen.
const DefaultCursor = "▌"

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithCursor sets the cursor drawn after the text. Empty disables it.
func WithCursor(cursor string) TerminalOption {
	return func(t *Terminal) {
		t.cursor = cursor
	}
}

// WithStyle renders the text through a lipgloss style.
func WithStyle(style lipgloss.Style) TerminalOption {
	return func(t *Terminal) {
		t.style = &style
	}
}

// WithWidthFunc reports the terminal width in columns so soft-wrapped rows
// are rewound too. It is called on every redraw; a result of zero or less
// means unknown and only explicit newlines are counted.
func WithWidthFunc(width func() int) TerminalOption {
	return func(t *Terminal) {
		t.width = width
	}
}

// Terminal redraws a mounted element in place on a line-oriented writer.
type Terminal struct {
	mu     sync.Mutex
	out    io.Writer
	cursor string
	style  *lipgloss.Style
	width  func() int
	lines  int
	err    error
}

// NewTerminal returns a Terminal writing to out.
func NewTerminal(out io.Writer, opts ...TerminalOption) *Terminal {
	t := &Terminal{
		out:    out,
		cursor: DefaultCursor,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AppendChild mounts child and redraws on every change.
func (t *Terminal) AppendChild(child *typewriter.Element) {
	if child == nil {
		return
	}
	child.Observe(t.render)
}

// Err returns the first write error, if any.
func (t *Terminal) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Finish moves past the rendered block so later output starts on a new line.
func (t *Terminal) Finish() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lines == 0 {
		return t.err
	}
	t.lines = 0
	if _, err := io.WriteString(t.out, "\n"); err != nil && t.err == nil {
		t.err = err
	}
	return t.err
}

func (t *Terminal) render(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}

	frame := text
	if t.style != nil {
		frame = t.style.Render(frame)
	}
	frame += t.cursor

	var out strings.Builder
	if t.lines > 1 {
		fmt.Fprintf(&out, ansiUpFormat, t.lines-1)
	}
	out.WriteString("\r")
	out.WriteString(ansiClearDown)
	out.WriteString(frame)

	if _, err := io.WriteString(t.out, out.String()); err != nil {
		t.err = fmt.Errorf("write frame: %w", err)
		return
	}
	t.lines = t.rows(frame)
}

// rows counts the screen rows frame occupies, including soft wraps.
func (t *Terminal) rows(frame string) int {
	cols := 0
	if t.width != nil {
		cols = t.width()
	}

	rows := 0
	for _, line := range strings.Split(frame, "\n") {
		width := lipgloss.Width(line)
		if cols <= 0 || width <= cols {
			rows++
			continue
		}
		rows += (width + cols - 1) / cols
	}
	return rows
}
