// Package tui implements the typewriter terminal user interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/GustavoCosta/typewriter/internal/logging"
	"github.com/GustavoCosta/typewriter/internal/tui/components"
	"github.com/GustavoCosta/typewriter/internal/tui/styles"
	"github.com/GustavoCosta/typewriter/internal/typewriter"
)

// Config describes what the TUI plays.
type Config struct {
	Title   string
	Theme   string
	Options typewriter.Options

	// Load enqueues the sequence onto a fresh typewriter. It is called again
	// on every restart.
	Load func(tw *typewriter.Typewriter) error
}

// Run launches the TUI program and blocks until the user quits.
func Run(cfg Config) error {
	m, err := newModel(cfg)
	if err != nil {
		return err
	}

	program := tea.NewProgram(m, tea.WithAltScreen())
	final, err := program.Run()

	if fm, ok := final.(model); ok {
		if fm.tw.Running() {
			_ = fm.tw.Stop()
		}
		fm.cancel()
		if err == nil && fm.status == components.StatusError {
			err = fm.err
		}
	}
	return err
}

type model struct {
	cfg       Config
	styles    styles.Styles
	container *elementContainer
	tw        *typewriter.Typewriter
	gen       int
	ctx       context.Context
	cancel    context.CancelFunc
	status    components.Status
	text      string
	err       error
	width     int
	height    int
}

const (
	minWidth  = 20
	minHeight = 6
	cursor    = "▌"
)

func newModel(cfg Config) (model, error) {
	if cfg.Load == nil {
		return model{}, errors.New("tui: Load is required")
	}
	theme, err := styles.ThemeByName(cfg.Theme)
	if err != nil {
		return model{}, err
	}
	if cfg.Title == "" {
		cfg.Title = "typewriter"
	}

	m := model{
		cfg:       cfg,
		styles:    styles.BuildStyles(theme),
		container: newElementContainer(),
		status:    components.StatusTyping,
	}
	if err := m.reset(); err != nil {
		return model{}, err
	}
	return m, nil
}

// reset replaces the typewriter with a freshly loaded one. Runs started for
// the previous generation are cancelled through its context.
func (m *model) reset() error {
	if m.cancel != nil {
		m.cancel()
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.gen++
	m.container.setGeneration(m.gen)
	m.text = ""
	m.err = nil
	m.tw = typewriter.New(m.container, m.cfg.Options)
	if err := m.cfg.Load(m.tw); err != nil {
		return fmt.Errorf("load sequence: %w", err)
	}
	return nil
}

func (m model) Init() tea.Cmd {
	return tea.Batch(startCmd(m.ctx, m.tw, m.gen), m.container.waitForText())
}

func startCmd(ctx context.Context, tw *typewriter.Typewriter, gen int) tea.Cmd {
	return func() tea.Msg {
		return RunFinishedMsg{Gen: gen, Err: tw.Start(ctx)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			if m.tw.Running() {
				_ = m.tw.Stop()
			}
			m.cancel()
			if m.status == components.StatusTyping || m.status == components.StatusPaused {
				m.status = components.StatusStopped
			}
			return m, tea.Quit
		case "p", " ":
			return m.togglePause()
		case "r":
			return m.restart()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case TextChangedMsg:
		if msg.Gen == m.gen {
			m.text = msg.Text
		}
		return m, m.container.waitForText()
	case RunFinishedMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		switch {
		case msg.Err == nil:
			m.status = components.StatusDone
			m.text = m.tw.Element().Text()
		case errors.Is(msg.Err, typewriter.ErrStopped), errors.Is(msg.Err, context.Canceled):
			// Paused or restarting; the key handler already set the status.
		default:
			m.status = components.StatusError
			m.err = msg.Err
			logger := logging.Component("tui")
			logger.Error().Err(msg.Err).Msg("typewriter run failed")
		}
	}
	return m, nil
}

func (m model) togglePause() (tea.Model, tea.Cmd) {
	switch m.status {
	case components.StatusTyping:
		if err := m.tw.Stop(); err == nil {
			m.status = components.StatusPaused
			m.text = m.tw.Element().Text()
		}
		return m, nil
	case components.StatusPaused:
		m.status = components.StatusTyping
		return m, startCmd(m.ctx, m.tw, m.gen)
	}
	return m, nil
}

func (m model) restart() (tea.Model, tea.Cmd) {
	if m.tw.Running() {
		_ = m.tw.Stop()
	}
	if err := m.reset(); err != nil {
		m.status = components.StatusError
		m.err = err
		return m, nil
	}
	m.status = components.StatusTyping
	return m, startCmd(m.ctx, m.tw, m.gen)
}

func (m model) View() string {
	if m.width > 0 && m.height > 0 {
		if m.width < minWidth || m.height < minHeight {
			return fmt.Sprintf("%s\n", strings.Join(m.smallViewLines(), "\n"))
		}
	}

	panel := m.styles.Panel
	if m.width > 0 {
		panel = panel.Width(m.width - 4)
	}

	body := m.styles.Text.Render(m.text)
	if m.status == components.StatusTyping || m.status == components.StatusPaused {
		body += m.styles.Cursor.Render(cursor)
	}

	lines := []string{
		lipgloss.JoinHorizontal(lipgloss.Top,
			m.styles.Title.Render(m.cfg.Title),
			"  ",
			components.RenderStatusBadge(m.styles, m.status),
		),
		"",
		panel.Render(body),
		"",
		m.styles.Muted.Render(m.statsLine()),
	}
	if m.err != nil {
		lines = append(lines, m.styles.Error.Render(m.err.Error()))
	}
	lines = append(lines, "", m.styles.Muted.Render("Shortcuts: q quit | p pause/resume | r restart"))

	return fmt.Sprintf("%s\n", strings.Join(lines, "\n"))
}

func (m model) smallViewLines() []string {
	message := fmt.Sprintf("Terminal too small (%dx%d).", m.width, m.height)
	hint := fmt.Sprintf("Resize to at least %dx%d.", minWidth, minHeight)

	return []string{
		m.styles.StatusPaused.Render(message),
		m.styles.Muted.Render(hint),
		m.styles.Muted.Render("Press q to quit."),
	}
}

func (m model) statsLine() string {
	stats := m.tw.Stats()
	loop := "off"
	if m.tw.Options().Loop {
		loop = "on"
	}
	return fmt.Sprintf("actions %d  queued %d  loop %s  speed %s",
		stats.Completed, m.tw.Len(), loop, m.tw.Options().TypeSpeed)
}
