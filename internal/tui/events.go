package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/GustavoCosta/typewriter/internal/typewriter"
)

// TextChangedMsg carries the element text after a change.
type TextChangedMsg struct {
	Gen  int
	Text string
}

// RunFinishedMsg reports that a drain returned.
type RunFinishedMsg struct {
	Gen int
	Err error
}

// elementContainer mounts typewriter elements and hands their text to the
// program. Observers never block: only the newest pending text is kept, so a
// slow render skips frames instead of stalling the typewriter.
type elementContainer struct {
	mu      sync.Mutex
	gen     int
	pending *TextChangedMsg
	notify  chan struct{}
}

func newElementContainer() *elementContainer {
	return &elementContainer{notify: make(chan struct{}, 1)}
}

// AppendChild implements typewriter.Container.
func (c *elementContainer) AppendChild(child *typewriter.Element) {
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	child.Observe(func(text string) {
		c.publish(TextChangedMsg{Gen: gen, Text: text})
	})
}

// setGeneration tags elements mounted from now on.
func (c *elementContainer) setGeneration(gen int) {
	c.mu.Lock()
	c.gen = gen
	c.pending = nil
	c.mu.Unlock()
}

func (c *elementContainer) publish(msg TextChangedMsg) {
	c.mu.Lock()
	c.pending = &msg
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *elementContainer) take() (TextChangedMsg, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return TextChangedMsg{}, false
	}
	msg := *c.pending
	c.pending = nil
	return msg, true
}

// waitForText returns a command that blocks until the next text change.
// The model re-issues it after every TextChangedMsg.
func (c *elementContainer) waitForText() tea.Cmd {
	return func() tea.Msg {
		for range c.notify {
			if msg, ok := c.take(); ok {
				return msg
			}
		}
		return nil
	}
}
