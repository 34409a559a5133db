// Package surface provides containers that render typewriter elements.
package surface

import (
	"strings"
	"sync"

	"github.com/GustavoCosta/typewriter/internal/typewriter"
)

// Buffer is an in-memory container that keeps every frame it was shown.
type Buffer struct {
	mu       sync.Mutex
	children []*typewriter.Element
	frames   []string
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// AppendChild mounts child and records its frames.
func (b *Buffer) AppendChild(child *typewriter.Element) {
	if child == nil {
		return
	}
	b.mu.Lock()
	b.children = append(b.children, child)
	b.mu.Unlock()

	child.Observe(func(text string) {
		b.mu.Lock()
		b.frames = append(b.frames, text)
		b.mu.Unlock()
	})
}

// Frames returns the recorded frames in order.
func (b *Buffer) Frames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.frames))
	copy(out, b.frames)
	return out
}

// Text returns the concatenated content of all mounted elements.
func (b *Buffer) Text() string {
	b.mu.Lock()
	children := make([]*typewriter.Element, len(b.children))
	copy(children, b.children)
	b.mu.Unlock()

	var out strings.Builder
	for _, child := range children {
		out.WriteString(child.Text())
	}
	return out.String()
}
