package typewriter

import "sync"

// ContainerClass is the class name given to every element a Typewriter owns.
const ContainerClass = "typewriter-container"

// Container is a host that accepts the element a Typewriter writes into.
type Container interface {
	AppendChild(child *Element)
}

// Element is a text-bearing surface. Content is counted in runes.
type Element struct {
	mu        sync.RWMutex
	class     string
	text      []rune
	observers []func(text string)
}

// NewElement returns an empty element with the given class name.
func NewElement(class string) *Element {
	return &Element{class: class}
}

// Class returns the element class name.
func (e *Element) Class() string {
	return e.class
}

// Text returns the current content.
func (e *Element) Text() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return string(e.text)
}

// Len returns the content length in runes.
func (e *Element) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.text)
}

// Append adds s to the end of the content.
func (e *Element) Append(s string) {
	e.mutate(func(text []rune) []rune {
		return append(text, []rune(s)...)
	})
}

// TrimLast removes the last rune. It is a no-op on empty content.
func (e *Element) TrimLast() {
	e.mutate(func(text []rune) []rune {
		if len(text) == 0 {
			return text
		}
		return text[:len(text)-1]
	})
}

// SetText replaces the content.
func (e *Element) SetText(s string) {
	e.mutate(func([]rune) []rune {
		return []rune(s)
	})
}

// Observe registers fn to be called with the new content after every change.
func (e *Element) Observe(fn func(text string)) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	e.observers = append(e.observers, fn)
	e.mu.Unlock()
}

func (e *Element) mutate(fn func([]rune) []rune) {
	e.mu.Lock()
	e.text = fn(e.text)
	text := string(e.text)
	observers := make([]func(string), len(e.observers))
	copy(observers, e.observers)
	e.mu.Unlock()

	// Observers run outside the lock so they may read the element.
	for _, observe := range observers {
		observe(text)
	}
}
