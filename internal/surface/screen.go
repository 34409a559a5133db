package surface

import (
	"sync"

	"github.com/GustavoCosta/typewriter/internal/typewriter"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Screen draws a mounted element onto a tcell screen starting at an origin.
type Screen struct {
	mu     sync.Mutex
	screen tcell.Screen
	x, y   int
	style  tcell.Style
	cursor rune
}

// NewScreen returns a Screen that draws at column x, row y.
func NewScreen(screen tcell.Screen, x, y int) *Screen {
	return &Screen{
		screen: screen,
		x:      x,
		y:      y,
		style:  tcell.StyleDefault,
		cursor: []rune(DefaultCursor)[0],
	}
}

// SetStyle changes the style used for text.
func (s *Screen) SetStyle(style tcell.Style) {
	s.mu.Lock()
	s.style = style
	s.mu.Unlock()
}

// AppendChild mounts child and redraws on every change.
func (s *Screen) AppendChild(child *typewriter.Element) {
	if child == nil {
		return
	}
	child.Observe(s.draw)
}

func (s *Screen) draw(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	width, height := s.screen.Size()
	s.screen.Clear()

	col, row := s.x, s.y
	for _, r := range text {
		if r == '\n' {
			col, row = s.x, row+1
			continue
		}
		w := runewidth.RuneWidth(r)
		if w == 0 {
			w = 1
		}
		if width > 0 && col+w > width {
			col, row = s.x, row+1
		}
		if height > 0 && row >= height {
			break
		}
		s.screen.SetContent(col, row, r, nil, s.style)
		col += w
	}

	if height <= 0 || row < height {
		s.screen.SetContent(col, row, s.cursor, nil, s.style.Reverse(true))
	}
	s.screen.Show()
}
