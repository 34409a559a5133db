package typewriter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestElementMutations(t *testing.T) {
	el := NewElement(ContainerClass)

	var seen []string
	el.Observe(func(text string) {
		seen = append(seen, text)
	})

	el.Append("añ")
	el.Append("o")
	assert.Equal(t, "año", el.Text())
	assert.Equal(t, 3, el.Len())

	el.TrimLast()
	assert.Equal(t, "añ", el.Text())

	el.SetText("")
	el.TrimLast()
	assert.Equal(t, 0, el.Len())

	assert.Equal(t, []string{"añ", "año", "añ", "", ""}, seen)
}

func TestElementObserverCanReadElement(t *testing.T) {
	el := NewElement("")

	var lengths []int
	el.Observe(func(string) {
		lengths = append(lengths, el.Len())
	})
	el.Append("ab")
	el.TrimLast()

	assert.Equal(t, []int{2, 1}, lengths)
}

func TestElementIgnoresNilObserver(t *testing.T) {
	el := NewElement("")
	el.Observe(nil)
	el.Append("x")
	assert.Equal(t, "x", el.Text())
}
