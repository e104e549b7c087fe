package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStackOrder(t *testing.T) {
	st := New[string](4)
	assert.True(t, st.IsEmpty())

	st.Push("a")
	st.PushReversed("b", "c", "d")
	assert.Equal(t, 4, st.Len())
	assert.Equal(t, "b", st.Peek())

	var got []string
	for !st.IsEmpty() {
		got = append(got, st.Pop())
	}
	assert.Equal(t, []string{"b", "c", "d", "a"}, got)
}

func TestStackEmptyPanics(t *testing.T) {
	var st Stack[int]
	assert.PanicsWithValue(t, ErrEmpty, func() { st.Pop() })
	assert.PanicsWithValue(t, ErrEmpty, func() { st.Peek() })
}
