package stack

import "errors"

var ErrEmpty = errors.New("stack is empty")

// Stack is a LIFO used to drive depth-first traversals without recursion.
type Stack[T any] []T

func New[T any](capacity int) Stack[T] {
	return make(Stack[T], 0, capacity)
}

func (st Stack[T]) IsEmpty() bool {
	return len(st) <= 0
}

func (st Stack[T]) Len() int {
	return len(st)
}

func (st Stack[T]) Peek() T {
	if st.IsEmpty() {
		panic(ErrEmpty)
	}
	return st[len(st)-1]
}

func (st *Stack[T]) Push(item T) {
	*st = append(*st, item)
}

// PushReversed pushes items so that items[0] is popped first.
func (st *Stack[T]) PushReversed(items ...T) {
	for i := len(items) - 1; i >= 0; i-- {
		*st = append(*st, items[i])
	}
}

func (st *Stack[T]) Pop() T {
	if st.IsEmpty() {
		panic(ErrEmpty)
	}
	n := len(*st) - 1
	item := (*st)[n]
	var zero T
	(*st)[n] = zero
	*st = (*st)[:n]
	return item
}
