package util

// Stack is a LIFO of screens or any other value. The zero value is ready to use.
type Stack[T any] struct {
	items []T
}

func (s *Stack[T]) Push(item T) {
	s.items = append(s.items, item)
}

// Pop removes the top item. An empty stack yields the zero value.
func (s *Stack[T]) Pop() (item T) {
	n := len(s.items)
	if n == 0 {
		return
	}
	item, s.items = s.items[n-1], s.items[:n-1]
	return
}

func (s *Stack[T]) Len() int {
	return len(s.items)
}
