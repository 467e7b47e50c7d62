package ir

import "strconv"

type (
	// Ref identifies a value across blocks.
	Ref struct {
		Block *BasicBlock
		Value Value
	}

	// Names hands out %0, %1, ... for one compilation unit.
	Names struct {
		next  int
		names map[Ref]string
	}
)

func NewNames() *Names {
	return &Names{
		names: make(map[Ref]string),
	}
}

func (n *Names) Next() string {
	s := "%" + strconv.Itoa(n.next)
	n.next++

	return s
}

// Name returns the name memoized for the value or allocates the next one.
func (n *Names) Name(b *BasicBlock, v Value) string {
	r := Ref{Block: b, Value: v}

	if s, ok := n.names[r]; ok {
		return s
	}

	if n.names == nil {
		n.names = make(map[Ref]string)
	}

	s := n.Next()
	n.names[r] = s

	return s
}

func (n *Names) Lookup(b *BasicBlock, v Value) (string, bool) {
	s, ok := n.names[Ref{Block: b, Value: v}]
	return s, ok
}

func (n *Names) Reset() {
	n.next = 0

	for k := range n.names {
		delete(n.names, k)
	}
}
