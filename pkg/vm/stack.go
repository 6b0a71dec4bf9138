package vm

import (
	"container/list"
	"math/big"

	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// Element is a single entry on a Stack, wrapping the underlying Item inside
// a *list.Element so Push/Pop/Peek are O(1) and RemoveAt is O(n) in the
// distance from the top.
type Element struct {
	value stackitem.Item
	el    *list.Element
}

// NewElement wraps a Go value as a stack Element via stackitem.Make.
func NewElement(v interface{}) *Element {
	return &Element{value: stackitem.Make(v)}
}

// Item returns the wrapped stack item.
func (e *Element) Item() stackitem.Item { return e.value }

// Value returns the underlying Go value of the wrapped item.
func (e *Element) Value() interface{} { return e.value.Value() }

// BigInt returns the element's value as *big.Int, panicking if it isn't an
// Integer-convertible item.
func (e *Element) BigInt() *big.Int {
	v, ok := e.value.Value().(*big.Int)
	if !ok {
		panic("element is not an integer")
	}
	return v
}

// Bool returns the element's truthiness per NeoVM conversion rules.
func (e *Element) Bool() bool {
	b, err := e.value.TryBool()
	if err != nil {
		panic(err)
	}
	return b
}

// Bytes returns the element's byte representation.
func (e *Element) Bytes() []byte {
	b, err := e.value.Bytes()
	if err != nil {
		panic(err)
	}
	return b
}

// String returns the element's byte representation interpreted as a UTF-8
// string.
func (e *Element) String() string {
	return string(e.Bytes())
}

// Array returns the element's items, panicking if it isn't an Array or
// Struct.
func (e *Element) Array() []stackitem.Item {
	switch t := e.value.(type) {
	case *stackitem.Array:
		items, _ := t.Value().([]stackitem.Item)
		return items
	case *stackitem.Struct:
		items, _ := t.Value().([]stackitem.Item)
		return items
	default:
		panic("element is not an array")
	}
}

// Interop returns the element's wrapped InteropInterface item, panicking if
// it isn't one.
func (e *Element) Interop() *stackitem.Interop {
	t, ok := e.value.(*stackitem.Interop)
	if !ok {
		panic("element is not an interop")
	}
	return t
}

// Stack is a doubly-linked-list-backed LIFO stack of Elements, used for
// both the evaluation and invocation stacks.
type Stack struct {
	name string
	list *list.List
}

// NewStack creates a new, empty, named Stack.
func NewStack(n string) *Stack {
	return &Stack{name: n, list: list.New()}
}

// Len returns the number of elements on the stack.
func (s *Stack) Len() int { return s.list.Len() }

// Push adds an element to the top of the stack.
func (s *Stack) Push(e *Element) {
	e.el = s.list.PushBack(e)
}

// PushVal wraps v in an Element via stackitem.Make and pushes it.
func (s *Stack) PushVal(v interface{}) {
	s.Push(NewElement(v))
}

// PushItem pushes a stack item directly, without Make conversion.
func (s *Stack) PushItem(it stackitem.Item) {
	s.Push(&Element{value: it})
}

// Pop removes and returns the top element.
func (s *Stack) Pop() *Element {
	if s.list.Len() == 0 {
		panic("stack is empty")
	}
	e := s.list.Back()
	s.list.Remove(e)
	return e.Value.(*Element)
}

// Top is an alias of Peek(0).
func (s *Stack) Top() *Element { return s.Peek(0) }

// Back returns the bottom-most element without removing it.
func (s *Stack) Back() *Element {
	if s.list.Len() == 0 {
		return nil
	}
	return s.list.Front().Value.(*Element)
}

// Peek returns the n-th element from the top (0-indexed) without removing
// it, panicking if n is out of range.
func (s *Stack) Peek(n int) *Element {
	e := s.elemAt(n)
	if e == nil {
		panic("stack index out of range")
	}
	return e.Value.(*Element)
}

func (s *Stack) elemAt(n int) *list.Element {
	e := s.list.Back()
	for i := 0; i < n && e != nil; i++ {
		e = e.Prev()
	}
	return e
}

// RemoveAt removes and returns the n-th element from the top.
func (s *Stack) RemoveAt(n int) *Element {
	e := s.elemAt(n)
	if e == nil {
		panic("stack index out of range")
	}
	s.list.Remove(e)
	return e.Value.(*Element)
}

// InsertAt inserts e at depth n from the top (0 means push on top).
func (s *Stack) InsertAt(e *Element, n int) {
	if n == 0 {
		s.Push(e)
		return
	}
	at := s.elemAt(n - 1)
	if at == nil {
		panic("stack index out of range")
	}
	e.el = s.list.InsertAfter(e, at)
}

// Dup returns a shallow duplicate of the n-th element from the top, sharing
// the underlying item (for reference types) as the DUP-family opcodes need.
func (s *Stack) Dup(n int) *Element {
	e := s.Peek(n)
	return &Element{value: e.value}
}

// Iterate calls f for every element from top to bottom, stopping early if f
// returns false.
func (s *Stack) Iterate(f func(*Element) bool) {
	for e := s.list.Back(); e != nil; e = e.Prev() {
		if !f(e.Value.(*Element)) {
			return
		}
	}
}

// Clear empties the stack.
func (s *Stack) Clear() {
	s.list.Init()
}
