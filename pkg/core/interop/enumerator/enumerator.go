// Package enumerator implements System.Enumerator.*, which turns any
// NeoVM compound value (a byte string, an Array, a Struct, a Map) into a
// single-pass cursor a contract can walk without pulling the whole thing
// onto the stack at once.
package enumerator

import (
	"errors"

	"github.com/n3ledger/core/pkg/core/interop"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

var errNotEnumerator = errors.New("item is not an enumerator")

// enumerator is the cursor interface Next/Value dispatch through, wrapped
// inside a stackitem.Interop item so it can live on the evaluation stack.
type enumerator interface {
	Next() bool
	Value() stackitem.Item
}

type sliceEnumerator struct {
	index int
	items []stackitem.Item
}

func (e *sliceEnumerator) Next() bool {
	if e.index < len(e.items)-1 {
		e.index++
		return true
	}
	return false
}

func (e *sliceEnumerator) Value() stackitem.Item {
	return e.items[e.index]
}

// Create implements System.Enumerator.Create: pop a compound value and push
// a cursor over its elements.
func Create(ic *interop.Context) error {
	item := ic.VM.Estack().Pop().Item()
	items, err := itemsOf(item)
	if err != nil {
		return err
	}
	ic.VM.Estack().PushItem(stackitem.NewInterop(&sliceEnumerator{index: -1, items: items}))
	return nil
}

func itemsOf(item stackitem.Item) ([]stackitem.Item, error) {
	switch t := item.(type) {
	case *stackitem.Array:
		return t.Value().([]stackitem.Item), nil
	case *stackitem.Struct:
		return t.Value().([]stackitem.Item), nil
	case *stackitem.Map:
		elems := t.Value().([]stackitem.MapElement)
		items := make([]stackitem.Item, len(elems))
		for i, e := range elems {
			items[i] = e.Value
		}
		return items, nil
	default:
		b, err := item.Bytes()
		if err != nil {
			return nil, err
		}
		items := make([]stackitem.Item, len(b))
		for i, c := range b {
			items[i] = stackitem.NewBigIntegerFromInt64(int64(c))
		}
		return items, nil
	}
}

// Next implements System.Enumerator.Next: advance the cursor and push
// whether it now points at a valid element.
func Next(ic *interop.Context) error {
	e, err := popEnumerator(ic)
	if err != nil {
		return err
	}
	ic.VM.Estack().PushVal(e.Next())
	return nil
}

// Value implements System.Enumerator.Value: push the element the cursor
// currently points at.
func Value(ic *interop.Context) error {
	e, err := popEnumerator(ic)
	if err != nil {
		return err
	}
	ic.VM.Estack().PushItem(e.Value())
	return nil
}

func popEnumerator(ic *interop.Context) (enumerator, error) {
	item := ic.VM.Estack().Pop().Item()
	interopItem, ok := item.(*stackitem.Interop)
	if !ok {
		return nil, errNotEnumerator
	}
	e, ok := interopItem.Value().(enumerator)
	if !ok {
		return nil, errNotEnumerator
	}
	return e, nil
}
