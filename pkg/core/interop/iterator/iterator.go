// Package iterator implements System.Iterator.*, the cursor protocol a
// contract uses to walk storage find results or any other value a native
// contract hands it wrapped as an interop item.
package iterator

import (
	"errors"

	"github.com/n3ledger/core/pkg/core/interop"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

var errNotIterator = errors.New("item is not an iterator")

// Iterator is the cursor interface a value must implement to be walked by
// System.Iterator.Next/Value, matching what System.Storage.Find and
// System.Enumerator.Create hand back wrapped as an interop item.
type Iterator interface {
	Next() bool
	Value() stackitem.Item
}

// Next implements System.Iterator.Next: advance the cursor and push
// whether it now points at a valid element.
func Next(ic *interop.Context) error {
	it, err := pop(ic)
	if err != nil {
		return err
	}
	ic.VM.Estack().PushVal(it.Next())
	return nil
}

// Value implements System.Iterator.Value: push the element the cursor
// currently points at.
func Value(ic *interop.Context) error {
	it, err := pop(ic)
	if err != nil {
		return err
	}
	ic.VM.Estack().PushItem(it.Value())
	return nil
}

func pop(ic *interop.Context) (Iterator, error) {
	item := ic.VM.Estack().Pop().Item()
	interopItem, ok := item.(*stackitem.Interop)
	if !ok {
		return nil, errNotIterator
	}
	it, ok := interopItem.Value().(Iterator)
	if !ok {
		return nil, errNotIterator
	}
	return it, nil
}
