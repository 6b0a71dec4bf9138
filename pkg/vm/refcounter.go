package vm

import "github.com/n3ledger/core/pkg/vm/stackitem"

// MaxStackSize bounds the total number of items reachable from any
// evaluation/invocation stack, guarding against unbounded memory growth
// from deeply nested or widely shared composite items.
const MaxStackSize = 2 * 1024

// RefCounter tracks how many stack slots reference each composite item
// (Array/Struct/Map), the way NeoVM accounts for shared references without
// double-counting cycles, so MaxStackSize can be enforced cheaply.
type RefCounter struct {
	size  int
	items map[stackitem.Item]int
}

// NewRefCounter creates an empty RefCounter.
func NewRefCounter() *RefCounter {
	return &RefCounter{items: make(map[stackitem.Item]int)}
}

// Size returns the current tracked item count.
func (r *RefCounter) Size() int { return r.size }

// Add records a new reference to item, recursing into composite items the
// first time they are seen.
func (r *RefCounter) Add(item stackitem.Item) {
	r.size++
	switch t := item.(type) {
	case *stackitem.Array:
		r.addComposite(item, itemsOf(t))
	case *stackitem.Struct:
		r.addComposite(item, itemsOf(t))
	case *stackitem.Map:
		r.addComposite(item, mapItemsOf(t))
	}
}

func (r *RefCounter) addComposite(item stackitem.Item, elems []stackitem.Item) {
	if n, ok := r.items[item]; ok {
		r.items[item] = n + 1
		return
	}
	r.items[item] = 1
	for _, e := range elems {
		r.Add(e)
	}
}

// Remove drops one reference to item, recursing into composite children
// once the last reference is gone.
func (r *RefCounter) Remove(item stackitem.Item) {
	r.size--
	switch t := item.(type) {
	case *stackitem.Array:
		r.removeComposite(item, itemsOf(t))
	case *stackitem.Struct:
		r.removeComposite(item, itemsOf(t))
	case *stackitem.Map:
		r.removeComposite(item, mapItemsOf(t))
	}
}

func (r *RefCounter) removeComposite(item stackitem.Item, elems []stackitem.Item) {
	n, ok := r.items[item]
	if !ok {
		return
	}
	if n > 1 {
		r.items[item] = n - 1
		return
	}
	delete(r.items, item)
	for _, e := range elems {
		r.Remove(e)
	}
}

func itemsOf(v stackitem.Item) []stackitem.Item {
	items, _ := v.Value().([]stackitem.Item)
	return items
}

func mapItemsOf(m *stackitem.Map) []stackitem.Item {
	elems, _ := m.Value().([]stackitem.MapElement)
	out := make([]stackitem.Item, 0, len(elems)*2)
	for _, e := range elems {
		out = append(out, e.Key, e.Value)
	}
	return out
}
