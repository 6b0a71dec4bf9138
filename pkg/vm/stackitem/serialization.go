package stackitem

import (
	"errors"

	"github.com/n3ledger/core/pkg/encoding/bigint"
	gio "github.com/n3ledger/core/pkg/io"
)

// MaxSerialized bounds the number of items a caller should feed into a
// single Serialize call before it is guaranteed to trip ErrTooBig.
const MaxSerialized = MaxSize

// ErrRecursive is returned when serializing a composite item that contains
// itself, directly or through nesting.
var ErrRecursive = errors.New("recursive structures can't be serialized")

// ErrUnserializable is returned for item types with no binary encoding
// (Pointer, InteropInterface).
var ErrUnserializable = errors.New("unserializable item type")

// these type tags prefix every serialized item; they are a subset of the
// stack item Type values that are actually serializable (Pointer and
// InteropInterface are not).
const (
	tagByteString byte = 0x28
	tagBuffer     byte = 0x30
	tagBoolean    byte = 0x20
	tagInteger    byte = 0x21
	tagArray      byte = 0x40
	tagStruct     byte = 0x41
	tagMap        byte = 0x48
)

// Serialize encodes an Item into the binary format used for storage and
// System.Binary.Serialize, failing with ErrTooBig as soon as the running
// total would exceed MaxSize (checked before each element is written, so a
// too-big array is rejected without needing to reach a later unserializable
// element) or with ErrUnserializable/ErrRecursive for unsupported values.
func Serialize(item Item) ([]byte, error) {
	w := gio.NewBufBinWriter()
	var written int
	encodeBinary(item, w.BinWriter, make(map[Item]bool), &written, MaxSize)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

// EncodeBinary writes item's binary encoding to w, accumulating any error on
// w.Err per the package's codec convention. Unlike Serialize, it enforces no
// size budget.
func EncodeBinary(item Item, w *gio.BinWriter) {
	var written int
	encodeBinary(item, w, make(map[Item]bool), &written, -1)
}

func varUintSize(n uint64) int {
	switch {
	case n < 0xfd:
		return 1
	case n <= 0xffff:
		return 3
	case n <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

func chargeBudget(w *gio.BinWriter, written *int, limit, size int) bool {
	if limit < 0 {
		return true
	}
	*written += size
	if *written > limit {
		w.Err = ErrTooBig
		return false
	}
	return true
}

func encodeBinary(item Item, w *gio.BinWriter, seen map[Item]bool, written *int, limit int) {
	if w.Err != nil {
		return
	}
	switch t := item.(type) {
	case *ByteArray:
		if !chargeBudget(w, written, limit, 1+varUintSize(uint64(len(t.value)))+len(t.value)) {
			return
		}
		w.WriteB(tagByteString)
		w.WriteVarBytes(t.value)
	case *Buffer:
		if !chargeBudget(w, written, limit, 1+varUintSize(uint64(len(t.value)))+len(t.value)) {
			return
		}
		w.WriteB(tagBuffer)
		w.WriteVarBytes(t.value)
	case *Bool:
		if !chargeBudget(w, written, limit, 2) {
			return
		}
		w.WriteB(tagBoolean)
		w.WriteBool(t.value)
	case *BigInteger:
		bs := bigint.ToBytes(t.value)
		if !chargeBudget(w, written, limit, 1+varUintSize(uint64(len(bs)))+len(bs)) {
			return
		}
		w.WriteB(tagInteger)
		w.WriteVarBytes(bs)
	case *Array, *Struct:
		encodeCompositeList(item, w, seen, written, limit)
	case *Map:
		if seen[item] {
			w.Err = ErrRecursive
			return
		}
		seen[item] = true
		if !chargeBudget(w, written, limit, 1+varUintSize(uint64(len(t.value)))) {
			return
		}
		w.WriteB(tagMap)
		w.WriteVarUint(uint64(len(t.value)))
		for _, e := range t.value {
			encodeBinary(e.Key, w, seen, written, limit)
			encodeBinary(e.Value, w, seen, written, limit)
		}
	default:
		w.Err = ErrUnserializable
	}
}

func encodeCompositeList(item Item, w *gio.BinWriter, seen map[Item]bool, written *int, limit int) {
	if seen[item] {
		w.Err = ErrRecursive
		return
	}
	seen[item] = true
	var tag byte
	var elems []Item
	switch t := item.(type) {
	case *Array:
		tag, elems = tagArray, t.value
	case *Struct:
		tag, elems = tagStruct, t.value
	}
	if !chargeBudget(w, written, limit, 1+varUintSize(uint64(len(elems)))) {
		return
	}
	w.WriteB(tag)
	w.WriteVarUint(uint64(len(elems)))
	for _, e := range elems {
		encodeBinary(e, w, seen, written, limit)
	}
}

// tags for the lenient per-item encoding EncodeBinaryStackItem/
// DecodeBinaryStackItem use for an application log's recorded evaluation
// stack, where a single unserializable or self-referencing item (a VM can
// produce either while running untrusted script) must degrade to a
// placeholder instead of failing the whole log entry.
const (
	logItemOK      byte = 0
	logItemInvalid byte = 1
	logItemInterop byte = 2
)

// EncodeBinaryStackItem writes item's log encoding to w: Interop items
// degrade to a content-less placeholder (their Go value isn't portable to
// disk), and any other item that fails to Serialize (recursive references,
// Pointer) degrades to an "invalid" marker that decodes back to nil.
func EncodeBinaryStackItem(item Item, w *gio.BinWriter) {
	if w.Err != nil {
		return
	}
	if _, ok := item.(*Interop); ok {
		w.WriteB(logItemInterop)
		return
	}
	data, err := Serialize(item)
	if err != nil {
		w.WriteB(logItemInvalid)
		return
	}
	w.WriteB(logItemOK)
	w.WriteVarBytes(data)
}

// DecodeBinaryStackItem is the inverse of EncodeBinaryStackItem. It returns
// a nil Item (not an error) for a marker that was written for an item this
// package couldn't serialize.
func DecodeBinaryStackItem(r *gio.BinReader) Item {
	if r.Err != nil {
		return nil
	}
	tag := r.ReadB()
	if r.Err != nil {
		return nil
	}
	switch tag {
	case logItemOK:
		data := r.ReadVarBytes(MaxSize)
		if r.Err != nil {
			return nil
		}
		item, err := Deserialize(data)
		if err != nil {
			return nil
		}
		return item
	case logItemInterop:
		return NewInterop(nil)
	default:
		return nil
	}
}

// SerializationContext amortizes repeated Serialize calls over the same
// composite item (a contract invocation's logged arguments, a getter's
// result cache) across System.Binary.Serialize invocations within one VM
// run.
type SerializationContext struct {
	cache map[Item][]byte
}

// NewSerializationContext creates an empty SerializationContext.
func NewSerializationContext() *SerializationContext {
	return &SerializationContext{cache: make(map[Item][]byte)}
}

// Serialize encodes item, reusing a cached encoding from an earlier call
// with cache=true for the same Item value.
func (c *SerializationContext) Serialize(item Item, cache bool) ([]byte, error) {
	if cache {
		if data, ok := c.cache[item]; ok {
			return data, nil
		}
	}
	data, err := Serialize(item)
	if err != nil {
		return nil, err
	}
	if cache {
		c.cache[item] = data
	}
	return data, nil
}

// SerializeConvertible is a shortcut for ToStackItem+Serialize, the form
// native contract storage items (NEP17 balances, Ledger's stored headers)
// use to turn a domain value into its raw storage encoding.
func SerializeConvertible(conv Convertible) ([]byte, error) {
	item, err := conv.ToStackItem()
	if err != nil {
		return nil, err
	}
	return Serialize(item)
}

// DeserializeConvertible is the inverse of SerializeConvertible.
func DeserializeConvertible(data []byte, conv Convertible) error {
	item, err := Deserialize(data)
	if err != nil {
		return err
	}
	return conv.FromStackItem(item)
}

// Deserialize parses the binary encoding produced by Serialize/EncodeBinary.
func Deserialize(data []byte) (Item, error) {
	r := gio.NewBinReaderFromBuf(data)
	item := DecodeBinary(r)
	if r.Err != nil {
		return nil, r.Err
	}
	return item, nil
}

// DecodeBinary reads one item from r, accumulating errors on r.Err.
func DecodeBinary(r *gio.BinReader) Item {
	if r.Err != nil {
		return nil
	}
	tag := r.ReadB()
	if r.Err != nil {
		return nil
	}
	switch tag {
	case tagByteString:
		b := r.ReadVarBytes(MaxSize)
		return NewByteArray(b)
	case tagBuffer:
		b := r.ReadVarBytes(MaxSize)
		return NewBuffer(b)
	case tagBoolean:
		return NewBool(r.ReadBool())
	case tagInteger:
		b := r.ReadVarBytes(32)
		if r.Err != nil {
			return nil
		}
		return NewBigInteger(bigint.FromBytes(b))
	case tagArray, tagStruct:
		n := r.ReadVarUint()
		items := make([]Item, n)
		for i := range items {
			items[i] = DecodeBinary(r)
		}
		if tag == tagArray {
			return NewArray(items)
		}
		return NewStruct(items)
	case tagMap:
		n := r.ReadVarUint()
		m := NewMap()
		for i := uint64(0); i < n && r.Err == nil; i++ {
			k := DecodeBinary(r)
			v := DecodeBinary(r)
			m.Add(k, v)
		}
		return m
	default:
		r.Err = ErrInvalidValue
		return nil
	}
}
