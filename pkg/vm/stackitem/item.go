// Package stackitem implements the value domain NeoVM's evaluation stack
// operates on: Boolean, Integer, ByteString/Buffer, Array/Struct, Map,
// InteropInterface, Pointer and Null, along with their (de)serialization,
// equality and JSON conversion rules.
package stackitem

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"unicode/utf8"

	"github.com/n3ledger/core/pkg/encoding/bigint"
)

// MaxBigIntegerSizeBits is the maximum bit length of an Integer item.
const MaxBigIntegerSizeBits = 32 * 8

// MaxByteArrayComparableSize is the maximum number of bytes two ByteString
// items can be compared by length before Equals panics (consensus-critical
// DoS guard).
const MaxByteArrayComparableSize = 64

// MaxComparableNumOfItems bounds recursive Equals comparisons for nested
// Struct/Array items.
const MaxComparableNumOfItems = 2048

// MaxSize is the maximum stack item size in bytes for serialization/JSON.
const MaxSize = 65535 * 2

// MaxAllowedInteger is the largest integer JSON encoding of an Integer item
// is allowed to carry without loss of precision in common JS consumers.
const MaxAllowedInteger = 2<<53 - 1

// MaxKeySize is the maximum size of a map/storage key represented as a
// ByteArray.
const MaxKeySize = 64

// Errors returned by conversion helpers and Equals.
var (
	ErrInvalidValue = errors.New("invalid value")
	ErrTooBig       = errors.New("too big")
)

// Item represents any NeoVM stack item.
type Item interface {
	// Value returns the underlying Go value.
	Value() interface{}
	// Dup duplicates an item; for composite items this is a shallow clone
	// sharing the same backing elements (used by DUP opcode).
	Dup() Item
	// Bytes converts an item to a byte slice or returns an error.
	Bytes() ([]byte, error)
	// TryBool attempts conversion to a boolean.
	TryBool() (bool, error)
	// Equals returns whether the two items are value-equal.
	Equals(s Item) bool
	// Type returns the item's stack item type.
	Type() Type
	// String returns a short, type name style description.
	String() string
}

// ToString decodes item's byte representation as a UTF-8 string, the
// inverse of the plain byte-string encoding Make(string) produces.
func ToString(item Item) (string, error) {
	b, err := item.Bytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.New("not a valid UTF-8 string")
	}
	return string(b), nil
}

// Make converts a Go value into the closest matching Item: nil becomes
// Null{}, and unsupported kinds make it panic.
func Make(v interface{}) Item {
	switch val := v.(type) {
	case int:
		return NewBigInteger(big.NewInt(int64(val)))
	case int8:
		return NewBigInteger(big.NewInt(int64(val)))
	case int16:
		return NewBigInteger(big.NewInt(int64(val)))
	case int32:
		return NewBigInteger(big.NewInt(int64(val)))
	case int64:
		return NewBigInteger(big.NewInt(val))
	case uint8:
		return NewBigInteger(big.NewInt(int64(val)))
	case uint16:
		return NewBigInteger(big.NewInt(int64(val)))
	case uint32:
		return NewBigInteger(big.NewInt(int64(val)))
	case uint64:
		return NewBigInteger(new(big.Int).SetUint64(val))
	case *big.Int:
		return NewBigInteger(val)
	case []byte:
		return NewByteArray(val)
	case string:
		return NewByteArray([]byte(val))
	case bool:
		return NewBool(val)
	case []Item:
		return NewArray(val)
	case Item:
		return val
	}

	// Fall back to reflection for slices of a concrete non-Item element type
	// (e.g. []int) and for named integer types (e.g. type myInt int32),
	// mirroring the teacher's convenience constructor.
	if v == nil {
		return Null{}
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		items := make([]Item, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = Make(rv.Index(i).Interface())
		}
		return NewArray(items)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NewBigInteger(big.NewInt(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return NewBigInteger(new(big.Int).SetUint64(rv.Uint()))
	case reflect.Bool:
		return NewBool(rv.Bool())
	case reflect.String:
		return NewByteArray([]byte(rv.String()))
	}

	panic(fmt.Sprintf("invalid stack item type: %T", v))
}

// DeepCopy returns a deep copy of the given item; reference cycles in
// Array/Struct/Map values are preserved rather than looping forever.
func DeepCopy(item Item) Item {
	seen := make(map[Item]Item)
	return deepCopy(item, seen)
}

func deepCopy(item Item, seen map[Item]Item) Item {
	if item == nil {
		return nil
	}
	if copied, ok := seen[item]; ok {
		return copied
	}
	switch t := item.(type) {
	case *BigInteger:
		return &BigInteger{value: new(big.Int).Set(t.value)}
	case *ByteArray:
		return &ByteArray{value: append([]byte{}, t.value...)}
	case *Buffer:
		return &Buffer{value: append([]byte{}, t.value...)}
	case *Bool:
		return &Bool{value: t.value}
	case Null:
		return Null{}
	case *Pointer:
		return &Pointer{pos: t.pos, script: t.script}
	case *Interop:
		return &Interop{value: t.value}
	case *Array:
		cp := &Array{value: make([]Item, len(t.value))}
		seen[item] = cp
		for i, v := range t.value {
			cp.value[i] = deepCopy(v, seen)
		}
		return cp
	case *Struct:
		cp := &Struct{value: make([]Item, len(t.value))}
		seen[item] = cp
		for i, v := range t.value {
			cp.value[i] = deepCopy(v, seen)
		}
		return cp
	case *Map:
		cp := &Map{value: make([]MapElement, len(t.value))}
		seen[item] = cp
		for i, e := range t.value {
			cp.value[i] = MapElement{Key: deepCopy(e.Key, seen), Value: deepCopy(e.Value, seen)}
		}
		return cp
	}
	return item
}

// ---- BigInteger ----

// BigInteger represents an arbitrary-precision signed Integer item.
type BigInteger struct {
	value *big.Int
}

// NewBigInteger creates a new Integer item, panicking if it overflows
// MaxBigIntegerSizeBits.
func NewBigInteger(value *big.Int) *BigInteger {
	if bs := bigint.ToBytes(value); len(bs)*8 > MaxBigIntegerSizeBits {
		panic("integer overflow")
	}
	return &BigInteger{value: value}
}

// NewBigIntegerFromInt64 creates a new Integer item from an int64 value.
func NewBigIntegerFromInt64(value int64) *BigInteger {
	return NewBigInteger(big.NewInt(value))
}

func (i *BigInteger) Value() interface{} { return i.value }
func (i *BigInteger) Dup() Item          { return &BigInteger{value: i.value} }
func (i *BigInteger) Bytes() ([]byte, error) {
	return bigint.ToBytes(i.value), nil
}
func (i *BigInteger) TryBool() (bool, error) { return i.value.Sign() != 0, nil }
func (i *BigInteger) Type() Type             { return IntegerT }
func (i *BigInteger) String() string         { return "BigInteger" }
func (i *BigInteger) Equals(s Item) bool {
	if s == nil {
		return false
	}
	val, ok := s.(*BigInteger)
	if !ok {
		return false
	}
	return i.value.Cmp(val.value) == 0
}
func (i *BigInteger) MarshalJSON() ([]byte, error) {
	return []byte(i.value.String()), nil
}

// ---- Bool ----

// Bool represents a Boolean item.
type Bool struct {
	value bool
}

// NewBool creates a new Boolean item.
func NewBool(value bool) *Bool { return &Bool{value: value} }

func (i *Bool) Value() interface{} { return i.value }
func (i *Bool) Dup() Item          { return &Bool{value: i.value} }
func (i *Bool) Bytes() ([]byte, error) {
	if i.value {
		return []byte{1}, nil
	}
	return []byte{0}, nil
}
func (i *Bool) TryBool() (bool, error) { return i.value, nil }
func (i *Bool) Type() Type             { return BooleanT }
func (i *Bool) String() string         { return "Boolean" }
func (i *Bool) Equals(s Item) bool {
	if s == nil {
		return false
	}
	val, ok := s.(*Bool)
	if !ok {
		return false
	}
	return i.value == val.value
}
func (i *Bool) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.value)
}

// ---- ByteArray ----

// ByteArray represents an immutable ByteString item.
type ByteArray struct {
	value []byte
}

// NewByteArray creates a new ByteString item.
func NewByteArray(value []byte) *ByteArray {
	if value == nil {
		value = []byte{}
	}
	return &ByteArray{value: value}
}

func (i *ByteArray) Value() interface{}      { return i.value }
func (i *ByteArray) Dup() Item                { return &ByteArray{value: i.value} }
func (i *ByteArray) Bytes() ([]byte, error)  { return i.value, nil }
func (i *ByteArray) TryBool() (bool, error) {
	for _, b := range i.value {
		if b != 0 {
			return true, nil
		}
	}
	return false, nil
}
func (i *ByteArray) Type() Type     { return ByteArrayT }
func (i *ByteArray) String() string { return "ByteString" }
func (i *ByteArray) Equals(s Item) bool {
	if s == nil {
		return false
	}
	val, ok := s.(*ByteArray)
	if !ok {
		return false
	}
	if len(i.value) > MaxByteArrayComparableSize || len(val.value) > MaxByteArrayComparableSize {
		panic("comparable size exceeded")
	}
	if len(i.value) != len(val.value) {
		return false
	}
	for idx := range i.value {
		if i.value[idx] != val.value[idx] {
			return false
		}
	}
	return true
}
func (i *ByteArray) MarshalJSON() ([]byte, error) {
	return json.Marshal(hexEncode(i.value))
}

func hexDecode(s string) ([]byte, error) {
	return hex.DecodeString(s)
}

func hexEncode(b []byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hextable[c>>4]
		out[i*2+1] = hextable[c&0x0f]
	}
	return string(out)
}

// ---- Buffer ----

// Buffer represents a mutable byte buffer item.
type Buffer struct {
	value []byte
}

// NewBuffer creates a new Buffer item.
func NewBuffer(value []byte) *Buffer {
	if value == nil {
		value = []byte{}
	}
	return &Buffer{value: value}
}

func (i *Buffer) Value() interface{}     { return i.value }
func (i *Buffer) Dup() Item               { return &Buffer{value: append([]byte{}, i.value...)} }
func (i *Buffer) Bytes() ([]byte, error) { return i.value, nil }
func (i *Buffer) TryBool() (bool, error) {
	for _, b := range i.value {
		if b != 0 {
			return true, nil
		}
	}
	return false, nil
}
func (i *Buffer) Type() Type     { return BufferT }
func (i *Buffer) String() string { return "Buffer" }
func (i *Buffer) Equals(s Item) bool {
	return i == s
}

// ---- Null ----

// Null is the singleton item representing the absence of a value.
type Null struct{}

func (i Null) Value() interface{}      { return nil }
func (i Null) Dup() Item               { return i }
func (i Null) Bytes() ([]byte, error)  { return nil, fmt.Errorf("can't convert Null to byte slice") }
func (i Null) TryBool() (bool, error)  { return false, nil }
func (i Null) Type() Type              { return AnyT }
func (i Null) String() string          { return "Any" }
func (i Null) Equals(s Item) bool {
	if s == nil {
		return false
	}
	_, ok := s.(Null)
	return ok
}

// ---- Pointer ----

// Pointer represents a code pointer for CALLA-style indirect calls.
type Pointer struct {
	pos    int
	script []byte
}

// NewPointer creates a new Pointer item targeting pos in script.
func NewPointer(pos int, script []byte) *Pointer {
	return &Pointer{pos: pos, script: script}
}

// Position returns the target offset.
func (i *Pointer) Position() int { return i.pos }

func (i *Pointer) Value() interface{}     { return i.pos }
func (i *Pointer) Dup() Item               { return &Pointer{pos: i.pos, script: i.script} }
func (i *Pointer) Bytes() ([]byte, error) { return nil, fmt.Errorf("can't convert Pointer to byte slice") }
func (i *Pointer) TryBool() (bool, error) { return true, nil }
func (i *Pointer) Type() Type             { return PointerT }
func (i *Pointer) String() string         { return "Pointer" }
func (i *Pointer) Equals(s Item) bool {
	if s == nil {
		return false
	}
	val, ok := s.(*Pointer)
	if !ok {
		return false
	}
	return i.pos == val.pos && string(i.script) == string(val.script)
}

// ---- Interop ----

// Interop wraps an opaque Go value exposed to the VM as an
// InteropInterface item (e.g. an iterator or native contract handle).
type Interop struct {
	value interface{}
}

// NewInterop creates a new InteropInterface item.
func NewInterop(value interface{}) *Interop {
	return &Interop{value: value}
}

func (i *Interop) Value() interface{}     { return i.value }
func (i *Interop) Dup() Item               { return &Interop{value: i.value} }
func (i *Interop) Bytes() ([]byte, error) { return nil, fmt.Errorf("can't convert Interop to byte slice") }
func (i *Interop) TryBool() (bool, error) { return true, nil }
func (i *Interop) Type() Type             { return InteropT }
func (i *Interop) String() string         { return "Interop" }
func (i *Interop) Equals(s Item) bool {
	if s == nil {
		return false
	}
	val, ok := s.(*Interop)
	if !ok {
		return false
	}
	return i.value == val.value
}
func (i *Interop) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.value)
}

// ---- Array / Struct ----

// Array represents a composite, reference-type Array item.
type Array struct {
	value    []Item
	readOnly bool
}

// MarkAsReadOnly flags the array as read-only, the marker
// System.Runtime.Notify/GetNotifications put on a notification's argument
// array once it has been recorded, so a contract mutating its own event
// object afterwards can't retroactively rewrite history a prior GetNotifications
// call already handed back.
func (i *Array) MarkAsReadOnly() { i.readOnly = true }

// IsReadOnly reports whether MarkAsReadOnly has been called on this array.
func (i *Array) IsReadOnly() bool { return i.readOnly }

// NewArray creates a new Array item.
func NewArray(value []Item) *Array {
	return &Array{value: value}
}

// Append adds an item to the end of the array.
func (i *Array) Append(item Item) { i.value = append(i.value, item) }

// Len returns the number of elements.
func (i *Array) Len() int { return len(i.value) }

// Clear drops every element.
func (i *Array) Clear() { i.value = i.value[:0] }

// Pop removes and returns the last element.
func (i *Array) Pop() Item {
	last := i.value[len(i.value)-1]
	i.value = i.value[:len(i.value)-1]
	return last
}

// SetElements replaces the backing element slice wholesale, used by
// REMOVE-style opcodes that drop an arbitrary index.
func (i *Array) SetElements(items []Item) { i.value = items }

func (i *Array) Value() interface{}     { return i.value }
func (i *Array) Dup() Item               { return &Array{value: append([]Item{}, i.value...)} }
func (i *Array) Bytes() ([]byte, error) { return nil, fmt.Errorf("can't convert Array to byte slice") }
func (i *Array) TryBool() (bool, error) { return true, nil }
func (i *Array) Type() Type             { return ArrayT }
func (i *Array) String() string         { return "Array" }
func (i *Array) Equals(s Item) bool     { return i == s }
func (i *Array) MarshalJSON() ([]byte, error) {
	return marshalItems(i.value)
}

func marshalItems(items []Item) ([]byte, error) {
	out := make([]json.RawMessage, len(items))
	for k, it := range items {
		b, err := marshalItem(it)
		if err != nil {
			return nil, err
		}
		out[k] = b
	}
	return json.Marshal(out)
}

func marshalItem(it Item) ([]byte, error) {
	switch t := it.(type) {
	case *BigInteger:
		return t.MarshalJSON()
	case *Bool:
		return t.MarshalJSON()
	case *ByteArray:
		return t.MarshalJSON()
	case *Buffer:
		return json.Marshal(hexEncode(t.value))
	case *Array:
		return t.MarshalJSON()
	case *Struct:
		return marshalItems(t.value)
	case *Map:
		return t.MarshalJSON()
	case *Interop:
		return t.MarshalJSON()
	case Null:
		return []byte("null"), nil
	default:
		return nil, fmt.Errorf("can't convert %s to JSON", it.Type())
	}
}

// Struct is value-typed composite item, equality compares element by
// element recursively (bounded by MaxComparableNumOfItems).
type Struct struct {
	value []Item
}

// NewStruct creates a new Struct item.
func NewStruct(value []Item) *Struct {
	return &Struct{value: value}
}

// Append adds an item to the end of the struct.
func (i *Struct) Append(item Item) { i.value = append(i.value, item) }

// Len returns the number of fields.
func (i *Struct) Len() int { return len(i.value) }

// Clear drops every field.
func (i *Struct) Clear() { i.value = i.value[:0] }

func (i *Struct) Value() interface{}     { return i.value }
func (i *Struct) Dup() Item               { return &Struct{value: append([]Item{}, i.value...)} }
func (i *Struct) Bytes() ([]byte, error) { return nil, fmt.Errorf("can't convert Struct to byte slice") }
func (i *Struct) TryBool() (bool, error) { return true, nil }
func (i *Struct) Type() Type             { return StructT }
func (i *Struct) String() string         { return "Struct" }

// Clone performs a deep copy of the Struct up to a total element budget,
// erroring if the budget is exhausted (guards against exponential nesting).
func (i *Struct) Clone(maxCount int) (*Struct, error) {
	return i.clone(&maxCount)
}

func (i *Struct) clone(count *int) (*Struct, error) {
	*count -= len(i.value)
	if *count < 0 {
		return nil, errors.New("too many items to clone")
	}
	res := &Struct{value: make([]Item, len(i.value))}
	for idx, v := range i.value {
		if st, ok := v.(*Struct); ok {
			c, err := st.clone(count)
			if err != nil {
				return nil, err
			}
			res.value[idx] = c
		} else {
			res.value[idx] = v
		}
	}
	return res, nil
}

func (i *Struct) Equals(s Item) bool {
	if s == nil {
		return false
	}
	val, ok := s.(*Struct)
	if !ok {
		return false
	}
	if i == val {
		return true
	}
	limit := MaxComparableNumOfItems
	return structEquals(i, val, &limit)
}

func structEquals(a, b *Struct, limit *int) bool {
	if len(a.value) != len(b.value) {
		return false
	}
	for idx := range a.value {
		*limit--
		if *limit < 0 {
			panic("too many items to compare")
		}
		av, bv := a.value[idx], b.value[idx]
		if as, ok := av.(*Struct); ok {
			bs, ok2 := bv.(*Struct)
			if !ok2 || !structEquals(as, bs, limit) {
				return false
			}
			continue
		}
		if !av.Equals(bv) {
			return false
		}
	}
	return true
}

// ---- Map ----

// MapElement is a single key/value pair of a Map item.
type MapElement struct {
	Key   Item
	Value Item
}

// Map represents a composite, reference-type key/value item. Keys must be
// primitive (Boolean, Integer, ByteString/Buffer).
type Map struct {
	value []MapElement
}

// NewMap creates a new, empty Map item.
func NewMap() *Map { return &Map{value: []MapElement{}} }

// NewMapWithValue creates a Map item with a pre-populated element slice.
func NewMapWithValue(value []MapElement) *Map { return &Map{value: value} }

// Add inserts or overwrites a key/value pair.
func (i *Map) Add(key, value Item) {
	for idx, e := range i.value {
		if e.Key.Equals(key) {
			i.value[idx].Value = value
			return
		}
	}
	i.value = append(i.value, MapElement{Key: key, Value: value})
}

// GetValue looks up a key, returning nil if absent.
func (i *Map) GetValue(key Item) Item {
	for _, e := range i.value {
		if e.Key.Equals(key) {
			return e.Value
		}
	}
	return nil
}

// Index returns the position of key among the map's entries, or -1 if absent.
func (i *Map) Index(key Item) int {
	for idx, e := range i.value {
		if e.Key.Equals(key) {
			return idx
		}
	}
	return -1
}

// Remove deletes the entry for key, a no-op if it is absent.
func (i *Map) Remove(key Item) {
	for idx, e := range i.value {
		if e.Key.Equals(key) {
			i.value = append(i.value[:idx], i.value[idx+1:]...)
			return
		}
	}
}

// Clear drops every entry.
func (i *Map) Clear() { i.value = i.value[:0] }

// Len returns the number of entries.
func (i *Map) Len() int { return len(i.value) }

func (i *Map) Value() interface{}     { return i.value }
func (i *Map) Dup() Item               { return &Map{value: append([]MapElement{}, i.value...)} }
func (i *Map) Bytes() ([]byte, error) { return nil, fmt.Errorf("can't convert Map to byte slice") }
func (i *Map) TryBool() (bool, error) { return true, nil }
func (i *Map) Type() Type             { return MapT }
func (i *Map) String() string         { return "Map" }
func (i *Map) Equals(s Item) bool     { return i == s }
func (i *Map) MarshalJSON() ([]byte, error) {
	result := make(map[string]json.RawMessage, len(i.value))
	for _, e := range i.value {
		kb, err := e.Key.Bytes()
		if err != nil {
			return nil, err
		}
		vb, err := marshalItem(e.Value)
		if err != nil {
			return nil, err
		}
		result[string(kb)] = vb
	}
	return json.Marshal(result)
}
