package stackitem

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
)

// jsonMaxDepth bounds nested Array/Map decoding, matching the opcode
// execution stack's own recursion guard.
const jsonMaxDepth = 9

// ToJSON converts an Item into the RPC-style JSON representation Neo's
// JSON-RPC stack item schema uses: ByteString/Buffer as base64, Integer as
// a bare number (rejecting values outside MaxAllowedInteger), Null as
// `null`, Array/Struct as arrays, Map as an object keyed by the decoded key
// bytes.
func ToJSON(it Item) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeJSON(&buf, it, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeJSON(buf *bytes.Buffer, it Item, depth int) error {
	if depth > jsonMaxDepth {
		return errors.New("json nesting too deep")
	}
	switch t := it.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case Null:
		buf.WriteString("null")
		return nil
	case *BigInteger:
		if t.value.CmpAbs(big.NewInt(MaxAllowedInteger)) > 0 {
			return errors.New("integer too big for JSON")
		}
		buf.WriteString(t.value.String())
		return nil
	case *Bool:
		if t.value {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case *ByteArray:
		return encodeJSONBytes(buf, t.value)
	case *Buffer:
		return encodeJSONBytes(buf, t.value)
	case *Array:
		return encodeJSONItems(buf, t.value, depth)
	case *Struct:
		return encodeJSONItems(buf, t.value, depth)
	case *Map:
		return encodeJSONMap(buf, t.value, depth)
	default:
		return fmt.Errorf("can't convert %s to JSON", it.Type())
	}
}

func encodeJSONBytes(buf *bytes.Buffer, b []byte) error {
	if len(b) > MaxSize {
		return ErrTooBig
	}
	s, err := json.Marshal(base64.StdEncoding.EncodeToString(b))
	if err != nil {
		return err
	}
	buf.Write(s)
	return nil
}

func encodeJSONItems(buf *bytes.Buffer, items []Item, depth int) error {
	buf.WriteByte('[')
	for i, it := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeJSON(buf, it, depth+1); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func encodeJSONMap(buf *bytes.Buffer, elems []MapElement, depth int) error {
	out := make(map[string][]byte, len(elems))
	keys := make([]string, 0, len(elems))
	for _, e := range elems {
		kb, err := e.Key.Bytes()
		if err != nil {
			return err
		}
		var vbuf bytes.Buffer
		if err := encodeJSON(&vbuf, e.Value, depth+1); err != nil {
			return err
		}
		out[string(kb)] = vbuf.Bytes()
		keys = append(keys, string(kb))
	}
	sortStrings(keys)
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kjson, err := json.Marshal(k)
		if err != nil {
			return err
		}
		buf.Write(kjson)
		buf.WriteByte(':')
		buf.Write(out[k])
	}
	buf.WriteByte('}')
	return nil
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// FromJSON parses the RPC-style JSON representation into an Item tree.
func FromJSON(data []byte) (Item, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	item, err := decodeJSONValue(dec, 0)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected trailing data")
	}
	return item, nil
}

// typedItem is the wire shape of the "type"/"value" stack item JSON schema
// application logs (NotificationEvent, invocation results) use, as opposed
// to ToJSON/FromJSON's bare RPC parameter schema.
type typedItem struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// MarshalJSONWithTypes renders it using the "type"/"value" schema, the one
// application logs embed a notification's state under. A recursive or
// otherwise too-deep item fails rather than looping forever; callers that
// must never fail (a notification event logging a buggy contract's output)
// should fall back to a JSON null on error.
func MarshalJSONWithTypes(it Item) ([]byte, error) {
	return marshalJSONWithTypes(it, 0)
}

func marshalJSONWithTypes(it Item, depth int) ([]byte, error) {
	if depth > jsonMaxDepth {
		return nil, errors.New("json nesting too deep")
	}
	if it == nil {
		it = Null{}
	}
	aux := typedItem{Type: it.Type().String()}
	switch t := it.(type) {
	case Null:
	case *Array:
		v, err := marshalTypedItems(t.value, depth)
		if err != nil {
			return nil, err
		}
		aux.Value = v
	case *Struct:
		v, err := marshalTypedItems(t.value, depth)
		if err != nil {
			return nil, err
		}
		aux.Value = v
	case *Map:
		v, err := marshalTypedMap(t.value, depth)
		if err != nil {
			return nil, err
		}
		aux.Value = v
	default:
		v, err := it.MarshalJSON()
		if err != nil {
			return nil, err
		}
		aux.Value = v
	}
	return json.Marshal(aux)
}

func marshalTypedItems(items []Item, depth int) (json.RawMessage, error) {
	parts := make([]json.RawMessage, len(items))
	for i, e := range items {
		v, err := marshalJSONWithTypes(e, depth+1)
		if err != nil {
			return nil, err
		}
		parts[i] = v
	}
	return json.Marshal(parts)
}

type typedMapEntry struct {
	Key   json.RawMessage `json:"key"`
	Value json.RawMessage `json:"value"`
}

func marshalTypedMap(elems []MapElement, depth int) (json.RawMessage, error) {
	entries := make([]typedMapEntry, len(elems))
	for i, e := range elems {
		k, err := marshalJSONWithTypes(e.Key, depth+1)
		if err != nil {
			return nil, err
		}
		v, err := marshalJSONWithTypes(e.Value, depth+1)
		if err != nil {
			return nil, err
		}
		entries[i] = typedMapEntry{Key: k, Value: v}
	}
	return json.Marshal(entries)
}

// UnmarshalJSONWithTypes parses the "type"/"value" schema MarshalJSONWithTypes
// produces.
func UnmarshalJSONWithTypes(data []byte) (Item, error) {
	var aux typedItem
	if err := json.Unmarshal(data, &aux); err != nil {
		return nil, err
	}
	typ, err := FromString(aux.Type)
	if err != nil {
		return nil, err
	}
	switch typ {
	case AnyT:
		return Null{}, nil
	case BooleanT:
		var v bool
		if err := json.Unmarshal(aux.Value, &v); err != nil {
			return nil, err
		}
		return NewBool(v), nil
	case IntegerT:
		var v big.Int
		if err := v.UnmarshalJSON(aux.Value); err != nil {
			return nil, err
		}
		return NewBigInteger(&v), nil
	case ByteArrayT, BufferT:
		var s string
		if err := json.Unmarshal(aux.Value, &s); err != nil {
			return nil, err
		}
		b, err := hexDecode(s)
		if err != nil {
			return nil, err
		}
		if typ == BufferT {
			return NewBuffer(b), nil
		}
		return NewByteArray(b), nil
	case ArrayT, StructT:
		var rawItems []json.RawMessage
		if err := json.Unmarshal(aux.Value, &rawItems); err != nil {
			return nil, err
		}
		items := make([]Item, len(rawItems))
		for i, r := range rawItems {
			it, err := UnmarshalJSONWithTypes(r)
			if err != nil {
				return nil, err
			}
			items[i] = it
		}
		if typ == StructT {
			return NewStruct(items), nil
		}
		return NewArray(items), nil
	case MapT:
		var rawEntries []typedMapEntry
		if err := json.Unmarshal(aux.Value, &rawEntries); err != nil {
			return nil, err
		}
		m := NewMap()
		for _, e := range rawEntries {
			k, err := UnmarshalJSONWithTypes(e.Key)
			if err != nil {
				return nil, err
			}
			v, err := UnmarshalJSONWithTypes(e.Value)
			if err != nil {
				return nil, err
			}
			m.Add(k, v)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported stack item type in JSON: %s", aux.Type)
	}
}

func decodeJSONValue(dec *json.Decoder, depth int) (Item, error) {
	if depth > jsonMaxDepth {
		return nil, errors.New("json nesting too deep")
	}
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch v := tok.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return NewBool(v), nil
	case json.Number:
		bi, ok := new(big.Int).SetString(v.String(), 10)
		if !ok {
			f, err := v.Float64()
			if err != nil {
				return nil, fmt.Errorf("invalid number: %s", v)
			}
			if f != float64(int64(f)) {
				return nil, fmt.Errorf("non-integer number: %s", v)
			}
			bi = big.NewInt(int64(f))
		}
		return NewBigInteger(bi), nil
	case string:
		b, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, err
		}
		return NewByteArray(b), nil
	case json.Delim:
		switch v {
		case '[':
			items := []Item{}
			for dec.More() {
				it, err := decodeJSONValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				items = append(items, it)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return NewArray(items), nil
		case '{':
			m := NewMap()
			for dec.More() {
				ktok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				ks, ok := ktok.(string)
				if !ok {
					return nil, errors.New("expected string key")
				}
				vi, err := decodeJSONValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				m.Add(NewByteArray([]byte(ks)), vi)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return m, nil
		}
	}
	return nil, fmt.Errorf("unexpected JSON token: %v", tok)
}
