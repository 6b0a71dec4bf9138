package manifest

import (
	"fmt"
	"regexp"

	"github.com/n3ledger/core/pkg/smartcontract"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// ExtendedType extends the plain ParamType-based ABI with the richer,
// recursive shape NEP-compatible tooling needs to decode struct-like
// return values: named struct types, fixed-length byte arrays, typed maps
// and interop interface handles.
type ExtendedType struct {
	Type       smartcontract.ParamType
	Name       string
	Interface  string
	Key        smartcontract.ParamType
	Value      *ExtendedType
	Fields     []Parameter
	Length     int
	ForbidNull bool
}

var extendedTypeNameRegexp = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9.]*$`)

// knownInterfaces is the allow-list of InteropInterface names an
// ExtendedType may reference.
var knownInterfaces = map[string]bool{
	"Iterator": true,
}

func isValidMapKeyType(t smartcontract.ParamType) bool {
	switch t {
	case smartcontract.BoolType, smartcontract.IntegerType, smartcontract.ByteArrayType,
		smartcontract.StringType, smartcontract.Hash160Type, smartcontract.Hash256Type,
		smartcontract.PublicKeyType, smartcontract.SignatureType:
		return true
	default:
		return false
	}
}

// IsValid checks that e's fields are self-consistent: that only fields
// applicable to e.Type are set, and that set fields carry valid values.
func (e *ExtendedType) IsValid() error {
	typ, err := smartcontract.ConvertToParamType(int(e.Type))
	if err != nil {
		return err
	}

	if e.Name != "" && typ != smartcontract.ArrayType {
		return fmt.Errorf("`ExtendedType.Name` field can not be specified for type %s", typ)
	}
	if e.Name != "" {
		if len(e.Name) > 64 {
			return fmt.Errorf("`ExtendedType.Name` must not be longer than 64 characters")
		}
		if !extendedTypeNameRegexp.MatchString(e.Name) {
			return fmt.Errorf("`ExtendedType.Name` must start with a letter and contain only letters, digits and dots")
		}
	}

	if e.Length != 0 && typ != smartcontract.ByteArrayType {
		return fmt.Errorf("`ExtendedType.Length` field can not be specified for type %s", typ)
	}

	if e.ForbidNull && typ != smartcontract.MapType {
		return fmt.Errorf("`ExtendedType.ForbidNull` field can not be specified for type %s", typ)
	}

	if e.Interface != "" && typ != smartcontract.InteropInterfaceType {
		return fmt.Errorf("`ExtendedType.Interface` field can not be specified for type %s", typ)
	}
	if typ == smartcontract.InteropInterfaceType {
		if e.Interface == "" {
			return fmt.Errorf("`ExtendedType.Interface` field is required for type %s", typ)
		}
		if !knownInterfaces[e.Interface] {
			return fmt.Errorf("invalid value for `ExtendedType.Interface` field: %s", e.Interface)
		}
	}

	if e.Key != smartcontract.AnyType && typ != smartcontract.MapType {
		return fmt.Errorf("`ExtendedType.Key` field can not be specified for type %s", typ)
	}
	if typ == smartcontract.MapType {
		if e.Key == smartcontract.AnyType {
			return fmt.Errorf("`ExtendedType.Key` field is required for map definitions")
		}
		if !isValidMapKeyType(e.Key) {
			return fmt.Errorf("key type %s is not allowed for map definitions", e.Key)
		}
	}

	if e.Value != nil && typ != smartcontract.ArrayType && typ != smartcontract.MapType {
		return fmt.Errorf("`ExtendedType.Value` field can not be specified for type %s", typ)
	}
	if typ == smartcontract.MapType && e.Value == nil {
		return fmt.Errorf("`ExtendedType.Value` field is required for map definitions")
	}
	if typ == smartcontract.ArrayType && e.Value == nil && len(e.Fields) == 0 {
		return fmt.Errorf("`ExtendedType.Value` field is required for array definitions without fields")
	}
	if e.Value != nil {
		if err := e.Value.IsValid(); err != nil {
			return err
		}
	}

	if len(e.Fields) > 0 && typ != smartcontract.ArrayType {
		return fmt.Errorf("`ExtendedType.Fields` field can not be specified for type %s", typ)
	}
	if len(e.Fields) > 0 {
		if err := Parameters(e.Fields).AreValid(); err != nil {
			return err
		}
	}

	return nil
}

// ToStackItem implements the Interoperable pattern. Only non-default fields
// are included in the resulting map, in a fixed key order.
func (e *ExtendedType) ToStackItem() stackitem.Item {
	elems := []stackitem.MapElement{
		{Key: stackitem.Make("type"), Value: stackitem.Make(int(e.Type))},
	}
	if e.Name != "" {
		elems = append(elems, stackitem.MapElement{Key: stackitem.Make("namedtype"), Value: stackitem.Make(e.Name)})
	}
	if e.Length != 0 {
		elems = append(elems, stackitem.MapElement{Key: stackitem.Make("length"), Value: stackitem.Make(e.Length)})
	}
	if e.ForbidNull {
		elems = append(elems, stackitem.MapElement{Key: stackitem.Make("forbidnull"), Value: stackitem.Make(true)})
	}
	if e.Interface != "" {
		elems = append(elems, stackitem.MapElement{Key: stackitem.Make("interface"), Value: stackitem.Make(e.Interface)})
	}
	if e.Key != smartcontract.AnyType {
		elems = append(elems, stackitem.MapElement{Key: stackitem.Make("key"), Value: stackitem.Make(int(e.Key))})
	}
	if e.Value != nil {
		elems = append(elems, stackitem.MapElement{Key: stackitem.Make("value"), Value: e.Value.ToStackItem()})
	}
	if len(e.Fields) > 0 {
		items := make([]stackitem.Item, len(e.Fields))
		for i := range e.Fields {
			items[i] = e.Fields[i].ToStackItem()
		}
		elems = append(elems, stackitem.MapElement{Key: stackitem.Make("fields"), Value: stackitem.NewArray(items)})
	}
	return stackitem.NewMapWithValue(elems)
}

// FromStackItem implements the Interoperable pattern. A field present in
// the map with an explicit but wrongly-typed value is always an error; a
// field absent from the map takes its zero value.
func (e *ExtendedType) FromStackItem(item stackitem.Item) error {
	if item == nil {
		return fmt.Errorf("expected non-nil item")
	}
	m, ok := item.(*stackitem.Map)
	if !ok {
		return fmt.Errorf("invalid ExtendedType stackitem type")
	}

	typItem := m.GetValue(stackitem.Make("type"))
	if typItem == nil {
		return fmt.Errorf("incorrect type")
	}
	typVal, err := stackitem.ToInt64(typItem)
	if err != nil {
		return fmt.Errorf("type must be integer: %w", err)
	}
	typ, err := smartcontract.ConvertToParamType(int(typVal))
	if err != nil {
		return fmt.Errorf("type must be integer: %w", err)
	}
	e.Type = typ

	e.Name = ""
	if v := m.GetValue(stackitem.Make("namedtype")); v != nil {
		ba, ok := v.(*stackitem.ByteArray)
		if !ok {
			return fmt.Errorf("can't get namedtype")
		}
		b, _ := ba.Bytes()
		e.Name = string(b)
	}

	e.Length = 0
	if v := m.GetValue(stackitem.Make("length")); v != nil {
		n, err := stackitem.ToInt64(v)
		if err != nil {
			return fmt.Errorf("length must be integer or null")
		}
		e.Length = int(n)
	}

	e.ForbidNull = false
	if v := m.GetValue(stackitem.Make("forbidnull")); v != nil {
		b, ok := v.(*stackitem.Bool)
		if !ok {
			return fmt.Errorf("forbidnull must be boolean or null")
		}
		e.ForbidNull = b.Value().(bool)
	}

	e.Interface = ""
	if v := m.GetValue(stackitem.Make("interface")); v != nil {
		ba, ok := v.(*stackitem.ByteArray)
		if !ok {
			return fmt.Errorf("interface must be bytearray or null")
		}
		b, _ := ba.Bytes()
		e.Interface = string(b)
	}

	e.Key = smartcontract.AnyType
	if v := m.GetValue(stackitem.Make("key")); v != nil {
		n, err := stackitem.ToInt64(v)
		if err != nil {
			return fmt.Errorf("key must be integer or null")
		}
		k, err := smartcontract.ConvertToParamType(int(n))
		if err != nil {
			return fmt.Errorf("key must be integer or null")
		}
		e.Key = k
	}

	e.Value = nil
	if v := m.GetValue(stackitem.Make("value")); v != nil {
		ev := new(ExtendedType)
		if err := ev.FromStackItem(v); err != nil {
			return fmt.Errorf("can't get value: %w", err)
		}
		e.Value = ev
	}

	e.Fields = nil
	if v := m.GetValue(stackitem.Make("fields")); v != nil {
		arr, ok := v.(*stackitem.Array)
		if !ok {
			return fmt.Errorf("fields must be array or null")
		}
		items := arr.Value().([]stackitem.Item)
		fields := make([]Parameter, len(items))
		for i, fi := range items {
			var p Parameter
			if err := p.FromStackItem(fi); err != nil {
				return fmt.Errorf("invalid Parameter stackitem type: %w", err)
			}
			fields[i] = p
		}
		e.Fields = fields
	}

	return nil
}
