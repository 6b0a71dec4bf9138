package manifest

import (
	"fmt"
	"math/big"

	"github.com/n3ledger/core/pkg/smartcontract"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// Method represents a single method of a contract's ABI: its name, the
// parameters it takes, the bytecode offset it starts at, its return type,
// and whether it can safely be called without side effects (and thus
// without a witness check).
type Method struct {
	Name       string
	Parameters []Parameter
	ReturnType smartcontract.ParamType
	Offset     int
	Safe       bool
}

// NewMethod creates a new Method at the given offset.
func NewMethod(name string, retType smartcontract.ParamType, offset int, safe bool, params ...Parameter) Method {
	return Method{
		Name:       name,
		Parameters: params,
		ReturnType: retType,
		Offset:     offset,
		Safe:       safe,
	}
}

// ToStackItem implements the Interoperable pattern.
func (m *Method) ToStackItem() stackitem.Item {
	params := make([]stackitem.Item, len(m.Parameters))
	for i := range m.Parameters {
		params[i] = m.Parameters[i].ToStackItem()
	}
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray([]byte(m.Name)),
		stackitem.NewArray(params),
		stackitem.NewBigInteger(big.NewInt(int64(m.ReturnType))),
		stackitem.NewBigInteger(big.NewInt(int64(m.Offset))),
		stackitem.NewBool(m.Safe),
	})
}

// FromStackItem implements the Interoperable pattern.
func (m *Method) FromStackItem(item stackitem.Item) error {
	st, ok := item.(*stackitem.Struct)
	if !ok {
		return fmt.Errorf("not a struct")
	}
	fields := st.Value().([]stackitem.Item)
	if len(fields) != 5 {
		return fmt.Errorf("invalid method struct length: %d", len(fields))
	}
	nameBytes, err := fields[0].Bytes()
	if err != nil {
		return fmt.Errorf("invalid name field: %w", err)
	}
	paramsArr, ok := fields[1].(*stackitem.Array)
	if !ok {
		return fmt.Errorf("invalid parameters field type")
	}
	paramItems := paramsArr.Value().([]stackitem.Item)
	params := make([]Parameter, len(paramItems))
	for i, pi := range paramItems {
		var p Parameter
		if err := p.FromStackItem(pi); err != nil {
			return fmt.Errorf("invalid parameter %d: %w", i, err)
		}
		params[i] = p
	}
	retVal, err := stackitem.ToInt64(fields[2])
	if err != nil {
		return fmt.Errorf("invalid return type field: %w", err)
	}
	retType, err := smartcontract.ConvertToParamType(int(retVal))
	if err != nil {
		return fmt.Errorf("invalid return type field: %w", err)
	}
	offsetVal, err := stackitem.ToInt64(fields[3])
	if err != nil {
		return fmt.Errorf("invalid offset field: %w", err)
	}
	safe, err := fields[4].TryBool()
	if err != nil {
		return fmt.Errorf("invalid safe field: %w", err)
	}
	m.Name = string(nameBytes)
	m.Parameters = params
	m.ReturnType = retType
	m.Offset = int(offsetVal)
	m.Safe = safe
	return nil
}
