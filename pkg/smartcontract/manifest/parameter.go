package manifest

import (
	"fmt"
	"math/big"

	"github.com/n3ledger/core/pkg/smartcontract"
	"github.com/n3ledger/core/pkg/vm/stackitem"
	"gopkg.in/yaml.v3"
)

// Parameter represents a single method parameter (or return value, or event
// argument) declared in a contract's ABI.
type Parameter struct {
	Name         string                     `json:"name"`
	Type         smartcontract.ParamType    `json:"type"`
	ExtendedType *ExtendedType              `json:"extendedtype,omitempty"`
}

// Parameters is a list of Parameter.
type Parameters []Parameter

// NewParameter creates a new Parameter with the given name and type.
func NewParameter(name string, typ smartcontract.ParamType) Parameter {
	return Parameter{Name: name, Type: typ}
}

// AreValid checks that every parameter has a name, a valid, non-Void type,
// a valid ExtendedType (if present), and that no two parameters share a
// name.
func (ps Parameters) AreValid() error {
	for i := range ps {
		if ps[i].Name == "" {
			return fmt.Errorf("parameter %d has no name", i)
		}
		typ, err := smartcontract.ConvertToParamType(int(ps[i].Type))
		if err != nil {
			return err
		}
		if typ == smartcontract.VoidType {
			return fmt.Errorf("parameter %s can't have Void type", ps[i].Name)
		}
		if ps[i].ExtendedType != nil {
			if err := ps[i].ExtendedType.IsValid(); err != nil {
				return fmt.Errorf("parameter %s: %w", ps[i].Name, err)
			}
		}
	}
	seen := make(map[string]bool, len(ps))
	for i := range ps {
		if seen[ps[i].Name] {
			return fmt.Errorf("duplicate parameter name: %s", ps[i].Name)
		}
		seen[ps[i].Name] = true
	}
	return nil
}

// ToStackItem implements the Interoperable pattern.
func (p *Parameter) ToStackItem() stackitem.Item {
	items := []stackitem.Item{
		stackitem.NewByteArray([]byte(p.Name)),
		stackitem.NewBigInteger(big.NewInt(int64(p.Type))),
	}
	if p.ExtendedType != nil {
		items = append(items, p.ExtendedType.ToStackItem())
	}
	return stackitem.NewStruct(items)
}

// FromStackItem implements the Interoperable pattern.
func (p *Parameter) FromStackItem(item stackitem.Item) error {
	st, ok := item.(*stackitem.Struct)
	if !ok {
		return fmt.Errorf("not a struct")
	}
	fields := st.Value().([]stackitem.Item)
	if len(fields) != 2 && len(fields) != 3 {
		return fmt.Errorf("invalid parameter struct length: %d", len(fields))
	}
	nameBytes, err := fields[0].Bytes()
	if err != nil {
		return fmt.Errorf("invalid name field: %w", err)
	}
	typVal, err := stackitem.ToInt64(fields[1])
	if err != nil {
		return fmt.Errorf("invalid type field: %w", err)
	}
	typ, err := smartcontract.ConvertToParamType(int(typVal))
	if err != nil {
		return err
	}
	p.Name = string(nameBytes)
	p.Type = typ
	p.ExtendedType = nil
	if len(fields) == 3 {
		et := new(ExtendedType)
		if err := et.FromStackItem(fields[2]); err != nil {
			return fmt.Errorf("invalid extended type field: %w", err)
		}
		p.ExtendedType = et
	}
	return nil
}

type parameterYAML struct {
	Name         *string       `yaml:"name"`
	Field        *string       `yaml:"field"`
	Type         *string       `yaml:"type"`
	ExtendedType *ExtendedType `yaml:"extendedtype"`
}

// UnmarshalYAML implements the yaml.Unmarshaler interface. It tolerates
// "field" as an alias for "name" (used when a Parameter describes a struct
// field nested inside an ExtendedType) and derives Type from ExtendedType
// when no explicit type is given, erroring if both are given and disagree.
func (p *Parameter) UnmarshalYAML(node *yaml.Node) error {
	var aux parameterYAML
	if err := node.Decode(&aux); err != nil {
		return err
	}
	switch {
	case aux.Name != nil:
		p.Name = *aux.Name
	case aux.Field != nil:
		p.Name = *aux.Field
	}
	var typ smartcontract.ParamType
	var typeSet bool
	if aux.Type != nil {
		t, err := smartcontract.ParseParamType(*aux.Type)
		if err != nil {
			return err
		}
		typ, typeSet = t, true
	}
	if aux.ExtendedType != nil {
		if typeSet && typ != aux.ExtendedType.Type {
			return fmt.Errorf("conflicting types for parameter %q", p.Name)
		}
		typ = aux.ExtendedType.Type
	}
	p.Type = typ
	p.ExtendedType = aux.ExtendedType
	return nil
}
