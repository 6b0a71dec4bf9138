package manifest

import (
	"fmt"

	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// Event represents a single notification a contract declares it may emit,
// identified by name and carrying a fixed set of typed parameters.
type Event struct {
	Name       string
	Parameters []Parameter
}

// NewEvent creates a new Event.
func NewEvent(name string, params ...Parameter) Event {
	return Event{Name: name, Parameters: params}
}

// IsValid checks that e has a name and that its parameters don't repeat
// names.
func (e *Event) IsValid() error {
	if e.Name == "" {
		return fmt.Errorf("event must have a name")
	}
	seen := make(map[string]bool, len(e.Parameters))
	for i := range e.Parameters {
		if seen[e.Parameters[i].Name] {
			return fmt.Errorf("duplicate event parameter name: %s", e.Parameters[i].Name)
		}
		seen[e.Parameters[i].Name] = true
	}
	return nil
}

// ToStackItem implements the Interoperable pattern.
func (e *Event) ToStackItem() stackitem.Item {
	params := make([]stackitem.Item, len(e.Parameters))
	for i := range e.Parameters {
		params[i] = e.Parameters[i].ToStackItem()
	}
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray([]byte(e.Name)),
		stackitem.NewArray(params),
	})
}

// FromStackItem implements the Interoperable pattern.
func (e *Event) FromStackItem(item stackitem.Item) error {
	st, ok := item.(*stackitem.Struct)
	if !ok {
		return fmt.Errorf("not a struct")
	}
	fields := st.Value().([]stackitem.Item)
	if len(fields) != 2 {
		return fmt.Errorf("invalid event struct length: %d", len(fields))
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
	e.Name = string(nameBytes)
	e.Parameters = params
	return nil
}
