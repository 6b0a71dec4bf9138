package manifest

import (
	"fmt"

	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// ABI represents a contract's application binary interface: the methods it
// exposes and the events it may emit.
type ABI struct {
	Methods []Method
	Events  []Event
}

func methodSignature(m *Method) string {
	sig := m.Name
	for i := range m.Parameters {
		sig += fmt.Sprintf("|%d", m.Parameters[i].Type)
	}
	return sig
}

// IsValid checks that a has at least one method, that no two methods share
// both name and parameter signature, that every method has a valid,
// non-negative offset, and that events (if any) have non-empty, unique
// names.
func (a *ABI) IsValid() error {
	if len(a.Methods) == 0 {
		return fmt.Errorf("ABI must have at least one method")
	}
	seen := make(map[string]bool, len(a.Methods))
	for i := range a.Methods {
		if a.Methods[i].Offset < 0 {
			return fmt.Errorf("method %s has a negative offset", a.Methods[i].Name)
		}
		sig := methodSignature(&a.Methods[i])
		if seen[sig] {
			return fmt.Errorf("duplicate method: %s", a.Methods[i].Name)
		}
		seen[sig] = true
	}
	seenEvents := make(map[string]bool, len(a.Events))
	for i := range a.Events {
		if err := a.Events[i].IsValid(); err != nil {
			return err
		}
		if seenEvents[a.Events[i].Name] {
			return fmt.Errorf("duplicate event: %s", a.Events[i].Name)
		}
		seenEvents[a.Events[i].Name] = true
	}
	return nil
}

// GetMethod looks up a method by name and parameter count, as required for
// NEP-14 method overloading (-1 matches any parameter count).
func (a *ABI) GetMethod(name string, paramCount int) *Method {
	for i := range a.Methods {
		if a.Methods[i].Name == name && (paramCount == -1 || len(a.Methods[i].Parameters) == paramCount) {
			return &a.Methods[i]
		}
	}
	return nil
}

// GetEvent looks up an event by name.
func (a *ABI) GetEvent(name string) *Event {
	for i := range a.Events {
		if a.Events[i].Name == name {
			return &a.Events[i]
		}
	}
	return nil
}

// ToStackItem implements the Interoperable pattern.
func (a *ABI) ToStackItem() stackitem.Item {
	methods := make([]stackitem.Item, len(a.Methods))
	for i := range a.Methods {
		methods[i] = a.Methods[i].ToStackItem()
	}
	events := make([]stackitem.Item, len(a.Events))
	for i := range a.Events {
		events[i] = a.Events[i].ToStackItem()
	}
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewArray(methods),
		stackitem.NewArray(events),
	})
}

// FromStackItem implements the Interoperable pattern.
func (a *ABI) FromStackItem(item stackitem.Item) error {
	st, ok := item.(*stackitem.Struct)
	if !ok {
		return fmt.Errorf("not a struct")
	}
	fields := st.Value().([]stackitem.Item)
	if len(fields) != 2 {
		return fmt.Errorf("invalid ABI struct length: %d", len(fields))
	}
	methodsArr, ok := fields[0].(*stackitem.Array)
	if !ok {
		return fmt.Errorf("invalid methods field type")
	}
	methodItems := methodsArr.Value().([]stackitem.Item)
	methods := make([]Method, len(methodItems))
	for i, mi := range methodItems {
		var m Method
		if err := m.FromStackItem(mi); err != nil {
			return fmt.Errorf("invalid method %d: %w", i, err)
		}
		methods[i] = m
	}
	eventsArr, ok := fields[1].(*stackitem.Array)
	if !ok {
		return fmt.Errorf("invalid events field type")
	}
	eventItems := eventsArr.Value().([]stackitem.Item)
	events := make([]Event, len(eventItems))
	for i, ei := range eventItems {
		var e Event
		if err := e.FromStackItem(ei); err != nil {
			return fmt.Errorf("invalid event %d: %w", i, err)
		}
		events[i] = e
	}
	a.Methods = methods
	a.Events = events
	return nil
}
