package state

import (
	"encoding/json"
	"fmt"

	"github.com/n3ledger/core/pkg/io"
	"github.com/n3ledger/core/pkg/smartcontract/trigger"
	"github.com/n3ledger/core/pkg/util"
	"github.com/n3ledger/core/pkg/vm"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// NotificationEvent is a single "Notify" produced by a contract during
// execution: its declared name and the state it attached, as described by
// NEP-14's event ABI.
type NotificationEvent struct {
	ScriptHash util.Uint160
	Name       string
	Item       *stackitem.Array
}

// EncodeBinary implements the io.Serializable interface.
func (n *NotificationEvent) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(n.ScriptHash[:])
	w.WriteString(n.Name)
	stackitem.EncodeBinaryStackItem(n.Item, w)
}

// DecodeBinary implements the io.Serializable interface.
func (n *NotificationEvent) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(n.ScriptHash[:])
	n.Name = r.ReadString()
	item := stackitem.DecodeBinaryStackItem(r)
	if r.Err != nil {
		return
	}
	arr, ok := item.(*stackitem.Array)
	if !ok {
		r.Err = fmt.Errorf("notification state is not an array")
		return
	}
	n.Item = arr
}

type notificationEventAux struct {
	Contract util.Uint160    `json:"contract"`
	Name     string          `json:"eventname"`
	Item     json.RawMessage `json:"state"`
}

// MarshalJSON implements the json.Marshaler interface.
func (n NotificationEvent) MarshalJSON() ([]byte, error) {
	state, err := stackitem.MarshalJSONWithTypes(n.Item)
	if err != nil {
		state = []byte("null")
	}
	return json.Marshal(notificationEventAux{
		Contract: n.ScriptHash,
		Name:     n.Name,
		Item:     state,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (n *NotificationEvent) UnmarshalJSON(data []byte) error {
	var aux notificationEventAux
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	item, err := stackitem.UnmarshalJSONWithTypes(aux.Item)
	if err != nil {
		return fmt.Errorf("invalid notification state: %w", err)
	}
	arr, ok := item.(*stackitem.Array)
	if !ok {
		return fmt.Errorf("notification state is not an array")
	}
	n.ScriptHash = aux.Contract
	n.Name = aux.Name
	n.Item = arr
	return nil
}

// Execution describes the outcome of a single trigger's execution: the VM's
// terminal state, the gas it consumed, the values it left on its result
// stack, and any notifications it emitted along the way.
type Execution struct {
	Trigger        trigger.Type
	VMState        vm.State
	GasConsumed    int64
	Stack          []stackitem.Item
	Events         []NotificationEvent
	FaultException string
}

// AppExecResult represents the log of a single trigger's execution against
// a specific container (a transaction hash, or a block hash for
// OnPersist/PostPersist).
type AppExecResult struct {
	Container util.Uint256
	Execution
}

// EncodeBinary implements the io.Serializable interface.
func (aer *AppExecResult) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(aer.Container[:])
	w.WriteB(byte(aer.Trigger))
	w.WriteB(byte(aer.VMState))
	w.WriteString(aer.FaultException)
	w.WriteU64LE(uint64(aer.GasConsumed))
	w.WriteArray(len(aer.Stack), func(i int) {
		stackitem.EncodeBinaryStackItem(aer.Stack[i], w)
	})
	w.WriteArray(len(aer.Events), func(i int) {
		aer.Events[i].EncodeBinary(w)
	})
}

// DecodeBinary implements the io.Serializable interface.
func (aer *AppExecResult) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(aer.Container[:])
	aer.Trigger = trigger.Type(r.ReadB())
	aer.VMState = vm.State(r.ReadB())
	aer.FaultException = r.ReadString()
	aer.GasConsumed = int64(r.ReadU64LE())
	if r.Err != nil {
		return
	}
	aer.Stack = nil
	r.ReadArray(func() {
		item := stackitem.DecodeBinaryStackItem(r)
		if r.Err != nil {
			return
		}
		aer.Stack = append(aer.Stack, item)
	})
	if r.Err != nil {
		return
	}
	aer.Events = nil
	r.ReadArray(func() {
		var ne NotificationEvent
		ne.DecodeBinary(r)
		aer.Events = append(aer.Events, ne)
	})
}

type aerAux struct {
	Container      util.Uint256        `json:"container"`
	Trigger        string              `json:"trigger"`
	VMState        string              `json:"vmstate"`
	GasConsumed    int64Str            `json:"gasconsumed"`
	Stack          []json.RawMessage   `json:"stack"`
	FaultException string              `json:"exception,omitempty"`
	Events         []NotificationEvent `json:"notifications"`
}

// int64Str marshals an int64 as a JSON string, matching the RPC schema's
// "gasconsumed" field (a decimal string, to sidestep precision loss for
// large amounts in JS clients).
type int64Str int64

// MarshalJSON implements the json.Marshaler interface.
func (v int64Str) MarshalJSON() ([]byte, error) {
	return json.Marshal(fmt.Sprintf("%d", int64(v)))
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (v *int64Str) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	var n int64
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return fmt.Errorf("invalid gasconsumed: %w", err)
	}
	*v = int64Str(n)
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (aer AppExecResult) MarshalJSON() ([]byte, error) {
	stack := make([]json.RawMessage, len(aer.Stack))
	for i, it := range aer.Stack {
		b, err := stackitem.MarshalJSONWithTypes(it)
		if err != nil {
			b = []byte(`{"type":"Any"}`)
		}
		stack[i] = b
	}
	events := aer.Events
	if events == nil {
		events = []NotificationEvent{}
	}
	return json.Marshal(aerAux{
		Container:      aer.Container,
		Trigger:        aer.Trigger.String(),
		VMState:        aer.VMState.String(),
		GasConsumed:    int64Str(aer.GasConsumed),
		Stack:          stack,
		FaultException: aer.FaultException,
		Events:         events,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (aer *AppExecResult) UnmarshalJSON(data []byte) error {
	var aux aerAux
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	trig, err := trigger.FromString(aux.Trigger)
	if err != nil {
		return err
	}
	vmState, err := vm.StateFromString(aux.VMState)
	if err != nil {
		return err
	}
	stack := make([]stackitem.Item, 0, len(aux.Stack))
	for _, raw := range aux.Stack {
		it, err := stackitem.UnmarshalJSONWithTypes(raw)
		if err != nil {
			stack = nil
			break
		}
		stack = append(stack, it)
	}
	aer.Container = aux.Container
	aer.Trigger = trig
	aer.VMState = vmState
	aer.GasConsumed = int64(aux.GasConsumed)
	aer.Stack = stack
	aer.Events = aux.Events
	aer.FaultException = aux.FaultException
	return nil
}
