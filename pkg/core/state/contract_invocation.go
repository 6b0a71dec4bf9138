package state

import (
	"encoding/json"
	"errors"

	"github.com/n3ledger/core/pkg/io"
	"github.com/n3ledger/core/pkg/util"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

var errNotAnArray = errors.New("not an array")

// ContractInvocation is a single entry of a transaction's or block's
// invocation tree: the contract called, the method, and the arguments it
// was called with (unless the trace was truncated to bound log size).
type ContractInvocation struct {
	Hash           util.Uint160
	Method         string
	Arguments      *stackitem.Array
	ArgumentsCount int
	Truncated      bool
}

// NewContractInvocation builds a ContractInvocation, decoding argBytes (the
// pre-serialized argument array) when present. A nil argBytes, or one that
// doesn't decode to an Array, marks the entry Truncated instead of failing
// the whole invocation trace.
func NewContractInvocation(hash util.Uint160, method string, argBytes []byte, argumentsCount int) *ContractInvocation {
	ci := &ContractInvocation{
		Hash:           hash,
		Method:         method,
		ArgumentsCount: argumentsCount,
	}
	if argBytes == nil {
		ci.Truncated = true
		return ci
	}
	item, err := stackitem.Deserialize(argBytes)
	if err != nil {
		ci.Truncated = true
		return ci
	}
	arr, ok := item.(*stackitem.Array)
	if !ok {
		ci.Truncated = true
		return ci
	}
	ci.Arguments = arr
	return ci
}

// EncodeBinary implements the io.Serializable interface.
func (c *ContractInvocation) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(c.Hash[:])
	w.WriteString(c.Method)
	w.WriteBool(c.Truncated)
	w.WriteVarUint(uint64(c.ArgumentsCount))
	if c.Truncated {
		return
	}
	data, err := stackitem.Serialize(c.Arguments)
	if err != nil {
		w.Err = err
		return
	}
	w.WriteVarBytes(data)
}

// DecodeBinary implements the io.Serializable interface.
func (c *ContractInvocation) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(c.Hash[:])
	c.Method = r.ReadString()
	c.Truncated = r.ReadBool()
	c.ArgumentsCount = int(r.ReadVarUint())
	if r.Err != nil || c.Truncated {
		return
	}
	data := r.ReadVarBytes(stackitem.MaxSize)
	if r.Err != nil {
		return
	}
	item, err := stackitem.Deserialize(data)
	if err != nil {
		r.Err = err
		return
	}
	arr, ok := item.(*stackitem.Array)
	if !ok {
		r.Err = errNotAnArray
		return
	}
	c.Arguments = arr
}

type contractInvocationAux struct {
	Hash           util.Uint160    `json:"hash"`
	Method         string          `json:"method"`
	Arguments      json.RawMessage `json:"arguments,omitempty"`
	ArgumentsCount int             `json:"argumentscount"`
	Truncated      bool            `json:"truncated"`
}

// MarshalJSON implements the json.Marshaler interface.
func (c ContractInvocation) MarshalJSON() ([]byte, error) {
	aux := contractInvocationAux{
		Hash:           c.Hash,
		Method:         c.Method,
		ArgumentsCount: c.ArgumentsCount,
		Truncated:      c.Truncated,
	}
	if c.Arguments != nil {
		data, err := stackitem.MarshalJSONWithTypes(c.Arguments)
		if err != nil {
			return nil, err
		}
		aux.Arguments = data
	}
	return json.Marshal(&aux)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (c *ContractInvocation) UnmarshalJSON(data []byte) error {
	var aux contractInvocationAux
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.Hash = aux.Hash
	c.Method = aux.Method
	c.ArgumentsCount = aux.ArgumentsCount
	c.Truncated = aux.Truncated
	if len(aux.Arguments) == 0 {
		return nil
	}
	item, err := stackitem.UnmarshalJSONWithTypes(aux.Arguments)
	if err != nil {
		return err
	}
	arr, ok := item.(*stackitem.Array)
	if !ok {
		return errNotAnArray
	}
	c.Arguments = arr
	return nil
}
