package nef

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/n3ledger/core/pkg/io"
	"github.com/n3ledger/core/pkg/smartcontract/callflag"
	"github.com/n3ledger/core/pkg/util"
)

// maxMethodLength is the maximum length of a referenced method's name.
const maxMethodLength = 32

// errInvalidMethodName is returned for a method token whose name starts
// with '_', the reserved prefix for special methods not callable this way.
var errInvalidMethodName = errors.New("method name should not start with '_'")

// errInvalidCallFlag is returned for a method token carrying call flag bits
// outside callflag.All.
var errInvalidCallFlag = errors.New("invalid call flag")

// MethodToken is a compile-time reference to a method of another contract,
// embedded in a NEF file so the contract can be called without resolving
// the target by name at every invocation.
type MethodToken struct {
	// Hash is the called contract's script hash.
	Hash util.Uint160
	// Method is the called method's name.
	Method string
	// ParamCount is the number of arguments the method takes.
	ParamCount byte
	// HasReturn denotes whether the method returns a value.
	HasReturn bool
	// CallFlag is the set of call flags the caller grants the callee.
	CallFlag callflag.CallFlag
}

// EncodeBinary implements the io.Serializable interface.
func (t *MethodToken) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(t.Hash[:])
	w.WriteString(t.Method)
	w.WriteU16LE(uint16(t.ParamCount))
	w.WriteBool(t.HasReturn)
	w.WriteB(byte(t.CallFlag))
}

// DecodeBinary implements the io.Serializable interface.
func (t *MethodToken) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(t.Hash[:])
	t.Method = r.ReadString(maxMethodLength)
	if r.Err != nil {
		return
	}
	if strings.HasPrefix(t.Method, "_") {
		r.Err = errInvalidMethodName
		return
	}
	t.ParamCount = byte(r.ReadU16LE())
	t.HasReturn = r.ReadBool()
	cf := r.ReadB()
	if r.Err != nil {
		return
	}
	if callflag.CallFlag(cf)&^callflag.All != 0 {
		r.Err = errInvalidCallFlag
		return
	}
	t.CallFlag = callflag.CallFlag(cf)
}

type methodTokenAux struct {
	Hash       string            `json:"hash"`
	Method     string            `json:"method"`
	ParamCount byte              `json:"paramcount"`
	HasReturn  bool              `json:"hasreturnvalue"`
	CallFlag   callflag.CallFlag `json:"callflags"`
}

// MarshalJSON implements the json.Marshaler interface.
func (t *MethodToken) MarshalJSON() ([]byte, error) {
	return json.Marshal(methodTokenAux{
		Hash:       "0x" + t.Hash.StringLE(),
		Method:     t.Method,
		ParamCount: t.ParamCount,
		HasReturn:  t.HasReturn,
		CallFlag:   t.CallFlag,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *MethodToken) UnmarshalJSON(data []byte) error {
	aux := new(methodTokenAux)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if strings.HasPrefix(aux.Method, "_") {
		return errInvalidMethodName
	}
	if aux.CallFlag&^callflag.All != 0 {
		return fmt.Errorf("%w: %d", errInvalidCallFlag, aux.CallFlag)
	}
	h, err := util.Uint160DecodeStringLE(strings.TrimPrefix(aux.Hash, "0x"))
	if err != nil {
		return err
	}
	t.Hash = h
	t.Method = aux.Method
	t.ParamCount = aux.ParamCount
	t.HasReturn = aux.HasReturn
	t.CallFlag = aux.CallFlag
	return nil
}
