package transaction

import (
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/n3ledger/core/pkg/io"
)

// MaxInvocationScript is the maximum length, in bytes, of a witness
// invocation script.
const MaxInvocationScript = 1024

// MaxVerificationScript is the maximum length, in bytes, of a witness
// verification script.
const MaxVerificationScript = 1024

// Witness contains the invocation and verification scripts used to validate
// a transaction or block witness scope (spec.md §4.2).
type Witness struct {
	InvocationScript   []byte
	VerificationScript []byte
}

// EncodeBinary implements the io.Serializable interface.
func (w *Witness) EncodeBinary(bw *io.BinWriter) {
	bw.WriteVarBytes(w.InvocationScript)
	bw.WriteVarBytes(w.VerificationScript)
}

// DecodeBinary implements the io.Serializable interface.
func (w *Witness) DecodeBinary(br *io.BinReader) {
	w.InvocationScript = br.ReadVarBytes(MaxInvocationScript)
	if br.Err != nil {
		return
	}
	w.VerificationScript = br.ReadVarBytes(MaxVerificationScript)
}

// Copy returns a deep copy of w.
func (w Witness) Copy() Witness {
	return Witness{
		InvocationScript:   append([]byte{}, w.InvocationScript...),
		VerificationScript: append([]byte{}, w.VerificationScript...),
	}
}

type witnessAux struct {
	Invocation   string `json:"invocation"`
	Verification string `json:"verification"`
}

// MarshalJSON implements the json.Marshaler interface.
func (w Witness) MarshalJSON() ([]byte, error) {
	return json.Marshal(witnessAux{
		Invocation:   base64.StdEncoding.EncodeToString(w.InvocationScript),
		Verification: base64.StdEncoding.EncodeToString(w.VerificationScript),
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (w *Witness) UnmarshalJSON(data []byte) error {
	aux := new(witnessAux)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	inv, err := base64.StdEncoding.DecodeString(aux.Invocation)
	if err != nil {
		return errors.New("invalid invocation script encoding")
	}
	ver, err := base64.StdEncoding.DecodeString(aux.Verification)
	if err != nil {
		return errors.New("invalid verification script encoding")
	}
	w.InvocationScript = inv
	w.VerificationScript = ver
	return nil
}
