package state

import (
	"encoding/json"

	"github.com/n3ledger/core/pkg/core/transaction"
	"github.com/n3ledger/core/pkg/io"
	"github.com/n3ledger/core/pkg/util"
)

// MPTRoot is the state root of one block: the hash of the top MPT node
// after that block's transactions have been applied, signed by the
// consensus committee the way a block header itself is.
type MPTRoot struct {
	Version byte
	Index   uint32
	Root    util.Uint256
	Witness []transaction.Witness
}

// EncodeBinary implements the io.Serializable interface.
func (s *MPTRoot) EncodeBinary(w *io.BinWriter) {
	w.WriteB(s.Version)
	w.WriteU32LE(s.Index)
	w.WriteBytes(s.Root[:])
	w.WriteArray(len(s.Witness), func(i int) {
		s.Witness[i].EncodeBinary(w)
	})
}

// DecodeBinary implements the io.Serializable interface.
func (s *MPTRoot) DecodeBinary(r *io.BinReader) {
	s.Version = r.ReadB()
	s.Index = r.ReadU32LE()
	r.ReadBytes(s.Root[:])
	if r.Err != nil {
		return
	}
	s.Witness = nil
	r.ReadArray(func() {
		var w transaction.Witness
		w.DecodeBinary(r)
		s.Witness = append(s.Witness, w)
	})
}

type mptRootAux struct {
	Version byte                   `json:"version"`
	Index   uint32                 `json:"index"`
	Root    util.Uint256           `json:"roothash"`
	Witness []transaction.Witness  `json:"witnesses,omitempty"`
}

// MarshalJSON implements the json.Marshaler interface.
func (s MPTRoot) MarshalJSON() ([]byte, error) {
	return json.Marshal(&mptRootAux{
		Version: s.Version,
		Index:   s.Index,
		Root:    s.Root,
		Witness: s.Witness,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *MPTRoot) UnmarshalJSON(data []byte) error {
	var aux mptRootAux
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.Version = aux.Version
	s.Index = aux.Index
	s.Root = aux.Root
	s.Witness = aux.Witness
	if s.Witness == nil {
		s.Witness = []transaction.Witness{}
	}
	return nil
}
