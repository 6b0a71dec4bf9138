package state

import (
	"encoding/json"
	"fmt"

	"github.com/n3ledger/core/pkg/crypto/hash"
	"github.com/n3ledger/core/pkg/io"
	"github.com/n3ledger/core/pkg/smartcontract/manifest"
	"github.com/n3ledger/core/pkg/smartcontract/nef"
	"github.com/n3ledger/core/pkg/util"
	"github.com/n3ledger/core/pkg/vm/emit"
	"github.com/n3ledger/core/pkg/vm/opcode"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// Contract is the persisted record of one deployed contract: its
// ContractManagement-assigned ID, how many times it has been updated, its
// hash, and the NEF/manifest pair that define it.
type Contract struct {
	ID            int32
	UpdateCounter uint16
	Hash          util.Uint160
	NEF           nef.File
	Manifest      manifest.Manifest
}

// CreateContractHashableScript builds the tiny ABORT-guarded script whose
// hash is a contract's address: it can never run (ABORT is always the
// first instruction), it only exists to bind the deployer, the NEF
// checksum, and the contract name into one hash.
func CreateContractHashableScript(sender util.Uint160, nefCheckSum uint32, name string) []byte {
	w := io.NewBufBinWriter()
	emit.Opcodes(w.BinWriter, opcode.ABORT)
	emit.Bytes(w.BinWriter, sender.BytesBE())
	emit.Int(w.BinWriter, int64(nefCheckSum))
	emit.String(w.BinWriter, name)
	return w.Bytes()
}

// CreateContractHash derives the address a contract deployed by sender,
// with the given NEF checksum and manifest name, will be assigned.
func CreateContractHash(sender util.Uint160, nefCheckSum uint32, name string) util.Uint160 {
	return hash.Hash160(CreateContractHashableScript(sender, nefCheckSum, name))
}

// EncodeBinary implements the io.Serializable interface.
func (c *Contract) EncodeBinary(w *io.BinWriter) {
	w.WriteU32LE(uint32(c.ID))
	w.WriteU16LE(c.UpdateCounter)
	w.WriteBytes(c.Hash[:])
	c.NEF.EncodeBinary(w)
	if w.Err != nil {
		return
	}
	manifestB, err := json.Marshal(c.Manifest)
	if err != nil {
		w.Err = err
		return
	}
	w.WriteVarBytes(manifestB)
}

// DecodeBinary implements the io.Serializable interface.
func (c *Contract) DecodeBinary(r *io.BinReader) {
	c.ID = int32(r.ReadU32LE())
	c.UpdateCounter = r.ReadU16LE()
	r.ReadBytes(c.Hash[:])
	c.NEF.DecodeBinary(r)
	if r.Err != nil {
		return
	}
	manifestB := r.ReadVarBytes()
	if r.Err != nil {
		return
	}
	if err := json.Unmarshal(manifestB, &c.Manifest); err != nil {
		r.Err = err
	}
}

type contractAux struct {
	ID            int32             `json:"id"`
	UpdateCounter uint16            `json:"updatecounter"`
	Hash          util.Uint160      `json:"hash"`
	NEF           nef.File          `json:"nef"`
	Manifest      manifest.Manifest `json:"manifest"`
}

// MarshalJSON implements the json.Marshaler interface.
func (c Contract) MarshalJSON() ([]byte, error) {
	return json.Marshal(contractAux{
		ID:            c.ID,
		UpdateCounter: c.UpdateCounter,
		Hash:          c.Hash,
		NEF:           c.NEF,
		Manifest:      c.Manifest,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (c *Contract) UnmarshalJSON(data []byte) error {
	var aux contractAux
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.ID = aux.ID
	c.UpdateCounter = aux.UpdateCounter
	c.Hash = aux.Hash
	c.NEF = aux.NEF
	c.Manifest = aux.Manifest
	return nil
}

// ToStackItem implements the stackitem.Interoperable-style conversion
// ContractManagement's native methods return.
func (c *Contract) ToStackItem() (stackitem.Item, error) {
	nefBytes, err := c.NEF.Bytes()
	if err != nil {
		return nil, fmt.Errorf("invalid nef: %w", err)
	}
	manifestBytes, err := json.Marshal(c.Manifest)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.Make(int64(c.ID)),
		stackitem.Make(int64(c.UpdateCounter)),
		stackitem.NewByteArray(c.Hash.BytesBE()),
		stackitem.NewByteArray(nefBytes),
		stackitem.NewByteArray(manifestBytes),
	}), nil
}

// FromStackItem implements the stackitem.Convertible interface.
func (c *Contract) FromStackItem(item stackitem.Item) error {
	arr, ok := item.(*stackitem.Array)
	if !ok {
		if st, ok2 := item.(*stackitem.Struct); ok2 {
			return c.fromFields(st.Value().([]stackitem.Item))
		}
		return fmt.Errorf("not an array")
	}
	return c.fromFields(arr.Value().([]stackitem.Item))
}

func (c *Contract) fromFields(fields []stackitem.Item) error {
	if len(fields) != 5 {
		return fmt.Errorf("invalid contract array length: %d", len(fields))
	}
	id, err := stackitem.ToInt32(fields[0])
	if err != nil {
		return fmt.Errorf("id is not a number: %w", err)
	}
	counter, err := stackitem.ToUint16(fields[1])
	if err != nil {
		return fmt.Errorf("counter is not a number: %w", err)
	}
	h, err := stackitem.ToUint160(fields[2])
	if err != nil {
		return fmt.Errorf("invalid hash: %w", err)
	}
	nefBytes, err := fields[3].Bytes()
	if err != nil {
		return fmt.Errorf("invalid nef: %w", err)
	}
	nefFile, err := nef.FileFromBytes(nefBytes)
	if err != nil {
		return fmt.Errorf("invalid nef: %w", err)
	}
	manifestBytes, err := fields[4].Bytes()
	if err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}
	var m manifest.Manifest
	if err := json.Unmarshal(manifestBytes, &m); err != nil {
		return fmt.Errorf("manifest is not correct: %w", err)
	}
	c.ID = id
	c.UpdateCounter = counter
	c.Hash = h
	c.NEF = nefFile
	c.Manifest = m
	return nil
}
