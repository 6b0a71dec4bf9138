package state

import "github.com/n3ledger/core/pkg/io"

// StorageItem is the raw value half of a contract storage entry; the key
// half is tracked by the DAO layer alongside the owning contract ID.
type StorageItem struct {
	Value []byte
}

// EncodeBinary implements the io.Serializable interface.
func (si *StorageItem) EncodeBinary(w *io.BinWriter) {
	w.WriteVarBytes(si.Value)
}

// DecodeBinary implements the io.Serializable interface.
func (si *StorageItem) DecodeBinary(r *io.BinReader) {
	si.Value = r.ReadVarBytes()
}
