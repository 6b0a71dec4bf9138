package state

import (
	"math/big"

	"github.com/n3ledger/core/pkg/io"
	"github.com/n3ledger/core/pkg/util"
)

// TokenTransferBatchSize is the maximum number of transfers a single
// TokenTransferLog batch holds before the DAO layer rolls over to a new one.
const TokenTransferBatchSize = 128

// NEP17Transfer is a single NEP-17 token transfer, as recorded for a
// tracked account by the transfer-notification indexer.
type NEP17Transfer struct {
	Asset        int32
	Counterparty util.Uint160
	Amount       *big.Int
	Block        uint32
	Timestamp    uint64
	Tx           util.Uint256
}

// EncodeBinary implements the io.Serializable interface.
func (t *NEP17Transfer) EncodeBinary(w *io.BinWriter) {
	w.WriteU32LE(uint32(t.Asset))
	w.WriteBytes(t.Counterparty[:])
	amount := t.Amount
	if amount == nil {
		amount = big.NewInt(0)
	}
	w.WriteBool(amount.Sign() < 0)
	w.WriteVarBytes(amount.Bytes())
	w.WriteU32LE(t.Block)
	w.WriteU64LE(t.Timestamp)
	w.WriteBytes(t.Tx[:])
}

// DecodeBinary implements the io.Serializable interface.
func (t *NEP17Transfer) DecodeBinary(r *io.BinReader) {
	t.Asset = int32(r.ReadU32LE())
	r.ReadBytes(t.Counterparty[:])
	neg := r.ReadBool()
	data := r.ReadVarBytes()
	if r.Err != nil {
		return
	}
	amount := new(big.Int).SetBytes(data)
	if neg {
		amount.Neg(amount)
	}
	t.Amount = amount
	t.Block = r.ReadU32LE()
	t.Timestamp = r.ReadU64LE()
	r.ReadBytes(t.Tx[:])
}

// NEP11Transfer is a single NEP-11 (non-fungible) token transfer: a
// NEP17Transfer plus the transferred token ID.
type NEP11Transfer struct {
	NEP17Transfer
	ID []byte
}

// EncodeBinary implements the io.Serializable interface.
func (t *NEP11Transfer) EncodeBinary(w *io.BinWriter) {
	t.NEP17Transfer.EncodeBinary(w)
	w.WriteVarBytes(t.ID)
}

// DecodeBinary implements the io.Serializable interface.
func (t *NEP11Transfer) DecodeBinary(r *io.BinReader) {
	t.NEP17Transfer.DecodeBinary(r)
	t.ID = r.ReadVarBytes()
}

// TokenTransferLog is an append-only, length-prefixed log of serialized
// token transfers, stored and read back most-recent-first.
type TokenTransferLog struct {
	Raw []byte
}

// Size returns the number of transfers appended to the log.
func (lg *TokenTransferLog) Size() int {
	cnt := 0
	for i := 0; i < len(lg.Raw); {
		r := io.NewBinReaderFromBuf(lg.Raw[i:])
		ln := r.ReadVarUint()
		i += lenVarUintEncoded(ln) + int(ln)
		cnt++
	}
	return cnt
}

// Append serializes tr and adds it to the end of the log.
func (lg *TokenTransferLog) Append(tr io.Serializable) error {
	w := io.NewBufBinWriter()
	tr.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return w.Err
	}
	data := w.Bytes()

	buf := io.NewBufBinWriter()
	buf.BinWriter.WriteVarBytes(data)
	if buf.Err != nil {
		return buf.Err
	}
	lg.Raw = append(lg.Raw, buf.Bytes()...)
	return nil
}

func lenVarUintEncoded(v uint64) int {
	switch {
	case v < 0xfd:
		return 1
	case v <= 0xffff:
		return 3
	case v <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// ForEachNEP17 iterates over the log in the most-recent-first order,
// decoding each entry as a NEP17Transfer. It stops when f returns false
// or an error, returning whether it reached the end of the log.
func (lg *TokenTransferLog) ForEachNEP17(f func(*NEP17Transfer) (bool, error)) (bool, error) {
	cont, err := lg.forEach(func(data []byte) (bool, error) {
		tr := new(NEP17Transfer)
		r := io.NewBinReaderFromBuf(data)
		tr.DecodeBinary(r)
		if r.Err != nil {
			return false, r.Err
		}
		return f(tr)
	})
	return cont, err
}

// ForEachNEP11 iterates over the log in the most-recent-first order,
// decoding each entry as a NEP11Transfer. It stops when f returns false
// or an error, returning whether it reached the end of the log.
func (lg *TokenTransferLog) ForEachNEP11(f func(*NEP11Transfer) (bool, error)) (bool, error) {
	cont, err := lg.forEach(func(data []byte) (bool, error) {
		tr := new(NEP11Transfer)
		r := io.NewBinReaderFromBuf(data)
		tr.DecodeBinary(r)
		if r.Err != nil {
			return false, r.Err
		}
		return f(tr)
	})
	return cont, err
}

func (lg *TokenTransferLog) forEach(f func([]byte) (bool, error)) (bool, error) {
	type entry struct {
		off, ln int
	}
	var entries []entry
	for i := 0; i < len(lg.Raw); {
		r := io.NewBinReaderFromBuf(lg.Raw[i:])
		ln := r.ReadVarUint()
		if r.Err != nil {
			return false, r.Err
		}
		hdr := lenVarUintEncoded(ln)
		entries = append(entries, entry{off: i + hdr, ln: int(ln)})
		i += hdr + int(ln)
	}
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		cont, err := f(lg.Raw[e.off : e.off+e.ln])
		if err != nil {
			return false, err
		}
		if !cont {
			return false, nil
		}
	}
	return true, nil
}
