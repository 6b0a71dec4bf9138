package state

import (
	"fmt"
	"math/big"

	"github.com/n3ledger/core/pkg/crypto/keys"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// NEP17Balance is the native GAS/NEO per-account balance record: a single
// bounded BigInteger wrapped in a one-field struct.
type NEP17Balance struct {
	Balance big.Int
}

// ToStackItem implements the stackitem.Convertible interface.
func (b *NEP17Balance) ToStackItem() (stackitem.Item, error) {
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewBigInteger(&b.Balance),
	}), nil
}

// FromStackItem implements the stackitem.Convertible interface.
func (b *NEP17Balance) FromStackItem(item stackitem.Item) error {
	st, ok := item.(*stackitem.Struct)
	if !ok {
		return fmt.Errorf("not a struct")
	}
	fields := st.Value().([]stackitem.Item)
	if len(fields) != 1 {
		return fmt.Errorf("invalid struct length: %d", len(fields))
	}
	bal, err := stackitem.ToBigInt(fields[0])
	if err != nil {
		return fmt.Errorf("invalid balance: %w", err)
	}
	b.Balance = *bal
	return nil
}

// Bytes serializes the balance to its storage-item representation,
// appending to buf's backing array when it has spare capacity.
func (b *NEP17Balance) Bytes(buf []byte) []byte {
	data, err := stackitem.SerializeConvertible(b)
	if err != nil {
		panic(fmt.Errorf("unexpected NEP17Balance serialization failure: %w", err))
	}
	return append(buf[:0], data...)
}

// NEP17BalanceFromBytes decodes a balance from its storage-item bytes. A
// nil slice is treated as a zero balance, the value an absent storage
// entry represents.
func NEP17BalanceFromBytes(data []byte) (*NEP17Balance, error) {
	b := new(NEP17Balance)
	if data == nil {
		return b, nil
	}
	if err := stackitem.DeserializeConvertible(data, b); err != nil {
		return nil, err
	}
	return b, nil
}

// NEOBalance is the NEO native contract's per-account record: a
// NEP17Balance plus NEO-specific committee voting bookkeeping.
type NEOBalance struct {
	NEP17Balance
	BalanceHeight  uint32
	VoteTo         *keys.PublicKey
	LastGasPerVote big.Int
}

// ToStackItem implements the stackitem.Convertible interface.
func (b *NEOBalance) ToStackItem() (stackitem.Item, error) {
	var voteTo stackitem.Item = stackitem.Null{}
	if b.VoteTo != nil {
		voteTo = stackitem.NewByteArray(b.VoteTo.Bytes())
	}
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewBigInteger(&b.Balance),
		stackitem.NewBigInteger(new(big.Int).SetUint64(uint64(b.BalanceHeight))),
		voteTo,
		stackitem.NewBigInteger(&b.LastGasPerVote),
	}), nil
}

// FromStackItem implements the stackitem.Convertible interface.
func (b *NEOBalance) FromStackItem(item stackitem.Item) error {
	st, ok := item.(*stackitem.Struct)
	if !ok {
		return fmt.Errorf("not a struct")
	}
	fields := st.Value().([]stackitem.Item)
	if len(fields) != 4 {
		return fmt.Errorf("invalid struct length: %d", len(fields))
	}
	bal, err := stackitem.ToBigInt(fields[0])
	if err != nil {
		return fmt.Errorf("invalid balance: %w", err)
	}
	height, err := stackitem.ToUint32(fields[1])
	if err != nil {
		return fmt.Errorf("invalid balance height: %w", err)
	}
	var voteTo *keys.PublicKey
	if _, isNull := fields[2].(stackitem.Null); !isNull {
		vb, err := fields[2].Bytes()
		if err != nil {
			return fmt.Errorf("invalid vote target: %w", err)
		}
		pk, err := keys.NewPublicKeyFromBytes(vb)
		if err != nil {
			return fmt.Errorf("invalid vote target: %w", err)
		}
		voteTo = pk
	}
	lastGps, err := stackitem.ToBigInt(fields[3])
	if err != nil {
		return fmt.Errorf("invalid last gas per vote: %w", err)
	}
	b.Balance = *bal
	b.BalanceHeight = height
	b.VoteTo = voteTo
	b.LastGasPerVote = *lastGps
	return nil
}
