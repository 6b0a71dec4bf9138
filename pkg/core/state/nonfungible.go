package state

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/n3ledger/core/pkg/io"
	"github.com/n3ledger/core/pkg/util"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// NFTTokenState is the per-token storage record of a non-divisible NEP-11
// contract: who owns the token and the name it was minted with. Extra
// trailing struct fields are tolerated on decode for forward compatibility.
type NFTTokenState struct {
	Owner util.Uint160
	Name  string
}

// ToStackItem implements the stackitem.Interoperable-style conversion used
// throughout the native contract state.
func (s *NFTTokenState) ToStackItem() stackitem.Item {
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray(s.Owner.BytesBE()),
		stackitem.NewByteArray([]byte(s.Name)),
	})
}

// FromStackItem restores s from its stack item representation.
func (s *NFTTokenState) FromStackItem(item stackitem.Item) error {
	st, ok := item.(*stackitem.Struct)
	if !ok {
		return fmt.Errorf("not a struct")
	}
	fields := st.Value().([]stackitem.Item)
	if len(fields) < 2 {
		return fmt.Errorf("invalid struct length: %d", len(fields))
	}
	owner, err := stackitem.ToUint160(fields[0])
	if err != nil {
		return fmt.Errorf("invalid owner: %w", err)
	}
	nameB, err := fields[1].Bytes()
	if err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}
	if !utf8.Valid(nameB) {
		return fmt.Errorf("invalid name: not valid utf8")
	}
	s.Owner = owner
	s.Name = string(nameB)
	return nil
}

// EncodeBinary implements the io.Serializable interface.
func (s *NFTTokenState) EncodeBinary(w *io.BinWriter) {
	stackitem.EncodeBinaryStackItem(s.ToStackItem(), w)
}

// DecodeBinary implements the io.Serializable interface.
func (s *NFTTokenState) DecodeBinary(r *io.BinReader) {
	item := stackitem.DecodeBinaryStackItem(r)
	if r.Err != nil {
		return
	}
	if item == nil {
		r.Err = fmt.Errorf("invalid NFT token state item")
		return
	}
	if err := s.FromStackItem(item); err != nil {
		r.Err = err
	}
}

// ID is the token's content-derived identifier: the hash of the owner it
// was minted to and the name it was minted with.
func (s *NFTTokenState) ID() []byte {
	h := sha256.New()
	ownerB := s.Owner.BytesBE()
	h.Write(ownerB[:])
	h.Write([]byte(s.Name))
	sum := h.Sum(nil)
	return sum
}

// ToMap renders the token's externally visible NEP-11 properties.
func (s *NFTTokenState) ToMap() *stackitem.Map {
	m := stackitem.NewMap()
	m.Add(stackitem.Make("name"), stackitem.Make(s.Name))
	return m
}

// NEP17BalanceState is the common NEP-17 balance record embedded by
// divisible and non-divisible token account states.
type NEP17BalanceState struct {
	Balance big.Int
}

// NFTAccountState is the per-account storage record of a non-divisible
// NEP-11 contract: the account's total balance and the set of token IDs it
// owns.
type NFTAccountState struct {
	NEP17BalanceState
	Tokens [][]byte
}

// ToStackItem implements the stackitem.Interoperable-style conversion.
func (s *NFTAccountState) ToStackItem() stackitem.Item {
	tokens := make([]stackitem.Item, len(s.Tokens))
	for i, t := range s.Tokens {
		tokens[i] = stackitem.NewByteArray(t)
	}
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewBigInteger(&s.Balance),
		stackitem.NewArray(tokens),
	})
}

// FromStackItem restores s from its stack item representation.
func (s *NFTAccountState) FromStackItem(item stackitem.Item) error {
	st, ok := item.(*stackitem.Struct)
	if !ok {
		return fmt.Errorf("not a struct")
	}
	fields := st.Value().([]stackitem.Item)
	if len(fields) != 2 {
		return fmt.Errorf("invalid struct length: %d", len(fields))
	}
	bal, err := stackitem.ToBigInt(fields[0])
	if err != nil {
		return fmt.Errorf("invalid balance: %w", err)
	}
	arr, ok := fields[1].(*stackitem.Array)
	if !ok {
		return fmt.Errorf("not an array")
	}
	items := arr.Value().([]stackitem.Item)
	tokens := make([][]byte, len(items))
	for i, it := range items {
		b, err := it.Bytes()
		if err != nil {
			return fmt.Errorf("invalid token id: %w", err)
		}
		tokens[i] = b
	}
	s.Balance = *bal
	s.Tokens = tokens
	return nil
}

// EncodeBinary implements the io.Serializable interface.
func (s *NFTAccountState) EncodeBinary(w *io.BinWriter) {
	stackitem.EncodeBinaryStackItem(s.ToStackItem(), w)
}

// DecodeBinary implements the io.Serializable interface.
func (s *NFTAccountState) DecodeBinary(r *io.BinReader) {
	item := stackitem.DecodeBinaryStackItem(r)
	if r.Err != nil {
		return
	}
	if item == nil {
		r.Err = fmt.Errorf("invalid NFT account state item")
		return
	}
	if err := s.FromStackItem(item); err != nil {
		r.Err = err
	}
}

// Add records ownership of id, incrementing the balance. It returns false
// (a no-op) if id is already owned.
func (s *NFTAccountState) Add(id []byte) bool {
	for _, t := range s.Tokens {
		if string(t) == string(id) {
			return false
		}
	}
	s.Tokens = append(s.Tokens, id)
	s.Balance.Add(&s.Balance, big.NewInt(1))
	return true
}

// Remove drops ownership of id, decrementing the balance. It returns false
// (a no-op) if id isn't owned.
func (s *NFTAccountState) Remove(id []byte) bool {
	for i, t := range s.Tokens {
		if string(t) == string(id) {
			s.Tokens = append(s.Tokens[:i], s.Tokens[i+1:]...)
			s.Balance.Sub(&s.Balance, big.NewInt(1))
			return true
		}
	}
	return false
}
