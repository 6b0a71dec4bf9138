package state

import (
	"fmt"
	"math/big"

	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// Deposit represents one depositor's notary balance: the amount locked and
// the chain height until which it stays locked.
type Deposit struct {
	Amount *big.Int
	Till   uint32
}

// ToStackItem implements the stackitem.Convertible interface.
func (d *Deposit) ToStackItem() (stackitem.Item, error) {
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewBigInteger(d.Amount),
		stackitem.NewBigInteger(big.NewInt(int64(d.Till))),
	}), nil
}

// FromStackItem implements the stackitem.Convertible interface.
func (d *Deposit) FromStackItem(item stackitem.Item) error {
	st, ok := item.(*stackitem.Struct)
	if !ok {
		return fmt.Errorf("not a struct")
	}
	fields := st.Value().([]stackitem.Item)
	if len(fields) != 2 {
		return fmt.Errorf("invalid deposit struct length: %d", len(fields))
	}
	amount, err := stackitem.ToBigInt(fields[0])
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	till, err := stackitem.ToUint32(fields[1])
	if err != nil {
		return fmt.Errorf("invalid till: %w", err)
	}
	d.Amount = amount
	d.Till = till
	return nil
}
