package state

import (
	"fmt"

	"github.com/n3ledger/core/pkg/util"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// WhitelistFeeContract is a single entry of the Policy contract's method
// fee whitelist: a contract hash and method allowed to charge a custom,
// committee-set fee instead of the default per-instruction price.
type WhitelistFeeContract struct {
	Hash   util.Uint160
	Method string
	ArgCnt int
	Fee    int64
}

// ToStackItem implements the stackitem.Convertible interface.
func (c *WhitelistFeeContract) ToStackItem() (stackitem.Item, error) {
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray(c.Hash.BytesBE()),
		stackitem.Make(c.Method),
		stackitem.Make(c.ArgCnt),
		stackitem.Make(c.Fee),
	}), nil
}

// FromStackItem implements the stackitem.Convertible interface.
func (c *WhitelistFeeContract) FromStackItem(item stackitem.Item) error {
	st, ok := item.(*stackitem.Struct)
	if !ok {
		return fmt.Errorf("not a struct")
	}
	fields := st.Value().([]stackitem.Item)
	if len(fields) != 4 {
		return fmt.Errorf("invalid struct length: %d", len(fields))
	}
	hash, err := stackitem.ToUint160(fields[0])
	if err != nil {
		return fmt.Errorf("invalid hash: %w", err)
	}
	methodB, err := fields[1].Bytes()
	if err != nil {
		return fmt.Errorf("invalid method: %w", err)
	}
	argCnt, err := stackitem.ToInt32(fields[2])
	if err != nil {
		return fmt.Errorf("invalid argument count: %w", err)
	}
	fee, err := stackitem.ToInt64(fields[3])
	if err != nil {
		return fmt.Errorf("invalid fee: %w", err)
	}
	c.Hash = hash
	c.Method = string(methodB)
	c.ArgCnt = int(argCnt)
	c.Fee = fee
	return nil
}
