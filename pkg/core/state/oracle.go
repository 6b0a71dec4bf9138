package state

import (
	"fmt"
	"math/big"

	"github.com/n3ledger/core/pkg/util"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// OracleRequest represents a single outstanding Oracle.Request: the
// original transaction it was raised from, the gas set aside to pay for
// the response, and the callback the response is delivered to.
type OracleRequest struct {
	OriginalTxID     util.Uint256
	GasForResponse   uint64
	URL              string
	Filter           *string
	CallbackContract util.Uint160
	CallbackMethod   string
	UserData         []byte
}

// ToStackItem implements the stackitem.Convertible interface.
func (r *OracleRequest) ToStackItem() (stackitem.Item, error) {
	var filter stackitem.Item = stackitem.Null{}
	if r.Filter != nil {
		filter = stackitem.NewByteArray([]byte(*r.Filter))
	}
	return stackitem.NewArray([]stackitem.Item{
		stackitem.NewByteArray(r.OriginalTxID.BytesBE()),
		stackitem.NewBigInteger(new(big.Int).SetUint64(r.GasForResponse)),
		stackitem.NewByteArray([]byte(r.URL)),
		filter,
		stackitem.NewByteArray(r.CallbackContract.BytesBE()),
		stackitem.NewByteArray([]byte(r.CallbackMethod)),
		stackitem.NewByteArray(r.UserData),
	}), nil
}

// FromStackItem implements the stackitem.Convertible interface.
func (r *OracleRequest) FromStackItem(item stackitem.Item) error {
	arr, ok := item.(*stackitem.Array)
	if !ok {
		return fmt.Errorf("not an array")
	}
	fields := arr.Value().([]stackitem.Item)
	if len(fields) != 7 {
		return fmt.Errorf("invalid oracle request array length: %d", len(fields))
	}
	txID, err := stackitem.ToUint256(fields[0])
	if err != nil {
		return fmt.Errorf("invalid original tx id: %w", err)
	}
	gas, err := stackitem.ToUint64(fields[1])
	if err != nil {
		return fmt.Errorf("invalid gas for response: %w", err)
	}
	urlB, err := fields[2].Bytes()
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	var filter *string
	if _, isNull := fields[3].(stackitem.Null); !isNull {
		fb, err := fields[3].Bytes()
		if err != nil {
			return fmt.Errorf("invalid filter: %w", err)
		}
		s := string(fb)
		filter = &s
	}
	contract, err := stackitem.ToUint160(fields[4])
	if err != nil {
		return fmt.Errorf("invalid callback contract: %w", err)
	}
	methodB, err := fields[5].Bytes()
	if err != nil {
		return fmt.Errorf("invalid callback method: %w", err)
	}
	userData, err := fields[6].Bytes()
	if err != nil {
		return fmt.Errorf("invalid user data: %w", err)
	}
	r.OriginalTxID = txID
	r.GasForResponse = gas
	r.URL = string(urlB)
	r.Filter = filter
	r.CallbackContract = contract
	r.CallbackMethod = string(methodB)
	r.UserData = userData
	return nil
}
