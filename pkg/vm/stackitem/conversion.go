package stackitem

import (
	"fmt"
	"math"
	"math/big"

	"github.com/n3ledger/core/pkg/util"
)

// Convertible is implemented by domain types whose stack item conversion
// can fail for reasons other than a malformed source item (e.g. a size
// budget), unlike the plain ToStackItem() Item pattern most manifest types
// use.
type Convertible interface {
	ToStackItem() (Item, error)
	FromStackItem(Item) error
}

func asBigInt(it Item) (*big.Int, error) {
	bi, ok := it.(*BigInteger)
	if !ok {
		return nil, fmt.Errorf("invalid conversion: %s/%s", it.Type(), IntegerT)
	}
	return bi.value, nil
}

// ToBigInt converts an Integer item to a *big.Int, with no range limit.
func ToBigInt(it Item) (*big.Int, error) {
	v, err := asBigInt(it)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ToUint160 converts a 20-byte ByteString item to a util.Uint160.
func ToUint160(it Item) (util.Uint160, error) {
	b, err := toFixedBytes(it, util.Uint160Size)
	if err != nil {
		return util.Uint160{}, err
	}
	return util.Uint160DecodeBytesBE(b)
}

// ToUint256 converts a 32-byte ByteString item to a util.Uint256.
func ToUint256(it Item) (util.Uint256, error) {
	b, err := toFixedBytes(it, util.Uint256Size)
	if err != nil {
		return util.Uint256{}, err
	}
	return util.Uint256DecodeBytesBE(b)
}

func toFixedBytes(it Item, size int) ([]byte, error) {
	ba, ok := it.(*ByteArray)
	if !ok {
		if _, isBuf := it.(*Buffer); !isBuf {
			return nil, fmt.Errorf("invalid conversion: %s/%s", it.Type(), ByteArrayT)
		}
		b, _ := it.Bytes()
		if len(b) != size {
			return nil, ErrInvalidValue
		}
		return b, nil
	}
	if len(ba.value) != size {
		return nil, ErrInvalidValue
	}
	return ba.value, nil
}

// ToInt32 converts an Integer item to an int32, erroring if out of range.
func ToInt32(it Item) (int32, error) {
	v, err := asBigInt(it)
	if err != nil {
		return 0, err
	}
	if !v.IsInt64() || v.Int64() < math.MinInt32 || v.Int64() > math.MaxInt32 {
		return 0, fmt.Errorf("bigint is not in int32 range")
	}
	return int32(v.Int64()), nil
}

// ToInt64 converts an Integer item to an int64, erroring if out of range.
func ToInt64(it Item) (int64, error) {
	v, err := asBigInt(it)
	if err != nil {
		return 0, err
	}
	if !v.IsInt64() {
		return 0, fmt.Errorf("bigint is not in int64 range")
	}
	return v.Int64(), nil
}

// ToUint8 converts an Integer item to a uint8, erroring if out of range.
func ToUint8(it Item) (uint8, error) {
	v, err := asBigInt(it)
	if err != nil {
		return 0, err
	}
	if v.Sign() < 0 || !v.IsUint64() || v.Uint64() > math.MaxUint8 {
		return 0, fmt.Errorf("bigint is not in uint8 range")
	}
	return uint8(v.Uint64()), nil
}

// ToUint16 converts an Integer item to a uint16, erroring if out of range.
func ToUint16(it Item) (uint16, error) {
	v, err := asBigInt(it)
	if err != nil {
		return 0, err
	}
	if v.Sign() < 0 || !v.IsUint64() || v.Uint64() > math.MaxUint16 {
		return 0, fmt.Errorf("bigint is not in uint16 range")
	}
	return uint16(v.Uint64()), nil
}

// ToUint32 converts an Integer item to a uint32, erroring if out of range.
func ToUint32(it Item) (uint32, error) {
	v, err := asBigInt(it)
	if err != nil {
		return 0, err
	}
	if v.Sign() < 0 || !v.IsUint64() || v.Uint64() > math.MaxUint32 {
		return 0, fmt.Errorf("bigint is not in uint32 range")
	}
	return uint32(v.Uint64()), nil
}

// ToUint64 converts an Integer item to a uint64, erroring if out of range.
func ToUint64(it Item) (uint64, error) {
	v, err := asBigInt(it)
	if err != nil {
		return 0, err
	}
	if v.Sign() < 0 || !v.IsUint64() {
		return 0, fmt.Errorf("bigint is not in uint64 range")
	}
	return v.Uint64(), nil
}
