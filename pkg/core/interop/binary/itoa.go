package binary

import (
	"encoding/hex"
	"errors"
	"math/big"
	"strings"

	"github.com/n3ledger/core/pkg/core/interop"
	"github.com/n3ledger/core/pkg/encoding/bigint"
)

// ErrInvalidBase is returned by Itoa and Atoi for any base other than 10
// or 16.
var ErrInvalidBase = errors.New("invalid base")

// ErrInvalidFormat is returned by Atoi when the input string isn't a valid
// representation of an integer in the requested base.
var ErrInvalidFormat = errors.New("invalid format")

// Itoa converts the integer on top of the evaluation stack to its string
// representation in the given base (10 or 16), pushing the result back.
// Base 16 uses two's-complement hex digits, the minimal representation
// that still encodes the sign in its leading nibble.
func Itoa(ic *interop.Context) error {
	num := ic.VM.Estack().Pop().BigInt()
	base := ic.VM.Estack().Pop().BigInt()
	s, err := itoaString(num, base)
	if err != nil {
		return err
	}
	ic.VM.Estack().PushVal(s)
	return nil
}

func itoaString(num, base *big.Int) (string, error) {
	if !base.IsInt64() {
		return "", ErrInvalidBase
	}
	switch base.Int64() {
	case 10:
		return num.String(), nil
	case 16:
		if num.Sign() == 0 {
			return "0", nil
		}
		bs := bigint.ToBytes(num)
		reverseBytes(bs)
		str := hex.EncodeToString(bs)
		if num.Sign() > 0 {
			str = strings.TrimLeft(str, "0")
			if str == "" || str[0] > '7' {
				str = "0" + str
			}
		} else {
			str = strings.TrimLeft(str, "f")
			if str == "" || str[0] <= '7' {
				str = "f" + str
			}
		}
		return strings.ToUpper(str), nil
	default:
		return "", ErrInvalidBase
	}
}

// Atoi parses the string on top of the evaluation stack as an integer in
// the given base (10 or 16), pushing the resulting big integer back.
func Atoi(ic *interop.Context) error {
	base := ic.VM.Estack().Pop().BigInt()
	s := ic.VM.Estack().Pop().String()
	n, err := atoiBigInt(s, base)
	if err != nil {
		return err
	}
	ic.VM.Estack().PushVal(n)
	return nil
}

func atoiBigInt(s string, base *big.Int) (*big.Int, error) {
	if !base.IsInt64() {
		return nil, ErrInvalidBase
	}
	switch base.Int64() {
	case 10:
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, ErrInvalidFormat
		}
		return n, nil
	case 16:
		if len(s) == 0 {
			return big.NewInt(0), nil
		}
		negative := s[0] >= '8' && isHexDigit(s[0])
		if !isHexDigit(s[0]) {
			return nil, ErrInvalidFormat
		}
		str := s
		if len(str)%2 != 0 {
			if negative {
				str = "f" + str
			} else {
				str = "0" + str
			}
		}
		bs, err := hex.DecodeString(str)
		if err != nil {
			return nil, ErrInvalidFormat
		}
		reverseBytes(bs)
		return bigint.FromBytes(bs), nil
	default:
		return nil, ErrInvalidBase
	}
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func reverseBytes(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
