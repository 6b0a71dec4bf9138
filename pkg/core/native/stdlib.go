package native

import (
	"encoding/base64"
	"errors"
	"math/big"
	"strings"

	"github.com/n3ledger/core/pkg/core/interop"
	"github.com/n3ledger/core/pkg/core/native/nativenames"
	base58neogo "github.com/n3ledger/core/pkg/encoding/base58"
	"github.com/n3ledger/core/pkg/smartcontract"
	"github.com/n3ledger/core/pkg/smartcontract/callflag"
	"github.com/n3ledger/core/pkg/smartcontract/manifest"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// stdMaxInputLength is the largest string/byte-array argument StdLib's
// encode/decode/numeric conversions accept.
const stdMaxInputLength = 1024

// Errors returned by StdLib methods, surfaced to the calling script as a
// VM fault.
var (
	ErrInvalidBase   = errors.New("invalid base")
	ErrInvalidFormat = errors.New("invalid format")
	ErrTooBigInput   = errors.New("input is too big")
)

// StdLib implements the StdLib native contract: string/number conversion
// and encoding helpers the VM instruction set has no opcodes for.
type StdLib struct {
	meta *ContractMD
}

// NewStdLib creates a StdLib instance with its ABI wired.
func NewStdLib() *StdLib { return newStd() }

func newStd() *StdLib {
	s := &StdLib{meta: NewContractMD(nativenames.StdLib, StdLibContractID)}

	s.meta.AddMethod(MethodAndPrice{Func: s.serialize, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 14},
		toMethod("serialize", smartcontract.ByteArrayType, true, manifest.NewParameter("item", smartcontract.AnyType)))
	s.meta.AddMethod(MethodAndPrice{Func: s.deserialize, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 14},
		toMethod("deserialize", smartcontract.AnyType, true, manifest.NewParameter("data", smartcontract.ByteArrayType)))
	s.meta.AddMethod(MethodAndPrice{Func: s.jsonSerialize, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 14},
		toMethod("jsonSerialize", smartcontract.ByteArrayType, true, manifest.NewParameter("item", smartcontract.AnyType)))
	s.meta.AddMethod(MethodAndPrice{Func: s.jsonDeserialize, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 14},
		toMethod("jsonDeserialize", smartcontract.AnyType, true, manifest.NewParameter("json", smartcontract.ByteArrayType)))
	s.meta.AddMethod(MethodAndPrice{Func: s.base64Encode, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 12},
		toMethod("base64Encode", smartcontract.StringType, true, manifest.NewParameter("data", smartcontract.ByteArrayType)))
	s.meta.AddMethod(MethodAndPrice{Func: s.base64Decode, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 12},
		toMethod("base64Decode", smartcontract.ByteArrayType, true, manifest.NewParameter("s", smartcontract.StringType)))
	s.meta.AddMethod(MethodAndPrice{Func: s.base58Encode, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 13},
		toMethod("base58Encode", smartcontract.StringType, true, manifest.NewParameter("data", smartcontract.ByteArrayType)))
	s.meta.AddMethod(MethodAndPrice{Func: s.base58Decode, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 13},
		toMethod("base58Decode", smartcontract.ByteArrayType, true, manifest.NewParameter("s", smartcontract.StringType)))
	s.meta.AddMethod(MethodAndPrice{Func: s.base58CheckEncode, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 16},
		toMethod("base58CheckEncode", smartcontract.StringType, true, manifest.NewParameter("data", smartcontract.ByteArrayType)))
	s.meta.AddMethod(MethodAndPrice{Func: s.base58CheckDecode, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 16},
		toMethod("base58CheckDecode", smartcontract.ByteArrayType, true, manifest.NewParameter("s", smartcontract.StringType)))
	s.meta.AddMethod(MethodAndPrice{Func: s.itoa10, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 12},
		toMethod("itoa", smartcontract.StringType, true, manifest.NewParameter("value", smartcontract.IntegerType)))
	s.meta.AddMethod(MethodAndPrice{Func: s.itoa, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 12},
		toMethod("itoa", smartcontract.StringType, true,
			manifest.NewParameter("value", smartcontract.IntegerType),
			manifest.NewParameter("base", smartcontract.IntegerType)))
	s.meta.AddMethod(MethodAndPrice{Func: s.atoi10, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 12},
		toMethod("atoi", smartcontract.IntegerType, true, manifest.NewParameter("value", smartcontract.StringType)))
	s.meta.AddMethod(MethodAndPrice{Func: s.atoi, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 12},
		toMethod("atoi", smartcontract.IntegerType, true,
			manifest.NewParameter("value", smartcontract.StringType),
			manifest.NewParameter("base", smartcontract.IntegerType)))
	s.meta.AddMethod(MethodAndPrice{Func: s.memoryCompare, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 13},
		toMethod("memoryCompare", smartcontract.IntegerType, true,
			manifest.NewParameter("str1", smartcontract.ByteArrayType),
			manifest.NewParameter("str2", smartcontract.ByteArrayType)))
	s.meta.AddMethod(MethodAndPrice{Func: s.memorySearch2, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 13},
		toMethod("memorySearch", smartcontract.IntegerType, true,
			manifest.NewParameter("mem", smartcontract.ByteArrayType),
			manifest.NewParameter("value", smartcontract.ByteArrayType)))
	s.meta.AddMethod(MethodAndPrice{Func: s.memorySearch3, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 13},
		toMethod("memorySearch", smartcontract.IntegerType, true,
			manifest.NewParameter("mem", smartcontract.ByteArrayType),
			manifest.NewParameter("value", smartcontract.ByteArrayType),
			manifest.NewParameter("start", smartcontract.IntegerType)))
	s.meta.AddMethod(MethodAndPrice{Func: s.memorySearch4, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 13},
		toMethod("memorySearch", smartcontract.IntegerType, true,
			manifest.NewParameter("mem", smartcontract.ByteArrayType),
			manifest.NewParameter("value", smartcontract.ByteArrayType),
			manifest.NewParameter("start", smartcontract.IntegerType),
			manifest.NewParameter("backward", smartcontract.BoolType)))
	s.meta.AddMethod(MethodAndPrice{Func: s.stringSplit2, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 13},
		toMethod("stringSplit", smartcontract.ArrayType, true,
			manifest.NewParameter("str", smartcontract.StringType),
			manifest.NewParameter("separator", smartcontract.StringType)))
	s.meta.AddMethod(MethodAndPrice{Func: s.stringSplit3, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 13},
		toMethod("stringSplit", smartcontract.ArrayType, true,
			manifest.NewParameter("str", smartcontract.StringType),
			manifest.NewParameter("separator", smartcontract.StringType),
			manifest.NewParameter("removeEmptyEntries", smartcontract.BoolType)))

	return s
}

// Metadata implements NativeContract.
func (s *StdLib) Metadata() *ContractMD { return s.meta }

// Initialize implements NativeContract; StdLib is stateless.
func (s *StdLib) Initialize(ic *interop.Context) error { return nil }

// OnPersist implements NativeContract.
func (s *StdLib) OnPersist(ic *interop.Context) error { return nil }

// PostPersist implements NativeContract.
func (s *StdLib) PostPersist(ic *interop.Context) error { return nil }

func checkInputLength(n int) {
	if n > stdMaxInputLength {
		panic(ErrTooBigInput)
	}
}

func argBytes(it stackitem.Item) []byte {
	b, err := it.Bytes()
	if err != nil {
		panic(err)
	}
	checkInputLength(len(b))
	return b
}

func argString(it stackitem.Item) string {
	s, err := stackitem.ToString(it)
	if err != nil {
		panic(err)
	}
	checkInputLength(len(s))
	return s
}

func (s *StdLib) serialize(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	data, err := stackitem.Serialize(args[0])
	if err != nil {
		panic(err)
	}
	return stackitem.NewByteArray(data)
}

func (s *StdLib) deserialize(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	b, err := args[0].Bytes()
	if err != nil {
		panic(err)
	}
	item, err := stackitem.Deserialize(b)
	if err != nil {
		panic(err)
	}
	return item
}

func (s *StdLib) jsonSerialize(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	data, err := stackitem.ToJSON(args[0])
	if err != nil {
		panic(err)
	}
	return stackitem.NewByteArray(data)
}

func (s *StdLib) jsonDeserialize(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	b, err := args[0].Bytes()
	if err != nil {
		panic(err)
	}
	item, err := stackitem.FromJSON(b)
	if err != nil {
		panic(err)
	}
	return item
}

func (s *StdLib) base64Encode(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	b := argBytes(args[0])
	return stackitem.NewByteArray([]byte(base64.StdEncoding.EncodeToString(b)))
}

func (s *StdLib) base64Decode(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	str := argString(args[0])
	b, err := base64.StdEncoding.DecodeString(str)
	if err != nil {
		panic(err)
	}
	return stackitem.NewByteArray(b)
}

func (s *StdLib) base58Encode(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	b := argBytes(args[0])
	return stackitem.NewByteArray([]byte(base58neogo.Encode(b)))
}

func (s *StdLib) base58Decode(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	str := argString(args[0])
	b, err := base58neogo.Decode(str)
	if err != nil {
		panic(err)
	}
	return stackitem.NewByteArray(b)
}

func (s *StdLib) base58CheckEncode(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	b := argBytes(args[0])
	return stackitem.NewByteArray([]byte(base58neogo.CheckEncode(b)))
}

func (s *StdLib) base58CheckDecode(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	str := argString(args[0])
	b, err := base58neogo.CheckDecode(str)
	if err != nil {
		panic(err)
	}
	return stackitem.NewByteArray(b)
}

func minTwosComplementNibbles(n *big.Int) uint {
	nib := uint(1)
	for {
		bits := 4*nib - 1
		low := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), bits))
		high := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), bits), big.NewInt(1))
		if n.Cmp(low) >= 0 && n.Cmp(high) <= 0 {
			return nib
		}
		nib++
	}
}

func hexTwosComplement(n *big.Int) string {
	nib := minTwosComplementNibbles(n)
	mod := new(big.Int).Lsh(big.NewInt(1), 4*nib)
	v := new(big.Int).Mod(n, mod)
	str := strings.ToUpper(v.Text(16))
	for uint(len(str)) < nib {
		str = "0" + str
	}
	return str
}

func fromHexTwosComplement(str string) (*big.Int, error) {
	if len(str) == 0 {
		return nil, ErrInvalidFormat
	}
	for _, c := range str {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return nil, ErrInvalidFormat
		}
	}
	v, ok := new(big.Int).SetString(str, 16)
	if !ok {
		return nil, ErrInvalidFormat
	}
	bits := uint(4 * len(str))
	half := new(big.Int).Lsh(big.NewInt(1), bits-1)
	if v.Cmp(half) >= 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), bits)
		v.Sub(v, mod)
	}
	return v, nil
}

func toBase(num *big.Int, base int64) (string, error) {
	switch base {
	case 10:
		return num.Text(10), nil
	case 16:
		return hexTwosComplement(num), nil
	default:
		return "", ErrInvalidBase
	}
}

func fromBase(str string, base int64) (*big.Int, error) {
	switch base {
	case 10:
		if len(str) > 0 && (str[0] == '+' || ((str[0] < '0' || str[0] > '9') && str[0] != '-')) {
			return nil, ErrInvalidFormat
		}
		v, ok := new(big.Int).SetString(str, 10)
		if !ok {
			return nil, ErrInvalidFormat
		}
		return v, nil
	case 16:
		return fromHexTwosComplement(str)
	default:
		return nil, ErrInvalidBase
	}
}

func argBase(it stackitem.Item) int64 {
	b, err := stackitem.ToBigInt(it)
	if err != nil || !b.IsInt64() {
		panic(ErrInvalidBase)
	}
	return b.Int64()
}

func (s *StdLib) itoa(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	num, err := stackitem.ToBigInt(args[0])
	if err != nil {
		panic(err)
	}
	base := argBase(args[1])
	str, err := toBase(num, base)
	if err != nil {
		panic(err)
	}
	return stackitem.NewByteArray([]byte(str))
}

func (s *StdLib) itoa10(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	num, err := stackitem.ToBigInt(args[0])
	if err != nil {
		panic(err)
	}
	return stackitem.NewByteArray([]byte(num.Text(10)))
}

func (s *StdLib) atoi(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	str := argString(args[0])
	base := argBase(args[1])
	v, err := fromBase(str, base)
	if err != nil {
		panic(err)
	}
	return stackitem.NewBigInteger(v)
}

func (s *StdLib) atoi10(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	str := argString(args[0])
	v, err := fromBase(str, 10)
	if err != nil {
		panic(err)
	}
	return stackitem.NewBigInteger(v)
}

func (s *StdLib) memoryCompare(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	s1 := argBytes(args[0])
	s2 := argBytes(args[1])
	cmp := 0
	switch {
	case len(s1) < len(s2):
		cmp = -1
	case len(s1) > len(s2):
		cmp = 1
	}
	n := len(s1)
	if len(s2) < n {
		n = len(s2)
	}
	for i := 0; i < n; i++ {
		if s1[i] != s2[i] {
			if s1[i] < s2[i] {
				cmp = -1
			} else {
				cmp = 1
			}
			break
		}
	}
	return stackitem.NewBigInteger(big.NewInt(int64(cmp)))
}

func memorySearch(mem, value []byte, start int, backward bool) int64 {
	if start < 0 || start > len(mem) {
		panic(errors.New("start index is out of range"))
	}
	if backward {
		idx := strings.LastIndex(string(mem[:start]), string(value))
		if idx < 0 {
			return -1
		}
		return int64(idx)
	}
	idx := strings.Index(string(mem[start:]), string(value))
	if idx < 0 {
		return -1
	}
	return int64(start + idx)
}

func (s *StdLib) memorySearch2(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	mem := argBytes(args[0])
	value := argBytes(args[1])
	return stackitem.NewBigInteger(big.NewInt(memorySearch(mem, value, 0, false)))
}

func (s *StdLib) memorySearch3(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	mem := argBytes(args[0])
	value := argBytes(args[1])
	start := toInt64(args[2])
	return stackitem.NewBigInteger(big.NewInt(memorySearch(mem, value, int(start), false)))
}

func (s *StdLib) memorySearch4(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	mem := argBytes(args[0])
	value := argBytes(args[1])
	start := toInt64(args[2])
	backward, err := args[3].TryBool()
	if err != nil {
		panic(err)
	}
	return stackitem.NewBigInteger(big.NewInt(memorySearch(mem, value, int(start), backward)))
}

func stringSplit(str, sep string, removeEmpty bool) []stackitem.Item {
	var parts []string
	if sep == "" {
		parts = make([]string, len(str))
		for i, r := range str {
			parts[i] = string(r)
		}
		if len(str) == 0 {
			parts = []string{""}
		}
	} else {
		parts = strings.Split(str, sep)
	}
	items := make([]stackitem.Item, 0, len(parts))
	for _, p := range parts {
		if removeEmpty && p == "" {
			continue
		}
		items = append(items, stackitem.NewByteArray([]byte(p)))
	}
	return items
}

func (s *StdLib) stringSplit2(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	str := argString(args[0])
	sep := argString(args[1])
	return stackitem.NewArray(stringSplit(str, sep, false))
}

func (s *StdLib) stringSplit3(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	str := argString(args[0])
	sep := argString(args[1])
	removeEmpty, err := args[2].TryBool()
	if err != nil {
		panic(err)
	}
	return stackitem.NewArray(stringSplit(str, sep, removeEmpty))
}
