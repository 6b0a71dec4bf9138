// Package emit assembles NeoVM bytecode by hand, the way a contract
// deployment helper or a test fixture builds a call script without going
// through the compiler.
package emit

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/n3ledger/core/pkg/encoding/bigint"
	"github.com/n3ledger/core/pkg/io"
	"github.com/n3ledger/core/pkg/smartcontract/callflag"
	"github.com/n3ledger/core/pkg/util"
	"github.com/n3ledger/core/pkg/vm/opcode"
)

// InteropNameToID computes the 4-byte little-endian prefix of name's
// SHA256 hash, the same numeric syscall identifier
// pkg/core/interop/interopnames.ToID produces (duplicated here rather than
// imported, since pkg/vm must not depend on pkg/core).
func InteropNameToID(name []byte) uint32 {
	h := sha256.Sum256(name)
	return binary.LittleEndian.Uint32(h[:4])
}

var errUnsupportedArgument = errors.New("unsupported emit.Array argument type")

// contractCallInteropHash is interopnames.ToID("System.Contract.Call"),
// the syscall AppCall targets.
const contractCallInteropHash = 0x627d5b52

// Opcodes writes a sequence of bare (operandless) instructions.
func Opcodes(w *io.BinWriter, ops ...opcode.Opcode) {
	for _, op := range ops {
		w.WriteB(byte(op))
	}
}

// Instruction writes op followed by its raw operand bytes.
func Instruction(w *io.BinWriter, op opcode.Opcode, operand []byte) {
	w.WriteB(byte(op))
	w.WriteBytes(operand)
}

// Bytes pushes a byte slice onto the stack, choosing the smallest
// PUSHDATA encoding its length allows.
func Bytes(w *io.BinWriter, b []byte) {
	n := len(b)
	switch {
	case n < 0x100:
		w.WriteB(byte(opcode.PUSHDATA1))
		w.WriteB(byte(n))
	case n < 0x10000:
		w.WriteB(byte(opcode.PUSHDATA2))
		w.WriteU16LE(uint16(n))
	default:
		w.WriteB(byte(opcode.PUSHDATA4))
		w.WriteU32LE(uint32(n))
	}
	w.WriteBytes(b)
}

// String pushes a UTF-8 string onto the stack.
func String(w *io.BinWriter, s string) {
	Bytes(w, []byte(s))
}

// Bool pushes a boolean onto the stack.
func Bool(w *io.BinWriter, b bool) {
	if b {
		w.WriteB(byte(opcode.PUSH1))
	} else {
		w.WriteB(byte(opcode.PUSH0))
	}
}

// Int pushes an integer onto the stack, using a single-byte PUSHM1..PUSH16
// opcode for the range the VM specializes and the smallest PUSHINT*
// encoding otherwise.
func Int(w *io.BinWriter, i int64) {
	if i >= -1 && i <= 16 {
		w.WriteB(byte(opcode.PUSH0) + byte(i))
		return
	}
	BigInt(w, big.NewInt(i))
}

// BigInt pushes an arbitrary-precision integer onto the stack using the
// smallest PUSHINT* encoding its minimal two's-complement form fits.
func BigInt(w *io.BinWriter, n *big.Int) {
	if n.IsInt64() {
		v := n.Int64()
		if v >= -1 && v <= 16 {
			w.WriteB(byte(opcode.PUSH0) + byte(v))
			return
		}
	}
	data := bigint.ToBytes(n)
	var op opcode.Opcode
	var size int
	switch {
	case len(data) <= 1:
		op, size = opcode.PUSHINT8, 1
	case len(data) <= 2:
		op, size = opcode.PUSHINT16, 2
	case len(data) <= 4:
		op, size = opcode.PUSHINT32, 4
	case len(data) <= 8:
		op, size = opcode.PUSHINT64, 8
	case len(data) <= 16:
		op, size = opcode.PUSHINT128, 16
	default:
		op, size = opcode.PUSHINT256, 32
	}
	padded := make([]byte, size)
	copy(padded, data)
	if n.Sign() < 0 {
		for i := len(data); i < size; i++ {
			padded[i] = 0xff
		}
	}
	w.WriteB(byte(op))
	w.WriteBytes(padded)
}

// Syscall emits a SYSCALL instruction for the given interop method name.
func Syscall(w *io.BinWriter, interopName string) {
	w.WriteB(byte(opcode.SYSCALL))
	w.WriteU32LE(InteropNameToID([]byte(interopName)))
}

// Call emits a short-form CALL to a relative offset.
func Call(w *io.BinWriter, op opcode.Opcode, offset int16) {
	w.WriteB(byte(op))
	w.WriteU16LE(uint16(offset))
}

// Array pushes args in reverse order followed by an explicit element
// count, the calling convention NeoVM methods expect their arguments in.
func Array(w *io.BinWriter, args ...interface{}) {
	if len(args) == 0 {
		w.WriteB(byte(opcode.NEWARRAY0))
		return
	}
	for i := len(args) - 1; i >= 0; i-- {
		switch a := args[i].(type) {
		case []byte:
			Bytes(w, a)
		case string:
			String(w, a)
		case util.Uint160:
			Bytes(w, a.BytesBE())
		case util.Uint256:
			Bytes(w, a.BytesBE())
		case bool:
			Bool(w, a)
		case int:
			Int(w, int64(a))
		case int64:
			Int(w, a)
		case *big.Int:
			BigInt(w, a)
		case nil:
			w.WriteB(byte(opcode.PUSHNULL))
		default:
			w.Err = errUnsupportedArgument
		}
	}
	Int(w, int64(len(args)))
	w.WriteB(byte(opcode.PACK))
}

// AppCall emits a call to method on the contract at scriptHash with the
// given call flags and arguments.
func AppCall(w *io.BinWriter, scriptHash util.Uint160, method string, f callflag.CallFlag, args ...interface{}) {
	Array(w, args...)
	Int(w, int64(f))
	String(w, method)
	Bytes(w, scriptHash.BytesBE())
	Syscall(w, contractCallInteropHash)
}
