// Package vm implements the NeoVM execution engine: a stack machine that
// interprets the bytecode produced by contract compilers, metering gas per
// spec.md §4.4 and exposing a SYSCALL hook for interop dispatch (native
// contracts, storage access, crypto) supplied by an external collaborator.
package vm

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/n3ledger/core/pkg/encoding/bigint"
	"github.com/n3ledger/core/pkg/util"
	"github.com/n3ledger/core/pkg/vm/opcode"
	"github.com/n3ledger/core/pkg/vm/stackitem"
	"github.com/n3ledger/core/pkg/vm/vmstate"
)

// InteropFunc is a single registered SYSCALL handler.
type InteropFunc func(v *VM) error

// ErrGasLimitExceeded is returned by Step once AddGas's budget is spent.
var ErrGasLimitExceeded = errors.New("gas limit exceeded")

// State is an alias for vmstate.State, so callers outside this package need
// not import vmstate just to name an execution result.
type State = vmstate.State

// These mirror vmstate's flags under the names application-log consumers
// (AppExecResult, the RPC client/server) spell them.
const (
	NoneState  = vmstate.None
	HaltState  = vmstate.Halt
	FaultState = vmstate.Fault
	BreakState = vmstate.Break
)

// StateFromString is an alias for vmstate.FromString.
func StateFromString(s string) (State, error) { return vmstate.FromString(s) }

// VM is a single NeoVM execution engine instance, good for one script
// invocation tree (a transaction's entry script plus any CALL/SYSCALL-driven
// sub-invocations sharing its invocation stack).
type VM struct {
	istack []*Context
	refs   *RefCounter

	state vmstate.State
	err   *Exception

	gasConsumed int64

	// GasLimit is the total gas budget available to the remainder of
	// execution; zero or negative means unlimited except that a negative
	// value is used by tests as shorthand for "fail as soon as any gas is
	// charged".
	GasLimit int64

	syscalls map[uint32]InteropFunc

	// Interop is an opaque handle the registered syscalls close over to
	// reach the blockchain/native-contract/storage world; the engine never
	// inspects it itself.
	Interop interface{}
}

// New creates an idle VM with no loaded script and an unset state.
func New() *VM {
	return &VM{
		refs:     NewRefCounter(),
		syscalls: make(map[uint32]InteropFunc),
	}
}

// RegisterSyscall installs (or replaces) the handler for a 4-byte interop
// method ID.
func (v *VM) RegisterSyscall(id uint32, f InteropFunc) {
	v.syscalls[id] = f
}

// AddGas charges n units of gas against GasLimit and reports whether the
// budget still covers it; a GasLimit of zero or less means unlimited and
// AddGas always reports true.
func (v *VM) AddGas(n int64) bool {
	v.gasConsumed += n
	return v.GasLimit <= 0 || v.gasConsumed <= v.GasLimit
}

// GasConsumed returns the running gas total charged so far.
func (v *VM) GasConsumed() int64 { return v.gasConsumed }

// UseGas charges n units of gas against GasLimit, for interop handlers
// whose cost isn't captured by the fixed per-opcode price table (signature
// verification, storage access priced by key/value size).
func (v *VM) UseGas(n int64) error {
	if !v.AddGas(n) {
		return ErrGasLimitExceeded
	}
	return nil
}

// State returns the engine's current run state.
func (v *VM) State() vmstate.State { return v.state }

// FaultException returns the uncaught exception that drove the engine into
// vmstate.Fault, or nil if it didn't fault (or faulted from an internal
// error rather than THROW).
func (v *VM) FaultException() *Exception { return v.err }

// LoadScript pushes a new top-level Context over script onto the invocation
// stack.
func (v *VM) LoadScript(script []byte) {
	v.istack = append(v.istack, NewContext(script))
}

// LoadContext pushes an already-constructed Context (e.g. one built with
// restricted CallFlag permissions for a nested CALL) onto the invocation
// stack.
func (v *VM) LoadContext(ctx *Context) {
	v.istack = append(v.istack, ctx)
}

// LoadScriptWithHash is like LoadScript but pins the pushed Context's
// script hash to scriptHash (rather than Hash160(script)) and grants it
// only the permissions in cf, the entry point a System.Contract.Call-style
// cross-contract invocation uses once it has resolved the callee's stored
// script and hash separately.
func (v *VM) LoadScriptWithHash(script []byte, scriptHash util.Uint160, cf CallFlag) {
	v.LoadContext(NewContextWithHash(script, scriptHash, cf))
}

// LoadScriptWithFlags is like LoadScript but grants the pushed Context only
// the permissions in cf instead of the full default set.
func (v *VM) LoadScriptWithFlags(script []byte, cf CallFlag) {
	ctx := NewContext(script)
	ctx.callFlag = cf
	v.LoadContext(ctx)
}

// Context returns the currently executing invocation frame, or nil if the
// invocation stack is empty.
func (v *VM) Context() *Context {
	if len(v.istack) == 0 {
		return nil
	}
	return v.istack[len(v.istack)-1]
}

// EntryContext returns the bottom-most invocation frame, the script the
// transaction/block trigger originally loaded, or nil if nothing is loaded.
func (v *VM) EntryContext() *Context {
	if len(v.istack) == 0 {
		return nil
	}
	return v.istack[0]
}

// CallingContext returns the frame that invoked the currently executing
// one, or nil if the current frame is the entry context (or nothing is
// loaded at all).
func (v *VM) CallingContext() *Context {
	if len(v.istack) < 2 {
		return nil
	}
	return v.istack[len(v.istack)-2]
}

// Estack returns the evaluation stack of the current context.
func (v *VM) Estack() *Stack {
	if c := v.Context(); c != nil {
		return c.estack
	}
	return nil
}

// HasFailed reports whether the engine halted with vmstate.Fault.
func (v *VM) HasFailed() bool { return v.state == vmstate.Fault }

// HasHalted reports whether the engine completed successfully.
func (v *VM) HasHalted() bool { return v.state == vmstate.Halt }

// Run executes instructions until the invocation stack empties (HALT), a
// fault occurs, or the gas budget is exhausted.
func (v *VM) Run() error {
	if v.state == vmstate.None {
		v.state = vmstate.Break
	}
	for v.state != vmstate.Halt && v.state != vmstate.Fault {
		if err := v.Step(); err != nil {
			return err
		}
	}
	if v.state == vmstate.Fault {
		if v.err != nil {
			return v.err
		}
		return errors.New("vm faulted")
	}
	return nil
}

// Step decodes and executes a single instruction, transitioning to Halt once
// the last context returns and to Fault on any unrecoverable error.
func (v *VM) Step() error {
	ctx := v.Context()
	if ctx == nil {
		v.state = vmstate.Halt
		return nil
	}

	op, operand, err := ctx.Next()
	if err != nil {
		return v.fault(err)
	}

	price := opcode.Price(op)
	if !v.AddGas(price) {
		return v.fault(ErrGasLimitExceeded)
	}

	if execErr := v.execute(ctx, op, operand); execErr != nil {
		if exc, ok := execErr.(*Exception); ok {
			if !v.handleException(exc) {
				return v.fault(exc)
			}
			return nil
		}
		return v.fault(execErr)
	}
	return nil
}

func (v *VM) fault(err error) error {
	v.state = vmstate.Fault
	if exc, ok := err.(*Exception); ok {
		v.err = exc
	} else {
		v.err = NewException(err.Error())
	}
	return v.err
}

// handleException unwinds the invocation stack looking for a TRY block able
// to catch exc, jumping to its catch (or finally) branch. Returns false if
// no handler was found anywhere on the stack.
func (v *VM) handleException(exc *Exception) bool {
	for len(v.istack) > 0 {
		ctx := v.Context()
		for len(ctx.tryStack) > 0 {
			t := ctx.tryStack[len(ctx.tryStack)-1]
			if t.hasCatch {
				ctx.tryStack[len(ctx.tryStack)-1].hasCatch = false
				_ = ctx.Jump(t.catchOffset)
				ctx.estack.PushItem(exc.Value)
				return true
			}
			if t.hasFinally {
				ctx.tryStack[len(ctx.tryStack)-1].hasFinally = false
				_ = ctx.Jump(t.finallyOffset)
				return true
			}
			ctx.tryStack = ctx.tryStack[:len(ctx.tryStack)-1]
		}
		v.istack = v.istack[:len(v.istack)-1]
	}
	return false
}

// execute dispatches a single decoded instruction against ctx. Returned
// *Exception values are thrown (searched for a handler); other errors are
// engine faults.
func (v *VM) execute(ctx *Context, op opcode.Opcode, operand []byte) error {
	es := ctx.estack
	switch op {

	// ---- Constants ----
	case opcode.PUSHINT8, opcode.PUSHINT16, opcode.PUSHINT32, opcode.PUSHINT64,
		opcode.PUSHINT128, opcode.PUSHINT256:
		es.PushVal(decodeLEInt(operand))
	case opcode.PUSHT:
		es.PushVal(true)
	case opcode.PUSHF:
		es.PushVal(false)
	case opcode.PUSHNULL:
		es.PushItem(stackitem.Null{})
	case opcode.PUSHA:
		pos := ctx.IP() + 1 + int(decodeLEInt(operand).Int64())
		es.PushItem(stackitem.NewPointer(pos, ctx.Program()))
	case opcode.PUSHDATA1, opcode.PUSHDATA2, opcode.PUSHDATA4:
		es.PushVal(append([]byte{}, operand...))
	case opcode.PUSHM1:
		es.PushVal(-1)
	default:
		if op >= opcode.PUSH0 && op <= opcode.PUSH16 {
			es.PushVal(int(op) - int(opcode.PUSH0))
			return nil
		}
		return v.executeFlow(ctx, op, operand)
	}
	return nil
}

func (v *VM) executeFlow(ctx *Context, op opcode.Opcode, operand []byte) error {
	es := ctx.estack
	switch op {
	case opcode.NOP:
		return nil

	case opcode.JMP, opcode.JMPL:
		return ctx.Jump(jumpTarget(ctx, operand))
	case opcode.JMPIF, opcode.JMPIFL:
		if es.Pop().Bool() {
			return ctx.Jump(jumpTarget(ctx, operand))
		}
		return nil
	case opcode.JMPIFNOT, opcode.JMPIFNOTL:
		if !es.Pop().Bool() {
			return ctx.Jump(jumpTarget(ctx, operand))
		}
		return nil
	case opcode.JMPEQ, opcode.JMPEQL, opcode.JMPNE, opcode.JMPNEL,
		opcode.JMPGT, opcode.JMPGTL, opcode.JMPGE, opcode.JMPGEL,
		opcode.JMPLT, opcode.JMPLTL, opcode.JMPLE, opcode.JMPLEL:
		b := es.Pop().BigInt()
		a := es.Pop().BigInt()
		if jumpCompare(op, a.Cmp(b)) {
			return ctx.Jump(jumpTarget(ctx, operand))
		}
		return nil

	case opcode.CALL, opcode.CALLL:
		target := jumpTarget(ctx, operand)
		nctx := ctx.Copy()
		_ = nctx.Jump(target)
		v.LoadContext(nctx)
		return nil
	case opcode.CALLA:
		p, ok := es.Pop().Item().(*stackitem.Pointer)
		if !ok {
			return NewException("CALLA on non-pointer item")
		}
		nctx := ctx.Copy()
		_ = nctx.Jump(p.Position())
		v.LoadContext(nctx)
		return nil
	case opcode.CALLT:
		return NewException("CALLT requires a contract-table collaborator")

	case opcode.ABORT:
		return errors.New("ABORT executed")
	case opcode.ABORTMSG:
		msg := es.Pop().Bytes()
		return errors.New("ABORT: " + string(msg))
	case opcode.ASSERT:
		if !es.Pop().Bool() {
			return NewException("ASSERT failed")
		}
		return nil
	case opcode.ASSERTMSG:
		msg := es.Pop().Bytes()
		if !es.Pop().Bool() {
			return NewException(string(msg))
		}
		return nil
	case opcode.THROW:
		return &Exception{Value: es.Pop().Item()}

	case opcode.TRY, opcode.TRYL:
		c, f := tryOffsets(op, operand)
		base := ctx.IP() + 1
		t := tryContext{}
		if c != 0 {
			t.hasCatch = true
			t.catchOffset = base + c
		}
		if f != 0 {
			t.hasFinally = true
			t.finallyOffset = base + f
		}
		ctx.tryStack = append(ctx.tryStack, t)
		return nil
	case opcode.ENDTRY, opcode.ENDTRYL:
		if len(ctx.tryStack) == 0 {
			return errors.New("ENDTRY without matching TRY")
		}
		t := ctx.tryStack[len(ctx.tryStack)-1]
		ctx.tryStack = ctx.tryStack[:len(ctx.tryStack)-1]
		target := jumpTarget(ctx, operand)
		if t.hasFinally {
			t.endOffset = target
			ctx.tryStack = append(ctx.tryStack, tryContext{hasFinally: true, finallyOffset: t.finallyOffset, endOffset: target})
			return ctx.Jump(t.finallyOffset)
		}
		return ctx.Jump(target)
	case opcode.ENDFINALLY:
		if len(ctx.tryStack) == 0 {
			return errors.New("ENDFINALLY without matching TRY")
		}
		t := ctx.tryStack[len(ctx.tryStack)-1]
		ctx.tryStack = ctx.tryStack[:len(ctx.tryStack)-1]
		return ctx.Jump(t.endOffset)

	case opcode.RET:
		v.istack = v.istack[:len(v.istack)-1]
		if len(v.istack) == 0 {
			v.state = vmstate.Halt
		}
		return nil

	case opcode.SYSCALL:
		id := binary.LittleEndian.Uint32(operand)
		f, ok := v.syscalls[id]
		if !ok {
			return errors.New("unknown syscall")
		}
		return f(v)

	default:
		return v.executeStack(ctx, op, operand)
	}
}

func (v *VM) executeStack(ctx *Context, op opcode.Opcode, operand []byte) error {
	es := ctx.estack
	switch op {
	case opcode.DEPTH:
		es.PushVal(es.Len())
	case opcode.DROP:
		es.Pop()
	case opcode.NIP:
		es.RemoveAt(1)
	case opcode.XDROP:
		n := int(es.Pop().BigInt().Int64())
		es.RemoveAt(n)
	case opcode.CLEAR:
		es.Clear()
	case opcode.DUP:
		es.Push(es.Dup(0))
	case opcode.OVER:
		es.Push(es.Dup(1))
	case opcode.PICK:
		n := int(es.Pop().BigInt().Int64())
		es.Push(es.Dup(n))
	case opcode.TUCK:
		es.InsertAt(es.Dup(0), 2)
	case opcode.SWAP:
		a := es.RemoveAt(1)
		es.Push(a)
	case opcode.ROT:
		a := es.RemoveAt(2)
		es.Push(a)
	case opcode.ROLL:
		n := int(es.Pop().BigInt().Int64())
		if n > 0 {
			e := es.RemoveAt(n)
			es.Push(e)
		}
	case opcode.REVERSE3:
		reverseTop(es, 3)
	case opcode.REVERSE4:
		reverseTop(es, 4)
	case opcode.REVERSEN:
		n := int(es.Pop().BigInt().Int64())
		reverseTop(es, n)

	default:
		if op >= opcode.INITSSLOT && op <= opcode.STARG {
			return v.executeSlot(ctx, op, operand)
		}
		return v.executeSplice(ctx, op, operand)
	}
	return nil
}

func reverseTop(es *Stack, n int) {
	if n <= 1 {
		return
	}
	items := make([]*Element, n)
	for i := 0; i < n; i++ {
		items[i] = es.RemoveAt(0)
	}
	for _, e := range items {
		es.InsertAt(e, 0)
	}
}

func (v *VM) executeSlot(ctx *Context, op opcode.Opcode, operand []byte) error {
	es := ctx.estack
	switch op {
	case opcode.INITSSLOT:
		ctx.static = make([]stackitem.Item, int(operand[0]))
		for i := range ctx.static {
			ctx.static[i] = stackitem.Null{}
		}
	case opcode.INITSLOT:
		ctx.local = newSlots(int(operand[0]))
		ctx.arguments = newSlots(int(operand[1]))
		for i := len(ctx.arguments) - 1; i >= 0; i-- {
			ctx.arguments[i] = es.Pop().Item()
		}
	case opcode.LDSFLD, opcode.LDSFLD0, opcode.LDSFLD1, opcode.LDSFLD2, opcode.LDSFLD3,
		opcode.LDSFLD4, opcode.LDSFLD5, opcode.LDSFLD6:
		es.PushItem(ctx.static[slotIndex(op, opcode.LDSFLD0, opcode.LDSFLD, operand)])
	case opcode.STSFLD, opcode.STSFLD0, opcode.STSFLD1, opcode.STSFLD2, opcode.STSFLD3,
		opcode.STSFLD4, opcode.STSFLD5, opcode.STSFLD6:
		ctx.static[slotIndex(op, opcode.STSFLD0, opcode.STSFLD, operand)] = es.Pop().Item()
	case opcode.LDLOC, opcode.LDLOC0, opcode.LDLOC1, opcode.LDLOC2, opcode.LDLOC3,
		opcode.LDLOC4, opcode.LDLOC5, opcode.LDLOC6:
		es.PushItem(ctx.local[slotIndex(op, opcode.LDLOC0, opcode.LDLOC, operand)])
	case opcode.STLOC, opcode.STLOC0, opcode.STLOC1, opcode.STLOC2, opcode.STLOC3,
		opcode.STLOC4, opcode.STLOC5, opcode.STLOC6:
		ctx.local[slotIndex(op, opcode.STLOC0, opcode.STLOC, operand)] = es.Pop().Item()
	case opcode.LDARG, opcode.LDARG0, opcode.LDARG1, opcode.LDARG2, opcode.LDARG3,
		opcode.LDARG4, opcode.LDARG5, opcode.LDARG6:
		es.PushItem(ctx.arguments[slotIndex(op, opcode.LDARG0, opcode.LDARG, operand)])
	case opcode.STARG, opcode.STARG0, opcode.STARG1, opcode.STARG2, opcode.STARG3,
		opcode.STARG4, opcode.STARG5, opcode.STARG6:
		ctx.arguments[slotIndex(op, opcode.STARG0, opcode.STARG, operand)] = es.Pop().Item()
	default:
		return errors.New("unreachable slot opcode")
	}
	return nil
}

func newSlots(n int) []stackitem.Item {
	s := make([]stackitem.Item, n)
	for i := range s {
		s[i] = stackitem.Null{}
	}
	return s
}

func slotIndex(op, base0, baseN opcode.Opcode, operand []byte) int {
	if op == baseN {
		return int(operand[0])
	}
	return int(op - base0)
}

func (v *VM) executeSplice(ctx *Context, op opcode.Opcode, operand []byte) error {
	es := ctx.estack
	switch op {
	case opcode.NEWBUFFER:
		n := int(es.Pop().BigInt().Int64())
		es.PushItem(stackitem.NewBuffer(make([]byte, n)))
	case opcode.MEMCPY:
		count := int(es.Pop().BigInt().Int64())
		srcIdx := int(es.Pop().BigInt().Int64())
		src := es.Pop().Bytes()
		dstIdx := int(es.Pop().BigInt().Int64())
		dst, ok := es.Pop().Item().(*stackitem.Buffer)
		if !ok {
			return NewException("MEMCPY destination is not a Buffer")
		}
		db, _ := dst.Value().([]byte)
		if dstIdx+count > len(db) || srcIdx+count > len(src) {
			return NewException("MEMCPY out of bounds")
		}
		copy(db[dstIdx:], src[srcIdx:srcIdx+count])
	case opcode.CAT:
		b := es.Pop().Bytes()
		a := es.Pop().Bytes()
		es.PushVal(append(append([]byte{}, a...), b...))
	case opcode.SUBSTR:
		count := int(es.Pop().BigInt().Int64())
		idx := int(es.Pop().BigInt().Int64())
		s := es.Pop().Bytes()
		if idx < 0 || count < 0 || idx+count > len(s) {
			return NewException("SUBSTR out of bounds")
		}
		es.PushVal(append([]byte{}, s[idx:idx+count]...))
	case opcode.LEFT:
		count := int(es.Pop().BigInt().Int64())
		s := es.Pop().Bytes()
		if count < 0 || count > len(s) {
			return NewException("LEFT out of bounds")
		}
		es.PushVal(append([]byte{}, s[:count]...))
	case opcode.RIGHT:
		count := int(es.Pop().BigInt().Int64())
		s := es.Pop().Bytes()
		if count < 0 || count > len(s) {
			return NewException("RIGHT out of bounds")
		}
		es.PushVal(append([]byte{}, s[len(s)-count:]...))
	default:
		return v.executeBitwise(ctx, op, operand)
	}
	return nil
}

func (v *VM) executeBitwise(ctx *Context, op opcode.Opcode, operand []byte) error {
	es := ctx.estack
	switch op {
	case opcode.INVERT:
		a := es.Pop().BigInt()
		es.PushVal(new(big.Int).Not(a))
	case opcode.AND:
		b, a := es.Pop().BigInt(), es.Pop().BigInt()
		es.PushVal(new(big.Int).And(a, b))
	case opcode.OR:
		b, a := es.Pop().BigInt(), es.Pop().BigInt()
		es.PushVal(new(big.Int).Or(a, b))
	case opcode.XOR:
		b, a := es.Pop().BigInt(), es.Pop().BigInt()
		es.PushVal(new(big.Int).Xor(a, b))
	case opcode.EQUAL:
		b, a := es.Pop().Item(), es.Pop().Item()
		es.PushVal(a.Equals(b))
	case opcode.NOTEQUAL:
		b, a := es.Pop().Item(), es.Pop().Item()
		es.PushVal(!a.Equals(b))
	default:
		return v.executeArith(ctx, op, operand)
	}
	return nil
}

func (v *VM) executeArith(ctx *Context, op opcode.Opcode, operand []byte) error {
	es := ctx.estack
	switch op {
	case opcode.SIGN:
		es.PushVal(es.Pop().BigInt().Sign())
	case opcode.ABS:
		es.PushVal(new(big.Int).Abs(es.Pop().BigInt()))
	case opcode.NEGATE:
		es.PushVal(new(big.Int).Neg(es.Pop().BigInt()))
	case opcode.INC:
		es.PushVal(new(big.Int).Add(es.Pop().BigInt(), big.NewInt(1)))
	case opcode.DEC:
		es.PushVal(new(big.Int).Sub(es.Pop().BigInt(), big.NewInt(1)))
	case opcode.ADD:
		b, a := es.Pop().BigInt(), es.Pop().BigInt()
		es.PushVal(new(big.Int).Add(a, b))
	case opcode.SUB:
		b, a := es.Pop().BigInt(), es.Pop().BigInt()
		es.PushVal(new(big.Int).Sub(a, b))
	case opcode.MUL:
		b, a := es.Pop().BigInt(), es.Pop().BigInt()
		es.PushVal(new(big.Int).Mul(a, b))
	case opcode.DIV:
		b, a := es.Pop().BigInt(), es.Pop().BigInt()
		if b.Sign() == 0 {
			return NewException("division by zero")
		}
		es.PushVal(new(big.Int).Quo(a, b))
	case opcode.MOD:
		b, a := es.Pop().BigInt(), es.Pop().BigInt()
		if b.Sign() == 0 {
			return NewException("division by zero")
		}
		es.PushVal(new(big.Int).Rem(a, b))
	case opcode.POW:
		e, a := es.Pop().BigInt(), es.Pop().BigInt()
		if e.Sign() < 0 {
			return NewException("negative exponent")
		}
		es.PushVal(new(big.Int).Exp(a, e, nil))
	case opcode.SQRT:
		a := es.Pop().BigInt()
		if a.Sign() < 0 {
			return NewException("square root of negative number")
		}
		es.PushVal(new(big.Int).Sqrt(a))
	case opcode.MODMUL:
		m, b, a := es.Pop().BigInt(), es.Pop().BigInt(), es.Pop().BigInt()
		if m.Sign() == 0 {
			return NewException("modulus is zero")
		}
		es.PushVal(new(big.Int).Mod(new(big.Int).Mul(a, b), m))
	case opcode.MODPOW:
		m, e, a := es.Pop().BigInt(), es.Pop().BigInt(), es.Pop().BigInt()
		if m.Sign() == 0 {
			return NewException("modulus is zero")
		}
		es.PushVal(new(big.Int).Exp(a, e, m))
	case opcode.SHL:
		n, a := es.Pop().BigInt(), es.Pop().BigInt()
		es.PushVal(new(big.Int).Lsh(a, uint(n.Int64())))
	case opcode.SHR:
		n, a := es.Pop().BigInt(), es.Pop().BigInt()
		es.PushVal(new(big.Int).Rsh(a, uint(n.Int64())))
	case opcode.NOT:
		es.PushVal(!es.Pop().Bool())
	case opcode.BOOLAND:
		b, a := es.Pop().Bool(), es.Pop().Bool()
		es.PushVal(a && b)
	case opcode.BOOLOR:
		b, a := es.Pop().Bool(), es.Pop().Bool()
		es.PushVal(a || b)
	case opcode.NZ:
		es.PushVal(es.Pop().BigInt().Sign() != 0)
	case opcode.NUMEQUAL:
		b, a := es.Pop().BigInt(), es.Pop().BigInt()
		es.PushVal(a.Cmp(b) == 0)
	case opcode.NUMNOTEQUAL:
		b, a := es.Pop().BigInt(), es.Pop().BigInt()
		es.PushVal(a.Cmp(b) != 0)
	case opcode.LT:
		b, a := es.Pop().BigInt(), es.Pop().BigInt()
		es.PushVal(a.Cmp(b) < 0)
	case opcode.LE:
		b, a := es.Pop().BigInt(), es.Pop().BigInt()
		es.PushVal(a.Cmp(b) <= 0)
	case opcode.GT:
		b, a := es.Pop().BigInt(), es.Pop().BigInt()
		es.PushVal(a.Cmp(b) > 0)
	case opcode.GE:
		b, a := es.Pop().BigInt(), es.Pop().BigInt()
		es.PushVal(a.Cmp(b) >= 0)
	case opcode.MIN:
		b, a := es.Pop().BigInt(), es.Pop().BigInt()
		if a.Cmp(b) <= 0 {
			es.PushVal(a)
		} else {
			es.PushVal(b)
		}
	case opcode.MAX:
		b, a := es.Pop().BigInt(), es.Pop().BigInt()
		if a.Cmp(b) >= 0 {
			es.PushVal(a)
		} else {
			es.PushVal(b)
		}
	case opcode.WITHIN:
		b, a, x := es.Pop().BigInt(), es.Pop().BigInt(), es.Pop().BigInt()
		es.PushVal(x.Cmp(a) >= 0 && x.Cmp(b) < 0)
	default:
		return v.executeCompound(ctx, op, operand)
	}
	return nil
}

func (v *VM) executeCompound(ctx *Context, op opcode.Opcode, operand []byte) error {
	es := ctx.estack
	switch op {
	case opcode.PACK:
		n := int(es.Pop().BigInt().Int64())
		items := make([]stackitem.Item, n)
		for i := 0; i < n; i++ {
			items[i] = es.Pop().Item()
		}
		a := stackitem.NewArray(items)
		v.refs.Add(a)
		es.PushItem(a)
	case opcode.PACKSTRUCT:
		n := int(es.Pop().BigInt().Int64())
		items := make([]stackitem.Item, n)
		for i := 0; i < n; i++ {
			items[i] = es.Pop().Item()
		}
		s := stackitem.NewStruct(items)
		v.refs.Add(s)
		es.PushItem(s)
	case opcode.PACKMAP:
		n := int(es.Pop().BigInt().Int64())
		m := stackitem.NewMap()
		for i := 0; i < n; i++ {
			val := es.Pop().Item()
			key := es.Pop().Item()
			m.Add(key, val)
		}
		v.refs.Add(m)
		es.PushItem(m)
	case opcode.UNPACK:
		items := popItems(es)
		for i := len(items) - 1; i >= 0; i-- {
			es.PushItem(items[i])
		}
		es.PushVal(len(items))
	case opcode.NEWARRAY0:
		a := stackitem.NewArray(nil)
		v.refs.Add(a)
		es.PushItem(a)
	case opcode.NEWARRAY, opcode.NEWARRAYT:
		n := int(es.Pop().BigInt().Int64())
		items := make([]stackitem.Item, n)
		for i := range items {
			items[i] = stackitem.Null{}
		}
		a := stackitem.NewArray(items)
		v.refs.Add(a)
		es.PushItem(a)
	case opcode.NEWSTRUCT0:
		s := stackitem.NewStruct(nil)
		v.refs.Add(s)
		es.PushItem(s)
	case opcode.NEWSTRUCT:
		n := int(es.Pop().BigInt().Int64())
		items := make([]stackitem.Item, n)
		for i := range items {
			items[i] = stackitem.Null{}
		}
		s := stackitem.NewStruct(items)
		v.refs.Add(s)
		es.PushItem(s)
	case opcode.NEWMAP:
		m := stackitem.NewMap()
		v.refs.Add(m)
		es.PushItem(m)
	case opcode.SIZE:
		switch t := es.Pop().Item().(type) {
		case *stackitem.Array:
			es.PushVal(t.Len())
		case *stackitem.Struct:
			es.PushVal(t.Len())
		case *stackitem.Map:
			es.PushVal(t.Len())
		default:
			b, err := t.Bytes()
			if err != nil {
				return NewException("SIZE on unsized item")
			}
			es.PushVal(len(b))
		}
	case opcode.HASKEY:
		key := es.Pop().Item()
		switch t := es.Pop().Item().(type) {
		case *stackitem.Map:
			es.PushVal(t.GetValue(key) != nil)
		case *stackitem.Array:
			idx := mustIndex(key)
			es.PushVal(idx >= 0 && idx < t.Len())
		default:
			return NewException("HASKEY on unsupported item")
		}
	case opcode.KEYS:
		m, ok := es.Pop().Item().(*stackitem.Map)
		if !ok {
			return NewException("KEYS on non-Map item")
		}
		elems, _ := m.Value().([]stackitem.MapElement)
		keys := make([]stackitem.Item, len(elems))
		for i, e := range elems {
			keys[i] = e.Key
		}
		es.PushItem(stackitem.NewArray(keys))
	case opcode.VALUES:
		switch t := es.Pop().Item().(type) {
		case *stackitem.Map:
			elems, _ := t.Value().([]stackitem.MapElement)
			vals := make([]stackitem.Item, len(elems))
			for i, e := range elems {
				vals[i] = stackitem.DeepCopy(e.Value)
			}
			es.PushItem(stackitem.NewArray(vals))
		case *stackitem.Array:
			items, _ := t.Value().([]stackitem.Item)
			cp := make([]stackitem.Item, len(items))
			for i, it := range items {
				cp[i] = stackitem.DeepCopy(it)
			}
			es.PushItem(stackitem.NewArray(cp))
		default:
			return NewException("VALUES on unsupported item")
		}
	case opcode.PICKITEM:
		key := es.Pop().Item()
		switch t := es.Pop().Item().(type) {
		case *stackitem.Map:
			val := t.GetValue(key)
			if val == nil {
				return NewException("key not found")
			}
			es.PushItem(val)
		case *stackitem.Array:
			idx := mustIndex(key)
			items, _ := t.Value().([]stackitem.Item)
			if idx < 0 || idx >= len(items) {
				return NewException("PICKITEM index out of range")
			}
			es.PushItem(items[idx])
		case *stackitem.Struct:
			idx := mustIndex(key)
			items, _ := t.Value().([]stackitem.Item)
			if idx < 0 || idx >= len(items) {
				return NewException("PICKITEM index out of range")
			}
			es.PushItem(items[idx])
		default:
			idx := mustIndex(key)
			b, err := t.Bytes()
			if err != nil || idx < 0 || idx >= len(b) {
				return NewException("PICKITEM index out of range")
			}
			es.PushVal(int(b[idx]))
		}
	case opcode.APPEND:
		item := es.Pop().Item()
		switch t := es.Pop().Item().(type) {
		case *stackitem.Array:
			t.Append(item)
			v.refs.Add(item)
		case *stackitem.Struct:
			t.Append(item)
			v.refs.Add(item)
		default:
			return NewException("APPEND on non-array item")
		}
	case opcode.SETITEM:
		val := es.Pop().Item()
		key := es.Pop().Item()
		switch t := es.Pop().Item().(type) {
		case *stackitem.Map:
			t.Add(key, val)
			v.refs.Add(val)
		case *stackitem.Array:
			idx := mustIndex(key)
			items, _ := t.Value().([]stackitem.Item)
			if idx < 0 || idx >= len(items) {
				return NewException("SETITEM index out of range")
			}
			items[idx] = val
			v.refs.Add(val)
		case *stackitem.Struct:
			idx := mustIndex(key)
			items, _ := t.Value().([]stackitem.Item)
			if idx < 0 || idx >= len(items) {
				return NewException("SETITEM index out of range")
			}
			items[idx] = val
			v.refs.Add(val)
		default:
			return NewException("SETITEM on unsupported item")
		}
	case opcode.REVERSEITEMS:
		switch t := es.Pop().Item().(type) {
		case *stackitem.Array:
			items, _ := t.Value().([]stackitem.Item)
			reverseItems(items)
		case *stackitem.Struct:
			items, _ := t.Value().([]stackitem.Item)
			reverseItems(items)
		default:
			return NewException("REVERSEITEMS on unsupported item")
		}
	case opcode.REMOVE:
		key := es.Pop().Item()
		switch t := es.Pop().Item().(type) {
		case *stackitem.Map:
			t.Remove(key)
		case *stackitem.Array:
			idx := mustIndex(key)
			items, _ := t.Value().([]stackitem.Item)
			if idx < 0 || idx >= len(items) {
				return NewException("REMOVE index out of range")
			}
			items = append(items[:idx], items[idx+1:]...)
			t.SetElements(items)
		default:
			return NewException("REMOVE on unsupported item")
		}
	case opcode.CLEARITEMS:
		switch t := es.Pop().Item().(type) {
		case *stackitem.Array:
			t.Clear()
		case *stackitem.Struct:
			t.Clear()
		case *stackitem.Map:
			t.Clear()
		default:
			return NewException("CLEARITEMS on unsupported item")
		}
	case opcode.POPITEM:
		switch t := es.Pop().Item().(type) {
		case *stackitem.Array:
			if t.Len() == 0 {
				return NewException("POPITEM on empty array")
			}
			es.PushItem(t.Pop())
		default:
			return NewException("POPITEM on unsupported item")
		}
	default:
		return v.executeConvert(ctx, op, operand)
	}
	return nil
}

func popItems(es *Stack) []stackitem.Item {
	n := int(es.Pop().BigInt().Int64())
	items := make([]stackitem.Item, n)
	for i := 0; i < n; i++ {
		items[i] = es.Pop().Item()
	}
	return items
}

func reverseItems(items []stackitem.Item) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}

func mustIndex(key stackitem.Item) int {
	b, ok := key.Value().(*big.Int)
	if !ok {
		return -1
	}
	return int(b.Int64())
}

func (v *VM) executeConvert(ctx *Context, op opcode.Opcode, operand []byte) error {
	es := ctx.estack
	switch op {
	case opcode.ISNULL:
		_, isNull := es.Pop().Item().(stackitem.Null)
		es.PushVal(isNull)
		return nil
	case opcode.ISTYPE:
		t := stackitem.Type(operand[0])
		es.PushVal(es.Pop().Item().Type() == t)
		return nil
	case opcode.CONVERT:
		t := stackitem.Type(operand[0])
		item := es.Pop().Item()
		converted, err := convertTo(item, t)
		if err != nil {
			return NewException(err.Error())
		}
		es.PushItem(converted)
		return nil
	default:
		return errors.New("unimplemented opcode " + op.String())
	}
}

func convertTo(item stackitem.Item, t stackitem.Type) (stackitem.Item, error) {
	if item.Type() == t {
		return item, nil
	}
	switch t {
	case stackitem.BooleanT:
		b, err := item.TryBool()
		if err != nil {
			return nil, err
		}
		return stackitem.NewBool(b), nil
	case stackitem.IntegerT:
		b, err := item.Bytes()
		if err != nil {
			return nil, err
		}
		return stackitem.NewBigInteger(bigint.FromBytes(b)), nil
	case stackitem.ByteArrayT:
		b, err := item.Bytes()
		if err != nil {
			return nil, err
		}
		return stackitem.NewByteArray(b), nil
	case stackitem.BufferT:
		b, err := item.Bytes()
		if err != nil {
			return nil, err
		}
		return stackitem.NewBuffer(append([]byte{}, b...)), nil
	}
	return nil, errors.New("invalid conversion")
}

func decodeLEInt(b []byte) *big.Int {
	if len(b) == 0 {
		return big.NewInt(0)
	}
	buf := make([]byte, len(b))
	for i, c := range b {
		buf[len(b)-1-i] = c
	}
	n := new(big.Int).SetBytes(buf)
	if b[len(b)-1]&0x80 != 0 {
		bound := new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8))
		n.Sub(n, bound)
	}
	return n
}

func jumpTarget(ctx *Context, operand []byte) int {
	base := ctx.IP() + 1
	return base + int(decodeLEInt(operand).Int64())
}

func tryOffsets(op opcode.Opcode, operand []byte) (catch, finally int) {
	if op == opcode.TRY {
		return int(int8(operand[0])), int(int8(operand[1]))
	}
	return int(decodeLEInt(operand[0:4]).Int64()), int(decodeLEInt(operand[4:8]).Int64())
}

func jumpCompare(op opcode.Opcode, cmp int) bool {
	switch op {
	case opcode.JMPEQ, opcode.JMPEQL:
		return cmp == 0
	case opcode.JMPNE, opcode.JMPNEL:
		return cmp != 0
	case opcode.JMPGT, opcode.JMPGTL:
		return cmp > 0
	case opcode.JMPGE, opcode.JMPGEL:
		return cmp >= 0
	case opcode.JMPLT, opcode.JMPLTL:
		return cmp < 0
	case opcode.JMPLE, opcode.JMPLEL:
		return cmp <= 0
	}
	return false
}
