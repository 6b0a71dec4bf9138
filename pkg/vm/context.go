package vm

import (
	"errors"

	"github.com/n3ledger/core/pkg/crypto/hash"
	"github.com/n3ledger/core/pkg/smartcontract/callflag"
	"github.com/n3ledger/core/pkg/util"
	"github.com/n3ledger/core/pkg/vm/opcode"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// Context is a single invocation frame: a script plus its instruction
// pointer, local/static/argument slots and the estack snapshot it was
// pushed with.
type Context struct {
	// script is the raw bytecode being executed.
	script []byte
	// scriptHash is Hash160(script), computed lazily.
	scriptHash *util.Uint160
	// ip is the offset of the next instruction to decode.
	ip int
	// prevIP is the offset of the instruction last decoded (used by error
	// reporting and by RET to know where to jump back to).
	prevIP int

	estack *Stack

	static    []stackitem.Item
	local     []stackitem.Item
	arguments []stackitem.Item

	// tryStack tracks nested TRY blocks for THROW/ENDTRY/ENDFINALLY.
	tryStack []tryContext

	callFlag CallFlag
}

// CallFlag is the bitmask of permissions a Context's invocation was granted
// (spec.md §6.5 contract permission model: ReadStates/WriteStates/AllowCall/
// AllowNotify). It is an alias of callflag.CallFlag so a contract's declared
// manifest permissions and its live invocation frame share one type.
type CallFlag = callflag.CallFlag

type tryContext struct {
	catchOffset   int
	finallyOffset int
	hasCatch      bool
	hasFinally    bool
	endOffset     int
}

// NewContext creates an execution Context over script with full
// permissions, the default for a top-level entry script.
func NewContext(script []byte) *Context {
	return &Context{
		script:   script,
		estack:   NewStack("estack"),
		callFlag: callflag.All,
	}
}

// NewContextWithHash is like NewContext but pins the context's script hash
// to a caller-supplied value instead of hashing script, for contracts
// invoked by a stored hash that may not match Hash160(script) (native
// contracts have no script to hash at all).
func NewContextWithHash(script []byte, scriptHash util.Uint160, cf CallFlag) *Context {
	return &Context{
		script:     script,
		scriptHash: &scriptHash,
		estack:     NewStack("estack"),
		callFlag:   cf,
	}
}

// ScriptHash returns Hash160(script), memoized.
func (c *Context) ScriptHash() util.Uint160 {
	if c.scriptHash == nil {
		h := hash.Hash160(c.script)
		c.scriptHash = &h
	}
	return *c.scriptHash
}

// CallFlag returns the permissions this invocation frame was granted.
func (c *Context) CallFlag() CallFlag { return c.callFlag }

// Program returns the raw script bytes.
func (c *Context) Program() []byte { return c.script }

// IP returns the current instruction offset.
func (c *Context) IP() int { return c.prevIP }

// Next decodes the next opcode and its inline operand at ip, advancing ip
// past it.
func (c *Context) Next() (opcode.Opcode, []byte, error) {
	c.prevIP = c.ip
	if c.ip >= len(c.script) {
		return opcode.RET, nil, errInvalidInstruction
	}
	op := opcode.Opcode(c.script[c.ip])
	c.ip++
	operand, err := c.readOperand(op)
	return op, operand, err
}

func (c *Context) readOperand(op opcode.Opcode) ([]byte, error) {
	size, hasVar := opcode.InstrSize(op)
	if size < 0 {
		return nil, errInvalidInstruction
	}
	if !hasVar {
		if c.ip+size > len(c.script) {
			return nil, errInvalidInstruction
		}
		b := c.script[c.ip : c.ip+size]
		c.ip += size
		return b, nil
	}
	// size is the number of bytes holding a little-endian length prefix
	// (PUSHDATA1/2/4, CALLT-style variable operands are not modeled here).
	if c.ip+size > len(c.script) {
		return nil, errInvalidInstruction
	}
	n := 0
	for i := size - 1; i >= 0; i-- {
		n = n<<8 | int(c.script[c.ip+i])
	}
	c.ip += size
	if c.ip+n > len(c.script) {
		return nil, errInvalidInstruction
	}
	b := c.script[c.ip : c.ip+n]
	c.ip += n
	return b, nil
}

// Jump sets ip to the given absolute offset, validating it lies within the
// script.
func (c *Context) Jump(pos int) error {
	if pos < 0 || pos > len(c.script) {
		return errInvalidJump
	}
	c.ip = pos
	return nil
}

// Copy returns a new Context sharing the same script and slots but with a
// fresh evaluation stack, used when a CALL pushes a new frame that still
// needs to read the caller's static slots is NOT the case in NeoVM (slots
// are per-context); this instead supports ISOLATED re-entry for syscalls
// that need a scratch context.
func (c *Context) Copy() *Context {
	cp := *c
	cp.estack = NewStack("estack")
	return &cp
}

var (
	errInvalidInstruction = errors.New("invalid instruction")
	errInvalidJump        = errors.New("invalid jump target")
)
