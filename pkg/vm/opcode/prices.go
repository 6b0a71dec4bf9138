package opcode

// Price categories, in datoshi (spec.md §4.4's "datoshi units"). The
// reference prices a handful of cheap stack/flow ops at a base fee and
// scales storage/crypto-adjacent and every compound-allocating op higher;
// this table preserves those relative bands even where the exact constant
// isn't load-bearing for anything this repo computes outside gas metering.
const (
	opBase      int64 = 1 << 0
	opQuadratic int64 = 1 << 3
	opStorage   int64 = 1 << 4
	opExpensive int64 = 1 << 6
)

var prices = map[Opcode]int64{
	PUSHINT8: opBase, PUSHINT16: opBase, PUSHINT32: opBase, PUSHINT64: opBase,
	PUSHINT128: opBase << 2, PUSHINT256: opBase << 2,
	PUSHT: opBase, PUSHF: opBase, PUSHA: opBase << 2, PUSHNULL: opBase,
	PUSHDATA1: opBase << 3, PUSHDATA2: opBase << 7, PUSHDATA4: opBase << 11,
	NOP: opBase,
	JMP: opBase, JMPL: opBase, JMPIF: opBase, JMPIFL: opBase,
	JMPIFNOT: opBase, JMPIFNOTL: opBase, JMPEQ: opBase, JMPEQL: opBase,
	JMPNE: opBase, JMPNEL: opBase, JMPGT: opBase, JMPGTL: opBase,
	JMPGE: opBase, JMPGEL: opBase, JMPLT: opBase, JMPLTL: opBase,
	JMPLE: opBase, JMPLEL: opBase,
	CALL: opBase << 9, CALLL: opBase << 9, CALLA: opBase << 9, CALLT: opBase << 15,
	ABORT: opBase, ASSERT: opBase, THROW: opBase << 9,
	TRY: opBase, TRYL: opBase, ENDTRY: opBase, ENDTRYL: opBase, ENDFINALLY: opBase,
	RET: 0, SYSCALL: 0, // actual SYSCALL price is the interop's declared price.
	DEPTH: opBase << 1, DROP: opBase << 1, NIP: opBase << 1, XDROP: opQuadratic,
	CLEAR: opQuadratic, DUP: opBase << 1, OVER: opBase << 1, PICK: opBase << 1,
	TUCK: opBase << 1, SWAP: opBase << 1, ROT: opBase << 1, ROLL: opQuadratic,
	REVERSE3: opBase << 1, REVERSE4: opBase << 1, REVERSEN: opQuadratic,
	INITSSLOT: opBase << 4, INITSLOT: opBase << 6,
	LDLOC: opBase << 1, STLOC: opBase << 1, LDARG: opBase << 1, STARG: opBase << 1,
	LDSFLD: opBase << 1, STSFLD: opBase << 1,
	NEWBUFFER: opQuadratic, MEMCPY: opQuadratic,
	CAT: opQuadratic, SUBSTR: opQuadratic, LEFT: opQuadratic, RIGHT: opQuadratic,
	INVERT: opBase << 2, AND: opQuadratic, OR: opQuadratic, XOR: opQuadratic,
	EQUAL: opQuadratic, NOTEQUAL: opQuadratic,
	SIGN: opBase << 2, ABS: opBase << 2, NEGATE: opBase << 2,
	INC: opBase << 2, DEC: opBase << 2,
	ADD: opBase << 3, SUB: opBase << 3, MUL: opBase << 3, DIV: opBase << 3,
	MOD: opBase << 3, POW: opStorage, SQRT: opStorage,
	MODMUL: opStorage, MODPOW: opExpensive,
	SHL: opStorage, SHR: opStorage, NOT: opBase << 2,
	BOOLAND: opBase << 3, BOOLOR: opBase << 3,
	NZ: opBase << 2, NUMEQUAL: opBase << 3, NUMNOTEQUAL: opBase << 3,
	LT: opBase << 3, LE: opBase << 3, GT: opBase << 3, GE: opBase << 3,
	MIN: opBase << 3, MAX: opBase << 3, WITHIN: opBase << 3,
	PACKMAP: opQuadratic, PACKSTRUCT: opQuadratic, PACK: opQuadratic,
	UNPACK: opQuadratic, NEWARRAY0: opBase << 4, NEWARRAY: opStorage,
	NEWARRAYT: opStorage, NEWSTRUCT0: opBase << 4, NEWSTRUCT: opStorage,
	NEWMAP: opBase << 3, SIZE: opBase << 2, HASKEY: opStorage, KEYS: opBase << 4,
	VALUES: opStorage, PICKITEM: opStorage, APPEND: opStorage, SETITEM: opStorage,
	REVERSEITEMS: opStorage, REMOVE: opBase << 4, CLEARITEMS: opBase << 4,
	POPITEM: opBase << 4,
	ISNULL: opBase, ISTYPE: opBase << 1, CONVERT: opExpensive,
	ABORTMSG: opBase, ASSERTMSG: opBase,
}

// Price returns the fixed base cost, in datoshi, for the given opcode. Flow
// control/call/SYSCALL opcodes with 0 here have the rest of their cost
// charged by the caller (CALL family already includes its listed constant;
// SYSCALL's true cost comes from the dispatched interop's declared price).
func Price(o Opcode) int64 {
	if p, ok := prices[o]; ok {
		return p
	}
	return opBase
}
