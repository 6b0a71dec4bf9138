package opcode

// fixedSizes gives the number of inline operand bytes for opcodes whose
// operand is a fixed-width immediate (not a variable-length PUSHDATA-style
// prefix). Opcodes absent here and not in varSizes take no operand.
var fixedSizes = map[Opcode]int{
	PUSHINT8:   1,
	PUSHINT16:  2,
	PUSHINT32:  4,
	PUSHINT64:  8,
	PUSHINT128: 16,
	PUSHINT256: 32,
	PUSHA:      4,

	JMP: 1, JMPIF: 1, JMPIFNOT: 1, JMPEQ: 1, JMPNE: 1,
	JMPGT: 1, JMPGE: 1, JMPLT: 1, JMPLE: 1,
	JMPL: 4, JMPIFL: 4, JMPIFNOTL: 4, JMPEQL: 4, JMPNEL: 4,
	JMPGTL: 4, JMPGEL: 4, JMPLTL: 4, JMPLEL: 4,

	CALL: 1, CALLL: 4, CALLT: 2,
	TRY: 2, TRYL: 8, ENDTRY: 1, ENDTRYL: 4,
	SYSCALL: 4,

	INITSSLOT: 1, INITSLOT: 2,
	LDSFLD: 1, STSFLD: 1, LDLOC: 1, STLOC: 1, LDARG: 1, STARG: 1,

	NEWARRAYT: 1, ISTYPE: 1, CONVERT: 1,
}

// varSizes gives the number of bytes holding a little-endian length prefix
// for opcodes whose operand is variable-length (PUSHDATA family).
var varSizes = map[Opcode]int{
	PUSHDATA1: 1,
	PUSHDATA2: 2,
	PUSHDATA4: 4,
}

// InstrSize returns the number of bytes making up op's inline operand. For
// fixed-size operands hasVarLen is false and size is the operand's byte
// length. For PUSHDATA-style variable operands hasVarLen is true and size
// is the width of the length prefix that itself precedes the data. size is
// -1 for opcodes the decoder does not recognize.
func InstrSize(op Opcode) (size int, hasVarLen bool) {
	if n, ok := varSizes[op]; ok {
		return n, true
	}
	if n, ok := fixedSizes[op]; ok {
		return n, false
	}
	if !IsValid(op) {
		return -1, false
	}
	return 0, false
}
