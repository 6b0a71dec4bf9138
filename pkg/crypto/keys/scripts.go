package keys

import (
	"crypto/sha256"

	"github.com/n3ledger/core/pkg/vm/opcode"
)

// checkSigInteropHash is the 4-byte method ID for System.Crypto.CheckSig,
// computed the way every syscall ID is computed: first 4 bytes of
// SHA-256(methodName).
var checkSigInteropHash = interopMethodHash("System.Crypto.CheckSig")

func interopMethodHash(name string) [4]byte {
	sum := sha256.Sum256([]byte(name))
	var id [4]byte
	copy(id[:], sum[:4])
	return id
}

// shaNewFunc adapts crypto/sha256.New for rfc6979's hash-function parameter.
var shaNewFunc = sha256.New

// buildSingleSigVerificationScript returns the canonical single-signature
// verification script: PUSHDATA1(len) pubkey SYSCALL(CheckSig).
func buildSingleSigVerificationScript(pub []byte) []byte {
	script := make([]byte, 0, 2+len(pub)+1+4)
	script = append(script, byte(opcode.PUSHDATA1), byte(len(pub)))
	script = append(script, pub...)
	script = append(script, byte(opcode.SYSCALL))
	script = append(script, checkSigInteropHash[:]...)
	return script
}
