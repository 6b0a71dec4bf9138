// Package fee computes the gas cost of executing a single opcode, the
// ingredient ApplicationEngine.AddGas multiplies block-level execution fee
// factors against during fee accounting (spec.md §7's gas metering).
package fee

import "github.com/n3ledger/core/pkg/vm/opcode"

// ECDSAVerifyPrice is the gas price of a single signature check performed
// by System.Crypto.CheckSig or one leg of System.Crypto.CheckMultisig.
const ECDSAVerifyPrice = 1 << 15

// Opcode returns the gas cost of executing op, scaled by the network's
// current execution fee factor.
func Opcode(factor int64, op opcode.Opcode) int64 {
	return factor * opcode.Price(op)
}
