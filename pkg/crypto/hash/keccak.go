package hash

import (
	"github.com/n3ledger/core/pkg/util"
	"golang.org/x/crypto/sha3"
)

// Keccak256 computes the (pre-NIST) Keccak-256 digest of b, used by the
// CryptoLib native contract's Keccak256 method.
func Keccak256(b []byte) util.Uint256 {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(b)
	var u util.Uint256
	copy(u[:], h.Sum(nil))
	return u
}
