package crypto

import "github.com/n3ledger/core/pkg/util"

// Verifiable is anything a witness signature can be checked against: the
// raw bytes the signature covers, plus the hash a System.Crypto.CheckSig
// caller that only has a container (not a raw message) can sign.
type Verifiable interface {
	GetSignedPart() []byte
	GetSignedHash() util.Uint256
}
