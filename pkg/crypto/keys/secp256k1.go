package keys

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// RecoverSecp256k1 recovers the secp256k1 public key that produced sig over
// the given 32-byte digest, given a recovery ID.
func RecoverSecp256k1(digest, sig []byte, recID byte) ([]byte, error) {
	if len(sig) != 64 {
		return nil, errors.New("secp256k1 recover: signature must be 64 bytes")
	}
	compact := make([]byte, 65)
	compact[0] = 27 + recID
	copy(compact[1:], sig)

	pub, _, err := ecdsa.RecoverCompact(compact, digest)
	if err != nil {
		return nil, err
	}
	return pub.SerializeCompressed(), nil
}

// VerifySecp256k1 verifies a compact (r||s) signature over the given
// 32-byte digest with the given compressed secp256k1 public key.
func VerifySecp256k1(digest, sig, pubKey []byte) bool {
	if len(sig) != 64 {
		return false
	}
	pub, err := secp256k1.ParsePubKey(pubKey)
	if err != nil {
		return false
	}
	var r, s secp256k1.ModNScalar
	r.SetByteSlice(sig[:32])
	s.SetByteSlice(sig[32:])
	sigObj := ecdsa.NewSignature(&r, &s)
	return sigObj.Verify(digest, pub)
}
