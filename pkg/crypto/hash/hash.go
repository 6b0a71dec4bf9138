// Package hash groups the fixed hash functions the core relies on for
// block/transaction hashing, address derivation, and NeoVM crypto interops
// (spec.md §4.2).
package hash

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/n3ledger/core/pkg/util"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // ripemd160 is required by the protocol, not a choice.
)

// Sha256 computes the SHA-256 hash of b.
func Sha256(b []byte) util.Uint256 {
	return sha256.Sum256(b)
}

// Hashable is anything a network-magic-bound signature can be computed
// over: transactions and blocks both expose their signed part this way.
type Hashable interface {
	GetSignedPart() []byte
}

// NetSha256 computes the SHA-256 hash of hh's signed part prefixed with the
// little-endian network magic, the digest every witness signature over a
// transaction or block is actually taken over (spec.md §4.2's witness
// model: signatures are network-bound so a mainnet-signed transaction can't
// replay on testnet).
func NetSha256(net uint32, hh Hashable) util.Uint256 {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, net)
	buf = append(buf, hh.GetSignedPart()...)
	return Sha256(buf)
}

// DoubleSha256 computes SHA-256(SHA-256(b)), a.k.a. Hash256.
func DoubleSha256(b []byte) util.Uint256 {
	first := sha256.Sum256(b)
	return sha256.Sum256(first[:])
}

// Hash256 is an alias of DoubleSha256 matching the name used in spec.md.
func Hash256(b []byte) util.Uint256 {
	return DoubleSha256(b)
}

// RipeMD160 computes the RIPEMD-160 hash of b.
func RipeMD160(b []byte) util.Uint160 {
	h := ripemd160.New()
	_, _ = h.Write(b)
	var u util.Uint160
	copy(u[:], h.Sum(nil))
	return u
}

// Hash160 computes RIPEMD160(SHA256(b)), used to derive script hashes
// (accounts, contracts) from a verification/contract script.
func Hash160(b []byte) util.Uint160 {
	sha := sha256.Sum256(b)
	return RipeMD160(sha[:])
}

// Checksum returns the first 4 bytes of Hash256(b), used by Base58Check.
func Checksum(b []byte) []byte {
	hash := DoubleSha256(b)
	return hash[:4]
}
