// Package keys implements secp256r1 key pairs, WIF encoding, and the
// signature verification used to check witnesses.
package keys

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/n3ledger/core/pkg/crypto/base58"
	"github.com/n3ledger/core/pkg/crypto/hash"
	"github.com/n3ledger/core/pkg/io"
	"github.com/n3ledger/core/pkg/util"
	"github.com/nspcc-dev/rfc6979"
)

// SignatureLen is the length, in bytes, of a raw r||s ECDSA signature over
// secp256r1 as used for witness invocation scripts.
const SignatureLen = 64

// addressVersion is the address version byte for Neo N3.
const addressVersion = 0x35

// PublicKey represents an elliptic curve public key over secp256r1, encoded
// the same way the protocol encodes verification script public keys
// (compressed point, 33 bytes; the point at infinity encodes to one zero
// byte).
type PublicKey struct {
	ecdsa.PublicKey
}

// NewPublicKeyFromBytes decodes a compressed (or infinity) public key.
func NewPublicKeyFromBytes(data []byte) (*PublicKey, error) {
	pub := new(PublicKey)
	if err := io.FromByteArray(pub, data); err != nil {
		return nil, err
	}
	return pub, nil
}

// NewPublicKeyFromString decodes a hex-encoded public key.
func NewPublicKeyFromString(s string) (*PublicKey, error) {
	b, err := decodeHex(s)
	if err != nil {
		return nil, err
	}
	return NewPublicKeyFromBytes(b)
}

// MarshalJSON implements the json.Marshaler interface, encoding the public
// key as its hex-encoded compressed form.
func (p PublicKey) MarshalJSON() ([]byte, error) {
	return []byte(`"` + hex.EncodeToString(p.Bytes()) + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (p *PublicKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	pub, err := NewPublicKeyFromString(s)
	if err != nil {
		return err
	}
	*p = *pub
	return nil
}

// Bytes returns the compressed encoding of the public key.
func (p *PublicKey) Bytes() []byte {
	if p.X == nil {
		return []byte{0x00}
	}
	prefix := byte(0x03)
	if p.Y.Bit(0) == 0 {
		prefix = 0x02
	}
	bx := p.X.Bytes()
	b := make([]byte, 33)
	b[0] = prefix
	copy(b[33-len(bx):], bx)
	return b
}

// EncodeBinary implements the io.Serializable interface.
func (p *PublicKey) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(p.Bytes())
}

// DecodeBinary implements the io.Serializable interface.
func (p *PublicKey) DecodeBinary(r *io.BinReader) {
	prefix := r.ReadB()
	if r.Err != nil {
		return
	}
	switch prefix {
	case 0x00:
		p.Curve = elliptic.P256()
		p.X, p.Y = nil, nil
	case 0x02, 0x03:
		b := make([]byte, 32)
		r.ReadBytes(b)
		if r.Err != nil {
			return
		}
		curve := elliptic.P256()
		x := new(big.Int).SetBytes(b)
		y, err := decompressY(curve, x, prefix == 0x03)
		if err != nil {
			r.Err = err
			return
		}
		p.Curve = curve
		p.X, p.Y = x, y
	case 0x04:
		b := make([]byte, 64)
		r.ReadBytes(b)
		if r.Err != nil {
			return
		}
		p.Curve = elliptic.P256()
		p.X = new(big.Int).SetBytes(b[:32])
		p.Y = new(big.Int).SetBytes(b[32:])
	default:
		r.Err = fmt.Errorf("invalid prefix %d", prefix)
	}
}

func decompressY(curve elliptic.Curve, x *big.Int, odd bool) (*big.Int, error) {
	params := curve.Params()
	// y^2 = x^3 - 3x + b (mod p)
	x3 := new(big.Int).Mul(x, x)
	x3.Mul(x3, x)
	threeX := new(big.Int).Lsh(x, 1)
	threeX.Add(threeX, x)
	x3.Sub(x3, threeX)
	x3.Add(x3, params.B)
	x3.Mod(x3, params.P)

	y := new(big.Int).ModSqrt(x3, params.P)
	if y == nil {
		return nil, errors.New("invalid point: no square root exists")
	}
	if y.Bit(0) != boolToUint(odd) {
		y.Sub(params.P, y)
	}
	return y, nil
}

func boolToUint(b bool) uint {
	if b {
		return 1
	}
	return 0
}

// GetScriptHash returns the Hash160 of the single-signature verification
// script for this public key.
func (p *PublicKey) GetScriptHash() util.Uint160 {
	return hash.Hash160(p.GetVerificationScript())
}

// Address returns the Base58Check-encoded address for this public key.
func (p *PublicKey) Address() string {
	sh := p.GetScriptHash()
	b := append([]byte{addressVersion}, sh.BytesBE()...)
	return base58.CheckEncode(b)
}

// Verify checks an ECDSA signature (r||s, 64 bytes, low-S) against msg.
func (p *PublicKey) Verify(signature, msg []byte) bool {
	digest := hash.Sha256(msg)
	return p.verifyDigest(signature, digest[:])
}

// VerifyHashable checks an ECDSA signature against hh's network-bound
// digest, the check a transaction or block witness verification performs.
func (p *PublicKey) VerifyHashable(signature []byte, net uint32, hh hash.Hashable) bool {
	digest := hash.NetSha256(net, hh)
	return p.verifyDigest(signature, digest[:])
}

// VerifyDigest checks an ECDSA signature (r||s, 64 bytes, low-S) against a
// pre-computed digest, for callers that hash with something other than
// plain SHA-256.
func (p *PublicKey) VerifyDigest(signature, digest []byte) bool {
	return p.verifyDigest(signature, digest)
}

func (p *PublicKey) verifyDigest(signature, digest []byte) bool {
	if len(signature) != SignatureLen {
		return false
	}
	r := new(big.Int).SetBytes(signature[:32])
	s := new(big.Int).SetBytes(signature[32:])
	if !isLowS(s, p.Curve) {
		return false
	}
	return ecdsa.Verify(&p.PublicKey, digest, r, s)
}

// isLowS enforces the canonical low-S requirement.
func isLowS(s *big.Int, curve elliptic.Curve) bool {
	halfOrder := new(big.Int).Rsh(curve.Params().N, 1)
	return s.Cmp(halfOrder) <= 0
}

// PublicKeys is a list of public keys, sortable by X coordinate the way
// Neo orders committee/validator lists.
type PublicKeys []*PublicKey

func (keys PublicKeys) Len() int      { return len(keys) }
func (keys PublicKeys) Swap(i, j int) { keys[i], keys[j] = keys[j], keys[i] }
func (keys PublicKeys) Less(i, j int) bool {
	bi, bj := keys[i].Bytes(), keys[j].Bytes()
	return bytes.Compare(bi, bj) == -1
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(s)
}

// PrivateKeyBitSize is the size, in bits, of a secp256r1 private scalar.
const PrivateKeyBitSize = 256

// NewPrivateKey generates a new random private key using crypto/rand.
func NewPrivateKey() (*PrivateKey, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{PrivateKey: *priv}, nil
}

// PrivateKey represents a secp256r1 private key.
type PrivateKey struct {
	ecdsa.PrivateKey
}

// Sign produces an RFC 6979 deterministic, low-S canonicalized signature
// over msg.
func (p *PrivateKey) Sign(msg []byte) ([]byte, error) {
	digest := hash.Sha256(msg)
	return p.signDigest(digest[:]), nil
}

// SignHash signs a pre-computed digest directly, without hashing it again.
func (p *PrivateKey) SignHash(digest util.Uint256) []byte {
	return p.signDigest(digest[:])
}

// SignHashable signs hh's network-bound digest (hash.NetSha256), the
// signature a transaction or block witness actually carries.
func (p *PrivateKey) SignHashable(net uint32, hh hash.Hashable) []byte {
	digest := hash.NetSha256(net, hh)
	return p.signDigest(digest[:])
}

func (p *PrivateKey) signDigest(digest []byte) []byte {
	r, s := rfc6979.SignECDSA(&p.PrivateKey, digest, shaNewFunc)
	halfOrder := new(big.Int).Rsh(p.Curve.Params().N, 1)
	if s.Cmp(halfOrder) == 1 {
		s.Sub(p.Curve.Params().N, s)
	}
	sig := make([]byte, SignatureLen)
	rb, sb := r.Bytes(), s.Bytes()
	copy(sig[32-len(rb):32], rb)
	copy(sig[64-len(sb):64], sb)
	return sig
}

// PublicKey returns the public key corresponding to this private key.
func (p *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{p.PrivateKey.PublicKey}
}

// GetVerificationScript returns the verification script for this key's
// public key: PUSHDATA33(pubkey) SYSCALL(Neo.Crypto.CheckSig).
func (p *PublicKey) GetVerificationScript() []byte {
	return buildSingleSigVerificationScript(p.Bytes())
}
