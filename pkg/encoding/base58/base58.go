// Package base58 implements the Bitcoin-style Base58 and Base58Check
// encodings Neo N3 addresses are built on, layered over the same
// mr-tron/base58 codec pkg/crypto/keys uses for WIF.
package base58

import (
	"crypto/sha256"
	"errors"

	"github.com/mr-tron/base58/base58"
)

// Encode encodes b using the Bitcoin Base58 alphabet.
func Encode(b []byte) string {
	return base58.Encode(b)
}

// Decode decodes a Base58-encoded string.
func Decode(s string) ([]byte, error) {
	return base58.Decode(s)
}

// CheckEncode encodes b with a trailing 4-byte double-SHA-256 checksum
// appended, the format Neo addresses and WIF-encoded keys use on the wire.
func CheckEncode(b []byte) string {
	return Encode(append(append([]byte{}, b...), checksum(b)...))
}

// ErrChecksum is returned by CheckDecode when the embedded checksum
// doesn't match the decoded payload.
var ErrChecksum = errors.New("base58: checksum mismatch")

// ErrInvalidFormat is returned by CheckDecode when the decoded string is
// too short to hold a checksum at all.
var ErrInvalidFormat = errors.New("base58: invalid format, checksum bytes missing")

// CheckDecode decodes a Base58Check string and verifies its checksum.
func CheckDecode(s string) ([]byte, error) {
	b, err := Decode(s)
	if err != nil {
		return nil, err
	}
	if len(b) < 5 {
		return nil, ErrInvalidFormat
	}
	body, sum := b[:len(b)-4], b[len(b)-4:]
	expected := checksum(body)
	for i := range expected {
		if expected[i] != sum[i] {
			return nil, ErrChecksum
		}
	}
	return body, nil
}

func checksum(b []byte) []byte {
	h1 := sha256.Sum256(b)
	h2 := sha256.Sum256(h1[:])
	return h2[:4]
}
