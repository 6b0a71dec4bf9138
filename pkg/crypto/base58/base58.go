// Package base58 implements Base58 and Base58Check encoding used for Neo N3
// addresses and WIF keys.
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

// CheckEncode encodes b with a trailing 4-byte double-SHA-256 checksum.
func CheckEncode(b []byte) string {
	checksum := checksum(b)
	return Encode(append(append([]byte{}, b...), checksum...))
}

// CheckDecode decodes a Base58Check string and verifies its checksum.
func CheckDecode(s string) ([]byte, error) {
	b, err := Decode(s)
	if err != nil {
		return nil, err
	}
	if len(b) < 5 {
		return nil, errors.New("invalid base58 check string: too short")
	}
	body, sum := b[:len(b)-4], b[len(b)-4:]
	expected := checksum(body)
	for i := range expected {
		if expected[i] != sum[i] {
			return nil, errors.New("invalid base58 check checksum")
		}
	}
	return body, nil
}

func checksum(b []byte) []byte {
	h1 := sha256.Sum256(b)
	h2 := sha256.Sum256(h1[:])
	return h2[:4]
}
