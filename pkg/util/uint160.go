package util

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// Uint160Size is the size of Uint160 in bytes.
const Uint160Size = 20

// Uint160 is a 20-byte long unsigned integer, used to store script hashes
// (Hash160 of a verification script, a contract hash, or an account).
type Uint160 [Uint160Size]byte

// Uint160DecodeStringLE attempts to decode the given hex string into a
// Uint160, assuming it is little-endian.
func Uint160DecodeStringLE(s string) (u Uint160, err error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return u, fmt.Errorf("failed to decode string: %w", err)
	}
	return Uint160DecodeBytesLE(b)
}

// Uint160DecodeStringBE is the same as Uint160DecodeStringLE, but big-endian.
func Uint160DecodeStringBE(s string) (u Uint160, err error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return u, fmt.Errorf("failed to decode string: %w", err)
	}
	return Uint160DecodeBytesBE(b)
}

// Uint160DecodeBytesLE attempts to decode the given byte slice into a
// Uint160, assuming it is little-endian.
func Uint160DecodeBytesLE(b []byte) (u Uint160, err error) {
	if len(b) != Uint160Size {
		return u, fmt.Errorf("expected []byte of size %d got %d", Uint160Size, len(b))
	}
	copy(u[:], b)
	return
}

// Uint160DecodeBytesBE is the same as Uint160DecodeBytesLE, but big-endian.
func Uint160DecodeBytesBE(b []byte) (u Uint160, err error) {
	if len(b) != Uint160Size {
		return u, fmt.Errorf("expected []byte of size %d got %d", Uint160Size, len(b))
	}
	for i, v := range b {
		u[Uint160Size-i-1] = v
	}
	return
}

// BytesBE returns a big-endian byte representation of u.
func (u Uint160) BytesBE() []byte {
	b := make([]byte, Uint160Size)
	for i := 0; i < Uint160Size; i++ {
		b[i] = u[Uint160Size-i-1]
	}
	return b
}

// BytesLE returns a little-endian byte representation of u.
func (u Uint160) BytesLE() []byte {
	b := make([]byte, Uint160Size)
	copy(b, u[:])
	return b
}

// Equals returns true if both Uint160 values are identical.
func (u Uint160) Equals(other Uint160) bool {
	return u == other
}

// Less returns true if u is lexicographically less than other, matching
// ordered storage-key semantics (contract IDs sort by script hash bytes).
func (u Uint160) Less(other Uint160) bool {
	for i := Uint160Size - 1; i >= 0; i-- {
		if u[i] != other[i] {
			return u[i] < other[i]
		}
	}
	return false
}

// String implements the Stringer interface.
func (u Uint160) String() string {
	return hex.EncodeToString(u.BytesBE())
}

// StringLE returns a little-endian string representation of u.
func (u Uint160) StringLE() string {
	return hex.EncodeToString(u.BytesLE())
}

// MarshalJSON implements the json.Marshaler interface.
func (u Uint160) MarshalJSON() ([]byte, error) {
	return []byte(`"0x` + u.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (u *Uint160) UnmarshalJSON(data []byte) (err error) {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("invalid Uint160 JSON string")
	}
	s := string(data[1 : len(data)-1])
	if len(s) >= 2 && (s[0:2] == "0x" || s[0:2] == "0X") {
		s = s[2:]
	}
	*u, err = Uint160DecodeStringBE(s)
	return err
}
