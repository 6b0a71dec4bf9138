package util

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// Uint256Size is the size of Uint256 in bytes.
const Uint256Size = 32

// Uint256 is a 32 byte long unsigned integer, most commonly used to store
// double-SHA256 hashes. Internally it's stored as a regular byte array with
// the same layout used for the binary/wire encoding (little-endian), so no
// byte swapping is needed on the serialization path.
type Uint256 [Uint256Size]byte

// Uint256DecodeStringLE attempts to decode the given string (in hex format)
// into a Uint256 assuming the hex string is in little-endian order.
func Uint256DecodeStringLE(s string) (u Uint256, err error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return u, fmt.Errorf("failed to decode string: %w", err)
	}
	return Uint256DecodeBytesLE(b)
}

// Uint256DecodeStringBE is the same as Uint256DecodeStringLE, but big-endian.
func Uint256DecodeStringBE(s string) (u Uint256, err error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return u, fmt.Errorf("failed to decode string: %w", err)
	}
	return Uint256DecodeBytesBE(b)
}

// Uint256DecodeBytesLE attempts to decode the given byte slice into a
// Uint256, assuming it's little-endian.
func Uint256DecodeBytesLE(b []byte) (u Uint256, err error) {
	if len(b) != Uint256Size {
		return u, fmt.Errorf("expected []byte of size %d got %d", Uint256Size, len(b))
	}
	copy(u[:], b)
	return
}

// Uint256DecodeBytesBE is the same as Uint256DecodeBytesLE, but big-endian.
func Uint256DecodeBytesBE(b []byte) (u Uint256, err error) {
	if len(b) != Uint256Size {
		return u, fmt.Errorf("expected []byte of size %d got %d", Uint256Size, len(b))
	}
	for i, v := range b {
		u[Uint256Size-i-1] = v
	}
	return
}

// BytesBE returns a big-endian byte representation of u.
func (u Uint256) BytesBE() []byte {
	b := make([]byte, Uint256Size)
	for i := 0; i < Uint256Size; i++ {
		b[i] = u[Uint256Size-i-1]
	}
	return b
}

// BytesLE returns a little-endian byte representation of u.
func (u Uint256) BytesLE() []byte {
	b := make([]byte, Uint256Size)
	copy(b, u[:])
	return b
}

// Reverse reverses the Uint256 and returns a new (reversed) copy.
func (u Uint256) Reverse() Uint256 {
	var r Uint256
	for i, v := range u {
		r[Uint256Size-i-1] = v
	}
	return r
}

// Equals returns true if both Uint256 values are identical.
func (u Uint256) Equals(other Uint256) bool {
	return u == other
}

// Less returns true if u is lexicographically less than other when both are
// compared as big-endian byte strings, matching ordered storage-key semantics.
func (u Uint256) Less(other Uint256) bool {
	for i := Uint256Size - 1; i >= 0; i-- {
		if u[i] != other[i] {
			return u[i] < other[i]
		}
	}
	return false
}

// String implements the Stringer interface; big-endian hex, same as how
// block/transaction hashes are rendered.
func (u Uint256) String() string {
	return hex.EncodeToString(u.BytesBE())
}

// StringLE returns a little-endian string representation of u.
func (u Uint256) StringLE() string {
	return hex.EncodeToString(u.BytesLE())
}

// MarshalJSON implements the json.Marshaler interface.
func (u Uint256) MarshalJSON() ([]byte, error) {
	return []byte(`"0x` + u.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (u *Uint256) UnmarshalJSON(data []byte) (err error) {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("invalid Uint256 JSON string")
	}
	s := string(data[1 : len(data)-1])
	if len(s) >= 2 && (s[0:2] == "0x" || s[0:2] == "0X") {
		s = s[2:]
	}
	*u, err = Uint256DecodeStringBE(s)
	return err
}
