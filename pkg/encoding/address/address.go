// Package address implements Neo N3's Base58Check address encoding: a
// version byte prefixed onto a contract's 20-byte script hash, the form
// wallets and RPC clients exchange addresses in (spec.md §6.2).
package address

import (
	"errors"

	"github.com/n3ledger/core/pkg/encoding/base58"
	"github.com/n3ledger/core/pkg/util"
)

// NEO3Prefix is the address version byte Neo N3 addresses are encoded
// with; Base58Check of a script hash prefixed by it always starts with 'N'.
const NEO3Prefix = 0x35

// Uint160ToString encodes u as a Neo N3 address string.
func Uint160ToString(u util.Uint160) string {
	b := make([]byte, 0, util.Uint160Size+1)
	b = append(b, NEO3Prefix)
	b = append(b, u.BytesLE()...)
	return base58.CheckEncode(b)
}

// StringToUint160 decodes a Neo N3 address string back into its script
// hash, rejecting any string not encoded with NEO3Prefix.
func StringToUint160(s string) (util.Uint160, error) {
	b, err := base58.CheckDecode(s)
	if err != nil {
		return util.Uint160{}, err
	}
	if len(b) != util.Uint160Size+1 {
		return util.Uint160{}, errors.New("address: invalid length")
	}
	if b[0] != NEO3Prefix {
		return util.Uint160{}, errors.New("address: invalid version")
	}
	return util.Uint160DecodeBytesLE(b[1:])
}
