package crypto

import (
	"errors"

	"github.com/n3ledger/core/pkg/crypto/base58"
	"github.com/n3ledger/core/pkg/util"
)

// legacyAddressVersion is the NEO Legacy (pre-N3) address version byte;
// Base58Check of a script hash prefixed by it always starts with 'A'.
// Kept for interop with wallets and tooling that still carry Legacy
// addresses alongside N3's (pkg/encoding/address) 'N' form.
const legacyAddressVersion = 0x17

// AddressFromUint160 encodes val as a Legacy-format address string.
func AddressFromUint160(val util.Uint160) string {
	b := make([]byte, 0, util.Uint160Size+1)
	b = append(b, legacyAddressVersion)
	b = append(b, val.BytesLE()...)
	return base58.CheckEncode(b)
}

// Uint160DecodeAddress decodes a Legacy-format address string back into its
// script hash.
func Uint160DecodeAddress(addr string) (util.Uint160, error) {
	b, err := base58.CheckDecode(addr)
	if err != nil {
		return util.Uint160{}, err
	}
	if len(b) != util.Uint160Size+1 {
		return util.Uint160{}, errors.New("crypto: invalid address length")
	}
	if b[0] != legacyAddressVersion {
		return util.Uint160{}, errors.New("crypto: invalid address version")
	}
	return util.Uint160DecodeBytesLE(b[1:])
}
