package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"errors"
	"math/big"

	"github.com/n3ledger/core/pkg/crypto/base58"
)

// wifVersion is the WIF version byte Neo uses (0x80, same as Bitcoin
// mainnet, compressed-key convention with the trailing 0x01 byte).
const wifVersion = 0x80

// WIFEncode encodes a private key's scalar as a WIF string.
func WIFEncode(priv *PrivateKey) string {
	d := priv.D.Bytes()
	buf := make([]byte, 34)
	buf[0] = wifVersion
	copy(buf[33-len(d):33], d)
	buf[33] = 0x01
	return base58.CheckEncode(buf)
}

// WIFDecode decodes a WIF string into a private key.
func WIFDecode(wif string) (*PrivateKey, error) {
	b, err := base58.CheckDecode(wif)
	if err != nil {
		return nil, err
	}
	if len(b) != 34 || b[0] != wifVersion || b[33] != 0x01 {
		return nil, errors.New("invalid WIF format")
	}
	d := new(big.Int).SetBytes(b[1:33])
	curve := elliptic.P256()
	x, y := curve.ScalarBaseMult(b[1:33])
	priv := &PrivateKey{PrivateKey: ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: curve, X: x, Y: y},
		D:         d,
	}}
	return priv, nil
}
