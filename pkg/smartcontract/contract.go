package smartcontract

import (
	"fmt"
	"math"
	"sort"

	"github.com/n3ledger/core/pkg/core/interop/interopnames"
	"github.com/n3ledger/core/pkg/crypto/keys"
	"github.com/n3ledger/core/pkg/io"
	"github.com/n3ledger/core/pkg/vm/emit"
)

// CreateSignatureRedeemScript builds the verification script of a standard,
// single-signature account: push the public key, then a CheckSig syscall.
func CreateSignatureRedeemScript(pub *keys.PublicKey) []byte {
	bw := io.NewBufBinWriter()
	emit.Bytes(bw.BinWriter, pub.Bytes())
	emit.Syscall(bw.BinWriter, interopnames.SystemCryptoCheckSig)
	return bw.Bytes()
}

// GetDefaultHonestNodeCount returns the minimum number of honest nodes
// assumed out of n, the default m used for an m-of-n multisignature
// account: the smallest m such that more than two thirds of n are honest.
func GetDefaultHonestNodeCount(n int) int {
	return n - (n-1)/3
}

// CreateMultiSigRedeemScript builds the verification script an m-of-n
// multisignature account is identified by: push m, push each of the n
// public keys in ascending order, push n, then a CheckMultisig syscall.
func CreateMultiSigRedeemScript(m int, pubs keys.PublicKeys) ([]byte, error) {
	if m < 1 || m > math.MaxInt32 {
		return nil, fmt.Errorf("m must be positive and fit int32")
	}
	if m > len(pubs) {
		return nil, fmt.Errorf("length of the signatures (%d) is higher then the number of public keys", m)
	}

	sorted := make(keys.PublicKeys, len(pubs))
	copy(sorted, pubs)
	sort.Sort(sorted)

	bw := io.NewBufBinWriter()
	emit.Int(bw.BinWriter, int64(m))
	for _, pub := range sorted {
		emit.Bytes(bw.BinWriter, pub.Bytes())
	}
	emit.Int(bw.BinWriter, int64(len(sorted)))
	emit.Syscall(bw.BinWriter, interopnames.SystemCryptoCheckMultisig)
	return bw.Bytes(), nil
}
