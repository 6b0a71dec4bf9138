package contract

import (
	"errors"
	"math"

	"github.com/n3ledger/core/pkg/core/interop"
	"github.com/n3ledger/core/pkg/crypto/hash"
	"github.com/n3ledger/core/pkg/crypto/keys"
	"github.com/n3ledger/core/pkg/smartcontract"
)

var errInvalidM = errors.New("m must be positive and fit int32")

// CreateStandardAccount implements System.Contract.CreateStandardAccount:
// push the script hash a single public key's standard verification script
// would have, without actually constructing or storing the script.
func CreateStandardAccount(ic *interop.Context) error {
	b := ic.VM.Estack().Pop().Bytes()
	pub, err := keys.NewPublicKeyFromBytes(b)
	if err != nil {
		return err
	}
	ic.VM.Estack().PushVal(pub.GetScriptHash().BytesBE())
	return nil
}

// CreateMultisigAccount implements System.Contract.CreateMultisigAccount:
// push the script hash an m-of-n multisignature verification script over
// the given public keys would have.
func CreateMultisigAccount(ic *interop.Context) error {
	m := ic.VM.Estack().Pop().BigInt()
	if !m.IsInt64() || m.Int64() < 1 || m.Int64() > math.MaxInt32 {
		return errInvalidM
	}
	mInt := int(m.Int64())
	rawPubs, err := popBytesArray(ic)
	if err != nil {
		return err
	}
	pubs := make(keys.PublicKeys, len(rawPubs))
	for i, b := range rawPubs {
		pub, err := keys.NewPublicKeyFromBytes(b)
		if err != nil {
			return err
		}
		pubs[i] = pub
	}
	script, err := smartcontract.CreateMultiSigRedeemScript(mInt, pubs)
	if err != nil {
		return err
	}
	ic.VM.Estack().PushVal(hash.Hash160(script).BytesBE())
	return nil
}
