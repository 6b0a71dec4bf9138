package crypto

import (
	"errors"

	"github.com/n3ledger/core/pkg/core/fee"
	"github.com/n3ledger/core/pkg/core/interop"
	"github.com/n3ledger/core/pkg/core/interop/interopnames"
	"github.com/n3ledger/core/pkg/crypto/hash"
	"github.com/n3ledger/core/pkg/crypto/keys"
)

var (
	checkSigID               = interopnames.ToID([]byte(interopnames.SystemCryptoCheckSig))
	neoCryptoCheckMultisigID = interopnames.ToID([]byte(interopnames.SystemCryptoCheckMultisig))
)

// Interops is the sorted registration batch for this package's syscalls.
var Interops = []interop.Function{
	{ID: checkSigID, Func: ECDSASecp256r1CheckSig},
	{ID: neoCryptoCheckMultisigID, Func: ECDSASecp256r1CheckMultisig},
}

func init() {
	interop.Sort(Interops)
}

// Register adds this package's syscalls to ic's dispatch table.
func Register(ic *interop.Context) {
	ic.Functions = append(ic.Functions, Interops)
}

// ECDSASecp256r1CheckSig implements System.Crypto.CheckSig: verify a single
// signature over the script container against a public key.
func ECDSASecp256r1CheckSig(ic *interop.Context) error {
	if ic.VM.Estack().Len() < 2 {
		return errors.New("missing argument")
	}
	pubBytes := ic.VM.Estack().Pop().Bytes()
	sign := ic.VM.Estack().Pop().Bytes()

	pub, err := keys.NewPublicKeyFromBytes(pubBytes)
	if err != nil {
		return err
	}
	if err := ic.VM.UseGas(fee.ECDSAVerifyPrice); err != nil {
		return err
	}
	hh, ok := ic.Container.(hash.Hashable)
	if !ok {
		return errors.New("script container is not hashable")
	}
	res := pub.VerifyHashable(sign, ic.Network, hh)
	ic.VM.Estack().PushVal(res)
	return nil
}

// ECDSASecp256r1CheckMultisig implements System.Crypto.CheckMultisig: verify
// that sigs is a valid, strictly-ordered subset of signatures matching pubs
// against the script container.
func ECDSASecp256r1CheckMultisig(ic *interop.Context) error {
	pubItems := ic.VM.Estack().Pop().Array()
	sigItems := ic.VM.Estack().Pop().Array()

	pubs := make([]*keys.PublicKey, len(pubItems))
	for i, item := range pubItems {
		b, err := item.Bytes()
		if err != nil {
			return err
		}
		pub, err := keys.NewPublicKeyFromBytes(b)
		if err != nil {
			return err
		}
		pubs[i] = pub
	}

	sigs := make([][]byte, len(sigItems))
	for i, item := range sigItems {
		b, err := item.Bytes()
		if err != nil {
			return err
		}
		sigs[i] = b
	}

	if len(sigs) > len(pubs) {
		return errors.New("too many signatures")
	}

	hh, ok := ic.Container.(hash.Hashable)
	if !ok {
		return errors.New("script container is not hashable")
	}

	sigOK := true
	i, j := 0, 0
	for i < len(sigs) && j < len(pubs) && sigOK {
		if err := ic.VM.UseGas(fee.ECDSAVerifyPrice); err != nil {
			return err
		}
		if pubs[j].VerifyHashable(sigs[i], ic.Network, hh) {
			i++
		}
		j++
		if len(sigs)-i > len(pubs)-j {
			sigOK = false
		}
	}
	ic.VM.Estack().PushVal(sigOK && i == len(sigs))
	return nil
}
