// Package crypto implements the System.Crypto.* interops: the fixed hash
// functions and signature checks a compiled script can call out to
// (spec.md §4.2, §7).
package crypto

import (
	"errors"

	"github.com/n3ledger/core/pkg/core/interop"
	stdcrypto "github.com/n3ledger/core/pkg/crypto"
	"github.com/n3ledger/core/pkg/crypto/hash"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// getMessage resolves the bytes a hash/signature interop operates on: the
// top stack item if it converts to bytes directly, the signed part of a
// wrapped crypto.Verifiable, or (if the item is Null) the signed part of
// the context's container itself.
func getMessage(ic *interop.Context) ([]byte, error) {
	item := ic.VM.Estack().Pop().Item()
	return messageFromItem(ic, item)
}

func messageFromItem(ic *interop.Context, item stackitem.Item) ([]byte, error) {
	if _, ok := item.(stackitem.Null); ok {
		v, ok := ic.Container.(stdcrypto.Verifiable)
		if !ok {
			return nil, errors.New("container is not verifiable")
		}
		return v.GetSignedPart(), nil
	}
	if interopItem, ok := item.(*stackitem.Interop); ok {
		v, ok := interopItem.Value().(stdcrypto.Verifiable)
		if !ok {
			return nil, errors.New("interop item does not hold a verifiable value")
		}
		return v.GetSignedPart(), nil
	}
	return item.Bytes()
}

// Sha256 implements System.Crypto.Sha256: hash the message and push the
// raw digest.
func Sha256(ic *interop.Context) error {
	msg, err := getMessage(ic)
	if err != nil {
		return err
	}
	h := hash.Sha256(msg)
	ic.VM.Estack().PushVal(h[:])
	return nil
}

// RipeMD160 implements System.Crypto.RipeMD160: hash the message and push
// the raw digest.
func RipeMD160(ic *interop.Context) error {
	msg, err := getMessage(ic)
	if err != nil {
		return err
	}
	h := hash.RipeMD160(msg)
	ic.VM.Estack().PushVal(h[:])
	return nil
}
