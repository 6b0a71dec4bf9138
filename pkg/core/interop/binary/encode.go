// Package binary implements the System.Binary.* interop functions: stack
// item (de)serialization and base58/base64 (de)coding, the primitives a
// contract uses to move structured values across the ByteString boundary.
package binary

import (
	"encoding/base64"

	"github.com/mr-tron/base58"
	"github.com/n3ledger/core/pkg/core/interop"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// Serialize pops a stack item and pushes its binary encoding.
func Serialize(ic *interop.Context) error {
	item := ic.VM.Estack().Pop().Item()
	data, err := stackitem.Serialize(item)
	if err != nil {
		return err
	}
	ic.VM.Estack().PushVal(data)
	return nil
}

// Deserialize pops a byte string and pushes the stack item it decodes to.
func Deserialize(ic *interop.Context) error {
	data := ic.VM.Estack().Pop().Bytes()
	item, err := stackitem.Deserialize(data)
	if err != nil {
		return err
	}
	ic.VM.Estack().PushItem(item)
	return nil
}

// EncodeBase64 pops a byte string and pushes its standard base64 encoding.
func EncodeBase64(ic *interop.Context) error {
	src := ic.VM.Estack().Pop().Bytes()
	ic.VM.Estack().PushVal([]byte(base64.StdEncoding.EncodeToString(src)))
	return nil
}

// DecodeBase64 pops a base64-encoded string and pushes the decoded bytes.
func DecodeBase64(ic *interop.Context) error {
	src := ic.VM.Estack().Pop().String()
	data, err := base64.StdEncoding.DecodeString(src)
	if err != nil {
		return err
	}
	ic.VM.Estack().PushVal(data)
	return nil
}

// EncodeBase58 pops a byte string and pushes its base58 encoding.
func EncodeBase58(ic *interop.Context) error {
	src := ic.VM.Estack().Pop().Bytes()
	ic.VM.Estack().PushVal([]byte(base58.Encode(src)))
	return nil
}

// DecodeBase58 pops a base58-encoded string and pushes the decoded bytes.
func DecodeBase58(ic *interop.Context) error {
	src := ic.VM.Estack().Pop().String()
	data, err := base58.Decode(src)
	if err != nil {
		return err
	}
	ic.VM.Estack().PushVal(data)
	return nil
}
