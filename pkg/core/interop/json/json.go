// Package json implements System.Json.Serialize/Deserialize, the RPC-style
// JSON encoding a contract can use to exchange structured data without a
// native contract's help.
package json

import (
	"errors"

	"github.com/n3ledger/core/pkg/core/interop"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

var errTooBigJSON = errors.New("encoded JSON exceeds the maximum item size")

// Serialize implements System.Json.Serialize: encode the top stack item as
// RPC-style JSON and push the encoded bytes.
func Serialize(ic *interop.Context) error {
	item := ic.VM.Estack().Pop().Item()
	data, err := stackitem.ToJSON(item)
	if err != nil {
		return err
	}
	if len(data) > stackitem.MaxSize {
		return errTooBigJSON
	}
	ic.VM.Estack().PushVal(data)
	return nil
}

// Deserialize implements System.Json.Deserialize: decode the top stack
// item's bytes as RPC-style JSON and push the resulting item.
func Deserialize(ic *interop.Context) error {
	data := ic.VM.Estack().Pop().Bytes()
	item, err := stackitem.FromJSON(data)
	if err != nil {
		return err
	}
	ic.VM.Estack().PushItem(item)
	return nil
}
