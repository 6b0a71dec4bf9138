// Package contract implements the System.Contract.* interops: invoking
// another deployed contract, deriving the verification-script hash of a
// standard or multisignature account, and reading the calling script's own
// permission bitmask.
package contract

import (
	"errors"

	"github.com/n3ledger/core/pkg/core/interop"
	"github.com/n3ledger/core/pkg/core/interop/interopnames"
)

var (
	callID                  = interopnames.ToID([]byte(interopnames.SystemContractCall))
	getCallFlagsID          = interopnames.ToID([]byte(interopnames.SystemContractGetCallFlags))
	createStandardAccountID = interopnames.ToID([]byte(interopnames.SystemContractCreateStandardAccount))
	createMultisigAccountID = interopnames.ToID([]byte(interopnames.SystemContractCreateMultisigAccount))
)

// Interops is the sorted registration batch for this package's syscalls.
var Interops = []interop.Function{
	{ID: callID, Func: Call},
	{ID: getCallFlagsID, Func: GetCallFlags},
	{ID: createStandardAccountID, Func: CreateStandardAccount},
	{ID: createMultisigAccountID, Func: CreateMultisigAccount},
}

func init() {
	interop.Sort(Interops)
}

// Register adds this package's syscalls to ic's dispatch table.
func Register(ic *interop.Context) {
	ic.Functions = append(ic.Functions, Interops)
}

var errNoExecutingContext = errors.New("no executing context")

// GetCallFlags implements System.Contract.GetCallFlags: push the permission
// bitmask the currently executing context was invoked with.
func GetCallFlags(ic *interop.Context) error {
	ctx := ic.VM.Context()
	if ctx == nil {
		return errNoExecutingContext
	}
	ic.VM.Estack().PushVal(int64(ctx.CallFlag()))
	return nil
}

func popBytesArray(ic *interop.Context) ([][]byte, error) {
	items := ic.VM.Estack().Pop().Array()
	out := make([][]byte, len(items))
	for i, it := range items {
		b, err := it.Bytes()
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}
