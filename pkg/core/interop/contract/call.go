package contract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/n3ledger/core/pkg/core/interop"
	"github.com/n3ledger/core/pkg/smartcontract/callflag"
	"github.com/n3ledger/core/pkg/smartcontract/manifest"
	"github.com/n3ledger/core/pkg/util"
)

var (
	errNotAllowedToCall = errors.New("disallowed call flags")
	errRecursiveCall    = errors.New("call depth limit exceeded")
)

// MaxCallDepth bounds how many nested System.Contract.Call invocations a
// single transaction may chain, guarding against unbounded recursion.
const MaxCallDepth = 1024

// Call implements System.Contract.Call: resolve the target contract and
// method by the manifest ABI, check the caller's declared permissions
// against it, and push a new VM context to execute it with an isolated
// evaluation stack.
func Call(ic *interop.Context) error {
	h, err := util.Uint160DecodeBytesBE(ic.VM.Estack().Pop().Bytes())
	if err != nil {
		return err
	}
	method := ic.VM.Estack().Pop().String()
	flags := callflag.CallFlag(ic.VM.Estack().Pop().BigInt().Int64())
	args := ic.VM.Estack().Pop().Array()

	if strings.HasPrefix(method, "_") {
		return fmt.Errorf("invalid method name: %s", method)
	}

	curCtx := ic.VM.Context()
	if curCtx == nil {
		return errNoExecutingContext
	}
	if !curCtx.CallFlag().Has(callflag.AllowCall) {
		return errNotAllowedToCall
	}
	flags &= curCtx.CallFlag()

	callerHash := curCtx.ScriptHash()
	target, err := ic.DAO.GetContractState(h)
	if err != nil {
		return fmt.Errorf("called contract %s not found: %w", h.StringLE(), err)
	}

	m := target.Manifest.ABI.GetMethod(method, len(args))
	if m == nil {
		return fmt.Errorf("method not found: %s/%d", method, len(args))
	}

	if caller, err := ic.DAO.GetContractState(callerHash); err == nil {
		if !isCallAllowed(&caller.Manifest, h, &target.Manifest, method) {
			return fmt.Errorf("disallowed method call: %s", method)
		}
	}

	if ic.Invocations == nil {
		ic.Invocations = make(map[util.Uint160]int)
	}
	ic.Invocations[h]++
	if ic.Invocations[h] > MaxCallDepth {
		return errRecursiveCall
	}

	if m.Safe {
		flags &^= callflag.WriteStates
	}

	ic.VM.LoadScriptWithHash(target.NEF.Script, h, flags)
	newCtx := ic.VM.Context()
	for _, a := range args {
		ic.VM.Estack().PushItem(a)
	}
	return newCtx.Jump(m.Offset)
}

// isCallAllowed reports whether caller's manifest permits it to invoke
// method on the contract described by targetHash/targetManifest.
func isCallAllowed(caller *manifest.Manifest, targetHash util.Uint160, target *manifest.Manifest, method string) bool {
	for i := range caller.Permissions {
		if caller.Permissions[i].IsAllowed(targetHash, target, method) {
			return true
		}
	}
	return false
}
