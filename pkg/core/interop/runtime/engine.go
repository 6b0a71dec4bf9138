// Package runtime implements the System.Runtime.* interops: the handful of
// syscalls a contract uses to introspect the invocation it is running
// inside of rather than to touch ledger state (spec.md §4.2, §7).
package runtime

import (
	"errors"
	"math/big"

	"github.com/n3ledger/core/pkg/core/interop"
	"github.com/n3ledger/core/pkg/core/interop/interopnames"
	"github.com/n3ledger/core/pkg/encoding/address"
	"github.com/n3ledger/core/pkg/util"
	"github.com/n3ledger/core/pkg/vm/stackitem"
	"go.uber.org/zap"
)

// MaxNotificationSize is the maximum number of bytes a single
// System.Runtime.Log message or a serialized System.Runtime.Notify
// argument array may occupy.
const MaxNotificationSize = 1024

// MaxEventNameLen is the maximum length of a System.Runtime.Notify event
// name.
const MaxEventNameLen = 32

var (
	getTriggerID             = interopnames.ToID([]byte(interopnames.SystemRuntimeGetTrigger))
	platformID               = interopnames.ToID([]byte(interopnames.SystemRuntimePlatform))
	getTimeID                = interopnames.ToID([]byte(interopnames.SystemRuntimeGetTime))
	getEntryScriptHashID     = interopnames.ToID([]byte(interopnames.SystemRuntimeGetEntryScriptHash))
	getCallingScriptHashID   = interopnames.ToID([]byte(interopnames.SystemRuntimeGetCallingScriptHash))
	getExecutingScriptHashID = interopnames.ToID([]byte(interopnames.SystemRuntimeGetExecutingScriptHash))
	logID                    = interopnames.ToID([]byte(interopnames.SystemRuntimeLog))
	gasLeftID                = interopnames.ToID([]byte(interopnames.SystemRuntimeGasLeft))
	getNotificationsID       = interopnames.ToID([]byte(interopnames.SystemRuntimeGetNotifications))
	getInvocationCounterID   = interopnames.ToID([]byte(interopnames.SystemRuntimeGetInvocationCounter))
	burnGasID                = interopnames.ToID([]byte(interopnames.SystemRuntimeBurnGas))
	getNetworkID             = interopnames.ToID([]byte(interopnames.SystemRuntimeGetNetwork))
	getAddressVersionID      = interopnames.ToID([]byte(interopnames.SystemRuntimeGetAddressVersion))
	notifyID                 = interopnames.ToID([]byte(interopnames.SystemRuntimeNotify))
	checkWitnessID           = interopnames.ToID([]byte(interopnames.SystemRuntimeCheckWitness))
	getRandomID              = interopnames.ToID([]byte(interopnames.SystemRuntimeGetRandom))
	getScriptContainerID     = interopnames.ToID([]byte(interopnames.SystemRuntimeGetScriptContainer))
)

// Interops is the sorted registration batch for this package's syscalls.
var Interops = []interop.Function{
	{ID: getTriggerID, Func: GetTrigger},
	{ID: platformID, Func: Platform},
	{ID: getTimeID, Func: GetTime},
	{ID: getEntryScriptHashID, Func: GetEntryScriptHash},
	{ID: getCallingScriptHashID, Func: GetCallingScriptHash},
	{ID: getExecutingScriptHashID, Func: GetExecutingScriptHash},
	{ID: logID, Func: Log},
	{ID: gasLeftID, Func: GasLeft},
	{ID: getNotificationsID, Func: GetNotifications},
	{ID: getInvocationCounterID, Func: GetInvocationCounter},
	{ID: burnGasID, Func: BurnGas},
	{ID: getNetworkID, Func: GetNetwork},
	{ID: getAddressVersionID, Func: GetAddressVersion},
	{ID: notifyID, Func: Notify},
	{ID: checkWitnessID, Func: CheckWitness},
	{ID: getRandomID, Func: GetRandom},
	{ID: getScriptContainerID, Func: GetScriptContainer},
}

func init() {
	interop.Sort(Interops)
}

// Register adds this package's syscalls to ic's dispatch table.
func Register(ic *interop.Context) {
	ic.Functions = append(ic.Functions, Interops)
}

// GetTrigger implements System.Runtime.GetTrigger: push the trigger type
// this invocation tree is running under.
func GetTrigger(ic *interop.Context) error {
	ic.VM.Estack().PushVal(int64(ic.Trigger))
	return nil
}

// Platform implements System.Runtime.Platform: push the running platform's
// name, a constant every Neo N3 node reports identically.
func Platform(ic *interop.Context) error {
	ic.VM.Estack().PushVal("NEO")
	return nil
}

// GetTime implements System.Runtime.GetTime: push the timestamp of the
// block currently being processed.
func GetTime(ic *interop.Context) error {
	var ts uint64
	if ic.Block != nil {
		ts = ic.Block.Timestamp
	}
	ic.VM.Estack().PushVal(new(big.Int).SetUint64(ts))
	return nil
}

// GetEntryScriptHash implements System.Runtime.GetEntryScriptHash: push the
// hash of the bottom-most invocation frame.
func GetEntryScriptHash(ic *interop.Context) error {
	ctx := ic.VM.EntryContext()
	if ctx == nil {
		return errors.New("no executing context")
	}
	h := ctx.ScriptHash()
	ic.VM.Estack().PushVal(h.BytesBE())
	return nil
}

// GetCallingScriptHash implements System.Runtime.GetCallingScriptHash: push
// the hash of the frame that invoked the currently executing one, or the
// zero hash if the current frame is the entry point.
func GetCallingScriptHash(ic *interop.Context) error {
	ctx := ic.VM.CallingContext()
	if ctx == nil {
		ic.VM.Estack().PushVal(util.Uint160{}.BytesBE())
		return nil
	}
	h := ctx.ScriptHash()
	ic.VM.Estack().PushVal(h.BytesBE())
	return nil
}

// GetExecutingScriptHash implements System.Runtime.GetExecutingScriptHash:
// push the hash of the currently executing frame.
func GetExecutingScriptHash(ic *interop.Context) error {
	ctx := ic.VM.Context()
	if ctx == nil {
		return errors.New("no executing context")
	}
	h := ctx.ScriptHash()
	ic.VM.Estack().PushVal(h.BytesBE())
	return nil
}

// Log implements System.Runtime.Log: write a contract-supplied string to
// the node's structured log, tagged with the script that logged it.
func Log(ic *interop.Context) error {
	msg, err := stackitem.ToString(ic.VM.Estack().Pop().Item())
	if err != nil {
		return err
	}
	if len(msg) > MaxNotificationSize {
		return errors.New("message length exceeds max size")
	}
	ctx := ic.VM.Context()
	var script util.Uint160
	if ctx != nil {
		script = ctx.ScriptHash()
	}
	ic.Log.Info(msg, zap.String("script", script.StringLE()))
	return nil
}

// GetAddressVersion implements System.Runtime.GetAddressVersion: push the
// address version byte this chain's addresses are encoded with.
func GetAddressVersion(ic *interop.Context) error {
	ic.VM.Estack().PushVal(int64(address.NEO3Prefix))
	return nil
}

// GetScriptContainer implements System.Runtime.GetScriptContainer: push an
// interop item wrapping the transaction or block under verification.
func GetScriptContainer(ic *interop.Context) error {
	if ic.Container == nil {
		return errors.New("no script container")
	}
	ic.VM.Estack().PushItem(stackitem.NewInterop(ic.Container))
	return nil
}
