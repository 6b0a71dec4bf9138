// Package interop defines the contract every native dispatcher and SYSCALL
// handler is built against: Context, the bundle of ledger/VM/transaction
// state a single interop invocation needs, and Function, the registration
// record that maps a 4-byte interop ID to the Go closure implementing it.
// The subpackages (binary, contract, crypto, enumerator, interopnames,
// iterator, json, runtime, storage) hold the handlers themselves; this
// package only holds the wiring they register against.
package interop

import (
	"errors"

	"github.com/n3ledger/core/pkg/config"
	"github.com/n3ledger/core/pkg/core/block"
	"github.com/n3ledger/core/pkg/core/dao"
	"github.com/n3ledger/core/pkg/core/state"
	"github.com/n3ledger/core/pkg/core/transaction"
	"github.com/n3ledger/core/pkg/smartcontract/trigger"
	"github.com/n3ledger/core/pkg/util"
	"github.com/n3ledger/core/pkg/vm"
	"go.uber.org/zap"
)

// Function is a single registered interop method: the numeric ID a compiled
// script's SYSCALL instruction carries, the handler implementing it, and
// the hard-fork (if any) that must be active before it can be called.
type Function struct {
	ID         uint32
	Func       func(*Context) error
	ActiveFrom config.Hardfork
}

// Context bundles the state a running interop function needs to reach
// outside the VM's stack machine: the ledger DAO it reads and writes
// through, the container (transaction or block) being processed, and the
// hard-fork heights that gate which functions are even callable yet.
type Context struct {
	// Hardforks maps a hard-fork's String() name to the block index it
	// activates at. A hard-fork absent from this map has never been
	// configured for the running chain and is treated as not yet enabled.
	Hardforks map[string]uint32
	Block     *block.Block
	// Container is the transaction or block whose witnesses are under
	// verification; crypto interop functions hash and check signatures
	// against it.
	Container interface{}
	// Tx is Container asserted to a *transaction.Transaction when the
	// running trigger is transaction-scoped, the shortcut
	// System.Runtime.CheckWitness and friends use instead of repeating
	// that assertion themselves.
	Tx        *transaction.Transaction
	Trigger   trigger.Type
	Network   uint32
	DAO       dao.DAO
	VM        *vm.VM

	// Functions holds one slice per registration batch (a subpackage's
	// Register call, or a native contract's syscall set), each sorted by
	// ID so GetFunction can binary search it.
	Functions [][]Function

	Invocations   map[util.Uint160]int
	Notifications []state.NotificationEvent

	// Log receives System.Runtime.Log output, the same structured logger the
	// rest of the node writes through.
	Log *zap.Logger
}

// Sort orders fs by ID in place, the precondition GetFunction's binary
// search over a registration batch relies on.
func Sort(fs []Function) {
	for i := 1; i < len(fs); i++ {
		for j := i; j > 0 && fs[j-1].ID > fs[j].ID; j-- {
			fs[j-1], fs[j] = fs[j], fs[j-1]
		}
	}
}

// IsHardforkEnabled reports whether hf is active at the context's current
// block. HFDefault is always active. Any other hard-fork not present in
// Hardforks has never been configured for this chain and is reported as
// disabled.
func (ic *Context) IsHardforkEnabled(hf config.Hardfork) bool {
	if hf == config.HFDefault {
		return true
	}
	height, ok := ic.Hardforks[hf.String()]
	if !ok {
		return false
	}
	if ic.Block == nil {
		return height == 0
	}
	return ic.Block.Index >= height
}

// GetFunction looks id up across all registered batches, most recently
// registered first, and returns nil both when no batch knows the ID and
// when the match exists but its ActiveFrom hard-fork isn't enabled yet.
func (ic *Context) GetFunction(id uint32) *Function {
	for i := len(ic.Functions) - 1; i >= 0; i-- {
		group := ic.Functions[i]
		lo, hi := 0, len(group)
		for lo < hi {
			mid := (lo + hi) / 2
			if group[mid].ID < id {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo < len(group) && group[lo].ID == id {
			f := group[lo]
			if !ic.IsHardforkEnabled(f.ActiveFrom) {
				return nil
			}
			return &f
		}
	}
	return nil
}

// DefaultBaseExecFee is the execution fee factor Policy starts a new chain
// with, the multiplier fee.Opcode scales the per-opcode price table by
// until governance votes it to a different value.
const DefaultBaseExecFee = 30

var errSyscallNotActive = errors.New("syscall not active at this height")

// SpawnVM builds a fresh *vm.VM wired to dispatch every registered
// Function through this Context, and records it as ic.VM.
func (ic *Context) SpawnVM() *vm.VM {
	v := vm.New()
	v.Interop = ic
	for _, group := range ic.Functions {
		for _, f := range group {
			fn := f.Func
			hf := f.ActiveFrom
			v.RegisterSyscall(f.ID, func(_ *vm.VM) error {
				if !ic.IsHardforkEnabled(hf) {
					return errSyscallNotActive
				}
				return fn(ic)
			})
		}
	}
	ic.VM = v
	return v
}
