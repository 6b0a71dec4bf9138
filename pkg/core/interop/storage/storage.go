package storage

import (
	"errors"

	"github.com/n3ledger/core/pkg/config/limits"
	"github.com/n3ledger/core/pkg/core/interop"
	"github.com/n3ledger/core/pkg/core/interop/interopnames"
	"github.com/n3ledger/core/pkg/core/state"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// DefaultStoragePrice is the GAS cost, per byte, System.Storage.Put charges
// for growing a contract's storage. It shadows the Policy native contract's
// StoragePrice value, which isn't wired up yet; once the Policy contract
// exists this should read from there instead of a fixed constant.
const DefaultStoragePrice = 100000

var (
	getContextID         = interopnames.ToID([]byte(interopnames.SystemStorageGetContext))
	getReadOnlyContextID = interopnames.ToID([]byte(interopnames.SystemStorageGetReadOnlyContext))
	asReadOnlyID         = interopnames.ToID([]byte(interopnames.SystemStorageAsReadOnly))
	getID                = interopnames.ToID([]byte(interopnames.SystemStorageGet))
	putID                = interopnames.ToID([]byte(interopnames.SystemStoragePut))
	deleteID             = interopnames.ToID([]byte(interopnames.SystemStorageDelete))
	findID               = interopnames.ToID([]byte(interopnames.SystemStorageFind))
)

// Interops is the sorted registration batch for this package's syscalls.
var Interops = []interop.Function{
	{ID: getContextID, Func: GetContext},
	{ID: getReadOnlyContextID, Func: GetReadOnlyContext},
	{ID: asReadOnlyID, Func: ContextAsReadOnly},
	{ID: getID, Func: Get},
	{ID: putID, Func: Put},
	{ID: deleteID, Func: Delete},
	{ID: findID, Func: Find},
}

func init() {
	interop.Sort(Interops)
}

// Register adds this package's syscalls to ic's dispatch table.
func Register(ic *interop.Context) {
	ic.Functions = append(ic.Functions, Interops)
}

// currentContractID resolves the ID a contract state was assigned at
// deployment for the script currently executing.
func currentContractID(ic *interop.Context) (int32, error) {
	ctx := ic.VM.Context()
	if ctx == nil {
		return 0, errors.New("no executing context")
	}
	cs, err := ic.DAO.GetContractState(ctx.ScriptHash())
	if err != nil {
		return 0, err
	}
	return cs.ID, nil
}

// GetContext implements System.Storage.GetContext: push a writable handle
// to the currently executing contract's storage namespace.
func GetContext(ic *interop.Context) error {
	id, err := currentContractID(ic)
	if err != nil {
		return err
	}
	ic.VM.Estack().PushItem(stackitem.NewInterop(&Context{ID: id}))
	return nil
}

// GetReadOnlyContext implements System.Storage.GetReadOnlyContext: push a
// read-only handle to the currently executing contract's storage namespace.
func GetReadOnlyContext(ic *interop.Context) error {
	id, err := currentContractID(ic)
	if err != nil {
		return err
	}
	ic.VM.Estack().PushItem(stackitem.NewInterop(&Context{ID: id, ReadOnly: true}))
	return nil
}

// ContextAsReadOnly implements System.Storage.AsReadOnly: pop a storage
// context and push back an equivalent handle that can no longer Put/Delete.
func ContextAsReadOnly(ic *interop.Context) error {
	stc, err := popContext(ic)
	if err != nil {
		return err
	}
	if !stc.ReadOnly {
		stc = &Context{ID: stc.ID, ReadOnly: true}
	}
	ic.VM.Estack().PushItem(stackitem.NewInterop(stc))
	return nil
}

// errNotStorageContext is returned by every System.Storage.* function when
// its first argument isn't a storage context interop item.
var errNotStorageContext = errors.New("not a storage context")

func popContext(ic *interop.Context) (*Context, error) {
	item, ok := ic.VM.Estack().Pop().Item().(*stackitem.Interop)
	if !ok {
		return nil, errNotStorageContext
	}
	stc, ok := item.Value().(*Context)
	if !ok {
		return nil, errNotStorageContext
	}
	return stc, nil
}

// Get implements System.Storage.Get: push the value stored at key within
// the given context, or Null if it isn't set.
func Get(ic *interop.Context) error {
	stc, err := popContext(ic)
	if err != nil {
		return err
	}
	key := ic.VM.Estack().Pop().Bytes()
	si := ic.DAO.GetStorageItem(stc.ID, key)
	if si == nil {
		ic.VM.Estack().PushItem(stackitem.Null{})
		return nil
	}
	ic.VM.Estack().PushVal(si.Value)
	return nil
}

// Put implements System.Storage.Put: write value at key within the given
// context, charging gas proportional to the storage it grows.
func Put(ic *interop.Context) error {
	stc, err := popContext(ic)
	if err != nil {
		return err
	}
	key := ic.VM.Estack().Pop().Bytes()
	value := ic.VM.Estack().Pop().Bytes()

	if len(key) > limits.MaxStorageKeyLen {
		return errors.New("key is too big")
	}
	if len(value) > limits.MaxStorageValueLen {
		return errors.New("value is too big")
	}
	if stc.ReadOnly {
		return errReadOnly
	}

	si := ic.DAO.GetStorageItem(stc.ID, key)
	var sizeInc int
	if si == nil {
		sizeInc = len(key) + len(value)
	} else if len(value) > len(si.Value) {
		sizeInc = len(value) - len(si.Value)
	}
	if sizeInc > 0 && !ic.VM.AddGas(int64(sizeInc) * DefaultStoragePrice) {
		return ErrGasLimitExceeded
	}

	return ic.DAO.PutStorageItem(stc.ID, key, &state.StorageItem{Value: value})
}

// Delete implements System.Storage.Delete: remove the value at key within
// the given context.
func Delete(ic *interop.Context) error {
	stc, err := popContext(ic)
	if err != nil {
		return err
	}
	key := ic.VM.Estack().Pop().Bytes()
	if stc.ReadOnly {
		return errReadOnly
	}
	return ic.DAO.DeleteStorageItem(stc.ID, key)
}
