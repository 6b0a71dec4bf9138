package native

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/n3ledger/core/pkg/core/dao"
	"github.com/n3ledger/core/pkg/core/interop"
	"github.com/n3ledger/core/pkg/core/native/nativenames"
	"github.com/n3ledger/core/pkg/core/state"
	"github.com/n3ledger/core/pkg/core/storage"
	"github.com/n3ledger/core/pkg/encoding/bigint"
	"github.com/n3ledger/core/pkg/smartcontract"
	"github.com/n3ledger/core/pkg/smartcontract/callflag"
	"github.com/n3ledger/core/pkg/smartcontract/manifest"
	"github.com/n3ledger/core/pkg/smartcontract/nef"
	"github.com/n3ledger/core/pkg/util"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// Storage key prefixes used by ContractManagement.
const (
	prefixNextAvailableID byte = 15
)

// ErrAlreadyDeployed is returned by Deploy when a contract with the
// derived hash is already on chain.
var ErrAlreadyDeployed = errors.New("contract already deployed")

// ErrNotDeployed is returned by Update/Destroy when no contract is stored
// at the given hash.
var ErrNotDeployed = errors.New("contract not deployed")

// Management implements the ContractManagement native contract: deploying,
// updating and destroying the contracts the rest of the chain calls
// through interop/contract.Call.
type Management struct {
	meta   *ContractMD
	Policy *Policy
}

// NewManagement creates a ContractManagement instance with its ABI wired.
func NewManagement() *Management {
	m := &Management{meta: NewContractMD(nativenames.Management, ManagementContractID)}

	m.meta.AddMethod(MethodAndPrice{
		Func:          m.deploy,
		RequiredFlags: callflag.All,
		CPUFee:        1 << 15,
	}, toMethod("deploy", smartcontract.ArrayType, false,
		manifest.NewParameter("nefFile", smartcontract.ByteArrayType),
		manifest.NewParameter("manifest", smartcontract.ByteArrayType)))

	m.meta.AddMethod(MethodAndPrice{
		Func:          m.update,
		RequiredFlags: callflag.All,
		CPUFee:        1 << 15,
	}, toMethod("update", smartcontract.VoidType, false,
		manifest.NewParameter("nefFile", smartcontract.ByteArrayType),
		manifest.NewParameter("manifest", smartcontract.ByteArrayType)))

	m.meta.AddMethod(MethodAndPrice{
		Func:          m.destroy,
		RequiredFlags: callflag.All,
		CPUFee:        1 << 15,
	}, toMethod("destroy", smartcontract.VoidType, false))

	m.meta.AddMethod(MethodAndPrice{
		Func:          m.getContract,
		RequiredFlags: callflag.ReadStates,
		CPUFee:        1 << 15,
	}, toMethod("getContract", smartcontract.ArrayType, true,
		manifest.NewParameter("hash", smartcontract.Hash160Type)))

	m.meta.AddEvent("Deploy", manifest.NewParameter("Hash", smartcontract.Hash160Type))
	m.meta.AddEvent("Update", manifest.NewParameter("Hash", smartcontract.Hash160Type))
	m.meta.AddEvent("Destroy", manifest.NewParameter("Hash", smartcontract.Hash160Type))

	return m
}

func toMethod(name string, ret smartcontract.ParamType, safe bool, params ...manifest.Parameter) *manifest.Method {
	md := manifest.NewMethod(name, ret, -1, safe, params...)
	return &md
}

// Metadata implements NativeContract.
func (m *Management) Metadata() *ContractMD { return m.meta }

// Initialize seeds the next-contract-id counter the first time the chain
// runs; called once from genesis.
func (m *Management) Initialize(ic *interop.Context) error {
	return ic.DAO.PutStorageItem(m.meta.ID, []byte{prefixNextAvailableID}, &state.StorageItem{Value: bigint.ToBytes(big.NewInt(1))})
}

// OnPersist implements NativeContract; ContractManagement has no
// per-block bookkeeping of its own.
func (m *Management) OnPersist(ic *interop.Context) error { return nil }

// PostPersist implements NativeContract.
func (m *Management) PostPersist(ic *interop.Context) error { return nil }

func (m *Management) getNextContractID(d dao.DAO) (int32, error) {
	si := d.GetStorageItem(m.meta.ID, []byte{prefixNextAvailableID})
	if si == nil {
		return 0, errors.New("nextAvailableID is not initialized")
	}
	id := bigint.FromBytes(si.Value)
	next := new(big.Int).Add(id, big.NewInt(1))
	if err := d.PutStorageItem(m.meta.ID, []byte{prefixNextAvailableID}, &state.StorageItem{Value: bigint.ToBytes(next)}); err != nil {
		return 0, err
	}
	return int32(id.Int64()), nil
}

// Deploy stores a new contract derived from sender/nf/man and returns its
// persisted state.
func (m *Management) Deploy(ic *interop.Context, sender util.Uint160, nf *nef.File, man *manifest.Manifest) (*state.Contract, error) {
	if man.Name == "" {
		return nil, fmt.Errorf("manifest name can not be empty")
	}
	h := state.CreateContractHash(sender, nf.Checksum, man.Name)
	if _, err := ic.DAO.GetContractState(h); err == nil {
		return nil, ErrAlreadyDeployed
	}
	if err := man.IsValid(h, true); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	id, err := m.getNextContractID(ic.DAO)
	if err != nil {
		return nil, err
	}
	cs := &state.Contract{
		ID:       id,
		Hash:     h,
		NEF:      *nf,
		Manifest: *man,
	}
	if err := ic.DAO.PutContractState(cs); err != nil {
		return nil, err
	}
	return cs, nil
}

// Update replaces the NEF and/or manifest of the contract at h, bumping
// its UpdateCounter.
func (m *Management) Update(ic *interop.Context, h util.Uint160, nf *nef.File, man *manifest.Manifest) (*state.Contract, error) {
	cs, err := ic.DAO.GetContractState(h)
	if err != nil {
		return nil, ErrNotDeployed
	}
	updated := &state.Contract{
		ID:            cs.ID,
		UpdateCounter: cs.UpdateCounter + 1,
		Hash:          cs.Hash,
		NEF:           cs.NEF,
		Manifest:      cs.Manifest,
	}
	if nf != nil {
		updated.NEF = *nf
	}
	if man != nil {
		if err := man.IsValid(h, true); err != nil {
			return nil, fmt.Errorf("invalid manifest: %w", err)
		}
		updated.Manifest = *man
	}
	if err := ic.DAO.PutContractState(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Destroy removes the contract at h along with its storage.
func (m *Management) Destroy(d dao.DAO, h util.Uint160) error {
	cs, err := d.GetContractState(h)
	if err != nil {
		return ErrNotDeployed
	}
	var keys [][]byte
	d.Seek(cs.ID, storage.SeekRange{}, func(k, v []byte) bool {
		keys = append(keys, append([]byte{}, k...))
		return true
	})
	for _, k := range keys {
		d.DeleteStorageItem(cs.ID, k)
	}
	return d.DeleteContractState(h)
}

func (m *Management) deploy(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	nefBytes, err := args[0].Bytes()
	if err != nil {
		panic(err)
	}
	manBytes, err := args[1].Bytes()
	if err != nil {
		panic(err)
	}
	nf, err := nef.FileFromBytes(nefBytes)
	if err != nil {
		panic(err)
	}
	var man manifest.Manifest
	if err := json.Unmarshal(manBytes, &man); err != nil {
		panic(err)
	}
	ctx := ic.VM.Context()
	if ctx == nil {
		panic(errNoExecutingContextMgmt)
	}
	cs, err := m.Deploy(ic, ctx.ScriptHash(), &nf, &man)
	if err != nil {
		panic(err)
	}
	ic.Notifications = append(ic.Notifications, state.NotificationEvent{
		ScriptHash: m.meta.Hash,
		Name:       "Deploy",
		Item:       stackitem.NewArray([]stackitem.Item{stackitem.NewByteArray(cs.Hash.BytesBE())}),
	})
	return contractToStackItem(cs)
}

func (m *Management) update(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	nefBytes, err := args[0].Bytes()
	if err != nil {
		panic(err)
	}
	manBytes, err := args[1].Bytes()
	if err != nil {
		panic(err)
	}
	var nf *nef.File
	if len(nefBytes) > 0 {
		parsed, err := nef.FileFromBytes(nefBytes)
		if err != nil {
			panic(err)
		}
		nf = &parsed
	}
	var man *manifest.Manifest
	if len(manBytes) > 0 {
		man = &manifest.Manifest{}
		if err := json.Unmarshal(manBytes, man); err != nil {
			panic(err)
		}
	}
	ctx := ic.VM.Context()
	if ctx == nil {
		panic(errNoExecutingContextMgmt)
	}
	cs, err := m.Update(ic, ctx.ScriptHash(), nf, man)
	if err != nil {
		panic(err)
	}
	ic.Notifications = append(ic.Notifications, state.NotificationEvent{
		ScriptHash: m.meta.Hash,
		Name:       "Update",
		Item:       stackitem.NewArray([]stackitem.Item{stackitem.NewByteArray(cs.Hash.BytesBE())}),
	})
	return stackitem.Null{}
}

func (m *Management) destroy(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	ctx := ic.VM.Context()
	if ctx == nil {
		panic(errNoExecutingContextMgmt)
	}
	h := ctx.ScriptHash()
	if err := m.Destroy(ic.DAO, h); err != nil {
		panic(err)
	}
	ic.Notifications = append(ic.Notifications, state.NotificationEvent{
		ScriptHash: m.meta.Hash,
		Name:       "Destroy",
		Item:       stackitem.NewArray([]stackitem.Item{stackitem.NewByteArray(h.BytesBE())}),
	})
	return stackitem.Null{}
}

func (m *Management) getContract(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	b, err := args[0].Bytes()
	if err != nil {
		panic(err)
	}
	h, err := util.Uint160DecodeBytesBE(b)
	if err != nil {
		panic(err)
	}
	cs, err := ic.DAO.GetContractState(h)
	if err != nil {
		return stackitem.Null{}
	}
	return contractToStackItem(cs)
}

func contractToStackItem(cs *state.Contract) stackitem.Item {
	manBytes, _ := json.Marshal(cs.Manifest)
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewBigInteger(big.NewInt(int64(cs.ID))),
		stackitem.NewBigInteger(big.NewInt(int64(cs.UpdateCounter))),
		stackitem.NewByteArray(cs.Hash.BytesBE()),
		stackitem.NewByteArray(cs.NEF.Script),
		stackitem.NewByteArray(manBytes),
	})
}

var errNoExecutingContextMgmt = errors.New("no executing context")
