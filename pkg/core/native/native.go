// Package native implements the built-in contracts every Neo N3 chain
// starts with: ContractManagement, the NEO and GAS tokens, PolicyContract,
// RoleManagement, LedgerContract, CryptoLib and StdLib. Unlike deployed
// contracts they carry no NEF script; System.Contract.Call dispatches into
// them by looking a method up in their ContractMD.Methods table and
// invoking the matching Go closure directly instead of running VM
// bytecode.
package native

import (
	"github.com/n3ledger/core/pkg/config"
	"github.com/n3ledger/core/pkg/core/interop"
	"github.com/n3ledger/core/pkg/core/state"
	"github.com/n3ledger/core/pkg/smartcontract/callflag"
	"github.com/n3ledger/core/pkg/smartcontract/manifest"
	"github.com/n3ledger/core/pkg/util"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// Fixed contract IDs, negative as real deployed contracts always receive
// a positive ID from ContractManagement's counter.
const (
	ManagementContractID int32 = -1
	LedgerContractID     int32 = -2
	NeoContractID        int32 = -3
	GasContractID        int32 = -4
	PolicyContractID     int32 = -5
	DesignationContractID int32 = -6
	OracleContractID     int32 = -7
	CryptoLibContractID  int32 = -8
	StdLibContractID     int32 = -9
)

// MethodAndPrice is one ABI method of a native contract paired with the Go
// closure that implements it, the call flags it requires, and the fixed
// CPU/storage fee charged for invoking it.
type MethodAndPrice struct {
	Func          func(ic *interop.Context, args []stackitem.Item) stackitem.Item
	MD            *manifest.Method
	RequiredFlags callflag.CallFlag
	CPUFee        int64
	StorageFee    int64
}

// ContractMD is the metadata a native contract exposes: its assigned name
// and ID, the deterministic hash it is addressed by, its ABI-described
// method table, and the manifest built from that table.
type ContractMD struct {
	Name     string
	ID       int32
	Hash     util.Uint160
	Methods  []MethodAndPrice
	Manifest manifest.Manifest
}

// NativeHash derives the fixed hash a native contract is addressed by: the
// same deployment-hash formula a regular contract uses, with a zero sender
// and a zero NEF checksum standing in for the fact that natives are never
// actually deployed through ContractManagement.Deploy.
func NativeHash(name string) util.Uint160 {
	return state.CreateContractHash(util.Uint160{}, 0, name)
}

// NewContractMD creates contract metadata with the given name and ID,
// wildcard-permissioned like the reference compiler's default manifest.
func NewContractMD(name string, id int32) *ContractMD {
	c := &ContractMD{
		Name: name,
		ID:   id,
		Hash: NativeHash(name),
	}
	c.Manifest = *manifest.NewManifest(name)
	c.Manifest.Permissions = []manifest.Permission{*manifest.NewPermission(manifest.PermissionWildcard)}
	return c
}

// AddMethod registers a method in both the Go dispatch table and the
// manifest ABI it is described by.
func (c *ContractMD) AddMethod(m MethodAndPrice, desc *manifest.Method) {
	m.MD = desc
	c.Methods = append(c.Methods, m)
	c.Manifest.ABI.Methods = append(c.Manifest.ABI.Methods, *desc)
}

// AddEvent registers a notification event in the manifest ABI.
func (c *ContractMD) AddEvent(name string, params ...manifest.Parameter) {
	c.Manifest.ABI.Events = append(c.Manifest.ABI.Events, manifest.NewEvent(name, params...))
}

// GetMethod looks a method up by name and parameter count, -1 matching any
// count, the same two-argument lookup interop/contract.Call uses for
// deployed contracts.
func (c *ContractMD) GetMethod(name string, paramCount int) (MethodAndPrice, bool) {
	for _, m := range c.Methods {
		if m.MD.Name == name && (paramCount == -1 || len(m.MD.Parameters) == paramCount) {
			return m, true
		}
	}
	return MethodAndPrice{}, false
}

// NativeContract is implemented by every built-in contract: Metadata
// exposes its dispatch table, Initialize seeds its storage the first time
// the hard-fork that introduces it activates, and OnPersist/PostPersist
// run its per-block bookkeeping before and after transactions are applied.
type NativeContract interface {
	Metadata() *ContractMD
	Initialize(ic *interop.Context) error
	OnPersist(ic *interop.Context) error
	PostPersist(ic *interop.Context) error
}

// Contracts is the fixed set of native contracts a chain runs, indexed by
// hash and by name for System.Contract.Call and manifest-permission
// resolution.
type Contracts struct {
	Contracts []NativeContract

	Management *Management
	Ledger     *Ledger
	NEO        *NEO
	GAS        *GAS
	Policy     *Policy
	Designate  *Designate
	CryptoLib  *CryptoLib
	StdLib     *StdLib

	byHash map[util.Uint160]NativeContract
	byName map[string]NativeContract
}

// NewContracts builds the standard native contract set and wires their
// cross-contract references (Management needs Policy's minimum deployment
// fee, NEO needs GAS to mint block rewards into, and so on).
func NewContracts(cfg config.ProtocolConfiguration) *Contracts {
	cs := &Contracts{
		byHash: make(map[util.Uint160]NativeContract),
		byName: make(map[string]NativeContract),
	}

	policy := NewPolicy()
	mgmt := NewManagement()
	mgmt.Policy = policy
	ledger := NewLedger()
	gas := NewGAS()
	neo := NewNEO()
	neo.GAS = gas
	neo.Policy = policy
	gas.NEO = neo
	gas.Policy = policy
	designate := NewDesignate(cfg.P2PSigExtensions)
	crypto := NewCryptoLib()
	std := NewStdLib()

	cs.Management, cs.Ledger, cs.NEO, cs.GAS = mgmt, ledger, neo, gas
	cs.Policy, cs.Designate, cs.CryptoLib, cs.StdLib = policy, designate, crypto, std

	cs.add(mgmt)
	cs.add(ledger)
	cs.add(neo)
	cs.add(gas)
	cs.add(policy)
	cs.add(designate)
	cs.add(crypto)
	cs.add(std)
	return cs
}

func (cs *Contracts) add(c NativeContract) {
	cs.Contracts = append(cs.Contracts, c)
	cs.byHash[c.Metadata().Hash] = c
	cs.byName[c.Metadata().Name] = c
}

// ByHash returns the native contract deployed at h, or nil.
func (cs *Contracts) ByHash(h util.Uint160) NativeContract {
	return cs.byHash[h]
}

// ByName returns the native contract registered under name, or nil.
func (cs *Contracts) ByName(name string) NativeContract {
	return cs.byName[name]
}

// InitializeAll runs Initialize on every registered contract against a
// freshly created chain's DAO, the genesis-block bootstrap step.
func (cs *Contracts) InitializeAll(ic *interop.Context) error {
	for _, c := range cs.Contracts {
		if err := c.Initialize(ic); err != nil {
			return err
		}
	}
	return nil
}

// OnPersistAll runs every contract's OnPersist hook, called once per block
// before any transaction is applied.
func (cs *Contracts) OnPersistAll(ic *interop.Context) error {
	for _, c := range cs.Contracts {
		if err := c.OnPersist(ic); err != nil {
			return err
		}
	}
	return nil
}

// PostPersistAll runs every contract's PostPersist hook, called once per
// block after every transaction has been applied.
func (cs *Contracts) PostPersistAll(ic *interop.Context) error {
	for _, c := range cs.Contracts {
		if err := c.PostPersist(ic); err != nil {
			return err
		}
	}
	return nil
}
