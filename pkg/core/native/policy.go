package native

import (
	"errors"
	"math/big"

	"github.com/n3ledger/core/pkg/core/dao"
	"github.com/n3ledger/core/pkg/core/interop"
	"github.com/n3ledger/core/pkg/core/native/nativenames"
	"github.com/n3ledger/core/pkg/core/state"
	"github.com/n3ledger/core/pkg/encoding/bigint"
	"github.com/n3ledger/core/pkg/smartcontract"
	"github.com/n3ledger/core/pkg/smartcontract/callflag"
	"github.com/n3ledger/core/pkg/smartcontract/manifest"
	"github.com/n3ledger/core/pkg/util"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// Default policy values a fresh chain starts with.
const (
	DefaultFeePerByte           = 1000
	DefaultExecFeeFactor        = interop.DefaultBaseExecFee
	DefaultStoragePrice         = 100000
	MaxFeePerByte        int64  = 100_000_000
	MaxExecFeeFactor     uint32 = 1000
	MaxStoragePrice      uint32 = 10000000
)

// Policy storage prefixes.
const (
	prefixBlockedAccount byte = 15
	prefixFeePerByte     byte = 10
	prefixExecFeeFactor  byte = 18
	prefixStoragePrice   byte = 19
)

// ErrAccountBlocked is returned by CheckBlocked (and surfaced by mempool
// verification) when a transaction signer is on the blocked-accounts list.
var ErrAccountBlocked = errors.New("account is blocked")

// Policy implements the PolicyContract native contract: the chain-wide fee
// and storage price parameters validation and execution consult, plus the
// account-blocking list mempool verification checks against.
type Policy struct {
	meta *ContractMD
}

// NewPolicy creates a PolicyContract instance with its ABI wired.
func NewPolicy() *Policy {
	p := &Policy{meta: NewContractMD(nativenames.Policy, PolicyContractID)}

	p.meta.AddMethod(MethodAndPrice{Func: p.getFeePerByte, RequiredFlags: callflag.ReadStates, CPUFee: 1 << 15},
		toMethod("getFeePerByte", smartcontract.IntegerType, true))
	p.meta.AddMethod(MethodAndPrice{Func: p.setFeePerByte, RequiredFlags: callflag.States, CPUFee: 1 << 15},
		toMethod("setFeePerByte", smartcontract.VoidType, false, manifest.NewParameter("value", smartcontract.IntegerType)))
	p.meta.AddMethod(MethodAndPrice{Func: p.getExecFeeFactor, RequiredFlags: callflag.ReadStates, CPUFee: 1 << 15},
		toMethod("getExecFeeFactor", smartcontract.IntegerType, true))
	p.meta.AddMethod(MethodAndPrice{Func: p.setExecFeeFactor, RequiredFlags: callflag.States, CPUFee: 1 << 15},
		toMethod("setExecFeeFactor", smartcontract.VoidType, false, manifest.NewParameter("value", smartcontract.IntegerType)))
	p.meta.AddMethod(MethodAndPrice{Func: p.getStoragePrice, RequiredFlags: callflag.ReadStates, CPUFee: 1 << 15},
		toMethod("getStoragePrice", smartcontract.IntegerType, true))
	p.meta.AddMethod(MethodAndPrice{Func: p.setStoragePrice, RequiredFlags: callflag.States, CPUFee: 1 << 15},
		toMethod("setStoragePrice", smartcontract.VoidType, false, manifest.NewParameter("value", smartcontract.IntegerType)))
	p.meta.AddMethod(MethodAndPrice{Func: p.isBlocked, RequiredFlags: callflag.ReadStates, CPUFee: 1 << 15},
		toMethod("isBlocked", smartcontract.BoolType, true, manifest.NewParameter("account", smartcontract.Hash160Type)))
	p.meta.AddMethod(MethodAndPrice{Func: p.blockAccount, RequiredFlags: callflag.States, CPUFee: 1 << 15},
		toMethod("blockAccount", smartcontract.BoolType, false, manifest.NewParameter("account", smartcontract.Hash160Type)))
	p.meta.AddMethod(MethodAndPrice{Func: p.unblockAccount, RequiredFlags: callflag.States, CPUFee: 1 << 15},
		toMethod("unblockAccount", smartcontract.BoolType, false, manifest.NewParameter("account", smartcontract.Hash160Type)))

	return p
}

// Metadata implements NativeContract.
func (p *Policy) Metadata() *ContractMD { return p.meta }

// Initialize seeds the default fee/price parameters at genesis.
func (p *Policy) Initialize(ic *interop.Context) error {
	if err := p.putUint32(ic.DAO, prefixFeePerByte, DefaultFeePerByte); err != nil {
		return err
	}
	if err := p.putUint32(ic.DAO, prefixExecFeeFactor, DefaultExecFeeFactor); err != nil {
		return err
	}
	return p.putUint32(ic.DAO, prefixStoragePrice, DefaultStoragePrice)
}

// OnPersist implements NativeContract.
func (p *Policy) OnPersist(ic *interop.Context) error { return nil }

// PostPersist implements NativeContract.
func (p *Policy) PostPersist(ic *interop.Context) error { return nil }

func (p *Policy) putUint32(d dao.DAO, prefix byte, value uint32) error {
	return d.PutStorageItem(p.meta.ID, []byte{prefix}, &state.StorageItem{Value: bigint.ToBytes(big.NewInt(int64(value)))})
}

func (p *Policy) getUint32(d dao.DAO, prefix byte, def uint32) uint32 {
	si := d.GetStorageItem(p.meta.ID, []byte{prefix})
	if si == nil {
		return def
	}
	return uint32(bigint.FromBytes(si.Value).Int64())
}

// GetFeePerByte returns the fee, in GAS fractions, charged per byte of a
// transaction's serialized size.
func (p *Policy) GetFeePerByte(d dao.DAO) int64 {
	return int64(p.getUint32(d, prefixFeePerByte, DefaultFeePerByte))
}

// GetExecFeeFactor returns the multiplier applied to the base opcode price
// table.
func (p *Policy) GetExecFeeFactor(d dao.DAO) int64 {
	return int64(p.getUint32(d, prefixExecFeeFactor, DefaultExecFeeFactor))
}

// GetStoragePrice returns the GAS fraction charged per byte stored by a
// contract.
func (p *Policy) GetStoragePrice(d dao.DAO) int64 {
	return int64(p.getUint32(d, prefixStoragePrice, DefaultStoragePrice))
}

func blockedAccountKey(h util.Uint160) []byte {
	return append([]byte{prefixBlockedAccount}, h.BytesBE()...)
}

// IsBlocked reports whether h is on the blocked-accounts list.
func (p *Policy) IsBlocked(d dao.DAO, h util.Uint160) bool {
	return d.GetStorageItem(p.meta.ID, blockedAccountKey(h)) != nil
}

// CheckBlocked returns ErrAccountBlocked if h is blocked, the check
// mempool verification and block application run against every signer.
func (p *Policy) CheckBlocked(d dao.DAO, h util.Uint160) error {
	if p.IsBlocked(d, h) {
		return ErrAccountBlocked
	}
	return nil
}

func (p *Policy) getFeePerByte(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	return stackitem.NewBigInteger(big.NewInt(p.GetFeePerByte(ic.DAO)))
}

func (p *Policy) setFeePerByte(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	v := toInt64(args[0])
	if v < 0 || v > MaxFeePerByte {
		panic(errors.New("FeePerByte value is out of range"))
	}
	if err := p.putUint32(ic.DAO, prefixFeePerByte, uint32(v)); err != nil {
		panic(err)
	}
	return stackitem.Null{}
}

func (p *Policy) getExecFeeFactor(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	return stackitem.NewBigInteger(big.NewInt(p.GetExecFeeFactor(ic.DAO)))
}

func (p *Policy) setExecFeeFactor(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	v := toInt64(args[0])
	if v <= 0 || v > int64(MaxExecFeeFactor) {
		panic(errors.New("ExecFeeFactor value is out of range"))
	}
	if err := p.putUint32(ic.DAO, prefixExecFeeFactor, uint32(v)); err != nil {
		panic(err)
	}
	return stackitem.Null{}
}

func (p *Policy) getStoragePrice(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	return stackitem.NewBigInteger(big.NewInt(p.GetStoragePrice(ic.DAO)))
}

func (p *Policy) setStoragePrice(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	v := toInt64(args[0])
	if v < 0 || v > int64(MaxStoragePrice) {
		panic(errors.New("StoragePrice value is out of range"))
	}
	if err := p.putUint32(ic.DAO, prefixStoragePrice, uint32(v)); err != nil {
		panic(err)
	}
	return stackitem.Null{}
}

func (p *Policy) isBlocked(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	h := toUint160(args[0])
	return stackitem.NewBool(p.IsBlocked(ic.DAO, h))
}

func (p *Policy) blockAccount(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	h := toUint160(args[0])
	if p.IsBlocked(ic.DAO, h) {
		return stackitem.NewBool(false)
	}
	if err := ic.DAO.PutStorageItem(p.meta.ID, blockedAccountKey(h), &state.StorageItem{Value: []byte{1}}); err != nil {
		panic(err)
	}
	return stackitem.NewBool(true)
}

func (p *Policy) unblockAccount(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	h := toUint160(args[0])
	if !p.IsBlocked(ic.DAO, h) {
		return stackitem.NewBool(false)
	}
	if err := ic.DAO.DeleteStorageItem(p.meta.ID, blockedAccountKey(h)); err != nil {
		panic(err)
	}
	return stackitem.NewBool(true)
}

func toInt64(it stackitem.Item) int64 {
	v, err := stackitem.ToInt64(it)
	if err != nil {
		panic(err)
	}
	return v
}

func toUint160(it stackitem.Item) util.Uint160 {
	b, err := it.Bytes()
	if err != nil {
		panic(err)
	}
	h, err := util.Uint160DecodeBytesBE(b)
	if err != nil {
		panic(err)
	}
	return h
}
