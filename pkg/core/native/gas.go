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

// GASDecimals is the number of fractional digits a GAS balance is
// expressed in; one GAS is 10^GASDecimals of the smallest unit tracked by
// the ledger.
const GASDecimals = 8

const (
	prefixGASAccount  byte = 20
	prefixTotalSupply byte = 11
)

// ErrInsufficientFunds is returned by Burn/Transfer when an account's
// balance is smaller than the amount requested.
var ErrInsufficientFunds = errors.New("insufficient funds")

// GAS implements the GasToken native contract: the fungible token spent as
// system and network transaction fees.
type GAS struct {
	meta   *ContractMD
	NEO    *NEO
	Policy *Policy
}

// NewGAS creates a GasToken instance with its ABI wired.
func NewGAS() *GAS {
	g := &GAS{meta: NewContractMD(nativenames.Gas, GasContractID)}
	g.meta.Manifest.SupportedStandards = []string{manifest.NEP17StandardName}

	g.meta.AddMethod(MethodAndPrice{Func: g.symbol, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 15},
		toMethod("symbol", smartcontract.StringType, true))
	g.meta.AddMethod(MethodAndPrice{Func: g.decimals, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 15},
		toMethod("decimals", smartcontract.IntegerType, true))
	g.meta.AddMethod(MethodAndPrice{Func: g.totalSupply, RequiredFlags: callflag.ReadStates, CPUFee: 1 << 15},
		toMethod("totalSupply", smartcontract.IntegerType, true))
	g.meta.AddMethod(MethodAndPrice{Func: g.balanceOf, RequiredFlags: callflag.ReadStates, CPUFee: 1 << 15},
		toMethod("balanceOf", smartcontract.IntegerType, true, manifest.NewParameter("account", smartcontract.Hash160Type)))
	g.meta.AddMethod(MethodAndPrice{Func: g.transfer, RequiredFlags: callflag.States | callflag.AllowCall | callflag.AllowNotify, CPUFee: 1 << 17},
		toMethod("transfer", smartcontract.BoolType, false,
			manifest.NewParameter("from", smartcontract.Hash160Type),
			manifest.NewParameter("to", smartcontract.Hash160Type),
			manifest.NewParameter("amount", smartcontract.IntegerType),
			manifest.NewParameter("data", smartcontract.AnyType)))

	g.meta.AddEvent("Transfer",
		manifest.NewParameter("from", smartcontract.Hash160Type),
		manifest.NewParameter("to", smartcontract.Hash160Type),
		manifest.NewParameter("amount", smartcontract.IntegerType))

	return g
}

// Metadata implements NativeContract.
func (g *GAS) Metadata() *ContractMD { return g.meta }

// Initialize implements NativeContract; GAS starts with zero supply, the
// genesis block's transaction mints the initial committee allocation via
// Mint.
func (g *GAS) Initialize(ic *interop.Context) error { return nil }

// OnPersist implements NativeContract. Per-block fee burn/mint is driven
// directly by the transaction-application pipeline (not yet built) calling
// Burn/Mint, so there is nothing to do here.
func (g *GAS) OnPersist(ic *interop.Context) error { return nil }

// PostPersist implements NativeContract.
func (g *GAS) PostPersist(ic *interop.Context) error { return nil }

func gasAccountKey(h util.Uint160) []byte {
	return append([]byte{prefixGASAccount}, h.BytesBE()...)
}

// BalanceOf returns h's current GAS balance.
func (g *GAS) BalanceOf(d dao.DAO, h util.Uint160) *big.Int {
	si := d.GetStorageItem(g.meta.ID, gasAccountKey(h))
	if si == nil {
		return big.NewInt(0)
	}
	return bigint.FromBytes(si.Value)
}

// TotalSupply returns the amount of GAS minted so far.
func (g *GAS) TotalSupply(d dao.DAO) *big.Int {
	si := d.GetStorageItem(g.meta.ID, []byte{prefixTotalSupply})
	if si == nil {
		return big.NewInt(0)
	}
	return bigint.FromBytes(si.Value)
}

func (g *GAS) setBalance(d dao.DAO, h util.Uint160, v *big.Int) error {
	if v.Sign() == 0 {
		return d.DeleteStorageItem(g.meta.ID, gasAccountKey(h))
	}
	return d.PutStorageItem(g.meta.ID, gasAccountKey(h), &state.StorageItem{Value: bigint.ToBytes(v)})
}

func (g *GAS) addToSupply(d dao.DAO, delta *big.Int) error {
	total := new(big.Int).Add(g.TotalSupply(d), delta)
	return d.PutStorageItem(g.meta.ID, []byte{prefixTotalSupply}, &state.StorageItem{Value: bigint.ToBytes(total)})
}

// Mint credits amount GAS to h, raising a Transfer notification from the
// zero address.
func (g *GAS) Mint(ic *interop.Context, h util.Uint160, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return errors.New("can't mint a negative amount")
	}
	bal := new(big.Int).Add(g.BalanceOf(ic.DAO, h), amount)
	if err := g.setBalance(ic.DAO, h, bal); err != nil {
		return err
	}
	if err := g.addToSupply(ic.DAO, amount); err != nil {
		return err
	}
	g.notifyTransfer(ic, util.Uint160{}, h, amount)
	return nil
}

// Burn debits amount GAS from h, failing with ErrInsufficientFunds if h's
// balance is too small.
func (g *GAS) Burn(ic *interop.Context, h util.Uint160, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return errors.New("can't burn a negative amount")
	}
	bal := g.BalanceOf(ic.DAO, h)
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	if err := g.setBalance(ic.DAO, h, new(big.Int).Sub(bal, amount)); err != nil {
		return err
	}
	if err := g.addToSupply(ic.DAO, new(big.Int).Neg(amount)); err != nil {
		return err
	}
	g.notifyTransfer(ic, h, util.Uint160{}, amount)
	return nil
}

// Transfer moves amount GAS from `from` to `to`.
func (g *GAS) Transfer(ic *interop.Context, from, to util.Uint160, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.New("can't transfer a negative amount")
	}
	if amount.Sign() == 0 {
		g.notifyTransfer(ic, from, to, amount)
		return nil
	}
	fromBal := g.BalanceOf(ic.DAO, from)
	if fromBal.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	if err := g.setBalance(ic.DAO, from, new(big.Int).Sub(fromBal, amount)); err != nil {
		return err
	}
	toBal := new(big.Int).Add(g.BalanceOf(ic.DAO, to), amount)
	if err := g.setBalance(ic.DAO, to, toBal); err != nil {
		return err
	}
	g.notifyTransfer(ic, from, to, amount)
	return nil
}

func (g *GAS) notifyTransfer(ic *interop.Context, from, to util.Uint160, amount *big.Int) {
	ic.Notifications = append(ic.Notifications, state.NotificationEvent{
		ScriptHash: g.meta.Hash,
		Name:       "Transfer",
		Item: stackitem.NewArray([]stackitem.Item{
			stackitem.NewByteArray(from.BytesBE()),
			stackitem.NewByteArray(to.BytesBE()),
			stackitem.NewBigInteger(amount),
		}),
	})
}

func (g *GAS) symbol(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	return stackitem.NewByteArray([]byte("GAS"))
}

func (g *GAS) decimals(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	return stackitem.NewBigInteger(big.NewInt(GASDecimals))
}

func (g *GAS) totalSupply(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	return stackitem.NewBigInteger(g.TotalSupply(ic.DAO))
}

func (g *GAS) balanceOf(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	return stackitem.NewBigInteger(g.BalanceOf(ic.DAO, toUint160(args[0])))
}

func (g *GAS) transfer(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	from := toUint160(args[0])
	to := toUint160(args[1])
	amount, err := stackitem.ToBigInt(args[2])
	if err != nil {
		panic(err)
	}
	if err := g.Transfer(ic, from, to, amount); err != nil {
		panic(err)
	}
	return stackitem.NewBool(true)
}
