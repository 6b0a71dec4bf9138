package native

import (
	"math/big"

	"github.com/n3ledger/core/pkg/core/block"
	"github.com/n3ledger/core/pkg/core/interop"
	"github.com/n3ledger/core/pkg/core/native/nativenames"
	"github.com/n3ledger/core/pkg/core/state"
	"github.com/n3ledger/core/pkg/core/transaction"
	"github.com/n3ledger/core/pkg/smartcontract"
	"github.com/n3ledger/core/pkg/smartcontract/callflag"
	"github.com/n3ledger/core/pkg/smartcontract/manifest"
	"github.com/n3ledger/core/pkg/util"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

const prefixBlockHash byte = 1

// Ledger implements the LedgerContract native contract: read-only access
// to committed blocks and transactions, the only way a running script can
// look at chain history without reaching outside the sandbox.
type Ledger struct {
	meta *ContractMD
}

// NewLedger creates a LedgerContract instance with its ABI wired.
func NewLedger() *Ledger {
	l := &Ledger{meta: NewContractMD(nativenames.Ledger, LedgerContractID)}

	l.meta.AddMethod(MethodAndPrice{Func: l.currentHash, RequiredFlags: callflag.ReadStates, CPUFee: 1 << 15},
		toMethod("currentHash", smartcontract.Hash256Type, true))
	l.meta.AddMethod(MethodAndPrice{Func: l.currentIndex, RequiredFlags: callflag.ReadStates, CPUFee: 1 << 15},
		toMethod("currentIndex", smartcontract.IntegerType, true))
	l.meta.AddMethod(MethodAndPrice{Func: l.getBlock, RequiredFlags: callflag.ReadStates, CPUFee: 1 << 16},
		toMethod("getBlock", smartcontract.ArrayType, true, manifest.NewParameter("indexOrHash", smartcontract.ByteArrayType)))
	l.meta.AddMethod(MethodAndPrice{Func: l.getTransaction, RequiredFlags: callflag.ReadStates, CPUFee: 1 << 16},
		toMethod("getTransaction", smartcontract.ArrayType, true, manifest.NewParameter("hash", smartcontract.Hash256Type)))
	l.meta.AddMethod(MethodAndPrice{Func: l.getTransactionHeight, RequiredFlags: callflag.ReadStates, CPUFee: 1 << 15},
		toMethod("getTransactionHeight", smartcontract.IntegerType, true, manifest.NewParameter("hash", smartcontract.Hash256Type)))

	return l
}

// Metadata implements NativeContract.
func (l *Ledger) Metadata() *ContractMD { return l.meta }

// Initialize implements NativeContract; Ledger has no state to seed before
// the genesis block, which it records through OnPersist like any other.
func (l *Ledger) Initialize(ic *interop.Context) error { return nil }

// OnPersist records the block about to be applied under its own storage,
// indexed by height, so getBlock(index) can resolve a hash without
// consulting the DAO's hash-keyed block store directly.
func (l *Ledger) OnPersist(ic *interop.Context) error {
	if ic.Block == nil {
		return nil
	}
	key := make([]byte, 5)
	key[0] = prefixBlockHash
	bigEndianPutUint32(key[1:], ic.Block.Index)
	h := ic.Block.Hash()
	return ic.DAO.PutStorageItem(l.meta.ID, key, &state.StorageItem{Value: h.BytesBE()})
}

// PostPersist implements NativeContract.
func (l *Ledger) PostPersist(ic *interop.Context) error { return nil }

func bigEndianPutUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

// GetBlockHash resolves the hash of the block stored at index, or false if
// no block has been persisted there yet.
func (l *Ledger) GetBlockHash(ic *interop.Context, index uint32) (util.Uint256, bool) {
	key := make([]byte, 5)
	key[0] = prefixBlockHash
	bigEndianPutUint32(key[1:], index)
	si := ic.DAO.GetStorageItem(l.meta.ID, key)
	if si == nil {
		return util.Uint256{}, false
	}
	h, err := util.Uint256DecodeBytesBE(si.Value)
	if err != nil {
		return util.Uint256{}, false
	}
	return h, true
}

func (l *Ledger) currentHash(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	height, err := ic.DAO.GetCurrentBlockHeight()
	if err != nil {
		return stackitem.NewByteArray(util.Uint256{}.BytesBE())
	}
	h, _ := l.GetBlockHash(ic, height)
	return stackitem.NewByteArray(h.BytesBE())
}

func (l *Ledger) currentIndex(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	height, err := ic.DAO.GetCurrentBlockHeight()
	if err != nil {
		return stackitem.NewBigInteger(big.NewInt(0))
	}
	return stackitem.NewBigInteger(big.NewInt(int64(height)))
}

func (l *Ledger) resolveBlock(ic *interop.Context, it stackitem.Item) *block.Block {
	b, err := it.Bytes()
	if err != nil {
		return nil
	}
	var hash util.Uint256
	if len(b) == util.Uint256Size {
		hash, err = util.Uint256DecodeBytesBE(b)
		if err != nil {
			return nil
		}
	} else {
		idx, err := stackitem.ToInt64(it)
		if err != nil || idx < 0 {
			return nil
		}
		var ok bool
		hash, ok = l.GetBlockHash(ic, uint32(idx))
		if !ok {
			return nil
		}
	}
	blk, err := ic.DAO.GetBlock(hash)
	if err != nil {
		return nil
	}
	return blk
}

func (l *Ledger) getBlock(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	blk := l.resolveBlock(ic, args[0])
	if blk == nil {
		return stackitem.Null{}
	}
	return blockToStackItem(blk)
}

func blockToStackItem(b *block.Block) stackitem.Item {
	return stackitem.NewArray([]stackitem.Item{
		stackitem.NewByteArray(b.Hash().BytesBE()),
		stackitem.NewBigInteger(big.NewInt(int64(b.Version))),
		stackitem.NewByteArray(b.PrevHash.BytesBE()),
		stackitem.NewByteArray(b.MerkleRoot.BytesBE()),
		stackitem.NewBigInteger(new(big.Int).SetUint64(b.Timestamp)),
		stackitem.NewBigInteger(big.NewInt(int64(b.Index))),
		stackitem.NewByteArray(b.NextConsensus.BytesBE()),
		stackitem.NewBigInteger(big.NewInt(int64(len(b.Transactions)))),
	})
}

func (l *Ledger) getTransaction(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	b, err := args[0].Bytes()
	if err != nil {
		panic(err)
	}
	h, err := util.Uint256DecodeBytesBE(b)
	if err != nil {
		panic(err)
	}
	tx, _, txErr := ic.DAO.GetTransaction(h)
	if txErr != nil {
		return stackitem.Null{}
	}
	return transactionToStackItem(tx)
}

func transactionToStackItem(tx *transaction.Transaction) stackitem.Item {
	return stackitem.NewArray([]stackitem.Item{
		stackitem.NewByteArray(tx.Hash().BytesBE()),
		stackitem.NewBigInteger(big.NewInt(int64(tx.Version))),
		stackitem.NewBigInteger(big.NewInt(int64(tx.Nonce))),
		stackitem.NewBigInteger(big.NewInt(int64(tx.SystemFee))),
		stackitem.NewBigInteger(big.NewInt(int64(tx.NetworkFee))),
		stackitem.NewBigInteger(big.NewInt(int64(tx.ValidUntilBlock))),
		stackitem.NewByteArray(tx.Script),
	})
}

func (l *Ledger) getTransactionHeight(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	b, err := args[0].Bytes()
	if err != nil {
		panic(err)
	}
	h, err := util.Uint256DecodeBytesBE(b)
	if err != nil {
		panic(err)
	}
	_, height, txErr := ic.DAO.GetTransaction(h)
	if txErr != nil {
		return stackitem.NewBigInteger(big.NewInt(-1))
	}
	return stackitem.NewBigInteger(big.NewInt(int64(height)))
}
