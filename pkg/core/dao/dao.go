// Package dao wraps the ordered key/value store (pkg/core/storage) with the
// ledger's key layout: blocks, transactions, application execution logs,
// per-contract storage, and the handful of singleton system records
// (version, current height, state-sync checkpoints).
package dao

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/n3ledger/core/pkg/core/block"
	"github.com/n3ledger/core/pkg/core/state"
	"github.com/n3ledger/core/pkg/core/storage"
	"github.com/n3ledger/core/pkg/core/transaction"
	"github.com/n3ledger/core/pkg/io"
	"github.com/n3ledger/core/pkg/smartcontract/trigger"
	"github.com/n3ledger/core/pkg/util"
)

// ErrAlreadyExists is returned by HasTransaction when a transaction with
// the given hash is already stored.
var ErrAlreadyExists = errors.New("transaction already exists")

// ErrHasConflicts is returned by HasTransaction when a stored transaction
// declared a Conflicts attribute against the given hash.
var ErrHasConflicts = errors.New("transaction has conflicts")

// DAO is the storage contract the interop layer and the block-application
// pipeline use; Simple and Cached both implement it, letting application
// work against an in-memory overlay that is only flushed to the backing
// store once a block is fully verified.
type DAO interface {
	GetAndDecode(entity io.Serializable, key []byte) error
	Put(entity io.Serializable, key []byte) error
	GetStorageItem(id int32, key []byte) *state.StorageItem
	PutStorageItem(id int32, key []byte, si *state.StorageItem) error
	DeleteStorageItem(id int32, key []byte) error
	Seek(id int32, rng storage.SeekRange, f func(k, v []byte) bool)
	GetContractState(hash util.Uint160) (*state.Contract, error)
	PutContractState(cs *state.Contract) error
	DeleteContractState(hash util.Uint160) error
	GetBlock(hash util.Uint256) (*block.Block, error)
	StoreAsBlock(b *block.Block, aer *state.AppExecResult) error
	StoreAsCurrentBlock(b *block.Block, aer *state.AppExecResult) error
	GetCurrentBlockHeight() (uint32, error)
	GetVersion() (Version, error)
	PutVersion(v Version) error
	HasTransaction(hash util.Uint256) error
	StoreAsTransaction(tx *transaction.Transaction, index uint32, aer *state.AppExecResult) error
	GetTransaction(hash util.Uint256) (*transaction.Transaction, uint32, error)
	AppendAppExecResult(aer *state.AppExecResult, buf []byte) error
	GetAppExecResults(hash util.Uint256, trig trigger.Type) ([]state.AppExecResult, error)
	GetStateSyncPoint() (uint32, error)
	PutStateSyncPoint(p uint32) error
	GetStateSyncCurrentBlockHeight() (uint32, error)
	PutStateSyncCurrentBlockHeight(h uint32) error
	Persist() (int, error)
}

// Version is the persisted node/database format identifier.
type Version struct {
	Prefix byte
	Value  string
}

// EncodeBinary implements the io.Serializable interface.
func (v *Version) EncodeBinary(w *io.BinWriter) {
	w.WriteB(v.Prefix)
	w.WriteString(v.Value)
}

// DecodeBinary implements the io.Serializable interface.
func (v *Version) DecodeBinary(r *io.BinReader) {
	v.Prefix = r.ReadB()
	v.Value = r.ReadString()
}

// Simple is the DAO layer wrapping a storage.MemCachedStore: every Put/
// Delete stages into that store's own overlay, and Persist flushes it one
// level down. A DAO built directly with NewSimple and never Persisted
// behaves like a write-through layer over backend since MemCachedStore's
// reads already check the overlay first; Cached relies on the same
// mechanism to stack further staging levels on top.
type Simple struct {
	Store             storage.Store
	stateRootInHeader bool
	p2pSigExtensions  bool
	// storagePrefix is STStorage for a regular node and STTempStorage for
	// one still downloading state via P2P state sync; the latter is
	// switched in once the state-sync module (pkg/core/mpt) starts
	// populating a second DAO instance ahead of the chain's real height.
	storagePrefix storage.KeyPrefix
}

// NewSimple creates a persistent DAO wrapping backend in its own staging
// overlay. stateRootInHeader controls whether block headers carry a state
// root (and hence whether PrevStateRoot participates in block hashing);
// p2pSigExtensions enables tracking of the Conflicts transaction attribute.
func NewSimple(backend storage.Store, stateRootInHeader bool, p2pSigExtensions bool) *Simple {
	return &Simple{
		Store:             storage.NewMemCachedStore(backend),
		stateRootInHeader: stateRootInHeader,
		p2pSigExtensions:  p2pSigExtensions,
		storagePrefix:     storage.STStorage,
	}
}

// daoConfig carries the dial-in behavior NewCached propagates from
// whatever DAO it wraps into the fresh Simple it stacks on top.
type daoConfig struct {
	stateRootInHeader bool
	p2pSigExtensions  bool
	storagePrefix     storage.KeyPrefix
}

// daoProvider is implemented by every DAO this package provides, letting
// NewCached layer a new staging Store over whatever d is currently
// writing to and inherit its behavior flags.
type daoProvider interface {
	getStore() storage.Store
	getConfig() daoConfig
}

func (dao *Simple) getStore() storage.Store {
	return dao.Store
}

func (dao *Simple) getConfig() daoConfig {
	return daoConfig{
		stateRootInHeader: dao.stateRootInHeader,
		p2pSigExtensions:  dao.p2pSigExtensions,
		storagePrefix:     dao.storagePrefix,
	}
}

// GetAndDecode retrieves a value by key and decodes it into entity.
func (dao *Simple) GetAndDecode(entity io.Serializable, key []byte) error {
	data, err := dao.Store.Get(key)
	if err != nil {
		return err
	}
	r := io.NewBinReaderFromBuf(data)
	entity.DecodeBinary(r)
	return r.Err
}

// Put serializes entity and stores it under key.
func (dao *Simple) Put(entity io.Serializable, key []byte) error {
	buf := io.NewBufBinWriter()
	entity.EncodeBinary(buf.BinWriter)
	if buf.Err != nil {
		return buf.Err
	}
	return dao.Store.Put(key, buf.Bytes())
}

// makeStorageItemKey builds the (prefix, contract id, key) storage key a
// contract's STStorage/STTempStorage entries live under.
func makeStorageItemKey(prefix storage.KeyPrefix, id int32, key []byte) []byte {
	buf := make([]byte, 1+4+len(key))
	buf[0] = byte(prefix)
	binary.LittleEndian.PutUint32(buf[1:5], uint32(id))
	copy(buf[5:], key)
	return buf
}

// GetStorageItem returns the contract storage value at (id, key), or nil
// if absent.
func (dao *Simple) GetStorageItem(id int32, key []byte) *state.StorageItem {
	b, err := dao.Store.Get(makeStorageItemKey(dao.storagePrefix, id, key))
	if err != nil {
		return nil
	}
	si := &state.StorageItem{}
	r := io.NewBinReaderFromBuf(b)
	si.DecodeBinary(r)
	if r.Err != nil {
		return nil
	}
	return si
}

// PutStorageItem stores si at (id, key).
func (dao *Simple) PutStorageItem(id int32, key []byte, si *state.StorageItem) error {
	buf := io.NewBufBinWriter()
	si.EncodeBinary(buf.BinWriter)
	if buf.Err != nil {
		return buf.Err
	}
	return dao.Store.Put(makeStorageItemKey(dao.storagePrefix, id, key), buf.Bytes())
}

// DeleteStorageItem removes the value at (id, key).
func (dao *Simple) DeleteStorageItem(id int32, key []byte) error {
	return dao.Store.Delete(makeStorageItemKey(dao.storagePrefix, id, key))
}

// Seek iterates every storage entry belonging to contract id whose key
// starts with rng.Prefix, in ascending order (or descending when
// rng.Backwards is set), starting at rng.Start. The id-scoping prefix is
// stripped from the keys f observes; rng.Prefix is not.
func (dao *Simple) Seek(id int32, rng storage.SeekRange, f func(k, v []byte) bool) {
	idPrefix := makeStorageItemKey(dao.storagePrefix, id, nil)
	innerRng := storage.SeekRange{
		Prefix:    append(append([]byte{}, idPrefix...), rng.Prefix...),
		Start:     rng.Start,
		Backwards: rng.Backwards,
	}
	dao.Store.Seek(innerRng, func(k, v []byte) bool {
		return f(k[len(idPrefix):], v)
	})
}

// contractStateKey builds the DataExecutable-style key a deployed
// contract's state is stored under, keyed by its hash.
func contractStateKey(hash util.Uint160) []byte {
	key := make([]byte, 1+util.Uint160Size)
	key[0] = byte(contractStatePrefix)
	copy(key[1:], hash.BytesBE())
	return key
}

// contractStatePrefix is a dedicated partition of the STStorage namespace
// keyed directly by contract hash, distinct from a contract's own storage
// entries (which live under (id, key) via makeStorageItemKey).
const contractStatePrefix storage.KeyPrefix = 0x0c

// GetContractState returns the deployed contract at hash.
func (dao *Simple) GetContractState(hash util.Uint160) (*state.Contract, error) {
	cs := &state.Contract{}
	if err := dao.GetAndDecode(cs, contractStateKey(hash)); err != nil {
		return nil, fmt.Errorf("failed to get contract state: %w", err)
	}
	return cs, nil
}

// PutContractState stores cs, keyed by its hash.
func (dao *Simple) PutContractState(cs *state.Contract) error {
	return dao.Put(cs, contractStateKey(cs.Hash))
}

// DeleteContractState removes the deployed contract at hash.
func (dao *Simple) DeleteContractState(hash util.Uint160) error {
	return dao.Store.Delete(contractStateKey(hash))
}

func blockKey(hash util.Uint256) []byte {
	key := make([]byte, 1+util.Uint256Size)
	key[0] = byte(storage.DataExecutable)
	copy(key[1:], hash.BytesBE())
	return key
}

const (
	executableBlock       byte = 1
	executableTransaction byte = 2
)

// GetBlock returns the trimmed block at hash (header plus transaction
// hashes only; full transactions are fetched separately via
// StoreAsTransaction's records).
func (dao *Simple) GetBlock(hash util.Uint256) (*block.Block, error) {
	b, err := dao.Store.Get(blockKey(hash))
	if err != nil {
		return nil, fmt.Errorf("failed to get block: %w", err)
	}
	if len(b) < 1 || b[0] != executableBlock {
		return nil, fmt.Errorf("not a block")
	}
	blk, err := block.NewBlockFromTrimmedBytes(dao.stateRootInHeader, b[1:])
	if err != nil {
		return nil, fmt.Errorf("failed to decode block: %w", err)
	}
	return blk, nil
}

// StoreAsBlock stores b, keyed by its hash, alongside its OnPersist/
// PostPersist application execution results if provided.
func (dao *Simple) StoreAsBlock(b *block.Block, aer *state.AppExecResult) error {
	trimmed, err := b.Trim()
	if err != nil {
		return err
	}
	buf := append([]byte{executableBlock}, trimmed...)
	if err := dao.Store.Put(blockKey(b.Hash()), buf); err != nil {
		return err
	}
	if aer != nil {
		return dao.AppendAppExecResult(aer, nil)
	}
	return nil
}

// currentBlockKey is the SYSCurrentBlock singleton record.
var currentBlockKey = storage.SYSCurrentBlock.Bytes()

// StoreAsCurrentBlock records b as the chain tip, in addition to storing
// it via StoreAsBlock.
func (dao *Simple) StoreAsCurrentBlock(b *block.Block, aer *state.AppExecResult) error {
	if err := dao.StoreAsBlock(b, aer); err != nil {
		return err
	}
	buf := io.NewBufBinWriter()
	h := b.Hash()
	h.EncodeBinary(buf.BinWriter)
	buf.WriteU32LE(b.Index)
	if buf.Err != nil {
		return buf.Err
	}
	return dao.Store.Put(currentBlockKey, buf.Bytes())
}

// GetCurrentBlockHeight returns the height of the stored chain tip.
func (dao *Simple) GetCurrentBlockHeight() (uint32, error) {
	b, err := dao.Store.Get(currentBlockKey)
	if err != nil {
		return 0, err
	}
	r := io.NewBinReaderFromBuf(b)
	var h util.Uint256
	h.DecodeBinary(r)
	height := r.ReadU32LE()
	if r.Err != nil {
		return 0, r.Err
	}
	return height, nil
}

// versionKey is the SYSVersion singleton record.
var versionKey = storage.SYSVersion.Bytes()

// GetVersion retrieves the stored database format version, accepting both
// the current Version record and a bare legacy version string.
func (dao *Simple) GetVersion() (Version, error) {
	data, err := dao.Store.Get(versionKey)
	if err != nil {
		return Version{}, err
	}
	v := Version{}
	r := io.NewBinReaderFromBuf(data)
	v.DecodeBinary(r)
	if r.Err != nil {
		return Version{Value: string(data)}, nil
	}
	return v, nil
}

// PutVersion stores v as the database format version.
func (dao *Simple) PutVersion(v Version) error {
	return dao.Put(&v, versionKey)
}

func txKey(hash util.Uint256) []byte {
	key := make([]byte, 1+util.Uint256Size)
	key[0] = byte(storage.DataExecutable)
	copy(key[1:], hash.BytesBE())
	return key
}

// txStorageEntry is the wire wrapper a stored transaction carries: the
// executable-type tag, the block index it was included in, and the
// transaction itself.
type txStorageEntry struct {
	blockIndex uint32
	tx         *transaction.Transaction
}

func (e *txStorageEntry) EncodeBinary(w *io.BinWriter) {
	w.WriteB(executableTransaction)
	w.WriteU32LE(e.blockIndex)
	e.tx.EncodeBinary(w)
}

func (e *txStorageEntry) DecodeBinary(r *io.BinReader) {
	tag := r.ReadB()
	if r.Err == nil && tag != executableTransaction {
		r.Err = fmt.Errorf("not a transaction")
		return
	}
	e.blockIndex = r.ReadU32LE()
	if r.Err != nil {
		return
	}
	e.tx = &transaction.Transaction{}
	e.tx.DecodeBinary(r)
}

// StoreAsTransaction stores tx, keyed by its hash, recording the index of
// the block it was included in. When p2pSigExtensions is enabled, it also
// indexes any Conflicts attributes tx declares against other transactions.
func (dao *Simple) StoreAsTransaction(tx *transaction.Transaction, index uint32, aer *state.AppExecResult) error {
	entry := &txStorageEntry{blockIndex: index, tx: tx}
	buf := io.NewBufBinWriter()
	entry.EncodeBinary(buf.BinWriter)
	if buf.Err != nil {
		return buf.Err
	}
	if err := dao.Store.Put(txKey(tx.Hash()), buf.Bytes()); err != nil {
		return err
	}
	if dao.p2pSigExtensions {
		for _, attr := range tx.GetAttributes(transaction.ConflictsT) {
			c := attr.Value.(*transaction.Conflicts)
			if err := dao.Store.Put(conflictKey(c.Hash), []byte{}); err != nil {
				return err
			}
		}
	}
	if aer != nil {
		return dao.AppendAppExecResult(aer, nil)
	}
	return nil
}

// GetTransaction returns the transaction stored under hash along with the
// index of the block it was included in.
func (dao *Simple) GetTransaction(hash util.Uint256) (*transaction.Transaction, uint32, error) {
	b, err := dao.Store.Get(txKey(hash))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get transaction: %w", err)
	}
	entry := &txStorageEntry{}
	r := io.NewBinReaderFromBuf(b)
	entry.DecodeBinary(r)
	if r.Err != nil {
		return nil, 0, fmt.Errorf("failed to decode transaction: %w", r.Err)
	}
	return entry.tx, entry.blockIndex, nil
}

func conflictKey(hash util.Uint256) []byte {
	key := make([]byte, 1+util.Uint256Size)
	key[0] = byte(conflictsPrefix)
	copy(key[1:], hash.BytesBE())
	return key
}

// conflictsPrefix indexes hashes named by a stored transaction's Conflicts
// attribute, distinct from DataExecutable (which indexes the transactions
// themselves).
const conflictsPrefix storage.KeyPrefix = 0x0d

// HasTransaction reports whether hash is already stored as a transaction,
// or is named by another stored transaction's Conflicts attribute.
func (dao *Simple) HasTransaction(hash util.Uint256) error {
	if _, err := dao.Store.Get(txKey(hash)); err == nil {
		return ErrAlreadyExists
	}
	if dao.p2pSigExtensions {
		if _, err := dao.Store.Get(conflictKey(hash)); err == nil {
			return ErrHasConflicts
		}
	}
	return nil
}

func appExecResultKey(hash util.Uint256, trig trigger.Type) []byte {
	key := make([]byte, 1+util.Uint256Size+1)
	key[0] = byte(appExecResultPrefix)
	copy(key[1:], hash.BytesBE())
	key[1+util.Uint256Size] = byte(trig)
	return key
}

// appExecResultPrefix indexes application execution logs by
// (container hash, trigger type).
const appExecResultPrefix storage.KeyPrefix = 0x0e

// AppendAppExecResult stores aer, keyed by its container hash and trigger
// type. buf is an optional scratch buffer reused across calls.
func (dao *Simple) AppendAppExecResult(aer *state.AppExecResult, buf []byte) error {
	w := io.NewBufBinWriter()
	aer.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return w.Err
	}
	return dao.Store.Put(appExecResultKey(aer.Container, aer.Trigger), w.Bytes())
}

// GetAppExecResults returns every stored execution log for hash matching
// trig (trigger.All matches every trigger type).
func (dao *Simple) GetAppExecResults(hash util.Uint256, trig trigger.Type) ([]state.AppExecResult, error) {
	var results []state.AppExecResult
	for _, t := range []trigger.Type{trigger.OnPersist, trigger.PostPersist, trigger.Verification, trigger.Application} {
		if trig != trigger.All && trig&t == 0 {
			continue
		}
		data, err := dao.Store.Get(appExecResultKey(hash, t))
		if err != nil {
			continue
		}
		aer := state.AppExecResult{}
		r := io.NewBinReaderFromBuf(data)
		aer.DecodeBinary(r)
		if r.Err != nil {
			return nil, r.Err
		}
		results = append(results, aer)
	}
	return results, nil
}

var stateSyncPointKey = storage.SYSStateSyncPoint.Bytes()

// GetStateSyncPoint returns the block height the state-sync module has
// targeted for MPT download.
func (dao *Simple) GetStateSyncPoint() (uint32, error) {
	b, err := dao.Store.Get(stateSyncPointKey)
	if err != nil {
		return 0, err
	}
	if len(b) != 4 {
		return 0, fmt.Errorf("invalid state sync point record")
	}
	return binary.LittleEndian.Uint32(b), nil
}

// PutStateSyncPoint records the state-sync module's target height.
func (dao *Simple) PutStateSyncPoint(p uint32) error {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, p)
	return dao.Store.Put(stateSyncPointKey, b)
}

var stateSyncCurrentBlockHeightKey = storage.SYSStateSyncCurrentBlockHeight.Bytes()

// GetStateSyncCurrentBlockHeight returns the height up to which the
// state-sync module has downloaded full blocks.
func (dao *Simple) GetStateSyncCurrentBlockHeight() (uint32, error) {
	b, err := dao.Store.Get(stateSyncCurrentBlockHeightKey)
	if err != nil {
		return 0, err
	}
	if len(b) != 4 {
		return 0, fmt.Errorf("invalid state sync current block height record")
	}
	return binary.LittleEndian.Uint32(b), nil
}

// PutStateSyncCurrentBlockHeight records the state-sync module's current
// full-block download height.
func (dao *Simple) PutStateSyncCurrentBlockHeight(h uint32) error {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, h)
	return dao.Store.Put(stateSyncCurrentBlockHeightKey, b)
}

// Persist flushes the staging overlay one level down, towards whatever
// backend NewSimple wrapped.
func (dao *Simple) Persist() (int, error) {
	if mcs, ok := dao.Store.(*storage.MemCachedStore); ok {
		return mcs.Persist()
	}
	return 0, nil
}
