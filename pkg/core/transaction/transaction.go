// Package transaction implements the Neo N3 transaction format: the signed,
// fee-bearing, script-carrying unit the ledger and mempool operate on
// (spec.md §4.2).
package transaction

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"

	"github.com/n3ledger/core/pkg/crypto/hash"
	"github.com/n3ledger/core/pkg/io"
	"github.com/n3ledger/core/pkg/util"
)

// MaxTransactionSize is the upper bound, in bytes, of a transaction's wire
// encoding.
const MaxTransactionSize = 102400

// MaxSignersCount bounds the number of distinct signer accounts, matching
// the "Cosigners" limit carried over from the pre-rename protocol docs.
const MaxSignersCount = 16

// MaxAttributesCount bounds the total number of transaction attributes.
const MaxAttributesCount = 16

// DefaultVersion is the only transaction version the protocol currently
// defines.
const DefaultVersion uint8 = 0

// ErrInvalidVersion is returned when decoding a transaction with a version
// other than DefaultVersion.
var ErrInvalidVersion = errors.New("only version 0 is supported")

// ErrNoSigners is returned when a transaction has no signers; every
// transaction needs at least the sender.
var ErrNoSigners = errors.New("transaction has no signers")

// ErrTooManySigners is returned when a transaction's signer list exceeds
// MaxSignersCount, or carries duplicate accounts.
var ErrTooManySigners = errors.New("too many signers")

// ErrInvalidWitnessCount is returned when the number of witnesses does not
// match the number of signers.
var ErrInvalidWitnessCount = errors.New("witness count doesn't match signer count")

// Transaction is a Neo N3 transaction: a versioned, fee-bearing script
// invocation authorized by one or more signers.
type Transaction struct {
	// Version of the transaction format.
	Version uint8
	// Nonce is a random number used to prevent hash collisions between
	// otherwise identical transactions.
	Nonce uint32
	// SystemFee is the required GAS cost of executing Script, fixed8-scaled.
	SystemFee int64
	// NetworkFee is the fee paid for the transaction's size and the
	// signature verification cost of its witnesses, fixed8-scaled.
	NetworkFee int64
	// ValidUntilBlock is the last block index at which the transaction may
	// be included; the mempool and ledger reject it past this height.
	ValidUntilBlock uint32
	// Signers authorize the transaction and scope where their witness
	// applies. Signers[0] is the sender, who pays SystemFee/NetworkFee.
	Signers []Signer
	// Attributes carry auxiliary metadata (HighPriority, oracle responses,
	// conflicts, not-valid-before, notary assistance).
	Attributes []Attribute
	// Script is the NeoVM bytecode executed when the transaction is
	// applied.
	Script []byte
	// Scripts are the witnesses, one per Signer, in the same order.
	Scripts []Witness

	// size is a cache of the transaction's encoded length.
	size int
	// hash is a cache of the transaction's hash.
	hash util.Uint256
	hashed bool
}

// New creates a Transaction wrapping script with a random nonce, the way a
// client building an invocation starts one before filling in signers, fees,
// and ValidUntilBlock.
func New(script []byte, sysFee int64) *Transaction {
	return &Transaction{
		Version:   DefaultVersion,
		Nonce:     rand.Uint32(),
		SystemFee: sysFee,
		Script:    script,
	}
}

// NewTrimmedTX returns a Transaction with only its hash set, the stand-in a
// trimmed block's transaction list carries in place of full transaction
// bodies.
func NewTrimmedTX(hash util.Uint256) *Transaction {
	return &Transaction{
		hash:   hash,
		hashed: true,
	}
}

// Hash returns the double-SHA256 hash of the transaction's signed part,
// memoized after the first call or a successful DecodeBinary.
func (t *Transaction) Hash() util.Uint256 {
	if !t.hashed {
		t.createHash()
	}
	return t.hash
}

// GetSignedPart returns the encoded hashable fields of the transaction,
// the bytes a witness signature actually covers (after prefixing with the
// network magic).
func (t *Transaction) GetSignedPart() []byte {
	buf := io.NewBufBinWriter()
	t.encodeHashableFields(buf.BinWriter)
	return buf.Bytes()
}

// GetSignedHash returns Hash256 of the transaction's signed part, which is
// also its identifying Hash.
func (t *Transaction) GetSignedHash() util.Uint256 {
	return t.Hash()
}

// Size returns the transaction's encoded size in bytes, memoized the same
// way Hash is.
func (t *Transaction) Size() int {
	if t.size == 0 {
		t.size = io.GetVarSize(t)
	}
	return t.size
}

// Sender returns the account responsible for SystemFee/NetworkFee, the
// first signer.
func (t *Transaction) Sender() util.Uint160 {
	if len(t.Signers) == 0 {
		return util.Uint160{}
	}
	return t.Signers[0].Account
}

// HasAttribute reports whether the transaction carries an attribute of the
// given type.
func (t *Transaction) HasAttribute(typ AttrType) bool {
	for i := range t.Attributes {
		if t.Attributes[i].Type == typ {
			return true
		}
	}
	return false
}

// GetAttributes returns every attribute of the given type.
func (t *Transaction) GetAttributes(typ AttrType) []Attribute {
	var res []Attribute
	for i := range t.Attributes {
		if t.Attributes[i].Type == typ {
			res = append(res, t.Attributes[i])
		}
	}
	return res
}

// EncodeBinary implements the io.Serializable interface.
func (t *Transaction) EncodeBinary(w *io.BinWriter) {
	t.encodeHashableFields(w)
	w.WriteArray(len(t.Scripts), func(i int) { t.Scripts[i].EncodeBinary(w) })
}

// DecodeBinary implements the io.Serializable interface.
func (t *Transaction) DecodeBinary(br *io.BinReader) {
	t.decodeHashableFields(br)
	if br.Err != nil {
		return
	}
	br.ReadArray(func() {
		var w Witness
		w.DecodeBinary(br)
		t.Scripts = append(t.Scripts, w)
	}, MaxSignersCount)
	if br.Err != nil {
		return
	}
	if len(t.Scripts) != len(t.Signers) {
		br.Err = ErrInvalidWitnessCount
		return
	}
	t.createHash()
}

// encodeHashableFields writes every field except the witnesses.
func (t *Transaction) encodeHashableFields(w *io.BinWriter) {
	w.WriteB(t.Version)
	w.WriteU32LE(t.Nonce)
	w.WriteU64LE(uint64(t.SystemFee))
	w.WriteU64LE(uint64(t.NetworkFee))
	w.WriteU32LE(t.ValidUntilBlock)
	w.WriteArray(len(t.Signers), func(i int) { t.Signers[i].EncodeBinary(w) })
	w.WriteArray(len(t.Attributes), func(i int) { t.Attributes[i].EncodeBinary(w) })
	w.WriteVarBytes(t.Script)
}

func (t *Transaction) decodeHashableFields(r *io.BinReader) {
	t.Version = r.ReadB()
	if r.Err == nil && t.Version != DefaultVersion {
		r.Err = ErrInvalidVersion
		return
	}
	t.Nonce = r.ReadU32LE()
	t.SystemFee = int64(r.ReadU64LE())
	t.NetworkFee = int64(r.ReadU64LE())
	t.ValidUntilBlock = r.ReadU32LE()
	if r.Err != nil {
		return
	}

	t.Signers = nil
	r.ReadArray(func() {
		var s Signer
		s.DecodeBinary(r)
		t.Signers = append(t.Signers, s)
	}, MaxSignersCount)
	if r.Err != nil {
		return
	}
	if len(t.Signers) == 0 {
		r.Err = ErrNoSigners
		return
	}
	if err := checkDuplicateSigners(t.Signers); err != nil {
		r.Err = err
		return
	}

	t.Attributes = nil
	r.ReadArray(func() {
		var a Attribute
		a.DecodeBinary(r)
		t.Attributes = append(t.Attributes, a)
	}, MaxAttributesCount)
	if r.Err != nil {
		return
	}

	t.Script = r.ReadVarBytes(MaxTransactionSize)
	if r.Err == nil && len(t.Script) == 0 {
		r.Err = errors.New("empty script")
	}
}

func checkDuplicateSigners(signers []Signer) error {
	if len(signers) > MaxSignersCount {
		return ErrTooManySigners
	}
	seen := make(map[util.Uint160]struct{}, len(signers))
	for _, s := range signers {
		if _, ok := seen[s.Account]; ok {
			return fmt.Errorf("duplicate signer %s", s.Account)
		}
		seen[s.Account] = struct{}{}
	}
	return nil
}

func (t *Transaction) createHash() {
	buf := io.NewBufBinWriter()
	t.encodeHashableFields(buf.BinWriter)
	t.hash = hash.Hash256(buf.Bytes())
	t.hashed = true
}

// Bytes returns the transaction encoded to a new byte slice.
func (t *Transaction) Bytes() []byte {
	return io.ToByteArray(t)
}

// NewTransactionFromBytes decodes a Transaction from raw bytes, failing if
// trailing garbage follows a well-formed transaction.
func NewTransactionFromBytes(b []byte) (*Transaction, error) {
	tx := &Transaction{}
	r := io.NewBinReaderFromBuf(b)
	tx.DecodeBinary(r)
	if r.Err != nil {
		return nil, r.Err
	}
	tx.size = len(b)
	return tx, nil
}

type txAux struct {
	Hash            util.Uint256    `json:"hash"`
	Size            int             `json:"size"`
	Version         uint8           `json:"version"`
	Nonce           uint32          `json:"nonce"`
	Sender          string          `json:"sender"`
	SystemFee       string          `json:"sysfee"`
	NetworkFee      string          `json:"netfee"`
	ValidUntilBlock uint32          `json:"validuntilblock"`
	Signers         []*Signer       `json:"signers"`
	Attributes      []*Attribute    `json:"attributes"`
	Script          string          `json:"script"`
	Witnesses       []Witness       `json:"witnesses"`
}

// MarshalJSON implements the json.Marshaler interface.
func (t *Transaction) MarshalJSON() ([]byte, error) {
	signers := make([]*Signer, len(t.Signers))
	for i := range t.Signers {
		signers[i] = &t.Signers[i]
	}
	attrs := make([]*Attribute, len(t.Attributes))
	for i := range t.Attributes {
		attrs[i] = &t.Attributes[i]
	}
	aux := txAux{
		Hash:            t.Hash(),
		Size:            t.Size(),
		Version:         t.Version,
		Nonce:           t.Nonce,
		Sender:          t.Sender().StringLE(),
		SystemFee:       fmt.Sprintf("%d", t.SystemFee),
		NetworkFee:      fmt.Sprintf("%d", t.NetworkFee),
		ValidUntilBlock: t.ValidUntilBlock,
		Signers:         signers,
		Attributes:      attrs,
		Script:          base64.StdEncoding.EncodeToString(t.Script),
		Witnesses:       t.Scripts,
	}
	return json.Marshal(aux)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	aux := new(txAux)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	script, err := base64.StdEncoding.DecodeString(aux.Script)
	if err != nil {
		return err
	}
	t.Version = aux.Version
	t.Nonce = aux.Nonce
	if _, err := fmt.Sscanf(aux.SystemFee, "%d", &t.SystemFee); err != nil {
		return err
	}
	if _, err := fmt.Sscanf(aux.NetworkFee, "%d", &t.NetworkFee); err != nil {
		return err
	}
	t.ValidUntilBlock = aux.ValidUntilBlock
	t.Script = script
	t.Signers = nil
	for _, s := range aux.Signers {
		t.Signers = append(t.Signers, *s)
	}
	t.Attributes = nil
	for _, a := range aux.Attributes {
		t.Attributes = append(t.Attributes, *a)
	}
	t.Scripts = aux.Witnesses
	if !aux.Hash.Equals(t.Hash()) {
		return errors.New("json 'hash' doesn't match transaction hash")
	}
	return nil
}
