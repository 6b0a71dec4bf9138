package native

import (
	"bytes"
	"errors"
	"math/big"
	"sort"

	"github.com/n3ledger/core/pkg/core/dao"
	"github.com/n3ledger/core/pkg/core/interop"
	"github.com/n3ledger/core/pkg/core/native/nativenames"
	"github.com/n3ledger/core/pkg/core/state"
	"github.com/n3ledger/core/pkg/core/storage"
	"github.com/n3ledger/core/pkg/crypto/hash"
	"github.com/n3ledger/core/pkg/crypto/keys"
	"github.com/n3ledger/core/pkg/encoding/bigint"
	"github.com/n3ledger/core/pkg/io"
	"github.com/n3ledger/core/pkg/smartcontract"
	"github.com/n3ledger/core/pkg/smartcontract/callflag"
	"github.com/n3ledger/core/pkg/smartcontract/manifest"
	"github.com/n3ledger/core/pkg/util"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// NEOTotalSupply is the fixed amount of NEO in existence; unlike GAS it is
// never minted or burned after genesis.
const NEOTotalSupply = 100000000

// Default committee/validators sizing used when a chain's protocol
// configuration doesn't override it.
const (
	DefaultCommitteeSize  = 21
	DefaultValidatorCount = 7
)

const (
	prefixNeoAccount   byte = 20
	prefixCandidate    byte = 33
	prefixCommitteeKey byte = 14
)

// candidate is the registration record kept for every public key that has
// ever called registerCandidate: whether it is still registered, and the
// total NEO currently voting for it.
type candidate struct {
	Registered bool
	Votes      big.Int
}

// ToStackItem implements the stackitem.Convertible interface.
func (c *candidate) ToStackItem() (stackitem.Item, error) {
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewBool(c.Registered),
		stackitem.NewBigInteger(&c.Votes),
	}), nil
}

// FromStackItem implements the stackitem.Convertible interface.
func (c *candidate) FromStackItem(it stackitem.Item) error {
	st, ok := it.(*stackitem.Struct)
	if !ok {
		return errors.New("not a struct")
	}
	fields, ok := st.Value().([]stackitem.Item)
	if !ok || len(fields) != 2 {
		return errors.New("invalid candidate struct")
	}
	reg, err := fields[0].TryBool()
	if err != nil {
		return err
	}
	votes, err := stackitem.ToBigInt(fields[1])
	if err != nil {
		return err
	}
	c.Registered = reg
	c.Votes = *votes
	return nil
}

// EncodeBinary implements the io.Serializable interface, the encoding a
// candidate is persisted with.
func (c *candidate) EncodeBinary(w *io.BinWriter) {
	w.WriteBool(c.Registered)
	w.WriteVarBytes(bigint.ToBytes(&c.Votes))
}

// DecodeBinary implements the io.Serializable interface.
func (c *candidate) DecodeBinary(r *io.BinReader) {
	c.Registered = r.ReadBool()
	c.Votes = *bigint.FromBytes(r.ReadVarBytes())
}

// neoBalance is the per-account record NEO tracks beyond a plain balance:
// the public key (if any) the account's NEO is currently voting for.
type neoBalance struct {
	Balance big.Int
	VoteTo  *keys.PublicKey
}

func (b *neoBalance) EncodeBinary(w *io.BinWriter) {
	w.WriteVarBytes(bigint.ToBytes(&b.Balance))
	w.WriteBool(b.VoteTo != nil)
	if b.VoteTo != nil {
		w.WriteBytes(b.VoteTo.Bytes())
	}
}

func (b *neoBalance) DecodeBinary(r *io.BinReader) {
	b.Balance = *bigint.FromBytes(r.ReadVarBytes())
	if r.ReadBool() {
		buf := make([]byte, 33)
		r.ReadBytes(buf)
		pub, err := keys.NewPublicKeyFromBytes(buf)
		if err != nil {
			r.Err = err
			return
		}
		b.VoteTo = pub
	}
}

// NEO implements the NeoToken native contract: the non-divisible
// governance token whose holders vote for the committee and validators,
// and whose holding entitles them to a share of newly minted GAS (not yet
// wired, pending the per-block reward pipeline in the top-level
// blockchain).
type NEO struct {
	meta            *ContractMD
	GAS             *GAS
	Policy          *Policy
	standbyKeys     keys.PublicKeys
	committeeSize   int
	validatorsCount int
}

// NewNEO creates a NeoToken instance with its ABI wired.
func NewNEO() *NEO {
	n := &NEO{
		meta:            NewContractMD(nativenames.Neo, NeoContractID),
		committeeSize:   DefaultCommitteeSize,
		validatorsCount: DefaultValidatorCount,
	}
	n.meta.Manifest.SupportedStandards = []string{manifest.NEP17StandardName}

	n.meta.AddMethod(MethodAndPrice{Func: n.symbol, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 15},
		toMethod("symbol", smartcontract.StringType, true))
	n.meta.AddMethod(MethodAndPrice{Func: n.decimals, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 15},
		toMethod("decimals", smartcontract.IntegerType, true))
	n.meta.AddMethod(MethodAndPrice{Func: n.totalSupply, RequiredFlags: callflag.ReadStates, CPUFee: 1 << 15},
		toMethod("totalSupply", smartcontract.IntegerType, true))
	n.meta.AddMethod(MethodAndPrice{Func: n.balanceOf, RequiredFlags: callflag.ReadStates, CPUFee: 1 << 15},
		toMethod("balanceOf", smartcontract.IntegerType, true, manifest.NewParameter("account", smartcontract.Hash160Type)))
	n.meta.AddMethod(MethodAndPrice{Func: n.transfer, RequiredFlags: callflag.States | callflag.AllowCall | callflag.AllowNotify, CPUFee: 1 << 17},
		toMethod("transfer", smartcontract.BoolType, false,
			manifest.NewParameter("from", smartcontract.Hash160Type),
			manifest.NewParameter("to", smartcontract.Hash160Type),
			manifest.NewParameter("amount", smartcontract.IntegerType),
			manifest.NewParameter("data", smartcontract.AnyType)))
	n.meta.AddMethod(MethodAndPrice{Func: n.registerCandidate, RequiredFlags: callflag.States, CPUFee: 1 << 15},
		toMethod("registerCandidate", smartcontract.BoolType, false, manifest.NewParameter("pubkey", smartcontract.PublicKeyType)))
	n.meta.AddMethod(MethodAndPrice{Func: n.unregisterCandidate, RequiredFlags: callflag.States, CPUFee: 1 << 15},
		toMethod("unregisterCandidate", smartcontract.BoolType, false, manifest.NewParameter("pubkey", smartcontract.PublicKeyType)))
	n.meta.AddMethod(MethodAndPrice{Func: n.vote, RequiredFlags: callflag.States, CPUFee: 1 << 16},
		toMethod("vote", smartcontract.BoolType, false,
			manifest.NewParameter("account", smartcontract.Hash160Type),
			manifest.NewParameter("voteTo", smartcontract.PublicKeyType)))
	n.meta.AddMethod(MethodAndPrice{Func: n.getCommittee, RequiredFlags: callflag.ReadStates, CPUFee: 1 << 16},
		toMethod("getCommittee", smartcontract.ArrayType, true))
	n.meta.AddMethod(MethodAndPrice{Func: n.getCandidates, RequiredFlags: callflag.ReadStates, CPUFee: 1 << 16},
		toMethod("getCandidates", smartcontract.ArrayType, true))

	n.meta.AddEvent("Transfer",
		manifest.NewParameter("from", smartcontract.Hash160Type),
		manifest.NewParameter("to", smartcontract.Hash160Type),
		manifest.NewParameter("amount", smartcontract.IntegerType))
	n.meta.AddEvent("CandidateStateChanged",
		manifest.NewParameter("pubkey", smartcontract.PublicKeyType),
		manifest.NewParameter("registered", smartcontract.BoolType),
		manifest.NewParameter("votes", smartcontract.IntegerType))

	return n
}

// SetStandbyCommittee sets the genesis committee public keys (and derives
// committee/validator sizing from their count), read from
// config.ProtocolConfiguration.StandbyCommittee by whatever builds genesis.
func (n *NEO) SetStandbyCommittee(pubs keys.PublicKeys, validatorsCount int) {
	n.standbyKeys = pubs
	n.committeeSize = len(pubs)
	if validatorsCount > 0 {
		n.validatorsCount = validatorsCount
	}
}

// Metadata implements NativeContract.
func (n *NEO) Metadata() *ContractMD { return n.meta }

// Initialize mints the fixed NEO supply to the standby committee's
// multisig address at genesis. A chain with no standby committee
// configured (e.g. a bare unit-test instance) simply starts with an
// unminted supply.
func (n *NEO) Initialize(ic *interop.Context) error {
	if err := ic.DAO.PutStorageItem(n.meta.ID, []byte{prefixTotalSupply}, &state.StorageItem{Value: bigint.ToBytes(big.NewInt(NEOTotalSupply))}); err != nil {
		return err
	}
	if len(n.standbyKeys) == 0 {
		return nil
	}
	m := smartcontract.GetDefaultHonestNodeCount(len(n.standbyKeys))
	script, err := smartcontract.CreateMultiSigRedeemScript(m, n.standbyKeys)
	if err != nil {
		return err
	}
	committeeHash := hash.Hash160(script)
	return n.setBalance(ic.DAO, committeeHash, &neoBalance{Balance: *big.NewInt(NEOTotalSupply)})
}

// OnPersist implements NativeContract.
func (n *NEO) OnPersist(ic *interop.Context) error { return nil }

// PostPersist implements NativeContract.
func (n *NEO) PostPersist(ic *interop.Context) error { return nil }

func neoAccountKey(h util.Uint160) []byte {
	return append([]byte{prefixNeoAccount}, h.BytesBE()...)
}

func candidateKey(pub *keys.PublicKey) []byte {
	return append([]byte{prefixCandidate}, pub.Bytes()...)
}

func (n *NEO) getBalance(d dao.DAO, h util.Uint160) *neoBalance {
	si := d.GetStorageItem(n.meta.ID, neoAccountKey(h))
	if si == nil {
		return &neoBalance{}
	}
	b := &neoBalance{}
	r := io.NewBinReaderFromBuf(si.Value)
	b.DecodeBinary(r)
	if r.Err != nil {
		return &neoBalance{}
	}
	return b
}

func (n *NEO) setBalance(d dao.DAO, h util.Uint160, b *neoBalance) error {
	if b.Balance.Sign() == 0 && b.VoteTo == nil {
		return d.DeleteStorageItem(n.meta.ID, neoAccountKey(h))
	}
	w := io.NewBufBinWriter()
	b.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return w.Err
	}
	return d.PutStorageItem(n.meta.ID, neoAccountKey(h), &state.StorageItem{Value: w.Bytes()})
}

// BalanceOf returns h's current NEO balance.
func (n *NEO) BalanceOf(d dao.DAO, h util.Uint160) *big.Int {
	return &n.getBalance(d, h).Balance
}

// TotalSupply returns the fixed NEO supply.
func (n *NEO) TotalSupply(d dao.DAO) *big.Int {
	si := d.GetStorageItem(n.meta.ID, []byte{prefixTotalSupply})
	if si == nil {
		return big.NewInt(0)
	}
	return bigint.FromBytes(si.Value)
}

func (n *NEO) getCandidate(d dao.DAO, pub *keys.PublicKey) *candidate {
	si := d.GetStorageItem(n.meta.ID, candidateKey(pub))
	if si == nil {
		return nil
	}
	c := &candidate{}
	r := io.NewBinReaderFromBuf(si.Value)
	c.DecodeBinary(r)
	if r.Err != nil {
		return nil
	}
	return c
}

func (n *NEO) putCandidate(d dao.DAO, pub *keys.PublicKey, c *candidate) error {
	w := io.NewBufBinWriter()
	c.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return w.Err
	}
	return d.PutStorageItem(n.meta.ID, candidateKey(pub), &state.StorageItem{Value: w.Bytes()})
}

// RegisterCandidate marks pub as an active candidate, creating its vote
// tally at zero if it has never registered before.
func (n *NEO) RegisterCandidate(d dao.DAO, pub *keys.PublicKey) error {
	c := n.getCandidate(d, pub)
	if c == nil {
		c = &candidate{}
	}
	c.Registered = true
	return n.putCandidate(d, pub, c)
}

// UnregisterCandidate marks pub as no longer an active candidate; its vote
// tally, if any, is kept so re-registering doesn't reset accumulated votes.
func (n *NEO) UnregisterCandidate(d dao.DAO, pub *keys.PublicKey) error {
	c := n.getCandidate(d, pub)
	if c == nil {
		return nil
	}
	c.Registered = false
	if c.Votes.Sign() == 0 {
		return d.DeleteStorageItem(n.meta.ID, candidateKey(pub))
	}
	return n.putCandidate(d, pub, c)
}

// Vote moves account's balance worth of votes from its previous candidate
// (if any) to voteTo (nil to withdraw the vote without casting a new one).
func (n *NEO) Vote(d dao.DAO, account util.Uint160, voteTo *keys.PublicKey) error {
	bal := n.getBalance(d, account)
	if bal.VoteTo != nil {
		if err := n.addVotes(d, bal.VoteTo, new(big.Int).Neg(&bal.Balance)); err != nil {
			return err
		}
	}
	bal.VoteTo = voteTo
	if voteTo != nil {
		if err := n.addVotes(d, voteTo, &bal.Balance); err != nil {
			return err
		}
	}
	return n.setBalance(d, account, bal)
}

func (n *NEO) addVotes(d dao.DAO, pub *keys.PublicKey, delta *big.Int) error {
	c := n.getCandidate(d, pub)
	if c == nil {
		c = &candidate{}
	}
	c.Votes.Add(&c.Votes, delta)
	return n.putCandidate(d, pub, c)
}

// GetCandidates returns every registered candidate's public key and vote
// tally, sorted by descending votes then ascending key for determinism.
func (n *NEO) GetCandidates(d dao.DAO) []struct {
	PublicKey *keys.PublicKey
	Votes      *big.Int
} {
	var out []struct {
		PublicKey *keys.PublicKey
		Votes      *big.Int
	}
	d.Seek(n.meta.ID, storage.SeekRange{Prefix: []byte{prefixCandidate}}, func(k, v []byte) bool {
		pub, err := keys.NewPublicKeyFromBytes(k[1:])
		if err != nil {
			return true
		}
		c := &candidate{}
		r := io.NewBinReaderFromBuf(v)
		c.DecodeBinary(r)
		if r.Err != nil || !c.Registered {
			return true
		}
		out = append(out, struct {
			PublicKey *keys.PublicKey
			Votes      *big.Int
		}{pub, new(big.Int).Set(&c.Votes)})
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		cmp := out[i].Votes.Cmp(out[j].Votes)
		if cmp != 0 {
			return cmp > 0
		}
		return bytes.Compare(out[i].PublicKey.Bytes(), out[j].PublicKey.Bytes()) < 0
	})
	return out
}

// GetCommittee returns the top committeeSize candidates by vote, falling
// back to the standby committee keys (in their configured order) to pad
// out any seats votes haven't filled yet, sorted for deterministic
// signing order.
func (n *NEO) GetCommittee(d dao.DAO) keys.PublicKeys {
	cands := n.GetCandidates(d)
	size := n.committeeSize
	if size == 0 {
		size = DefaultCommitteeSize
	}
	result := make(keys.PublicKeys, 0, size)
	seen := make(map[string]bool, size)
	for _, c := range cands {
		if len(result) >= size {
			break
		}
		result = append(result, c.PublicKey)
		seen[string(c.PublicKey.Bytes())] = true
	}
	for _, pub := range n.standbyKeys {
		if len(result) >= size {
			break
		}
		if !seen[string(pub.Bytes())] {
			result = append(result, pub)
			seen[string(pub.Bytes())] = true
		}
	}
	sort.Sort(result)
	return result
}

// GetNextBlockValidators returns the first validatorsCount members of the
// committee, the consensus node set for the upcoming block.
func (n *NEO) GetNextBlockValidators(d dao.DAO) keys.PublicKeys {
	committee := n.GetCommittee(d)
	count := n.validatorsCount
	if count == 0 {
		count = DefaultValidatorCount
	}
	if count > len(committee) {
		count = len(committee)
	}
	validators := make(keys.PublicKeys, count)
	copy(validators, committee[:count])
	sort.Sort(validators)
	return validators
}

func (n *NEO) symbol(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	return stackitem.NewByteArray([]byte("NEO"))
}

func (n *NEO) decimals(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	return stackitem.NewBigInteger(big.NewInt(0))
}

func (n *NEO) totalSupply(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	return stackitem.NewBigInteger(n.TotalSupply(ic.DAO))
}

func (n *NEO) balanceOf(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	return stackitem.NewBigInteger(n.BalanceOf(ic.DAO, toUint160(args[0])))
}

func (n *NEO) transfer(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	from := toUint160(args[0])
	to := toUint160(args[1])
	amount, err := stackitem.ToBigInt(args[2])
	if err != nil {
		panic(err)
	}
	if amount.Sign() < 0 {
		panic(errors.New("can't transfer a negative amount"))
	}
	fromBal := n.getBalance(ic.DAO, from)
	if fromBal.Balance.Cmp(amount) < 0 {
		panic(ErrInsufficientFunds)
	}
	if amount.Sign() > 0 {
		if fromBal.VoteTo != nil {
			if err := n.addVotes(ic.DAO, fromBal.VoteTo, new(big.Int).Neg(amount)); err != nil {
				panic(err)
			}
		}
		fromBal.Balance.Sub(&fromBal.Balance, amount)
		if err := n.setBalance(ic.DAO, from, fromBal); err != nil {
			panic(err)
		}
		toBal := n.getBalance(ic.DAO, to)
		toBal.Balance.Add(&toBal.Balance, amount)
		if toBal.VoteTo != nil {
			if err := n.addVotes(ic.DAO, toBal.VoteTo, amount); err != nil {
				panic(err)
			}
		}
		if err := n.setBalance(ic.DAO, to, toBal); err != nil {
			panic(err)
		}
	}
	ic.Notifications = append(ic.Notifications, state.NotificationEvent{
		ScriptHash: n.meta.Hash,
		Name:       "Transfer",
		Item: stackitem.NewArray([]stackitem.Item{
			stackitem.NewByteArray(from.BytesBE()),
			stackitem.NewByteArray(to.BytesBE()),
			stackitem.NewBigInteger(amount),
		}),
	})
	return stackitem.NewBool(true)
}

func toPublicKey(it stackitem.Item) *keys.PublicKey {
	b, err := it.Bytes()
	if err != nil {
		panic(err)
	}
	pub, err := keys.NewPublicKeyFromBytes(b)
	if err != nil {
		panic(err)
	}
	return pub
}

func (n *NEO) registerCandidate(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	pub := toPublicKey(args[0])
	if err := n.RegisterCandidate(ic.DAO, pub); err != nil {
		panic(err)
	}
	return stackitem.NewBool(true)
}

func (n *NEO) unregisterCandidate(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	pub := toPublicKey(args[0])
	if err := n.UnregisterCandidate(ic.DAO, pub); err != nil {
		panic(err)
	}
	return stackitem.NewBool(true)
}

func (n *NEO) vote(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	account := toUint160(args[0])
	var voteTo *keys.PublicKey
	if _, isNull := args[1].(stackitem.Null); !isNull {
		voteTo = toPublicKey(args[1])
	}
	if err := n.Vote(ic.DAO, account, voteTo); err != nil {
		panic(err)
	}
	return stackitem.NewBool(true)
}

func (n *NEO) getCommittee(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	committee := n.GetCommittee(ic.DAO)
	items := make([]stackitem.Item, len(committee))
	for i, pub := range committee {
		items[i] = stackitem.NewByteArray(pub.Bytes())
	}
	return stackitem.NewArray(items)
}

func (n *NEO) getCandidates(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	cands := n.GetCandidates(ic.DAO)
	items := make([]stackitem.Item, len(cands))
	for i, c := range cands {
		items[i] = stackitem.NewStruct([]stackitem.Item{
			stackitem.NewByteArray(c.PublicKey.Bytes()),
			stackitem.NewBigInteger(c.Votes),
		})
	}
	return stackitem.NewArray(items)
}
