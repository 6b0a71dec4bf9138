package native

import (
	"errors"

	"github.com/n3ledger/core/pkg/core/interop"
	"github.com/n3ledger/core/pkg/core/native/nativenames"
	"github.com/n3ledger/core/pkg/core/native/noderoles"
	"github.com/n3ledger/core/pkg/core/state"
	"github.com/n3ledger/core/pkg/core/storage"
	"github.com/n3ledger/core/pkg/crypto/keys"
	"github.com/n3ledger/core/pkg/io"
	"github.com/n3ledger/core/pkg/smartcontract"
	"github.com/n3ledger/core/pkg/smartcontract/callflag"
	"github.com/n3ledger/core/pkg/smartcontract/manifest"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// ErrUnknownRole is returned when a caller designates or queries a role
// byte outside noderoles' fixed set.
var ErrUnknownRole = errors.New("unknown role")

// Designate implements the RoleManagement native contract: the committee
// assigns the public key set acting as Oracle nodes, state validators,
// NeoFS alphabet members and (when P2PSigExtensions is on) Notary nodes,
// versioned by the block height the assignment takes effect at.
type Designate struct {
	meta             *ContractMD
	p2pSigExtensions bool
}

// NewDesignate creates a RoleManagement instance with its ABI wired.
func NewDesignate(p2pSigExtensions bool) *Designate {
	d := &Designate{
		meta:             NewContractMD(nativenames.Designation, DesignationContractID),
		p2pSigExtensions: p2pSigExtensions,
	}

	d.meta.AddMethod(MethodAndPrice{Func: d.getDesignatedByRole, RequiredFlags: callflag.ReadStates, CPUFee: 1 << 15},
		toMethod("getDesignatedByRole", smartcontract.ArrayType, true,
			manifest.NewParameter("role", smartcontract.IntegerType),
			manifest.NewParameter("index", smartcontract.IntegerType)))
	d.meta.AddMethod(MethodAndPrice{Func: d.designateAsRole, RequiredFlags: callflag.States, CPUFee: 1 << 16},
		toMethod("designateAsRole", smartcontract.VoidType, false,
			manifest.NewParameter("role", smartcontract.IntegerType),
			manifest.NewParameter("pubkeys", smartcontract.ArrayType)))

	d.meta.AddEvent("Designation",
		manifest.NewParameter("Role", smartcontract.IntegerType),
		manifest.NewParameter("BlockIndex", smartcontract.IntegerType))

	return d
}

// Metadata implements NativeContract.
func (d *Designate) Metadata() *ContractMD { return d.meta }

// Initialize implements NativeContract; RoleManagement starts with every
// role unassigned.
func (d *Designate) Initialize(ic *interop.Context) error { return nil }

// OnPersist implements NativeContract.
func (d *Designate) OnPersist(ic *interop.Context) error { return nil }

// PostPersist implements NativeContract.
func (d *Designate) PostPersist(ic *interop.Context) error { return nil }

func isValidRole(r noderoles.Role) bool {
	switch r {
	case noderoles.StateValidator, noderoles.Oracle, noderoles.NeoFSAlphabet, noderoles.P2PNotary:
		return true
	}
	return false
}

func roleKeyPrefix(r noderoles.Role, index uint32) []byte {
	key := make([]byte, 5)
	key[0] = byte(r)
	bigEndianPutUint32(key[1:5], index)
	return key
}

// GetDesignatedByRole returns the public keys designated for role as of
// the highest designation at or before index.
func (d *Designate) GetDesignatedByRole(ic *interop.Context, r noderoles.Role, index uint32) (keys.PublicKeys, error) {
	if !isValidRole(r) {
		return nil, ErrUnknownRole
	}
	var best keys.PublicKeys
	var bestIndex uint32
	found := false
	ic.DAO.Seek(d.meta.ID, storage.SeekRange{Prefix: []byte{byte(r)}}, func(k, v []byte) bool {
		if len(k) < 5 {
			return true
		}
		idx := bigEndianUint32(k[1:5])
		if idx > index {
			return true
		}
		if !found || idx >= bestIndex {
			pubs, err := decodePublicKeys(v)
			if err == nil {
				best = pubs
				bestIndex = idx
				found = true
			}
		}
		return true
	})
	return best, nil
}

func bigEndianUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func encodePublicKeys(pubs keys.PublicKeys) []byte {
	w := io.NewBufBinWriter()
	w.WriteVarUint(uint64(len(pubs)))
	for _, p := range pubs {
		w.WriteBytes(p.Bytes())
	}
	return w.Bytes()
}

func decodePublicKeys(b []byte) (keys.PublicKeys, error) {
	r := io.NewBinReaderFromBuf(b)
	n := r.ReadVarUint()
	if r.Err != nil {
		return nil, r.Err
	}
	pubs := make(keys.PublicKeys, n)
	for i := range pubs {
		buf := make([]byte, 33)
		r.ReadBytes(buf)
		if r.Err != nil {
			return nil, r.Err
		}
		pub, err := keys.NewPublicKeyFromBytes(buf)
		if err != nil {
			return nil, err
		}
		pubs[i] = pub
	}
	return pubs, nil
}

// DesignateAsRole assigns pubs to role effective at the block after index.
func (d *Designate) DesignateAsRole(ic *interop.Context, r noderoles.Role, pubs keys.PublicKeys) error {
	if !isValidRole(r) {
		return ErrUnknownRole
	}
	if len(pubs) == 0 {
		return errors.New("role designation can not be empty")
	}
	index := uint32(0)
	if ic.Block != nil {
		index = ic.Block.Index + 1
	}
	key := roleKeyPrefix(r, index)
	return ic.DAO.PutStorageItem(d.meta.ID, key, &state.StorageItem{Value: encodePublicKeys(pubs)})
}

func (d *Designate) getDesignatedByRole(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	role := toInt64(args[0])
	index := toInt64(args[1])
	if role < 0 || role > 255 || index < 0 {
		panic(ErrUnknownRole)
	}
	pubs, err := d.GetDesignatedByRole(ic, noderoles.Role(role), uint32(index))
	if err != nil {
		panic(err)
	}
	items := make([]stackitem.Item, len(pubs))
	for i, p := range pubs {
		items[i] = stackitem.NewByteArray(p.Bytes())
	}
	return stackitem.NewArray(items)
}

func (d *Designate) designateAsRole(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	role := toInt64(args[0])
	if role < 0 || role > 255 {
		panic(ErrUnknownRole)
	}
	arr, ok := args[1].Value().([]stackitem.Item)
	if !ok {
		panic(errors.New("pubkeys argument is not an array"))
	}
	pubs := make(keys.PublicKeys, len(arr))
	for i, it := range arr {
		pubs[i] = toPublicKey(it)
	}
	if err := d.DesignateAsRole(ic, noderoles.Role(role), pubs); err != nil {
		panic(err)
	}
	index := uint32(0)
	if ic.Block != nil {
		index = ic.Block.Index + 1
	}
	ic.Notifications = append(ic.Notifications, state.NotificationEvent{
		ScriptHash: d.meta.Hash,
		Name:       "Designation",
		Item: stackitem.NewArray([]stackitem.Item{
			stackitem.NewBigIntegerFromInt64(role),
			stackitem.NewBigIntegerFromInt64(int64(index)),
		}),
	})
	return stackitem.Null{}
}
