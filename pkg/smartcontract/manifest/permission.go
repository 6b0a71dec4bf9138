package manifest

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/n3ledger/core/pkg/crypto/keys"
	"github.com/n3ledger/core/pkg/util"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// PermissionType determines what a Permission's Contract field matches
// against: any contract, one specific contract hash, or any contract signed
// by a given public key group.
type PermissionType byte

// Valid PermissionType values.
const (
	PermissionWildcard PermissionType = iota
	PermissionHash
	PermissionGroup
)

// PermissionDesc is the Contract field of a Permission: either absent
// (wildcard), a contract hash, or a group public key.
type PermissionDesc struct {
	Type  PermissionType
	Value interface{}
}

// Permission describes a single entry of a manifest's "permissions" array: a
// contract (or group, or any contract) a method of this contract is allowed
// to call, and which of the callee's methods may be called.
type Permission struct {
	Contract PermissionDesc
	Methods  WildStrings
}

// NewPermission creates a new permission of the given type, validating the
// extra argument it requires (a util.Uint160 for PermissionHash, a
// *keys.PublicKey for PermissionGroup, nothing for PermissionWildcard).
// A mismatched argument count or type is a programmer error and panics.
func NewPermission(typ PermissionType, params ...interface{}) *Permission {
	desc := PermissionDesc{Type: typ}
	switch typ {
	case PermissionWildcard:
		if len(params) != 0 {
			panic("wildcard permission has no arguments")
		}
	case PermissionHash:
		if len(params) != 1 {
			panic("hash permission requires 1 argument")
		}
		u, ok := params[0].(util.Uint160)
		if !ok {
			panic("hash permission argument must be a util.Uint160")
		}
		desc.Value = u
	case PermissionGroup:
		if len(params) != 1 {
			panic("group permission requires 1 argument")
		}
		pub, ok := params[0].(*keys.PublicKey)
		if !ok {
			panic("group permission argument must be a *keys.PublicKey")
		}
		desc.Value = pub
	default:
		panic(fmt.Sprintf("unknown permission type: %d", typ))
	}
	return &Permission{Contract: desc}
}

func permissionDescValuesEqual(a, b PermissionDesc) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case PermissionHash:
		return a.Value.(util.Uint160).Equals(b.Value.(util.Uint160))
	case PermissionGroup:
		return bytes.Equal(a.Value.(*keys.PublicKey).Bytes(), b.Value.(*keys.PublicKey).Bytes())
	default:
		return true
	}
}

// IsAllowed checks whether this permission allows calling method on the
// contract with the given hash and manifest.
func (p *Permission) IsAllowed(contractHash util.Uint160, man *Manifest, method string) bool {
	switch p.Contract.Type {
	case PermissionWildcard:
	case PermissionHash:
		if !p.Contract.Value.(util.Uint160).Equals(contractHash) {
			return false
		}
	case PermissionGroup:
		pub := p.Contract.Value.(*keys.PublicKey)
		found := false
		for i := range man.Groups {
			if bytes.Equal(man.Groups[i].PublicKey.Bytes(), pub.Bytes()) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return p.Methods.Contains(method)
}

// MarshalJSON implements the json.Marshaler interface.
func (d *PermissionDesc) MarshalJSON() ([]byte, error) {
	switch d.Type {
	case PermissionWildcard:
		return []byte(`"*"`), nil
	case PermissionHash:
		return json.Marshal("0x" + d.Value.(util.Uint160).StringLE())
	case PermissionGroup:
		return json.Marshal(hex.EncodeToString(d.Value.(*keys.PublicKey).Bytes()))
	default:
		return nil, fmt.Errorf("unknown permission desc type: %d", d.Type)
	}
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *PermissionDesc) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch {
	case s == "*":
		d.Type = PermissionWildcard
		d.Value = nil
	case strings.HasPrefix(s, "0x"):
		u, err := util.Uint160DecodeStringLE(s[2:])
		if err != nil {
			return fmt.Errorf("invalid permission hash: %w", err)
		}
		d.Type = PermissionHash
		d.Value = u
	case len(s) == 2*33:
		pub, err := keys.NewPublicKeyFromString(s)
		if err != nil {
			return fmt.Errorf("invalid permission group key: %w", err)
		}
		d.Type = PermissionGroup
		d.Value = pub
	default:
		return fmt.Errorf("invalid permission desc: %s", s)
	}
	return nil
}

type permissionAux struct {
	Contract PermissionDesc `json:"contract"`
	Methods  WildStrings    `json:"methods"`
}

// MarshalJSON implements the json.Marshaler interface.
func (p *Permission) MarshalJSON() ([]byte, error) {
	aux := permissionAux{Contract: p.Contract, Methods: p.Methods}
	return json.Marshal(&aux)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (p *Permission) UnmarshalJSON(data []byte) error {
	var aux permissionAux
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Contract = aux.Contract
	p.Methods = aux.Methods
	return nil
}

// permissionDescToStackItem converts a PermissionDesc to its stack item
// encoding: Null for wildcard, a 20-byte ByteArray for a contract hash, a
// 33-byte ByteArray for a group public key.
func permissionDescToStackItem(d PermissionDesc) stackitem.Item {
	switch d.Type {
	case PermissionHash:
		return stackitem.NewByteArray(d.Value.(util.Uint160).BytesBE())
	case PermissionGroup:
		return stackitem.NewByteArray(d.Value.(*keys.PublicKey).Bytes())
	default:
		return stackitem.Null{}
	}
}

// permissionDescFromStackItem is the inverse of permissionDescToStackItem.
func permissionDescFromStackItem(item stackitem.Item) (PermissionDesc, error) {
	if _, ok := item.(stackitem.Null); ok {
		return PermissionDesc{Type: PermissionWildcard}, nil
	}
	b, err := item.Bytes()
	if err != nil {
		return PermissionDesc{}, fmt.Errorf("invalid descriptor: %w", err)
	}
	switch len(b) {
	case util.Uint160Size:
		u, err := util.Uint160DecodeBytesBE(b)
		if err != nil {
			return PermissionDesc{}, err
		}
		return PermissionDesc{Type: PermissionHash, Value: u}, nil
	case 33:
		pub, err := keys.NewPublicKeyFromBytes(b)
		if err != nil {
			return PermissionDesc{}, fmt.Errorf("invalid group key: %w", err)
		}
		return PermissionDesc{Type: PermissionGroup, Value: pub}, nil
	default:
		return PermissionDesc{}, fmt.Errorf("invalid descriptor length: %d", len(b))
	}
}

// ToStackItem implements the Interoperable pattern.
func (p *Permission) ToStackItem() stackitem.Item {
	contract := permissionDescToStackItem(p.Contract)
	var methods stackitem.Item = stackitem.Null{}
	if !p.Methods.IsWildcard() {
		items := make([]stackitem.Item, len(p.Methods.Value))
		for i, m := range p.Methods.Value {
			items[i] = stackitem.NewByteArray([]byte(m))
		}
		methods = stackitem.NewArray(items)
	}
	return stackitem.NewStruct([]stackitem.Item{contract, methods})
}

// FromStackItem implements the Interoperable pattern.
func (p *Permission) FromStackItem(item stackitem.Item) error {
	st, ok := item.(*stackitem.Struct)
	if !ok {
		return fmt.Errorf("not a struct")
	}
	fields := st.Value().([]stackitem.Item)
	if len(fields) != 2 {
		return fmt.Errorf("invalid permission struct length: %d", len(fields))
	}
	desc, err := permissionDescFromStackItem(fields[0])
	if err != nil {
		return fmt.Errorf("invalid contract descriptor: %w", err)
	}
	p.Contract = desc
	if _, ok := fields[1].(stackitem.Null); ok {
		p.Methods = WildStrings{}
		return nil
	}
	arr, ok := fields[1].(*stackitem.Array)
	if !ok {
		return fmt.Errorf("invalid methods field type")
	}
	items := arr.Value().([]stackitem.Item)
	methods := make([]string, len(items))
	for i, it := range items {
		b, err := it.Bytes()
		if err != nil {
			return fmt.Errorf("invalid method name: %w", err)
		}
		methods[i] = string(b)
	}
	p.Methods = WildStrings{Value: methods}
	return nil
}
