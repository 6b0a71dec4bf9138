package manifest

import (
	"encoding/json"
	"fmt"

	ojson "github.com/nspcc-dev/go-ordered-json"

	"github.com/n3ledger/core/pkg/util"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// NEP standard names recognized by IsStandardSupported.
const (
	NEP17StandardName = "NEP-17"
	NEP27StandardName = "NEP-27"
	NEP26StandardName = "NEP-26"
	NEP11StandardName = "NEP-11"
)

// emptyFeatures is the canonical value of the Features field when a
// contract declares none. The field is a reserved extension point; for now
// it must be an empty JSON object (whitespace-only content is tolerated).
const emptyFeatures = "{}"

// MaxManifestSize bounds the serialized size of a Manifest's stack item
// representation, matching the NeoVM item size budget.
const MaxManifestSize = stackitem.MaxSize

// Manifest describes a contract: its name, the groups vouching for it, the
// standards it implements, its ABI, the permissions it needs, the contracts
// that are allowed to call it without an explicit permission check, and an
// arbitrary author-supplied Extra payload.
type Manifest struct {
	Name               string
	Groups             []Group
	Features           json.RawMessage
	SupportedStandards []string
	ABI                ABI
	Permissions        []Permission
	Trusts             WildPermissionDescs
	Extra              json.RawMessage
}

// NewManifest creates a new Manifest with the given name and otherwise
// zero-value (non-permissive) fields.
func NewManifest(name string) *Manifest {
	return &Manifest{
		Name:               name,
		Groups:             []Group{},
		Features:           json.RawMessage(emptyFeatures),
		SupportedStandards: []string{},
		ABI:                ABI{Methods: []Method{}, Events: []Event{}},
		Permissions:        []Permission{},
		Trusts:             WildPermissionDescs{Value: []PermissionDesc{}},
		Extra:              nil,
	}
}

// DefaultManifest creates a new Manifest with the given name and wildcard
// permissions, as produced by the reference compiler when no explicit
// permissions are declared.
func DefaultManifest(name string) *Manifest {
	m := NewManifest(name)
	m.Permissions = []Permission{*NewPermission(PermissionWildcard)}
	m.Permissions[0].Methods = WildStrings{}
	return m
}

// IsStandardSupported checks whether m declares support for the named
// standard.
func (m *Manifest) IsStandardSupported(name string) bool {
	for _, s := range m.SupportedStandards {
		if s == name {
			return true
		}
	}
	return false
}

// CanCall checks whether m's contract is allowed to call the given method
// of the contract with the given hash and manifest, per m's Permissions.
func (m *Manifest) CanCall(hash util.Uint160, target *Manifest, method string) bool {
	for i := range m.Permissions {
		if m.Permissions[i].IsAllowed(hash, target, method) {
			return true
		}
	}
	return false
}

// IsValid checks that m is well-formed and, when strict is true, that its
// stack item encoding fits within the NeoVM size budget.
func (m *Manifest) IsValid(contractHash util.Uint160, strict bool) error {
	if m.Name == "" {
		return fmt.Errorf("manifest name can not be empty")
	}
	if err := m.ABI.IsValid(); err != nil {
		return fmt.Errorf("invalid ABI: %w", err)
	}

	var features map[string]json.RawMessage
	if err := json.Unmarshal(m.Features, &features); err != nil {
		return fmt.Errorf("invalid Features: %w", err)
	}
	if len(features) != 0 {
		return fmt.Errorf("invalid Features: no extensions are currently supported")
	}

	seenStd := make(map[string]bool, len(m.SupportedStandards))
	for _, s := range m.SupportedStandards {
		if s == "" {
			return fmt.Errorf("supported standard name can not be empty")
		}
		if seenStd[s] {
			return fmt.Errorf("duplicate supported standard: %s", s)
		}
		seenStd[s] = true
	}

	seenPerm := make(map[string]bool, len(m.Permissions))
	for i := range m.Permissions {
		permJSON, err := json.Marshal(&m.Permissions[i])
		if err != nil {
			return fmt.Errorf("invalid permission %d: %w", i, err)
		}
		key := string(permJSON)
		if seenPerm[key] {
			return fmt.Errorf("duplicate permission: %s", key)
		}
		seenPerm[key] = true
	}

	if m.Trusts.Value == nil && !m.Trusts.Wildcard {
		return fmt.Errorf("trusts must be either wildcard or a (possibly empty) concrete list")
	}
	seenTrust := make(map[string]bool, len(m.Trusts.Value))
	for _, t := range m.Trusts.Value {
		tJSON, err := json.Marshal(&t)
		if err != nil {
			return fmt.Errorf("invalid trust entry: %w", err)
		}
		key := string(tJSON)
		if seenTrust[key] {
			return fmt.Errorf("duplicate trust entry: %s", key)
		}
		seenTrust[key] = true
	}

	if err := Groups(m.Groups).AreValid(contractHash); err != nil {
		return fmt.Errorf("invalid groups: %w", err)
	}

	if strict {
		si, err := m.ToStackItem()
		if err != nil {
			return fmt.Errorf("manifest exceeds stack item size budget: %w", err)
		}
		if _, err := stackitem.Serialize(si); err != nil {
			return fmt.Errorf("manifest exceeds stack item size budget: %w", err)
		}
	}
	return nil
}

type manifestAux struct {
	Name               string                  `json:"name"`
	Groups             []Group                 `json:"groups"`
	SupportedStandards []string                `json:"supportedstandards"`
	ABI                ABI                     `json:"abi"`
	Permissions        []Permission            `json:"permissions"`
	Trusts             WildPermissionDescs      `json:"trusts"`
	Features           json.RawMessage         `json:"features"`
	Extra              json.RawMessage         `json:"extra"`
}

// MarshalJSON implements the json.Marshaler interface.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	aux := manifestAux{
		Name:               m.Name,
		Groups:             m.Groups,
		SupportedStandards: m.SupportedStandards,
		ABI:                m.ABI,
		Permissions:        m.Permissions,
		Trusts:             m.Trusts,
		Features:           m.Features,
		Extra:              m.Extra,
	}
	if aux.Groups == nil {
		aux.Groups = []Group{}
	}
	if aux.SupportedStandards == nil {
		aux.SupportedStandards = []string{}
	}
	if aux.Permissions == nil {
		aux.Permissions = []Permission{}
	}
	if aux.Features == nil {
		aux.Features = json.RawMessage(emptyFeatures)
	}
	return json.Marshal(&aux)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	var aux manifestAux
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.Name = aux.Name
	m.Groups = aux.Groups
	m.SupportedStandards = aux.SupportedStandards
	m.ABI = aux.ABI
	m.Permissions = aux.Permissions
	m.Trusts = aux.Trusts
	m.Features = aux.Features
	m.Extra = aux.Extra
	if string(m.Extra) == "null" {
		m.Extra = nil
	}
	return nil
}

// extraToStackItem converts a json.RawMessage (e.g. the Extra field) into a
// canonical, key-order-preserving ByteArray stack item, mirroring how the
// reference node surfaces contract metadata over the wire.
func extraToStackItem(data []byte) stackitem.Item {
	if len(data) == 0 {
		return stackitem.NewByteArray([]byte{})
	}
	var v interface{}
	if err := ojson.Unmarshal(data, &v); err != nil {
		return stackitem.NewByteArray(data)
	}
	canon, err := ojson.Marshal(v)
	if err != nil {
		return stackitem.NewByteArray(data)
	}
	return stackitem.NewByteArray(canon)
}

// ToStackItem implements the stackitem.Convertible interface. Unlike the
// other manifest types, conversion can fail: a manifest whose encoding
// exceeds the NeoVM item size budget is rejected.
func (m *Manifest) ToStackItem() (stackitem.Item, error) {
	groups := make([]stackitem.Item, len(m.Groups))
	for i := range m.Groups {
		groups[i] = m.Groups[i].ToStackItem()
	}
	standards := make([]stackitem.Item, len(m.SupportedStandards))
	for i := range m.SupportedStandards {
		standards[i] = stackitem.NewByteArray([]byte(m.SupportedStandards[i]))
	}
	permissions := make([]stackitem.Item, len(m.Permissions))
	for i := range m.Permissions {
		permissions[i] = m.Permissions[i].ToStackItem()
	}
	var trusts stackitem.Item = stackitem.Null{}
	if !m.Trusts.Wildcard {
		items := make([]stackitem.Item, len(m.Trusts.Value))
		for i := range m.Trusts.Value {
			items[i] = permissionDescToStackItem(m.Trusts.Value[i])
		}
		trusts = stackitem.NewArray(items)
	}
	item := stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray([]byte(m.Name)),
		stackitem.NewArray(groups),
		stackitem.NewMap(),
		stackitem.NewArray(standards),
		m.ABI.ToStackItem(),
		stackitem.NewArray(permissions),
		trusts,
		extraToStackItem(m.Extra),
	})
	if _, err := stackitem.Serialize(item); err != nil {
		return nil, fmt.Errorf("manifest too big: %w", err)
	}
	return item, nil
}

// FromStackItem implements the stackitem.Convertible interface.
func (m *Manifest) FromStackItem(item stackitem.Item) error {
	st, ok := item.(*stackitem.Struct)
	if !ok {
		return fmt.Errorf("not a struct")
	}
	fields := st.Value().([]stackitem.Item)
	if len(fields) != 8 {
		return fmt.Errorf("invalid manifest struct length: %d", len(fields))
	}
	nameBytes, err := fields[0].Bytes()
	if err != nil {
		return fmt.Errorf("invalid name field: %w", err)
	}
	groupsArr, ok := fields[1].(*stackitem.Array)
	if !ok {
		return fmt.Errorf("invalid groups field type")
	}
	groupItems := groupsArr.Value().([]stackitem.Item)
	groups := make([]Group, len(groupItems))
	for i, gi := range groupItems {
		if err := groups[i].FromStackItem(gi); err != nil {
			return fmt.Errorf("invalid group %d: %w", i, err)
		}
	}
	if _, ok := fields[2].(*stackitem.Map); !ok {
		return fmt.Errorf("invalid features field type")
	}
	features := json.RawMessage(emptyFeatures)
	standardsArr, ok := fields[3].(*stackitem.Array)
	if !ok {
		return fmt.Errorf("invalid supportedstandards field type")
	}
	standardItems := standardsArr.Value().([]stackitem.Item)
	standards := make([]string, len(standardItems))
	for i, si := range standardItems {
		b, err := si.Bytes()
		if err != nil {
			return fmt.Errorf("invalid standard %d: %w", i, err)
		}
		standards[i] = string(b)
	}
	var abi ABI
	if err := abi.FromStackItem(fields[4]); err != nil {
		return fmt.Errorf("invalid abi field: %w", err)
	}
	permsArr, ok := fields[5].(*stackitem.Array)
	if !ok {
		return fmt.Errorf("invalid permissions field type")
	}
	permItems := permsArr.Value().([]stackitem.Item)
	perms := make([]Permission, len(permItems))
	for i, pi := range permItems {
		if err := perms[i].FromStackItem(pi); err != nil {
			return fmt.Errorf("invalid permission %d: %w", i, err)
		}
	}
	var trusts WildPermissionDescs
	if _, ok := fields[6].(stackitem.Null); ok {
		trusts = WildPermissionDescs{Wildcard: true}
	} else {
		trustsArr, ok := fields[6].(*stackitem.Array)
		if !ok {
			return fmt.Errorf("invalid trusts field type")
		}
		trustItems := trustsArr.Value().([]stackitem.Item)
		descs := make([]PermissionDesc, len(trustItems))
		for i, ti := range trustItems {
			desc, err := permissionDescFromStackItem(ti)
			if err != nil {
				return fmt.Errorf("invalid trust %d: %w", i, err)
			}
			descs[i] = desc
		}
		trusts = WildPermissionDescs{Value: descs}
	}
	extraBytes, err := fields[7].Bytes()
	if err != nil {
		return fmt.Errorf("invalid extra field: %w", err)
	}
	var extra json.RawMessage
	if len(extraBytes) != 0 {
		extra = json.RawMessage(extraBytes)
	}
	m.Name = string(nameBytes)
	m.Groups = groups
	m.Features = features
	m.SupportedStandards = standards
	m.ABI = abi
	m.Permissions = perms
	m.Trusts = trusts
	m.Extra = extra
	return nil
}
