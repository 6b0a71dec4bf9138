package manifest

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/n3ledger/core/pkg/crypto/keys"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// Group represents a set of contracts guaranteed to be under the control of
// a single author identified by PublicKey, who vouches for it by signing the
// hash of the contract it is deployed in.
type Group struct {
	PublicKey *keys.PublicKey
	Signature []byte
}

// Groups is a list of Group.
type Groups []Group

// IsValid checks that g's signature is indeed a signature of h by
// PublicKey.
func (g *Group) IsValid(h util160Hasher) bool {
	return g.PublicKey.Verify(g.Signature, h.BytesBE())
}

// util160Hasher is the minimal interface Group.IsValid needs from a contract
// hash; util.Uint160 satisfies it.
type util160Hasher interface {
	BytesBE() []byte
}

// AreValid checks that every group in gs is a valid signature of h and that
// no public key repeats.
func (gs Groups) AreValid(h util160Hasher) error {
	seen := make(map[string]bool, len(gs))
	for i := range gs {
		key := hex.EncodeToString(gs[i].PublicKey.Bytes())
		if seen[key] {
			return fmt.Errorf("duplicate group key: %s", key)
		}
		seen[key] = true
		if !gs[i].IsValid(h) {
			return fmt.Errorf("incorrect group signature for key %s", key)
		}
	}
	return nil
}

// Contains checks if gs has a group signed with the given public key.
func (gs Groups) Contains(pub *keys.PublicKey) bool {
	for i := range gs {
		if bytes.Equal(gs[i].PublicKey.Bytes(), pub.Bytes()) {
			return true
		}
	}
	return false
}

type groupAux struct {
	PubKey    *keys.PublicKey `json:"pubkey"`
	Signature []byte          `json:"signature"`
}

// MarshalJSON implements the json.Marshaler interface.
func (g *Group) MarshalJSON() ([]byte, error) {
	return json.Marshal(groupAux{PubKey: g.PublicKey, Signature: g.Signature})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (g *Group) UnmarshalJSON(data []byte) error {
	var aux groupAux
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	g.PublicKey = aux.PubKey
	g.Signature = aux.Signature
	return nil
}

// ToStackItem implements the Interoperable pattern.
func (g *Group) ToStackItem() stackitem.Item {
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray(g.PublicKey.Bytes()),
		stackitem.NewByteArray(g.Signature),
	})
}

// FromStackItem implements the Interoperable pattern.
func (g *Group) FromStackItem(item stackitem.Item) error {
	st, ok := item.(*stackitem.Struct)
	if !ok {
		return fmt.Errorf("not a struct")
	}
	fields := st.Value().([]stackitem.Item)
	if len(fields) != 2 {
		return fmt.Errorf("invalid group struct length: %d", len(fields))
	}
	pubBytes, err := fields[0].Bytes()
	if err != nil {
		return fmt.Errorf("invalid public key field: %w", err)
	}
	pub, err := keys.NewPublicKeyFromBytes(pubBytes)
	if err != nil {
		return fmt.Errorf("invalid public key: %w", err)
	}
	sig, err := fields[1].Bytes()
	if err != nil {
		return fmt.Errorf("invalid signature field: %w", err)
	}
	if len(sig) != keys.SignatureLen {
		return fmt.Errorf("invalid signature length: %d", len(sig))
	}
	g.PublicKey = pub
	g.Signature = sig
	return nil
}
