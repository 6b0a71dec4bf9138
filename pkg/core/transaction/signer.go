package transaction

import (
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/n3ledger/core/pkg/crypto/keys"
	"github.com/n3ledger/core/pkg/io"
	"github.com/n3ledger/core/pkg/util"
)

// MaxAttributes is the maximum number of attributes (Signers + Attributes
// combined) a transaction may carry.
const MaxAttributes = 16

// ErrInvalidSignerScope is returned when a Signer's scope combination is
// invalid or its allowed contracts/groups/rules exceed MaxAttributes.
var ErrInvalidSignerScope = errors.New("invalid signer scope")

// Signer defines an authorizing account for a transaction and the scope
// within which its witness is considered valid (spec.md §4.2).
type Signer struct {
	Account          util.Uint160
	Scopes           WitnessScope
	AllowedContracts []util.Uint160
	AllowedGroups    []*keys.PublicKey
	Rules            []WitnessRule
}

// EncodeBinary implements the io.Serializable interface.
func (s *Signer) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(s.Account[:])
	w.WriteB(byte(s.Scopes))
	if s.Scopes&CustomContracts != 0 {
		w.WriteArray(len(s.AllowedContracts), func(i int) {
			w.WriteBytes(s.AllowedContracts[i][:])
		})
	}
	if s.Scopes&CustomGroups != 0 {
		w.WriteArray(len(s.AllowedGroups), func(i int) {
			s.AllowedGroups[i].EncodeBinary(w)
		})
	}
	if s.Scopes&Rules != 0 {
		w.WriteArray(len(s.Rules), func(i int) {
			s.Rules[i].EncodeBinary(w)
		})
	}
}

// DecodeBinary implements the io.Serializable interface.
func (s *Signer) DecodeBinary(br *io.BinReader) {
	br.ReadBytes(s.Account[:])
	b := br.ReadB()
	if br.Err != nil {
		return
	}
	scopes, err := ScopesFromByte(b)
	if err != nil {
		br.Err = err
		return
	}
	s.Scopes = scopes
	if s.Scopes&CustomContracts != 0 {
		s.AllowedContracts = nil
		br.ReadArray(func() {
			var u util.Uint160
			br.ReadBytes(u[:])
			s.AllowedContracts = append(s.AllowedContracts, u)
		}, MaxAttributes)
	}
	if s.Scopes&CustomGroups != 0 {
		s.AllowedGroups = nil
		br.ReadArray(func() {
			pk := new(keys.PublicKey)
			pk.DecodeBinary(br)
			s.AllowedGroups = append(s.AllowedGroups, pk)
		}, MaxAttributes)
	}
	if s.Scopes&Rules != 0 {
		s.Rules = nil
		br.ReadArray(func() {
			var r WitnessRule
			r.DecodeBinary(br)
			s.Rules = append(s.Rules, r)
		}, MaxAttributes)
	}
}

type signerAux struct {
	Account          util.Uint160      `json:"account"`
	Scopes           WitnessScope      `json:"scopes"`
	AllowedContracts []util.Uint160    `json:"allowedcontracts,omitempty"`
	AllowedGroups    []string          `json:"allowedgroups,omitempty"`
	Rules            []json.RawMessage `json:"rules,omitempty"`
}

// MarshalJSON implements the json.Marshaler interface.
func (s *Signer) MarshalJSON() ([]byte, error) {
	aux := signerAux{
		Account:          s.Account,
		Scopes:           s.Scopes,
		AllowedContracts: s.AllowedContracts,
	}
	for _, g := range s.AllowedGroups {
		aux.AllowedGroups = append(aux.AllowedGroups, hex.EncodeToString(g.Bytes()))
	}
	for i := range s.Rules {
		b, err := s.Rules[i].MarshalJSON()
		if err != nil {
			return nil, err
		}
		aux.Rules = append(aux.Rules, b)
	}
	return json.Marshal(aux)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *Signer) UnmarshalJSON(data []byte) error {
	aux := new(signerAux)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	s.Account = aux.Account
	s.Scopes = aux.Scopes
	s.AllowedContracts = aux.AllowedContracts
	s.AllowedGroups = nil
	for _, g := range aux.AllowedGroups {
		b, err := hex.DecodeString(g)
		if err != nil {
			return err
		}
		pk, err := keys.NewPublicKeyFromBytes(b)
		if err != nil {
			return err
		}
		s.AllowedGroups = append(s.AllowedGroups, pk)
	}
	s.Rules = nil
	for _, raw := range aux.Rules {
		var r WitnessRule
		if err := r.UnmarshalJSON(raw); err != nil {
			return err
		}
		s.Rules = append(s.Rules, r)
	}
	return nil
}
