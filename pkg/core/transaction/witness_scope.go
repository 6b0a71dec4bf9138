package transaction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// WitnessScope limits the applicability of a transaction signer's witness
// (spec.md §4.2): by default a witness is checked only when the currently
// executing contract matches the entry script, wider scopes must be opted
// into explicitly.
type WitnessScope byte

const (
	// None means no contract was explicitly authorized, the signature is
	// only used for fee/conflict accounting.
	None WitnessScope = 0
	// CalledByEntry limits the witness to the entry script and scripts it
	// directly calls, the default and recommended scope.
	CalledByEntry WitnessScope = 0x01
	// CustomContracts limits the witness to an explicit allow-list of
	// contract hashes.
	CustomContracts WitnessScope = 0x10
	// CustomGroups limits the witness to contracts belonging to an
	// explicit allow-list of groups (by group public key).
	CustomGroups WitnessScope = 0x20
	// Rules evaluates an attached list of WitnessRule conditions to decide
	// whether the witness applies.
	Rules WitnessScope = 0x40
	// Global allows the witness to be used by any contract; it cannot be
	// combined with any other scope.
	Global WitnessScope = 0x80
)

var scopeNames = []struct {
	s WitnessScope
	n string
}{
	{CalledByEntry, "CalledByEntry"},
	{CustomContracts, "CustomContracts"},
	{CustomGroups, "CustomGroups"},
	{Rules, "Rules"},
	{Global, "Global"},
}

// ScopesFromByte converts a byte to a (possibly combined) WitnessScope,
// rejecting undefined bits and any combination that includes Global.
func ScopesFromByte(b byte) (WitnessScope, error) {
	s := WitnessScope(b)
	if s == None {
		return None, nil
	}
	if s&Global != 0 && s != Global {
		return 0, errors.New("Global scope can't be combined with other scopes")
	}
	var known WitnessScope
	for _, sn := range scopeNames {
		known |= sn.s
	}
	if s&^known != 0 {
		return 0, fmt.Errorf("invalid scope %d", b)
	}
	return s, nil
}

// ScopesFromString parses a comma-separated list of scope names into a
// combined WitnessScope.
func ScopesFromString(s string) (WitnessScope, error) {
	if len(s) == 0 {
		return 0, errors.New("empty scope string")
	}
	var result WitnessScope
	var sawGlobal, sawOther bool
	parts := strings.Split(s, ",")
	for _, p := range parts {
		p = strings.TrimSpace(p)
		sc, err := scopeFromName(p)
		if err != nil {
			return 0, err
		}
		if sc == Global {
			sawGlobal = true
		} else {
			sawOther = true
		}
		result |= sc
	}
	if sawGlobal && sawOther {
		return 0, errors.New("Global scope can't be combined with other scopes")
	}
	return result, nil
}

func scopeFromName(name string) (WitnessScope, error) {
	for _, sn := range scopeNames {
		if sn.n == name {
			return sn.s, nil
		}
	}
	return 0, fmt.Errorf("unknown witness scope %q", name)
}

// String returns the comma-separated list of scope names making up s.
func (s WitnessScope) String() string {
	if s == None {
		return "None"
	}
	if s == Global {
		return "Global"
	}
	var names []string
	for _, sn := range scopeNames {
		if sn.s == Global {
			continue
		}
		if s&sn.s != 0 {
			names = append(names, sn.n)
		}
	}
	return strings.Join(names, ", ")
}

// MarshalJSON implements the json.Marshaler interface.
func (s WitnessScope) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *WitnessScope) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	sc, err := ScopesFromString(str)
	if err != nil {
		return err
	}
	*s = sc
	return nil
}
