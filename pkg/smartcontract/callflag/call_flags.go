// Package callflag defines the permission bitmask a contract invocation
// carries, limiting what it's allowed to do (read/write storage, call other
// contracts, raise notifications).
package callflag

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CallFlag represents a set of Neo VM call flags.
type CallFlag byte

// Default Neo VM call flags (spec.md §5, interop boundary).
const (
	NoneFlag    CallFlag = 0
	ReadStates  CallFlag = 1 << 0
	WriteStates CallFlag = 1 << 1
	AllowCall   CallFlag = 1 << 2
	AllowNotify CallFlag = 1 << 3

	States   = ReadStates | WriteStates
	ReadOnly = ReadStates | AllowCall
	All      = States | AllowCall | AllowNotify
)

var flagStrings = []struct {
	flag CallFlag
	name string
}{
	{ReadOnly, "ReadOnly"},
	{States, "States"},
	{ReadStates, "ReadStates"},
	{WriteStates, "WriteStates"},
	{AllowCall, "AllowCall"},
	{AllowNotify, "AllowNotify"},
}

// Has returns true iff all bits set in f2 are also set in f.
func (f CallFlag) Has(f2 CallFlag) bool {
	return f&f2 == f2
}

// String implements the fmt.Stringer interface.
func (f CallFlag) String() string {
	if f == NoneFlag {
		return "None"
	}
	if f == All {
		return "All"
	}
	var (
		names   []string
		remain  = f
	)
	for _, fs := range flagStrings {
		if remain&fs.flag == fs.flag {
			names = append(names, fs.name)
			remain &^= fs.flag
		}
	}
	if remain != 0 {
		return fmt.Sprintf("Unknown(%d)", byte(f))
	}
	return strings.Join(names, ", ")
}

// FromString parses a comma-separated list of flag names into a CallFlag.
func FromString(s string) (CallFlag, error) {
	parts := strings.Split(s, ",")
	var res CallFlag
	for _, p := range parts {
		if len(p) > 0 && p[0] == ' ' {
			p = p[1:]
		}
		if p == "None" || p == "All" {
			if len(parts) != 1 {
				return NoneFlag, fmt.Errorf("invalid call flag string %q", s)
			}
			if p == "None" {
				return NoneFlag, nil
			}
			return All, nil
		}
		var found bool
		for _, fs := range flagStrings {
			if fs.name == p {
				res |= fs.flag
				found = true
				break
			}
		}
		if !found {
			return NoneFlag, fmt.Errorf("unknown call flag %q", p)
		}
	}
	return res, nil
}

// MarshalJSON implements the json.Marshaler interface.
func (f CallFlag) MarshalJSON() ([]byte, error) {
	return json.Marshal(byte(f))
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *CallFlag) UnmarshalJSON(data []byte) error {
	var b byte
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("invalid call flag JSON: %w", err)
	}
	*f = CallFlag(b)
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface.
func (f CallFlag) MarshalYAML() (any, error) {
	return byte(f), nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (f *CallFlag) UnmarshalYAML(unmarshal func(any) error) error {
	var b byte
	if err := unmarshal(&b); err != nil {
		return err
	}
	*f = CallFlag(b)
	return nil
}
