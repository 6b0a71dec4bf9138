// Package vmstate defines the ExecutionEngine's run state, the bit-flag
// vocabulary spec.md §4.4 uses for HALT/FAULT/BREAK/NONE.
package vmstate

import (
	"encoding/json"
	"fmt"
	"strings"
)

// State is a bit flag describing an ExecutionEngine's current state.
type State byte

// These flags can be combined (e.g. a single step produces Halt|Break).
const (
	None  State = 0
	Halt  State = 1 << 0
	Fault State = 1 << 1
	Break State = 1 << 2
)

var names = []struct {
	s State
	n string
}{
	{Halt, "HALT"},
	{Fault, "FAULT"},
	{Break, "BREAK"},
}

// HasFlag reports whether f is set in s.
func (s State) HasFlag(f State) bool {
	return s&f == f
}

// String renders the set of flags as a comma-separated list, or "NONE" if
// none are set.
func (s State) String() string {
	if s == None {
		return "NONE"
	}
	var parts []string
	for _, nm := range names {
		if s.HasFlag(nm.s) {
			parts = append(parts, nm.n)
		}
	}
	return strings.Join(parts, ", ")
}

// FromString parses a comma-separated list of flag names (as produced by
// String) back into a State.
func FromString(s string) (State, error) {
	if s == "NONE" {
		return None, nil
	}
	var res State
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		found := false
		for _, nm := range names {
			if nm.n == part {
				res |= nm.s
				found = true
				break
			}
		}
		if !found {
			return None, fmt.Errorf("unknown state flag: %q", part)
		}
	}
	return res, nil
}

// MarshalJSON implements the json.Marshaler interface.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *State) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v, err := FromString(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}
