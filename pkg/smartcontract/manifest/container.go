package manifest

import (
	"encoding/json"
	"errors"
)

// WildStrings is a set of strings with wildcard-by-default semantics: a nil
// Value means "any string is a member" (used for a permission's method list
// before it has been restricted to a concrete set).
type WildStrings struct {
	Value []string
}

// IsWildcard returns true if w has not been restricted to a concrete set.
func (w *WildStrings) IsWildcard() bool {
	return w.Value == nil
}

// Contains checks s against the set.
func (w *WildStrings) Contains(s string) bool {
	if w.IsWildcard() {
		return true
	}
	for _, v := range w.Value {
		if v == s {
			return true
		}
	}
	return false
}

// Add appends s to the restricted set, first restricting w if it is still a
// wildcard.
func (w *WildStrings) Add(s string) {
	w.Value = append(w.Value, s)
}

// Restrict drops the wildcard, leaving an explicit empty set.
func (w *WildStrings) Restrict() {
	w.Value = []string{}
}

// MarshalJSON implements the json.Marshaler interface.
func (w *WildStrings) MarshalJSON() ([]byte, error) {
	if w.IsWildcard() {
		return []byte(`"*"`), nil
	}
	return json.Marshal(w.Value)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (w *WildStrings) UnmarshalJSON(data []byte) error {
	var wildcard string
	if err := json.Unmarshal(data, &wildcard); err == nil {
		if wildcard != "*" {
			return errors.New("wrong wildcard string")
		}
		w.Value = nil
		return nil
	}
	var ss []string
	if err := json.Unmarshal(data, &ss); err != nil {
		return err
	}
	if ss == nil {
		ss = []string{}
	}
	w.Value = ss
	return nil
}

// WildPermissionDescs is a set of PermissionDesc values, non-wildcard by
// default (unlike WildStrings, since the zero value is meant to describe
// "no permissions granted" for trust/contract-permission lists).
type WildPermissionDescs struct {
	Wildcard bool
	Value    []PermissionDesc
}

// IsWildcard returns true if w has been explicitly marked as unrestricted.
func (w *WildPermissionDescs) IsWildcard() bool {
	return w.Wildcard
}

// Contains checks d against the set.
func (w *WildPermissionDescs) Contains(d PermissionDesc) bool {
	if w.Wildcard {
		return true
	}
	for _, v := range w.Value {
		if v.Type == d.Type && permissionDescValuesEqual(v, d) {
			return true
		}
	}
	return false
}

// Add appends d to the restricted set.
func (w *WildPermissionDescs) Add(d PermissionDesc) {
	w.Value = append(w.Value, d)
}

// Restrict drops the wildcard flag, leaving an explicit empty set.
func (w *WildPermissionDescs) Restrict() {
	w.Wildcard = false
	w.Value = []PermissionDesc{}
}

// MarshalJSON implements the json.Marshaler interface.
func (w *WildPermissionDescs) MarshalJSON() ([]byte, error) {
	if w.Wildcard {
		return []byte(`"*"`), nil
	}
	val := w.Value
	if val == nil {
		val = []PermissionDesc{}
	}
	return json.Marshal(val)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (w *WildPermissionDescs) UnmarshalJSON(data []byte) error {
	var wildcard string
	if err := json.Unmarshal(data, &wildcard); err == nil {
		if wildcard != "*" {
			return errors.New("wrong wildcard string")
		}
		w.Wildcard = true
		w.Value = nil
		return nil
	}
	var ds []PermissionDesc
	if err := json.Unmarshal(data, &ds); err != nil {
		return err
	}
	if ds == nil {
		ds = []PermissionDesc{}
	}
	w.Wildcard = false
	w.Value = ds
	return nil
}
