// Package fixedn provides configuration-friendly fixed-point types (YAML
// marshaling) that wrap the canonical util.Fixed8 representation.
package fixedn

import (
	"fmt"

	"github.com/n3ledger/core/pkg/util"
)

// Fixed8 is util.Fixed8 with YAML (un)marshaling so it can appear directly
// in protocol configuration files (e.g. InitialGASSupply).
type Fixed8 util.Fixed8

// String implements the Stringer interface.
func (f Fixed8) String() string {
	return util.Fixed8(f).String()
}

// UnmarshalYAML implements the yaml.Unmarshaler interface, accepting either
// a plain integer (GAS units) or a decimal string ("52000000.0").
func (f *Fixed8) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err == nil {
		val, err := util.Fixed8FromString(s)
		if err != nil {
			return err
		}
		*f = Fixed8(val)
		return nil
	}
	var i int64
	if err := unmarshal(&i); err != nil {
		return fmt.Errorf("invalid Fixed8 value: %w", err)
	}
	*f = Fixed8(util.NewFixed8(i))
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface.
func (f Fixed8) MarshalYAML() (any, error) {
	return f.String(), nil
}
