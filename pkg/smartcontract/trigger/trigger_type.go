// Package trigger defines the set of contexts a script can be invoked
// under: as part of block persistence, as part of a deployed contract's
// application logic, or as a witness verification check (spec.md §4.4).
package trigger

import "fmt"

// Type is a bit flag identifying why a script is being executed.
type Type byte

// Valid Type values, matching the protocol's wire encoding.
const (
	OnPersist    Type = 0x01
	PostPersist  Type = 0x02
	Verification Type = 0x20
	Application  Type = 0x40
	All               = OnPersist | PostPersist | Verification | Application
)

// String implements the fmt.Stringer interface.
func (t Type) String() string {
	switch t {
	case OnPersist:
		return "OnPersist"
	case PostPersist:
		return "PostPersist"
	case Verification:
		return "Verification"
	case Application:
		return "Application"
	case All:
		return "All"
	default:
		return fmt.Sprintf("Unknown(0x%02x)", byte(t))
	}
}

// FromString parses a trigger type name as produced by String.
func FromString(s string) (Type, error) {
	switch s {
	case "OnPersist":
		return OnPersist, nil
	case "PostPersist":
		return PostPersist, nil
	case "Verification":
		return Verification, nil
	case "Application":
		return Application, nil
	case "All":
		return All, nil
	default:
		return 0, fmt.Errorf("unknown trigger type: %q", s)
	}
}
