// Package noderoles defines the set of roles the RoleManagement native
// contract can designate a group of public keys to.
package noderoles

import "fmt"

// Role represents a node role.
type Role byte

// Various node roles.
const (
	StateValidator Role = 4
	Oracle         Role = 8
	NeoFSAlphabet  Role = 16
	P2PNotary      Role = 32
)

// String implements the fmt.Stringer interface.
func (r Role) String() string {
	switch r {
	case StateValidator:
		return "StateValidator"
	case Oracle:
		return "Oracle"
	case NeoFSAlphabet:
		return "NeoFSAlphabet"
	case P2PNotary:
		return "P2PNotary"
	default:
		return fmt.Sprintf("Role(%d)", byte(r))
	}
}

// FromString converts a role name to a Role, reporting whether it's valid.
func FromString(s string) (Role, bool) {
	switch s {
	case "StateValidator":
		return StateValidator, true
	case "Oracle":
		return Oracle, true
	case "NeoFSAlphabet":
		return NeoFSAlphabet, true
	case "P2PNotary":
		return P2PNotary, true
	default:
		return 0, false
	}
}
