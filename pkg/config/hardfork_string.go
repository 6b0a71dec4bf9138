package config

import "strconv"

// String implements the fmt.Stringer interface, returning the human-readable
// hard-fork name `go:generate stringer -linecomment` would have produced from
// hardfork.go's doc comments.
func (hf Hardfork) String() string {
	switch hf {
	case HFDefault:
		return "Default"
	case HFAspidochelone:
		return "Aspidochelone"
	case HFBasilisk:
		return "Basilisk"
	case HFCockatrice:
		return "Cockatrice"
	case HFDomovoi:
		return "Domovoi"
	case HFEchidna:
		return "Echidna"
	case HFFaun:
		return "Faun"
	default:
		return "Hardfork(" + strconv.FormatUint(uint64(hf), 10) + ")"
	}
}
