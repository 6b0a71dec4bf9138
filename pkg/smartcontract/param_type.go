// Package smartcontract defines the value domain used to describe contract
// method parameters and return types (ABI entries, invocation parameters,
// manifest permissions) independent of the stack-item encoding the VM uses
// internally.
package smartcontract

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/n3ledger/core/pkg/crypto/base58"
	"github.com/n3ledger/core/pkg/util"
)

// ParamType represents the Neo N3 ContractParameterType: the declared type
// of a contract method's parameter or return value.
type ParamType int

// Standard ParamType values, matching the reference ContractParameterType
// byte layout exactly (this is a consensus-relevant wire value wherever a
// manifest ABI entry is hashed or serialized).
const (
	UnknownType          ParamType = -1
	AnyType              ParamType = 0x00
	BoolType             ParamType = 0x10
	IntegerType          ParamType = 0x11
	ByteArrayType        ParamType = 0x12
	StringType           ParamType = 0x13
	Hash160Type          ParamType = 0x14
	Hash256Type          ParamType = 0x15
	PublicKeyType        ParamType = 0x16
	SignatureType        ParamType = 0x17
	ArrayType            ParamType = 0x20
	MapType              ParamType = 0x22
	InteropInterfaceType ParamType = 0x30
	VoidType             ParamType = 0xff
)

// String implements the fmt.Stringer interface.
func (pt ParamType) String() string {
	switch pt {
	case AnyType:
		return "Any"
	case BoolType:
		return "Boolean"
	case IntegerType:
		return "Integer"
	case ByteArrayType:
		return "ByteArray"
	case StringType:
		return "String"
	case Hash160Type:
		return "Hash160"
	case Hash256Type:
		return "Hash256"
	case PublicKeyType:
		return "PublicKey"
	case SignatureType:
		return "Signature"
	case ArrayType:
		return "Array"
	case MapType:
		return "Map"
	case InteropInterfaceType:
		return "InteropInterface"
	case VoidType:
		return "Void"
	default:
		return "Unknown"
	}
}

// MarshalJSON implements the json.Marshaler interface, encoding a ParamType
// using its ABI name (the same text String returns), distinct from the
// lowercase shorthand ParseParamType accepts on the CLI.
func (pt ParamType) MarshalJSON() ([]byte, error) {
	return json.Marshal(pt.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (pt *ParamType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "Any":
		*pt = AnyType
	case "Boolean":
		*pt = BoolType
	case "Integer":
		*pt = IntegerType
	case "ByteArray":
		*pt = ByteArrayType
	case "String":
		*pt = StringType
	case "Hash160":
		*pt = Hash160Type
	case "Hash256":
		*pt = Hash256Type
	case "PublicKey":
		*pt = PublicKeyType
	case "Signature":
		*pt = SignatureType
	case "Array":
		*pt = ArrayType
	case "Map":
		*pt = MapType
	case "InteropInterface":
		*pt = InteropInterfaceType
	case "Void":
		*pt = VoidType
	default:
		return fmt.Errorf("unknown parameter type: %s", s)
	}
	return nil
}

// ParseParamType is a user-friendly (CLI/config-facing) case-insensitive
// parser, distinct from the ABI's on-the-wire type names returned by String.
func ParseParamType(s string) (ParamType, error) {
	switch strings.ToLower(s) {
	case "any":
		return AnyType, nil
	case "signature":
		return SignatureType, nil
	case "bool":
		return BoolType, nil
	case "int":
		return IntegerType, nil
	case "hash160":
		return Hash160Type, nil
	case "hash256":
		return Hash256Type, nil
	case "bytes":
		return ByteArrayType, nil
	case "key":
		return PublicKeyType, nil
	case "string":
		return StringType, nil
	case "array":
		return ArrayType, nil
	case "map":
		return MapType, nil
	case "interopinterface":
		return InteropInterfaceType, nil
	case "void":
		return VoidType, nil
	default:
		return UnknownType, fmt.Errorf("bad parameter type: %s", s)
	}
}

// ConvertToParamType converts an integer taken from persisted/serialized
// data into a ParamType, rejecting byte values outside the known set (a
// malformed ABI entry must not silently become AnyType).
func ConvertToParamType(val int) (ParamType, error) {
	switch ParamType(val) {
	case UnknownType, AnyType, BoolType, IntegerType, ByteArrayType, StringType,
		Hash160Type, Hash256Type, PublicKeyType, SignatureType, ArrayType, MapType,
		InteropInterfaceType, VoidType:
		return ParamType(val), nil
	default:
		return 0, fmt.Errorf("unknown parameter type: %d", val)
	}
}

// AddressVersion is the Base58Check version byte prefixing a Neo N3 address
// (spec.md §6: version 0x35 over a 20-byte script hash).
const AddressVersion = 0x35

func isHex(s string) bool {
	if len(s) == 0 || len(s)%2 != 0 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func isAddress(s string) bool {
	b, err := base58.CheckDecode(s)
	if err != nil || len(b) != 21 || b[0] != AddressVersion {
		return false
	}
	return true
}

// inferParamType guesses the ParamType of a literal string value the way
// the CLI invocation builder does when no explicit type annotation is given.
func inferParamType(s string) ParamType {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntegerType
	}
	if s == "true" || s == "false" {
		return BoolType
	}
	if isAddress(s) {
		return Hash160Type
	}
	if isHex(s) {
		switch len(s) {
		case 40:
			return Hash160Type
		case 64:
			return Hash256Type
		case 66:
			if strings.HasPrefix(s, "02") || strings.HasPrefix(s, "03") {
				return PublicKeyType
			}
		case 128:
			return SignatureType
		}
		return ByteArrayType
	}
	return StringType
}

// adjustValToType converts a literal string to the Go value matching typ,
// validating it along the way (an explicit type annotation narrows what
// inferParamType would otherwise guess).
func adjustValToType(typ ParamType, val string) (interface{}, error) {
	switch typ {
	case SignatureType:
		b, err := hex.DecodeString(val)
		if err != nil {
			return nil, fmt.Errorf("bad signature: %w", err)
		}
		if len(b) != 64 {
			return nil, fmt.Errorf("bad signature length: %d", len(b))
		}
		return b, nil
	case BoolType:
		switch val {
		case "true":
			return true, nil
		case "false":
			return false, nil
		default:
			return nil, fmt.Errorf("bad boolean value: %s", val)
		}
	case IntegerType:
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad integer value: %w", err)
		}
		return i, nil
	case Hash160Type:
		u, err := util.Uint160DecodeStringLE(val)
		if err != nil {
			u, err = addressToUint160(val)
		}
		if err != nil {
			return nil, fmt.Errorf("bad Hash160 value: %w", err)
		}
		return u, nil
	case Hash256Type:
		u, err := util.Uint256DecodeStringLE(val)
		if err != nil {
			return nil, fmt.Errorf("bad Hash256 value: %w", err)
		}
		return u, nil
	case ByteArrayType:
		b, err := hex.DecodeString(val)
		if err != nil {
			return nil, fmt.Errorf("bad ByteArray value: %w", err)
		}
		return b, nil
	case PublicKeyType:
		b, err := hex.DecodeString(val)
		if err != nil || len(b) != 33 || (b[0] != 0x02 && b[0] != 0x03) {
			return nil, fmt.Errorf("bad public key value: %s", val)
		}
		return b, nil
	case StringType:
		return val, nil
	default:
		return nil, fmt.Errorf("type %s can't be inferred from a CLI literal", typ)
	}
}

func addressToUint160(s string) (util.Uint160, error) {
	b, err := base58.CheckDecode(s)
	if err != nil {
		return util.Uint160{}, err
	}
	if len(b) != 21 || b[0] != AddressVersion {
		return util.Uint160{}, fmt.Errorf("not a valid address: %s", s)
	}
	return util.Uint160DecodeBytesBE(b[1:])
}
