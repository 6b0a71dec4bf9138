package transaction

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/n3ledger/core/pkg/io"
	"github.com/n3ledger/core/pkg/util"
)

// AttrType is the wire tag of a transaction attribute.
type AttrType byte

// Defined attribute types (spec.md §4.2).
const (
	HighPriority     AttrType = 0x01
	OracleResponseT  AttrType = 0x11
	NotValidBeforeT  AttrType = 0x20
	ConflictsT       AttrType = 0x21
	NotaryAssistedT  AttrType = 0x22
	ReservedLowerBound AttrType = 0xe0
	ReservedUpperBound AttrType = 0xff
)

func (t AttrType) String() string {
	switch t {
	case HighPriority:
		return "HighPriority"
	case OracleResponseT:
		return "OracleResponse"
	case NotValidBeforeT:
		return "NotValidBefore"
	case ConflictsT:
		return "Conflicts"
	case NotaryAssistedT:
		return "NotaryAssisted"
	default:
		if t >= ReservedLowerBound && t <= ReservedUpperBound {
			return fmt.Sprintf("Reserved%d", byte(t))
		}
		return "Unknown"
	}
}

func attrTypeFromString(s string) (AttrType, error) {
	switch s {
	case "HighPriority":
		return HighPriority, nil
	case "OracleResponse":
		return OracleResponseT, nil
	case "NotValidBefore":
		return NotValidBeforeT, nil
	case "Conflicts":
		return ConflictsT, nil
	case "NotaryAssisted":
		return NotaryAssistedT, nil
	}
	return 0, fmt.Errorf("unknown attribute type %q", s)
}

// AttrValue is the binary-codec contract every attribute payload implements.
// HighPriority carries none (Attribute.Value is nil for it).
type AttrValue interface {
	EncodeBinary(*io.BinWriter)
	DecodeBinary(*io.BinReader)
}

// Attribute is a single transaction attribute: a type tag plus an optional
// typed payload.
type Attribute struct {
	Type  AttrType
	Value AttrValue
}

// EncodeBinary implements the io.Serializable interface.
func (a *Attribute) EncodeBinary(w *io.BinWriter) {
	if !isKnownAttrType(a.Type) {
		w.Err = fmt.Errorf("invalid attribute type %x", byte(a.Type))
		return
	}
	w.WriteB(byte(a.Type))
	if a.Value != nil {
		a.Value.EncodeBinary(w)
	}
}

// DecodeBinary implements the io.Serializable interface.
func (a *Attribute) DecodeBinary(r *io.BinReader) {
	t := AttrType(r.ReadB())
	if r.Err != nil {
		return
	}
	if !isKnownAttrType(t) {
		r.Err = fmt.Errorf("invalid attribute type %x", byte(t))
		return
	}
	val := newAttrValue(t)
	if val != nil {
		val.DecodeBinary(r)
	}
	if r.Err != nil {
		return
	}
	a.Type = t
	a.Value = val
}

func newAttrValue(t AttrType) AttrValue {
	switch t {
	case HighPriority:
		return nil
	case OracleResponseT:
		return new(OracleResponse)
	case NotValidBeforeT:
		return new(NotValidBefore)
	case ConflictsT:
		return new(Conflicts)
	case NotaryAssistedT:
		return new(NotaryAssisted)
	default:
		if t >= ReservedLowerBound && t <= ReservedUpperBound {
			return new(Reserved)
		}
		return nil
	}
}

func isKnownAttrType(t AttrType) bool {
	switch t {
	case HighPriority, OracleResponseT, NotValidBeforeT, ConflictsT, NotaryAssistedT:
		return true
	}
	return t >= ReservedLowerBound && t <= ReservedUpperBound
}

// MarshalJSON implements the json.Marshaler interface.
func (a *Attribute) MarshalJSON() ([]byte, error) {
	if !isKnownAttrType(a.Type) {
		return nil, fmt.Errorf("invalid attribute type %x", byte(a.Type))
	}
	m := map[string]any{"type": a.Type.String()}
	switch v := a.Value.(type) {
	case nil:
	case *OracleResponse:
		v.toJSONMap(m)
	case *NotValidBefore:
		m["height"] = v.Height
	case *Conflicts:
		m["hash"] = v.Hash.StringLE()
	case *NotaryAssisted:
		m["nkeys"] = v.NKeys
	case *Reserved:
		m["value"] = base64.StdEncoding.EncodeToString(v.Value)
	}
	return json.Marshal(m)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (a *Attribute) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	raw, ok := m["type"]
	if !ok {
		return errors.New("missing attribute type")
	}
	var typeStr string
	if err := json.Unmarshal(raw, &typeStr); err != nil {
		return err
	}
	t, err := attrTypeFromString(typeStr)
	if err != nil {
		return err
	}
	a.Type = t
	switch t {
	case HighPriority:
		a.Value = nil
	case OracleResponseT:
		var id uint64
		if err := json.Unmarshal(m["id"], &id); err != nil {
			return errors.New("missing oracle response id")
		}
		var codeStr string
		if err := json.Unmarshal(m["code"], &codeStr); err != nil {
			return errors.New("missing oracle response code")
		}
		code, err := oracleCodeFromString(codeStr)
		if err != nil {
			return err
		}
		var resStr string
		_ = json.Unmarshal(m["result"], &resStr)
		res, err := base64.StdEncoding.DecodeString(resStr)
		if err != nil {
			return err
		}
		a.Value = &OracleResponse{ID: id, Code: code, Result: res}
	case NotValidBeforeT:
		var height uint32
		if err := json.Unmarshal(m["height"], &height); err != nil {
			return err
		}
		a.Value = &NotValidBefore{Height: height}
	case ConflictsT:
		var hashStr string
		if err := json.Unmarshal(m["hash"], &hashStr); err != nil {
			return err
		}
		h, err := util.Uint256DecodeStringLE(hashStr)
		if err != nil {
			return err
		}
		a.Value = &Conflicts{Hash: h}
	case NotaryAssistedT:
		var n byte
		if err := json.Unmarshal(m["nkeys"], &n); err != nil {
			return err
		}
		a.Value = &NotaryAssisted{NKeys: n}
	default:
		if !isKnownAttrType(t) {
			return fmt.Errorf("unknown attribute type %q", typeStr)
		}
		var s string
		_ = json.Unmarshal(m["value"], &s)
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return err
		}
		a.Value = &Reserved{Value: b}
	}
	return nil
}

// NotValidBefore makes a transaction invalid before a given block height,
// used to delay mempool admission (spec.md §4.2).
type NotValidBefore struct {
	Height uint32
}

// EncodeBinary implements the AttrValue interface.
func (n *NotValidBefore) EncodeBinary(w *io.BinWriter) { w.WriteU32LE(n.Height) }

// DecodeBinary implements the AttrValue interface.
func (n *NotValidBefore) DecodeBinary(r *io.BinReader) { n.Height = r.ReadU32LE() }

// Conflicts marks another transaction hash this transaction invalidates if
// both are seen, letting a higher-fee replacement win a mempool slot.
type Conflicts struct {
	Hash util.Uint256
}

// EncodeBinary implements the AttrValue interface.
func (c *Conflicts) EncodeBinary(w *io.BinWriter) { w.WriteBytes(c.Hash[:]) }

// DecodeBinary implements the AttrValue interface.
func (c *Conflicts) DecodeBinary(r *io.BinReader) { r.ReadBytes(c.Hash[:]) }

// NotaryAssisted records how many notary witness keys a transaction expects
// (NeoGo Notary extension, spec.md §6 ambient supplement).
type NotaryAssisted struct {
	NKeys byte
}

// EncodeBinary implements the AttrValue interface.
func (n *NotaryAssisted) EncodeBinary(w *io.BinWriter) { w.WriteB(n.NKeys) }

// DecodeBinary implements the AttrValue interface.
func (n *NotaryAssisted) DecodeBinary(r *io.BinReader) {
	// ReadB would happily return 0 on EOF handling inside readLE, so check
	// explicitly to reject a truncated attribute.
	if r.Err != nil {
		return
	}
	n.NKeys = r.ReadB()
}

// Reserved carries a future attribute type's raw payload forward without
// interpreting it, within the protocol's reserved type-tag range.
type Reserved struct {
	Value []byte
}

// EncodeBinary implements the AttrValue interface.
func (res *Reserved) EncodeBinary(w *io.BinWriter) { w.WriteVarBytes(res.Value) }

// DecodeBinary implements the AttrValue interface.
func (res *Reserved) DecodeBinary(r *io.BinReader) { res.Value = r.ReadVarBytes() }
