package transaction

import (
	"encoding/base64"
	"errors"

	"github.com/n3ledger/core/pkg/io"
)

// OracleResponseCode is the result status of an oracle request.
type OracleResponseCode byte

// Defined oracle response codes (spec.md §6 Non-goals carve-out: oracle
// requests themselves are out of scope, but the response attribute format
// travels with every oracle-answering transaction).
const (
	Success              OracleResponseCode = 0x00
	ProtocolNotSupported OracleResponseCode = 0x10
	ConsensusUnreachable OracleResponseCode = 0x12
	NotFound             OracleResponseCode = 0x14
	Timeout              OracleResponseCode = 0x16
	Forbidden            OracleResponseCode = 0x18
	ResponseTooLarge     OracleResponseCode = 0x1a
	InsufficientFunds    OracleResponseCode = 0x1c
	Error                OracleResponseCode = 0xff
)

// MaxOracleResultSize is the maximum size, in bytes, of an oracle response
// result payload.
const MaxOracleResultSize = 0xffff

// ErrInvalidResponseCode is returned when decoding an OracleResponse with an
// undefined code.
var ErrInvalidResponseCode = errors.New("invalid oracle response code")

// ErrInvalidResult is returned when a non-Success response carries a
// non-empty result, which the protocol forbids.
var ErrInvalidResult = errors.New("invalid oracle response result")

func (c OracleResponseCode) valid() bool {
	switch c {
	case Success, ProtocolNotSupported, ConsensusUnreachable, NotFound,
		Timeout, Forbidden, ResponseTooLarge, InsufficientFunds, Error:
		return true
	default:
		return false
	}
}

func (c OracleResponseCode) String() string {
	switch c {
	case Success:
		return "Success"
	case ProtocolNotSupported:
		return "ProtocolNotSupported"
	case ConsensusUnreachable:
		return "ConsensusUnreachable"
	case NotFound:
		return "NotFound"
	case Timeout:
		return "Timeout"
	case Forbidden:
		return "Forbidden"
	case ResponseTooLarge:
		return "ResponseTooLarge"
	case InsufficientFunds:
		return "InsufficientFunds"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// OracleResponse is the attribute value an oracle-answering transaction
// attaches, carrying the oracle request ID it answers and the result.
type OracleResponse struct {
	ID     uint64
	Code   OracleResponseCode
	Result []byte
}

// EncodeBinary implements the AttrValue interface.
func (o *OracleResponse) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(o.ID)
	w.WriteB(byte(o.Code))
	w.WriteVarBytes(o.Result)
}

// DecodeBinary implements the AttrValue interface.
func (o *OracleResponse) DecodeBinary(r *io.BinReader) {
	o.ID = r.ReadU64LE()
	o.Code = OracleResponseCode(r.ReadB())
	if r.Err != nil {
		return
	}
	if !o.Code.valid() {
		r.Err = ErrInvalidResponseCode
		return
	}
	o.Result = r.ReadVarBytes(MaxOracleResultSize)
	if r.Err != nil {
		return
	}
	if o.Code != Success && len(o.Result) != 0 {
		r.Err = ErrInvalidResult
	}
}

func (o *OracleResponse) toJSONMap(m map[string]any) {
	m["id"] = o.ID
	m["code"] = o.Code.String()
	m["result"] = base64.StdEncoding.EncodeToString(o.Result)
}

func (o *OracleResponse) fromJSONMap(m map[string]any) error {
	id, ok := m["id"].(float64)
	if !ok {
		return errors.New("missing oracle response id")
	}
	o.ID = uint64(id)
	codeStr, ok := m["code"].(string)
	if !ok {
		return errors.New("missing oracle response code")
	}
	code, err := oracleCodeFromString(codeStr)
	if err != nil {
		return err
	}
	o.Code = code
	resStr, _ := m["result"].(string)
	res, err := base64.StdEncoding.DecodeString(resStr)
	if err != nil {
		return err
	}
	o.Result = res
	return nil
}

func oracleCodeFromString(s string) (OracleResponseCode, error) {
	for _, c := range []OracleResponseCode{Success, ProtocolNotSupported, ConsensusUnreachable,
		NotFound, Timeout, Forbidden, ResponseTooLarge, InsufficientFunds, Error} {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, ErrInvalidResponseCode
}
