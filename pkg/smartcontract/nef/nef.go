// Package nef implements the NEF (Neo Executable Format) file: the compiled
// contract container pairing bytecode with compiler provenance and a
// checksum, the unit ContractManagement's Deploy/Update operations consume
// (spec.md §5).
package nef

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/n3ledger/core/pkg/crypto/hash"
	"github.com/n3ledger/core/pkg/io"
)

// Magic is the 4-byte tag identifying a NEF file.
const Magic uint32 = 0x3346454E // "NEF3"

// compilerFieldSize is the fixed wire width, in bytes, of the Compiler field.
const compilerFieldSize = 64

// MaxScriptLength bounds a NEF file's contained script.
const MaxScriptLength = 1024 * 1024

// MaxTokenCount bounds the number of method tokens a NEF file may carry.
const MaxTokenCount = 128

var (
	errInvalidMagic    = errors.New("invalid NEF magic")
	errInvalidChecksum = errors.New("invalid NEF checksum")
	errInvalidReserved = errors.New("reserved bytes must be zero")
	errInvalidScript   = errors.New("invalid script: empty or too long")
	errCompilerTooLong = errors.New("compiler field too long")
)

// Header is the fixed-width prefix of a NEF file.
type Header struct {
	Magic    uint32
	Compiler string
}

// EncodeBinary implements the io.Serializable interface.
func (h *Header) EncodeBinary(w *io.BinWriter) {
	if len(h.Compiler) > compilerFieldSize {
		w.Err = errCompilerTooLong
		return
	}
	w.WriteU32LE(h.Magic)
	buf := make([]byte, compilerFieldSize)
	copy(buf, h.Compiler)
	w.WriteBytes(buf)
}

// DecodeBinary implements the io.Serializable interface.
func (h *Header) DecodeBinary(r *io.BinReader) {
	h.Magic = r.ReadU32LE()
	if r.Err == nil && h.Magic != Magic {
		r.Err = errInvalidMagic
		return
	}
	buf := make([]byte, compilerFieldSize)
	r.ReadBytes(buf)
	if r.Err != nil {
		return
	}
	n := compilerFieldSize
	for n > 0 && buf[n-1] == 0 {
		n--
	}
	h.Compiler = string(buf[:n])
}

// File is the full NEF container: header, called-method tokens, script,
// and a checksum binding the three together.
type File struct {
	Header   Header
	Tokens   []MethodToken
	Script   []byte
	Checksum uint32
}

// NewFile builds a File around script with no method tokens, computing its
// checksum, the way a deploy transaction's NEF payload is assembled.
func NewFile(script []byte) (*File, error) {
	f := &File{
		Header: Header{
			Magic:    Magic,
			Compiler: "n3ledger-core",
		},
		Script: script,
	}
	if len(script) == 0 || len(script) > MaxScriptLength {
		return nil, errInvalidScript
	}
	f.Checksum = f.CalculateChecksum()
	return f, nil
}

// EncodeBinary implements the io.Serializable interface.
func (f *File) EncodeBinary(w *io.BinWriter) {
	f.encodeHashableFields(w)
	w.WriteU32LE(f.Checksum)
}

func (f *File) encodeHashableFields(w *io.BinWriter) {
	f.Header.EncodeBinary(w)
	w.WriteB(0)
	w.WriteArray(len(f.Tokens), func(i int) { f.Tokens[i].EncodeBinary(w) })
	w.WriteU16LE(0)
	w.WriteVarBytes(f.Script)
}

// DecodeBinary implements the io.Serializable interface.
func (f *File) DecodeBinary(r *io.BinReader) {
	f.Header.DecodeBinary(r)
	if r.Err != nil {
		return
	}
	reserved := r.ReadB()
	if r.Err != nil {
		return
	}
	if reserved != 0 {
		r.Err = errInvalidReserved
		return
	}
	f.Tokens = nil
	r.ReadArray(func() {
		var tok MethodToken
		tok.DecodeBinary(r)
		f.Tokens = append(f.Tokens, tok)
	}, MaxTokenCount)
	if r.Err != nil {
		return
	}
	reserved2 := r.ReadU16LE()
	if r.Err != nil {
		return
	}
	if reserved2 != 0 {
		r.Err = errInvalidReserved
		return
	}
	f.Script = r.ReadVarBytes(MaxScriptLength)
	if r.Err != nil {
		return
	}
	if len(f.Script) == 0 {
		r.Err = errInvalidScript
		return
	}
	f.Checksum = r.ReadU32LE()
	if r.Err != nil {
		return
	}
	if f.Checksum != f.CalculateChecksum() {
		r.Err = errInvalidChecksum
	}
}

// CalculateChecksum computes the checksum binding the header, tokens, and
// script together: the first 4 bytes, little-endian, of the double-SHA256
// hash of the file's encoding up to (not including) the checksum itself.
func (f *File) CalculateChecksum() uint32 {
	buf := io.NewBufBinWriter()
	f.encodeHashableFields(buf.BinWriter)
	sum := hash.Checksum(buf.Bytes())
	return binary.LittleEndian.Uint32(sum)
}

// Bytes encodes the File to a new byte slice.
func (f *File) Bytes() ([]byte, error) {
	buf := io.NewBufBinWriter()
	f.EncodeBinary(buf.BinWriter)
	if buf.Err != nil {
		return nil, buf.Err
	}
	return buf.Bytes(), nil
}

// FileFromBytes decodes a File from raw bytes.
func FileFromBytes(b []byte) (File, error) {
	r := io.NewBinReaderFromBuf(b)
	f := File{}
	f.DecodeBinary(r)
	if r.Err != nil {
		return File{}, r.Err
	}
	return f, nil
}

type fileAux struct {
	Magic    uint32          `json:"magic"`
	Compiler string          `json:"compiler"`
	Tokens   []*MethodToken  `json:"tokens"`
	Script   string          `json:"script"`
	Checksum uint32          `json:"checksum"`
}

// MarshalJSON implements the json.Marshaler interface.
func (f *File) MarshalJSON() ([]byte, error) {
	tokens := make([]*MethodToken, len(f.Tokens))
	for i := range f.Tokens {
		tokens[i] = &f.Tokens[i]
	}
	return json.Marshal(fileAux{
		Magic:    f.Header.Magic,
		Compiler: f.Header.Compiler,
		Tokens:   tokens,
		Script:   base64.StdEncoding.EncodeToString(f.Script),
		Checksum: f.Checksum,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *File) UnmarshalJSON(data []byte) error {
	aux := new(fileAux)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	script, err := base64.StdEncoding.DecodeString(aux.Script)
	if err != nil {
		return err
	}
	f.Header = Header{Magic: aux.Magic, Compiler: aux.Compiler}
	f.Tokens = nil
	for _, t := range aux.Tokens {
		f.Tokens = append(f.Tokens, *t)
	}
	f.Script = script
	f.Checksum = aux.Checksum
	if f.Header.Magic != Magic {
		return fmt.Errorf("%w: %d", errInvalidMagic, f.Header.Magic)
	}
	return nil
}
