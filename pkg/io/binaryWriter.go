package io

import (
	"bytes"
	"encoding/binary"
	"io"
)

// BinWriter is a convenient wrapper around an io.Writer that accumulates
// the first encountered error, mirroring BinReader.
type BinWriter struct {
	w   io.Writer
	Err error
}

// NewBinWriterFromIO makes a BinWriter from io.Writer.
func NewBinWriterFromIO(iow io.Writer) *BinWriter {
	return &BinWriter{w: iow}
}

// WriteU64LE writes a little-endian encoded uint64 to the underlying stream.
func (w *BinWriter) WriteU64LE(u64 uint64) {
	w.writeLE(u64)
}

// WriteU32LE writes a little-endian encoded uint32 to the underlying stream.
func (w *BinWriter) WriteU32LE(u32 uint32) {
	w.writeLE(u32)
}

// WriteU16LE writes a little-endian encoded uint16 to the underlying stream.
func (w *BinWriter) WriteU16LE(u16 uint16) {
	w.writeLE(u16)
}

// WriteU16BE writes a big-endian encoded uint16 to the underlying stream.
func (w *BinWriter) WriteU16BE(u16 uint16) {
	if w.Err != nil {
		return
	}
	w.Err = binary.Write(w.w, binary.BigEndian, u16)
}

// WriteB writes a byte to the underlying stream.
func (w *BinWriter) WriteB(b byte) {
	w.writeLE(b)
}

// WriteBool writes a boolean value as a single byte.
func (w *BinWriter) WriteBool(b bool) {
	var i byte
	if b {
		i = 1
	}
	w.WriteB(i)
}

func (w *BinWriter) writeLE(v any) {
	if w.Err != nil {
		return
	}
	w.Err = binary.Write(w.w, binary.LittleEndian, v)
}

// WriteBytes writes a fixed size byte array to the underlying stream, as-is,
// no length prefix.
func (w *BinWriter) WriteBytes(b []byte) {
	if w.Err != nil {
		return
	}
	_, w.Err = w.w.Write(b)
}

// WriteArray writes a vector length as a VarUint followed by n elements
// produced by f.
func (w *BinWriter) WriteArray(n int, f func(i int)) {
	w.WriteVarUint(uint64(n))
	for i := 0; i < n && w.Err == nil; i++ {
		f(i)
	}
}

// WriteVarUint writes a uint64 value encoded with the canonical variable
// length encoding (spec.md §4.1) to the underlying stream.
func (w *BinWriter) WriteVarUint(val uint64) {
	if w.Err != nil {
		return
	}
	if val < 0xfd {
		w.WriteB(byte(val))
		return
	}
	if val <= 0xffff {
		w.WriteB(0xfd)
		w.WriteU16LE(uint16(val))
		return
	}
	if val <= 0xffffffff {
		w.WriteB(0xfe)
		w.WriteU32LE(uint32(val))
		return
	}
	w.WriteB(0xff)
	w.WriteU64LE(val)
}

// WriteVarBytes writes a variable-length-prefixed byte slice to the
// underlying stream.
func (w *BinWriter) WriteVarBytes(b []byte) {
	w.WriteVarUint(uint64(len(b)))
	w.WriteBytes(b)
}

// WriteString writes a variable-length-prefixed string to the underlying
// stream.
func (w *BinWriter) WriteString(s string) {
	w.WriteVarBytes([]byte(s))
}

// BufBinWriter is a BinWriter that writes into an in-memory buffer, the way
// callers wanting the raw encoded bytes (hashing, signing) use it.
type BufBinWriter struct {
	*BinWriter
	buf *bytes.Buffer
}

// NewBufBinWriter makes a BufBinWriter backed by a new bytes.Buffer.
func NewBufBinWriter() *BufBinWriter {
	b := new(bytes.Buffer)
	return &BufBinWriter{BinWriter: NewBinWriterFromIO(b), buf: b}
}

// Len returns the number of bytes written so far.
func (bw *BufBinWriter) Len() int {
	return bw.buf.Len()
}

// Bytes returns the resulting buffer and resets it, the same contract as
// bytes.Buffer.Bytes for one-shot encoders.
func (bw *BufBinWriter) Bytes() []byte {
	if bw.BinWriter.Err != nil {
		return nil
	}
	b := make([]byte, bw.buf.Len())
	copy(b, bw.buf.Bytes())
	return b
}

// Reset resets the buffer and error state so the writer can be reused.
func (bw *BufBinWriter) Reset() {
	bw.buf.Reset()
	bw.BinWriter.Err = nil
}

// ToArray is an alias of Bytes kept for call sites that read more naturally
// converting a builder's contents "to array".
func (bw *BufBinWriter) ToArray() []byte {
	return bw.Bytes()
}
