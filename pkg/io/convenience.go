package io

// ToByteArray serializes a Serializable into a new byte slice.
func ToByteArray(s Serializable) []byte {
	w := NewBufBinWriter()
	s.EncodeBinary(w.BinWriter)
	return w.Bytes()
}

// FromByteArray deserializes a Serializable from the given byte slice and
// returns any decoding error.
func FromByteArray(s Serializable, b []byte) error {
	r := NewBinReaderFromBuf(b)
	s.DecodeBinary(r)
	return r.Err
}
