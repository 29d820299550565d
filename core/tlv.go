// Package core provides the ambient utilities shared by the km2 loader and
// the engine: panic/recover-based internal error propagation (Throw/Try),
// the EngineError structured error type, and byte-level decoding helpers
// (ByteReader, TLVReader) for the km2 binary format.
package core


// TLVRecord is a single tag+length+value record, generalized from the
// teacher's ASN.1/BER Asn1 type: the km2 info section uses the same
// tag-length-value shape, but with a fixed 4-byte ASCII tag and a 2-byte
// little-endian length rather than BER's variable-length tag/length
// encoding, so it is read by a dedicated TLVReader instead of reusing BER
// decoding rules that don't apply to this format.
type TLVRecord struct {
	Tag   [4]byte
	Value []byte
}

// TLVReader reads TLVRecords from a ByteReader, one per ReadRecord call;
// the caller decides how many records to read.
type TLVReader struct {
	r *ByteReader
}

// NewTLVReader wraps r for reading info-section TLV records.
func NewTLVReader(r *ByteReader) *TLVReader {
	return &TLVReader{r: r}
}

// ReadRecord reads one tag(4)+length(2 LE)+value(N) record.
func (t *TLVReader) ReadRecord() TLVRecord {
	var rec TLVRecord
	copy(rec.Tag[:], t.r.Bytes(4))
	length := t.r.U16()
	rec.Value = t.r.Bytes(int(length))
	return rec
}

// TagString returns the record's tag as a string, reversed: the km2 format
// stores info tags byte-reversed so that, read as a little-endian string,
// "eman" on disk spells "name" — reversing undoes that storage trick.
func (rec TLVRecord) TagString() string {
	b := rec.Tag
	return string([]byte{b[3], b[2], b[1], b[0]})
}
