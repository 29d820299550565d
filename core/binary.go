package core

import "encoding/binary"

// ByteReader is a cursor over a byte slice with typed little-endian
// Read*/Peek methods, following the teacher's Stream cursor-over-a-slice
// shape (core/stream.go) but reading LE instead of BE since the km2 format
// is little-endian throughout.
type ByteReader struct {
	buf []byte
	pos int
}

// NewByteReader wraps buf for sequential little-endian reads starting at
// offset 0.
func NewByteReader(buf []byte) *ByteReader {
	return &ByteReader{buf: buf}
}

// Pos returns the current read offset.
func (r *ByteReader) Pos() int { return r.pos }

// Len returns the total number of bytes in the underlying buffer.
func (r *ByteReader) Len() int { return len(r.buf) }

// Remaining returns the number of unread bytes.
func (r *ByteReader) Remaining() int { return len(r.buf) - r.pos }

// requireNoPanic reports whether n more bytes are available without
// consuming them or panicking; callers that want to fail gracefully
// (rather than via the panic/recover boundary) check this first.
func (r *ByteReader) requireNoPanic(n int) bool {
	return r.Remaining() >= n
}

// require panics via ThrowIf when fewer than n bytes remain. Internal
// reads are written straight-line against this; the package boundary
// (km2.Load) wraps the whole decode in core.Try.
func (r *ByteReader) require(n int) {
	ThrowIf(!r.requireNoPanic(n), CreateEngineError(ErrFileTooSmall, "unexpected end of buffer", nil).
		WithContext("offset", r.pos).WithContext("need", n))
}

// U8 reads a single byte.
func (r *ByteReader) U8() uint8 {
	r.require(1)
	v := r.buf[r.pos]
	r.pos++
	return v
}

// U16 reads a little-endian uint16.
func (r *ByteReader) U16() uint16 {
	r.require(2)
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v
}

// U32 reads a little-endian uint32.
func (r *ByteReader) U32() uint32 {
	r.require(4)
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v
}

// Bytes reads n raw bytes.
func (r *ByteReader) Bytes(n int) []byte {
	r.require(n)
	v := r.buf[r.pos : r.pos+n]
	r.pos += n
	return v
}

// PeekU8 returns the next byte without advancing the cursor. ok is false
// at end of buffer.
func (r *ByteReader) PeekU8() (v uint8, ok bool) {
	if !r.requireNoPanic(1) {
		return 0, false
	}
	return r.buf[r.pos], true
}

// Skip advances the cursor by n bytes without returning them.
func (r *ByteReader) Skip(n int) {
	r.require(n)
	r.pos += n
}
