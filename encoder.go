// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "math"

// encoder is an append-only byte buffer with in-place back-patching.
// Grounded on original_source/src/writer/encoding.rs's Encoder/VecEncoder.
type encoder struct {
	buf []byte
}

func newEncoder() *encoder {
	return &encoder{buf: make([]byte, 0, 256)}
}

// position returns the current write offset, i.e. the number of bytes
// written so far.
func (e *encoder) position() int { return len(e.buf) }

func (e *encoder) writeBytes(b []byte) {
	e.buf = append(e.buf, b...)
}

func (e *encoder) writeU8(v uint8) {
	e.buf = append(e.buf, v)
}

func (e *encoder) writeI8(v int8) { e.writeU8(uint8(v)) }

func (e *encoder) writeU16(v uint16) {
	e.buf = append(e.buf, byte(v>>8), byte(v))
}

func (e *encoder) writeI16(v int16) { e.writeU16(uint16(v)) }

func (e *encoder) writeU32(v uint32) {
	e.buf = append(e.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func (e *encoder) writeI32(v int32) { e.writeU32(uint32(v)) }

func (e *encoder) writeU64(v uint64) {
	for shift := 56; shift >= 0; shift -= 8 {
		e.buf = append(e.buf, byte(v>>uint(shift)))
	}
}

func (e *encoder) writeI64(v int64) { e.writeU64(uint64(v)) }

func (e *encoder) writeF32(v float32) { e.writeU32(math.Float32bits(v)) }

func (e *encoder) writeF64(v float64) { e.writeU64(math.Float64bits(v)) }

// replacing overwrites n bytes already written at offset, returning a
// small cursor that can only write exactly n bytes total. Used for
// back-patching length and count prefixes.
func (e *encoder) replacing(offset, n int) *replacingEncoder {
	return &replacingEncoder{parent: e, offset: offset, limit: n}
}

// replacingEncoder writes into a fixed window of already-allocated bytes;
// it panics (a programmer error, not a data error) if asked to write past
// its window, since the caller always knows the window size up front.
type replacingEncoder struct {
	parent *encoder
	offset int
	pos    int
	limit  int
}

func (r *replacingEncoder) write(b []byte) {
	if r.pos+len(b) > r.limit {
		panic("classfile: replacingEncoder write exceeds reserved window")
	}
	copy(r.parent.buf[r.offset+r.pos:], b)
	r.pos += len(b)
}

func (r *replacingEncoder) writeU8(v uint8)   { r.write([]byte{v}) }
func (r *replacingEncoder) writeU16(v uint16) { r.write([]byte{byte(v >> 8), byte(v)}) }
func (r *replacingEncoder) writeU32(v uint32) {
	r.write([]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}

// lengthWriter reserves a placeholder u32 length prefix at the current
// position and back-patches it once the caller knows how many bytes the
// payload occupied.
type lengthWriter struct {
	e      *encoder
	offset int
}

// beginLength reserves a 4-byte placeholder and returns a handle to
// back-patch it.
func beginLength(e *encoder) *lengthWriter {
	offset := e.position()
	e.writeU32(0)
	return &lengthWriter{e: e, offset: offset}
}

// finish computes the byte length written since the placeholder and
// patches it in.
func (l *lengthWriter) finish() error {
	length := l.e.position() - l.offset - 4
	if length < 0 || length > math.MaxUint32 {
		return newEncodeError(TooManyBytes, l.offset, ContextAttributes)
	}
	l.e.replacing(l.offset, 4).writeU32(uint32(length))
	return nil
}

// countWriter reserves a placeholder count prefix (1 or 2 bytes) and
// increments it each time a sub-writer finishes, matching
// original_source's ManyWriter back-patch-on-each-item behavior.
type countWriter struct {
	e       *encoder
	offset  int
	wide    bool // true => u16 count, false => u8 count
	count   int
	maxItem int
}

func beginCount16(e *encoder) *countWriter {
	offset := e.position()
	e.writeU16(0)
	return &countWriter{e: e, offset: offset, wide: true, maxItem: math.MaxUint16}
}

func beginCount8(e *encoder) *countWriter {
	offset := e.position()
	e.writeU8(0)
	return &countWriter{e: e, offset: offset, wide: false, maxItem: math.MaxUint8}
}

// increment bumps the count by one and re-patches the prefix immediately,
// so a partially-written section is always self-consistent.
func (c *countWriter) increment() error {
	c.count++
	if c.count > c.maxItem {
		return newEncodeError(TooManyItems, c.offset, ContextAttributes)
	}
	if c.wide {
		c.e.replacing(c.offset, 2).writeU16(uint16(c.count))
	} else {
		c.e.replacing(c.offset, 1).writeU8(uint8(c.count))
	}
	return nil
}
