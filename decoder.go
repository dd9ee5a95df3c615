// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "math"

// decoder is a position-tracked cursor over a borrowed byte slice. It never
// mutates the underlying slice and is cheap to clone, which is how the
// lazy field/method/attribute iterators replay the same bytes more than
// once. Grounded on original_source/src/reader/decoding.rs's Decoder, with
// the bounds-checked-read discipline of helper.go's structUnpack.
type decoder struct {
	buf []byte // the full input buffer
	pos int    // current read offset into buf
	end int    // exclusive upper bound this decoder is limited to
	ctx Context
}

func newDecoder(buf []byte, ctx Context) *decoder {
	return &decoder{buf: buf, pos: 0, end: len(buf), ctx: ctx}
}

// clone returns an independent copy of d sharing the same backing array.
func (d *decoder) clone() *decoder {
	cp := *d
	return &cp
}

func (d *decoder) filePosition() int { return d.pos }
func (d *decoder) context() Context  { return d.ctx }
func (d *decoder) setContext(ctx Context) {
	d.ctx = ctx
}
func (d *decoder) bytesRemaining() int { return d.end - d.pos }

// remaining returns the bytes still to be read by d.
func (d *decoder) remaining() []byte {
	return d.buf[d.pos:d.end]
}

func (d *decoder) eof(n int) error {
	if d.pos+n > d.end {
		return newDecodeError(UnexpectedEoi, d.pos, d.ctx)
	}
	return nil
}

// advance skips n bytes without returning them.
func (d *decoder) advance(n int) error {
	if err := d.eof(n); err != nil {
		return err
	}
	d.pos += n
	return nil
}

// readBytes returns the next n bytes as a sub-slice of the original buffer
// and advances past them.
func (d *decoder) readBytes(n int) ([]byte, error) {
	if err := d.eof(n); err != nil {
		return nil, err
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// limit returns a new decoder scoped to exactly the next n bytes, with its
// own context, without advancing d.
func (d *decoder) limit(n int, ctx Context) (*decoder, error) {
	if err := d.eof(n); err != nil {
		return nil, err
	}
	return &decoder{buf: d.buf, pos: d.pos, end: d.pos + n, ctx: ctx}, nil
}

// withContext returns a shallow copy of d with a different context.
func (d *decoder) withContext(ctx Context) *decoder {
	cp := *d
	cp.ctx = ctx
	return &cp
}

func (d *decoder) readU8() (uint8, error) {
	if err := d.eof(1); err != nil {
		return 0, err
	}
	v := d.buf[d.pos]
	d.pos++
	return v, nil
}

func (d *decoder) readI8() (int8, error) {
	v, err := d.readU8()
	return int8(v), err
}

func (d *decoder) readU16() (uint16, error) {
	if err := d.eof(2); err != nil {
		return 0, err
	}
	v := uint16(d.buf[d.pos])<<8 | uint16(d.buf[d.pos+1])
	d.pos += 2
	return v, nil
}

func (d *decoder) readI16() (int16, error) {
	v, err := d.readU16()
	return int16(v), err
}

func (d *decoder) readU32() (uint32, error) {
	if err := d.eof(4); err != nil {
		return 0, err
	}
	v := uint32(d.buf[d.pos])<<24 | uint32(d.buf[d.pos+1])<<16 |
		uint32(d.buf[d.pos+2])<<8 | uint32(d.buf[d.pos+3])
	d.pos += 4
	return v, nil
}

func (d *decoder) readI32() (int32, error) {
	v, err := d.readU32()
	return int32(v), err
}

func (d *decoder) readU64() (uint64, error) {
	if err := d.eof(8); err != nil {
		return 0, err
	}
	v := uint64(0)
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(d.buf[d.pos+i])
	}
	d.pos += 8
	return v, nil
}

func (d *decoder) readI64() (int64, error) {
	v, err := d.readU64()
	return int64(v), err
}

func (d *decoder) readF32() (float32, error) {
	v, err := d.readU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (d *decoder) readF64() (float64, error) {
	v, err := d.readU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}
