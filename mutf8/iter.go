package mutf8

// Char is one decoded Modified UTF-8 code unit. A well-formed code point
// sets R and leaves Err false; an unpaired surrogate half sets Err and
// carries the raw surrogate value (0xD800..0xDFFF) in Surrogate instead.
type Char struct {
	R         rune
	Err       bool
	Surrogate uint32
}

// decodeForward decodes the code unit starting at b[i], assuming b is
// valid Modified UTF-8. It returns the decoded char and the number of
// bytes consumed.
func decodeForward(b []byte, i int) (Char, int) {
	c := b[i]
	switch {
	case c < 0x80:
		return Char{R: rune(c)}, 1
	case c&0xE0 == 0xC0:
		value := rune(c&0x1F)<<6 | rune(b[i+1]&0x3F)
		return Char{R: value}, 2
	default: // three-byte form
		value := rune(c&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)
		if value < 0xD800 || value > 0xDFFF {
			return Char{R: value}, 3
		}
		if value <= 0xDBFF && i+5 < len(b) {
			// Candidate high surrogate; look for its low partner.
			if b[i+3] == 0xED {
				low := rune(b[i+3]&0x0F)<<12 | rune(b[i+4]&0x3F)<<6 | rune(b[i+5]&0x3F)
				if low >= 0xDC00 && low <= 0xDFFF {
					combined := 0x10000 + (value-0xD800)<<10 + (low - 0xDC00)
					return Char{R: combined}, 6
				}
			}
		}
		return Char{Err: true, Surrogate: uint32(value)}, 3
	}
}

// decodeBackward decodes the code unit ending at b[:i], returning the
// decoded char and the number of bytes consumed from the end.
func decodeBackward(b []byte, i int) (Char, int) {
	last := b[i-1]
	if last < 0x80 {
		return Char{R: rune(last)}, 1
	}
	if i >= 2 && b[i-2]&0xE0 == 0xC0 {
		ch, n := decodeForward(b, i-2)
		return ch, n
	}
	// Three-byte (or six-byte) form ends at i.
	start := i - 3
	if i >= 6 && b[i-6] == 0xED && b[start] == 0xED {
		hi := rune(b[i-6]&0x0F)<<12 | rune(b[i-5]&0x3F)<<6 | rune(b[i-4]&0x3F)
		lo := rune(b[start]&0x0F)<<12 | rune(b[i-2]&0x3F)<<6 | rune(b[i-1]&0x3F)
		if hi >= 0xD800 && hi <= 0xDBFF && lo >= 0xDC00 && lo <= 0xDFFF {
			combined := 0x10000 + (hi-0xD800)<<10 + (lo - 0xDC00)
			return Char{R: combined}, 6
		}
	}
	if b[start] == 0xED && b[i-2]&0xE0 == 0xA0 {
		value := rune(b[start]&0x0F)<<12 | rune(b[i-2]&0x3F)<<6 | rune(b[i-1]&0x3F)
		return Char{Err: true, Surrogate: uint32(value)}, 3
	}
	value := rune(b[start]&0x0F)<<12 | rune(b[i-2]&0x3F)<<6 | rune(b[i-1]&0x3F)
	return Char{R: value}, 3
}

// Chars is a double-ended iterator over the decoded code points of a Str.
type Chars struct {
	b    []byte
	from int
	to   int
}

// Chars returns an iterator over s's code points, forward and backward.
func (s *Str) Chars() *Chars {
	return &Chars{b: s.Bytes(), from: 0, to: s.Len()}
}

// Next decodes the next code point from the front. ok is false once the
// iterator is exhausted.
func (it *Chars) Next() (ch Char, ok bool) {
	if it.from >= it.to {
		return Char{}, false
	}
	ch, n := decodeForward(it.b[:it.to], it.from)
	it.from += n
	return ch, true
}

// NextBack decodes the next code point from the back.
func (it *Chars) NextBack() (ch Char, ok bool) {
	if it.from >= it.to {
		return Char{}, false
	}
	ch, n := decodeBackward(it.b[it.from:it.to], it.to-it.from)
	it.to -= n
	return ch, true
}

// Remaining reports whether any bytes are left to decode.
func (it *Chars) Remaining() bool {
	return it.from < it.to
}

// NextLossy behaves like Next but substitutes U+FFFD for unpaired
// surrogates, matching iterate_lossy_forward.
func (it *Chars) NextLossy() (rune, bool) {
	ch, ok := it.Next()
	if !ok {
		return 0, false
	}
	if ch.Err {
		return '�', true
	}
	return ch.R, true
}

// NextBackLossy behaves like NextBack but substitutes U+FFFD.
func (it *Chars) NextBackLossy() (rune, bool) {
	ch, ok := it.NextBack()
	if !ok {
		return 0, false
	}
	if ch.Err {
		return '�', true
	}
	return ch.R, true
}
