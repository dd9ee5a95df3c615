package mutf8

import (
	"io"
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// decoder is a transform.Transformer that rewrites a Modified UTF-8 byte
// stream into standard UTF-8, substituting U+FFFD for unpaired surrogate
// halves. It lets callers stream a class file's constant-pool strings
// straight to a terminal or any other io.Writer expecting UTF-8 without
// buffering the whole string, the same role golang.org/x/text/encoding
// transformers play in the teacher's DecodeUTF16String helper.
type decoder struct{ transform.NopResetter }

// Transformer returns a golang.org/x/text/transform.Transformer that
// converts Modified UTF-8 to standard UTF-8.
func Transformer() transform.Transformer {
	return &decoder{}
}

func (decoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		var width int
		switch {
		case c < 0x80:
			width = 1
		case c&0xE0 == 0xC0:
			width = 2
		case c&0xF0 == 0xE0:
			width = 3
		default:
			return nDst, nSrc, transform.ErrShortSrc
		}
		// A three-byte form may be the first half of a six-byte surrogate
		// pair; decodeForward needs to see all six bytes to recognize
		// that, so wait for more input rather than deciding early.
		avail := len(src) - nSrc
		if width == 3 && avail < 6 && !atEOF {
			return nDst, nSrc, transform.ErrShortSrc
		}
		if avail < width {
			if !atEOF {
				return nDst, nSrc, transform.ErrShortSrc
			}
			width = avail
		}
		end := nSrc + width
		if width == 3 && avail >= 6 {
			end = nSrc + 6
		}
		ch, n := decodeForward(src[:end], nSrc)
		if nDst+utf8.UTFMax > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		if ch.Err {
			nDst += utf8.EncodeRune(dst[nDst:], utf8.RuneError)
		} else {
			nDst += utf8.EncodeRune(dst[nDst:], ch.R)
		}
		nSrc += n
	}
	return nDst, nSrc, nil
}

// NewReader wraps r, streaming Modified UTF-8 bytes out as standard UTF-8.
func NewReader(r io.Reader) io.Reader {
	return transform.NewReader(r, Transformer())
}
