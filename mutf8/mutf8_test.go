package mutf8

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		wantErr bool
	}{
		{"lone nul", []byte{0x00}, true},
		{"overlong nul", []byte{0xC0, 0x80}, false},
		{"ascii", []byte("Hello"), false},
		{"standard utf8 crab emoji", []byte{0x48, 0x65, 0x6C, 0x6C, 0x6F, 0x20, 0xF0, 0x9F, 0xA6, 0x80}, true},
		{"paired surrogate crab", []byte{0x48, 0x65, 0x6C, 0x6C, 0x6F, 0x20, 0xED, 0xA0, 0xBE, 0xED, 0xB6, 0x80}, false},
		{"unpaired surrogate", []byte{0xED, 0xBB, 0x8B}, false},
		{"truncated two byte", []byte{0xC2}, true},
		{"overlong two byte C1", []byte{0xC1, 0x81}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
		})
	}
}

func TestIterateForwardMixed(t *testing.T) {
	b := []byte{0x48, 0x65, 0x6C, 0x6C, 0x6F, 0x20, 0xED, 0xA0, 0xBE, 0xED, 0xB6, 0x80}
	s, err := FromBytes(b)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	want := []rune{'H', 'e', 'l', 'l', 'o', ' ', 0x1F980}
	it := s.Chars()
	for i, w := range want {
		ch, ok := it.Next()
		if !ok {
			t.Fatalf("iteration ended early at %d", i)
		}
		if ch.Err || ch.R != w {
			t.Fatalf("char %d = %+v, want %q", i, ch, w)
		}
	}
	if _, ok := it.Next(); ok {
		t.Fatalf("expected iteration to be exhausted")
	}
}

func TestUnpairedSurrogate(t *testing.T) {
	b := []byte{0xED, 0xBB, 0x8B}
	s, err := FromBytes(b)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	it := s.Chars()
	ch, ok := it.Next()
	if !ok || !ch.Err || ch.Surrogate != 0xDECB {
		t.Fatalf("got %+v, ok=%v, want Err surrogate 0xDECB", ch, ok)
	}
	if got := Display(b); got != "�" {
		t.Fatalf("Display = %q, want U+FFFD", got)
	}
}

func TestReverseMatchesForward(t *testing.T) {
	b := []byte{0x48, 0x65, 0x6C, 0x6C, 0x6F, 0x20, 0xED, 0xA0, 0xBD, 0xED, 0xB0, 0x80, 0xC0, 0x80}
	s, err := FromBytes(b)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	var forward []Char
	it := s.Chars()
	for {
		ch, ok := it.Next()
		if !ok {
			break
		}
		forward = append(forward, ch)
	}
	var backward []Char
	it = s.Chars()
	for {
		ch, ok := it.NextBack()
		if !ok {
			break
		}
		backward = append(backward, ch)
	}
	if len(forward) != len(backward) {
		t.Fatalf("length mismatch: %d vs %d", len(forward), len(backward))
	}
	for i, f := range forward {
		b := backward[len(backward)-1-i]
		if f != b {
			t.Fatalf("mismatch at %d: %+v vs %+v", i, f, b)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	codepoints := []rune{0, 1, 0x7F, 0x80, 0x7FF, 0x800, 0xFFFF, 0x10000, 0x10FFFF}
	for _, cp := range codepoints {
		var buf [6]byte
		n := EncodeRune(cp, buf[:])
		ch, consumed := decodeForward(buf[:n], 0)
		if consumed != n || ch.Err || ch.R != cp {
			t.Fatalf("round trip for %U failed: got %+v consumed %d, encoded %d bytes", cp, ch, consumed, n)
		}
	}
}

func TestDisplayRoundTripsUTF8(t *testing.T) {
	s := "Hello 🦀, \x00 world"
	mb := EncodeUTF8(s)
	if !Valid(mb) {
		t.Fatalf("EncodeUTF8 produced invalid Modified UTF-8")
	}
	if got := Display(mb); got != s {
		t.Fatalf("Display(EncodeUTF8(s)) = %q, want %q", got, s)
	}
}

func TestSliceBoundary(t *testing.T) {
	s, err := FromBytes([]byte("Hello"))
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if _, err := s.Slice(0, 3); err != nil {
		t.Fatalf("Slice(0,3): %v", err)
	}
	mb := []byte{0xC2, 0x80, 0x41}
	s2, err := FromBytes(mb)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if _, err := s2.Slice(1, 3); err == nil {
		t.Fatalf("expected error slicing into a continuation byte")
	}
}
