package mutf8

// FuzzMutf8 exercises Validate, forward/reverse iteration symmetry and
// Display's lossy substitution over arbitrary bytes. Mirrors
// original_source/fuzz/fuzz_targets/mutf8.rs; out of scope for
// correctness guarantees per SPEC_FULL.md C12.
func FuzzMutf8(data []byte) int {
	if err := Validate(data); err != nil {
		return 0
	}
	s := FromBytesUnchecked(data)

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
		panic("mutf8: forward/reverse iteration length mismatch")
	}
	for i, ch := range forward {
		other := backward[len(backward)-1-i]
		if ch != other {
			panic("mutf8: forward/reverse iteration disagree")
		}
	}

	_ = Display(data)
	return 1
}
