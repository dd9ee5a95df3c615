// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "testing"

// TestStackMapFrameCumulativeOffsetRoundTrip writes three frames directly
// through writeStackMapFrame, supplying each one's already-computed
// cumulative offset_delta (the same arithmetic AttributesWriter.StackMapTable
// performs against resolved label positions), then verifies
// decodeStackMapTable recovers the original absolute bytecode offsets.
func TestStackMapFrameCumulativeOffsetRoundTrip(t *testing.T) {
	e := newEncoder()
	cw := beginCount16(e)

	write := func(f StackMapFrameWrite, delta uint16) {
		if err := writeStackMapFrame(e, f, delta); err != nil {
			t.Fatalf("writeStackMapFrame(%+v): %v", f, err)
		}
		if err := cw.increment(); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}

	// Frame 1: FrameSame at absolute offset 10 -> first frame's delta is its
	// raw absolute offset.
	write(StackMapFrameWrite{Kind: FrameSame}, 10)

	// Frame 2: FrameChop(1) at absolute offset 20 -> delta = 20 - 10 - 1 = 9.
	write(StackMapFrameWrite{Kind: FrameChop, ChopCount: 1}, 9)

	// Frame 3: FrameFull at absolute offset 25 with one local ->
	// delta = 25 - 20 - 1 = 4.
	write(StackMapFrameWrite{
		Kind:   FrameFull,
		Locals: []VerificationType{{Kind: VerificationInteger}},
	}, 4)

	d := newDecoder(e.buf, ContextCode)
	frames, err := decodeStackMapTable(d)
	if err != nil {
		t.Fatalf("decodeStackMapTable: %v", err)
	}
	if len(frames) != 3 {
		t.Fatalf("frames = %+v, want 3 entries", frames)
	}

	wantOffsets := []int{10, 20, 25}
	for i, want := range wantOffsets {
		if frames[i].Offset != want {
			t.Errorf("frames[%d].Offset = %d, want %d", i, frames[i].Offset, want)
		}
	}
	if frames[1].Kind != FrameChop || frames[1].ChopCount != 1 {
		t.Errorf("frames[1] = %+v, want FrameChop(1)", frames[1])
	}
	if frames[2].Kind != FrameFull || len(frames[2].Locals) != 1 || frames[2].Locals[0].Kind != VerificationInteger {
		t.Errorf("frames[2] = %+v, want FrameFull with one Integer local", frames[2])
	}
}

func TestStackMapFrameSameBoundaryRejected(t *testing.T) {
	e := newEncoder()
	// FrameSame only covers delta 0..63; 64 must be rejected as
	// IncorrectBounds rather than silently wrapping into the next frame
	// kind's byte range.
	err := writeStackMapFrame(e, StackMapFrameWrite{Kind: FrameSame}, 64)
	if err == nil {
		t.Fatalf("expected IncorrectBounds for delta=64 on a FrameSame")
	}
	if ee, ok := err.(*EncodeError); !ok || ee.Kind != IncorrectBounds {
		t.Fatalf("error = %v, want IncorrectBounds", err)
	}
}
