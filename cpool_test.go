// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "testing"

// newTestPoolWriter builds a bare poolWriter over a fresh encoder with its
// count placeholder already reserved, mirroring what BuilderVersion.Version
// does before handing a poolWriter to the rest of the builder chain.
func newTestPoolWriter() *poolWriter {
	e := newEncoder()
	countOff := e.position()
	e.writeU16(0)
	return newPoolWriter(e, countOff)
}

func TestPoolWriterDedupUtf8AndClass(t *testing.T) {
	pw := newTestPoolWriter()

	utf8Idx, err := pw.InsertString("X")
	if err != nil {
		t.Fatalf("InsertString: %v", err)
	}

	classIdx, err := pw.InsertClass("X")
	if err != nil {
		t.Fatalf("InsertClass: %v", err)
	}
	if uint16(classIdx) == uint16(utf8Idx) {
		t.Fatalf("Class index %d collided with Utf8 index %d", classIdx, utf8Idx)
	}

	// Re-inserting the same Utf8 must reuse its original index rather than
	// appending a duplicate entry.
	utf8Again, err := pw.InsertString("X")
	if err != nil {
		t.Fatalf("InsertString (again): %v", err)
	}
	if utf8Again != utf8Idx {
		t.Fatalf("InsertString(\"X\") again = %d, want %d", utf8Again, utf8Idx)
	}

	classAgain, err := pw.InsertClass("X")
	if err != nil {
		t.Fatalf("InsertClass (again): %v", err)
	}
	if classAgain != classIdx {
		t.Fatalf("InsertClass(\"X\") again = %d, want %d", classAgain, classIdx)
	}

	// Only two entries were ever appended: the Utf8 and the Class.
	if pw.nextIndex != 3 {
		t.Fatalf("nextIndex = %d, want 3 (one Utf8 + one Class)", pw.nextIndex)
	}
}

func TestPoolWriterLongConsumesTwoSlots(t *testing.T) {
	pw := newTestPoolWriter()

	idx1, err := pw.InsertLong(1)
	if err != nil {
		t.Fatalf("InsertLong(1): %v", err)
	}
	if idx1 != 1 {
		t.Fatalf("InsertLong(1) index = %d, want 1", idx1)
	}

	idx2, err := pw.InsertLong(2)
	if err != nil {
		t.Fatalf("InsertLong(2): %v", err)
	}
	if idx2 != 3 {
		t.Fatalf("InsertLong(2) index = %d, want 3 (index 2 reserved as Long(1)'s wide slot)", idx2)
	}

	if pw.nextIndex != 5 {
		t.Fatalf("pool count at finish = %d, want 5", pw.nextIndex)
	}
}

func TestPoolWriterFloatNaNDedup(t *testing.T) {
	pw := newTestPoolWriter()

	nan1 := float32(nan32())
	nan2 := float32(nan32())

	idx1, err := pw.InsertFloat(nan1)
	if err != nil {
		t.Fatalf("InsertFloat(nan1): %v", err)
	}
	idx2, err := pw.InsertFloat(nan2)
	if err != nil {
		t.Fatalf("InsertFloat(nan2): %v", err)
	}
	if idx1 != idx2 {
		t.Fatalf("two NaNs with identical bit patterns got different indices: %d vs %d", idx1, idx2)
	}
}

func nan32() float32 {
	var f float32
	f = f / f
	return f
}
