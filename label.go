// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// Label names a bytecode position inside a Code writer, placed exactly
// once via InstructionWriter.PlaceLabel. LabelRef is the corresponding
// reference-side handle, written wherever a jump target, exception
// range, line number, or local-variable range needs to point at that
// position. Grounded on spec §4.7's label/back-patch description.
type Label struct{ id int }

// LabelRef is the read side of a Label pair; it is only resolvable once
// its Label has been placed.
type LabelRef struct{ id int }

// labelPatch records a reserved, not-yet-resolved reference in the
// bytecode buffer.
type labelPatch struct {
	target LabelRef
	offset int // byte offset of the placeholder within the code buffer
	width  int // 2 or 4
	from   int // offset the target is relative to; -1 means absolute
}

// labelTable tracks every label allocated by an InstructionWriter and every
// reference that still needs back-patching once all labels are placed.
type labelTable struct {
	positions []int // encoder write position of label i, or -1 if unplaced
	patches   []labelPatch
}

func newLabelTable() *labelTable {
	return &labelTable{}
}

// newLabel allocates a fresh, unplaced label/ref pair.
func (t *labelTable) newLabel() (Label, LabelRef) {
	id := len(t.positions)
	t.positions = append(t.positions, -1)
	return Label{id: id}, LabelRef{id: id}
}

// place records l's bytecode offset. Placing the same label twice moves
// it to the new offset; the writer never needs that, but it keeps the
// operation total rather than leaving undefined behavior.
func (t *labelTable) place(l Label, offset int) {
	t.positions[l.id] = offset
}

// reserve records a pending patch at offset for width bytes, relative to
// from (or absolute, when from is -1).
func (t *labelTable) reserve(target LabelRef, offset, width, from int) {
	t.patches = append(t.patches, labelPatch{target: target, offset: offset, width: width, from: from})
}

// resolve looks up ref's placed bytecode offset.
func (t *labelTable) resolve(ref LabelRef) (int, error) {
	pos := t.positions[ref.id]
	if pos < 0 {
		return 0, newEncodeError(LabelNotPlaced, 0, ContextCode)
	}
	return pos, nil
}

// patchAll back-patches every reserved reference into code, failing the
// first one that does not fit its declared width.
func (t *labelTable) patchAll(code *encoder) error {
	for _, p := range t.patches {
		pos, err := t.resolve(p.target)
		if err != nil {
			return err
		}
		value := pos
		if p.from >= 0 {
			value = pos - p.from
		}
		switch p.width {
		case 2:
			if value < -32768 || value > 32767 {
				return newEncodeError(LabelTooFar, p.offset, ContextCode)
			}
			code.replacing(p.offset, 2).writeU16(uint16(int16(value)))
		case 4:
			if value < -2147483648 || value > 2147483647 {
				return newEncodeError(LabelTooFar, p.offset, ContextCode)
			}
			code.replacing(p.offset, 4).writeU32(uint32(int32(value)))
		}
	}
	return nil
}
