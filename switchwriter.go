// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// padSwitch writes the 0..=3 zero bytes needed so the next write lands on
// a 4-byte-aligned offset within the code array, measured from the byte
// immediately after the switch opcode (spec §4.7).
func padSwitch(code *encoder, opcodeOffset int) {
	pad := (4 - (code.position()-opcodeOffset)%4) % 4
	for i := 0; i < pad; i++ {
		code.writeU8(0)
	}
}

// writeLookupSwitch emits a lookupswitch instruction: opcode, padding,
// default label, pair count, then each (key, label) pair in strictly
// increasing key order. Branch targets are written relative to
// opcodeOffset, back-patched once every label in the Code is placed.
func writeLookupSwitch(code *encoder, labels *labelTable, opcodeOffset int, def LabelRef, pairs []struct {
	Key    int32
	Target LabelRef
}) error {
	for i := 1; i < len(pairs); i++ {
		if pairs[i].Key <= pairs[i-1].Key {
			return newEncodeError(InvalidKeyOrder, code.position(), ContextCode)
		}
	}

	code.writeU8(171) // lookupswitch
	padSwitch(code, opcodeOffset)

	labels.reserve(def, code.position(), 4, opcodeOffset)
	code.writeU32(0)

	code.writeU32(uint32(len(pairs)))
	for _, pair := range pairs {
		code.writeI32(pair.Key)
		labels.reserve(pair.Target, code.position(), 4, opcodeOffset)
		code.writeU32(0)
	}
	return nil
}

// writeTableSwitch emits a tableswitch instruction: opcode, padding,
// default label, low, high, then exactly high-low+1 labels in order.
func writeTableSwitch(code *encoder, labels *labelTable, opcodeOffset int, def LabelRef, low, high int32, targets []LabelRef) error {
	if low > high {
		return newEncodeError(IncorrectBounds, code.position(), ContextCode)
	}
	if int64(high)-int64(low)+1 != int64(len(targets)) {
		return newEncodeError(IncorrectBounds, code.position(), ContextCode)
	}

	code.writeU8(170) // tableswitch
	padSwitch(code, opcodeOffset)

	labels.reserve(def, code.position(), 4, opcodeOffset)
	code.writeU32(0)

	code.writeI32(low)
	code.writeI32(high)
	for _, target := range targets {
		labels.reserve(target, code.position(), 4, opcodeOffset)
		code.writeU32(0)
	}
	return nil
}
