// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "math"

// CodeMaxStack is the first stage of the Code attribute writer, reached
// from AttributesWriter.Code. Grounded on spec §4.7's Code writer stage
// list: MaxStack → MaxLocals → Instructions → ExceptionTable →
// Attributes → End.
type CodeMaxStack struct {
	e    *encoder
	pool *poolWriter
}

// MaxStack records max_stack and advances to the MaxLocals stage.
func (c *CodeMaxStack) MaxStack(v uint16) *CodeMaxLocals {
	c.e.writeU16(v)
	return &CodeMaxLocals{e: c.e, pool: c.pool}
}

// CodeMaxLocals is the Code writer's second stage.
type CodeMaxLocals struct {
	e    *encoder
	pool *poolWriter
}

// MaxLocals records max_locals and advances to the Instructions stage.
func (c *CodeMaxLocals) MaxLocals(v uint16) *CodeInstructions {
	c.e.writeU16(v)
	return &CodeInstructions{e: c.e, pool: c.pool}
}

// CodeInstructions is the Code writer's bytecode-emission stage.
type CodeInstructions struct {
	e    *encoder
	pool *poolWriter
}

// Instructions reserves the code_length placeholder, runs fn against a
// fresh InstructionWriter, back-patches every label reference written
// during fn, then patches code_length and advances to ExceptionTable.
func (c *CodeInstructions) Instructions(fn func(*InstructionWriter) error) (*CodeExceptionTable, error) {
	lengthOff := c.e.position()
	c.e.writeU32(0)
	codeStart := c.e.position()

	labels := newLabelTable()
	iw := &InstructionWriter{e: c.e, labels: labels, codeStart: codeStart}
	if err := fn(iw); err != nil {
		return nil, err
	}
	if err := labels.patchAll(c.e); err != nil {
		return nil, err
	}

	length := c.e.position() - codeStart
	if length <= 0 || length > math.MaxUint32 {
		return nil, newEncodeError(TooManyBytes, lengthOff, ContextCode)
	}
	c.e.replacing(lengthOff, 4).writeU32(uint32(length))

	return &CodeExceptionTable{e: c.e, pool: c.pool, labels: labels, codeStart: codeStart}, nil
}

// InstructionWriter emits raw bytecode into a Code attribute, resolving
// branch/switch targets against Labels placed during the same
// Instructions call.
type InstructionWriter struct {
	e         *encoder
	labels    *labelTable
	codeStart int
}

// NewLabel allocates a fresh, unplaced label/ref pair.
func (w *InstructionWriter) NewLabel() (Label, LabelRef) { return w.labels.newLabel() }

// PlaceLabel marks l at the current bytecode position.
func (w *InstructionWriter) PlaceLabel(l Label) { w.labels.place(l, w.e.position()) }

// Position returns the current write offset within the code array.
func (w *InstructionWriter) Position() int { return w.e.position() - w.codeStart }

// Op emits a bare, operand-less opcode.
func (w *InstructionWriter) Op(opcode Opcode) { w.e.writeU8(uint8(opcode)) }

// OpU8 emits an opcode followed by a single unsigned byte operand (e.g.
// ret, newarray).
func (w *InstructionWriter) OpU8(opcode Opcode, operand uint8) {
	w.e.writeU8(uint8(opcode))
	w.e.writeU8(operand)
}

// OpI8 emits an opcode followed by a signed byte operand (bipush).
func (w *InstructionWriter) OpI8(opcode Opcode, operand int8) {
	w.e.writeU8(uint8(opcode))
	w.e.writeI8(operand)
}

// OpI16 emits an opcode followed by a signed 16-bit operand (sipush).
func (w *InstructionWriter) OpI16(opcode Opcode, operand int16) {
	w.e.writeU8(uint8(opcode))
	w.e.writeI16(operand)
}

// OpIndex emits an opcode followed by a u16 constant-pool index (new,
// getstatic, invokevirtual, checkcast, instanceof, …).
func (w *InstructionWriter) OpIndex(opcode Opcode, idx Index[AnyTag]) {
	w.e.writeU8(uint8(opcode))
	w.e.writeU16(uint16(idx))
}

// OpIndexWide emits invokeinterface/invokedynamic's u16 index followed by
// their extra operand bytes (count+0 or 0+0, per the JVM spec).
func (w *InstructionWriter) OpIndexWide(opcode Opcode, idx Index[AnyTag], extra uint8) {
	w.e.writeU8(uint8(opcode))
	w.e.writeU16(uint16(idx))
	w.e.writeU8(extra)
	w.e.writeU8(0)
}

// OpLdc emits ldc (1-byte index) or ldc_w (2-byte index), choosing the
// encoding by idx's magnitude as spec §4.7 describes.
func (w *InstructionWriter) OpLdc(idx Index[AnyTag]) error {
	if idx == 0 {
		return newEncodeError(IndexNotFitting, w.e.position(), ContextCode)
	}
	if idx <= 0xFF {
		w.e.writeU8(18) // ldc
		w.e.writeU8(uint8(idx))
	} else {
		w.e.writeU8(19) // ldc_w
		w.e.writeU16(uint16(idx))
	}
	return nil
}

// OpLocal emits a local-variable-indexed opcode, choosing the *_0.._3
// short forms when applicable (iload_0, astore_2, …) is left to the
// caller; this writes the general <op> <index> form (iload, astore, …).
func (w *InstructionWriter) OpLocal(opcode Opcode, index uint8) {
	w.e.writeU8(uint8(opcode))
	w.e.writeU8(index)
}

// OpIinc emits the non-wide iinc instruction.
func (w *InstructionWriter) OpIinc(index uint8, delta int8) {
	w.e.writeU8(132) // iinc
	w.e.writeU8(index)
	w.e.writeI8(delta)
}

// OpWide emits a wide-prefixed load/store/ret instruction with a u16
// local-variable index.
func (w *InstructionWriter) OpWide(opcode Opcode, index uint16) {
	w.e.writeU8(196) // wide
	w.e.writeU8(uint8(opcode))
	w.e.writeU16(index)
}

// OpWideIinc emits the wide-prefixed iinc form with a u16 index and i16
// constant.
func (w *InstructionWriter) OpWideIinc(index uint16, delta int16) {
	w.e.writeU8(196) // wide
	w.e.writeU8(132) // iinc
	w.e.writeU16(index)
	w.e.writeI16(delta)
}

// OpBranch emits a 2-byte relative branch (if*, goto, jsr), reserving the
// offset bytes for back-patching once target is placed.
func (w *InstructionWriter) OpBranch(opcode Opcode, target LabelRef) {
	opcodeOffset := w.e.position()
	w.e.writeU8(uint8(opcode))
	w.labels.reserve(target, w.e.position(), 2, opcodeOffset)
	w.e.writeU16(0)
}

// OpBranchWide emits a 4-byte relative branch (goto_w, jsr_w).
func (w *InstructionWriter) OpBranchWide(opcode Opcode, target LabelRef) {
	opcodeOffset := w.e.position()
	w.e.writeU8(uint8(opcode))
	w.labels.reserve(target, w.e.position(), 4, opcodeOffset)
	w.e.writeU32(0)
}

// LookupSwitchPair is one key/target pair of a lookupswitch instruction.
type LookupSwitchPair struct {
	Key    int32
	Target LabelRef
}

// LookupSwitch emits a lookupswitch instruction. Pairs must already be in
// strictly increasing key order, else InvalidKeyOrder.
func (w *InstructionWriter) LookupSwitch(def LabelRef, pairs []LookupSwitchPair) error {
	opcodeOffset := w.e.position()
	converted := make([]struct {
		Key    int32
		Target LabelRef
	}, len(pairs))
	for i, p := range pairs {
		converted[i] = struct {
			Key    int32
			Target LabelRef
		}{p.Key, p.Target}
	}
	return writeLookupSwitch(w.e, w.labels, opcodeOffset, def, converted)
}

// TableSwitch emits a tableswitch instruction. low must be <= high, and
// targets must hold exactly high-low+1 entries, else IncorrectBounds.
func (w *InstructionWriter) TableSwitch(def LabelRef, low, high int32, targets []LabelRef) error {
	opcodeOffset := w.e.position()
	return writeTableSwitch(w.e, w.labels, opcodeOffset, def, low, high, targets)
}

// CodeExceptionTable is the Code writer's exception-table stage.
type CodeExceptionTable struct {
	e         *encoder
	pool      *poolWriter
	labels    *labelTable
	codeStart int
}

// ExceptionTable writes the exception table, resolving every handler's
// labels to code-relative offsets, and advances to the Attributes stage.
func (c *CodeExceptionTable) ExceptionTable(fn func(*ExceptionTableWriter) error) (*CodeAttributes, error) {
	cw := beginCount16(c.e)
	w := &ExceptionTableWriter{e: c.e, pool: c.pool, labels: c.labels, codeStart: c.codeStart, count: cw}
	if err := fn(w); err != nil {
		return nil, err
	}
	return &CodeAttributes{e: c.e, pool: c.pool, labels: c.labels, codeStart: c.codeStart}, nil
}

// ExceptionTableWriter builds one exception_table entry at a time via its
// staged Handler() builder.
type ExceptionTableWriter struct {
	e         *encoder
	pool      *poolWriter
	labels    *labelTable
	codeStart int
	count     *countWriter
}

func (w *ExceptionTableWriter) relativePC(ref LabelRef) (uint16, error) {
	pos, err := w.labels.resolve(ref)
	if err != nil {
		return 0, err
	}
	rel := pos - w.codeStart
	if rel < 0 || rel > math.MaxUint16 {
		return 0, newEncodeError(NegativeOffset, w.e.position(), ContextCode)
	}
	return uint16(rel), nil
}

// Handler starts a new exception_table entry, staged Start → End →
// Handler → CatchType/CatchAll per spec §4.7.
func (w *ExceptionTableWriter) Handler() *ExcHandlerStart { return &ExcHandlerStart{w: w} }

// ExcHandlerStart is an exception handler's start_pc stage.
type ExcHandlerStart struct{ w *ExceptionTableWriter }

// Start sets start_pc from l.
func (s *ExcHandlerStart) Start(l LabelRef) (*ExcHandlerEnd, error) {
	pos, err := s.w.relativePC(l)
	if err != nil {
		return nil, err
	}
	return &ExcHandlerEnd{w: s.w, start: pos}, nil
}

// ExcHandlerEnd is an exception handler's end_pc stage.
type ExcHandlerEnd struct {
	w     *ExceptionTableWriter
	start uint16
}

// End sets end_pc from l.
func (s *ExcHandlerEnd) End(l LabelRef) (*ExcHandlerHandlerPC, error) {
	pos, err := s.w.relativePC(l)
	if err != nil {
		return nil, err
	}
	return &ExcHandlerHandlerPC{w: s.w, start: s.start, end: pos}, nil
}

// ExcHandlerHandlerPC is an exception handler's handler_pc stage.
type ExcHandlerHandlerPC struct {
	w          *ExceptionTableWriter
	start, end uint16
}

// Handler sets handler_pc from l and advances to the catch-type stage.
func (s *ExcHandlerHandlerPC) Handler(l LabelRef) (*ExcHandlerCatchType, error) {
	pos, err := s.w.relativePC(l)
	if err != nil {
		return nil, err
	}
	return &ExcHandlerCatchType{w: s.w, start: s.start, end: s.end, handler: pos}, nil
}

// ExcHandlerCatchType is an exception handler's final stage.
type ExcHandlerCatchType struct {
	w                  *ExceptionTableWriter
	start, end, handler uint16
}

// CatchType completes the entry catching exceptions assignable to
// className.
func (s *ExcHandlerCatchType) CatchType(className string) error {
	idx, err := s.w.pool.InsertClass(className)
	if err != nil {
		return err
	}
	return s.finish(uint16(idx))
}

// CatchAll completes the entry as a catch-all (catch_type=0), used by
// finally blocks.
func (s *ExcHandlerCatchType) CatchAll() error { return s.finish(0) }

func (s *ExcHandlerCatchType) finish(catchType uint16) error {
	s.w.e.writeU16(s.start)
	s.w.e.writeU16(s.end)
	s.w.e.writeU16(s.handler)
	s.w.e.writeU16(catchType)
	return s.w.count.increment()
}

// CodeAttributes is the Code writer's final, nested-attributes stage.
type CodeAttributes struct {
	e         *encoder
	pool      *poolWriter
	labels    *labelTable
	codeStart int
}

// Attributes writes the Code attribute's own nested attributes
// (LineNumberTable, LocalVariableTable, StackMapTable, …) and ends the
// Code writer.
func (c *CodeAttributes) Attributes(fn func(*AttributesWriter) error) (*CodeEnd, error) {
	cw := beginCount16(c.e)
	aw := &AttributesWriter{body: c.e, pool: c.pool, count: cw, labels: c.labels, codeStart: c.codeStart}
	if err := fn(aw); err != nil {
		return nil, err
	}
	return &CodeEnd{}, nil
}

// CodeEnd marks a fully-written Code attribute.
type CodeEnd struct{}
