// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "math"

// AttributesWriter accumulates a Many<Attribute> section: each
// content-setter emits the name index, a length placeholder, the
// payload, and back-patches the length, then increments the outer count.
// Grounded on spec §4.7/§4.8's attribute-writer stage description.
//
// labels/codeStart are only set when this writer builds a Code
// attribute's nested attributes (LineNumberTable, LocalVariableTable,
// StackMapTable); they are nil/zero for class-, field-, and
// method-level attribute lists, which never reference bytecode offsets.
type AttributesWriter struct {
	body      *encoder
	pool      *poolWriter
	count     *countWriter
	labels    *labelTable
	codeStart int
}

func (w *AttributesWriter) writeAttr(name string, payload func(*encoder) error) error {
	nameIdx, err := w.pool.InsertString(name)
	if err != nil {
		return err
	}
	w.body.writeU16(uint16(nameIdx))
	lw := beginLength(w.body)
	if err := payload(w.body); err != nil {
		return err
	}
	if err := lw.finish(); err != nil {
		return err
	}
	return w.count.increment()
}

func (w *AttributesWriter) relativePC(ref LabelRef) (uint16, error) {
	pos, err := w.labels.resolve(ref)
	if err != nil {
		return 0, err
	}
	rel := pos - w.codeStart
	if rel < 0 || rel > math.MaxUint16 {
		return 0, newEncodeError(NegativeOffset, w.body.position(), ContextCode)
	}
	return uint16(rel), nil
}

// SourceFile writes a SourceFile attribute.
func (w *AttributesWriter) SourceFile(name string) error {
	return w.writeAttr("SourceFile", func(e *encoder) error {
		idx, err := w.pool.InsertString(name)
		if err != nil {
			return err
		}
		e.writeU16(uint16(idx))
		return nil
	})
}

// ConstantValue writes a field's ConstantValue attribute, referencing an
// already-inserted Integer/Long/Float/Double/String pool entry.
func (w *AttributesWriter) ConstantValue(idx Index[AnyTag]) error {
	return w.writeAttr("ConstantValue", func(e *encoder) error {
		e.writeU16(uint16(idx))
		return nil
	})
}

// Deprecated writes a zero-length Deprecated marker attribute.
func (w *AttributesWriter) Deprecated() error {
	return w.writeAttr("Deprecated", func(e *encoder) error { return nil })
}

// Synthetic writes a zero-length Synthetic marker attribute.
func (w *AttributesWriter) Synthetic() error {
	return w.writeAttr("Synthetic", func(e *encoder) error { return nil })
}

// Signature writes a generic-signature attribute.
func (w *AttributesWriter) Signature(signature string) error {
	return w.writeAttr("Signature", func(e *encoder) error {
		idx, err := w.pool.InsertString(signature)
		if err != nil {
			return err
		}
		e.writeU16(uint16(idx))
		return nil
	})
}

// Exceptions writes a method's Exceptions attribute (the throws clause).
func (w *AttributesWriter) Exceptions(classNames []string) error {
	return w.writeAttr("Exceptions", func(e *encoder) error {
		cw := beginCount16(e)
		for _, name := range classNames {
			idx, err := w.pool.InsertClass(name)
			if err != nil {
				return err
			}
			e.writeU16(uint16(idx))
			if err := cw.increment(); err != nil {
				return err
			}
		}
		return nil
	})
}

// InnerClassWrite is one InnerClasses entry as seen by the writer: Outer
// and Name are empty strings when absent (top-level outer class / local
// or anonymous inner class), mirroring the zero-means-absent convention
// the read side uses for the raw indices.
type InnerClassWrite struct {
	Inner, Outer, Name string
	Flags              AccessFlags
}

// InnerClasses writes an InnerClasses attribute.
func (w *AttributesWriter) InnerClasses(entries []InnerClassWrite) error {
	return w.writeAttr("InnerClasses", func(e *encoder) error {
		cw := beginCount16(e)
		for _, entry := range entries {
			innerIdx, err := w.pool.InsertClass(entry.Inner)
			if err != nil {
				return err
			}
			var outerIdx Index[ClassItemTag]
			if entry.Outer != "" {
				outerIdx, err = w.pool.InsertClass(entry.Outer)
				if err != nil {
					return err
				}
			}
			var nameIdx Index[Utf8Tag]
			if entry.Name != "" {
				nameIdx, err = w.pool.InsertString(entry.Name)
				if err != nil {
					return err
				}
			}
			e.writeU16(uint16(innerIdx))
			e.writeU16(uint16(outerIdx))
			e.writeU16(uint16(nameIdx))
			e.writeU16(uint16(entry.Flags))
			if err := cw.increment(); err != nil {
				return err
			}
		}
		return nil
	})
}

// EnclosingMethod writes an EnclosingMethod attribute. Pass an empty
// methodName/methodDescriptor pair when the class is not immediately
// enclosed by a method.
func (w *AttributesWriter) EnclosingMethod(className, methodName, methodDescriptor string) error {
	return w.writeAttr("EnclosingMethod", func(e *encoder) error {
		classIdx, err := w.pool.InsertClass(className)
		if err != nil {
			return err
		}
		var ntIdx Index[NameAndTypeTag]
		if methodName != "" {
			ntIdx, err = w.pool.InsertNameAndType(methodName, methodDescriptor)
			if err != nil {
				return err
			}
		}
		e.writeU16(uint16(classIdx))
		e.writeU16(uint16(ntIdx))
		return nil
	})
}

// NestHost writes a NestHost attribute.
func (w *AttributesWriter) NestHost(hostClassName string) error {
	return w.writeAttr("NestHost", func(e *encoder) error {
		idx, err := w.pool.InsertClass(hostClassName)
		if err != nil {
			return err
		}
		e.writeU16(uint16(idx))
		return nil
	})
}

// NestMembers writes a NestMembers attribute.
func (w *AttributesWriter) NestMembers(memberClassNames []string) error {
	return w.writeAttr("NestMembers", func(e *encoder) error {
		cw := beginCount16(e)
		for _, name := range memberClassNames {
			idx, err := w.pool.InsertClass(name)
			if err != nil {
				return err
			}
			e.writeU16(uint16(idx))
			if err := cw.increment(); err != nil {
				return err
			}
		}
		return nil
	})
}

// LineNumberWrite maps a bytecode label to a source line number.
type LineNumberWrite struct {
	At   LabelRef
	Line uint16
}

// LineNumberTable writes a Code attribute's LineNumberTable. Only valid
// when building a Code attribute's nested attributes.
func (w *AttributesWriter) LineNumberTable(entries []LineNumberWrite) error {
	return w.writeAttr("LineNumberTable", func(e *encoder) error {
		cw := beginCount16(e)
		for _, entry := range entries {
			pc, err := w.relativePC(entry.At)
			if err != nil {
				return err
			}
			e.writeU16(pc)
			e.writeU16(entry.Line)
			if err := cw.increment(); err != nil {
				return err
			}
		}
		return nil
	})
}

// LocalVariableWrite describes one local variable's live range, bounded
// by two bytecode labels.
type LocalVariableWrite struct {
	Start, End       LabelRef
	Name, Descriptor string
	Index            uint16
}

// LocalVariableTable writes a Code attribute's LocalVariableTable.
func (w *AttributesWriter) LocalVariableTable(entries []LocalVariableWrite) error {
	return w.writeAttr("LocalVariableTable", func(e *encoder) error {
		cw := beginCount16(e)
		for _, entry := range entries {
			if err := writeLocalVariableEntry(w, e, entry); err != nil {
				return err
			}
			if err := cw.increment(); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeLocalVariableEntry(w *AttributesWriter, e *encoder, entry LocalVariableWrite) error {
	start, err := w.relativePC(entry.Start)
	if err != nil {
		return err
	}
	end, err := w.relativePC(entry.End)
	if err != nil {
		return err
	}
	nameIdx, err := w.pool.InsertString(entry.Name)
	if err != nil {
		return err
	}
	descIdx, err := w.pool.InsertString(entry.Descriptor)
	if err != nil {
		return err
	}
	e.writeU16(start)
	e.writeU16(end - start)
	e.writeU16(uint16(nameIdx))
	e.writeU16(uint16(descIdx))
	e.writeU16(entry.Index)
	return nil
}

// LocalVariableTypeWrite is LocalVariableWrite's generic-signature
// sibling.
type LocalVariableTypeWrite struct {
	Start, End LabelRef
	Name       string
	Signature  string
	Index      uint16
}

// LocalVariableTypeTable writes a Code attribute's
// LocalVariableTypeTable.
func (w *AttributesWriter) LocalVariableTypeTable(entries []LocalVariableTypeWrite) error {
	return w.writeAttr("LocalVariableTypeTable", func(e *encoder) error {
		cw := beginCount16(e)
		for _, entry := range entries {
			start, err := w.relativePC(entry.Start)
			if err != nil {
				return err
			}
			end, err := w.relativePC(entry.End)
			if err != nil {
				return err
			}
			nameIdx, err := w.pool.InsertString(entry.Name)
			if err != nil {
				return err
			}
			sigIdx, err := w.pool.InsertString(entry.Signature)
			if err != nil {
				return err
			}
			e.writeU16(start)
			e.writeU16(end - start)
			e.writeU16(uint16(nameIdx))
			e.writeU16(uint16(sigIdx))
			e.writeU16(entry.Index)
			if err := cw.increment(); err != nil {
				return err
			}
		}
		return nil
	})
}

// StackMapFrameWrite is one StackMapTable entry as seen by the writer:
// AtLabel names the frame's bytecode position directly (rather than a
// pre-computed offset_delta), since the cumulative-offset arithmetic
// (spec §4.6) is the writer's job, not the caller's.
type StackMapFrameWrite struct {
	Kind      StackMapFrameKind
	AtLabel   LabelRef
	ChopCount uint8
	Stack     []VerificationType
	Locals    []VerificationType
}

// StackMapTable writes a Code attribute's StackMapTable, converting each
// frame's code-relative label position into the on-disk cumulative
// offset_delta encoding.
func (w *AttributesWriter) StackMapTable(frames []StackMapFrameWrite) error {
	return w.writeAttr("StackMapTable", func(e *encoder) error {
		cw := beginCount16(e)
		prevAbs := -1
		for _, f := range frames {
			rel, err := w.relativePC(f.AtLabel)
			if err != nil {
				return err
			}
			abs := int(rel)
			var delta int
			if prevAbs < 0 {
				delta = abs
			} else {
				delta = abs - prevAbs - 1
			}
			if delta < 0 {
				return newEncodeError(NegativeOffset, e.position(), ContextCode)
			}
			if err := writeStackMapFrame(e, f, uint16(delta)); err != nil {
				return err
			}
			prevAbs = abs
			if err := cw.increment(); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeVerificationType(e *encoder, vt VerificationType) {
	e.writeU8(uint8(vt.Kind))
	switch vt.Kind {
	case VerificationObject:
		e.writeU16(uint16(vt.Class))
	case VerificationUninitialized:
		e.writeU16(vt.Offset)
	}
}

func writeStackMapFrame(e *encoder, f StackMapFrameWrite, delta uint16) error {
	switch f.Kind {
	case FrameSame:
		if delta > 63 {
			return newEncodeError(IncorrectBounds, e.position(), ContextCode)
		}
		e.writeU8(uint8(delta))
	case FrameSameLocals1StackItem:
		if delta > 63 || len(f.Stack) != 1 {
			return newEncodeError(IncorrectBounds, e.position(), ContextCode)
		}
		e.writeU8(uint8(64 + delta))
		writeVerificationType(e, f.Stack[0])
	case FrameSameLocals1StackItemExtended:
		if len(f.Stack) != 1 {
			return newEncodeError(IncorrectBounds, e.position(), ContextCode)
		}
		e.writeU8(247)
		e.writeU16(delta)
		writeVerificationType(e, f.Stack[0])
	case FrameChop:
		if f.ChopCount < 1 || f.ChopCount > 3 {
			return newEncodeError(IncorrectBounds, e.position(), ContextCode)
		}
		e.writeU8(251 - f.ChopCount)
		e.writeU16(delta)
	case FrameSameExtended:
		e.writeU8(251)
		e.writeU16(delta)
	case FrameAppend:
		if len(f.Locals) < 1 || len(f.Locals) > 3 {
			return newEncodeError(IncorrectBounds, e.position(), ContextCode)
		}
		e.writeU8(251 + uint8(len(f.Locals)))
		e.writeU16(delta)
		for _, local := range f.Locals {
			writeVerificationType(e, local)
		}
	case FrameFull:
		e.writeU8(255)
		e.writeU16(delta)
		e.writeU16(uint16(len(f.Locals)))
		for _, local := range f.Locals {
			writeVerificationType(e, local)
		}
		e.writeU16(uint16(len(f.Stack)))
		for _, item := range f.Stack {
			writeVerificationType(e, item)
		}
	}
	return nil
}

// RawAttribute writes an attribute by name with an already-encoded
// payload, covering any attribute shape this writer has no dedicated
// method for.
func (w *AttributesWriter) RawAttribute(name string, payload []byte) error {
	return w.writeAttr(name, func(e *encoder) error {
		e.writeBytes(payload)
		return nil
	})
}

// Code writes a Code attribute, driving fn through the nested Code
// writer's MaxStack → MaxLocals → Instructions → ExceptionTable →
// Attributes stages.
func (w *AttributesWriter) Code(fn func(*CodeMaxStack) (*CodeEnd, error)) error {
	return w.writeAttr("Code", func(e *encoder) error {
		_, err := fn(&CodeMaxStack{e: e, pool: w.pool})
		return err
	})
}
