// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// ExceptionHandler is one entry of a Code attribute's exception table.
// CatchType zero means "catch all" (used for finally blocks). Grounded on
// spec.md §4.6; the Rust source's ExceptionHandler::decode is a stub that
// always errors and is not used as a model — this shape is the plain
// 8-byte layout from the JVM spec.
type ExceptionHandler struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType Index[ClassItemTag] // zero means catch-all
}

func decodeExceptionTable(d *decoder) ([]ExceptionHandler, error) {
	count, err := d.readU16()
	if err != nil {
		return nil, err
	}
	out := make([]ExceptionHandler, 0, count)
	for i := uint16(0); i < count; i++ {
		startPC, err := d.readU16()
		if err != nil {
			return nil, err
		}
		endPC, err := d.readU16()
		if err != nil {
			return nil, err
		}
		handlerPC, err := d.readU16()
		if err != nil {
			return nil, err
		}
		catchType, err := readIndex[ClassItemTag](d)
		if err != nil {
			return nil, err
		}
		out = append(out, ExceptionHandler{StartPC: startPC, EndPC: endPC, HandlerPC: handlerPC, CatchType: catchType})
	}
	return out, nil
}

// Code is the decoded Code attribute (JVM spec §4.7.3): the instruction
// stream as a borrowed sub-slice together with its absolute start offset
// (needed to compute per-instruction bytecode indices), the exception
// table, and nested attributes (LineNumberTable, LocalVariableTable,
// StackMapTable, …).
type Code struct {
	MaxStack       uint16
	MaxLocals      uint16
	CodeStart      int
	Instructions   []byte
	ExceptionTable []ExceptionHandler
	Attributes     []Attribute
}

// Iter returns a fresh iterator decoding each instruction of c in order,
// yielding code-relative offsets (0 at the first instruction).
func (c Code) Iter() *Instructions {
	return NewInstructions(c.Instructions)
}

func decodeCode(d *decoder) (Code, error) {
	maxStack, err := d.readU16()
	if err != nil {
		return Code{}, err
	}
	maxLocals, err := d.readU16()
	if err != nil {
		return Code{}, err
	}
	codeLength, err := d.readU32()
	if err != nil {
		return Code{}, err
	}
	codeStart := d.filePosition()
	insns, err := d.readBytes(int(codeLength))
	if err != nil {
		return Code{}, err
	}
	exceptionTable, err := decodeExceptionTable(d)
	if err != nil {
		return Code{}, err
	}
	attrs, err := decodeAttributeList(d)
	if err != nil {
		return Code{}, err
	}
	return Code{
		MaxStack:       maxStack,
		MaxLocals:      maxLocals,
		CodeStart:      codeStart,
		Instructions:   insns,
		ExceptionTable: exceptionTable,
		Attributes:     attrs,
	}, nil
}

// decodeAttributeList eagerly decodes every attribute in an attribute
// list, used by the Code attribute, which holds onto its whole nested
// list rather than a lazy cursor.
func decodeAttributeList(d *decoder) ([]Attribute, error) {
	count, err := d.readU16()
	if err != nil {
		return nil, err
	}
	out := make([]Attribute, 0, count)
	for i := uint16(0); i < count; i++ {
		attr, err := decodeAttribute(d)
		if err != nil {
			return nil, err
		}
		out = append(out, attr)
	}
	return out, nil
}
