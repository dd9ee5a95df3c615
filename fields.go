// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// Field is a decoded field_info structure (JVM spec §4.5): access flags,
// name and descriptor indices, and its attribute list.
type Field struct {
	AccessFlags AccessFlags
	Name        Index[Utf8Tag]
	Descriptor  Index[Utf8Tag]
	attrs       *decoder
}

// Attributes returns a fresh iterator over f's attributes, in file order.
func (f Field) Attributes() *Attributes {
	return &Attributes{d: f.attrs.clone()}
}

func decodeField(d *decoder) (Field, error) {
	flags, err := d.readU16()
	if err != nil {
		return Field{}, err
	}
	name, err := readIndex[Utf8Tag](d)
	if err != nil {
		return Field{}, err
	}
	descriptor, err := readIndex[Utf8Tag](d)
	if err != nil {
		return Field{}, err
	}
	attrs, err := skipAttributesSection(d)
	if err != nil {
		return Field{}, err
	}
	return Field{AccessFlags: AccessFlags(flags), Name: name, Descriptor: descriptor, attrs: attrs}, nil
}

// FieldIter is a fused, cloneable iterator over a class's fields section.
type FieldIter struct {
	d    *decoder
	pool *ConstantPool
}

// Next decodes the next field, or reports ok=false once exhausted.
func (it *FieldIter) Next() (Field, bool) {
	if it.d.bytesRemaining() == 0 {
		return Field{}, false
	}
	f, err := decodeField(it.d)
	if err != nil {
		return Field{}, false
	}
	return f, true
}
