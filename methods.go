// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// Method is a decoded method_info structure (JVM spec §4.6): access
// flags, name and descriptor indices, and its attribute list (where the
// Code attribute, if present, lives for any non-abstract, non-native
// method).
type Method struct {
	AccessFlags AccessFlags
	Name        Index[Utf8Tag]
	Descriptor  Index[Utf8Tag]
	attrs       *decoder
}

// Attributes returns a fresh iterator over m's attributes, in file order.
func (m Method) Attributes() *Attributes {
	return &Attributes{d: m.attrs.clone()}
}

func decodeMethod(d *decoder) (Method, error) {
	flags, err := d.readU16()
	if err != nil {
		return Method{}, err
	}
	name, err := readIndex[Utf8Tag](d)
	if err != nil {
		return Method{}, err
	}
	descriptor, err := readIndex[Utf8Tag](d)
	if err != nil {
		return Method{}, err
	}
	attrs, err := skipAttributesSection(d)
	if err != nil {
		return Method{}, err
	}
	return Method{AccessFlags: AccessFlags(flags), Name: name, Descriptor: descriptor, attrs: attrs}, nil
}

// MethodIter is a fused, cloneable iterator over a class's methods
// section.
type MethodIter struct {
	d    *decoder
	pool *ConstantPool
}

// Next decodes the next method, or reports ok=false once exhausted.
func (it *MethodIter) Next() (Method, bool) {
	if it.d.bytesRemaining() == 0 {
		return Method{}, false
	}
	m, err := decodeMethod(it.d)
	if err != nil {
		return Method{}, false
	}
	return m, true
}
