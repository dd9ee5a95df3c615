// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// Field and method_info share the exact same on-disk shape (access
// flags, name index, descriptor index, attributes), so FieldsWriter and
// MethodsWriter both hand out this one staged builder, grounded on spec
// §4.7's "Field: AccessFlags → Name → Descriptor → Attributes → End.
// Method: same."

// MemberAccessFlags is a field/method's access_flags stage.
type MemberAccessFlags struct {
	body  *encoder
	pool  *poolWriter
	count *countWriter
}

// AccessFlags records the member's access_flags and advances to Name.
func (m *MemberAccessFlags) AccessFlags(flags AccessFlags) *MemberName {
	m.body.writeU16(uint16(flags))
	return &MemberName{body: m.body, pool: m.pool, count: m.count}
}

// MemberName is a field/method's name stage.
type MemberName struct {
	body  *encoder
	pool  *poolWriter
	count *countWriter
}

// Name inserts and records the member's name, advancing to Descriptor.
func (m *MemberName) Name(name string) (*MemberDescriptor, error) {
	idx, err := m.pool.InsertString(name)
	if err != nil {
		return nil, err
	}
	m.body.writeU16(uint16(idx))
	return &MemberDescriptor{body: m.body, pool: m.pool, count: m.count}, nil
}

// MemberDescriptor is a field/method's descriptor stage.
type MemberDescriptor struct {
	body  *encoder
	pool  *poolWriter
	count *countWriter
}

// Descriptor inserts and records the member's field/method descriptor,
// advancing to Attributes.
func (m *MemberDescriptor) Descriptor(descriptor string) (*MemberAttributes, error) {
	idx, err := m.pool.InsertString(descriptor)
	if err != nil {
		return nil, err
	}
	m.body.writeU16(uint16(idx))
	return &MemberAttributes{body: m.body, pool: m.pool, count: m.count}, nil
}

// MemberAttributes is a field/method's final, attribute-list stage.
type MemberAttributes struct {
	body  *encoder
	pool  *poolWriter
	count *countWriter
}

// Attributes writes the member's attribute list and reports the member
// as finished to its enclosing Many<Field|Method> counter.
func (m *MemberAttributes) Attributes(fn func(*AttributesWriter) error) error {
	cw := beginCount16(m.body)
	w := &AttributesWriter{body: m.body, pool: m.pool, count: cw}
	if err := fn(w); err != nil {
		return err
	}
	return m.count.increment()
}
