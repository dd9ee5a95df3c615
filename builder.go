// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "io"

// ClassBuilder assembles a class file through a strictly ordered chain
// of stages, each exposing only the operations valid at that point:
// Start → Version → AccessFlags → ThisClass → SuperClass → Interfaces →
// Fields → Methods → Attributes → End. Go has no phantom types, so each
// stage is a distinct wrapper struct whose method consumes the receiver
// and returns the next stage, making an out-of-order call a compile
// error rather than a runtime one. Grounded on spec §4.7.
//
// Two buffers back the builder: header holds magic/version/constant
// pool, so the pool can keep growing (new Utf8/Class entries from
// field/method names, descriptors, and attribute content) while body
// accumulates access_flags onward; they are concatenated at End.
type ClassBuilder struct{}

// NewClassBuilder starts building a class file, returning the Version
// stage.
func NewClassBuilder() *BuilderVersion {
	header := newEncoder()
	header.writeU32(0xCAFEBABE)
	return &BuilderVersion{header: header, body: newEncoder()}
}

// BuilderVersion is the builder's version stage.
type BuilderVersion struct {
	header *encoder
	body   *encoder
}

// Version records the class file's major/minor version and opens the
// constant pool's count placeholder.
func (b *BuilderVersion) Version(v Version) *BuilderAccessFlags {
	b.header.writeU16(v.Minor)
	b.header.writeU16(v.Major)
	countOff := b.header.position()
	b.header.writeU16(0)
	pool := newPoolWriter(b.header, countOff)
	return &BuilderAccessFlags{header: b.header, body: b.body, pool: pool}
}

// BuilderAccessFlags is the builder's access_flags stage.
type BuilderAccessFlags struct {
	header *encoder
	body   *encoder
	pool   *poolWriter
}

// AccessFlags records the class's access_flags and advances to
// ThisClass.
func (b *BuilderAccessFlags) AccessFlags(flags AccessFlags) *BuilderThisClass {
	b.body.writeU16(uint16(flags))
	return &BuilderThisClass{header: b.header, body: b.body, pool: b.pool}
}

// BuilderThisClass is the builder's this_class stage.
type BuilderThisClass struct {
	header *encoder
	body   *encoder
	pool   *poolWriter
}

// ThisClass inserts and records the class's own name, advancing to
// SuperClass.
func (b *BuilderThisClass) ThisClass(name string) (*BuilderSuperClass, error) {
	idx, err := b.pool.InsertClass(name)
	if err != nil {
		return nil, err
	}
	b.body.writeU16(uint16(idx))
	return &BuilderSuperClass{header: b.header, body: b.body, pool: b.pool}, nil
}

// BuilderSuperClass is the builder's super_class stage.
type BuilderSuperClass struct {
	header *encoder
	body   *encoder
	pool   *poolWriter
}

// SuperClass inserts and records the superclass's name, advancing to
// Interfaces.
func (b *BuilderSuperClass) SuperClass(name string) (*BuilderInterfaces, error) {
	idx, err := b.pool.InsertClass(name)
	if err != nil {
		return nil, err
	}
	b.body.writeU16(uint16(idx))
	return &BuilderInterfaces{header: b.header, body: b.body, pool: b.pool}, nil
}

// NoSuperClass records an absent superclass (only valid for
// java/lang/Object itself), advancing to Interfaces.
func (b *BuilderSuperClass) NoSuperClass() *BuilderInterfaces {
	b.body.writeU16(0)
	return &BuilderInterfaces{header: b.header, body: b.body, pool: b.pool}
}

// BuilderInterfaces is the builder's interfaces stage.
type BuilderInterfaces struct {
	header *encoder
	body   *encoder
	pool   *poolWriter
}

// InterfaceWriter appends one interface name at a time.
type InterfaceWriter struct {
	body  *encoder
	pool  *poolWriter
	count *countWriter
}

// Interface inserts and appends one directly-implemented interface.
func (w *InterfaceWriter) Interface(name string) error {
	idx, err := w.pool.InsertClass(name)
	if err != nil {
		return err
	}
	w.body.writeU16(uint16(idx))
	return w.count.increment()
}

// Interfaces runs fn against a fresh InterfaceWriter and advances to
// Fields.
func (b *BuilderInterfaces) Interfaces(fn func(*InterfaceWriter) error) (*BuilderFields, error) {
	cw := beginCount16(b.body)
	w := &InterfaceWriter{body: b.body, pool: b.pool, count: cw}
	if err := fn(w); err != nil {
		return nil, err
	}
	return &BuilderFields{header: b.header, body: b.body, pool: b.pool}, nil
}

// BuilderFields is the builder's fields stage.
type BuilderFields struct {
	header *encoder
	body   *encoder
	pool   *poolWriter
}

// FieldsWriter appends one field_info entry at a time via its staged
// Field() builder.
type FieldsWriter struct {
	body  *encoder
	pool  *poolWriter
	count *countWriter
}

// Field starts a new field, staged AccessFlags → Name → Descriptor →
// Attributes.
func (w *FieldsWriter) Field() *MemberAccessFlags {
	return &MemberAccessFlags{body: w.body, pool: w.pool, count: w.count}
}

// Fields runs fn against a fresh FieldsWriter and advances to Methods.
func (b *BuilderFields) Fields(fn func(*FieldsWriter) error) (*BuilderMethods, error) {
	cw := beginCount16(b.body)
	w := &FieldsWriter{body: b.body, pool: b.pool, count: cw}
	if err := fn(w); err != nil {
		return nil, err
	}
	return &BuilderMethods{header: b.header, body: b.body, pool: b.pool}, nil
}

// BuilderMethods is the builder's methods stage.
type BuilderMethods struct {
	header *encoder
	body   *encoder
	pool   *poolWriter
}

// MethodsWriter appends one method_info entry at a time.
type MethodsWriter struct {
	body  *encoder
	pool  *poolWriter
	count *countWriter
}

// Method starts a new method, staged the same way Field does.
func (w *MethodsWriter) Method() *MemberAccessFlags {
	return &MemberAccessFlags{body: w.body, pool: w.pool, count: w.count}
}

// Methods runs fn against a fresh MethodsWriter and advances to
// Attributes.
func (b *BuilderMethods) Methods(fn func(*MethodsWriter) error) (*BuilderAttributes, error) {
	cw := beginCount16(b.body)
	w := &MethodsWriter{body: b.body, pool: b.pool, count: cw}
	if err := fn(w); err != nil {
		return nil, err
	}
	return &BuilderAttributes{header: b.header, body: b.body, pool: b.pool}, nil
}

// BuilderAttributes is the builder's class-level attributes stage.
type BuilderAttributes struct {
	header *encoder
	body   *encoder
	pool   *poolWriter
}

// Attributes runs fn against a fresh AttributesWriter and advances to
// End.
func (b *BuilderAttributes) Attributes(fn func(*AttributesWriter) error) (*BuilderEnd, error) {
	cw := beginCount16(b.body)
	w := &AttributesWriter{body: b.body, pool: b.pool, count: cw}
	if err := fn(w); err != nil {
		return nil, err
	}
	return &BuilderEnd{header: b.header, body: b.body}, nil
}

// BuilderEnd is the builder's terminal stage.
type BuilderEnd struct {
	header *encoder
	body   *encoder
}

// IntoBytes concatenates the header+pool buffer with the body buffer,
// producing the finished class file.
func (b *BuilderEnd) IntoBytes() []byte {
	out := make([]byte, 0, len(b.header.buf)+len(b.body.buf))
	out = append(out, b.header.buf...)
	out = append(out, b.body.buf...)
	return out
}

// WriteBytesTo writes the finished class file to sink.
func (b *BuilderEnd) WriteBytesTo(sink io.Writer) error {
	if sink == nil {
		return ErrNilSink
	}
	if _, err := sink.Write(b.header.buf); err != nil {
		return err
	}
	_, err := sink.Write(b.body.buf)
	return err
}
