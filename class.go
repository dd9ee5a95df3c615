// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// magic is the 4-byte prefix every class file must start with.
const magic = 0xCAFEBABE

// Class is a lazy, zero-copy view over a parsed class file. It borrows the
// input byte slice; the constant pool is fully decoded eagerly but
// interfaces/fields/methods/attributes are cheap cursors replayed on
// iteration. Grounded on original_source/src/reader/class.rs.
type Class struct {
	input      []byte
	version    Version
	pool       *ConstantPool
	flags      AccessFlags
	thisClass  Index[ClassItemTag]
	superClass Index[ClassItemTag] // zero means "no super class" (only java/lang/Object)
	interfaces *decoder
	fields     *decoder
	methods    *decoder
	attributes *decoder
}

// Parse decodes a class file from bytes. Grounded on
// original_source/src/reader/class.rs's Class::new.
func Parse(data []byte) (*Class, error) {
	d := newDecoder(data, ContextStart)

	magicValue, err := d.readU32()
	if err != nil {
		return nil, err
	}
	if magicValue != magic {
		return nil, newDecodeError(InvalidPrefix, 0, ContextStart)
	}

	minor, err := d.readU16()
	if err != nil {
		return nil, err
	}
	major, err := d.readU16()
	if err != nil {
		return nil, err
	}
	version := Version{Major: major, Minor: minor}

	d.setContext(ContextConstantPool)
	pool, err := decodeConstantPool(d)
	if err != nil {
		return nil, err
	}

	d.setContext(ContextClassInfo)
	flagsRaw, err := d.readU16()
	if err != nil {
		return nil, err
	}
	thisClass, err := readIndex[ClassItemTag](d)
	if err != nil {
		return nil, err
	}
	superClass, err := readIndex[ClassItemTag](d)
	if err != nil {
		return nil, err
	}

	d.setContext(ContextInterfaces)
	interfaceCount, err := d.readU16()
	if err != nil {
		return nil, err
	}
	ifaceDec, err := d.limit(int(interfaceCount)*2, ContextInterfaces)
	if err != nil {
		return nil, err
	}
	if err := d.advance(int(interfaceCount) * 2); err != nil {
		return nil, err
	}

	d.setContext(ContextFields)
	fieldsDec, err := skipMembers(d, ContextFields)
	if err != nil {
		return nil, err
	}

	d.setContext(ContextMethods)
	methodsDec, err := skipMembers(d, ContextMethods)
	if err != nil {
		return nil, err
	}

	d.setContext(ContextAttributes)
	attrsDec, err := skipAttributesSection(d)
	if err != nil {
		return nil, err
	}

	return &Class{
		input:      data,
		version:    version,
		pool:       pool,
		flags:      AccessFlags(flagsRaw),
		thisClass:  thisClass,
		superClass: superClass,
		interfaces: ifaceDec,
		fields:     fieldsDec,
		methods:    methodsDec,
		attributes: attrsDec,
	}, nil
}

// skipMembers reads a u16 count then, for each field/method, skips its
// fixed 6-byte header and its attribute list, producing a sub-decoder that
// covers exactly the member list (so iterating it later is a cheap clone).
func skipMembers(d *decoder, ctx Context) (*decoder, error) {
	count, err := d.readU16()
	if err != nil {
		return nil, err
	}
	start := d.clone()
	for i := uint16(0); i < count; i++ {
		// access_flags, name_index, descriptor_index
		if err := d.advance(6); err != nil {
			return nil, err
		}
		if err := skipAttributes(d); err != nil {
			return nil, err
		}
	}
	length := start.bytesRemaining() - d.bytesRemaining()
	return start.limit(length, ctx)
}

// Version returns the class file's major/minor version.
func (c *Class) Version() Version { return c.version }

// AccessFlags returns the class-level access flags.
func (c *Class) AccessFlags() AccessFlags { return c.flags }

// ThisClass returns the index of this class's own Class constant.
func (c *Class) ThisClass() Index[ClassItemTag] { return c.thisClass }

// SuperClass returns the index of the superclass's Class constant, or the
// zero Index if this class has no superclass (only true for
// java/lang/Object).
func (c *Class) SuperClass() Index[ClassItemTag] { return c.superClass }

// Pool returns the decoded constant pool.
func (c *Class) Pool() *ConstantPool { return c.pool }

// Interfaces returns a fresh iterator over the implemented interfaces'
// Class constant indices, in file order.
func (c *Class) Interfaces() *InterfaceIter {
	return &InterfaceIter{d: c.interfaces.clone()}
}

// Fields returns a fresh iterator over the class's fields, in file order.
func (c *Class) Fields() *FieldIter {
	return &FieldIter{d: c.fields.clone(), pool: c.pool}
}

// Methods returns a fresh iterator over the class's methods, in file
// order.
func (c *Class) Methods() *MethodIter {
	return &MethodIter{d: c.methods.clone(), pool: c.pool}
}

// Attributes returns a fresh iterator over the class-level attributes, in
// file order.
func (c *Class) Attributes() *Attributes {
	return &Attributes{d: c.attributes.clone()}
}

// InterfaceIter iterates the interfaces section, a flat array of u16
// Class indices.
type InterfaceIter struct{ d *decoder }

// Next returns the next interface's Class index, or ok=false when done.
func (it *InterfaceIter) Next() (idx Index[ClassItemTag], ok bool) {
	if it.d.bytesRemaining() < 2 {
		return 0, false
	}
	v, err := readIndex[ClassItemTag](it.d)
	if err != nil {
		return 0, false
	}
	return v, true
}
