// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "github.com/frozolotl/classfile/mutf8"

// Tag is a constant-pool item's discriminant byte.
type Tag uint8

// Tag values, JVM spec table 4.4-A.
const (
	TagUtf8               Tag = 1
	TagInteger            Tag = 3
	TagFloat              Tag = 4
	TagLong               Tag = 5
	TagDouble             Tag = 6
	TagClass              Tag = 7
	TagString             Tag = 8
	TagFieldRef           Tag = 9
	TagMethodRef          Tag = 10
	TagInterfaceMethodRef Tag = 11
	TagNameAndType        Tag = 12
	TagMethodHandle       Tag = 15
	TagMethodType         Tag = 16
	TagDynamic            Tag = 17
	TagInvokeDynamic      Tag = 18
	TagModule             Tag = 19
	TagPackage            Tag = 20
)

// Marker types for phantom-typed pool indices. Go has no phantom types, so
// distinct zero-sized structs play that role: Index[ClassItemTag] and
// Index[Utf8Tag] are different types even though both are backed by a bare
// uint16, so the compiler rejects passing one where the other is expected.
type (
	Utf8Tag               struct{}
	ClassItemTag          struct{}
	FieldRefTag           struct{}
	MethodRefTag          struct{}
	InterfaceMethodRefTag struct{}
	StringItemTag         struct{}
	IntegerTag            struct{}
	LongTag               struct{}
	FloatTag              struct{}
	DoubleTag             struct{}
	NameAndTypeTag        struct{}
	MethodHandleTag       struct{}
	MethodTypeTag         struct{}
	DynamicTag            struct{}
	InvokeDynamicTag      struct{}
	ModuleItemTag         struct{}
	PackageItemTag        struct{}
	// AnyTag is used where an index may point to more than one kind of
	// item, e.g. a MethodHandle's reference field.
	AnyTag struct{}
)

// Index is a 1-based, phantom-typed reference into a ConstantPool. The
// zero value means "absent" wherever an index is optional (super class,
// inner-class name, ...).
type Index[T any] uint16

// Valid reports whether i is non-zero, i.e. actually refers to an item.
func (i Index[T]) Valid() bool { return i != 0 }

// MethodKind is a MethodHandle's reference_kind.
type MethodKind uint8

const (
	MethodKindGetField MethodKind = iota + 1
	MethodKindGetStatic
	MethodKindPutField
	MethodKindPutStatic
	MethodKindInvokeVirtual
	MethodKindInvokeStatic
	MethodKindInvokeSpecial
	MethodKindNewInvokeSpecial
	MethodKindInvokeInterface
)

// Item is implemented by every constant-pool item kind.
type Item interface {
	Tag() Tag
}

type ClassItem struct{ Name Index[Utf8Tag] }

func (ClassItem) Tag() Tag { return TagClass }

type FieldRefItem struct {
	Class       Index[ClassItemTag]
	NameAndType Index[NameAndTypeTag]
}

func (FieldRefItem) Tag() Tag { return TagFieldRef }

type MethodRefItem struct {
	Class       Index[ClassItemTag]
	NameAndType Index[NameAndTypeTag]
}

func (MethodRefItem) Tag() Tag { return TagMethodRef }

type InterfaceMethodRefItem struct {
	Class       Index[ClassItemTag]
	NameAndType Index[NameAndTypeTag]
}

func (InterfaceMethodRefItem) Tag() Tag { return TagInterfaceMethodRef }

type StringItem struct{ String Index[Utf8Tag] }

func (StringItem) Tag() Tag { return TagString }

type IntegerItem struct{ Value int32 }

func (IntegerItem) Tag() Tag { return TagInteger }

type LongItem struct{ Value int64 }

func (LongItem) Tag() Tag { return TagLong }

type FloatItem struct{ Value float32 }

func (FloatItem) Tag() Tag { return TagFloat }

type DoubleItem struct{ Value float64 }

func (DoubleItem) Tag() Tag { return TagDouble }

type NameAndTypeItem struct {
	Name       Index[Utf8Tag]
	Descriptor Index[Utf8Tag]
}

func (NameAndTypeItem) Tag() Tag { return TagNameAndType }

type Utf8Item struct{ Content *mutf8.Str }

func (Utf8Item) Tag() Tag { return TagUtf8 }

type MethodHandleItem struct {
	Kind      MethodKind
	Reference Index[AnyTag]
}

func (MethodHandleItem) Tag() Tag { return TagMethodHandle }

type MethodTypeItem struct{ Descriptor Index[Utf8Tag] }

func (MethodTypeItem) Tag() Tag { return TagMethodType }

type DynamicItem struct {
	BootstrapMethodAttr uint16
	NameAndType         Index[NameAndTypeTag]
}

func (DynamicItem) Tag() Tag { return TagDynamic }

type InvokeDynamicItem struct {
	BootstrapMethodAttr uint16
	NameAndType         Index[NameAndTypeTag]
}

func (InvokeDynamicItem) Tag() Tag { return TagInvokeDynamic }

type ModuleItem struct{ Name Index[Utf8Tag] }

func (ModuleItem) Tag() Tag { return TagModule }

type PackageItem struct{ Name Index[Utf8Tag] }

func (PackageItem) Tag() Tag { return TagPackage }

// ConstantPool is the decoded 1..=N constant pool. Slot 0 and the second
// slot of every Long/Double are nil. Grounded on
// original_source/src/reader/cpool/value.rs (the fuller, authoritative
// module; the sibling reader/cpool.rs flat-Item stub is dead per
// SPEC_FULL.md §9).
type ConstantPool struct {
	items []Item
}

func decodeConstantPool(d *decoder) (*ConstantPool, error) {
	count, err := d.readU16()
	if err != nil {
		return nil, err
	}
	pool := &ConstantPool{items: make([]Item, count)}
	for i := 1; i < int(count); i++ {
		tagByte, err := d.readU8()
		if err != nil {
			return nil, err
		}
		item, wide, err := decodeItem(d, Tag(tagByte))
		if err != nil {
			return nil, err
		}
		pool.items[i] = item
		if wide {
			i++
		}
	}
	return pool, nil
}

func decodeItem(d *decoder, tag Tag) (item Item, wide bool, err error) {
	switch tag {
	case TagUtf8:
		length, err := d.readU16()
		if err != nil {
			return nil, false, err
		}
		raw, err := d.readBytes(int(length))
		if err != nil {
			return nil, false, err
		}
		str, verr := mutf8.FromBytes(raw)
		if verr != nil {
			ve := verr.(*mutf8.ValidationError)
			return nil, false, newDecodeError(InvalidMutf8, d.filePosition()-int(length)+ve.Offset, d.context())
		}
		return Utf8Item{Content: str}, false, nil
	case TagInteger:
		v, err := d.readI32()
		return IntegerItem{Value: v}, false, err
	case TagFloat:
		v, err := d.readF32()
		return FloatItem{Value: v}, false, err
	case TagLong:
		v, err := d.readI64()
		return LongItem{Value: v}, true, err
	case TagDouble:
		v, err := d.readF64()
		return DoubleItem{Value: v}, true, err
	case TagClass:
		name, err := readIndex[Utf8Tag](d)
		return ClassItem{Name: name}, false, err
	case TagString:
		s, err := readIndex[Utf8Tag](d)
		return StringItem{String: s}, false, err
	case TagFieldRef:
		class, err := readIndex[ClassItemTag](d)
		if err != nil {
			return nil, false, err
		}
		nt, err := readIndex[NameAndTypeTag](d)
		return FieldRefItem{Class: class, NameAndType: nt}, false, err
	case TagMethodRef:
		class, err := readIndex[ClassItemTag](d)
		if err != nil {
			return nil, false, err
		}
		nt, err := readIndex[NameAndTypeTag](d)
		return MethodRefItem{Class: class, NameAndType: nt}, false, err
	case TagInterfaceMethodRef:
		class, err := readIndex[ClassItemTag](d)
		if err != nil {
			return nil, false, err
		}
		nt, err := readIndex[NameAndTypeTag](d)
		return InterfaceMethodRefItem{Class: class, NameAndType: nt}, false, err
	case TagNameAndType:
		name, err := readIndex[Utf8Tag](d)
		if err != nil {
			return nil, false, err
		}
		desc, err := readIndex[Utf8Tag](d)
		return NameAndTypeItem{Name: name, Descriptor: desc}, false, err
	case TagMethodHandle:
		kindByte, err := d.readU8()
		if err != nil {
			return nil, false, err
		}
		if kindByte < 1 || kindByte > 9 {
			return nil, false, newDecodeError(InvalidTag, d.filePosition()-1, d.context())
		}
		ref, err := readIndex[AnyTag](d)
		return MethodHandleItem{Kind: MethodKind(kindByte), Reference: ref}, false, err
	case TagMethodType:
		desc, err := readIndex[Utf8Tag](d)
		return MethodTypeItem{Descriptor: desc}, false, err
	case TagDynamic:
		attr, err := d.readU16()
		if err != nil {
			return nil, false, err
		}
		nt, err := readIndex[NameAndTypeTag](d)
		return DynamicItem{BootstrapMethodAttr: attr, NameAndType: nt}, false, err
	case TagInvokeDynamic:
		attr, err := d.readU16()
		if err != nil {
			return nil, false, err
		}
		nt, err := readIndex[NameAndTypeTag](d)
		return InvokeDynamicItem{BootstrapMethodAttr: attr, NameAndType: nt}, false, err
	case TagModule:
		name, err := readIndex[Utf8Tag](d)
		return ModuleItem{Name: name}, false, err
	case TagPackage:
		name, err := readIndex[Utf8Tag](d)
		return PackageItem{Name: name}, false, err
	default:
		return nil, false, newDecodeError(InvalidTag, d.filePosition()-1, d.context())
	}
}

func readIndex[T any](d *decoder) (Index[T], error) {
	v, err := d.readU16()
	return Index[T](v), err
}

// Get returns the raw item at idx, failing with InvalidIndex if it is out
// of range or lands on an unused slot.
func (p *ConstantPool) Get(idx Index[AnyTag]) (Item, error) {
	pos := int(idx)
	if pos <= 0 || pos >= len(p.items) || p.items[pos] == nil {
		return nil, newDecodeError(InvalidIndex, 0, ContextConstantPool)
	}
	return p.items[pos], nil
}

func getTyped[T any](p *ConstantPool, idx Index[T]) (Item, error) {
	return p.Get(Index[AnyTag](idx))
}

// Len returns the pool's logical slot count (next_index from the write
// side; includes unused Long/Double second slots).
func (p *ConstantPool) Len() int { return len(p.items) }

// GetClass returns the Class item at idx.
func (p *ConstantPool) GetClass(idx Index[ClassItemTag]) (ClassItem, error) {
	item, err := getTyped(p, idx)
	if err != nil {
		return ClassItem{}, err
	}
	v, ok := item.(ClassItem)
	if !ok {
		return ClassItem{}, newDecodeError(UnexpectedTag, 0, ContextConstantPool)
	}
	return v, nil
}

// GetUtf8 returns the Utf8 item at idx.
func (p *ConstantPool) GetUtf8(idx Index[Utf8Tag]) (Utf8Item, error) {
	item, err := getTyped(p, idx)
	if err != nil {
		return Utf8Item{}, err
	}
	v, ok := item.(Utf8Item)
	if !ok {
		return Utf8Item{}, newDecodeError(UnexpectedTag, 0, ContextConstantPool)
	}
	return v, nil
}

// GetNameAndType returns the NameAndType item at idx.
func (p *ConstantPool) GetNameAndType(idx Index[NameAndTypeTag]) (NameAndTypeItem, error) {
	item, err := getTyped(p, idx)
	if err != nil {
		return NameAndTypeItem{}, err
	}
	v, ok := item.(NameAndTypeItem)
	if !ok {
		return NameAndTypeItem{}, newDecodeError(UnexpectedTag, 0, ContextConstantPool)
	}
	return v, nil
}

// ClassValue is the eagerly-resolved value of a Class item: its name
// string, rather than a further index to follow.
type ClassValue struct{ Name *mutf8.Str }

// RetrieveClass resolves idx all the way down to the class's name bytes.
func (p *ConstantPool) RetrieveClass(idx Index[ClassItemTag]) (ClassValue, error) {
	item, err := p.GetClass(idx)
	if err != nil {
		return ClassValue{}, err
	}
	utf8Item, err := p.GetUtf8(item.Name)
	if err != nil {
		return ClassValue{}, err
	}
	return ClassValue{Name: utf8Item.Content}, nil
}

// NameAndTypeValue is the eagerly-resolved value of a NameAndType item.
type NameAndTypeValue struct {
	Name       *mutf8.Str
	Descriptor *mutf8.Str
}

// RetrieveNameAndType resolves idx down to its name and descriptor bytes.
func (p *ConstantPool) RetrieveNameAndType(idx Index[NameAndTypeTag]) (NameAndTypeValue, error) {
	item, err := p.GetNameAndType(idx)
	if err != nil {
		return NameAndTypeValue{}, err
	}
	name, err := p.GetUtf8(item.Name)
	if err != nil {
		return NameAndTypeValue{}, err
	}
	desc, err := p.GetUtf8(item.Descriptor)
	if err != nil {
		return NameAndTypeValue{}, err
	}
	return NameAndTypeValue{Name: name.Content, Descriptor: desc.Content}, nil
}

// FieldRefValue is the eagerly-resolved value of a FieldRef/MethodRef/
// InterfaceMethodRef item.
type FieldRefValue struct {
	Class       ClassValue
	NameAndType NameAndTypeValue
}

// RetrieveFieldRef resolves idx down through its class and name-and-type.
func (p *ConstantPool) RetrieveFieldRef(idx Index[FieldRefTag]) (FieldRefValue, error) {
	item, err := getTyped(p, idx)
	if err != nil {
		return FieldRefValue{}, err
	}
	v, ok := item.(FieldRefItem)
	if !ok {
		return FieldRefValue{}, newDecodeError(UnexpectedTag, 0, ContextConstantPool)
	}
	class, err := p.RetrieveClass(v.Class)
	if err != nil {
		return FieldRefValue{}, err
	}
	nt, err := p.RetrieveNameAndType(v.NameAndType)
	if err != nil {
		return FieldRefValue{}, err
	}
	return FieldRefValue{Class: class, NameAndType: nt}, nil
}

// Iter calls f for every populated slot in ascending index order.
func (p *ConstantPool) Iter(f func(idx int, item Item)) {
	for i, item := range p.items {
		if item != nil {
			f(i, item)
		}
	}
}
