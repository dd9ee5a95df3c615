// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"math"

	"github.com/frozolotl/classfile/mutf8"
)

// poolWriter is the write-side constant pool: an insertion-ordered,
// deduplicating map from item value to assigned index. Grounded on
// original_source/src/writer/cpool.rs. Float/Double dedupe by IEEE-754 bit
// pattern, so two NaNs with the same bits unify even though Go's built-in
// == on float64 never considers NaN equal to itself.
type poolWriter struct {
	e          *encoder
	countOff   int
	nextIndex  uint16
	ctx        Context
	utf8       map[string]Index[Utf8Tag]
	integers   map[int32]Index[IntegerTag]
	longs      map[int64]Index[LongTag]
	floats     map[uint32]Index[FloatTag]
	doubles    map[uint64]Index[DoubleTag]
	classes    map[uint16]Index[ClassItemTag]
	strings    map[uint16]Index[StringItemTag]
	nameTypes  map[[2]uint16]Index[NameAndTypeTag]
	fieldRefs  map[[2]uint16]Index[FieldRefTag]
	methodRefs map[[2]uint16]Index[MethodRefTag]
	ifaceRefs  map[[2]uint16]Index[InterfaceMethodRefTag]
	handles    map[[2]uint16]Index[MethodHandleTag]
	methodType map[uint16]Index[MethodTypeTag]
	dynamics   map[[2]uint16]Index[DynamicTag]
	invokeDyns map[[2]uint16]Index[InvokeDynamicTag]
	modules    map[uint16]Index[ModuleItemTag]
	packages   map[uint16]Index[PackageItemTag]
}

// newPoolWriter creates a write-side pool appending to e, whose count
// placeholder was already reserved at countOff (u16, initially 0).
func newPoolWriter(e *encoder, countOff int) *poolWriter {
	return &poolWriter{
		e:          e,
		countOff:   countOff,
		nextIndex:  1,
		ctx:        ContextConstantPool,
		utf8:       make(map[string]Index[Utf8Tag]),
		integers:   make(map[int32]Index[IntegerTag]),
		longs:      make(map[int64]Index[LongTag]),
		floats:     make(map[uint32]Index[FloatTag]),
		doubles:    make(map[uint64]Index[DoubleTag]),
		classes:    make(map[uint16]Index[ClassItemTag]),
		strings:    make(map[uint16]Index[StringItemTag]),
		nameTypes:  make(map[[2]uint16]Index[NameAndTypeTag]),
		fieldRefs:  make(map[[2]uint16]Index[FieldRefTag]),
		methodRefs: make(map[[2]uint16]Index[MethodRefTag]),
		ifaceRefs:  make(map[[2]uint16]Index[InterfaceMethodRefTag]),
		handles:    make(map[[2]uint16]Index[MethodHandleTag]),
		methodType: make(map[uint16]Index[MethodTypeTag]),
		dynamics:   make(map[[2]uint16]Index[DynamicTag]),
		invokeDyns: make(map[[2]uint16]Index[InvokeDynamicTag]),
		modules:    make(map[uint16]Index[ModuleItemTag]),
		packages:   make(map[uint16]Index[PackageItemTag]),
	}
}

// reserve assigns the next index, consuming two slots for Long/Double, and
// back-patches the pool count in place.
func (pw *poolWriter) reserve(wide bool) (uint16, error) {
	idx := pw.nextIndex
	inc := uint16(1)
	if wide {
		inc = 2
	}
	if uint32(idx)+uint32(inc) > math.MaxUint16 {
		return 0, newEncodeError(TooManyItems, pw.countOff, pw.ctx)
	}
	pw.nextIndex += inc
	pw.e.replacing(pw.countOff, 2).writeU16(pw.nextIndex)
	return idx, nil
}

func intern[K comparable, T any](pw *poolWriter, m map[K]Index[T], key K, tag Tag, wide bool, encode func(*encoder)) (Index[T], error) {
	if idx, ok := m[key]; ok {
		return idx, nil
	}
	idx, err := pw.reserve(wide)
	if err != nil {
		return 0, err
	}
	pw.e.writeU8(uint8(tag))
	encode(pw.e)
	result := Index[T](idx)
	m[key] = result
	return result, nil
}

// InsertUtf8 interns raw Modified UTF-8 bytes, returning the same index if
// equal bytes were already inserted.
func (pw *poolWriter) InsertUtf8(content []byte) (Index[Utf8Tag], error) {
	if len(content) > math.MaxUint16 {
		return 0, newEncodeError(StringTooLong, pw.e.position(), pw.ctx)
	}
	return intern(pw, pw.utf8, string(content), TagUtf8, false, func(e *encoder) {
		e.writeU16(uint16(len(content)))
		e.writeBytes(content)
	})
}

// InsertString converts s to Modified UTF-8 and interns it as a Utf8 item.
// This is the composition rule §4.5 describes: a string insertion never
// special-cases duplicates, it just always goes through InsertUtf8.
func (pw *poolWriter) InsertString(s string) (Index[Utf8Tag], error) {
	return pw.InsertUtf8(mutf8.EncodeUTF8(s))
}

func (pw *poolWriter) InsertInteger(v int32) (Index[IntegerTag], error) {
	return intern(pw, pw.integers, v, TagInteger, false, func(e *encoder) { e.writeI32(v) })
}

func (pw *poolWriter) InsertLong(v int64) (Index[LongTag], error) {
	return intern(pw, pw.longs, v, TagLong, true, func(e *encoder) { e.writeI64(v) })
}

func (pw *poolWriter) InsertFloat(v float32) (Index[FloatTag], error) {
	bits := math.Float32bits(v)
	return intern(pw, pw.floats, bits, TagFloat, false, func(e *encoder) { e.writeF32(v) })
}

func (pw *poolWriter) InsertDouble(v float64) (Index[DoubleTag], error) {
	bits := math.Float64bits(v)
	return intern(pw, pw.doubles, bits, TagDouble, true, func(e *encoder) { e.writeF64(v) })
}

func (pw *poolWriter) insertClassByName(name Index[Utf8Tag]) (Index[ClassItemTag], error) {
	return intern(pw, pw.classes, uint16(name), TagClass, false, func(e *encoder) { e.writeU16(uint16(name)) })
}

// InsertClass composes: insert the Utf8 name (deduping against any
// existing equal Utf8), then the Class referencing it.
func (pw *poolWriter) InsertClass(name string) (Index[ClassItemTag], error) {
	utf8Idx, err := pw.InsertString(name)
	if err != nil {
		return 0, err
	}
	return pw.insertClassByName(utf8Idx)
}

func (pw *poolWriter) insertStringByIndex(str Index[Utf8Tag]) (Index[StringItemTag], error) {
	return intern(pw, pw.strings, uint16(str), TagString, false, func(e *encoder) { e.writeU16(uint16(str)) })
}

// InsertStringConstant composes an `ldc`-style String constant.
func (pw *poolWriter) InsertStringConstant(value string) (Index[StringItemTag], error) {
	utf8Idx, err := pw.InsertString(value)
	if err != nil {
		return 0, err
	}
	return pw.insertStringByIndex(utf8Idx)
}

func (pw *poolWriter) insertNameAndTypeByIndex(name, desc Index[Utf8Tag]) (Index[NameAndTypeTag], error) {
	key := [2]uint16{uint16(name), uint16(desc)}
	return intern(pw, pw.nameTypes, key, TagNameAndType, false, func(e *encoder) {
		e.writeU16(uint16(name))
		e.writeU16(uint16(desc))
	})
}

// InsertNameAndType composes the name and descriptor strings then the
// NameAndType item.
func (pw *poolWriter) InsertNameAndType(name, descriptor string) (Index[NameAndTypeTag], error) {
	nameIdx, err := pw.InsertString(name)
	if err != nil {
		return 0, err
	}
	descIdx, err := pw.InsertString(descriptor)
	if err != nil {
		return 0, err
	}
	return pw.insertNameAndTypeByIndex(nameIdx, descIdx)
}

// InsertFieldRef composes class, name-and-type, and their referenced
// strings transitively; duplicates at every level unify.
func (pw *poolWriter) InsertFieldRef(className, name, descriptor string) (Index[FieldRefTag], error) {
	classIdx, err := pw.InsertClass(className)
	if err != nil {
		return 0, err
	}
	ntIdx, err := pw.InsertNameAndType(name, descriptor)
	if err != nil {
		return 0, err
	}
	key := [2]uint16{uint16(classIdx), uint16(ntIdx)}
	return intern(pw, pw.fieldRefs, key, TagFieldRef, false, func(e *encoder) {
		e.writeU16(uint16(classIdx))
		e.writeU16(uint16(ntIdx))
	})
}

// InsertMethodRef composes a MethodRef the same way InsertFieldRef does.
func (pw *poolWriter) InsertMethodRef(className, name, descriptor string) (Index[MethodRefTag], error) {
	classIdx, err := pw.InsertClass(className)
	if err != nil {
		return 0, err
	}
	ntIdx, err := pw.InsertNameAndType(name, descriptor)
	if err != nil {
		return 0, err
	}
	key := [2]uint16{uint16(classIdx), uint16(ntIdx)}
	return intern(pw, pw.methodRefs, key, TagMethodRef, false, func(e *encoder) {
		e.writeU16(uint16(classIdx))
		e.writeU16(uint16(ntIdx))
	})
}

// InsertInterfaceMethodRef composes an InterfaceMethodRef.
func (pw *poolWriter) InsertInterfaceMethodRef(className, name, descriptor string) (Index[InterfaceMethodRefTag], error) {
	classIdx, err := pw.InsertClass(className)
	if err != nil {
		return 0, err
	}
	ntIdx, err := pw.InsertNameAndType(name, descriptor)
	if err != nil {
		return 0, err
	}
	key := [2]uint16{uint16(classIdx), uint16(ntIdx)}
	return intern(pw, pw.ifaceRefs, key, TagInterfaceMethodRef, false, func(e *encoder) {
		e.writeU16(uint16(classIdx))
		e.writeU16(uint16(ntIdx))
	})
}

// InsertMethodHandle interns a MethodHandle referencing an already-
// inserted field/method/interface-method ref (passed as a raw AnyTag
// index, since the allowed reference kind depends on the handle's Kind).
func (pw *poolWriter) InsertMethodHandle(kind MethodKind, reference Index[AnyTag]) (Index[MethodHandleTag], error) {
	key := [2]uint16{uint16(kind), uint16(reference)}
	return intern(pw, pw.handles, key, TagMethodHandle, false, func(e *encoder) {
		e.writeU8(uint8(kind))
		e.writeU16(uint16(reference))
	})
}

// InsertMethodType composes the descriptor string then the MethodType.
func (pw *poolWriter) InsertMethodType(descriptor string) (Index[MethodTypeTag], error) {
	descIdx, err := pw.InsertString(descriptor)
	if err != nil {
		return 0, err
	}
	return intern(pw, pw.methodType, uint16(descIdx), TagMethodType, false, func(e *encoder) {
		e.writeU16(uint16(descIdx))
	})
}

// InsertDynamic interns a Dynamic constant referencing bootstrapMethodAttr
// (an index into the class's BootstrapMethods table, not the pool).
func (pw *poolWriter) InsertDynamic(bootstrapMethodAttr uint16, name, descriptor string) (Index[DynamicTag], error) {
	ntIdx, err := pw.InsertNameAndType(name, descriptor)
	if err != nil {
		return 0, err
	}
	key := [2]uint16{bootstrapMethodAttr, uint16(ntIdx)}
	return intern(pw, pw.dynamics, key, TagDynamic, false, func(e *encoder) {
		e.writeU16(bootstrapMethodAttr)
		e.writeU16(uint16(ntIdx))
	})
}

// InsertInvokeDynamic interns an InvokeDynamic constant.
func (pw *poolWriter) InsertInvokeDynamic(bootstrapMethodAttr uint16, name, descriptor string) (Index[InvokeDynamicTag], error) {
	ntIdx, err := pw.InsertNameAndType(name, descriptor)
	if err != nil {
		return 0, err
	}
	key := [2]uint16{bootstrapMethodAttr, uint16(ntIdx)}
	return intern(pw, pw.invokeDyns, key, TagInvokeDynamic, false, func(e *encoder) {
		e.writeU16(bootstrapMethodAttr)
		e.writeU16(uint16(ntIdx))
	})
}

// InsertModule composes the module name string then the Module item.
func (pw *poolWriter) InsertModule(name string) (Index[ModuleItemTag], error) {
	nameIdx, err := pw.InsertString(name)
	if err != nil {
		return 0, err
	}
	return intern(pw, pw.modules, uint16(nameIdx), TagModule, false, func(e *encoder) {
		e.writeU16(uint16(nameIdx))
	})
}

// InsertPackage composes the package name string then the Package item.
func (pw *poolWriter) InsertPackage(name string) (Index[PackageItemTag], error) {
	nameIdx, err := pw.InsertString(name)
	if err != nil {
		return 0, err
	}
	return intern(pw, pw.packages, uint16(nameIdx), TagPackage, false, func(e *encoder) {
		e.writeU16(uint16(nameIdx))
	})
}
