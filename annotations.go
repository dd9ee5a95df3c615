// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// ElementValueKind discriminates ElementValue by its JVM spec §4.7.16.1
// tag byte.
type ElementValueKind uint8

const (
	ElementValueByte ElementValueKind = iota
	ElementValueChar
	ElementValueDouble
	ElementValueFloat
	ElementValueInt
	ElementValueLong
	ElementValueShort
	ElementValueBoolean
	ElementValueString
	ElementValueEnum
	ElementValueClass
	ElementValueAnnotation
	ElementValueArray
)

// ElementValue is one annotation element's value.
type ElementValue struct {
	Kind ElementValueKind

	// Const is the pool index for the Byte/Char/Double/Float/Int/Long/
	// Short/Boolean/String/Class kinds.
	Const Index[AnyTag]

	// TypeName/ConstName are set for ElementValueEnum.
	TypeName  Index[Utf8Tag]
	ConstName Index[Utf8Tag]

	// Annotation is set for ElementValueAnnotation.
	Annotation *Annotation

	// Array is set for ElementValueArray.
	Array []ElementValue
}

func decodeElementValue(d *decoder) (ElementValue, error) {
	tag, err := d.readU8()
	if err != nil {
		return ElementValue{}, err
	}
	switch tag {
	case 'B':
		idx, err := readIndex[AnyTag](d)
		return ElementValue{Kind: ElementValueByte, Const: idx}, err
	case 'C':
		idx, err := readIndex[AnyTag](d)
		return ElementValue{Kind: ElementValueChar, Const: idx}, err
	case 'D':
		idx, err := readIndex[AnyTag](d)
		return ElementValue{Kind: ElementValueDouble, Const: idx}, err
	case 'F':
		idx, err := readIndex[AnyTag](d)
		return ElementValue{Kind: ElementValueFloat, Const: idx}, err
	case 'I':
		idx, err := readIndex[AnyTag](d)
		return ElementValue{Kind: ElementValueInt, Const: idx}, err
	case 'J':
		idx, err := readIndex[AnyTag](d)
		return ElementValue{Kind: ElementValueLong, Const: idx}, err
	case 'S':
		idx, err := readIndex[AnyTag](d)
		return ElementValue{Kind: ElementValueShort, Const: idx}, err
	case 'Z':
		idx, err := readIndex[AnyTag](d)
		return ElementValue{Kind: ElementValueBoolean, Const: idx}, err
	case 's':
		idx, err := readIndex[AnyTag](d)
		return ElementValue{Kind: ElementValueString, Const: idx}, err
	case 'c':
		idx, err := readIndex[AnyTag](d)
		return ElementValue{Kind: ElementValueClass, Const: idx}, err
	case 'e':
		typeName, err := readIndex[Utf8Tag](d)
		if err != nil {
			return ElementValue{}, err
		}
		constName, err := readIndex[Utf8Tag](d)
		return ElementValue{Kind: ElementValueEnum, TypeName: typeName, ConstName: constName}, err
	case '@':
		ann, err := decodeAnnotation(d)
		if err != nil {
			return ElementValue{}, err
		}
		return ElementValue{Kind: ElementValueAnnotation, Annotation: &ann}, nil
	case '[':
		count, err := d.readU16()
		if err != nil {
			return ElementValue{}, err
		}
		values := make([]ElementValue, 0, count)
		for i := uint16(0); i < count; i++ {
			v, err := decodeElementValue(d)
			if err != nil {
				return ElementValue{}, err
			}
			values = append(values, v)
		}
		return ElementValue{Kind: ElementValueArray, Array: values}, nil
	default:
		return ElementValue{}, newDecodeError(InvalidTag, d.filePosition(), d.context())
	}
}

// Annotation is a single runtime or source annotation, JVM spec §4.7.16.
type Annotation struct {
	Type     Index[Utf8Tag]
	Elements []AnnotationElement
}

// AnnotationElement is one name=value pair inside an Annotation.
type AnnotationElement struct {
	Name  Index[Utf8Tag]
	Value ElementValue
}

func decodeAnnotation(d *decoder) (Annotation, error) {
	typeIdx, err := readIndex[Utf8Tag](d)
	if err != nil {
		return Annotation{}, err
	}
	count, err := d.readU16()
	if err != nil {
		return Annotation{}, err
	}
	elements := make([]AnnotationElement, 0, count)
	for i := uint16(0); i < count; i++ {
		name, err := readIndex[Utf8Tag](d)
		if err != nil {
			return Annotation{}, err
		}
		value, err := decodeElementValue(d)
		if err != nil {
			return Annotation{}, err
		}
		elements = append(elements, AnnotationElement{Name: name, Value: value})
	}
	return Annotation{Type: typeIdx, Elements: elements}, nil
}

func decodeAnnotations(d *decoder) ([]Annotation, error) {
	count, err := d.readU16()
	if err != nil {
		return nil, err
	}
	out := make([]Annotation, 0, count)
	for i := uint16(0); i < count; i++ {
		ann, err := decodeAnnotation(d)
		if err != nil {
			return nil, err
		}
		out = append(out, ann)
	}
	return out, nil
}

func decodeParameterAnnotations(d *decoder) ([][]Annotation, error) {
	count, err := d.readU8()
	if err != nil {
		return nil, err
	}
	out := make([][]Annotation, 0, count)
	for i := uint8(0); i < count; i++ {
		anns, err := decodeAnnotations(d)
		if err != nil {
			return nil, err
		}
		out = append(out, anns)
	}
	return out, nil
}

// TypeAnnotationTargetKind discriminates TargetInfo's shape per JVM spec
// table 4.7.20-A.
type TypeAnnotationTargetKind uint8

const (
	TargetTypeParameter TypeAnnotationTargetKind = iota
	TargetSuperType
	TargetTypeParameterBound
	TargetEmpty
	TargetFormalParameter
	TargetThrows
	TargetLocalVar
	TargetCatch
	TargetOffset
	TargetTypeArgument
)

// LocalVarTarget is one entry of a LocalVariable/ResourceVariable
// target_info's table, JVM spec §4.7.20.1. Supplements the Open Question
// flagged in spec.md §9 by following the JVM spec literally.
type LocalVarTarget struct {
	StartPC uint16
	Length  uint16
	Index   uint16
}

// TargetInfo is the target_info union of a type annotation, shaped by
// Kind.
type TargetInfo struct {
	Kind TypeAnnotationTargetKind

	TypeParameterIndex uint8                   // TargetTypeParameter, TargetTypeParameterBound
	BoundIndex         uint8                   // TargetTypeParameterBound
	SuperTypeIndex     uint16                  // TargetSuperType; 0xFFFF means the extended class
	FormalParameterIndex uint8                 // TargetFormalParameter
	ThrowsTypeIndex    uint16                  // TargetThrows
	LocalVars          []LocalVarTarget        // TargetLocalVar
	ExceptionTableIndex uint16                 // TargetCatch
	Offset             uint16                  // TargetOffset
	TypeArgumentIndex  uint8                   // TargetTypeArgument
}

// TypePathEntry is one step of a type_path list, JVM spec §4.7.20.2.
type TypePathEntry struct {
	TypePathKind uint8
	TypeArgumentIndex uint8
}

// TypeAnnotation is a RuntimeVisibleTypeAnnotations/
// RuntimeInvisibleTypeAnnotations entry: a target_info, a type_path, then
// an ordinary Annotation body.
type TypeAnnotation struct {
	TargetType uint8
	Target     TargetInfo
	TypePath   []TypePathEntry
	Annotation Annotation
}

func decodeTargetInfo(d *decoder, targetType uint8) (TargetInfo, error) {
	switch {
	case targetType == 0x00 || targetType == 0x01:
		idx, err := d.readU8()
		return TargetInfo{Kind: TargetTypeParameter, TypeParameterIndex: idx}, err
	case targetType == 0x10:
		idx, err := d.readU16()
		return TargetInfo{Kind: TargetSuperType, SuperTypeIndex: idx}, err
	case targetType == 0x11 || targetType == 0x12:
		paramIdx, err := d.readU8()
		if err != nil {
			return TargetInfo{}, err
		}
		boundIdx, err := d.readU8()
		return TargetInfo{Kind: TargetTypeParameterBound, TypeParameterIndex: paramIdx, BoundIndex: boundIdx}, err
	case targetType >= 0x13 && targetType <= 0x15:
		return TargetInfo{Kind: TargetEmpty}, nil
	case targetType == 0x16:
		idx, err := d.readU8()
		return TargetInfo{Kind: TargetFormalParameter, FormalParameterIndex: idx}, err
	case targetType == 0x17:
		idx, err := d.readU16()
		return TargetInfo{Kind: TargetThrows, ThrowsTypeIndex: idx}, err
	case targetType == 0x40 || targetType == 0x41:
		count, err := d.readU16()
		if err != nil {
			return TargetInfo{}, err
		}
		vars := make([]LocalVarTarget, 0, count)
		for i := uint16(0); i < count; i++ {
			startPC, err := d.readU16()
			if err != nil {
				return TargetInfo{}, err
			}
			length, err := d.readU16()
			if err != nil {
				return TargetInfo{}, err
			}
			index, err := d.readU16()
			if err != nil {
				return TargetInfo{}, err
			}
			vars = append(vars, LocalVarTarget{StartPC: startPC, Length: length, Index: index})
		}
		return TargetInfo{Kind: TargetLocalVar, LocalVars: vars}, nil
	case targetType == 0x42:
		idx, err := d.readU16()
		return TargetInfo{Kind: TargetCatch, ExceptionTableIndex: idx}, err
	case targetType >= 0x43 && targetType <= 0x46:
		offset, err := d.readU16()
		return TargetInfo{Kind: TargetOffset, Offset: offset}, err
	case targetType >= 0x47 && targetType <= 0x4B:
		offset, err := d.readU16()
		if err != nil {
			return TargetInfo{}, err
		}
		argIdx, err := d.readU8()
		return TargetInfo{Kind: TargetTypeArgument, Offset: offset, TypeArgumentIndex: argIdx}, err
	default:
		return TargetInfo{}, newDecodeError(InvalidTag, d.filePosition(), d.context())
	}
}

func decodeTypePath(d *decoder) ([]TypePathEntry, error) {
	count, err := d.readU8()
	if err != nil {
		return nil, err
	}
	path := make([]TypePathEntry, 0, count)
	for i := uint8(0); i < count; i++ {
		kind, err := d.readU8()
		if err != nil {
			return nil, err
		}
		argIdx, err := d.readU8()
		if err != nil {
			return nil, err
		}
		path = append(path, TypePathEntry{TypePathKind: kind, TypeArgumentIndex: argIdx})
	}
	return path, nil
}

func decodeTypeAnnotation(d *decoder) (TypeAnnotation, error) {
	targetType, err := d.readU8()
	if err != nil {
		return TypeAnnotation{}, err
	}
	target, err := decodeTargetInfo(d, targetType)
	if err != nil {
		return TypeAnnotation{}, err
	}
	path, err := decodeTypePath(d)
	if err != nil {
		return TypeAnnotation{}, err
	}
	ann, err := decodeAnnotation(d)
	if err != nil {
		return TypeAnnotation{}, err
	}
	return TypeAnnotation{TargetType: targetType, Target: target, TypePath: path, Annotation: ann}, nil
}

func decodeTypeAnnotations(d *decoder) ([]TypeAnnotation, error) {
	count, err := d.readU16()
	if err != nil {
		return nil, err
	}
	out := make([]TypeAnnotation, 0, count)
	for i := uint16(0); i < count; i++ {
		ta, err := decodeTypeAnnotation(d)
		if err != nil {
			return nil, err
		}
		out = append(out, ta)
	}
	return out, nil
}
