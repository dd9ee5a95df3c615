// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "strings"

// BaseType is a field descriptor's non-array base type, JVM spec §4.3.2.
type BaseType struct {
	// Kind is one of the BaseKind* constants.
	Kind BaseKind
	// Object is the internal class name when Kind is BaseKindObject, e.g.
	// "java/lang/String" for "Ljava/lang/String;".
	Object string
}

// BaseKind discriminates BaseType.
type BaseKind uint8

const (
	BaseKindByte BaseKind = iota
	BaseKindChar
	BaseKindDouble
	BaseKindFloat
	BaseKindInt
	BaseKindLong
	BaseKindObject
	BaseKindShort
	BaseKindBoolean
)

func (k BaseKind) String() string {
	switch k {
	case BaseKindByte:
		return "byte"
	case BaseKindChar:
		return "char"
	case BaseKindDouble:
		return "double"
	case BaseKindFloat:
		return "float"
	case BaseKindInt:
		return "int"
	case BaseKindLong:
		return "long"
	case BaseKindObject:
		return "object"
	case BaseKindShort:
		return "short"
	case BaseKindBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// TypeDescriptor is a field type: zero or more array dimensions over a
// BaseType. Grounded on original_source/src/descriptor.rs.
type TypeDescriptor struct {
	Dimensions uint8
	Base       BaseType
}

const maxArrayDimensions = 255

// ParseTypeDescriptor parses a single field descriptor. Over 255 leading
// '[' or a malformed base type fails with InvalidDescriptor.
func ParseTypeDescriptor(s string) (TypeDescriptor, error) {
	rest, dims, err := stripDimensions(s)
	if err != nil {
		return TypeDescriptor{}, err
	}
	base, tail, err := parseBaseType(rest)
	if err != nil {
		return TypeDescriptor{}, err
	}
	if tail != "" {
		return TypeDescriptor{}, newDecodeError(InvalidDescriptor, 0, ContextAttributeContent)
	}
	return TypeDescriptor{Dimensions: dims, Base: base}, nil
}

func stripDimensions(s string) (rest string, dims uint8, err error) {
	n := 0
	for len(s) > 0 && s[0] == '[' {
		n++
		if n > maxArrayDimensions {
			return "", 0, newDecodeError(InvalidDescriptor, 0, ContextAttributeContent)
		}
		s = s[1:]
	}
	return s, uint8(n), nil
}

// parseBaseType parses exactly one base type from the front of s and
// returns the unconsumed tail.
func parseBaseType(s string) (BaseType, string, error) {
	if s == "" {
		return BaseType{}, "", newDecodeError(InvalidDescriptor, 0, ContextAttributeContent)
	}
	switch s[0] {
	case 'B':
		return BaseType{Kind: BaseKindByte}, s[1:], nil
	case 'C':
		return BaseType{Kind: BaseKindChar}, s[1:], nil
	case 'D':
		return BaseType{Kind: BaseKindDouble}, s[1:], nil
	case 'F':
		return BaseType{Kind: BaseKindFloat}, s[1:], nil
	case 'I':
		return BaseType{Kind: BaseKindInt}, s[1:], nil
	case 'J':
		return BaseType{Kind: BaseKindLong}, s[1:], nil
	case 'S':
		return BaseType{Kind: BaseKindShort}, s[1:], nil
	case 'Z':
		return BaseType{Kind: BaseKindBoolean}, s[1:], nil
	case 'L':
		end := strings.IndexByte(s, ';')
		if end <= 1 {
			// end == -1 (no terminator) or end == 1 (empty class name "L;")
			return BaseType{}, "", newDecodeError(InvalidDescriptor, 0, ContextAttributeContent)
		}
		return BaseType{Kind: BaseKindObject, Object: s[1:end]}, s[end+1:], nil
	default:
		return BaseType{}, "", newDecodeError(InvalidDescriptor, 0, ContextAttributeContent)
	}
}

// MethodDescriptor is a method signature: ordered parameter types plus an
// optional return type (nil Return means void, 'V').
type MethodDescriptor struct {
	Parameters []TypeDescriptor
	Return     *TypeDescriptor
}

// ParseMethodDescriptor parses "(<param>*)<return>" where <return> may
// additionally be 'V' for void.
func ParseMethodDescriptor(s string) (MethodDescriptor, error) {
	if len(s) == 0 || s[0] != '(' {
		return MethodDescriptor{}, newDecodeError(InvalidDescriptor, 0, ContextAttributeContent)
	}
	s = s[1:]
	var params []TypeDescriptor
	for len(s) > 0 && s[0] != ')' {
		rest, dims, err := stripDimensions(s)
		if err != nil {
			return MethodDescriptor{}, err
		}
		base, tail, err := parseBaseType(rest)
		if err != nil {
			return MethodDescriptor{}, err
		}
		params = append(params, TypeDescriptor{Dimensions: dims, Base: base})
		s = tail
	}
	if len(s) == 0 {
		return MethodDescriptor{}, newDecodeError(InvalidDescriptor, 0, ContextAttributeContent)
	}
	s = s[1:] // consume ')'

	if s == "V" {
		return MethodDescriptor{Parameters: params, Return: nil}, nil
	}
	ret, err := ParseTypeDescriptor(s)
	if err != nil {
		return MethodDescriptor{}, err
	}
	return MethodDescriptor{Parameters: params, Return: &ret}, nil
}
