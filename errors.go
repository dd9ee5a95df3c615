// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"errors"
	"fmt"
)

// Context names the structural region a decoder or encoder was working in
// when an error occurred; it is carried on every DecodeError/EncodeError so
// messages read "<kind> at <byte position> in <context>".
type Context uint8

// Contexts, matching original_source/src/reader/decoding.rs's Context enum.
const (
	ContextStart Context = iota
	ContextConstantPool
	ContextClassInfo
	ContextInterfaces
	ContextFields
	ContextMethods
	ContextAttributes
	ContextAttributeContent
	ContextCode
)

func (c Context) String() string {
	switch c {
	case ContextStart:
		return "start"
	case ContextConstantPool:
		return "constant pool"
	case ContextClassInfo:
		return "class info"
	case ContextInterfaces:
		return "interfaces"
	case ContextFields:
		return "fields"
	case ContextMethods:
		return "methods"
	case ContextAttributes:
		return "attributes"
	case ContextAttributeContent:
		return "attribute content"
	case ContextCode:
		return "code"
	default:
		return "unknown"
	}
}

// DecodeErrorKind is the closed set of ways decoding a class file can fail.
type DecodeErrorKind uint8

const (
	UnexpectedEoi DecodeErrorKind = iota
	InvalidPrefix
	InvalidMutf8
	InvalidDescriptor
	InvalidIndex
	InvalidTag
	UnexpectedTag
	TagReserved
	InvalidInstruction
	UnknownAttributeName
)

func (k DecodeErrorKind) String() string {
	switch k {
	case UnexpectedEoi:
		return "unexpected end of input"
	case InvalidPrefix:
		return "invalid prefix"
	case InvalidMutf8:
		return "invalid modified utf-8"
	case InvalidDescriptor:
		return "invalid descriptor"
	case InvalidIndex:
		return "invalid constant pool index"
	case InvalidTag:
		return "invalid tag"
	case UnexpectedTag:
		return "unexpected tag"
	case TagReserved:
		return "reserved tag"
	case InvalidInstruction:
		return "invalid instruction"
	case UnknownAttributeName:
		return "unknown attribute name"
	default:
		return "unknown decode error"
	}
}

// DecodeError is returned by every fallible decode operation. It always
// carries the byte position and context at which it was raised.
type DecodeError struct {
	Kind     DecodeErrorKind
	Position int
	Context  Context
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s at %d in %s", e.Kind, e.Position, e.Context)
}

func newDecodeError(kind DecodeErrorKind, position int, ctx Context) *DecodeError {
	return &DecodeError{Kind: kind, Position: position, Context: ctx}
}

// EncodeErrorKind is the closed set of ways building a class file can fail.
type EncodeErrorKind uint8

const (
	TooManyItems EncodeErrorKind = iota
	TooManyBytes
	StringTooLong
	IndexNotFitting
	LabelTooFar
	LabelNotPlaced
	InvalidKeyOrder
	IncorrectBounds
	NegativeOffset
	ValuesMissing
	CantChangeAnymore
	ErroredBefore
)

func (k EncodeErrorKind) String() string {
	switch k {
	case TooManyItems:
		return "too many items"
	case TooManyBytes:
		return "too many bytes"
	case StringTooLong:
		return "string too long"
	case IndexNotFitting:
		return "index does not fit"
	case LabelTooFar:
		return "label too far"
	case LabelNotPlaced:
		return "label not placed"
	case InvalidKeyOrder:
		return "invalid key order"
	case IncorrectBounds:
		return "incorrect bounds"
	case NegativeOffset:
		return "negative offset"
	case ValuesMissing:
		return "values missing"
	case CantChangeAnymore:
		return "can't change anymore"
	case ErroredBefore:
		return "errored before"
	default:
		return "unknown encode error"
	}
}

// EncodeError is returned by every fallible encode operation.
type EncodeError struct {
	Kind     EncodeErrorKind
	Position int
	Context  Context
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("%s at %d in %s", e.Kind, e.Position, e.Context)
}

func newEncodeError(kind EncodeErrorKind, position int, ctx Context) *EncodeError {
	return &EncodeError{Kind: kind, Position: position, Context: ctx}
}

// Non-positional, programmer-error sentinels: these do not originate from
// malformed input so they fall outside the closed DecodeError/EncodeError
// taxonomy, matching the teacher's plain errors.New sentinel convention in
// helper.go.
var (
	// ErrNilSink is returned by WriteBytesTo when given a nil io.Writer.
	ErrNilSink = errors.New("classfile: nil sink passed to WriteBytesTo")

	// ErrFileTooSmall is returned when a byte slice is shorter than the
	// minimum 10-byte class-file prefix.
	ErrFileTooSmall = errors.New("classfile: input smaller than the minimum class file prefix")
)
