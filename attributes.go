// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "github.com/frozolotl/classfile/mutf8"

// Attribute is a lazily-decoded attribute: its name index plus a borrowed
// payload sub-slice. The payload is only parsed into an AttributeContent
// on demand, via ReadContent. Grounded on
// original_source/src/reader/attributes/mod.rs.
type Attribute struct {
	name    Index[Utf8Tag]
	content *decoder
}

// Name returns the attribute's name index.
func (a Attribute) Name() Index[Utf8Tag] { return a.name }

// Payload returns the attribute's raw, undecoded bytes.
func (a Attribute) Payload() []byte { return a.content.remaining() }

func decodeAttribute(d *decoder) (Attribute, error) {
	name, err := readIndex[Utf8Tag](d)
	if err != nil {
		return Attribute{}, err
	}
	length, err := d.readU32()
	if err != nil {
		return Attribute{}, err
	}
	content, err := d.limit(int(length), ContextAttributes)
	if err != nil {
		return Attribute{}, err
	}
	if err := d.advance(int(length)); err != nil {
		return Attribute{}, err
	}
	return Attribute{name: name, content: content}, nil
}

// skipAttributeEntries skips count attributes' 2-byte name index and
// u32-length payload each, advancing d past all of them without decoding
// anything.
func skipAttributeEntries(d *decoder, count uint16) error {
	for i := uint16(0); i < count; i++ {
		if err := d.advance(2); err != nil {
			return err
		}
		length, err := d.readU32()
		if err != nil {
			return err
		}
		if err := d.advance(int(length)); err != nil {
			return err
		}
	}
	return nil
}

// skipAttributes reads a u16 attribute count then skips that many
// attributes, advancing d past all of them without decoding anything.
func skipAttributes(d *decoder) error {
	count, err := d.readU16()
	if err != nil {
		return err
	}
	return skipAttributeEntries(d, count)
}

// skipAttributesSection reads a u16 attribute count, then produces a
// cloneable sub-decoder spanning exactly the attribute list that follows
// (so the count word itself is not part of what iterators later replay),
// mirroring original_source's Attributes::decode.
func skipAttributesSection(d *decoder) (*decoder, error) {
	count, err := d.readU16()
	if err != nil {
		return nil, err
	}
	start := d.clone()
	if err := skipAttributeEntries(d, count); err != nil {
		return nil, err
	}
	length := start.bytesRemaining() - d.bytesRemaining()
	return start.limit(length, ContextAttributes)
}

// Attributes is a fused, cloneable iterator over a sequence of attributes.
type Attributes struct{ d *decoder }

// Next decodes the next attribute, or reports ok=false once exhausted.
func (it *Attributes) Next() (Attribute, bool) {
	if it.d.bytesRemaining() == 0 {
		return Attribute{}, false
	}
	attr, err := decodeAttribute(it.d)
	if err != nil {
		return Attribute{}, false
	}
	return attr, true
}

// AttributeContent is the decoded payload of a named attribute.
type AttributeContent struct {
	Kind                                 AttributeKind
	AnnotationDefault                    ElementValue
	BootstrapMethods                     []BootstrapMethod
	Code                                 Code
	ConstantValue                        Index[AnyTag]
	EnclosingMethod                      EnclosingMethodInfo
	Exceptions                           []Index[ClassItemTag]
	InnerClasses                         []InnerClass
	LineNumberTable                      []LineNumberEntry
	LocalVariableTable                   []LocalVariableEntry
	LocalVariableTypeTable              []LocalVariableTypeEntry
	ModuleMainClass                      Index[ClassItemTag]
	ModulePackages                       []Index[PackageItemTag]
	NestHost                             Index[ClassItemTag]
	NestMembers                          []Index[ClassItemTag]
	Annotations                          []Annotation
	ParameterAnnotations                 [][]Annotation
	TypeAnnotations                      []TypeAnnotation
	Signature                            Index[Utf8Tag]
	SourceDebugExtension                 *mutf8.Str
	SourceFile                           Index[Utf8Tag]
	StackMapTable                        []StackMapFrame
	Raw                                  []byte
}

// AttributeKind discriminates AttributeContent.
type AttributeKind uint8

const (
	AttrKindUnknown AttributeKind = iota
	AttrKindAnnotationDefault
	AttrKindBootstrapMethods
	AttrKindCode
	AttrKindConstantValue
	AttrKindDeprecated
	AttrKindEnclosingMethod
	AttrKindExceptions
	AttrKindInnerClasses
	AttrKindLineNumberTable
	AttrKindLocalVariableTable
	AttrKindLocalVariableTypeTable
	AttrKindModuleMainClass
	AttrKindModulePackages
	AttrKindNestHost
	AttrKindNestMembers
	AttrKindRuntimeVisibleAnnotations
	AttrKindRuntimeInvisibleAnnotations
	AttrKindRuntimeVisibleParameterAnnotations
	AttrKindRuntimeInvisibleParameterAnnotations
	AttrKindRuntimeVisibleTypeAnnotations
	AttrKindRuntimeInvisibleTypeAnnotations
	AttrKindSignature
	AttrKindSourceDebugExtension
	AttrKindSourceFile
	AttrKindStackMapTable
	AttrKindSynthetic
)

// ReadContent resolves a's name in pool and decodes its payload according
// to the named-dispatch table in SPEC_FULL.md §4.6. Unknown names fail
// with UnknownAttributeName, but the raw payload remains available via
// a.Payload().
func (a Attribute) ReadContent(pool *ConstantPool) (AttributeContent, error) {
	nameItem, err := pool.GetUtf8(a.name)
	if err != nil {
		return AttributeContent{}, err
	}
	name := nameItem.Content.Bytes()
	d := a.content.clone()
	d.setContext(ContextAttributeContent)

	switch string(name) {
	case "AnnotationDefault":
		ev, err := decodeElementValue(d)
		return AttributeContent{Kind: AttrKindAnnotationDefault, AnnotationDefault: ev}, err
	case "BootstrapMethods":
		v, err := decodeBootstrapMethods(d)
		return AttributeContent{Kind: AttrKindBootstrapMethods, BootstrapMethods: v}, err
	case "Code":
		v, err := decodeCode(d)
		return AttributeContent{Kind: AttrKindCode, Code: v}, err
	case "ConstantValue":
		idx, err := readIndex[AnyTag](d)
		return AttributeContent{Kind: AttrKindConstantValue, ConstantValue: idx}, err
	case "Deprecated":
		return AttributeContent{Kind: AttrKindDeprecated}, nil
	case "EnclosingMethod":
		class, err := readIndex[ClassItemTag](d)
		if err != nil {
			return AttributeContent{}, err
		}
		method, err := readIndex[NameAndTypeTag](d)
		return AttributeContent{Kind: AttrKindEnclosingMethod, EnclosingMethod: EnclosingMethodInfo{Class: class, Method: method}}, err
	case "Exceptions":
		v, err := decodeIndexList[ClassItemTag](d)
		return AttributeContent{Kind: AttrKindExceptions, Exceptions: v}, err
	case "InnerClasses":
		v, err := decodeInnerClasses(d)
		return AttributeContent{Kind: AttrKindInnerClasses, InnerClasses: v}, err
	case "LineNumberTable":
		v, err := decodeLineNumberTable(d)
		return AttributeContent{Kind: AttrKindLineNumberTable, LineNumberTable: v}, err
	case "LocalVariableTable":
		v, err := decodeLocalVariableTable(d)
		return AttributeContent{Kind: AttrKindLocalVariableTable, LocalVariableTable: v}, err
	case "LocalVariableTypeTable":
		v, err := decodeLocalVariableTypeTable(d)
		return AttributeContent{Kind: AttrKindLocalVariableTypeTable, LocalVariableTypeTable: v}, err
	case "ModuleMainClass":
		idx, err := readIndex[ClassItemTag](d)
		return AttributeContent{Kind: AttrKindModuleMainClass, ModuleMainClass: idx}, err
	case "ModulePackages":
		v, err := decodeIndexList[PackageItemTag](d)
		return AttributeContent{Kind: AttrKindModulePackages, ModulePackages: v}, err
	case "NestHost":
		idx, err := readIndex[ClassItemTag](d)
		return AttributeContent{Kind: AttrKindNestHost, NestHost: idx}, err
	case "NestMembers":
		v, err := decodeIndexList[ClassItemTag](d)
		return AttributeContent{Kind: AttrKindNestMembers, NestMembers: v}, err
	case "RuntimeVisibleAnnotations":
		v, err := decodeAnnotations(d)
		return AttributeContent{Kind: AttrKindRuntimeVisibleAnnotations, Annotations: v}, err
	case "RuntimeInvisibleAnnotations":
		v, err := decodeAnnotations(d)
		return AttributeContent{Kind: AttrKindRuntimeInvisibleAnnotations, Annotations: v}, err
	case "RuntimeVisibleParameterAnnotations":
		v, err := decodeParameterAnnotations(d)
		return AttributeContent{Kind: AttrKindRuntimeVisibleParameterAnnotations, ParameterAnnotations: v}, err
	case "RuntimeInvisibleParameterAnnotations":
		v, err := decodeParameterAnnotations(d)
		return AttributeContent{Kind: AttrKindRuntimeInvisibleParameterAnnotations, ParameterAnnotations: v}, err
	case "RuntimeVisibleTypeAnnotations":
		v, err := decodeTypeAnnotations(d)
		return AttributeContent{Kind: AttrKindRuntimeVisibleTypeAnnotations, TypeAnnotations: v}, err
	case "RuntimeInvisibleTypeAnnotations":
		v, err := decodeTypeAnnotations(d)
		return AttributeContent{Kind: AttrKindRuntimeInvisibleTypeAnnotations, TypeAnnotations: v}, err
	case "Signature":
		idx, err := readIndex[Utf8Tag](d)
		return AttributeContent{Kind: AttrKindSignature, Signature: idx}, err
	case "SourceDebugExtension":
		str, verr := mutf8.FromBytes(d.remaining())
		if verr != nil {
			return AttributeContent{}, newDecodeError(InvalidMutf8, d.filePosition(), d.context())
		}
		return AttributeContent{Kind: AttrKindSourceDebugExtension, SourceDebugExtension: str}, nil
	case "SourceFile":
		idx, err := readIndex[Utf8Tag](d)
		return AttributeContent{Kind: AttrKindSourceFile, SourceFile: idx}, err
	case "StackMapTable":
		v, err := decodeStackMapTable(d)
		return AttributeContent{Kind: AttrKindStackMapTable, StackMapTable: v}, err
	case "Synthetic":
		return AttributeContent{Kind: AttrKindSynthetic}, nil
	default:
		return AttributeContent{}, newDecodeError(UnknownAttributeName, d.filePosition(), d.context())
	}
}

// EnclosingMethodInfo is the payload of an EnclosingMethod attribute.
type EnclosingMethodInfo struct {
	Class  Index[ClassItemTag]
	Method Index[NameAndTypeTag] // zero means the class isn't immediately enclosed by a method
}

// InnerClass is one entry of an InnerClasses attribute.
type InnerClass struct {
	Inner      Index[ClassItemTag]
	Outer      Index[ClassItemTag] // zero means absent
	Name       Index[Utf8Tag]      // zero means anonymous
	Flags      AccessFlags
}

func decodeInnerClasses(d *decoder) ([]InnerClass, error) {
	count, err := d.readU16()
	if err != nil {
		return nil, err
	}
	out := make([]InnerClass, 0, count)
	for i := uint16(0); i < count; i++ {
		inner, err := readIndex[ClassItemTag](d)
		if err != nil {
			return nil, err
		}
		outer, err := readIndex[ClassItemTag](d)
		if err != nil {
			return nil, err
		}
		name, err := readIndex[Utf8Tag](d)
		if err != nil {
			return nil, err
		}
		flags, err := d.readU16()
		if err != nil {
			return nil, err
		}
		out = append(out, InnerClass{Inner: inner, Outer: outer, Name: name, Flags: AccessFlags(flags)})
	}
	return out, nil
}

// LineNumberEntry maps a bytecode offset to a source line.
type LineNumberEntry struct {
	StartPC uint16
	Line    uint16
}

func decodeLineNumberTable(d *decoder) ([]LineNumberEntry, error) {
	count, err := d.readU16()
	if err != nil {
		return nil, err
	}
	out := make([]LineNumberEntry, 0, count)
	for i := uint16(0); i < count; i++ {
		pc, err := d.readU16()
		if err != nil {
			return nil, err
		}
		line, err := d.readU16()
		if err != nil {
			return nil, err
		}
		out = append(out, LineNumberEntry{StartPC: pc, Line: line})
	}
	return out, nil
}

// LocalVariableEntry describes one local variable's live range.
type LocalVariableEntry struct {
	StartPC    uint16
	Length     uint16
	Name       Index[Utf8Tag]
	Descriptor Index[Utf8Tag]
	Index      uint16
}

func decodeLocalVariableTable(d *decoder) ([]LocalVariableEntry, error) {
	count, err := d.readU16()
	if err != nil {
		return nil, err
	}
	out := make([]LocalVariableEntry, 0, count)
	for i := uint16(0); i < count; i++ {
		startPC, err := d.readU16()
		if err != nil {
			return nil, err
		}
		length, err := d.readU16()
		if err != nil {
			return nil, err
		}
		name, err := readIndex[Utf8Tag](d)
		if err != nil {
			return nil, err
		}
		desc, err := readIndex[Utf8Tag](d)
		if err != nil {
			return nil, err
		}
		index, err := d.readU16()
		if err != nil {
			return nil, err
		}
		out = append(out, LocalVariableEntry{StartPC: startPC, Length: length, Name: name, Descriptor: desc, Index: index})
	}
	return out, nil
}

// LocalVariableTypeEntry is LocalVariableEntry's generic-signature sibling.
type LocalVariableTypeEntry struct {
	StartPC   uint16
	Length    uint16
	Name      Index[Utf8Tag]
	Signature Index[Utf8Tag]
	Index     uint16
}

func decodeLocalVariableTypeTable(d *decoder) ([]LocalVariableTypeEntry, error) {
	count, err := d.readU16()
	if err != nil {
		return nil, err
	}
	out := make([]LocalVariableTypeEntry, 0, count)
	for i := uint16(0); i < count; i++ {
		startPC, err := d.readU16()
		if err != nil {
			return nil, err
		}
		length, err := d.readU16()
		if err != nil {
			return nil, err
		}
		name, err := readIndex[Utf8Tag](d)
		if err != nil {
			return nil, err
		}
		sig, err := readIndex[Utf8Tag](d)
		if err != nil {
			return nil, err
		}
		index, err := d.readU16()
		if err != nil {
			return nil, err
		}
		out = append(out, LocalVariableTypeEntry{StartPC: startPC, Length: length, Name: name, Signature: sig, Index: index})
	}
	return out, nil
}

// BootstrapMethod is one entry of the BootstrapMethods attribute (JVM spec
// §4.7.23), supplementing the shape spec.md's distillation left unspecified
// (see SPEC_FULL.md §4.6).
type BootstrapMethod struct {
	MethodRef Index[MethodHandleTag]
	Arguments []Index[AnyTag]
}

func decodeBootstrapMethods(d *decoder) ([]BootstrapMethod, error) {
	count, err := d.readU16()
	if err != nil {
		return nil, err
	}
	out := make([]BootstrapMethod, 0, count)
	for i := uint16(0); i < count; i++ {
		ref, err := readIndex[MethodHandleTag](d)
		if err != nil {
			return nil, err
		}
		argCount, err := d.readU16()
		if err != nil {
			return nil, err
		}
		args, err := decodeIndexList2[AnyTag](d, argCount)
		if err != nil {
			return nil, err
		}
		out = append(out, BootstrapMethod{MethodRef: ref, Arguments: args})
	}
	return out, nil
}

func decodeIndexList[T any](d *decoder) ([]Index[T], error) {
	count, err := d.readU16()
	if err != nil {
		return nil, err
	}
	return decodeIndexList2[T](d, count)
}

func decodeIndexList2[T any](d *decoder, count uint16) ([]Index[T], error) {
	out := make([]Index[T], 0, count)
	for i := uint16(0); i < count; i++ {
		idx, err := readIndex[T](d)
		if err != nil {
			return nil, err
		}
		out = append(out, idx)
	}
	return out, nil
}
