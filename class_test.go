// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "testing"

func TestParseMagicCheck(t *testing.T) {
	good := []byte{0xCA, 0xFE, 0xBA, 0xBE, 0x00, 0x00, 0x00, 0x38, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	class, err := Parse(good)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if class.Version() != (Version{Major: 56, Minor: 0}) {
		t.Fatalf("Version() = %+v, want {56 0}", class.Version())
	}

	bad := []byte{0xBE, 0xBA, 0xFE, 0xCA}
	_, err = Parse(bad)
	de, ok := err.(*DecodeError)
	if !ok || de.Kind != InvalidPrefix || de.Position != 0 {
		t.Fatalf("Parse(bad magic) error = %+v, want InvalidPrefix at 0", err)
	}
}

func TestParseTruncated(t *testing.T) {
	data := []byte{0xCA, 0xFE, 0xBA, 0xBE, 0x00, 0x00, 0x00, 0x38, 0x00}
	_, err := Parse(data)
	de, ok := err.(*DecodeError)
	if !ok || de.Kind != UnexpectedEoi {
		t.Fatalf("Parse(9 bytes) error = %+v, want UnexpectedEoi", err)
	}
}

func TestBuilderMinimalClassRoundTrip(t *testing.T) {
	thisClass, err := NewClassBuilder().
		Version(Version8).
		AccessFlags(AccPublic | AccSuper).
		ThisClass("Test")
	if err != nil {
		t.Fatalf("ThisClass: %v", err)
	}
	superClass, err := thisClass.SuperClass("java/lang/Object")
	if err != nil {
		t.Fatalf("SuperClass: %v", err)
	}
	fields, err := superClass.Interfaces(func(*InterfaceWriter) error { return nil })
	if err != nil {
		t.Fatalf("Interfaces: %v", err)
	}
	methods, err := fields.Fields(func(*FieldsWriter) error { return nil })
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	attrs, err := methods.Methods(func(*MethodsWriter) error { return nil })
	if err != nil {
		t.Fatalf("Methods: %v", err)
	}
	built, err := attrs.Attributes(func(aw *AttributesWriter) error {
		return aw.SourceFile("Test.java")
	})
	if err != nil {
		t.Fatalf("Attributes: %v", err)
	}

	data := built.IntoBytes()
	class, err := Parse(data)
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if class.Version() != Version8 {
		t.Fatalf("Version() = %+v, want V8", class.Version())
	}

	thisValue, err := class.Pool().RetrieveClass(class.ThisClass())
	if err != nil {
		t.Fatalf("RetrieveClass(this): %v", err)
	}
	if thisValue.Name.String() != "Test" {
		t.Fatalf("this_class name = %q, want Test", thisValue.Name.String())
	}

	superValue, err := class.Pool().RetrieveClass(class.SuperClass())
	if err != nil {
		t.Fatalf("RetrieveClass(super): %v", err)
	}
	if superValue.Name.String() != "java/lang/Object" {
		t.Fatalf("super_class name = %q, want java/lang/Object", superValue.Name.String())
	}

	classAttrs := class.Attributes()
	attr, ok := classAttrs.Next()
	if !ok {
		t.Fatalf("expected one class attribute")
	}
	if _, ok := classAttrs.Next(); ok {
		t.Fatalf("expected exactly one class attribute")
	}
	content, err := attr.ReadContent(class.Pool())
	if err != nil {
		t.Fatalf("ReadContent: %v", err)
	}
	if content.Kind != AttrKindSourceFile {
		t.Fatalf("attribute kind = %v, want SourceFile", content.Kind)
	}
	srcName, err := class.Pool().GetUtf8(content.SourceFile)
	if err != nil {
		t.Fatalf("GetUtf8(SourceFile): %v", err)
	}
	if srcName.Content.String() != "Test.java" {
		t.Fatalf("SourceFile = %q, want Test.java", srcName.Content.String())
	}
}

func TestBuilderValuesMissingNotApplicable(t *testing.T) {
	// Go's stage chain makes omitting a stage a compile error rather than
	// a runtime ValuesMissing, per spec §9's guidance for languages
	// without phantom types; this test documents that the chain below is
	// the only well-typed path through the builder.
	v := NewClassBuilder().Version(Version8)
	if v == nil {
		t.Fatalf("Version returned nil stage")
	}
}
