// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "testing"

func TestDecodeTargetInfoTypeParameter(t *testing.T) {
	d := newDecoder([]byte{0x02}, ContextAttributeContent)
	target, err := decodeTargetInfo(d, 0x00)
	if err != nil {
		t.Fatalf("decodeTargetInfo: %v", err)
	}
	if target.Kind != TargetTypeParameter || target.TypeParameterIndex != 2 {
		t.Fatalf("target = %+v, want TypeParameter index 2", target)
	}
}

func TestDecodeTargetInfoSuperType(t *testing.T) {
	d := newDecoder([]byte{0xFF, 0xFF}, ContextAttributeContent)
	target, err := decodeTargetInfo(d, 0x10)
	if err != nil {
		t.Fatalf("decodeTargetInfo: %v", err)
	}
	if target.Kind != TargetSuperType || target.SuperTypeIndex != 0xFFFF {
		t.Fatalf("target = %+v, want SuperType 0xFFFF (extended class)", target)
	}
}

func TestDecodeTargetInfoEmpty(t *testing.T) {
	// Empty target_info shapes (0x13-0x15) consume no bytes.
	d := newDecoder(nil, ContextAttributeContent)
	target, err := decodeTargetInfo(d, 0x14)
	if err != nil {
		t.Fatalf("decodeTargetInfo: %v", err)
	}
	if target.Kind != TargetEmpty {
		t.Fatalf("target = %+v, want Empty", target)
	}
}

func TestDecodeTargetInfoLocalVarTable(t *testing.T) {
	data := []byte{
		0x00, 0x02, // table_length = 2
		0x00, 0x00, 0x00, 0x05, 0x00, 0x01, // {start=0, length=5, index=1}
		0x00, 0x05, 0x00, 0x03, 0x00, 0x02, // {start=5, length=3, index=2}
	}
	d := newDecoder(data, ContextAttributeContent)
	target, err := decodeTargetInfo(d, 0x40)
	if err != nil {
		t.Fatalf("decodeTargetInfo: %v", err)
	}
	want := []LocalVarTarget{
		{StartPC: 0, Length: 5, Index: 1},
		{StartPC: 5, Length: 3, Index: 2},
	}
	if target.Kind != TargetLocalVar || len(target.LocalVars) != len(want) {
		t.Fatalf("target = %+v, want %d LocalVar entries", target, len(want))
	}
	for i, v := range want {
		if target.LocalVars[i] != v {
			t.Errorf("LocalVars[%d] = %+v, want %+v", i, target.LocalVars[i], v)
		}
	}
}

func TestDecodeTargetInfoTypeArgument(t *testing.T) {
	data := []byte{0x00, 0x0A, 0x01} // offset=10, type_argument_index=1
	d := newDecoder(data, ContextAttributeContent)
	target, err := decodeTargetInfo(d, 0x47)
	if err != nil {
		t.Fatalf("decodeTargetInfo: %v", err)
	}
	if target.Kind != TargetTypeArgument || target.Offset != 10 || target.TypeArgumentIndex != 1 {
		t.Fatalf("target = %+v, want TypeArgument offset=10 index=1", target)
	}
}

func TestDecodeTargetInfoUnknownTargetType(t *testing.T) {
	d := newDecoder(nil, ContextAttributeContent)
	if _, err := decodeTargetInfo(d, 0xFF); err == nil {
		t.Fatalf("expected InvalidTag for an unrecognized target_type")
	} else if de, ok := err.(*DecodeError); !ok || de.Kind != InvalidTag {
		t.Fatalf("error = %v, want InvalidTag", err)
	}
}

func TestDecodeTypePath(t *testing.T) {
	data := []byte{
		0x02,       // path_length = 2
		0x00, 0x00, // {ARRAY, 0}
		0x03, 0x01, // {TYPE_ARGUMENT, 1}
	}
	d := newDecoder(data, ContextAttributeContent)
	path, err := decodeTypePath(d)
	if err != nil {
		t.Fatalf("decodeTypePath: %v", err)
	}
	want := []TypePathEntry{{TypePathKind: 0, TypeArgumentIndex: 0}, {TypePathKind: 3, TypeArgumentIndex: 1}}
	if len(path) != len(want) {
		t.Fatalf("path = %+v, want %d entries", path, len(want))
	}
	for i, e := range want {
		if path[i] != e {
			t.Errorf("path[%d] = %+v, want %+v", i, path[i], e)
		}
	}
}
