// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"strings"
	"testing"
)

func TestParseTypeDescriptorArrayDimensions(t *testing.T) {
	at255 := strings.Repeat("[", 255) + "I"
	desc, err := ParseTypeDescriptor(at255)
	if err != nil {
		t.Fatalf("255 dimensions: %v", err)
	}
	if desc.Dimensions != 255 || desc.Base.Kind != BaseKindInt {
		t.Fatalf("descriptor = %+v, want 255 dims of int", desc)
	}

	at256 := strings.Repeat("[", 256) + "I"
	if _, err := ParseTypeDescriptor(at256); err == nil {
		t.Fatalf("256 dimensions: expected InvalidDescriptor, got nil")
	} else if de, ok := err.(*DecodeError); !ok || de.Kind != InvalidDescriptor {
		t.Fatalf("256 dimensions error = %v, want InvalidDescriptor", err)
	}
}

func TestParseTypeDescriptorObjectReference(t *testing.T) {
	desc, err := ParseTypeDescriptor("Ljava/lang/String;")
	if err != nil {
		t.Fatalf("Ljava/lang/String;: %v", err)
	}
	if desc.Base.Kind != BaseKindObject || desc.Base.Object != "java/lang/String" {
		t.Fatalf("descriptor = %+v, want object java/lang/String", desc)
	}
}

func TestParseTypeDescriptorMalformed(t *testing.T) {
	// "L;" (empty class name), "JJ" (trailing garbage after a complete base
	// type), "L;;" (empty class name plus garbage), "" (empty descriptor),
	// "[" (dimension with no base type), "Q" (unknown base-type letter),
	// and "Ljava/lang/String" (missing terminator).
	cases := []string{"L;", "JJ", "L;;", "", "[", "Q", "Ljava/lang/String"}
	for _, c := range cases {
		if _, err := ParseTypeDescriptor(c); err == nil {
			t.Errorf("ParseTypeDescriptor(%q): expected error, got nil", c)
		} else if de, ok := err.(*DecodeError); !ok || de.Kind != InvalidDescriptor {
			t.Errorf("ParseTypeDescriptor(%q) error = %v, want InvalidDescriptor", c, err)
		}
	}
}

func TestParseMethodDescriptor(t *testing.T) {
	desc, err := ParseMethodDescriptor("(ILjava/lang/String;[I)V")
	if err != nil {
		t.Fatalf("ParseMethodDescriptor: %v", err)
	}
	if len(desc.Parameters) != 3 {
		t.Fatalf("Parameters = %+v, want 3 entries", desc.Parameters)
	}
	if desc.Parameters[0].Base.Kind != BaseKindInt {
		t.Errorf("param 0 = %+v, want int", desc.Parameters[0])
	}
	if desc.Parameters[1].Base.Kind != BaseKindObject || desc.Parameters[1].Base.Object != "java/lang/String" {
		t.Errorf("param 1 = %+v, want object java/lang/String", desc.Parameters[1])
	}
	if desc.Parameters[2].Dimensions != 1 || desc.Parameters[2].Base.Kind != BaseKindInt {
		t.Errorf("param 2 = %+v, want int[]", desc.Parameters[2])
	}
	if desc.Return != nil {
		t.Fatalf("Return = %+v, want nil (void)", desc.Return)
	}
}

func TestParseMethodDescriptorNonVoidReturn(t *testing.T) {
	desc, err := ParseMethodDescriptor("()Ljava/lang/Object;")
	if err != nil {
		t.Fatalf("ParseMethodDescriptor: %v", err)
	}
	if len(desc.Parameters) != 0 {
		t.Fatalf("Parameters = %+v, want none", desc.Parameters)
	}
	if desc.Return == nil || desc.Return.Base.Kind != BaseKindObject || desc.Return.Base.Object != "java/lang/Object" {
		t.Fatalf("Return = %+v, want object java/lang/Object", desc.Return)
	}
}

func TestParseMethodDescriptorMissingParen(t *testing.T) {
	if _, err := ParseMethodDescriptor("I)V"); err == nil {
		t.Fatalf("expected InvalidDescriptor for missing leading '('")
	}
	if _, err := ParseMethodDescriptor("(IV"); err == nil {
		t.Fatalf("expected InvalidDescriptor for missing ')'")
	}
}
