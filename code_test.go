// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "testing"

// TestCodeBuilderSimpleRoundTrip builds a single-instruction method body
// (just `return`) with a LineNumberTable entry, then verifies the
// decoded Code attribute reports the expected bytes and nested table.
func TestCodeBuilderSimpleRoundTrip(t *testing.T) {
	var startRef LabelRef

	thisStage, err := NewClassBuilder().
		Version(Version8).
		AccessFlags(AccPublic | AccSuper).
		ThisClass("Test")
	if err != nil {
		t.Fatalf("ThisClass: %v", err)
	}
	superStage, err := thisStage.SuperClass("java/lang/Object")
	if err != nil {
		t.Fatalf("SuperClass: %v", err)
	}
	fieldsStage, err := superStage.Interfaces(func(*InterfaceWriter) error { return nil })
	if err != nil {
		t.Fatalf("Interfaces: %v", err)
	}
	methodsStage, err := fieldsStage.Fields(func(*FieldsWriter) error { return nil })
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	attrsStage, err := methodsStage.Methods(func(mw *MethodsWriter) error {
		descStage, err := mw.Method().AccessFlags(AccPublic).Name("run")
		if err != nil {
			return err
		}
		memberAttrStage, err := descStage.Descriptor("()V")
		if err != nil {
			return err
		}
		return memberAttrStage.Attributes(func(aw *AttributesWriter) error {
			return aw.Code(func(cs *CodeMaxStack) (*CodeEnd, error) {
				excStage, err := cs.MaxStack(1).MaxLocals(1).Instructions(func(iw *InstructionWriter) error {
					var startLabel Label
					startLabel, startRef = iw.NewLabel()
					iw.PlaceLabel(startLabel)
					iw.Op(Opcode(177)) // return
					return nil
				})
				if err != nil {
					return nil, err
				}
				nextStage, err := excStage.ExceptionTable(func(*ExceptionTableWriter) error { return nil })
				if err != nil {
					return nil, err
				}
				return nextStage.Attributes(func(aw2 *AttributesWriter) error {
					return aw2.LineNumberTable([]LineNumberWrite{{At: startRef, Line: 10}})
				})
			})
		})
	})
	if err != nil {
		t.Fatalf("Methods: %v", err)
	}
	built, err := attrsStage.Attributes(func(*AttributesWriter) error { return nil })
	if err != nil {
		t.Fatalf("Attributes: %v", err)
	}

	class, err := Parse(built.IntoBytes())
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}

	it := class.Methods()
	method, ok := it.Next()
	if !ok {
		t.Fatalf("expected one method")
	}
	attrIt := method.Attributes()
	attr, ok := attrIt.Next()
	if !ok {
		t.Fatalf("expected one method attribute")
	}
	content, err := attr.ReadContent(class.Pool())
	if err != nil {
		t.Fatalf("ReadContent: %v", err)
	}
	if content.Kind != AttrKindCode {
		t.Fatalf("attribute kind = %v, want Code", content.Kind)
	}
	if content.Code.MaxStack != 1 || content.Code.MaxLocals != 1 {
		t.Fatalf("Code = %+v, want MaxStack=1 MaxLocals=1", content.Code)
	}
	if len(content.Code.Instructions) != 1 || content.Code.Instructions[0] != 177 {
		t.Fatalf("Instructions = %v, want [177]", content.Code.Instructions)
	}

	insns := content.Code.Iter()
	insn, ok := insns.Next()
	if !ok {
		t.Fatalf("expected one decoded instruction")
	}
	if insn.Opcode != 177 || insn.Offset != 0 {
		t.Fatalf("instruction = %+v, want opcode 177 at offset 0", insn)
	}
	if _, ok := insns.Next(); ok {
		t.Fatalf("expected exactly one instruction")
	}

	nested := content.Code.Attributes
	if len(nested) != 1 {
		t.Fatalf("nested code attributes = %d, want 1", len(nested))
	}
	nestedContent, err := nested[0].ReadContent(class.Pool())
	if err != nil {
		t.Fatalf("ReadContent(nested): %v", err)
	}
	if nestedContent.Kind != AttrKindLineNumberTable {
		t.Fatalf("nested kind = %v, want LineNumberTable", nestedContent.Kind)
	}
	if len(nestedContent.LineNumberTable) != 1 || nestedContent.LineNumberTable[0] != (LineNumberEntry{StartPC: 0, Line: 10}) {
		t.Fatalf("LineNumberTable = %+v, want [{0 10}]", nestedContent.LineNumberTable)
	}
}
