// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// Fuzz is the entry point for structural class-file fuzzing, mirroring
// original_source/fuzz/fuzz_targets' class-file target: parse, then walk
// every lazy section so malformed nested data gets exercised too.
func Fuzz(data []byte) int {
	class, err := Parse(data)
	if err != nil {
		return 0
	}

	interfaces := class.Interfaces()
	for _, ok := interfaces.Next(); ok; _, ok = interfaces.Next() {
	}

	fields := class.Fields()
	for field, ok := fields.Next(); ok; field, ok = fields.Next() {
		attrs := field.Attributes()
		for attr, ok := attrs.Next(); ok; attr, ok = attrs.Next() {
			_, _ = attr.ReadContent(class.Pool())
		}
	}

	methods := class.Methods()
	for method, ok := methods.Next(); ok; method, ok = methods.Next() {
		attrs := method.Attributes()
		for attr, ok := attrs.Next(); ok; attr, ok = attrs.Next() {
			content, err := attr.ReadContent(class.Pool())
			if err == nil && content.Kind == AttrKindCode {
				insns := content.Code.Iter()
				for _, ok := insns.Next(); ok; _, ok = insns.Next() {
				}
			}
		}
	}

	attrs := class.Attributes()
	for attr, ok := attrs.Next(); ok; attr, ok = attrs.Next() {
		_, _ = attr.ReadContent(class.Pool())
	}

	return 1
}
