// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// VerificationKind discriminates VerificationType, JVM spec §4.7.4.
type VerificationKind uint8

const (
	VerificationTop VerificationKind = iota
	VerificationInteger
	VerificationFloat
	VerificationDouble
	VerificationLong
	VerificationNull
	VerificationUninitializedThis
	VerificationObject
	VerificationUninitialized
)

// VerificationType is one stack or local-variable slot's type in a stack
// map frame.
type VerificationType struct {
	Kind  VerificationKind
	Class Index[ClassItemTag] // set when Kind == VerificationObject
	Offset uint16             // bytecode offset of the "new" that produced this, when Kind == VerificationUninitialized
}

func decodeVerificationType(d *decoder) (VerificationType, error) {
	tag, err := d.readU8()
	if err != nil {
		return VerificationType{}, err
	}
	switch tag {
	case 0:
		return VerificationType{Kind: VerificationTop}, nil
	case 1:
		return VerificationType{Kind: VerificationInteger}, nil
	case 2:
		return VerificationType{Kind: VerificationFloat}, nil
	case 3:
		return VerificationType{Kind: VerificationDouble}, nil
	case 4:
		return VerificationType{Kind: VerificationLong}, nil
	case 5:
		return VerificationType{Kind: VerificationNull}, nil
	case 6:
		return VerificationType{Kind: VerificationUninitializedThis}, nil
	case 7:
		class, err := readIndex[ClassItemTag](d)
		if err != nil {
			return VerificationType{}, err
		}
		return VerificationType{Kind: VerificationObject, Class: class}, nil
	case 8:
		offset, err := d.readU16()
		if err != nil {
			return VerificationType{}, err
		}
		return VerificationType{Kind: VerificationUninitialized, Offset: offset}, nil
	default:
		return VerificationType{}, newDecodeError(InvalidTag, d.filePosition(), d.context())
	}
}

// StackMapFrameKind discriminates StackMapFrame, per JVM spec §4.7.4's
// frame_type ranges.
type StackMapFrameKind uint8

const (
	FrameSame StackMapFrameKind = iota
	FrameSameLocals1StackItem
	FrameSameLocals1StackItemExtended
	FrameChop
	FrameSameExtended
	FrameAppend
	FrameFull
)

// StackMapFrame is one decoded entry of a StackMapTable attribute. Offset
// is the absolute bytecode offset this frame applies to, already resolved
// from the cumulative offset-delta rule in spec.md §4.6 (the first frame's
// Offset is its raw offset_delta; every later frame's Offset is the
// previous frame's Offset + offset_delta + 1).
type StackMapFrame struct {
	Kind       StackMapFrameKind
	Offset     int
	ChopCount  uint8 // FrameChop only: number of locals removed (1..=3)
	Stack      []VerificationType
	Locals     []VerificationType // FrameAppend / FrameFull only
}

func decodeStackMapTable(d *decoder) ([]StackMapFrame, error) {
	count, err := d.readU16()
	if err != nil {
		return nil, err
	}
	frames := make([]StackMapFrame, 0, count)
	prevOffset := -1
	for i := uint16(0); i < count; i++ {
		frameType, err := d.readU8()
		if err != nil {
			return nil, err
		}
		var frame StackMapFrame
		switch {
		case frameType <= 63:
			frame = StackMapFrame{Kind: FrameSame, Offset: int(frameType)}
		case frameType <= 127:
			vt, err := decodeVerificationType(d)
			if err != nil {
				return nil, err
			}
			frame = StackMapFrame{Kind: FrameSameLocals1StackItem, Offset: int(frameType) - 64, Stack: []VerificationType{vt}}
		case frameType >= 128 && frameType <= 246:
			return nil, newDecodeError(TagReserved, d.filePosition(), d.context())
		case frameType == 247:
			offsetDelta, err := d.readU16()
			if err != nil {
				return nil, err
			}
			vt, err := decodeVerificationType(d)
			if err != nil {
				return nil, err
			}
			frame = StackMapFrame{Kind: FrameSameLocals1StackItemExtended, Offset: int(offsetDelta), Stack: []VerificationType{vt}}
		case frameType >= 248 && frameType <= 250:
			offsetDelta, err := d.readU16()
			if err != nil {
				return nil, err
			}
			frame = StackMapFrame{Kind: FrameChop, Offset: int(offsetDelta), ChopCount: 251 - frameType}
		case frameType == 251:
			offsetDelta, err := d.readU16()
			if err != nil {
				return nil, err
			}
			frame = StackMapFrame{Kind: FrameSameExtended, Offset: int(offsetDelta)}
		case frameType >= 252 && frameType <= 254:
			offsetDelta, err := d.readU16()
			if err != nil {
				return nil, err
			}
			localsCount := int(frameType - 251)
			locals := make([]VerificationType, localsCount)
			for j := 0; j < localsCount; j++ {
				locals[j], err = decodeVerificationType(d)
				if err != nil {
					return nil, err
				}
			}
			frame = StackMapFrame{Kind: FrameAppend, Offset: int(offsetDelta), Locals: locals}
		case frameType == 255:
			offsetDelta, err := d.readU16()
			if err != nil {
				return nil, err
			}
			localsCount, err := d.readU16()
			if err != nil {
				return nil, err
			}
			locals := make([]VerificationType, localsCount)
			for j := range locals {
				locals[j], err = decodeVerificationType(d)
				if err != nil {
					return nil, err
				}
			}
			stackCount, err := d.readU16()
			if err != nil {
				return nil, err
			}
			stack := make([]VerificationType, stackCount)
			for j := range stack {
				stack[j], err = decodeVerificationType(d)
				if err != nil {
					return nil, err
				}
			}
			frame = StackMapFrame{Kind: FrameFull, Offset: int(offsetDelta), Locals: locals, Stack: stack}
		default:
			return nil, newDecodeError(InvalidTag, d.filePosition(), d.context())
		}

		if prevOffset < 0 {
			prevOffset = frame.Offset
		} else {
			prevOffset = prevOffset + frame.Offset + 1
		}
		frame.Offset = prevOffset
		frames = append(frames, frame)
	}
	return frames, nil
}
