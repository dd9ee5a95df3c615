// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// Opcode is a single JVM bytecode instruction opcode.
type Opcode uint8

// opcodeMnemonics maps every defined opcode to its JVM spec mnemonic. The
// Rust source this is ported from stubs instruction decoding entirely
// (Open Question in spec.md §9); the table below is supplemented from
// _examples/modten-pkg-inspector/wasm/class-parser/main.go's opcodeNames,
// which independently enumerates the same instruction set.
var opcodeMnemonics = [256]string{
	0: "nop", 1: "aconst_null", 2: "iconst_m1", 3: "iconst_0",
	4: "iconst_1", 5: "iconst_2", 6: "iconst_3", 7: "iconst_4",
	8: "iconst_5", 9: "lconst_0", 10: "lconst_1", 11: "fconst_0",
	12: "fconst_1", 13: "fconst_2", 14: "dconst_0", 15: "dconst_1",
	16: "bipush", 17: "sipush", 18: "ldc", 19: "ldc_w",
	20: "ldc2_w", 21: "iload", 22: "lload", 23: "fload",
	24: "dload", 25: "aload", 26: "iload_0", 27: "iload_1",
	28: "iload_2", 29: "iload_3", 30: "lload_0", 31: "lload_1",
	32: "lload_2", 33: "lload_3", 34: "fload_0", 35: "fload_1",
	36: "fload_2", 37: "fload_3", 38: "dload_0", 39: "dload_1",
	40: "dload_2", 41: "dload_3", 42: "aload_0", 43: "aload_1",
	44: "aload_2", 45: "aload_3", 46: "iaload", 47: "laload",
	48: "faload", 49: "daload", 50: "aaload", 51: "baload",
	52: "caload", 53: "saload", 54: "istore", 55: "lstore",
	56: "fstore", 57: "dstore", 58: "astore", 59: "istore_0",
	60: "istore_1", 61: "istore_2", 62: "istore_3", 63: "lstore_0",
	64: "lstore_1", 65: "lstore_2", 66: "lstore_3", 67: "fstore_0",
	68: "fstore_1", 69: "fstore_2", 70: "fstore_3", 71: "dstore_0",
	72: "dstore_1", 73: "dstore_2", 74: "dstore_3", 75: "astore_0",
	76: "astore_1", 77: "astore_2", 78: "astore_3", 79: "iastore",
	80: "lastore", 81: "fastore", 82: "dastore", 83: "aastore",
	84: "bastore", 85: "castore", 86: "sastore", 87: "pop",
	88: "pop2", 89: "dup", 90: "dup_x1", 91: "dup_x2",
	92: "dup2", 93: "dup2_x1", 94: "dup2_x2", 95: "swap",
	96: "iadd", 97: "ladd", 98: "fadd", 99: "dadd",
	100: "isub", 101: "lsub", 102: "fsub", 103: "dsub",
	104: "imul", 105: "lmul", 106: "fmul", 107: "dmul",
	108: "idiv", 109: "ldiv", 110: "fdiv", 111: "ddiv",
	112: "irem", 113: "lrem", 114: "frem", 115: "drem",
	116: "ineg", 117: "lneg", 118: "fneg", 119: "dneg",
	120: "ishl", 121: "lshl", 122: "ishr", 123: "lshr",
	124: "iushr", 125: "lushr", 126: "iand", 127: "land",
	128: "ior", 129: "lor", 130: "ixor", 131: "lxor",
	132: "iinc", 133: "i2l", 134: "i2f", 135: "i2d",
	136: "l2i", 137: "l2f", 138: "l2d", 139: "f2i",
	140: "f2l", 141: "f2d", 142: "d2i", 143: "d2l",
	144: "d2f", 145: "i2b", 146: "i2c", 147: "i2s",
	148: "lcmp", 149: "fcmpl", 150: "fcmpg", 151: "dcmpl",
	152: "dcmpg", 153: "ifeq", 154: "ifne", 155: "iflt",
	156: "ifge", 157: "ifgt", 158: "ifle", 159: "if_icmpeq",
	160: "if_icmpne", 161: "if_icmplt", 162: "if_icmpge",
	163: "if_icmpgt", 164: "if_icmple", 165: "if_acmpeq",
	166: "if_acmpne", 167: "goto", 168: "jsr", 169: "ret",
	170: "tableswitch", 171: "lookupswitch", 172: "ireturn",
	173: "lreturn", 174: "freturn", 175: "dreturn", 176: "areturn",
	177: "return", 178: "getstatic", 179: "putstatic",
	180: "getfield", 181: "putfield", 182: "invokevirtual",
	183: "invokespecial", 184: "invokestatic", 185: "invokeinterface",
	186: "invokedynamic", 187: "new", 188: "newarray",
	189: "anewarray", 190: "arraylength", 191: "athrow",
	192: "checkcast", 193: "instanceof", 194: "monitorenter",
	195: "monitorexit", 196: "wide", 197: "multianewarray",
	198: "ifnull", 199: "ifnonnull", 200: "goto_w", 201: "jsr_w",
}

// Mnemonic returns op's JVM spec name, or "" for every opcode from 0xCA
// through 0xFF, including the reserved breakpoint/impdep1/impdep2 opcodes.
func (op Opcode) Mnemonic() string { return opcodeMnemonics[op] }

// Instruction is one decoded bytecode instruction: its offset within the
// code array, the raw opcode, the operand bytes that follow it (for
// tableswitch/lookupswitch these include the alignment padding verbatim),
// and the total length in bytes including the opcode.
type Instruction struct {
	Offset   int
	Opcode   Opcode
	Operands []byte
	Length   int
}

// operandWidths gives the fixed operand length (in bytes, not counting the
// opcode itself) for every opcode whose operand size doesn't depend on the
// instruction stream. Variable-length opcodes (tableswitch, lookupswitch,
// wide) are handled specially in DecodeInstruction.
var operandWidths = map[Opcode]int{
	16: 1, 17: 2, 18: 1, 19: 2, 20: 2,
	21: 1, 22: 1, 23: 1, 24: 1, 25: 1,
	54: 1, 55: 1, 56: 1, 57: 1, 58: 1,
	132: 2,
	153: 2, 154: 2, 155: 2, 156: 2, 157: 2, 158: 2,
	159: 2, 160: 2, 161: 2, 162: 2, 163: 2, 164: 2, 165: 2, 166: 2,
	167: 2, 168: 2, 169: 1,
	178: 2, 179: 2, 180: 2, 181: 2, 182: 2, 183: 2, 184: 2,
	185: 4, 186: 4,
	187: 2, 188: 1, 189: 2,
	192: 2, 193: 2,
	197: 3,
	198: 2, 199: 2, 200: 4, 201: 4,
}

// DecodeInstruction decodes exactly one instruction starting at code[0],
// which must be at code-relative bytecode offset pos (needed for
// tableswitch/lookupswitch padding, which aligns to the start of the code
// array, not the start of the file). Truncated input fails with
// UnexpectedEoi; empty input, undefined opcodes, a wide prefix on an
// opcode it cannot modify, and inverted tableswitch bounds or a negative
// lookupswitch pair count fail with InvalidInstruction.
func DecodeInstruction(code []byte, pos int) (Instruction, error) {
	if len(code) == 0 {
		return Instruction{}, newDecodeError(InvalidInstruction, pos, ContextCode)
	}
	op := Opcode(code[0])
	switch op {
	case 170: // tableswitch
		return decodeTableSwitch(code, pos)
	case 171: // lookupswitch
		return decodeLookupSwitch(code, pos)
	case 196: // wide
		return decodeWide(code, pos)
	}
	width, known := operandWidths[op]
	if !known {
		if opcodeMnemonics[op] == "" {
			return Instruction{}, newDecodeError(InvalidInstruction, pos, ContextCode)
		}
		width = 0
	}
	length := 1 + width
	if len(code) < length {
		return Instruction{}, newDecodeError(UnexpectedEoi, pos+len(code), ContextCode)
	}
	return Instruction{Offset: pos, Opcode: op, Operands: code[1:length], Length: length}, nil
}

func decodeWide(code []byte, pos int) (Instruction, error) {
	if len(code) < 2 {
		return Instruction{}, newDecodeError(UnexpectedEoi, pos+len(code), ContextCode)
	}
	inner := Opcode(code[1])
	length := 4 // wide + opcode + u16 index
	if inner == 132 {
		length = 6 // iinc: wide + opcode + u16 index + i16 const
	} else if inner != 21 && inner != 22 && inner != 23 && inner != 24 && inner != 25 &&
		inner != 54 && inner != 55 && inner != 56 && inner != 57 && inner != 58 && inner != 169 {
		return Instruction{}, newDecodeError(InvalidInstruction, pos, ContextCode)
	}
	if len(code) < length {
		return Instruction{}, newDecodeError(UnexpectedEoi, pos+len(code), ContextCode)
	}
	return Instruction{Offset: pos, Opcode: 196, Operands: code[1:length], Length: length}, nil
}

func decodeTableSwitch(code []byte, pos int) (Instruction, error) {
	pad := (4 - (pos+1)%4) % 4
	header := 1 + pad + 12
	if len(code) < header {
		return Instruction{}, newDecodeError(UnexpectedEoi, pos+len(code), ContextCode)
	}
	low := int32(be32(code[1+pad+4:]))
	high := int32(be32(code[1+pad+8:]))
	if low > high {
		return Instruction{}, newDecodeError(InvalidInstruction, pos, ContextCode)
	}
	n := int(high-low) + 1
	length := header + n*4
	if len(code) < length {
		return Instruction{}, newDecodeError(UnexpectedEoi, pos+len(code), ContextCode)
	}
	return Instruction{Offset: pos, Opcode: 170, Operands: code[1:length], Length: length}, nil
}

func decodeLookupSwitch(code []byte, pos int) (Instruction, error) {
	pad := (4 - (pos+1)%4) % 4
	header := 1 + pad + 8
	if len(code) < header {
		return Instruction{}, newDecodeError(UnexpectedEoi, pos+len(code), ContextCode)
	}
	n := int(be32(code[1+pad+4:]))
	if n < 0 {
		return Instruction{}, newDecodeError(InvalidInstruction, pos, ContextCode)
	}
	length := header + n*8
	if len(code) < length {
		return Instruction{}, newDecodeError(UnexpectedEoi, pos+len(code), ContextCode)
	}
	return Instruction{Offset: pos, Opcode: 171, Operands: code[1:length], Length: length}, nil
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// Instructions walks a code array, yielding each decoded Instruction in
// order. Offsets are code-relative (0 at the first instruction), matching
// start_pc/exception-table/stack-map offsets elsewhere in the attribute.
// Iteration stops at the first decode error.
type Instructions struct {
	code []byte
	pos  int
}

// NewInstructions returns an iterator over code, whose first byte sits at
// code-relative offset 0.
func NewInstructions(code []byte) *Instructions {
	return &Instructions{code: code}
}

// Next decodes the next instruction, or returns ok=false once the code
// array is exhausted or a decode error occurs.
func (it *Instructions) Next() (Instruction, bool) {
	if it.pos >= len(it.code) {
		return Instruction{}, false
	}
	insn, err := DecodeInstruction(it.code[it.pos:], it.pos)
	if err != nil {
		return Instruction{}, false
	}
	it.pos += insn.Length
	return insn, true
}
