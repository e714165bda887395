package amd64

import "github.com/insinfo/asmjit-sub001/internal/asm"

// prefixForWidth emits the mandatory 0x66 operand-size-override prefix for
// 16-bit operands. 32- and 64-bit widths need no legacy prefix (64-bit needs
// REX.W instead, handled separately).
func prefixForWidth(buf *asm.Buffer, sizeBits uint16) {
	if sizeBits == 16 {
		buf.Emit8(0x66)
	}
}

func emitREXIfNeeded(buf *asm.Buffer, rex rexPrefix, mandatory bool) {
	if rex.required() || mandatory {
		buf.Emit8(rex.byte())
	}
}

// encodeALURR encodes "inst dst, src" for two same-width GP registers,
// using the Ev,Gv opcode form (dst is the ModR/M rm field, src is the reg
// field) — the conventional register/register encoding most assemblers
// emit, matching the teacher's registerToRegisterOpcode table and the
// spec's golden vector for MOV (opcode 0x89, not 0x8B).
func encodeALURR(buf *asm.Buffer, inst Instruction, dst, src Register) error {
	entry, ok := aluOpcodes[inst]
	if !ok {
		return asm.NewInvalidOperandShape(inst.String(), "register, register")
	}
	if dst.SizeBits() != src.SizeBits() {
		return asm.NewInvalidOperandSize("%s: mismatched operand widths %d vs %d", inst, dst.SizeBits(), src.SizeBits())
	}
	if hasHighByteRegister(Reg(dst), Reg(src)) && (dst.NeedsREXExtension() || src.NeedsREXExtension() || requiresMandatoryREX(Reg(dst), Reg(src))) {
		return asm.NewInvalidRegCombination("%s: high-byte register cannot combine with a REX-requiring register", inst)
	}
	prefixForWidth(buf, dst.SizeBits())
	rex := computeREX(Reg(src), Reg(dst), dst.SizeBits() == 64)
	mandatoryREX := requiresMandatoryREX(Reg(dst), Reg(src))
	emitREXIfNeeded(buf, rex, mandatoryREX)
	opcode := entry.rmFromReg
	if dst.SizeBits() == 8 {
		opcode--
	}
	buf.Emit8(opcode)
	emitRegisterToRegisterModRM(buf, src, dst)
	return nil
}

// encodeALURM encodes "inst dst(reg), src(mem)".
func encodeALURM(buf *asm.Buffer, inst Instruction, dst Register, src Mem) error {
	entry, ok := aluOpcodes[inst]
	if !ok {
		return asm.NewInvalidOperandShape(inst.String(), "register, memory")
	}
	prefixForWidth(buf, dst.SizeBits())
	rex := computeREX(Reg(dst), MemOperand(src), dst.SizeBits() == 64)
	emitREXIfNeeded(buf, rex, requiresMandatoryREX(Reg(dst)))
	opcode := entry.regFromRm
	if dst.SizeBits() == 8 {
		opcode--
	}
	buf.Emit8(opcode)
	emitMemoryOperand(buf, dst.Encoding3Bit(), src)
	return nil
}

// encodeALUMR encodes "inst dst(mem), src(reg)".
func encodeALUMR(buf *asm.Buffer, inst Instruction, dst Mem, src Register) error {
	entry, ok := aluOpcodes[inst]
	if !ok {
		return asm.NewInvalidOperandShape(inst.String(), "memory, register")
	}
	prefixForWidth(buf, src.SizeBits())
	rex := computeREX(Reg(src), MemOperand(dst), src.SizeBits() == 64)
	emitREXIfNeeded(buf, rex, requiresMandatoryREX(Reg(src)))
	opcode := entry.rmFromReg
	if src.SizeBits() == 8 {
		opcode--
	}
	buf.Emit8(opcode)
	emitMemoryOperand(buf, src.Encoding3Bit(), dst)
	return nil
}

// encodeALURI encodes "inst dst(reg), imm" using the shortest legal
// immediate-group opcode: the sign-extended imm8 form (0x83) when the
// immediate fits in a byte and the width isn't 8 bits, else the accumulator
// form (one opcode byte, no ModR/M) when dst is AL/AX/EAX/RAX, else the
// full-width immediate form (0x80/0x81).
func encodeALURI(buf *asm.Buffer, inst Instruction, dst Register, imm Imm) error {
	entry, ok := aluOpcodes[inst]
	if !ok {
		return asm.NewInvalidOperandShape(inst.String(), "register, immediate")
	}
	if dst.SizeBits() != 8 && !imm.FitsInt32() {
		return asm.NewInvalidOperandSize("%s: immediate %d does not fit a 32-bit sign-extended field", inst, imm.Value())
	}
	prefixForWidth(buf, dst.SizeBits())
	rex := computeREX(None, Reg(dst), dst.SizeBits() == 64)
	emitREXIfNeeded(buf, rex, requiresMandatoryREX(Reg(dst)))

	if dst.Encoding3Bit() == 0 && dst.ID() == 0 && (dst.SizeBits() == 8 || !imm.FitsInt8()) {
		// AL/AX/EAX/RAX short form.
		opcode := entry.alImm
		if dst.SizeBits() == 8 {
			opcode--
		}
		buf.Emit8(opcode)
		emitImmForWidth(buf, imm, dst.SizeBits())
		return nil
	}

	switch {
	case dst.SizeBits() == 8:
		buf.Emit8(0x80)
		buf.Emit8(modRM(modDirect, entry.regFieldExt, dst.Encoding3Bit()))
		buf.Emit8(byte(imm.Value()))
	case imm.FitsInt8():
		buf.Emit8(0x83)
		buf.Emit8(modRM(modDirect, entry.regFieldExt, dst.Encoding3Bit()))
		buf.Emit8(byte(int8(imm.Value())))
	default:
		buf.Emit8(0x81)
		buf.Emit8(modRM(modDirect, entry.regFieldExt, dst.Encoding3Bit()))
		emitImmForWidth(buf, imm, dst.SizeBits())
	}
	return nil
}

func emitImmForWidth(buf *asm.Buffer, imm Imm, sizeBits uint16) {
	switch sizeBits {
	case 8:
		buf.Emit8(byte(imm.Value()))
	case 16:
		buf.Emit16(uint16(imm.Value()))
	default:
		buf.Emit32(uint32(imm.Value()))
	}
}

// encodeShiftRI encodes "inst dst(reg), imm8" for SHL/SHR/SAR/ROL/ROR,
// collapsing the imm==1 single-bit form into the generic 0xC1 form since
// both are architecturally equivalent and the single-bit 0xD1 form carries
// no size benefit worth the extra opcode table entry.
func encodeShiftRI(buf *asm.Buffer, inst Instruction, dst Register, imm Imm) error {
	ext, ok := shiftOpcodeExt[inst]
	if !ok {
		return asm.NewInvalidOperandShape(inst.String(), "register, immediate")
	}
	prefixForWidth(buf, dst.SizeBits())
	rex := computeREX(None, Reg(dst), dst.SizeBits() == 64)
	emitREXIfNeeded(buf, rex, requiresMandatoryREX(Reg(dst)))
	opcode := byte(0xC1)
	if dst.SizeBits() == 8 {
		opcode = 0xC0
	}
	buf.Emit8(opcode)
	buf.Emit8(modRM(modDirect, ext, dst.Encoding3Bit()))
	buf.Emit8(byte(imm.Value()))
	return nil
}

// encodeShiftRCL encodes "inst dst(reg), cl" (the variable-count shift
// form), opcode 0xD2/0xD3.
func encodeShiftRCL(buf *asm.Buffer, inst Instruction, dst Register) error {
	ext, ok := shiftOpcodeExt[inst]
	if !ok {
		return asm.NewInvalidOperandShape(inst.String(), "register, cl")
	}
	prefixForWidth(buf, dst.SizeBits())
	rex := computeREX(None, Reg(dst), dst.SizeBits() == 64)
	emitREXIfNeeded(buf, rex, requiresMandatoryREX(Reg(dst)))
	opcode := byte(0xD3)
	if dst.SizeBits() == 8 {
		opcode = 0xD2
	}
	buf.Emit8(opcode)
	buf.Emit8(modRM(modDirect, ext, dst.Encoding3Bit()))
	return nil
}

// encodeGroup3R encodes the unary NOT/NEG/MUL/IMUL/DIV/IDIV/TEST(reg,reg)
// family sharing opcode 0xF6/0xF7, register-direct form.
func encodeGroup3R(buf *asm.Buffer, inst Instruction, operand Register) error {
	ext, ok := group3Ext[inst]
	if !ok {
		return asm.NewInvalidOperandShape(inst.String(), "register")
	}
	prefixForWidth(buf, operand.SizeBits())
	rex := computeREX(None, Reg(operand), operand.SizeBits() == 64)
	emitREXIfNeeded(buf, rex, requiresMandatoryREX(Reg(operand)))
	opcode := byte(0xF7)
	if operand.SizeBits() == 8 {
		opcode = 0xF6
	}
	buf.Emit8(opcode)
	buf.Emit8(modRM(modDirect, ext, operand.Encoding3Bit()))
	return nil
}

// encodeIncDecR encodes INC/DEC reg using the 64-bit-mode 0xFE/0xFF group
// form (the single-byte 0x40+r short forms are unavailable once REX
// repurposes that opcode range in 64-bit mode).
func encodeIncDecR(buf *asm.Buffer, inst Instruction, operand Register) error {
	ext, ok := incDecExt[inst]
	if !ok {
		return asm.NewInvalidOperandShape(inst.String(), "register")
	}
	prefixForWidth(buf, operand.SizeBits())
	rex := computeREX(None, Reg(operand), operand.SizeBits() == 64)
	emitREXIfNeeded(buf, rex, requiresMandatoryREX(Reg(operand)))
	opcode := byte(0xFF)
	if operand.SizeBits() == 8 {
		opcode = 0xFE
	}
	buf.Emit8(opcode)
	buf.Emit8(modRM(modDirect, ext, operand.Encoding3Bit()))
	return nil
}
