package amd64

import "github.com/insinfo/asmjit-sub001/internal/asm"

// encodeMovRR encodes "mov dst, src" for two same-width GP registers. The
// canonical-zeroing idiom (xor eax, eax rather than mov eax, 0) is a
// dispatcher-level choice left to the caller; this primitive encodes
// whatever it is given, matching the teacher's insistence that primitives
// never second-guess the caller's chosen opcode.
func encodeMovRR(buf *asm.Buffer, dst, src Register) error {
	if dst.SizeBits() != src.SizeBits() {
		return asm.NewInvalidOperandSize("MOV: mismatched operand widths %d vs %d", dst.SizeBits(), src.SizeBits())
	}
	if hasHighByteRegister(Reg(dst), Reg(src)) && (dst.NeedsREXExtension() || src.NeedsREXExtension() || requiresMandatoryREX(Reg(dst), Reg(src))) {
		return asm.NewInvalidRegCombination("MOV: high-byte register cannot combine with a REX-requiring register")
	}
	prefixForWidth(buf, dst.SizeBits())
	rex := computeREX(Reg(src), Reg(dst), dst.SizeBits() == 64)
	emitREXIfNeeded(buf, rex, requiresMandatoryREX(Reg(dst), Reg(src)))
	opcode := byte(movRmFromReg)
	if dst.SizeBits() == 8 {
		opcode--
	}
	buf.Emit8(opcode)
	emitRegisterToRegisterModRM(buf, src, dst)
	return nil
}

func encodeMovRM(buf *asm.Buffer, dst Register, src Mem) error {
	prefixForWidth(buf, dst.SizeBits())
	rex := computeREX(Reg(dst), MemOperand(src), dst.SizeBits() == 64)
	emitREXIfNeeded(buf, rex, requiresMandatoryREX(Reg(dst)))
	opcode := byte(movRegFromRm)
	if dst.SizeBits() == 8 {
		opcode--
	}
	buf.Emit8(opcode)
	emitMemoryOperand(buf, dst.Encoding3Bit(), src)
	return nil
}

func encodeMovMR(buf *asm.Buffer, dst Mem, src Register) error {
	prefixForWidth(buf, src.SizeBits())
	rex := computeREX(Reg(src), MemOperand(dst), src.SizeBits() == 64)
	emitREXIfNeeded(buf, rex, requiresMandatoryREX(Reg(src)))
	opcode := byte(movRmFromReg)
	if src.SizeBits() == 8 {
		opcode--
	}
	buf.Emit8(opcode)
	emitMemoryOperand(buf, src.Encoding3Bit(), dst)
	return nil
}

// encodeMovRI encodes "mov dst, imm". A 64-bit destination prefers, in
// order: the sign-extended 0xC7 /0 id form when imm fits in a signed 32-bit
// immediate; otherwise the zero-extending +rd id form (0xB8+r, no REX.W, a
// 4-byte immediate) when imm is a non-negative value that fits in 32 bits
// unsigned (e.g. 0x80000000, 0xFFFFFFFF — non-negative 32-bit patterns that
// fail the signed fit test); otherwise the full +rd io MOVABS form (REX.W,
// 8-byte immediate), matching the teacher's size-minimizing MOV selection.
func encodeMovRI(buf *asm.Buffer, dst Register, imm Imm) error {
	prefixForWidth(buf, dst.SizeBits())

	if dst.SizeBits() == 64 && !imm.FitsInt32() && imm.FitsUint32() {
		rex := computeREX(None, Reg(dst), false)
		emitREXIfNeeded(buf, rex, requiresMandatoryREX(Reg(dst)))
		buf.Emit8(movRegImm32 + dst.Encoding3Bit())
		buf.Emit32(uint32(imm.Value()))
		return nil
	}

	if dst.SizeBits() == 64 && !imm.FitsInt32() {
		rex := computeREX(None, Reg(dst), true)
		emitREXIfNeeded(buf, rex, false)
		buf.Emit8(movRegImm32 + dst.Encoding3Bit())
		buf.Emit64(uint64(imm.Value()))
		return nil
	}

	rex := computeREX(None, Reg(dst), dst.SizeBits() == 64)
	emitREXIfNeeded(buf, rex, requiresMandatoryREX(Reg(dst)))
	if dst.SizeBits() == 8 {
		buf.Emit8(0xB0 + dst.Encoding3Bit())
		buf.Emit8(byte(imm.Value()))
		return nil
	}
	if dst.SizeBits() == 64 {
		// imm fits in 32 bits here (the MOVABS branch above handled the
		// alternative): use the shorter sign-extended-imm32 form instead of
		// paying for a redundant 8-byte immediate.
		buf.Emit8(movRmImm)
		buf.Emit8(modRM(modDirect, 0, dst.Encoding3Bit()))
		buf.Emit32(uint32(imm.Value()))
		return nil
	}
	buf.Emit8(movRegImm32 + dst.Encoding3Bit())
	if dst.SizeBits() == 16 {
		buf.Emit16(uint16(imm.Value()))
	} else {
		buf.Emit32(uint32(imm.Value()))
	}
	return nil
}

func encodeMovMI(buf *asm.Buffer, dst Mem, imm Imm, widthBits uint16) error {
	prefixForWidth(buf, widthBits)
	rex := computeREX(None, MemOperand(dst), widthBits == 64)
	emitREXIfNeeded(buf, rex, false)
	opcode := byte(movRmImm)
	if widthBits == 8 {
		opcode = 0xC6
	}
	buf.Emit8(opcode)
	emitMemoryOperand(buf, 0, dst)
	if widthBits == 8 {
		buf.Emit8(byte(imm.Value()))
	} else if widthBits == 16 {
		buf.Emit16(uint16(imm.Value()))
	} else {
		buf.Emit32(uint32(imm.Value()))
	}
	return nil
}

// encodeLEA encodes "lea dst, mem", the only instruction that reads an
// address computation without dereferencing it.
func encodeLEA(buf *asm.Buffer, dst Register, src Mem) error {
	if dst.SizeBits() == 16 {
		buf.Emit8(0x66)
	}
	rex := computeREX(Reg(dst), MemOperand(src), dst.SizeBits() == 64)
	emitREXIfNeeded(buf, rex, false)
	buf.Emit8(0x8D)
	emitMemoryOperand(buf, dst.Encoding3Bit(), src)
	return nil
}

// encodeMovzx encodes "movzx dst, src" widening an 8- or 16-bit GP register
// into a wider one, zero-extending. Per SPEC_FULL's Open Question decision,
// this is the only sanctioned way to change operand width in one
// instruction — ordinary MOV rejects width mismatches outright.
func encodeMovzx(buf *asm.Buffer, dst, src Register) error {
	if src.SizeBits() >= dst.SizeBits() || src.SizeBits() > 16 {
		return asm.NewInvalidOperandSize("MOVZX: source width %d must be 8 or 16 and narrower than destination width %d", src.SizeBits(), dst.SizeBits())
	}
	rex := computeREX(Reg(dst), Reg(src), dst.SizeBits() == 64)
	emitREXIfNeeded(buf, rex, requiresMandatoryREX(Reg(src)))
	buf.Emit8(0x0F)
	if src.SizeBits() == 8 {
		buf.Emit8(0xB6)
	} else {
		buf.Emit8(0xB7)
	}
	emitRegisterToRegisterModRM(buf, dst, src)
	return nil
}

// encodeMovsx encodes "movsx dst, src", sign-extending.
func encodeMovsx(buf *asm.Buffer, dst, src Register) error {
	if src.SizeBits() >= dst.SizeBits() || src.SizeBits() > 16 {
		return asm.NewInvalidOperandSize("MOVSX: source width %d must be 8 or 16 and narrower than destination width %d", src.SizeBits(), dst.SizeBits())
	}
	rex := computeREX(Reg(dst), Reg(src), dst.SizeBits() == 64)
	emitREXIfNeeded(buf, rex, requiresMandatoryREX(Reg(src)))
	buf.Emit8(0x0F)
	if src.SizeBits() == 8 {
		buf.Emit8(0xBE)
	} else {
		buf.Emit8(0xBF)
	}
	emitRegisterToRegisterModRM(buf, dst, src)
	return nil
}

// encodeMovsxd encodes "movsxd dst, src", sign-extending a 32-bit register
// into a 64-bit one (opcode 0x63, always needs REX.W).
func encodeMovsxd(buf *asm.Buffer, dst, src Register) error {
	if src.SizeBits() != 32 || dst.SizeBits() != 64 {
		return asm.NewInvalidOperandSize("MOVSXD: requires a 32-bit source and a 64-bit destination")
	}
	rex := computeREX(Reg(dst), Reg(src), true)
	emitREXIfNeeded(buf, rex, false)
	buf.Emit8(0x63)
	emitRegisterToRegisterModRM(buf, dst, src)
	return nil
}
