package amd64

import "github.com/insinfo/asmjit-sub001/internal/asm"

// encodePushReg encodes "push reg" (opcode 0x50+r, always 64-bit operand
// size in 64-bit mode regardless of the register's declared width, per the
// architecture's fixed-width stack slot rule).
func encodePushReg(buf *asm.Buffer, r Register) error {
	if r.Class() != ClassGP {
		return asm.NewInvalidOperandShape("PUSH", "general-purpose register")
	}
	rex := computeREX(None, Reg(r), false)
	emitREXIfNeeded(buf, rex, false)
	buf.Emit8(0x50 + r.Encoding3Bit())
	return nil
}

func encodePopReg(buf *asm.Buffer, r Register) error {
	if r.Class() != ClassGP {
		return asm.NewInvalidOperandShape("POP", "general-purpose register")
	}
	rex := computeREX(None, Reg(r), false)
	emitREXIfNeeded(buf, rex, false)
	buf.Emit8(0x58 + r.Encoding3Bit())
	return nil
}

func encodePushImm(buf *asm.Buffer, imm Imm) error {
	if imm.FitsInt8() {
		buf.Emit8(0x6A)
		buf.Emit8(byte(int8(imm.Value())))
		return nil
	}
	if !imm.FitsInt32() {
		return asm.NewInvalidOperandSize("PUSH: immediate %d does not fit a 32-bit sign-extended field", imm.Value())
	}
	buf.Emit8(0x68)
	buf.Emit32(uint32(imm.Value()))
	return nil
}

// encodeRet encodes "ret" (0xC3) or, when imm16 != 0, "ret imm16" (0xC2),
// the stack-pop-bytes form used to unwind caller-cleanup arguments.
func encodeRet(buf *asm.Buffer, imm16 uint16) {
	if imm16 == 0 {
		buf.Emit8(0xC3)
		return
	}
	buf.Emit8(0xC2)
	buf.Emit16(imm16)
}

func encodeNop(buf *asm.Buffer) { buf.Emit8(0x90) }

func encodeUD2(buf *asm.Buffer) {
	buf.Emit8(0x0F)
	buf.Emit8(0x0B)
}

func encodeInt3(buf *asm.Buffer) { buf.Emit8(0xCC) }

// encodeXchgRR encodes "xchg a, b". The AX/eAX/RAX-with-register short form
// (opcode 0x90+r) is intentionally not special-cased here: 0x90 is also the
// plain NOP encoding, and a dispatcher that silently rewrote xchg rax, rax
// into the same bytes as nop would contradict spec §3's "what you encode is
// what you emit" guarantee. The full ModR/M form (0x87) always applies.
func encodeXchgRR(buf *asm.Buffer, a, b Register) error {
	if a.SizeBits() != b.SizeBits() {
		return asm.NewInvalidOperandSize("XCHG: mismatched operand widths %d vs %d", a.SizeBits(), b.SizeBits())
	}
	prefixForWidth(buf, a.SizeBits())
	rex := computeREX(Reg(a), Reg(b), a.SizeBits() == 64)
	emitREXIfNeeded(buf, rex, requiresMandatoryREX(Reg(a), Reg(b)))
	opcode := byte(0x87)
	if a.SizeBits() == 8 {
		opcode = 0x86
	}
	buf.Emit8(opcode)
	emitRegisterToRegisterModRM(buf, a, b)
	return nil
}

// encodeCDQ/encodeCQO sign-extend EAX into EDX:EAX, or RAX into RDX:RAX,
// the operand-implicit widening step IDIV requires before a dividend wider
// than the divisor register.
func encodeCDQ(buf *asm.Buffer) { buf.Emit8(0x99) }

func encodeCQO(buf *asm.Buffer) {
	buf.Emit8(rexW.byte())
	buf.Emit8(0x99)
}
