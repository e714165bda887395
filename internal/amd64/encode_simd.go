package amd64

import "github.com/insinfo/asmjit-sub001/internal/asm"

// encodeSSERR encodes a legacy-SSE register/register instruction: an
// optional mandatory prefix, an optional REX (only ever needed for an
// extended register id, never for operand width), the 0x0F escape, the
// opcode, and a direct ModR/M byte.
func encodeSSERR(buf *asm.Buffer, inst Instruction, dst, src Register) error {
	entry, ok := sseOpcodes[inst]
	if !ok {
		return asm.NewInvalidOperandShape(inst.String(), "xmm, xmm")
	}
	if entry.prefix != 0 {
		buf.Emit8(entry.prefix)
	}
	rex := computeREX(Reg(dst), Reg(src), false)
	emitREXIfNeeded(buf, rex, false)
	buf.Emit8(0x0F)
	buf.Emit8(entry.opcode)
	if entry.regFromRm {
		emitRegisterToRegisterModRM(buf, dst, src)
	} else {
		emitRegisterToRegisterModRM(buf, src, dst)
	}
	return nil
}

// encodeSSERM encodes a legacy-SSE register<-memory instruction.
func encodeSSERM(buf *asm.Buffer, inst Instruction, dst Register, src Mem) error {
	entry, ok := sseOpcodes[inst]
	if !ok || !entry.regFromRm {
		return asm.NewInvalidOperandShape(inst.String(), "xmm, memory")
	}
	if entry.prefix != 0 {
		buf.Emit8(entry.prefix)
	}
	rex := computeREX(Reg(dst), MemOperand(src), false)
	emitREXIfNeeded(buf, rex, false)
	buf.Emit8(0x0F)
	buf.Emit8(entry.opcode)
	emitMemoryOperand(buf, dst.Encoding3Bit(), src)
	return nil
}

// encodeCvtIntToFloat encodes CVTSI2SS/CVTSI2SD: GP register source (no
// memory form), XMM destination, REX.W selecting a 64-bit GP source.
func encodeCvtIntToFloat(buf *asm.Buffer, inst Instruction, dst Register, src Register) error {
	entry, ok := cvtOpcodes[inst]
	if !ok {
		return asm.NewInvalidOperandShape(inst.String(), "xmm, gp register")
	}
	buf.Emit8(entry.prefix)
	rex := computeREX(Reg(dst), Reg(src), src.SizeBits() == 64)
	emitREXIfNeeded(buf, rex, false)
	buf.Emit8(0x0F)
	buf.Emit8(entry.opcode)
	emitRegisterToRegisterModRM(buf, dst, src)
	return nil
}

// encodeCvtFloatToInt encodes CVTTSS2SI/CVTTSD2SI: XMM source, GP
// destination.
func encodeCvtFloatToInt(buf *asm.Buffer, inst Instruction, dst Register, src Register) error {
	entry, ok := cvtOpcodes[inst]
	if !ok {
		return asm.NewInvalidOperandShape(inst.String(), "gp register, xmm")
	}
	buf.Emit8(entry.prefix)
	rex := computeREX(Reg(dst), Reg(src), dst.SizeBits() == 64)
	emitREXIfNeeded(buf, rex, false)
	buf.Emit8(0x0F)
	buf.Emit8(entry.opcode)
	emitRegisterToRegisterModRM(buf, dst, src)
	return nil
}

// encodeVexRRR encodes a 3-operand VEX instruction "vinst dst, src1, src2"
// (dst and src2 in ModR/M reg/rm, src1 in VEX.vvvv as the NDS operand).
func encodeVexRRR(buf *asm.Buffer, inst Instruction, dst, src1, src2 Register, length VectorLength) error {
	entry, ok := vexOpcodes[inst]
	if !ok {
		return asm.NewInvalidOperandShape(inst.String(), "vec, vec, vec")
	}
	f := vexFields{
		rexR:  dst.NeedsREXExtension(),
		rexB:  src2.NeedsREXExtension(),
		w:     entry.w,
		mmmmm: entry.mmmmm,
		vvvv:  byte(src1.ID()),
		l:     length == VecLen256,
		pp:    entry.pp,
	}
	emitVEX(buf, f)
	buf.Emit8(entry.opcode)
	emitRegisterToRegisterModRM(buf, dst, src2)
	return nil
}

// encodeEvexRRR encodes a 3-operand EVEX instruction with optional mask
// predication, mirroring encodeVexRRR but through the 4-byte EVEX prefix
// and its k1{z} suffix.
func encodeEvexRRR(buf *asm.Buffer, inst Instruction, dst, src1, src2 Register, length VectorLength, mask MaskPredication) error {
	entry, ok := evexOpcodes[inst]
	if !ok {
		return asm.NewInvalidOperandShape(inst.String(), "vec, vec, vec (evex)")
	}
	l2, l := length.bits()
	var aaa byte
	if mask.Mask.Class() == ClassMask {
		aaa = mask.Mask.Encoding3Bit()
	}
	f := evexFields{
		rexR:   dst.NeedsREXExtension(),
		rexB:   src2.NeedsREXExtension(),
		rPrime: dst.ID() >= 16,
		mm:     byte(vexMap0F) & 0x3,
		w:      entry.w,
		vvvv:   byte(src1.ID()) & 0xF,
		vPrime: src1.ID() >= 16,
		pp:     entry.pp,
		aaa:    aaa,
		z:      mask.ZeroMasked,
		l2:     l2,
		l:      l,
	}
	emitEVEX(buf, f)
	buf.Emit8(entry.opcode)
	emitRegisterToRegisterModRM(buf, dst, src2)
	return nil
}
