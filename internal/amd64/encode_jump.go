package amd64

import "github.com/insinfo/asmjit-sub001/internal/asm"

// encodeJmpLabel encodes an unconditional jump to a label. If the label is
// already bound (a backward reference), the displacement is known
// immediately and the shortest legal form (rel8 when it fits, else rel32) is
// chosen directly. If the label is unbound (a forward reference), the form
// is chosen per ref.Forced: JumpShort commits to rel8 and registers a
// relocation site that will fail with Rel8OutOfRange if the eventual
// displacement doesn't fit; JumpNear or JumpAuto commit to rel32, the only
// form that can always be patched regardless of how far the label ends up.
//
// Grounded on the teacher's encodeRelativeJump / resolveForwardRelativeJumps
// split between a known-offset fast path and a registered relocation site.
func encodeJmpLabel(buf *asm.Buffer, labels *asm.LabelTable, ref LabelRef) error {
	if labels.IsBound(ref.ID) {
		return emitKnownJump(buf, labels, ref.ID, 0xEB, 0xE9, 2, 5, ref.Forced)
	}
	return emitForwardJump(buf, labels, ref.ID, 0xEB, 0xE9, ref.Forced)
}

// encodeJccLabel encodes a conditional jump to a label. Opcode forms: rel8
// is 0x70+cc; rel32 is 0x0F 0x80+cc (two-byte opcode).
func encodeJccLabel(buf *asm.Buffer, labels *asm.LabelTable, cond ConditionFlag, ref LabelRef) error {
	shortOp := 0x70 + cond.Encoding4Bit()
	if labels.IsBound(ref.ID) {
		return emitKnownJcc(buf, labels, ref.ID, shortOp, cond, ref.Forced)
	}
	return emitForwardJcc(buf, labels, ref.ID, shortOp, cond, ref.Forced)
}

// encodeCallLabel encodes a near relative CALL to a label; CALL has no
// short form, so a forced JumpShort is an error rather than a silent
// near-form fallback.
func encodeCallLabel(buf *asm.Buffer, labels *asm.LabelTable, ref LabelRef) error {
	if ref.Forced == JumpShort {
		return asm.NewInvalidOperandShape("CALL", "a relative call has no 8-bit short form")
	}
	if labels.IsBound(ref.ID) {
		target := labels.OffsetOf(ref.ID)
		buf.Emit8(0xE8)
		site := buf.Len()
		buf.Emit32(0)
		disp := int64(target - (site + 4))
		buf.PatchI32(site, int32(disp))
		return nil
	}
	buf.Emit8(0xE8)
	site := buf.Len()
	buf.Emit32(0)
	labels.AddRel32(ref.ID, site, site+4)
	return nil
}

func emitKnownJump(buf *asm.Buffer, labels *asm.LabelTable, id asm.LabelID, shortOp, nearOp byte, shortLen, nearLen int, forced JumpForm) error {
	target := labels.OffsetOf(id)
	if forced != JumpNear {
		disp8 := int64(target - (buf.Len() + shortLen))
		if forced == JumpShort || (disp8 >= -128 && disp8 <= 127) {
			if disp8 < -128 || disp8 > 127 {
				return asm.NewRel8OutOfRange(disp8)
			}
			buf.Emit8(shortOp)
			buf.Emit8(byte(int8(disp8)))
			return nil
		}
	}
	disp32 := int64(target - (buf.Len() + nearLen))
	buf.Emit8(nearOp)
	buf.Emit32(uint32(int32(disp32)))
	return nil
}

func emitForwardJump(buf *asm.Buffer, labels *asm.LabelTable, id asm.LabelID, shortOp, nearOp byte, forced JumpForm) error {
	if forced == JumpShort {
		buf.Emit8(shortOp)
		site := buf.Len()
		buf.Emit8(0)
		labels.AddRel8(id, site, site+1)
		return nil
	}
	buf.Emit8(nearOp)
	site := buf.Len()
	buf.Emit32(0)
	labels.AddRel32(id, site, site+4)
	return nil
}

func emitKnownJcc(buf *asm.Buffer, labels *asm.LabelTable, id asm.LabelID, shortOp byte, cond ConditionFlag, forced JumpForm) error {
	target := labels.OffsetOf(id)
	if forced != JumpNear {
		disp8 := int64(target - (buf.Len() + 2))
		if forced == JumpShort || (disp8 >= -128 && disp8 <= 127) {
			if disp8 < -128 || disp8 > 127 {
				return asm.NewRel8OutOfRange(disp8)
			}
			buf.Emit8(shortOp)
			buf.Emit8(byte(int8(disp8)))
			return nil
		}
	}
	buf.Emit8(0x0F)
	buf.Emit8(0x80 + cond.Encoding4Bit())
	disp32 := int64(target - (buf.Len() + 4))
	buf.Emit32(uint32(int32(disp32)))
	return nil
}

func emitForwardJcc(buf *asm.Buffer, labels *asm.LabelTable, id asm.LabelID, shortOp byte, cond ConditionFlag, forced JumpForm) error {
	if forced == JumpShort {
		buf.Emit8(shortOp)
		site := buf.Len()
		buf.Emit8(0)
		labels.AddRel8(id, site, site+1)
		return nil
	}
	buf.Emit8(0x0F)
	buf.Emit8(0x80 + cond.Encoding4Bit())
	site := buf.Len()
	buf.Emit32(0)
	labels.AddRel32(id, site, site+4)
	return nil
}

// encodeJmpReg/encodeCallReg encode an indirect jump/call through a GP
// register (opcode group 0xFF /4 and /2 respectively).
func encodeJmpReg(buf *asm.Buffer, target Register) error {
	rex := computeREX(None, Reg(target), false)
	emitREXIfNeeded(buf, rex, false)
	buf.Emit8(0xFF)
	buf.Emit8(modRM(modDirect, 4, target.Encoding3Bit()))
	return nil
}

func encodeCallReg(buf *asm.Buffer, target Register) error {
	rex := computeREX(None, Reg(target), false)
	emitREXIfNeeded(buf, rex, false)
	buf.Emit8(0xFF)
	buf.Emit8(modRM(modDirect, 2, target.Encoding3Bit()))
	return nil
}

func encodeJmpMem(buf *asm.Buffer, target Mem) error {
	rex := computeREX(None, MemOperand(target), false)
	emitREXIfNeeded(buf, rex, false)
	buf.Emit8(0xFF)
	emitMemoryOperand(buf, 4, target)
	return nil
}

// encodeSetcc encodes "setcc dst" (opcode 0x0F 0x90+cc /0), an 8-bit
// boolean-result store.
func encodeSetcc(buf *asm.Buffer, cond ConditionFlag, dst Register) error {
	if dst.SizeBits() != 8 {
		return asm.NewInvalidOperandSize("SETcc: destination must be an 8-bit register")
	}
	rex := computeREX(None, Reg(dst), false)
	emitREXIfNeeded(buf, rex, requiresMandatoryREX(Reg(dst)))
	buf.Emit8(0x0F)
	buf.Emit8(0x90 + cond.Encoding4Bit())
	buf.Emit8(modRM(modDirect, 0, dst.Encoding3Bit()))
	return nil
}

// encodeCmovcc encodes "cmovcc dst, src" (opcode 0x0F 0x40+cc /r).
func encodeCmovcc(buf *asm.Buffer, cond ConditionFlag, dst, src Register) error {
	if dst.SizeBits() != src.SizeBits() || dst.SizeBits() == 8 {
		return asm.NewInvalidOperandSize("CMOVcc: requires matching 16/32/64-bit operands")
	}
	prefixForWidth(buf, dst.SizeBits())
	rex := computeREX(Reg(dst), Reg(src), dst.SizeBits() == 64)
	emitREXIfNeeded(buf, rex, false)
	buf.Emit8(0x0F)
	buf.Emit8(0x40 + cond.Encoding4Bit())
	emitRegisterToRegisterModRM(buf, dst, src)
	return nil
}
