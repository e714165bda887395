package amd64

import "github.com/insinfo/asmjit-sub001/internal/asm"

// modRMMod is the two-bit mod field of a ModR/M byte.
type modRMMod byte

const (
	modIndirect     modRMMod = 0b00
	modIndirectDisp8 modRMMod = 0b01
	modIndirectDisp32 modRMMod = 0b10
	modDirect       modRMMod = 0b11
)

func modRM(mod modRMMod, regField, rmField byte) byte {
	return byte(mod)<<6 | (regField&0x7)<<3 | (rmField & 0x7)
}

func sib(scale Scale, index, base byte) byte {
	var ss byte
	switch scale {
	case Scale2:
		ss = 1
	case Scale4:
		ss = 2
	case Scale8:
		ss = 3
	default:
		ss = 0
	}
	return ss<<6 | (index&0x7)<<3 | (base & 0x7)
}

// noIndexSIB is the SIB index field value meaning "no index register",
// which aliases the encoding for RSP as an index — RSP can never be used as
// a scaled index for exactly this reason.
const noIndexSIB byte = 0b100

// emitRegisterToRegisterModRM writes the single ModR/M byte for a
// register-direct operand pair: mod=11, reg=regField's 3 bits, rm=rmField's
// 3 bits. Grounded on the teacher's getRegisterToRegisterModRM.
func emitRegisterToRegisterModRM(buf *asm.Buffer, regField, rmField Register) {
	buf.Emit8(modRM(modDirect, regField.Encoding3Bit(), rmField.Encoding3Bit()))
}

// emitMemoryOperand writes the ModR/M byte, any SIB byte, and any
// displacement bytes for a memory operand paired with a register (or opcode
// extension) reg-field value. For RIP-relative operands, dispSite returns
// the buffer offset of the start of the 4-byte displacement so the caller
// can patch it once the total instruction length (and hence the RIP origin)
// is known.
//
// Grounded on the teacher's getMemoryLocation: RSP/R12 as a base require a
// SIB byte (their low 3 bits alias the no-base/RIP-relative encoding when
// used directly in rm), and RBP/R13 as a base with disp==0 must be forced to
// mod=01 disp8=0 since mod=00 rm=101 means "no base, disp32" instead.
func emitMemoryOperand(buf *asm.Buffer, regField byte, m Mem) (dispSite int, hasDispSite bool) {
	switch m.Shape() {
	case ShapeRIPRelative:
		buf.Emit8(modRM(modIndirect, regField, 0b101))
		dispSite = buf.Len()
		buf.Emit32(uint32(m.Disp()))
		return dispSite, true

	case ShapeNoBaseAbsolute:
		buf.Emit8(modRM(modIndirect, regField, 0b100))
		if m.HasIndex() {
			buf.Emit8(sib(m.ScaleFactor(), m.Index().Encoding3Bit(), 0b101))
		} else {
			buf.Emit8(sib(Scale1, noIndexSIB, 0b101))
		}
		buf.Emit32(uint32(m.Disp()))
		return 0, false

	case ShapeSIBRequired:
		mod := dispMod(m.Disp())
		// A SIB base field of 101 (RBP or R13) with mod=00 doesn't mean
		// "base register RBP/R13" — it means "no base, disp32", the same
		// special case ShapeBaseDisp0NeedsSIBOrDisp8 exists for on the
		// non-SIB path. Force mod=01/disp8=0 here too, or the base register
		// is silently dropped and the following bytes are misread as disp32.
		if mod == modIndirect && m.Base().Encoding3Bit() == 0b101 {
			mod = modIndirectDisp8
		}
		buf.Emit8(modRM(mod, regField, 0b100))
		if m.HasIndex() {
			buf.Emit8(sib(m.ScaleFactor(), m.Index().Encoding3Bit(), m.Base().Encoding3Bit()))
		} else {
			buf.Emit8(sib(Scale1, noIndexSIB, m.Base().Encoding3Bit()))
		}
		emitDisp(buf, mod, m.Disp())
		return 0, false

	case ShapeBaseDisp0NeedsSIBOrDisp8:
		buf.Emit8(modRM(modIndirectDisp8, regField, m.Base().Encoding3Bit()))
		buf.Emit8(0)
		return 0, false

	default: // ShapeSimpleBase
		mod := dispMod(m.Disp())
		buf.Emit8(modRM(mod, regField, m.Base().Encoding3Bit()))
		emitDisp(buf, mod, m.Disp())
		return 0, false
	}
}

// dispMod selects mod=01 (disp8) when disp fits in a signed byte and is
// nonzero, else mod=10 (disp32). A zero displacement against a plain base
// uses mod=00 and emits no displacement bytes at all.
func dispMod(disp int32) modRMMod {
	switch {
	case disp == 0:
		return modIndirect
	case disp >= -128 && disp <= 127:
		return modIndirectDisp8
	default:
		return modIndirectDisp32
	}
}

func emitDisp(buf *asm.Buffer, mod modRMMod, disp int32) {
	switch mod {
	case modIndirectDisp8:
		buf.Emit8(byte(int8(disp)))
	case modIndirectDisp32:
		buf.Emit32(uint32(disp))
	}
}
