package amd64

import "github.com/insinfo/asmjit-sub001/internal/asm"

// vexMMMMM is the VEX/EVEX "map select" field, naming which legacy 0x0F
// escape the following opcode byte belongs to.
type vexMMMMM byte

const (
	vexMap0F   vexMMMMM = 0b00001
	vexMap0F38 vexMMMMM = 0b00010
	vexMap0F3A vexMMMMM = 0b00011
)

// vexPP is the VEX/EVEX "implied legacy prefix" field.
type vexPP byte

const (
	vexPPNone vexPP = 0b00
	vexPP66   vexPP = 0b01
	vexPPF3   vexPP = 0b10
	vexPPF2   vexPP = 0b11
)

// VexForm selects between the 2-byte and 3-byte VEX encodings. The 2-byte
// form is only usable when mmmmm==0F, W==0, and no B/X extension bit is
// needed (spec §4.4).
type vexForm uint8

const (
	vexForm2Byte vexForm = iota
	vexForm3Byte
)

// vexFields captures every bit the VEX prefix bytes are built from, derived
// once per instruction from its operands and opcode table entry.
type vexFields struct {
	rexR    bool // inverted into VEX.R
	rexX    bool
	rexB    bool
	w       bool
	mmmmm   vexMMMMM
	vvvv    byte // NDS/NDD source register id (emitVEX inverts it), or 0 if unused
	l       bool // 0 = 128-bit, 1 = 256-bit
	pp      vexPP
}

func (f vexFields) form() vexForm {
	if f.mmmmm == vexMap0F && !f.w && !f.rexX && !f.rexB {
		return vexForm2Byte
	}
	return vexForm3Byte
}

// emitVEX writes the VEX prefix (2 or 3 bytes) for the given fields.
// Grounded on Intel SDM vol 2A §2.3.5/2.3.6; not present in the teacher (it
// predates AVX support), built fresh per spec §4.4's EVEX/VEX requirement.
func emitVEX(buf *asm.Buffer, f vexFields) {
	invR := boolBit(!f.rexR)
	invX := boolBit(!f.rexX)
	invB := boolBit(!f.rexB)
	invVVVV := (^f.vvvv) & 0xF
	lBit := boolBit(f.l)

	if f.form() == vexForm2Byte {
		buf.Emit8(0xC5)
		buf.Emit8(invR<<7 | invVVVV<<3 | lBit<<2 | byte(f.pp))
		return
	}
	buf.Emit8(0xC4)
	buf.Emit8(invR<<7 | invX<<6 | invB<<5 | byte(f.mmmmm))
	wBit := boolBit(f.w)
	buf.Emit8(wBit<<7 | invVVVV<<3 | lBit<<2 | byte(f.pp))
}

func boolBit(b bool) byte {
	if b {
		return 1
	}
	return 0
}
