package amd64

import "github.com/insinfo/asmjit-sub001/internal/asm"

// evexFields captures the bits of the 4-byte EVEX prefix (Intel SDM vol 2A
// §2.6), the AVX-512 superset of vexFields adding a second map-select bit,
// the opmask/zeroing/broadcast controls, and the extended ZMM/mask register
// range (5-bit register fields via V' and R').
//
// Not present in the teacher (wazero's asm package predates AVX-512); built
// fresh per spec §4.4, following the same bit-inversion conventions the VEX
// prefix already uses so the two encoders share their boolBit helper.
type evexFields struct {
	rexR   bool
	rexX   bool
	rexB   bool
	rPrime bool // extends ModRM.reg to 5 bits (R')
	mm     byte // 2-bit map select, low bits of the VEX mmmmm field
	w      bool
	vvvv   byte // inverted NDS source register, low 4 bits
	vPrime bool // extends vvvv to 5 bits (V'), inverted
	pp     vexPP
	aaa    byte // opmask register k0..k7, 0 = no masking
	z      bool // zeroing- vs merging-masking
	l2     bool // vector length bit 1 (with l below selects 128/256/512)
	l      bool
	broadcastOrRounding bool // EVEX.b: static rounding control or memory broadcast
}

// emitEVEX writes the 4-byte 0x62 EVEX prefix for the given fields.
func emitEVEX(buf *asm.Buffer, f evexFields) {
	invR := boolBit(!f.rexR)
	invX := boolBit(!f.rexX)
	invB := boolBit(!f.rexB)
	invRPrime := boolBit(!f.rPrime)
	invVVVV := (^f.vvvv) & 0xF
	invVPrime := boolBit(!f.vPrime)
	wBit := boolBit(f.w)
	bBit := boolBit(f.broadcastOrRounding)
	zBit := boolBit(f.z)

	buf.Emit8(0x62)
	buf.Emit8(invR<<7 | invX<<6 | invB<<5 | invRPrime<<4 | (f.mm & 0x3))
	buf.Emit8(wBit<<7 | invVVVV<<3 | 1<<2 | byte(f.pp)) // bit 2 is a fixed 1 per SDM
	buf.Emit8(zBit<<7 | boolBit(f.l2)<<6 | boolBit(f.l)<<5 | bBit<<4 | invVPrime<<3 | (f.aaa & 0x7))
}

// MaskPredication is the AVX-512 {k1}{z} suffix attached to an EVEX
// instruction: which mask register gates the result, and whether unselected
// elements are zeroed or merged with the destination's prior value.
type MaskPredication struct {
	Mask       Register // ClassMask register; zero value K0 means "no masking"
	ZeroMasked bool
}

// VectorLength selects the EVEX.L'L vector width.
type VectorLength uint8

const (
	VecLen128 VectorLength = iota
	VecLen256
	VecLen512
)

func (v VectorLength) bits() (l2, l bool) {
	switch v {
	case VecLen256:
		return false, true
	case VecLen512:
		return true, false
	default:
		return false, false
	}
}

// Broadcast, when true on a memory source operand, requests EVEX's
// load-and-broadcast-to-all-lanes behavior instead of a literal vector load.
type Broadcast bool
