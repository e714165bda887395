package amd64

import "fmt"

// RegClass identifies the register file a Register belongs to.
type RegClass uint8

const (
	ClassGP RegClass = iota
	ClassVec
	ClassMask
	ClassSegment
	ClassST
	ClassMM
)

func (c RegClass) String() string {
	switch c {
	case ClassGP:
		return "gp"
	case ClassVec:
		return "vec"
	case ClassMask:
		return "mask"
	case ClassSegment:
		return "segment"
	case ClassST:
		return "st"
	case ClassMM:
		return "mm"
	default:
		return "unknown"
	}
}

// Register is an immutable descriptor for one physical (or, for the
// calling-convention resolver, virtual) register. Values are small and
// passed by value throughout the encoder; spec §3 forbids heap allocation
// for operands.
//
// Virtual registers (used only by the abi package, never by the encoder)
// carry a negative ID and an otherwise-zero descriptor.
type Register struct {
	class    RegClass
	id       int8 // 0..31 for vec on AVX-512, 0..15 for gp, 0..7 for mask/segment/st/mm. Negative => virtual.
	sizeBits uint16
	highByte bool // true only for AH/BH/CH/DH
}

// IsVirtual reports whether r is a placeholder used only by the
// calling-convention resolver and frame/mover components, never emitted
// directly by the encoder.
func (r Register) IsVirtual() bool { return r.id < 0 }

// Class returns the register file r belongs to.
func (r Register) Class() RegClass { return r.class }

// ID returns the physical register id.
func (r Register) ID() int8 { return r.id }

// SizeBits returns the register's width in bits (8/16/32/64/128/256/512).
func (r Register) SizeBits() uint16 { return r.sizeBits }

// IsHighByte reports whether r is one of AH/BH/CH/DH. A high-byte register
// cannot coexist with a REX prefix in the same instruction (spec §3).
func (r Register) IsHighByte() bool { return r.highByte }

// NeedsREXExtension reports whether encoding r's 4th (extension) bit requires
// a REX prefix, i.e. its physical id is >= 8.
func (r Register) NeedsREXExtension() bool { return r.id >= 8 }

// Encoding3Bit returns the low three bits of r's physical id, the value
// placed directly into a ModR/M or SIB field.
func (r Register) Encoding3Bit() byte { return byte(r.id) & 0x7 }

func (r Register) String() string {
	if r.IsVirtual() {
		return fmt.Sprintf("v%d", -int(r.id))
	}
	if name, ok := registerNames[r]; ok {
		return name
	}
	return fmt.Sprintf("%s%d.%d", r.class, r.id, r.sizeBits)
}

func gpReg(id int8, bits uint16) Register   { return Register{class: ClassGP, id: id, sizeBits: bits} }
func vecReg(id int8, bits uint16) Register  { return Register{class: ClassVec, id: id, sizeBits: bits} }
func maskReg(id int8) Register              { return Register{class: ClassMask, id: id, sizeBits: 64} }
func segReg(id int8) Register               { return Register{class: ClassSegment, id: id, sizeBits: 16} }
func stReg(id int8) Register                { return Register{class: ClassST, id: id, sizeBits: 80} }
func mmReg(id int8) Register                { return Register{class: ClassMM, id: id, sizeBits: 64} }
func highByteReg(id int8) Register          { return Register{class: ClassGP, id: id, sizeBits: 8, highByte: true} }

// VirtualGP returns a placeholder GP register for use only by the
// calling-convention resolver before physical assignment.
func VirtualGP(n int) Register { return Register{class: ClassGP, id: int8(-(n + 1)), sizeBits: 64} }

// General purpose registers, 64-bit width. The *L/*D/*W/*B variants share
// the same physical id at a narrower width.
var (
	RAX = gpReg(0, 64)
	RCX = gpReg(1, 64)
	RDX = gpReg(2, 64)
	RBX = gpReg(3, 64)
	RSP = gpReg(4, 64)
	RBP = gpReg(5, 64)
	RSI = gpReg(6, 64)
	RDI = gpReg(7, 64)
	R8  = gpReg(8, 64)
	R9  = gpReg(9, 64)
	R10 = gpReg(10, 64)
	R11 = gpReg(11, 64)
	R12 = gpReg(12, 64)
	R13 = gpReg(13, 64)
	R14 = gpReg(14, 64)
	R15 = gpReg(15, 64)

	EAX = gpReg(0, 32)
	ECX = gpReg(1, 32)
	EDX = gpReg(2, 32)
	EBX = gpReg(3, 32)
	ESP = gpReg(4, 32)
	EBP = gpReg(5, 32)
	ESI = gpReg(6, 32)
	EDI = gpReg(7, 32)
	R8D = gpReg(8, 32)
	R9D = gpReg(9, 32)

	AX = gpReg(0, 16)
	CX = gpReg(1, 16)

	AL  = gpReg(0, 8)
	CL  = gpReg(1, 8)
	DL  = gpReg(2, 8)
	BL  = gpReg(3, 8)
	SPL = gpReg(4, 8)
	BPL = gpReg(5, 8)
	SIL = gpReg(6, 8)
	DIL = gpReg(7, 8)
	R8B = gpReg(8, 8)

	AH = highByteReg(4)
	CH = highByteReg(5)
	DH = highByteReg(6)
	BH = highByteReg(7)
)

// Vector registers. Width is selected by the caller via XMM/YMM/ZMM.
func XMM(id int8) Register { return vecReg(id, 128) }
func YMM(id int8) Register { return vecReg(id, 256) }
func ZMM(id int8) Register { return vecReg(id, 512) }

// Mask registers K0..K7 (AVX-512 predicate registers).
func K(id int8) Register { return maskReg(id) }

// Segment registers.
var (
	FS = segReg(4)
	GS = segReg(5)
)

var registerNames = func() map[Register]string {
	m := map[Register]string{
		RAX: "RAX", RCX: "RCX", RDX: "RDX", RBX: "RBX", RSP: "RSP", RBP: "RBP", RSI: "RSI", RDI: "RDI",
		R8: "R8", R9: "R9", R10: "R10", R11: "R11", R12: "R12", R13: "R13", R14: "R14", R15: "R15",
		EAX: "EAX", ECX: "ECX", EDX: "EDX", EBX: "EBX", ESP: "ESP", EBP: "EBP", ESI: "ESI", EDI: "EDI",
		AL: "AL", CL: "CL", DL: "DL", BL: "BL", SPL: "SPL", BPL: "BPL", SIL: "SIL", DIL: "DIL",
		AH: "AH", CH: "CH", DH: "DH", BH: "BH",
		FS: "FS", GS: "GS",
	}
	for i := int8(0); i < 16; i++ {
		m[XMM(i)] = fmt.Sprintf("XMM%d", i)
		m[YMM(i)] = fmt.Sprintf("YMM%d", i)
	}
	for i := int8(0); i < 32; i++ {
		m[ZMM(i)] = fmt.Sprintf("ZMM%d", i)
	}
	for i := int8(0); i < 8; i++ {
		m[K(i)] = fmt.Sprintf("K%d", i)
	}
	return m
}()
