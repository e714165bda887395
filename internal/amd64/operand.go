package amd64

import "github.com/insinfo/asmjit-sub001/internal/asm"

// OperandKind discriminates the Operand sum type (spec §4.1). Exactly one of
// the accessor groups on Operand is meaningful for a given Kind.
type OperandKind uint8

const (
	KindNone OperandKind = iota
	KindReg
	KindMem
	KindImm
	KindLabel
)

func (k OperandKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindReg:
		return "reg"
	case KindMem:
		return "mem"
	case KindImm:
		return "imm"
	case KindLabel:
		return "label"
	default:
		return "unknown"
	}
}

// Scale is a SIB byte scale factor: 1, 2, 4, or 8.
type Scale uint8

const (
	Scale1 Scale = 1
	Scale2 Scale = 2
	Scale4 Scale = 4
	Scale8 Scale = 8
)

// Mem is a memory operand: [base + index*scale + disp], RIP-relative when
// ripRelative is set (base/index are then ignored).
type Mem struct {
	base        Register
	hasBase     bool
	index       Register
	hasIndex    bool
	scale       Scale
	disp        int32
	ripRelative bool
	segment     Register
	hasSegment  bool
	sizeBits    uint16
}

// BaseIndexDisp builds a [base + index*scale + disp] memory operand with no
// base (use Register{} ) permitted for an absolute/SIB-only addressing form.
func BaseIndexDisp(base Register, hasBase bool, index Register, hasIndex bool, scale Scale, disp int32, sizeBits uint16) Mem {
	return Mem{base: base, hasBase: hasBase, index: index, hasIndex: hasIndex, scale: scale, disp: disp, sizeBits: sizeBits}
}

// BaseDisp builds a [base + disp] memory operand, the common case.
func BaseDisp(base Register, disp int32, sizeBits uint16) Mem {
	return Mem{base: base, hasBase: true, disp: disp, sizeBits: sizeBits}
}

// RIPRelative builds a [rip + disp] memory operand.
func RIPRelative(disp int32, sizeBits uint16) Mem {
	return Mem{ripRelative: true, disp: disp, sizeBits: sizeBits}
}

// WithSegment returns a copy of m with a segment override prefix attached.
func (m Mem) WithSegment(seg Register) Mem {
	m.segment = seg
	m.hasSegment = true
	return m
}

func (m Mem) HasBase() bool          { return m.hasBase }
func (m Mem) Base() Register         { return m.base }
func (m Mem) HasIndex() bool         { return m.hasIndex }
func (m Mem) Index() Register        { return m.index }
func (m Mem) ScaleFactor() Scale     { return m.scale }
func (m Mem) Disp() int32            { return m.disp }
func (m Mem) IsRIPRelative() bool    { return m.ripRelative }
func (m Mem) HasSegment() bool       { return m.hasSegment }
func (m Mem) Segment() Register      { return m.segment }
func (m Mem) SizeBits() uint16       { return m.sizeBits }

// ModRMShape classifies the addressing form a Mem operand needs, matching
// the special cases the ModR/M+SIB encoder must branch on (spec §4.4): RBP
// and R13 as a base require an explicit disp8=0 rather than mod=00, and RSP
// and R12 as a base require a SIB byte even with no index.
type ModRMShape uint8

const (
	ShapeNoBaseAbsolute ModRMShape = iota // mod=00, rm=100, SIB base=101: disp32 (plus optional index), no base
	ShapeRIPRelative
	ShapeSIBRequired     // base is RSP/R12, or an index is present
	ShapeBaseDisp0NeedsSIBOrDisp8 // base is RBP/R13 with disp==0: forced disp8=0
	ShapeSimpleBase
)

// Shape returns the addressing-form classification the encoder must use for
// m.
func (m Mem) Shape() ModRMShape {
	if m.ripRelative {
		return ShapeRIPRelative
	}
	if !m.hasBase {
		return ShapeNoBaseAbsolute
	}
	if m.hasIndex || m.base.Encoding3Bit() == 4 { // RSP/R12 low bits == 100
		return ShapeSIBRequired
	}
	if m.base.Encoding3Bit() == 5 && m.disp == 0 { // RBP/R13 low bits == 101
		return ShapeBaseDisp0NeedsSIBOrDisp8
	}
	return ShapeSimpleBase
}

// Imm is an immediate operand of 1, 2, 4, or 8 bytes, sign-extended or
// zero-extended by the encoder according to the matched opcode form.
type Imm struct {
	value    int64
	sizeBits uint16
}

// NewImm builds an immediate of the given value, sized to the narrowest of
// {8,16,32,64} that can represent it, unless sizeHintBits forces a width.
func NewImm(value int64, sizeHintBits uint16) Imm {
	if sizeHintBits == 0 {
		switch {
		case value >= -(1<<7) && value <= (1<<7)-1:
			sizeHintBits = 8
		case value >= -(1<<15) && value <= (1<<15)-1:
			sizeHintBits = 16
		case value >= -(1<<31) && value <= (1<<31)-1:
			sizeHintBits = 32
		default:
			sizeHintBits = 64
		}
	}
	return Imm{value: value, sizeBits: sizeHintBits}
}

func (i Imm) Value() int64     { return i.value }
func (i Imm) SizeBits() uint16 { return i.sizeBits }

// FitsInt8 reports whether i's value fits in a signed 8-bit immediate.
func (i Imm) FitsInt8() bool { return i.value >= -128 && i.value <= 127 }

// FitsInt32 reports whether i's value fits in a signed 32-bit immediate.
func (i Imm) FitsInt32() bool { return i.value >= -(1<<31) && i.value <= (1<<31)-1 }

// FitsUint32 reports whether i's value is representable as an unsigned
// 32-bit quantity, the test the zero-extending 32-bit MOV form needs: values
// like 0x80000000 and 0xFFFFFFFF are non-negative 32-bit patterns even
// though they fail FitsInt32 (which treats the top bit as a sign bit).
func (i Imm) FitsUint32() bool { return i.value >= 0 && i.value <= (1<<32)-1 }

// LabelRef is a reference to an as-yet-possibly-unbound label, used as the
// operand of a branch instruction. Forced selects between letting the
// dispatcher pick the shortest legal encoding and forcing one particular
// form; see spec §4.3.
type LabelRef struct {
	ID     asm.LabelID
	Forced JumpForm
}

// JumpForm selects which relative displacement width a branch targeting a
// label must use.
type JumpForm uint8

const (
	// JumpAuto lets the assembler choose rel8 when already known to be in
	// range, otherwise rel32; a backward reference to an already-bound label
	// is always measured and chosen directly, a forward reference defaults to
	// rel32 unless the caller forces JumpShort.
	JumpAuto JumpForm = iota
	JumpShort
	JumpNear
)

// Operand is the closed sum type every encoder primitive and dispatcher
// entry accepts: Register | Mem | Imm | LabelRef | none. There is no open
// interface here on purpose — spec §4.1 requires operand shapes to be
// exhaustively matchable by the dispatcher without a type switch over
// arbitrary user types.
type Operand struct {
	kind  OperandKind
	reg   Register
	mem   Mem
	imm   Imm
	label LabelRef
}

// None is the empty operand, used to pad fixed-arity shape tuples for
// instructions that take fewer than the maximum operand count.
var None = Operand{kind: KindNone}

// Reg wraps a register as an operand.
func Reg(r Register) Operand { return Operand{kind: KindReg, reg: r} }

// MemOperand wraps a memory location as an operand.
func MemOperand(m Mem) Operand { return Operand{kind: KindMem, mem: m} }

// ImmOperand wraps an immediate as an operand.
func ImmOperand(i Imm) Operand { return Operand{kind: KindImm, imm: i} }

// LabelOperand wraps a label reference as an operand.
func LabelOperand(l LabelRef) Operand { return Operand{kind: KindLabel, label: l} }

func (o Operand) Kind() OperandKind { return o.kind }
func (o Operand) Reg() Register     { return o.reg }
func (o Operand) Mem() Mem          { return o.mem }
func (o Operand) Imm() Imm          { return o.imm }
func (o Operand) Label() LabelRef   { return o.label }

// SizeBits returns the operand's width in bits, or 0 for KindNone/KindLabel.
func (o Operand) SizeBits() uint16 {
	switch o.kind {
	case KindReg:
		return o.reg.SizeBits()
	case KindMem:
		return o.mem.SizeBits()
	case KindImm:
		return o.imm.SizeBits()
	default:
		return 0
	}
}

// NeedsREXExtension reports whether encoding this operand's register (or
// memory base/index) bits requires a REX prefix.
func (o Operand) NeedsREXExtension() bool {
	switch o.kind {
	case KindReg:
		return o.reg.NeedsREXExtension()
	case KindMem:
		return (o.mem.hasBase && o.mem.base.NeedsREXExtension()) || (o.mem.hasIndex && o.mem.index.NeedsREXExtension())
	default:
		return false
	}
}

// ShapeTag is the compact per-operand classification the dispatcher keys its
// table on: a (kind, width) pair collapsed to one byte, grounded on the
// teacher's operandType/operandTypes table in impl.go.
type ShapeTag uint8

const (
	ShapeNone ShapeTag = iota
	ShapeReg8
	ShapeReg16
	ShapeReg32
	ShapeReg64
	ShapeRegVec
	ShapeRegMask
	ShapeMem
	ShapeImm8
	ShapeImm16
	ShapeImm32
	ShapeImm64
	ShapeLabel
)

// Tag computes o's ShapeTag for dispatcher lookup.
func (o Operand) Tag() ShapeTag {
	switch o.kind {
	case KindNone:
		return ShapeNone
	case KindReg:
		switch o.reg.Class() {
		case ClassVec:
			return ShapeRegVec
		case ClassMask:
			return ShapeRegMask
		default:
			switch o.reg.SizeBits() {
			case 8:
				return ShapeReg8
			case 16:
				return ShapeReg16
			case 32:
				return ShapeReg32
			default:
				return ShapeReg64
			}
		}
	case KindMem:
		return ShapeMem
	case KindImm:
		switch o.imm.SizeBits() {
		case 8:
			return ShapeImm8
		case 16:
			return ShapeImm16
		case 32:
			return ShapeImm32
		default:
			return ShapeImm64
		}
	case KindLabel:
		return ShapeLabel
	default:
		return ShapeNone
	}
}
