package builder

import (
	"github.com/insinfo/asmjit-sub001/internal/abi"
	"github.com/insinfo/asmjit-sub001/internal/amd64"
)

// gpByIndex and vecByIndex map the abi package's register numbers
// (Slot.RegIndex, hardware numbering within each class) to concrete amd64
// registers. The abi package itself
// never references amd64.Register (spec §6's TypeId/Environment consumed-
// interface contract keeps it encoder-independent); this table is where
// that independence gets bridged back together.
var gpByIndex = [16]amd64.Register{
	amd64.RAX, amd64.RCX, amd64.RDX, amd64.RBX, amd64.RSP, amd64.RBP, amd64.RSI, amd64.RDI,
	amd64.R8, amd64.R9, amd64.R10, amd64.R11, amd64.R12, amd64.R13, amd64.R14, amd64.R15,
}

func vecByIndex(i int) amd64.Register { return amd64.XMM(int8(i)) }

// RegisterFor resolves an abi.Slot already known to be in a register to its
// concrete amd64 register.
func RegisterFor(slot abi.Slot) amd64.Register {
	if slot.RegClass == abi.RegClassVector {
		return vecByIndex(slot.RegIndex)
	}
	return gpByIndex[slot.RegIndex]
}

// FrameEmitter adapts a Builder to the abi.Emitter capability interface so
// internal/abi's frame prologue/epilogue synthesis can drive it without
// depending on internal/amd64 or internal/builder directly.
type FrameEmitter struct {
	B *Builder
}

func (f FrameEmitter) resolvePhys(physReg int) amd64.Register {
	switch physReg {
	case abi.PhysRegFramePointer:
		return amd64.RBP
	case abi.PhysRegStackPointer:
		return amd64.RSP
	default:
		return gpByIndex[physReg]
	}
}

func (f FrameEmitter) PushReg(physReg int) error {
	f.B.Inst(amd64.PUSH, amd64.Reg(f.resolvePhys(physReg)))
	return nil
}

func (f FrameEmitter) PopReg(physReg int) error {
	f.B.Inst(amd64.POP, amd64.Reg(f.resolvePhys(physReg)))
	return nil
}

func (f FrameEmitter) MovRegReg(dstPhysReg, srcPhysReg int) error {
	f.B.Inst(amd64.MOV, amd64.Reg(f.resolvePhys(dstPhysReg)), amd64.Reg(f.resolvePhys(srcPhysReg)))
	return nil
}

func (f FrameEmitter) SubRegImm(physReg int, imm int32) error {
	f.B.Inst(amd64.SUB, amd64.Reg(f.resolvePhys(physReg)), amd64.ImmOperand(amd64.NewImm(int64(imm), 32)))
	return nil
}

func (f FrameEmitter) AddRegImm(physReg int, imm int32) error {
	f.B.Inst(amd64.ADD, amd64.Reg(f.resolvePhys(physReg)), amd64.ImmOperand(amd64.NewImm(int64(imm), 32)))
	return nil
}

func (f FrameEmitter) Ret(popBytes uint16) error {
	if popBytes == 0 {
		f.B.Inst(amd64.RET)
		return nil
	}
	f.B.Inst(amd64.RET, amd64.ImmOperand(amd64.NewImm(int64(popBytes), 16)))
	return nil
}

// EmitMoves appends the scheduled register-to-register moves (and any
// cycle-breaking XCHGs) an abi.Schedule call produced, within the
// register class the RegisterFor-resolved indices belong to.
func EmitMoves(b *Builder, class abi.RegClass, moves []abi.ScheduledMove) {
	resolve := func(idx int) amd64.Register {
		if class == abi.RegClassVector {
			return vecByIndex(idx)
		}
		return gpByIndex[idx]
	}
	for _, m := range moves {
		dst, src := resolve(m.To), resolve(m.From)
		if m.IsXchg {
			b.Inst(amd64.XCHG, amd64.Reg(dst), amd64.Reg(src))
		} else {
			b.Inst(amd64.MOV, amd64.Reg(dst), amd64.Reg(src))
		}
	}
}
