package amd64

import "github.com/insinfo/asmjit-sub001/internal/asm"

// Assembler owns one code buffer and its label table and is the sole
// mutator of both, matching the teacher's AssemblerBase/assemblerImpl
// single-owner-aggregate convention (spec §5). It is not safe for
// concurrent use.
type Assembler struct {
	buf    *asm.Buffer
	labels *asm.LabelTable
}

// NewAssembler returns an empty Assembler ready to emit amd64 machine code.
func NewAssembler() *Assembler {
	return &Assembler{buf: asm.NewBuffer(), labels: asm.NewLabelTable()}
}

// Buffer exposes the underlying code buffer, e.g. for Bytes()/Len() once
// assembly is finished.
func (a *Assembler) Buffer() *asm.Buffer { return a.buf }

// Labels exposes the underlying label table, e.g. for Finalize().
func (a *Assembler) Labels() *asm.LabelTable { return a.labels }

// Offset returns the current buffer length, the program-counter-relative
// offset at which the next emitted instruction will begin.
func (a *Assembler) Offset() int { return a.buf.Len() }

// NewLabel allocates a fresh unbound label.
func (a *Assembler) NewLabel() asm.LabelID { return a.labels.NewLabel() }

// NewNamedLabel allocates a fresh unbound label carrying a diagnostic name.
func (a *Assembler) NewNamedLabel(name string) asm.LabelID { return a.labels.NewNamedLabel(name) }

// BindLabel binds id to the assembler's current offset and patches any
// pending forward references against it.
func (a *Assembler) BindLabel(id asm.LabelID) error { return a.labels.Bind(id, a.buf) }

// Finalize reports an error if any relocation site is still pending.
func (a *Assembler) Finalize() error { return a.labels.Finalize() }

// Align pads the buffer with NOPs until Offset()%n == 0.
func (a *Assembler) Align(n int) { a.buf.Align(n) }

// Emit is the generic dispatcher entry point, the single (inst, shape
// tuple) lookup surface (spec §4.5). Most typed Compile* methods below wrap
// this call; CompileConstToMemory, CompileJcc, CompileSetcc, CompileCmovcc
// and CompileEvexRRRMasked call their encoders directly instead.
func (a *Assembler) Emit(inst Instruction, ops ...Operand) error {
	padded := make([]Operand, 4)
	copy(padded, ops)
	return dispatch(a.buf, a.labels, inst, padded)
}

// CompileRegisterToRegister emits inst with two register operands in
// (dst, src) order, naming grounded on the teacher's
// AssemblerBase.CompileRegisterToRegister.
func (a *Assembler) CompileRegisterToRegister(inst Instruction, dst, src Register) error {
	return a.Emit(inst, Reg(dst), Reg(src))
}

// CompileMemoryToRegister emits inst with a memory source and register
// destination.
func (a *Assembler) CompileMemoryToRegister(inst Instruction, dst Register, src Mem) error {
	return a.Emit(inst, Reg(dst), MemOperand(src))
}

// CompileRegisterToMemory emits inst with a register source and memory
// destination.
func (a *Assembler) CompileRegisterToMemory(inst Instruction, dst Mem, src Register) error {
	return a.Emit(inst, MemOperand(dst), Reg(src))
}

// CompileConstToRegister emits inst with an immediate source and register
// destination.
func (a *Assembler) CompileConstToRegister(inst Instruction, dst Register, imm Imm) error {
	return a.Emit(inst, Reg(dst), ImmOperand(imm))
}

// CompileConstToMemory emits a MOV of an immediate directly to a memory
// location, the one ALU-shaped form the generic Emit dispatcher does not
// cover since its width must be given explicitly rather than inferred from
// a register operand.
func (a *Assembler) CompileConstToMemory(dst Mem, imm Imm, widthBits uint16) error {
	return encodeMovMI(a.buf, dst, imm, widthBits)
}

// CompileStandAlone emits a zero-operand instruction such as RET or NOP.
func (a *Assembler) CompileStandAlone(inst Instruction) error {
	return a.Emit(inst)
}

// CompileJump emits an unconditional jump to a label.
func (a *Assembler) CompileJump(target asm.LabelID, form JumpForm) error {
	return a.Emit(JMP, LabelOperand(LabelRef{ID: target, Forced: form}))
}

// CompileJumpToRegister emits an indirect jump through a register.
func (a *Assembler) CompileJumpToRegister(target Register) error {
	return a.Emit(JMP, Reg(target))
}

// CompileJumpToMemory emits an indirect jump through a memory operand.
func (a *Assembler) CompileJumpToMemory(target Mem) error {
	return a.Emit(JMP, MemOperand(target))
}

// CompileCall emits a direct relative call to a label.
func (a *Assembler) CompileCall(target asm.LabelID) error {
	return a.Emit(CALL, LabelOperand(LabelRef{ID: target, Forced: JumpNear}))
}

// CompileCallRegister emits an indirect call through a register.
func (a *Assembler) CompileCallRegister(target Register) error {
	return a.Emit(CALL, Reg(target))
}

// CompileJcc emits a conditional jump to a label.
func (a *Assembler) CompileJcc(cond ConditionFlag, target asm.LabelID, form JumpForm) error {
	return encodeJccLabel(a.buf, a.labels, cond, LabelRef{ID: target, Forced: form})
}

// CompileSetcc emits a condition-to-byte store.
func (a *Assembler) CompileSetcc(cond ConditionFlag, dst Register) error {
	return encodeSetcc(a.buf, cond, dst)
}

// CompileCmovcc emits a conditional move.
func (a *Assembler) CompileCmovcc(cond ConditionFlag, dst, src Register) error {
	return encodeCmovcc(a.buf, cond, dst, src)
}

// CompileLEA emits an address computation.
func (a *Assembler) CompileLEA(dst Register, src Mem) error {
	return a.Emit(LEA, Reg(dst), MemOperand(src))
}

// CompilePush emits a push of a register, immediate, or (not yet supported
// here) memory operand.
func (a *Assembler) CompilePush(op Operand) error {
	return a.Emit(PUSH, op)
}

// CompilePop emits a pop into a register.
func (a *Assembler) CompilePop(dst Register) error {
	return a.Emit(POP, Reg(dst))
}

// CompileRet emits a return, popping imm16 extra bytes of caller arguments
// when nonzero.
func (a *Assembler) CompileRet(imm16 uint16) error {
	if imm16 == 0 {
		return a.Emit(RET)
	}
	return a.Emit(RET, ImmOperand(NewImm(int64(imm16), 16)))
}

// CompileVexRRR emits a three-operand VEX-encoded AVX instruction
// (dst, src1, src2), the register-only form spec §4.4 requires the
// dispatcher to route to encodeVexRRR.
func (a *Assembler) CompileVexRRR(inst Instruction, dst, src1, src2 Register) error {
	return a.Emit(inst, Reg(dst), Reg(src1), Reg(src2))
}

// CompileEvexRRR emits an unmasked three-operand EVEX instruction.
func (a *Assembler) CompileEvexRRR(inst Instruction, dst, src1, src2 Register) error {
	return a.Emit(inst, Reg(dst), Reg(src1), Reg(src2))
}

// CompileEvexRRRMasked emits a three-operand EVEX instruction under an
// opmask/zeroing predicate. The {k}{z} suffix has no home in Operand's closed
// sum type (Register | Mem | Imm | LabelRef), so this bypasses the generic
// Emit dispatcher and calls encodeEvexRRR directly, the same precedent
// CompileConstToMemory sets for shapes Operand cannot represent.
func (a *Assembler) CompileEvexRRRMasked(inst Instruction, dst, src1, src2 Register, mask MaskPredication) error {
	return encodeEvexRRR(a.buf, inst, dst, src1, src2, vecLenFromReg(dst), mask)
}
