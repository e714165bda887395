package abi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingEmitter struct {
	ops          []string
	pushedRegs   []int
	poppedRegs   []int
	lastImm      int32
	lastPopBytes uint16
}

func (r *recordingEmitter) PushReg(reg int) error {
	r.ops = append(r.ops, "push")
	r.pushedRegs = append(r.pushedRegs, reg)
	return nil
}

func (r *recordingEmitter) PopReg(reg int) error {
	r.ops = append(r.ops, "pop")
	r.poppedRegs = append(r.poppedRegs, reg)
	return nil
}

func (r *recordingEmitter) MovRegReg(dst, src int) error {
	r.ops = append(r.ops, "mov")
	return nil
}

func (r *recordingEmitter) SubRegImm(reg int, imm int32) error {
	r.ops = append(r.ops, "sub")
	r.lastImm = imm
	return nil
}

func (r *recordingEmitter) AddRegImm(reg int, imm int32) error {
	r.ops = append(r.ops, "add")
	r.lastImm = imm
	return nil
}

func (r *recordingEmitter) Ret(popBytes uint16) error {
	r.ops = append(r.ops, "ret")
	r.lastPopBytes = popBytes
	return nil
}

func TestSysVLeafFrameSkipsAdjustmentWithinRedZone(t *testing.T) {
	layout := Layout{
		Frame:       FuncFrame{Signature: FuncSignature{Convention: ConventionSysV}},
		LocalsBytes: 32,
		IsLeaf:      true,
	}
	require.EqualValues(t, 0, layout.RequiredStackAdjustment())

	e := &recordingEmitter{}
	require.NoError(t, EmitPrologue(e, layout))
	require.Equal(t, []string{"push", "mov"}, e.ops)
}

func TestSysVNonLeafFrameNoPad(t *testing.T) {
	// push rbp alone puts push_bytes+8 at 16 (already 16-aligned), so pad
	// is 0 and the adjustment is exactly the locals size.
	layout := Layout{
		Frame:       FuncFrame{Signature: FuncSignature{Convention: ConventionSysV}},
		LocalsBytes: 10,
		IsLeaf:      false,
	}
	require.EqualValues(t, 10, layout.RequiredStackAdjustment())
}

func TestOddPreservedRegCountAddsPad(t *testing.T) {
	// One preserved register makes two pushes total (rbp + rbx): push_bytes
	// = 16, (16+8) mod 16 = 8, so pad = 8.
	layout := Layout{
		Frame: FuncFrame{
			Signature:     FuncSignature{Convention: ConventionSysV},
			PreservedRegs: []int{3}, // RBX
		},
		LocalsBytes: 10,
		IsLeaf:      false,
	}
	require.EqualValues(t, 18, layout.RequiredStackAdjustment())
}

func TestWin64FrameIncludesShadowSpaceInLocalsBytes(t *testing.T) {
	// RequiredStackAdjustment no longer folds ShadowSpace in automatically
	// (it's only owed when the function itself makes calls); a non-leaf
	// caller includes it directly in LocalsBytes.
	frame := Resolve(FuncSignature{Args: []TypeID{TypeInt64}, Convention: ConventionWin64})
	layout := Layout{Frame: frame, LocalsBytes: frame.ShadowSpace, IsLeaf: false}
	require.EqualValues(t, 32, layout.RequiredStackAdjustment())
}

func TestEmitPrologueEpilogueSequence(t *testing.T) {
	layout := Layout{
		Frame:       FuncFrame{Signature: FuncSignature{Convention: ConventionSysV}},
		LocalsBytes: 64,
		IsLeaf:      false,
	}
	e := &recordingEmitter{}
	require.NoError(t, EmitPrologue(e, layout))
	require.Equal(t, []string{"push", "mov", "sub"}, e.ops)
	require.EqualValues(t, 64, e.lastImm)

	e.ops = nil
	require.NoError(t, EmitEpilogue(e, layout))
	require.Equal(t, []string{"mov", "pop", "ret"}, e.ops)
	require.EqualValues(t, 0, e.lastPopBytes)
}

func TestEmitPrologueEpiloguePreservesCalleeSavedRegs(t *testing.T) {
	// Spec §8 scenario #6: Win64, RBX+R12 preserved, local=48 ->
	// push rbp; mov rbp,rsp; push rbx; push r12; sub rsp,48.
	layout := Layout{
		Frame: FuncFrame{
			Signature:     FuncSignature{Convention: ConventionWin64},
			PreservedRegs: []int{3, 12}, // RBX, R12
		},
		LocalsBytes: 48,
		IsLeaf:      false,
	}
	require.EqualValues(t, 48, layout.RequiredStackAdjustment())

	e := &recordingEmitter{}
	require.NoError(t, EmitPrologue(e, layout))
	require.Equal(t, []string{"push", "mov", "push", "push", "sub"}, e.ops)
	require.Equal(t, []int{PhysRegFramePointer, 3, 12}, e.pushedRegs)
	require.EqualValues(t, 48, e.lastImm)

	e.ops = nil
	require.NoError(t, EmitEpilogue(e, layout))
	// deallocate, then pop in reverse declared order (r12, rbx), then rbp.
	require.Equal(t, []string{"add", "pop", "pop", "pop", "ret"}, e.ops)
	require.Equal(t, []int{12, 3, PhysRegFramePointer}, e.poppedRegs)
}
