package abi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSysVIntArgsUseRDIRSIRDX(t *testing.T) {
	sig := FuncSignature{
		Args:       []TypeID{TypeInt64, TypeInt64, TypeInt64},
		Return:     TypeInt64,
		HasReturn:  true,
		Convention: ConventionSysV,
	}
	frame := Resolve(sig)
	require.Len(t, frame.ArgSlots, 3)
	for _, slot := range frame.ArgSlots {
		require.True(t, slot.InRegister)
		require.Equal(t, RegClassInt, slot.RegClass)
	}
	require.Equal(t, 7, frame.ArgSlots[0].RegIndex) // RDI
	require.Equal(t, 6, frame.ArgSlots[1].RegIndex) // RSI
	require.Equal(t, 2, frame.ArgSlots[2].RegIndex) // RDX
	require.Equal(t, 0, frame.ShadowSpace)
	require.True(t, frame.ReturnSlot.InRegister)
	require.Equal(t, 0, frame.ReturnSlot.RegIndex) // RAX
}

func TestSysVOverflowArgsSpillToStack(t *testing.T) {
	args := make([]TypeID, 8)
	for i := range args {
		args[i] = TypeInt64
	}
	frame := Resolve(FuncSignature{Args: args, Convention: ConventionSysV})
	for i := 0; i < 6; i++ {
		require.True(t, frame.ArgSlots[i].InRegister, "arg %d should be in a register", i)
	}
	require.False(t, frame.ArgSlots[6].InRegister)
	require.Equal(t, 0, frame.ArgSlots[6].StackOffset)
	require.False(t, frame.ArgSlots[7].InRegister)
	require.Equal(t, 8, frame.ArgSlots[7].StackOffset)
	require.Equal(t, 16, frame.StackArgsBytes)
}

func TestSysVMixedIntAndVectorIndependentCounters(t *testing.T) {
	sig := FuncSignature{
		Args:       []TypeID{TypeFloat64, TypeInt64, TypeFloat64},
		Convention: ConventionSysV,
	}
	frame := Resolve(sig)
	require.Equal(t, RegClassVector, frame.ArgSlots[0].RegClass)
	require.Equal(t, 0, frame.ArgSlots[0].RegIndex) // XMM0
	require.Equal(t, RegClassInt, frame.ArgSlots[1].RegClass)
	require.Equal(t, 7, frame.ArgSlots[1].RegIndex) // RDI: vector consumption doesn't advance the int counter
	require.Equal(t, RegClassVector, frame.ArgSlots[2].RegClass)
	require.Equal(t, 1, frame.ArgSlots[2].RegIndex) // XMM1
}

func TestWin64SharesOnePositionalCounterAcrossClasses(t *testing.T) {
	sig := FuncSignature{
		Args:       []TypeID{TypeInt64, TypeFloat64, TypeInt64, TypeInt64, TypeInt64},
		Convention: ConventionWin64,
	}
	frame := Resolve(sig)
	require.Equal(t, 1, frame.ArgSlots[0].RegIndex) // RCX (position 0)
	require.Equal(t, RegClassVector, frame.ArgSlots[1].RegClass)
	require.Equal(t, 1, frame.ArgSlots[1].RegIndex) // XMM1 (position 1, not XMM0)
	require.Equal(t, RegClassInt, frame.ArgSlots[2].RegClass)
	require.Equal(t, 8, frame.ArgSlots[2].RegIndex) // R8 (position 2)
	require.Equal(t, RegClassInt, frame.ArgSlots[3].RegClass)
	require.Equal(t, 9, frame.ArgSlots[3].RegIndex) // R9 (position 3, the last shared slot)
	require.False(t, frame.ArgSlots[4].InRegister)  // position 4 overflows Win64's 4 shared slots
	require.Equal(t, 0, frame.ArgSlots[4].StackOffset)
	require.Equal(t, 32, frame.ShadowSpace)
}

func TestWin64WideVectorPassedIndirectly(t *testing.T) {
	sig := FuncSignature{
		Args:       []TypeID{TypeVector256},
		Convention: ConventionWin64,
	}
	frame := Resolve(sig)
	require.True(t, frame.ArgSlots[0].InRegister)
	require.True(t, frame.ArgSlots[0].Indirect)
}

func TestVectorCallUsesSixVectorSlots(t *testing.T) {
	args := make([]TypeID, 6)
	for i := range args {
		args[i] = TypeFloat64
	}
	frame := Resolve(FuncSignature{Args: args, Convention: ConventionVectorCall})
	for i, slot := range frame.ArgSlots {
		require.True(t, slot.InRegister, "arg %d", i)
		require.Equal(t, i, slot.RegIndex)
	}
}
