package x86asm

import (
	"testing"

	"github.com/insinfo/asmjit-sub001/internal/abi"
	"github.com/insinfo/asmjit-sub001/internal/amd64"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentDefaultConvention(t *testing.T) {
	require.Equal(t, abi.ConventionSysV, Environment{Platform: PlatformLinux}.DefaultConvention())
	require.Equal(t, abi.ConventionSysV, Environment{Platform: PlatformDarwin}.DefaultConvention())
	require.Equal(t, abi.ConventionWin64, Environment{Platform: PlatformWindows}.DefaultConvention())
}

func TestAssemblerEmitsThroughFacade(t *testing.T) {
	a := NewAssembler(Environment{Arch: Amd64, Platform: PlatformLinux})
	a.Inst(amd64.MOV, amd64.Reg(amd64.RAX), amd64.Reg(amd64.RCX))
	a.Inst(amd64.RET)

	code, err := a.Assemble()
	require.NoError(t, err)
	require.Equal(t, []byte{0x48, 0x89, 0xC8, 0xC3}, code)
}

func TestAssemblerLabelRoundTrip(t *testing.T) {
	a := NewAssembler(Environment{Arch: Amd64, Platform: PlatformLinux})
	id := a.NewLabel()
	a.Jcc(amd64.CondG, id, amd64.JumpAuto)
	a.Label(id)
	a.Inst(amd64.RET)

	code, err := a.Assemble()
	require.NoError(t, err)
	require.Equal(t, byte(0xC3), code[len(code)-1])
}

func TestResolveSignatureUsesEnvironmentConvention(t *testing.T) {
	a := NewAssembler(Environment{Arch: Amd64, Platform: PlatformWindows})
	frame := a.ResolveSignature(abi.FuncSignature{Args: []abi.TypeID{abi.TypeInt64}})
	require.Equal(t, 1, frame.ArgSlots[0].RegIndex) // RCX, the Win64 first slot
	require.Equal(t, 32, frame.ShadowSpace)
}
