package builder

import (
	"testing"

	"github.com/insinfo/asmjit-sub001/internal/amd64"
	"github.com/stretchr/testify/require"
	"golang.org/x/arch/x86/x86asm"
)

func TestBuilderLinearInstructionSequence(t *testing.T) {
	b := New()
	b.Inst(amd64.MOV, amd64.Reg(amd64.RAX), amd64.Reg(amd64.RCX))
	b.Inst(amd64.RET)

	code, err := b.Assemble()
	require.NoError(t, err)
	require.Equal(t, []byte{0x48, 0x89, 0xC8, 0xC3}, code)
}

func TestBuilderLabelBindAfterForwardJump(t *testing.T) {
	b := New()
	id := b.NewLabel()
	b.Jcc(amd64.CondE, id, amd64.JumpAuto)
	b.Inst(amd64.NOP)
	b.Label(id)
	b.Inst(amd64.RET)

	code, err := b.Assemble()
	require.NoError(t, err)
	// near Jcc form: 0F 8x rel32 (6 bytes), then one NOP, then RET at the
	// target the displacement must point at.
	inst, err := x86asm.Decode(code, 64)
	require.NoError(t, err)
	require.Equal(t, 6, inst.Len)
	require.Equal(t, byte(0xC3), code[len(code)-1])
}

func TestBuilderReadInstructionAddressBackward(t *testing.T) {
	b := New()
	id := b.NewLabel()
	b.Label(id)
	b.Inst(amd64.NOP)
	b.ReadInstructionAddress(amd64.RAX, id)

	code, err := b.Assemble()
	require.NoError(t, err)
	// lea rax, [rip+disp32]: 48 8D 05 dd dd dd dd, 7 bytes, at the tail.
	leaStart := len(code) - 7
	require.Equal(t, []byte{0x48, 0x8D, 0x05}, code[leaStart:leaStart+3])
	disp := int32(uint32(code[leaStart+3]) | uint32(code[leaStart+4])<<8 | uint32(code[leaStart+5])<<16 | uint32(code[leaStart+6])<<24)
	siteEnd := leaStart + 7
	require.EqualValues(t, 0-siteEnd, int(disp)) // label bound at offset 0
}

func TestBuilderEmbedDataAndComment(t *testing.T) {
	b := New()
	b.Comment("jump table follows")
	b.EmbedData([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	b.Inst(amd64.NOP)

	code, err := b.Assemble()
	require.NoError(t, err)
	require.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x90}, code)
}

func TestBuilderAlignPadsToBoundary(t *testing.T) {
	b := New()
	b.Inst(amd64.NOP)
	b.Align(8)
	b.Inst(amd64.RET)

	code, err := b.Assemble()
	require.NoError(t, err)
	require.Len(t, code, 9) // 1 nop + 7 padding bytes to reach offset 8 + 1 ret
	require.Equal(t, byte(0xC3), code[8])
}

func TestBuilderUnboundLabelFailsFinalize(t *testing.T) {
	b := New()
	id := b.NewLabel()
	b.Jcc(amd64.CondNE, id, amd64.JumpAuto)

	_, err := b.Assemble()
	require.Error(t, err)
}
