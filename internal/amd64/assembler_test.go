package amd64

import (
	"testing"

	"github.com/insinfo/asmjit-sub001/internal/asm"
	"github.com/stretchr/testify/require"
	"golang.org/x/arch/x86/x86asm"
)

// decodeOne disassembles the single instruction at the start of code using
// the Go toolchain's own x86 decoder, asserting it fully consumes the given
// byte count — the spec §8 testable property that emitted code "decodes
// back via any third-party disassembler to the same mnemonic and operand
// roles".
func decodeOne(t *testing.T, code []byte) x86asm.Inst {
	t.Helper()
	inst, err := x86asm.Decode(code, 64)
	require.NoError(t, err)
	require.Equal(t, len(code), inst.Len, "disassembler consumed a different length than was emitted")
	return inst
}

func TestMovRegReg(t *testing.T) {
	buf := asm.NewBuffer()
	require.NoError(t, encodeMovRR(buf, RAX, RCX))
	require.Equal(t, []byte{0x48, 0x89, 0xC8}, buf.Bytes())
	decodeOne(t, buf.Bytes())
}

func TestMovRegImm64UsesMovabs(t *testing.T) {
	buf := asm.NewBuffer()
	require.NoError(t, encodeMovRI(buf, RAX, NewImm(0x1122334455667788, 64)))
	require.Equal(t, byte(0x48), buf.Bytes()[0])
	require.Equal(t, byte(0xB8), buf.Bytes()[1])
	require.Len(t, buf.Bytes(), 10)
	decodeOne(t, buf.Bytes())
}

func TestMovRegImm64ZeroExtendsNonnegativeU32(t *testing.T) {
	buf := asm.NewBuffer()
	// 0xFFFFFFFF doesn't fit a signed int32 (FitsInt32 is false) but is a
	// valid non-negative u32 pattern, so it takes the shorter zero-extending
	// B8+r form (no REX.W) instead of the 10-byte MOVABS path.
	require.NoError(t, encodeMovRI(buf, RAX, NewImm(0xFFFFFFFF, 64)))
	require.Equal(t, []byte{0xB8, 0xFF, 0xFF, 0xFF, 0xFF}, buf.Bytes())
	decodeOne(t, buf.Bytes())
}

func TestMovRegImm64ZeroExtendBoundary0x80000000(t *testing.T) {
	buf := asm.NewBuffer()
	require.NoError(t, encodeMovRI(buf, RCX, NewImm(0x80000000, 64)))
	require.Equal(t, []byte{0xB9, 0x00, 0x00, 0x00, 0x80}, buf.Bytes())
	decodeOne(t, buf.Bytes())
}

func TestMovRegImm32FitsShortForm(t *testing.T) {
	buf := asm.NewBuffer()
	require.NoError(t, encodeMovRI(buf, RAX, NewImm(5, 32)))
	require.Equal(t, []byte{0x48, 0xC7, 0xC0, 0x05, 0x00, 0x00, 0x00}, buf.Bytes())
	decodeOne(t, buf.Bytes())
}

func TestXorEaxEaxCanonicalZeroing(t *testing.T) {
	buf := asm.NewBuffer()
	require.NoError(t, encodeALURR(buf, XOR, EAX, EAX))
	require.Equal(t, []byte{0x31, 0xC0}, buf.Bytes())
	decodeOne(t, buf.Bytes())
}

func TestExtendedRegistersSetREXBits(t *testing.T) {
	buf := asm.NewBuffer()
	require.NoError(t, encodeMovRR(buf, R8, R9))
	// REX.W=1; reg=r9(src) sets R, rm=r8(dst) sets B.
	require.Equal(t, byte(0x4D), buf.Bytes()[0]) // 0100_1101: W|R|B
	decodeOne(t, buf.Bytes())
}

func TestHighByteRegisterRejectsREX(t *testing.T) {
	buf := asm.NewBuffer()
	err := encodeMovRR(buf, R8B, AH)
	require.Error(t, err)
}

func TestHighByteRegisterAloneOK(t *testing.T) {
	buf := asm.NewBuffer()
	require.NoError(t, encodeMovRR(buf, AH, BH))
	require.Equal(t, []byte{0x88, 0xFC}, buf.Bytes())
}

func TestMandatoryREXForSPL(t *testing.T) {
	buf := asm.NewBuffer()
	require.NoError(t, encodeMovRR(buf, SPL, AL))
	require.Equal(t, byte(0x40), buf.Bytes()[0])
}

func TestMemoryOperandRBPBaseForcesDisp8(t *testing.T) {
	buf := asm.NewBuffer()
	require.NoError(t, encodeMovRM(buf, EAX, BaseDisp(RBP, 0, 32)))
	// mod=01 (disp8), reg=000 (eax), rm=101 (rbp), disp8=0x00
	require.Equal(t, []byte{0x8B, 0x45, 0x00}, buf.Bytes())
	decodeOne(t, buf.Bytes())
}

func TestMemoryOperandRSPBaseNeedsSIB(t *testing.T) {
	buf := asm.NewBuffer()
	require.NoError(t, encodeMovRM(buf, EAX, BaseDisp(RSP, 8, 32)))
	decodeOne(t, buf.Bytes())
}

func TestMemoryOperandRBPBaseWithIndexForcesDisp8(t *testing.T) {
	buf := asm.NewBuffer()
	// [rbp + rcx*4], disp==0. The SIB base field for RBP is 101, which at
	// mod=00 means "no base, disp32" rather than "base RBP" — forcing
	// mod=01/disp8=0 here keeps the base register from being silently
	// dropped the same way the no-index disp0 case already requires.
	require.NoError(t, encodeMovRM(buf, EAX, BaseIndexDisp(RBP, true, RCX, true, Scale4, 0, 32)))
	// mod=01, reg=000 (eax), rm=100 (SIB follows); SIB: ss=10,index=001(rcx),base=101(rbp); disp8=0x00
	require.Equal(t, []byte{0x8B, 0x44, 0x8D, 0x00}, buf.Bytes())
	decodeOne(t, buf.Bytes())
}

func TestMemoryOperandR13BaseWithIndexForcesDisp8(t *testing.T) {
	buf := asm.NewBuffer()
	require.NoError(t, encodeMovRM(buf, EAX, BaseIndexDisp(R13, true, RCX, true, Scale1, 0, 32)))
	decodeOne(t, buf.Bytes())
}

func TestMemoryOperandRIPRelative(t *testing.T) {
	buf := asm.NewBuffer()
	require.NoError(t, encodeMovRM(buf, EAX, RIPRelative(0x10, 32)))
	require.Equal(t, []byte{0x8B, 0x05, 0x10, 0x00, 0x00, 0x00}, buf.Bytes())
	decodeOne(t, buf.Bytes())
}

func TestLEA(t *testing.T) {
	buf := asm.NewBuffer()
	require.NoError(t, encodeLEA(buf, RAX, BaseIndexDisp(RBX, true, RCX, true, Scale4, 0x10, 64)))
	decodeOne(t, buf.Bytes())
}

func TestJumpForwardShortThenBind(t *testing.T) {
	a := NewAssembler()
	id := a.NewLabel()
	require.NoError(t, a.CompileJump(id, JumpShort))
	a.Buffer().PadNOP(10)
	require.NoError(t, a.BindLabel(id))
	require.NoError(t, a.Finalize())

	code := a.Buffer().Bytes()
	require.Equal(t, byte(0xEB), code[0])
	require.Equal(t, int8(10), int8(code[1]))
	decodeOne(t, code[:2])
}

func TestJumpForwardNearDefaultsWhenUnforced(t *testing.T) {
	a := NewAssembler()
	id := a.NewLabel()
	require.NoError(t, a.CompileJump(id, JumpAuto))
	require.NoError(t, a.BindLabel(id))
	require.NoError(t, a.Finalize())

	code := a.Buffer().Bytes()
	require.Equal(t, byte(0xE9), code[0])
}

func TestJumpBackwardPrefersShort(t *testing.T) {
	a := NewAssembler()
	id := a.NewLabel()
	require.NoError(t, a.BindLabel(id))
	require.NoError(t, a.CompileJump(id, JumpAuto))
	require.NoError(t, a.Finalize())

	code := a.Buffer().Bytes()
	require.Equal(t, byte(0xEB), code[0])
	require.Equal(t, int8(-2), int8(code[1]))
}

func TestJccRoundTrip(t *testing.T) {
	a := NewAssembler()
	id := a.NewLabel()
	require.NoError(t, a.CompileJcc(CondE, id, JumpAuto))
	require.NoError(t, a.BindLabel(id))
	require.NoError(t, a.Finalize())
	decodeOne(t, a.Buffer().Bytes())
}

func TestMismatchedWidthRejected(t *testing.T) {
	buf := asm.NewBuffer()
	err := encodeALURR(buf, ADD, RAX, EAX)
	require.Error(t, err)
}
