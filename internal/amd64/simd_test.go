package amd64

import (
	"testing"

	"github.com/insinfo/asmjit-sub001/internal/asm"
	"github.com/stretchr/testify/require"
)

func TestMovssRegReg(t *testing.T) {
	buf := asm.NewBuffer()
	require.NoError(t, encodeSSERR(buf, MOVSS, XMM(0), XMM(1)))
	require.Equal(t, []byte{0xF3, 0x0F, 0x10, 0xC1}, buf.Bytes())
	decodeOne(t, buf.Bytes())
}

func TestXorpsRegReg(t *testing.T) {
	buf := asm.NewBuffer()
	require.NoError(t, encodeSSERR(buf, XORPS, XMM(0), XMM(0)))
	require.Equal(t, []byte{0x0F, 0x57, 0xC0}, buf.Bytes())
	decodeOne(t, buf.Bytes())
}

func TestMovapsRegMem(t *testing.T) {
	buf := asm.NewBuffer()
	require.NoError(t, encodeSSERM(buf, MOVAPS, XMM(0), BaseDisp(RAX, 0, 128)))
	require.Equal(t, []byte{0x0F, 0x28, 0x00}, buf.Bytes())
	decodeOne(t, buf.Bytes())
}

func TestVaddpsVexTwoByteForm(t *testing.T) {
	buf := asm.NewBuffer()
	require.NoError(t, encodeVexRRR(buf, VADDPS, XMM(0), XMM(1), XMM(2), VecLen128))
	// C5 (2-byte VEX), invR=1,vvvv=~1=1110,l=0,pp=00 -> 0xF0; opcode 0x58; modrm C2 (reg=xmm0, rm=xmm2).
	require.Equal(t, []byte{0xC5, 0xF0, 0x58, 0xC2}, buf.Bytes())
	decodeOne(t, buf.Bytes())
}

func TestVaddpsVexExtendedRmRegisterForces3Byte(t *testing.T) {
	buf := asm.NewBuffer()
	// src2 (the rm-field operand) needing a REX.B extension can't be
	// expressed in the 2-byte VEX form, which has no B bit.
	require.NoError(t, encodeVexRRR(buf, VADDPS, XMM(0), XMM(1), XMM(10), VecLen128))
	require.Equal(t, byte(0xC4), buf.Bytes()[0])
	decodeOne(t, buf.Bytes())
}

func TestVmovdqu32EvexPrefixByte(t *testing.T) {
	buf := asm.NewBuffer()
	require.NoError(t, encodeEvexRRR(buf, VMOVDQU32, XMM(0), XMM(0), XMM(1), VecLen512, MaskPredication{}))
	require.Equal(t, byte(0x62), buf.Bytes()[0])
	require.Len(t, buf.Bytes(), 6) // 4-byte prefix + opcode + modrm
}

func TestCompileVexRRRReachesVaddpsThroughDispatcher(t *testing.T) {
	a := NewAssembler()
	require.NoError(t, a.CompileVexRRR(VADDPS, XMM(0), XMM(1), XMM(2)))
	require.Equal(t, []byte{0xC5, 0xF0, 0x58, 0xC2}, a.Buffer().Bytes())
	decodeOne(t, a.Buffer().Bytes())
}

func TestCompileEvexRRRReachesVmovdqu32ThroughDispatcher(t *testing.T) {
	a := NewAssembler()
	require.NoError(t, a.CompileEvexRRR(VMOVDQU32, ZMM(0), ZMM(0), ZMM(1)))
	require.Equal(t, byte(0x62), a.Buffer().Bytes()[0])
	require.Len(t, a.Buffer().Bytes(), 6)
}

func TestEmitThreeOperandVexNoLongerDropsThirdOperand(t *testing.T) {
	a := NewAssembler()
	// Before shapeKey carried four shape slots, Assembler.Emit padded ops to
	// length 2 and silently discarded src2 here, so this shape either
	// dispatched wrong or failed to resolve at all.
	require.NoError(t, a.Emit(VADDPS, Reg(XMM(0)), Reg(XMM(1)), Reg(XMM(2))))
	require.Equal(t, []byte{0xC5, 0xF0, 0x58, 0xC2}, a.Buffer().Bytes())
}

func TestCvtsi2sdFromGPR64(t *testing.T) {
	buf := asm.NewBuffer()
	require.NoError(t, encodeCvtIntToFloat(buf, CVTSI2SD, XMM(0), RAX))
	require.Equal(t, []byte{0xF2, 0x48, 0x0F, 0x2A, 0xC0}, buf.Bytes())
	decodeOne(t, buf.Bytes())
}
