package asm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferEmitLittleEndian(t *testing.T) {
	buf := NewBuffer()
	buf.Emit8(0x01)
	buf.Emit16(0x0302)
	buf.Emit32(0x07060504)
	buf.Emit64(0x0f0e0d0c0b0a0908)

	require.Equal(t, []byte{
		0x01,
		0x02, 0x03,
		0x04, 0x05, 0x06, 0x07,
		0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f,
	}, buf.Bytes())
}

func TestBufferAlignPadsWithNOPs(t *testing.T) {
	buf := NewBuffer()
	buf.Emit8(0x90)
	buf.Align(4)
	require.Equal(t, 4, buf.Len())

	buf.Align(1) // no-op
	require.Equal(t, 4, buf.Len())

	buf.Align(4) // already aligned, no-op
	require.Equal(t, 4, buf.Len())
}

func TestBufferPatch(t *testing.T) {
	buf := NewBuffer()
	buf.Emit32(0)
	buf.PatchI32(0, -1)
	require.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, buf.Bytes())

	buf.Reset()
	buf.Emit8(0)
	buf.PatchI8(0, -2)
	require.Equal(t, []byte{0xfe}, buf.Bytes())
}
