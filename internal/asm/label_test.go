package asm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLabelBindPatchesForwardRel32(t *testing.T) {
	buf := NewBuffer()
	labels := NewLabelTable()

	id := labels.NewLabel()
	buf.Emit8(0xE9) // jmp rel32
	site := buf.Len()
	buf.Emit32(0)

	require.False(t, labels.IsBound(id))

	buf.Align(16) // some filler between the jump and its target
	labels.AddRel32(id, site, site+4)
	require.NoError(t, labels.Bind(id, buf))
	require.True(t, labels.IsBound(id))

	want := int32(labels.OffsetOf(id) - (site + 4))
	got := int32(buf.Bytes()[site]) | int32(buf.Bytes()[site+1])<<8 | int32(buf.Bytes()[site+2])<<16 | int32(buf.Bytes()[site+3])<<24
	require.Equal(t, want, got)
}

func TestLabelRel8OutOfRange(t *testing.T) {
	buf := NewBuffer()
	labels := NewLabelTable()
	id := labels.NewNamedLabel("far")

	buf.Emit8(0xEB) // jmp rel8
	site := buf.Len()
	buf.Emit8(0)
	labels.AddRel8(id, site, site+1)

	buf.PadNOP(1000)
	err := labels.Bind(id, buf)
	require.Error(t, err)
	var asErr *Error
	require.ErrorAs(t, err, &asErr)
	require.Equal(t, Rel8OutOfRange, asErr.Kind)
}

func TestFinalizeReportsUnboundLabel(t *testing.T) {
	labels := NewLabelTable()
	id := labels.NewNamedLabel("dangling")
	labels.AddRel32(id, 0, 4)

	err := labels.Finalize()
	require.Error(t, err)
	var asErr *Error
	require.ErrorAs(t, err, &asErr)
	require.Equal(t, UnboundLabel, asErr.Kind)
}

func TestFinalizeOKWhenAllBound(t *testing.T) {
	labels := NewLabelTable()
	id := labels.NewLabel()
	buf := NewBuffer()
	require.NoError(t, labels.Bind(id, buf))
	require.NoError(t, labels.Finalize())
}
