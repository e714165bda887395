package asm

import "encoding/binary"

// nopOpcodes is the multi byte NOP instruction table derived from section 5.8
// "Code Padding with Operand-Size Override and Multibyte NOP" in "AMD Software
// Optimization Guide for AMD Family 15h Processors". Index i holds the
// (i+1)-byte NOP encoding.
var nopOpcodes = [][9]byte{
	{0x90},
	{0x66, 0x90},
	{0x0f, 0x1f, 0x00},
	{0x0f, 0x1f, 0x40, 0x00},
	{0x0f, 0x1f, 0x44, 0x00, 0x00},
	{0x66, 0x0f, 0x1f, 0x44, 0x00, 0x00},
	{0x0f, 0x1f, 0x80, 0x00, 0x00, 0x00, 0x00},
	{0x0f, 0x1f, 0x84, 0x00, 0x00, 0x00, 0x00, 0x00},
	{0x66, 0x0f, 0x1f, 0x84, 0x00, 0x00, 0x00, 0x00, 0x00},
}

// Buffer is an append-only byte vector representing a relocatable code
// stream. It is owned exclusively by one assembler instance; concurrent
// mutation is undefined, matching spec §5's single-owner aggregate model.
type Buffer struct {
	b []byte
}

// NewBuffer returns an empty Buffer with no pre-allocated capacity.
func NewBuffer() *Buffer { return &Buffer{} }

// Len returns the current length of the buffer, equal to the
// program-counter-relative offset from origin zero.
func (b *Buffer) Len() int { return len(b.b) }

// Bytes returns the buffer's contents. The slice is valid until the next
// mutating call.
func (b *Buffer) Bytes() []byte { return b.b }

// Grow pre-allocates capacity for at least n more bytes without changing Len.
func (b *Buffer) Grow(n int) {
	if cap(b.b)-len(b.b) >= n {
		return
	}
	grown := make([]byte, len(b.b), len(b.b)+n)
	copy(grown, b.b)
	b.b = grown
}

// Reset truncates the buffer back to zero length, keeping the backing array.
func (b *Buffer) Reset() { b.b = b.b[:0] }

// Emit8 appends a single byte.
func (b *Buffer) Emit8(v uint8) { b.b = append(b.b, v) }

// Emit16 appends v as two little-endian bytes.
func (b *Buffer) Emit16(v uint16) {
	b.b = append(b.b, byte(v), byte(v>>8))
}

// Emit32 appends v as four little-endian bytes.
func (b *Buffer) Emit32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.b = append(b.b, tmp[:]...)
}

// Emit64 appends v as eight little-endian bytes.
func (b *Buffer) Emit64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.b = append(b.b, tmp[:]...)
}

// EmitBytes appends raw bytes verbatim.
func (b *Buffer) EmitBytes(bs []byte) { b.b = append(b.b, bs...) }

// Align pads with NOP sequences until Len()%n == 0. n must be one of
// {1,2,4,8,16,32,64}; Align never shrinks the buffer.
func (b *Buffer) Align(n int) {
	if n <= 1 {
		return
	}
	rem := len(b.b) % n
	if rem == 0 {
		return
	}
	b.PadNOP(n - rem)
}

// PadNOP appends exactly num bytes of optimal-length multi-byte NOPs.
func (b *Buffer) PadNOP(num int) {
	for num > 0 {
		chunk := num
		if chunk > len(nopOpcodes) {
			chunk = len(nopOpcodes)
		}
		b.b = append(b.b, nopOpcodes[chunk-1][:chunk]...)
		num -= chunk
	}
}

// PatchI8 overwrites the byte at offset `at` with v.
func (b *Buffer) PatchI8(at int, v int8) {
	b.b[at] = byte(v)
}

// PatchI32 overwrites the four little-endian bytes starting at offset `at`
// with v.
func (b *Buffer) PatchI32(at int, v int32) {
	binary.LittleEndian.PutUint32(b.b[at:at+4], uint32(v))
}
