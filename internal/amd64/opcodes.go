package amd64

// aluOpcodes maps each ALU-family instruction to its opcode extension
// field (used in the /r=opcode-extension immediate-group forms) and its
// register/register, register/memory, and accumulator-immediate base
// opcodes. Grounded on the teacher's registerToRegisterOpcode table in
// impl.go, generalized from the teacher's split ADDL/ADDQ/... instructions
// into one width-parametric entry per mnemonic.
type aluOpcodeEntry struct {
	regFieldExt byte // the /digit used in the 0x80/0x81/0x83 immediate-group forms
	rmFromReg   byte // opcode for "Ev, Gv" (mem/reg <- reg), 8-bit form is this-1
	regFromRm   byte // opcode for "Gv, Ev" (reg <- mem/reg), 8-bit form is this-1
	alImm       byte // opcode for "AL/eAX, imm" short form, 8-bit form is this-1
}

var aluOpcodes = map[Instruction]aluOpcodeEntry{
	ADD: {regFieldExt: 0, rmFromReg: 0x01, regFromRm: 0x03, alImm: 0x05},
	OR:  {regFieldExt: 1, rmFromReg: 0x09, regFromRm: 0x0B, alImm: 0x0D},
	ADC: {regFieldExt: 2, rmFromReg: 0x11, regFromRm: 0x13, alImm: 0x15},
	SBB: {regFieldExt: 3, rmFromReg: 0x19, regFromRm: 0x1B, alImm: 0x1D},
	AND: {regFieldExt: 4, rmFromReg: 0x21, regFromRm: 0x23, alImm: 0x25},
	SUB: {regFieldExt: 5, rmFromReg: 0x29, regFromRm: 0x2B, alImm: 0x2D},
	XOR: {regFieldExt: 6, rmFromReg: 0x31, regFromRm: 0x33, alImm: 0x35},
	CMP: {regFieldExt: 7, rmFromReg: 0x39, regFromRm: 0x3B, alImm: 0x3D},
}

// shiftOpcodeExt maps SHL/SHR/SAR/ROL/ROR to the /digit extension used by
// the 0xC0/0xC1/0xD0-0xD3 shift-group opcodes.
var shiftOpcodeExt = map[Instruction]byte{
	ROL: 0, ROR: 1, SHL: 4, SHR: 5, SAR: 7,
}

// group3Ext maps the unary NOT/NEG/MUL/IMUL/DIV/IDIV family sharing opcode
// 0xF6/0xF7 to its /digit extension.
var group3Ext = map[Instruction]byte{
	TEST: 0, NOT: 2, NEG: 3, MUL: 4, IMUL: 5, DIV: 6, IDIV: 7,
}

// incDecExt maps INC/DEC sharing opcode 0xFE/0xFF to its /digit extension.
var incDecExt = map[Instruction]byte{
	INC: 0, DEC: 1,
}

// movRegRegOpcode is MOV's register<->register/memory opcode pair,
// structurally identical to an aluOpcodeEntry's rmFromReg/regFromRm but kept
// distinct since MOV has no accumulator-immediate short form and instead has
// its own immediate-to-register and immediate-to-memory opcodes.
const (
	movRmFromReg byte = 0x89 // Ev, Gv (8-bit form 0x88)
	movRegFromRm byte = 0x8B // Gv, Ev (8-bit form 0x8A)
	movRegImm32  byte = 0xB8 // +rd, id (or +rd, iq with REX.W for a 64-bit immediate: MOVABS)
	movRmImm     byte = 0xC7 // /0, iz (8-bit form 0xC6)
)

// sseOpcodeEntry describes a legacy-SSE-encoded instruction: its mandatory
// 0x66/0xF2/0xF3 prefix (0 for none), its two-byte 0x0F escape opcode, and
// whether the operand order is reg<-rm (the common case) or rm<-reg.
type sseOpcodeEntry struct {
	prefix    byte // 0x00 means no mandatory prefix
	opcode    byte
	regFromRm bool
}

var sseOpcodes = map[Instruction]sseOpcodeEntry{
	MOVSS:     {prefix: 0xF3, opcode: 0x10, regFromRm: true},
	MOVSD:     {prefix: 0xF2, opcode: 0x10, regFromRm: true},
	MOVAPS:    {prefix: 0x00, opcode: 0x28, regFromRm: true},
	MOVUPS:    {prefix: 0x00, opcode: 0x10, regFromRm: true},
	MOVDQA:    {prefix: 0x66, opcode: 0x6F, regFromRm: true},
	MOVDQU:    {prefix: 0xF3, opcode: 0x6F, regFromRm: true},
	ADDSS:     {prefix: 0xF3, opcode: 0x58, regFromRm: true},
	ADDSD:     {prefix: 0xF2, opcode: 0x58, regFromRm: true},
	SUBSS:     {prefix: 0xF3, opcode: 0x5C, regFromRm: true},
	SUBSD:     {prefix: 0xF2, opcode: 0x5C, regFromRm: true},
	MULSS:     {prefix: 0xF3, opcode: 0x59, regFromRm: true},
	MULSD:     {prefix: 0xF2, opcode: 0x59, regFromRm: true},
	DIVSS:     {prefix: 0xF3, opcode: 0x5E, regFromRm: true},
	DIVSD:     {prefix: 0xF2, opcode: 0x5E, regFromRm: true},
	UCOMISS:   {prefix: 0x00, opcode: 0x2E, regFromRm: true},
	UCOMISD:   {prefix: 0x66, opcode: 0x2E, regFromRm: true},
	PXOR:      {prefix: 0x66, opcode: 0xEF, regFromRm: true},
	XORPS:     {prefix: 0x00, opcode: 0x57, regFromRm: true},
	XORPD:     {prefix: 0x66, opcode: 0x57, regFromRm: true},
}

// cvtOpcodes holds the GP<->XMM conversion opcodes. Kept separate from
// sseOpcodes so registerSIMDFamily's generic xmm/xmm and xmm/mem dispatch
// loop doesn't register these under the wrong operand shape: their non-XMM
// operand is a general-purpose register, not a ModR/M vector/memory operand.
var cvtOpcodes = map[Instruction]sseOpcodeEntry{
	CVTSI2SS:  {prefix: 0xF3, opcode: 0x2A},
	CVTSI2SD:  {prefix: 0xF2, opcode: 0x2A},
	CVTTSS2SI: {prefix: 0xF3, opcode: 0x2C},
	CVTTSD2SI: {prefix: 0xF2, opcode: 0x2C},
}

// vexOpcodeEntry describes a VEX-encoded AVX instruction: its implied pp/mm
// fields and two-byte escape opcode, reusing the legacy SSE opcode numbers
// per Intel's AVX opcode map (spec §4.4).
type vexOpcodeEntry struct {
	pp     vexPP
	mmmmm  vexMMMMM
	opcode byte
	w      bool
}

var vexOpcodes = map[Instruction]vexOpcodeEntry{
	VADDPS: {pp: vexPPNone, mmmmm: vexMap0F, opcode: 0x58},
	VADDPD: {pp: vexPP66, mmmmm: vexMap0F, opcode: 0x58},
}

// evexOpcodeEntry mirrors vexOpcodeEntry for EVEX-only forms.
type evexOpcodeEntry struct {
	pp     vexPP
	opcode byte
	w      bool
}

var evexOpcodes = map[Instruction]evexOpcodeEntry{
	VMOVDQU32: {pp: vexPPF3, opcode: 0x6F, w: false},
	VMOVDQU64: {pp: vexPPF3, opcode: 0x6F, w: true},
}
