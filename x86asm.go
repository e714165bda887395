// Package x86asm is the public façade over this module's x86/x86-64
// runtime assembler: operand model, code buffer, label table, and
// calling-convention resolver live in internal packages; this package wires
// them into the single entry point external callers use, matching the
// teacher's own split between an internal/asm implementation and a thin
// exported constructor (NewAssembler).
package x86asm

import (
	"github.com/insinfo/asmjit-sub001/internal/abi"
	"github.com/insinfo/asmjit-sub001/internal/amd64"
	"github.com/insinfo/asmjit-sub001/internal/asm"
	"github.com/insinfo/asmjit-sub001/internal/builder"
)

// Arch identifies the target instruction set. Only Amd64 is implemented;
// spec §1's Non-goals exclude other architectures.
type Arch uint8

const (
	Amd64 Arch = iota
)

// Platform identifies the target OS/ABI family, which in turn selects the
// default CallingConvention when one isn't given explicitly.
type Platform uint8

const (
	PlatformLinux Platform = iota
	PlatformDarwin
	PlatformWindows
)

// Environment is the only configuration surface this module has: there is
// no file, environment variable, or flag-based configuration (spec §6,
// "Persisted state layout: none").
type Environment struct {
	Arch       Arch
	Platform   Platform
	Convention abi.Convention
}

// DefaultConvention returns the calling convention Environment implies when
// Convention is left unset: Win64 on Windows, SysV everywhere else this
// module targets.
func (e Environment) DefaultConvention() abi.Convention {
	if e.Platform == PlatformWindows {
		return abi.ConventionWin64
	}
	return abi.ConventionSysV
}

// LabelID is a re-export of the underlying label handle type so callers
// never need to import internal/asm directly.
type LabelID = asm.LabelID

// Register, Operand, Mem, Imm, Instruction, ConditionFlag and JumpForm are
// re-exported from internal/amd64 as type aliases only; the instruction
// constants, register values and operand constructors are not re-exported
// by this package.
type (
	Register      = amd64.Register
	Operand       = amd64.Operand
	Mem           = amd64.Mem
	Imm           = amd64.Imm
	Instruction   = amd64.Instruction
	ConditionFlag = amd64.ConditionFlag
	JumpForm      = amd64.JumpForm
)

// Assembler is the external entry point wrapping a deferred builder. Its
// methods take the re-exported types above.
type Assembler struct {
	b   *builder.Builder
	env Environment
}

// NewAssembler returns a fresh Assembler targeting env. Grounded on the
// teacher's `NewAssembler func(temporaryRegister Register) (AssemblerBase, error)`
// constructor shape, simplified since this module has no JIT-time temporary
// register requirement of its own.
func NewAssembler(env Environment) *Assembler {
	return &Assembler{b: builder.New(), env: env}
}

// NewLabel allocates a fresh unbound label.
func (a *Assembler) NewLabel() LabelID { return a.b.NewLabel() }

// NewNamedLabel allocates a fresh unbound label carrying a diagnostic name
// for error messages.
func (a *Assembler) NewNamedLabel(name string) LabelID { return a.b.NewNamedLabel(name) }

// Label binds id at the current position in the instruction stream.
func (a *Assembler) Label(id LabelID) { a.b.Label(id) }

// Align requests alignment padding at the current position.
func (a *Assembler) Align(n int) { a.b.Align(n) }

// EmbedData splices raw bytes into the instruction stream at the current
// position, e.g. for a jump table.
func (a *Assembler) EmbedData(data []byte) { a.b.EmbedData(data) }

// Comment attaches a diagnostic-only marker at the current position.
func (a *Assembler) Comment(text string) { a.b.Comment(text) }

// Inst records an instruction to be emitted in program order.
func (a *Assembler) Inst(inst Instruction, ops ...Operand) { a.b.Inst(inst, ops...) }

// Jcc records a conditional jump to target.
func (a *Assembler) Jcc(cond ConditionFlag, target LabelID, form JumpForm) {
	a.b.Jcc(cond, target, form)
}

// ReadInstructionAddress records a RIP-relative LEA of target's eventual
// address into dst.
func (a *Assembler) ReadInstructionAddress(dst Register, target LabelID) {
	a.b.ReadInstructionAddress(dst, target)
}

// Assemble replays every recorded node and returns the finished machine
// code, or the first encoding error encountered.
func (a *Assembler) Assemble() ([]byte, error) { return a.b.Assemble() }

// ResolveSignature runs the calling-convention resolver for sig under a's
// environment-selected convention (or sig.Convention if already set).
func (a *Assembler) ResolveSignature(sig abi.FuncSignature) abi.FuncFrame {
	conv := a.env.Convention
	if conv == abi.ConventionSysV {
		conv = a.env.DefaultConvention()
	}
	if sig.Convention == abi.ConventionSysV && conv != abi.ConventionSysV {
		sig.Convention = conv
	}
	return abi.Resolve(sig)
}
