// Package builder provides the optional deferred-IR bridge from spec §4.9:
// a caller records a flat list of instruction/label/alignment/data nodes,
// then Assemble replays them into an internal/amd64.Assembler, inserting
// macro-fusion-aware NOP padding as it goes.
//
// Grounded on the teacher's assemblerImpl.Assemble() two-pass node-list
// replay (internal/asm/amd64/impl.go): a node-list is built first and
// walked to produce bytes, rather than amd64.Assembler's direct
// emit-as-you-go model. Unlike the teacher, this package never needs a
// forced second pass purely to fix up a short-jump-that-grew, since
// internal/amd64's own label table already resolves that case at bind time
// (spec §3's relocation contract); the one thing a single linear replay
// cannot decide locally is whether a CMP/TEST+Jcc pair straddles a 32-byte
// boundary, since that depends on the final offset of instructions not yet
// emitted — so this package tracks one instruction of lookahead for that
// purpose, sizes each pair from the previous pass, and re-walks the node
// list whenever an instruction's size differs from that pass (always once
// after the first pass; forceReAssemble, named after the teacher's field).
package builder

import (
	"github.com/insinfo/asmjit-sub001/internal/amd64"
	"github.com/insinfo/asmjit-sub001/internal/asm"
)

type nodeKind uint8

const (
	nodeInst nodeKind = iota
	nodeLabel
	nodeAlign
	nodeEmbedData
	nodeComment
	nodeReadInstructionAddress
	nodeSentinel
)

type node struct {
	kind         nodeKind
	inst         amd64.Instruction
	ops          []amd64.Operand
	label        asm.LabelID
	alignTo      int
	data         []byte
	comment      string
	addrDst      amd64.Register
	addrTarget   asm.LabelID
	resolvedSize int // byte length of this instruction (padding excluded) in the latest pass; a change forces another pass
}

// Builder accumulates nodes and replays them into a fresh amd64.Assembler on
// Assemble. It is not safe for concurrent use and, like the Assembler it
// wraps, is a single-owner aggregate (spec §5).
type Builder struct {
	nodes      []node
	asm        *amd64.Assembler
	labelNames []string // names of every allocated label, in id order, re-allocated on each replay
}

// New returns an empty Builder.
func New() *Builder { return &Builder{asm: amd64.NewAssembler()} }

// NewLabel allocates a fresh unbound label, usable by nodes recorded before
// or after its eventual Label() call.
func (b *Builder) NewLabel() asm.LabelID { return b.NewNamedLabel("") }

// NewNamedLabel allocates a fresh unbound label carrying a diagnostic name.
func (b *Builder) NewNamedLabel(name string) asm.LabelID {
	b.labelNames = append(b.labelNames, name)
	return b.asm.NewNamedLabel(name)
}

// Inst records an instruction node to be emitted in order.
func (b *Builder) Inst(inst amd64.Instruction, ops ...amd64.Operand) {
	b.nodes = append(b.nodes, node{kind: nodeInst, inst: inst, ops: ops})
}

// Label records a label-bind node: when replayed, the label is bound to the
// buffer offset reached at that point in the node sequence.
func (b *Builder) Label(id asm.LabelID) {
	b.nodes = append(b.nodes, node{kind: nodeLabel, label: id})
}

// Align records an alignment node.
func (b *Builder) Align(n int) {
	b.nodes = append(b.nodes, node{kind: nodeAlign, alignTo: n})
}

// EmbedData records a raw-bytes node, e.g. for a jump table or constant
// pool entry interleaved with code.
func (b *Builder) EmbedData(data []byte) {
	b.nodes = append(b.nodes, node{kind: nodeEmbedData, data: data})
}

// Comment records a node carrying no bytes, purely a diagnostic marker
// preserved for a caller that walks the node list for disassembly
// annotation.
func (b *Builder) Comment(text string) {
	b.nodes = append(b.nodes, node{kind: nodeComment, comment: text})
}

// ReadInstructionAddress records a LEA of target's eventual bound address,
// RIP-relative, into dst. Grounded on the teacher's
// CompileReadInstructionAddress (SUPPLEMENTED FEATURES #2 in SPEC_FULL.md):
// this needs the same deferred-offset-patching machinery as a label
// reference, which is why it lives in the builder rather than in
// internal/amd64 where no node has lookahead over where `target` will end
// up relative to this instruction's own RIP origin.
func (b *Builder) ReadInstructionAddress(dst amd64.Register, target asm.LabelID) {
	b.nodes = append(b.nodes, node{kind: nodeReadInstructionAddress, addrDst: dst, addrTarget: target})
}

// fusionBoundary is the byte boundary Intel's jump-erratum mitigation keeps
// a macro-fusible compare+branch pair from straddling.
const fusionBoundary = 32

// isFusibleCompare reports whether inst is one of the instruction families
// whose following Jcc can macro-fuse with it on current Intel
// microarchitectures (CMP and TEST; ADD/SUB/AND/INC/DEC also fuse on some
// generations but this module follows the teacher's conservative CMP/TEST
// only set).
func isFusibleCompare(inst amd64.Instruction) bool {
	return inst == amd64.CMP || inst == amd64.TEST
}

func isJcc(inst amd64.Instruction) bool { return inst == jccSentinel }

// jccSentinel is a private Instruction value builder.Jcc uses to tag a
// conditional-jump node distinctly from amd64.JMP, since the condition code
// itself is encoded in the node's first operand rather than in inst.
const jccSentinel = amd64.Instruction(-1)

// Jcc records a conditional jump node to target.
func (b *Builder) Jcc(cond amd64.ConditionFlag, target asm.LabelID, form amd64.JumpForm) {
	b.nodes = append(b.nodes, node{
		kind: nodeInst,
		inst: jccSentinel,
		ops: []amd64.Operand{
			amd64.ImmOperand(amd64.NewImm(int64(cond), 8)),
			amd64.LabelOperand(amd64.LabelRef{ID: target, Forced: form}),
		},
	})
}

// Assemble replays every recorded node into a fresh internal buffer and
// returns the finished machine code, or the first encoding error
// encountered. It re-walks the node list whenever an instruction's encoded
// size differs from the previous pass (always after the first pass, when no
// size is known yet), so fusion padding is computed from known sizes,
// mirroring the teacher's forceReAssemble retry loop.
func (b *Builder) Assemble() ([]byte, error) {
	for attempt := 0; attempt < maxReassemblePasses; attempt++ {
		buf, shifted, err := b.replay()
		if err != nil {
			return nil, err
		}
		if !shifted {
			return buf, nil
		}
	}
	return nil, asm.NewInvalidState("builder: node offsets did not converge after %d re-assemble passes", maxReassemblePasses)
}

const maxReassemblePasses = 4

func (b *Builder) replay() (out []byte, forceReAssemble bool, err error) {
	a := amd64.NewAssembler()
	for _, name := range b.labelNames {
		a.NewNamedLabel(name)
	}

	for i := 0; i < len(b.nodes); i++ {
		n := &b.nodes[i]
		switch n.kind {
		case nodeLabel:
			if err := a.BindLabel(n.label); err != nil {
				return nil, false, err
			}

		case nodeAlign:
			a.Align(n.alignTo)

		case nodeEmbedData:
			a.Buffer().EmitBytes(n.data)

		case nodeComment:
			// No bytes emitted.

		case nodeReadInstructionAddress:
			if err := emitReadInstructionAddress(a, n.addrDst, n.addrTarget); err != nil {
				return nil, false, err
			}

		case nodeInst:
			maybePadFusiblePair(a, b.nodes, i)
			before := a.Offset()
			if n.inst == jccSentinel {
				cond := amd64.ConditionFlag(n.ops[0].Imm().Value())
				ref := n.ops[1].Label()
				if err := a.CompileJcc(cond, ref.ID, ref.Forced); err != nil {
					return nil, false, err
				}
			} else if err := a.Emit(n.inst, n.ops...); err != nil {
				return nil, false, err
			}
			afterLen := a.Offset() - before
			if n.resolvedSize != afterLen {
				forceReAssemble = true
			}
			n.resolvedSize = afterLen

		case nodeSentinel:
			// Reserved for future IR extension points; carries no bytes.
		}
	}

	if err := a.Finalize(); err != nil {
		return nil, false, err
	}
	return a.Buffer().Bytes(), forceReAssemble, nil
}

// maybePadFusiblePair inserts alignment padding before a CMP/TEST
// instruction when the following node is a conditional jump and the pair,
// emitted back to back, would straddle a 32-byte boundary. Grounded on the
// teacher's maybeNOPPadding/fusedInstructionLength (impl.go).
func maybePadFusiblePair(a *amd64.Assembler, nodes []node, i int) bool {
	n := &nodes[i]
	if n.kind != nodeInst || !isFusibleCompare(n.inst) || i+1 >= len(nodes) {
		return false
	}
	next := &nodes[i+1]
	if next.kind != nodeInst || next.inst != jccSentinel {
		return false
	}
	if n.resolvedSize == 0 || next.resolvedSize == 0 {
		return false // sizes not yet known from a prior pass; nothing to pad against yet
	}
	pairLen := n.resolvedSize + next.resolvedSize
	offset := a.Offset()
	if offset%fusionBoundary+pairLen > fusionBoundary {
		pad := fusionBoundary - offset%fusionBoundary
		a.Buffer().PadNOP(pad)
		return true
	}
	return false
}

// emitReadInstructionAddress emits `lea dst, [rip+disp]` where disp targets
// target's eventual bound offset. Since target may not yet be bound, this
// reserves a 4-byte placeholder and registers a Rel32 relocation against it
// exactly like a branch displacement, even though the resulting bytes are
// an address load rather than a jump.
func emitReadInstructionAddress(a *amd64.Assembler, dst amd64.Register, target asm.LabelID) error {
	mem := amd64.RIPRelative(0, 64)
	if err := a.CompileLEA(dst, mem); err != nil {
		return err
	}
	siteEnd := a.Offset()
	patchOffset := siteEnd - 4
	if a.Labels().IsBound(target) {
		disp := a.Labels().OffsetOf(target) - siteEnd
		a.Buffer().PatchI32(patchOffset, int32(disp))
		return nil
	}
	a.Labels().AddRel32(target, patchOffset, siteEnd)
	return nil
}
