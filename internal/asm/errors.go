// Package asm holds the architecture-independent pieces of the assembler: the
// growable code buffer and the label/relocation table. Everything here is
// reused by the amd64 encoder and the deferred builder.
package asm

import "fmt"

// Kind identifies one of the error taxonomy entries from the encoder's error
// contract. Callers that need to branch on the kind of failure (for example a
// re-assemble loop retrying after a Rel8OutOfRange) should use errors.As
// against *Error rather than string-matching Error().
type Kind int

const (
	_ Kind = iota
	// InvalidOperandShape means the dispatcher found no match for the given
	// (instruction, operand shape tuple).
	InvalidOperandShape
	// InvalidOperandSize means the shape matched but a width constraint was
	// violated (imm8 overflow, mismatched r32/r64 pairing, and so on).
	InvalidOperandSize
	// InvalidRegCombination means REX was required together with a high-byte
	// register, or two registers that cannot coexist in one opcode form were
	// requested together.
	InvalidRegCombination
	// Rel8OutOfRange means a forced-short branch's displacement did not fit
	// in a signed 8-bit integer once its target was bound.
	Rel8OutOfRange
	// UnboundLabel means finalize() was called with a relocation site still
	// pending.
	UnboundLabel
	// InvalidState means an internal state could not be reached or kept,
	// e.g. a bound label's Rel32 displacement overflowing 32 bits, or the
	// builder's node offsets not converging.
	InvalidState
	// InvalidArgument means the calling convention id is not supported on
	// the active architecture.
	InvalidArgument
)

func (k Kind) String() string {
	switch k {
	case InvalidOperandShape:
		return "InvalidOperandShape"
	case InvalidOperandSize:
		return "InvalidOperandSize"
	case InvalidRegCombination:
		return "InvalidRegCombination"
	case Rel8OutOfRange:
		return "Rel8OutOfRange"
	case UnboundLabel:
		return "UnboundLabel"
	case InvalidState:
		return "InvalidState"
	case InvalidArgument:
		return "InvalidArgument"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by every fallible operation in
// this module. The buffer is left untouched on failure: callers see either a
// fully emitted instruction or none of its bytes.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

// newError builds an *Error of the given kind with a formatted message.
func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// NewInvalidOperandShape builds an InvalidOperandShape error for the given
// instruction name and shape description.
func NewInvalidOperandShape(instName, shapeDesc string) *Error {
	return newError(InvalidOperandShape, "no encoding for %s with operand shape %s", instName, shapeDesc)
}

// NewInvalidOperandSize builds an InvalidOperandSize error.
func NewInvalidOperandSize(format string, args ...interface{}) *Error {
	return newError(InvalidOperandSize, format, args...)
}

// NewInvalidRegCombination builds an InvalidRegCombination error.
func NewInvalidRegCombination(format string, args ...interface{}) *Error {
	return newError(InvalidRegCombination, format, args...)
}

// NewRel8OutOfRange builds a Rel8OutOfRange error.
func NewRel8OutOfRange(offset int64) *Error {
	return newError(Rel8OutOfRange, "relative offset %d does not fit in a signed 8-bit displacement", offset)
}

// NewUnboundLabel builds an UnboundLabel error.
func NewUnboundLabel(name string) *Error {
	return newError(UnboundLabel, "label %s was never bound", name)
}

// NewInvalidState builds an InvalidState error.
func NewInvalidState(format string, args ...interface{}) *Error {
	return newError(InvalidState, format, args...)
}

// NewInvalidArgument builds an InvalidArgument error.
func NewInvalidArgument(format string, args ...interface{}) *Error {
	return newError(InvalidArgument, format, args...)
}
