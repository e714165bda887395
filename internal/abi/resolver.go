package abi

// The *IntOrder and *VecOrder tables give, per convention, the ordered register
// indices (relative to that class's file) argument classification consumes
// from, left to right. The amd64 package's own register constants are not
// referenced here; the builder/frame layer maps RegClass+RegIndex to a
// concrete amd64.Register at emission time, keeping this package free of an
// encoder dependency (spec §6).
var (
	sysVIntOrder = []int{/* RDI RSI RDX RCX R8 R9 */ 7, 6, 2, 1, 8, 9}
	sysVVecOrder = []int{0, 1, 2, 3, 4, 5, 6, 7} // XMM0..XMM7

	win64IntOrder = []int{1, 2, 8, 9}    // RCX RDX R8 R9
	win64VecOrder = []int{0, 1, 2, 3}    // XMM0..XMM3

	vectorCallIntOrder = win64IntOrder
	vectorCallVecOrder = []int{0, 1, 2, 3, 4, 5} // XMM0..XMM5, HVA-capable
)

// Resolve assigns every argument in sig a Slot per sig.Convention, following
// the five-step walk spec §4.6 describes: (1) classify each argument as
// integer or vector, (2) consume from the convention's ordered register
// list for that class until exhausted, (3) on Win64 additionally retire one
// slot from the *other* class's counter too since Win64 shares one
// arg-index counter across both register files, (4) spill anything past the
// register budget to the stack in declaration order, 8-byte aligned, and
// (5) classify the return value the same way, with no stack fallback (a
// return value that cannot fit a register is the caller's problem via the
// hidden-pointer convention, which this resolver models as Indirect on the
// first argument slot — callers needing that must prepend it to Args
// themselves; this package does not inject one implicitly).
func Resolve(sig FuncSignature) FuncFrame {
	frame := FuncFrame{Signature: sig}
	if sig.Convention == ConventionWin64 || sig.Convention == ConventionVectorCall {
		frame.ShadowSpace = 32
	}

	intOrder, vecOrder := registerOrders(sig.Convention)
	nextInt, nextVec := 0, 0
	stackOffset := 0

	for _, t := range sig.Args {
		var slot Slot
		slot.TypeID = t

		if sig.Convention == ConventionWin64 {
			// Win64: one shared positional counter. The class consumed is
			// whichever t needs, but the *other* class's counter advances in
			// lockstep so a later argument of the other class still sees the
			// correct positional slot.
			idx := nextInt
			if idx < nextVec {
				idx = nextVec
			}
			if t.IsVector() {
				if idx < len(vecOrder) {
					slot.InRegister = true
					slot.RegClass = RegClassVector
					slot.RegIndex = vecOrder[idx]
					if t.SizeBytes() > 16 {
						slot.Indirect = true
					}
				} else {
					slot = stackSlot(t, &stackOffset)
				}
			} else {
				if idx < len(intOrder) {
					slot.InRegister = true
					slot.RegClass = RegClassInt
					slot.RegIndex = intOrder[idx]
				} else {
					slot = stackSlot(t, &stackOffset)
				}
			}
			nextInt = idx + 1
			nextVec = idx + 1
			frame.ArgSlots = append(frame.ArgSlots, slot)
			continue
		}

		// SysV and VectorCall: independent per-class counters.
		if t.IsVector() {
			if nextVec < len(vecOrder) {
				slot.InRegister = true
				slot.RegClass = RegClassVector
				slot.RegIndex = vecOrder[nextVec]
				nextVec++
			} else {
				slot = stackSlot(t, &stackOffset)
			}
		} else {
			if nextInt < len(intOrder) {
				slot.InRegister = true
				slot.RegClass = RegClassInt
				slot.RegIndex = intOrder[nextInt]
				nextInt++
			} else {
				slot = stackSlot(t, &stackOffset)
			}
		}
		frame.ArgSlots = append(frame.ArgSlots, slot)
	}

	frame.StackArgsBytes = stackOffset

	if sig.HasReturn {
		frame.ReturnSlot = classifyReturn(sig.Return, sig.Convention)
	}

	return frame
}

func registerOrders(c Convention) (intOrder, vecOrder []int) {
	switch c {
	case ConventionWin64:
		return win64IntOrder, win64VecOrder
	case ConventionVectorCall:
		return vectorCallIntOrder, vectorCallVecOrder
	default:
		return sysVIntOrder, sysVVecOrder
	}
}

func stackSlot(t TypeID, stackOffset *int) Slot {
	width := t.SizeBytes()
	if width < 8 {
		width = 8
	}
	slot := Slot{InRegister: false, StackOffset: *stackOffset, TypeID: t}
	*stackOffset += width
	return slot
}

// classifyReturn places the return value in RAX (or XMM0 for a vector
// return), the first register of whichever class the convention assigns it
// to; every supported convention agrees on this.
func classifyReturn(t TypeID, _ Convention) Slot {
	if t.IsVector() {
		return Slot{InRegister: true, RegClass: RegClassVector, RegIndex: 0, TypeID: t}
	}
	return Slot{InRegister: true, RegClass: RegClassInt, RegIndex: 0, TypeID: t}
}
