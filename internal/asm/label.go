package asm

import "math"

// LabelID is an opaque handle into a LabelTable's arena. Relocation sites
// reference labels by id, not by pointer, so the table owns every label
// record and sites can be trivially serialized (spec §9, "Cyclic label
// references").
type LabelID int

// labelState is the Unbound -> Bound state machine from spec §3. Bound ->
// Unbound transitions are never exposed.
type labelState int

const (
	labelUnbound labelState = iota
	labelBound
)

type labelRecord struct {
	state  labelState
	offset int
	name   string
}

// RelocKind distinguishes an 8-bit from a 32-bit PC-relative relocation.
type RelocKind int

const (
	// Rel8 is a one-byte signed displacement relocation, e.g. a short jump.
	Rel8 RelocKind = iota
	// Rel32 is a four-byte signed displacement relocation, e.g. a near jump
	// or call.
	Rel32
)

// relocSite is a pending forward reference: the buffer already contains a
// placeholder displacement at PatchOffset that must be overwritten once
// Label binds. EmitSiteEnd is the buffer offset immediately after the
// instruction that created the site (i.e. the PC-relative origin for the
// displacement arithmetic).
type relocSite struct {
	label       LabelID
	kind        RelocKind
	patchOffset int
	emitSiteEnd int
}

// LabelTable owns every label record and every pending relocation site for
// one code buffer, and patches already-emitted bytes when a label is bound.
// Other code (the call-to-label encoder, the builder) also patches the
// Buffer directly when the target is already bound.
type LabelTable struct {
	labels []labelRecord
	sites  map[LabelID][]relocSite
}

// NewLabelTable returns an empty label table.
func NewLabelTable() *LabelTable {
	return &LabelTable{sites: map[LabelID][]relocSite{}}
}

// NewLabel allocates a fresh unbound label id.
func (t *LabelTable) NewLabel() LabelID {
	id := LabelID(len(t.labels))
	t.labels = append(t.labels, labelRecord{state: labelUnbound})
	return id
}

// NewNamedLabel allocates a fresh unbound label carrying a diagnostic name.
func (t *LabelTable) NewNamedLabel(name string) LabelID {
	id := t.NewLabel()
	t.labels[id].name = name
	return id
}

// IsBound reports whether the given label has been bound to an offset.
func (t *LabelTable) IsBound(id LabelID) bool {
	return t.labels[id].state == labelBound
}

// OffsetOf returns the bound offset of id. Only valid after IsBound(id).
func (t *LabelTable) OffsetOf(id LabelID) int {
	return t.labels[id].offset
}

// Name returns the diagnostic name of id, or "" if it was allocated unnamed.
func (t *LabelTable) Name(id LabelID) string {
	return t.labels[id].name
}

// AddRel8 registers a forward 8-bit relocation site against label id. The
// buffer must already hold a one-byte placeholder at patchOffset.
func (t *LabelTable) AddRel8(id LabelID, patchOffset, emitSiteEnd int) {
	t.sites[id] = append(t.sites[id], relocSite{label: id, kind: Rel8, patchOffset: patchOffset, emitSiteEnd: emitSiteEnd})
}

// AddRel32 registers a forward 32-bit relocation site against label id. The
// buffer must already hold a four-byte placeholder at patchOffset.
func (t *LabelTable) AddRel32(id LabelID, patchOffset, emitSiteEnd int) {
	t.sites[id] = append(t.sites[id], relocSite{label: id, kind: Rel32, patchOffset: patchOffset, emitSiteEnd: emitSiteEnd})
}

// Bind sets label id's offset to the buffer's current length, then patches
// every pending relocation site registered against it, in place, removing
// them from the pending set. Every patch completes before Bind returns
// (spec §5's atomic-with-respect-to-the-buffer guarantee).
func (t *LabelTable) Bind(id LabelID, buf *Buffer) error {
	offset := buf.Len()
	t.labels[id].state = labelBound
	t.labels[id].offset = offset

	pending := t.sites[id]
	delete(t.sites, id)
	for _, site := range pending {
		disp := int64(offset - site.emitSiteEnd)
		switch site.kind {
		case Rel8:
			if disp < math.MinInt8 || disp > math.MaxInt8 {
				return NewRel8OutOfRange(disp)
			}
			buf.PatchI8(site.patchOffset, int8(disp))
		case Rel32:
			if disp < math.MinInt32 || disp > math.MaxInt32 {
				return NewInvalidState("relative offset %d does not fit in a signed 32-bit displacement", disp)
			}
			buf.PatchI32(site.patchOffset, int32(disp))
		}
	}
	return nil
}

// Finalize reports an error if any relocation site remains unresolved. It is
// the caller's responsibility to invoke this once no more labels will bind.
func (t *LabelTable) Finalize() error {
	for id, sites := range t.sites {
		if len(sites) > 0 {
			return NewUnboundLabel(t.labelDiagName(id))
		}
	}
	return nil
}

func (t *LabelTable) labelDiagName(id LabelID) string {
	if name := t.labels[id].name; name != "" {
		return name
	}
	return "<anonymous>"
}
