package mc

import "fmt"

// Bias keeping encoded label positions away from zero, so the zero value
// of Label means "unused".
const labelPositionBias = 8

// Represents a position in the emitted code. A label starts out unused,
// becomes linked when a branch targets it before it is bound, and bound once
// Bind fixes its position. The zero value is a valid unused label.
//
// The position field packs all three states into one integer: zero when
// unused, branch id plus bias when linked, negated byte position minus bias
// when bound. A bound position is relative to the end of the branch preceding
// the bind point; the anchor field remembers that branch so the absolute
// location can be recomputed after branch promotion moves code around.
type Label struct {
	position int32

	// Id of the branch preceding the bind point plus one, zero when the
	// label was bound before any branch was recorded.
	anchor uint32
}

func (l *Label) IsBound() bool {
	return l.position < 0
}

func (l *Label) IsLinked() bool {
	return l.position > 0
}

// Returns the bound position relative to the end of the anchor branch
func (l *Label) boundPosition() uint32 {
	if !l.IsBound() {
		panic("label is not bound")
	}
	return uint32(-l.position - labelPositionBias)
}

// Returns the id of the newest branch waiting on this label
func (l *Label) linkedBranchID() uint32 {
	if !l.IsLinked() {
		panic("label is not linked")
	}
	return uint32(l.position - labelPositionBias)
}

func (l *Label) bindTo(position uint32) {
	if l.IsBound() {
		panic(fmt.Sprintf("label bound twice, first at %d", l.boundPosition()))
	}
	l.position = -int32(position) - labelPositionBias
}

func (l *Label) linkTo(branchID uint32) {
	if l.IsBound() {
		panic("linking a bound label")
	}
	l.position = int32(branchID) + labelPositionBias
}
