package mc

import (
	"fmt"

	"github.com/rvasm/rvasm/pkg/utils"
)

// Represents the condition of a conditional branch
type BranchCondition uint32

const (
	CondEQ BranchCondition = iota
	CondNE
	CondLT
	CondGE
	CondLE
	CondGT
	CondLTU
	CondGEU
	CondLEU
	CondGTU
	Uncond
)

// Returns the condition selecting exactly the cases this one rejects
func (c BranchCondition) Opposite() BranchCondition {
	switch c {
	case CondEQ:
		return CondNE
	case CondNE:
		return CondEQ
	case CondLT:
		return CondGE
	case CondGE:
		return CondLT
	case CondLE:
		return CondGT
	case CondGT:
		return CondLE
	case CondLTU:
		return CondGEU
	case CondGEU:
		return CondLTU
	case CondLEU:
		return CondGTU
	case CondGTU:
		return CondLEU
	default:
		panic(fmt.Sprintf("unexpected branch condition %d", c))
	}
}

// Reports whether a conditional branch with these operands can never be taken
func condIsNop(condition BranchCondition, lhs XRegister, rhs XRegister) bool {
	switch condition {
	case CondNE, CondLT, CondGT, CondLTU, CondGTU:
		return lhs == rhs
	default:
		return false
	}
}

// Reports whether a conditional branch with these operands is always taken
func condIsUncond(condition BranchCondition, lhs XRegister, rhs XRegister) bool {
	switch condition {
	case Uncond:
		return true
	case CondEQ, CondGE, CondLE, CondLEU, CondGEU:
		return lhs == rhs
	default:
		return false
	}
}

// Represents the size class and kind of a branch record
type BranchType uint32

const (
	// Short branches, subject to promotion.
	BranchCond BranchType = iota
	BranchUncond
	BranchCall
	// Short branches, the caller guarantees the target is in range.
	BranchBareCond
	BranchBareUncond
	BranchBareCall
	// Medium branch: opposite condition over a plain jump.
	BranchCond21
	// Long branches: AUIPC-based, full 32-bit range.
	BranchLongCond
	BranchLongUncond
	BranchLongCall
	// Label address materialization.
	BranchLabel
	// Literal loads.
	BranchLiteralW
	BranchLiteralWU
	BranchLiteralD
	BranchLiteralFloat
	BranchLiteralDouble
)

// Offset field widths of the branch encodings
const (
	offsetBits13 = 13 // conditional branch (B format)
	offsetBits21 = 21 // plain jump (J format)
	offsetBits32 = 32 // AUIPC + 12-bit remainder
)

type branchInfo struct {
	length     uint32 // size of the emitted sequence in bytes
	pcOffset   uint32 // where the PC-relative instruction sits within the sequence
	offsetBits int
}

var branchInfos = [...]branchInfo{
	BranchCond:          {4, 0, offsetBits13},
	BranchUncond:        {4, 0, offsetBits21},
	BranchCall:          {4, 0, offsetBits21},
	BranchBareCond:      {4, 0, offsetBits13},
	BranchBareUncond:    {4, 0, offsetBits21},
	BranchBareCall:      {4, 0, offsetBits21},
	BranchCond21:        {8, 4, offsetBits21},
	BranchLongCond:      {12, 4, offsetBits32},
	BranchLongUncond:    {8, 0, offsetBits32},
	BranchLongCall:      {8, 0, offsetBits32},
	BranchLabel:         {8, 0, offsetBits32},
	BranchLiteralW:      {8, 0, offsetBits32},
	BranchLiteralWU:     {8, 0, offsetBits32},
	BranchLiteralD:      {8, 0, offsetBits32},
	BranchLiteralFloat:  {8, 0, offsetBits32},
	BranchLiteralDouble: {8, 0, offsetBits32},
}

// Maximum size in bytes of any branch sequence
const maxBranchLength = 12

// Sentinel target of branches whose label is not bound yet
const unresolvedTarget uint32 = 0xffffffff

// Terminator of the per-label chain of forward references
const noBranchID uint32 = 0xffffffff

// Represents one branch, label-address load, or literal load recorded for
// later resolution. Locations and targets are byte offsets into the code
// buffer; the "old" fields remember the layout before promotion so code
// between branches can be moved to its final position.
type Branch struct {
	oldLocation uint32
	location    uint32
	target      uint32

	lhs  XRegister
	rhs  XRegister
	freg FRegister

	condition  BranchCondition
	branchType BranchType
	oldType    BranchType

	// Index of the previous branch waiting on the same unbound label, or
	// noBranchID. The forward-reference chain lives here, out of band; the
	// reserved buffer space holds only NOP placeholders.
	prevForLabel uint32
}

func newUncondBranch(location uint32, target uint32, rd XRegister, isBare bool) Branch {
	branch := Branch{
		oldLocation:  location,
		location:     location,
		target:       target,
		lhs:          rd,
		rhs:          Zero,
		freg:         NoFRegister,
		condition:    Uncond,
		prevForLabel: noBranchID,
	}
	var initial BranchType
	if rd != Zero {
		initial = BranchCall
		if isBare {
			initial = BranchBareCall
		}
	} else {
		initial = BranchUncond
		if isBare {
			initial = BranchBareUncond
		}
	}
	branch.initializeType(initial)
	return branch
}

func newCondBranch(location uint32, target uint32, condition BranchCondition, lhs XRegister, rhs XRegister, isBare bool) Branch {
	if condition == Uncond || condIsNop(condition, lhs, rhs) || condIsUncond(condition, lhs, rhs) {
		panic(fmt.Sprintf("conditional branch with degenerate condition %d %s %s", condition, lhs, rhs))
	}
	branch := Branch{
		oldLocation:  location,
		location:     location,
		target:       target,
		lhs:          lhs,
		rhs:          rhs,
		freg:         NoFRegister,
		condition:    condition,
		prevForLabel: noBranchID,
	}
	initial := BranchCond
	if isBare {
		initial = BranchBareCond
	}
	branch.initializeType(initial)
	return branch
}

func newLabeledBranch(location uint32, target uint32, rd XRegister, branchType BranchType) Branch {
	if rd == Zero {
		panic("labeled branch needs a destination register")
	}
	branch := Branch{
		oldLocation:  location,
		location:     location,
		target:       target,
		lhs:          rd,
		rhs:          Zero,
		freg:         NoFRegister,
		condition:    Uncond,
		prevForLabel: noBranchID,
	}
	branch.initializeType(branchType)
	return branch
}

func newFPLiteralBranch(location uint32, target uint32, rd FRegister, branchType BranchType) Branch {
	branch := Branch{
		oldLocation:  location,
		location:     location,
		target:       target,
		lhs:          Zero,
		rhs:          Zero,
		freg:         rd,
		condition:    Uncond,
		prevForLabel: noBranchID,
	}
	branch.initializeType(branchType)
	return branch
}

// Returns the narrowest offset field width able to reach target from a
// PC-relative instruction at the given location. Unresolved targets assume
// the shortest encoding; promotion widens them later if needed.
func offsetBitsNeeded(location uint32, target uint32) int {
	if target == unresolvedTarget {
		return offsetBits13
	}
	distance := int64(target) - int64(location)
	switch {
	case utils.IsInt(offsetBits13, distance):
		return offsetBits13
	case utils.IsInt(offsetBits21, distance):
		return offsetBits21
	default:
		return offsetBits32
	}
}

func (b *Branch) initShortOrLong(needed int, short BranchType, long BranchType, longest BranchType) {
	branchType := short
	if needed > branchInfos[branchType].offsetBits {
		branchType = long
		if needed > branchInfos[branchType].offsetBits {
			branchType = longest
		}
	}
	b.branchType = branchType
}

func (b *Branch) initializeType(initial BranchType) {
	needed := offsetBitsNeeded(b.location, b.target)

	switch initial {
	case BranchCond:
		b.initShortOrLong(needed, BranchCond, BranchCond21, BranchLongCond)
	case BranchUncond:
		b.initShortOrLong(needed, BranchUncond, BranchLongUncond, BranchLongUncond)
	case BranchCall:
		b.initShortOrLong(needed, BranchCall, BranchLongCall, BranchLongCall)
	case BranchBareCond, BranchBareUncond, BranchBareCall:
		b.branchType = initial
		if needed > b.OffsetBits() {
			panic(fmt.Sprintf("bare branch at %d cannot reach target %d", b.location, b.target))
		}
	case BranchLabel:
		b.branchType = initial
	case BranchLiteralW, BranchLiteralWU, BranchLiteralD, BranchLiteralFloat, BranchLiteralDouble:
		if b.IsResolved() {
			panic("literal load cannot have a resolved target")
		}
		b.branchType = initial
	default:
		panic(fmt.Sprintf("unexpected branch type %d", initial))
	}

	b.oldType = b.branchType
}

func (b *Branch) Type() BranchType            { return b.branchType }
func (b *Branch) Condition() BranchCondition  { return b.condition }
func (b *Branch) LeftRegister() XRegister     { return b.lhs }
func (b *Branch) RightRegister() XRegister    { return b.rhs }
func (b *Branch) FloatRegister() FRegister    { return b.freg }
func (b *Branch) Target() uint32              { return b.target }
func (b *Branch) Location() uint32            { return b.location }
func (b *Branch) OldLocation() uint32         { return b.oldLocation }
func (b *Branch) Length() uint32              { return branchInfos[b.branchType].length }
func (b *Branch) OldLength() uint32           { return branchInfos[b.oldType].length }
func (b *Branch) EndLocation() uint32         { return b.location + b.Length() }
func (b *Branch) OldEndLocation() uint32      { return b.oldLocation + b.OldLength() }
func (b *Branch) OffsetBits() int             { return branchInfos[b.branchType].offsetBits }

// Reports whether the branch was requested with a fixed-size encoding
func (b *Branch) IsBare() bool {
	switch b.branchType {
	case BranchBareCond, BranchBareUncond, BranchBareCall:
		return true
	default:
		return false
	}
}

func (b *Branch) IsResolved() bool {
	return b.target != unresolvedTarget
}

// Sets the final target of the branch
func (b *Branch) Resolve(target uint32) {
	b.target = target
}

// Shifts the branch by delta bytes if it sits past the expansion point.
// The location and the target move independently.
func (b *Branch) Relocate(expandLocation uint32, delta uint32) {
	if !b.IsResolved() {
		panic("relocating an unresolved branch")
	}
	if b.location > expandLocation {
		b.location += delta
	}
	if b.target > expandLocation {
		b.target += delta
	}
}

// Applies Relocate to every branch in the slice
func relocateAll(branches []Branch, expandLocation uint32, delta uint32) {
	for i := range branches {
		branches[i].Relocate(expandLocation, delta)
	}
}

// Returns the location of the PC-relative instruction within the sequence
func (b *Branch) OffsetLocation() uint32 {
	return b.location + branchInfos[b.branchType].pcOffset
}

// Returns the byte distance from the PC-relative instruction to the target
func (b *Branch) Offset() int32 {
	if !b.IsResolved() {
		panic("offset of an unresolved branch")
	}
	return int32(b.target - b.OffsetLocation())
}

// Widens the branch to the next size class able to reach its target.
// Returns the number of bytes the sequence grows by, zero if the current
// encoding still fits. Promotion never narrows a branch.
func (b *Branch) PromoteIfNeeded() uint32 {
	if !b.IsResolved() {
		panic("promoting an unresolved branch")
	}
	oldType := b.branchType
	switch b.branchType {
	case BranchCond:
		needed := offsetBitsNeeded(b.OffsetLocation(), b.target)
		if needed <= b.OffsetBits() {
			return 0
		}
		// The jump in the medium form sits one instruction later, which
		// only matters for backward branches: recompute what the medium
		// form would need before choosing between medium and long.
		if b.target <= b.location {
			needed = offsetBitsNeeded(b.location+branchInfos[BranchCond21].pcOffset, b.target)
		}
		if needed <= branchInfos[BranchCond21].offsetBits {
			b.branchType = BranchCond21
		} else {
			b.branchType = BranchLongCond
		}
	case BranchUncond:
		if offsetBitsNeeded(b.OffsetLocation(), b.target) <= b.OffsetBits() {
			return 0
		}
		b.branchType = BranchLongUncond
	case BranchCall:
		if offsetBitsNeeded(b.OffsetLocation(), b.target) <= b.OffsetBits() {
			return 0
		}
		b.branchType = BranchLongCall
	case BranchCond21:
		if offsetBitsNeeded(b.OffsetLocation(), b.target) <= b.OffsetBits() {
			return 0
		}
		b.branchType = BranchLongCond
	default:
		if offsetBitsNeeded(b.OffsetLocation(), b.target) > b.OffsetBits() {
			panic(fmt.Sprintf("branch type %d at %d cannot reach target %d", b.branchType, b.location, b.target))
		}
		return 0
	}
	if branchInfos[b.branchType].length <= branchInfos[oldType].length {
		panic("branch promotion must grow the sequence")
	}
	return branchInfos[b.branchType].length - branchInfos[oldType].length
}
