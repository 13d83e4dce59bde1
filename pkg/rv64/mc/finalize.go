package mc

import (
	"fmt"

	"github.com/rvasm/rvasm/pkg/utils"
)

// Word filling reserved jump-table slots until the final offsets are known
const jumpTablePlaceholder uint32 = 0x1abe1234

//
// Branches and calls to labels
//

// Emits a conditional branch to a label, relaxed to a longer sequence during
// Finalize if the target turns out to be out of range.
func (a *Assembler) BcondTo(condition BranchCondition, rs XRegister, rt XRegister, label *Label) {
	a.bcond(label, false, condition, rs, rt)
}

// Emits a conditional branch to a label that must stay a single instruction.
// Finalize panics if the target is out of range.
func (a *Assembler) BareBcondTo(condition BranchCondition, rs XRegister, rt XRegister, label *Label) {
	a.bcond(label, true, condition, rs, rt)
}

func (a *Assembler) BeqTo(rs XRegister, rt XRegister, label *Label)  { a.BcondTo(CondEQ, rs, rt, label) }
func (a *Assembler) BneTo(rs XRegister, rt XRegister, label *Label)  { a.BcondTo(CondNE, rs, rt, label) }
func (a *Assembler) BleTo(rs XRegister, rt XRegister, label *Label)  { a.BcondTo(CondLE, rs, rt, label) }
func (a *Assembler) BgeTo(rs XRegister, rt XRegister, label *Label)  { a.BcondTo(CondGE, rs, rt, label) }
func (a *Assembler) BltTo(rs XRegister, rt XRegister, label *Label)  { a.BcondTo(CondLT, rs, rt, label) }
func (a *Assembler) BgtTo(rs XRegister, rt XRegister, label *Label)  { a.BcondTo(CondGT, rs, rt, label) }
func (a *Assembler) BleuTo(rs XRegister, rt XRegister, label *Label) { a.BcondTo(CondLEU, rs, rt, label) }
func (a *Assembler) BgeuTo(rs XRegister, rt XRegister, label *Label) { a.BcondTo(CondGEU, rs, rt, label) }
func (a *Assembler) BltuTo(rs XRegister, rt XRegister, label *Label) { a.BcondTo(CondLTU, rs, rt, label) }
func (a *Assembler) BgtuTo(rs XRegister, rt XRegister, label *Label) { a.BcondTo(CondGTU, rs, rt, label) }

func (a *Assembler) BeqzTo(rs XRegister, label *Label) { a.BeqTo(rs, Zero, label) }
func (a *Assembler) BnezTo(rs XRegister, label *Label) { a.BneTo(rs, Zero, label) }
func (a *Assembler) BlezTo(rs XRegister, label *Label) { a.BleTo(rs, Zero, label) }
func (a *Assembler) BgezTo(rs XRegister, label *Label) { a.BgeTo(rs, Zero, label) }
func (a *Assembler) BltzTo(rs XRegister, label *Label) { a.BltTo(rs, Zero, label) }
func (a *Assembler) BgtzTo(rs XRegister, label *Label) { a.BgtTo(rs, Zero, label) }

// Emits an unconditional jump to a label
func (a *Assembler) JTo(label *Label) { a.buncond(label, Zero, false) }

// Emits a single-instruction jump to a label, never relaxed
func (a *Assembler) BareJTo(label *Label) { a.buncond(label, Zero, true) }

// Emits a call to a label, linking through RA
func (a *Assembler) JalTo(label *Label) { a.buncond(label, RA, false) }

// Emits a single-instruction call to a label, never relaxed
func (a *Assembler) BareJalTo(label *Label) { a.buncond(label, RA, true) }

// Emits a call to a label, linking through rd
func (a *Assembler) CallTo(rd XRegister, label *Label) { a.buncond(label, rd, false) }

// Emits a single-instruction call through rd, never relaxed
func (a *Assembler) BareCallTo(rd XRegister, label *Label) { a.buncond(label, rd, true) }

// Materializes the absolute address of a label into rd
func (a *Assembler) LoadLabelAddress(rd XRegister, label *Label) {
	target := unresolvedTarget
	if label.IsBound() {
		target = a.LabelLocation(label)
	}
	a.branches = append(a.branches, newLabeledBranch(a.buffer.Size(), target, rd, BranchLabel))
	a.finalizeLabeledBranch(label)
}

//
// Literals
//

// Creates a 4-byte literal placed in the narrow pool during Finalize
func (a *Assembler) NewLiteral32(value uint32) *Literal {
	literal := newLiteral(4, literalBytes32(value))
	a.literals = append(a.literals, literal)
	return literal
}

// Creates an 8-byte literal placed in the 8-byte aligned wide pool
func (a *Assembler) NewLiteral64(value uint64) *Literal {
	literal := newLiteral(8, literalBytes64(value))
	a.longLiterals = append(a.longLiterals, literal)
	return literal
}

// Loads a 4-byte literal sign-extended into rd
func (a *Assembler) LoadLiteralW(rd XRegister, literal *Literal) {
	a.loadLiteral(literal, rd, BranchLiteralW, 4)
}

// Loads a 4-byte literal zero-extended into rd
func (a *Assembler) LoadLiteralWU(rd XRegister, literal *Literal) {
	a.loadLiteral(literal, rd, BranchLiteralWU, 4)
}

// Loads an 8-byte literal into rd
func (a *Assembler) LoadLiteralD(rd XRegister, literal *Literal) {
	a.loadLiteral(literal, rd, BranchLiteralD, 8)
}

// Loads a 4-byte literal into a float register
func (a *Assembler) FLoadLiteralW(rd FRegister, literal *Literal) {
	a.fLoadLiteral(literal, rd, BranchLiteralFloat, 4)
}

// Loads an 8-byte literal into a float register
func (a *Assembler) FLoadLiteralD(rd FRegister, literal *Literal) {
	a.fLoadLiteral(literal, rd, BranchLiteralDouble, 8)
}

//
// Jump tables
//

// Creates a table of the given code positions. The table contents and its
// position are filled in during Finalize; use LoadLabelAddress on the
// table's label to locate it.
func (a *Assembler) CreateJumpTable(targets []*Label) *JumpTable {
	table := newJumpTable(targets)
	if table.Label().IsBound() {
		panic("fresh jump table label cannot be bound")
	}
	a.jumpTables = append(a.jumpTables, table)
	return table
}

//
// Label management
//

// Fixes the label to the current end of the code, resolving every branch
// recorded against it so far.
func (a *Assembler) Bind(label *Label) {
	boundPC := a.buffer.Size()

	// Resolve all forward references waiting on this label.
	if label.IsLinked() {
		id := label.linkedBranchID()
		for id != noBranchID {
			branch := &a.branches[id]
			branch.Resolve(boundPC)
			id = branch.prevForLabel
		}
		label.position = 0
	}

	// Store the position relative to the end of the preceding branch, so it
	// survives branch promotion; the anchor identifies that branch.
	anchor := uint32(0)
	if len(a.branches) != 0 {
		prevID := uint32(len(a.branches)) - 1
		boundPC -= a.branches[prevID].EndLocation()
		anchor = prevID + 1
	}
	label.anchor = anchor
	label.bindTo(boundPC)
}

// Returns the absolute location of a bound label in the code buffer
func (a *Assembler) LabelLocation(label *Label) uint32 {
	target := label.boundPosition()
	if label.anchor != 0 {
		target += a.branches[label.anchor-1].EndLocation()
	}
	return target
}

// Maps a code position from before Finalize to its final location, by
// accumulating the growth of every promoted branch before it. Queries in
// increasing position order are answered in amortized constant time; a
// regression resets the scan.
func (a *Assembler) AdjustedPosition(oldPosition uint32) uint32 {
	if oldPosition < a.lastOldPosition {
		a.lastPositionAdjustment = 0
		a.lastOldPosition = 0
		a.lastBranchID = 0
	}
	for a.lastBranchID != uint32(len(a.branches)) {
		branch := &a.branches[a.lastBranchID]
		if branch.Location() >= oldPosition+a.lastPositionAdjustment {
			break
		}
		a.lastPositionAdjustment += branch.Length() - branch.OldLength()
		a.lastBranchID++
	}
	a.lastOldPosition = oldPosition
	return oldPosition + a.lastPositionAdjustment
}

//
// Recording helpers
//

func (a *Assembler) bcond(label *Label, bare bool, condition BranchCondition, lhs XRegister, rhs XRegister) {
	// Degenerate conditions collapse before a record is made.
	if condIsNop(condition, lhs, rhs) {
		return
	}
	if condIsUncond(condition, lhs, rhs) {
		a.buncond(label, Zero, bare)
		return
	}

	target := unresolvedTarget
	if label.IsBound() {
		target = a.LabelLocation(label)
	}
	a.branches = append(a.branches, newCondBranch(a.buffer.Size(), target, condition, lhs, rhs, bare))
	a.finalizeLabeledBranch(label)
}

func (a *Assembler) buncond(label *Label, rd XRegister, bare bool) {
	target := unresolvedTarget
	if label.IsBound() {
		target = a.LabelLocation(label)
	}
	a.branches = append(a.branches, newUncondBranch(a.buffer.Size(), target, rd, bare))
	a.finalizeLabeledBranch(label)
}

func (a *Assembler) loadLiteral(literal *Literal, rd XRegister, branchType BranchType, size uint32) {
	if literal.Size() != size {
		panic(fmt.Sprintf("literal size mismatch: have %d, want %d", literal.Size(), size))
	}
	if literal.Label().IsBound() {
		panic("literal pool already laid out")
	}
	a.branches = append(a.branches, newLabeledBranch(a.buffer.Size(), unresolvedTarget, rd, branchType))
	a.finalizeLabeledBranch(literal.Label())
}

func (a *Assembler) fLoadLiteral(literal *Literal, rd FRegister, branchType BranchType, size uint32) {
	if literal.Size() != size {
		panic(fmt.Sprintf("literal size mismatch: have %d, want %d", literal.Size(), size))
	}
	if literal.Label().IsBound() {
		panic("literal pool already laid out")
	}
	a.branches = append(a.branches, newFPLiteralBranch(a.buffer.Size(), unresolvedTarget, rd, branchType))
	a.finalizeLabeledBranch(literal.Label())
}

// Reserves buffer space for the branch just recorded and threads it onto the
// label's forward-reference chain if the target is not known yet. The
// reserved space is NOP filler; the final sequence is patched over it.
func (a *Assembler) finalizeLabeledBranch(label *Label) {
	branchID := uint32(len(a.branches)) - 1
	branch := &a.branches[branchID]
	if !utils.IsAligned(branch.Length(), 4) {
		panic("branch length must be a multiple of the instruction size")
	}
	if !label.IsBound() {
		if label.IsLinked() {
			branch.prevForLabel = label.linkedBranchID()
		}
		label.linkTo(branchID)
	}
	for words := branch.Length() / 4; words != 0; words-- {
		a.Nop()
	}
}

//
// Finalization
//

// Resolves all recorded branches, promotes the ones whose targets are out of
// range, lays out literal pools and jump tables, and patches all reserved
// space with final instruction words. No code may be emitted afterwards.
func (a *Assembler) Finalize() {
	if a.finalized {
		panic("assembler already finalized")
	}
	a.reserveJumpTableSpace()
	a.emitLiterals()
	a.promoteBranches()
	a.emitBranches()
	a.emitJumpTables()
	a.patchCFI()
	a.finalized = true
}

func (a *Assembler) reserveJumpTableSpace() {
	for _, table := range a.jumpTables {
		a.Bind(table.Label())
		a.buffer.EnsureCapacity(a.buffer.Size() + table.Size())
		// The offsets are not known until branches are promoted; fill the
		// space with placeholder words so promotion never moves
		// uninitialized data.
		for range table.Targets() {
			a.buffer.Emit32(jumpTablePlaceholder)
		}
	}
}

func (a *Assembler) emitLiterals() {
	for _, literal := range a.literals {
		a.Bind(literal.Label())
		a.buffer.EmitBytes(literal.Data())
	}
	// Wide literals need 8-byte alignment but the padding cannot be placed
	// until promotion settles the layout. Literal loads are AUIPC based and
	// never promoted, so the late shift cannot take them out of range.
	for _, literal := range a.longLiterals {
		a.Bind(literal.Label())
		a.buffer.EmitBytes(literal.Data())
	}
}

func (a *Assembler) promoteBranches() {
	// Grow branches until every offset fits its encoding. Promotion only
	// ever lengthens sequences, so this terminates.
	for changed := true; changed; {
		changed = false
		for i := range a.branches {
			delta := a.branches[i].PromoteIfNeeded()
			if delta != 0 {
				changed = true
				relocateAll(a.branches, a.branches[i].Location(), delta)
			}
		}
	}

	// Resize the buffer and move the code between branch placeholders to
	// its final position, walking backwards so nothing is clobbered.
	if count := len(a.branches); count > 0 {
		last := &a.branches[count-1]
		sizeDelta := last.EndLocation() - last.OldEndLocation()
		oldSize := a.buffer.Size()
		a.buffer.Resize(oldSize + sizeDelta)
		end := oldSize
		for i := count; i > 0; {
			i--
			branch := &a.branches[i]
			size := end - branch.OldEndLocation()
			a.buffer.Move(branch.EndLocation(), branch.OldEndLocation(), size)
			end = branch.OldLocation()
		}
	}

	a.alignWideLiterals()
}

// Moves the wide literal pool up by 4 bytes when it landed on a misaligned
// boundary, patching an illegal instruction into the gap and shifting every
// target at or past the pool.
func (a *Assembler) alignWideLiterals() {
	if len(a.longLiterals) == 0 {
		return
	}
	firstLiteralLocation := a.LabelLocation(a.longLiterals[0].Label())
	litSize := uint32(len(a.longLiterals)) * 8
	bufSize := a.buffer.Size()
	if firstLiteralLocation+litSize != bufSize {
		panic("wide literals must sit at the very end of the buffer")
	}
	if utils.IsAligned(firstLiteralLocation, 8) {
		return
	}

	a.buffer.Resize(bufSize + 4)
	a.buffer.Move(firstLiteralLocation+4, firstLiteralLocation, litSize)
	if a.cursor.patching {
		panic("cannot align literals while patching")
	}
	a.cursor = cursor{patching: true, pos: firstLiteralLocation}
	a.emit32(0) // illegal instruction
	a.cursor = cursor{}

	// Branch targets at or past the pool move with it.
	for i := range a.branches {
		if target := a.branches[i].Target(); target >= firstLiteralLocation {
			a.branches[i].Resolve(target + 4)
		}
	}
	// Bound positions are stored negated, so the labels move forward by
	// decrementing the raw value.
	for _, literal := range a.longLiterals {
		literal.label.position -= 4
	}
}

func (a *Assembler) emitBcond(condition BranchCondition, rs XRegister, rt XRegister, offset int32) {
	switch condition {
	case CondEQ:
		a.Beq(rs, rt, offset)
	case CondNE:
		a.Bne(rs, rt, offset)
	case CondLT:
		a.Blt(rs, rt, offset)
	case CondGE:
		a.Bge(rs, rt, offset)
	case CondLE:
		a.Ble(rs, rt, offset)
	case CondGT:
		a.Bgt(rs, rt, offset)
	case CondLTU:
		a.Bltu(rs, rt, offset)
	case CondGEU:
		a.Bgeu(rs, rt, offset)
	case CondLEU:
		a.Bleu(rs, rt, offset)
	case CondGTU:
		a.Bgtu(rs, rt, offset)
	default:
		panic(fmt.Sprintf("unexpected branch condition %d", condition))
	}
}

func (a *Assembler) emitBranches() {
	if a.cursor.patching {
		panic("already patching")
	}
	// Switch from appending at the end of the buffer to patching the
	// reserved placeholders.
	a.cursor.patching = true
	for i := range a.branches {
		a.emitBranch(&a.branches[i])
	}
	a.cursor = cursor{}
}

func (a *Assembler) emitBranch(branch *Branch) {
	a.cursor.pos = branch.Location()
	offset := branch.Offset()
	condition := branch.Condition()
	lhs := branch.LeftRegister()
	rhs := branch.RightRegister()

	checkOffsetLocation := func() {
		if a.cursor.pos != branch.OffsetLocation() {
			panic(fmt.Sprintf("PC-relative instruction at %d, expected %d", a.cursor.pos, branch.OffsetLocation()))
		}
	}
	emitAuipcAndNext := func(reg XRegister, next func(short int32)) {
		checkOffsetLocation()
		imm20, short := SplitOffset(offset)
		a.Auipc(reg, imm20)
		next(short)
	}

	switch branch.Type() {
	case BranchUncond, BranchBareUncond:
		checkOffsetLocation()
		a.J(offset)
	case BranchCond, BranchBareCond:
		checkOffsetLocation()
		a.emitBcond(condition, lhs, rhs, offset)
	case BranchCall, BranchBareCall:
		checkOffsetLocation()
		a.Jal(lhs, offset)

	case BranchCond21:
		// Opposite condition skipping over the jump.
		a.emitBcond(condition.Opposite(), lhs, rhs, int32(branch.Length()))
		checkOffsetLocation()
		a.J(offset)

	case BranchLongCond:
		a.emitBcond(condition.Opposite(), lhs, rhs, int32(branch.Length()))
		emitAuipcAndNext(TMP, func(short int32) { a.Jalr(Zero, TMP, short) })
	case BranchLongUncond:
		emitAuipcAndNext(TMP, func(short int32) { a.Jalr(Zero, TMP, short) })
	case BranchLongCall:
		emitAuipcAndNext(lhs, func(short int32) { a.Jalr(lhs, lhs, short) })

	case BranchLabel:
		emitAuipcAndNext(lhs, func(short int32) { a.Addi(lhs, lhs, short) })
	case BranchLiteralW:
		emitAuipcAndNext(lhs, func(short int32) { a.Lw(lhs, lhs, short) })
	case BranchLiteralWU:
		emitAuipcAndNext(lhs, func(short int32) { a.Lwu(lhs, lhs, short) })
	case BranchLiteralD:
		emitAuipcAndNext(lhs, func(short int32) { a.Ld(lhs, lhs, short) })
	case BranchLiteralFloat:
		emitAuipcAndNext(TMP, func(short int32) { a.FLw(branch.FloatRegister(), TMP, short) })
	case BranchLiteralDouble:
		emitAuipcAndNext(TMP, func(short int32) { a.FLd(branch.FloatRegister(), TMP, short) })
	}

	if a.cursor.pos != branch.EndLocation() {
		panic(fmt.Sprintf("branch sequence ended at %d, expected %d", a.cursor.pos, branch.EndLocation()))
	}
}

func (a *Assembler) emitJumpTables() {
	if len(a.jumpTables) == 0 {
		return
	}
	if a.cursor.patching {
		panic("already patching")
	}
	a.cursor.patching = true
	for _, table := range a.jumpTables {
		start := a.LabelLocation(table.Label())
		a.cursor.pos = start
		for _, target := range table.Targets() {
			if a.buffer.Load32(a.cursor.pos) != jumpTablePlaceholder {
				panic("jump table slot was clobbered")
			}
			// Entries are relative to the table start.
			a.emit32(a.LabelLocation(target) - start)
		}
	}
	a.cursor = cursor{}
}

func (a *Assembler) patchCFI() {
	if a.cfi.NumberOfDelayedAdvancePCs() == 0 {
		return
	}
	// Replay the stream, rewriting each delayed advance with the position
	// it maps to after branch promotion.
	stream, advances := a.cfi.ReleaseStreamAndDelayedAdvancePCs()
	streamPos := uint32(0)
	for _, advance := range advances {
		if advance.StreamPos < streamPos {
			panic("delayed advances out of order")
		}
		a.cfi.AppendRaw(stream[streamPos:advance.StreamPos])
		streamPos = advance.StreamPos
		a.cfi.AdvancePC(a.AdjustedPosition(advance.PC))
	}
	a.cfi.AppendRaw(stream[streamPos:])
}
