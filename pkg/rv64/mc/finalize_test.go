package mc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nopWord = 0x00000013

// Reads the instruction word at the given byte position
func wordAt(a *Assembler, pos uint32) uint32 {
	return a.buffer.Load32(pos)
}

func emitNops(a *Assembler, count int) {
	for i := 0; i < count; i++ {
		a.Nop()
	}
}

func TestFinalize_ShortForwardBranch(t *testing.T) {
	a := NewAssembler()
	var l Label

	a.BeqzTo(A0, &l)
	a.Nop()
	a.Bind(&l)
	a.Addi(A0, A0, 1)
	a.Finalize()

	require.Equal(t, uint32(12), a.CodeSize())
	assert.Equal(t, uint32(8), a.LabelLocation(&l))
	assert.Equal(t, EncodeB(8, 0, 10, 0x0, 0x63), wordAt(a, 0)) // beq a0, zero, +8
	assert.Equal(t, uint32(nopWord), wordAt(a, 4))
	assert.Equal(t, EncodeI(1, 10, 0x0, 10, 0x13), wordAt(a, 8))
}

func TestFinalize_ShortBackwardBranch(t *testing.T) {
	a := NewAssembler()
	var l Label

	a.Bind(&l)
	a.Nop()
	a.BneTo(A0, A1, &l)
	a.Finalize()

	require.Equal(t, uint32(8), a.CodeSize())
	assert.Equal(t, EncodeB(-4, 11, 10, 0x1, 0x63), wordAt(a, 4)) // bne a0, a1, -4
}

func TestFinalize_SelfLoop(t *testing.T) {
	a := NewAssembler()
	var l Label

	a.Bind(&l)
	a.JTo(&l)
	a.Finalize()

	require.Equal(t, uint32(4), a.CodeSize())
	assert.Equal(t, uint32(0x0000006f), wordAt(a, 0)) // jal zero, 0
}

func TestFinalize_PromotesCondToMedium(t *testing.T) {
	a := NewAssembler()
	var l Label

	a.BneTo(A0, A1, &l)
	emitNops(a, 1023) // target lands one instruction past the 13-bit range
	a.Bind(&l)
	a.Addi(A0, A0, 1)
	a.Finalize()

	require.Equal(t, BranchCond21, a.branches[0].Type())
	require.Equal(t, uint32(4104), a.CodeSize())
	assert.Equal(t, uint32(4100), a.LabelLocation(&l))

	// Opposite condition skipping the jump, then the jump itself.
	assert.Equal(t, EncodeB(8, 11, 10, 0x0, 0x63), wordAt(a, 0)) // beq a0, a1, +8
	assert.Equal(t, EncodeJ(4096, 0, 0x6f), wordAt(a, 4))        // jal zero, +4096
	assert.Equal(t, uint32(nopWord), wordAt(a, 8))
	assert.Equal(t, EncodeI(1, 10, 0x0, 10, 0x13), wordAt(a, 4100))
}

func TestFinalize_PromotesCondToLong(t *testing.T) {
	a := NewAssembler()
	var l Label

	a.BltTo(A2, A3, &l)
	emitNops(a, 1<<19) // past the 21-bit range
	a.Bind(&l)
	a.Finalize()

	require.Equal(t, BranchLongCond, a.branches[0].Type())
	target := a.LabelLocation(&l)
	require.Equal(t, a.CodeSize(), target)

	// bge a2, a3, +12 skipping the AUIPC pair.
	assert.Equal(t, EncodeB(12, 13, 12, 0x5, 0x63), wordAt(a, 0))
	imm20, short := SplitOffset(int32(target - 4))
	assert.Equal(t, EncodeU(imm20, uint32(TMP), 0x17), wordAt(a, 4))               // auipc t6
	assert.Equal(t, EncodeI(short, uint32(TMP), 0x0, uint32(Zero), 0x67), wordAt(a, 8)) // jalr zero, t6
}

func TestFinalize_PromotesCallToLong(t *testing.T) {
	a := NewAssembler()
	var l Label

	a.JalTo(&l)
	emitNops(a, 1<<19)
	a.Bind(&l)
	a.Finalize()

	require.Equal(t, BranchLongCall, a.branches[0].Type())
	target := a.LabelLocation(&l)
	imm20, short := SplitOffset(int32(target))
	assert.Equal(t, EncodeU(imm20, uint32(RA), 0x17), wordAt(a, 0))             // auipc ra
	assert.Equal(t, EncodeI(short, uint32(RA), 0x0, uint32(RA), 0x67), wordAt(a, 4)) // jalr ra, ra
}

func TestFinalize_CascadingPromotion(t *testing.T) {
	// The first branch reaches its target only as long as the second branch
	// stays short; promoting the second pushes the shared target out of the
	// first one's range, forcing a second promotion round.
	a := NewAssembler()
	var l1, l2 Label

	a.BeqTo(A0, A1, &l1) // at 0, reaching 4092 exactly
	a.JTo(&l2)           // at 4, promoted to the long form
	emitNops(a, 1021)
	a.Bind(&l1) // at 4092
	emitNops(a, 261122)
	a.Bind(&l2) // at 1048580, one instruction past the 21-bit range from 4
	a.Finalize()

	require.Equal(t, BranchCond21, a.branches[0].Type())
	require.Equal(t, BranchLongUncond, a.branches[1].Type())
	assert.Equal(t, uint32(4100), a.LabelLocation(&l1))
	assert.Equal(t, uint32(1048588), a.LabelLocation(&l2))
	assert.Equal(t, uint32(1048588), a.CodeSize())

	// First branch, medium form.
	assert.Equal(t, EncodeB(8, 11, 10, 0x1, 0x63), wordAt(a, 0)) // bne a0, a1, +8
	assert.Equal(t, EncodeJ(4096, 0, 0x6f), wordAt(a, 4))
	// Second branch, long form at its relocated position.
	assert.Equal(t, uint32(0x17), DecodeOpcode(wordAt(a, 8)))  // auipc
	assert.Equal(t, uint32(0x67), DecodeOpcode(wordAt(a, 12))) // jalr
}

func TestFinalize_RelaxationIsStable(t *testing.T) {
	// A mix of short, medium and long branches in one function; every offset
	// must fit its final encoding.
	a := NewAssembler()
	var near, mid, far Label

	a.BeqzTo(A0, &near)
	a.BnezTo(A1, &mid)
	a.JTo(&far)
	emitNops(a, 10)
	a.Bind(&near)
	emitNops(a, 2000)
	a.Bind(&mid)
	emitNops(a, 300000)
	a.Bind(&far)
	a.Finalize()

	for i := range a.branches {
		branch := &a.branches[i]
		needed := offsetBitsNeeded(branch.OffsetLocation(), branch.Target())
		assert.LessOrEqual(t, needed, branch.OffsetBits(), "branch %d", i)
		// A second promotion pass over the settled layout is a no-op.
		assert.Equal(t, uint32(0), branch.PromoteIfNeeded(), "branch %d", i)
	}
}

func TestFinalize_CollapsedBranches(t *testing.T) {
	t.Run("never taken emits nothing", func(t *testing.T) {
		a := NewAssembler()
		var l Label
		a.BneTo(A0, A0, &l)
		require.Equal(t, uint32(0), a.CodeSize())
		a.Bind(&l)
		a.Finalize()
		assert.Empty(t, a.branches)
	})

	t.Run("always taken becomes a jump", func(t *testing.T) {
		a := NewAssembler()
		var l Label
		a.BgeuTo(A0, A0, &l)
		a.Bind(&l)
		a.Finalize()
		require.Len(t, a.branches, 1)
		assert.Equal(t, EncodeJ(4, 0, 0x6f), wordAt(a, 0)) // jal zero, +4
	})
}

func TestFinalize_MultipleBranchesToOneLabel(t *testing.T) {
	a := NewAssembler()
	var l Label

	a.BeqzTo(A0, &l) // at 0
	a.Nop()
	a.BnezTo(A1, &l) // at 8
	a.JTo(&l)        // at 12
	a.Bind(&l)       // at 16
	a.Nop()
	a.Finalize()

	// The whole forward-reference chain resolves to the bind point.
	assert.Equal(t, EncodeB(16, 0, 10, 0x0, 0x63), wordAt(a, 0))
	assert.Equal(t, EncodeB(8, 0, 11, 0x1, 0x63), wordAt(a, 8))
	assert.Equal(t, EncodeJ(4, 0, 0x6f), wordAt(a, 12))
}

func TestFinalize_BareBranchInRange(t *testing.T) {
	a := NewAssembler()
	var l Label

	a.BareBcondTo(CondEQ, A0, A1, &l)
	a.Nop()
	a.Bind(&l)
	a.Finalize()

	require.Equal(t, uint32(8), a.CodeSize())
	assert.Equal(t, EncodeB(8, 11, 10, 0x0, 0x63), wordAt(a, 0))
}

func TestFinalize_BareBranchOutOfRangePanics(t *testing.T) {
	a := NewAssembler()
	var l Label

	a.BareBcondTo(CondEQ, A0, A1, &l)
	emitNops(a, 2000)
	a.Bind(&l)
	require.Panics(t, func() { a.Finalize() })
}

func TestFinalize_UnresolvedBranchPanics(t *testing.T) {
	a := NewAssembler()
	var l Label

	a.BeqzTo(A0, &l)
	require.Panics(t, func() { a.Finalize() })
}

func TestBind_TwicePanics(t *testing.T) {
	a := NewAssembler()
	var l Label

	a.Bind(&l)
	require.Panics(t, func() { a.Bind(&l) })
}

func TestFinalize_TwicePanics(t *testing.T) {
	a := NewAssembler()
	a.Nop()
	a.Finalize()
	require.Panics(t, func() { a.Finalize() })
}

func TestCodeBytes_BeforeFinalizePanics(t *testing.T) {
	a := NewAssembler()
	a.Nop()
	require.Panics(t, func() { a.CodeBytes() })
}

func TestLoadLabelAddress(t *testing.T) {
	a := NewAssembler()
	var l Label

	a.LoadLabelAddress(A0, &l) // 8 bytes at 0
	a.Nop()
	a.Bind(&l) // at 12
	a.Addi(A1, A1, 1)
	a.Finalize()

	assert.Equal(t, EncodeU(0, 10, 0x17), wordAt(a, 0))           // auipc a0, 0
	assert.Equal(t, EncodeI(12, 10, 0x0, 10, 0x13), wordAt(a, 4)) // addi a0, a0, 12
}

func TestFinalize_NarrowLiteralPool(t *testing.T) {
	a := NewAssembler()

	lit := a.NewLiteral32(0xdeadbeef)
	a.LoadLiteralW(A0, lit) // 8 bytes at 0
	a.Nop()
	a.Finalize()

	require.Equal(t, uint32(16), a.CodeSize())
	poolStart := a.LabelLocation(lit.Label())
	require.Equal(t, uint32(12), poolStart)

	assert.Equal(t, EncodeU(0, 10, 0x17), wordAt(a, 0))           // auipc a0, 0
	assert.Equal(t, EncodeI(12, 10, 0x2, 10, 0x03), wordAt(a, 4)) // lw a0, 12(a0)
	assert.Equal(t, uint32(0xdeadbeef), wordAt(a, 12))
}

func TestFinalize_WideLiteralAligned(t *testing.T) {
	a := NewAssembler()

	lit := a.NewLiteral64(0x0123456789abcdef)
	a.LoadLiteralD(A0, lit) // 8 bytes at 0, pool lands aligned at 8
	a.Finalize()

	require.Equal(t, uint32(16), a.CodeSize())
	require.Equal(t, uint32(8), a.LabelLocation(lit.Label()))
	assert.Equal(t, EncodeI(8, 10, 0x3, 10, 0x03), wordAt(a, 4)) // ld a0, 8(a0)
	assert.Equal(t, uint32(0x89abcdef), wordAt(a, 8))
	assert.Equal(t, uint32(0x01234567), wordAt(a, 12))
}

func TestFinalize_WideLiteralAlignmentFixup(t *testing.T) {
	a := NewAssembler()

	lit := a.NewLiteral64(0x0123456789abcdef)
	a.LoadLiteralD(A0, lit) // 8 bytes at 0
	a.Nop()                 // pool would land misaligned at 12
	a.Finalize()

	// The pool moves up by 4; the gap holds an illegal instruction word. The
	// load's target advances with the pool while the pool label's stored
	// position, being negated, moves by the opposite amount.
	require.Equal(t, uint32(24), a.CodeSize())
	require.Equal(t, uint32(16), a.LabelLocation(lit.Label()))
	assert.Equal(t, int32(-16), lit.Label().position)
	assert.Equal(t, uint32(16), a.branches[0].Target())

	assert.Equal(t, EncodeI(16, 10, 0x3, 10, 0x03), wordAt(a, 4)) // ld a0, 16(a0)
	assert.Equal(t, uint32(nopWord), wordAt(a, 8))
	assert.Equal(t, uint32(0), wordAt(a, 12)) // illegal instruction filler
	assert.Equal(t, uint32(0x89abcdef), wordAt(a, 16))
	assert.Equal(t, uint32(0x01234567), wordAt(a, 20))
}

func TestFinalize_FPLiteralLoads(t *testing.T) {
	a := NewAssembler()

	litF := a.NewLiteral32(0x3f800000) // 1.0f
	litD := a.NewLiteral64(0x3ff0000000000000)
	a.FLoadLiteralW(FA0, litF) // 8 bytes at 0
	a.FLoadLiteralD(FA1, litD) // 8 bytes at 8
	a.Finalize()

	// Narrow pool at 16; the wide pool would land misaligned at 20 and moves
	// to 24 over an illegal instruction filler.
	require.Equal(t, uint32(32), a.CodeSize())
	require.Equal(t, uint32(16), a.LabelLocation(litF.Label()))
	require.Equal(t, uint32(24), a.LabelLocation(litD.Label()))

	// FP literal loads go through the scratch register.
	assert.Equal(t, EncodeU(0, uint32(TMP), 0x17), wordAt(a, 0))
	assert.Equal(t, EncodeI(16, uint32(TMP), 0x2, uint32(FA0), 0x07), wordAt(a, 4)) // flw fa0, 16(t6)
	assert.Equal(t, EncodeU(0, uint32(TMP), 0x17), wordAt(a, 8))
	assert.Equal(t, EncodeI(16, uint32(TMP), 0x3, uint32(FA1), 0x07), wordAt(a, 12)) // fld fa1, 16(t6)
	assert.Equal(t, uint32(0x3f800000), wordAt(a, 16))
	assert.Equal(t, uint32(0), wordAt(a, 20))
	assert.Equal(t, uint32(0x00000000), wordAt(a, 24))
	assert.Equal(t, uint32(0x3ff00000), wordAt(a, 28))
}

func TestLoadLiteral_SizeMismatchPanics(t *testing.T) {
	a := NewAssembler()
	lit := a.NewLiteral32(1)
	require.Panics(t, func() { a.LoadLiteralD(A0, lit) })

	wide := a.NewLiteral64(1)
	require.Panics(t, func() { a.LoadLiteralW(A0, wide) })
}

func TestFinalize_JumpTable(t *testing.T) {
	a := NewAssembler()
	var c1, c2 Label

	table := a.CreateJumpTable([]*Label{&c1, &c2})
	a.LoadLabelAddress(A0, table.Label()) // 8 bytes at 0
	a.Nop()
	a.Bind(&c1) // at 12
	a.Nop()
	a.Bind(&c2) // at 16
	a.Nop()
	a.Finalize()

	start := a.LabelLocation(table.Label())
	require.Equal(t, uint32(20), start)
	require.Equal(t, uint32(28), a.CodeSize())

	// Entries are offsets relative to the table start.
	assert.Equal(t, uint32(12)-start, wordAt(a, 20))
	assert.Equal(t, uint32(16)-start, wordAt(a, 24))

	// The table address materializes through AUIPC+ADDI.
	assert.Equal(t, EncodeU(0, 10, 0x17), wordAt(a, 0))
	assert.Equal(t, EncodeI(20, 10, 0x0, 10, 0x13), wordAt(a, 4))
}

func TestAdjustedPosition(t *testing.T) {
	a := NewAssembler()
	var l Label

	a.BneTo(A0, A1, &l) // grows by 4 during Finalize
	emitNops(a, 1023)
	a.Bind(&l)
	a.Finalize()
	require.Equal(t, BranchCond21, a.branches[0].Type())

	// Ascending queries.
	assert.Equal(t, uint32(0), a.AdjustedPosition(0))
	assert.Equal(t, uint32(8), a.AdjustedPosition(4))
	assert.Equal(t, uint32(4100), a.AdjustedPosition(4096))

	// A regression resets the memo and still answers correctly.
	assert.Equal(t, uint32(8), a.AdjustedPosition(4))
	assert.Equal(t, uint32(0), a.AdjustedPosition(0))
}

func TestFinalize_PatchesDelayedCFI(t *testing.T) {
	a := NewAssembler()
	var l Label

	a.BneTo(A0, A1, &l)
	a.CFI().AdvancePC(a.CodeSize())
	a.CFI().DefCFAOffset(16)
	emitNops(a, 1023)
	a.Bind(&l)

	require.Equal(t, 1, a.CFI().NumberOfDelayedAdvancePCs())
	a.Finalize()

	// The branch grew by 4, so the advance covers 8 bytes in the final code.
	assert.Equal(t, []byte{0x48, 0x0e, 0x10}, a.CFI().Bytes())
	assert.Equal(t, 0, a.CFI().NumberOfDelayedAdvancePCs())
}
