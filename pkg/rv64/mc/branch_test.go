package mc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBranchCondition_Opposite(t *testing.T) {
	pairs := map[BranchCondition]BranchCondition{
		CondEQ:  CondNE,
		CondLT:  CondGE,
		CondLE:  CondGT,
		CondLTU: CondGEU,
		CondLEU: CondGTU,
	}
	for cond, opposite := range pairs {
		assert.Equal(t, opposite, cond.Opposite())
		assert.Equal(t, cond, opposite.Opposite())
	}
	require.Panics(t, func() { Uncond.Opposite() })
}

func TestBranch_InitialTypeBySizeClass(t *testing.T) {
	tests := []struct {
		name     string
		location uint32
		target   uint32
		want     BranchType
	}{
		{"unresolved starts short", 0, unresolvedTarget, BranchCond},
		{"forward short limit", 0, 4094, BranchCond},
		{"backward short limit", 4096, 0, BranchCond},
		{"forward medium", 0, 4096, BranchCond21},
		{"backward medium", 4100, 0, BranchCond21},
		{"forward long", 0, 1 << 21, BranchLongCond},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			branch := newCondBranch(test.location, test.target, CondEQ, A0, A1, false)
			assert.Equal(t, test.want, branch.Type())
		})
	}
}

func TestBranch_InitialTypeUncondAndCall(t *testing.T) {
	near := newUncondBranch(0, 1048574, Zero, false)
	assert.Equal(t, BranchUncond, near.Type())

	far := newUncondBranch(0, 1<<21, Zero, false)
	assert.Equal(t, BranchLongUncond, far.Type())

	call := newUncondBranch(0, 4, RA, false)
	assert.Equal(t, BranchCall, call.Type())

	farCall := newUncondBranch(0, 1<<21, RA, false)
	assert.Equal(t, BranchLongCall, farCall.Type())
}

func TestBranch_BareOutOfRangePanics(t *testing.T) {
	require.Panics(t, func() { newCondBranch(0, 4096, CondEQ, A0, A1, true) })
	require.Panics(t, func() { newUncondBranch(0, 1<<21, Zero, true) })

	// In range, a bare branch keeps its fixed encoding.
	bare := newCondBranch(0, 4094, CondEQ, A0, A1, true)
	assert.Equal(t, BranchBareCond, bare.Type())
	assert.True(t, bare.IsBare())
}

func TestBranch_DegenerateConditionPanics(t *testing.T) {
	require.Panics(t, func() { newCondBranch(0, 0, CondNE, A0, A0, false) }) // never taken
	require.Panics(t, func() { newCondBranch(0, 0, CondEQ, A0, A0, false) }) // always taken
	require.Panics(t, func() { newCondBranch(0, 0, Uncond, A0, A1, false) })
}

func TestBranch_PromotionWidensInSteps(t *testing.T) {
	branch := newCondBranch(0, unresolvedTarget, CondNE, A0, A1, false)
	require.Equal(t, BranchCond, branch.Type())

	// Still reachable with the short form.
	branch.Resolve(4094)
	assert.Equal(t, uint32(0), branch.PromoteIfNeeded())
	assert.Equal(t, BranchCond, branch.Type())

	// One past the short range promotes to the medium form.
	branch.Resolve(4096)
	assert.Equal(t, uint32(4), branch.PromoteIfNeeded())
	assert.Equal(t, BranchCond21, branch.Type())
	assert.Equal(t, uint32(8), branch.Length())

	// Past the medium range promotes to the long form.
	branch.Resolve(1 << 21)
	assert.Equal(t, uint32(4), branch.PromoteIfNeeded())
	assert.Equal(t, BranchLongCond, branch.Type())
	assert.Equal(t, uint32(12), branch.Length())

	// Promotion is idempotent once settled.
	assert.Equal(t, uint32(0), branch.PromoteIfNeeded())
}

func TestBranch_BackwardPromotionAccountsForJumpPosition(t *testing.T) {
	// The medium form's jump sits 4 bytes into the sequence, so a backward
	// branch right at the 21-bit limit for the short position must still fit
	// after the recompute at the shifted position.
	branch := newCondBranch((1<<20)-4, unresolvedTarget, CondLT, A2, A3, false)
	branch.Resolve(0)
	assert.Equal(t, uint32(4), branch.PromoteIfNeeded())
	assert.Equal(t, BranchCond21, branch.Type())

	// At 1<<20 the distance fits 21 bits from the short position, but not
	// from the medium form's shifted jump, so the branch goes straight to
	// the long form.
	backward := newCondBranch(1<<20, unresolvedTarget, CondLT, A2, A3, false)
	backward.Resolve(0)
	assert.Equal(t, uint32(8), backward.PromoteIfNeeded())
	assert.Equal(t, BranchLongCond, backward.Type())
}

func TestBranch_Relocate(t *testing.T) {
	branch := newCondBranch(100, 200, CondEQ, A0, A1, false)

	// Expansion below both moves both.
	branch.Relocate(50, 4)
	assert.Equal(t, uint32(104), branch.Location())
	assert.Equal(t, uint32(204), branch.Target())

	// Expansion between them moves only the target.
	branch.Relocate(150, 4)
	assert.Equal(t, uint32(104), branch.Location())
	assert.Equal(t, uint32(208), branch.Target())

	// Expansion above both moves neither.
	branch.Relocate(300, 4)
	assert.Equal(t, uint32(104), branch.Location())
	assert.Equal(t, uint32(208), branch.Target())
}

func TestRelocateAll(t *testing.T) {
	branches := []Branch{
		newCondBranch(0, 400, CondEQ, A0, A1, false),
		newCondBranch(200, 400, CondNE, A0, A1, false),
	}
	relocateAll(branches, 100, 8)
	assert.Equal(t, uint32(0), branches[0].Location())
	assert.Equal(t, uint32(408), branches[0].Target())
	assert.Equal(t, uint32(208), branches[1].Location())
	assert.Equal(t, uint32(408), branches[1].Target())
}

func TestBranch_OffsetUsesJumpPosition(t *testing.T) {
	branch := newCondBranch(0, 4096, CondEQ, A0, A1, false)
	require.Equal(t, BranchCond21, branch.Type())
	assert.Equal(t, uint32(4), branch.OffsetLocation())
	assert.Equal(t, int32(4092), branch.Offset())
}

func TestBranch_UnresolvedOperationsPanic(t *testing.T) {
	branch := newCondBranch(0, unresolvedTarget, CondEQ, A0, A1, false)
	require.Panics(t, func() { branch.Offset() })
	require.Panics(t, func() { branch.PromoteIfNeeded() })
	require.Panics(t, func() { branch.Relocate(0, 4) })
}
