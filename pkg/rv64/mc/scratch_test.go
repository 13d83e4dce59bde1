package mc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScratchRegisterScope_AllocationOrder(t *testing.T) {
	a := NewAssembler()
	srs := NewScratchRegisterScope(a)
	defer srs.Release()

	require.Equal(t, 2, srs.AvailableXRegisters())
	assert.Equal(t, TMP, srs.AllocateXRegister())
	assert.Equal(t, TMP2, srs.AllocateXRegister())
	require.Panics(t, func() { srs.AllocateXRegister() })
}

func TestScratchRegisterScope_FreeAndReallocate(t *testing.T) {
	a := NewAssembler()
	srs := NewScratchRegisterScope(a)
	defer srs.Release()

	reg := srs.AllocateXRegister()
	srs.FreeXRegister(reg)
	assert.Equal(t, reg, srs.AllocateXRegister())

	// Freeing a register that is still in the pool is a bug.
	require.Panics(t, func() { srs.FreeXRegister(TMP2) })
}

func TestScratchRegisterScope_ReleaseRestoresPool(t *testing.T) {
	a := NewAssembler()

	srs := NewScratchRegisterScope(a)
	srs.AllocateXRegister()
	srs.ExcludeXRegister(TMP2)
	srs.IncludeXRegister(A0)
	srs.Release()

	after := NewScratchRegisterScope(a)
	defer after.Release()
	assert.Equal(t, 2, after.AvailableXRegisters())
	assert.Equal(t, TMP, after.AllocateXRegister())
}

func TestScratchRegisterScope_IncludeWidensPool(t *testing.T) {
	a := NewAssembler()
	srs := NewScratchRegisterScope(a)
	defer srs.Release()

	srs.IncludeXRegister(S2)
	assert.Equal(t, 3, srs.AvailableXRegisters())
	// Allocation still prefers the highest register number.
	assert.Equal(t, TMP, srs.AllocateXRegister())
	assert.Equal(t, TMP2, srs.AllocateXRegister())
	assert.Equal(t, S2, srs.AllocateXRegister())
}

func TestScratchRegisterScope_FRegisters(t *testing.T) {
	a := NewAssembler()
	srs := NewScratchRegisterScope(a)
	defer srs.Release()

	require.Equal(t, 1, srs.AvailableFRegisters())
	assert.Equal(t, FTMP, srs.AllocateFRegister())
	require.Panics(t, func() { srs.AllocateFRegister() })

	srs.IncludeFRegister(FT0)
	assert.Equal(t, FT0, srs.AllocateFRegister())
}

func TestNestedScopes(t *testing.T) {
	a := NewAssembler()

	outer := NewScratchRegisterScope(a)
	reg := outer.AllocateXRegister()

	inner := NewScratchRegisterScope(a)
	assert.Equal(t, 1, inner.AvailableXRegisters())
	assert.NotEqual(t, reg, inner.AllocateXRegister())
	inner.Release()

	// The inner allocation is rolled back, the outer one stays.
	assert.Equal(t, 1, outer.AvailableXRegisters())
	outer.Release()
	assert.Equal(t, 2, NewScratchRegisterScope(a).AvailableXRegisters())
}
