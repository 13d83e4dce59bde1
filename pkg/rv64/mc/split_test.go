package mc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitOffset_Recomposes(t *testing.T) {
	offsets := []int32{
		0, 1, 2, 4, 0x7ff, 0x800, 0x801, 0xfff, 0x1000, 0x1001,
		-1, -2, -0x7ff, -0x800, -0x801, -0x1000, -0x1001,
		0x7ffff7ff, -0x7fffffff - 1,
	}
	// A coarse sweep over the rest of the range.
	for offset := int32(-0x7ff00000); offset < 0x7ff00000; offset += 0x65437 {
		offsets = append(offsets, offset)
	}
	for _, offset := range offsets {
		imm20, short := SplitOffset(offset)
		assert.GreaterOrEqual(t, short, int32(-0x800), "offset %d", offset)
		assert.Less(t, short, int32(0x800), "offset %d", offset)
		assert.Equal(t, offset, int32(imm20<<12)+short, "offset %d", offset)
	}
}

func TestSplitOffset_RejectsUpperBoundary(t *testing.T) {
	// 0x7ffff7ff is the last offset whose rounded page still fits.
	_, short := SplitOffset(0x7ffff7ff)
	assert.Equal(t, int32(0x7ff), short)

	require.Panics(t, func() { SplitOffset(0x7ffff800) })
	require.Panics(t, func() { SplitOffset(0x7fffffff) })
}
