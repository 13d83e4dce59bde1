package mc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_EmitAndLoad(t *testing.T) {
	var b Buffer

	b.Emit32(0x11223344)
	b.Emit8(0x55)
	b.EmitBytes([]byte{0x66, 0x77})

	require.Equal(t, uint32(7), b.Size())
	assert.Equal(t, uint32(0x11223344), b.Load32(0))
	assert.Equal(t, uint8(0x44), b.Load8(0)) // little-endian
	assert.Equal(t, uint8(0x55), b.Load8(4))
}

func TestBuffer_Store(t *testing.T) {
	var b Buffer
	b.Emit32(0)
	b.Emit32(0)

	b.Store32(4, 0xcafebabe)
	b.Store8(0, 0xff)
	assert.Equal(t, uint32(0xcafebabe), b.Load32(4))
	assert.Equal(t, uint32(0x000000ff), b.Load32(0))
}

func TestBuffer_Resize(t *testing.T) {
	var b Buffer
	b.Emit32(0x12345678)

	b.Resize(8)
	require.Equal(t, uint32(8), b.Size())
	assert.Equal(t, uint32(0), b.Load32(4)) // growth zero-fills
	assert.Equal(t, uint32(0x12345678), b.Load32(0))

	b.Resize(4)
	assert.Equal(t, uint32(4), b.Size())
}

func TestBuffer_MoveOverlapping(t *testing.T) {
	var b Buffer
	for i := uint32(1); i <= 5; i++ {
		b.Emit32(i)
	}

	// Shift three words up by one word, as literal pool alignment does.
	b.Move(8, 4, 12)
	assert.Equal(t, uint32(1), b.Load32(0))
	assert.Equal(t, uint32(2), b.Load32(4))
	assert.Equal(t, uint32(2), b.Load32(8))
	assert.Equal(t, uint32(3), b.Load32(12))
	assert.Equal(t, uint32(4), b.Load32(16))
}

func TestBuffer_OutOfRangePanics(t *testing.T) {
	var b Buffer
	b.Emit32(0)

	require.Panics(t, func() { b.Load32(1) })
	require.Panics(t, func() { b.Store32(4, 0) })
	require.Panics(t, func() { b.Load8(4) })
	require.Panics(t, func() { b.Move(0, 4, 4) })
}

func TestBuffer_EnsureCapacityKeepsData(t *testing.T) {
	var b Buffer
	b.Emit32(0xdeadbeef)

	b.EnsureCapacity(1024)
	require.GreaterOrEqual(t, b.Capacity(), uint32(1024))
	assert.Equal(t, uint32(4), b.Size())
	assert.Equal(t, uint32(0xdeadbeef), b.Load32(0))
}
