package mc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_KnownWords(t *testing.T) {
	// Reference encodings cross-checked against clang's assembler.
	tests := []struct {
		name string
		word uint32
		want uint32
	}{
		{"nop (addi x0, x0, 0)", EncodeI(0, 0, 0x0, 0, 0x13), 0x00000013},
		{"ret (jalr x0, x1, 0)", EncodeI(0, 1, 0x0, 0, 0x67), 0x00008067},
		{"ecall", EncodeI(0, 0, 0x0, 0, 0x73), 0x00000073},
		{"ebreak", EncodeI(1, 0, 0x0, 0, 0x73), 0x00100073},
		{"lui a0, 1", EncodeU(1, 10, 0x37), 0x00001537},
		{"jal x0, 0", EncodeJ(0, 0, 0x6f), 0x0000006f},
		{"add a0, a1, a2", EncodeR(0, 12, 11, 0x0, 10, 0x33), 0x00c58533},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, test.word)
		})
	}
}

func TestEncodeI_RoundTrip(t *testing.T) {
	for _, imm := range []int32{-2048, -1, 0, 1, 0x7ff} {
		word := EncodeI(imm, 3, 0x2, 7, 0x03)
		assert.Equal(t, uint32(0x03), DecodeOpcode(word))
		assert.Equal(t, uint32(7), DecodeRd(word))
		assert.Equal(t, uint32(0x2), DecodeFunct3(word))
		assert.Equal(t, uint32(3), DecodeRs1(word))
		assert.Equal(t, imm, DecodeImmI(word))
	}
}

func TestEncodeS_RoundTrip(t *testing.T) {
	for _, imm := range []int32{-2048, -1, 0, 1, 0x7ff} {
		word := EncodeS(imm, 9, 4, 0x3, 0x23)
		assert.Equal(t, uint32(0x23), DecodeOpcode(word))
		assert.Equal(t, uint32(0x3), DecodeFunct3(word))
		assert.Equal(t, uint32(4), DecodeRs1(word))
		assert.Equal(t, uint32(9), DecodeRs2(word))
		assert.Equal(t, imm, DecodeImmS(word))
	}
}

func TestEncodeB_RoundTrip(t *testing.T) {
	// Whole branch offset range including both boundaries and the bit
	// scramble midpoints.
	for _, offset := range []int32{-4096, -2050, -2, 0, 2, 256, 2048, 4094} {
		word := EncodeB(offset, 11, 10, 0x1, 0x63)
		assert.Equal(t, uint32(0x63), DecodeOpcode(word))
		assert.Equal(t, uint32(10), DecodeRs1(word))
		assert.Equal(t, uint32(11), DecodeRs2(word))
		assert.Equal(t, offset, DecodeOffsetB(word), "offset %d", offset)
	}
}

func TestEncodeJ_RoundTrip(t *testing.T) {
	for _, offset := range []int32{-1048576, -4096, -2, 0, 2, 2048, 524288, 1048574} {
		word := EncodeJ(offset, 1, 0x6f)
		assert.Equal(t, uint32(0x6f), DecodeOpcode(word))
		assert.Equal(t, uint32(1), DecodeRd(word))
		assert.Equal(t, offset, DecodeOffsetJ(word), "offset %d", offset)
	}
}

func TestEncodeU_RoundTrip(t *testing.T) {
	for _, imm := range []uint32{0, 1, 0x80000, 0xfffff} {
		word := EncodeU(imm, 5, 0x17)
		assert.Equal(t, uint32(0x17), DecodeOpcode(word))
		assert.Equal(t, uint32(5), DecodeRd(word))
		assert.Equal(t, imm, DecodeImmU(word))
	}
}

func TestEncodeR4_Fields(t *testing.T) {
	word := EncodeR4(31, 0x1, 30, 29, 0x7, 28, 0x43)
	assert.Equal(t, uint32(0x43), DecodeOpcode(word))
	assert.Equal(t, uint32(28), DecodeRd(word))
	assert.Equal(t, uint32(0x7), DecodeFunct3(word))
	assert.Equal(t, uint32(29), DecodeRs1(word))
	assert.Equal(t, uint32(30), DecodeRs2(word))
	assert.Equal(t, uint32(0x7d), DecodeFunct7(word)) // rs3=31, funct2=1
}

func TestEncode_FieldRangePanics(t *testing.T) {
	require.Panics(t, func() { EncodeI(2048, 0, 0, 0, 0x13) })
	require.Panics(t, func() { EncodeI(-2049, 0, 0, 0, 0x13) })
	require.Panics(t, func() { EncodeB(4096, 0, 0, 0, 0x63) })
	require.Panics(t, func() { EncodeB(-4098, 0, 0, 0, 0x63) })
	require.Panics(t, func() { EncodeB(3, 0, 0, 0, 0x63) }) // odd
	require.Panics(t, func() { EncodeJ(1048576, 0, 0x6f) })
	require.Panics(t, func() { EncodeJ(1, 0, 0x6f) }) // odd
	require.Panics(t, func() { EncodeU(1<<20, 0, 0x37) })
	require.Panics(t, func() { EncodeR(0, 32, 0, 0, 0, 0x33) }) // register field
}
