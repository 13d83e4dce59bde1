package mc

import (
	"fmt"

	"github.com/rvasm/rvasm/pkg/utils"
)

// Splits a 32-bit PC-relative offset into the AUIPC upper part and the
// 12-bit remainder consumed by the following JALR/load/store/ADDI. The
// AUIPC immediate is rounded to the nearest 4 KiB page so the remainder
// always lands in [-0x800, 0x800). Offsets at or above 0x7ffff800 would
// overflow the rounding and are rejected.
func SplitOffset(offset int32) (imm20 uint32, short int32) {
	if offset >= 0x7ffff800 {
		panic(fmt.Sprintf("PC-relative offset out of range: %d", offset))
	}
	near := (offset + 0x800) &^ 0xfff
	short = offset - near
	imm20 = uint32(near) >> 12

	if short < -0x800 || short >= 0x800 {
		panic(fmt.Sprintf("offset split remainder out of range: %d", short))
	}
	return imm20, short
}

func toInt12(value uint32) int32 {
	return utils.SignExtend(12, value)
}
