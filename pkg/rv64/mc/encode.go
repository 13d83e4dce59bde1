package mc

import (
	"fmt"

	"github.com/rvasm/rvasm/pkg/utils"
)

// Encoding of the six base RISC-V instruction formats plus the shift-immediate
// variant of the I format. Each function packs already validated field values
// into a 32-bit instruction word; out of range fields are caller bugs and
// panic.

func checkField(name string, bits int, value uint32) {
	if !utils.IsUint(bits, value) {
		panic(fmt.Sprintf("instruction field %s does not fit in %d bits: %#x", name, bits, value))
	}
}

func checkOffset(name string, bits int, offset int32) {
	if !utils.IsInt(bits, offset) {
		panic(fmt.Sprintf("branch offset %s does not fit in %d bits: %d", name, bits, offset))
	}
	if offset&1 != 0 {
		panic(fmt.Sprintf("branch offset %s is not even: %d", name, offset))
	}
}

// Encodes an R-type instruction (register/register arithmetic)
func EncodeR(funct7 uint32, rs2 uint32, rs1 uint32, funct3 uint32, rd uint32, opcode uint32) uint32 {
	checkField("funct7", 7, funct7)
	checkField("rs2", 5, rs2)
	checkField("rs1", 5, rs1)
	checkField("funct3", 3, funct3)
	checkField("rd", 5, rd)
	checkField("opcode", 7, opcode)

	var word uint32
	view := utils.CreateBitView(&word)
	view.Write(opcode, 0, 7)
	view.Write(rd, 7, 5)
	view.Write(funct3, 12, 3)
	view.Write(rs1, 15, 5)
	view.Write(rs2, 20, 5)
	view.Write(funct7, 25, 7)
	return word
}

// Encodes an R4-type instruction (fused multiply-add)
func EncodeR4(rs3 uint32, funct2 uint32, rs2 uint32, rs1 uint32, funct3 uint32, rd uint32, opcode uint32) uint32 {
	checkField("rs3", 5, rs3)
	checkField("funct2", 2, funct2)
	checkField("rs2", 5, rs2)
	checkField("rs1", 5, rs1)
	checkField("funct3", 3, funct3)
	checkField("rd", 5, rd)
	checkField("opcode", 7, opcode)

	var word uint32
	view := utils.CreateBitView(&word)
	view.Write(opcode, 0, 7)
	view.Write(rd, 7, 5)
	view.Write(funct3, 12, 3)
	view.Write(rs1, 15, 5)
	view.Write(rs2, 20, 5)
	view.Write(funct2, 25, 2)
	view.Write(rs3, 27, 5)
	return word
}

// Encodes an I-type instruction (immediate arithmetic, loads, JALR)
func EncodeI(imm12 int32, rs1 uint32, funct3 uint32, rd uint32, opcode uint32) uint32 {
	if !utils.IsInt(12, imm12) {
		panic(fmt.Sprintf("I-type immediate does not fit in 12 bits: %d", imm12))
	}
	checkField("rs1", 5, rs1)
	checkField("funct3", 3, funct3)
	checkField("rd", 5, rd)
	checkField("opcode", 7, opcode)

	var word uint32
	view := utils.CreateBitView(&word)
	view.Write(opcode, 0, 7)
	view.Write(rd, 7, 5)
	view.Write(funct3, 12, 3)
	view.Write(rs1, 15, 5)
	view.Write(uint32(imm12), 20, 12)
	return word
}

// Encodes the shift-immediate variant of the I format (funct6 + 6-bit shamt)
func EncodeI6(funct6 uint32, imm6 uint32, rs1 uint32, funct3 uint32, rd uint32, opcode uint32) uint32 {
	checkField("funct6", 6, funct6)
	checkField("imm6", 6, imm6)
	checkField("rs1", 5, rs1)
	checkField("funct3", 3, funct3)
	checkField("rd", 5, rd)
	checkField("opcode", 7, opcode)

	var word uint32
	view := utils.CreateBitView(&word)
	view.Write(opcode, 0, 7)
	view.Write(rd, 7, 5)
	view.Write(funct3, 12, 3)
	view.Write(rs1, 15, 5)
	view.Write(imm6, 20, 6)
	view.Write(funct6, 26, 6)
	return word
}

// Encodes an S-type instruction (stores)
func EncodeS(imm12 int32, rs2 uint32, rs1 uint32, funct3 uint32, opcode uint32) uint32 {
	if !utils.IsInt(12, imm12) {
		panic(fmt.Sprintf("S-type immediate does not fit in 12 bits: %d", imm12))
	}
	checkField("rs2", 5, rs2)
	checkField("rs1", 5, rs1)
	checkField("funct3", 3, funct3)
	checkField("opcode", 7, opcode)

	imm := uint32(imm12)
	var word uint32
	view := utils.CreateBitView(&word)
	view.Write(opcode, 0, 7)
	view.Write(imm, 7, 5) // imm[4:0]
	view.Write(funct3, 12, 3)
	view.Write(rs1, 15, 5)
	view.Write(rs2, 20, 5)
	view.Write(imm>>5, 25, 7) // imm[11:5]
	return word
}

// Encodes a B-type instruction (conditional branches). The offset is a byte
// distance, signed, even, fitting in 13 bits.
func EncodeB(offset int32, rs2 uint32, rs1 uint32, funct3 uint32, opcode uint32) uint32 {
	checkOffset("B", 13, offset)
	checkField("rs2", 5, rs2)
	checkField("rs1", 5, rs1)
	checkField("funct3", 3, funct3)
	checkField("opcode", 7, opcode)

	imm := uint32(offset)
	var word uint32
	view := utils.CreateBitView(&word)
	view.Write(opcode, 0, 7)
	view.Write(imm>>11, 7, 1)  // imm[11]
	view.Write(imm>>1, 8, 4)   // imm[4:1]
	view.Write(funct3, 12, 3)
	view.Write(rs1, 15, 5)
	view.Write(rs2, 20, 5)
	view.Write(imm>>5, 25, 6)  // imm[10:5]
	view.Write(imm>>12, 31, 1) // imm[12]
	return word
}

// Encodes a U-type instruction (LUI, AUIPC)
func EncodeU(imm20 uint32, rd uint32, opcode uint32) uint32 {
	checkField("imm20", 20, imm20)
	checkField("rd", 5, rd)
	checkField("opcode", 7, opcode)

	var word uint32
	view := utils.CreateBitView(&word)
	view.Write(opcode, 0, 7)
	view.Write(rd, 7, 5)
	view.Write(imm20, 12, 20)
	return word
}

// Encodes a J-type instruction (JAL). The offset is a byte distance, signed,
// even, fitting in 21 bits.
func EncodeJ(offset int32, rd uint32, opcode uint32) uint32 {
	checkOffset("J", 21, offset)
	checkField("rd", 5, rd)
	checkField("opcode", 7, opcode)

	imm := uint32(offset)
	var word uint32
	view := utils.CreateBitView(&word)
	view.Write(opcode, 0, 7)
	view.Write(rd, 7, 5)
	view.Write(imm>>12, 12, 8)  // imm[19:12]
	view.Write(imm>>11, 20, 1)  // imm[11]
	view.Write(imm>>1, 21, 10)  // imm[10:1]
	view.Write(imm>>20, 31, 1)  // imm[20]
	return word
}

// Field extraction helpers, the inverse of the encoders above. Used by tests
// and by the hex dump annotator.

func DecodeOpcode(word uint32) uint32 {
	return utils.CreateBitView(&word).Read(0, 7)
}

func DecodeRd(word uint32) uint32 {
	return utils.CreateBitView(&word).Read(7, 5)
}

func DecodeFunct3(word uint32) uint32 {
	return utils.CreateBitView(&word).Read(12, 3)
}

func DecodeRs1(word uint32) uint32 {
	return utils.CreateBitView(&word).Read(15, 5)
}

func DecodeRs2(word uint32) uint32 {
	return utils.CreateBitView(&word).Read(20, 5)
}

func DecodeFunct7(word uint32) uint32 {
	return utils.CreateBitView(&word).Read(25, 7)
}

// Returns the sign-extended immediate of an I-type instruction
func DecodeImmI(word uint32) int32 {
	return utils.SignExtend(12, utils.CreateBitView(&word).Read(20, 12))
}

// Returns the sign-extended immediate of an S-type instruction
func DecodeImmS(word uint32) int32 {
	view := utils.CreateBitView(&word)
	imm := view.Read(7, 5) | view.Read(25, 7)<<5
	return utils.SignExtend(12, imm)
}

// Returns the sign-extended byte offset of a B-type instruction
func DecodeOffsetB(word uint32) int32 {
	view := utils.CreateBitView(&word)
	imm := view.Read(8, 4)<<1 | view.Read(25, 6)<<5 | view.Read(7, 1)<<11 | view.Read(31, 1)<<12
	return utils.SignExtend(13, imm)
}

// Returns the raw 20-bit immediate of a U-type instruction
func DecodeImmU(word uint32) uint32 {
	return utils.CreateBitView(&word).Read(12, 20)
}

// Returns the sign-extended byte offset of a J-type instruction
func DecodeOffsetJ(word uint32) int32 {
	view := utils.CreateBitView(&word)
	imm := view.Read(21, 10)<<1 | view.Read(20, 1)<<11 | view.Read(12, 8)<<12 | view.Read(31, 1)<<20
	return utils.SignExtend(21, imm)
}
