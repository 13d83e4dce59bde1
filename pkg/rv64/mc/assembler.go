package mc

// Register width of the target in bits
const xlen = 64

// Tracks whether instruction words are appended at the end of the buffer or
// patched over previously reserved placeholders.
type cursor struct {
	patching bool
	pos      uint32
}

// Assembles RV64 machine code into an in-memory buffer. Instructions are
// emitted through one method per mnemonic; branches, label-address loads and
// literal loads record placeholders that Finalize resolves, promotes to
// longer encodings where needed, and patches in place.
//
// An Assembler is not safe for concurrent use.
type Assembler struct {
	buffer Buffer
	cursor cursor

	branches     []Branch
	literals     []*Literal
	longLiterals []*Literal
	jumpTables   []*JumpTable

	// Scratch registers the assembler may use for synthesized sequences,
	// as bitmasks over register numbers.
	availableScratchX uint32
	availableScratchF uint32

	// Memo for AdjustedPosition queries in increasing position order.
	lastBranchID           uint32
	lastOldPosition        uint32
	lastPositionAdjustment uint32

	cfi DebugFrameWriter

	finalized bool
}

func NewAssembler() *Assembler {
	return &Assembler{
		availableScratchX: 1<<TMP | 1<<TMP2,
		availableScratchF: 1 << FTMP,
	}
}

// Returns the debug-frame writer collecting CFI for the emitted code
func (a *Assembler) CFI() *DebugFrameWriter {
	return &a.cfi
}

// Returns the current size of the emitted code in bytes
func (a *Assembler) CodeSize() uint32 {
	return a.buffer.Size()
}

// Returns the finalized machine code. Only valid after Finalize.
func (a *Assembler) CodeBytes() []byte {
	if !a.finalized {
		panic("code requested before Finalize")
	}
	return a.buffer.Bytes()
}

// Emits one instruction word, either appending it or patching a placeholder
// depending on the cursor state.
func (a *Assembler) emit32(value uint32) {
	if a.cursor.patching {
		a.buffer.Store32(a.cursor.pos, value)
		a.cursor.pos += 4
	} else {
		a.buffer.Emit32(value)
	}
}

//
// RV64I
//

func (a *Assembler) Lui(rd XRegister, imm20 uint32) {
	a.emit32(EncodeU(imm20, uint32(rd), 0x37))
}

func (a *Assembler) Auipc(rd XRegister, imm20 uint32) {
	a.emit32(EncodeU(imm20, uint32(rd), 0x17))
}

func (a *Assembler) Jal(rd XRegister, offset int32) {
	a.emit32(EncodeJ(offset, uint32(rd), 0x6f))
}

func (a *Assembler) Jalr(rd XRegister, rs1 XRegister, offset int32) {
	a.emit32(EncodeI(offset, uint32(rs1), 0x0, uint32(rd), 0x67))
}

func (a *Assembler) Beq(rs1 XRegister, rs2 XRegister, offset int32) {
	a.emit32(EncodeB(offset, uint32(rs2), uint32(rs1), 0x0, 0x63))
}

func (a *Assembler) Bne(rs1 XRegister, rs2 XRegister, offset int32) {
	a.emit32(EncodeB(offset, uint32(rs2), uint32(rs1), 0x1, 0x63))
}

func (a *Assembler) Blt(rs1 XRegister, rs2 XRegister, offset int32) {
	a.emit32(EncodeB(offset, uint32(rs2), uint32(rs1), 0x4, 0x63))
}

func (a *Assembler) Bge(rs1 XRegister, rs2 XRegister, offset int32) {
	a.emit32(EncodeB(offset, uint32(rs2), uint32(rs1), 0x5, 0x63))
}

func (a *Assembler) Bltu(rs1 XRegister, rs2 XRegister, offset int32) {
	a.emit32(EncodeB(offset, uint32(rs2), uint32(rs1), 0x6, 0x63))
}

func (a *Assembler) Bgeu(rs1 XRegister, rs2 XRegister, offset int32) {
	a.emit32(EncodeB(offset, uint32(rs2), uint32(rs1), 0x7, 0x63))
}

func (a *Assembler) Lb(rd XRegister, rs1 XRegister, offset int32) {
	a.emit32(EncodeI(offset, uint32(rs1), 0x0, uint32(rd), 0x03))
}

func (a *Assembler) Lh(rd XRegister, rs1 XRegister, offset int32) {
	a.emit32(EncodeI(offset, uint32(rs1), 0x1, uint32(rd), 0x03))
}

func (a *Assembler) Lw(rd XRegister, rs1 XRegister, offset int32) {
	a.emit32(EncodeI(offset, uint32(rs1), 0x2, uint32(rd), 0x03))
}

func (a *Assembler) Ld(rd XRegister, rs1 XRegister, offset int32) {
	a.emit32(EncodeI(offset, uint32(rs1), 0x3, uint32(rd), 0x03))
}

func (a *Assembler) Lbu(rd XRegister, rs1 XRegister, offset int32) {
	a.emit32(EncodeI(offset, uint32(rs1), 0x4, uint32(rd), 0x03))
}

func (a *Assembler) Lhu(rd XRegister, rs1 XRegister, offset int32) {
	a.emit32(EncodeI(offset, uint32(rs1), 0x5, uint32(rd), 0x03))
}

func (a *Assembler) Lwu(rd XRegister, rs1 XRegister, offset int32) {
	a.emit32(EncodeI(offset, uint32(rs1), 0x6, uint32(rd), 0x03))
}

func (a *Assembler) Sb(rs2 XRegister, rs1 XRegister, offset int32) {
	a.emit32(EncodeS(offset, uint32(rs2), uint32(rs1), 0x0, 0x23))
}

func (a *Assembler) Sh(rs2 XRegister, rs1 XRegister, offset int32) {
	a.emit32(EncodeS(offset, uint32(rs2), uint32(rs1), 0x1, 0x23))
}

func (a *Assembler) Sw(rs2 XRegister, rs1 XRegister, offset int32) {
	a.emit32(EncodeS(offset, uint32(rs2), uint32(rs1), 0x2, 0x23))
}

func (a *Assembler) Sd(rs2 XRegister, rs1 XRegister, offset int32) {
	a.emit32(EncodeS(offset, uint32(rs2), uint32(rs1), 0x3, 0x23))
}

func (a *Assembler) Addi(rd XRegister, rs1 XRegister, imm12 int32) {
	a.emit32(EncodeI(imm12, uint32(rs1), 0x0, uint32(rd), 0x13))
}

func (a *Assembler) Slti(rd XRegister, rs1 XRegister, imm12 int32) {
	a.emit32(EncodeI(imm12, uint32(rs1), 0x2, uint32(rd), 0x13))
}

func (a *Assembler) Sltiu(rd XRegister, rs1 XRegister, imm12 int32) {
	a.emit32(EncodeI(imm12, uint32(rs1), 0x3, uint32(rd), 0x13))
}

func (a *Assembler) Xori(rd XRegister, rs1 XRegister, imm12 int32) {
	a.emit32(EncodeI(imm12, uint32(rs1), 0x4, uint32(rd), 0x13))
}

func (a *Assembler) Ori(rd XRegister, rs1 XRegister, imm12 int32) {
	a.emit32(EncodeI(imm12, uint32(rs1), 0x6, uint32(rd), 0x13))
}

func (a *Assembler) Andi(rd XRegister, rs1 XRegister, imm12 int32) {
	a.emit32(EncodeI(imm12, uint32(rs1), 0x7, uint32(rd), 0x13))
}

func (a *Assembler) Slli(rd XRegister, rs1 XRegister, shamt int32) {
	checkShamt(shamt, 64)
	a.emit32(EncodeI6(0x0, uint32(shamt), uint32(rs1), 0x1, uint32(rd), 0x13))
}

func (a *Assembler) Srli(rd XRegister, rs1 XRegister, shamt int32) {
	checkShamt(shamt, 64)
	a.emit32(EncodeI6(0x0, uint32(shamt), uint32(rs1), 0x5, uint32(rd), 0x13))
}

func (a *Assembler) Srai(rd XRegister, rs1 XRegister, shamt int32) {
	checkShamt(shamt, 64)
	a.emit32(EncodeI6(0x10, uint32(shamt), uint32(rs1), 0x5, uint32(rd), 0x13))
}

func (a *Assembler) Add(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x0, uint32(rs2), uint32(rs1), 0x0, uint32(rd), 0x33))
}

func (a *Assembler) Sub(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x20, uint32(rs2), uint32(rs1), 0x0, uint32(rd), 0x33))
}

func (a *Assembler) Slt(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x0, uint32(rs2), uint32(rs1), 0x2, uint32(rd), 0x33))
}

func (a *Assembler) Sltu(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x0, uint32(rs2), uint32(rs1), 0x3, uint32(rd), 0x33))
}

func (a *Assembler) Xor(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x0, uint32(rs2), uint32(rs1), 0x4, uint32(rd), 0x33))
}

func (a *Assembler) Or(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x0, uint32(rs2), uint32(rs1), 0x6, uint32(rd), 0x33))
}

func (a *Assembler) And(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x0, uint32(rs2), uint32(rs1), 0x7, uint32(rd), 0x33))
}

func (a *Assembler) Sll(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x0, uint32(rs2), uint32(rs1), 0x1, uint32(rd), 0x33))
}

func (a *Assembler) Srl(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x0, uint32(rs2), uint32(rs1), 0x5, uint32(rd), 0x33))
}

func (a *Assembler) Sra(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x20, uint32(rs2), uint32(rs1), 0x5, uint32(rd), 0x33))
}

func (a *Assembler) Addiw(rd XRegister, rs1 XRegister, imm12 int32) {
	a.emit32(EncodeI(imm12, uint32(rs1), 0x0, uint32(rd), 0x1b))
}

func (a *Assembler) Slliw(rd XRegister, rs1 XRegister, shamt int32) {
	checkShamt(shamt, 32)
	a.emit32(EncodeR(0x0, uint32(shamt), uint32(rs1), 0x1, uint32(rd), 0x1b))
}

func (a *Assembler) Srliw(rd XRegister, rs1 XRegister, shamt int32) {
	checkShamt(shamt, 32)
	a.emit32(EncodeR(0x0, uint32(shamt), uint32(rs1), 0x5, uint32(rd), 0x1b))
}

func (a *Assembler) Sraiw(rd XRegister, rs1 XRegister, shamt int32) {
	checkShamt(shamt, 32)
	a.emit32(EncodeR(0x20, uint32(shamt), uint32(rs1), 0x5, uint32(rd), 0x1b))
}

func (a *Assembler) Addw(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x0, uint32(rs2), uint32(rs1), 0x0, uint32(rd), 0x3b))
}

func (a *Assembler) Subw(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x20, uint32(rs2), uint32(rs1), 0x0, uint32(rd), 0x3b))
}

func (a *Assembler) Sllw(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x0, uint32(rs2), uint32(rs1), 0x1, uint32(rd), 0x3b))
}

func (a *Assembler) Srlw(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x0, uint32(rs2), uint32(rs1), 0x5, uint32(rd), 0x3b))
}

func (a *Assembler) Sraw(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x20, uint32(rs2), uint32(rs1), 0x5, uint32(rd), 0x3b))
}

func (a *Assembler) Ecall() {
	a.emit32(EncodeI(0x0, 0x0, 0x0, 0x0, 0x73))
}

func (a *Assembler) Ebreak() {
	a.emit32(EncodeI(0x1, 0x0, 0x0, 0x0, 0x73))
}

func (a *Assembler) Fence(pred uint32, succ uint32) {
	checkField("fence pred", 4, pred)
	checkField("fence succ", 4, succ)
	a.emit32(EncodeI(int32(pred<<4|succ), 0x0, 0x0, 0x0, 0x0f))
}

func (a *Assembler) FenceTso() {
	const predSucc = FenceWrite | FenceRead
	a.emit32(EncodeI(toInt12(0x8<<8|predSucc<<4|predSucc), 0x0, 0x0, 0x0, 0x0f))
}

//
// Zifencei
//

func (a *Assembler) FenceI() {
	a.emit32(EncodeI(0x0, 0x0, 0x1, 0x0, 0x0f))
}

//
// RV64M
//

func (a *Assembler) Mul(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x1, uint32(rs2), uint32(rs1), 0x0, uint32(rd), 0x33))
}

func (a *Assembler) Mulh(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x1, uint32(rs2), uint32(rs1), 0x1, uint32(rd), 0x33))
}

func (a *Assembler) Mulhsu(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x1, uint32(rs2), uint32(rs1), 0x2, uint32(rd), 0x33))
}

func (a *Assembler) Mulhu(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x1, uint32(rs2), uint32(rs1), 0x3, uint32(rd), 0x33))
}

func (a *Assembler) Div(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x1, uint32(rs2), uint32(rs1), 0x4, uint32(rd), 0x33))
}

func (a *Assembler) Divu(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x1, uint32(rs2), uint32(rs1), 0x5, uint32(rd), 0x33))
}

func (a *Assembler) Rem(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x1, uint32(rs2), uint32(rs1), 0x6, uint32(rd), 0x33))
}

func (a *Assembler) Remu(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x1, uint32(rs2), uint32(rs1), 0x7, uint32(rd), 0x33))
}

func (a *Assembler) Mulw(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x1, uint32(rs2), uint32(rs1), 0x0, uint32(rd), 0x3b))
}

func (a *Assembler) Divw(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x1, uint32(rs2), uint32(rs1), 0x4, uint32(rd), 0x3b))
}

func (a *Assembler) Divuw(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x1, uint32(rs2), uint32(rs1), 0x5, uint32(rd), 0x3b))
}

func (a *Assembler) Remw(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x1, uint32(rs2), uint32(rs1), 0x6, uint32(rd), 0x3b))
}

func (a *Assembler) Remuw(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x1, uint32(rs2), uint32(rs1), 0x7, uint32(rd), 0x3b))
}

//
// RV64A
//

func (a *Assembler) LrW(rd XRegister, rs1 XRegister, aqrl AqRl) {
	if aqrl == AqRlRelease {
		panic("LR cannot be release-only")
	}
	a.emit32(EncodeR4(0x2, uint32(aqrl), 0x0, uint32(rs1), 0x2, uint32(rd), 0x2f))
}

func (a *Assembler) LrD(rd XRegister, rs1 XRegister, aqrl AqRl) {
	if aqrl == AqRlRelease {
		panic("LR cannot be release-only")
	}
	a.emit32(EncodeR4(0x2, uint32(aqrl), 0x0, uint32(rs1), 0x3, uint32(rd), 0x2f))
}

func (a *Assembler) ScW(rd XRegister, rs2 XRegister, rs1 XRegister, aqrl AqRl) {
	if aqrl == AqRlAcquire {
		panic("SC cannot be acquire-only")
	}
	a.emit32(EncodeR4(0x3, uint32(aqrl), uint32(rs2), uint32(rs1), 0x2, uint32(rd), 0x2f))
}

func (a *Assembler) ScD(rd XRegister, rs2 XRegister, rs1 XRegister, aqrl AqRl) {
	if aqrl == AqRlAcquire {
		panic("SC cannot be acquire-only")
	}
	a.emit32(EncodeR4(0x3, uint32(aqrl), uint32(rs2), uint32(rs1), 0x3, uint32(rd), 0x2f))
}

func (a *Assembler) amo(funct5 uint32, aqrl AqRl, rd XRegister, rs2 XRegister, rs1 XRegister, funct3 uint32) {
	a.emit32(EncodeR4(funct5, uint32(aqrl), uint32(rs2), uint32(rs1), funct3, uint32(rd), 0x2f))
}

func (a *Assembler) AmoSwapW(rd XRegister, rs2 XRegister, rs1 XRegister, aqrl AqRl) {
	a.amo(0x1, aqrl, rd, rs2, rs1, 0x2)
}

func (a *Assembler) AmoSwapD(rd XRegister, rs2 XRegister, rs1 XRegister, aqrl AqRl) {
	a.amo(0x1, aqrl, rd, rs2, rs1, 0x3)
}

func (a *Assembler) AmoAddW(rd XRegister, rs2 XRegister, rs1 XRegister, aqrl AqRl) {
	a.amo(0x0, aqrl, rd, rs2, rs1, 0x2)
}

func (a *Assembler) AmoAddD(rd XRegister, rs2 XRegister, rs1 XRegister, aqrl AqRl) {
	a.amo(0x0, aqrl, rd, rs2, rs1, 0x3)
}

func (a *Assembler) AmoXorW(rd XRegister, rs2 XRegister, rs1 XRegister, aqrl AqRl) {
	a.amo(0x4, aqrl, rd, rs2, rs1, 0x2)
}

func (a *Assembler) AmoXorD(rd XRegister, rs2 XRegister, rs1 XRegister, aqrl AqRl) {
	a.amo(0x4, aqrl, rd, rs2, rs1, 0x3)
}

func (a *Assembler) AmoAndW(rd XRegister, rs2 XRegister, rs1 XRegister, aqrl AqRl) {
	a.amo(0xc, aqrl, rd, rs2, rs1, 0x2)
}

func (a *Assembler) AmoAndD(rd XRegister, rs2 XRegister, rs1 XRegister, aqrl AqRl) {
	a.amo(0xc, aqrl, rd, rs2, rs1, 0x3)
}

func (a *Assembler) AmoOrW(rd XRegister, rs2 XRegister, rs1 XRegister, aqrl AqRl) {
	a.amo(0x8, aqrl, rd, rs2, rs1, 0x2)
}

func (a *Assembler) AmoOrD(rd XRegister, rs2 XRegister, rs1 XRegister, aqrl AqRl) {
	a.amo(0x8, aqrl, rd, rs2, rs1, 0x3)
}

func (a *Assembler) AmoMinW(rd XRegister, rs2 XRegister, rs1 XRegister, aqrl AqRl) {
	a.amo(0x10, aqrl, rd, rs2, rs1, 0x2)
}

func (a *Assembler) AmoMinD(rd XRegister, rs2 XRegister, rs1 XRegister, aqrl AqRl) {
	a.amo(0x10, aqrl, rd, rs2, rs1, 0x3)
}

func (a *Assembler) AmoMaxW(rd XRegister, rs2 XRegister, rs1 XRegister, aqrl AqRl) {
	a.amo(0x14, aqrl, rd, rs2, rs1, 0x2)
}

func (a *Assembler) AmoMaxD(rd XRegister, rs2 XRegister, rs1 XRegister, aqrl AqRl) {
	a.amo(0x14, aqrl, rd, rs2, rs1, 0x3)
}

func (a *Assembler) AmoMinuW(rd XRegister, rs2 XRegister, rs1 XRegister, aqrl AqRl) {
	a.amo(0x18, aqrl, rd, rs2, rs1, 0x2)
}

func (a *Assembler) AmoMinuD(rd XRegister, rs2 XRegister, rs1 XRegister, aqrl AqRl) {
	a.amo(0x18, aqrl, rd, rs2, rs1, 0x3)
}

func (a *Assembler) AmoMaxuW(rd XRegister, rs2 XRegister, rs1 XRegister, aqrl AqRl) {
	a.amo(0x1c, aqrl, rd, rs2, rs1, 0x2)
}

func (a *Assembler) AmoMaxuD(rd XRegister, rs2 XRegister, rs1 XRegister, aqrl AqRl) {
	a.amo(0x1c, aqrl, rd, rs2, rs1, 0x3)
}

//
// Zicsr
//

func (a *Assembler) Csrrw(rd XRegister, csr uint32, rs1 XRegister) {
	a.emit32(EncodeI(toInt12(csr), uint32(rs1), 0x1, uint32(rd), 0x73))
}

func (a *Assembler) Csrrs(rd XRegister, csr uint32, rs1 XRegister) {
	a.emit32(EncodeI(toInt12(csr), uint32(rs1), 0x2, uint32(rd), 0x73))
}

func (a *Assembler) Csrrc(rd XRegister, csr uint32, rs1 XRegister) {
	a.emit32(EncodeI(toInt12(csr), uint32(rs1), 0x3, uint32(rd), 0x73))
}

func (a *Assembler) Csrrwi(rd XRegister, csr uint32, uimm5 uint32) {
	checkField("uimm5", 5, uimm5)
	a.emit32(EncodeI(toInt12(csr), uimm5, 0x5, uint32(rd), 0x73))
}

func (a *Assembler) Csrrsi(rd XRegister, csr uint32, uimm5 uint32) {
	checkField("uimm5", 5, uimm5)
	a.emit32(EncodeI(toInt12(csr), uimm5, 0x6, uint32(rd), 0x73))
}

func (a *Assembler) Csrrci(rd XRegister, csr uint32, uimm5 uint32) {
	checkField("uimm5", 5, uimm5)
	a.emit32(EncodeI(toInt12(csr), uimm5, 0x7, uint32(rd), 0x73))
}

//
// RV64F / RV64D
//

func (a *Assembler) FLw(rd FRegister, rs1 XRegister, offset int32) {
	a.emit32(EncodeI(offset, uint32(rs1), 0x2, uint32(rd), 0x07))
}

func (a *Assembler) FLd(rd FRegister, rs1 XRegister, offset int32) {
	a.emit32(EncodeI(offset, uint32(rs1), 0x3, uint32(rd), 0x07))
}

func (a *Assembler) FSw(rs2 FRegister, rs1 XRegister, offset int32) {
	a.emit32(EncodeS(offset, uint32(rs2), uint32(rs1), 0x2, 0x27))
}

func (a *Assembler) FSd(rs2 FRegister, rs1 XRegister, offset int32) {
	a.emit32(EncodeS(offset, uint32(rs2), uint32(rs1), 0x3, 0x27))
}

func (a *Assembler) FMAddS(rd FRegister, rs1 FRegister, rs2 FRegister, rs3 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR4(uint32(rs3), 0x0, uint32(rs2), uint32(rs1), uint32(frm), uint32(rd), 0x43))
}

func (a *Assembler) FMAddD(rd FRegister, rs1 FRegister, rs2 FRegister, rs3 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR4(uint32(rs3), 0x1, uint32(rs2), uint32(rs1), uint32(frm), uint32(rd), 0x43))
}

func (a *Assembler) FMSubS(rd FRegister, rs1 FRegister, rs2 FRegister, rs3 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR4(uint32(rs3), 0x0, uint32(rs2), uint32(rs1), uint32(frm), uint32(rd), 0x47))
}

func (a *Assembler) FMSubD(rd FRegister, rs1 FRegister, rs2 FRegister, rs3 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR4(uint32(rs3), 0x1, uint32(rs2), uint32(rs1), uint32(frm), uint32(rd), 0x47))
}

func (a *Assembler) FNMSubS(rd FRegister, rs1 FRegister, rs2 FRegister, rs3 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR4(uint32(rs3), 0x0, uint32(rs2), uint32(rs1), uint32(frm), uint32(rd), 0x4b))
}

func (a *Assembler) FNMSubD(rd FRegister, rs1 FRegister, rs2 FRegister, rs3 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR4(uint32(rs3), 0x1, uint32(rs2), uint32(rs1), uint32(frm), uint32(rd), 0x4b))
}

func (a *Assembler) FNMAddS(rd FRegister, rs1 FRegister, rs2 FRegister, rs3 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR4(uint32(rs3), 0x0, uint32(rs2), uint32(rs1), uint32(frm), uint32(rd), 0x4f))
}

func (a *Assembler) FNMAddD(rd FRegister, rs1 FRegister, rs2 FRegister, rs3 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR4(uint32(rs3), 0x1, uint32(rs2), uint32(rs1), uint32(frm), uint32(rd), 0x4f))
}

func (a *Assembler) FAddS(rd FRegister, rs1 FRegister, rs2 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0x0, uint32(rs2), uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

func (a *Assembler) FAddD(rd FRegister, rs1 FRegister, rs2 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0x1, uint32(rs2), uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

func (a *Assembler) FSubS(rd FRegister, rs1 FRegister, rs2 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0x4, uint32(rs2), uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

func (a *Assembler) FSubD(rd FRegister, rs1 FRegister, rs2 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0x5, uint32(rs2), uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

func (a *Assembler) FMulS(rd FRegister, rs1 FRegister, rs2 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0x8, uint32(rs2), uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

func (a *Assembler) FMulD(rd FRegister, rs1 FRegister, rs2 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0x9, uint32(rs2), uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

func (a *Assembler) FDivS(rd FRegister, rs1 FRegister, rs2 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0xc, uint32(rs2), uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

func (a *Assembler) FDivD(rd FRegister, rs1 FRegister, rs2 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0xd, uint32(rs2), uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

func (a *Assembler) FSqrtS(rd FRegister, rs1 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0x2c, 0x0, uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

func (a *Assembler) FSqrtD(rd FRegister, rs1 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0x2d, 0x0, uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

func (a *Assembler) FSgnjS(rd FRegister, rs1 FRegister, rs2 FRegister) {
	a.emit32(EncodeR(0x10, uint32(rs2), uint32(rs1), 0x0, uint32(rd), 0x53))
}

func (a *Assembler) FSgnjD(rd FRegister, rs1 FRegister, rs2 FRegister) {
	a.emit32(EncodeR(0x11, uint32(rs2), uint32(rs1), 0x0, uint32(rd), 0x53))
}

func (a *Assembler) FSgnjnS(rd FRegister, rs1 FRegister, rs2 FRegister) {
	a.emit32(EncodeR(0x10, uint32(rs2), uint32(rs1), 0x1, uint32(rd), 0x53))
}

func (a *Assembler) FSgnjnD(rd FRegister, rs1 FRegister, rs2 FRegister) {
	a.emit32(EncodeR(0x11, uint32(rs2), uint32(rs1), 0x1, uint32(rd), 0x53))
}

func (a *Assembler) FSgnjxS(rd FRegister, rs1 FRegister, rs2 FRegister) {
	a.emit32(EncodeR(0x10, uint32(rs2), uint32(rs1), 0x2, uint32(rd), 0x53))
}

func (a *Assembler) FSgnjxD(rd FRegister, rs1 FRegister, rs2 FRegister) {
	a.emit32(EncodeR(0x11, uint32(rs2), uint32(rs1), 0x2, uint32(rd), 0x53))
}

func (a *Assembler) FMinS(rd FRegister, rs1 FRegister, rs2 FRegister) {
	a.emit32(EncodeR(0x14, uint32(rs2), uint32(rs1), 0x0, uint32(rd), 0x53))
}

func (a *Assembler) FMinD(rd FRegister, rs1 FRegister, rs2 FRegister) {
	a.emit32(EncodeR(0x15, uint32(rs2), uint32(rs1), 0x0, uint32(rd), 0x53))
}

func (a *Assembler) FMaxS(rd FRegister, rs1 FRegister, rs2 FRegister) {
	a.emit32(EncodeR(0x14, uint32(rs2), uint32(rs1), 0x1, uint32(rd), 0x53))
}

func (a *Assembler) FMaxD(rd FRegister, rs1 FRegister, rs2 FRegister) {
	a.emit32(EncodeR(0x15, uint32(rs2), uint32(rs1), 0x1, uint32(rd), 0x53))
}

func (a *Assembler) FCvtSD(rd FRegister, rs1 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0x20, 0x1, uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

// The rounding mode is irrelevant, doubles represent every float exactly.
func (a *Assembler) FCvtDS(rd FRegister, rs1 FRegister) {
	a.emit32(EncodeR(0x21, 0x0, uint32(rs1), uint32(RoundIgnored), uint32(rd), 0x53))
}

func (a *Assembler) FEqS(rd XRegister, rs1 FRegister, rs2 FRegister) {
	a.emit32(EncodeR(0x50, uint32(rs2), uint32(rs1), 0x2, uint32(rd), 0x53))
}

func (a *Assembler) FEqD(rd XRegister, rs1 FRegister, rs2 FRegister) {
	a.emit32(EncodeR(0x51, uint32(rs2), uint32(rs1), 0x2, uint32(rd), 0x53))
}

func (a *Assembler) FLtS(rd XRegister, rs1 FRegister, rs2 FRegister) {
	a.emit32(EncodeR(0x50, uint32(rs2), uint32(rs1), 0x1, uint32(rd), 0x53))
}

func (a *Assembler) FLtD(rd XRegister, rs1 FRegister, rs2 FRegister) {
	a.emit32(EncodeR(0x51, uint32(rs2), uint32(rs1), 0x1, uint32(rd), 0x53))
}

func (a *Assembler) FLeS(rd XRegister, rs1 FRegister, rs2 FRegister) {
	a.emit32(EncodeR(0x50, uint32(rs2), uint32(rs1), 0x0, uint32(rd), 0x53))
}

func (a *Assembler) FLeD(rd XRegister, rs1 FRegister, rs2 FRegister) {
	a.emit32(EncodeR(0x51, uint32(rs2), uint32(rs1), 0x0, uint32(rd), 0x53))
}

func (a *Assembler) FCvtWS(rd XRegister, rs1 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0x60, 0x0, uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

func (a *Assembler) FCvtWD(rd XRegister, rs1 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0x61, 0x0, uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

func (a *Assembler) FCvtWuS(rd XRegister, rs1 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0x60, 0x1, uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

func (a *Assembler) FCvtWuD(rd XRegister, rs1 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0x61, 0x1, uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

func (a *Assembler) FCvtLS(rd XRegister, rs1 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0x60, 0x2, uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

func (a *Assembler) FCvtLD(rd XRegister, rs1 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0x61, 0x2, uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

func (a *Assembler) FCvtLuS(rd XRegister, rs1 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0x60, 0x3, uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

func (a *Assembler) FCvtLuD(rd XRegister, rs1 FRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0x61, 0x3, uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

func (a *Assembler) FCvtSW(rd FRegister, rs1 XRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0x68, 0x0, uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

// The rounding mode is irrelevant, doubles represent every int32 exactly.
func (a *Assembler) FCvtDW(rd FRegister, rs1 XRegister) {
	a.emit32(EncodeR(0x69, 0x0, uint32(rs1), uint32(RoundIgnored), uint32(rd), 0x53))
}

func (a *Assembler) FCvtSWu(rd FRegister, rs1 XRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0x68, 0x1, uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

// The rounding mode is irrelevant, doubles represent every uint32 exactly.
func (a *Assembler) FCvtDWu(rd FRegister, rs1 XRegister) {
	a.emit32(EncodeR(0x69, 0x1, uint32(rs1), uint32(RoundIgnored), uint32(rd), 0x53))
}

func (a *Assembler) FCvtSL(rd FRegister, rs1 XRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0x68, 0x2, uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

func (a *Assembler) FCvtDL(rd FRegister, rs1 XRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0x69, 0x2, uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

func (a *Assembler) FCvtSLu(rd FRegister, rs1 XRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0x68, 0x3, uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

func (a *Assembler) FCvtDLu(rd FRegister, rs1 XRegister, frm FPRoundingMode) {
	a.emit32(EncodeR(0x69, 0x3, uint32(rs1), uint32(frm), uint32(rd), 0x53))
}

func (a *Assembler) FMvXW(rd XRegister, rs1 FRegister) {
	a.emit32(EncodeR(0x70, 0x0, uint32(rs1), 0x0, uint32(rd), 0x53))
}

func (a *Assembler) FMvXD(rd XRegister, rs1 FRegister) {
	a.emit32(EncodeR(0x71, 0x0, uint32(rs1), 0x0, uint32(rd), 0x53))
}

func (a *Assembler) FMvWX(rd FRegister, rs1 XRegister) {
	a.emit32(EncodeR(0x78, 0x0, uint32(rs1), 0x0, uint32(rd), 0x53))
}

func (a *Assembler) FMvDX(rd FRegister, rs1 XRegister) {
	a.emit32(EncodeR(0x79, 0x0, uint32(rs1), 0x0, uint32(rd), 0x53))
}

func (a *Assembler) FClassS(rd XRegister, rs1 FRegister) {
	a.emit32(EncodeR(0x70, 0x0, uint32(rs1), 0x1, uint32(rd), 0x53))
}

func (a *Assembler) FClassD(rd XRegister, rs1 FRegister) {
	a.emit32(EncodeR(0x71, 0x0, uint32(rs1), 0x1, uint32(rd), 0x53))
}

//
// Zba
//

func (a *Assembler) AddUw(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x4, uint32(rs2), uint32(rs1), 0x0, uint32(rd), 0x3b))
}

func (a *Assembler) Sh1Add(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x10, uint32(rs2), uint32(rs1), 0x2, uint32(rd), 0x33))
}

func (a *Assembler) Sh1AddUw(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x10, uint32(rs2), uint32(rs1), 0x2, uint32(rd), 0x3b))
}

func (a *Assembler) Sh2Add(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x10, uint32(rs2), uint32(rs1), 0x4, uint32(rd), 0x33))
}

func (a *Assembler) Sh2AddUw(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x10, uint32(rs2), uint32(rs1), 0x4, uint32(rd), 0x3b))
}

func (a *Assembler) Sh3Add(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x10, uint32(rs2), uint32(rs1), 0x6, uint32(rd), 0x33))
}

func (a *Assembler) Sh3AddUw(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x10, uint32(rs2), uint32(rs1), 0x6, uint32(rd), 0x3b))
}

func (a *Assembler) SlliUw(rd XRegister, rs1 XRegister, shamt int32) {
	checkShamt(shamt, 64)
	a.emit32(EncodeI6(0x2, uint32(shamt), uint32(rs1), 0x1, uint32(rd), 0x1b))
}

//
// Zbb
//

func (a *Assembler) Andn(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x20, uint32(rs2), uint32(rs1), 0x7, uint32(rd), 0x33))
}

func (a *Assembler) Orn(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x20, uint32(rs2), uint32(rs1), 0x6, uint32(rd), 0x33))
}

func (a *Assembler) Xnor(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x20, uint32(rs2), uint32(rs1), 0x4, uint32(rd), 0x33))
}

func (a *Assembler) Clz(rd XRegister, rs1 XRegister) {
	a.emit32(EncodeR(0x30, 0x0, uint32(rs1), 0x1, uint32(rd), 0x13))
}

func (a *Assembler) Clzw(rd XRegister, rs1 XRegister) {
	a.emit32(EncodeR(0x30, 0x0, uint32(rs1), 0x1, uint32(rd), 0x1b))
}

func (a *Assembler) Ctz(rd XRegister, rs1 XRegister) {
	a.emit32(EncodeR(0x30, 0x1, uint32(rs1), 0x1, uint32(rd), 0x13))
}

func (a *Assembler) Ctzw(rd XRegister, rs1 XRegister) {
	a.emit32(EncodeR(0x30, 0x1, uint32(rs1), 0x1, uint32(rd), 0x1b))
}

func (a *Assembler) Cpop(rd XRegister, rs1 XRegister) {
	a.emit32(EncodeR(0x30, 0x2, uint32(rs1), 0x1, uint32(rd), 0x13))
}

func (a *Assembler) Cpopw(rd XRegister, rs1 XRegister) {
	a.emit32(EncodeR(0x30, 0x2, uint32(rs1), 0x1, uint32(rd), 0x1b))
}

func (a *Assembler) Min(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x5, uint32(rs2), uint32(rs1), 0x4, uint32(rd), 0x33))
}

func (a *Assembler) Minu(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x5, uint32(rs2), uint32(rs1), 0x5, uint32(rd), 0x33))
}

func (a *Assembler) Max(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x5, uint32(rs2), uint32(rs1), 0x6, uint32(rd), 0x33))
}

func (a *Assembler) Maxu(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x5, uint32(rs2), uint32(rs1), 0x7, uint32(rd), 0x33))
}

func (a *Assembler) Rol(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x30, uint32(rs2), uint32(rs1), 0x1, uint32(rd), 0x33))
}

func (a *Assembler) Rolw(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x30, uint32(rs2), uint32(rs1), 0x1, uint32(rd), 0x3b))
}

func (a *Assembler) Ror(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x30, uint32(rs2), uint32(rs1), 0x5, uint32(rd), 0x33))
}

func (a *Assembler) Rorw(rd XRegister, rs1 XRegister, rs2 XRegister) {
	a.emit32(EncodeR(0x30, uint32(rs2), uint32(rs1), 0x5, uint32(rd), 0x3b))
}

func (a *Assembler) Rori(rd XRegister, rs1 XRegister, shamt int32) {
	checkShamt(shamt, 64)
	a.emit32(EncodeI6(0x18, uint32(shamt), uint32(rs1), 0x5, uint32(rd), 0x13))
}

func (a *Assembler) Roriw(rd XRegister, rs1 XRegister, shamt int32) {
	checkShamt(shamt, 32)
	a.emit32(EncodeI6(0x18, uint32(shamt), uint32(rs1), 0x5, uint32(rd), 0x1b))
}

func (a *Assembler) OrcB(rd XRegister, rs1 XRegister) {
	a.emit32(EncodeR(0x14, 0x7, uint32(rs1), 0x5, uint32(rd), 0x13))
}

func (a *Assembler) Rev8(rd XRegister, rs1 XRegister) {
	a.emit32(EncodeR(0x35, 0x18, uint32(rs1), 0x5, uint32(rd), 0x13))
}

func checkShamt(shamt int32, width int32) {
	if shamt < 0 || shamt >= width {
		panic("shift amount out of range")
	}
}
