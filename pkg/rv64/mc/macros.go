package mc

import (
	"fmt"
	"math/bits"

	"github.com/rvasm/rvasm/pkg/utils"
)

//
// Pseudo instructions
//

func (a *Assembler) Nop() { a.Addi(Zero, Zero, 0) }

// Loads an arbitrary 64-bit constant without touching scratch registers
func (a *Assembler) Li(rd XRegister, imm int64) {
	a.LoadImmediate(rd, imm, false)
}

func (a *Assembler) Mv(rd XRegister, rs XRegister)   { a.Addi(rd, rs, 0) }
func (a *Assembler) Not(rd XRegister, rs XRegister)  { a.Xori(rd, rs, -1) }
func (a *Assembler) Neg(rd XRegister, rs XRegister)  { a.Sub(rd, Zero, rs) }
func (a *Assembler) NegW(rd XRegister, rs XRegister) { a.Subw(rd, Zero, rs) }

func (a *Assembler) SextB(rd XRegister, rs XRegister) {
	a.Slli(rd, rs, xlen-8)
	a.Srai(rd, rd, xlen-8)
}

func (a *Assembler) SextH(rd XRegister, rs XRegister) {
	a.Slli(rd, rs, xlen-16)
	a.Srai(rd, rd, xlen-16)
}

func (a *Assembler) SextW(rd XRegister, rs XRegister) { a.Addiw(rd, rs, 0) }

func (a *Assembler) ZextB(rd XRegister, rs XRegister) { a.Andi(rd, rs, 0xff) }

func (a *Assembler) ZextH(rd XRegister, rs XRegister) {
	a.Slli(rd, rs, xlen-16)
	a.Srli(rd, rd, xlen-16)
}

func (a *Assembler) ZextW(rd XRegister, rs XRegister) { a.AddUw(rd, rs, Zero) }

func (a *Assembler) Seqz(rd XRegister, rs XRegister) { a.Sltiu(rd, rs, 1) }
func (a *Assembler) Snez(rd XRegister, rs XRegister) { a.Sltu(rd, Zero, rs) }
func (a *Assembler) Sltz(rd XRegister, rs XRegister) { a.Slt(rd, rs, Zero) }
func (a *Assembler) Sgtz(rd XRegister, rs XRegister) { a.Slt(rd, Zero, rs) }

func (a *Assembler) FMvS(rd FRegister, rs FRegister)  { a.FSgnjS(rd, rs, rs) }
func (a *Assembler) FAbsS(rd FRegister, rs FRegister) { a.FSgnjxS(rd, rs, rs) }
func (a *Assembler) FNegS(rd FRegister, rs FRegister) { a.FSgnjnS(rd, rs, rs) }
func (a *Assembler) FMvD(rd FRegister, rs FRegister)  { a.FSgnjD(rd, rs, rs) }
func (a *Assembler) FAbsD(rd FRegister, rs FRegister) { a.FSgnjxD(rd, rs, rs) }
func (a *Assembler) FNegD(rd FRegister, rs FRegister) { a.FSgnjnD(rd, rs, rs) }

func (a *Assembler) Beqz(rs XRegister, offset int32) { a.Beq(rs, Zero, offset) }
func (a *Assembler) Bnez(rs XRegister, offset int32) { a.Bne(rs, Zero, offset) }
func (a *Assembler) Blez(rs XRegister, offset int32) { a.Bge(Zero, rs, offset) }
func (a *Assembler) Bgez(rs XRegister, offset int32) { a.Bge(rs, Zero, offset) }
func (a *Assembler) Bltz(rs XRegister, offset int32) { a.Blt(rs, Zero, offset) }
func (a *Assembler) Bgtz(rs XRegister, offset int32) { a.Blt(Zero, rs, offset) }

func (a *Assembler) Bgt(rs XRegister, rt XRegister, offset int32)  { a.Blt(rt, rs, offset) }
func (a *Assembler) Ble(rs XRegister, rt XRegister, offset int32)  { a.Bge(rt, rs, offset) }
func (a *Assembler) Bgtu(rs XRegister, rt XRegister, offset int32) { a.Bltu(rt, rs, offset) }
func (a *Assembler) Bleu(rs XRegister, rt XRegister, offset int32) { a.Bgeu(rt, rs, offset) }

func (a *Assembler) J(offset int32)    { a.Jal(Zero, offset) }
func (a *Assembler) Jr(rs XRegister)   { a.Jalr(Zero, rs, 0) }
func (a *Assembler) Ret()              { a.Jalr(Zero, RA, 0) }

func (a *Assembler) RdCycle(rd XRegister)   { a.Csrrs(rd, 0xc00, Zero) }
func (a *Assembler) RdTime(rd XRegister)    { a.Csrrs(rd, 0xc01, Zero) }
func (a *Assembler) RdInstret(rd XRegister) { a.Csrrs(rd, 0xc02, Zero) }

func (a *Assembler) Csrr(rd XRegister, csr uint32)      { a.Csrrs(rd, csr, Zero) }
func (a *Assembler) Csrw(csr uint32, rs XRegister)      { a.Csrrw(Zero, csr, rs) }
func (a *Assembler) Csrs(csr uint32, rs XRegister)      { a.Csrrs(Zero, csr, rs) }
func (a *Assembler) Csrc(csr uint32, rs XRegister)      { a.Csrrc(Zero, csr, rs) }
func (a *Assembler) Csrwi(csr uint32, uimm5 uint32)     { a.Csrrwi(Zero, csr, uimm5) }
func (a *Assembler) Csrsi(csr uint32, uimm5 uint32)     { a.Csrrsi(Zero, csr, uimm5) }
func (a *Assembler) Csrci(csr uint32, uimm5 uint32)     { a.Csrrci(Zero, csr, uimm5) }

// Guaranteed illegal instruction, CSRRW into a read-only CSR
func (a *Assembler) Unimp() { a.emit32(0xc0001073) }

//
// Loads and stores with arbitrary 32-bit offsets
//

// Rewrites a base register and offset pair so the offset fits the 12-bit
// immediate of a load or store, materializing the excess into a scratch
// register. Returns the replacement pair.
func (a *Assembler) AdjustBaseAndOffset(base XRegister, offset int32, srs *ScratchRegisterScope) (XRegister, int32) {
	if srs.AvailableXRegisters() == 0 {
		panic("offset adjustment requires an available scratch register")
	}
	if utils.IsInt(12, offset) {
		return base, offset
	}

	const (
		positiveMaxSimpleAdjustment  = int32(0x7ff)
		highestForSimpleAdjustment   = 2 * positiveMaxSimpleAdjustment
		simpleAdjustmentAligned8     = positiveMaxSimpleAdjustment &^ 7
		simpleAdjustmentAligned4     = positiveMaxSimpleAdjustment &^ 3
		negativeSimpleAdjustment     = int32(-0x800)
		lowestForSimpleAdjustment    = 2 * negativeSimpleAdjustment
	)

	tmp := srs.AllocateXRegister()
	switch {
	case offset >= 0 && offset <= highestForSimpleAdjustment:
		// Prefer an 8-byte aligned adjustment, then 4-byte, then half the
		// offset, keeping the access itself aligned whenever the base is.
		adjustment := simpleAdjustmentAligned8
		if !utils.IsInt(12, offset-adjustment) {
			adjustment = simpleAdjustmentAligned4
			if !utils.IsInt(12, offset-adjustment) {
				adjustment = offset / 2
			}
		}
		a.Addi(tmp, base, adjustment)
		offset -= adjustment
	case offset < 0 && offset >= lowestForSimpleAdjustment:
		a.Addi(tmp, base, negativeSimpleAdjustment)
		offset -= negativeSimpleAdjustment
	case offset >= 0x7ffff800:
		// Beyond what SplitOffset accepts.
		a.LoadConst32(tmp, offset)
		a.Add(tmp, tmp, base)
		offset = 0
	default:
		imm20, short := SplitOffset(offset)
		a.Lui(tmp, imm20)
		a.Add(tmp, tmp, base)
		offset = short
	}
	return tmp, offset
}

func (a *Assembler) loadFromOffset(emit func(XRegister, XRegister, int32), rd XRegister, rs1 XRegister, offset int32) {
	a.checkNotScratch(rs1)
	a.checkNotScratch(rd)
	srs := NewScratchRegisterScope(a)
	defer srs.Release()
	// If rd differs from the base it can serve as the temporary.
	if rd != rs1 {
		srs.IncludeXRegister(rd)
	}
	base, off := a.AdjustBaseAndOffset(rs1, offset, srs)
	emit(rd, base, off)
}

func (a *Assembler) storeToOffset(emit func(XRegister, XRegister, int32), rs2 XRegister, rs1 XRegister, offset int32) {
	a.checkNotScratch(rs1)
	a.checkNotScratch(rs2)
	srs := NewScratchRegisterScope(a)
	defer srs.Release()
	base, off := a.AdjustBaseAndOffset(rs1, offset, srs)
	emit(rs2, base, off)
}

func (a *Assembler) fLoadFromOffset(emit func(FRegister, XRegister, int32), rd FRegister, rs1 XRegister, offset int32) {
	a.checkNotScratch(rs1)
	srs := NewScratchRegisterScope(a)
	defer srs.Release()
	base, off := a.AdjustBaseAndOffset(rs1, offset, srs)
	emit(rd, base, off)
}

func (a *Assembler) fStoreToOffset(emit func(FRegister, XRegister, int32), rs2 FRegister, rs1 XRegister, offset int32) {
	a.checkNotScratch(rs1)
	srs := NewScratchRegisterScope(a)
	defer srs.Release()
	base, off := a.AdjustBaseAndOffset(rs1, offset, srs)
	emit(rs2, base, off)
}

func (a *Assembler) Loadb(rd XRegister, rs1 XRegister, offset int32) {
	a.loadFromOffset(a.Lb, rd, rs1, offset)
}

func (a *Assembler) Loadh(rd XRegister, rs1 XRegister, offset int32) {
	a.loadFromOffset(a.Lh, rd, rs1, offset)
}

func (a *Assembler) Loadw(rd XRegister, rs1 XRegister, offset int32) {
	a.loadFromOffset(a.Lw, rd, rs1, offset)
}

func (a *Assembler) Loadd(rd XRegister, rs1 XRegister, offset int32) {
	a.loadFromOffset(a.Ld, rd, rs1, offset)
}

func (a *Assembler) Loadbu(rd XRegister, rs1 XRegister, offset int32) {
	a.loadFromOffset(a.Lbu, rd, rs1, offset)
}

func (a *Assembler) Loadhu(rd XRegister, rs1 XRegister, offset int32) {
	a.loadFromOffset(a.Lhu, rd, rs1, offset)
}

func (a *Assembler) Loadwu(rd XRegister, rs1 XRegister, offset int32) {
	a.loadFromOffset(a.Lwu, rd, rs1, offset)
}

func (a *Assembler) Storeb(rs2 XRegister, rs1 XRegister, offset int32) {
	a.storeToOffset(a.Sb, rs2, rs1, offset)
}

func (a *Assembler) Storeh(rs2 XRegister, rs1 XRegister, offset int32) {
	a.storeToOffset(a.Sh, rs2, rs1, offset)
}

func (a *Assembler) Storew(rs2 XRegister, rs1 XRegister, offset int32) {
	a.storeToOffset(a.Sw, rs2, rs1, offset)
}

func (a *Assembler) Stored(rs2 XRegister, rs1 XRegister, offset int32) {
	a.storeToOffset(a.Sd, rs2, rs1, offset)
}

func (a *Assembler) FLoadw(rd FRegister, rs1 XRegister, offset int32) {
	a.fLoadFromOffset(a.FLw, rd, rs1, offset)
}

func (a *Assembler) FLoadd(rd FRegister, rs1 XRegister, offset int32) {
	a.fLoadFromOffset(a.FLd, rd, rs1, offset)
}

func (a *Assembler) FStorew(rs2 FRegister, rs1 XRegister, offset int32) {
	a.fStoreToOffset(a.FSw, rs2, rs1, offset)
}

func (a *Assembler) FStored(rs2 FRegister, rs1 XRegister, offset int32) {
	a.fStoreToOffset(a.FSd, rs2, rs1, offset)
}

//
// Constant materialization
//

// 32-bit values never need a temporary register
func (a *Assembler) LoadConst32(rd XRegister, value int32) {
	a.LoadImmediate(rd, int64(value), false)
}

func (a *Assembler) LoadConst64(rd XRegister, value int64) {
	a.LoadImmediate(rd, value, true)
}

func (a *Assembler) addConst(rd XRegister, rs1 XRegister, value int64,
	addi func(XRegister, XRegister, int32),
	addLarge func(XRegister, XRegister, int64, XRegister)) {
	a.checkNotScratch(rs1)
	a.checkNotScratch(rd)
	srs := NewScratchRegisterScope(a)
	defer srs.Release()
	// A temporary must be obtainable even when it is not needed. rd can be
	// the temporary unless it is the base or SP.
	if (rd == rs1 || rd == SP) && srs.AvailableXRegisters() == 0 {
		panic("constant addition requires an available scratch register")
	}

	if utils.IsInt(12, value) {
		addi(rd, rs1, int32(value))
		return
	}

	const (
		positiveSimpleAdjustment = int64(0x7ff)
		highestForSimpleAdjust   = 2 * positiveSimpleAdjustment
		negativeSimpleAdjustment = int64(-0x800)
		lowestForSimpleAdjust    = 2 * negativeSimpleAdjustment
	)

	if rd != rs1 && rd != SP {
		srs.IncludeXRegister(rd)
	}
	tmp := srs.AllocateXRegister()
	switch {
	case value >= 0 && value <= highestForSimpleAdjust:
		addi(tmp, rs1, int32(positiveSimpleAdjustment))
		addi(rd, tmp, int32(value-positiveSimpleAdjustment))
	case value < 0 && value >= lowestForSimpleAdjust:
		addi(tmp, rs1, int32(negativeSimpleAdjustment))
		addi(rd, tmp, int32(value-negativeSimpleAdjustment))
	default:
		addLarge(rd, rs1, value, tmp)
	}
}

// Adds a 32-bit constant to rs1 with 32-bit wrapping semantics
func (a *Assembler) AddConst32(rd XRegister, rs1 XRegister, value int32) {
	a.addConst(rd, rs1, int64(value),
		func(rd XRegister, rs1 XRegister, v int32) { a.Addiw(rd, rs1, v) },
		func(rd XRegister, rs1 XRegister, v int64, tmp XRegister) {
			a.LoadConst32(tmp, int32(v))
			a.Addw(rd, rs1, tmp)
		})
}

// Adds a 64-bit constant to rs1
func (a *Assembler) AddConst64(rd XRegister, rs1 XRegister, value int64) {
	a.addConst(rd, rs1, value,
		func(rd XRegister, rs1 XRegister, v int32) { a.Addi(rd, rs1, v) },
		func(rd XRegister, rs1 XRegister, v int64, tmp XRegister) {
			// The scratch register may be the only one available, so use
			// Li which never needs another temporary.
			a.Li(tmp, v)
			a.Add(rd, rs1, tmp)
		})
}

//
// Immediate synthesis
//

func isSimpleLiValue(value int64) bool {
	// LUI+ADDIW covers this range in at most two instructions.
	return value >= -0x80000800 && value <= 0x7fffffff
}

// Emits the one or two instruction sequence for a simple value through the
// given emit hooks. Passing counting hooks instead of the real emitters
// turns this into a cost estimate.
func (a *Assembler) emitSimpleLi(rd XRegister, value int64,
	addi func(XRegister, XRegister, int32),
	addiw func(XRegister, XRegister, int32),
	slli func(XRegister, XRegister, int32),
	lui func(XRegister, uint32)) {
	if !isSimpleLiValue(value) {
		panic(fmt.Sprintf("not a simple immediate: %#x", value))
	}
	ctz := bits.TrailingZeros64(uint64(value))
	switch {
	case utils.IsInt(12, value):
		addi(rd, Zero, int32(value))
	case ctz < 12 && utils.IsInt(6+ctz, value):
		// Two 16-bit instructions once compression is supported.
		addi(rd, Zero, int32(value>>ctz))
		slli(rd, rd, int32(ctz))
	case value < -0x80000000:
		small := int32(value - (-0x80000000))
		lui(rd, 1<<19)
		addi(rd, rd, small)
	default:
		// Like SplitOffset but ADDIW reaches the full 32-bit range.
		near := (value + 0x800) &^ 0xfff
		small := int32(value - near)
		imm20 := uint32(near>>12) & 0xfffff
		lui(rd, imm20)
		if small != 0 {
			addiw(rd, rd, small)
		}
	}
}

// Emits a value as a simple sequence followed by up to three SLLI+ADDI
// pairs, through the given emit hooks.
func (a *Assembler) emitWithSlliAddi(rd XRegister, value int64,
	addi func(XRegister, XRegister, int32),
	addiw func(XRegister, XRegister, int32),
	slli func(XRegister, XRegister, int32),
	lui func(XRegister, uint32)) {
	const maxNumSlliAddi = 3
	var addiValues [maxNumSlliAddi]int32
	var slliShamts [maxNumSlliAddi]int
	num := 0
	for !isSimpleLiValue(value) {
		addiValue := (value & 0xfff) - ((value & 0x800) << 1)
		remaining := value - addiValue
		shamt := bits.TrailingZeros64(uint64(remaining))
		addiValues[num] = int32(addiValue)
		slliShamts[num] = shamt
		value = remaining >> shamt
		num++
	}
	if num != 0 && utils.IsInt(20, value) && !utils.IsInt(12, value) {
		// Emit the signed 20-bit value with LUI and shave 12 off the
		// following shift to compensate.
		slliShamts[num-1] -= 12
		lui(rd, uint32(value)&0xfffff)
	} else {
		a.emitSimpleLi(rd, value, addi, addiw, slli, lui)
	}
	for i := num; i != 0; {
		i--
		slli(rd, rd, int32(slliShamts[i]))
		if addiValues[i] != 0 {
			addi(rd, rd, addiValues[i])
		}
	}
}

func (a *Assembler) countSimpleLi(value int64) int {
	count := 0
	rri := func(XRegister, XRegister, int32) { count++ }
	ru := func(XRegister, uint32) { count++ }
	a.emitSimpleLi(Zero, value, rri, rri, rri, ru)
	return count
}

func (a *Assembler) countWithSlliAddi(value int64) int {
	count := 0
	rri := func(XRegister, XRegister, int32) { count++ }
	ru := func(XRegister, uint32) { count++ }
	a.emitWithSlliAddi(Zero, value, rri, rri, rri, ru)
	return count
}

// Synthesizes an arbitrary 64-bit constant into rd, choosing the shortest of
// several candidate sequences the way clang's assembler does. With canUseTmp
// a scratch register may shorten the sequence from up to eight instructions
// to at most six.
func (a *Assembler) LoadImmediate(rd XRegister, imm int64, canUseTmp bool) {
	a.checkNotScratch(rd)
	srs := NewScratchRegisterScope(a)
	defer srs.Release()
	if canUseTmp && srs.AvailableXRegisters() == 0 {
		panic("LoadImmediate with a temporary requires an available scratch register")
	}

	addi := func(rd XRegister, rs XRegister, imm int32) { a.Addi(rd, rs, imm) }
	addiw := func(rd XRegister, rs XRegister, imm int32) { a.Addiw(rd, rs, imm) }
	slli := func(rd XRegister, rs XRegister, imm int32) { a.Slli(rd, rs, imm) }
	lui := func(rd XRegister, imm20 uint32) { a.Lui(rd, imm20) }

	insnsNeeded := a.countWithSlliAddi(imm)
	trailingSlliShamt := 0
	if insnsNeeded > 2 {
		// Sometimes it is better to end with a SLLI even when the default
		// decomposition would end with an ADDI.
		if imm&1 == 0 && imm&0xfff != 0 {
			ctz := bits.TrailingZeros64(uint64(imm))
			newNeeded := a.countWithSlliAddi(imm>>ctz) + 1
			if insnsNeeded > newNeeded {
				insnsNeeded = newNeeded
				trailingSlliShamt = ctz
			}
		}

		// Sometimes a shorter sequence ends with a SRLI.
		if imm > 0 {
			shamt := bits.LeadingZeros64(uint64(imm))
			if imm == int64(^uint64(0)>>shamt) {
				a.Addi(rd, Zero, -1)
				a.Srli(rd, rd, int32(shamt))
				return
			}

			value := int64(uint64(imm) << shamt)
			if isSimpleLiValue(value) {
				newNeeded := a.countSimpleLi(value) + 1
				// On a tie clang prefers the sequence without SRLI.
				if newNeeded < insnsNeeded {
					// Setting the bits that get shifted out picks the
					// negative constant closest to zero, matching clang.
					shiftedOut := int64(1)<<shamt - 1
					if value&0xfff != 0 {
						value += shiftedOut
					}
					a.emitSimpleLi(rd, value, addi, addiw, slli, lui)
					a.Srli(rd, rd, int32(shamt))
					return
				}
			}

			ctz := bits.TrailingZeros64(uint64(value))
			if utils.IsInt(ctz+20, value) {
				newNeeded := 3 // ADDI or LUI, SLLI, SRLI
				if newNeeded < insnsNeeded {
					// Clang prefers ADDI+SLLI+SRLI over LUI+SLLI+SRLI.
					if utils.IsInt(ctz+12, value) {
						a.Addi(rd, Zero, int32(value>>ctz))
						a.Slli(rd, rd, int32(ctz))
					} else {
						a.Lui(rd, uint32(uint64(value)>>ctz)&0xfffff)
						a.Slli(rd, rd, int32(ctz-12))
					}
					a.Srli(rd, rd, int32(shamt))
					return
				}
			}
		}

		// Splitting across a scratch register caps the sequence at six
		// instructions instead of eight.
		if canUseTmp {
			low := (imm & 0xffffffff) - ((imm & 0x80000000) << 1)
			remainder := imm - low
			slliShamt := bits.TrailingZeros64(uint64(remainder))
			high := remainder >> slliShamt
			highCost := 2
			if utils.IsInt(20, high) || high&0xfff == 0 {
				highCost = 1
			}
			newNeeded := highCost + a.countSimpleLi(low) + 2 // SLLI+ADD
			if newNeeded < insnsNeeded {
				tmp := srs.AllocateXRegister()
				if utils.IsInt(20, high) && !utils.IsInt(12, high) {
					a.Lui(rd, uint32(high)&0xfffff)
					slliShamt -= 12
				} else {
					a.emitSimpleLi(rd, high, addi, addiw, slli, lui)
				}
				a.emitSimpleLi(tmp, low, addi, addiw, slli, lui)
				a.Slli(rd, rd, int32(slliShamt))
				a.Add(rd, rd, tmp)
				return
			}
		}
	}

	value := imm
	if trailingSlliShamt != 0 {
		value = imm >> trailingSlliShamt
	}
	a.emitWithSlliAddi(rd, value, addi, addiw, slli, lui)
	if trailingSlliShamt != 0 {
		a.Slli(rd, rd, int32(trailingSlliShamt))
	}
}
