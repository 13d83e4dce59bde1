package mc

// Represents a general-purpose (integer) RISC-V register. The numeric value
// is the 5-bit field encoded into instructions.
type XRegister uint32

const (
	Zero XRegister = 0 // hard-wired zero
	RA   XRegister = 1 // return address
	SP   XRegister = 2 // stack pointer
	GP   XRegister = 3 // global pointer
	TP   XRegister = 4 // thread pointer

	T0 XRegister = 5
	T1 XRegister = 6
	T2 XRegister = 7

	FP XRegister = 8 // frame pointer (S0)
	S0 XRegister = 8
	S1 XRegister = 9

	A0 XRegister = 10
	A1 XRegister = 11
	A2 XRegister = 12
	A3 XRegister = 13
	A4 XRegister = 14
	A5 XRegister = 15
	A6 XRegister = 16
	A7 XRegister = 17

	S2  XRegister = 18
	S3  XRegister = 19
	S4  XRegister = 20
	S5  XRegister = 21
	S6  XRegister = 22
	S7  XRegister = 23
	S8  XRegister = 24
	S9  XRegister = 25
	S10 XRegister = 26
	S11 XRegister = 27

	T3 XRegister = 28
	T4 XRegister = 29
	T5 XRegister = 30
	T6 XRegister = 31

	NumXRegisters = 32
)

// Scratch registers reserved for the assembler's own synthesized sequences
// (long branches, literal loads, large-offset adjustment).
const (
	TMP  = T6
	TMP2 = T5
)

var xRegisterNames = [NumXRegisters]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// Returns the ABI mnemonic of the register
func (r XRegister) String() string {
	if r >= NumXRegisters {
		return "x?"
	}
	return xRegisterNames[r]
}

// Represents a floating-point RISC-V register. The numeric value is the
// 5-bit field encoded into instructions.
type FRegister uint32

const (
	FT0 FRegister = 0
	FT1 FRegister = 1
	FT2 FRegister = 2
	FT3 FRegister = 3
	FT4 FRegister = 4
	FT5 FRegister = 5
	FT6 FRegister = 6
	FT7 FRegister = 7

	FS0 FRegister = 8
	FS1 FRegister = 9

	FA0 FRegister = 10
	FA1 FRegister = 11
	FA2 FRegister = 12
	FA3 FRegister = 13
	FA4 FRegister = 14
	FA5 FRegister = 15
	FA6 FRegister = 16
	FA7 FRegister = 17

	FS2  FRegister = 18
	FS3  FRegister = 19
	FS4  FRegister = 20
	FS5  FRegister = 21
	FS6  FRegister = 22
	FS7  FRegister = 23
	FS8  FRegister = 24
	FS9  FRegister = 25
	FS10 FRegister = 26
	FS11 FRegister = 27

	FT8  FRegister = 28
	FT9  FRegister = 29
	FT10 FRegister = 30
	FT11 FRegister = 31

	NumFRegisters = 32

	// Sentinel for branch records that carry no FP operand.
	NoFRegister FRegister = 32
)

// Scratch FP register reserved for the assembler's synthesized sequences.
const FTMP = FT11

var fRegisterNames = [NumFRegisters]string{
	"ft0", "ft1", "ft2", "ft3", "ft4", "ft5", "ft6", "ft7",
	"fs0", "fs1", "fa0", "fa1", "fa2", "fa3", "fa4", "fa5",
	"fa6", "fa7", "fs2", "fs3", "fs4", "fs5", "fs6", "fs7",
	"fs8", "fs9", "fs10", "fs11", "ft8", "ft9", "ft10", "ft11",
}

// Returns the ABI mnemonic of the register
func (r FRegister) String() string {
	if r >= NumFRegisters {
		return "f?"
	}
	return fRegisterNames[r]
}

// Represents a floating-point rounding mode as encoded in the RM field
type FPRoundingMode uint32

const (
	RoundRNE FPRoundingMode = 0x0 // round to nearest, ties to even
	RoundRTZ FPRoundingMode = 0x1 // round towards zero
	RoundRDN FPRoundingMode = 0x2 // round down (towards -infinity)
	RoundRUP FPRoundingMode = 0x3 // round up (towards +infinity)
	RoundRMM FPRoundingMode = 0x4 // round to nearest, ties to max magnitude
	RoundDYN FPRoundingMode = 0x7 // dynamic rounding mode

	RoundDefault = RoundDYN
	// Some instructions never round even though the encoding includes the RM
	// field. Emit zero for those, matching what clang's assembler produces.
	RoundIgnored FPRoundingMode = 0
)

// Represents acquire/release ordering bits of RV64A instructions
type AqRl uint32

const (
	AqRlNone    AqRl = 0x0
	AqRlRelease AqRl = 0x1
	AqRlAcquire AqRl = 0x2
	AqRlBoth    AqRl = AqRlRelease | AqRlAcquire
)

// Fence operand bits (predecessor/successor sets)
const (
	FenceNone   uint32 = 0
	FenceWrite  uint32 = 1
	FenceRead   uint32 = 2
	FenceOutput uint32 = 4
	FenceInput  uint32 = 8
	FenceAll    uint32 = 0xf
)

// Masks of the values returned by FClassS/FClassD
const (
	FPClassNegativeInfinity  uint32 = 0x001
	FPClassNegativeNormal    uint32 = 0x002
	FPClassNegativeSubnormal uint32 = 0x004
	FPClassNegativeZero      uint32 = 0x008
	FPClassPositiveZero      uint32 = 0x010
	FPClassPositiveSubnormal uint32 = 0x020
	FPClassPositiveNormal    uint32 = 0x040
	FPClassPositiveInfinity  uint32 = 0x080
	FPClassSignalingNaN      uint32 = 0x100
	FPClassQuietNaN          uint32 = 0x200
)
