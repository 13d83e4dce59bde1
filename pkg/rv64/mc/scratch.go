package mc

import (
	"fmt"
	"math/bits"
)

// Borrows scratch registers from the assembler's pool. The scope remembers
// the pool state at creation; Release restores it, so allocations and
// Include/Exclude adjustments never leak past the scope.
type ScratchRegisterScope struct {
	assembler   *Assembler
	oldScratchX uint32
	oldScratchF uint32
}

func NewScratchRegisterScope(assembler *Assembler) *ScratchRegisterScope {
	return &ScratchRegisterScope{
		assembler:   assembler,
		oldScratchX: assembler.availableScratchX,
		oldScratchF: assembler.availableScratchF,
	}
}

// Restores the scratch pool to its state at scope creation
func (s *ScratchRegisterScope) Release() {
	s.assembler.availableScratchX = s.oldScratchX
	s.assembler.availableScratchF = s.oldScratchF
}

// Takes the highest available core scratch register out of the pool
func (s *ScratchRegisterScope) AllocateXRegister() XRegister {
	if s.assembler.availableScratchX == 0 {
		panic("no core scratch register available")
	}
	reg := uint32(31 - bits.LeadingZeros32(s.assembler.availableScratchX))
	s.assembler.availableScratchX &^= 1 << reg
	return XRegister(reg)
}

// Returns a core register to the pool
func (s *ScratchRegisterScope) FreeXRegister(reg XRegister) {
	if s.assembler.availableScratchX&(1<<reg) != 0 {
		panic(fmt.Sprintf("register %s is not allocated", reg))
	}
	s.assembler.availableScratchX |= 1 << reg
}

// Returns the number of core registers currently in the pool
func (s *ScratchRegisterScope) AvailableXRegisters() int {
	return bits.OnesCount32(s.assembler.availableScratchX)
}

// Adds a core register to the pool for the duration of the scope
func (s *ScratchRegisterScope) IncludeXRegister(reg XRegister) {
	s.assembler.availableScratchX |= 1 << reg
}

// Removes a core register from the pool for the duration of the scope
func (s *ScratchRegisterScope) ExcludeXRegister(reg XRegister) {
	s.assembler.availableScratchX &^= 1 << reg
}

// Takes the highest available FP scratch register out of the pool
func (s *ScratchRegisterScope) AllocateFRegister() FRegister {
	if s.assembler.availableScratchF == 0 {
		panic("no FP scratch register available")
	}
	reg := uint32(31 - bits.LeadingZeros32(s.assembler.availableScratchF))
	s.assembler.availableScratchF &^= 1 << reg
	return FRegister(reg)
}

// Returns an FP register to the pool
func (s *ScratchRegisterScope) FreeFRegister(reg FRegister) {
	if s.assembler.availableScratchF&(1<<reg) != 0 {
		panic(fmt.Sprintf("register %s is not allocated", reg))
	}
	s.assembler.availableScratchF |= 1 << reg
}

// Returns the number of FP registers currently in the pool
func (s *ScratchRegisterScope) AvailableFRegisters() int {
	return bits.OnesCount32(s.assembler.availableScratchF)
}

// Adds an FP register to the pool for the duration of the scope
func (s *ScratchRegisterScope) IncludeFRegister(reg FRegister) {
	s.assembler.availableScratchF |= 1 << reg
}

// Removes an FP register from the pool for the duration of the scope
func (s *ScratchRegisterScope) ExcludeFRegister(reg FRegister) {
	s.assembler.availableScratchF &^= 1 << reg
}

func (a *Assembler) checkNotScratch(reg XRegister) {
	if a.availableScratchX&(1<<reg) != 0 {
		panic(fmt.Sprintf("register %s is reserved as scratch", reg))
	}
}
