package mc

import "fmt"

// DWARF call frame opcodes emitted by the writer
const (
	dwCFAAdvanceLoc  uint8 = 0x40
	dwCFAOffset      uint8 = 0x80
	dwCFAAdvanceLoc1 uint8 = 0x02
	dwCFAAdvanceLoc2 uint8 = 0x03
	dwCFAAdvanceLoc4 uint8 = 0x04
	dwCFARestore     uint8 = 0xc0
	dwCFADefCFA      uint8 = 0x0c
	dwCFADefCFAOff   uint8 = 0x0e
	dwCFARemember    uint8 = 0x0a
	dwCFARestoreSt   uint8 = 0x0b
)

// Records the point in the opcode stream where a PC advance was requested
// and the unadjusted code position it referred to.
type DelayedAdvancePC struct {
	StreamPos uint32
	PC        uint32
}

// Writes DWARF call-frame opcodes describing the emitted code. While code
// is still being assembled, PC advances are recorded as delayed entries
// rather than encoded, because branch promotion can still move every
// instruction; Finalize replays them against the final layout. The zero
// value is ready to use.
type DebugFrameWriter struct {
	stream  []byte
	delayed []DelayedAdvancePC

	// Once the stream is released for patching, advances encode directly.
	immediate bool
	currentPC uint32
}

// Moves the frame description forward to the given code position
func (w *DebugFrameWriter) AdvancePC(pc uint32) {
	if !w.immediate {
		w.delayed = append(w.delayed, DelayedAdvancePC{
			StreamPos: uint32(len(w.stream)),
			PC:        pc,
		})
		return
	}
	if pc < w.currentPC {
		panic(fmt.Sprintf("PC advance going backwards: %d to %d", w.currentPC, pc))
	}
	delta := pc - w.currentPC
	w.currentPC = pc
	switch {
	case delta == 0:
	case delta < 0x40:
		w.stream = append(w.stream, dwCFAAdvanceLoc|uint8(delta))
	case delta < 0x100:
		w.stream = append(w.stream, dwCFAAdvanceLoc1, uint8(delta))
	case delta < 0x10000:
		w.stream = append(w.stream, dwCFAAdvanceLoc2, uint8(delta), uint8(delta>>8))
	default:
		w.stream = append(w.stream,
			dwCFAAdvanceLoc4, uint8(delta), uint8(delta>>8), uint8(delta>>16), uint8(delta>>24))
	}
}

// Declares the CFA as a register plus offset
func (w *DebugFrameWriter) DefCFA(reg uint32, offset uint32) {
	w.stream = append(w.stream, dwCFADefCFA)
	w.stream = appendULEB128(w.stream, reg)
	w.stream = appendULEB128(w.stream, offset)
}

// Changes the offset of the current CFA register
func (w *DebugFrameWriter) DefCFAOffset(offset uint32) {
	w.stream = append(w.stream, dwCFADefCFAOff)
	w.stream = appendULEB128(w.stream, offset)
}

// Records that a register is saved at an offset from the CFA
func (w *DebugFrameWriter) OffsetReg(reg uint32, offset uint32) {
	if reg >= 0x40 {
		panic("register number does not fit the opcode")
	}
	w.stream = append(w.stream, dwCFAOffset|uint8(reg))
	w.stream = appendULEB128(w.stream, offset)
}

// Records that a register follows its rule from the CIE again
func (w *DebugFrameWriter) RestoreReg(reg uint32) {
	if reg >= 0x40 {
		panic("register number does not fit the opcode")
	}
	w.stream = append(w.stream, dwCFARestore|uint8(reg))
}

// Pushes the current frame state
func (w *DebugFrameWriter) RememberState() {
	w.stream = append(w.stream, dwCFARemember)
}

// Pops the most recently remembered frame state
func (w *DebugFrameWriter) RestoreState() {
	w.stream = append(w.stream, dwCFARestoreSt)
}

// Appends already encoded opcodes verbatim
func (w *DebugFrameWriter) AppendRaw(data []byte) {
	w.stream = append(w.stream, data...)
}

// Returns the number of PC advances waiting for final positions
func (w *DebugFrameWriter) NumberOfDelayedAdvancePCs() int {
	return len(w.delayed)
}

// Hands out the collected stream and delayed advances, and resets the
// writer into immediate mode for the patched replay.
func (w *DebugFrameWriter) ReleaseStreamAndDelayedAdvancePCs() ([]byte, []DelayedAdvancePC) {
	stream, delayed := w.stream, w.delayed
	// Not every advance fits a one-byte opcode; leave some headroom.
	w.stream = make([]byte, 0, len(stream)+len(delayed)+16)
	w.delayed = nil
	w.immediate = true
	w.currentPC = 0
	return stream, delayed
}

// Returns the encoded opcode stream
func (w *DebugFrameWriter) Bytes() []byte {
	return w.stream
}

func appendULEB128(data []byte, value uint32) []byte {
	for {
		part := uint8(value & 0x7f)
		value >>= 7
		if value != 0 {
			part |= 0x80
		}
		data = append(data, part)
		if value == 0 {
			return data
		}
	}
}
