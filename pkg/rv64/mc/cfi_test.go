package mc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Puts a writer into immediate mode, as Finalize does before the replay
func immediateWriter() *DebugFrameWriter {
	w := &DebugFrameWriter{}
	w.ReleaseStreamAndDelayedAdvancePCs()
	return w
}

func TestDebugFrameWriter_DelaysAdvancesByDefault(t *testing.T) {
	w := &DebugFrameWriter{}

	w.DefCFA(2, 0)
	w.AdvancePC(4)
	w.DefCFAOffset(16)
	w.AdvancePC(8)

	// Nothing about the advances reaches the stream yet.
	assert.Equal(t, []byte{dwCFADefCFA, 0x02, 0x00, dwCFADefCFAOff, 0x10}, w.Bytes())
	require.Equal(t, 2, w.NumberOfDelayedAdvancePCs())

	stream, delayed := w.ReleaseStreamAndDelayedAdvancePCs()
	assert.Len(t, stream, 5)
	require.Len(t, delayed, 2)
	assert.Equal(t, DelayedAdvancePC{StreamPos: 3, PC: 4}, delayed[0])
	assert.Equal(t, DelayedAdvancePC{StreamPos: 5, PC: 8}, delayed[1])
	assert.Empty(t, w.Bytes())
}

func TestDebugFrameWriter_AdvanceEncodings(t *testing.T) {
	w := immediateWriter()

	w.AdvancePC(0x3f)              // fits the opcode itself
	w.AdvancePC(0x3f + 0x40)       // one-byte operand
	w.AdvancePC(0x7f + 0x100)      // two-byte operand
	w.AdvancePC(0x17f + 0x10000)   // four-byte operand

	assert.Equal(t, []byte{
		dwCFAAdvanceLoc | 0x3f,
		dwCFAAdvanceLoc1, 0x40,
		dwCFAAdvanceLoc2, 0x00, 0x01,
		dwCFAAdvanceLoc4, 0x00, 0x00, 0x01, 0x00,
	}, w.Bytes())
}

func TestDebugFrameWriter_ZeroAdvanceEmitsNothing(t *testing.T) {
	w := immediateWriter()
	w.AdvancePC(8)
	w.AdvancePC(8)
	assert.Equal(t, []byte{dwCFAAdvanceLoc | 8}, w.Bytes())
}

func TestDebugFrameWriter_BackwardsAdvancePanics(t *testing.T) {
	w := immediateWriter()
	w.AdvancePC(8)
	require.Panics(t, func() { w.AdvancePC(4) })
}

func TestDebugFrameWriter_RegisterRules(t *testing.T) {
	w := &DebugFrameWriter{}

	w.OffsetReg(8, 2)
	w.RestoreReg(8)
	w.RememberState()
	w.RestoreState()

	assert.Equal(t, []byte{
		dwCFAOffset | 8, 0x02,
		dwCFARestore | 8,
		dwCFARemember,
		dwCFARestoreSt,
	}, w.Bytes())

	require.Panics(t, func() { w.OffsetReg(64, 0) })
	require.Panics(t, func() { w.RestoreReg(64) })
}

func TestAppendULEB128(t *testing.T) {
	tests := []struct {
		value uint32
		want  []byte
	}{
		{0, []byte{0x00}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x80, 0x01}},
		{128, []byte{0x80, 0x01}},
		{0x3fff, []byte{0xff, 0x7f}},
		{0x4000, []byte{0x80, 0x80, 0x01}},
		{0xffffffff, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, appendULEB128(nil, test.value), "value %#x", test.value)
	}
}
