package mc

import "encoding/binary"

// Represents a constant placed in a literal pool after the code. Loads refer
// to it through its label, bound when the pool is laid out during Finalize.
// Only 4 and 8 byte literals are supported.
type Literal struct {
	data  []byte
	label Label
}

func newLiteral(size uint32, data []byte) *Literal {
	if size != 4 && size != 8 {
		panic("literal size must be 4 or 8 bytes")
	}
	literal := &Literal{data: make([]byte, size)}
	copy(literal.data, data)
	return literal
}

// Returns the size of the literal in bytes
func (l *Literal) Size() uint32 {
	return uint32(len(l.data))
}

// Returns the raw little-endian bytes of the literal
func (l *Literal) Data() []byte {
	return l.data
}

// Returns the label marking the pool slot of the literal
func (l *Literal) Label() *Label {
	return &l.label
}

// Represents a table of code positions, emitted as 32-bit offsets relative
// to the start of the table. The table's own label is bound when space is
// reserved for it during Finalize.
type JumpTable struct {
	targets []*Label
	label   Label
}

func newJumpTable(targets []*Label) *JumpTable {
	return &JumpTable{targets: targets}
}

// Returns the size of the table in bytes
func (t *JumpTable) Size() uint32 {
	return uint32(len(t.targets)) * 4
}

// Returns the labels the table entries point at
func (t *JumpTable) Targets() []*Label {
	return t.targets
}

// Returns the label marking the start of the table
func (t *JumpTable) Label() *Label {
	return &t.label
}

func literalBytes32(value uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, value)
}

func literalBytes64(value uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, value)
}
