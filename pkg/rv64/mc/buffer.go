package mc

import (
	"encoding/binary"
	"fmt"
)

// Growable byte buffer holding the emitted machine code. Words are stored
// little-endian. Random access is bounds-checked; out of range offsets are
// caller bugs and panic.
type Buffer struct {
	data []byte
}

// Returns the number of bytes emitted so far
func (b *Buffer) Size() uint32 {
	return uint32(len(b.data))
}

// Returns the number of bytes the buffer can hold without reallocating
func (b *Buffer) Capacity() uint32 {
	return uint32(cap(b.data))
}

// Grows the backing storage to hold at least the given number of bytes.
// Does not change Size.
func (b *Buffer) EnsureCapacity(capacity uint32) {
	if capacity <= b.Capacity() {
		return
	}
	grown := make([]byte, len(b.data), capacity)
	copy(grown, b.data)
	b.data = grown
}

// Appends a 32-bit word
func (b *Buffer) Emit32(value uint32) {
	b.data = binary.LittleEndian.AppendUint32(b.data, value)
}

// Appends a single byte
func (b *Buffer) Emit8(value uint8) {
	b.data = append(b.data, value)
}

// Appends raw bytes
func (b *Buffer) EmitBytes(data []byte) {
	b.data = append(b.data, data...)
}

// Reads the 32-bit word at the given byte offset
func (b *Buffer) Load32(offset uint32) uint32 {
	b.checkRange(offset, 4)
	return binary.LittleEndian.Uint32(b.data[offset:])
}

// Overwrites the 32-bit word at the given byte offset
func (b *Buffer) Store32(offset uint32, value uint32) {
	b.checkRange(offset, 4)
	binary.LittleEndian.PutUint32(b.data[offset:], value)
}

// Reads the byte at the given offset
func (b *Buffer) Load8(offset uint32) uint8 {
	b.checkRange(offset, 1)
	return b.data[offset]
}

// Overwrites the byte at the given offset
func (b *Buffer) Store8(offset uint32, value uint8) {
	b.checkRange(offset, 1)
	b.data[offset] = value
}

// Changes the buffer size. Growing appends zero bytes.
func (b *Buffer) Resize(size uint32) {
	if size <= b.Size() {
		b.data = b.data[:size]
		return
	}
	b.EnsureCapacity(size)
	for b.Size() < size {
		b.data = append(b.data, 0)
	}
}

// Copies size bytes from offset src to offset dst within the buffer.
// The ranges may overlap.
func (b *Buffer) Move(dst uint32, src uint32, size uint32) {
	b.checkRange(dst, size)
	b.checkRange(src, size)
	copy(b.data[dst:dst+size], b.data[src:src+size])
}

// Returns the emitted bytes. The slice aliases the buffer storage.
func (b *Buffer) Bytes() []byte {
	return b.data
}

func (b *Buffer) checkRange(offset uint32, size uint32) {
	if uint64(offset)+uint64(size) > uint64(len(b.data)) {
		panic(fmt.Sprintf("buffer access out of range: offset %d size %d buffer size %d", offset, size, len(b.data)))
	}
}
