package utils

import (
	"unsafe"

	"golang.org/x/exp/constraints"
)

const BitsPerByte = 8

// Returns the size in bits of n bytes
func Bits(bytes int) int {
	return bytes * 8
}

// Returns the size in bytes of values of a type
func Sizeof[T any]() int {
	var val T
	return int(unsafe.Sizeof(val))
}

// Returns the size in bits of values of a type
func SizeofBits[T any]() int {
	return Bits(Sizeof[T]())
}

// Returns an all ones bitmask of n bits of the given unsigned integer type
func AllOnes[T constraints.Unsigned](bits int) T {
	return (T(1) << bits) - T(1)
}

// Reports whether the value is representable as a two's-complement signed
// integer of the given bit width
func IsInt[T constraints.Signed](bits int, value T) bool {
	limit := int64(1) << (bits - 1)
	return int64(value) >= -limit && int64(value) < limit
}

// Reports whether the value is representable as an unsigned integer of the
// given bit width
func IsUint[T constraints.Integer](bits int, value T) bool {
	return int64(value) >= 0 && int64(value) < int64(1)<<bits
}

// Sign-extends the lowest n bits of a value to a full-width signed integer
func SignExtend(bits int, value uint32) int32 {
	shift := 32 - bits
	return int32(value<<shift) >> shift
}

// Sign-extends the lowest n bits of a value to a 64-bit signed integer
func SignExtend64(bits int, value uint64) int64 {
	shift := 64 - bits
	return int64(value<<shift) >> shift
}

// Reports whether a value is a multiple of the (power of two) alignment
func IsAligned[T constraints.Integer](value T, alignment T) bool {
	return value&(alignment-1) == 0
}

// Rounds a value down to a multiple of the (power of two) alignment
func RoundDown[T constraints.Integer](value T, alignment T) T {
	return value &^ (alignment - 1)
}

// Rounds a value up to a multiple of the (power of two) alignment
func RoundUp[T constraints.Integer](value T, alignment T) T {
	return RoundDown(value+alignment-1, alignment)
}

// Implements a read/write view over an unsigned interger, allowing manipullating individual bits easily
type BitView[T constraints.Unsigned] struct {
	Bits *T
}

// Returns the viewed unsigned int value
func (v BitView[T]) Value() T {
	return *v.Bits
}

// Returns the size in bits of the viewed value
func (v BitView[T]) SizeofBits() int {
	return SizeofBits[T]()
}

// Extracts a range of bits given a first bit and a width
func (v BitView[T]) Read(bit int, width int) T {
	mask := AllOnes[T](width)
	return (v.Value() >> bit) & mask
}

// Copies a value into a range of bits, given the start and width of the range.
// All most significant bits of the value not fitting into the destination range are ignored.
func (v BitView[T]) Write(value T, bit int, width int) {
	clearedValue := value & AllOnes[T](width)
	*v.Bits = (*v.Bits) | (clearedValue << bit)
}

// Sets all bits in a range to 1
func (v BitView[T]) SetBits(bit int, width int) {
	v.Write(AllOnes[T](width), bit, width)
}

// Sets all bits in a range to 0
func (v BitView[T]) ClearBits(bit int, width int) {
	v.Write(T(0), bit, width)
}

// Sets bit to 1
func (v BitView[T]) SetBit(bit int) {
	v.SetBits(bit, 1)
}

// Sets bit to 0
func (v BitView[T]) ClearBit(bit int) {
	v.ClearBits(bit, 1)
}

// Creates a bit view out of an unsigned int
func CreateBitView[T constraints.Unsigned](value *T) BitView[T] {
	return BitView[T]{
		Bits: value,
	}
}
