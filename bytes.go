package membuf

import (
	"encoding/binary"
	"fmt"

	"github.com/fagongzi/util/hack"
)

// Fixed-width accessors over a byte buffer, for container code that
// stores scalars and strings inside raw memory. All values use big
// order.

// ReadUint16At read uint16 value at offset
func ReadUint16At(b Buf[byte], offset int) uint16 {
	return binary.BigEndian.Uint16(byteRange(b, offset, 2))
}

// WriteUint16At write uint16 value at offset
func WriteUint16At(b Buf[byte], offset int, v uint16) {
	binary.BigEndian.PutUint16(byteRange(b, offset, 2), v)
}

// ReadUint32At read uint32 value at offset
func ReadUint32At(b Buf[byte], offset int) uint32 {
	return binary.BigEndian.Uint32(byteRange(b, offset, 4))
}

// WriteUint32At write uint32 value at offset
func WriteUint32At(b Buf[byte], offset int, v uint32) {
	binary.BigEndian.PutUint32(byteRange(b, offset, 4), v)
}

// ReadUint64At read uint64 value at offset
func ReadUint64At(b Buf[byte], offset int) uint64 {
	return binary.BigEndian.Uint64(byteRange(b, offset, 8))
}

// WriteUint64At write uint64 value at offset
func WriteUint64At(b Buf[byte], offset int, v uint64) {
	binary.BigEndian.PutUint64(byteRange(b, offset, 8), v)
}

// WriteStringAt write the bytes of v at offset without copying v
func WriteStringAt(b Buf[byte], offset int, v string) {
	copy(byteRange(b, offset, len(v)), hack.StringToSlice(v))
}

// ReadStringAt read n bytes at offset as a string. The string aliases
// the buffer and is invalidated by Reallocate and Deallocate.
func ReadStringAt(b Buf[byte], offset, n int) string {
	return hack.SliceToString(byteRange(b, offset, n))
}

func byteRange(b Buf[byte], offset, n int) []byte {
	if offset < 0 || n < 0 || offset+n > b.cap {
		panic(fmt.Sprintf("membuf: invalid range [%d, %d), capacity %d",
			offset, offset+n, b.cap))
	}
	return b.Slice()[offset : offset+n]
}
