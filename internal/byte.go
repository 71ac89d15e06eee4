package internal

import (
	"encoding/binary"
)

// OffsetSize is the encoded width of a checkpoint offset in binary stores.
const OffsetSize = 8

func BytesToUInt64LittleEndian(b [8]byte) uint64 {
	return binary.LittleEndian.Uint64(b[:])
}

func UInt64ToBytesLittleEndian(i uint64) [8]byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], i)
	return b
}

// DecodeOffset reads a little-endian offset from a stored value. ok is false
// when the value has the wrong width.
func DecodeOffset(val []byte) (offset uint64, ok bool) {
	if len(val) != OffsetSize {
		return 0, false
	}
	var b [8]byte
	copy(b[:], val)
	return BytesToUInt64LittleEndian(b), true
}

// EncodeOffset is the inverse of DecodeOffset.
func EncodeOffset(offset uint64) []byte {
	b := UInt64ToBytesLittleEndian(offset)
	return b[:]
}
