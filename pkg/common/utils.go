package common

import (
	"encoding/binary"
	"fmt"
)

// WordsFromBytes converts a little-endian byte sequence into 32-bit
// words. The length of data must be a multiple of 4.
func WordsFromBytes(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("byte length %d is not a multiple of 4", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return words, nil
}

// BytesFromWords converts 32-bit words into a little-endian byte sequence.
func BytesFromWords(words []uint32) []byte {
	data := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(data[i*4:], w)
	}
	return data
}

// ReadUint32LE reads a uint32 in little-endian format at the given
// offset. Returns false when fewer than 4 bytes remain.
func ReadUint32LE(data []byte, pos int) (uint32, bool) {
	if pos < 0 || pos+4 > len(data) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(data[pos:]), true
}
