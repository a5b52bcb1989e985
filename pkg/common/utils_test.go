// Package common provides tests for shared byte/word utilities
package common

import (
	"testing"
)

func TestWordsFromBytes(t *testing.T) {
	data := []byte{0x78, 0x56, 0x34, 0x12, 0xFF, 0x00, 0x00, 0xE5}
	words, err := WordsFromBytes(data)
	if err != nil {
		t.Fatalf("WordsFromBytes() failed: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("decoded %d words, want 2", len(words))
	}
	if words[0] != 0x12345678 {
		t.Errorf("words[0] = 0x%08X, want 0x12345678", words[0])
	}
	if words[1] != 0xE50000FF {
		t.Errorf("words[1] = 0x%08X, want 0xE50000FF", words[1])
	}
}

func TestWordsFromBytes_Unaligned(t *testing.T) {
	if _, err := WordsFromBytes([]byte{1, 2, 3}); err == nil {
		t.Error("WordsFromBytes() should reject a length that is not a multiple of 4")
	}
}

func TestBytesFromWords_RoundTrip(t *testing.T) {
	words := []uint32{0xDEADBEEF, 0x00000001}
	back, err := WordsFromBytes(BytesFromWords(words))
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if len(back) != len(words) || back[0] != words[0] || back[1] != words[1] {
		t.Errorf("round trip = %v, want %v", back, words)
	}
}

func TestReadUint32LE(t *testing.T) {
	data := []byte{0, 0, 0, 0, 0x01, 0x00, 0x00, 0x05}
	value, ok := ReadUint32LE(data, 4)
	if !ok || value != 0x05000001 {
		t.Errorf("ReadUint32LE(4) = 0x%08X/%v, want 0x05000001/true", value, ok)
	}
	if _, ok := ReadUint32LE(data, 6); ok {
		t.Error("ReadUint32LE() should fail with fewer than 4 bytes remaining")
	}
	if _, ok := ReadUint32LE(data, -1); ok {
		t.Error("ReadUint32LE() should fail for a negative offset")
	}
}
