// This file contains the capture container encoder, the mirror of the
// reader in decoders.go. It is used to synthesize capture streams for
// tests and to re-emit filtered captures.
package pkg

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hansbonini/psxgputools/pkg/common"
	"github.com/hansbonini/psxgputools/pkg/psx"
)

// GPUDumpEncoder implements the CaptureEncoder interface
type GPUDumpEncoder struct{}

// NewGPUDumpEncoder creates a new capture encoder instance
func NewGPUDumpEncoder() *GPUDumpEncoder {
	return &GPUDumpEncoder{}
}

// EncodePacketHeader packs a packet type and payload word count into
// the 32-bit little-endian packet header word.
func EncodePacketHeader(ptype byte, wordCount uint32) uint32 {
	return uint32(ptype)<<24 | (wordCount & 0xFFFFFF)
}

// WriteHeader writes the 14-byte capture header: the magic tag followed
// by the "v1" version bytes and two reserved zero bytes.
func (e *GPUDumpEncoder) WriteHeader(w io.Writer) error {
	header := make([]byte, 0, psx.DumpHeaderSize)
	header = append(header, psx.DumpMagic...)
	header = append(header, 'v', '1', 0, 0)
	if _, err := w.Write(header); err != nil {
		return common.FormatError(common.ErrFailedToWritePacket, err)
	}
	return nil
}

// WritePacket writes one packet record: header word plus payload.
// The payload length must be a multiple of 4 bytes and fit the 24-bit
// word count field.
func (e *GPUDumpEncoder) WritePacket(w io.Writer, ptype byte, payload []byte) error {
	if len(payload)%4 != 0 {
		return fmt.Errorf("%s: got %d bytes", common.ErrPayloadNotWordAligned, len(payload))
	}
	wordCount, err := common.SafeIntToUint24(len(payload) / 4)
	if err != nil {
		return common.FormatError(common.ErrFailedToWritePacket, err)
	}
	if err := binary.Write(w, binary.LittleEndian, EncodePacketHeader(ptype, wordCount)); err != nil {
		return common.FormatError(common.ErrFailedToWritePacket, err)
	}
	if _, err := w.Write(payload); err != nil {
		return common.FormatError(common.ErrFailedToWritePacket, err)
	}
	return nil
}

// WriteGP0 writes one GP0Data packet from a word stream.
func (e *GPUDumpEncoder) WriteGP0(w io.Writer, words []uint32) error {
	return e.WritePacket(w, psx.PacketGP0Data, common.BytesFromWords(words))
}

// WriteEvent writes a zero-payload event packet such as TraceBegin or
// VSync.
func (e *GPUDumpEncoder) WriteEvent(w io.Writer, ptype byte) error {
	return e.WritePacket(w, ptype, nil)
}
