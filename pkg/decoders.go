// Package pkg provides functionality for decoding PSX GPU capture dumps.
// This file contains the capture container reader and the GP0 command
// stream decoder.
package pkg

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hansbonini/psxgputools/pkg/common"
	"github.com/hansbonini/psxgputools/pkg/psx"
)

// Sentinel error kinds surfaced by the decoder
var (
	// ErrInvalidHeader reports a capture that does not start with the
	// PSXGPUDUMP magic tag.
	ErrInvalidHeader = errors.New("invalid PSXGPU dump header")
	// ErrVRAMNotFound reports a capture with no full-frame VRAM preload.
	ErrVRAMNotFound = errors.New("VRAM not found in dump")
	// ErrNoFrames reports a capture with no frame boundaries, or a
	// requested frame past the last boundary.
	ErrNoFrames = errors.New("no frames found")
	// ErrDecompression reports a capture envelope that could not be
	// decompressed by either the library or the external tool.
	ErrDecompression = errors.New("capture decompression failed")
)

// GPUDumpDecoder implements the CaptureDecoder interface
type GPUDumpDecoder struct{}

// NewGPUDumpDecoder creates a new capture decoder instance
func NewGPUDumpDecoder() *GPUDumpDecoder {
	return &GPUDumpDecoder{}
}

// ValidateHeader checks the capture magic tag and returns the offset of
// the first packet. Header corruption is fatal: no partial output is
// produced from a capture that fails this check.
func (d *GPUDumpDecoder) ValidateHeader(data []byte) (int, error) {
	if len(data) < psx.DumpHeaderSize || string(data[:len(psx.DumpMagic)]) != psx.DumpMagic {
		return 0, fmt.Errorf("%w: expected %q magic tag", ErrInvalidHeader, psx.DumpMagic)
	}
	return psx.DumpHeaderSize, nil
}

// NextPacket reads one packet at pos. It returns ok=false when fewer
// than 4 bytes remain or the declared payload would overrun the buffer;
// both are normal end-of-stream for a live capture, never an error.
func (d *GPUDumpDecoder) NextPacket(data []byte, pos int) (*Packet, int, bool) {
	if pos+psx.PacketHeaderSize > len(data) {
		return nil, pos, false
	}
	hdr := binary.LittleEndian.Uint32(data[pos:])
	pos += psx.PacketHeaderSize
	payloadSize := int(hdr&0xFFFFFF) * 4
	ptype := byte(hdr >> 24)
	if pos+payloadSize > len(data) {
		return nil, pos, false
	}
	pkt := &Packet{
		Type:    ptype,
		Payload: data[pos : pos+payloadSize],
		End:     pos + payloadSize,
	}
	return pkt, pkt.End, true
}

// GP0OperandCount returns how many parameter words follow a GP0 command
// word, or -1 for polylines whose length is found by terminator scan.
func GP0OperandCount(cmd byte) int {
	switch {
	case cmd <= 0x1F:
		return 0
	case cmd <= 0x3F: // polygons
		gouraud := cmd&psx.PolyBitGouraud != 0
		textured := cmd&psx.PolyBitTextured != 0
		verts := 3
		if cmd&psx.PolyBitQuad != 0 {
			verts = 4
		}
		switch {
		case !gouraud && !textured:
			return verts
		case !gouraud && textured:
			return verts * 2
		case gouraud && !textured:
			return verts*2 - 1
		default:
			return verts*3 - 1
		}
	case cmd <= 0x5F: // lines
		if cmd&psx.LineBitPolyline != 0 {
			return -1
		}
		if cmd&psx.LineBitShaded != 0 {
			return 3
		}
		return 2
	case cmd <= 0x7F: // rectangles
		params := 1
		if (cmd>>3)&3 == 0 { // variable size carries a W/H word
			params++
		}
		if cmd&psx.RectBitTextured != 0 {
			params++
		}
		return params
	case cmd >= 0xE0:
		return 0 // single-word environment commands
	}
	return 0
}

// DecodeGP0Stream segments a flat GP0 word stream into discrete typed
// operations. The stream is consumed strictly left to right; a
// truncated operation is recovered locally with an Incomplete marker
// consuming one word, so the sum of consumed words always equals the
// stream length.
func (d *GPUDumpDecoder) DecodeGP0Stream(words []uint32) []GP0Op {
	var ops []GP0Op
	i := 0
	for i < len(words) {
		word := words[i]
		cmd := byte(word >> 24)
		var op GP0Op
		switch {
		case cmd >= 0xE0:
			op = GP0Environment{Command: cmd, Word: word}
		case cmd <= 0x1F:
			op = GP0Nop{Word: word}
		case cmd <= 0x3F:
			op = d.decodePolygon(words, i)
		case cmd <= 0x5F:
			op = d.decodeLine(words, i)
		case cmd <= 0x7F:
			op = d.decodeRectangle(words, i)
		case cmd == psx.GP0OpcodeVRAMWrite:
			op = d.decodeVRAMWrite(words, i)
		default:
			op = GP0Unknown{Word: word}
		}
		ops = append(ops, op)
		i += op.ConsumedWords()
	}
	common.LogDebug(common.DebugGP0StreamLength, len(words), len(ops))
	return ops
}

// decodePolygon decodes one 0x20-0x3F polygon command at words[i].
func (d *GPUDumpDecoder) decodePolygon(words []uint32, i int) GP0Polygon {
	cmd := byte(words[i] >> 24)
	op := GP0Polygon{
		Command:  cmd,
		Quad:     cmd&psx.PolyBitQuad != 0,
		Gouraud:  cmd&psx.PolyBitGouraud != 0,
		Textured: cmd&psx.PolyBitTextured != 0,
	}
	operands := GP0OperandCount(cmd)
	if i+1+operands > len(words) {
		common.LogWarn(common.WarnIncompleteOp, cmd)
		op.Incomplete = true
		op.Consumed = 1
		return op
	}
	chunk := words[i : i+1+operands]
	verts := 3
	if op.Quad {
		verts = 4
	}
	// The command word carries the first (or only) color in its low
	// 24 bits as 8-bit channels reduced from 5-bit source values.
	r := psx.Expand5To8(chunk[0] >> 0)
	g := psx.Expand5To8(chunk[0] >> 5)
	b := psx.Expand5To8(chunk[0] >> 10)
	idx := 1
	for j := 0; j < verts; j++ {
		if j > 0 && op.Gouraud {
			r = psx.Expand5To8(chunk[idx] >> 0)
			g = psx.Expand5To8(chunk[idx] >> 5)
			b = psx.Expand5To8(chunk[idx] >> 10)
			idx++
		}
		if idx >= len(chunk) {
			break
		}
		v := chunk[idx]
		op.Vertices = append(op.Vertices, Vertex{
			X: psx.SignExtend11(v & 0x7FF),
			Y: psx.SignExtend11((v >> 16) & 0x7FF),
			R: r, G: g, B: b,
		})
		idx++
		if op.Textured {
			idx++ // UV word, not decoded
		}
	}
	op.Consumed = len(chunk)
	return op
}

// decodeLine decodes one 0x40-0x5F line command at words[i]. Polylines
// are delimited by a terminator word rather than a fixed length.
func (d *GPUDumpDecoder) decodeLine(words []uint32, i int) GP0Line {
	cmd := byte(words[i] >> 24)
	op := GP0Line{
		Command:  cmd,
		Shaded:   cmd&psx.LineBitShaded != 0,
		Polyline: cmd&psx.LineBitPolyline != 0,
	}
	operands := GP0OperandCount(cmd)
	if operands < 0 {
		// Scan forward for the terminator, stepping over one color
		// word per vertex when shaded.
		step := 1
		if op.Shaded {
			step = 2
		}
		j := i + 1
		for j < len(words) {
			if words[j]&psx.PolylineTerminatorMask == psx.PolylineTerminatorValue {
				break
			}
			j += step
		}
		operands = j - i - 1
	}
	if i+1+operands > len(words) {
		common.LogWarn(common.WarnIncompleteOp, cmd)
		op.Incomplete = true
		op.Consumed = 1
		return op
	}
	op.Consumed = 1 + operands
	return op
}

// decodeRectangle decodes one 0x60-0x7F rectangle command at words[i].
func (d *GPUDumpDecoder) decodeRectangle(words []uint32, i int) GP0Rectangle {
	cmd := byte(words[i] >> 24)
	op := GP0Rectangle{Command: cmd}
	operands := GP0OperandCount(cmd)
	if i+1+operands > len(words) {
		common.LogWarn(common.WarnIncompleteOp, cmd)
		op.Incomplete = true
		op.Consumed = 1
		return op
	}
	op.Consumed = 1 + operands
	return op
}

// decodeVRAMWrite decodes one 0xA0 CPU-to-VRAM transfer at words[i].
// A zero width or height wraps to the full VRAM extent, which is how
// the full-framebuffer preload is encoded. A transfer cut off by the
// end of the stream consumes whatever remains and is marked incomplete.
func (d *GPUDumpDecoder) decodeVRAMWrite(words []uint32, i int) GP0VRAMWrite {
	if i+3 > len(words) {
		common.LogWarn(common.WarnIncompleteOp, psx.GP0OpcodeVRAMWrite)
		return GP0VRAMWrite{Consumed: 1, Incomplete: true}
	}
	coord, size := words[i+1], words[i+2]
	op := GP0VRAMWrite{
		X:      int(coord & 0xFFFF),
		Y:      int(coord >> 16),
		Width:  int(size & 0xFFFF),
		Height: int(size >> 16),
	}
	if op.Width == 0 {
		op.Width = psx.VRAMWidth
	}
	if op.Height == 0 {
		op.Height = psx.VRAMHeight
	}
	total := 3 + (op.Pixels()+1)/2
	if remaining := len(words) - i; total > remaining {
		op.Consumed = remaining
		op.Incomplete = true
		return op
	}
	op.Consumed = total
	return op
}

// IsVRAMPreload reports whether a GP0 word stream starts with the
// zero-origin full-framebuffer upload DuckStation emits before tracing.
func IsVRAMPreload(words []uint32) bool {
	return len(words) >= 3 &&
		byte(words[0]>>24) == psx.GP0OpcodeVRAMWrite &&
		words[1] == 0 && words[2] == 0
}
