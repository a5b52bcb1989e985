// Package pkg provides tests for the capture reader and GP0 decoder
package pkg

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hansbonini/psxgputools/pkg/psx"
)

// buildCapture assembles a synthetic capture from typed packets.
func buildCapture(t *testing.T, build func(e *GPUDumpEncoder, w *bytes.Buffer)) []byte {
	t.Helper()
	encoder := NewGPUDumpEncoder()
	var buffer bytes.Buffer
	if err := encoder.WriteHeader(&buffer); err != nil {
		t.Fatalf("WriteHeader() failed: %v", err)
	}
	build(encoder, &buffer)
	return buffer.Bytes()
}

func TestNewGPUDumpDecoder(t *testing.T) {
	decoder := NewGPUDumpDecoder()
	if decoder == nil {
		t.Error("NewGPUDumpDecoder() returned nil")
	}
}

func TestValidateHeader_Valid(t *testing.T) {
	decoder := NewGPUDumpDecoder()
	data := buildCapture(t, func(e *GPUDumpEncoder, w *bytes.Buffer) {})

	pos, err := decoder.ValidateHeader(data)
	if err != nil {
		t.Fatalf("ValidateHeader() failed: %v", err)
	}
	if pos != psx.DumpHeaderSize {
		t.Errorf("first packet offset = %d, want %d", pos, psx.DumpHeaderSize)
	}
}

func TestValidateHeader_InvalidMagic(t *testing.T) {
	decoder := NewGPUDumpDecoder()
	data := []byte("NOTAGPUDMPv1\x00\x00")

	_, err := decoder.ValidateHeader(data)
	if !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("ValidateHeader() error = %v, want ErrInvalidHeader", err)
	}
}

func TestValidateHeader_ShortBuffer(t *testing.T) {
	decoder := NewGPUDumpDecoder()

	_, err := decoder.ValidateHeader([]byte("PSXGPU"))
	if !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("ValidateHeader() error = %v, want ErrInvalidHeader", err)
	}
}

func TestEncodePacketHeader_RoundTrip(t *testing.T) {
	header := EncodePacketHeader(psx.PacketTraceBegin, 0x123456)
	if got := header & 0xFFFFFF; got != 0x123456 {
		t.Errorf("word count field = 0x%06X, want 0x123456", got)
	}
	if got := byte(header >> 24); got != psx.PacketTraceBegin {
		t.Errorf("type field = 0x%02X, want 0x%02X", got, psx.PacketTraceBegin)
	}
}

func TestNextPacket_RoundTrip(t *testing.T) {
	decoder := NewGPUDumpDecoder()
	words := []uint32{0xE1000000, 0xE3000000}
	data := buildCapture(t, func(e *GPUDumpEncoder, w *bytes.Buffer) {
		if err := e.WriteEvent(w, psx.PacketTraceBegin); err != nil {
			t.Fatalf("WriteEvent() failed: %v", err)
		}
		if err := e.WriteGP0(w, words); err != nil {
			t.Fatalf("WriteGP0() failed: %v", err)
		}
	})

	pkt, pos, ok := decoder.NextPacket(data, psx.DumpHeaderSize)
	if !ok {
		t.Fatal("NextPacket() reported end of stream at first packet")
	}
	if pkt.Type != psx.PacketTraceBegin || pkt.WordCount() != 0 {
		t.Errorf("first packet = type 0x%02X len %d, want TraceBegin len 0", pkt.Type, pkt.WordCount())
	}

	pkt, pos, ok = decoder.NextPacket(data, pos)
	if !ok {
		t.Fatal("NextPacket() reported end of stream at second packet")
	}
	if pkt.Type != psx.PacketGP0Data {
		t.Errorf("second packet type = 0x%02X, want GP0Data", pkt.Type)
	}
	if diff := cmp.Diff(words, pkt.Words()); diff != "" {
		t.Errorf("payload words mismatch (-want +got):\n%s", diff)
	}
	if pkt.End != len(data) {
		t.Errorf("packet end offset = %d, want %d", pkt.End, len(data))
	}

	if _, _, ok := decoder.NextPacket(data, pos); ok {
		t.Error("NextPacket() should report end of stream after last packet")
	}
}

func TestNextPacket_TruncatedHeader(t *testing.T) {
	decoder := NewGPUDumpDecoder()
	data := buildCapture(t, func(e *GPUDumpEncoder, w *bytes.Buffer) {
		w.Write([]byte{0x01, 0x00}) // half a packet header
	})

	if _, _, ok := decoder.NextPacket(data, psx.DumpHeaderSize); ok {
		t.Error("NextPacket() should treat a truncated header as end of stream")
	}
}

func TestNextPacket_TruncatedPayload(t *testing.T) {
	decoder := NewGPUDumpDecoder()
	data := buildCapture(t, func(e *GPUDumpEncoder, w *bytes.Buffer) {
		// Header declares 4 words but only 1 follows
		w.Write([]byte{0x04, 0x00, 0x00, 0x00})
		w.Write([]byte{0xAA, 0xBB, 0xCC, 0xDD})
	})

	if _, _, ok := decoder.NextPacket(data, psx.DumpHeaderSize); ok {
		t.Error("NextPacket() should treat an overrunning payload as end of stream")
	}
}

func TestGP0OperandCount_Polygons(t *testing.T) {
	cases := []struct {
		cmd  byte
		want int
		name string
	}{
		{0x20, 3, "flat triangle"},
		{0x24, 6, "flat textured triangle"},
		{0x28, 4, "flat quad"},
		{0x2C, 8, "flat textured quad"},
		{0x30, 5, "gouraud triangle"},
		{0x34, 8, "gouraud textured triangle"},
		{0x38, 7, "gouraud quad"},
		{0x3C, 11, "gouraud textured quad"},
	}
	for _, c := range cases {
		if got := GP0OperandCount(c.cmd); got != c.want {
			t.Errorf("GP0OperandCount(0x%02X) [%s] = %d, want %d", c.cmd, c.name, got, c.want)
		}
	}
}

func TestGP0OperandCount_LinesAndRectangles(t *testing.T) {
	if got := GP0OperandCount(0x40); got != 2 {
		t.Errorf("GP0OperandCount(0x40) flat line = %d, want 2", got)
	}
	if got := GP0OperandCount(0x50); got != 3 {
		t.Errorf("GP0OperandCount(0x50) shaded line = %d, want 3", got)
	}
	if got := GP0OperandCount(0x48); got != -1 {
		t.Errorf("GP0OperandCount(0x48) polyline = %d, want -1", got)
	}
	if got := GP0OperandCount(0x60); got != 2 {
		t.Errorf("GP0OperandCount(0x60) variable rect = %d, want 2", got)
	}
	if got := GP0OperandCount(0x64); got != 3 {
		t.Errorf("GP0OperandCount(0x64) variable textured rect = %d, want 3", got)
	}
	if got := GP0OperandCount(0x68); got != 1 {
		t.Errorf("GP0OperandCount(0x68) fixed rect = %d, want 1", got)
	}
	if got := GP0OperandCount(0x7C); got != 2 {
		t.Errorf("GP0OperandCount(0x7C) fixed textured rect = %d, want 2", got)
	}
}

func TestDecodeGP0Stream_FlatTriangle(t *testing.T) {
	decoder := NewGPUDumpDecoder()
	// Color r=0x1F g=0x00 b=0x10, vertices (10,20), (100,-1), (-1024,5)
	words := []uint32{
		0x20000000 | (0x10 << 10) | 0x1F,
		0x0014000A,
		0x07FF0064,
		0x00050400,
	}

	ops := decoder.DecodeGP0Stream(words)
	if len(ops) != 1 {
		t.Fatalf("DecodeGP0Stream() produced %d ops, want 1", len(ops))
	}
	poly, ok := ops[0].(GP0Polygon)
	if !ok {
		t.Fatalf("op is %T, want GP0Polygon", ops[0])
	}
	if poly.ConsumedWords() != 4 {
		t.Errorf("consumed %d words, want 4", poly.ConsumedWords())
	}
	want := []Vertex{
		{X: 10, Y: 20, R: 0xFF, G: 0x00, B: 0x84},
		{X: 100, Y: -1, R: 0xFF, G: 0x00, B: 0x84},
		{X: -1024, Y: 5, R: 0xFF, G: 0x00, B: 0x84},
	}
	if diff := cmp.Diff(want, poly.Vertices); diff != "" {
		t.Errorf("vertices mismatch (-want +got):\n%s", diff)
	}
	if got := poly.String(); got != "GP0 TRI_FLAT v0=(10,20)#FF0084 v1=(100,-1)#FF0084 v2=(-1024,5)#FF0084" {
		t.Errorf("String() = %q", got)
	}
}

func TestDecodeGP0Stream_GouraudTexturedQuad(t *testing.T) {
	decoder := NewGPUDumpDecoder()
	// 1 command word + 11 operands: v0,uv0 then (color,vertex,uv) x3
	words := []uint32{
		0x3C00001F, // color0 red
		0x00000000, 0x00000000, // v0, uv0
		0x000003E0, 0x00010001, 0x00000000, // green v1, uv1
		0x00007C00, 0x00020002, 0x00000000, // blue v2, uv2
		0x0000001F, 0x00030003, 0x00000000, // red v3, uv3
	}

	ops := decoder.DecodeGP0Stream(words)
	if len(ops) != 1 {
		t.Fatalf("DecodeGP0Stream() produced %d ops, want 1", len(ops))
	}
	poly := ops[0].(GP0Polygon)
	if poly.ConsumedWords() != 12 {
		t.Errorf("consumed %d words, want 12", poly.ConsumedWords())
	}
	if poly.Name() != "QUAD_GOURAUD_TEX" {
		t.Errorf("Name() = %q, want QUAD_GOURAUD_TEX", poly.Name())
	}
	if len(poly.Vertices) != 4 {
		t.Fatalf("decoded %d vertices, want 4", len(poly.Vertices))
	}
	if v := poly.Vertices[1]; v.G != 0xFF || v.R != 0 || v.X != 1 || v.Y != 1 {
		t.Errorf("vertex 1 = %+v, want green at (1,1)", v)
	}
	if v := poly.Vertices[2]; v.B != 0xFF || v.X != 2 {
		t.Errorf("vertex 2 = %+v, want blue at (2,2)", v)
	}
}

func TestDecodeGP0Stream_IncompletePolygon(t *testing.T) {
	decoder := NewGPUDumpDecoder()
	// Flat quad needs 4 operands, only 2 remain
	words := []uint32{0x28000000, 0x00000000, 0x00010001}

	ops := decoder.DecodeGP0Stream(words)
	if len(ops) != 3 {
		t.Fatalf("DecodeGP0Stream() produced %d ops, want 3", len(ops))
	}
	poly := ops[0].(GP0Polygon)
	if !poly.Incomplete || poly.ConsumedWords() != 1 {
		t.Errorf("truncated polygon: incomplete=%v consumed=%d, want true/1", poly.Incomplete, poly.ConsumedWords())
	}
	// Decoding continues after the marker
	if got := sumConsumed(ops); got != len(words) {
		t.Errorf("consumed sum = %d, want %d", got, len(words))
	}
}

func TestDecodeGP0Stream_Polyline(t *testing.T) {
	decoder := NewGPUDumpDecoder()
	// Flat polyline: command, two vertices, terminator
	words := []uint32{0x48000000, 0x00010001, 0x00020002, 0x50005000}

	ops := decoder.DecodeGP0Stream(words)
	line, ok := ops[0].(GP0Line)
	if !ok {
		t.Fatalf("first op is %T, want GP0Line", ops[0])
	}
	if !line.Polyline || line.Shaded {
		t.Errorf("line flags = polyline:%v shaded:%v, want true/false", line.Polyline, line.Shaded)
	}
	// The terminator word is not part of the vertex list
	if line.ConsumedWords() != 3 {
		t.Errorf("polyline consumed %d words, want 3", line.ConsumedWords())
	}
	if got := sumConsumed(ops); got != len(words) {
		t.Errorf("consumed sum = %d, want %d", got, len(words))
	}
}

func TestDecodeGP0Stream_ShadedPolylineSteps(t *testing.T) {
	decoder := NewGPUDumpDecoder()
	// Shaded polyline scans vertex slots two words apart; a color word
	// that happens to match the terminator mask must not end the scan.
	words := []uint32{
		0x58000000,             // command + color0
		0x00010001,             // v0
		0x00000000, 0x00020002, // color1, v1
		0x50005000, 0x00030003, // color2 matching the mask (skipped), v2
		0x00000000, // color3
		0x50005000, // terminator at a vertex slot
	}

	ops := decoder.DecodeGP0Stream(words)
	line := ops[0].(GP0Line)
	if line.ConsumedWords() != 7 {
		t.Errorf("shaded polyline consumed %d words, want 7", line.ConsumedWords())
	}
}

func TestDecodeGP0Stream_VRAMWrite(t *testing.T) {
	decoder := NewGPUDumpDecoder()
	// 4x2 transfer: 8 pixels = 4 data words
	words := []uint32{
		uint32(psx.GP0OpcodeVRAMWrite) << 24,
		0x00000000,
		0x00020004,
		1, 2, 3, 4,
	}

	ops := decoder.DecodeGP0Stream(words)
	if len(ops) != 1 {
		t.Fatalf("DecodeGP0Stream() produced %d ops, want 1", len(ops))
	}
	write := ops[0].(GP0VRAMWrite)
	if write.Width != 4 || write.Height != 2 || write.Pixels() != 8 {
		t.Errorf("transfer = %dx%d, want 4x2", write.Width, write.Height)
	}
	if write.ConsumedWords() != 7 || write.Incomplete {
		t.Errorf("consumed=%d incomplete=%v, want 7/false", write.ConsumedWords(), write.Incomplete)
	}
}

func TestDecodeGP0Stream_VRAMWriteTruncated(t *testing.T) {
	decoder := NewGPUDumpDecoder()
	// Declares 8 pixels but only 2 data words follow
	words := []uint32{
		uint32(psx.GP0OpcodeVRAMWrite) << 24,
		0x00000000,
		0x00020004,
		1, 2,
	}

	ops := decoder.DecodeGP0Stream(words)
	write := ops[0].(GP0VRAMWrite)
	if !write.Incomplete {
		t.Error("truncated VRAM write should be marked incomplete")
	}
	if write.ConsumedWords() != len(words) {
		t.Errorf("consumed %d words, want %d (whole remainder)", write.ConsumedWords(), len(words))
	}
}

func TestDecodeGP0Stream_ZeroSizeIsFullVRAM(t *testing.T) {
	decoder := NewGPUDumpDecoder()
	words := make([]uint32, 3+psx.VRAMWords)
	words[0] = uint32(psx.GP0OpcodeVRAMWrite) << 24

	ops := decoder.DecodeGP0Stream(words)
	if len(ops) != 1 {
		t.Fatalf("DecodeGP0Stream() produced %d ops, want 1", len(ops))
	}
	write := ops[0].(GP0VRAMWrite)
	if write.Width != psx.VRAMWidth || write.Height != psx.VRAMHeight {
		t.Errorf("zero size decoded as %dx%d, want full VRAM extent", write.Width, write.Height)
	}
	if write.ConsumedWords() != len(words) || write.Incomplete {
		t.Errorf("consumed=%d incomplete=%v, want %d/false", write.ConsumedWords(), write.Incomplete, len(words))
	}
}

func TestDecodeGP0Stream_Environment(t *testing.T) {
	decoder := NewGPUDumpDecoder()
	words := []uint32{
		0xE3000000 | (16 << 10) | 32, // clip top-left (32,16)
		0xE50007FF,                   // draw offset (-1,0)
		0xE1000200,                   // texpage, raw passthrough
	}

	ops := decoder.DecodeGP0Stream(words)
	if len(ops) != 3 {
		t.Fatalf("DecodeGP0Stream() produced %d ops, want 3", len(ops))
	}
	clip := ops[0].(GP0Environment)
	if x, y := clip.ClipXY(); x != 32 || y != 16 {
		t.Errorf("ClipXY() = (%d,%d), want (32,16)", x, y)
	}
	if got := clip.String(); got != "GP0 CLIP_TL (32,16)" {
		t.Errorf("clip String() = %q", got)
	}
	offset := ops[1].(GP0Environment)
	if ox, oy := offset.DrawOffset(); ox != -1 || oy != 0 {
		t.Errorf("DrawOffset() = (%d,%d), want (-1,0)", ox, oy)
	}
	if got := ops[2].String(); got != "GP0 TEXPAGE 0xE1000200" {
		t.Errorf("texpage String() = %q", got)
	}
}

func TestDecodeGP0Stream_ConsumedSum(t *testing.T) {
	decoder := NewGPUDumpDecoder()
	// A well-formed mixed stream: nop, env, flat tri, rect, unknown
	words := []uint32{
		0x00000000,
		0xE5000000,
		0x20000000, 0x00000000, 0x00010001, 0x00020002,
		0x68000000, 0x00000000,
		0x90000000,
	}

	ops := decoder.DecodeGP0Stream(words)
	if got := sumConsumed(ops); got != len(words) {
		t.Errorf("consumed sum = %d, want stream length %d", got, len(words))
	}
}

func sumConsumed(ops []GP0Op) int {
	total := 0
	for _, op := range ops {
		total += op.ConsumedWords()
	}
	return total
}
