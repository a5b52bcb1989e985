package pkg

import (
	"fmt"
	"io"
	"strings"

	"github.com/hansbonini/psxgputools/pkg/common"
	"github.com/hansbonini/psxgputools/pkg/psx"
)

// Packet represents one self-delimited record of the capture stream:
// a typed, length-prefixed chunk of captured port traffic or metadata.
type Packet struct {
	Type    byte   // Packet type (see psx.Packet* constants)
	Payload []byte // Raw payload, always a multiple of 4 bytes
	End     int    // Byte offset just past this packet in the capture
}

// WordCount returns the payload length in 32-bit words.
func (p *Packet) WordCount() int {
	return len(p.Payload) / 4
}

// Words decodes the payload into little-endian 32-bit words.
func (p *Packet) Words() []uint32 {
	words, _ := common.WordsFromBytes(p.Payload)
	return words
}

// TypeName returns the short display name of the packet type.
func (p *Packet) TypeName() string {
	return psx.PacketTypeName(p.Type)
}

// Vertex is one decoded polygon vertex: signed 11-bit coordinates and
// an 8-bit-per-channel color.
type Vertex struct {
	X, Y    int
	R, G, B uint8
}

// GP0Op is one decoded GP0 operation. The set of implementations is
// closed: Nop, Polygon, Line, Rectangle, VRAMWrite, Environment and
// Unknown cover every opcode class.
type GP0Op interface {
	// ConsumedWords reports how many words of the stream the
	// operation consumed, including the command word itself.
	ConsumedWords() int
	// String renders the operation for a report listing.
	String() string

	isGP0Op()
}

// GP0Nop is a 0x00-0x1F misc/no-op command.
type GP0Nop struct {
	Word uint32
}

func (op GP0Nop) isGP0Op()           {}
func (op GP0Nop) ConsumedWords() int { return 1 }

func (op GP0Nop) String() string {
	return fmt.Sprintf("GP0 0x%08X (cmd=0x%02X)", op.Word, byte(op.Word>>24))
}

// GP0Polygon is a decoded 0x20-0x3F polygon draw.
type GP0Polygon struct {
	Command    byte
	Quad       bool
	Gouraud    bool
	Textured   bool
	Vertices   []Vertex
	Consumed   int
	Incomplete bool
}

func (op GP0Polygon) isGP0Op()           {}
func (op GP0Polygon) ConsumedWords() int { return op.Consumed }

// Name returns the primitive mnemonic, e.g. TRI_FLAT or QUAD_GOURAUD_TEX.
func (op GP0Polygon) Name() string {
	var b strings.Builder
	if op.Quad {
		b.WriteString("QUAD")
	} else {
		b.WriteString("TRI")
	}
	if op.Gouraud {
		b.WriteString("_GOURAUD")
	} else {
		b.WriteString("_FLAT")
	}
	if op.Textured {
		b.WriteString("_TEX")
	}
	return b.String()
}

func (op GP0Polygon) String() string {
	if op.Incomplete {
		return fmt.Sprintf("GP0 POLY 0x%02X (incomplete)", op.Command)
	}
	parts := make([]string, len(op.Vertices))
	for i, v := range op.Vertices {
		parts[i] = fmt.Sprintf("v%d=(%d,%d)#%02X%02X%02X", i, v.X, v.Y, v.R, v.G, v.B)
	}
	return fmt.Sprintf("GP0 %s %s", op.Name(), strings.Join(parts, " "))
}

// GP0Line is a decoded 0x40-0x5F line or polyline draw.
type GP0Line struct {
	Command    byte
	Shaded     bool
	Polyline   bool
	Consumed   int
	Incomplete bool
}

func (op GP0Line) isGP0Op()           {}
func (op GP0Line) ConsumedWords() int { return op.Consumed }

func (op GP0Line) String() string {
	if op.Incomplete {
		return fmt.Sprintf("GP0 LINE 0x%02X (incomplete)", op.Command)
	}
	return fmt.Sprintf("GP0 LINE (skip %d words)", op.Consumed)
}

// GP0Rectangle is a decoded 0x60-0x7F rectangle draw.
type GP0Rectangle struct {
	Command    byte
	Consumed   int
	Incomplete bool
}

func (op GP0Rectangle) isGP0Op()           {}
func (op GP0Rectangle) ConsumedWords() int { return op.Consumed }

func (op GP0Rectangle) String() string {
	if op.Incomplete {
		return fmt.Sprintf("GP0 RECT 0x%02X (incomplete)", op.Command)
	}
	return fmt.Sprintf("GP0 RECT 0x%02X (skip)", op.Command)
}

// GP0VRAMWrite is a decoded 0xA0 CPU-to-VRAM pixel transfer.
type GP0VRAMWrite struct {
	X, Y       int // Destination origin in VRAM
	Width      int
	Height     int
	Consumed   int
	Incomplete bool
}

func (op GP0VRAMWrite) isGP0Op()           {}
func (op GP0VRAMWrite) ConsumedWords() int { return op.Consumed }

// Pixels returns the transfer size in pixels.
func (op GP0VRAMWrite) Pixels() int { return op.Width * op.Height }

func (op GP0VRAMWrite) String() string {
	if op.Incomplete {
		return fmt.Sprintf("GP0 VRAM_WRITE ~%d pixels (incomplete)", op.Pixels())
	}
	return fmt.Sprintf("GP0 VRAM_WRITE ~%d pixels", op.Pixels())
}

// GP0Environment is a single-word 0xE0-0xFF environment/state command.
type GP0Environment struct {
	Command byte
	Word    uint32
}

func (op GP0Environment) isGP0Op()           {}
func (op GP0Environment) ConsumedWords() int { return 1 }

// ClipXY extracts the 10-bit X and 9-bit Y clip window fields.
func (op GP0Environment) ClipXY() (x, y int) {
	return int(op.Word & 0x3FF), int((op.Word >> 10) & 0x1FF)
}

// DrawOffset extracts the two signed 11-bit draw offset fields.
func (op GP0Environment) DrawOffset() (ox, oy int) {
	return psx.SignExtend11(op.Word & 0x7FF), psx.SignExtend11((op.Word >> 11) & 0x7FF)
}

func (op GP0Environment) String() string {
	name := psx.GP0EnvName(op.Command)
	switch op.Command {
	case psx.GP0EnvClipTL, psx.GP0EnvClipBR:
		x, y := op.ClipXY()
		return fmt.Sprintf("GP0 %s (%d,%d)", name, x, y)
	case psx.GP0EnvDrawOffset:
		ox, oy := op.DrawOffset()
		return fmt.Sprintf("GP0 %s (%d,%d)", name, ox, oy)
	}
	return fmt.Sprintf("GP0 %s 0x%08X", name, op.Word)
}

// GP0Unknown is an unclassified opcode, passed through opaquely.
type GP0Unknown struct {
	Word uint32
}

func (op GP0Unknown) isGP0Op()           {}
func (op GP0Unknown) ConsumedWords() int { return 1 }

func (op GP0Unknown) String() string {
	return fmt.Sprintf("GP0 0x%08X (cmd=0x%02X)", op.Word, byte(op.Word>>24))
}

// CaptureDecoder interface defines methods for decoding capture streams
type CaptureDecoder interface {
	ValidateHeader(data []byte) (int, error)
	NextPacket(data []byte, pos int) (*Packet, int, bool)
	DecodeGP0Stream(words []uint32) []GP0Op
	BuildFrameIndex(data []byte) (FrameIndex, error)
	FramePackets(data []byte, target int) ([]*Packet, error)
	ExtractVRAM(data []byte) (*VRAMImage, error)
}

// CaptureEncoder interface defines methods for writing capture streams
type CaptureEncoder interface {
	WriteHeader(w io.Writer) error
	WritePacket(w io.Writer, ptype byte, payload []byte) error
	WriteGP0(w io.Writer, words []uint32) error
	WriteEvent(w io.Writer, ptype byte) error
}

// VRAMExporter interface defines methods for exporting a VRAM image
type VRAMExporter interface {
	RenderPreview(v *VRAMImage, w io.Writer) error
	ExportPPM(v *VRAMImage, path string) error
	ExportPNG(v *VRAMImage, path string) error
	ExportLayout(v *VRAMImage, path string, artifacts []string) error
}
