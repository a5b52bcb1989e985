// Package psx provides PlayStation-specific structures and functionality.
// This file contains GPU capture container constants and bit-level helpers
// for DuckStation-compatible .psxgpu dump files.
package psx

import "fmt"

// Capture container constants
const (
	DumpMagic        = "PSXGPUDUMP" // First 10 bytes of every capture
	DumpHeaderSize   = 14           // Magic + 4 reserved/version bytes
	PacketHeaderSize = 4            // 24-bit word count + 8-bit type
)

// VRAM geometry: 1024x512 grid of 16-bit RGB555 pixels
const (
	VRAMWidth  = 1024
	VRAMHeight = 512
	VRAMPixels = VRAMWidth * VRAMHeight
	VRAMWords  = VRAMPixels / 2 // Two 16-bit pixels per 32-bit word
)

// Packet types found in the capture stream
const (
	PacketGP0Data       byte = 0x00 // GP0 port traffic (draw/state commands)
	PacketGP1Data       byte = 0x01 // GP1 port traffic (control commands)
	PacketVSync         byte = 0x02 // Vertical sync event
	PacketDiscardPort0  byte = 0x03 // Discarded GP0 response data
	PacketReadbackPort0 byte = 0x04 // GP0 readback data
	PacketTraceBegin    byte = 0x05 // Start of the traced region
	PacketGPUVersion    byte = 0x06 // GPU version metadata
	PacketGameID        byte = 0x10 // Game identifier string
	PacketVideoFormat   byte = 0x11 // Textual video format description
	PacketComment       byte = 0x12 // Free-form comment
)

// packetNames maps packet types to their short display names
var packetNames = map[byte]string{
	PacketGP0Data:       "GP0",
	PacketGP1Data:       "GP1",
	PacketVSync:         "VSync",
	PacketDiscardPort0:  "Discard",
	PacketReadbackPort0: "Readback",
	PacketTraceBegin:    "TraceBegin",
	PacketGPUVersion:    "GPUVer",
	PacketGameID:        "GameID",
	PacketVideoFormat:   "VideoFmt",
	PacketComment:       "Comment",
}

// PacketTypeName returns the short display name for a packet type,
// or "?" for types not present in the capture format.
func PacketTypeName(t byte) string {
	if name, ok := packetNames[t]; ok {
		return name
	}
	return "?"
}

// GP0 environment/state commands (0xE0-0xFF range, single word each)
const (
	GP0EnvTexpage    byte = 0xE1
	GP0EnvTexwin     byte = 0xE2
	GP0EnvClipTL     byte = 0xE3
	GP0EnvClipBR     byte = 0xE4
	GP0EnvDrawOffset byte = 0xE5
	GP0EnvMask       byte = 0xE6
)

var gp0EnvNames = map[byte]string{
	GP0EnvTexpage:    "TEXPAGE",
	GP0EnvTexwin:     "TEXWIN",
	GP0EnvClipTL:     "CLIP_TL",
	GP0EnvClipBR:     "CLIP_BR",
	GP0EnvDrawOffset: "DRAW_OFFSET",
	GP0EnvMask:       "MASK",
}

// GP0EnvName returns the mnemonic for an environment command byte.
func GP0EnvName(cmd byte) string {
	if name, ok := gp0EnvNames[cmd]; ok {
		return name
	}
	return fmt.Sprintf("ENV_0x%02X", cmd)
}

// GP0 command attribute bits
const (
	PolyBitTextured byte = 0x04 // Polygon carries one UV word per vertex
	PolyBitQuad     byte = 0x08 // Four vertices instead of three
	PolyBitGouraud  byte = 0x10 // One color word per vertex after the first
	LineBitPolyline byte = 0x08 // Variable-length vertex list
	LineBitShaded   byte = 0x10 // One color word per vertex
	RectBitTextured byte = 0x04 // Rectangle carries a UV/CLUT word
)

// Polyline vertex lists end at a word matching this mask/value pair.
const (
	PolylineTerminatorMask  uint32 = 0xF000F000
	PolylineTerminatorValue uint32 = 0x50005000
)

// GP0OpcodeVRAMWrite transfers a rectangle of pixels from CPU to VRAM.
const GP0OpcodeVRAMWrite byte = 0xA0

// SignExtend11 interprets the low 11 bits of v as a signed value.
// Values >= 0x400 wrap negative by subtracting 0x800.
func SignExtend11(v uint32) int {
	x := v & 0x7FF
	if x&0x400 != 0 {
		return int(x) - 0x800
	}
	return int(x)
}

// Expand5To8 widens a 5-bit color channel to 8 bits, replicating the
// top bits into the low bits so 0x1F maps to 0xFF.
func Expand5To8(v uint32) uint8 {
	v &= 0x1F
	return uint8((v << 3) | (v >> 2))
}

// Scale5To8 widens a 5-bit color channel to 8 bits by linear scaling.
// Used for VRAM pixel export where the original capture tooling scales
// rather than replicates.
func Scale5To8(v uint32) uint8 {
	return uint8((v & 0x1F) * 255 / 31)
}

// RGB555 splits a 16-bit VRAM pixel into its 5-bit channels.
// Bit layout: 0-4 red, 5-9 green, 10-14 blue, bit 15 unused (mask bit).
func RGB555(px uint16) (r, g, b uint32) {
	return uint32(px) & 0x1F, uint32(px>>5) & 0x1F, uint32(px>>10) & 0x1F
}

// PixelBrightness returns the mean of the three scaled 8-bit channels
// of a 16-bit VRAM pixel, in the range 0-255.
func PixelBrightness(px uint16) int {
	r, g, b := RGB555(px)
	return (int(Scale5To8(r)) + int(Scale5To8(g)) + int(Scale5To8(b))) / 3
}
