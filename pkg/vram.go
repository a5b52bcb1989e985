// This file contains the VRAM extractor: it locates the full-frame
// zero-origin preload blit and materializes it into a pixel grid.
package pkg

import (
	"github.com/hansbonini/psxgputools/pkg/common"
	"github.com/hansbonini/psxgputools/pkg/psx"
)

// VRAMImage is the 1024x512 grid of 16-bit pixels reconstructed from
// the full-framebuffer preload blit. Each 32-bit word packs two
// pixels, low halfword first.
type VRAMImage struct {
	Words []uint32 // Exactly psx.VRAMWords entries
}

// Pixel returns the 16-bit pixel at (x, y). Coordinates outside the
// grid return 0.
func (v *VRAMImage) Pixel(x, y int) uint16 {
	if x < 0 || y < 0 || x >= psx.VRAMWidth || y >= psx.VRAMHeight {
		return 0
	}
	idx := y*psx.VRAMWidth + x
	word := v.Words[idx/2]
	if idx&1 != 0 {
		return uint16(word >> 16)
	}
	return uint16(word)
}

// Brightness returns the 0-255 brightness of the pixel at (x, y).
func (v *VRAMImage) Brightness(x, y int) int {
	return psx.PixelBrightness(v.Pixel(x, y))
}

// ExtractVRAM scans the packet stream for the first GP0 payload
// carrying the full 1024x512 zero-origin upload and materializes its
// pixel words. Returns ErrVRAMNotFound when no such packet exists; the
// caller decides whether that is fatal.
func (d *GPUDumpDecoder) ExtractVRAM(data []byte) (*VRAMImage, error) {
	pos, err := d.ValidateHeader(data)
	if err != nil {
		return nil, err
	}
	for {
		pkt, next, ok := d.NextPacket(data, pos)
		if !ok {
			break
		}
		pos = next
		if pkt.Type != psx.PacketGP0Data || pkt.WordCount() < 1 {
			continue
		}
		words := pkt.Words()
		common.LogDebug(common.DebugVRAMCandidate, len(words), byte(words[0]>>24))
		if len(words) >= 3+psx.VRAMWords && IsVRAMPreload(words) {
			image := &VRAMImage{Words: words[3 : 3+psx.VRAMWords]}
			common.LogInfo(common.InfoVRAMFound, psx.VRAMPixels)
			return image, nil
		}
	}
	return nil, ErrVRAMNotFound
}
