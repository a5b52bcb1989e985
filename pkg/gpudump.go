// This file contains the GPUDumpProcessor, the top-level orchestration
// for the four report modes: packet listing, pre-trace dump, VRAM
// snapshot and single-frame disassembly. Each mode is terminal; modes
// are never combined in one invocation.
package pkg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hansbonini/psxgputools/pkg/common"
	"github.com/hansbonini/psxgputools/pkg/psx"
)

// DefaultPacketLimit caps the listing modes so a corrupt capture cannot
// flood the console. Frame-targeted decoding is not capped.
const DefaultPacketLimit = 200

// inlineDecodeMaxWords is the largest GP0 payload decoded inline while
// listing packets.
const inlineDecodeMaxWords = 20

// GPUDumpProcessor combines decoder and exporter functionality
type GPUDumpProcessor struct {
	Decoder  *GPUDumpDecoder
	Exporter *VRAMFileExporter
	Out      io.Writer
}

// NewGPUDumpProcessor creates a new processor writing reports to stdout
func NewGPUDumpProcessor() *GPUDumpProcessor {
	return &GPUDumpProcessor{
		Decoder:  NewGPUDumpDecoder(),
		Exporter: NewVRAMExporter(),
		Out:      os.Stdout,
	}
}

// CaptureStem strips the capture extensions from a path, leaving the
// base name used to derive artifact file names.
func CaptureStem(path string) string {
	base := filepath.Base(path)
	if strings.EqualFold(filepath.Ext(base), ".zst") {
		base = base[:len(base)-len(".zst")]
	}
	if strings.EqualFold(filepath.Ext(base), ".psxgpu") {
		base = base[:len(base)-len(".psxgpu")]
	}
	return base
}

// ListPackets prints every packet's type and length up to the limit,
// optionally decoding short GP0/GP1 payloads inline.
func (p *GPUDumpProcessor) ListPackets(inputFile string, decode bool, limit int) error {
	data, err := LoadCapture(inputFile)
	if err != nil {
		return err
	}
	return p.listPackets(data, limit, decode, false)
}

// DumpPreTrace prints and decodes packets up to the first TraceBegin,
// for inspecting the GPU state set up before drawing starts.
func (p *GPUDumpProcessor) DumpPreTrace(inputFile string) error {
	data, err := LoadCapture(inputFile)
	if err != nil {
		return err
	}
	return p.listPackets(data, DefaultPacketLimit, true, true)
}

// listPackets is the shared walk behind ListPackets and DumpPreTrace.
func (p *GPUDumpProcessor) listPackets(data []byte, limit int, decodeContent, stopAtTraceBegin bool) error {
	pos, err := p.Decoder.ValidateHeader(data)
	if err != nil {
		return err
	}
	n := 0
	for n < limit {
		pkt, next, ok := p.Decoder.NextPacket(data, pos)
		if !ok {
			break
		}
		pos = next
		fmt.Fprintf(p.Out, "  %3d type=0x%02X %s len=%d\n", n, pkt.Type, pkt.TypeName(), pkt.WordCount())
		if decodeContent {
			p.printPacketContent(pkt)
		}
		if stopAtTraceBegin && pkt.Type == psx.PacketTraceBegin {
			fmt.Fprintln(p.Out, "  ^ TraceBegin")
			return nil
		}
		n++
	}
	if n >= limit {
		common.LogInfo(common.InfoPacketCapReached, limit)
	}
	return nil
}

// printPacketContent decodes short GP0 payloads and single GP1 words
// inline under a packet listing line.
func (p *GPUDumpProcessor) printPacketContent(pkt *Packet) {
	switch pkt.Type {
	case psx.PacketGP0Data:
		if pkt.WordCount() < 1 {
			return
		}
		words := pkt.Words()
		if IsVRAMPreload(words) {
			fmt.Fprintf(p.Out, "       [VRAM init %d words]\n", len(words)-3)
			return
		}
		if len(words) > inlineDecodeMaxWords {
			return
		}
		for _, op := range p.Decoder.DecodeGP0Stream(words) {
			fmt.Fprintf(p.Out, "       %s\n", op)
		}
	case psx.PacketGP1Data:
		if pkt.WordCount() < 1 {
			return
		}
		word := pkt.Words()[0]
		fmt.Fprintf(p.Out, "       GP1 0x%02X = 0x%08X\n", (word>>24)&0x3F, word)
	}
}

// DumpFrame prints the operation-by-operation GP0/GP1 traffic of one
// frame, then the authoritative total frame count from the index scan.
func (p *GPUDumpProcessor) DumpFrame(inputFile string, frame int) error {
	data, err := LoadCapture(inputFile)
	if err != nil {
		return err
	}
	index, err := p.Decoder.BuildFrameIndex(data)
	if err != nil {
		return common.FormatError(common.ErrFailedToBuildFrameIndex, err)
	}
	totalFrames := index.FrameCount()
	if totalFrames == 0 {
		return ErrNoFrames
	}
	if frame < 0 || frame >= totalFrames {
		common.LogWarn(common.WarnFrameOutOfRange, frame, totalFrames)
		return fmt.Errorf("%w: frame %d of %d", ErrNoFrames, frame, totalFrames)
	}
	packets, err := p.Decoder.FramePackets(data, frame)
	if err != nil {
		return err
	}

	fmt.Fprintf(p.Out, "--- Frame %d ---\n", frame)
	count := 0
	for _, pkt := range packets {
		switch pkt.Type {
		case psx.PacketVSync:
			fmt.Fprintln(p.Out, "  VSync")
		case psx.PacketGP0Data:
			count++
			if pkt.WordCount() < 1 {
				common.LogWarn(common.WarnShortGP0Payload)
				continue
			}
			words := pkt.Words()
			if IsVRAMPreload(words) {
				fmt.Fprintf(p.Out, "  [VRAM init %d words - skipped]\n", len(words)-3)
				continue
			}
			for _, op := range p.Decoder.DecodeGP0Stream(words) {
				fmt.Fprintf(p.Out, "  %s\n", op)
			}
		case psx.PacketGP1Data:
			count++
			if pkt.WordCount() >= 1 {
				word := pkt.Words()[0]
				fmt.Fprintf(p.Out, "  GP1 0x%02X 0x%08X\n", (word>>24)&0x3F, word)
			}
		default:
			count++
		}
	}
	fmt.Fprintf(p.Out, "\nTotal frames: %d, packets in frame: %d\n", totalFrames, count)
	return nil
}

// DumpVRAM extracts the full-frame VRAM preload and writes the preview
// plus the PPM, PNG and YAML layout artifacts. No artifact is written
// when the preload is absent.
func (p *GPUDumpProcessor) DumpVRAM(inputFile, outputDir string) error {
	data, err := LoadCapture(inputFile)
	if err != nil {
		return err
	}
	vram, err := p.Decoder.ExtractVRAM(data)
	if err != nil {
		return common.FormatError(common.ErrFailedToExtractVRAM, err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return common.FormatError(common.ErrFailedToCreateOutputDir, err)
	}
	if err := p.Exporter.RenderPreview(vram, p.Out); err != nil {
		return err
	}

	stem := CaptureStem(inputFile)
	ppmPath := filepath.Join(outputDir, stem+"_vram.ppm")
	pngPath := filepath.Join(outputDir, stem+"_vram.png")
	layoutPath := filepath.Join(outputDir, stem+"_vram_layout.yaml")
	if err := p.Exporter.ExportPPM(vram, ppmPath); err != nil {
		return err
	}
	if err := p.Exporter.ExportPNG(vram, pngPath); err != nil {
		return err
	}
	return p.Exporter.ExportLayout(vram, layoutPath, []string{ppmPath, pngPath})
}
