// This file contains exporters for converting an extracted VRAM image
// to a terminal brightness preview, PPM and PNG artifacts, and a YAML
// layout summary.
package pkg

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/hansbonini/psxgputools/pkg/common"
	"github.com/hansbonini/psxgputools/pkg/psx"
	"gopkg.in/yaml.v3"
)

// Preview rendering parameters: one character per 4x4 pixel block,
// capped so the output fits a terminal.
const (
	PreviewBlock   = 4
	PreviewMaxCols = 160
	PreviewMaxRows = 120
)

// previewRamp maps brightness to one of 10 density levels.
const previewRamp = " .:-=+*#%@"

// VRAMFileExporter implements the VRAMExporter interface
type VRAMFileExporter struct{}

// NewVRAMExporter creates a new VRAM exporter instance
func NewVRAMExporter() *VRAMFileExporter {
	return &VRAMFileExporter{}
}

// previewSize returns the character dimensions of the preview grid.
func previewSize() (cols, rows int) {
	cols = psx.VRAMWidth / PreviewBlock
	if cols > PreviewMaxCols {
		cols = PreviewMaxCols
	}
	rows = psx.VRAMHeight / PreviewBlock
	if rows > PreviewMaxRows {
		rows = PreviewMaxRows
	}
	return cols, rows
}

// rampChar maps a 0-255 brightness to a density ramp character.
func rampChar(brightness int) byte {
	level := brightness * len(previewRamp) / 256
	if level >= len(previewRamp) {
		level = len(previewRamp) - 1
	}
	return previewRamp[level]
}

// RenderPreview writes a lossy block-averaged brightness rendering of
// the VRAM image. Diagnostic only; the PPM/PNG exports are lossless.
func (e *VRAMFileExporter) RenderPreview(v *VRAMImage, w io.Writer) error {
	cols, rows := previewSize()
	out := bufio.NewWriter(w)
	fmt.Fprintf(out, "VRAM %dx%d (block=%d, display area often 0-640 x 0-480)\n\n",
		psx.VRAMWidth, psx.VRAMHeight, PreviewBlock)
	line := make([]byte, cols)
	for by := 0; by < rows; by++ {
		for bx := 0; bx < cols; bx++ {
			acc := 0
			for dy := 0; dy < PreviewBlock; dy++ {
				for dx := 0; dx < PreviewBlock; dx++ {
					acc += v.Brightness(bx*PreviewBlock+dx, by*PreviewBlock+dy)
				}
			}
			line[bx] = rampChar(acc / (PreviewBlock * PreviewBlock))
		}
		out.Write(line)
		out.WriteByte('\n')
	}
	return out.Flush()
}

// ExportPPM writes the image as a binary PPM: the minimal fixed-format
// header "P6 <w> <h> 255" followed by row-major 8-bit RGB triples.
func (e *VRAMFileExporter) ExportPPM(v *VRAMImage, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return common.FormatError(common.ErrFailedToCreateOutputFile, err)
	}
	defer file.Close()

	out := bufio.NewWriter(file)
	fmt.Fprintf(out, "P6\n%d %d\n255\n", psx.VRAMWidth, psx.VRAMHeight)
	for y := 0; y < psx.VRAMHeight; y++ {
		for x := 0; x < psx.VRAMWidth; x++ {
			r, g, b := psx.RGB555(v.Pixel(x, y))
			out.Write([]byte{psx.Scale5To8(r), psx.Scale5To8(g), psx.Scale5To8(b)})
		}
	}
	if err := out.Flush(); err != nil {
		return common.FormatError(common.ErrFailedToWritePPM, err)
	}
	common.LogInfo(common.InfoPPMSaved, path)
	return nil
}

// ExportPNG writes the same pixels as a PNG image.
func (e *VRAMFileExporter) ExportPNG(v *VRAMImage, path string) error {
	img := image.NewRGBA(image.Rect(0, 0, psx.VRAMWidth, psx.VRAMHeight))
	for y := 0; y < psx.VRAMHeight; y++ {
		for x := 0; x < psx.VRAMWidth; x++ {
			r, g, b := psx.RGB555(v.Pixel(x, y))
			img.SetRGBA(x, y, color.RGBA{
				R: psx.Scale5To8(r),
				G: psx.Scale5To8(g),
				B: psx.Scale5To8(b),
				A: 255,
			})
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return common.FormatError(common.ErrFailedToCreateOutputFile, err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		return common.FormatError(common.ErrFailedToWritePNG, err)
	}
	common.LogInfo(common.InfoPNGSaved, path)
	return nil
}

// ContentBounds is the bounding box of non-black pixels in VRAM,
// reported in the layout summary to locate the drawn content.
type ContentBounds struct {
	MinX int `yaml:"min_x"`
	MinY int `yaml:"min_y"`
	MaxX int `yaml:"max_x"`
	MaxY int `yaml:"max_y"`
}

// VRAMLayoutReport is the YAML layout/summary artifact written next to
// the image exports.
type VRAMLayoutReport struct {
	Width         int            `yaml:"width"`
	Height        int            `yaml:"height"`
	PixelFormat   string         `yaml:"pixel_format"`
	PixelCount    int            `yaml:"pixel_count"`
	PreviewBlock  int            `yaml:"preview_block"`
	PreviewWidth  int            `yaml:"preview_width"`
	PreviewHeight int            `yaml:"preview_height"`
	ContentBounds *ContentBounds `yaml:"content_bounds,omitempty"`
	Artifacts     []string       `yaml:"artifacts"`
}

// contentBounds scans for the smallest rectangle enclosing every pixel
// with non-zero brightness, or nil for an all-black image.
func contentBounds(v *VRAMImage) *ContentBounds {
	bounds := &ContentBounds{MinX: psx.VRAMWidth, MinY: psx.VRAMHeight, MaxX: -1, MaxY: -1}
	for y := 0; y < psx.VRAMHeight; y++ {
		for x := 0; x < psx.VRAMWidth; x++ {
			if v.Brightness(x, y) == 0 {
				continue
			}
			if x < bounds.MinX {
				bounds.MinX = x
			}
			if y < bounds.MinY {
				bounds.MinY = y
			}
			if x > bounds.MaxX {
				bounds.MaxX = x
			}
			if y > bounds.MaxY {
				bounds.MaxY = y
			}
		}
	}
	if bounds.MaxX < 0 {
		return nil
	}
	return bounds
}

// ExportLayout writes the YAML layout/summary report for an extraction.
func (e *VRAMFileExporter) ExportLayout(v *VRAMImage, path string, artifacts []string) error {
	cols, rows := previewSize()
	report := VRAMLayoutReport{
		Width:         psx.VRAMWidth,
		Height:        psx.VRAMHeight,
		PixelFormat:   "RGB555",
		PixelCount:    psx.VRAMPixels,
		PreviewBlock:  PreviewBlock,
		PreviewWidth:  cols,
		PreviewHeight: rows,
		ContentBounds: contentBounds(v),
		Artifacts:     artifacts,
	}
	file, err := os.Create(path)
	if err != nil {
		return common.FormatError(common.ErrFailedToCreateOutputFile, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	defer encoder.Close()
	if err := encoder.Encode(&report); err != nil {
		return common.FormatError(common.ErrFailedToWriteLayout, err)
	}
	common.LogInfo(common.InfoLayoutSaved, path)
	return nil
}
