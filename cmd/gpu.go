// Package cmd provides command-line interface for GPU capture processing.
// This file contains the gpu command group: packet listing, pre-trace
// dumps, VRAM snapshots and single-frame disassembly.
package cmd

import (
	"fmt"
	"strconv"

	"github.com/hansbonini/psxgputools/pkg"
	"github.com/hansbonini/psxgputools/pkg/common"
	"github.com/spf13/cobra"
)

// gpuCmd represents the parent command for all capture operations.
var gpuCmd = &cobra.Command{
	Use:   "gpu",
	Short: "Process GPU capture dump files",
	Long: `Process GPU capture dump files (.psxgpu, .psxgpu.zst).

Commands:
  packets   List packet types and lengths
  pretrace  Dump packets before the first TraceBegin
  vram      Extract the VRAM preload snapshot
  frame     Disassemble one frame of GP0/GP1 traffic

Examples:
  psxgputools gpu packets capture.psxgpu
  psxgputools gpu frame capture.psxgpu 2`,
}

// gpuPacketsCmd lists every packet in the capture up to a cap.
var gpuPacketsCmd = &cobra.Command{
	Use:   "packets [input_file]",
	Short: "List packet types and lengths",
	Long: `List the type and payload length of every packet in a capture,
up to a fixed cap. With --decode, short GP0 payloads and GP1 control
words are decoded inline.

Example:
  psxgputools gpu packets capture.psxgpu
  psxgputools gpu packets --decode capture.psxgpu`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyVerbose(cmd); err != nil {
			return err
		}
		decode, err := cmd.Flags().GetBool("decode")
		if err != nil {
			return fmt.Errorf("error getting decode flag: %w", err)
		}
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return fmt.Errorf("error getting limit flag: %w", err)
		}
		processor := pkg.NewGPUDumpProcessor()
		if err := processor.ListPackets(args[0], decode, limit); err != nil {
			return fmt.Errorf("failed to list packets: %w", err)
		}
		return nil
	},
}

// gpuPreTraceCmd dumps the packets before the first TraceBegin, where
// the emulator replays the GPU state captured at trace start.
var gpuPreTraceCmd = &cobra.Command{
	Use:   "pretrace [input_file]",
	Short: "Dump packets before the first TraceBegin",
	Long: `List and decode every packet up to the first TraceBegin marker.
Useful for inspecting the clip window, draw offset and other GPU state
the capture establishes before any traced frame is drawn.

Example:
  psxgputools gpu pretrace capture.psxgpu`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyVerbose(cmd); err != nil {
			return err
		}
		processor := pkg.NewGPUDumpProcessor()
		if err := processor.DumpPreTrace(args[0]); err != nil {
			return fmt.Errorf("failed to dump pre-trace packets: %w", err)
		}
		return nil
	},
}

// gpuVRAMCmd extracts the initial full-frame VRAM upload.
var gpuVRAMCmd = &cobra.Command{
	Use:   "vram [input_file] [output_directory]",
	Short: "Extract the VRAM preload snapshot",
	Long: `Extract the initial full-framebuffer VRAM upload from a capture.

This command will:
- Render a block-averaged brightness preview to the terminal
- Export the 1024x512 framebuffer as PPM and PNG images
- Write a YAML layout summary next to the images

Example:
  psxgputools gpu vram capture.psxgpu ./output/`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyVerbose(cmd); err != nil {
			return err
		}
		outputDir := "."
		if len(args) > 1 {
			outputDir = args[1]
		}
		processor := pkg.NewGPUDumpProcessor()
		if err := processor.DumpVRAM(args[0], outputDir); err != nil {
			return fmt.Errorf("failed to extract VRAM: %w", err)
		}
		fmt.Printf("VRAM artifacts written to: %s\n", outputDir)
		return nil
	},
}

// gpuFrameCmd disassembles one frame of captured port traffic.
var gpuFrameCmd = &cobra.Command{
	Use:   "frame [input_file] [frame_index]",
	Short: "Disassemble one frame of GP0/GP1 traffic",
	Long: `Print the decoded GP0/GP1 operations of a single frame. Frames are
delimited by the TraceBegin marker and subsequent VSync events; the
frame index defaults to 0. The initial VRAM preload upload is reported
but not decoded word by word.

Example:
  psxgputools gpu frame capture.psxgpu
  psxgputools gpu frame capture.psxgpu 2`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyVerbose(cmd); err != nil {
			return err
		}
		frame := 0
		if len(args) > 1 {
			parsed, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid frame index %q: %w", args[1], err)
			}
			frame = parsed
		}
		processor := pkg.NewGPUDumpProcessor()
		if err := processor.DumpFrame(args[0], frame); err != nil {
			return fmt.Errorf("failed to dump frame %d: %w", frame, err)
		}
		return nil
	},
}

// init initializes the gpu command with its subcommands and flags.
func init() {
	rootCmd.AddCommand(gpuCmd)

	gpuCmd.AddCommand(gpuPacketsCmd)
	gpuCmd.AddCommand(gpuPreTraceCmd)
	gpuCmd.AddCommand(gpuVRAMCmd)
	gpuCmd.AddCommand(gpuFrameCmd)

	gpuCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output with detailed decode information")
	gpuPacketsCmd.Flags().Bool("decode", false, "Decode short GP0/GP1 payloads inline")
	gpuPacketsCmd.Flags().Int("limit", pkg.DefaultPacketLimit, "Maximum number of packets to list")
}

// applyVerbose enables verbose mode when the persistent flag is set.
func applyVerbose(cmd *cobra.Command) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("error getting verbose flag: %w", err)
	}
	common.SetVerboseMode(verbose)
	return nil
}
