// Package cmd provides command-line interface functionality for PSXGPUTools.
// PSXGPUTools is a collection of utilities for inspecting GPU command
// capture dumps (.psxgpu) recorded from PlayStation emulators.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
// It provides the main entry point for the PSXGPUTools application.
var rootCmd = &cobra.Command{
	Use:   "psxgputools",
	Short: "Tools for inspecting PSX GPU capture dumps",
	Long: `PSXGPUTools - Utilities for inspecting GPU command capture dumps
(.psxgpu, .psxgpu.zst) recorded from PlayStation emulators.

Currently supports:
  - Packet listing (types and payload lengths, optional inline decode)
  - Pre-trace dumps (GPU state set up before the traced frames)
  - VRAM snapshots (terminal preview plus PPM/PNG/YAML artifacts)
  - Single-frame disassembly of GP0/GP1 traffic

Examples:
  psxgputools gpu packets capture.psxgpu
  psxgputools gpu pretrace capture.psxgpu.zst
  psxgputools gpu vram capture.psxgpu ./output/
  psxgputools gpu frame capture.psxgpu 2

Use 'psxgputools [command] --help' for more information about a command.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main() and serves as the entry point for command execution.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
