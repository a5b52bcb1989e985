package common

import (
	"fmt"
	"log"
)

// Global variable to control debug output
var VerboseMode bool = false

// SetVerboseMode enables or disables verbose/debug output
func SetVerboseMode(verbose bool) {
	VerboseMode = verbose
}

// Error messages
const (
	ErrFailedToLoadCapture      = "failed to load capture file"
	ErrFailedToDecompress       = "failed to decompress capture file"
	ErrFailedToValidateHeader   = "failed to validate capture header"
	ErrFailedToBuildFrameIndex  = "failed to build frame index"
	ErrFailedToExtractVRAM      = "failed to extract VRAM"
	ErrFailedToCreateOutputDir  = "failed to create output directory"
	ErrFailedToCreateOutputFile = "failed to create output file"
	ErrFailedToWritePPM         = "failed to write PPM image"
	ErrFailedToWritePNG         = "failed to write PNG image"
	ErrFailedToWriteLayout      = "failed to write layout report"
	ErrFailedToWritePacket      = "failed to write packet"
	ErrPayloadNotWordAligned    = "packet payload length must be a multiple of 4 bytes"
)

// Info messages
const (
	InfoCaptureLoaded    = "Capture loaded: %s (%d bytes)"
	InfoCaptureDecoded   = "Capture decompressed: %d -> %d bytes"
	InfoFrameIndexBuilt  = "Frame index built: %d frame boundaries"
	InfoVRAMFound        = "Full-frame VRAM preload found (%d pixels)"
	InfoPPMSaved         = "PPM saved: %s"
	InfoPNGSaved         = "PNG saved: %s"
	InfoLayoutSaved      = "Layout summary saved: %s"
	InfoPacketCapReached = "Packet listing stopped at cap (%d packets)"
	InfoExternalZstdUsed = "Library decode failed, external zstd tool used for: %s"
)

// Debug messages
const (
	DebugPacketRead      = "Packet %d: type=0x%02X %s words=%d"
	DebugFrameIndex      = "Frame index: %d boundaries (scan ended at offset %d)"
	DebugGP0StreamLength = "GP0 stream: %d words, %d operations"
	DebugVRAMCandidate   = "GP0 packet: %d words, opcode 0x%02X"
	DebugTempFile        = "Temporary decompression file: %s"
)

// Warning messages
const (
	WarnIncompleteOp    = "Incomplete GP0 operation (opcode 0x%02X)"
	WarnFrameOutOfRange = "Requested frame %d but capture holds %d frames"
	WarnShortGP0Payload = "GP0 packet payload shorter than one word, skipped"
)

// LogInfo logs an informational message
func LogInfo(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[INFO] "+message, args...)
	} else {
		log.Printf("[INFO] %s", message)
	}
}

// LogWarn logs a warning message
func LogWarn(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[WARN] "+message, args...)
	} else {
		log.Printf("[WARN] %s", message)
	}
}

// LogError logs an error message
func LogError(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[ERROR] "+message, args...)
	} else {
		log.Printf("[ERROR] %s", message)
	}
}

// LogDebug logs a debug message (only if VerboseMode is enabled)
func LogDebug(message string, args ...interface{}) {
	if !VerboseMode {
		return
	}
	if len(args) > 0 {
		log.Printf("[DEBUG] "+message, args...)
	} else {
		log.Printf("[DEBUG] %s", message)
	}
}

// FormatError creates a formatted error with additional context
func FormatError(baseMessage string, details interface{}) error {
	if err, ok := details.(error); ok {
		return fmt.Errorf("%s: %w", baseMessage, err)
	}
	return fmt.Errorf("%s: %v", baseMessage, details)
}
