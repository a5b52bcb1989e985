// This file contains the capture loader. Captures are read fully into
// memory; a .zst extension marks a zstd envelope which is decompressed
// transparently, falling back to the external zstd tool when the
// library cannot decode the stream.
package pkg

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/hansbonini/psxgputools/pkg/common"
	"github.com/klauspost/compress/zstd"
)

// LoadCapture reads a capture file into memory, decompressing a zstd
// envelope when the file extension indicates one.
func LoadCapture(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToLoadCapture, err)
	}
	if !strings.EqualFold(filepath.Ext(path), ".zst") {
		common.LogDebug(common.InfoCaptureLoaded, path, len(data))
		return data, nil
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	defer decoder.Close()
	decoded, err := decoder.DecodeAll(data, nil)
	if err != nil {
		decoded, err = decompressWithTool(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
		}
		common.LogInfo(common.InfoExternalZstdUsed, path)
	}
	common.LogDebug(common.InfoCaptureDecoded, len(data), len(decoded))
	return decoded, nil
}

// decompressWithTool invokes the external zstd binary against a
// uniquely-named temporary file. The temporary file is removed on
// every exit path.
func decompressWithTool(path string) ([]byte, error) {
	tmp, err := os.CreateTemp("", "psxgpu-*.psxgpu")
	if err != nil {
		return nil, err
	}
	tmpName := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpName)
	common.LogDebug(common.DebugTempFile, tmpName)

	cmd := exec.Command("zstd", "-d", "-f", "-o", tmpName, path)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("zstd tool: %v: %s", err, strings.TrimSpace(string(output)))
	}
	return os.ReadFile(tmpName)
}
