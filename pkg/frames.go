// This file contains the frame segmenter: a full forward scan that
// indexes frame boundaries, and an independent targeted pass that
// projects one frame's packets out of the stream.
package pkg

import (
	"fmt"

	"github.com/hansbonini/psxgputools/pkg/common"
	"github.com/hansbonini/psxgputools/pkg/psx"
)

// FrameIndex holds the byte offset of each frame boundary: the position
// immediately after every TraceBegin packet, and after every VSync
// packet seen once tracing has begun. Its length is the authoritative
// total frame count for a capture.
type FrameIndex []int

// FrameCount returns the number of complete frames: spans bounded by
// two consecutive boundary offsets. A capture whose trace never
// reaches a VSync holds no complete frame.
func (f FrameIndex) FrameCount() int {
	if len(f) == 0 {
		return 0
	}
	return len(f) - 1
}

// BuildFrameIndex scans the whole packet stream once and records every
// frame boundary offset.
func (d *GPUDumpDecoder) BuildFrameIndex(data []byte) (FrameIndex, error) {
	pos, err := d.ValidateHeader(data)
	if err != nil {
		return nil, err
	}
	var index FrameIndex
	inTrace := false
	for {
		pkt, next, ok := d.NextPacket(data, pos)
		if !ok {
			break
		}
		pos = next
		switch pkt.Type {
		case psx.PacketTraceBegin:
			index = append(index, pos)
			inTrace = true
		case psx.PacketVSync:
			if inTrace {
				index = append(index, pos)
			}
		}
	}
	common.LogDebug(common.DebugFrameIndex, len(index), pos)
	return index, nil
}

// FramePackets re-walks the stream from the start and collects the
// packets belonging to the target frame, including the VSync that
// closes it. The scan short-circuits once the frame counter passes the
// target; this is a projection shortcut only and must not be used to
// count frames (use BuildFrameIndex for that).
func (d *GPUDumpDecoder) FramePackets(data []byte, target int) ([]*Packet, error) {
	pos, err := d.ValidateHeader(data)
	if err != nil {
		return nil, err
	}
	if target < 0 {
		return nil, fmt.Errorf("%w: frame %d", ErrNoFrames, target)
	}
	var packets []*Packet
	frame := -1
	for {
		pkt, next, ok := d.NextPacket(data, pos)
		if !ok {
			break
		}
		pos = next
		switch pkt.Type {
		case psx.PacketTraceBegin:
			frame++
		case psx.PacketVSync:
			if frame == target {
				packets = append(packets, pkt)
			}
			frame++
			if frame > target {
				return packets, nil
			}
		default:
			if frame == target {
				packets = append(packets, pkt)
			}
		}
	}
	return packets, nil
}
