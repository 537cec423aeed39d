package serial

import (
	"bytes"
	"encoding/binary"

	"github.com/bnema/haptic-handshake/internal/domain"
)

// Inbound telemetry frame:
//
//	0xAA | int32 LE left | int32 LE right | 2 reserved | 0x55
const (
	FrameSize      = 12
	syncByte       = 0xAA
	terminatorByte = 0x55
)

// FrameDecoder turns a raw byte stream into telemetry samples. A candidate
// frame whose terminator does not match costs exactly its sync byte; scanning
// resumes at the next byte. Incomplete frames stay buffered for the next Feed.
// It is not safe for concurrent use.
type FrameDecoder struct {
	buf       []byte
	discarded uint64
	desyncs   uint64
}

func (d *FrameDecoder) Feed(p []byte) []domain.TelemetrySample {
	d.buf = append(d.buf, p...)

	var samples []domain.TelemetrySample
	i := 0
	for i < len(d.buf) {
		idx := bytes.IndexByte(d.buf[i:], syncByte)
		if idx < 0 {
			d.discarded += uint64(len(d.buf) - i)
			i = len(d.buf)
			break
		}
		d.discarded += uint64(idx)
		i += idx

		if len(d.buf)-i < FrameSize {
			break
		}

		frame := d.buf[i : i+FrameSize]
		if frame[FrameSize-1] != terminatorByte {
			d.desyncs++
			d.discarded++
			i++
			continue
		}

		samples = append(samples, decodeFrame(frame))
		i += FrameSize
	}

	n := copy(d.buf, d.buf[i:])
	d.buf = d.buf[:n]

	return samples
}

// Discarded is the number of bytes dropped while resynchronizing.
func (d *FrameDecoder) Discarded() uint64 {
	return d.discarded
}

// Desyncs counts candidate frames rejected on their terminator byte.
func (d *FrameDecoder) Desyncs() uint64 {
	return d.desyncs
}

func (d *FrameDecoder) Buffered() int {
	return len(d.buf)
}

func decodeFrame(frame []byte) domain.TelemetrySample {
	return domain.TelemetrySample{
		Left:  int64(int32(binary.LittleEndian.Uint32(frame[1:5]))),
		Right: int64(int32(binary.LittleEndian.Uint32(frame[5:9]))),
	}
}

// EncodeFrame builds a well-formed telemetry frame. The device firmware is the
// only real producer; the simulator and tests use this.
func EncodeFrame(sample domain.TelemetrySample) []byte {
	frame := make([]byte, FrameSize)
	frame[0] = syncByte
	binary.LittleEndian.PutUint32(frame[1:5], uint32(int32(sample.Left)))
	binary.LittleEndian.PutUint32(frame[5:9], uint32(int32(sample.Right)))
	frame[FrameSize-1] = terminatorByte
	return frame
}
