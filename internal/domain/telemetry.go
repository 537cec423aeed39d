package domain

import "time"

// EncoderPair holds one value per finger, in encoder counts.
type EncoderPair struct {
	Left  int64
	Right int64
}

func (p EncoderPair) Add(o EncoderPair) EncoderPair {
	return EncoderPair{Left: p.Left + o.Left, Right: p.Right + o.Right}
}

func (p EncoderPair) Sub(o EncoderPair) EncoderPair {
	return EncoderPair{Left: p.Left - o.Left, Right: p.Right - o.Right}
}

type TelemetrySample struct {
	Left  int64
	Right int64
}

func (s TelemetrySample) Pair() EncoderPair {
	return EncoderPair{Left: s.Left, Right: s.Right}
}

type CalibrationBaseline struct {
	Base       EncoderPair
	IsSet      bool
	CapturedAt time.Time
}
