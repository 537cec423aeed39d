package ports

import "github.com/bnema/haptic-handshake/internal/domain"

// Transport is the link to the physical actuator. Writes never block on the
// device for long and never return errors; failures are logged by the adapter.
type Transport interface {
	Latest() (domain.TelemetrySample, bool)
	WriteTarget(target domain.EncoderPair)
	WriteStop()
	Connected() bool
}

type TransportStats struct {
	FramesDecoded  uint64
	BytesDiscarded uint64
	Writes         uint64
	WriteFailures  uint64
}
