package serial

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/haptic-handshake/internal/domain"
	"github.com/bnema/haptic-handshake/internal/logging"
	"github.com/bnema/haptic-handshake/internal/ports"
	bugserial "go.bug.st/serial"
)

const (
	readBufferSize   = 256
	readErrorBackoff = 100 * time.Millisecond
)

type Config struct {
	Port        string
	Baud        int
	ReadTimeout time.Duration
}

// Transport owns the serial link. A background goroutine decodes telemetry
// frames; writes are fire-and-forget and serialized by writeMu.
type Transport struct {
	port   io.ReadWriteCloser
	logger *slog.Logger

	writeMu sync.Mutex

	mu        sync.RWMutex
	latest    domain.TelemetrySample
	hasSample bool

	decoder FrameDecoder

	framesDecoded  atomic.Uint64
	bytesDiscarded atomic.Uint64
	writes         atomic.Uint64
	writeFailures  atomic.Uint64
	warnedDropped  atomic.Bool

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

var _ ports.Transport = (*Transport)(nil)

// Open connects to the device. The error wraps domain.ErrConnection; callers
// are expected to fall back to NewDisconnected.
func Open(cfg Config, logger *slog.Logger) (*Transport, error) {
	mode := &bugserial.Mode{
		BaudRate: cfg.Baud,
		DataBits: 8,
		Parity:   bugserial.NoParity,
		StopBits: bugserial.OneStopBit,
	}

	port, err := bugserial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %q: %w: %w", cfg.Port, domain.ErrConnection, err)
	}

	if cfg.ReadTimeout > 0 {
		if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
			_ = port.Close()
			return nil, fmt.Errorf("set read timeout on %q: %w: %w", cfg.Port, domain.ErrConnection, err)
		}
	}

	t := NewTransport(port, logger)
	t.logger.Info("serial port opened", "port", cfg.Port, "baud", cfg.Baud)
	return t, nil
}

// NewTransport starts the read loop on an already open link. Reads on port
// must return periodically (a read timeout) so Close can join the loop.
func NewTransport(port io.ReadWriteCloser, logger *slog.Logger) *Transport {
	t := &Transport{
		port:   port,
		logger: logging.Component(logger, "transport"),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	if port == nil {
		close(t.done)
		return t
	}

	go t.readLoop()
	return t
}

// NewDisconnected returns a degraded transport that drops every command.
func NewDisconnected(logger *slog.Logger) *Transport {
	return NewTransport(nil, logger)
}

func (t *Transport) Connected() bool {
	return t.port != nil
}

func (t *Transport) Latest() (domain.TelemetrySample, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.latest, t.hasSample
}

func (t *Transport) WriteTarget(target domain.EncoderPair) {
	t.write(EncodeTarget(target))
}

func (t *Transport) WriteStop() {
	t.write(EncodeStop())
}

func (t *Transport) Stats() ports.TransportStats {
	return ports.TransportStats{
		FramesDecoded:  t.framesDecoded.Load(),
		BytesDiscarded: t.bytesDiscarded.Load(),
		Writes:         t.writes.Load(),
		WriteFailures:  t.writeFailures.Load(),
	}
}

// Close stops the read loop, waits for it to exit and only then closes the port.
func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		close(t.stop)
		<-t.done
		if t.port != nil {
			t.closeErr = t.port.Close()
		}
	})

	return t.closeErr
}

func (t *Transport) write(payload []byte) {
	if t.port == nil {
		if t.warnedDropped.CompareAndSwap(false, true) {
			t.logger.Warn("device not connected, dropping commands")
		}
		t.logger.Debug("command dropped", "command", string(payload[:len(payload)-1]))
		return
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	t.writes.Add(1)
	if _, err := t.port.Write(payload); err != nil {
		t.writeFailures.Add(1)
		t.logger.Warn("write command failed",
			"command", string(payload[:len(payload)-1]),
			"error", fmt.Errorf("%w: %w", domain.ErrConnection, err),
		)
	}
}

func (t *Transport) readLoop() {
	defer close(t.done)

	buf := make([]byte, readBufferSize)
	failing := false
	for {
		select {
		case <-t.stop:
			return
		default:
		}

		n, err := t.port.Read(buf)
		if n > 0 {
			t.consume(buf[:n])
		}
		if err == nil {
			failing = false
			continue
		}

		if !failing {
			t.logger.Warn("serial read failed", "error", err)
			failing = true
		}

		select {
		case <-t.stop:
			return
		case <-time.After(readErrorBackoff):
		}
	}
}

func (t *Transport) consume(p []byte) {
	before := t.decoder.Discarded()
	samples := t.decoder.Feed(p)
	if dropped := t.decoder.Discarded() - before; dropped > 0 {
		t.bytesDiscarded.Add(dropped)
		t.logger.Debug("resynchronizing telemetry stream", "discarded", dropped, "error", domain.ErrProtocolDesync)
	}
	if len(samples) == 0 {
		return
	}

	t.framesDecoded.Add(uint64(len(samples)))

	t.mu.Lock()
	t.latest = samples[len(samples)-1]
	t.hasSample = true
	t.mu.Unlock()
}
