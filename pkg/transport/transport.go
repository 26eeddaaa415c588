// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

const (
	// DefaultBaudRate is the KA3005P's fixed line speed
	DefaultBaudRate = 9600

	// DefaultDrainTimeout bounds each read while collecting buffered bytes
	DefaultDrainTimeout = 20 * time.Millisecond

	// MaxReplySize caps one reply so a chattering line cannot stall a receive
	MaxReplySize = 4096
)

// Transport owns one open serial connection. It has no protocol knowledge:
// Send writes bytes, Receive sleeps for the settle delay and returns whatever
// the device has buffered. It satisfies ka3005p.Link.
type Transport struct {
	port         Port
	name         string
	drainTimeout time.Duration
	sleep        func(time.Duration)
	log          zerolog.Logger
	closed       atomic.Bool
}

// Option configures a Transport
type Option func(*Transport)

// WithLogger sets the logger used for debug traffic logs
func WithLogger(log zerolog.Logger) Option {
	return func(t *Transport) { t.log = log }
}

// WithSleep replaces time.Sleep for the settle delay
func WithSleep(sleep func(time.Duration)) Option {
	return func(t *Transport) { t.sleep = sleep }
}

// WithDrainTimeout sets the per-read timeout used while draining a reply
func WithDrainTimeout(d time.Duration) Option {
	return func(t *Transport) { t.drainTimeout = d }
}

// Open claims a serial port at 8N1 and the given baud rate
func Open(name string, baud int, opts ...Option) (*Transport, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	port, err := openPort(name, Mode(baud))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open serial port %s: %v", ErrPortUnavailable, name, err)
	}
	return New(port, name, opts...), nil
}

// New wraps an already open Port
func New(port Port, name string, opts ...Option) *Transport {
	t := &Transport{
		port:         port,
		name:         name,
		drainTimeout: DefaultDrainTimeout,
		sleep:        time.Sleep,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the port identifier
func (t *Transport) Name() string {
	return t.name
}

// Closed reports whether Close has been called
func (t *Transport) Closed() bool {
	return t.closed.Load()
}

// Send writes all of data. There is no implicit delay.
func (t *Transport) Send(data []byte) error {
	if t.closed.Load() {
		return ErrConnectionClosed
	}

	n, err := t.port.Write(data)
	if err != nil {
		t.log.Debug().Err(err).Str("port", t.name).Msg("send failed")
		return fmt.Errorf("%w: %v", ErrWriteFailure, err)
	}
	if n != len(data) {
		return fmt.Errorf("%w: short write (%d of %d bytes)", ErrWriteFailure, n, len(data))
	}

	t.log.Debug().Str("port", t.name).Str("cmd", string(data)).Int("bytes", n).Msg("sent")
	return nil
}

// Receive waits settle, then returns every byte currently buffered. An empty
// result means the device sent nothing. This is settle framing: the protocol
// has no terminator, so the delay is what delimits a reply.
func (t *Transport) Receive(settle time.Duration) ([]byte, error) {
	if t.closed.Load() {
		return nil, ErrConnectionClosed
	}

	t.sleep(settle)

	if err := t.port.SetReadTimeout(t.drainTimeout); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailure, err)
	}

	var reply []byte
	buf := make([]byte, 256)
	for len(reply) < MaxReplySize {
		n, err := t.port.Read(buf)
		if n > 0 {
			reply = append(reply, buf[:n]...)
		}
		if err != nil {
			return reply, fmt.Errorf("%w: %v", ErrReadFailure, err)
		}
		if n == 0 {
			break
		}
	}

	t.log.Debug().
		Str("port", t.name).
		Dur("settle", settle).
		Int("bytes", len(reply)).
		Msg("received")
	return reply, nil
}

// Close releases the port. Calling it again is a no-op.
func (t *Transport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	t.log.Debug().Str("port", t.name).Msg("closing port")
	return t.port.Close()
}
