// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package simulator provides an in-memory KA3005P that speaks the serial
// command set. It satisfies transport.Port so the full stack can run without
// hardware, and it can inject faults for tests.
package simulator

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Thermoquad/kapanel/pkg/ka3005p"
)

// DefaultIdentity is the *IDN? reply of the simulated unit
const DefaultIdentity = "KORAD KA3005P V5.8 SN:SIM00001"

// DefaultLoad is the resistive load on the simulated output, in ohms
const DefaultLoad = 10.0

// ErrClosed is returned by Read and Write after Close
var ErrClosed = errors.New("simulator: port closed")

// Status bits reported by the simulator's STATUS? reply
const (
	StatusCV     byte = 1 << 0 // constant voltage (clear: constant current)
	StatusOCP    byte = 1 << 5
	StatusOutput byte = 1 << 6
	StatusOVP    byte = 1 << 7
)

// Memory is one stored setpoint pair
type Memory struct {
	Voltage ka3005p.Voltage
	Current ka3005p.Current
}

// Device is a simulated power supply
type Device struct {
	mu sync.Mutex

	identity string
	load     float64

	setVoltage ka3005p.Voltage
	setCurrent ka3005p.Current
	output     bool
	ovp        bool
	ocp        bool
	slots      [ka3005p.MaxSlot]Memory

	pending  []byte
	received []string
	closed   bool

	writeErr  error
	overrides map[string][]byte
}

// Option configures a Device
type Option func(*Device)

// WithIdentity sets the identification string
func WithIdentity(id string) Option {
	return func(d *Device) { d.identity = id }
}

// WithLoad sets the load resistance in ohms
func WithLoad(ohms float64) Option {
	return func(d *Device) { d.load = ohms }
}

// New creates a simulated supply at 0.00 V / 0.000 A with the output off
func New(opts ...Option) *Device {
	d := &Device{
		identity:  DefaultIdentity,
		load:      DefaultLoad,
		overrides: make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Write processes one command. The protocol has no terminator, so each
// write is treated as exactly one command.
func (d *Device) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrClosed
	}
	if d.writeErr != nil {
		return 0, d.writeErr
	}

	cmd := string(p)
	d.received = append(d.received, cmd)

	if reply, ok := d.overrides[cmd]; ok {
		delete(d.overrides, cmd)
		d.pending = append(d.pending, reply...)
		return len(p), nil
	}

	d.pending = append(d.pending, d.execute(cmd)...)
	return len(p), nil
}

// Read returns buffered reply bytes, or 0 bytes when none are pending
func (d *Device) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrClosed
	}
	n := copy(p, d.pending)
	d.pending = d.pending[n:]
	return n, nil
}

// SetReadTimeout is accepted and ignored; reads never block
func (d *Device) SetReadTimeout(time.Duration) error {
	return nil
}

// Close marks the port closed
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// execute applies a command and returns its reply bytes
func (d *Device) execute(cmd string) []byte {
	switch cmd {
	case ka3005p.WireIdentify:
		return []byte(d.identity)
	case ka3005p.WireStatus:
		return []byte{d.status()}
	case ka3005p.WireQuerySetVoltage:
		return []byte(ka3005p.FormatVoltage(d.setVoltage))
	case ka3005p.WireQuerySetCurrent:
		return []byte(ka3005p.FormatCurrent(d.setCurrent))
	case ka3005p.WireQueryOutVoltage:
		v, _ := d.measure()
		return []byte(ka3005p.FormatVoltage(v))
	case ka3005p.WireQueryOutCurrent:
		_, i := d.measure()
		return []byte(ka3005p.FormatCurrent(i))
	case ka3005p.WireOutputOn, ka3005p.WireOutputOff:
		d.output = cmd == ka3005p.WireOutputOn
	case ka3005p.WireOVPOn, ka3005p.WireOVPOff:
		d.ovp = cmd == ka3005p.WireOVPOn
	case ka3005p.WireOCPOn, ka3005p.WireOCPOff:
		d.ocp = cmd == ka3005p.WireOCPOn
	default:
		d.executeArgument(cmd)
	}
	return nil
}

// executeArgument handles commands that carry a value. Malformed values are
// ignored, as the hardware does.
func (d *Device) executeArgument(cmd string) {
	switch {
	case strings.HasPrefix(cmd, ka3005p.WireSetVoltage):
		if v, err := ka3005p.ParseVoltage(cmd, []byte(strings.TrimPrefix(cmd, ka3005p.WireSetVoltage))); err == nil {
			d.setVoltage = v
		}
	case strings.HasPrefix(cmd, ka3005p.WireSetCurrent):
		if i, err := ka3005p.ParseCurrent(cmd, []byte(strings.TrimPrefix(cmd, ka3005p.WireSetCurrent))); err == nil {
			d.setCurrent = i
		}
	case strings.HasPrefix(cmd, ka3005p.WireRecall) && len(cmd) == len(ka3005p.WireRecall)+1:
		slot := int(cmd[len(ka3005p.WireRecall)] - '0')
		if ka3005p.ValidateSlot(slot) == nil {
			m := d.slots[slot-1]
			d.setVoltage = m.Voltage
			d.setCurrent = m.Current
		}
	}
}

// measure models a resistive load behind a CV/CC regulator
func (d *Device) measure() (ka3005p.Voltage, ka3005p.Current) {
	if !d.output || d.load <= 0 {
		return 0, 0
	}
	volts := d.setVoltage.Volts()
	amps := volts / d.load
	if limit := d.setCurrent.Amps(); amps > limit {
		return ka3005p.VoltageFromFloat(limit * d.load), d.setCurrent
	}
	return d.setVoltage, ka3005p.CurrentFromFloat(amps)
}

func (d *Device) status() byte {
	var s byte
	if _, i := d.measure(); !d.output || i < d.setCurrent {
		s |= StatusCV
	}
	if d.output {
		s |= StatusOutput
	}
	if d.ovp {
		s |= StatusOVP
	}
	if d.ocp {
		s |= StatusOCP
	}
	return s
}

// Store writes a memory slot (1-5), as the front panel's SAVE key would
func (d *Device) Store(slot int, m Memory) error {
	if err := ka3005p.ValidateSlot(slot); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slots[slot-1] = m
	return nil
}

// InjectReply replaces the reply to the next occurrence of a wire command
func (d *Device) InjectReply(wire string, reply []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.overrides[wire] = reply
}

// InjectNoise appends unsolicited bytes to the receive buffer
func (d *Device) InjectNoise(data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = append(d.pending, data...)
}

// FailWrites makes every subsequent Write fail with err; nil restores writes
func (d *Device) FailWrites(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writeErr = err
}

// Received returns every command written so far
func (d *Device) Received() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.received))
	copy(out, d.received)
	return out
}

// Pending returns the number of unread reply bytes
func (d *Device) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Snapshot is the simulated unit's state
type Snapshot struct {
	SetVoltage ka3005p.Voltage
	SetCurrent ka3005p.Current
	Output     bool
	OVP        bool
	OCP        bool
}

// Snapshot returns the current device state
func (d *Device) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Snapshot{
		SetVoltage: d.setVoltage,
		SetCurrent: d.setCurrent,
		Output:     d.output,
		OVP:        d.ovp,
		OCP:        d.ocp,
	}
}
