// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package entry implements fixed-width keypad entry of setpoints.
//
// Digits accumulate left to right into a 4-digit buffer whose integer value
// is divided by the target scale: after "1","2" a voltage entry reads 0.12 V,
// after "1","2","0","0" it reads 12.00 V and is committed. Entry is a
// typewriter, not a right-aligned calculator.
package entry

import (
	"errors"
	"fmt"

	"github.com/Thermoquad/kapanel/pkg/ka3005p"
)

// State is the entry machine's mode
type State int

const (
	Idle State = iota
	EnteringVoltage
	EnteringCurrent
)

// String returns the state name
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case EnteringVoltage:
		return "entering voltage"
	case EnteringCurrent:
		return "entering current"
	default:
		return "unknown"
	}
}

// ErrInvalidDigit is returned for a key outside 0-9
var ErrInvalidDigit = errors.New("invalid digit")

// Committer receives a completed setpoint
type Committer interface {
	CommitVoltage(v ka3005p.Voltage) error
	CommitCurrent(c ka3005p.Current) error
}

// Machine accumulates digit presses into a pending setpoint. The zero value
// is an idle machine.
type Machine struct {
	state  State
	digits []byte
}

// New creates an idle entry machine
func New() *Machine {
	return &Machine{}
}

// State returns the current mode
func (m *Machine) State() State {
	return m.state
}

// Digits returns the digits entered so far
func (m *Machine) Digits() string {
	return string(m.digits)
}

// ToggleVoltage starts voltage entry from Idle, abandons it when already
// entering voltage, and switches over (discarding the buffer) when entering
// current.
func (m *Machine) ToggleVoltage() {
	m.toggle(EnteringVoltage)
}

// ToggleCurrent is ToggleVoltage for the current setpoint
func (m *Machine) ToggleCurrent() {
	m.toggle(EnteringCurrent)
}

func (m *Machine) toggle(target State) {
	m.digits = m.digits[:0]
	if m.state == target {
		m.state = Idle
		return
	}
	m.state = target
}

// Reset discards any pending entry and returns to Idle
func (m *Machine) Reset() {
	m.state = Idle
	m.digits = m.digits[:0]
}

// Press appends a digit. On the fourth digit the value is committed through
// c and the machine returns to Idle whether or not the commit succeeded.
// Digits pressed while Idle are ignored. committed reports whether a commit
// was attempted.
func (m *Machine) Press(digit int, c Committer) (committed bool, err error) {
	if digit < 0 || digit > 9 {
		return false, fmt.Errorf("%w: %d", ErrInvalidDigit, digit)
	}
	if m.state == Idle {
		return false, nil
	}

	m.digits = append(m.digits, byte('0'+digit))
	if len(m.digits) < ka3005p.EntryWidth {
		return false, nil
	}

	value := m.value()
	target := m.state
	m.Reset()

	if target == EnteringVoltage {
		err = c.CommitVoltage(ka3005p.Voltage(value))
	} else {
		err = c.CommitCurrent(ka3005p.Current(value))
	}
	return true, err
}

// PartialVoltage returns the buffer read at voltage scale while entering voltage
func (m *Machine) PartialVoltage() (ka3005p.Voltage, bool) {
	if m.state != EnteringVoltage {
		return 0, false
	}
	return ka3005p.Voltage(m.value()), true
}

// PartialCurrent returns the buffer read at current scale while entering current
func (m *Machine) PartialCurrent() (ka3005p.Current, bool) {
	if m.state != EnteringCurrent {
		return 0, false
	}
	return ka3005p.Current(m.value()), true
}

// value is the integer formed by the digits entered so far
func (m *Machine) value() int {
	n := 0
	for _, d := range m.digits {
		n = n*10 + int(d-'0')
	}
	return n
}
