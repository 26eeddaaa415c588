// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package capture records serial traffic to CBOR files and replays it.
//
// A capture file is a stream of CBOR-encoded Events, one per Send or
// Receive, with integer map keys for compactness.
package capture

import (
	"fmt"
	"time"

	"github.com/Thermoquad/kapanel/pkg/ka3005p"
)

// Direction is the flow of bytes relative to the host
type Direction uint8

const (
	// DirectionOut is a command written to the device
	DirectionOut Direction = 0
	// DirectionIn is a reply collected after the settle delay
	DirectionIn Direction = 1
)

// String returns the direction name
func (d Direction) String() string {
	switch d {
	case DirectionOut:
		return "OUT"
	case DirectionIn:
		return "IN"
	default:
		return "UNKNOWN"
	}
}

// Event is one captured send or receive
type Event struct {
	// Timestamp when the operation completed
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies one program run (UUID)
	SessionID string `cbor:"2,keyasint"`

	// Seq numbers events within a session, starting at 1
	Seq uint64 `cbor:"3,keyasint"`

	Direction Direction `cbor:"4,keyasint"`

	// Port is the serial port name
	Port string `cbor:"5,keyasint,omitempty"`

	// Data is the bytes written or received
	Data []byte `cbor:"6,keyasint,omitempty"`

	// Settle is the delay before a receive
	Settle time.Duration `cbor:"7,keyasint,omitempty"`

	// Error is the operation's error text, if it failed
	Error string `cbor:"8,keyasint,omitempty"`
}

// String formats the event as one log line
func (e Event) String() string {
	line := fmt.Sprintf("%s #%-4d %-3s %s",
		e.Timestamp.Format("15:04:05.000"), e.Seq, e.Direction, ka3005p.FormatReply(e.Data))
	if e.Direction == DirectionIn {
		line += fmt.Sprintf(" (settle %s)", e.Settle)
	}
	if e.Error != "" {
		line += " ERROR: " + e.Error
	}
	return line
}
