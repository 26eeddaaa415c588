// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package capture

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/Thermoquad/kapanel/pkg/ka3005p"
)

var (
	// ErrReplayExhausted is returned when the capture has no further events
	ErrReplayExhausted = errors.New("replay exhausted")

	// ErrReplayMismatch is returned when a command differs from the captured one
	ErrReplayMismatch = errors.New("replay mismatch")

	// ErrCapturedFailure wraps an error recorded in the capture
	ErrCapturedFailure = errors.New("captured failure")
)

// Replay is a link that answers from a capture instead of a device. Commands
// must be sent in the captured order; the captured replies are returned
// without any delay.
type Replay struct {
	events []Event
	pos    int
	name   string
}

// NewReplay creates a replay link over captured events
func NewReplay(events []Event) *Replay {
	name := "replay"
	for _, e := range events {
		if e.Port != "" {
			name = "replay:" + e.Port
			break
		}
	}
	return &Replay{events: events, name: name}
}

func (r *Replay) next(dir Direction) (Event, error) {
	if r.pos >= len(r.events) {
		return Event{}, ErrReplayExhausted
	}
	e := r.events[r.pos]
	if e.Direction != dir {
		return Event{}, fmt.Errorf("%w: expected %s at event %d, capture has %s", ErrReplayMismatch, dir, e.Seq, e.Direction)
	}
	r.pos++
	return e, nil
}

// Send checks data against the next captured command
func (r *Replay) Send(data []byte) error {
	e, err := r.next(DirectionOut)
	if err != nil {
		return err
	}
	if !bytes.Equal(e.Data, data) {
		return fmt.Errorf("%w: sent %s, capture has %s", ErrReplayMismatch,
			ka3005p.FormatReply(data), ka3005p.FormatReply(e.Data))
	}
	if e.Error != "" {
		return fmt.Errorf("%w: %s", ErrCapturedFailure, e.Error)
	}
	return nil
}

// Receive returns the next captured reply
func (r *Replay) Receive(time.Duration) ([]byte, error) {
	e, err := r.next(DirectionIn)
	if err != nil {
		return nil, err
	}
	if e.Error != "" {
		return e.Data, fmt.Errorf("%w: %s", ErrCapturedFailure, e.Error)
	}
	return e.Data, nil
}

// Remaining returns the number of events not yet replayed
func (r *Replay) Remaining() int {
	return len(r.events) - r.pos
}

// Name returns "replay:<captured port>"
func (r *Replay) Name() string {
	return r.name
}

// Close is a no-op
func (r *Replay) Close() error {
	return nil
}
