// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package capture

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Thermoquad/kapanel/pkg/ka3005p"
)

// Link is the port-owning link a Recorder wraps
type Link interface {
	ka3005p.Link
	Name() string
	Close() error
}

// Recorder passes traffic through to a link and records every send and
// receive to a sink. A failing sink never fails the link operation.
type Recorder struct {
	link    Link
	sink    Sink
	session string
	seq     uint64
	now     func() time.Time
	log     zerolog.Logger
}

// NewRecorder wraps link, recording to sink under a new session ID
func NewRecorder(link Link, sink Sink, log zerolog.Logger) *Recorder {
	return &Recorder{
		link:    link,
		sink:    sink,
		session: uuid.NewString(),
		now:     time.Now,
		log:     log,
	}
}

// SessionID returns the session's UUID
func (r *Recorder) SessionID() string {
	return r.session
}

// Send writes through to the link and records the command
func (r *Recorder) Send(data []byte) error {
	err := r.link.Send(data)
	r.record(Event{Direction: DirectionOut, Data: data}, err)
	return err
}

// Receive reads through the link and records the reply
func (r *Recorder) Receive(settle time.Duration) ([]byte, error) {
	data, err := r.link.Receive(settle)
	r.record(Event{Direction: DirectionIn, Data: data, Settle: settle}, err)
	return data, err
}

// Name returns the wrapped link's port name
func (r *Recorder) Name() string {
	return r.link.Name()
}

// Close closes the link, then the sink when it is closable
func (r *Recorder) Close() error {
	err := r.link.Close()
	if c, ok := r.sink.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (r *Recorder) record(e Event, opErr error) {
	r.seq++
	e.Timestamp = r.now()
	e.SessionID = r.session
	e.Seq = r.seq
	e.Port = r.link.Name()
	if opErr != nil {
		e.Error = opErr.Error()
	}
	if err := r.sink.Record(e); err != nil {
		r.log.Warn().Err(err).Msg("failed to record capture event")
	}
}
