// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ka3005p

import (
	"fmt"
	"time"
)

// Link is the byte-level channel a Client drives.
//
// Framing policy (settle framing): replies carry no length prefix and no
// terminator. After Send the caller waits a fixed settle delay and takes
// whatever bytes are buffered as the complete reply. Receive must be called
// once after every Send, including commands without a reply, so that stray
// bytes are never left for the next command.
type Link interface {
	Send(data []byte) error
	Receive(settle time.Duration) ([]byte, error)
}

// Timing holds the settle delay for each command class
type Timing struct {
	Query    time.Duration
	Status   time.Duration
	Identify time.Duration
	Command  time.Duration
}

// DefaultTiming returns the delays observed to work on the KA3005P
func DefaultTiming() Timing {
	return Timing{
		Query:    DefaultQuerySettle,
		Status:   DefaultStatusSettle,
		Identify: DefaultIdentifySettle,
		Command:  DefaultCommandSettle,
	}
}

// For returns the settle delay of a command class
func (t Timing) For(class SettleClass) time.Duration {
	switch class {
	case SettleStatus:
		return t.Status
	case SettleIdentify:
		return t.Identify
	case SettleCommand:
		return t.Command
	default:
		return t.Query
	}
}

// Transaction records one send/settle/receive round trip
type Transaction struct {
	Command Command
	Reply   []byte
	Sent    time.Time
	Elapsed time.Duration
	Err     error
}

// Client executes KA3005P commands over a Link. It is not safe for
// concurrent use: the framing has no correlation id, so only one command may
// be in flight at a time.
type Client struct {
	link          Link
	timing        Timing
	onTransaction func(Transaction)
}

// NewClient creates a client over link using the given timing
func NewClient(link Link, timing Timing) *Client {
	return &Client{link: link, timing: timing}
}

// OnTransaction registers a hook called after every round trip
func (c *Client) OnTransaction(fn func(Transaction)) {
	c.onTransaction = fn
}

// Timing returns the client's settle delays
func (c *Client) Timing() Timing {
	return c.timing
}

// Exec sends a command, waits its settle delay and returns the raw reply.
// Receive is attempted even for commands without a reply. Nothing is retried.
func (c *Client) Exec(cmd Command) ([]byte, error) {
	var reply []byte
	err := c.roundTrip(cmd, func(r []byte) error {
		reply = r
		return nil
	})
	return reply, err
}

// roundTrip performs send, settle, receive and parse as one transaction
func (c *Client) roundTrip(cmd Command, parse func(reply []byte) error) error {
	tx := Transaction{Command: cmd, Sent: time.Now()}
	defer func() {
		tx.Elapsed = time.Since(tx.Sent)
		if c.onTransaction != nil {
			c.onTransaction(tx)
		}
	}()

	data, err := Encode(cmd)
	if err != nil {
		tx.Err = err
		return err
	}
	if err := c.link.Send(data); err != nil {
		tx.Err = fmt.Errorf("%s: %w", cmd.Name, err)
		return tx.Err
	}

	reply, err := c.link.Receive(c.timing.For(cmd.Settle))
	tx.Reply = reply
	if err != nil {
		tx.Err = fmt.Errorf("%s: %w", cmd.Name, err)
		return tx.Err
	}
	if err := parse(reply); err != nil {
		tx.Err = err
		return err
	}
	return nil
}

func (c *Client) queryVoltage(cmd Command) (Voltage, error) {
	var v Voltage
	err := c.roundTrip(cmd, func(reply []byte) (err error) {
		v, err = ParseVoltage(cmd.Wire, reply)
		return err
	})
	return v, err
}

func (c *Client) queryCurrent(cmd Command) (Current, error) {
	var i Current
	err := c.roundTrip(cmd, func(reply []byte) (err error) {
		i, err = ParseCurrent(cmd.Wire, reply)
		return err
	})
	return i, err
}

// Identify queries the identification string (*IDN?)
func (c *Client) Identify() (string, error) {
	cmd := NewIdentify()
	var id string
	err := c.roundTrip(cmd, func(reply []byte) (err error) {
		id, err = ParseIdentity(cmd.Wire, reply)
		return err
	})
	return id, err
}

// Status queries the opaque status blob (STATUS?)
func (c *Client) Status() (Status, error) {
	cmd := NewStatus()
	var st Status
	err := c.roundTrip(cmd, func(reply []byte) (err error) {
		st, err = ParseStatus(cmd.Wire, reply)
		return err
	})
	return st, err
}

// SetVoltage queries the voltage setpoint (VSET1?)
func (c *Client) SetVoltage() (Voltage, error) {
	return c.queryVoltage(NewQuerySetVoltage())
}

// SetCurrent queries the current setpoint (ISET1?)
func (c *Client) SetCurrent() (Current, error) {
	return c.queryCurrent(NewQuerySetCurrent())
}

// OutVoltage queries the measured output voltage (VOUT1?)
func (c *Client) OutVoltage() (Voltage, error) {
	return c.queryVoltage(NewQueryOutVoltage())
}

// OutCurrent queries the measured output current (IOUT1?)
func (c *Client) OutCurrent() (Current, error) {
	return c.queryCurrent(NewQueryOutCurrent())
}

// CommitVoltage writes a voltage setpoint (VSET1:<v>)
func (c *Client) CommitVoltage(v Voltage) error {
	cmd, err := NewSetVoltage(v)
	if err != nil {
		return err
	}
	_, err = c.Exec(cmd)
	return err
}

// CommitCurrent writes a current setpoint (ISET1:<i>)
func (c *Client) CommitCurrent(i Current) error {
	cmd, err := NewSetCurrent(i)
	if err != nil {
		return err
	}
	_, err = c.Exec(cmd)
	return err
}

// Output switches the output on (OUT1) or off (OUT0)
func (c *Client) Output(on bool) error {
	_, err := c.Exec(NewOutput(on))
	return err
}

// OVP switches overvoltage protection (OVP1/OVP0)
func (c *Client) OVP(on bool) error {
	_, err := c.Exec(NewOVP(on))
	return err
}

// OCP switches overcurrent protection (OCP1/OCP0)
func (c *Client) OCP(on bool) error {
	_, err := c.Exec(NewOCP(on))
	return err
}

// Recall activates memory slot 1-5 (RCL<N>)
func (c *Client) Recall(slot int) error {
	cmd, err := NewRecall(slot)
	if err != nil {
		return err
	}
	_, err = c.Exec(cmd)
	return err
}
