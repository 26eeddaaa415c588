// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package supply holds the canonical model of a KA3005P and the operations
// an operator can perform on it.
//
// A Controller is single-threaded: every operation runs to completion,
// including its settle delays, before the next one may start.
package supply

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/Thermoquad/kapanel/pkg/entry"
	"github.com/Thermoquad/kapanel/pkg/ka3005p"
	"github.com/Thermoquad/kapanel/pkg/transport"
)

// Link is a ka3005p.Link that also owns the underlying port
type Link interface {
	ka3005p.Link
	Name() string
	Close() error
}

// Controller owns the device connection, its state mirror and the entry machine
type Controller struct {
	link    Link
	client  *ka3005p.Client
	state   DeviceState
	entry   *entry.Machine
	stats   *ka3005p.Statistics
	log     zerolog.Logger
	message string
	hooks   []func(ka3005p.Transaction)
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the controller's logger
func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithTransactionHook adds a callback run after every round trip
func WithTransactionHook(fn func(ka3005p.Transaction)) Option {
	return func(c *Controller) { c.hooks = append(c.hooks, fn) }
}

// NewController creates a controller over link. Call Connect before use.
func NewController(link Link, timing ka3005p.Timing, opts ...Option) *Controller {
	c := &Controller{
		link:  link,
		entry: entry.New(),
		stats: ka3005p.NewStatistics(),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.client = ka3005p.NewClient(link, timing)
	c.client.OnTransaction(c.observe)
	return c
}

func (c *Controller) observe(tx ka3005p.Transaction) {
	c.stats.Update(tx)

	ev := c.log.Debug()
	if tx.Err != nil {
		ev = c.log.Warn().Err(tx.Err)
	}
	ev.Str("cmd", tx.Command.Wire).
		Str("reply", ka3005p.FormatReply(tx.Reply)).
		Dur("elapsed", tx.Elapsed).
		Msg("transaction")

	for _, hook := range c.hooks {
		hook(tx)
	}
}

// State returns a copy of the device state
func (c *Controller) State() DeviceState {
	return c.state
}

// EntryState returns the entry machine's mode
func (c *Controller) EntryState() entry.State {
	return c.entry.State()
}

// EntryDigits returns the digits typed into the pending entry
func (c *Controller) EntryDigits() string {
	return c.entry.Digits()
}

// Statistics returns the session's transaction statistics
func (c *Controller) Statistics() *ka3005p.Statistics {
	return c.stats
}

// Connect identifies the device on the link. On success the state is marked
// connected and the setpoints are read; a failed field read is logged and
// shown as the display message but does not fail the connection. When
// identify fails its error is returned, the controller stays disconnected and
// every later operation fails with ErrPortUnavailable.
func (c *Controller) Connect() error {
	id, err := c.client.Identify()
	if err != nil {
		c.state = DeviceState{}
		c.log.Info().Err(err).Msg("no power supply connected")
		return err
	}

	c.state = DeviceState{PowerConnected: true, Identity: id, Port: c.link.Name()}
	c.log.Info().Str("identity", id).Str("port", c.state.Port).Msg("power supply connected")
	if err := c.Refresh(); err != nil {
		c.message = "refresh: " + err.Error()
		c.log.Warn().Err(err).Msg("initial refresh incomplete")
	}
	return nil
}

func (c *Controller) requireConnected() error {
	if !c.state.PowerConnected {
		return transport.ErrPortUnavailable
	}
	return nil
}

// Refresh re-reads the display fields from the device. With the output on
// it queries measured voltage, measured current and both setpoints; with the
// output off only the setpoints, which then stand in for the measured values.
// A failed field keeps its last value and does not stop the others.
func (c *Controller) Refresh() error {
	if !c.state.PowerConnected {
		return nil
	}

	var errs []error
	if c.state.OutputEnabled {
		if v, err := c.client.OutVoltage(); err != nil {
			errs = append(errs, err)
		} else {
			c.state.MeasuredVoltage = v
		}
		if i, err := c.client.OutCurrent(); err != nil {
			errs = append(errs, err)
		} else {
			c.state.MeasuredCurrent = i
		}
	}

	if v, err := c.client.SetVoltage(); err != nil {
		errs = append(errs, err)
	} else {
		c.state.SetVoltage = v
	}
	if i, err := c.client.SetCurrent(); err != nil {
		errs = append(errs, err)
	} else {
		c.state.SetCurrent = i
	}

	if !c.state.OutputEnabled {
		c.state.MeasuredVoltage = c.state.SetVoltage
		c.state.MeasuredCurrent = c.state.SetCurrent
	}
	return errors.Join(errs...)
}

// SetOutput switches the output and refreshes the display
func (c *Controller) SetOutput(on bool) error {
	if err := c.requireConnected(); err != nil {
		return err
	}
	if err := c.client.Output(on); err != nil {
		return err
	}
	c.state.OutputEnabled = on
	return c.Refresh()
}

// ToggleOutput flips the output enable
func (c *Controller) ToggleOutput() error {
	return c.SetOutput(!c.state.OutputEnabled)
}

// DisableOutput sends OUT0 regardless of the current output state
func (c *Controller) DisableOutput() error {
	if err := c.requireConnected(); err != nil {
		return err
	}
	if err := c.client.Output(false); err != nil {
		return err
	}
	c.state.OutputEnabled = false
	return nil
}

// Recall disables the output, activates memory slot 1-5 and refreshes
func (c *Controller) Recall(slot int) error {
	if err := c.requireConnected(); err != nil {
		return err
	}
	if _, err := ka3005p.NewRecall(slot); err != nil {
		return err
	}
	if err := c.DisableOutput(); err != nil {
		return err
	}
	if err := c.client.Recall(slot); err != nil {
		return err
	}
	return c.Refresh()
}

// SetOVP switches overvoltage protection
func (c *Controller) SetOVP(on bool) error {
	if err := c.requireConnected(); err != nil {
		return err
	}
	if err := c.client.OVP(on); err != nil {
		return err
	}
	c.state.OVPEnabled = on
	return nil
}

// ToggleOVP flips overvoltage protection. The display is not refreshed.
func (c *Controller) ToggleOVP() error {
	return c.SetOVP(!c.state.OVPEnabled)
}

// SetOCP switches overcurrent protection
func (c *Controller) SetOCP(on bool) error {
	if err := c.requireConnected(); err != nil {
		return err
	}
	if err := c.client.OCP(on); err != nil {
		return err
	}
	c.state.OCPEnabled = on
	return nil
}

// ToggleOCP flips overcurrent protection. The display is not refreshed.
func (c *Controller) ToggleOCP() error {
	return c.SetOCP(!c.state.OCPEnabled)
}

// CommitVoltage writes a voltage setpoint and records it on success
func (c *Controller) CommitVoltage(v ka3005p.Voltage) error {
	if err := c.requireConnected(); err != nil {
		return err
	}
	if err := c.client.CommitVoltage(v); err != nil {
		return err
	}
	c.state.SetVoltage = v
	if !c.state.OutputEnabled {
		c.state.MeasuredVoltage = v
	}
	return nil
}

// CommitCurrent writes a current setpoint and records it on success
func (c *Controller) CommitCurrent(i ka3005p.Current) error {
	if err := c.requireConnected(); err != nil {
		return err
	}
	if err := c.client.CommitCurrent(i); err != nil {
		return err
	}
	c.state.SetCurrent = i
	if !c.state.OutputEnabled {
		c.state.MeasuredCurrent = i
	}
	return nil
}

// ToggleVoltageEntry starts or abandons keypad entry of the voltage setpoint
func (c *Controller) ToggleVoltageEntry() {
	c.entry.ToggleVoltage()
}

// ToggleCurrentEntry starts or abandons keypad entry of the current setpoint
func (c *Controller) ToggleCurrentEntry() {
	c.entry.ToggleCurrent()
}

// Digit feeds one keypad digit to the entry machine. When it completes a
// setpoint, the value is committed and the display refreshed.
func (c *Controller) Digit(d int) error {
	committed, err := c.entry.Press(d, c)
	if err != nil || !committed {
		return err
	}
	return c.Refresh()
}

// QueryStatus reads the opaque STATUS? blob
func (c *Controller) QueryStatus() (ka3005p.Status, error) {
	if err := c.requireConnected(); err != nil {
		return ka3005p.Status{}, err
	}
	st, err := c.client.Status()
	if err != nil {
		return ka3005p.Status{}, err
	}
	c.state.Status = st
	return st, nil
}

// Exec sends a raw command and returns its reply. It bypasses the state
// mirror; callers should Refresh afterwards.
func (c *Controller) Exec(cmd ka3005p.Command) ([]byte, error) {
	if err := c.requireConnected(); err != nil {
		return nil, err
	}
	return c.client.Exec(cmd)
}

// Close releases the link without touching the output. The controller is
// disconnected afterwards.
func (c *Controller) Close() error {
	c.entry.Reset()
	c.state.PowerConnected = false
	return c.link.Close()
}

// Shutdown disables the output and closes the link. It is safe to call on a
// disconnected controller.
func (c *Controller) Shutdown() error {
	var errs []error
	if c.state.PowerConnected {
		if err := c.DisableOutput(); err != nil {
			c.log.Warn().Err(err).Msg("failed to disable output on shutdown")
			errs = append(errs, err)
		}
	}
	if err := c.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
