// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package supply

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/kapanel/pkg/entry"
	"github.com/Thermoquad/kapanel/pkg/ka3005p"
	"github.com/Thermoquad/kapanel/pkg/simulator"
	"github.com/Thermoquad/kapanel/pkg/transport"
)

func newTestController(t *testing.T, opts ...simulator.Option) (*Controller, *simulator.Device) {
	t.Helper()
	dev := simulator.New(opts...)
	c := NewController(transport.New(dev, "/dev/ttyACM0"), ka3005p.Timing{})
	require.NoError(t, c.Connect())
	return c, dev
}

// sentAfter runs fn and returns the commands it wrote
func sentAfter(t *testing.T, dev *simulator.Device, fn func() error) []string {
	t.Helper()
	before := len(dev.Received())
	require.NoError(t, fn())
	return dev.Received()[before:]
}

func TestController_Connect(t *testing.T) {
	c, dev := newTestController(t)

	assert.Equal(t, []string{"*IDN?", "VSET1?", "ISET1?"}, dev.Received())
	state := c.State()
	assert.True(t, state.PowerConnected)
	assert.Equal(t, simulator.DefaultIdentity, state.Identity)
	assert.Equal(t, simulator.DefaultIdentity+" connected via communication port: /dev/ttyACM0", c.Display().Status)
}

func TestController_NotConnected(t *testing.T) {
	c := NewController(transport.Disconnected{}, ka3005p.DefaultTiming())

	err := c.Connect()
	require.ErrorIs(t, err, transport.ErrPortUnavailable)
	assert.Equal(t, "Device not connected", c.Display().Status)
	require.EqualValues(t, 1, c.Statistics().TotalTransactions)

	ops := map[string]func() error{
		"toggle output":  c.ToggleOutput,
		"disable output": c.DisableOutput,
		"toggle ovp":     c.ToggleOVP,
		"toggle ocp":     c.ToggleOCP,
		"recall":         func() error { return c.Recall(1) },
		"commit voltage": func() error { return c.CommitVoltage(1200) },
		"commit current": func() error { return c.CommitCurrent(500) },
		"status": func() error {
			_, err := c.QueryStatus()
			return err
		},
	}
	for name, op := range ops {
		assert.ErrorIs(t, op(), transport.ErrPortUnavailable, name)
	}

	assert.NoError(t, c.Refresh(), "refresh is a no-op while disconnected")
	assert.EqualValues(t, 1, c.Statistics().TotalTransactions, "no further traffic")
}

func TestController_RefreshOutputOff(t *testing.T) {
	c, dev := newTestController(t)
	require.NoError(t, c.CommitVoltage(1200))

	sent := sentAfter(t, dev, c.Refresh)
	assert.Equal(t, []string{"VSET1?", "ISET1?"}, sent)

	d := c.Display()
	assert.Equal(t, "12.00V", d.Voltage)
	assert.Equal(t, "12.00V", d.SetVoltage)
	assert.Equal(t, "0.000A", d.Current)
}

func TestController_RefreshOutputOn(t *testing.T) {
	c, dev := newTestController(t, simulator.WithLoad(10))
	require.NoError(t, c.CommitVoltage(500))
	require.NoError(t, c.CommitCurrent(1000))

	sent := sentAfter(t, dev, c.ToggleOutput)
	assert.Equal(t, []string{"OUT1", "VOUT1?", "IOUT1?", "VSET1?", "ISET1?"}, sent)

	d := c.Display()
	assert.Equal(t, "05.00V", d.Voltage)
	assert.Equal(t, "0.500A", d.Current)
	assert.Equal(t, "1.000A", d.SetCurrent)
	assert.True(t, d.Output)
}

func TestController_ToggleOutputTwice(t *testing.T) {
	c, dev := newTestController(t)

	var sent []string
	sent = append(sent, sentAfter(t, dev, c.ToggleOutput)[0])
	sent = append(sent, sentAfter(t, dev, c.ToggleOutput)[0])

	assert.Equal(t, []string{"OUT1", "OUT0"}, sent)
	assert.False(t, c.State().OutputEnabled)
}

func TestController_DisableOutputIdempotent(t *testing.T) {
	c, dev := newTestController(t)

	for i := 0; i < 2; i++ {
		sent := sentAfter(t, dev, c.DisableOutput)
		assert.Equal(t, []string{"OUT0"}, sent)
		assert.False(t, c.State().OutputEnabled)
	}

	require.NoError(t, c.SetOutput(true))
	sent := sentAfter(t, dev, c.DisableOutput)
	assert.Equal(t, []string{"OUT0"}, sent)
	assert.False(t, dev.Snapshot().Output)
}

func TestController_Recall(t *testing.T) {
	c, dev := newTestController(t)
	require.NoError(t, dev.Store(3, simulator.Memory{Voltage: 330, Current: 250}))
	require.NoError(t, c.SetOutput(true))

	sent := sentAfter(t, dev, func() error { return c.Recall(3) })
	assert.Equal(t, []string{"OUT0", "RCL3", "VSET1?", "ISET1?"}, sent)

	state := c.State()
	assert.False(t, state.OutputEnabled)
	assert.Equal(t, ka3005p.Voltage(330), state.SetVoltage)
	assert.Equal(t, ka3005p.Current(250), state.SetCurrent)
}

func TestController_RecallInvalidSlot(t *testing.T) {
	c, dev := newTestController(t)
	before := len(dev.Received())

	err := c.Recall(6)
	assert.ErrorIs(t, err, ka3005p.ErrInvalidArgument)
	assert.Len(t, dev.Received(), before)
}

func TestController_ProtectionTogglesDoNotRefresh(t *testing.T) {
	c, dev := newTestController(t)

	assert.Equal(t, []string{"OVP1"}, sentAfter(t, dev, c.ToggleOVP))
	assert.Equal(t, []string{"OCP1"}, sentAfter(t, dev, c.ToggleOCP))
	assert.Equal(t, []string{"OVP0"}, sentAfter(t, dev, c.ToggleOVP))

	state := c.State()
	assert.False(t, state.OVPEnabled)
	assert.True(t, state.OCPEnabled)
}

func TestController_VoltageEntry(t *testing.T) {
	c, dev := newTestController(t)
	c.ToggleVoltageEntry()

	require.NoError(t, c.Digit(1))
	require.NoError(t, c.Digit(2))
	assert.Equal(t, "00.12V", c.Display().Voltage)
	assert.Equal(t, entry.EnteringVoltage, c.Display().Entry)

	sent := sentAfter(t, dev, func() error {
		if err := c.Digit(0); err != nil {
			return err
		}
		return c.Digit(0)
	})
	assert.Equal(t, []string{"VSET1:12.00", "VSET1?", "ISET1?"}, sent)
	assert.Equal(t, ka3005p.Voltage(1200), c.State().SetVoltage)
	assert.Equal(t, entry.Idle, c.EntryState())
	assert.Equal(t, "12.00V", c.Display().Voltage)
}

func TestController_CurrentEntry(t *testing.T) {
	c, dev := newTestController(t)
	c.ToggleCurrentEntry()

	sent := sentAfter(t, dev, func() error {
		for _, d := range []int{0, 5, 0, 0} {
			if err := c.Digit(d); err != nil {
				return err
			}
		}
		return nil
	})
	assert.Equal(t, "ISET1:0.500", sent[0])
	assert.Equal(t, ka3005p.Current(500), c.State().SetCurrent)
}

func TestController_EntryToggledOffSendsNothing(t *testing.T) {
	c, dev := newTestController(t)

	sent := sentAfter(t, dev, func() error {
		c.ToggleVoltageEntry()
		c.ToggleVoltageEntry()
		return nil
	})
	assert.Empty(t, sent)
	assert.Equal(t, entry.Idle, c.EntryState())
}

func TestController_RefreshContinuesPastMalformedField(t *testing.T) {
	c, dev := newTestController(t)
	require.NoError(t, c.CommitVoltage(1200))
	require.NoError(t, c.CommitCurrent(300))

	dev.InjectReply(ka3005p.WireQuerySetVoltage, []byte("garbage"))

	err := c.Refresh()
	assert.ErrorIs(t, err, ka3005p.ErrMalformedResponse)

	state := c.State()
	assert.Equal(t, ka3005p.Voltage(1200), state.SetVoltage, "failed field keeps last value")
	assert.Equal(t, ka3005p.Current(300), state.SetCurrent)
	assert.EqualValues(t, 1, c.Statistics().MalformedReplies)
}

func TestController_FailedToggleKeepsState(t *testing.T) {
	c, dev := newTestController(t)
	dev.FailWrites(errors.New("cable unplugged"))

	err := c.ToggleOutput()
	assert.ErrorIs(t, err, transport.ErrWriteFailure)
	assert.False(t, c.State().OutputEnabled)

	err = c.ToggleOVP()
	assert.ErrorIs(t, err, transport.ErrWriteFailure)
	assert.False(t, c.State().OVPEnabled)
}

func TestController_QueryStatus(t *testing.T) {
	c, _ := newTestController(t)
	require.NoError(t, c.SetOutput(true))

	st, err := c.QueryStatus()
	require.NoError(t, err)
	require.Len(t, st.Raw, 1)
	assert.NotZero(t, st.Raw[0]&simulator.StatusOutput)
	assert.Equal(t, st, c.State().Status)
}

func TestController_Shutdown(t *testing.T) {
	c, dev := newTestController(t)
	require.NoError(t, c.SetOutput(true))

	require.NoError(t, c.Shutdown())
	received := dev.Received()
	assert.Equal(t, "OUT0", received[len(received)-1])
	assert.False(t, dev.Snapshot().Output)
	assert.Equal(t, "Device not connected", c.Display().Status)

	assert.NoError(t, c.Shutdown(), "second shutdown is a no-op")
	assert.ErrorIs(t, c.ToggleOutput(), transport.ErrPortUnavailable)
}

func TestController_TransactionHook(t *testing.T) {
	dev := simulator.New()
	var wires []string
	c := NewController(transport.New(dev, "sim"), ka3005p.Timing{},
		WithTransactionHook(func(tx ka3005p.Transaction) { wires = append(wires, tx.Command.Wire) }))

	require.NoError(t, c.Connect())
	assert.Equal(t, dev.Received(), wires)
}

func TestController_CloseKeepsOutput(t *testing.T) {
	c, dev := newTestController(t)
	require.NoError(t, c.SetOutput(true))

	before := len(dev.Received())
	require.NoError(t, c.Close())
	assert.Len(t, dev.Received(), before, "close sends nothing")
	assert.True(t, dev.Snapshot().Output)
	assert.False(t, c.State().PowerConnected)
}

func TestController_ConnectNoReply(t *testing.T) {
	dev := simulator.New()
	dev.InjectReply(ka3005p.WireIdentify, nil)
	c := NewController(transport.New(dev, "sim"), ka3005p.Timing{})

	err := c.Connect()
	assert.ErrorIs(t, err, ka3005p.ErrMalformedResponse)
	assert.Equal(t, StatusNotConnected, c.Display().Status)
	assert.ErrorIs(t, c.ToggleOutput(), transport.ErrPortUnavailable)
}

func TestController_ConnectMalformedSetpoint(t *testing.T) {
	dev := simulator.New()
	dev.InjectReply(ka3005p.WireQuerySetVoltage, []byte("garbage"))
	c := NewController(transport.New(dev, "/dev/ttyACM0"), ka3005p.Timing{})

	require.NoError(t, c.Connect(), "an identified supply stays connected")
	assert.True(t, c.State().PowerConnected)
	assert.Equal(t, []string{"*IDN?", "VSET1?", "ISET1?"}, dev.Received())
	assert.Contains(t, c.Display().Message, "malformed")

	require.NoError(t, c.Dispatch(Action{Kind: ActionRefresh}))
	assert.Empty(t, c.Display().Message)
}

func TestController_StrayBytesDrained(t *testing.T) {
	c, dev := newTestController(t)
	require.NoError(t, c.CommitVoltage(1200))

	// bytes the supply emits unprompted land in the buffer before OUT1's read
	dev.InjectNoise([]byte("\x00\xff"))
	require.NoError(t, c.ToggleOutput())

	assert.EqualValues(t, 1, c.Statistics().StrayReplies)
	assert.Equal(t, ka3005p.Voltage(1200), c.State().SetVoltage)
	assert.Zero(t, c.Statistics().MalformedReplies)
	assert.Zero(t, dev.Pending())
}
