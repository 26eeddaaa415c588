// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package simulator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/kapanel/pkg/ka3005p"
	"github.com/Thermoquad/kapanel/pkg/transport"
)

func newClient(d *Device) *ka3005p.Client {
	return ka3005p.NewClient(transport.New(d, "sim"), ka3005p.Timing{})
}

func TestDevice_SetpointRoundTrip(t *testing.T) {
	d := New()
	c := newClient(d)

	require.NoError(t, c.CommitVoltage(1200))
	require.NoError(t, c.CommitCurrent(500))

	v, err := c.SetVoltage()
	require.NoError(t, err)
	assert.Equal(t, ka3005p.Voltage(1200), v)

	i, err := c.SetCurrent()
	require.NoError(t, err)
	assert.Equal(t, ka3005p.Current(500), i)

	assert.Equal(t, []string{"VSET1:12.00", "ISET1:0.500", "VSET1?", "ISET1?"}, d.Received())
	assert.Zero(t, d.Pending())
}

func TestDevice_Identify(t *testing.T) {
	c := newClient(New(WithIdentity("KORAD KA3005P V2.0")))
	id, err := c.Identify()
	require.NoError(t, err)
	assert.Equal(t, "KORAD KA3005P V2.0", id)
}

func TestDevice_MeasuredValues(t *testing.T) {
	d := New(WithLoad(10))
	c := newClient(d)

	require.NoError(t, c.CommitVoltage(500))
	require.NoError(t, c.CommitCurrent(1000))

	v, err := c.OutVoltage()
	require.NoError(t, err)
	assert.Equal(t, ka3005p.Voltage(0), v, "output off reads zero")

	require.NoError(t, c.Output(true))

	v, err = c.OutVoltage()
	require.NoError(t, err)
	assert.Equal(t, ka3005p.Voltage(500), v)

	i, err := c.OutCurrent()
	require.NoError(t, err)
	assert.Equal(t, ka3005p.Current(500), i)

	// 0.2 A limit into 10 ohms: constant current at 2.00 V
	require.NoError(t, c.CommitCurrent(200))
	v, err = c.OutVoltage()
	require.NoError(t, err)
	assert.Equal(t, ka3005p.Voltage(200), v)

	st, err := c.Status()
	require.NoError(t, err)
	assert.Equal(t, StatusOutput, st.Raw[0]&StatusOutput)
	assert.Zero(t, st.Raw[0]&StatusCV)
}

func TestDevice_Recall(t *testing.T) {
	d := New()
	require.NoError(t, d.Store(3, Memory{Voltage: 330, Current: 250}))
	assert.Error(t, d.Store(6, Memory{}))

	c := newClient(d)
	require.NoError(t, c.Recall(3))

	snap := d.Snapshot()
	assert.Equal(t, ka3005p.Voltage(330), snap.SetVoltage)
	assert.Equal(t, ka3005p.Current(250), snap.SetCurrent)
}

func TestDevice_Protection(t *testing.T) {
	d := New()
	c := newClient(d)

	require.NoError(t, c.OVP(true))
	require.NoError(t, c.OCP(true))
	snap := d.Snapshot()
	assert.True(t, snap.OVP)
	assert.True(t, snap.OCP)

	require.NoError(t, c.OVP(false))
	assert.False(t, d.Snapshot().OVP)
}

func TestDevice_InjectReply(t *testing.T) {
	d := New()
	d.InjectReply(ka3005p.WireQuerySetVoltage, []byte("?!"))
	c := newClient(d)

	_, err := c.SetVoltage()
	assert.ErrorIs(t, err, ka3005p.ErrMalformedResponse)

	// override is one-shot
	_, err = c.SetVoltage()
	assert.NoError(t, err)
}

func TestDevice_FailWrites(t *testing.T) {
	d := New()
	d.FailWrites(errors.New("cable unplugged"))
	c := newClient(d)

	err := c.Output(true)
	assert.ErrorIs(t, err, transport.ErrWriteFailure)
	assert.False(t, d.Snapshot().Output)
}

func TestDevice_Closed(t *testing.T) {
	d := New()
	require.NoError(t, d.Close())
	_, err := d.Write([]byte("OUT1"))
	assert.ErrorIs(t, err, ErrClosed)
}
