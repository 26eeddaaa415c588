// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/kapanel/pkg/ka3005p"
	"github.com/Thermoquad/kapanel/pkg/simulator"
	"github.com/Thermoquad/kapanel/pkg/supply"
	"github.com/Thermoquad/kapanel/pkg/transport"
)

func newTestShell(t *testing.T) (*shell, *simulator.Device, *bytes.Buffer) {
	t.Helper()
	dev := simulator.New()
	ctrl := supply.NewController(transport.New(dev, "simulator"), ka3005p.Timing{})
	require.NoError(t, ctrl.Connect())

	out := &bytes.Buffer{}
	return &shell{ctrl: ctrl, out: out}, dev, out
}

func TestShell_Setpoints(t *testing.T) {
	sh, dev, out := newTestShell(t)

	assert.False(t, sh.execute("voltage 12.5"))
	assert.False(t, sh.execute("current 1.25"))

	snap := dev.Snapshot()
	assert.Equal(t, ka3005p.Voltage(1250), snap.SetVoltage)
	assert.Equal(t, ka3005p.Current(1250), snap.SetCurrent)
	assert.Empty(t, out.String())
}

func TestShell_Switches(t *testing.T) {
	sh, dev, _ := newTestShell(t)

	sh.execute("output on")
	sh.execute("ovp")
	sh.execute("ocp on")
	snap := dev.Snapshot()
	assert.True(t, snap.Output)
	assert.True(t, snap.OVP)
	assert.True(t, snap.OCP)

	sh.execute("output off")
	sh.execute("ovp")
	snap = dev.Snapshot()
	assert.False(t, snap.Output)
	assert.False(t, snap.OVP)
}

func TestShell_Keys(t *testing.T) {
	sh, dev, out := newTestShell(t)

	sh.execute("keys v1200")
	sh.execute("keys a 0 5 0 0")

	snap := dev.Snapshot()
	assert.Equal(t, ka3005p.Voltage(1200), snap.SetVoltage)
	assert.Equal(t, ka3005p.Current(500), snap.SetCurrent)
	assert.Empty(t, out.String())
}

func TestShell_Recall(t *testing.T) {
	sh, dev, _ := newTestShell(t)
	require.NoError(t, dev.Store(2, simulator.Memory{Voltage: 500, Current: 1000}))

	sh.execute("output on")
	sh.execute("recall 2")

	snap := dev.Snapshot()
	assert.False(t, snap.Output)
	assert.Equal(t, ka3005p.Voltage(500), snap.SetVoltage)
	assert.Equal(t, ka3005p.Current(1000), snap.SetCurrent)
}

func TestShell_Errors(t *testing.T) {
	sh, dev, out := newTestShell(t)
	sent := len(dev.Received())

	tests := []string{
		"voltage",
		"voltage abc",
		"voltage 100",
		"current -1",
		"recall 6",
		"output maybe",
		"keys x",
		"frobnicate",
	}
	for _, line := range tests {
		out.Reset()
		assert.False(t, sh.execute(line), line)
		assert.Contains(t, out.String(), "Error:", line)
	}
	assert.Len(t, dev.Received(), sent, "rejected commands must not reach the device")
}

func TestShell_Show(t *testing.T) {
	sh, _, out := newTestShell(t)

	sh.execute("voltage 5")
	sh.execute("show")

	assert.Contains(t, out.String(), "Voltage: 05.00V (set 05.00V)")
	assert.Contains(t, out.String(), "Output:  OFF")
	assert.Contains(t, out.String(), simulator.DefaultIdentity)
}

func TestShell_Quit(t *testing.T) {
	sh, _, _ := newTestShell(t)

	assert.False(t, sh.execute(""))
	assert.True(t, sh.execute("quit"))
	assert.True(t, sh.execute("EXIT"))
}

func TestParseSwitch(t *testing.T) {
	on, err := parseSwitch("ON")
	require.NoError(t, err)
	assert.True(t, on)

	on, err = parseSwitch("off")
	require.NoError(t, err)
	assert.False(t, on)

	_, err = parseSwitch("maybe")
	assert.Error(t, err)
}
