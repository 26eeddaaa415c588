// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/kapanel/pkg/capture"
	"github.com/Thermoquad/kapanel/pkg/config"
	"github.com/Thermoquad/kapanel/pkg/ka3005p"
	"github.com/Thermoquad/kapanel/pkg/simulator"
	"github.com/Thermoquad/kapanel/pkg/transport"
)

// withLinkFlags sets the link selection flags for one test
func withLinkFlags(t *testing.T, sim bool, replay string) {
	t.Helper()
	oldSim, oldReplay := simulate, replayPath
	simulate, replayPath = sim, replay
	t.Cleanup(func() {
		simulate, replayPath = oldSim, oldReplay
	})
}

func TestOpenController_Simulated(t *testing.T) {
	withLinkFlags(t, true, "")
	cfg := config.Default()
	cfg.Timing = config.Timing{}

	ctrl, info, err := OpenController(cfg)
	require.NoError(t, err)
	defer ctrl.Close()

	assert.Equal(t, "Simulated supply", info)
	assert.True(t, ctrl.State().PowerConnected)
	assert.Equal(t, simulator.DefaultIdentity, ctrl.State().Identity)

	require.NoError(t, ctrl.Recall(2))
	assert.Equal(t, ka3005p.Voltage(500), ctrl.State().SetVoltage)
	assert.Equal(t, ka3005p.Current(1000), ctrl.State().SetCurrent)
}

func TestOpenController_CaptureThenReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.kacap")

	withLinkFlags(t, true, "")
	cfg := config.Default()
	cfg.Timing = config.Timing{}
	cfg.Capture = path

	ctrl, info, err := OpenController(cfg)
	require.NoError(t, err)
	assert.Contains(t, info, "(capturing)")
	require.NoError(t, ctrl.CommitVoltage(1250))
	require.NoError(t, ctrl.Close())

	events, err := capture.ReadAll(path)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, "*IDN?", string(events[0].Data))

	withLinkFlags(t, false, path)
	cfg.Capture = ""
	replayed, info, err := OpenController(cfg)
	require.NoError(t, err)
	defer replayed.Close()

	assert.Contains(t, info, "Replay:")
	assert.Equal(t, simulator.DefaultIdentity, replayed.State().Identity)
	require.NoError(t, replayed.CommitVoltage(1250))
}

func TestOpenController_NoDevice(t *testing.T) {
	withLinkFlags(t, false, filepath.Join(t.TempDir(), "missing.kacap"))

	ctrl, info, err := OpenController(config.Default())
	require.Error(t, err)
	assert.Equal(t, "not connected", info)
	assert.False(t, ctrl.State().PowerConnected)
	assert.ErrorIs(t, ctrl.Refresh(), transport.ErrPortUnavailable)
}

func TestIsNoDevice(t *testing.T) {
	assert.True(t, isNoDevice(transport.ErrPortUnavailable))
	assert.True(t, isNoDevice(capture.ErrReplayExhausted))
	assert.False(t, isNoDevice(transport.ErrWriteFailure))

	_, err := ka3005p.NewRecall(9)
	assert.True(t, isInvalidArgument(err))
	assert.False(t, isNoDevice(err))
}

func TestFormatPort(t *testing.T) {
	p := transport.PortInfo{Name: "/dev/ttyACM0", IsUSB: true, VID: 0x0416, PID: 0x5011, Product: "KA3005P", SerialNumber: "0001"}
	assert.Equal(t, "* /dev/ttyACM0     0416:5011 KA3005P SN:0001", formatPort(p, true))
	assert.Equal(t, "  /dev/ttyS0       (not USB)", formatPort(transport.PortInfo{Name: "/dev/ttyS0"}, false))
}
