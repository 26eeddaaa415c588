// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"

	"github.com/Thermoquad/kapanel/pkg/capture"
	"github.com/Thermoquad/kapanel/pkg/config"
	"github.com/Thermoquad/kapanel/pkg/ka3005p"
	"github.com/Thermoquad/kapanel/pkg/simulator"
	"github.com/Thermoquad/kapanel/pkg/supply"
	"github.com/Thermoquad/kapanel/pkg/transport"
)

// simulatorMemories preloads the simulated unit's recall slots
var simulatorMemories = []simulator.Memory{
	{Voltage: 330, Current: 500},   // 3.30 V 0.500 A
	{Voltage: 500, Current: 1000},  // 5.00 V 1.000 A
	{Voltage: 1200, Current: 1500}, // 12.00 V 1.500 A
	{Voltage: 1500, Current: 2000}, // 15.00 V 2.000 A
	{Voltage: 2400, Current: 3000}, // 24.00 V 3.000 A
}

// OpenLink opens the link selected by flags and settings. When no device can
// be opened the returned link is disconnected and err says why.
func OpenLink(cfg config.Config) (supply.Link, string, error) {
	link, description, err := openBaseLink(cfg)
	if err != nil {
		return transport.Disconnected{}, "not connected", err
	}

	if cfg.Capture != "" {
		sink, err := capture.NewFileWriter(cfg.Capture)
		if err != nil {
			link.Close()
			return transport.Disconnected{}, "not connected", err
		}
		recorder := capture.NewRecorder(link, sink, logger)
		logger.Info().
			Str("file", cfg.Capture).
			Str("session", recorder.SessionID()).
			Msg("capturing serial traffic")
		return recorder, description + " (capturing)", nil
	}

	return link, description, nil
}

func openBaseLink(cfg config.Config) (supply.Link, string, error) {
	if replayPath != "" {
		events, err := capture.ReadAll(replayPath)
		if err != nil {
			return nil, "", err
		}
		return capture.NewReplay(events), fmt.Sprintf("Replay: %s (%d events)", replayPath, len(events)), nil
	}

	if simulate {
		device := simulator.New()
		for i, m := range simulatorMemories {
			if err := device.Store(ka3005p.MinSlot+i, m); err != nil {
				return nil, "", err
			}
		}
		t := transport.New(device, "simulator", transportOptions(cfg)...)
		return t, "Simulated supply", nil
	}

	name := cfg.Port
	if name == "" {
		found, err := transport.Discover(cfg.VendorID, cfg.ProductID, logger)
		if err != nil {
			return nil, "", err
		}
		name = found
	}

	t, err := transport.Open(name, cfg.Baud, transportOptions(cfg)...)
	if err != nil {
		return nil, "", err
	}
	return t, fmt.Sprintf("Serial: %s @ %d baud", name, cfg.Baud), nil
}

func transportOptions(cfg config.Config) []transport.Option {
	opts := []transport.Option{transport.WithLogger(logger)}
	if cfg.Timing.Drain > 0 {
		opts = append(opts, transport.WithDrainTimeout(cfg.Timing.Drain))
	}
	return opts
}

// OpenController opens the configured link and connects to the supply.
// The controller is always usable; err reports why it is not connected.
func OpenController(cfg config.Config, opts ...supply.Option) (*supply.Controller, string, error) {
	link, description, linkErr := OpenLink(cfg)

	opts = append([]supply.Option{supply.WithLogger(logger)}, opts...)
	ctrl := supply.NewController(link, cfg.Timing.Client(), opts...)

	err := ctrl.Connect()
	if linkErr != nil {
		err = linkErr
	}
	if err != nil {
		logger.Warn().Err(err).Msg("supply not connected")
	}
	return ctrl, description, err
}

// isNoDevice reports whether err means nothing answered, as opposed to an
// I/O failure on an open port
func isNoDevice(err error) bool {
	return errors.Is(err, transport.ErrPortUnavailable) ||
		errors.Is(err, ka3005p.ErrMalformedResponse) ||
		errors.Is(err, capture.ErrReplayExhausted)
}

// isInvalidArgument reports whether err rejected a value before it was sent
func isInvalidArgument(err error) bool {
	return errors.Is(err, ka3005p.ErrInvalidArgument)
}
