// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"go.bug.st/serial/enumerator"
)

// allow tests to override port enumeration
var listPorts = enumerator.GetDetailedPortsList

// PortInfo describes one enumerated serial port
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          uint16
	PID          uint16
	SerialNumber string
	Product      string
}

// Matches reports whether the port is a USB device with the given IDs
func (p PortInfo) Matches(vid, pid uint16) bool {
	return p.IsUSB && p.VID == vid && p.PID == pid
}

// ListPorts enumerates serial ports with their USB identifiers
func ListPorts() ([]PortInfo, error) {
	details, err := listPorts()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		if d == nil {
			continue
		}
		info := PortInfo{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		}
		if d.IsUSB {
			info.VID = parseID(d.VID)
			info.PID = parseID(d.PID)
		}
		ports = append(ports, info)
	}
	return ports, nil
}

// Discover returns the name of the first port whose USB vendor and product
// identifiers match. It fails with ErrPortUnavailable when none does.
func Discover(vid, pid uint16, log zerolog.Logger) (string, error) {
	ports, err := ListPorts()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPortUnavailable, err)
	}

	log.Debug().Int("port_count", len(ports)).Msg("checking serial ports")
	for _, p := range ports {
		log.Debug().
			Str("port", p.Name).
			Bool("usb", p.IsUSB).
			Str("vid", fmt.Sprintf("%04x", p.VID)).
			Str("pid", fmt.Sprintf("%04x", p.PID)).
			Msg("checking port")
		if p.Matches(vid, pid) {
			log.Info().Str("port", p.Name).Msg("power supply found")
			return p.Name, nil
		}
	}
	return "", fmt.Errorf("%w: no device with VID %04x PID %04x", ErrPortUnavailable, vid, pid)
}

// parseID converts the enumerator's hex ID string, returning 0 when malformed
func parseID(s string) uint16 {
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0
	}
	return uint16(v)
}
