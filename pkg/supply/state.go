// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package supply

import "github.com/Thermoquad/kapanel/pkg/ka3005p"

// DeviceState mirrors the physical unit. It is owned by a Controller and
// changes only through the Controller's operations.
type DeviceState struct {
	PowerConnected bool
	Identity       string
	Port           string

	OutputEnabled bool
	OVPEnabled    bool
	OCPEnabled    bool

	SetVoltage ka3005p.Voltage
	SetCurrent ka3005p.Current

	// Valid only while OutputEnabled; otherwise they track the setpoints
	MeasuredVoltage ka3005p.Voltage
	MeasuredCurrent ka3005p.Current

	// Last STATUS? reply, uninterpreted
	Status ka3005p.Status
}

// StatusText returns the connection line shown to the operator
func (s DeviceState) StatusText() string {
	if !s.PowerConnected {
		return StatusNotConnected
	}
	return s.Identity + " connected via communication port: " + s.Port
}

// StatusNotConnected is shown when no supply was found
const StatusNotConnected = "Device not connected"
