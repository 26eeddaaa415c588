// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package supply

import (
	"github.com/Thermoquad/kapanel/pkg/entry"
	"github.com/Thermoquad/kapanel/pkg/ka3005p"
)

// Display holds the rendered strings a front end shows
type Display struct {
	Voltage    string // measured, the setpoint while output is off, or the pending entry
	Current    string
	SetVoltage string
	SetCurrent string
	Status     string

	Output bool
	OVP    bool
	OCP    bool

	Entry   entry.State
	Message string // last operator-facing error, empty after a successful action
}

// Display renders the current state
func (c *Controller) Display() Display {
	s := c.state

	voltage, current := s.SetVoltage, s.SetCurrent
	if s.OutputEnabled {
		voltage, current = s.MeasuredVoltage, s.MeasuredCurrent
	}
	if v, ok := c.entry.PartialVoltage(); ok {
		voltage = v
	}
	if i, ok := c.entry.PartialCurrent(); ok {
		current = i
	}

	return Display{
		Voltage:    ka3005p.FormatDisplayVoltage(voltage),
		Current:    ka3005p.FormatDisplayCurrent(current),
		SetVoltage: ka3005p.FormatDisplayVoltage(s.SetVoltage),
		SetCurrent: ka3005p.FormatDisplayCurrent(s.SetCurrent),
		Status:     s.StatusText(),
		Output:     s.OutputEnabled,
		OVP:        s.OVPEnabled,
		OCP:        s.OCPEnabled,
		Entry:      c.entry.State(),
		Message:    c.message,
	}
}
