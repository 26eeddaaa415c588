// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ka3005p

import "fmt"

// Voltage is a fixed-point voltage in hundredths of a volt.
type Voltage int

// Current is a fixed-point current in thousandths of an ampere.
type Current int

// String formats the voltage as the device does: %05.2f (e.g. "05.00", "12.00").
func (v Voltage) String() string {
	return fmt.Sprintf("%02d.%02d", int(v)/VoltageScale, int(v)%VoltageScale)
}

// Volts returns the voltage as a float
func (v Voltage) Volts() float64 {
	return float64(v) / VoltageScale
}

// String formats the current as the device does: %05.3f (e.g. "0.500").
func (c Current) String() string {
	return fmt.Sprintf("%d.%03d", int(c)/CurrentScale, int(c)%CurrentScale)
}

// Amps returns the current as a float
func (c Current) Amps() float64 {
	return float64(c) / CurrentScale
}

// VoltageFromFloat rounds volts to the nearest hundredth
func VoltageFromFloat(volts float64) Voltage {
	return Voltage(roundScaled(volts, VoltageScale))
}

// CurrentFromFloat rounds amps to the nearest thousandth
func CurrentFromFloat(amps float64) Current {
	return Current(roundScaled(amps, CurrentScale))
}

func roundScaled(f float64, scale int) int {
	if f < 0 {
		return -int(-f*float64(scale) + 0.5)
	}
	return int(f*float64(scale) + 0.5)
}
