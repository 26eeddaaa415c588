// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ka3005p

import "fmt"

// ValidateVoltage checks a setpoint against the 0.00-99.99 V range
func ValidateVoltage(v Voltage) error {
	if v < 0 || v > MaxVoltage {
		return fmt.Errorf("voltage %s out of range (0.00-%s)", FormatVoltage(v), FormatVoltage(MaxVoltage))
	}
	return nil
}

// ValidateCurrent checks a setpoint against the 0.000-9.999 A range
func ValidateCurrent(c Current) error {
	if c < 0 || c > MaxCurrent {
		return fmt.Errorf("current %s out of range (0.000-%s)", FormatCurrent(c), FormatCurrent(MaxCurrent))
	}
	return nil
}

// ValidateSlot checks a memory slot number
func ValidateSlot(slot int) error {
	if slot < MinSlot || slot > MaxSlot {
		return fmt.Errorf("memory slot %d out of range (%d-%d)", slot, MinSlot, MaxSlot)
	}
	return nil
}
