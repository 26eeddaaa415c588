// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ka3005p

import (
	"bytes"
	"encoding/hex"
)

// Status is the opaque reply to STATUS?. The bit layout is not interpreted.
type Status struct {
	Raw []byte
}

// Hex returns the status bytes hex-encoded
func (s Status) Hex() string {
	return hex.EncodeToString(s.Raw)
}

// ParseVoltage parses a VSET1?/VOUT1? reply: digits, optionally a '.' and
// one or two fractional digits, no sign and no unit suffix.
func ParseVoltage(command string, reply []byte) (Voltage, error) {
	n, err := parseFixed(command, reply, VoltageDigits, int(MaxVoltage))
	return Voltage(n), err
}

// ParseCurrent parses an ISET1?/IOUT1? reply with up to three fractional digits.
func ParseCurrent(command string, reply []byte) (Current, error) {
	n, err := parseFixed(command, reply, CurrentDigits, int(MaxCurrent))
	return Current(n), err
}

// ParseIdentity parses an *IDN? reply as raw text
func ParseIdentity(command string, reply []byte) (string, error) {
	text := bytes.TrimSpace(reply)
	if len(text) == 0 {
		return "", malformed(command, reply, "empty reply")
	}
	for _, b := range text {
		if b < 0x20 || b > 0x7E {
			return "", malformed(command, reply, "non-printable identification")
		}
	}
	return string(text), nil
}

// ParseStatus wraps a STATUS? reply
func ParseStatus(command string, reply []byte) (Status, error) {
	if len(reply) == 0 {
		return Status{}, malformed(command, reply, "empty reply")
	}
	raw := make([]byte, len(reply))
	copy(raw, reply)
	return Status{Raw: raw}, nil
}

// parseFixed converts an ASCII decimal to an integer scaled by 10^digits
func parseFixed(command string, reply []byte, digits int, max int) (int, error) {
	text := bytes.TrimSpace(reply)
	if len(text) == 0 {
		return 0, malformed(command, reply, "empty reply")
	}

	whole, frac, hasPoint := bytes.Cut(text, []byte{'.'})
	if len(whole) == 0 {
		return 0, malformed(command, reply, "missing integer part")
	}
	if hasPoint && (len(frac) == 0 || len(frac) > digits) {
		return 0, malformed(command, reply, "bad fractional part")
	}

	value := 0
	for _, b := range whole {
		if b < '0' || b > '9' {
			return 0, malformed(command, reply, "not a decimal number")
		}
		value = value*10 + int(b-'0')
		if value > max {
			return 0, malformed(command, reply, "value out of range")
		}
	}
	for i := 0; i < digits; i++ {
		d := 0
		if i < len(frac) {
			b := frac[i]
			if b < '0' || b > '9' {
				return 0, malformed(command, reply, "not a decimal number")
			}
			d = int(b - '0')
		}
		value = value*10 + d
	}
	if value > max {
		return 0, malformed(command, reply, "value out of range")
	}
	return value, nil
}
