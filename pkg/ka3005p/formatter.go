// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ka3005p

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatVoltage formats a voltage as sent on the wire (%05.2f)
func FormatVoltage(v Voltage) string {
	if v < 0 {
		return "-" + (-v).String()
	}
	return v.String()
}

// FormatCurrent formats a current as sent on the wire (%05.3f)
func FormatCurrent(c Current) string {
	if c < 0 {
		return "-" + (-c).String()
	}
	return c.String()
}

// FormatDisplayVoltage formats a voltage for the panel, e.g. "12.00V"
func FormatDisplayVoltage(v Voltage) string {
	return FormatVoltage(v) + "V"
}

// FormatDisplayCurrent formats a current for the panel, e.g. "0.500A"
func FormatDisplayCurrent(c Current) string {
	return FormatCurrent(c) + "A"
}

// FormatReply renders reply bytes for logs: quoted when printable, hex otherwise
func FormatReply(reply []byte) string {
	if len(reply) == 0 {
		return "<empty>"
	}
	for _, b := range reply {
		if b < 0x20 || b > 0x7E {
			var s strings.Builder
			for i, b := range reply {
				if i > 0 {
					s.WriteByte(' ')
				}
				fmt.Fprintf(&s, "%02X", b)
			}
			return s.String()
		}
	}
	return strconv.Quote(string(reply))
}

// FormatTransaction formats a completed round trip into a human-readable line
func FormatTransaction(t Transaction) string {
	timestamp := t.Sent.Format("15:04:05.000")
	result := fmt.Sprintf("[%s] %-17s %-12s", timestamp, t.Command.Name, t.Command.Wire)

	if t.Command.IsQuery() || len(t.Reply) > 0 {
		result += " -> " + FormatReply(t.Reply)
	}
	result += fmt.Sprintf(" (%d ms)", t.Elapsed.Milliseconds())
	if t.Err != nil {
		result += fmt.Sprintf(" ERROR: %v", t.Err)
	}
	return result
}
