// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ka3005p

import "fmt"

// Encode converts a command to the bytes written on the wire.
// All commands are plain ASCII with no terminator.
func Encode(c Command) ([]byte, error) {
	if c.Wire == "" {
		return nil, fmt.Errorf("%s: empty wire command", c.Name)
	}
	out := make([]byte, len(c.Wire))
	for i := 0; i < len(c.Wire); i++ {
		b := c.Wire[i]
		if b < 0x20 || b > 0x7E {
			return nil, fmt.Errorf("%s: non-printable byte 0x%02X at offset %d", c.Name, b, i)
		}
		out[i] = b
	}
	return out, nil
}

// MustEncode encodes a command built by this package.
// Panics on encoding error (use Encode for error handling).
func MustEncode(c Command) []byte {
	data, err := Encode(c)
	if err != nil {
		panic(fmt.Sprintf("ka3005p: encode error: %v", err))
	}
	return data
}
