// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import "time"

// Disconnected is the link used when discovery found no device. Every call
// fails immediately with ErrPortUnavailable and no I/O is attempted.
type Disconnected struct{}

// Send always fails with ErrPortUnavailable
func (Disconnected) Send([]byte) error {
	return ErrPortUnavailable
}

// Receive always fails with ErrPortUnavailable
func (Disconnected) Receive(time.Duration) ([]byte, error) {
	return nil, ErrPortUnavailable
}

// Name returns an empty port identifier
func (Disconnected) Name() string {
	return ""
}

// Close is a no-op
func (Disconnected) Close() error {
	return nil
}
