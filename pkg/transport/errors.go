// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import "errors"

var (
	// ErrPortUnavailable is returned when no port could be claimed, either
	// because discovery found no matching device or the open failed.
	ErrPortUnavailable = errors.New("port unavailable")

	// ErrWriteFailure is returned on a short write or an I/O error while sending
	ErrWriteFailure = errors.New("write failure")

	// ErrReadFailure is returned on an I/O error while collecting a reply
	ErrReadFailure = errors.New("read failure")

	// ErrConnectionClosed is returned when the transport is used after Close
	ErrConnectionClosed = errors.New("connection closed")
)
