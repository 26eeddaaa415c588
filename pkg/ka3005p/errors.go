// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ka3005p

import (
	"errors"
	"fmt"
)

// ErrorKind classifies protocol failures
type ErrorKind int

const (
	MalformedResponse ErrorKind = iota
	InvalidArgument
)

// String returns the kind name
func (k ErrorKind) String() string {
	switch k {
	case MalformedResponse:
		return "malformed response"
	case InvalidArgument:
		return "invalid argument"
	default:
		return "unknown"
	}
}

// ErrMalformedResponse matches any ProtocolError of kind MalformedResponse via errors.Is
var ErrMalformedResponse = errors.New("malformed response")

// ErrInvalidArgument matches any ProtocolError of kind InvalidArgument via errors.Is
var ErrInvalidArgument = errors.New("invalid argument")

// ProtocolError reports a reply that did not match the expected grammar, or a
// command argument outside what the device accepts.
type ProtocolError struct {
	Kind    ErrorKind
	Command string
	Reply   []byte
	Reason  string
}

// Error implements the error interface
func (e *ProtocolError) Error() string {
	if e.Kind == MalformedResponse {
		return fmt.Sprintf("%s: %s: %s (reply %s)", e.Command, e.Kind, e.Reason, FormatReply(e.Reply))
	}
	return fmt.Sprintf("%s: %s: %s", e.Command, e.Kind, e.Reason)
}

// Is lets errors.Is match the kind sentinels
func (e *ProtocolError) Is(target error) bool {
	switch target {
	case ErrMalformedResponse:
		return e.Kind == MalformedResponse
	case ErrInvalidArgument:
		return e.Kind == InvalidArgument
	}
	return false
}

func malformed(command string, reply []byte, reason string) *ProtocolError {
	return &ProtocolError{Kind: MalformedResponse, Command: command, Reply: reply, Reason: reason}
}

func invalidArgument(command, reason string) *ProtocolError {
	return &ProtocolError{Kind: InvalidArgument, Command: command, Reason: reason}
}
