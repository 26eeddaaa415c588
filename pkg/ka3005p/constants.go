// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ka3005p

import "time"

// USB identification of the supply's CDC serial bridge
const (
	VendorID  = 1046  // 0x0416
	ProductID = 20497 // 0x5011
)

// Wire commands. The protocol has no terminator: one write is one command.
const (
	WireIdentify        = "*IDN?"
	WireStatus          = "STATUS?"
	WireQuerySetVoltage = "VSET1?"
	WireQuerySetCurrent = "ISET1?"
	WireQueryOutVoltage = "VOUT1?"
	WireQueryOutCurrent = "IOUT1?"
	WireSetVoltage      = "VSET1:"
	WireSetCurrent      = "ISET1:"
	WireOutputOn        = "OUT1"
	WireOutputOff       = "OUT0"
	WireOVPOn           = "OVP1"
	WireOVPOff          = "OVP0"
	WireOCPOn           = "OCP1"
	WireOCPOff          = "OCP0"
	WireRecall          = "RCL"
)

// Setpoint precision and entry granularity
const (
	VoltageScale  = 100  // hundredths of a volt
	CurrentScale  = 1000 // thousandths of an ampere
	VoltageDigits = 2    // fractional digits in replies and commits
	CurrentDigits = 3
	EntryWidth    = 4

	MaxVoltage Voltage = 9999 // 99.99 V
	MaxCurrent Current = 9999 // 9.999 A
)

// Memory slots addressable by RCL<N>
const (
	MinSlot = 1
	MaxSlot = 5
)

// Settle delays: device turnaround time between a write and the read that
// collects its reply.
const (
	DefaultQuerySettle    = 150 * time.Millisecond
	DefaultStatusSettle   = 100 * time.Millisecond
	DefaultIdentifySettle = 150 * time.Millisecond
	DefaultCommandSettle  = 150 * time.Millisecond
)

// SettleClass selects which settle delay applies to a command
type SettleClass int

const (
	SettleQuery SettleClass = iota
	SettleStatus
	SettleIdentify
	SettleCommand
)

// ReplyKind describes how a command's reply bytes are interpreted
type ReplyKind int

const (
	ReplyNone ReplyKind = iota
	ReplyText
	ReplyStatus
	ReplyVoltage
	ReplyCurrent
)
