// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ka3005p

// Command builder functions create Command values ready for encoding.
// Each command carries its exact wire text, how its reply is parsed, and
// which settle delay the device needs before the reply can be read.

// Command is one request of the closed KA3005P command set
type Command struct {
	Name   string
	Wire   string
	Reply  ReplyKind
	Settle SettleClass
}

// IsQuery reports whether the command expects reply bytes
func (c Command) IsQuery() bool {
	return c.Reply != ReplyNone
}

// NewIdentify creates an identification query (*IDN?).
func NewIdentify() Command {
	return Command{Name: "IDENTIFY", Wire: WireIdentify, Reply: ReplyText, Settle: SettleIdentify}
}

// NewStatus creates a status query (STATUS?). The reply is an opaque blob.
func NewStatus() Command {
	return Command{Name: "STATUS", Wire: WireStatus, Reply: ReplyStatus, Settle: SettleStatus}
}

// NewQuerySetVoltage creates a voltage setpoint query (VSET1?).
func NewQuerySetVoltage() Command {
	return Command{Name: "QUERY_SET_VOLTAGE", Wire: WireQuerySetVoltage, Reply: ReplyVoltage, Settle: SettleQuery}
}

// NewQuerySetCurrent creates a current setpoint query (ISET1?).
func NewQuerySetCurrent() Command {
	return Command{Name: "QUERY_SET_CURRENT", Wire: WireQuerySetCurrent, Reply: ReplyCurrent, Settle: SettleQuery}
}

// NewQueryOutVoltage creates a measured output voltage query (VOUT1?).
func NewQueryOutVoltage() Command {
	return Command{Name: "QUERY_OUT_VOLTAGE", Wire: WireQueryOutVoltage, Reply: ReplyVoltage, Settle: SettleQuery}
}

// NewQueryOutCurrent creates a measured output current query (IOUT1?).
func NewQueryOutCurrent() Command {
	return Command{Name: "QUERY_OUT_CURRENT", Wire: WireQueryOutCurrent, Reply: ReplyCurrent, Settle: SettleQuery}
}

// NewSetVoltage creates a voltage setpoint commit (VSET1:<v>), v zero-padded
// to %05.2f. Returns an InvalidArgument error outside 0.00-99.99.
func NewSetVoltage(v Voltage) (Command, error) {
	if err := ValidateVoltage(v); err != nil {
		return Command{}, invalidArgument("SET_VOLTAGE", err.Error())
	}
	return Command{Name: "SET_VOLTAGE", Wire: WireSetVoltage + FormatVoltage(v), Reply: ReplyNone, Settle: SettleCommand}, nil
}

// NewSetCurrent creates a current setpoint commit (ISET1:<i>), i zero-padded
// to %05.3f. Returns an InvalidArgument error outside 0.000-9.999.
func NewSetCurrent(c Current) (Command, error) {
	if err := ValidateCurrent(c); err != nil {
		return Command{}, invalidArgument("SET_CURRENT", err.Error())
	}
	return Command{Name: "SET_CURRENT", Wire: WireSetCurrent + FormatCurrent(c), Reply: ReplyNone, Settle: SettleCommand}, nil
}

// NewOutput creates an output enable (OUT1) or disable (OUT0) command.
func NewOutput(on bool) Command {
	if on {
		return Command{Name: "OUTPUT_ON", Wire: WireOutputOn, Settle: SettleCommand}
	}
	return Command{Name: "OUTPUT_OFF", Wire: WireOutputOff, Settle: SettleCommand}
}

// NewOVP creates an overvoltage protection enable (OVP1) or disable (OVP0) command.
func NewOVP(on bool) Command {
	if on {
		return Command{Name: "OVP_ON", Wire: WireOVPOn, Settle: SettleCommand}
	}
	return Command{Name: "OVP_OFF", Wire: WireOVPOff, Settle: SettleCommand}
}

// NewOCP creates an overcurrent protection enable (OCP1) or disable (OCP0) command.
func NewOCP(on bool) Command {
	if on {
		return Command{Name: "OCP_ON", Wire: WireOCPOn, Settle: SettleCommand}
	}
	return Command{Name: "OCP_OFF", Wire: WireOCPOff, Settle: SettleCommand}
}

// NewRecall creates a memory recall command (RCL<N>) for slots 1-5.
func NewRecall(slot int) (Command, error) {
	if err := ValidateSlot(slot); err != nil {
		return Command{}, invalidArgument("RECALL", err.Error())
	}
	return Command{Name: "RECALL", Wire: WireRecall + string(rune('0'+slot)), Settle: SettleCommand}, nil
}
