// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ka3005p

import (
	"errors"
	"testing"
)

func TestCommandWireStrings(t *testing.T) {
	mustVoltage := func(v Voltage) Command {
		c, err := NewSetVoltage(v)
		if err != nil {
			t.Fatalf("NewSetVoltage(%d) failed: %v", v, err)
		}
		return c
	}
	mustCurrent := func(i Current) Command {
		c, err := NewSetCurrent(i)
		if err != nil {
			t.Fatalf("NewSetCurrent(%d) failed: %v", i, err)
		}
		return c
	}
	mustRecall := func(slot int) Command {
		c, err := NewRecall(slot)
		if err != nil {
			t.Fatalf("NewRecall(%d) failed: %v", slot, err)
		}
		return c
	}

	tests := []struct {
		name      string
		cmd       Command
		wantWire  string
		wantQuery bool
		wantClass SettleClass
	}{
		{"identify", NewIdentify(), "*IDN?", true, SettleIdentify},
		{"status", NewStatus(), "STATUS?", true, SettleStatus},
		{"query set voltage", NewQuerySetVoltage(), "VSET1?", true, SettleQuery},
		{"query set current", NewQuerySetCurrent(), "ISET1?", true, SettleQuery},
		{"query out voltage", NewQueryOutVoltage(), "VOUT1?", true, SettleQuery},
		{"query out current", NewQueryOutCurrent(), "IOUT1?", true, SettleQuery},
		{"set voltage 12.00", mustVoltage(1200), "VSET1:12.00", false, SettleCommand},
		{"set voltage zero padded", mustVoltage(500), "VSET1:05.00", false, SettleCommand},
		{"set voltage max", mustVoltage(9999), "VSET1:99.99", false, SettleCommand},
		{"set current 0.500", mustCurrent(500), "ISET1:0.500", false, SettleCommand},
		{"set current zero", mustCurrent(0), "ISET1:0.000", false, SettleCommand},
		{"set current max", mustCurrent(9999), "ISET1:9.999", false, SettleCommand},
		{"output on", NewOutput(true), "OUT1", false, SettleCommand},
		{"output off", NewOutput(false), "OUT0", false, SettleCommand},
		{"ovp on", NewOVP(true), "OVP1", false, SettleCommand},
		{"ovp off", NewOVP(false), "OVP0", false, SettleCommand},
		{"ocp on", NewOCP(true), "OCP1", false, SettleCommand},
		{"ocp off", NewOCP(false), "OCP0", false, SettleCommand},
		{"recall 1", mustRecall(1), "RCL1", false, SettleCommand},
		{"recall 5", mustRecall(5), "RCL5", false, SettleCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cmd.Wire != tt.wantWire {
				t.Errorf("Wire = %q, want %q", tt.cmd.Wire, tt.wantWire)
			}
			if tt.cmd.IsQuery() != tt.wantQuery {
				t.Errorf("IsQuery() = %v, want %v", tt.cmd.IsQuery(), tt.wantQuery)
			}
			if tt.cmd.Settle != tt.wantClass {
				t.Errorf("Settle = %d, want %d", tt.cmd.Settle, tt.wantClass)
			}

			encoded, err := Encode(tt.cmd)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if string(encoded) != tt.wantWire {
				t.Errorf("Encode() = %q, want %q", encoded, tt.wantWire)
			}
		})
	}
}

func TestCommandArgumentValidation(t *testing.T) {
	if _, err := NewSetVoltage(10000); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("NewSetVoltage(100.00) error = %v, want InvalidArgument", err)
	}
	if _, err := NewSetVoltage(-1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("NewSetVoltage(-0.01) error = %v, want InvalidArgument", err)
	}
	if _, err := NewSetCurrent(10000); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("NewSetCurrent(10.000) error = %v, want InvalidArgument", err)
	}
	for _, slot := range []int{0, 6, -1} {
		if _, err := NewRecall(slot); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("NewRecall(%d) error = %v, want InvalidArgument", slot, err)
		}
	}
}

func TestEncode_RejectsNonPrintable(t *testing.T) {
	if _, err := Encode(Command{Name: "BAD", Wire: "OUT1\n"}); err == nil {
		t.Error("Encode() with newline should fail")
	}
	if _, err := Encode(Command{Name: "EMPTY"}); err == nil {
		t.Error("Encode() with empty wire should fail")
	}
}

func TestMustEncode_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustEncode() should panic on invalid command")
		}
	}()
	MustEncode(Command{Name: "EMPTY"})
}
