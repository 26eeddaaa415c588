// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ka3005p

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestStatistics_Update(t *testing.T) {
	s := NewStatistics()

	s.Update(Transaction{Command: NewQuerySetVoltage(), Reply: []byte("12.00"), Elapsed: 150 * time.Millisecond})
	s.Update(Transaction{Command: NewOutput(true), Elapsed: 150 * time.Millisecond})
	s.Update(Transaction{Command: NewOutput(false), Reply: []byte("x"), Elapsed: 150 * time.Millisecond})
	s.Update(Transaction{Command: NewQueryOutVoltage(), Err: malformed("VOUT1?", nil, "empty reply")})
	s.Update(Transaction{Command: NewQueryOutCurrent(), Reply: []byte("?"), Err: malformed("IOUT1?", []byte("?"), "bad")})
	s.Update(Transaction{Command: NewOCP(true), Err: errors.New("write failure")})

	if s.TotalTransactions != 6 {
		t.Errorf("TotalTransactions = %d, want 6", s.TotalTransactions)
	}
	if s.Queries != 3 || s.Commands != 3 {
		t.Errorf("Queries/Commands = %d/%d, want 3/3", s.Queries, s.Commands)
	}
	if s.Successful != 3 {
		t.Errorf("Successful = %d, want 3", s.Successful)
	}
	if s.MalformedReplies != 2 || s.EmptyReplies != 1 {
		t.Errorf("Malformed/Empty = %d/%d, want 2/1", s.MalformedReplies, s.EmptyReplies)
	}
	if s.LinkErrors != 1 {
		t.Errorf("LinkErrors = %d, want 1", s.LinkErrors)
	}
	if s.StrayReplies != 1 {
		t.Errorf("StrayReplies = %d, want 1", s.StrayReplies)
	}
	if s.Errors() != 3 {
		t.Errorf("Errors() = %d, want 3", s.Errors())
	}
	if s.MeanRoundTrip() != 75*time.Millisecond {
		t.Errorf("MeanRoundTrip() = %v, want 75ms", s.MeanRoundTrip())
	}

	out := s.String()
	for _, want := range []string{"Transactions:", "Malformed:", "Link Errors:", "Stray Replies:"} {
		if !strings.Contains(out, want) {
			t.Errorf("String() missing %q:\n%s", want, out)
		}
	}

	s.Reset()
	if s.TotalTransactions != 0 || s.MeanRoundTrip() != 0 {
		t.Error("Reset() should clear counters")
	}
}
